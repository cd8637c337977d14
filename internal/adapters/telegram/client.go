package telegram

import (
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"movie-vault-bot/internal/infra/metrics"
)

// Client адаптирует tgbotapi.BotAPI к интерфейсу domain.Transport.
type Client struct {
	bot *tgbotapi.BotAPI
}

// NewClient создаёт транспортный адаптер.
func NewClient(bot *tgbotapi.BotAPI) *Client {
	return &Client{bot: bot}
}

func (c *Client) send(operation string, chatID int64, msg tgbotapi.Chattable) (int, error) {
	start := time.Now()
	sent, err := c.bot.Send(msg)
	metrics.ObserveNetworkRequest("telegram_bot", operation, strconv.FormatInt(chatID, 10), start, err)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// SendPhoto отправляет фото по file_id.
func (c *Client) SendPhoto(chatID int64, fileID, caption string) (int, error) {
	msg := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(fileID))
	msg.Caption = caption
	return c.send("send_photo", chatID, msg)
}

// SendVideo отправляет видео по file_id.
func (c *Client) SendVideo(chatID int64, fileID, caption string) (int, error) {
	msg := tgbotapi.NewVideo(chatID, tgbotapi.FileID(fileID))
	msg.Caption = caption
	return c.send("send_video", chatID, msg)
}

// SendDocument отправляет документ по file_id.
func (c *Client) SendDocument(chatID int64, fileID, caption string) (int, error) {
	msg := tgbotapi.NewDocument(chatID, tgbotapi.FileID(fileID))
	msg.Caption = caption
	return c.send("send_document", chatID, msg)
}

// SendMessage отправляет текстовое сообщение.
func (c *Client) SendMessage(chatID int64, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	return c.send("send_message", chatID, msg)
}

// DeleteMessage удаляет сообщение из чата.
func (c *Client) DeleteMessage(chatID int64, messageID int) error {
	start := time.Now()
	_, err := c.bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	metrics.ObserveNetworkRequest("telegram_bot", "delete_message", strconv.FormatInt(chatID, 10), start, err)
	return err
}

// MemberStatus возвращает статус пользователя в чате. Ссылка чата —
// числовой ID, @username или URL t.me.
func (c *Client) MemberStatus(chatRef string, userID int64) (string, error) {
	cfg := tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{UserID: userID},
	}
	if id, err := strconv.ParseInt(chatRef, 10, 64); err == nil {
		cfg.ChatID = id
	} else {
		cfg.SuperGroupUsername = normalizeUsername(chatRef)
	}
	start := time.Now()
	member, err := c.bot.GetChatMember(cfg)
	metrics.ObserveNetworkRequest("telegram_bot", "get_chat_member", chatRef, start, err)
	if err != nil {
		return "", err
	}
	return member.Status, nil
}

func normalizeUsername(ref string) string {
	ref = strings.TrimSpace(ref)
	for _, prefix := range []string{"https://t.me/", "http://t.me/", "t.me/"} {
		if strings.HasPrefix(ref, prefix) {
			ref = strings.TrimPrefix(ref, prefix)
			break
		}
	}
	if !strings.HasPrefix(ref, "@") {
		ref = "@" + ref
	}
	return ref
}
