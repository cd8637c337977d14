package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"movie-vault-bot/internal/domain"
	"movie-vault-bot/internal/infra/metrics"
	"movie-vault-bot/internal/usecase/delivery"
	"movie-vault-bot/internal/usecase/drafts"
	"movie-vault-bot/internal/usecase/gate"
)

// Handler обслуживает вебхук бота: сообщения кураторов в приватной группе
// и команды пользователей в личных чатах.
type Handler struct {
	log        zerolog.Logger
	transport  domain.Transport
	aggregator *drafts.Service
	delivery   *delivery.Service
	gate       *gate.Service
	users      domain.UserRepo
	movies     domain.MovieRepo
	queue      domain.PublishQueue

	privateChatID int64
	adminID       int64
}

// NewHandler создаёт обработчик.
func NewHandler(log zerolog.Logger, transport domain.Transport, aggregator *drafts.Service, deliverySvc *delivery.Service, gateSvc *gate.Service, users domain.UserRepo, movies domain.MovieRepo, queue domain.PublishQueue, privateChatID, adminID int64) *Handler {
	return &Handler{
		log:           log,
		transport:     transport,
		aggregator:    aggregator,
		delivery:      deliverySvc,
		gate:          gateSvc,
		users:         users,
		movies:        movies,
		queue:         queue,
		privateChatID: privateChatID,
		adminID:       adminID,
	}
}

// HandleUpdate обрабатывает входящий апдейт.
func (h *Handler) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	text := strings.TrimSpace(msg.Text)
	if strings.HasPrefix(text, "/") {
		h.handleCommand(ctx, msg, text)
		return
	}
	if msg.Chat.ID == h.privateChatID {
		h.monitorPrivateGroup(ctx, msg)
	}
}

func (h *Handler) handleCommand(ctx context.Context, msg *tgbotapi.Message, text string) {
	switch {
	case strings.HasPrefix(text, "/start"):
		h.handleStart(ctx, msg, commandPayload(text, "/start"))
	case strings.HasPrefix(text, "/download"):
		h.handleDownload(ctx, msg, commandPayload(text, "/download"))
	case strings.HasPrefix(text, "/cancel"):
		h.handleCancel(msg)
	case strings.HasPrefix(text, "/addjoin"):
		h.handleAddJoin(ctx, msg, commandPayload(text, "/addjoin"))
	case strings.HasPrefix(text, "/removejoin"):
		h.handleRemoveJoin(ctx, msg, commandPayload(text, "/removejoin"))
	case strings.HasPrefix(text, "/listjoin"):
		h.handleListJoin(ctx, msg)
	}
}

func (h *Handler) handleStart(ctx context.Context, msg *tgbotapi.Message, payload string) {
	if msg.From == nil {
		return
	}
	if _, err := h.users.UpsertByTGID(ctx, msg.From.ID); err != nil {
		h.log.Error().Err(err).Int64("user", msg.From.ID).Msg("не удалось сохранить пользователя")
	}
	if payload != "" {
		h.deliverTo(ctx, msg.Chat.ID, msg.From.ID, payload)
		return
	}
	h.reply(msg.Chat.ID, "Привет 👋\nВыбирайте фильмы в публичном чате и возвращайтесь за файлами по ссылке «Скачать».")
}

func (h *Handler) handleDownload(ctx context.Context, msg *tgbotapi.Message, payload string) {
	if msg.From == nil {
		return
	}
	if payload == "" {
		h.reply(msg.Chat.ID, "❌ Укажите идентификатор: /download <id>")
		return
	}
	h.deliverTo(ctx, msg.Chat.ID, msg.From.ID, payload)
}

func (h *Handler) deliverTo(ctx context.Context, chatID, userID int64, movieID string) {
	result := h.delivery.Deliver(ctx, movieID, userID)
	switch result.Outcome {
	case delivery.OutcomeNotFound:
		h.reply(chatID, "❌ Файл не найден.")
	case delivery.OutcomeForbidden:
		lines := []string{"Для скачивания вступите в группы:"}
		lines = append(lines, h.gate.JoinLinks(ctx)...)
		h.reply(chatID, strings.Join(lines, "\n"))
	}
}

func (h *Handler) handleCancel(msg *tgbotapi.Message) {
	if h.aggregator.Cancel(msg.Chat.ID) {
		h.reply(msg.Chat.ID, "✅ Черновик отменён.")
		return
	}
	h.reply(msg.Chat.ID, "❌ Активного черновика нет.")
}

func (h *Handler) isAdmin(msg *tgbotapi.Message) bool {
	return msg.From != nil && h.adminID != 0 && msg.From.ID == h.adminID
}

func (h *Handler) handleAddJoin(ctx context.Context, msg *tgbotapi.Message, payload string) {
	if !h.isAdmin(msg) {
		return
	}
	if payload == "" {
		h.reply(msg.Chat.ID, "Отправьте /addjoin @chat")
		return
	}
	if err := h.gate.Add(ctx, payload); err != nil {
		h.reply(msg.Chat.ID, fmt.Sprintf("Не удалось добавить чат: %v", err))
		return
	}
	h.reply(msg.Chat.ID, fmt.Sprintf("✅ Чат добавлен: %s", payload))
}

func (h *Handler) handleRemoveJoin(ctx context.Context, msg *tgbotapi.Message, payload string) {
	if !h.isAdmin(msg) {
		return
	}
	if payload == "" {
		h.reply(msg.Chat.ID, "Отправьте /removejoin @chat")
		return
	}
	if err := h.gate.Remove(ctx, payload); err != nil {
		h.reply(msg.Chat.ID, fmt.Sprintf("Не удалось удалить чат: %v", err))
		return
	}
	h.reply(msg.Chat.ID, fmt.Sprintf("✅ Чат удалён: %s", payload))
}

func (h *Handler) handleListJoin(ctx context.Context, msg *tgbotapi.Message) {
	if !h.isAdmin(msg) {
		return
	}
	refs, err := h.gate.Refs(ctx)
	if err != nil {
		h.reply(msg.Chat.ID, fmt.Sprintf("Не удалось получить список: %v", err))
		return
	}
	if len(refs) == 0 {
		h.reply(msg.Chat.ID, "Гейт пуст — доступ открыт всем.")
		return
	}
	h.reply(msg.Chat.ID, "Чаты гейта:\n"+strings.Join(refs, "\n"))
}

// monitorPrivateGroup превращает сообщения кураторов в события агрегатора:
// фото открывает черновик, видео и документы пополняют его, стикер завершает.
func (h *Handler) monitorPrivateGroup(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	switch {
	case len(msg.Photo) > 0:
		// Telegram присылает несколько размеров, последний — самый крупный.
		poster := msg.Photo[len(msg.Photo)-1].FileID
		h.aggregator.OnPoster(chatID, int64(msg.MessageID), poster, msg.Caption)
	case msg.Video != nil:
		h.aggregator.OnAttachment(chatID, domain.FileKindVideo, msg.Video.FileID, msg.Caption)
	case msg.Document != nil:
		h.aggregator.OnAttachment(chatID, domain.FileKindDocument, msg.Document.FileID, msg.Caption)
	case msg.Sticker != nil:
		draft, ok := h.aggregator.OnTerminator(chatID)
		if !ok {
			return
		}
		h.finalize(ctx, draft)
	}
}

func (h *Handler) finalize(ctx context.Context, draft domain.Draft) {
	movie := draft.Movie()
	if err := h.movies.UpsertMovie(ctx, movie); err != nil {
		h.log.Error().Err(err).Str("movie", movie.ID).Msg("не удалось сохранить запись фильма")
		return
	}
	job := domain.PublishJob{
		ID:          uuid.NewString(),
		MovieID:     movie.ID,
		RequestedAt: time.Now().UTC(),
	}
	if err := h.queue.Enqueue(ctx, job); err != nil {
		h.log.Error().Err(err).Str("movie", movie.ID).Msg("не удалось поставить задачу публикации")
		return
	}
	metrics.IncPublishJob("enqueued")
	h.log.Info().Str("movie", movie.ID).Int("files", len(movie.Files)).Msg("запись сохранена и поставлена на публикацию")
}

func (h *Handler) reply(chatID int64, text string) {
	if _, err := h.transport.SendMessage(chatID, text); err != nil {
		h.log.Error().Err(err).Int64("chat", chatID).Msg("не удалось отправить сообщение")
	}
}

func commandPayload(text, command string) string {
	return strings.TrimSpace(strings.TrimPrefix(text, command))
}
