package publish

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"movie-vault-bot/internal/domain"
	"movie-vault-bot/internal/usecase/gate"
)

// Подпись по умолчанию, когда куратор не оставил описания.
const defaultCaption = "🎬 GoldStarMovie"

// Service рассылает постеры опубликованных записей в публичные чаты.
type Service struct {
	log          zerolog.Logger
	movies       domain.MovieRepo
	transport    domain.Transport
	gateRefs     domain.GateStore
	destinations []int64
	botLink      string
}

// NewService создаёт сервис публикации. destinations — публичные чаты,
// botLink — базовая ссылка бота для deep-link на скачивание.
func NewService(log zerolog.Logger, movies domain.MovieRepo, transport domain.Transport, gateRefs domain.GateStore, destinations []int64, botLink string) *Service {
	return &Service{
		log:          log,
		movies:       movies,
		transport:    transport,
		gateRefs:     gateRefs,
		destinations: destinations,
		botLink:      botLink,
	}
}

// Broadcast отправляет постеры записи во все настроенные чаты. Подпись
// несёт только первый постер каждого чата; ошибки отдельных отправок
// логируются и не мешают остальным.
func (s *Service) Broadcast(ctx context.Context, movieID string) error {
	movie, err := s.movies.GetMovie(ctx, movieID)
	if err != nil {
		return fmt.Errorf("чтение записи %s: %w", movieID, err)
	}

	var joinLinks []string
	if s.gateRefs != nil {
		refs, err := s.gateRefs.List(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("не удалось получить чаты гейта, публикуем без ссылок")
		}
		for _, ref := range refs {
			joinLinks = append(joinLinks, gate.JoinLink(ref))
		}
	}
	caption := ComposeCaption(movie, joinLinks, s.botLink)

	for _, dest := range s.destinations {
		for i, poster := range movie.PosterRefs {
			text := ""
			if i == 0 {
				text = caption
			}
			if _, err := s.transport.SendPhoto(dest, poster, text); err != nil {
				s.log.Error().Err(err).Int64("chat", dest).Str("movie", movieID).Msg("не удалось опубликовать постер")
			}
		}
	}
	return nil
}

// ComposeCaption собирает подпись публикации: ссылки на вступление,
// описание (или заглушка) и deep-link на скачивание.
func ComposeCaption(movie domain.Movie, joinLinks []string, botLink string) string {
	text := strings.TrimSpace(movie.Description)
	if text == "" {
		text = defaultCaption
	}
	if movie.Series {
		line := "📺 Сериал"
		if movie.Season > 0 {
			line += fmt.Sprintf(", сезон %d", movie.Season)
		}
		if movie.EpisodeCount > 0 {
			line += fmt.Sprintf(", серий: %d", movie.EpisodeCount)
		}
		text += "\n" + line
	}
	if len(joinLinks) > 0 {
		var b strings.Builder
		for _, link := range joinLinks {
			b.WriteString("📌 Вступите: " + link + "\n")
		}
		text = b.String() + "\n" + text
	}
	if botLink != "" {
		text += fmt.Sprintf("\n\n📥 Скачать: %s?start=%s", botLink, movie.ID)
	}
	return text
}
