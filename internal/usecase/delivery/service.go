package delivery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"movie-vault-bot/internal/domain"
	"movie-vault-bot/internal/infra/metrics"
	"movie-vault-bot/internal/infra/timer"
)

// Outcome — исход запроса на выдачу.
type Outcome string

const (
	OutcomeNotFound  Outcome = "not_found"
	OutcomeForbidden Outcome = "forbidden"
	OutcomeDelivered Outcome = "delivered"
)

// Result описывает итог выдачи: исход и сессию отправленных сообщений.
type Result struct {
	Outcome Outcome
	Session domain.DeliverySession
}

// Gate проверяет право пользователя на выдачу.
type Gate interface {
	IsAuthorized(ctx context.Context, userID int64) bool
}

// Service выдаёт файлы фильма пользователю и отзывает их по таймеру.
type Service struct {
	log          zerolog.Logger
	movies       domain.MovieRepo
	transport    domain.Transport
	gate         Gate
	retractDelay time.Duration
}

// NewService создаёт пайплайн выдачи.
func NewService(log zerolog.Logger, movies domain.MovieRepo, transport domain.Transport, gate Gate, retractDelay time.Duration) *Service {
	return &Service{
		log:          log,
		movies:       movies,
		transport:    transport,
		gate:         gate,
		retractDelay: retractDelay,
	}
}

// Deliver отправляет пользователю файлы записи movieID в сохранённом
// порядке и планирует их отзыв. Ошибка отправки отдельного файла
// логируется и не прерывает остальные.
func (s *Service) Deliver(ctx context.Context, movieID string, recipient int64) Result {
	movie, err := s.movies.GetMovie(ctx, movieID)
	if err != nil {
		if !errors.Is(err, domain.ErrMovieNotFound) {
			s.log.Error().Err(err).Str("movie", movieID).Msg("не удалось прочитать запись фильма")
		}
		metrics.IncDelivery(string(OutcomeNotFound))
		return Result{Outcome: OutcomeNotFound}
	}
	if len(movie.Files) == 0 {
		metrics.IncDelivery(string(OutcomeNotFound))
		return Result{Outcome: OutcomeNotFound}
	}

	if !s.gate.IsAuthorized(ctx, recipient) {
		metrics.IncDelivery(string(OutcomeForbidden))
		return Result{Outcome: OutcomeForbidden}
	}

	session := domain.DeliverySession{
		ID:        uuid.NewString(),
		Recipient: recipient,
	}
	for _, f := range movie.Files {
		var (
			msgID int
			err   error
		)
		switch f.Kind {
		case domain.FileKindPhoto:
			msgID, err = s.transport.SendPhoto(recipient, f.FileID, f.Caption)
		case domain.FileKindVideo:
			msgID, err = s.transport.SendVideo(recipient, f.FileID, f.Caption)
		default:
			// Неизвестный тип уходит универсальной отправкой документа.
			msgID, err = s.transport.SendDocument(recipient, f.FileID, f.Caption)
		}
		if err != nil {
			metrics.DeliverySendErrors.Inc()
			s.log.Warn().Err(err).Str("movie", movieID).Int64("user", recipient).Msg("не удалось отправить файл, пропускаем")
			continue
		}
		session.MessageIDs = append(session.MessageIDs, msgID)
	}

	if warnID, err := s.transport.SendMessage(recipient, retractionWarning(s.retractDelay)); err == nil {
		session.MessageIDs = append(session.MessageIDs, warnID)
	} else {
		s.log.Warn().Err(err).Int64("user", recipient).Msg("не удалось отправить предупреждение об отзыве")
	}

	session.ExpiresAt = time.Now().Add(s.retractDelay)
	s.scheduleRetraction(session)

	metrics.IncDelivery(string(OutcomeDelivered))
	s.log.Info().Str("movie", movieID).Int64("user", recipient).Int("messages", len(session.MessageIDs)).Msg("файлы выданы")
	return Result{Outcome: OutcomeDelivered, Session: session}
}

// scheduleRetraction планирует удаление всех сообщений сессии. Каждое
// удаление независимо; уже удалённое сообщение не считается ошибкой.
func (s *Service) scheduleRetraction(session domain.DeliverySession) {
	ids := append([]int(nil), session.MessageIDs...)
	recipient := session.Recipient
	timer.Schedule(s.retractDelay, func() {
		for _, id := range ids {
			if err := s.transport.DeleteMessage(recipient, id); err != nil {
				s.log.Debug().Err(err).Int64("user", recipient).Int("message", id).Msg("сообщение не удалено")
			}
		}
		metrics.RetractionsTotal.Inc()
		s.log.Info().Int64("user", recipient).Str("session", session.ID).Msg("выдача отозвана")
	})
}

func retractionWarning(d time.Duration) string {
	if d >= time.Minute {
		return fmt.Sprintf("🛑⚠️ Внимание: отправленные файлы будут удалены через %d мин. Сохраните их сейчас. ⚠️🛑", int(d.Minutes()))
	}
	return fmt.Sprintf("🛑⚠️ Внимание: отправленные файлы будут удалены через %d сек. Сохраните их сейчас. ⚠️🛑", int(d.Seconds()))
}
