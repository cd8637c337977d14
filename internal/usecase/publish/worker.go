package publish

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"movie-vault-bot/internal/domain"
	"movie-vault-bot/internal/infra/metrics"
)

// Worker разбирает очередь задач публикации.
type Worker struct {
	log     zerolog.Logger
	queue   domain.PublishQueue
	service *Service
}

// NewWorker создаёт воркер публикации.
func NewWorker(log zerolog.Logger, queue domain.PublishQueue, service *Service) *Worker {
	return &Worker{log: log, queue: queue, service: service}
}

// Run обрабатывает задачи до отмены контекста. Ошибка одной задачи
// логируется и не останавливает воркер.
func (w *Worker) Run(ctx context.Context) error {
	for {
		job, err := w.queue.Pop(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return ctx.Err()
			}
			w.log.Error().Err(err).Msg("не удалось прочитать задачу публикации")
			continue
		}
		if err := w.service.Broadcast(ctx, job.MovieID); err != nil {
			metrics.IncPublishJob("error")
			w.log.Error().Err(err).Str("job", job.ID).Str("movie", job.MovieID).Msg("публикация не удалась")
			continue
		}
		metrics.IncPublishJob("done")
		w.log.Info().Str("job", job.ID).Str("movie", job.MovieID).Msg("запись опубликована")
	}
}
