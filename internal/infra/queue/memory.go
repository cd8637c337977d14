package queue

import (
	"context"
	"errors"

	"movie-vault-bot/internal/domain"
)

// MemoryPublishQueue — очередь в памяти процесса. Используется в тестах и
// при запуске без Redis; задачи теряются при рестарте.
type MemoryPublishQueue struct {
	jobs chan domain.PublishJob
}

// NewMemoryPublishQueue создаёт очередь указанной ёмкости.
func NewMemoryPublishQueue(size int) *MemoryPublishQueue {
	if size <= 0 {
		size = 128
	}
	return &MemoryPublishQueue{jobs: make(chan domain.PublishJob, size)}
}

// Enqueue кладёт задачу в очередь.
func (q *MemoryPublishQueue) Enqueue(ctx context.Context, job domain.PublishJob) error {
	select {
	case q.jobs <- job:
		return nil
	default:
		return errors.New("memory queue: переполнена")
	}
}

// Pop блокирующе читает задачу из очереди.
func (q *MemoryPublishQueue) Pop(ctx context.Context) (domain.PublishJob, error) {
	select {
	case job := <-q.jobs:
		return job, nil
	case <-ctx.Done():
		return domain.PublishJob{}, ctx.Err()
	}
}
