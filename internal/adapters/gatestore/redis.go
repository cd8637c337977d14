package gatestore

import (
	"context"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"movie-vault-bot/internal/infra/metrics"
)

// Redis хранит набор чатов гейта в Redis-множестве: набор переживает
// рестарт процесса и разделяется между бинарниками.
type Redis struct {
	client *redis.Client
	key    string
}

// NewRedis создаёт хранилище по указанному ключу.
func NewRedis(client *redis.Client, key string) *Redis {
	return &Redis{client: client, key: key}
}

// Add добавляет чат. Идемпотентно.
func (r *Redis) Add(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	start := time.Now()
	err := r.client.SAdd(ctx, r.key, ref).Err()
	metrics.ObserveNetworkRequest("redis", "gate_refs_add", r.key, start, err)
	return err
}

// Remove убирает чат. Идемпотентно.
func (r *Redis) Remove(ctx context.Context, ref string) error {
	start := time.Now()
	err := r.client.SRem(ctx, r.key, ref).Err()
	metrics.ObserveNetworkRequest("redis", "gate_refs_remove", r.key, start, err)
	return err
}

// List возвращает чаты в детерминированном порядке.
func (r *Redis) List(ctx context.Context) ([]string, error) {
	start := time.Now()
	refs, err := r.client.SMembers(ctx, r.key).Result()
	metrics.ObserveNetworkRequest("redis", "gate_refs_list", r.key, start, err)
	if err != nil {
		return nil, err
	}
	sort.Strings(refs)
	return refs, nil
}
