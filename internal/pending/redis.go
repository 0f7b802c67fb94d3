package pending

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/signalix/otplogin/internal/model"
)

const redisKeyPrefix = "pending_login:"

// RedisBackend stores pending logins as JSON values expiring with the login.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

var _ Backend = (*RedisBackend)(nil)

// NewRedisBackend creates a redis backend
func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{
		client: client,
		prefix: redisKeyPrefix,
	}
}

func (b *RedisBackend) key(id uuid.UUID) string {
	return b.prefix + id.String()
}

func (b *RedisBackend) Put(ctx context.Context, p model.PendingLogin) error {
	ttl := time.Until(p.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("pending login %s already expired", p.ID)
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal pending login: %w", err)
	}
	if err := b.client.Set(ctx, b.key(p.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (b *RedisBackend) Get(ctx context.Context, id uuid.UUID) (model.PendingLogin, error) {
	data, err := b.client.Get(ctx, b.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.PendingLogin{}, ErrNotFound
		}
		return model.PendingLogin{}, fmt.Errorf("redis get: %w", err)
	}

	var p model.PendingLogin
	if err := json.Unmarshal(data, &p); err != nil {
		return model.PendingLogin{}, fmt.Errorf("unmarshal pending login: %w", err)
	}
	return p, nil
}

func (b *RedisBackend) Delete(ctx context.Context, id uuid.UUID) error {
	if err := b.client.Del(ctx, b.key(id)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
