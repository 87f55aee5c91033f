package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"stylematch/recommend/models"
)

// RedisStore shares sessions between service replicas.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return fmt.Sprintf("outfit:session:%s", id)
}

// Get 获取会话
func (rs *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := rs.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", models.ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

// Save 保存会话, overwriting whatever the id held before.
func (rs *RedisStore) Save(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := rs.client.Set(ctx, sessionKey(s.ID), data, rs.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}
	slog.Debug("Session saved", slog.Any("session_id", s.ID), slog.Any("sets", len(s.LastSets)))
	return nil
}

// Ping 测试连接
func (rs *RedisStore) Ping(ctx context.Context) error {
	return rs.client.Ping(ctx).Err()
}

func (rs *RedisStore) Name() string { return "redis" }
