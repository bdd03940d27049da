package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"workmate-ai/internal/domain"
)

// RedisHistoryRepository keeps one JSON-encoded history blob per identity.
// Suits deployments without Postgres; the whole history is small (a chat
// session, not an archive), so read-modify-write per append is acceptable.
type RedisHistoryRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisHistoryRepository(client *redis.Client) *RedisHistoryRepository {
	return &RedisHistoryRepository{client: client, prefix: "chat:history:"}
}

func (r *RedisHistoryRepository) key(identity string) string {
	return r.prefix + strings.TrimSpace(identity)
}

func (r *RedisHistoryRepository) Load(ctx context.Context, identity string) ([]domain.ChatMessage, error) {
	raw, err := r.client.Get(ctx, r.key(identity)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	var messages []domain.ChatMessage
	if err := json.Unmarshal([]byte(raw), &messages); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return messages, nil
}

func (r *RedisHistoryRepository) Append(ctx context.Context, message domain.ChatMessage) error {
	messages, err := r.Load(ctx, message.Identity)
	if err != nil {
		return err
	}
	return r.Replace(ctx, message.Identity, append(messages, message))
}

func (r *RedisHistoryRepository) Replace(ctx context.Context, identity string, messages []domain.ChatMessage) error {
	if len(messages) == 0 {
		return r.Clear(ctx, identity)
	}
	raw, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := r.client.Set(ctx, r.key(identity), raw, 0).Err(); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

func (r *RedisHistoryRepository) Clear(ctx context.Context, identity string) error {
	if err := r.client.Del(ctx, r.key(identity)).Err(); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}
