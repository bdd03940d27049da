package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"workmate-ai/internal/domain"
)

func newTestRedisRepo(t *testing.T) *RedisHistoryRepository {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisHistoryRepository(client)
}

func testMessage(identity, text string, fromUser bool) domain.ChatMessage {
	return domain.ChatMessage{
		ID:         text,
		Identity:   identity,
		Text:       text,
		IsFromUser: fromUser,
		CreatedAt:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRedisHistoryRepo_AppendAndLoad(t *testing.T) {
	repo := newTestRedisRepo(t)
	ctx := context.Background()

	if err := repo.Append(ctx, testMessage("user@example.com", "質問です", true)); err != nil {
		t.Fatalf("append: %v", err)
	}
	assistant := testMessage("user@example.com", "回答です", false)
	assistant.Citation = "manual.pdf"
	if err := repo.Append(ctx, assistant); err != nil {
		t.Fatalf("append: %v", err)
	}

	messages, err := repo.Load(ctx, "user@example.com")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].Text != "質問です" || !messages[0].IsFromUser {
		t.Fatalf("unexpected first message: %+v", messages[0])
	}
	if messages[1].Citation != "manual.pdf" {
		t.Fatalf("citation not round-tripped: %+v", messages[1])
	}
}

func TestRedisHistoryRepo_LoadMissingIdentity(t *testing.T) {
	repo := newTestRedisRepo(t)

	messages, err := repo.Load(context.Background(), "nobody@example.com")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(messages) != 0 {
		t.Fatalf("expected empty history, got %+v", messages)
	}
}

func TestRedisHistoryRepo_IdentitiesIsolated(t *testing.T) {
	repo := newTestRedisRepo(t)
	ctx := context.Background()

	if err := repo.Append(ctx, testMessage("a@example.com", "aの質問", true)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := repo.Append(ctx, testMessage("b@example.com", "bの質問", true)); err != nil {
		t.Fatalf("append: %v", err)
	}

	messages, err := repo.Load(ctx, "a@example.com")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(messages) != 1 || messages[0].Text != "aの質問" {
		t.Fatalf("identities not isolated: %+v", messages)
	}
}

func TestRedisHistoryRepo_ReplaceAndClear(t *testing.T) {
	repo := newTestRedisRepo(t)
	ctx := context.Background()

	if err := repo.Append(ctx, testMessage("user@example.com", "旧メッセージ", true)); err != nil {
		t.Fatalf("append: %v", err)
	}

	replacement := []domain.ChatMessage{testMessage("user@example.com", "新メッセージ", true)}
	if err := repo.Replace(ctx, "user@example.com", replacement); err != nil {
		t.Fatalf("replace: %v", err)
	}
	messages, err := repo.Load(ctx, "user@example.com")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(messages) != 1 || messages[0].Text != "新メッセージ" {
		t.Fatalf("replace did not overwrite: %+v", messages)
	}

	if err := repo.Clear(ctx, "user@example.com"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	messages, err = repo.Load(ctx, "user@example.com")
	if err != nil {
		t.Fatalf("load after clear: %v", err)
	}
	if len(messages) != 0 {
		t.Fatalf("expected empty history after clear, got %+v", messages)
	}
}

func TestRedisHistoryRepo_ReplaceWithEmptyDeletesKey(t *testing.T) {
	repo := newTestRedisRepo(t)
	ctx := context.Background()

	if err := repo.Append(ctx, testMessage("user@example.com", "メッセージ", true)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := repo.Replace(ctx, "user@example.com", nil); err != nil {
		t.Fatalf("replace: %v", err)
	}

	messages, err := repo.Load(ctx, "user@example.com")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(messages) != 0 {
		t.Fatalf("expected empty history, got %+v", messages)
	}
}
