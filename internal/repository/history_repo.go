package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"workmate-ai/internal/domain"
)

// HistoryRepository is the per-identity durable keyed store for chat history.
// Messages are immutable once appended; Replace and Clear exist for the bulk
// reload/reset lifecycle.
type HistoryRepository interface {
	Load(ctx context.Context, identity string) ([]domain.ChatMessage, error)
	Append(ctx context.Context, message domain.ChatMessage) error
	Replace(ctx context.Context, identity string, messages []domain.ChatMessage) error
	Clear(ctx context.Context, identity string) error
}

type PgHistoryRepository struct {
	pool *pgxpool.Pool
}

func NewPgHistoryRepository(pool *pgxpool.Pool) *PgHistoryRepository {
	return &PgHistoryRepository{pool: pool}
}

func (r *PgHistoryRepository) Load(ctx context.Context, identity string) ([]domain.ChatMessage, error) {
	const query = `
		SELECT id, identity, text, is_from_user, citation, created_at
		FROM chat_messages
		WHERE identity = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query, identity)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.ChatMessage
	for rows.Next() {
		var msg domain.ChatMessage
		var citation *string

		err = rows.Scan(
			&msg.ID,
			&msg.Identity,
			&msg.Text,
			&msg.IsFromUser,
			&citation,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		if citation != nil {
			msg.Citation = *citation
		}
		messages = append(messages, msg)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return messages, nil
}

func (r *PgHistoryRepository) Append(ctx context.Context, message domain.ChatMessage) error {
	const query = `
		INSERT INTO chat_messages (id, identity, text, is_from_user, citation, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	var citation interface{}
	if message.Citation != "" {
		citation = message.Citation
	}

	_, err := r.pool.Exec(ctx, query,
		message.ID,
		message.Identity,
		message.Text,
		message.IsFromUser,
		citation,
		message.CreatedAt,
	)
	return err
}

func (r *PgHistoryRepository) Replace(ctx context.Context, identity string, messages []domain.ChatMessage) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err = tx.Exec(ctx, `DELETE FROM chat_messages WHERE identity = $1`, identity); err != nil {
		return err
	}

	const insert = `
		INSERT INTO chat_messages (id, identity, text, is_from_user, citation, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, msg := range messages {
		var citation interface{}
		if msg.Citation != "" {
			citation = msg.Citation
		}
		if _, err = tx.Exec(ctx, insert, msg.ID, identity, msg.Text, msg.IsFromUser, citation, msg.CreatedAt); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *PgHistoryRepository) Clear(ctx context.Context, identity string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM chat_messages WHERE identity = $1`, identity)
	return err
}
