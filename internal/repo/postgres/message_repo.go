package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Fumiyasu01/matching-app/internal/domain/model"
	"github.com/Fumiyasu01/matching-app/internal/repo/storage"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

// Insert stores the message. When the client supplied an idempotency
// key that was already used within the match, the previously stored
// row is returned with Replayed set instead of a new one.
func (r *MessageRepo) Insert(ctx context.Context, msg model.Message, now time.Time) (storage.SendResult, error) {
	if r.pool == nil {
		return storage.SendResult{}, fmt.Errorf("postgres pool is nil")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}
	msg.CreatedAt = now.UTC()

	var key *string
	if msg.IdempotencyKey != "" {
		key = &msg.IdempotencyKey
	}

	var storedID uuid.UUID
	err := r.pool.QueryRow(ctx, `
INSERT INTO messages (
	id,
	match_id,
	sender_id,
	content,
	idempotency_key,
	created_at
) VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (match_id, idempotency_key) WHERE idempotency_key IS NOT NULL DO NOTHING
RETURNING id
`, msg.ID, msg.MatchID, msg.SenderID, msg.Content, key, msg.CreatedAt).Scan(&storedID)
	if err == nil {
		return storage.SendResult{Message: msg}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return storage.SendResult{}, fmt.Errorf("insert message: %w", err)
	}

	var existing model.Message
	err = r.pool.QueryRow(ctx, `
SELECT id, match_id, sender_id, content, COALESCE(idempotency_key, ''), read_at, created_at
FROM messages
WHERE match_id = $1 AND idempotency_key = $2
LIMIT 1
`, msg.MatchID, msg.IdempotencyKey).Scan(
		&existing.ID,
		&existing.MatchID,
		&existing.SenderID,
		&existing.Content,
		&existing.IdempotencyKey,
		&existing.ReadAt,
		&existing.CreatedAt,
	)
	if err != nil {
		return storage.SendResult{}, fmt.Errorf("fetch replayed message: %w", err)
	}

	return storage.SendResult{Message: existing, Replayed: true}, nil
}

// ListByMatch returns the conversation oldest first.
func (r *MessageRepo) ListByMatch(ctx context.Context, matchID uuid.UUID) ([]model.Message, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, match_id, sender_id, content, COALESCE(idempotency_key, ''), read_at, created_at
FROM messages
WHERE match_id = $1
ORDER BY created_at ASC, id ASC
`, matchID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	items := make([]model.Message, 0, 32)
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(
			&m.ID,
			&m.MatchID,
			&m.SenderID,
			&m.Content,
			&m.IdempotencyKey,
			&m.ReadAt,
			&m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		items = append(items, m)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate messages: %w", rows.Err())
	}

	return items, nil
}

// MarkRead stamps every unread message in the match that the reader
// did not send. Returns how many rows were stamped; zero on repeat
// calls.
func (r *MessageRepo) MarkRead(ctx context.Context, matchID, readerID uuid.UUID, at time.Time) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE messages
SET read_at = $3
WHERE match_id = $1
	AND sender_id <> $2
	AND read_at IS NULL
`, matchID, readerID, at.UTC())
	if err != nil {
		return 0, fmt.Errorf("mark messages read: %w", err)
	}

	return tag.RowsAffected(), nil
}
