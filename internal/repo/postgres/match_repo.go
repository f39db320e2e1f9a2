package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Fumiyasu01/matching-app/internal/domain/enums"
	"github.com/Fumiyasu01/matching-app/internal/domain/model"
	"github.com/Fumiyasu01/matching-app/internal/repo/storage"
)

type MatchRepo struct {
	pool *pgxpool.Pool
}

func NewMatchRepo(pool *pgxpool.Pool) *MatchRepo {
	return &MatchRepo{pool: pool}
}

func (r *MatchRepo) GetByID(ctx context.Context, id uuid.UUID) (model.Match, error) {
	if r.pool == nil {
		return model.Match{}, fmt.Errorf("postgres pool is nil")
	}

	var m model.Match
	err := r.pool.QueryRow(ctx, `
SELECT id, user_a_id, user_b_id, created_at
FROM matches
WHERE id = $1
LIMIT 1
`, id).Scan(&m.ID, &m.UserAID, &m.UserBID, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Match{}, storage.ErrMatchNotFound
		}
		return model.Match{}, fmt.Errorf("get match: %w", err)
	}

	return m, nil
}

// ListForUser returns the viewer's matches newest first, each joined
// with the partner profile, the latest message and the count of
// partner messages the viewer has not read yet.
func (r *MatchRepo) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]storage.MatchSummary, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	m.id,
	m.user_a_id,
	m.user_b_id,
	m.created_at,
	p.id,
	p.display_name,
	COALESCE(p.bio, ''),
	COALESCE(p.location, ''),
	p.location_lat,
	p.location_lon,
	p.looking_for,
	COALESCE(p.skills, '{}'),
	COALESCE(p.interests, '{}'),
	COALESCE(p.avatar_key, ''),
	p.created_at,
	p.updated_at,
	lm.id,
	lm.sender_id,
	lm.content,
	lm.read_at,
	lm.created_at,
	COALESCE(un.unread, 0)
FROM matches m
JOIN profiles p
	ON p.id = CASE WHEN m.user_a_id = $1 THEN m.user_b_id ELSE m.user_a_id END
LEFT JOIN LATERAL (
	SELECT id, sender_id, content, read_at, created_at
	FROM messages
	WHERE match_id = m.id
	ORDER BY created_at DESC, id DESC
	LIMIT 1
) lm ON TRUE
LEFT JOIN LATERAL (
	SELECT COUNT(*)::int AS unread
	FROM messages
	WHERE match_id = m.id
		AND sender_id <> $1
		AND read_at IS NULL
) un ON TRUE
WHERE m.user_a_id = $1 OR m.user_b_id = $1
ORDER BY m.created_at DESC, m.id DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	items := make([]storage.MatchSummary, 0, limit)
	for rows.Next() {
		var (
			item         storage.MatchSummary
			lookingFor   string
			msgID        *uuid.UUID
			msgSender    *uuid.UUID
			msgContent   *string
			msgReadAt    *time.Time
			msgCreatedAt *time.Time
		)
		if err := rows.Scan(
			&item.Match.ID,
			&item.Match.UserAID,
			&item.Match.UserBID,
			&item.Match.CreatedAt,
			&item.Partner.ID,
			&item.Partner.DisplayName,
			&item.Partner.Bio,
			&item.Partner.Location,
			&item.Partner.LocationLat,
			&item.Partner.LocationLon,
			&lookingFor,
			&item.Partner.Skills,
			&item.Partner.Interests,
			&item.Partner.AvatarKey,
			&item.Partner.CreatedAt,
			&item.Partner.UpdatedAt,
			&msgID,
			&msgSender,
			&msgContent,
			&msgReadAt,
			&msgCreatedAt,
			&item.UnreadCount,
		); err != nil {
			return nil, fmt.Errorf("scan match summary: %w", err)
		}

		parsed, ok := enums.ParseLookingFor(lookingFor)
		if !ok {
			return nil, fmt.Errorf("match %s partner: unknown looking_for %q", item.Match.ID, lookingFor)
		}
		item.Partner.LookingFor = parsed
		if msgID != nil {
			item.LastMessage = &model.Message{
				ID:        *msgID,
				MatchID:   item.Match.ID,
				SenderID:  *msgSender,
				Content:   *msgContent,
				ReadAt:    msgReadAt,
				CreatedAt: *msgCreatedAt,
			}
		}

		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate match summaries: %w", rows.Err())
	}

	return items, nil
}
