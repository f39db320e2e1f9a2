package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Fumiyasu01/matching-app/internal/domain/enums"
	"github.com/Fumiyasu01/matching-app/internal/domain/model"
)

type BlockRepo struct {
	pool *pgxpool.Pool
}

func NewBlockRepo(pool *pgxpool.Pool) *BlockRepo {
	return &BlockRepo{pool: pool}
}

// Upsert records the block. Repeating an existing block is a no-op.
func (r *BlockRepo) Upsert(ctx context.Context, blockerID, blockedID uuid.UUID, now time.Time) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO blocks (
	blocker_id,
	blocked_id,
	created_at
) VALUES ($1, $2, $3)
ON CONFLICT (blocker_id, blocked_id) DO NOTHING
`, blockerID, blockedID, now.UTC()); err != nil {
		return fmt.Errorf("upsert block: %w", err)
	}

	return nil
}

// Delete removes the block. Removing an absent block is a no-op.
func (r *BlockRepo) Delete(ctx context.Context, blockerID, blockedID uuid.UUID) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	if _, err := r.pool.Exec(ctx, `
DELETE FROM blocks
WHERE blocker_id = $1 AND blocked_id = $2
`, blockerID, blockedID); err != nil {
		return fmt.Errorf("delete block: %w", err)
	}

	return nil
}

// ListBlocked returns the profiles the viewer has blocked, most recent
// block first.
func (r *BlockRepo) ListBlocked(ctx context.Context, blockerID uuid.UUID) ([]model.Profile, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT
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
	p.updated_at
FROM blocks b
JOIN profiles p ON p.id = b.blocked_id
WHERE b.blocker_id = $1
ORDER BY b.created_at DESC, p.id DESC
`, blockerID)
	if err != nil {
		return nil, fmt.Errorf("list blocked profiles: %w", err)
	}
	defer rows.Close()

	items := make([]model.Profile, 0, 8)
	for rows.Next() {
		var p model.Profile
		var lookingFor string
		if err := rows.Scan(
			&p.ID,
			&p.DisplayName,
			&p.Bio,
			&p.Location,
			&p.LocationLat,
			&p.LocationLon,
			&lookingFor,
			&p.Skills,
			&p.Interests,
			&p.AvatarKey,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan blocked profile: %w", err)
		}
		parsed, ok := enums.ParseLookingFor(lookingFor)
		if !ok {
			return nil, fmt.Errorf("blocked profile %s: unknown looking_for %q", p.ID, lookingFor)
		}
		p.LookingFor = parsed
		items = append(items, p)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate blocked profiles: %w", rows.Err())
	}

	return items, nil
}

// IsBlockedEither reports whether either user has blocked the other.
func (r *BlockRepo) IsBlockedEither(ctx context.Context, a, b uuid.UUID) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}

	var exists bool
	err := r.pool.QueryRow(ctx, `
SELECT EXISTS (
	SELECT 1
	FROM blocks
	WHERE (blocker_id = $1 AND blocked_id = $2)
		OR (blocker_id = $2 AND blocked_id = $1)
)
`, a, b).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check block state: %w", err)
	}

	return exists, nil
}
