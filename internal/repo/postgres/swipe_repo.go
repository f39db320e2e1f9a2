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

type SwipeRepo struct {
	pool *pgxpool.Pool
}

func NewSwipeRepo(pool *pgxpool.Pool) *SwipeRepo {
	return &SwipeRepo{pool: pool}
}

// RecordSwipe stores the swipe and, when it completes a reciprocal
// like, resolves the match inside the same transaction. Transactions
// touching the same pair are serialized on an advisory lock: under
// READ COMMITTED two truly concurrent reciprocal likes would each
// miss the other's uncommitted row and neither would create the
// match. The ON CONFLICT fallback below still covers a lost race
// against an already committed match.
func (r *SwipeRepo) RecordSwipe(ctx context.Context, swiperID, swipedID uuid.UUID, action enums.SwipeAction, now time.Time) (storage.SwipeOutcome, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var outcome storage.SwipeOutcome
	err := WithTx(ctx, r.pool, func(txCtx context.Context, tx pgx.Tx) error {
		lockA, lockB := model.CanonicalPair(swiperID, swipedID)
		if _, err := tx.Exec(txCtx, `
SELECT pg_advisory_xact_lock(hashtextextended($1 || ':' || $2, 0))
`, lockA.String(), lockB.String()); err != nil {
			return fmt.Errorf("lock swipe pair: %w", err)
		}

		swipe := model.Swipe{
			ID:        uuid.New(),
			SwiperID:  swiperID,
			SwipedID:  swipedID,
			Action:    action,
			CreatedAt: now.UTC(),
		}

		var storedID uuid.UUID
		err := tx.QueryRow(txCtx, `
INSERT INTO swipes (
	id,
	swiper_id,
	swiped_id,
	action,
	created_at
) VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (swiper_id, swiped_id) DO NOTHING
RETURNING id
`, swipe.ID, swipe.SwiperID, swipe.SwipedID, swipe.Action.String(), swipe.CreatedAt).Scan(&storedID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return storage.ErrDuplicateSwipe
			}
			return fmt.Errorf("insert swipe: %w", err)
		}
		outcome.Swipe = &swipe

		if action != enums.SwipeActionLike {
			return nil
		}

		var one int
		err = tx.QueryRow(txCtx, `
SELECT 1
FROM swipes
WHERE swiper_id = $1 AND swiped_id = $2 AND action = $3
LIMIT 1
`, swipedID, swiperID, enums.SwipeActionLike.String()).Scan(&one)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("lookup reciprocal like: %w", err)
		}

		userA, userB := model.CanonicalPair(swiperID, swipedID)
		match := model.Match{
			ID:        uuid.New(),
			UserAID:   userA,
			UserBID:   userB,
			CreatedAt: now.UTC(),
		}

		err = tx.QueryRow(txCtx, `
INSERT INTO matches (
	id,
	user_a_id,
	user_b_id,
	created_at
) VALUES ($1, $2, $3, $4)
ON CONFLICT (user_a_id, user_b_id) DO NOTHING
RETURNING id, created_at
`, match.ID, match.UserAID, match.UserBID, match.CreatedAt).Scan(&match.ID, &match.CreatedAt)
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("create match: %w", err)
			}
			err = tx.QueryRow(txCtx, `
SELECT id, created_at
FROM matches
WHERE user_a_id = $1 AND user_b_id = $2
LIMIT 1
`, match.UserAID, match.UserBID).Scan(&match.ID, &match.CreatedAt)
			if err != nil {
				return fmt.Errorf("fetch existing match: %w", err)
			}
		}

		outcome.Match = &match
		return nil
	})
	if err != nil {
		return storage.SwipeOutcome{}, err
	}

	return outcome, nil
}

// ListSwipedIDs returns every profile id the swiper has already acted
// on, regardless of action.
func (r *SwipeRepo) ListSwipedIDs(ctx context.Context, swiperID uuid.UUID) ([]uuid.UUID, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT swiped_id
FROM swipes
WHERE swiper_id = $1
`, swiperID)
	if err != nil {
		return nil, fmt.Errorf("list swiped ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan swiped id: %w", err)
		}
		ids = append(ids, id)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate swiped ids: %w", rows.Err())
	}

	return ids, nil
}
