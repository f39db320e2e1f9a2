package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Fumiyasu01/matching-app/internal/domain/enums"
	"github.com/Fumiyasu01/matching-app/internal/domain/model"
	"github.com/Fumiyasu01/matching-app/internal/repo/storage"
)

type FeedRepo struct {
	pool *pgxpool.Pool
}

func NewFeedRepo(pool *pgxpool.Pool) *FeedRepo {
	return &FeedRepo{pool: pool}
}

// ListCandidates builds the discovery page in one query: self, anyone
// the viewer already swiped and blocks in either direction are
// excluded, the optional filters applied, newest profiles first.
// The distance guard is inclusive at the boundary and drops
// candidates without coordinates only while it is active.
func (r *FeedRepo) ListCandidates(ctx context.Context, q storage.FeedQuery) ([]model.Profile, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if q.Limit <= 0 {
		q.Limit = 20
	}

	lookingFor := make([]string, 0, len(q.Filters.LookingFor))
	for _, v := range q.Filters.LookingFor {
		lookingFor = append(lookingFor, v.String())
	}
	skills := normalizeTags(q.Filters.Skills)
	applyLookingFor := len(lookingFor) > 0
	applySkills := len(skills) > 0
	applyDistance := q.Filters.MaxDistanceKM != nil && q.ViewerLat != nil && q.ViewerLon != nil

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
FROM profiles p
WHERE
	p.id <> $1
	AND NOT EXISTS (
		SELECT 1
		FROM swipes s
		WHERE s.swiper_id = $1 AND s.swiped_id = p.id
	)
	AND NOT EXISTS (
		SELECT 1
		FROM blocks b
		WHERE (b.blocker_id = $1 AND b.blocked_id = p.id)
			OR (b.blocker_id = p.id AND b.blocked_id = $1)
	)
	AND ($2::boolean = FALSE OR p.looking_for = ANY($3::text[]))
	AND (
		$4::boolean = FALSE
		OR EXISTS (
			SELECT 1
			FROM UNNEST(p.skills) ps
			WHERE LOWER(ps) = ANY($5::text[])
		)
	)
	AND (
		$6::boolean = FALSE
		OR (
			p.location_lat IS NOT NULL
			AND p.location_lon IS NOT NULL
			-- haversine; keep in step with the in-process distance rule
			AND 6371.0 * 2 * ASIN(LEAST(1.0, SQRT(
				POWER(SIN(RADIANS(p.location_lat - $7::float8) / 2), 2)
				+ COS(RADIANS($7::float8)) * COS(RADIANS(p.location_lat))
				* POWER(SIN(RADIANS(p.location_lon - $8::float8) / 2), 2)
			))) <= $9::float8
		)
	)
ORDER BY p.created_at DESC, p.id DESC
LIMIT $10
`,
		q.ViewerID,                 // $1
		applyLookingFor,            // $2
		lookingFor,                 // $3
		applySkills,                // $4
		skills,                     // $5
		applyDistance,              // $6
		floatOrZero(q.ViewerLat),             // $7
		floatOrZero(q.ViewerLon),             // $8
		floatOrZero(q.Filters.MaxDistanceKM), // $9
		q.Limit,                              // $10
	)
	if err != nil {
		return nil, fmt.Errorf("list feed candidates: %w", err)
	}
	defer rows.Close()

	items := make([]model.Profile, 0, q.Limit)
	for rows.Next() {
		var p model.Profile
		var rawLookingFor string
		if err := rows.Scan(
			&p.ID,
			&p.DisplayName,
			&p.Bio,
			&p.Location,
			&p.LocationLat,
			&p.LocationLon,
			&rawLookingFor,
			&p.Skills,
			&p.Interests,
			&p.AvatarKey,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan feed candidate: %w", err)
		}
		parsed, ok := enums.ParseLookingFor(rawLookingFor)
		if !ok {
			return nil, fmt.Errorf("feed candidate %s: unknown looking_for %q", p.ID, rawLookingFor)
		}
		p.LookingFor = parsed
		items = append(items, p)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate feed candidates: %w", rows.Err())
	}

	return items, nil
}

func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}

	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		value := strings.ToLower(strings.TrimSpace(tag))
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}

func floatOrZero(value *float64) float64 {
	if value == nil {
		return 0
	}
	return *value
}
