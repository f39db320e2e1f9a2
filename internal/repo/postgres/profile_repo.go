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

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

const profileColumns = `
	id,
	display_name,
	COALESCE(bio, ''),
	COALESCE(location, ''),
	location_lat,
	location_lon,
	looking_for,
	COALESCE(skills, '{}'),
	COALESCE(interests, '{}'),
	COALESCE(avatar_key, ''),
	created_at,
	updated_at
`

func scanProfile(row pgx.Row) (model.Profile, error) {
	var p model.Profile
	var lookingFor string
	err := row.Scan(
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
	)
	if err != nil {
		return model.Profile{}, err
	}

	parsed, ok := enums.ParseLookingFor(lookingFor)
	if !ok {
		return model.Profile{}, fmt.Errorf("profile %s: unknown looking_for %q", p.ID, lookingFor)
	}
	p.LookingFor = parsed

	return p, nil
}

func (r *ProfileRepo) Get(ctx context.Context, id uuid.UUID) (model.Profile, error) {
	if r.pool == nil {
		return model.Profile{}, fmt.Errorf("postgres pool is nil")
	}

	profile, err := scanProfile(r.pool.QueryRow(ctx, `
SELECT `+profileColumns+`
FROM profiles
WHERE id = $1
LIMIT 1
`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, storage.ErrProfileNotFound
		}
		return model.Profile{}, fmt.Errorf("get profile: %w", err)
	}

	return profile, nil
}

func (r *ProfileRepo) Update(ctx context.Context, p model.Profile, now time.Time) (model.Profile, error) {
	if r.pool == nil {
		return model.Profile{}, fmt.Errorf("postgres pool is nil")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	updated, err := scanProfile(r.pool.QueryRow(ctx, `
UPDATE profiles SET
	display_name = $2,
	bio = $3,
	location = $4,
	looking_for = $5,
	skills = $6,
	interests = $7,
	avatar_key = $8,
	updated_at = $9
WHERE id = $1
RETURNING `+profileColumns+`
`,
		p.ID,
		p.DisplayName,
		p.Bio,
		p.Location,
		p.LookingFor.String(),
		p.Skills,
		p.Interests,
		p.AvatarKey,
		now.UTC(),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, storage.ErrProfileNotFound
		}
		return model.Profile{}, fmt.Errorf("update profile: %w", err)
	}

	return updated, nil
}

func (r *ProfileRepo) UpdateLocation(ctx context.Context, id uuid.UUID, lat, lon float64, now time.Time) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE profiles SET
	location_lat = $2,
	location_lon = $3,
	updated_at = $4
WHERE id = $1
`, id, lat, lon, now.UTC())
	if err != nil {
		return fmt.Errorf("update profile location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrProfileNotFound
	}

	return nil
}

// GetMany returns the profiles for the given ids, keyed by id. Missing
// ids are simply absent from the result.
func (r *ProfileRepo) GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Profile, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if len(ids) == 0 {
		return map[uuid.UUID]model.Profile{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+profileColumns+`
FROM profiles
WHERE id = ANY($1)
`, ids)
	if err != nil {
		return nil, fmt.Errorf("get profiles: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID]model.Profile, len(ids))
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		out[profile.ID] = profile
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate profiles: %w", rows.Err())
	}

	return out, nil
}
