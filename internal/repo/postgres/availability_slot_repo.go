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

type AvailabilitySlotRepo struct {
	pool *pgxpool.Pool
}

func NewAvailabilitySlotRepo(pool *pgxpool.Pool) *AvailabilitySlotRepo {
	return &AvailabilitySlotRepo{pool: pool}
}

const slotColumns = `
	id,
	user_id,
	slot_date,
	time_slot,
	COALESCE(time_detail, ''),
	slot_type,
	title,
	COALESCE(description, ''),
	location,
	COALESCE(area, ''),
	status,
	created_at
`

func scanSlot(row pgx.Row) (model.AvailabilitySlot, error) {
	var slot model.AvailabilitySlot
	var timeSlot, slotType, location, status string
	err := row.Scan(
		&slot.ID,
		&slot.UserID,
		&slot.Date,
		&timeSlot,
		&slot.TimeDetail,
		&slotType,
		&slot.Title,
		&slot.Description,
		&location,
		&slot.Area,
		&status,
		&slot.CreatedAt,
	)
	if err != nil {
		return model.AvailabilitySlot{}, err
	}

	var ok bool
	if slot.TimeSlot, ok = enums.ParseTimeSlot(timeSlot); !ok {
		return model.AvailabilitySlot{}, fmt.Errorf("slot %s: unknown time slot %q", slot.ID, timeSlot)
	}
	if slot.Type, ok = enums.ParseLookingFor(slotType); !ok {
		return model.AvailabilitySlot{}, fmt.Errorf("slot %s: unknown type %q", slot.ID, slotType)
	}
	if slot.Location, ok = enums.ParseSlotLocation(location); !ok {
		return model.AvailabilitySlot{}, fmt.Errorf("slot %s: unknown location %q", slot.ID, location)
	}
	if slot.Status, ok = enums.ParseSlotStatus(status); !ok {
		return model.AvailabilitySlot{}, fmt.Errorf("slot %s: unknown status %q", slot.ID, status)
	}

	return slot, nil
}

func (r *AvailabilitySlotRepo) GetSlot(ctx context.Context, id uuid.UUID) (model.AvailabilitySlot, error) {
	if r.pool == nil {
		return model.AvailabilitySlot{}, fmt.Errorf("postgres pool is nil")
	}

	slot, err := scanSlot(r.pool.QueryRow(ctx, `
SELECT `+slotColumns+`
FROM availability_slots
WHERE id = $1
`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.AvailabilitySlot{}, storage.ErrSlotNotFound
		}
		return model.AvailabilitySlot{}, fmt.Errorf("get slot: %w", err)
	}

	return slot, nil
}

func (r *AvailabilitySlotRepo) ListSlotsByUser(ctx context.Context, userID uuid.UUID) ([]model.AvailabilitySlot, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+slotColumns+`
FROM availability_slots
WHERE user_id = $1
ORDER BY slot_date ASC, created_at ASC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	slots := make([]model.AvailabilitySlot, 0)
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, slot)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate slots: %w", rows.Err())
	}

	return slots, nil
}

func (r *AvailabilitySlotRepo) InsertSlot(ctx context.Context, slot model.AvailabilitySlot, now time.Time) (model.AvailabilitySlot, error) {
	if r.pool == nil {
		return model.AvailabilitySlot{}, fmt.Errorf("postgres pool is nil")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}
	slot.CreatedAt = now.UTC()

	if _, err := r.pool.Exec(ctx, `
INSERT INTO availability_slots (
	id,
	user_id,
	slot_date,
	time_slot,
	time_detail,
	slot_type,
	title,
	description,
	location,
	area,
	status,
	created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`,
		slot.ID,
		slot.UserID,
		slot.Date,
		slot.TimeSlot.String(),
		slot.TimeDetail,
		slot.Type.String(),
		slot.Title,
		slot.Description,
		slot.Location.String(),
		slot.Area,
		slot.Status.String(),
		slot.CreatedAt,
	); err != nil {
		return model.AvailabilitySlot{}, fmt.Errorf("insert slot: %w", err)
	}

	return slot, nil
}

func (r *AvailabilitySlotRepo) UpdateSlot(ctx context.Context, slot model.AvailabilitySlot) (model.AvailabilitySlot, error) {
	if r.pool == nil {
		return model.AvailabilitySlot{}, fmt.Errorf("postgres pool is nil")
	}

	updated, err := scanSlot(r.pool.QueryRow(ctx, `
UPDATE availability_slots
SET
	slot_date = $2,
	time_slot = $3,
	time_detail = $4,
	slot_type = $5,
	title = $6,
	description = $7,
	location = $8,
	area = $9,
	status = $10
WHERE id = $1
RETURNING `+slotColumns+`
`,
		slot.ID,
		slot.Date,
		slot.TimeSlot.String(),
		slot.TimeDetail,
		slot.Type.String(),
		slot.Title,
		slot.Description,
		slot.Location.String(),
		slot.Area,
		slot.Status.String(),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.AvailabilitySlot{}, storage.ErrSlotNotFound
		}
		return model.AvailabilitySlot{}, fmt.Errorf("update slot: %w", err)
	}

	return updated, nil
}

func (r *AvailabilitySlotRepo) DeleteSlot(ctx context.Context, id uuid.UUID) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
DELETE FROM availability_slots
WHERE id = $1
`, id)
	if err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrSlotNotFound
	}

	return nil
}
