package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/Fumiyasu01/matching-app/internal/domain/enums"
)

// AvailabilitySlot is an offer a profile publishes: a date, a rough
// time of day and what kind of engagement the owner is open to.
type AvailabilitySlot struct {
	ID          uuid.UUID          `json:"id"`
	UserID      uuid.UUID          `json:"user_id"`
	Date        time.Time          `json:"date"`
	TimeSlot    enums.TimeSlot     `json:"time_slot"`
	TimeDetail  string             `json:"time_detail,omitempty"`
	Type        enums.LookingFor   `json:"type"`
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Location    enums.SlotLocation `json:"location"`
	Area        string             `json:"area,omitempty"`
	Status      enums.SlotStatus   `json:"status"`
	CreatedAt   time.Time          `json:"created_at"`
}
