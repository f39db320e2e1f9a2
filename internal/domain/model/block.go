package model

import (
	"time"

	"github.com/google/uuid"
)

type BlockRecord struct {
	BlockerID uuid.UUID `json:"blocker_id"`
	BlockedID uuid.UUID `json:"blocked_id"`
	CreatedAt time.Time `json:"created_at"`
}
