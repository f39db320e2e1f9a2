package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/Fumiyasu01/matching-app/internal/domain/enums"
)

type Report struct {
	ID             uuid.UUID          `json:"id"`
	ReporterID     uuid.UUID          `json:"reporter_id"`
	ReportedUserID uuid.UUID          `json:"reported_user_id"`
	Reason         enums.ReportReason `json:"reason"`
	Description    string             `json:"description,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}
