package dto

import (
	"github.com/google/uuid"

	"github.com/Fumiyasu01/matching-app/internal/domain/model"
)

type BlockRequest struct {
	TargetID uuid.UUID `json:"target_id"`
}

type ReportRequest struct {
	TargetID    uuid.UUID `json:"target_id"`
	Reason      string    `json:"reason"`
	Description string    `json:"description,omitempty"`
}

type BlockedListResponse struct {
	Items []model.Profile `json:"items"`
}
