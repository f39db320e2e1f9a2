package dto

import (
	"github.com/google/uuid"

	"github.com/Fumiyasu01/matching-app/internal/domain/model"
)

type SwipeRequest struct {
	TargetID uuid.UUID `json:"target_id"`
	Action   string    `json:"action"`
}

type SwipeResponse struct {
	OK             bool           `json:"ok"`
	Matched        bool           `json:"matched"`
	Match          *model.Match   `json:"match,omitempty"`
	MatchedProfile *model.Profile `json:"matched_profile,omitempty"`
}
