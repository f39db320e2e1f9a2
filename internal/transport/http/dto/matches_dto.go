package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/Fumiyasu01/matching-app/internal/domain/model"
)

type MatchItemResponse struct {
	ID          uuid.UUID      `json:"id"`
	Partner     model.Profile  `json:"partner"`
	LastMessage *model.Message `json:"last_message,omitempty"`
	UnreadCount int            `json:"unread_count"`
	CreatedAt   time.Time      `json:"created_at"`
}

type MatchesResponse struct {
	Items []MatchItemResponse `json:"items"`
}
