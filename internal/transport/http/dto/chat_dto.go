package dto

import (
	"github.com/Fumiyasu01/matching-app/internal/domain/model"
	chatsvc "github.com/Fumiyasu01/matching-app/internal/services/chat"
)

type SendMessageRequest struct {
	Content        string `json:"content"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

type MessagesResponse struct {
	Items  []chatsvc.MessageView `json:"items"`
	Groups []chatsvc.DayGroup    `json:"groups"`
}

type PartnerResponse struct {
	Partner model.Profile `json:"partner"`
	Typing  bool          `json:"typing"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}
