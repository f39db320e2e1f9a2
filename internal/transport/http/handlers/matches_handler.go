package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/Fumiyasu01/matching-app/internal/services/auth"
	matchessvc "github.com/Fumiyasu01/matching-app/internal/services/matches"
	"github.com/Fumiyasu01/matching-app/internal/transport/http/dto"
	httperrors "github.com/Fumiyasu01/matching-app/internal/transport/http/errors"
)

type MatchesHandler struct {
	service *matchessvc.Service
}

func NewMatchesHandler(service *matchessvc.Service) *MatchesHandler {
	return &MatchesHandler{service: service}
}

func (h *MatchesHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCHES_SERVICE_UNAVAILABLE", "matches service is unavailable")
		return
	}

	summaries, err := h.service.ListMatches(r.Context(), identity.UserID)
	if err != nil {
		switch {
		case errors.Is(err, matchessvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid matches request")
		default:
			writeUnavailable(w, "TEMP_UNAVAILABLE", "failed to load matches")
		}
		return
	}

	items := make([]dto.MatchItemResponse, 0, len(summaries))
	for _, s := range summaries {
		items = append(items, dto.MatchItemResponse{
			ID:          s.Match.ID,
			Partner:     s.Partner,
			LastMessage: s.LastMessage,
			UnreadCount: s.UnreadCount,
			CreatedAt:   s.Match.CreatedAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.MatchesResponse{Items: items})
}
