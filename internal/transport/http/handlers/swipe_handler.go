package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/Fumiyasu01/matching-app/internal/domain/enums"
	authsvc "github.com/Fumiyasu01/matching-app/internal/services/auth"
	swipesvc "github.com/Fumiyasu01/matching-app/internal/services/swipes"
	"github.com/Fumiyasu01/matching-app/internal/transport/http/dto"
	httperrors "github.com/Fumiyasu01/matching-app/internal/transport/http/errors"
)

type SwipeHandler struct {
	service *swipesvc.Service
}

func NewSwipeHandler(service *swipesvc.Service) *SwipeHandler {
	return &SwipeHandler{service: service}
}

func (h *SwipeHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "SWIPE_SERVICE_UNAVAILABLE", "swipe service is unavailable")
		return
	}

	var req dto.SwipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if req.TargetID == uuid.Nil {
		writeBadRequest(w, "VALIDATION_ERROR", "target_id is required")
		return
	}
	action, ok := enums.ParseSwipeAction(req.Action)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "action must be like or pass")
		return
	}

	result, err := h.service.Swipe(r.Context(), identity.UserID, req.TargetID, action)
	if err != nil {
		var tooFast swipesvc.TooFastError
		switch {
		case errors.Is(err, swipesvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid swipe request")
		case errors.Is(err, swipesvc.ErrNotFound):
			writeNotFound(w, "PROFILE_NOT_FOUND", "swipe target not found")
		case errors.Is(err, swipesvc.ErrForbidden):
			writeForbidden(w, "BLOCKED", "you cannot interact with this user")
		case errors.Is(err, swipesvc.ErrDuplicate):
			writeConflict(w, "ALREADY_SWIPED", "this profile was already swiped")
		case errors.As(err, &tooFast):
			writeRateLimited(w, "TOO_FAST", "too many swipes, slow down", tooFast.RetryAfter)
		default:
			writeUnavailable(w, "TEMP_UNAVAILABLE", "failed to process swipe")
		}
		return
	}

	resp := dto.SwipeResponse{OK: true, Matched: result.Matched}
	if result.Matched {
		resp.Match = result.Match
		resp.MatchedProfile = result.MatchedProfile
	}
	httperrors.Write(w, http.StatusOK, resp)
}
