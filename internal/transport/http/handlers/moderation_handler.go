package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/Fumiyasu01/matching-app/internal/domain/enums"
	"github.com/Fumiyasu01/matching-app/internal/domain/model"
	authsvc "github.com/Fumiyasu01/matching-app/internal/services/auth"
	modsvc "github.com/Fumiyasu01/matching-app/internal/services/moderation"
	"github.com/Fumiyasu01/matching-app/internal/transport/http/dto"
	httperrors "github.com/Fumiyasu01/matching-app/internal/transport/http/errors"
)

type ModerationHandler struct {
	service *modsvc.Service
}

func NewModerationHandler(service *modsvc.Service) *ModerationHandler {
	return &ModerationHandler{service: service}
}

func (h *ModerationHandler) Block(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MODERATION_SERVICE_UNAVAILABLE", "moderation service is unavailable")
		return
	}

	var req dto.BlockRequest
	if err := decodeJSON(r, &req); err != nil || req.TargetID == uuid.Nil {
		writeBadRequest(w, "VALIDATION_ERROR", "target_id is required")
		return
	}

	if err := h.service.Block(r.Context(), identity.UserID, req.TargetID); err != nil {
		switch {
		case errors.Is(err, modsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid block request")
		case errors.Is(err, modsvc.ErrNotFound):
			writeNotFound(w, "PROFILE_NOT_FOUND", "block target not found")
		default:
			writeUnavailable(w, "TEMP_UNAVAILABLE", "failed to block user")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *ModerationHandler) Unblock(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MODERATION_SERVICE_UNAVAILABLE", "moderation service is unavailable")
		return
	}

	var req dto.BlockRequest
	if err := decodeJSON(r, &req); err != nil || req.TargetID == uuid.Nil {
		writeBadRequest(w, "VALIDATION_ERROR", "target_id is required")
		return
	}

	if err := h.service.Unblock(r.Context(), identity.UserID, req.TargetID); err != nil {
		switch {
		case errors.Is(err, modsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid unblock request")
		default:
			writeUnavailable(w, "TEMP_UNAVAILABLE", "failed to unblock user")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *ModerationHandler) Report(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MODERATION_SERVICE_UNAVAILABLE", "moderation service is unavailable")
		return
	}

	var req dto.ReportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	reason, ok := enums.ParseReportReason(req.Reason)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "unknown report reason")
		return
	}

	if err := h.service.Report(r.Context(), identity.UserID, req.TargetID, reason, req.Description); err != nil {
		var tooMany modsvc.TooManyReportsError
		switch {
		case errors.Is(err, modsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid report request")
		case errors.Is(err, modsvc.ErrNotFound):
			writeNotFound(w, "PROFILE_NOT_FOUND", "report target not found")
		case errors.As(err, &tooMany):
			writeRateLimited(w, "TOO_MANY_REPORTS", "report limit reached, try again later", tooMany.RetryAfter)
		default:
			writeUnavailable(w, "TEMP_UNAVAILABLE", "failed to submit report")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *ModerationHandler) ListBlocked(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MODERATION_SERVICE_UNAVAILABLE", "moderation service is unavailable")
		return
	}

	items, err := h.service.ListBlocked(r.Context(), identity.UserID)
	if err != nil {
		switch {
		case errors.Is(err, modsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid request")
		default:
			writeUnavailable(w, "TEMP_UNAVAILABLE", "failed to load blocked users")
		}
		return
	}

	if items == nil {
		items = []model.Profile{}
	}
	httperrors.Write(w, http.StatusOK, dto.BlockedListResponse{Items: items})
}
