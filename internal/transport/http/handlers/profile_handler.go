package handlers

import (
	"errors"
	"net/http"

	"github.com/Fumiyasu01/matching-app/internal/domain/enums"
	authsvc "github.com/Fumiyasu01/matching-app/internal/services/auth"
	profilesvc "github.com/Fumiyasu01/matching-app/internal/services/profiles"
	"github.com/Fumiyasu01/matching-app/internal/transport/http/dto"
	httperrors "github.com/Fumiyasu01/matching-app/internal/transport/http/errors"
)

type ProfileHandler struct {
	service *profilesvc.Service
}

func NewProfileHandler(service *profilesvc.Service) *ProfileHandler {
	return &ProfileHandler{service: service}
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	profile, err := h.service.Get(r.Context(), identity.UserID)
	if err != nil {
		writeProfileError(w, err, "failed to load profile")
		return
	}

	httperrors.Write(w, http.StatusOK, profile)
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	var req dto.UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	lookingFor, ok := enums.ParseLookingFor(req.LookingFor)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "unknown looking_for value")
		return
	}

	profile, err := h.service.Update(r.Context(), identity.UserID, profilesvc.UpdateInput{
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		Location:    req.Location,
		LookingFor:  lookingFor,
		Skills:      req.Skills,
		Interests:   req.Interests,
		AvatarKey:   req.AvatarKey,
	})
	if err != nil {
		writeProfileError(w, err, "failed to update profile")
		return
	}

	httperrors.Write(w, http.StatusOK, profile)
}

func (h *ProfileHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	var req dto.UpdateLocationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	if err := h.service.UpdateLocation(r.Context(), identity.UserID, req.Lat, req.Lon); err != nil {
		writeProfileError(w, err, "failed to update location")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func writeProfileError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, profilesvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid profile request")
	case errors.Is(err, profilesvc.ErrNotFound):
		writeNotFound(w, "PROFILE_NOT_FOUND", "profile not found")
	default:
		writeUnavailable(w, "TEMP_UNAVAILABLE", fallback)
	}
}
