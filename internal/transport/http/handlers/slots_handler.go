package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/Fumiyasu01/matching-app/internal/domain/enums"
	authsvc "github.com/Fumiyasu01/matching-app/internal/services/auth"
	profilesvc "github.com/Fumiyasu01/matching-app/internal/services/profiles"
	"github.com/Fumiyasu01/matching-app/internal/transport/http/dto"
	httperrors "github.com/Fumiyasu01/matching-app/internal/transport/http/errors"
)

const slotDateLayout = "2006-01-02"

func slotInputFromRequest(req dto.SlotRequest) (profilesvc.SlotInput, string) {
	date, err := time.Parse(slotDateLayout, req.Date)
	if err != nil {
		return profilesvc.SlotInput{}, "date must use the YYYY-MM-DD form"
	}
	timeSlot, ok := enums.ParseTimeSlot(req.TimeSlot)
	if !ok {
		return profilesvc.SlotInput{}, "unknown time_slot value"
	}
	slotType, ok := enums.ParseLookingFor(req.Type)
	if !ok {
		return profilesvc.SlotInput{}, "unknown type value"
	}
	location, ok := enums.ParseSlotLocation(req.Location)
	if !ok {
		return profilesvc.SlotInput{}, "unknown location value"
	}
	status := enums.SlotStatusOpen
	if req.Status != "" {
		if status, ok = enums.ParseSlotStatus(req.Status); !ok {
			return profilesvc.SlotInput{}, "unknown status value"
		}
	}

	return profilesvc.SlotInput{
		Date:        date,
		TimeSlot:    timeSlot,
		TimeDetail:  req.TimeDetail,
		Type:        slotType,
		Title:       req.Title,
		Description: req.Description,
		Location:    location,
		Area:        req.Area,
		Status:      status,
	}, ""
}

// ListSlots returns the caller's own slots, closed ones included.
func (h *ProfileHandler) ListSlots(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	slots, err := h.service.ListSlots(r.Context(), identity.UserID)
	if err != nil {
		writeSlotError(w, err, "failed to list availability slots")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.SlotsResponse{Items: slots})
}

// ListProfileSlots returns another profile's open slots.
func (h *ProfileHandler) ListProfileSlots(w http.ResponseWriter, r *http.Request) {
	if _, ok := authsvc.IdentityFromContext(r.Context()); !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}
	profileID, ok := uuidParam(r, "profileID")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid profile id")
		return
	}

	slots, err := h.service.ListOpenSlots(r.Context(), profileID)
	if err != nil {
		if errors.Is(err, profilesvc.ErrNotFound) {
			writeNotFound(w, "PROFILE_NOT_FOUND", "profile not found")
			return
		}
		writeSlotError(w, err, "failed to list availability slots")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.SlotsResponse{Items: slots})
}

func (h *ProfileHandler) AddSlot(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	var req dto.SlotRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	input, msg := slotInputFromRequest(req)
	if msg != "" {
		writeBadRequest(w, "VALIDATION_ERROR", msg)
		return
	}

	slot, err := h.service.AddSlot(r.Context(), identity.UserID, input)
	if err != nil {
		writeSlotError(w, err, "failed to add availability slot")
		return
	}

	httperrors.Write(w, http.StatusCreated, slot)
}

func (h *ProfileHandler) UpdateSlot(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}
	slotID, ok := uuidParam(r, "slotID")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid slot id")
		return
	}

	var req dto.SlotRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	input, msg := slotInputFromRequest(req)
	if msg != "" {
		writeBadRequest(w, "VALIDATION_ERROR", msg)
		return
	}

	slot, err := h.service.UpdateSlot(r.Context(), identity.UserID, slotID, input)
	if err != nil {
		writeSlotError(w, err, "failed to update availability slot")
		return
	}

	httperrors.Write(w, http.StatusOK, slot)
}

func (h *ProfileHandler) DeleteSlot(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}
	slotID, ok := uuidParam(r, "slotID")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid slot id")
		return
	}

	if err := h.service.DeleteSlot(r.Context(), identity.UserID, slotID); err != nil {
		writeSlotError(w, err, "failed to delete availability slot")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func writeSlotError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, profilesvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid availability slot request")
	case errors.Is(err, profilesvc.ErrNotFound):
		writeNotFound(w, "SLOT_NOT_FOUND", "availability slot not found")
	case errors.Is(err, profilesvc.ErrForbidden):
		writeForbidden(w, "NOT_SLOT_OWNER", "only the owner can change a slot")
	default:
		writeUnavailable(w, "TEMP_UNAVAILABLE", fallback)
	}
}
