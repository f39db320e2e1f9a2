package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/Fumiyasu01/matching-app/internal/domain/enums"
	"github.com/Fumiyasu01/matching-app/internal/domain/model"
	authsvc "github.com/Fumiyasu01/matching-app/internal/services/auth"
	feedsvc "github.com/Fumiyasu01/matching-app/internal/services/feed"
	"github.com/Fumiyasu01/matching-app/internal/transport/http/dto"
	httperrors "github.com/Fumiyasu01/matching-app/internal/transport/http/errors"
)

type FeedHandler struct {
	service *feedsvc.Service
}

func NewFeedHandler(service *feedsvc.Service) *FeedHandler {
	return &FeedHandler{service: service}
}

// Handle serves GET /v1/feed. Filters travel as query params because
// the client re-sends them on every request and nothing is persisted.
func (h *FeedHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "FEED_SERVICE_UNAVAILABLE", "feed service is unavailable")
		return
	}

	filters, err := filtersFromQuery(r)
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
		return
	}

	items, err := h.service.BuildFeed(r.Context(), identity.UserID, filters)
	if err != nil {
		switch {
		case errors.Is(err, feedsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid feed request")
		case errors.Is(err, feedsvc.ErrNotFound):
			writeNotFound(w, "PROFILE_NOT_FOUND", "viewer profile not found")
		default:
			writeUnavailable(w, "TEMP_UNAVAILABLE", "failed to build feed")
		}
		return
	}

	if items == nil {
		items = []model.Profile{}
	}
	httperrors.Write(w, http.StatusOK, dto.FeedResponse{Items: items})
}

func filtersFromQuery(r *http.Request) (model.DiscoverFilters, error) {
	var filters model.DiscoverFilters

	for _, raw := range splitCSV(r.URL.Query().Get("looking_for")) {
		parsed, ok := enums.ParseLookingFor(raw)
		if !ok {
			return model.DiscoverFilters{}, errors.New("unknown looking_for value: " + raw)
		}
		filters.LookingFor = append(filters.LookingFor, parsed)
	}

	filters.Skills = splitCSV(r.URL.Query().Get("skills"))

	if raw := strings.TrimSpace(r.URL.Query().Get("max_distance_km")); raw != "" {
		km, err := strconv.ParseFloat(raw, 64)
		// ParseFloat accepts "NaN" and "Inf"; neither is a distance.
		if err != nil || math.IsNaN(km) || math.IsInf(km, 0) {
			return model.DiscoverFilters{}, errors.New("max_distance_km must be a finite number")
		}
		filters.MaxDistanceKM = &km
	}

	return filters, nil
}

func splitCSV(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
