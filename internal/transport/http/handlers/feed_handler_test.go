package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Fumiyasu01/matching-app/internal/repo/memory"
	authsvc "github.com/Fumiyasu01/matching-app/internal/services/auth"
	feedsvc "github.com/Fumiyasu01/matching-app/internal/services/feed"
)

func newFeedHandler(store *memory.Store) *FeedHandler {
	svc := feedsvc.NewService(feedsvc.Dependencies{
		Repo:     store,
		Profiles: store,
	}, feedsvc.Config{})
	return NewFeedHandler(svc)
}

func feedRequest(target string, viewerID uuid.UUID) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return req.WithContext(authsvc.WithIdentity(context.Background(), authsvc.Identity{UserID: viewerID}))
}

func TestFeedHandlerReturnsCandidates(t *testing.T) {
	store := memory.NewStore()
	store.SeedDemo(time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC))
	viewer := uuid.New()
	store.EnsureProfile(viewer, time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC))
	h := newFeedHandler(store)

	rr := httptest.NewRecorder()
	h.Handle(rr, feedRequest("/v1/feed", viewer))
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d body %s", rr.Code, rr.Body.String())
	}

	var payload struct {
		Items []struct {
			ID uuid.UUID `json:"id"`
		} `json:"items"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Items) == 0 {
		t.Fatalf("seeded store should yield feed candidates")
	}
	for _, item := range payload.Items {
		if item.ID == viewer {
			t.Fatalf("feed must not contain the viewer")
		}
	}
}

func TestFeedHandlerRejectsUnknownLookingFor(t *testing.T) {
	store := memory.NewStore()
	viewer := uuid.New()
	store.EnsureProfile(viewer, time.Now().UTC())
	h := newFeedHandler(store)

	rr := httptest.NewRecorder()
	h.Handle(rr, feedRequest("/v1/feed?looking_for=romance", viewer))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestFeedHandlerRejectsBadDistance(t *testing.T) {
	store := memory.NewStore()
	viewer := uuid.New()
	store.EnsureProfile(viewer, time.Now().UTC())
	h := newFeedHandler(store)

	// ParseFloat would happily accept the last three.
	for _, raw := range []string{"far", "NaN", "Inf", "-Inf"} {
		rr := httptest.NewRecorder()
		h.Handle(rr, feedRequest("/v1/feed?max_distance_km="+raw, viewer))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("max_distance_km=%s: got %d want %d", raw, rr.Code, http.StatusBadRequest)
		}
	}
}
