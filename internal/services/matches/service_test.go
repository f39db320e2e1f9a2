package matches

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Fumiyasu01/matching-app/internal/domain/model"
	"github.com/Fumiyasu01/matching-app/internal/repo/storage"
)

type stubMatchStore struct {
	matches   map[uuid.UUID]model.Match
	summaries []storage.MatchSummary
	listErr   error
}

func (s *stubMatchStore) GetByID(ctx context.Context, id uuid.UUID) (model.Match, error) {
	m, ok := s.matches[id]
	if !ok {
		return model.Match{}, storage.ErrMatchNotFound
	}
	return m, nil
}

func (s *stubMatchStore) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]storage.MatchSummary, error) {
	return s.summaries, s.listErr
}

type stubSigner struct{}

func (stubSigner) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "https://cdn.example/" + key, nil
}

func TestListMatchesValidation(t *testing.T) {
	svc := NewService(&stubMatchStore{}, nil)

	if _, err := svc.ListMatches(context.Background(), uuid.Nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestListMatchesSignsPartnerAvatars(t *testing.T) {
	viewer := uuid.New()
	store := &stubMatchStore{summaries: []storage.MatchSummary{
		{Match: model.Match{ID: uuid.New()}, Partner: model.Profile{ID: uuid.New(), AvatarKey: "avatars/p.jpg"}},
		{Match: model.Match{ID: uuid.New()}, Partner: model.Profile{ID: uuid.New()}},
	}}
	svc := NewService(store, stubSigner{})

	got, err := svc.ListMatches(context.Background(), viewer)
	if err != nil {
		t.Fatalf("list matches: %v", err)
	}
	if got[0].Partner.AvatarURL == nil || *got[0].Partner.AvatarURL != "https://cdn.example/avatars/p.jpg" {
		t.Fatalf("partner avatar not signed")
	}
	if got[1].Partner.AvatarURL != nil {
		t.Fatalf("partner without avatar key must stay unsigned")
	}
}

func TestGetMatchForViewer(t *testing.T) {
	viewer := uuid.New()
	partner := uuid.New()
	outsider := uuid.New()
	userA, userB := model.CanonicalPair(viewer, partner)
	match := model.Match{ID: uuid.New(), UserAID: userA, UserBID: userB}
	store := &stubMatchStore{matches: map[uuid.UUID]model.Match{match.ID: match}}
	svc := NewService(store, nil)
	ctx := context.Background()

	got, err := svc.GetMatchForViewer(ctx, match.ID, viewer)
	if err != nil {
		t.Fatalf("get match: %v", err)
	}
	if got.ID != match.ID {
		t.Fatalf("match id mismatch")
	}

	if _, err := svc.GetMatchForViewer(ctx, match.ID, outsider); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for outsider, got %v", err)
	}

	if _, err := svc.GetMatchForViewer(ctx, uuid.New(), viewer); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
