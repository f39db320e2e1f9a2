package matches

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Fumiyasu01/matching-app/internal/domain/model"
	"github.com/Fumiyasu01/matching-app/internal/repo/storage"
)

const (
	defaultListLimit = 100
	avatarURLTTL     = 5 * time.Minute
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
)

type MatchStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (model.Match, error)
	ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]storage.MatchSummary, error)
}

type AvatarSigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type Service struct {
	store  MatchStore
	signer AvatarSigner
	now    func() time.Time
}

func NewService(store MatchStore, signer AvatarSigner) *Service {
	return &Service{
		store:  store,
		signer: signer,
		now:    time.Now,
	}
}

// ListMatches returns the viewer's matches newest first with partner
// summary, last message preview and unread count.
func (s *Service) ListMatches(ctx context.Context, viewerID uuid.UUID) ([]storage.MatchSummary, error) {
	if viewerID == uuid.Nil {
		return nil, ErrValidation
	}
	if s.store == nil {
		return nil, fmt.Errorf("match store is not configured")
	}

	summaries, err := s.store.ListForUser(ctx, viewerID, defaultListLimit)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	if s.signer != nil {
		for i := range summaries {
			if summaries[i].Partner.AvatarKey == "" {
				continue
			}
			signed, err := s.signer.PresignGet(ctx, summaries[i].Partner.AvatarKey, avatarURLTTL)
			if err != nil {
				continue
			}
			summaries[i].Partner.AvatarURL = &signed
		}
	}

	return summaries, nil
}

// GetMatchForViewer loads the match and enforces that the viewer is a
// participant. A match that exists but belongs to other users is
// forbidden, not hidden, because match ids are not secret.
func (s *Service) GetMatchForViewer(ctx context.Context, matchID, viewerID uuid.UUID) (model.Match, error) {
	if matchID == uuid.Nil || viewerID == uuid.Nil {
		return model.Match{}, ErrValidation
	}
	if s.store == nil {
		return model.Match{}, fmt.Errorf("match store is not configured")
	}

	match, err := s.store.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, storage.ErrMatchNotFound) {
			return model.Match{}, ErrNotFound
		}
		return model.Match{}, fmt.Errorf("get match: %w", err)
	}
	if !match.HasUser(viewerID) {
		return model.Match{}, ErrForbidden
	}

	return match, nil
}
