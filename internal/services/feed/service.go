package feed

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/Fumiyasu01/matching-app/internal/domain/model"
	"github.com/Fumiyasu01/matching-app/internal/repo/storage"
)

const (
	defaultPageSize = 20
	avatarURLTTL    = 5 * time.Minute
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
)

type Repository interface {
	ListCandidates(ctx context.Context, q storage.FeedQuery) ([]model.Profile, error)
}

type ProfileStore interface {
	Get(ctx context.Context, id uuid.UUID) (model.Profile, error)
}

type AvatarSigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type Config struct {
	PageSize      int
	MaxDistanceKM float64
	ReadAttempts  int
}

type Service struct {
	repo     Repository
	profiles ProfileStore
	signer   AvatarSigner
	cfg      Config
	now      func() time.Time
}

type Dependencies struct {
	Repo     Repository
	Profiles ProfileStore
	Signer   AvatarSigner
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.MaxDistanceKM <= 0 {
		cfg.MaxDistanceKM = 500
	}
	if cfg.ReadAttempts <= 0 {
		cfg.ReadAttempts = 2
	}

	return &Service{
		repo:     deps.Repo,
		profiles: deps.Profiles,
		signer:   deps.Signer,
		cfg:      cfg,
		now:      time.Now,
	}
}

// BuildFeed assembles the viewer's discovery page. Storage reads get
// one extra attempt before the failure surfaces; the handler maps
// that failure to a data-unavailable response.
func (s *Service) BuildFeed(ctx context.Context, viewerID uuid.UUID, filters model.DiscoverFilters) ([]model.Profile, error) {
	if viewerID == uuid.Nil {
		return nil, ErrValidation
	}
	if s.repo == nil || s.profiles == nil {
		return nil, fmt.Errorf("feed dependencies are not configured")
	}
	if filters.MaxDistanceKM != nil {
		km := *filters.MaxDistanceKM
		// NaN fails every comparison, so check it apart from the range.
		if math.IsNaN(km) || math.IsInf(km, 0) || km < 0 {
			return nil, ErrValidation
		}
		if *filters.MaxDistanceKM > s.cfg.MaxDistanceKM {
			capped := s.cfg.MaxDistanceKM
			filters.MaxDistanceKM = &capped
		}
	}

	viewer, err := s.profiles.Get(ctx, viewerID)
	if err != nil {
		if errors.Is(err, storage.ErrProfileNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load viewer profile: %w", err)
	}

	query := storage.FeedQuery{
		ViewerID:  viewerID,
		ViewerLat: viewer.LocationLat,
		ViewerLon: viewer.LocationLon,
		Filters:   filters,
		Limit:     s.cfg.PageSize,
	}

	var candidates []model.Profile
	for attempt := 0; attempt < s.cfg.ReadAttempts; attempt++ {
		candidates, err = s.repo.ListCandidates(ctx, query)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("list feed candidates: %w", err)
	}

	s.signAvatars(ctx, candidates)

	return candidates, nil
}

func (s *Service) signAvatars(ctx context.Context, profiles []model.Profile) {
	if s.signer == nil {
		return
	}

	for i := range profiles {
		if profiles[i].AvatarKey == "" {
			continue
		}
		signed, err := s.signer.PresignGet(ctx, profiles[i].AvatarKey, avatarURLTTL)
		if err != nil {
			// A broken avatar link must not take the feed down.
			continue
		}
		profiles[i].AvatarURL = &signed
	}
}
