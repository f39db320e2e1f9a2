package swipes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Fumiyasu01/matching-app/internal/domain/enums"
	"github.com/Fumiyasu01/matching-app/internal/domain/model"
	"github.com/Fumiyasu01/matching-app/internal/repo/storage"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrDuplicate  = errors.New("swipe already recorded")
)

// TooFastError carries the remaining window so the handler can set
// Retry-After.
type TooFastError struct {
	RetryAfter time.Duration
}

func (e TooFastError) Error() string {
	return fmt.Sprintf("too many swipes, retry after %s", e.RetryAfter)
}

type SwipeStore interface {
	RecordSwipe(ctx context.Context, swiperID, swipedID uuid.UUID, action enums.SwipeAction, now time.Time) (storage.SwipeOutcome, error)
}

type ProfileStore interface {
	Get(ctx context.Context, id uuid.UUID) (model.Profile, error)
}

type BlockStore interface {
	IsBlockedEither(ctx context.Context, a, b uuid.UUID) (bool, error)
}

type RateLimiter interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

type Config struct {
	BurstLimit  int
	BurstWindow time.Duration
}

type Result struct {
	Matched        bool
	Match          *model.Match
	MatchedProfile *model.Profile
}

type Service struct {
	swipeStore  SwipeStore
	profiles    ProfileStore
	blocks      BlockStore
	rateLimiter RateLimiter
	rateKey     func(uuid.UUID) string
	cfg         Config
	now         func() time.Time
}

type Dependencies struct {
	SwipeStore  SwipeStore
	Profiles    ProfileStore
	Blocks      BlockStore
	RateLimiter RateLimiter
	RateKey     func(uuid.UUID) string
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.BurstLimit <= 0 {
		cfg.BurstLimit = 12
	}
	if cfg.BurstWindow <= 0 {
		cfg.BurstWindow = 10 * time.Second
	}

	return &Service{
		swipeStore:  deps.SwipeStore,
		profiles:    deps.Profiles,
		blocks:      deps.Blocks,
		rateLimiter: deps.RateLimiter,
		rateKey:     deps.RateKey,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Swipe records the action and reports whether it completed a match.
// Swiping the same target twice is a conflict, not a silent no-op, so
// the client learns its local state has drifted.
func (s *Service) Swipe(ctx context.Context, swiperID, targetID uuid.UUID, action enums.SwipeAction) (Result, error) {
	if swiperID == uuid.Nil || targetID == uuid.Nil || swiperID == targetID {
		return Result{}, ErrValidation
	}
	if s.swipeStore == nil || s.profiles == nil {
		return Result{}, fmt.Errorf("swipe dependencies are not configured")
	}

	target, err := s.profiles.Get(ctx, targetID)
	if err != nil {
		if errors.Is(err, storage.ErrProfileNotFound) {
			return Result{}, ErrNotFound
		}
		return Result{}, fmt.Errorf("load target profile: %w", err)
	}

	if s.blocks != nil {
		blocked, err := s.blocks.IsBlockedEither(ctx, swiperID, targetID)
		if err != nil {
			return Result{}, fmt.Errorf("check block state: %w", err)
		}
		if blocked {
			return Result{}, ErrForbidden
		}
	}

	if s.rateLimiter != nil && s.rateKey != nil {
		count, ttl, err := s.rateLimiter.IncrementWindow(ctx, s.rateKey(swiperID), s.cfg.BurstWindow)
		if err != nil {
			return Result{}, fmt.Errorf("apply swipe rate limiter: %w", err)
		}
		if count > int64(s.cfg.BurstLimit) {
			return Result{}, TooFastError{RetryAfter: ttl}
		}
	}

	outcome, err := s.swipeStore.RecordSwipe(ctx, swiperID, targetID, action, s.now().UTC())
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateSwipe) {
			return Result{}, ErrDuplicate
		}
		return Result{}, fmt.Errorf("record swipe: %w", err)
	}

	result := Result{}
	if outcome.Match != nil {
		result.Matched = true
		result.Match = outcome.Match
		result.MatchedProfile = &target
	}

	return result, nil
}
