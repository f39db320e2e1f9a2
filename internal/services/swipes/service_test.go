package swipes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Fumiyasu01/matching-app/internal/domain/enums"
	"github.com/Fumiyasu01/matching-app/internal/domain/model"
	redrepo "github.com/Fumiyasu01/matching-app/internal/repo/redis"
	"github.com/Fumiyasu01/matching-app/internal/repo/storage"
)

type stubSwipeStore struct {
	outcome storage.SwipeOutcome
	err     error
	calls   int
}

func (s *stubSwipeStore) RecordSwipe(ctx context.Context, swiperID, swipedID uuid.UUID, action enums.SwipeAction, now time.Time) (storage.SwipeOutcome, error) {
	s.calls++
	return s.outcome, s.err
}

type stubProfileStore struct {
	profiles map[uuid.UUID]model.Profile
}

func (s *stubProfileStore) Get(ctx context.Context, id uuid.UUID) (model.Profile, error) {
	p, ok := s.profiles[id]
	if !ok {
		return model.Profile{}, storage.ErrProfileNotFound
	}
	return p, nil
}

type stubBlockStore struct {
	blocked bool
}

func (s *stubBlockStore) IsBlockedEither(ctx context.Context, a, b uuid.UUID) (bool, error) {
	return s.blocked, nil
}

func newTestService(t *testing.T, store *stubSwipeStore, profiles *stubProfileStore, blocks *stubBlockStore) *Service {
	t.Helper()
	deps := Dependencies{
		SwipeStore: store,
		Profiles:   profiles,
	}
	// Assigning a nil *stubBlockStore directly would make the interface
	// non-nil and the service would call through it.
	if blocks != nil {
		deps.Blocks = blocks
	}
	return NewService(deps, Config{})
}

func TestSwipeValidation(t *testing.T) {
	svc := newTestService(t, &stubSwipeStore{}, &stubProfileStore{}, nil)
	ctx := context.Background()
	id := uuid.New()

	if _, err := svc.Swipe(ctx, uuid.Nil, id, enums.SwipeActionLike); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for nil swiper, got %v", err)
	}
	if _, err := svc.Swipe(ctx, id, id, enums.SwipeActionLike); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for self swipe, got %v", err)
	}
}

func TestSwipeTargetNotFound(t *testing.T) {
	svc := newTestService(t, &stubSwipeStore{}, &stubProfileStore{profiles: map[uuid.UUID]model.Profile{}}, nil)

	if _, err := svc.Swipe(context.Background(), uuid.New(), uuid.New(), enums.SwipeActionLike); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSwipeBlockedPair(t *testing.T) {
	target := uuid.New()
	svc := newTestService(t,
		&stubSwipeStore{},
		&stubProfileStore{profiles: map[uuid.UUID]model.Profile{target: {ID: target}}},
		&stubBlockStore{blocked: true},
	)

	if _, err := svc.Swipe(context.Background(), uuid.New(), target, enums.SwipeActionLike); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestSwipeDuplicateConflict(t *testing.T) {
	target := uuid.New()
	svc := newTestService(t,
		&stubSwipeStore{err: storage.ErrDuplicateSwipe},
		&stubProfileStore{profiles: map[uuid.UUID]model.Profile{target: {ID: target}}},
		nil,
	)

	if _, err := svc.Swipe(context.Background(), uuid.New(), target, enums.SwipeActionLike); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestSwipeMatchCarriesProfile(t *testing.T) {
	swiper := uuid.New()
	target := uuid.New()
	userA, userB := model.CanonicalPair(swiper, target)
	match := model.Match{ID: uuid.New(), UserAID: userA, UserBID: userB, CreatedAt: time.Now().UTC()}
	svc := newTestService(t,
		&stubSwipeStore{outcome: storage.SwipeOutcome{
			Swipe: &model.Swipe{ID: uuid.New(), SwiperID: swiper, SwipedID: target, Action: enums.SwipeActionLike},
			Match: &match,
		}},
		&stubProfileStore{profiles: map[uuid.UUID]model.Profile{target: {ID: target, DisplayName: "partner"}}},
		nil,
	)

	result, err := svc.Swipe(context.Background(), swiper, target, enums.SwipeActionLike)
	if err != nil {
		t.Fatalf("swipe: %v", err)
	}
	if !result.Matched {
		t.Fatalf("expected matched result")
	}
	if result.Match == nil || result.Match.ID != match.ID {
		t.Fatalf("match not carried through")
	}
	if result.MatchedProfile == nil || result.MatchedProfile.DisplayName != "partner" {
		t.Fatalf("matched profile not carried through")
	}
}

func TestSwipeNoMatchForPass(t *testing.T) {
	target := uuid.New()
	svc := newTestService(t,
		&stubSwipeStore{outcome: storage.SwipeOutcome{
			Swipe: &model.Swipe{ID: uuid.New(), Action: enums.SwipeActionPass},
		}},
		&stubProfileStore{profiles: map[uuid.UUID]model.Profile{target: {ID: target}}},
		nil,
	)

	result, err := svc.Swipe(context.Background(), uuid.New(), target, enums.SwipeActionPass)
	if err != nil {
		t.Fatalf("swipe: %v", err)
	}
	if result.Matched || result.MatchedProfile != nil {
		t.Fatalf("pass must not match: %+v", result)
	}
}

func TestSwipeBurstLimiter(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	redisClient := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer func() { _ = redisClient.Close() }()

	target := uuid.New()
	store := &stubSwipeStore{outcome: storage.SwipeOutcome{Swipe: &model.Swipe{}}}
	svc := NewService(Dependencies{
		SwipeStore:  store,
		Profiles:    &stubProfileStore{profiles: map[uuid.UUID]model.Profile{target: {ID: target}}},
		RateLimiter: redrepo.NewRateRepo(redisClient),
		RateKey:     redrepo.SwipeKey,
	}, Config{BurstLimit: 2, BurstWindow: 10 * time.Second})

	ctx := context.Background()
	swiper := uuid.New()
	for i := 0; i < 2; i++ {
		if _, err := svc.Swipe(ctx, swiper, target, enums.SwipeActionPass); err != nil {
			t.Fatalf("swipe %d: %v", i, err)
		}
	}

	_, err = svc.Swipe(ctx, swiper, target, enums.SwipeActionPass)
	var tooFast TooFastError
	if !errors.As(err, &tooFast) {
		t.Fatalf("expected TooFastError, got %v", err)
	}
	if tooFast.RetryAfter <= 0 {
		t.Fatalf("expected positive retry-after, got %s", tooFast.RetryAfter)
	}
	if store.calls != 2 {
		t.Fatalf("limited swipe must not hit the store, got %d calls", store.calls)
	}
}
