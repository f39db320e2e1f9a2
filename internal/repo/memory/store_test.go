package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Fumiyasu01/matching-app/internal/domain/enums"
	"github.com/Fumiyasu01/matching-app/internal/domain/model"
	"github.com/Fumiyasu01/matching-app/internal/repo/storage"
)

func newProfile(id uuid.UUID, name string, lookingFor enums.LookingFor, createdAt time.Time) model.Profile {
	return model.Profile{
		ID:          id,
		DisplayName: name,
		LookingFor:  lookingFor,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

func TestRecordSwipeDuplicate(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	swiper := uuid.New()
	target := uuid.New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if _, err := store.RecordSwipe(ctx, swiper, target, enums.SwipeActionPass, now); err != nil {
		t.Fatalf("first swipe: %v", err)
	}

	_, err := store.RecordSwipe(ctx, swiper, target, enums.SwipeActionLike, now)
	if !errors.Is(err, storage.ErrDuplicateSwipe) {
		t.Fatalf("expected ErrDuplicateSwipe, got %v", err)
	}
}

func TestRecordSwipeMutualLikeCreatesMatch(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	u1 := uuid.New()
	u2 := uuid.New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first, err := store.RecordSwipe(ctx, u1, u2, enums.SwipeActionLike, now)
	if err != nil {
		t.Fatalf("first like: %v", err)
	}
	if first.Match != nil {
		t.Fatalf("one-sided like must not match")
	}

	second, err := store.RecordSwipe(ctx, u2, u1, enums.SwipeActionLike, now)
	if err != nil {
		t.Fatalf("reciprocal like: %v", err)
	}
	if second.Match == nil {
		t.Fatalf("reciprocal like must match")
	}
	if !second.Match.HasUser(u1) || !second.Match.HasUser(u2) {
		t.Fatalf("match has wrong participants: %+v", second.Match)
	}
}

func TestRecordSwipePassNeverMatches(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	u1 := uuid.New()
	u2 := uuid.New()
	now := time.Now().UTC()

	if _, err := store.RecordSwipe(ctx, u1, u2, enums.SwipeActionLike, now); err != nil {
		t.Fatalf("like: %v", err)
	}
	outcome, err := store.RecordSwipe(ctx, u2, u1, enums.SwipeActionPass, now)
	if err != nil {
		t.Fatalf("pass: %v", err)
	}
	if outcome.Match != nil {
		t.Fatalf("pass must not create a match")
	}
}

func TestRecordSwipeConcurrentReciprocalLikes(t *testing.T) {
	for i := 0; i < 50; i++ {
		store := NewStore()
		ctx := context.Background()
		u1 := uuid.New()
		u2 := uuid.New()
		now := time.Now().UTC()

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = store.RecordSwipe(ctx, u1, u2, enums.SwipeActionLike, now)
		}()
		go func() {
			defer wg.Done()
			_, _ = store.RecordSwipe(ctx, u2, u1, enums.SwipeActionLike, now)
		}()
		wg.Wait()

		store.mu.RLock()
		matchCount := len(store.matches)
		store.mu.RUnlock()
		if matchCount > 1 {
			t.Fatalf("run %d: expected at most one match, got %d", i, matchCount)
		}
	}
}

func TestListCandidatesExcludesSwipedAndBlocked(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	viewer := uuid.New()
	swiped := uuid.New()
	blocked := uuid.New()
	blocker := uuid.New()
	visible := uuid.New()

	store.PutProfile(newProfile(viewer, "viewer", enums.LookingForBoth, now))
	store.PutProfile(newProfile(swiped, "swiped", enums.LookingForWork, now.Add(-1*time.Hour)))
	store.PutProfile(newProfile(blocked, "blocked", enums.LookingForWork, now.Add(-2*time.Hour)))
	store.PutProfile(newProfile(blocker, "blocker", enums.LookingForWork, now.Add(-3*time.Hour)))
	store.PutProfile(newProfile(visible, "visible", enums.LookingForWork, now.Add(-4*time.Hour)))

	if _, err := store.RecordSwipe(ctx, viewer, swiped, enums.SwipeActionPass, now); err != nil {
		t.Fatalf("swipe: %v", err)
	}
	if err := store.Upsert(ctx, viewer, blocked, now); err != nil {
		t.Fatalf("block: %v", err)
	}
	if err := store.Upsert(ctx, blocker, viewer, now); err != nil {
		t.Fatalf("reverse block: %v", err)
	}

	got, err := store.ListCandidates(ctx, storage.FeedQuery{ViewerID: viewer, Limit: 20})
	if err != nil {
		t.Fatalf("list candidates: %v", err)
	}
	if len(got) != 1 || got[0].ID != visible {
		t.Fatalf("expected only the visible profile, got %d items", len(got))
	}
}

func TestListCandidatesDistanceBoundaryInclusive(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	now := time.Now().UTC()

	viewer := uuid.New()
	viewerLat, viewerLon := 35.0, 139.0

	// Roughly 1 degree of longitude at this latitude.
	nearLat, nearLon := 35.0, 140.0
	farLat, farLon := 35.0, 142.0

	near := newProfile(uuid.New(), "near", enums.LookingForWork, now)
	near.LocationLat, near.LocationLon = &nearLat, &nearLon
	far := newProfile(uuid.New(), "far", enums.LookingForWork, now)
	far.LocationLat, far.LocationLon = &farLat, &farLon
	noCoords := newProfile(uuid.New(), "nowhere", enums.LookingForWork, now)

	store.PutProfile(near)
	store.PutProfile(far)
	store.PutProfile(noCoords)

	maxKM := 100.0
	got, err := store.ListCandidates(ctx, storage.FeedQuery{
		ViewerID:  viewer,
		ViewerLat: &viewerLat,
		ViewerLon: &viewerLon,
		Filters:   model.DiscoverFilters{MaxDistanceKM: &maxKM},
		Limit:     20,
	})
	if err != nil {
		t.Fatalf("list candidates: %v", err)
	}
	if len(got) != 1 || got[0].ID != near.ID {
		t.Fatalf("expected only the near profile, got %d items", len(got))
	}
}

func TestInsertMessageIdempotencyReplay(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	matchID := uuid.New()
	sender := uuid.New()
	now := time.Now().UTC()

	first, err := store.Insert(ctx, model.Message{
		ID:             uuid.New(),
		MatchID:        matchID,
		SenderID:       sender,
		Content:        "hello",
		IdempotencyKey: "key-1",
	}, now)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if first.Replayed {
		t.Fatalf("first insert must not be a replay")
	}

	second, err := store.Insert(ctx, model.Message{
		ID:             uuid.New(),
		MatchID:        matchID,
		SenderID:       sender,
		Content:        "hello",
		IdempotencyKey: "key-1",
	}, now.Add(time.Second))
	if err != nil {
		t.Fatalf("replay insert: %v", err)
	}
	if !second.Replayed {
		t.Fatalf("second insert with same key must replay")
	}
	if second.Message.ID != first.Message.ID {
		t.Fatalf("replay must return the original message")
	}

	msgs, err := store.ListByMatch(ctx, matchID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected a single stored message, got %d", len(msgs))
	}
}

func TestMarkReadIdempotent(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	matchID := uuid.New()
	reader := uuid.New()
	partner := uuid.New()
	now := time.Now().UTC()

	for i := 0; i < 3; i++ {
		if _, err := store.Insert(ctx, model.Message{
			ID:       uuid.New(),
			MatchID:  matchID,
			SenderID: partner,
			Content:  "msg",
		}, now.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	if _, err := store.Insert(ctx, model.Message{
		ID:       uuid.New(),
		MatchID:  matchID,
		SenderID: reader,
		Content:  "own",
	}, now.Add(10*time.Second)); err != nil {
		t.Fatalf("insert own: %v", err)
	}

	stamped, err := store.MarkRead(ctx, matchID, reader, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if stamped != 3 {
		t.Fatalf("expected 3 stamped messages, got %d", stamped)
	}

	again, err := store.MarkRead(ctx, matchID, reader, now.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("repeat mark read: %v", err)
	}
	if again != 0 {
		t.Fatalf("repeat mark read must stamp nothing, got %d", again)
	}

	msgs, _ := store.ListByMatch(ctx, matchID)
	for _, m := range msgs {
		if m.SenderID == reader && m.ReadAt != nil {
			t.Fatalf("own message must stay untouched")
		}
	}
}

func TestBlockUpsertAndDeleteIdempotent(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	blocker := uuid.New()
	target := uuid.New()
	now := time.Now().UTC()

	store.PutProfile(newProfile(target, "target", enums.LookingForWork, now))

	for i := 0; i < 2; i++ {
		if err := store.Upsert(ctx, blocker, target, now); err != nil {
			t.Fatalf("block %d: %v", i, err)
		}
	}
	blockedList, err := store.ListBlocked(ctx, blocker)
	if err != nil {
		t.Fatalf("list blocked: %v", err)
	}
	if len(blockedList) != 1 {
		t.Fatalf("expected one blocked profile, got %d", len(blockedList))
	}

	for i := 0; i < 2; i++ {
		if err := store.Delete(ctx, blocker, target); err != nil {
			t.Fatalf("unblock %d: %v", i, err)
		}
	}
	blockedList, err = store.ListBlocked(ctx, blocker)
	if err != nil {
		t.Fatalf("list blocked after delete: %v", err)
	}
	if len(blockedList) != 0 {
		t.Fatalf("expected empty blocked list, got %d", len(blockedList))
	}
}

func TestListForUserSummaries(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	viewer := uuid.New()
	partner := uuid.New()
	store.PutProfile(newProfile(viewer, "viewer", enums.LookingForBoth, now))
	store.PutProfile(newProfile(partner, "partner", enums.LookingForWork, now))

	if _, err := store.RecordSwipe(ctx, partner, viewer, enums.SwipeActionLike, now); err != nil {
		t.Fatalf("partner like: %v", err)
	}
	outcome, err := store.RecordSwipe(ctx, viewer, partner, enums.SwipeActionLike, now)
	if err != nil {
		t.Fatalf("viewer like: %v", err)
	}
	if outcome.Match == nil {
		t.Fatalf("expected a match")
	}

	if _, err := store.Insert(ctx, model.Message{
		ID:       uuid.New(),
		MatchID:  outcome.Match.ID,
		SenderID: partner,
		Content:  "やあ",
	}, now.Add(time.Minute)); err != nil {
		t.Fatalf("insert: %v", err)
	}

	summaries, err := store.ListForUser(ctx, viewer, 10)
	if err != nil {
		t.Fatalf("list for user: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected one summary, got %d", len(summaries))
	}
	got := summaries[0]
	if got.Partner.ID != partner {
		t.Fatalf("summary partner mismatch")
	}
	if got.LastMessage == nil || got.LastMessage.Content != "やあ" {
		t.Fatalf("summary last message mismatch: %+v", got.LastMessage)
	}
	if got.UnreadCount != 1 {
		t.Fatalf("expected unread count 1, got %d", got.UnreadCount)
	}
}

func TestSeedDemoPopulatesCandidates(t *testing.T) {
	store := NewStore()
	store.SeedDemo(time.Now().UTC())

	got, err := store.ListCandidates(context.Background(), storage.FeedQuery{ViewerID: uuid.New(), Limit: 20})
	if err != nil {
		t.Fatalf("list candidates: %v", err)
	}
	if len(got) != len(demoProfiles) {
		t.Fatalf("expected %d seeded candidates, got %d", len(demoProfiles), len(got))
	}
}
