package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Fumiyasu01/matching-app/internal/domain/enums"
	"github.com/Fumiyasu01/matching-app/internal/domain/model"
	"github.com/Fumiyasu01/matching-app/internal/repo/memory"
	"github.com/Fumiyasu01/matching-app/internal/repo/storage"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []model.Message
	typing   []bool
	reads    int
}

func (n *recordingNotifier) MessageCreated(matchID uuid.UUID, msg model.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
}

func (n *recordingNotifier) TypingChanged(matchID, userID uuid.UUID, typing bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.typing = append(n.typing, typing)
}

func (n *recordingNotifier) MessagesRead(matchID, readerID uuid.UUID, at time.Time) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reads++
}

func (n *recordingNotifier) messageCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}

type recordingHook struct {
	mu    sync.Mutex
	calls int
}

func (h *recordingHook) MessageSent(matchID, senderID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls++
}

func (h *recordingHook) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls
}

// matchFixture creates a store with two matched users and returns the
// store, the match and both participant ids.
func matchFixture(t *testing.T) (*memory.Store, model.Match, uuid.UUID, uuid.UUID) {
	t.Helper()

	store := memory.NewStore()
	ctx := context.Background()
	u1 := uuid.New()
	u2 := uuid.New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	store.PutProfile(model.Profile{ID: u1, DisplayName: "u1"})
	store.PutProfile(model.Profile{ID: u2, DisplayName: "u2", AvatarKey: "avatars/u2.jpg"})

	if _, err := store.RecordSwipe(ctx, u1, u2, enums.SwipeActionLike, now); err != nil {
		t.Fatalf("swipe u1: %v", err)
	}
	outcome, err := store.RecordSwipe(ctx, u2, u1, enums.SwipeActionLike, now)
	if err != nil {
		t.Fatalf("swipe u2: %v", err)
	}
	if outcome.Match == nil {
		t.Fatalf("fixture expected a match")
	}

	return store, *outcome.Match, u1, u2
}

func newChatService(store *memory.Store, notifier Notifier, hook SendHook) *Service {
	return NewService(Dependencies{
		Messages: store,
		Matches:  store,
		Profiles: store,
		Blocks:   store,
		Notifier: notifier,
		Hook:     hook,
	}, Config{})
}

func TestSendMessageValidation(t *testing.T) {
	store, match, u1, _ := matchFixture(t)
	svc := newChatService(store, nil, nil)
	ctx := context.Background()

	if _, err := svc.SendMessage(ctx, match.ID, u1, "   ", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for blank content, got %v", err)
	}

	long := strings.Repeat("あ", 5001)
	if _, err := svc.SendMessage(ctx, match.ID, u1, long, ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for oversized content, got %v", err)
	}

	exact := strings.Repeat("a", 5000)
	if _, err := svc.SendMessage(ctx, match.ID, u1, exact, ""); err != nil {
		t.Fatalf("content at the limit must pass: %v", err)
	}
}

func TestSendMessageParticipantChecks(t *testing.T) {
	store, match, _, _ := matchFixture(t)
	svc := newChatService(store, nil, nil)
	ctx := context.Background()

	if _, err := svc.SendMessage(ctx, match.ID, uuid.New(), "hello", ""); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for outsider, got %v", err)
	}
	if _, err := svc.SendMessage(ctx, uuid.New(), uuid.New(), "hello", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown match, got %v", err)
	}
}

func TestBlockedPairLosesChatAccess(t *testing.T) {
	store, match, u1, u2 := matchFixture(t)
	svc := newChatService(store, nil, nil)
	ctx := context.Background()

	if _, err := svc.SendMessage(ctx, match.ID, u2, "before the block", ""); err != nil {
		t.Fatalf("send before block: %v", err)
	}
	if err := store.Upsert(ctx, u1, u2, time.Now().UTC()); err != nil {
		t.Fatalf("block: %v", err)
	}

	// The block cuts both directions off; rows stay in place.
	if _, err := svc.SendMessage(ctx, match.ID, u2, "still here", ""); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for blocked sender, got %v", err)
	}
	if _, err := svc.SendMessage(ctx, match.ID, u1, "me too", ""); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for the blocker, got %v", err)
	}
	if _, err := svc.GetMessages(ctx, match.ID, u2); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden on read, got %v", err)
	}
	if err := svc.MarkAsRead(ctx, match.ID, u1); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden on mark read, got %v", err)
	}

	// Unblock restores access to the preserved history.
	if err := store.Delete(ctx, u1, u2); err != nil {
		t.Fatalf("unblock: %v", err)
	}
	views, err := svc.GetMessages(ctx, match.ID, u1)
	if err != nil {
		t.Fatalf("get messages after unblock: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected history preserved, got %d messages", len(views))
	}
}

func TestSendMessageFansOut(t *testing.T) {
	store, match, u1, _ := matchFixture(t)
	notifier := &recordingNotifier{}
	hook := &recordingHook{}
	svc := newChatService(store, notifier, hook)

	view, err := svc.SendMessage(context.Background(), match.ID, u1, "  hello  ", "")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if view.Content != "hello" {
		t.Fatalf("content must be trimmed, got %q", view.Content)
	}
	if !view.IsOwn {
		t.Fatalf("sender view must be own")
	}
	if notifier.messageCount() != 1 {
		t.Fatalf("expected one message event, got %d", notifier.messageCount())
	}
	if hook.count() != 1 {
		t.Fatalf("expected one hook call, got %d", hook.count())
	}
}

func TestSendMessageIdempotencyReplaySkipsFanOut(t *testing.T) {
	store, match, u1, _ := matchFixture(t)
	notifier := &recordingNotifier{}
	hook := &recordingHook{}
	svc := newChatService(store, notifier, hook)
	ctx := context.Background()

	first, err := svc.SendMessage(ctx, match.ID, u1, "hello", "key-1")
	if err != nil {
		t.Fatalf("first send: %v", err)
	}
	second, err := svc.SendMessage(ctx, match.ID, u1, "hello", "key-1")
	if err != nil {
		t.Fatalf("replay send: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("replay must return the original message")
	}
	if notifier.messageCount() != 1 || hook.count() != 1 {
		t.Fatalf("replay must not fan out again: events=%d hooks=%d", notifier.messageCount(), hook.count())
	}
}

type flakyMessages struct {
	*memory.Store
	mu       sync.Mutex
	failures int
	calls    int
}

func (f *flakyMessages) Insert(ctx context.Context, msg model.Message, now time.Time) (storage.SendResult, error) {
	f.mu.Lock()
	f.calls++
	fail := f.failures > 0
	if fail {
		f.failures--
	}
	f.mu.Unlock()
	if fail {
		return storage.SendResult{}, errors.New("transient store failure")
	}
	return f.Store.Insert(ctx, msg, now)
}

func TestSendMessageRetriesOnlyWithIdempotencyKey(t *testing.T) {
	store, match, u1, _ := matchFixture(t)
	ctx := context.Background()

	flaky := &flakyMessages{Store: store, failures: 1}
	svc := NewService(Dependencies{Messages: flaky, Matches: store, Profiles: store}, Config{})

	if _, err := svc.SendMessage(ctx, match.ID, u1, "no key", ""); err == nil {
		t.Fatalf("send without key must not retry past a failure")
	}

	flaky.mu.Lock()
	flaky.failures = 1
	flaky.mu.Unlock()
	if _, err := svc.SendMessage(ctx, match.ID, u1, "with key", "key-r"); err != nil {
		t.Fatalf("send with key must survive one transient failure: %v", err)
	}
}

func TestGetMessagesOwnership(t *testing.T) {
	store, match, u1, u2 := matchFixture(t)
	svc := newChatService(store, nil, nil)
	ctx := context.Background()

	if _, err := svc.SendMessage(ctx, match.ID, u1, "from u1", ""); err != nil {
		t.Fatalf("send u1: %v", err)
	}
	if _, err := svc.SendMessage(ctx, match.ID, u2, "from u2", ""); err != nil {
		t.Fatalf("send u2: %v", err)
	}

	forU1, err := svc.GetMessages(ctx, match.ID, u1)
	if err != nil {
		t.Fatalf("get for u1: %v", err)
	}
	if len(forU1) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(forU1))
	}
	if !forU1[0].IsOwn || forU1[1].IsOwn {
		t.Fatalf("ownership flags wrong for u1: %+v", forU1)
	}

	forU2, err := svc.GetMessages(ctx, match.ID, u2)
	if err != nil {
		t.Fatalf("get for u2: %v", err)
	}
	if forU2[0].IsOwn || !forU2[1].IsOwn {
		t.Fatalf("ownership flags wrong for u2: %+v", forU2)
	}

	if _, err := svc.GetMessages(ctx, match.ID, uuid.New()); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for outsider, got %v", err)
	}
}

func TestMarkAsReadEmitsOnce(t *testing.T) {
	store, match, u1, u2 := matchFixture(t)
	notifier := &recordingNotifier{}
	svc := newChatService(store, notifier, nil)
	ctx := context.Background()

	if _, err := svc.SendMessage(ctx, match.ID, u2, "unread", ""); err != nil {
		t.Fatalf("send: %v", err)
	}

	if err := svc.MarkAsRead(ctx, match.ID, u1); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if err := svc.MarkAsRead(ctx, match.ID, u1); err != nil {
		t.Fatalf("repeat mark read: %v", err)
	}

	notifier.mu.Lock()
	reads := notifier.reads
	notifier.mu.Unlock()
	if reads != 1 {
		t.Fatalf("expected exactly one read event, got %d", reads)
	}
}

func TestGetChatPartner(t *testing.T) {
	store, match, u1, u2 := matchFixture(t)
	svc := newChatService(store, nil, nil)
	ctx := context.Background()

	partner, err := svc.GetChatPartner(ctx, match.ID, u1)
	if err != nil {
		t.Fatalf("get partner: %v", err)
	}
	if partner.ID != u2 {
		t.Fatalf("partner mismatch: %s", partner.ID)
	}

	if _, err := svc.GetChatPartner(ctx, match.ID, uuid.New()); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestGroupByDaySplitsOnViewerMidnight(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	// 14:59 UTC is 23:59 in Tokyo, 15:01 UTC is 00:01 the next day.
	before := MessageView{Message: model.Message{ID: uuid.New(), CreatedAt: time.Date(2026, 3, 1, 14, 59, 0, 0, time.UTC)}}
	after := MessageView{Message: model.Message{ID: uuid.New(), CreatedAt: time.Date(2026, 3, 1, 15, 1, 0, 0, time.UTC)}}

	groups := GroupByDay([]MessageView{before, after}, tokyo)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups across Tokyo midnight, got %d", len(groups))
	}
	if groups[0].DateKey != "2026-03-01" || groups[1].DateKey != "2026-03-02" {
		t.Fatalf("unexpected group keys: %s, %s", groups[0].DateKey, groups[1].DateKey)
	}

	utcGroups := GroupByDay([]MessageView{before, after}, time.UTC)
	if len(utcGroups) != 1 {
		t.Fatalf("same UTC day must stay one group, got %d", len(utcGroups))
	}
}
