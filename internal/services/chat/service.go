package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Fumiyasu01/matching-app/internal/domain/model"
	"github.com/Fumiyasu01/matching-app/internal/repo/storage"
)

const (
	defaultMaxContentLength = 5000
	avatarURLTTL            = 5 * time.Minute
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
)

type MessageStore interface {
	Insert(ctx context.Context, msg model.Message, now time.Time) (storage.SendResult, error)
	ListByMatch(ctx context.Context, matchID uuid.UUID) ([]model.Message, error)
	MarkRead(ctx context.Context, matchID, readerID uuid.UUID, at time.Time) (int64, error)
}

type MatchStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (model.Match, error)
}

type ProfileStore interface {
	Get(ctx context.Context, id uuid.UUID) (model.Profile, error)
}

type BlockStore interface {
	IsBlockedEither(ctx context.Context, a, b uuid.UUID) (bool, error)
}

// Notifier fans chat events out to live subscribers. Delivery is
// at-least-once; clients dedup by message id.
type Notifier interface {
	MessageCreated(matchID uuid.UUID, msg model.Message)
	TypingChanged(matchID, userID uuid.UUID, typing bool)
	MessagesRead(matchID, readerID uuid.UUID, at time.Time)
}

// SendHook observes real viewer sends. The counterpart simulator
// hangs off this; replies it delivers do not pass through the hook
// again.
type SendHook interface {
	MessageSent(matchID, senderID uuid.UUID)
}

type AvatarSigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type Config struct {
	MaxContentLength int
}

// MessageView is a message projected for one viewer. IsOwn is derived
// at read time, never stored.
type MessageView struct {
	model.Message
	IsOwn bool `json:"is_own"`
}

type Service struct {
	messages MessageStore
	matches  MatchStore
	profiles ProfileStore
	blocks   BlockStore
	notifier Notifier
	hook     SendHook
	signer   AvatarSigner
	cfg      Config
	now      func() time.Time
}

type Dependencies struct {
	Messages MessageStore
	Matches  MatchStore
	Profiles ProfileStore
	Blocks   BlockStore
	Notifier Notifier
	Hook     SendHook
	Signer   AvatarSigner
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.MaxContentLength <= 0 {
		cfg.MaxContentLength = defaultMaxContentLength
	}

	return &Service{
		messages: deps.Messages,
		matches:  deps.Matches,
		profiles: deps.Profiles,
		blocks:   deps.Blocks,
		notifier: deps.Notifier,
		hook:     deps.Hook,
		signer:   deps.Signer,
		cfg:      cfg,
		now:      time.Now,
	}
}

// SetHook attaches the send hook after construction. The simulator
// needs the service to deliver replies, so the two are wired in two
// steps.
func (s *Service) SetHook(hook SendHook) {
	s.hook = hook
}

func (s *Service) participantMatch(ctx context.Context, matchID, viewerID uuid.UUID) (model.Match, error) {
	match, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, storage.ErrMatchNotFound) {
			return model.Match{}, ErrNotFound
		}
		return model.Match{}, fmt.Errorf("get match: %w", err)
	}
	if !match.HasUser(viewerID) {
		return model.Match{}, ErrForbidden
	}
	if s.blocks != nil {
		partnerID, _ := match.OtherUserID(viewerID)
		blocked, err := s.blocks.IsBlockedEither(ctx, viewerID, partnerID)
		if err != nil {
			return model.Match{}, fmt.Errorf("check block: %w", err)
		}
		if blocked {
			return model.Match{}, ErrForbidden
		}
	}
	return match, nil
}

// GetMessages returns the conversation oldest first with the
// per-viewer ownership flag set.
func (s *Service) GetMessages(ctx context.Context, matchID, viewerID uuid.UUID) ([]MessageView, error) {
	if matchID == uuid.Nil || viewerID == uuid.Nil {
		return nil, ErrValidation
	}
	if s.messages == nil || s.matches == nil {
		return nil, fmt.Errorf("chat dependencies are not configured")
	}

	if _, err := s.participantMatch(ctx, matchID, viewerID); err != nil {
		return nil, err
	}

	msgs, err := s.messages.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	views := make([]MessageView, 0, len(msgs))
	for _, m := range msgs {
		views = append(views, MessageView{Message: m, IsOwn: m.SenderID == viewerID})
	}

	return views, nil
}

// SendMessage validates, stores and fans out one message. A transient
// store failure is retried once when the client supplied an
// idempotency key, because only then is the retry safe from
// duplication.
func (s *Service) SendMessage(ctx context.Context, matchID, senderID uuid.UUID, content, idempotencyKey string) (MessageView, error) {
	if matchID == uuid.Nil || senderID == uuid.Nil {
		return MessageView{}, ErrValidation
	}
	if s.messages == nil || s.matches == nil {
		return MessageView{}, fmt.Errorf("chat dependencies are not configured")
	}

	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return MessageView{}, ErrValidation
	}
	if len([]rune(trimmed)) > s.cfg.MaxContentLength {
		return MessageView{}, ErrValidation
	}

	if _, err := s.participantMatch(ctx, matchID, senderID); err != nil {
		return MessageView{}, err
	}

	msg := model.Message{
		ID:             uuid.New(),
		MatchID:        matchID,
		SenderID:       senderID,
		Content:        trimmed,
		IdempotencyKey: strings.TrimSpace(idempotencyKey),
	}

	attempts := 1
	if msg.IdempotencyKey != "" {
		attempts = 2
	}

	var result storage.SendResult
	var err error
	for i := 0; i < attempts; i++ {
		result, err = s.messages.Insert(ctx, msg, s.now().UTC())
		if err == nil {
			break
		}
	}
	if err != nil {
		return MessageView{}, fmt.Errorf("store message: %w", err)
	}

	if !result.Replayed {
		if s.notifier != nil {
			s.notifier.MessageCreated(matchID, result.Message)
		}
		if s.hook != nil {
			s.hook.MessageSent(matchID, senderID)
		}
	}

	return MessageView{Message: result.Message, IsOwn: true}, nil
}

// DeliverPartnerMessage stores a message on behalf of the match
// partner and fans it out. It skips the send hook; the counterpart
// simulator uses this path so its replies cannot re-trigger it.
func (s *Service) DeliverPartnerMessage(ctx context.Context, matchID, senderID uuid.UUID, content string) (model.Message, error) {
	if matchID == uuid.Nil || senderID == uuid.Nil || strings.TrimSpace(content) == "" {
		return model.Message{}, ErrValidation
	}
	if s.messages == nil {
		return model.Message{}, fmt.Errorf("chat dependencies are not configured")
	}

	msg := model.Message{
		ID:       uuid.New(),
		MatchID:  matchID,
		SenderID: senderID,
		Content:  strings.TrimSpace(content),
	}

	result, err := s.messages.Insert(ctx, msg, s.now().UTC())
	if err != nil {
		return model.Message{}, fmt.Errorf("store partner message: %w", err)
	}

	if s.notifier != nil {
		s.notifier.MessageCreated(matchID, result.Message)
	}

	return result.Message, nil
}

// MarkAsRead stamps every unread partner message. Calling it again is
// a no-op and emits no event.
func (s *Service) MarkAsRead(ctx context.Context, matchID, readerID uuid.UUID) error {
	if matchID == uuid.Nil || readerID == uuid.Nil {
		return ErrValidation
	}
	if s.messages == nil || s.matches == nil {
		return fmt.Errorf("chat dependencies are not configured")
	}

	if _, err := s.participantMatch(ctx, matchID, readerID); err != nil {
		return err
	}

	at := s.now().UTC()
	stamped, err := s.messages.MarkRead(ctx, matchID, readerID, at)
	if err != nil {
		return fmt.Errorf("mark messages read: %w", err)
	}

	if stamped > 0 && s.notifier != nil {
		s.notifier.MessagesRead(matchID, readerID, at)
	}

	return nil
}

// GetChatPartner resolves the other participant's profile.
func (s *Service) GetChatPartner(ctx context.Context, matchID, viewerID uuid.UUID) (model.Profile, error) {
	if matchID == uuid.Nil || viewerID == uuid.Nil {
		return model.Profile{}, ErrValidation
	}
	if s.matches == nil || s.profiles == nil {
		return model.Profile{}, fmt.Errorf("chat dependencies are not configured")
	}

	match, err := s.participantMatch(ctx, matchID, viewerID)
	if err != nil {
		return model.Profile{}, err
	}

	partnerID, ok := match.OtherUserID(viewerID)
	if !ok {
		return model.Profile{}, ErrForbidden
	}

	partner, err := s.profiles.Get(ctx, partnerID)
	if err != nil {
		if errors.Is(err, storage.ErrProfileNotFound) {
			return model.Profile{}, ErrNotFound
		}
		return model.Profile{}, fmt.Errorf("get partner profile: %w", err)
	}

	if s.signer != nil && partner.AvatarKey != "" {
		if signed, err := s.signer.PresignGet(ctx, partner.AvatarKey, avatarURLTTL); err == nil {
			partner.AvatarURL = &signed
		}
	}

	return partner, nil
}
