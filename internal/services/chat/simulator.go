package chat

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Fumiyasu01/matching-app/internal/domain/model"
)

// ReplySender is the slice of the chat service the simulator needs.
// A real partner would reach the same storage through SendMessage;
// the simulator uses the partner delivery path instead.
type ReplySender interface {
	DeliverPartnerMessage(ctx context.Context, matchID, senderID uuid.UUID, content string) (model.Message, error)
}

type SimulatorConfig struct {
	TypingDelay   time.Duration
	ReplyMinDelay time.Duration
	ReplyMaxDelay time.Duration
	TypingTimeout time.Duration
	Replies       []string
}

var defaultReplies = []string{
	"こんにちは！マッチありがとうございます！",
	"はじめまして！よろしくお願いします！",
	"プロフィール見ました！とても興味があります！",
	"お返事ありがとうございます！ぜひお話ししましょう！",
	"いいですね！もっと詳しく教えてください！",
	"お仕事の話、聞きたいです！",
	"素敵なスキルをお持ちですね！",
	"ぜひコラボしたいです！",
}

type simState struct {
	typingTimer  *time.Timer
	timeoutTimer *time.Timer
	replyTimer   *time.Timer
	typing       bool
	partnerID    uuid.UUID
}

// Simulator plays the match partner in demo deployments. Per match it
// is a two-state machine: idle, or partner-typing until the reply
// lands or the typing timeout clears it.
type Simulator struct {
	sender   ReplySender
	matches  MatchStore
	notifier Notifier
	cfg      SimulatorConfig
	logger   *zap.Logger

	mu     sync.Mutex
	states map[uuid.UUID]*simState
	closed bool

	randMu sync.Mutex
	rng    *rand.Rand
}

func NewSimulator(sender ReplySender, matches MatchStore, notifier Notifier, cfg SimulatorConfig, logger *zap.Logger) *Simulator {
	if cfg.TypingDelay <= 0 {
		cfg.TypingDelay = 600 * time.Millisecond
	}
	if cfg.ReplyMinDelay <= 0 {
		cfg.ReplyMinDelay = 1500 * time.Millisecond
	}
	if cfg.ReplyMaxDelay < cfg.ReplyMinDelay {
		cfg.ReplyMaxDelay = cfg.ReplyMinDelay + 2*time.Second
	}
	if cfg.TypingTimeout <= 0 {
		cfg.TypingTimeout = 6 * time.Second
	}
	if len(cfg.Replies) == 0 {
		cfg.Replies = defaultReplies
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Simulator{
		sender:   sender,
		matches:  matches,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
		states:   make(map[uuid.UUID]*simState),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// MessageSent implements SendHook. Each real send restarts the
// typing-then-reply sequence for the match.
func (s *Simulator) MessageSent(matchID, senderID uuid.UUID) {
	match, err := s.matches.GetByID(context.Background(), matchID)
	if err != nil {
		s.logger.Warn("simulator: match lookup failed", zap.String("match_id", matchID.String()), zap.Error(err))
		return
	}
	partnerID, ok := match.OtherUserID(senderID)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	state, ok := s.states[matchID]
	if !ok {
		state = &simState{}
		s.states[matchID] = state
	}
	state.partnerID = partnerID
	stopTimersLocked(state)

	state.typingTimer = time.AfterFunc(s.cfg.TypingDelay, func() {
		s.startTyping(matchID)
	})
	state.replyTimer = time.AfterFunc(s.replyDelay(), func() {
		s.deliverReply(matchID)
	})
}

func (s *Simulator) startTyping(matchID uuid.UUID) {
	s.mu.Lock()
	state, ok := s.states[matchID]
	if !ok || s.closed {
		s.mu.Unlock()
		return
	}
	state.typing = true
	partnerID := state.partnerID
	state.timeoutTimer = time.AfterFunc(s.cfg.TypingTimeout, func() {
		s.clearTyping(matchID)
	})
	s.mu.Unlock()

	if s.notifier != nil {
		s.notifier.TypingChanged(matchID, partnerID, true)
	}
}

func (s *Simulator) clearTyping(matchID uuid.UUID) {
	s.mu.Lock()
	state, ok := s.states[matchID]
	if !ok || !state.typing {
		s.mu.Unlock()
		return
	}
	state.typing = false
	partnerID := state.partnerID
	if state.timeoutTimer != nil {
		state.timeoutTimer.Stop()
		state.timeoutTimer = nil
	}
	s.mu.Unlock()

	if s.notifier != nil {
		s.notifier.TypingChanged(matchID, partnerID, false)
	}
}

func (s *Simulator) deliverReply(matchID uuid.UUID) {
	s.mu.Lock()
	state, ok := s.states[matchID]
	if !ok || s.closed {
		s.mu.Unlock()
		return
	}
	partnerID := state.partnerID
	if state.typingTimer != nil {
		state.typingTimer.Stop()
		state.typingTimer = nil
	}
	s.mu.Unlock()

	reply := s.pickReply()
	if _, err := s.sender.DeliverPartnerMessage(context.Background(), matchID, partnerID, reply); err != nil {
		s.logger.Warn("simulator: reply delivery failed", zap.String("match_id", matchID.String()), zap.Error(err))
	}

	s.clearTyping(matchID)
}

func (s *Simulator) replyDelay() time.Duration {
	spread := s.cfg.ReplyMaxDelay - s.cfg.ReplyMinDelay
	if spread <= 0 {
		return s.cfg.ReplyMinDelay
	}
	s.randMu.Lock()
	defer s.randMu.Unlock()
	return s.cfg.ReplyMinDelay + time.Duration(s.rng.Int63n(int64(spread)))
}

func (s *Simulator) pickReply() string {
	s.randMu.Lock()
	defer s.randMu.Unlock()
	return s.cfg.Replies[s.rng.Intn(len(s.cfg.Replies))]
}

// Typing reports the current typing state for a match. Read path for
// tests and the ws handshake snapshot.
func (s *Simulator) Typing(matchID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[matchID]
	return ok && state.typing
}

// Close stops every pending timer. Replies scheduled but not yet
// fired are dropped.
func (s *Simulator) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for _, state := range s.states {
		stopTimersLocked(state)
	}
}

func stopTimersLocked(state *simState) {
	if state.typingTimer != nil {
		state.typingTimer.Stop()
		state.typingTimer = nil
	}
	if state.timeoutTimer != nil {
		state.timeoutTimer.Stop()
		state.timeoutTimer = nil
	}
	if state.replyTimer != nil {
		state.replyTimer.Stop()
		state.replyTimer = nil
	}
}
