package ws

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Fumiyasu01/matching-app/internal/domain/model"
)

// HubNotifier fans chat events out to match rooms through the Hub.
type HubNotifier struct {
	hub    *Hub
	logger *zap.Logger
}

func NewHubNotifier(hub *Hub, logger *zap.Logger) *HubNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HubNotifier{hub: hub, logger: logger}
}

func (n *HubNotifier) MessageCreated(matchID uuid.UUID, msg model.Message) {
	evt, err := NewEvent(EventTypeMessageNew, &matchID, MessagePayload{Message: msg})
	if err != nil {
		n.logger.Error("ws notifier marshal failed", zap.Error(err))
		return
	}
	n.hub.BroadcastToMatch(matchID, evt, nil)
}

func (n *HubNotifier) TypingChanged(matchID, userID uuid.UUID, typing bool) {
	evt, err := NewEvent(EventTypeTyping, &matchID, TypingPayload{
		UserID: userID,
		Typing: typing,
	})
	if err != nil {
		n.logger.Error("ws notifier marshal failed", zap.Error(err))
		return
	}
	n.hub.BroadcastToMatch(matchID, evt, &userID)
}

func (n *HubNotifier) MessagesRead(matchID, readerID uuid.UUID, at time.Time) {
	evt, err := NewEvent(EventTypeRead, &matchID, ReadPayload{
		ReaderID: readerID,
		ReadAt:   at,
	})
	if err != nil {
		n.logger.Error("ws notifier marshal failed", zap.Error(err))
		return
	}
	n.hub.BroadcastToMatch(matchID, evt, &readerID)
}
