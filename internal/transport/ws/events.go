package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/Fumiyasu01/matching-app/internal/domain/model"
)

// Event types - Client → Server
const (
	EventTypeMatchSubscribe   = "match.subscribe"
	EventTypeMatchUnsubscribe = "match.unsubscribe"
	EventTypeTypingStart      = "typing.start"
	EventTypeTypingStop       = "typing.stop"
	EventTypePing             = "ping"
)

// Event types - Server → Client
const (
	EventTypeMessageNew = "message.new"
	EventTypeTyping     = "typing"
	EventTypeRead       = "read"
	EventTypePong       = "pong"
	EventTypeError      = "error"
)

// Event is the base envelope for all WebSocket messages.
type Event struct {
	Type      string          `json:"type"`
	MatchID   *uuid.UUID      `json:"match_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

// --- Client → Server payloads ---

type MatchPayload struct {
	MatchID uuid.UUID `json:"match_id"`
}

// --- Server → Client payloads ---

type MessagePayload struct {
	model.Message
}

type TypingPayload struct {
	UserID uuid.UUID `json:"user_id"`
	Typing bool      `json:"typing"`
}

type ReadPayload struct {
	ReaderID uuid.UUID `json:"reader_id"`
	ReadAt   time.Time `json:"read_at"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent creates a server→client event with the current timestamp.
func NewEvent(eventType string, matchID *uuid.UUID, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		MatchID:   matchID,
		Payload:   data,
		Timestamp: time.Now().Unix(),
	}, nil
}
