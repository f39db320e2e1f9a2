package ws

import (
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Hub manages all active WebSocket clients and routes match-scoped events.
type Hub struct {
	// clients maps userID → client. A user has at most one live connection.
	clients map[uuid.UUID]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan *broadcastMsg

	logger *zap.Logger
}

type broadcastMsg struct {
	matchID   uuid.UUID
	data      []byte
	excludeID *uuid.UUID // optional: skip this user (e.g. the typist)
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[uuid.UUID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *broadcastMsg, 256),
		logger:     logger,
	}
}

// Run starts the Hub's main event loop. Call this in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			if old, ok := h.clients[client.userID]; ok {
				// Replace a stale connection for the same user.
				delete(h.clients, old.userID)
				close(old.send)
				close(old.done)
			}
			h.clients[client.userID] = client
			h.logger.Info("ws client connected",
				zap.String("user_id", client.userID.String()),
				zap.Int("total", len(h.clients)))

		case client := <-h.unregister:
			if current, ok := h.clients[client.userID]; ok && current == client {
				delete(h.clients, client.userID)
				close(client.send)
				close(client.done)
				h.logger.Info("ws client disconnected",
					zap.String("user_id", client.userID.String()),
					zap.Int("total", len(h.clients)))
			}

		case msg := <-h.broadcast:
			for _, client := range h.clients {
				if msg.excludeID != nil && client.userID == *msg.excludeID {
					continue
				}
				if !client.IsSubscribed(msg.matchID) {
					continue
				}
				select {
				case client.send <- msg.data:
				default:
					// Client buffer full, drop the connection.
					delete(h.clients, client.userID)
					close(client.send)
					close(client.done)
				}
			}
		}
	}
}

// BroadcastToMatch sends an event to all subscribers of a match.
func (h *Hub) BroadcastToMatch(matchID uuid.UUID, event *Event, excludeUserID *uuid.UUID) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("ws broadcast marshal failed", zap.Error(err))
		return
	}
	h.broadcast <- &broadcastMsg{
		matchID:   matchID,
		data:      data,
		excludeID: excludeUserID,
	}
}

// HandleTyping relays a client typing event to the match, excluding the typist.
func (h *Hub) HandleTyping(sender *Client, event *Event) {
	matchID := *event.MatchID
	if !sender.IsSubscribed(matchID) {
		return
	}

	evt, err := NewEvent(EventTypeTyping, &matchID, TypingPayload{
		UserID: sender.userID,
		Typing: event.Type == EventTypeTypingStart,
	})
	if err != nil {
		return
	}

	h.BroadcastToMatch(matchID, evt, &sender.userID)
}
