package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/Fumiyasu01/matching-app/internal/domain/model"
)

const (
	writeWait      = 10 * time.Second
	pingInterval   = 30 * time.Second
	maxMessageSize = 4096
	sendBufSize    = 256
)

// MatchAccess decides whether a user may join a match room.
type MatchAccess interface {
	GetMatchForViewer(ctx context.Context, matchID, viewerID uuid.UUID) (model.Match, error)
}

// Client represents a single WebSocket connection.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID uuid.UUID
	access MatchAccess
	logger *zap.Logger

	// subscribedMatches tracks which match rooms this client listens to.
	subscribedMatches map[uuid.UUID]struct{}
	mu                sync.RWMutex

	send chan []byte
	done chan struct{}
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID, access MatchAccess, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		hub:               hub,
		conn:              conn,
		userID:            userID,
		access:            access,
		logger:            logger,
		subscribedMatches: make(map[uuid.UUID]struct{}),
		send:              make(chan []byte, sendBufSize),
		done:              make(chan struct{}),
	}
}

// IsSubscribed checks if this client is subscribed to a match room.
func (c *Client) IsSubscribed(matchID uuid.UUID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.subscribedMatches[matchID]
	return ok
}

// Subscribe adds a match room subscription.
func (c *Client) Subscribe(matchID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribedMatches[matchID] = struct{}{}
}

// Unsubscribe removes a match room subscription.
func (c *Client) Unsubscribe(matchID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subscribedMatches, matchID)
}

// ReadPump reads events from the WebSocket and routes them to the Hub.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxMessageSize)

	for {
		var event Event
		err := wsjson.Read(context.Background(), c.conn, &event)
		if err != nil {
			if websocket.CloseStatus(err) == -1 {
				c.logger.Debug("ws read failed",
					zap.String("user_id", c.userID.String()), zap.Error(err))
			}
			return
		}

		c.handleEvent(&event)
	}
}

// WritePump writes events from the send channel to the WebSocket.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				return
			}

		case <-c.done:
			return
		}
	}
}

// handleEvent routes an incoming client event.
func (c *Client) handleEvent(event *Event) {
	switch event.Type {
	case EventTypeMatchSubscribe:
		var p MatchPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			c.sendError("INVALID_PAYLOAD", "invalid match.subscribe payload")
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), writeWait)
		_, err := c.access.GetMatchForViewer(ctx, p.MatchID, c.userID)
		cancel()
		if err != nil {
			c.sendError("FORBIDDEN", "not a participant of this match")
			return
		}
		c.Subscribe(p.MatchID)

	case EventTypeMatchUnsubscribe:
		var p MatchPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			c.sendError("INVALID_PAYLOAD", "invalid match.unsubscribe payload")
			return
		}
		c.Unsubscribe(p.MatchID)

	case EventTypeTypingStart, EventTypeTypingStop:
		if event.MatchID == nil {
			c.sendError("INVALID_PAYLOAD", "match_id required for typing events")
			return
		}
		c.hub.HandleTyping(c, event)

	case EventTypePing:
		c.sendPong()

	default:
		c.sendError("UNKNOWN_EVENT", "unknown event type: "+event.Type)
	}
}

func (c *Client) sendPong() {
	data, _ := json.Marshal(Event{Type: EventTypePong})
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) sendError(code, message string) {
	evt, err := NewEvent(EventTypeError, nil, ErrorPayload{Code: code, Message: message})
	if err != nil {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
