package ws

import (
	"net/http"

	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"github.com/Fumiyasu01/matching-app/internal/services/auth"
)

// ServeWS returns an HTTP handler that upgrades to WebSocket.
// Auth is done via ?token=xxx query param because browser WebSocket
// clients cannot send custom headers.
func ServeWS(hub *Hub, validator *auth.JWTValidator, access MatchAccess, logger *zap.Logger) http.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		tokenStr := r.URL.Query().Get("token")
		if tokenStr == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		claims, err := validator.ParseAccessToken(tokenStr)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Warn("ws accept failed", zap.Error(err))
			return
		}

		client := NewClient(hub, conn, claims.UserID, access, logger)
		hub.register <- client

		go client.WritePump()
		go client.ReadPump()
	}
}
