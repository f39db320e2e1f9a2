package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	authsvc "github.com/Fumiyasu01/matching-app/internal/services/auth"
	chatsvc "github.com/Fumiyasu01/matching-app/internal/services/chat"
	"github.com/Fumiyasu01/matching-app/internal/transport/http/dto"
	httperrors "github.com/Fumiyasu01/matching-app/internal/transport/http/errors"
)

// TypingReader reports whether the partner side of a match is currently
// composing. Nil when no simulator is running.
type TypingReader interface {
	Typing(matchID uuid.UUID) bool
}

type ChatHandler struct {
	service *chatsvc.Service
	typing  TypingReader
}

func NewChatHandler(service *chatsvc.Service, typing TypingReader) *ChatHandler {
	return &ChatHandler{service: service, typing: typing}
}

func (h *ChatHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	matchID, ok := matchIDFromRequest(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid match id")
		return
	}
	if h.service == nil {
		writeInternal(w, "CHAT_SERVICE_UNAVAILABLE", "chat service is unavailable")
		return
	}

	views, err := h.service.GetMessages(r.Context(), matchID, identity.UserID)
	if err != nil {
		writeChatError(w, err, "failed to load messages")
		return
	}

	if views == nil {
		views = []chatsvc.MessageView{}
	}
	httperrors.Write(w, http.StatusOK, dto.MessagesResponse{
		Items:  views,
		Groups: chatsvc.GroupByDay(views, locationFromRequest(r)),
	})
}

func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	matchID, ok := matchIDFromRequest(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid match id")
		return
	}
	if h.service == nil {
		writeInternal(w, "CHAT_SERVICE_UNAVAILABLE", "chat service is unavailable")
		return
	}

	var req dto.SendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	view, err := h.service.SendMessage(r.Context(), matchID, identity.UserID, req.Content, req.IdempotencyKey)
	if err != nil {
		writeChatError(w, err, "failed to send message")
		return
	}

	httperrors.Write(w, http.StatusCreated, view)
}

func (h *ChatHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	matchID, ok := matchIDFromRequest(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid match id")
		return
	}
	if h.service == nil {
		writeInternal(w, "CHAT_SERVICE_UNAVAILABLE", "chat service is unavailable")
		return
	}

	if err := h.service.MarkAsRead(r.Context(), matchID, identity.UserID); err != nil {
		writeChatError(w, err, "failed to mark messages read")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *ChatHandler) GetPartner(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	matchID, ok := matchIDFromRequest(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid match id")
		return
	}
	if h.service == nil {
		writeInternal(w, "CHAT_SERVICE_UNAVAILABLE", "chat service is unavailable")
		return
	}

	partner, err := h.service.GetChatPartner(r.Context(), matchID, identity.UserID)
	if err != nil {
		writeChatError(w, err, "failed to load chat partner")
		return
	}

	resp := dto.PartnerResponse{Partner: partner}
	if h.typing != nil {
		resp.Typing = h.typing.Typing(matchID)
	}
	httperrors.Write(w, http.StatusOK, resp)
}

// locationFromRequest resolves the timezone date dividers are computed
// in. Clients send their zone per request; nothing is stored.
func locationFromRequest(r *http.Request) *time.Location {
	name := strings.TrimSpace(r.Header.Get("X-Timezone"))
	if name == "" {
		name = strings.TrimSpace(r.URL.Query().Get("tz"))
	}
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

func writeChatError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, chatsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid chat request")
	case errors.Is(err, chatsvc.ErrNotFound):
		writeNotFound(w, "MATCH_NOT_FOUND", "match not found")
	case errors.Is(err, chatsvc.ErrForbidden):
		writeForbidden(w, "NOT_A_PARTICIPANT", "you are not part of this match")
	default:
		writeUnavailable(w, "TEMP_UNAVAILABLE", fallback)
	}
}
