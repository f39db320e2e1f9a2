package apiapp

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Fumiyasu01/matching-app/internal/config"
	authsvc "github.com/Fumiyasu01/matching-app/internal/services/auth"
	chatsvc "github.com/Fumiyasu01/matching-app/internal/services/chat"
	feedsvc "github.com/Fumiyasu01/matching-app/internal/services/feed"
	matchessvc "github.com/Fumiyasu01/matching-app/internal/services/matches"
	modsvc "github.com/Fumiyasu01/matching-app/internal/services/moderation"
	profilesvc "github.com/Fumiyasu01/matching-app/internal/services/profiles"
	swipesvc "github.com/Fumiyasu01/matching-app/internal/services/swipes"
	httperrors "github.com/Fumiyasu01/matching-app/internal/transport/http/errors"
	"github.com/Fumiyasu01/matching-app/internal/transport/http/handlers"
	"github.com/Fumiyasu01/matching-app/internal/transport/ws"
)

type Dependencies struct {
	FeedService       *feedsvc.Service
	SwipeService      *swipesvc.Service
	MatchesService    *matchessvc.Service
	ChatService       *chatsvc.Service
	ModerationService *modsvc.Service
	ProfileService    *profilesvc.Service
	TypingReader      handlers.TypingReader
	Hub               *ws.Hub
	Validator         *authsvc.JWTValidator
	Provisioner       ProfileProvisioner
	Logger            *zap.Logger
	Config            config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	feedHandler := handlers.NewFeedHandler(deps.FeedService)
	swipeHandler := handlers.NewSwipeHandler(deps.SwipeService)
	matchesHandler := handlers.NewMatchesHandler(deps.MatchesService)
	chatHandler := handlers.NewChatHandler(deps.ChatService, deps.TypingReader)
	moderationHandler := handlers.NewModerationHandler(deps.ModerationService)
	profileHandler := handlers.NewProfileHandler(deps.ProfileService)

	authMW := AuthMiddleware(deps.Validator, deps.Provisioner, deps.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httperrors.Write(w, http.StatusOK, struct {
			OK bool `json:"ok"`
		}{OK: true})
	})

	r.Route("/v1", func(r chi.Router) {
		r.With(authMW).Get("/feed", feedHandler.Handle)
		r.With(authMW).Post("/swipes", swipeHandler.Handle)
		r.With(authMW).Get("/matches", matchesHandler.List)
		r.With(authMW).Get("/matches/{matchID}/messages", chatHandler.GetMessages)
		r.With(authMW).Post("/matches/{matchID}/messages", chatHandler.SendMessage)
		r.With(authMW).Post("/matches/{matchID}/read", chatHandler.MarkRead)
		r.With(authMW).Get("/matches/{matchID}/partner", chatHandler.GetPartner)
		r.With(authMW).Post("/block", moderationHandler.Block)
		r.With(authMW).Post("/unblock", moderationHandler.Unblock)
		r.With(authMW).Post("/report", moderationHandler.Report)
		r.With(authMW).Get("/blocked", moderationHandler.ListBlocked)
		r.With(authMW).Get("/profile", profileHandler.Get)
		r.With(authMW).Put("/profile", profileHandler.Update)
		r.With(authMW).Post("/profile/location", profileHandler.UpdateLocation)
		r.With(authMW).Get("/profile/slots", profileHandler.ListSlots)
		r.With(authMW).Post("/profile/slots", profileHandler.AddSlot)
		r.With(authMW).Put("/profile/slots/{slotID}", profileHandler.UpdateSlot)
		r.With(authMW).Delete("/profile/slots/{slotID}", profileHandler.DeleteSlot)
		r.With(authMW).Get("/profiles/{profileID}/slots", profileHandler.ListProfileSlots)

		if deps.Hub != nil && deps.MatchesService != nil {
			r.Get("/ws", ws.ServeWS(deps.Hub, deps.Validator, deps.MatchesService, deps.Logger))
		}
	})
}
