package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Fumiyasu01/matching-app/internal/config"
	s3infra "github.com/Fumiyasu01/matching-app/internal/infra/s3"
	"github.com/Fumiyasu01/matching-app/internal/repo/memory"
	pgrepo "github.com/Fumiyasu01/matching-app/internal/repo/postgres"
	redrepo "github.com/Fumiyasu01/matching-app/internal/repo/redis"
	authsvc "github.com/Fumiyasu01/matching-app/internal/services/auth"
	chatsvc "github.com/Fumiyasu01/matching-app/internal/services/chat"
	feedsvc "github.com/Fumiyasu01/matching-app/internal/services/feed"
	matchessvc "github.com/Fumiyasu01/matching-app/internal/services/matches"
	modsvc "github.com/Fumiyasu01/matching-app/internal/services/moderation"
	profilesvc "github.com/Fumiyasu01/matching-app/internal/services/profiles"
	swipesvc "github.com/Fumiyasu01/matching-app/internal/services/swipes"
	"github.com/Fumiyasu01/matching-app/internal/transport/ws"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	simulator  *chatsvc.Simulator
	httpRouter http.Handler
}

// storageSet is the backend-neutral view the services wire against.
// Both the postgres repos and the memory store satisfy these seams.
type storageSet struct {
	profiles feedAndProfileStore
	feed     feedsvc.Repository
	swipes   swipesvc.SwipeStore
	matches  matchStore
	messages chatsvc.MessageStore
	blocks   blockStore
	reports  modsvc.ReportStore
	slots    profilesvc.SlotStore
}

type feedAndProfileStore interface {
	profilesvc.ProfileStore
	feedsvc.ProfileStore
}

type matchStore interface {
	matchessvc.MatchStore
	chatsvc.MatchStore
}

type blockStore interface {
	swipesvc.BlockStore
	chatsvc.BlockStore
	modsvc.BlockStore
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var (
		stores      storageSet
		pool        *pgxpool.Pool
		memStore    *memory.Store
		provisioner ProfileProvisioner
	)

	switch cfg.Storage.Mode {
	case config.StorageModeMemory:
		memStore = memory.NewStore()
		memStore.SeedDemo(time.Now().UTC())
		provisioner = memStore
		stores = storageSet{
			profiles: memStore,
			feed:     memStore,
			swipes:   memStore,
			matches:  memStore,
			messages: memStore,
			blocks:   memStore,
			reports:  memStore,
			slots:    memStore,
		}
		log.Info("storage backend: in-memory with demo seed")

	case config.StorageModePostgres:
		p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		pool = p
		stores = storageSet{
			profiles: pgrepo.NewProfileRepo(pool),
			feed:     pgrepo.NewFeedRepo(pool),
			swipes:   pgrepo.NewSwipeRepo(pool),
			matches:  pgrepo.NewMatchRepo(pool),
			messages: pgrepo.NewMessageRepo(pool),
			blocks:   pgrepo.NewBlockRepo(pool),
			reports:  pgrepo.NewReportRepo(pool),
			slots:    pgrepo.NewAvailabilitySlotRepo(pool),
		}
		log.Info("storage backend: postgres")

	default:
		return nil, fmt.Errorf("unsupported storage mode %q", cfg.Storage.Mode)
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	var rateRepo *redrepo.RateRepo
	pingCtx, cancelPing := context.WithTimeout(ctx, 2*time.Second)
	redisErr := redisClient.Ping(pingCtx).Err()
	cancelPing()
	switch {
	case redisErr == nil:
		rateRepo = redrepo.NewRateRepo(redisClient)
	case memStore != nil:
		// The in-memory backend exists so the app can run with no
		// external infrastructure at all. Rate caps come back with redis.
		log.Warn("redis unreachable, rate limits disabled", zap.Error(redisErr))
	default:
		rateRepo = redrepo.NewRateRepo(redisClient)
		log.Warn("redis unreachable, rate limited requests will fail until it returns", zap.Error(redisErr))
	}

	var s3Client *minio.Client
	var signer *s3infra.AvatarSigner
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, avatars will be served without signed urls", zap.Error(err))
	} else {
		s3Client = c
		signer = s3infra.NewAvatarSigner(s3Client, cfg.S3.Bucket)
	}

	validator := authsvc.NewJWTValidator(cfg.Auth.JWTSecret)

	feedDeps := feedsvc.Dependencies{Repo: stores.feed, Profiles: stores.profiles}
	swipeDeps := swipesvc.Dependencies{
		SwipeStore: stores.swipes,
		Profiles:   stores.profiles,
		Blocks:     stores.blocks,
	}
	if rateRepo != nil {
		swipeDeps.RateLimiter = rateRepo
		swipeDeps.RateKey = redrepo.SwipeKey
	}
	chatDeps := chatsvc.Dependencies{
		Messages: stores.messages,
		Matches:  stores.matches,
		Profiles: stores.profiles,
		Blocks:   stores.blocks,
	}
	modDeps := modsvc.Dependencies{
		Blocks:   stores.blocks,
		Reports:  stores.reports,
		Profiles: stores.profiles,
	}
	if rateRepo != nil {
		modDeps.RateLimiter = rateRepo
		modDeps.RateKey = redrepo.ReportKey
	}
	if signer != nil {
		feedDeps.Signer = signer
		chatDeps.Signer = signer
		modDeps.Signer = signer
	}

	hub := ws.NewHub(log)
	go hub.Run()
	notifier := ws.NewHubNotifier(hub, log)
	chatDeps.Notifier = notifier

	feedService := feedsvc.NewService(feedDeps, feedsvc.Config{
		PageSize:      cfg.Feed.PageSize,
		MaxDistanceKM: cfg.Feed.MaxDistanceKM,
		ReadAttempts:  cfg.Feed.ReadRetries,
	})
	swipeService := swipesvc.NewService(swipeDeps, swipesvc.Config{
		BurstLimit:  cfg.Chat.SwipeBurst.MaxPer10Sec,
		BurstWindow: 10 * time.Second,
	})
	matchesService := matchessvc.NewService(stores.matches, signerOrNil(signer))
	chatService := chatsvc.NewService(chatDeps, chatsvc.Config{
		MaxContentLength: cfg.Chat.MaxContentLength,
	})
	moderationService := modsvc.NewService(modDeps, modsvc.Config{
		ReportLimit:  cfg.Moderation.ReportMaxPer10Min,
		ReportWindow: 10 * time.Minute,
	})
	profileService := profilesvc.NewService(stores.profiles, stores.slots, signerOrNil(signer))

	// The reply simulator only makes sense against the seeded memory
	// backend: every demo profile doubles as a scripted counterpart.
	var simulator *chatsvc.Simulator
	if memStore != nil && cfg.Chat.Simulator.Enabled {
		simulator = chatsvc.NewSimulator(chatService, stores.matches, notifier, chatsvc.SimulatorConfig{
			TypingDelay:   cfg.Chat.Simulator.TypingDelay,
			ReplyMinDelay: cfg.Chat.Simulator.ReplyMinDelay,
			ReplyMaxDelay: cfg.Chat.Simulator.ReplyMaxDelay,
			TypingTimeout: cfg.Chat.Simulator.TypingTimeout,
		}, log)
		chatService.SetHook(simulator)
		log.Info("chat reply simulator enabled")
	}

	deps := Dependencies{
		FeedService:       feedService,
		SwipeService:      swipeService,
		MatchesService:    matchesService,
		ChatService:       chatService,
		ModerationService: moderationService,
		ProfileService:    profileService,
		Hub:               hub,
		Validator:         validator,
		Provisioner:       provisioner,
		Logger:            log,
		Config:            cfg,
	}
	if simulator != nil {
		deps.TypingReader = simulator
	}
	RegisterRoutes(r, deps)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		s3:         s3Client,
		simulator:  simulator,
		httpRouter: r,
	}, nil
}

// signerOrNil keeps a nil *AvatarSigner from becoming a non-nil
// interface value downstream.
func signerOrNil(signer *s3infra.AvatarSigner) matchessvc.AvatarSigner {
	if signer == nil {
		return nil
	}
	return signer
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.simulator != nil {
		a.simulator.Close()
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
