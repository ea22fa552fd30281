package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"matchmaker/infrastructure/cache"
	"matchmaker/infrastructure/db"
	"matchmaker/infrastructure/ws"
	"matchmaker/internal/config"
	httpHandler "matchmaker/internal/delivery/http"
	"matchmaker/internal/delivery/websocket"
	"matchmaker/internal/entity"
	"matchmaker/internal/repository"
	"matchmaker/internal/usecase"
	"matchmaker/pkg/jwt"
	"matchmaker/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	shutdownTimeout      = 15 * time.Second
	tokenCleanupInterval = time.Hour
)

func main() {
	if err := run(); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func run() error {
	cfg := config.Load()
	logger.Setup(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoDb, err := db.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return err
	}
	defer mongoDb.Close(context.Background())
	log.WithField("database", cfg.MongoDatabase).Info("connected to MongoDB")

	if err := mongoDb.EnsureIndexes(ctx); err != nil {
		return err
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(*mongoDb.DB)
	matchRepo := repository.NewMatchRepository(*mongoDb.DB)
	messageRepo := repository.NewMessageRepository(*mongoDb.DB)
	productRepo := repository.NewProductRepository(*mongoDb.DB)
	refreshTokenRepo := repository.NewRefreshTokenRepository(*mongoDb.DB)

	if cfg.UsesDefaultSecret() {
		log.Warn("using default JWT secret, set JWT_SECRET for production")
	}
	jwtManager := jwt.NewJWTManager(cfg.JWTSecret, cfg.AccessTokenDuration, cfg.RefreshTokenDuration)

	var hub ws.IHub
	if cfg.RedisAddr != "" {
		log.WithFields(log.Fields{"redis": cfg.RedisAddr, "serverId": cfg.ServerID}).Info("using redis hub")
		hub = ws.NewRedisHub(cfg.RedisAddr, cfg.ServerID)
	} else {
		log.Info("using in-memory hub (single server)")
		hub = ws.NewHub()
	}
	notifier := websocket.NewRoomNotifier(hub)

	profiles := cache.NewMemCache[entity.User](time.Minute)
	defer profiles.Close()
	limiters := cache.NewMemCache[*rate.Limiter](5 * time.Minute)
	defer limiters.Close()

	// Initialize use cases
	authUc := usecase.NewAuthUsecase(userRepo, refreshTokenRepo, jwtManager)
	userUc := usecase.NewUserUsecase(userRepo, matchRepo, messageRepo, refreshTokenRepo, profiles)
	matchUc := usecase.NewMatchUsecase(userRepo, matchRepo, profiles, notifier)
	messageUc := usecase.NewMessageUsecase(messageRepo, userRepo, notifier)
	productUc := usecase.NewProductUsecase(productRepo)

	websocketH := websocket.NewWebsocketHandler(hub, authUc, userUc, messageUc, cfg.CORSOrigins)
	hub.SetOnRoomEmpty(websocketH.HandleRoomEmpty)
	go hub.Run(ctx)

	go purgeExpiredTokens(ctx, refreshTokenRepo)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(httpHandler.RequestLogger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	httpHandler.MapHttpRoutes(router, httpHandler.Handlers{
		Auth:    httpHandler.NewAuthHandler(authUc, jwtManager.RefreshTokenDuration(), cfg.CookieSecure),
		User:    httpHandler.NewUserHandler(userUc, matchUc),
		Chat:    httpHandler.NewChatHandler(messageUc),
		Product: httpHandler.NewProductHandler(productUc),
		Health: httpHandler.HealthHandler(func(r *http.Request) error {
			return mongoDb.Ping(r.Context())
		}),
	}, websocketH, httpHandler.NewAuthMiddleware(authUc), httpHandler.NewRateLimiter(cfg.AuthRateLimit, limiters))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("HTTP server is running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func purgeExpiredTokens(ctx context.Context, refreshTokenRepo repository.RefreshTokenRepository) {
	ticker := time.NewTicker(tokenCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := refreshTokenRepo.DeleteExpired(ctx)
			if err != nil {
				log.WithError(err).Warn("purge expired refresh tokens")
				continue
			}
			if n > 0 {
				log.WithField("count", n).Info("purged expired refresh tokens")
			}
		}
	}
}
