package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/socialnet/backend/internal/cache"
	"github.com/anonto42/socialnet/backend/internal/metrics"
	"github.com/anonto42/socialnet/backend/internal/middleware"
	"github.com/anonto42/socialnet/backend/internal/repositories"
	"github.com/anonto42/socialnet/backend/internal/router"
	"github.com/anonto42/socialnet/backend/internal/services"
	"github.com/anonto42/socialnet/backend/pkg/config"
	"github.com/anonto42/socialnet/backend/pkg/firebase"
	"github.com/anonto42/socialnet/backend/pkg/logger"
	"github.com/labstack/echo/v4"
)

const serviceName = "socialnet"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.L().Fatal().Err(err).Msg("failed to load configuration")
	}

	logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Pretty:      cfg.IsDevelopment(),
		ServiceName: serviceName,
	})
	log := *logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize databases")
	}
	defer db.CloseDB(log)

	if err := repositories.Migrate(db.SQL); err != nil {
		log.Fatal().Err(err).Msg("failed to auto migrate models")
	}

	userRepo := repositories.NewPostgresUserRepository(db.SQL)
	followRepo := repositories.NewPostgresFollowRepository(db.SQL)
	commentRepo := repositories.NewPostgresCommentRepository(db.SQL)
	likeRepo := repositories.NewPostgresLikeRepository(db.SQL)
	notificationRepo := repositories.NewPostgresNotificationRepository(db.SQL)
	postRepo := repositories.NewMongoPostRepository(db.Mongo.Database(cfg.MongoDatabase))
	if err := postRepo.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to ensure post indexes")
	}

	m := metrics.New(serviceName)

	var counts cache.CountCache = cache.NopCountCache{}
	if db.Redis != nil {
		counts = cache.NewRedisCountCache(db.Redis, cfg.CountCacheTTL)
	}

	followService := services.NewFollowService(followRepo,
		services.WithCountCache(counts),
		services.WithNotifier(notificationRepo),
		services.WithRecorder(m),
		services.WithStoreTimeout(cfg.StoreTimeout),
	)

	jwtVerifier := middleware.NewJWTVerifier(cfg.JWTSecret, cfg.TokenTTL)
	deps := router.Deps{
		Users:         userRepo,
		Posts:         postRepo,
		Comments:      commentRepo,
		Likes:         likeRepo,
		Notifications: notificationRepo,
		Follows:       followService,
		Tokens:        jwtVerifier,
		Verifiers:     []middleware.TokenVerifier{jwtVerifier},
	}

	// Firebase is optional: without credentials only local tokens are accepted.
	fb, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	switch {
	case errors.Is(err, firebase.ErrNotConfigured):
		log.Info().Msg("firebase not configured, firebase login disabled")
	case err != nil:
		log.Fatal().Err(err).Msg("failed to initialize Firebase")
	default:
		deps.FirebaseAuth = fb.AuthClient
		deps.Verifiers = append(deps.Verifiers, middleware.NewFirebaseVerifier(fb.AuthClient, userRepo))
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	router.SetupMiddleware(e, log, m)
	router.SetupRoutes(e, deps, log)

	metricsServer := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           m.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("port", cfg.MetricsPort).Msg("metrics server listening")
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server stopped")
		}
	}()

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("metrics server shutdown failed")
	}
}
