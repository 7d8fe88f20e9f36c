package router

import (
	"github.com/anonto42/socialnet/backend/internal/handlers"
	"github.com/anonto42/socialnet/backend/internal/metrics"
	"github.com/anonto42/socialnet/backend/internal/middleware"
	"github.com/anonto42/socialnet/backend/internal/repositories"
	"github.com/anonto42/socialnet/backend/internal/validators"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

// Deps is everything SetupRoutes wires into handlers.
type Deps struct {
	Users         repositories.UserRepository
	Posts         repositories.PostRepository
	Comments      repositories.CommentRepository
	Likes         repositories.LikeRepository
	Notifications repositories.NotificationRepository

	Follows handlers.FollowManager
	Tokens  handlers.TokenIssuer

	// Verifiers are tried in order on protected routes.
	Verifiers []middleware.TokenVerifier
	// FirebaseAuth enables /api/firebase-login; nil disables it.
	FirebaseAuth handlers.FirebaseTokenVerifier
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, log zerolog.Logger, m *metrics.Metrics) {
	e.HTTPErrorHandler = middleware.HTTPErrorHandler
	e.Validator = validators.NewValidator()

	e.Use(eMiddleware.RequestIDWithConfig(eMiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.ContextLogger(log))
	e.Use(middleware.RequestLogger())
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	if m != nil {
		e.Use(m.Middleware())
	}
	log.Debug().Msg("global middleware configured")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, d Deps, log zerolog.Logger) {
	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	api := e.Group("/api")

	// --- Unprotected routes for authentication ---
	authHandler := handlers.NewAuthHandler(d.Users, d.Tokens, d.FirebaseAuth)
	authHandler.RegisterAuthRoutes(api)

	// --- Protected routes ---
	protected := api.Group("", middleware.Auth(d.Verifiers...))

	handlers.NewUserHandler(d.Users, d.Follows).RegisterProfileRoutes(protected)
	handlers.NewFollowHandler(d.Follows, d.Users).RegisterFollowRoutes(protected)
	handlers.NewPostHandler(d.Posts, d.Users, d.Likes, d.Comments).RegisterPostRoutes(protected)
	handlers.NewCommentHandler(d.Comments, d.Posts, d.Notifications).RegisterCommentRoutes(protected)
	handlers.NewLikeHandler(d.Likes, d.Posts, d.Notifications).RegisterLikeRoutes(protected)
	handlers.NewNotificationHandler(d.Notifications).RegisterNotificationRoutes(protected)

	log.Info().
		Int("routes", len(e.Routes())).
		Bool("firebase_login", d.FirebaseAuth != nil).
		Msg("routes configured")
}
