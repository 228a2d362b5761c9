package router

import (
	"fmt"
	"log/slog"

	"github.com/anonto42/quill/backend/internal/handlers"
	"github.com/anonto42/quill/backend/internal/middleware"
	"github.com/anonto42/quill/backend/internal/repositories"
	"github.com/anonto42/quill/backend/internal/services"
	"github.com/anonto42/quill/backend/pkg/config"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// Deps are the stores and settings the routes are built from.
type Deps struct {
	Postgres *gorm.DB
	Posts    repositories.PostRepository
	JWT      config.JWTConfig
	// Firebase is optional; without it federated login answers 503.
	Firebase handlers.FirebaseVerifier
	Health   map[string]handlers.Pinger
	Logger   *slog.Logger
}

// SetupRoutes migrates the relational schema, builds the services and
// registers every route on e.
func SetupRoutes(e *echo.Echo, d Deps) error {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "router")

	if err := repositories.AutoMigrate(d.Postgres); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	logger.Info("postgres auto-migrations completed")

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(d.Postgres)
	followRepo := repositories.NewPostgresFollowRepository(d.Postgres)
	bookmarkRepo := repositories.NewPostgresBookmarkRepository(d.Postgres)
	notificationRepo := repositories.NewPostgresNotificationRepository(d.Postgres)

	// --- Services ---
	guard := services.NewAuthGuard(d.JWT, userRepo)
	engine := services.NewNotificationEngine(notificationRepo, userRepo, d.Logger)
	graph := services.NewSocialGraph(userRepo, followRepo, bookmarkRepo, d.Posts, engine, d.Logger)
	content := services.NewContentService(d.Posts, userRepo, followRepo, bookmarkRepo, engine, d.Logger)
	accounts := services.NewAccountService(userRepo, followRepo, bookmarkRepo, notificationRepo, d.Posts, d.Logger)

	// Health check - always accessible
	e.GET("/health", handlers.NewHealthHandler(d.Health).HealthCheck)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	handlers.NewAuthHandler(userRepo, guard, d.Firebase).RegisterAuthRoutes(authGroup)
	if d.Firebase == nil {
		logger.Warn("firebase not configured, federated login disabled")
	}

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(guard))

	handlers.NewUserHandler(accounts).RegisterProfileRoutes(api)
	handlers.NewPostHandler(content).RegisterPostRoutes(api)
	handlers.NewFeedHandler(content).RegisterFeedRoutes(api)
	handlers.NewLikeHandler(content).RegisterLikeRoutes(api)
	handlers.NewCommentHandler(content).RegisterCommentRoutes(api)
	handlers.NewFollowHandler(graph).RegisterFollowRoutes(api)
	handlers.NewBookmarkHandler(graph).RegisterBookmarkRoutes(api)
	handlers.NewNotificationHandler(engine).RegisterNotificationRoutes(api)

	// Admin routes sit under the authenticated group.
	handlers.NewAdminHandler(engine, accounts).RegisterAdminRoutes(api.Group("/admin"))

	logger.Info("all routes configured")
	return nil
}
