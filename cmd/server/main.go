package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/quill/backend/internal/handlers"
	"github.com/anonto42/quill/backend/internal/repositories"
	"github.com/anonto42/quill/backend/internal/router"
	"github.com/anonto42/quill/backend/pkg/config"
	"github.com/anonto42/quill/backend/pkg/firebase"
	"github.com/anonto42/quill/backend/validators"
	"github.com/labstack/echo/v4"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		logger.Error("failed to initialize databases", "err", err)
		os.Exit(1)
	}
	defer db.CloseDB()

	posts := repositories.NewMongoPostRepository(db.MongoDatabase())
	if err := posts.EnsureIndexes(ctx); err != nil {
		logger.Error("failed to create post indexes", "err", err)
		os.Exit(1)
	}

	deps := router.Deps{
		Postgres: db.Postgres,
		Posts:    posts,
		JWT:      cfg.JWT,
		Health: map[string]handlers.Pinger{
			"postgres": handlers.PingFunc(db.PingPostgres),
			"mongodb":  handlers.PingFunc(db.PingMongo),
		},
		Logger: logger,
	}

	// Firebase login is optional; local email/password auth works without it.
	fbApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		logger.Warn("firebase unavailable", "err", err)
	} else {
		deps.Firebase = fbApp.AuthClient
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()
	config.SetupMiddleware(e)

	if err := router.SetupRoutes(e, deps); err != nil {
		logger.Error("failed to set up routes", "err", err)
		os.Exit(1)
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Env)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
}
