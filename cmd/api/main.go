package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rafflehq/raffle-backend/api/routes"
	"github.com/rafflehq/raffle-backend/internal/cache"
	"github.com/rafflehq/raffle-backend/internal/config"
	"github.com/rafflehq/raffle-backend/internal/handlers"
	"github.com/rafflehq/raffle-backend/internal/numberspace"
	mongorepo "github.com/rafflehq/raffle-backend/internal/repositories/mongodb"
	"github.com/rafflehq/raffle-backend/internal/services"
	"github.com/rafflehq/raffle-backend/pkg/jwt"
	"github.com/rafflehq/raffle-backend/pkg/mongodb"
	"golang.org/x/exp/slog"
)

func main() {
	// .env is optional; real deployments configure through the environment
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg.LogLevel)

	if cfg.JWT.Secret == "" {
		slog.Error("JWT_SECRET is not configured")
		os.Exit(1)
	}

	mongoClient, err := mongodb.NewClient(cfg.MongoDB.URI)
	if err != nil {
		slog.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			slog.Error("Error disconnecting from MongoDB", "error", err)
		}
	}()

	db := mongoClient.Database(cfg.MongoDB.Database)
	if err := mongorepo.EnsureIndexes(context.Background(), db); err != nil {
		slog.Error("Failed to create indexes", "error", err)
		os.Exit(1)
	}

	// Repositories
	raffleRepo := mongorepo.NewRaffleRepository(db)
	submissionRepo := mongorepo.NewSubmissionRepository(db)
	ticketRepo := mongorepo.NewTicketRepository(db)
	adminRepo := mongorepo.NewAdminUserRepository(db)

	// Shared infrastructure
	coordinator := cache.NewCoordinator()
	allocator := numberspace.NewAllocator()
	tokens := jwt.NewTokenService(cfg.JWT.Secret, cfg.JWT.ExpiresIn)

	// Services
	raffleService := services.NewRaffleService(raffleRepo, submissionRepo, ticketRepo, allocator, coordinator, cfg.Pagination.MaxLimit)
	submissionService := services.NewSubmissionService(submissionRepo, ticketRepo, raffleRepo, coordinator, cfg.Pagination.MaxLimit)
	statsService := services.NewStatsService(raffleRepo, submissionRepo, ticketRepo, coordinator)
	authService := services.NewAuthService(adminRepo, tokens)

	coordinator.RegisterRefresher(cache.ViewStats, statsService.Refresh)

	// Handlers
	deps := routes.HandlerDependencies{
		AuthHandler:       handlers.NewAuthHandler(authService),
		RaffleHandler:     handlers.NewRaffleHandler(raffleService),
		SubmissionHandler: handlers.NewSubmissionHandler(submissionService),
		StatsHandler:      handlers.NewStatsHandler(statsService),
	}

	router := routes.SetupRouter(cfg, tokens, deps)
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		slog.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("Server exiting")
}

func setupLogger(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
