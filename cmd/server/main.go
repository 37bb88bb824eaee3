package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"shadowchase/internal/config"
	"shadowchase/internal/database"
	"shadowchase/internal/handlers"
	"shadowchase/internal/logging"
	"shadowchase/internal/repository"
	"shadowchase/internal/security"
	"shadowchase/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	defer logger.Sync()

	if cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET must be set")
	}

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("database connection established", zap.String("type", cfg.DatabaseType))

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	gameRepo := repository.NewGameRepository(db)
	moveRepo := repository.NewMoveRepository(db)

	// Initialize services. Session and ledger services share one lock
	// registry so a game is never mutated from two paths at once.
	tokens := security.NewTokenManager(cfg.JWTSecret, cfg.TokenDuration)
	locks := service.NewGameLocks()

	authService := service.NewAuthService(userRepo, tokens)
	sessionService := service.NewSessionService(gameRepo, locks, cfg.CodeLength, cfg.MaxCodeAttempts, logger)
	ledgerService := service.NewLedgerService(sessionService, moveRepo, nil, nil, locks, logger)

	inviteService, err := service.NewInviteService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, logger)
	if err != nil {
		logger.Fatal("failed to initialize invite service", zap.Error(err))
	}

	// Initialize handlers
	limiter := security.NewRateLimiter(20, time.Minute)
	middleware := handlers.NewMiddleware(authService, limiter, logger)
	authHandler := handlers.NewAuthHandler(authService, logger)
	gameHandler := handlers.NewGameHandler(sessionService, ledgerService, inviteService, logger)

	// Setup routes
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/users/register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /api/users/login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("GET /api/users/me", middleware.RequireAuth(authHandler.Me))

	mux.HandleFunc("POST /api/games", middleware.RequireAuth(gameHandler.CreateGame))
	mux.HandleFunc("POST /api/games/{code}/join", middleware.RequireAuth(gameHandler.JoinGame))
	mux.HandleFunc("GET /api/games/{id}", middleware.RequireAuth(gameHandler.GetGame))
	mux.HandleFunc("POST /api/games/{id}/start", middleware.RequireAuth(gameHandler.StartGame))
	mux.HandleFunc("POST /api/games/{id}/cancel", middleware.RequireAuth(gameHandler.CancelGame))
	mux.HandleFunc("POST /api/games/{id}/end", middleware.RequireAuth(gameHandler.EndGame))
	mux.HandleFunc("POST /api/games/{id}/leave", middleware.RequireAuth(gameHandler.LeaveGame))
	mux.HandleFunc("POST /api/games/{id}/move", middleware.RequireAuth(gameHandler.RecordMove))
	mux.HandleFunc("GET /api/games/{id}/moves", middleware.RequireAuth(gameHandler.ListMoves))
	mux.HandleFunc("POST /api/games/{id}/invite", middleware.RequireAuth(gameHandler.InvitePlayer))

	// Wrap with logging middleware
	handler := handlers.Logging(logger, mux)

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}
