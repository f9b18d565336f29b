package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/taskpad/taskpad-go/internal/config"
	"github.com/taskpad/taskpad-go/internal/crypto"
	"github.com/taskpad/taskpad-go/internal/errlog"
	"github.com/taskpad/taskpad-go/internal/handler"
	"github.com/taskpad/taskpad-go/internal/repository"
	"github.com/taskpad/taskpad-go/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := repository.NewDB(cfg.DatabaseDSN)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := repository.InitSchema(ctx, db); err != nil {
		slog.Error("schema initialization failed", "error", err)
		os.Exit(1)
	}

	userRepo := repository.NewUserRepository(db)
	todoRepo := repository.NewTodoRepository(db)
	errRepo := repository.NewErrorLogRepository(db)

	tokens := crypto.NewTokenManager(cfg.JWTSecret, cfg.SessionTokenTTL, cfg.ResetTokenTTL)

	respond := handler.NewResponder(errRepo, cfg.Env)
	authHandler := handler.NewAuthHandler(service.NewAuthService(userRepo, tokens, cfg.Env), respond)
	todoHandler := handler.NewTodoHandler(service.NewTodoService(todoRepo), respond)

	router := handler.NewRouter(handler.RouterConfig{
		Auth:      authHandler,
		Todos:     todoHandler,
		Respond:   respond,
		Tokens:    tokens,
		Users:     userRepo,
		AuthRPS:   5,
		AuthBurst: 10,
	})

	janitor := errlog.NewJanitor(errRepo, cfg.ErrorLogRetention, cfg.ErrorLogSweep)
	go janitor.Run(ctx)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
