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

	"example.com/expense-tracker/internal/config"
	"example.com/expense-tracker/internal/database"
	"example.com/expense-tracker/internal/repository"
	"example.com/expense-tracker/internal/server"
)

func main() {
	ensureEnvFile()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	deps, closeStore, err := openUserStore(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to open user store", slog.String("store", cfg.Storage.UserStore), slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStore()

	e, err := server.New(cfg, logger, deps)
	if err != nil {
		logger.Error("failed to build server", slog.String("error", err.Error()))
		os.Exit(1)
	}
	httpServer := server.NewHTTPServer(cfg.Server, e)

	go func() {
		logger.Info("http server started", slog.String("addr", httpServer.Addr), slog.String("user_store", cfg.Storage.UserStore))
		if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", slog.String("error", err.Error()))
		}
	}()

	shutdownSignal := make(chan os.Signal, 1)
	signal.Notify(shutdownSignal, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownSignal

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.String("error", err.Error()))
	}
}

// openUserStore выбирает хранилище учетных данных по USER_STORE.
func openUserStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (server.Dependencies, func(), error) {
	if cfg.Storage.UserStore != config.UserStorePostgres {
		users, err := repository.NewFileUserRepository(cfg.Storage.UsersFile)
		if err != nil {
			return server.Dependencies{}, nil, err
		}
		return server.Dependencies{Users: users}, func() {}, nil
	}

	db, err := database.Open(ctx, cfg.Database, logger)
	if err != nil {
		return server.Dependencies{}, nil, err
	}

	if cfg.Database.Migrate {
		if err := database.Migrate(cfg.Database); err != nil {
			db.Close()
			return server.Dependencies{}, nil, err
		}
		logger.Info("database migrations applied")
	}

	deps := server.Dependencies{
		Users: repository.NewUserRepository(db),
		Ping:  db.Ping,
	}
	return deps, db.Close, nil
}

func ensureEnvFile() {
	if os.Getenv("ENV_FILE") != "" {
		return
	}

	if _, err := os.Stat(".env"); err == nil {
		_ = os.Setenv("ENV_FILE", ".env")
		return
	}

	if _, err := os.Stat("../.env"); err == nil {
		_ = os.Setenv("ENV_FILE", "../.env")
	}
}
