package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/Apurer/go-gin-bookstore/internal/app/config"
	userpostgres "github.com/Apurer/go-gin-bookstore/internal/domains/users/adapters/persistence/postgres"
	userapp "github.com/Apurer/go-gin-bookstore/internal/domains/users/application"
	platformpostgres "github.com/Apurer/go-gin-bookstore/internal/platform/postgres"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	db, cleanup := platformpostgres.ConnectDSN(ctx, cfg.PostgresDSN, logger)
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; cannot purge sessions")
	}

	users := userapp.NewService(userpostgres.NewRepository(db), userpostgres.NewSessionStore(db), userapp.WithSessionTTL(cfg.SessionTTL))
	removed, err := users.PurgeExpiredSessions(ctx)
	if err != nil {
		log.Fatalf("failed to purge sessions: %v", err)
	}
	logger.Info("session purge completed", slog.Int64("removed", removed))
}
