package main

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/courtclock/go/internal/config"
	"github.com/mcdev12/courtclock/go/internal/storage"
)

func setupStore(ctx context.Context, cfg config.Env) (storage.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		log.Warn().Msg("using in-memory store, state is lost on exit")
		return storage.NewMemoryStore(), nil
	case config.DriverSQLite:
		return storage.OpenSQLite(cfg.SQLitePath)
	case config.DriverPostgres:
		return setupPostgres(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func setupPostgres(ctx context.Context, cfg config.Env) (storage.Store, error) {
	database, err := sql.Open("postgres", cfg.DB.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}
	if err := database.PingContext(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store, err := storage.NewPostgresStore(ctx, database)
	if err != nil {
		database.Close()
		return nil, err
	}

	log.Info().
		Str("user", cfg.DB.User).
		Str("host", cfg.DB.Host).
		Int("port", cfg.DB.Port).
		Str("database", cfg.DB.Database).
		Msg("connected to database")
	return store, nil
}
