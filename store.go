package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/c14220110/mediflow-backend/config"
	"github.com/c14220110/mediflow-backend/pkg/storage"
	"github.com/c14220110/mediflow-backend/pkg/storage/leveldb"
	"github.com/c14220110/mediflow-backend/pkg/storage/mariadb"
	"github.com/c14220110/mediflow-backend/pkg/storage/memory"
	"github.com/c14220110/mediflow-backend/pkg/storage/postgres"
)

func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg.IsDevelopment() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// openStore memilih backend persistensi berdasarkan STORAGE_DRIVER.
func openStore(ctx context.Context, cfg *config.Config, ephemeral bool) (storage.Store, error) {
	if ephemeral {
		return memory.New(), nil
	}
	switch cfg.StorageDriver {
	case "leveldb":
		return leveldb.Open(cfg.LevelDBPath)
	case "mariadb":
		db, err := mariadb.Connect(cfg)
		if err != nil {
			return nil, err
		}
		store, err := mariadb.NewStore(ctx, db)
		if err != nil {
			db.Close()
			return nil, err
		}
		return store, nil
	case "postgres":
		return postgres.Open(cfg.PostgresURI)
	}
	return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
}
