package bootstrap

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rl1809/storefront/internal/adapter/storage"
	"github.com/rl1809/storefront/internal/config"
	"github.com/rl1809/storefront/internal/port"
)

// OpenStorage builds the configured backend and seeds it before returning.
func OpenStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (port.Storage, error) {
	log = log.With().Str("backend", cfg.Storage.Backend).Logger()

	var store port.Storage
	switch cfg.Storage.Backend {
	case "memory":
		store = storage.NewMemoryAdapter()
	case "mysql":
		if cfg.MySQL.Migrate {
			if err := storage.Migrate(cfg.MySQL.DSN); err != nil {
				return nil, err
			}
			log.Info().Msg("schema migrated")
		}

		db, err := storage.OpenMySQL(ctx, storage.MySQLOptions{
			DSN:             cfg.MySQL.DSN,
			MaxOpenConns:    cfg.MySQL.MaxOpenConns,
			MaxIdleConns:    cfg.MySQL.MaxIdleConns,
			ConnMaxLifetime: cfg.MySQL.ConnMaxLifetime,
		})
		if err != nil {
			return nil, err
		}
		store = storage.NewMySQLAdapter(db)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	if err := Seed(ctx, store, log); err != nil {
		store.Close()
		return nil, fmt.Errorf("seed: %w", err)
	}

	log.Info().Msg("storage ready")
	return store, nil
}
