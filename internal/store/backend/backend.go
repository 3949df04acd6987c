// Package backend opens the record store named by the configuration.
package backend

import (
	"context"
	"fmt"
	"log"
	"os"

	"health-companion-api/internal/config"
	"health-companion-api/internal/store"
	"health-companion-api/internal/store/postgres"
	"health-companion-api/internal/store/sqlite"
)

// MigrationFile is applied to postgres on startup when present.
const MigrationFile = "db/migrations/001_init.sql"

func Open(ctx context.Context, cfg config.Config, logger *log.Logger) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		st, err := sqlite.New(cfg.SQLiteDSN)
		if err != nil {
			return nil, fmt.Errorf("sqlite: %w", err)
		}
		logger.Printf("using sqlite store %s", cfg.SQLiteDSN)
		return st, nil
	case config.DriverPostgres:
		st, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		logger.Println("connected to postgres")
		if ddl, err := os.ReadFile(MigrationFile); err != nil {
			logger.Printf("migration file not found, skipping: %v", err)
		} else if err := st.Migrate(ctx, string(ddl)); err != nil {
			logger.Printf("migration warning: %v", err)
		} else {
			logger.Println("migration applied")
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
