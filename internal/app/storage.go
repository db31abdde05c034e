package app

import (
	"fmt"

	"github.com/lgrosz/climb-catalog/internal/data/db"
	"github.com/lgrosz/climb-catalog/internal/platform/logger"
)

// OpenDatabase opens the configured primary (and replicas, for postgres).
// The schema is left alone; call Migrate on the result.
func OpenDatabase(log *logger.Logger, cfg Config) (db.Service, error) {
	switch cfg.DBDriver {
	case DriverSQLite:
		svc, err := db.NewSQLiteService(log, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("init sqlite: %w", err)
		}
		return svc, nil
	default:
		svc, err := db.NewPostgresService(log, cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("init postgres: %w", err)
		}
		return svc, nil
	}
}
