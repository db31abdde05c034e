package db

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lgrosz/climb-catalog/internal/platform/logger"
)

// SQLiteDSN builds a go-sqlite3 DSN with foreign keys enforced. An empty path,
// ":memory:" or "mem:<name>" yields a named shared-cache in-memory database.
func SQLiteDSN(path string) string {
	path = strings.TrimSpace(path)
	switch {
	case path == "" || path == ":memory:":
		return "file:climb-catalog?mode=memory&cache=shared&_foreign_keys=on"
	case strings.HasPrefix(path, "mem:"):
		return fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", strings.TrimPrefix(path, "mem:"))
	}
	return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL", path)
}

// OpenSQLite opens path with a single pooled connection. Every statement of a
// transaction must go through the transaction handle.
func OpenSQLite(path string, logg *logger.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(SQLiteDSN(path)), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   NewGormLogger(logg, 0),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(0)
	return db, nil
}

type SQLiteService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSQLiteService(logg *logger.Logger, path string) (*SQLiteService, error) {
	serviceLog := logg.With("service", "SQLiteService")
	db, err := OpenSQLite(path, logg)
	if err != nil {
		return nil, err
	}
	return &SQLiteService{db: db, log: serviceLog}, nil
}

func (s *SQLiteService) DB() *gorm.DB { return s.db }

func (s *SQLiteService) Migrate(ctx context.Context) error {
	s.log.Info("Migrating sqlite schema...")
	if err := Migrate(ctx, s.db); err != nil {
		s.log.Error("Failed to migrate sqlite schema", "error", err)
		return err
	}
	return nil
}

func (s *SQLiteService) Close() error { return closeGorm(s.db) }
