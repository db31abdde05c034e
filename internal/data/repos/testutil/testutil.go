package testutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/lgrosz/climb-catalog/internal/data/db"
	"github.com/lgrosz/climb-catalog/internal/platform/logger"
)

var (
	pgOnce sync.Once
	pgDB   *gorm.DB
	pgErr  error

	logOnce sync.Once
	logg    *logger.Logger
	logErr  error

	sqliteSeq atomic.Int64
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.New("test")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

// UsingPostgres reports whether DB hands out postgres connections.
func UsingPostgres() bool {
	return strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN")) != "" || containerRequested()
}

func containerRequested() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("TEST_POSTGRES_CONTAINER")))
	return v == "1" || v == "true"
}

// DB returns a migrated and seeded database. By default every call gets a
// fresh in-memory sqlite database. TEST_POSTGRES_DSN (or
// TEST_POSTGRES_CONTAINER=1) selects a shared postgres database instead; wrap
// postgres work in Tx so tests stay isolated.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	if UsingPostgres() {
		return postgresDB(tb)
	}
	return sqliteDB(tb)
}

func sqliteDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	name := fmt.Sprintf("mem:test-%d-%d", time.Now().UnixNano(), sqliteSeq.Add(1))
	gdb, err := db.OpenSQLite(name, Logger(tb))
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	gdb.Logger = gormLogger.Default.LogMode(gormLogger.Silent)
	tb.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := db.Migrate(context.Background(), gdb); err != nil {
		tb.Fatalf("migrate sqlite: %v", err)
	}
	return gdb
}

func postgresDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	pgOnce.Do(func() {
		dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
		if dsn == "" {
			dsn, pgErr = startContainer()
			if pgErr != nil {
				return
			}
		}
		pgDB, pgErr = gorm.Open(postgres.Open(dsn), &gorm.Config{
			DisableForeignKeyConstraintWhenMigrating: true,
			Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
		})
		if pgErr != nil {
			return
		}
		pgErr = db.Migrate(context.Background(), pgDB)
	})
	if pgErr != nil {
		tb.Fatalf("failed to init test db: %v", pgErr)
	}
	return pgDB
}

func startContainer() (string, error) {
	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:17-alpine",
		tcpostgres.WithDatabase("climbs"),
		tcpostgres.WithUsername("climbs"),
		tcpostgres.WithPassword("climbs"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		return "", fmt.Errorf("start postgres container: %w", err)
	}
	return container.ConnectionString(ctx, "sslmode=disable")
}

func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}

// RequirePostgres skips tests that need real row locks or concurrent connections.
func RequirePostgres(tb testing.TB) {
	tb.Helper()
	if !UsingPostgres() {
		tb.Skip("set TEST_POSTGRES_DSN or TEST_POSTGRES_CONTAINER=1 to run postgres-only tests")
	}
}
