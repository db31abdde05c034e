package db

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service is a connected, migratable catalog store.
type Service interface {
	DB() *gorm.DB
	Migrate(ctx context.Context) error
	Close() error
}

type ddlStatement struct {
	name string
	sql  string
}

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// Dialect returns the dialector name of db ("postgres" or "sqlite").
func Dialect(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return ""
	}
	return db.Dialector.Name()
}

func IsPostgres(db *gorm.DB) bool { return Dialect(db) == DialectPostgres }

// ForUpdate adds a row lock on dialects that support SELECT ... FOR UPDATE.
// SQLite serializes writers on its single connection instead.
func ForUpdate(tx *gorm.DB) *gorm.DB {
	if IsPostgres(tx) {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func closeGorm(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
