package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Migrate applies the idempotent schema for db's dialect and seeds the lookup
// tables, all in one transaction.
func Migrate(ctx context.Context, db *gorm.DB) error {
	schema, err := schemaFor(db)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureSchema(tx, schema); err != nil {
			return err
		}
		return Seed(tx)
	})
}

func schemaFor(db *gorm.DB) ([]ddlStatement, error) {
	switch d := Dialect(db); d {
	case DialectPostgres:
		return postgresSchema, nil
	case DialectSQLite:
		return sqliteSchema, nil
	default:
		return nil, fmt.Errorf("unsupported dialect %q", d)
	}
}

func ensureSchema(db *gorm.DB, schema []ddlStatement) error {
	for _, stmt := range schema {
		if err := db.Exec(stmt.sql).Error; err != nil {
			return fmt.Errorf("create %s: %w", stmt.name, err)
		}
	}
	return nil
}
