package catalog

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/lgrosz/climb-catalog/internal/data/db"
	"github.com/lgrosz/climb-catalog/internal/platform/logger"
)

// EntityRepo is the id-keyed surface shared by every catalog table.
type EntityRepo[T any] interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*T) ([]*T, error)
	GetByID(ctx context.Context, tx *gorm.DB, id int64) (*T, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []int64) ([]*T, error)
	List(ctx context.Context, tx *gorm.DB) ([]*T, error)
	// LockByID reads the row and holds a row lock until tx ends. A missing row
	// returns nil, nil.
	LockByID(ctx context.Context, tx *gorm.DB, id int64) (*T, error)
	Exists(ctx context.Context, tx *gorm.DB, id int64) (bool, error)
	Delete(ctx context.Context, tx *gorm.DB, id int64) (int64, error)
}

type entityRepo[T any] struct {
	db  *gorm.DB
	log *logger.Logger
}

func newEntityRepo[T any](db *gorm.DB, baseLog *logger.Logger, name string) entityRepo[T] {
	return entityRepo[T]{db: db, log: baseLog.With("repo", name)}
}

func (r entityRepo[T]) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx)
}

func (r entityRepo[T]) Create(ctx context.Context, tx *gorm.DB, rows []*T) ([]*T, error) {
	if len(rows) == 0 {
		return []*T{}, nil
	}
	if err := r.conn(ctx, tx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r entityRepo[T]) GetByID(ctx context.Context, tx *gorm.DB, id int64) (*T, error) {
	var row T
	if err := r.conn(ctx, tx).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r entityRepo[T]) GetByIDs(ctx context.Context, tx *gorm.DB, ids []int64) ([]*T, error) {
	var results []*T
	if len(ids) == 0 {
		return results, nil
	}
	if err := r.conn(ctx, tx).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r entityRepo[T]) List(ctx context.Context, tx *gorm.DB) ([]*T, error) {
	var results []*T
	if err := r.conn(ctx, tx).Order("id ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r entityRepo[T]) LockByID(ctx context.Context, tx *gorm.DB, id int64) (*T, error) {
	var row T
	err := db.ForUpdate(r.conn(ctx, tx)).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r entityRepo[T]) Exists(ctx context.Context, tx *gorm.DB, id int64) (bool, error) {
	var count int64
	var model T
	if err := r.conn(ctx, tx).
		Model(&model).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r entityRepo[T]) Delete(ctx context.Context, tx *gorm.DB, id int64) (int64, error) {
	var model T
	res := r.conn(ctx, tx).Where("id = ?", id).Delete(&model)
	return res.RowsAffected, res.Error
}
