package changelog

import (
	"context"

	"gorm.io/gorm"

	"github.com/lgrosz/climb-catalog/internal/domain/changelog"
	"github.com/lgrosz/climb-catalog/internal/platform/logger"
)

const maxPageSize = 500

type ChangeRepo interface {
	Append(ctx context.Context, tx *gorm.DB, changes []*changelog.Change) ([]*changelog.Change, error)
	// ListAfter pages the log in id order starting after afterID.
	ListAfter(ctx context.Context, tx *gorm.DB, afterID int64, limit int) ([]*changelog.Change, error)
	ListByEntity(ctx context.Context, tx *gorm.DB, kind string, id int64) ([]*changelog.Change, error)
}

type changeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChangeRepo(db *gorm.DB, baseLog *logger.Logger) ChangeRepo {
	repoLog := baseLog.With("repo", "ChangeRepo")
	return &changeRepo{db: db, log: repoLog}
}

func (r *changeRepo) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx)
}

func (r *changeRepo) Append(ctx context.Context, tx *gorm.DB, changes []*changelog.Change) ([]*changelog.Change, error) {
	if len(changes) == 0 {
		return []*changelog.Change{}, nil
	}
	if err := r.conn(ctx, tx).Create(&changes).Error; err != nil {
		return nil, err
	}
	return changes, nil
}

func (r *changeRepo) ListAfter(ctx context.Context, tx *gorm.DB, afterID int64, limit int) ([]*changelog.Change, error) {
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}
	var out []*changelog.Change
	if err := r.conn(ctx, tx).
		Where("id > ?", afterID).
		Order("id ASC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *changeRepo) ListByEntity(ctx context.Context, tx *gorm.DB, kind string, id int64) ([]*changelog.Change, error) {
	var out []*changelog.Change
	if err := r.conn(ctx, tx).
		Where("entity_kind = ? AND entity_id = ?", kind, id).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
