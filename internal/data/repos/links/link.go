package links

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/lgrosz/climb-catalog/internal/domain/links"
	"github.com/lgrosz/climb-catalog/internal/platform/logger"
)

// LinkRepo manages the composite-key association tables described by links.Spec.
type LinkRepo interface {
	// Insert is insert-or-ignore; it reports whether a row was added.
	Insert(ctx context.Context, tx *gorm.DB, kind links.Kind, pair links.Pair) (bool, error)
	Delete(ctx context.Context, tx *gorm.DB, kind links.Kind, pair links.Pair) (bool, error)
	Exists(ctx context.Context, tx *gorm.DB, kind links.Kind, pair links.Pair) (bool, error)
	// EndpointExists checks the row behind one side of a link.
	EndpointExists(ctx context.Context, tx *gorm.DB, table string, id int64) (bool, error)
	RightOf(ctx context.Context, tx *gorm.DB, kind links.Kind, left int64) ([]int64, error)
	LeftOf(ctx context.Context, tx *gorm.DB, kind links.Kind, right int64) ([]int64, error)
	List(ctx context.Context, tx *gorm.DB, kind links.Kind) ([]links.Pair, error)
}

type linkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLinkRepo(db *gorm.DB, baseLog *logger.Logger) LinkRepo {
	repoLog := baseLog.With("repo", "LinkRepo")
	return &linkRepo{db: db, log: repoLog}
}

func (r *linkRepo) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx)
}

func (r *linkRepo) Insert(ctx context.Context, tx *gorm.DB, kind links.Kind, pair links.Pair) (bool, error) {
	spec, err := kind.Spec()
	if err != nil {
		return false, err
	}
	res := r.conn(ctx, tx).Exec(
		fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES (?, ?) ON CONFLICT DO NOTHING", spec.Table, spec.LeftColumn, spec.RightColumn),
		pair.Left, pair.Right,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *linkRepo) Delete(ctx context.Context, tx *gorm.DB, kind links.Kind, pair links.Pair) (bool, error) {
	spec, err := kind.Spec()
	if err != nil {
		return false, err
	}
	res := r.conn(ctx, tx).Exec(
		fmt.Sprintf("DELETE FROM %s WHERE %s = ? AND %s = ?", spec.Table, spec.LeftColumn, spec.RightColumn),
		pair.Left, pair.Right,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *linkRepo) Exists(ctx context.Context, tx *gorm.DB, kind links.Kind, pair links.Pair) (bool, error) {
	spec, err := kind.Spec()
	if err != nil {
		return false, err
	}
	var count int64
	if err := r.conn(ctx, tx).
		Table(spec.Table).
		Where(spec.LeftColumn+" = ? AND "+spec.RightColumn+" = ?", pair.Left, pair.Right).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *linkRepo) EndpointExists(ctx context.Context, tx *gorm.DB, table string, id int64) (bool, error) {
	var count int64
	if err := r.conn(ctx, tx).
		Table(table).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *linkRepo) RightOf(ctx context.Context, tx *gorm.DB, kind links.Kind, left int64) ([]int64, error) {
	spec, err := kind.Spec()
	if err != nil {
		return nil, err
	}
	ids := []int64{}
	if err := r.conn(ctx, tx).
		Table(spec.Table).
		Where(spec.LeftColumn+" = ?", left).
		Order(spec.RightColumn+" ASC").
		Pluck(spec.RightColumn, &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *linkRepo) LeftOf(ctx context.Context, tx *gorm.DB, kind links.Kind, right int64) ([]int64, error) {
	spec, err := kind.Spec()
	if err != nil {
		return nil, err
	}
	ids := []int64{}
	if err := r.conn(ctx, tx).
		Table(spec.Table).
		Where(spec.RightColumn+" = ?", right).
		Order(spec.LeftColumn+" ASC").
		Pluck(spec.LeftColumn, &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *linkRepo) List(ctx context.Context, tx *gorm.DB, kind links.Kind) ([]links.Pair, error) {
	spec, err := kind.Spec()
	if err != nil {
		return nil, err
	}
	out := []links.Pair{}
	if err := r.conn(ctx, tx).
		Table(spec.Table).
		Select(spec.LeftColumn+" AS \"left\", "+spec.RightColumn+" AS \"right\"").
		Order(spec.LeftColumn + " ASC, " + spec.RightColumn + " ASC").
		Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
