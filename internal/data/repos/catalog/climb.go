package catalog

import (
	"context"

	"gorm.io/gorm"

	domain "github.com/lgrosz/climb-catalog/internal/domain/catalog"
	"github.com/lgrosz/climb-catalog/internal/platform/logger"
)

type ClimbRepo interface {
	EntityRepo[domain.Climb]
	UpdateNames(ctx context.Context, tx *gorm.DB, id int64, names domain.Names) error
}

type climbRepo struct {
	entityRepo[domain.Climb]
}

func NewClimbRepo(db *gorm.DB, baseLog *logger.Logger) ClimbRepo {
	return &climbRepo{entityRepo: newEntityRepo[domain.Climb](db, baseLog, "ClimbRepo")}
}

func (r *climbRepo) UpdateNames(ctx context.Context, tx *gorm.DB, id int64, names domain.Names) error {
	return updateNames(r.conn(ctx, tx), &domain.Climb{}, id, names)
}

type ClimberRepo interface {
	EntityRepo[domain.Climber]
}

func NewClimberRepo(db *gorm.DB, baseLog *logger.Logger) ClimberRepo {
	r := newEntityRepo[domain.Climber](db, baseLog, "ClimberRepo")
	return &r
}

type AscentRepo interface {
	EntityRepo[domain.Ascent]
	ListByClimb(ctx context.Context, tx *gorm.DB, climbID int64) ([]*domain.Ascent, error)
}

type ascentRepo struct {
	entityRepo[domain.Ascent]
}

func NewAscentRepo(db *gorm.DB, baseLog *logger.Logger) AscentRepo {
	return &ascentRepo{entityRepo: newEntityRepo[domain.Ascent](db, baseLog, "AscentRepo")}
}

func (r *ascentRepo) ListByClimb(ctx context.Context, tx *gorm.DB, climbID int64) ([]*domain.Ascent, error) {
	var results []*domain.Ascent
	if err := r.conn(ctx, tx).
		Where("climb_id = ?", climbID).
		Order("id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
