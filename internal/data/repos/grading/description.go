package grading

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lgrosz/climb-catalog/internal/domain/catalog"
	"github.com/lgrosz/climb-catalog/internal/platform/logger"
)

type DescriptionTypeRepo interface {
	List(ctx context.Context, tx *gorm.DB) ([]*catalog.ClimbDescriptionType, error)
	// GetByName returns nil, nil when no description type has the name.
	GetByName(ctx context.Context, tx *gorm.DB, name string) (*catalog.ClimbDescriptionType, error)
}

type ClimbDescriptionRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, row *catalog.ClimbDescription) error
	Delete(ctx context.Context, tx *gorm.DB, climbID, descriptionTypeID int64) (int64, error)
	ListByClimb(ctx context.Context, tx *gorm.DB, climbID int64) ([]*catalog.ClimbDescription, error)
}

type descriptionTypeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDescriptionTypeRepo(db *gorm.DB, baseLog *logger.Logger) DescriptionTypeRepo {
	return &descriptionTypeRepo{db: db, log: baseLog.With("repo", "DescriptionTypeRepo")}
}

func (r *descriptionTypeRepo) List(ctx context.Context, tx *gorm.DB) ([]*catalog.ClimbDescriptionType, error) {
	var out []*catalog.ClimbDescriptionType
	if err := conn(ctx, tx, r.db).Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *descriptionTypeRepo) GetByName(ctx context.Context, tx *gorm.DB, name string) (*catalog.ClimbDescriptionType, error) {
	var row catalog.ClimbDescriptionType
	err := conn(ctx, tx, r.db).Where("name = ?", name).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

type climbDescriptionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewClimbDescriptionRepo(db *gorm.DB, baseLog *logger.Logger) ClimbDescriptionRepo {
	return &climbDescriptionRepo{db: db, log: baseLog.With("repo", "ClimbDescriptionRepo")}
}

func (r *climbDescriptionRepo) Upsert(ctx context.Context, tx *gorm.DB, row *catalog.ClimbDescription) error {
	return conn(ctx, tx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "climb_id"}, {Name: "description_type_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(row).Error
}

func (r *climbDescriptionRepo) Delete(ctx context.Context, tx *gorm.DB, climbID, descriptionTypeID int64) (int64, error) {
	res := conn(ctx, tx, r.db).
		Where("climb_id = ? AND description_type_id = ?", climbID, descriptionTypeID).
		Delete(&catalog.ClimbDescription{})
	return res.RowsAffected, res.Error
}

func (r *climbDescriptionRepo) ListByClimb(ctx context.Context, tx *gorm.DB, climbID int64) ([]*catalog.ClimbDescription, error) {
	var out []*catalog.ClimbDescription
	if err := conn(ctx, tx, r.db).
		Where("climb_id = ?", climbID).
		Order("description_type_id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
