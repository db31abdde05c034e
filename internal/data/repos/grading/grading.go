package grading

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lgrosz/climb-catalog/internal/domain/catalog"
	"github.com/lgrosz/climb-catalog/internal/platform/logger"
)

type GradeTypeRepo interface {
	List(ctx context.Context, tx *gorm.DB) ([]*catalog.GradeType, error)
	// GetByName returns nil, nil when no grade type has the name.
	GetByName(ctx context.Context, tx *gorm.DB, name string) (*catalog.GradeType, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []int64) ([]*catalog.GradeType, error)
}

type GradeRepo interface {
	// Ensure returns the (typeID, value) grade, inserting it when absent.
	Ensure(ctx context.Context, tx *gorm.DB, gradeTypeID int64, value string) (*catalog.Grade, error)
	// Find returns nil, nil when the grade was never recorded.
	Find(ctx context.Context, tx *gorm.DB, gradeTypeID int64, value string) (*catalog.Grade, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []int64) ([]*catalog.Grade, error)
}

type gradeTypeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGradeTypeRepo(db *gorm.DB, baseLog *logger.Logger) GradeTypeRepo {
	return &gradeTypeRepo{db: db, log: baseLog.With("repo", "GradeTypeRepo")}
}

func (r *gradeTypeRepo) List(ctx context.Context, tx *gorm.DB) ([]*catalog.GradeType, error) {
	var out []*catalog.GradeType
	if err := conn(ctx, tx, r.db).Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *gradeTypeRepo) GetByName(ctx context.Context, tx *gorm.DB, name string) (*catalog.GradeType, error) {
	var row catalog.GradeType
	err := conn(ctx, tx, r.db).Where("name = ?", name).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *gradeTypeRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []int64) ([]*catalog.GradeType, error) {
	var out []*catalog.GradeType
	if len(ids) == 0 {
		return out, nil
	}
	if err := conn(ctx, tx, r.db).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type gradeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGradeRepo(db *gorm.DB, baseLog *logger.Logger) GradeRepo {
	return &gradeRepo{db: db, log: baseLog.With("repo", "GradeRepo")}
}

func (r *gradeRepo) Ensure(ctx context.Context, tx *gorm.DB, gradeTypeID int64, value string) (*catalog.Grade, error) {
	transaction := conn(ctx, tx, r.db)
	row := &catalog.Grade{GradeTypeID: gradeTypeID, Value: value}
	if err := transaction.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "grade_type_id"}, {Name: "value"}},
		DoNothing: true,
	}).Create(row).Error; err != nil {
		return nil, err
	}
	var out catalog.Grade
	if err := transaction.
		Where("grade_type_id = ? AND value = ?", gradeTypeID, value).
		Take(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *gradeRepo) Find(ctx context.Context, tx *gorm.DB, gradeTypeID int64, value string) (*catalog.Grade, error) {
	var row catalog.Grade
	err := conn(ctx, tx, r.db).Where("grade_type_id = ? AND value = ?", gradeTypeID, value).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *gradeRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []int64) ([]*catalog.Grade, error) {
	var out []*catalog.Grade
	if len(ids) == 0 {
		return out, nil
	}
	if err := conn(ctx, tx, r.db).Where("id IN ?", ids).Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func conn(ctx context.Context, tx, fallback *gorm.DB) *gorm.DB {
	transaction := tx
	if transaction == nil {
		transaction = fallback
	}
	return transaction.WithContext(ctx)
}
