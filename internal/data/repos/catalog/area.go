package catalog

import (
	"context"

	"gorm.io/gorm"

	domain "github.com/lgrosz/climb-catalog/internal/domain/catalog"
	"github.com/lgrosz/climb-catalog/internal/platform/logger"
)

type AreaRepo interface {
	EntityRepo[domain.Area]
	UpdateNames(ctx context.Context, tx *gorm.DB, id int64, names domain.Names) error
}

type areaRepo struct {
	entityRepo[domain.Area]
}

func NewAreaRepo(db *gorm.DB, baseLog *logger.Logger) AreaRepo {
	return &areaRepo{entityRepo: newEntityRepo[domain.Area](db, baseLog, "AreaRepo")}
}

func (r *areaRepo) UpdateNames(ctx context.Context, tx *gorm.DB, id int64, names domain.Names) error {
	return updateNames(r.conn(ctx, tx), &domain.Area{}, id, names)
}
