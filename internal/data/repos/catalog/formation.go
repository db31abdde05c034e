package catalog

import (
	"context"

	"gorm.io/gorm"

	domain "github.com/lgrosz/climb-catalog/internal/domain/catalog"
	"github.com/lgrosz/climb-catalog/internal/platform/logger"
)

type FormationRepo interface {
	EntityRepo[domain.Formation]
	UpdateNames(ctx context.Context, tx *gorm.DB, id int64, names domain.Names) error
	// UpdateLocation writes all three location columns; nil clears them.
	UpdateLocation(ctx context.Context, tx *gorm.DB, id int64, loc *domain.Location) (int64, error)
}

type formationRepo struct {
	entityRepo[domain.Formation]
}

func NewFormationRepo(db *gorm.DB, baseLog *logger.Logger) FormationRepo {
	return &formationRepo{entityRepo: newEntityRepo[domain.Formation](db, baseLog, "FormationRepo")}
}

func (r *formationRepo) UpdateNames(ctx context.Context, tx *gorm.DB, id int64, names domain.Names) error {
	return updateNames(r.conn(ctx, tx), &domain.Formation{}, id, names)
}

func (r *formationRepo) UpdateLocation(ctx context.Context, tx *gorm.DB, id int64, loc *domain.Location) (int64, error) {
	var f domain.Formation
	f.SetLocation(loc)
	res := r.conn(ctx, tx).
		Model(&domain.Formation{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"location_lat":  f.LocationLat,
			"location_lon":  f.LocationLon,
			"location_srid": f.LocationSRID,
		})
	return res.RowsAffected, res.Error
}
