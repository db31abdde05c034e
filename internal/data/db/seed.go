package db

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lgrosz/climb-catalog/internal/domain/catalog"
)

// Seed inserts the fixed lookup rows. Existing rows are left alone.
func Seed(db *gorm.DB) error {
	for _, name := range catalog.SeedGradeTypes {
		row := &catalog.GradeType{Name: name}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(row).Error; err != nil {
			return fmt.Errorf("seed grade type %q: %w", name, err)
		}
	}
	for _, name := range catalog.SeedDescriptionTypes {
		row := &catalog.ClimbDescriptionType{Name: name}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(row).Error; err != nil {
			return fmt.Errorf("seed description type %q: %w", name, err)
		}
	}
	return nil
}
