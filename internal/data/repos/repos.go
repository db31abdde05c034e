package repos

import (
	"gorm.io/gorm"

	"github.com/lgrosz/climb-catalog/internal/data/repos/catalog"
	"github.com/lgrosz/climb-catalog/internal/data/repos/changelog"
	"github.com/lgrosz/climb-catalog/internal/data/repos/grading"
	"github.com/lgrosz/climb-catalog/internal/data/repos/hierarchy"
	"github.com/lgrosz/climb-catalog/internal/data/repos/links"
	"github.com/lgrosz/climb-catalog/internal/platform/logger"
)

type AreaRepo = catalog.AreaRepo
type FormationRepo = catalog.FormationRepo
type ClimbRepo = catalog.ClimbRepo
type ClimberRepo = catalog.ClimberRepo
type AscentRepo = catalog.AscentRepo

type BelongsToRepo = hierarchy.BelongsToRepo
type LinkRepo = links.LinkRepo

type GradeTypeRepo = grading.GradeTypeRepo
type GradeRepo = grading.GradeRepo
type DescriptionTypeRepo = grading.DescriptionTypeRepo
type ClimbDescriptionRepo = grading.ClimbDescriptionRepo

type ChangeRepo = changelog.ChangeRepo

func NewAreaRepo(db *gorm.DB, baseLog *logger.Logger) AreaRepo { return catalog.NewAreaRepo(db, baseLog) }
func NewFormationRepo(db *gorm.DB, baseLog *logger.Logger) FormationRepo {
	return catalog.NewFormationRepo(db, baseLog)
}
func NewClimbRepo(db *gorm.DB, baseLog *logger.Logger) ClimbRepo { return catalog.NewClimbRepo(db, baseLog) }
func NewClimberRepo(db *gorm.DB, baseLog *logger.Logger) ClimberRepo {
	return catalog.NewClimberRepo(db, baseLog)
}
func NewAscentRepo(db *gorm.DB, baseLog *logger.Logger) AscentRepo {
	return catalog.NewAscentRepo(db, baseLog)
}

func NewBelongsToRepo(db *gorm.DB, baseLog *logger.Logger) BelongsToRepo {
	return hierarchy.NewBelongsToRepo(db, baseLog)
}
func NewLinkRepo(db *gorm.DB, baseLog *logger.Logger) LinkRepo { return links.NewLinkRepo(db, baseLog) }

func NewGradeTypeRepo(db *gorm.DB, baseLog *logger.Logger) GradeTypeRepo {
	return grading.NewGradeTypeRepo(db, baseLog)
}
func NewGradeRepo(db *gorm.DB, baseLog *logger.Logger) GradeRepo { return grading.NewGradeRepo(db, baseLog) }
func NewDescriptionTypeRepo(db *gorm.DB, baseLog *logger.Logger) DescriptionTypeRepo {
	return grading.NewDescriptionTypeRepo(db, baseLog)
}
func NewClimbDescriptionRepo(db *gorm.DB, baseLog *logger.Logger) ClimbDescriptionRepo {
	return grading.NewClimbDescriptionRepo(db, baseLog)
}

func NewChangeRepo(db *gorm.DB, baseLog *logger.Logger) ChangeRepo {
	return changelog.NewChangeRepo(db, baseLog)
}

// Set bundles every repo over one connection.
type Set struct {
	Areas             AreaRepo
	Formations        FormationRepo
	Climbs            ClimbRepo
	Climbers          ClimberRepo
	Ascents           AscentRepo
	BelongsTo         BelongsToRepo
	Links             LinkRepo
	GradeTypes        GradeTypeRepo
	Grades            GradeRepo
	DescriptionTypes  DescriptionTypeRepo
	ClimbDescriptions ClimbDescriptionRepo
	Changes           ChangeRepo
}

func NewSet(db *gorm.DB, baseLog *logger.Logger) Set {
	return Set{
		Areas:             NewAreaRepo(db, baseLog),
		Formations:        NewFormationRepo(db, baseLog),
		Climbs:            NewClimbRepo(db, baseLog),
		Climbers:          NewClimberRepo(db, baseLog),
		Ascents:           NewAscentRepo(db, baseLog),
		BelongsTo:         NewBelongsToRepo(db, baseLog),
		Links:             NewLinkRepo(db, baseLog),
		GradeTypes:        NewGradeTypeRepo(db, baseLog),
		Grades:            NewGradeRepo(db, baseLog),
		DescriptionTypes:  NewDescriptionTypeRepo(db, baseLog),
		ClimbDescriptions: NewClimbDescriptionRepo(db, baseLog),
		Changes:           NewChangeRepo(db, baseLog),
	}
}
