package testutil

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/lgrosz/climb-catalog/internal/domain/catalog"
	"github.com/lgrosz/climb-catalog/internal/domain/hierarchy"
)

func SeedArea(tb testing.TB, ctx context.Context, tx *gorm.DB, names ...string) *catalog.Area {
	tb.Helper()
	a := &catalog.Area{Names: catalog.NamesOf(names...)}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed area: %v", err)
	}
	return a
}

func SeedFormation(tb testing.TB, ctx context.Context, tx *gorm.DB, names ...string) *catalog.Formation {
	tb.Helper()
	f := &catalog.Formation{Names: catalog.NamesOf(names...)}
	if err := tx.WithContext(ctx).Create(f).Error; err != nil {
		tb.Fatalf("seed formation: %v", err)
	}
	return f
}

func SeedClimb(tb testing.TB, ctx context.Context, tx *gorm.DB, names ...string) *catalog.Climb {
	tb.Helper()
	c := &catalog.Climb{Names: catalog.NamesOf(names...)}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed climb: %v", err)
	}
	return c
}

func SeedClimber(tb testing.TB, ctx context.Context, tx *gorm.DB, first, last string) *catalog.Climber {
	tb.Helper()
	c := &catalog.Climber{FirstName: first, LastName: last}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed climber: %v", err)
	}
	return c
}

func SeedAscent(tb testing.TB, ctx context.Context, tx *gorm.DB, climbID int64) *catalog.Ascent {
	tb.Helper()
	a := &catalog.Ascent{ClimbID: climbID}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed ascent: %v", err)
	}
	return a
}

func SeedGrade(tb testing.TB, ctx context.Context, tx *gorm.DB, gradeType, value string) *catalog.Grade {
	tb.Helper()
	var gt catalog.GradeType
	if err := tx.WithContext(ctx).Where("name = ?", gradeType).Take(&gt).Error; err != nil {
		tb.Fatalf("seed grade: lookup grade type %q: %v", gradeType, err)
	}
	g := &catalog.Grade{GradeTypeID: gt.ID, Value: value}
	if err := tx.WithContext(ctx).Create(g).Error; err != nil {
		tb.Fatalf("seed grade: %v", err)
	}
	return g
}

func SeedAreaParent(tb testing.TB, ctx context.Context, tx *gorm.DB, areaID, superAreaID int64) {
	tb.Helper()
	row := &hierarchy.AreaBelongsTo{AreaID: areaID, SuperAreaID: superAreaID}
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed area parent: %v", err)
	}
}

func SeedFormationParent(tb testing.TB, ctx context.Context, tx *gorm.DB, formationID int64, parent hierarchy.ParentRef) {
	tb.Helper()
	if err := tx.WithContext(ctx).Create(hierarchy.NewFormationBelongsTo(formationID, parent)).Error; err != nil {
		tb.Fatalf("seed formation parent: %v", err)
	}
}

func SeedClimbParent(tb testing.TB, ctx context.Context, tx *gorm.DB, climbID int64, parent hierarchy.ParentRef) {
	tb.Helper()
	if err := tx.WithContext(ctx).Create(hierarchy.NewClimbBelongsTo(climbID, parent)).Error; err != nil {
		tb.Fatalf("seed climb parent: %v", err)
	}
}

// Count returns the number of rows in table.
func Count(tb testing.TB, tx *gorm.DB, table string) int64 {
	tb.Helper()
	var n int64
	if err := tx.Table(table).Count(&n).Error; err != nil {
		tb.Fatalf("count %s: %v", table, err)
	}
	return n
}
