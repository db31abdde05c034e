package grading

import (
	"context"
	"testing"

	"github.com/lgrosz/climb-catalog/internal/data/repos/testutil"
	"github.com/lgrosz/climb-catalog/internal/domain/catalog"
)

func TestGradeRepoEnsure(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	types := NewGradeTypeRepo(db, testutil.Logger(t))
	grades := NewGradeRepo(db, testutil.Logger(t))

	vermin, err := types.GetByName(ctx, tx, catalog.GradeTypeVermin)
	if err != nil || vermin == nil {
		t.Fatalf("GetByName: got %+v, %v", vermin, err)
	}
	unknown, err := types.GetByName(ctx, tx, "yds")
	if err != nil || unknown != nil {
		t.Fatalf("GetByName (unknown): got %+v, %v", unknown, err)
	}

	first, err := grades.Ensure(ctx, tx, vermin.ID, "V5")
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	second, err := grades.Ensure(ctx, tx, vermin.ID, "V5")
	if err != nil {
		t.Fatalf("Ensure (again): %v", err)
	}
	if first.ID == 0 || first.ID != second.ID {
		t.Fatalf("Ensure: expected stable id, got %d and %d", first.ID, second.ID)
	}
	if n := testutil.Count(t, tx, "grades"); n != 1 {
		t.Fatalf("expected 1 grade row, got %d", n)
	}

	found, err := grades.Find(ctx, tx, vermin.ID, "V5")
	if err != nil || found == nil || found.ID != first.ID {
		t.Fatalf("Find: got %+v, %v", found, err)
	}
	missing, err := grades.Find(ctx, tx, vermin.ID, "V17")
	if err != nil || missing != nil {
		t.Fatalf("Find (missing): got %+v, %v", missing, err)
	}
}

func TestClimbDescriptionRepoUpsert(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	types := NewDescriptionTypeRepo(db, testutil.Logger(t))
	repo := NewClimbDescriptionRepo(db, testutil.Logger(t))
	climb := testutil.SeedClimb(t, ctx, tx, "C")

	all, err := types.List(ctx, tx)
	if err != nil || len(all) != 3 {
		t.Fatalf("List: got %d types, %v", len(all), err)
	}
	brief, err := types.GetByName(ctx, tx, catalog.DescriptionTypeBrief)
	if err != nil || brief == nil {
		t.Fatalf("GetByName: got %+v, %v", brief, err)
	}

	for _, text := range []string{"first", "second"} {
		if err := repo.Upsert(ctx, tx, &catalog.ClimbDescription{ClimbID: climb.ID, DescriptionTypeID: brief.ID, Value: text}); err != nil {
			t.Fatalf("Upsert(%q): %v", text, err)
		}
	}
	got, err := repo.ListByClimb(ctx, tx, climb.ID)
	if err != nil || len(got) != 1 || got[0].Value != "second" {
		t.Fatalf("ListByClimb: got %+v, %v", got, err)
	}

	n, err := repo.Delete(ctx, tx, climb.ID, brief.ID)
	if err != nil || n != 1 {
		t.Fatalf("Delete: got %d, %v", n, err)
	}
	n, err = repo.Delete(ctx, tx, climb.ID, brief.ID)
	if err != nil || n != 0 {
		t.Fatalf("Delete (absent): got %d, %v", n, err)
	}
}
