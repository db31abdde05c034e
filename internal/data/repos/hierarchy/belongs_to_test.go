package hierarchy

import (
	"context"
	"reflect"
	"testing"

	"github.com/lgrosz/climb-catalog/internal/data/repos/testutil"
	"github.com/lgrosz/climb-catalog/internal/domain/hierarchy"
)

func TestBelongsToRepoUpsertOverwritesParentKind(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	repo := NewBelongsToRepo(db, testutil.Logger(t))
	area := testutil.SeedArea(t, ctx, tx, "X")
	parent := testutil.SeedFormation(t, ctx, tx, "Y")
	f := testutil.SeedFormation(t, ctx, tx, "F")

	if err := repo.UpsertFormationParent(ctx, tx, hierarchy.NewFormationBelongsTo(f.ID, hierarchy.AreaParent(area.ID))); err != nil {
		t.Fatalf("UpsertFormationParent (area): %v", err)
	}
	if err := repo.UpsertFormationParent(ctx, tx, hierarchy.NewFormationBelongsTo(f.ID, hierarchy.FormationParent(parent.ID))); err != nil {
		t.Fatalf("UpsertFormationParent (formation): %v", err)
	}

	row, err := repo.GetFormationParent(ctx, tx, f.ID)
	if err != nil {
		t.Fatalf("GetFormationParent: %v", err)
	}
	if row == nil || row.AreaID != nil || row.SuperFormationID == nil || *row.SuperFormationID != parent.ID {
		t.Fatalf("GetFormationParent: unexpected row %+v", row)
	}
	if n := testutil.Count(t, tx, "formation_belongs_to"); n != 1 {
		t.Fatalf("expected 1 formation_belongs_to row, got %d", n)
	}

	ref, err := repo.ParentOf(ctx, tx, hierarchy.NodeRef{Kind: hierarchy.KindFormation, ID: f.ID})
	if err != nil {
		t.Fatalf("ParentOf: %v", err)
	}
	if ref == nil || *ref != (hierarchy.NodeRef{Kind: hierarchy.KindFormation, ID: parent.ID}) {
		t.Fatalf("ParentOf: unexpected %+v", ref)
	}

	root, err := repo.ParentOf(ctx, tx, hierarchy.NodeRef{Kind: hierarchy.KindArea, ID: area.ID})
	if err != nil || root != nil {
		t.Fatalf("ParentOf (root): got %+v, %v", root, err)
	}
}

func TestBelongsToRepoChildren(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	repo := NewBelongsToRepo(db, testutil.Logger(t))
	root := testutil.SeedArea(t, ctx, tx, "Root")
	sub := testutil.SeedArea(t, ctx, tx, "Sub")
	f := testutil.SeedFormation(t, ctx, tx, "F")
	c1 := testutil.SeedClimb(t, ctx, tx, "C1")
	c2 := testutil.SeedClimb(t, ctx, tx, "C2")

	testutil.SeedClimbParent(t, ctx, tx, c2.ID, hierarchy.AreaParent(root.ID))
	testutil.SeedAreaParent(t, ctx, tx, sub.ID, root.ID)
	testutil.SeedFormationParent(t, ctx, tx, f.ID, hierarchy.AreaParent(root.ID))
	testutil.SeedClimbParent(t, ctx, tx, c1.ID, hierarchy.AreaParent(root.ID))

	got, err := repo.Children(ctx, tx, hierarchy.NodeRef{Kind: hierarchy.KindArea, ID: root.ID})
	if err != nil {
		t.Fatalf("Children: %v", err)
	}
	want := []hierarchy.NodeRef{
		{Kind: hierarchy.KindArea, ID: sub.ID},
		{Kind: hierarchy.KindFormation, ID: f.ID},
		{Kind: hierarchy.KindClimb, ID: c1.ID},
		{Kind: hierarchy.KindClimb, ID: c2.ID},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Children: want %+v got %+v", want, got)
	}

	n, err := repo.CountChildren(ctx, tx, hierarchy.NodeRef{Kind: hierarchy.KindArea, ID: root.ID})
	if err != nil || n != 4 {
		t.Fatalf("CountChildren: got %d, %v", n, err)
	}

	leaf, err := repo.Children(ctx, tx, hierarchy.NodeRef{Kind: hierarchy.KindClimb, ID: c1.ID})
	if err != nil || len(leaf) != 0 {
		t.Fatalf("Children (climb): got %+v, %v", leaf, err)
	}

	deleted, err := repo.DeleteChildRow(ctx, tx, hierarchy.NodeRef{Kind: hierarchy.KindArea, ID: sub.ID})
	if err != nil || deleted != 1 {
		t.Fatalf("DeleteChildRow: got %d, %v", deleted, err)
	}
	deleted, err = repo.DeleteAreaParent(ctx, tx, sub.ID)
	if err != nil || deleted != 0 {
		t.Fatalf("DeleteAreaParent (absent): got %d, %v", deleted, err)
	}
}
