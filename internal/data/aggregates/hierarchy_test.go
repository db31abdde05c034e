package aggregates

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/lgrosz/climb-catalog/internal/data/repos/testutil"
	domainagg "github.com/lgrosz/climb-catalog/internal/domain/aggregates"
	"github.com/lgrosz/climb-catalog/internal/domain/changelog"
	"github.com/lgrosz/climb-catalog/internal/domain/hierarchy"
)

func TestSetParentRejectsSelfReference(t *testing.T) {
	f := newFixture(t)
	a := testutil.SeedArea(t, f.ctx, f.tx, "A")
	fm := testutil.SeedFormation(t, f.ctx, f.tx, "F")

	requireCode(t, f.hier.SetAreaParent(f.ctx, a.ID, a.ID), domainagg.CodeSelfReference)
	requireCode(t, f.hier.SetFormationParent(f.ctx, fm.ID, hierarchy.FormationParent(fm.ID)), domainagg.CodeSelfReference)

	if n := f.count(t, "area_belongs_to", "area_id = ?", a.ID); n != 0 {
		t.Fatalf("self reference wrote %d area rows", n)
	}
	if n := f.count(t, "formation_belongs_to", "formation_id = ?", fm.ID); n != 0 {
		t.Fatalf("self reference wrote %d formation rows", n)
	}
}

func TestSetAreaParentRejectsCycles(t *testing.T) {
	f := newFixture(t)
	a := testutil.SeedArea(t, f.ctx, f.tx, "a")
	b := testutil.SeedArea(t, f.ctx, f.tx, "b")
	c := testutil.SeedArea(t, f.ctx, f.tx, "c")

	requireOK(t, "a -> b", f.hier.SetAreaParent(f.ctx, a.ID, b.ID))
	requireCode(t, f.hier.SetAreaParent(f.ctx, b.ID, a.ID), domainagg.CodeCycleDetected)

	requireOK(t, "b -> c", f.hier.SetAreaParent(f.ctx, b.ID, c.ID))
	requireCode(t, f.hier.SetAreaParent(f.ctx, c.ID, a.ID), domainagg.CodeCycleDetected)

	if n := f.count(t, "area_belongs_to", "area_id = ?", c.ID); n != 0 {
		t.Fatalf("rejected cycle left a row for c")
	}
}

func TestSetFormationParentRejectsCycles(t *testing.T) {
	f := newFixture(t)
	x := testutil.SeedArea(t, f.ctx, f.tx, "x")
	f1 := testutil.SeedFormation(t, f.ctx, f.tx, "f1")
	f2 := testutil.SeedFormation(t, f.ctx, f.tx, "f2")
	f3 := testutil.SeedFormation(t, f.ctx, f.tx, "f3")

	requireOK(t, "f1 -> f2", f.hier.SetFormationParent(f.ctx, f1.ID, hierarchy.FormationParent(f2.ID)))
	requireOK(t, "f2 -> f3", f.hier.SetFormationParent(f.ctx, f2.ID, hierarchy.FormationParent(f3.ID)))
	requireOK(t, "f3 -> x", f.hier.SetFormationParent(f.ctx, f3.ID, hierarchy.AreaParent(x.ID)))
	requireCode(t, f.hier.SetFormationParent(f.ctx, f3.ID, hierarchy.FormationParent(f1.ID)), domainagg.CodeCycleDetected)
}

func TestSetParentRejectsMissingParentKind(t *testing.T) {
	f := newFixture(t)
	fm := testutil.SeedFormation(t, f.ctx, f.tx, "F")
	c := testutil.SeedClimb(t, f.ctx, f.tx, "C")

	requireCode(t, f.hier.SetFormationParent(f.ctx, fm.ID, hierarchy.ParentRef{}), domainagg.CodeMutualExclusion)
	requireCode(t, f.hier.SetClimbParent(f.ctx, c.ID, hierarchy.ParentRef{}), domainagg.CodeMutualExclusion)

	one, two := int64(1), int64(2)
	if _, err := hierarchy.ParentRefFromColumns(&one, &two); !errors.Is(err, hierarchy.ErrBothParentKind) {
		t.Fatalf("both columns: want ErrBothParentKind, got %v", err)
	}
	if n := f.count(t, "formation_belongs_to", "formation_id = ?", fm.ID) + f.count(t, "climb_belongs_to", "climb_id = ?", c.ID); n != 0 {
		t.Fatalf("rejected parent wrote %d rows", n)
	}
	if len(f.hooks.Operations) != 0 {
		t.Fatalf("rejected parent opened a write: %+v", f.hooks.Operations)
	}
}

func TestSetParentMissingRows(t *testing.T) {
	f := newFixture(t)
	a := testutil.SeedArea(t, f.ctx, f.tx, "A")
	c := testutil.SeedClimb(t, f.ctx, f.tx, "C")

	requireCode(t, f.hier.SetAreaParent(f.ctx, a.ID, a.ID+1000), domainagg.CodeParentNotFound)
	requireCode(t, f.hier.SetClimbParent(f.ctx, c.ID, hierarchy.FormationParent(999999)), domainagg.CodeParentNotFound)
	requireCode(t, f.hier.SetAreaParent(f.ctx, a.ID+1000, a.ID), domainagg.CodeNotFound)
}

func TestSetAreaParentIsIdempotent(t *testing.T) {
	f := newFixture(t)
	x := testutil.SeedArea(t, f.ctx, f.tx, "x")
	y := testutil.SeedArea(t, f.ctx, f.tx, "y")

	requireOK(t, "first", f.hier.SetAreaParent(f.ctx, x.ID, y.ID))
	requireOK(t, "second", f.hier.SetAreaParent(f.ctx, x.ID, y.ID))

	if n := f.count(t, "area_belongs_to", "area_id = ?", x.ID); n != 1 {
		t.Fatalf("want 1 row for x, got %d", n)
	}
	if n := f.count(t, "area_belongs_to", "area_id = ? AND super_area_id = ?", x.ID, y.ID); n != 1 {
		t.Fatalf("row for x does not point at y")
	}
	if n := f.count(t, "change_log", "entity_kind = ? AND entity_id = ? AND action = ?", "area", x.ID, changelog.ActionParentSet); n != 1 {
		t.Fatalf("want 1 parent_set change for x, got %d", n)
	}
	if len(f.pub.Batches) != 1 {
		t.Fatalf("want 1 published batch, got %d", len(f.pub.Batches))
	}
}

func TestSetFormationParentOverwritesParentKind(t *testing.T) {
	f := newFixture(t)
	x := testutil.SeedArea(t, f.ctx, f.tx, "X")
	y := testutil.SeedFormation(t, f.ctx, f.tx, "Y")
	fm := testutil.SeedFormation(t, f.ctx, f.tx, "F")

	requireOK(t, "area parent", f.hier.SetFormationParent(f.ctx, fm.ID, hierarchy.AreaParent(x.ID)))
	if n := f.count(t, "formation_belongs_to", "formation_id = ? AND area_id = ? AND super_formation_id IS NULL", fm.ID, x.ID); n != 1 {
		t.Fatalf("area parent: super_formation_id should be null")
	}

	requireOK(t, "formation parent", f.hier.SetFormationParent(f.ctx, fm.ID, hierarchy.FormationParent(y.ID)))
	if n := f.count(t, "formation_belongs_to", "formation_id = ? AND super_formation_id = ? AND area_id IS NULL", fm.ID, y.ID); n != 1 {
		t.Fatalf("formation parent: area_id should be null")
	}
	if n := f.count(t, "formation_belongs_to", "formation_id = ?", fm.ID); n != 1 {
		t.Fatalf("want one row, got %d", n)
	}
}

func TestClearParentIsIdempotent(t *testing.T) {
	f := newFixture(t)
	x := testutil.SeedArea(t, f.ctx, f.tx, "x")
	c := testutil.SeedClimb(t, f.ctx, f.tx, "c")

	requireOK(t, "set", f.hier.SetClimbParent(f.ctx, c.ID, hierarchy.AreaParent(x.ID)))
	requireOK(t, "clear", f.hier.ClearClimbParent(f.ctx, c.ID))
	requireOK(t, "clear again", f.hier.ClearClimbParent(f.ctx, c.ID))
	requireOK(t, "clear never set", f.hier.ClearAreaParent(f.ctx, x.ID))

	if n := f.count(t, "climb_belongs_to", "climb_id = ?", c.ID); n != 0 {
		t.Fatalf("clear left %d rows", n)
	}
	// set + one effective clear
	if len(f.pub.Batches) != 2 {
		t.Fatalf("want 2 published batches, got %d", len(f.pub.Batches))
	}
}

func TestAncestorsWalksToRootAndRestarts(t *testing.T) {
	f := newFixture(t)
	root := testutil.SeedArea(t, f.ctx, f.tx, "root")
	sub := testutil.SeedArea(t, f.ctx, f.tx, "sub")
	crag := testutil.SeedFormation(t, f.ctx, f.tx, "crag")
	boulder := testutil.SeedFormation(t, f.ctx, f.tx, "boulder")
	route := testutil.SeedClimb(t, f.ctx, f.tx, "route")

	requireOK(t, "sub", f.hier.SetAreaParent(f.ctx, sub.ID, root.ID))
	requireOK(t, "crag", f.hier.SetFormationParent(f.ctx, crag.ID, hierarchy.AreaParent(sub.ID)))
	requireOK(t, "boulder", f.hier.SetFormationParent(f.ctx, boulder.ID, hierarchy.FormationParent(crag.ID)))
	requireOK(t, "route", f.hier.SetClimbParent(f.ctx, route.ID, hierarchy.FormationParent(boulder.ID)))

	seq := f.hier.Ancestors(f.ctx, climb(route.ID))
	collect := func() []hierarchy.NodeRef {
		var out []hierarchy.NodeRef
		for n, err := range seq {
			requireOK(t, "ancestors", err)
			out = append(out, n)
		}
		return out
	}

	want := []hierarchy.NodeRef{formation(boulder.ID), formation(crag.ID), area(sub.ID), area(root.ID)}
	got := collect()
	if len(got) != len(want) {
		t.Fatalf("ancestors: want %v got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ancestors[%d]: want %v got %v", i, want[i], got[i])
		}
	}

	requireOK(t, "detach", f.hier.SetClimbParent(f.ctx, route.ID, hierarchy.AreaParent(root.ID)))
	if again := collect(); len(again) != 1 || again[0] != area(root.ID) {
		t.Fatalf("restart should see new state, got %v", again)
	}

	for range f.hier.Ancestors(f.ctx, area(root.ID)) {
		t.Fatalf("root has no ancestors")
	}

	steps := 0
	for range f.hier.Ancestors(f.ctx, formation(boulder.ID)) {
		steps++
		break
	}
	if steps != 1 {
		t.Fatalf("early break: got %d steps", steps)
	}
}

func TestChildrenOrderedByKindThenID(t *testing.T) {
	f := newFixture(t)
	x := testutil.SeedArea(t, f.ctx, f.tx, "x")
	c := testutil.SeedClimb(t, f.ctx, f.tx, "c")
	fm := testutil.SeedFormation(t, f.ctx, f.tx, "f")
	sub := testutil.SeedArea(t, f.ctx, f.tx, "sub")

	requireOK(t, "climb", f.hier.SetClimbParent(f.ctx, c.ID, hierarchy.AreaParent(x.ID)))
	requireOK(t, "formation", f.hier.SetFormationParent(f.ctx, fm.ID, hierarchy.AreaParent(x.ID)))
	requireOK(t, "area", f.hier.SetAreaParent(f.ctx, sub.ID, x.ID))

	got, err := f.hier.Children(f.ctx, area(x.ID))
	requireOK(t, "children", err)
	want := []hierarchy.NodeRef{area(sub.ID), formation(fm.ID), climb(c.ID)}
	if len(got) != 3 || got[0] != want[0] || got[1] != want[1] || got[2] != want[2] {
		t.Fatalf("children: want %v got %v", want, got)
	}

	leaf, err := f.hier.Children(f.ctx, climb(c.ID))
	requireOK(t, "leaf children", err)
	if len(leaf) != 0 {
		t.Fatalf("climb has no children, got %v", leaf)
	}
}

// Two opposing reparent calls race; the chain locks serialize them so at most
// one edge is written.
func TestConcurrentOpposingReparentNeverFormsCycle(t *testing.T) {
	testutil.RequirePostgres(t)
	db := testutil.DB(t)
	ctx := context.Background()
	a := testutil.SeedArea(t, ctx, db, "race-a")
	b := testutil.SeedArea(t, ctx, db, "race-b")
	t.Cleanup(func() {
		db.Exec("DELETE FROM area_belongs_to WHERE area_id IN ?", []int64{a.ID, b.ID})
		db.Exec("DELETE FROM areas WHERE id IN ?", []int64{a.ID, b.ID})
	})

	hier := NewHierarchyAggregate(HierarchyAggregateDeps{Base: BaseDeps{DB: db, Log: testutil.Logger(t)}})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() { defer wg.Done(); errs[0] = hier.SetAreaParent(ctx, a.ID, b.ID) }()
	go func() { defer wg.Done(); errs[1] = hier.SetAreaParent(ctx, b.ID, a.ID) }()
	wg.Wait()

	var n int64
	if err := db.Table("area_belongs_to").Where("area_id IN ?", []int64{a.ID, b.ID}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n > 1 {
		t.Fatalf("cycle committed: %d rows (errs=%v)", n, errs)
	}
	for _, err := range errs {
		if err != nil && !domainagg.IsCode(err, domainagg.CodeCycleDetected) && !domainagg.IsCode(err, domainagg.CodeRetryable) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
}
