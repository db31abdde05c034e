package aggregates

import (
	"testing"
	"time"

	"github.com/lgrosz/climb-catalog/internal/data/repos/testutil"
	domainagg "github.com/lgrosz/climb-catalog/internal/domain/aggregates"
	"github.com/lgrosz/climb-catalog/internal/domain/catalog"
	"github.com/lgrosz/climb-catalog/internal/domain/changelog"
	"github.com/lgrosz/climb-catalog/internal/domain/hierarchy"
)

func TestGalleryLifecycle(t *testing.T) {
	f := newFixture(t)

	gallery, err := f.cat.CreateArea(f.ctx, domainagg.CreateAreaInput{Names: catalog.NamesOf("The Gallery")})
	requireOK(t, "create gallery", err)
	baldy, err := f.cat.CreateArea(f.ctx, domainagg.CreateAreaInput{Names: catalog.NamesOf("Old Baldy Mountain")})
	requireOK(t, "create baldy", err)

	requireOK(t, "gallery in baldy", f.hier.SetAreaParent(f.ctx, gallery, baldy))
	requireCode(t, f.hier.SetAreaParent(f.ctx, baldy, gallery), domainagg.CodeCycleDetected)

	before := f.count(t, "areas", "id IN ?", []int64{gallery, baldy}) + f.count(t, "area_belongs_to", "area_id IN ?", []int64{gallery, baldy})
	_, err = f.cat.DeleteArea(f.ctx, baldy)
	requireCode(t, err, domainagg.CodeRestrictedDelete)
	after := f.count(t, "areas", "id IN ?", []int64{gallery, baldy}) + f.count(t, "area_belongs_to", "area_id IN ?", []int64{gallery, baldy})
	if before != after {
		t.Fatalf("restricted delete changed rows: before=%d after=%d", before, after)
	}
	if len(f.hooks.Conflicts) != 1 {
		t.Fatalf("restricted delete should count one conflict, got %v", f.hooks.Conflicts)
	}

	requireOK(t, "clear", f.hier.ClearAreaParent(f.ctx, gallery))
	if _, err := f.cat.DeleteArea(f.ctx, baldy); err != nil {
		t.Fatalf("delete baldy after clear: %v", err)
	}
	if n := f.count(t, "areas", "id = ?", baldy); n != 0 {
		t.Fatalf("baldy still present")
	}
}

func TestDeleteChildRemovesOwnContainmentRow(t *testing.T) {
	f := newFixture(t)
	x := testutil.SeedArea(t, f.ctx, f.tx, "x")
	fm := testutil.SeedFormation(t, f.ctx, f.tx, "f")
	c := testutil.SeedClimb(t, f.ctx, f.tx, "c")
	testutil.SeedFormationParent(t, f.ctx, f.tx, fm.ID, hierarchy.AreaParent(x.ID))
	testutil.SeedClimbParent(t, f.ctx, f.tx, c.ID, hierarchy.FormationParent(fm.ID))

	_, err := f.cat.DeleteFormation(f.ctx, fm.ID)
	requireCode(t, err, domainagg.CodeRestrictedDelete)

	_, err = f.cat.DeleteClimb(f.ctx, c.ID)
	requireOK(t, "delete climb", err)
	if n := f.count(t, "climb_belongs_to", "climb_id = ?", c.ID); n != 0 {
		t.Fatalf("climb containment row survived")
	}

	_, err = f.cat.DeleteFormation(f.ctx, fm.ID)
	requireOK(t, "delete formation", err)
	if n := f.count(t, "formation_belongs_to", "formation_id = ?", fm.ID); n != 0 {
		t.Fatalf("formation containment row survived")
	}
	if n := f.count(t, "areas", "id = ?", x.ID); n != 1 {
		t.Fatalf("parent area must survive child delete")
	}
}

func TestDeleteReferencedParentIsRestricted(t *testing.T) {
	cases := []struct {
		name   string
		seed   func(t *testing.T, f *fixture) (parentID int64, childTable, childCol string)
		delete func(f *fixture, id int64) error
	}{
		{
			name: "area holding a climb",
			seed: func(t *testing.T, f *fixture) (int64, string, string) {
				a := testutil.SeedArea(t, f.ctx, f.tx, "a")
				c := testutil.SeedClimb(t, f.ctx, f.tx, "c")
				testutil.SeedClimbParent(t, f.ctx, f.tx, c.ID, hierarchy.AreaParent(a.ID))
				return a.ID, "climb_belongs_to", "area_id"
			},
			delete: func(f *fixture, id int64) error {
				_, err := f.cat.DeleteArea(f.ctx, id)
				return err
			},
		},
		{
			name: "area holding a formation",
			seed: func(t *testing.T, f *fixture) (int64, string, string) {
				a := testutil.SeedArea(t, f.ctx, f.tx, "a")
				fm := testutil.SeedFormation(t, f.ctx, f.tx, "f")
				testutil.SeedFormationParent(t, f.ctx, f.tx, fm.ID, hierarchy.AreaParent(a.ID))
				return a.ID, "formation_belongs_to", "area_id"
			},
			delete: func(f *fixture, id int64) error {
				_, err := f.cat.DeleteArea(f.ctx, id)
				return err
			},
		},
		{
			name: "formation holding a sub-formation",
			seed: func(t *testing.T, f *fixture) (int64, string, string) {
				parent := testutil.SeedFormation(t, f.ctx, f.tx, "parent")
				sub := testutil.SeedFormation(t, f.ctx, f.tx, "sub")
				testutil.SeedFormationParent(t, f.ctx, f.tx, sub.ID, hierarchy.FormationParent(parent.ID))
				return parent.ID, "formation_belongs_to", "super_formation_id"
			},
			delete: func(f *fixture, id int64) error {
				_, err := f.cat.DeleteFormation(f.ctx, id)
				return err
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			id, table, col := tc.seed(t, f)
			countAll := func() int64 {
				return f.count(t, "areas", "id = ?", id) +
					f.count(t, "formations", "id = ?", id) +
					f.count(t, table, col+" = ?", id) +
					f.count(t, "change_log", "entity_id = ?", id)
			}
			before := countAll()
			requireCode(t, tc.delete(f, id), domainagg.CodeRestrictedDelete)
			if after := countAll(); after != before {
				t.Fatalf("restricted delete changed rows: before=%d after=%d", before, after)
			}
			if len(f.pub.Batches) != 0 {
				t.Fatalf("restricted delete must not publish, got %d batches", len(f.pub.Batches))
			}
		})
	}
}

func TestDeleteMissingNode(t *testing.T) {
	f := newFixture(t)
	_, err := f.cat.DeleteArea(f.ctx, 987654)
	requireCode(t, err, domainagg.CodeNotFound)
	_, err = f.cat.DeleteClimber(f.ctx, 987654)
	requireCode(t, err, domainagg.CodeNotFound)
	_, err = f.cat.DeleteAscent(f.ctx, 987654)
	requireCode(t, err, domainagg.CodeNotFound)
}

func TestCreateClimbWithRelations(t *testing.T) {
	f := newFixture(t)
	x := testutil.SeedArea(t, f.ctx, f.tx, "x")
	parent := hierarchy.AreaParent(x.ID)

	id, err := f.cat.CreateClimb(f.ctx, domainagg.CreateClimbInput{
		Names:        catalog.NamesOf("Midnight Lightning"),
		Parent:       &parent,
		Descriptions: map[string]string{catalog.DescriptionTypeBrief: "classic", catalog.DescriptionTypeHistory: "1978"},
		Grades:       []catalog.GradeValue{{GradeType: catalog.GradeTypeVermin, Value: "V8"}},
	})
	requireOK(t, "create climb", err)

	if n := f.count(t, "climb_belongs_to", "climb_id = ? AND area_id = ?", id, x.ID); n != 1 {
		t.Fatalf("climb not placed under area")
	}
	if n := f.count(t, "climb_descriptions", "climb_id = ?", id); n != 2 {
		t.Fatalf("want 2 descriptions, got %d", n)
	}
	if n := f.count(t, "climb_grades", "climb_id = ?", id); n != 1 {
		t.Fatalf("want 1 grade link, got %d", n)
	}
	if n := f.count(t, "change_log", "entity_kind = ? AND entity_id = ?", "climb", id); n != 5 {
		// created, parent_set, 2x described, linked
		t.Fatalf("want 5 change rows, got %d", n)
	}

	// A second climb at the same grade reuses the grade row.
	other, err := f.cat.CreateClimb(f.ctx, domainagg.CreateClimbInput{Grades: []catalog.GradeValue{{GradeType: catalog.GradeTypeVermin, Value: "V8"}}})
	requireOK(t, "second climb", err)
	var gradeIDs []int64
	if err := f.tx.Table("climb_grades").Where("climb_id IN ?", []int64{id, other}).Distinct().Pluck("grade_id", &gradeIDs).Error; err != nil {
		t.Fatalf("pluck: %v", err)
	}
	if len(gradeIDs) != 1 {
		t.Fatalf("grade should be shared, got %v", gradeIDs)
	}

	if len(f.pub.Batches) != 2 || len(f.pub.Batches[0]) != 5 {
		t.Fatalf("unexpected published batches: %d", len(f.pub.Batches))
	}
}

func TestCreateClimbRollsBackOnFailure(t *testing.T) {
	f := newFixture(t)
	before := testutil.Count(t, f.tx, "climbs")

	_, err := f.cat.CreateClimb(f.ctx, domainagg.CreateClimbInput{
		Names:  catalog.NamesOf("ghost"),
		Grades: []catalog.GradeValue{{GradeType: "yds", Value: "5.12a"}},
	})
	requireCode(t, err, domainagg.CodeNotFound)

	missing := hierarchy.FormationParent(424242)
	_, err = f.cat.CreateClimb(f.ctx, domainagg.CreateClimbInput{Names: catalog.NamesOf("ghost"), Parent: &missing})
	requireCode(t, err, domainagg.CodeParentNotFound)

	_, err = f.cat.CreateClimb(f.ctx, domainagg.CreateClimbInput{
		Names:        catalog.NamesOf("ghost"),
		Descriptions: map[string]string{"beta": "crimp"},
	})
	requireCode(t, err, domainagg.CodeNotFound)

	if after := testutil.Count(t, f.tx, "climbs"); after != before {
		t.Fatalf("failed creates left climbs behind: before=%d after=%d", before, after)
	}
	if len(f.pub.Batches) != 0 {
		t.Fatalf("failed creates published events")
	}
}

func TestCreateFormationWithLocation(t *testing.T) {
	f := newFixture(t)
	parent := hierarchy.ParentRef{}
	_, err := f.cat.CreateFormation(f.ctx, domainagg.CreateFormationInput{Parent: &parent})
	requireCode(t, err, domainagg.CodeMutualExclusion)

	_, err = f.cat.CreateFormation(f.ctx, domainagg.CreateFormationInput{Location: &catalog.Location{Lat: 123, Lon: 0}})
	requireCode(t, err, domainagg.CodeValidation)

	id, err := f.cat.CreateFormation(f.ctx, domainagg.CreateFormationInput{
		Names:    catalog.NamesOf("Grandpa Peabody"),
		Location: &catalog.Location{Lat: 37.37, Lon: -118.57},
	})
	requireOK(t, "create", err)

	var row catalog.Formation
	if err := f.tx.Take(&row, id).Error; err != nil {
		t.Fatalf("load formation: %v", err)
	}
	loc := row.Location()
	if loc == nil || loc.SRID != catalog.DefaultSRID || loc.Lat != 37.37 {
		t.Fatalf("unexpected location: %+v", loc)
	}

	requireCode(t, f.cat.SetFormationLocation(f.ctx, id, catalog.Location{Lat: 0, Lon: 200}), domainagg.CodeValidation)
	requireOK(t, "set", f.cat.SetFormationLocation(f.ctx, id, catalog.Location{Lat: 1, Lon: 2, SRID: 4326}))
	requireOK(t, "clear", f.cat.ClearFormationLocation(f.ctx, id))
	if n := f.count(t, "formations", "id = ? AND location_lat IS NULL AND location_srid IS NULL", id); n != 1 {
		t.Fatalf("location not cleared")
	}
	requireCode(t, f.cat.ClearFormationLocation(f.ctx, 999999), domainagg.CodeNotFound)
}

func TestAppendAndRemoveName(t *testing.T) {
	f := newFixture(t)
	c := testutil.SeedClimb(t, f.ctx, f.tx, "Ambrosia")
	node := climb(c.ID)

	names, err := f.cat.AppendName(f.ctx, node, "The Ambrosia Boulder")
	requireOK(t, "append", err)
	if len(names) != 2 {
		t.Fatalf("want 2 names, got %d", len(names))
	}
	names, err = f.cat.AppendName(f.ctx, node, "Ambrosia")
	requireOK(t, "append duplicate", err)
	if len(names) != 2 {
		t.Fatalf("duplicate append changed names: %d", len(names))
	}

	names, err = f.cat.RemoveName(f.ctx, node, "Ambrosia")
	requireOK(t, "remove", err)
	if len(names) != 1 || *names[0] != "The Ambrosia Boulder" {
		t.Fatalf("unexpected names after remove")
	}

	var row catalog.Climb
	if err := f.tx.Take(&row, c.ID).Error; err != nil {
		t.Fatalf("load climb: %v", err)
	}
	if len(row.Names) != 1 || !row.Names.Contains("The Ambrosia Boulder") {
		t.Fatalf("names not persisted")
	}

	_, err = f.cat.AppendName(f.ctx, node, "  ")
	requireCode(t, err, domainagg.CodeValidation)
	_, err = f.cat.RemoveName(f.ctx, area(987654), "x")
	requireCode(t, err, domainagg.CodeNotFound)

	// two renames, the duplicate append is silent
	if n := f.count(t, "change_log", "entity_kind = ? AND entity_id = ? AND action = ?", "climb", c.ID, changelog.ActionRenamed); n != 2 {
		t.Fatalf("want 2 renamed rows, got %d", n)
	}
}

func TestCreateAscentWithPartyAndGrades(t *testing.T) {
	f := newFixture(t)
	c := testutil.SeedClimb(t, f.ctx, f.tx, "c")
	climberID, err := f.cat.CreateClimber(f.ctx, domainagg.CreateClimberInput{FirstName: "Lynn", LastName: "Hill"})
	requireOK(t, "climber", err)

	_, err = f.cat.CreateClimber(f.ctx, domainagg.CreateClimberInput{FirstName: "Lynn"})
	requireCode(t, err, domainagg.CodeValidation)

	lower := time.Date(1993, 9, 1, 0, 0, 0, 0, time.UTC)
	upper := lower.AddDate(0, 0, 1)
	id, err := f.cat.CreateAscent(f.ctx, domainagg.CreateAscentInput{
		ClimbID:    c.ID,
		Date:       &catalog.DateRange{Lower: &lower, Upper: &upper},
		ClimberIDs: []int64{climberID},
		Grades:     []catalog.GradeValue{{GradeType: catalog.GradeTypeVermin, Value: "V5"}},
	})
	requireOK(t, "ascent", err)
	if n := f.count(t, "ascent_parties", "ascent_id = ? AND climber_id = ?", id, climberID); n != 1 {
		t.Fatalf("party not linked")
	}
	if n := f.count(t, "ascent_grades", "ascent_id = ?", id); n != 1 {
		t.Fatalf("grade not linked")
	}

	_, err = f.cat.CreateAscent(f.ctx, domainagg.CreateAscentInput{ClimbID: c.ID, Date: &catalog.DateRange{Lower: &upper, Upper: &lower}})
	requireCode(t, err, domainagg.CodeValidation)

	_, err = f.cat.CreateAscent(f.ctx, domainagg.CreateAscentInput{ClimbID: 987654})
	requireCode(t, err, domainagg.CodeNotFound)

	before := f.count(t, "ascents", "climb_id = ?", c.ID)
	_, err = f.cat.CreateAscent(f.ctx, domainagg.CreateAscentInput{ClimbID: c.ID, ClimberIDs: []int64{987654}})
	requireCode(t, err, domainagg.CodeNotFound)
	if after := f.count(t, "ascents", "climb_id = ?", c.ID); after != before {
		t.Fatalf("failed ascent left a row behind")
	}

	_, err = f.cat.DeleteAscent(f.ctx, id)
	requireOK(t, "delete ascent", err)
	if n := f.count(t, "ascent_parties", "ascent_id = ?", id); n != 0 {
		t.Fatalf("party rows should cascade")
	}
	_, err = f.cat.DeleteClimber(f.ctx, climberID)
	requireOK(t, "delete climber", err)
}
