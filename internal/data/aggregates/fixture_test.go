package aggregates

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/lgrosz/climb-catalog/internal/data/repos/testutil"
	domainagg "github.com/lgrosz/climb-catalog/internal/domain/aggregates"
	"github.com/lgrosz/climb-catalog/internal/domain/hierarchy"
)

type fixture struct {
	ctx   context.Context
	tx    *gorm.DB
	hooks *spyHooks
	pub   *spyPublisher
	hier  domainagg.HierarchyAggregate
	cat   domainagg.CatalogAggregate
	assoc domainagg.AssociationAggregate
}

// newFixture runs every aggregate against one outer transaction that is
// rolled back at cleanup; aggregate transactions nest as savepoints.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	tx := testutil.Tx(t, testutil.DB(t))
	hooks := &spyHooks{}
	pub := &spyPublisher{}
	base := BaseDeps{DB: tx, Log: testutil.Logger(t), Hooks: hooks, Publisher: pub}
	return &fixture{
		ctx:   context.Background(),
		tx:    tx,
		hooks: hooks,
		pub:   pub,
		hier:  NewHierarchyAggregate(HierarchyAggregateDeps{Base: base}),
		cat:   NewCatalogAggregate(CatalogAggregateDeps{Base: base}),
		assoc: NewAssociationAggregate(AssociationAggregateDeps{Base: base}),
	}
}

func (f *fixture) count(t *testing.T, table, where string, args ...any) int64 {
	t.Helper()
	var n int64
	if err := f.tx.Table(table).Where(where, args...).Count(&n).Error; err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func area(id int64) hierarchy.NodeRef      { return hierarchy.NodeRef{Kind: hierarchy.KindArea, ID: id} }
func formation(id int64) hierarchy.NodeRef { return hierarchy.NodeRef{Kind: hierarchy.KindFormation, ID: id} }
func climb(id int64) hierarchy.NodeRef     { return hierarchy.NodeRef{Kind: hierarchy.KindClimb, ID: id} }

func requireCode(t *testing.T, err error, want domainagg.ErrorCode) {
	t.Helper()
	if !domainagg.IsCode(err, want) {
		t.Fatalf("want code %q, got %q (%v)", want, domainagg.CodeOf(err), err)
	}
}

func requireOK(t *testing.T, what string, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: %v", what, err)
	}
}
