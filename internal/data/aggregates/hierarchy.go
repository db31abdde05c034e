package aggregates

import (
	"context"
	"fmt"
	"iter"

	domainagg "github.com/lgrosz/climb-catalog/internal/domain/aggregates"
	"github.com/lgrosz/climb-catalog/internal/domain/hierarchy"
	"github.com/lgrosz/climb-catalog/internal/platform/dbctx"
)

type HierarchyAggregateDeps struct {
	Base BaseDeps
}

type hierarchyAggregate struct {
	deps   HierarchyAggregateDeps
	forest forest
}

func NewHierarchyAggregate(deps HierarchyAggregateDeps) domainagg.HierarchyAggregate {
	deps.Base = deps.Base.withDefaults()
	return &hierarchyAggregate{deps: deps, forest: forest{r: deps.Base.Repos}}
}

func (a *hierarchyAggregate) Contract() domainagg.Contract {
	return domainagg.HierarchyAggregateContract
}

func (a *hierarchyAggregate) SetAreaParent(ctx context.Context, areaID, superAreaID int64) error {
	const op = "Catalog.Hierarchy.SetAreaParent"
	return a.setParent(ctx, op, hierarchy.NodeRef{Kind: hierarchy.KindArea, ID: areaID}, hierarchy.AreaParent(superAreaID))
}

func (a *hierarchyAggregate) ClearAreaParent(ctx context.Context, areaID int64) error {
	const op = "Catalog.Hierarchy.ClearAreaParent"
	return a.clearParent(ctx, op, hierarchy.NodeRef{Kind: hierarchy.KindArea, ID: areaID})
}

func (a *hierarchyAggregate) SetFormationParent(ctx context.Context, formationID int64, parent hierarchy.ParentRef) error {
	const op = "Catalog.Hierarchy.SetFormationParent"
	return a.setParent(ctx, op, hierarchy.NodeRef{Kind: hierarchy.KindFormation, ID: formationID}, parent)
}

func (a *hierarchyAggregate) ClearFormationParent(ctx context.Context, formationID int64) error {
	const op = "Catalog.Hierarchy.ClearFormationParent"
	return a.clearParent(ctx, op, hierarchy.NodeRef{Kind: hierarchy.KindFormation, ID: formationID})
}

func (a *hierarchyAggregate) SetClimbParent(ctx context.Context, climbID int64, parent hierarchy.ParentRef) error {
	const op = "Catalog.Hierarchy.SetClimbParent"
	return a.setParent(ctx, op, hierarchy.NodeRef{Kind: hierarchy.KindClimb, ID: climbID}, parent)
}

func (a *hierarchyAggregate) ClearClimbParent(ctx context.Context, climbID int64) error {
	const op = "Catalog.Hierarchy.ClearClimbParent"
	return a.clearParent(ctx, op, hierarchy.NodeRef{Kind: hierarchy.KindClimb, ID: climbID})
}

func (a *hierarchyAggregate) setParent(ctx context.Context, op string, child hierarchy.NodeRef, parent hierarchy.ParentRef) error {
	// Rejected before a transaction is opened.
	if parent.IsZero() {
		return domainagg.NewError(domainagg.CodeMutualExclusion, op, hierarchy.ErrNoParentKind.Error(), nil)
	}
	if parent.Node() == child {
		return domainagg.NewError(domainagg.CodeSelfReference, op, fmt.Sprintf("%s cannot be its own parent", child), nil)
	}
	return executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context, j *Journal) error {
		return a.forest.setParent(dbc, j, op, child, parent)
	})
}

func (a *hierarchyAggregate) clearParent(ctx context.Context, op string, child hierarchy.NodeRef) error {
	return executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context, j *Journal) error {
		return a.forest.clearParent(dbc, j, child)
	})
}

// Ancestors reads outside any transaction. Every range starts a fresh walk
// from node, so the sequence reflects the state at iteration time.
func (a *hierarchyAggregate) Ancestors(ctx context.Context, node hierarchy.NodeRef) iter.Seq2[hierarchy.NodeRef, error] {
	const op = "Catalog.Hierarchy.Ancestors"
	return func(yield func(hierarchy.NodeRef, error) bool) {
		seen := map[hierarchy.NodeRef]bool{node: true}
		cur := node
		for depth := 0; depth < maxChainDepth; depth++ {
			next, err := a.deps.Base.Repos.BelongsTo.ParentOf(ctx, nil, cur)
			if err != nil {
				yield(hierarchy.NodeRef{}, MapError(op, err))
				return
			}
			if next == nil {
				return
			}
			if seen[*next] {
				yield(hierarchy.NodeRef{}, domainagg.NewError(domainagg.CodeCycleDetected, op,
					fmt.Sprintf("%s reached twice above %s", next, node), nil))
				return
			}
			seen[*next] = true
			if !yield(*next, nil) {
				return
			}
			cur = *next
		}
		yield(hierarchy.NodeRef{}, domainagg.NewError(domainagg.CodeInternal, op, "parent chain exceeds maximum depth", nil))
	}
}

func (a *hierarchyAggregate) Children(ctx context.Context, node hierarchy.NodeRef) ([]hierarchy.NodeRef, error) {
	const op = "Catalog.Hierarchy.Children"
	out, err := a.deps.Base.Repos.BelongsTo.Children(ctx, nil, node)
	if err != nil {
		return nil, MapError(op, err)
	}
	return out, nil
}
