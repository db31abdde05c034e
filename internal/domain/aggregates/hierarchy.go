package aggregates

import (
	"context"
	"iter"

	"github.com/lgrosz/climb-catalog/internal/domain/hierarchy"
)

var HierarchyAggregateContract = Contract{
	Name:             "Catalog.HierarchyAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Owns the area/formation/climb containment forest: one parent per node, no self-reference, no cycles.",
}

// HierarchyAggregate owns the three parent-pointer relations.
//
// Write method failures return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeSelfReference, CodeCycleDetected,
// CodeParentNotFound, CodeMutualExclusion, CodeRetryable, CodeInternal.
type HierarchyAggregate interface {
	Aggregate

	// SetAreaParent upserts the area's parent. Calling it twice with the same
	// arguments leaves one row.
	SetAreaParent(ctx context.Context, areaID, superAreaID int64) error
	ClearAreaParent(ctx context.Context, areaID int64) error

	// SetFormationParent writes the chosen parent column and nulls the other one.
	SetFormationParent(ctx context.Context, formationID int64, parent hierarchy.ParentRef) error
	ClearFormationParent(ctx context.Context, formationID int64) error

	// SetClimbParent has no cycle walk; climbs are always leaves.
	SetClimbParent(ctx context.Context, climbID int64, parent hierarchy.ParentRef) error
	ClearClimbParent(ctx context.Context, climbID int64) error

	// Ancestors yields the parent chain from the node's parent up to its root.
	// Each range over the sequence re-reads current state.
	Ancestors(ctx context.Context, node hierarchy.NodeRef) iter.Seq2[hierarchy.NodeRef, error]

	// Children lists direct children ordered by kind then id.
	Children(ctx context.Context, node hierarchy.NodeRef) ([]hierarchy.NodeRef, error)
}
