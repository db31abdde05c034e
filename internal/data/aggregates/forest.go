package aggregates

import (
	"fmt"

	"github.com/lgrosz/climb-catalog/internal/data/repos"
	domainagg "github.com/lgrosz/climb-catalog/internal/domain/aggregates"
	"github.com/lgrosz/climb-catalog/internal/domain/changelog"
	"github.com/lgrosz/climb-catalog/internal/domain/hierarchy"
	"github.com/lgrosz/climb-catalog/internal/platform/dbctx"
)

// maxChainDepth bounds every parent walk so corrupt data cannot spin forever.
const maxChainDepth = 1024

// forest holds the transaction-scoped containment steps shared by the
// hierarchy and entity aggregates. Every method expects dbc to carry the
// caller's write transaction.
type forest struct {
	r *repos.Set
}

// lockNode takes a row lock on the node's entity row and reports whether it exists.
func (f forest) lockNode(dbc dbctx.Context, node hierarchy.NodeRef) (bool, error) {
	switch node.Kind {
	case hierarchy.KindArea:
		row, err := f.r.Areas.LockByID(dbc.Ctx, dbc.Tx, node.ID)
		return row != nil, err
	case hierarchy.KindFormation:
		row, err := f.r.Formations.LockByID(dbc.Ctx, dbc.Tx, node.ID)
		return row != nil, err
	case hierarchy.KindClimb:
		row, err := f.r.Climbs.LockByID(dbc.Ctx, dbc.Tx, node.ID)
		return row != nil, err
	default:
		return false, ValidationError(fmt.Sprintf("unknown node kind %q", node.Kind))
	}
}

func allowedParent(child hierarchy.NodeKind, parent hierarchy.NodeKind) bool {
	switch child {
	case hierarchy.KindArea:
		return parent == hierarchy.KindArea
	case hierarchy.KindFormation, hierarchy.KindClimb:
		return parent == hierarchy.KindArea || parent == hierarchy.KindFormation
	default:
		return false
	}
}

// setParent validates and writes child's parent pointer. Both the child and
// every node on the proposed parent's chain are locked before the chain is
// read, so two concurrent reparentings that would jointly close a loop
// serialize on a shared row.
func (f forest) setParent(dbc dbctx.Context, j *Journal, op string, child hierarchy.NodeRef, parent hierarchy.ParentRef) error {
	if parent.IsZero() {
		return domainagg.NewError(domainagg.CodeMutualExclusion, op, hierarchy.ErrNoParentKind.Error(), nil)
	}
	if !allowedParent(child.Kind, parent.Kind()) {
		return ValidationError(fmt.Sprintf("%s cannot belong to %s", child.Kind, parent.Kind()))
	}
	if parent.Node() == child {
		return domainagg.NewError(domainagg.CodeSelfReference, op, fmt.Sprintf("%s cannot be its own parent", child), nil)
	}

	ok, err := f.lockNode(dbc, child)
	if err != nil {
		return err
	}
	if !ok {
		return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("%s not found", child), nil)
	}
	ok, err = f.lockNode(dbc, parent.Node())
	if err != nil {
		return err
	}
	if !ok {
		return domainagg.NewError(domainagg.CodeParentNotFound, op, fmt.Sprintf("parent %s not found", parent), nil)
	}

	current, err := f.r.BelongsTo.ParentOf(dbc.Ctx, dbc.Tx, child)
	if err != nil {
		return err
	}
	if current != nil && *current == parent.Node() {
		return nil
	}

	if parent.Kind() == child.Kind {
		if err := f.checkChain(dbc, op, child, parent.Node()); err != nil {
			return err
		}
	}

	switch child.Kind {
	case hierarchy.KindArea:
		err = f.r.BelongsTo.UpsertAreaParent(dbc.Ctx, dbc.Tx, &hierarchy.AreaBelongsTo{AreaID: child.ID, SuperAreaID: parent.ID()})
	case hierarchy.KindFormation:
		err = f.r.BelongsTo.UpsertFormationParent(dbc.Ctx, dbc.Tx, hierarchy.NewFormationBelongsTo(child.ID, parent))
	case hierarchy.KindClimb:
		err = f.r.BelongsTo.UpsertClimbParent(dbc.Ctx, dbc.Tx, hierarchy.NewClimbBelongsTo(child.ID, parent))
	}
	if err != nil {
		return err
	}
	p := parent.Node()
	j.Record(string(child.Kind), child.ID, changelog.ActionParentSet, changelog.Payload{Parent: &p})
	return nil
}

// checkChain walks upward from start and fails when child is reached. Only
// same-kind ancestors can close a loop, so the walk stops at the first node
// of another kind.
func (f forest) checkChain(dbc dbctx.Context, op string, child, start hierarchy.NodeRef) error {
	cur := start
	seen := map[hierarchy.NodeRef]bool{cur: true}
	for depth := 0; depth < maxChainDepth; depth++ {
		next, err := f.r.BelongsTo.ParentOf(dbc.Ctx, dbc.Tx, cur)
		if err != nil {
			return err
		}
		if next == nil || next.Kind != child.Kind {
			return nil
		}
		if *next == child || seen[*next] {
			return domainagg.NewError(domainagg.CodeCycleDetected, op,
				fmt.Sprintf("%s is already an ancestor of %s", child, start), nil)
		}
		seen[*next] = true
		if _, err := f.lockNode(dbc, *next); err != nil {
			return err
		}
		cur = *next
	}
	return domainagg.NewError(domainagg.CodeCycleDetected, op, "parent chain exceeds maximum depth", nil)
}

func (f forest) clearParent(dbc dbctx.Context, j *Journal, child hierarchy.NodeRef) error {
	var (
		n   int64
		err error
	)
	switch child.Kind {
	case hierarchy.KindArea:
		n, err = f.r.BelongsTo.DeleteAreaParent(dbc.Ctx, dbc.Tx, child.ID)
	case hierarchy.KindFormation:
		n, err = f.r.BelongsTo.DeleteFormationParent(dbc.Ctx, dbc.Tx, child.ID)
	case hierarchy.KindClimb:
		n, err = f.r.BelongsTo.DeleteClimbParent(dbc.Ctx, dbc.Tx, child.ID)
	default:
		return ValidationError(fmt.Sprintf("unknown node kind %q", child.Kind))
	}
	if err != nil {
		return err
	}
	if n > 0 {
		j.Record(string(child.Kind), child.ID, changelog.ActionParentCleared, changelog.Payload{})
	}
	return nil
}

// removeNode is the containment half of an entity delete. The node row must
// already be locked by the caller.
func (f forest) removeNode(dbc dbctx.Context, op string, node hierarchy.NodeRef) error {
	if node.Kind.CanParent() {
		n, err := f.r.BelongsTo.CountChildren(dbc.Ctx, dbc.Tx, node)
		if err != nil {
			return err
		}
		if n > 0 {
			return domainagg.NewError(domainagg.CodeRestrictedDelete, op,
				fmt.Sprintf("%s still has %d children", node, n), nil)
		}
	}
	_, err := f.r.BelongsTo.DeleteChildRow(dbc.Ctx, dbc.Tx, node)
	return err
}
