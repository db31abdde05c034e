package hierarchy

import (
	"errors"
	"fmt"
	"strings"
)

// NodeKind names one of the three kinds of node in the containment forest.
type NodeKind string

const (
	KindArea      NodeKind = "area"
	KindFormation NodeKind = "formation"
	KindClimb     NodeKind = "climb"
)

func ParseNodeKind(s string) (NodeKind, error) {
	switch k := NodeKind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindArea, KindFormation, KindClimb:
		return k, nil
	default:
		return "", fmt.Errorf("unknown node kind %q", s)
	}
}

// CanParent reports whether nodes of this kind may have children.
func (k NodeKind) CanParent() bool { return k == KindArea || k == KindFormation }

type NodeRef struct {
	Kind NodeKind `json:"kind"`
	ID   int64    `json:"id"`
}

func (r NodeRef) String() string { return fmt.Sprintf("%s:%d", r.Kind, r.ID) }

var (
	ErrNoParentKind   = errors.New("exactly one parent kind is required, got none")
	ErrBothParentKind = errors.New("exactly one parent kind is required, got both")
)

// ParentRef is either an Area or a Formation parent. The zero value is neither
// and is rejected by every write that takes one.
type ParentRef struct {
	kind NodeKind
	id   int64
}

func AreaParent(id int64) ParentRef      { return ParentRef{kind: KindArea, id: id} }
func FormationParent(id int64) ParentRef { return ParentRef{kind: KindFormation, id: id} }

// ParentRefFromColumns converts the two nullable storage columns (or an API
// body with the same shape) into a ParentRef.
func ParentRefFromColumns(areaID, formationID *int64) (ParentRef, error) {
	switch {
	case areaID != nil && formationID != nil:
		return ParentRef{}, ErrBothParentKind
	case areaID != nil:
		return AreaParent(*areaID), nil
	case formationID != nil:
		return FormationParent(*formationID), nil
	default:
		return ParentRef{}, ErrNoParentKind
	}
}

func (p ParentRef) IsZero() bool   { return p.kind == "" }
func (p ParentRef) Kind() NodeKind { return p.kind }
func (p ParentRef) ID() int64      { return p.id }
func (p ParentRef) Node() NodeRef  { return NodeRef{Kind: p.kind, ID: p.id} }
func (p ParentRef) String() string { return p.Node().String() }

// Columns derives both storage columns from the tag; the unused one is nil.
func (p ParentRef) Columns() (areaID, formationID *int64) {
	id := p.id
	switch p.kind {
	case KindArea:
		return &id, nil
	case KindFormation:
		return nil, &id
	default:
		return nil, nil
	}
}
