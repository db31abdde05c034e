package aggregates

import (
	"context"
	"fmt"
	"slices"
	"strings"

	domainagg "github.com/lgrosz/climb-catalog/internal/domain/aggregates"
	"github.com/lgrosz/climb-catalog/internal/domain/catalog"
	"github.com/lgrosz/climb-catalog/internal/domain/changelog"
	"github.com/lgrosz/climb-catalog/internal/domain/hierarchy"
	"github.com/lgrosz/climb-catalog/internal/domain/links"
	"github.com/lgrosz/climb-catalog/internal/platform/dbctx"
)

type CatalogAggregateDeps struct {
	Base BaseDeps
}

type catalogAggregate struct {
	deps   CatalogAggregateDeps
	forest forest
}

func NewCatalogAggregate(deps CatalogAggregateDeps) domainagg.CatalogAggregate {
	deps.Base = deps.Base.withDefaults()
	return &catalogAggregate{deps: deps, forest: forest{r: deps.Base.Repos}}
}

func (a *catalogAggregate) Contract() domainagg.Contract {
	return domainagg.CatalogAggregateContract
}

func (a *catalogAggregate) CreateArea(ctx context.Context, in domainagg.CreateAreaInput) (int64, error) {
	const op = "Catalog.Entity.CreateArea"
	var id int64
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context, j *Journal) error {
		rows, err := a.deps.Base.Repos.Areas.Create(dbc.Ctx, dbc.Tx, []*catalog.Area{{Names: namesOrEmpty(in.Names)}})
		if err != nil {
			return err
		}
		id = rows[0].ID
		node := hierarchy.NodeRef{Kind: hierarchy.KindArea, ID: id}
		j.Record(string(node.Kind), id, changelog.ActionCreated, changelog.Payload{Names: rows[0].Names})
		if in.SuperAreaID != nil {
			return a.forest.setParent(dbc, j, op, node, hierarchy.AreaParent(*in.SuperAreaID))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (a *catalogAggregate) CreateFormation(ctx context.Context, in domainagg.CreateFormationInput) (int64, error) {
	const op = "Catalog.Entity.CreateFormation"
	var loc *catalog.Location
	if in.Location != nil {
		l := in.Location.Normalize()
		if err := l.Validate(); err != nil {
			return 0, domainagg.Wrap(domainagg.CodeValidation, op, err)
		}
		loc = &l
	}
	if in.Parent != nil && in.Parent.IsZero() {
		return 0, domainagg.NewError(domainagg.CodeMutualExclusion, op, hierarchy.ErrNoParentKind.Error(), nil)
	}
	var id int64
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context, j *Journal) error {
		row := &catalog.Formation{Names: namesOrEmpty(in.Names)}
		row.SetLocation(loc)
		rows, err := a.deps.Base.Repos.Formations.Create(dbc.Ctx, dbc.Tx, []*catalog.Formation{row})
		if err != nil {
			return err
		}
		id = rows[0].ID
		node := hierarchy.NodeRef{Kind: hierarchy.KindFormation, ID: id}
		j.Record(string(node.Kind), id, changelog.ActionCreated, changelog.Payload{Names: row.Names, Location: loc})
		if in.Parent != nil {
			return a.forest.setParent(dbc, j, op, node, *in.Parent)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (a *catalogAggregate) CreateClimb(ctx context.Context, in domainagg.CreateClimbInput) (int64, error) {
	const op = "Catalog.Entity.CreateClimb"
	if in.Parent != nil && in.Parent.IsZero() {
		return 0, domainagg.NewError(domainagg.CodeMutualExclusion, op, hierarchy.ErrNoParentKind.Error(), nil)
	}
	var id int64
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context, j *Journal) error {
		rows, err := a.deps.Base.Repos.Climbs.Create(dbc.Ctx, dbc.Tx, []*catalog.Climb{{Names: namesOrEmpty(in.Names)}})
		if err != nil {
			return err
		}
		id = rows[0].ID
		node := hierarchy.NodeRef{Kind: hierarchy.KindClimb, ID: id}
		j.Record(string(node.Kind), id, changelog.ActionCreated, changelog.Payload{Names: rows[0].Names})
		if in.Parent != nil {
			if err := a.forest.setParent(dbc, j, op, node, *in.Parent); err != nil {
				return err
			}
		}
		for _, typ := range sortedKeys(in.Descriptions) {
			if err := describe(dbc, a.deps.Base, j, op, id, typ, in.Descriptions[typ]); err != nil {
				return err
			}
		}
		return a.linkGrades(dbc, j, op, links.KindClimbGrade, id, in.Grades)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// linkGrades upserts each (grade type name, value) grade and links it to owner.
func (a *catalogAggregate) linkGrades(dbc dbctx.Context, j *Journal, op string, kind links.Kind, owner int64, grades []catalog.GradeValue) error {
	for _, gv := range grades {
		g, err := resolveGrade(dbc, a.deps.Base, op, gv.GradeType, gv.Value, true)
		if err != nil {
			return err
		}
		if _, err := linkRecorded(dbc, a.deps.Base, j, op, kind, links.Pair{Left: owner, Right: g.ID}); err != nil {
			return err
		}
	}
	return nil
}

func (a *catalogAggregate) CreateClimber(ctx context.Context, in domainagg.CreateClimberInput) (int64, error) {
	const op = "Catalog.Entity.CreateClimber"
	first, last := strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName)
	if first == "" || last == "" {
		return 0, domainagg.NewError(domainagg.CodeValidation, op, "first and last name are required", nil)
	}
	var id int64
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context, j *Journal) error {
		rows, err := a.deps.Base.Repos.Climbers.Create(dbc.Ctx, dbc.Tx, []*catalog.Climber{{FirstName: first, LastName: last}})
		if err != nil {
			return err
		}
		id = rows[0].ID
		j.Record(changelog.EntityClimber, id, changelog.ActionCreated, changelog.Payload{Names: catalog.NamesOf(first, last)})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (a *catalogAggregate) CreateAscent(ctx context.Context, in domainagg.CreateAscentInput) (int64, error) {
	const op = "Catalog.Entity.CreateAscent"
	if in.Date != nil {
		if err := in.Date.Validate(); err != nil {
			return 0, domainagg.Wrap(domainagg.CodeValidation, op, err)
		}
	}
	var id int64
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context, j *Journal) error {
		ok, err := a.deps.Base.Repos.Climbs.Exists(dbc.Ctx, dbc.Tx, in.ClimbID)
		if err != nil {
			return err
		}
		if !ok {
			return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("climb %d not found", in.ClimbID), nil)
		}
		rows, err := a.deps.Base.Repos.Ascents.Create(dbc.Ctx, dbc.Tx, []*catalog.Ascent{{ClimbID: in.ClimbID, AscentDate: in.Date}})
		if err != nil {
			return err
		}
		id = rows[0].ID
		climb := hierarchy.NodeRef{Kind: hierarchy.KindClimb, ID: in.ClimbID}
		j.Record(changelog.EntityAscent, id, changelog.ActionCreated, changelog.Payload{Parent: &climb})
		for _, climberID := range in.ClimberIDs {
			if _, err := linkRecorded(dbc, a.deps.Base, j, op, links.KindAscentParty, links.Pair{Left: id, Right: climberID}); err != nil {
				return err
			}
		}
		return a.linkGrades(dbc, j, op, links.KindAscentGrade, id, in.Grades)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (a *catalogAggregate) DeleteArea(ctx context.Context, id int64) (int64, error) {
	return a.deleteNode(ctx, "Catalog.Entity.DeleteArea", hierarchy.NodeRef{Kind: hierarchy.KindArea, ID: id})
}

func (a *catalogAggregate) DeleteFormation(ctx context.Context, id int64) (int64, error) {
	return a.deleteNode(ctx, "Catalog.Entity.DeleteFormation", hierarchy.NodeRef{Kind: hierarchy.KindFormation, ID: id})
}

func (a *catalogAggregate) DeleteClimb(ctx context.Context, id int64) (int64, error) {
	return a.deleteNode(ctx, "Catalog.Entity.DeleteClimb", hierarchy.NodeRef{Kind: hierarchy.KindClimb, ID: id})
}

// deleteNode locks the node, refuses while it still parents anything, then
// removes its own containment row and the entity.
func (a *catalogAggregate) deleteNode(ctx context.Context, op string, node hierarchy.NodeRef) (int64, error) {
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context, j *Journal) error {
		ok, err := a.forest.lockNode(dbc, node)
		if err != nil {
			return err
		}
		if !ok {
			return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("%s not found", node), nil)
		}
		if err := a.forest.removeNode(dbc, op, node); err != nil {
			return err
		}
		var n int64
		switch node.Kind {
		case hierarchy.KindArea:
			n, err = a.deps.Base.Repos.Areas.Delete(dbc.Ctx, dbc.Tx, node.ID)
		case hierarchy.KindFormation:
			n, err = a.deps.Base.Repos.Formations.Delete(dbc.Ctx, dbc.Tx, node.ID)
		case hierarchy.KindClimb:
			n, err = a.deps.Base.Repos.Climbs.Delete(dbc.Ctx, dbc.Tx, node.ID)
		}
		if err != nil {
			return err
		}
		if n == 0 {
			return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("%s not found", node), nil)
		}
		j.Record(string(node.Kind), node.ID, changelog.ActionDeleted, changelog.Payload{})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return node.ID, nil
}

func (a *catalogAggregate) DeleteClimber(ctx context.Context, id int64) (int64, error) {
	const op = "Catalog.Entity.DeleteClimber"
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context, j *Journal) error {
		n, err := a.deps.Base.Repos.Climbers.Delete(dbc.Ctx, dbc.Tx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("climber %d not found", id), nil)
		}
		j.Record(changelog.EntityClimber, id, changelog.ActionDeleted, changelog.Payload{})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (a *catalogAggregate) DeleteAscent(ctx context.Context, id int64) (int64, error) {
	const op = "Catalog.Entity.DeleteAscent"
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context, j *Journal) error {
		n, err := a.deps.Base.Repos.Ascents.Delete(dbc.Ctx, dbc.Tx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("ascent %d not found", id), nil)
		}
		j.Record(changelog.EntityAscent, id, changelog.ActionDeleted, changelog.Payload{})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (a *catalogAggregate) AppendName(ctx context.Context, node hierarchy.NodeRef, name string) (catalog.Names, error) {
	const op = "Catalog.Entity.AppendName"
	return a.rename(ctx, op, node, name, func(names catalog.Names) (catalog.Names, bool) {
		return names.Append(name)
	})
}

func (a *catalogAggregate) RemoveName(ctx context.Context, node hierarchy.NodeRef, name string) (catalog.Names, error) {
	const op = "Catalog.Entity.RemoveName"
	return a.rename(ctx, op, node, name, func(names catalog.Names) (catalog.Names, bool) {
		out, removed := names.Without(name)
		return out, removed > 0
	})
}

func (a *catalogAggregate) rename(ctx context.Context, op string, node hierarchy.NodeRef, name string, edit func(catalog.Names) (catalog.Names, bool)) (catalog.Names, error) {
	if strings.TrimSpace(name) == "" {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing name", nil)
	}
	var out catalog.Names
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context, j *Journal) error {
		names, ok, err := a.lockNames(dbc, node)
		if err != nil {
			return err
		}
		if !ok {
			return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("%s not found", node), nil)
		}
		next, changed := edit(names)
		out = next
		if !changed {
			return nil
		}
		if err := a.updateNames(dbc, node, next); err != nil {
			return err
		}
		j.Record(string(node.Kind), node.ID, changelog.ActionRenamed, changelog.Payload{Names: next})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *catalogAggregate) lockNames(dbc dbctx.Context, node hierarchy.NodeRef) (catalog.Names, bool, error) {
	r := a.deps.Base.Repos
	switch node.Kind {
	case hierarchy.KindArea:
		row, err := r.Areas.LockByID(dbc.Ctx, dbc.Tx, node.ID)
		if err != nil || row == nil {
			return nil, false, err
		}
		return row.Names, true, nil
	case hierarchy.KindFormation:
		row, err := r.Formations.LockByID(dbc.Ctx, dbc.Tx, node.ID)
		if err != nil || row == nil {
			return nil, false, err
		}
		return row.Names, true, nil
	case hierarchy.KindClimb:
		row, err := r.Climbs.LockByID(dbc.Ctx, dbc.Tx, node.ID)
		if err != nil || row == nil {
			return nil, false, err
		}
		return row.Names, true, nil
	default:
		return nil, false, ValidationError(fmt.Sprintf("unknown node kind %q", node.Kind))
	}
}

func (a *catalogAggregate) updateNames(dbc dbctx.Context, node hierarchy.NodeRef, names catalog.Names) error {
	r := a.deps.Base.Repos
	switch node.Kind {
	case hierarchy.KindArea:
		return r.Areas.UpdateNames(dbc.Ctx, dbc.Tx, node.ID, names)
	case hierarchy.KindFormation:
		return r.Formations.UpdateNames(dbc.Ctx, dbc.Tx, node.ID, names)
	default:
		return r.Climbs.UpdateNames(dbc.Ctx, dbc.Tx, node.ID, names)
	}
}

func (a *catalogAggregate) SetFormationLocation(ctx context.Context, formationID int64, loc catalog.Location) error {
	const op = "Catalog.Entity.SetFormationLocation"
	loc = loc.Normalize()
	if err := loc.Validate(); err != nil {
		return domainagg.Wrap(domainagg.CodeValidation, op, err)
	}
	return a.setLocation(ctx, op, formationID, &loc)
}

func (a *catalogAggregate) ClearFormationLocation(ctx context.Context, formationID int64) error {
	const op = "Catalog.Entity.ClearFormationLocation"
	return a.setLocation(ctx, op, formationID, nil)
}

func (a *catalogAggregate) setLocation(ctx context.Context, op string, formationID int64, loc *catalog.Location) error {
	return executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context, j *Journal) error {
		n, err := a.deps.Base.Repos.Formations.UpdateLocation(dbc.Ctx, dbc.Tx, formationID, loc)
		if err != nil {
			return err
		}
		if n == 0 {
			return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("formation %d not found", formationID), nil)
		}
		j.Record(string(hierarchy.KindFormation), formationID, changelog.ActionLocationSet, changelog.Payload{Location: loc})
		return nil
	})
}

func namesOrEmpty(n catalog.Names) catalog.Names {
	if n == nil {
		return catalog.Names{}
	}
	return n
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
