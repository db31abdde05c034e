package aggregates

import (
	"context"
	"fmt"
	"strings"

	domainagg "github.com/lgrosz/climb-catalog/internal/domain/aggregates"
	"github.com/lgrosz/climb-catalog/internal/domain/catalog"
	"github.com/lgrosz/climb-catalog/internal/domain/changelog"
	"github.com/lgrosz/climb-catalog/internal/domain/hierarchy"
	"github.com/lgrosz/climb-catalog/internal/domain/links"
	"github.com/lgrosz/climb-catalog/internal/platform/dbctx"
)

type AssociationAggregateDeps struct {
	Base BaseDeps
}

type associationAggregate struct {
	deps AssociationAggregateDeps
}

func NewAssociationAggregate(deps AssociationAggregateDeps) domainagg.AssociationAggregate {
	deps.Base = deps.Base.withDefaults()
	return &associationAggregate{deps: deps}
}

func (a *associationAggregate) Contract() domainagg.Contract {
	return domainagg.AssociationAggregateContract
}

func (a *associationAggregate) Link(ctx context.Context, kind links.Kind, left, right int64) (bool, error) {
	const op = "Catalog.Association.Link"
	spec, err := kind.Spec()
	if err != nil {
		return false, domainagg.Wrap(domainagg.CodeValidation, op, err)
	}
	if spec.NoSelfLink && left == right {
		return false, domainagg.NewError(domainagg.CodeSelfReference, op, fmt.Sprintf("%s %d cannot link to itself", kind, left), nil)
	}
	var added bool
	err = executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context, j *Journal) error {
		var err error
		added, err = linkRecorded(dbc, a.deps.Base, j, op, kind, links.Pair{Left: left, Right: right})
		return err
	})
	return added, err
}

// link checks both endpoints before the insert so a missing row is reported
// as not_found regardless of the store's foreign key error shape.
func link(dbc dbctx.Context, base BaseDeps, op string, kind links.Kind, pair links.Pair) (bool, error) {
	spec, err := kind.Spec()
	if err != nil {
		return false, ValidationError(err.Error())
	}
	for _, end := range []struct {
		table string
		id    int64
	}{{spec.LeftTable, pair.Left}, {spec.RightTable, pair.Right}} {
		ok, err := base.Repos.Links.EndpointExists(dbc.Ctx, dbc.Tx, end.table, end.id)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("%s %d not found", end.table, end.id), nil)
		}
	}
	return base.Repos.Links.Insert(dbc.Ctx, dbc.Tx, kind, pair)
}

func (a *associationAggregate) Unlink(ctx context.Context, kind links.Kind, left, right int64) (bool, error) {
	const op = "Catalog.Association.Unlink"
	if _, err := kind.Spec(); err != nil {
		return false, domainagg.Wrap(domainagg.CodeValidation, op, err)
	}
	var removed bool
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context, j *Journal) error {
		var err error
		removed, err = unlinkRecorded(dbc, a.deps.Base, j, kind, links.Pair{Left: left, Right: right})
		return err
	})
	return removed, err
}

// linkRecorded journals the link only when a row was added.
func linkRecorded(dbc dbctx.Context, base BaseDeps, j *Journal, op string, kind links.Kind, pair links.Pair) (bool, error) {
	added, err := link(dbc, base, op, kind, pair)
	if err != nil || !added {
		return added, err
	}
	spec, _ := kind.Spec()
	j.Record(linkEntityKind(spec), pair.Left, changelog.ActionLinked, changelog.Payload{
		Link: &changelog.LinkPayload{Kind: string(kind), Left: pair.Left, Right: pair.Right},
	})
	return true, nil
}

func unlinkRecorded(dbc dbctx.Context, base BaseDeps, j *Journal, kind links.Kind, pair links.Pair) (bool, error) {
	removed, err := base.Repos.Links.Delete(dbc.Ctx, dbc.Tx, kind, pair)
	if err != nil || !removed {
		return removed, err
	}
	spec, _ := kind.Spec()
	j.Record(linkEntityKind(spec), pair.Left, changelog.ActionUnlinked, changelog.Payload{
		Link: &changelog.LinkPayload{Kind: string(kind), Left: pair.Left, Right: pair.Right},
	})
	return true, nil
}

func (a *associationAggregate) LinkGrade(ctx context.Context, kind links.Kind, owner int64, gradeType, value string) (bool, error) {
	const op = "Catalog.Association.LinkGrade"
	if err := gradeLinkKind(op, kind); err != nil {
		return false, err
	}
	var added bool
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context, j *Journal) error {
		g, err := resolveGrade(dbc, a.deps.Base, op, gradeType, value, true)
		if err != nil {
			return err
		}
		added, err = linkRecorded(dbc, a.deps.Base, j, op, kind, links.Pair{Left: owner, Right: g.ID})
		return err
	})
	return added, err
}

func (a *associationAggregate) UnlinkGrade(ctx context.Context, kind links.Kind, owner int64, gradeType, value string) (bool, error) {
	const op = "Catalog.Association.UnlinkGrade"
	if err := gradeLinkKind(op, kind); err != nil {
		return false, err
	}
	var removed bool
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context, j *Journal) error {
		g, err := resolveGrade(dbc, a.deps.Base, op, gradeType, value, false)
		if err != nil || g == nil {
			return err
		}
		removed, err = unlinkRecorded(dbc, a.deps.Base, j, kind, links.Pair{Left: owner, Right: g.ID})
		return err
	})
	return removed, err
}

func gradeLinkKind(op string, kind links.Kind) error {
	if kind != links.KindClimbGrade && kind != links.KindAscentGrade {
		return domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("%q does not link grades", kind), nil)
	}
	return nil
}

// resolveGrade looks the grade type up by name. With create set the
// (type, value) grade is upserted; otherwise a grade never recorded is nil.
func resolveGrade(dbc dbctx.Context, base BaseDeps, op, gradeType, value string, create bool) (*catalog.Grade, error) {
	gradeType, value = strings.TrimSpace(gradeType), strings.TrimSpace(value)
	if gradeType == "" || value == "" {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "grade type and value are required", nil)
	}
	gt, err := base.Repos.GradeTypes.GetByName(dbc.Ctx, dbc.Tx, gradeType)
	if err != nil {
		return nil, err
	}
	if gt == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("unknown grade type %q", gradeType), nil)
	}
	if create {
		return base.Repos.Grades.Ensure(dbc.Ctx, dbc.Tx, gt.ID, value)
	}
	return base.Repos.Grades.Find(dbc.Ctx, dbc.Tx, gt.ID, value)
}

// linkEntityKind files link changes under the left endpoint.
func linkEntityKind(spec links.Spec) string {
	switch spec.LeftTable {
	case "climbs":
		return string(hierarchy.KindClimb)
	case "ascents":
		return changelog.EntityAscent
	default:
		return strings.TrimSuffix(spec.LeftTable, "s")
	}
}

func (a *associationAggregate) SetClimbDescription(ctx context.Context, climbID int64, descriptionType, text string) error {
	const op = "Catalog.Association.SetClimbDescription"
	descriptionType = strings.TrimSpace(descriptionType)
	if descriptionType == "" {
		return domainagg.NewError(domainagg.CodeValidation, op, "missing description type", nil)
	}
	return executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context, j *Journal) error {
		ok, err := a.deps.Base.Repos.Climbs.Exists(dbc.Ctx, dbc.Tx, climbID)
		if err != nil {
			return err
		}
		if !ok {
			return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("climb %d not found", climbID), nil)
		}
		return describe(dbc, a.deps.Base, j, op, climbID, descriptionType, text)
	})
}

func describe(dbc dbctx.Context, base BaseDeps, j *Journal, op string, climbID int64, descriptionType, text string) error {
	dt, err := base.Repos.DescriptionTypes.GetByName(dbc.Ctx, dbc.Tx, descriptionType)
	if err != nil {
		return err
	}
	if dt == nil {
		return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("unknown description type %q", descriptionType), nil)
	}
	if err := base.Repos.ClimbDescriptions.Upsert(dbc.Ctx, dbc.Tx, &catalog.ClimbDescription{
		ClimbID:           climbID,
		DescriptionTypeID: dt.ID,
		Value:             text,
	}); err != nil {
		return err
	}
	j.Record(string(hierarchy.KindClimb), climbID, changelog.ActionDescribed, changelog.Payload{
		Description: &changelog.DescriptionPayload{Type: descriptionType, Value: &text},
	})
	return nil
}

func (a *associationAggregate) ClearClimbDescription(ctx context.Context, climbID int64, descriptionType string) error {
	const op = "Catalog.Association.ClearClimbDescription"
	descriptionType = strings.TrimSpace(descriptionType)
	return executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context, j *Journal) error {
		dt, err := a.deps.Base.Repos.DescriptionTypes.GetByName(dbc.Ctx, dbc.Tx, descriptionType)
		if err != nil {
			return err
		}
		if dt == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("unknown description type %q", descriptionType), nil)
		}
		n, err := a.deps.Base.Repos.ClimbDescriptions.Delete(dbc.Ctx, dbc.Tx, climbID, dt.ID)
		if err != nil || n == 0 {
			return err
		}
		j.Record(string(hierarchy.KindClimb), climbID, changelog.ActionDescribed, changelog.Payload{
			Description: &changelog.DescriptionPayload{Type: descriptionType},
		})
		return nil
	})
}
