package services

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"gorm.io/gorm"

	"github.com/lgrosz/climb-catalog/internal/data/aggregates"
	"github.com/lgrosz/climb-catalog/internal/data/repos"
	domainagg "github.com/lgrosz/climb-catalog/internal/domain/aggregates"
	"github.com/lgrosz/climb-catalog/internal/domain/catalog"
	"github.com/lgrosz/climb-catalog/internal/domain/changelog"
	"github.com/lgrosz/climb-catalog/internal/domain/hierarchy"
	"github.com/lgrosz/climb-catalog/internal/domain/links"
	"github.com/lgrosz/climb-catalog/internal/platform/logger"
)

type AreaView struct {
	ID           int64         `json:"id"`
	Names        catalog.Names `json:"names"`
	SuperAreaID  *int64        `json:"super_area_id"`
	SubAreaIDs   []int64       `json:"sub_area_ids"`
	FormationIDs []int64       `json:"formation_ids"`
	ClimbIDs     []int64       `json:"climb_ids"`
}

type FormationView struct {
	ID               int64             `json:"id"`
	Names            catalog.Names     `json:"names"`
	Location         *catalog.Location `json:"location"`
	AreaID           *int64            `json:"area_id"`
	SuperFormationID *int64            `json:"super_formation_id"`
	SubFormationIDs  []int64           `json:"sub_formation_ids"`
	ClimbIDs         []int64           `json:"climb_ids"`
}

type ClimbView struct {
	ID           int64                `json:"id"`
	Names        catalog.Names        `json:"names"`
	Parent       *hierarchy.NodeRef   `json:"parent"`
	Descriptions map[string]string    `json:"descriptions"`
	Grades       []catalog.GradeValue `json:"grades"`
	VariationIDs []int64              `json:"variation_ids"`
}

type AscentView struct {
	ID         int64                `json:"id"`
	ClimbID    int64                `json:"climb_id"`
	Date       *catalog.DateRange   `json:"date"`
	ClimberIDs []int64              `json:"climber_ids"`
	Grades     []catalog.GradeValue `json:"grades"`
}

// Crumb is one step of a breadcrumb. Name is the node's first non-empty name.
type Crumb struct {
	hierarchy.NodeRef
	Name string `json:"name"`
}

// CatalogService is the read side of the catalog. Writes go through the
// aggregates.
type CatalogService interface {
	ListAreas(ctx context.Context, tx *gorm.DB, superAreaID *int64) ([]*catalog.Area, error)
	GetArea(ctx context.Context, tx *gorm.DB, id int64) (*AreaView, error)
	ListFormations(ctx context.Context, tx *gorm.DB, areaID, superFormationID *int64) ([]*catalog.Formation, error)
	GetFormation(ctx context.Context, tx *gorm.DB, id int64) (*FormationView, error)
	ListClimbs(ctx context.Context, tx *gorm.DB, areaID, formationID *int64) ([]*catalog.Climb, error)
	GetClimb(ctx context.Context, tx *gorm.DB, id int64) (*ClimbView, error)

	ListClimbers(ctx context.Context, tx *gorm.DB) ([]*catalog.Climber, error)
	GetClimber(ctx context.Context, tx *gorm.DB, id int64) (*catalog.Climber, error)
	ListAscents(ctx context.Context, tx *gorm.DB, climbID *int64) ([]*catalog.Ascent, error)
	GetAscent(ctx context.Context, tx *gorm.DB, id int64) (*AscentView, error)

	ListGradeTypes(ctx context.Context, tx *gorm.DB) ([]*catalog.GradeType, error)
	ListDescriptionTypes(ctx context.Context, tx *gorm.DB) ([]*catalog.ClimbDescriptionType, error)
	ListChanges(ctx context.Context, tx *gorm.DB, afterID int64, limit int) ([]*changelog.Change, error)

	// Breadcrumb lists the path from the node's root down to the node itself.
	Breadcrumb(ctx context.Context, node hierarchy.NodeRef) ([]Crumb, error)
	Children(ctx context.Context, node hierarchy.NodeRef) ([]hierarchy.NodeRef, error)
}

type catalogService struct {
	db        *gorm.DB
	log       *logger.Logger
	repos     repos.Set
	hierarchy domainagg.HierarchyAggregate
}

func NewCatalogService(db *gorm.DB, baseLog *logger.Logger, set repos.Set, hier domainagg.HierarchyAggregate) CatalogService {
	return &catalogService{
		db:        db,
		log:       baseLog.With("service", "CatalogService"),
		repos:     set,
		hierarchy: hier,
	}
}

func (s *catalogService) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}

func (s *catalogService) ListAreas(ctx context.Context, tx *gorm.DB, superAreaID *int64) ([]*catalog.Area, error) {
	const op = "Catalog.Read.ListAreas"
	transaction := s.conn(tx)
	if superAreaID == nil {
		out, err := s.repos.Areas.List(ctx, transaction)
		return out, aggregates.MapError(op, err)
	}
	kids, err := s.childIDs(ctx, transaction, op, hierarchy.NodeRef{Kind: hierarchy.KindArea, ID: *superAreaID})
	if err != nil {
		return nil, err
	}
	out, err := s.repos.Areas.GetByIDs(ctx, transaction, kids[hierarchy.KindArea])
	return out, aggregates.MapError(op, err)
}

func (s *catalogService) GetArea(ctx context.Context, tx *gorm.DB, id int64) (*AreaView, error) {
	const op = "Catalog.Read.GetArea"
	transaction := s.conn(tx)
	row, err := s.repos.Areas.GetByID(ctx, transaction, id)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	parent, err := s.repos.BelongsTo.GetAreaParent(ctx, transaction, id)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	kids, err := s.childIDs(ctx, transaction, op, hierarchy.NodeRef{Kind: hierarchy.KindArea, ID: id})
	if err != nil {
		return nil, err
	}
	view := &AreaView{
		ID:           row.ID,
		Names:        row.Names,
		SubAreaIDs:   kids[hierarchy.KindArea],
		FormationIDs: kids[hierarchy.KindFormation],
		ClimbIDs:     kids[hierarchy.KindClimb],
	}
	if parent != nil {
		view.SuperAreaID = &parent.SuperAreaID
	}
	return view, nil
}

func (s *catalogService) ListFormations(ctx context.Context, tx *gorm.DB, areaID, superFormationID *int64) ([]*catalog.Formation, error) {
	const op = "Catalog.Read.ListFormations"
	transaction := s.conn(tx)
	parent, err := optionalParent(op, areaID, superFormationID)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		out, err := s.repos.Formations.List(ctx, transaction)
		return out, aggregates.MapError(op, err)
	}
	kids, err := s.childIDs(ctx, transaction, op, *parent)
	if err != nil {
		return nil, err
	}
	out, err := s.repos.Formations.GetByIDs(ctx, transaction, kids[hierarchy.KindFormation])
	return out, aggregates.MapError(op, err)
}

func (s *catalogService) GetFormation(ctx context.Context, tx *gorm.DB, id int64) (*FormationView, error) {
	const op = "Catalog.Read.GetFormation"
	transaction := s.conn(tx)
	row, err := s.repos.Formations.GetByID(ctx, transaction, id)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	parent, err := s.repos.BelongsTo.GetFormationParent(ctx, transaction, id)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	kids, err := s.childIDs(ctx, transaction, op, hierarchy.NodeRef{Kind: hierarchy.KindFormation, ID: id})
	if err != nil {
		return nil, err
	}
	view := &FormationView{
		ID:              row.ID,
		Names:           row.Names,
		Location:        row.Location(),
		SubFormationIDs: kids[hierarchy.KindFormation],
		ClimbIDs:        kids[hierarchy.KindClimb],
	}
	if parent != nil {
		view.AreaID, view.SuperFormationID = parent.AreaID, parent.SuperFormationID
	}
	return view, nil
}

func (s *catalogService) ListClimbs(ctx context.Context, tx *gorm.DB, areaID, formationID *int64) ([]*catalog.Climb, error) {
	const op = "Catalog.Read.ListClimbs"
	transaction := s.conn(tx)
	parent, err := optionalParent(op, areaID, formationID)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		out, err := s.repos.Climbs.List(ctx, transaction)
		return out, aggregates.MapError(op, err)
	}
	kids, err := s.childIDs(ctx, transaction, op, *parent)
	if err != nil {
		return nil, err
	}
	out, err := s.repos.Climbs.GetByIDs(ctx, transaction, kids[hierarchy.KindClimb])
	return out, aggregates.MapError(op, err)
}

func (s *catalogService) GetClimb(ctx context.Context, tx *gorm.DB, id int64) (*ClimbView, error) {
	const op = "Catalog.Read.GetClimb"
	transaction := s.conn(tx)
	row, err := s.repos.Climbs.GetByID(ctx, transaction, id)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	view := &ClimbView{ID: row.ID, Names: row.Names, Descriptions: map[string]string{}}

	parent, err := s.repos.BelongsTo.ParentOf(ctx, transaction, hierarchy.NodeRef{Kind: hierarchy.KindClimb, ID: id})
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	view.Parent = parent

	descs, err := s.repos.ClimbDescriptions.ListByClimb(ctx, transaction, id)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if len(descs) > 0 {
		types, err := s.repos.DescriptionTypes.List(ctx, transaction)
		if err != nil {
			return nil, aggregates.MapError(op, err)
		}
		names := make(map[int64]string, len(types))
		for _, t := range types {
			names[t.ID] = t.Name
		}
		for _, d := range descs {
			view.Descriptions[names[d.DescriptionTypeID]] = d.Value
		}
	}

	if view.Grades, err = s.gradesOf(ctx, transaction, links.KindClimbGrade, id); err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if view.VariationIDs, err = s.repos.Links.RightOf(ctx, transaction, links.KindClimbVariation, id); err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return view, nil
}

func (s *catalogService) ListClimbers(ctx context.Context, tx *gorm.DB) ([]*catalog.Climber, error) {
	out, err := s.repos.Climbers.List(ctx, s.conn(tx))
	return out, aggregates.MapError("Catalog.Read.ListClimbers", err)
}

func (s *catalogService) GetClimber(ctx context.Context, tx *gorm.DB, id int64) (*catalog.Climber, error) {
	out, err := s.repos.Climbers.GetByID(ctx, s.conn(tx), id)
	if err != nil {
		return nil, aggregates.MapError("Catalog.Read.GetClimber", err)
	}
	return out, nil
}

func (s *catalogService) ListAscents(ctx context.Context, tx *gorm.DB, climbID *int64) ([]*catalog.Ascent, error) {
	const op = "Catalog.Read.ListAscents"
	if climbID == nil {
		out, err := s.repos.Ascents.List(ctx, s.conn(tx))
		return out, aggregates.MapError(op, err)
	}
	out, err := s.repos.Ascents.ListByClimb(ctx, s.conn(tx), *climbID)
	return out, aggregates.MapError(op, err)
}

func (s *catalogService) GetAscent(ctx context.Context, tx *gorm.DB, id int64) (*AscentView, error) {
	const op = "Catalog.Read.GetAscent"
	transaction := s.conn(tx)
	row, err := s.repos.Ascents.GetByID(ctx, transaction, id)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	view := &AscentView{ID: row.ID, ClimbID: row.ClimbID, Date: row.AscentDate}
	if view.ClimberIDs, err = s.repos.Links.RightOf(ctx, transaction, links.KindAscentParty, id); err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if view.Grades, err = s.gradesOf(ctx, transaction, links.KindAscentGrade, id); err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return view, nil
}

func (s *catalogService) ListGradeTypes(ctx context.Context, tx *gorm.DB) ([]*catalog.GradeType, error) {
	out, err := s.repos.GradeTypes.List(ctx, s.conn(tx))
	return out, aggregates.MapError("Catalog.Read.ListGradeTypes", err)
}

func (s *catalogService) ListDescriptionTypes(ctx context.Context, tx *gorm.DB) ([]*catalog.ClimbDescriptionType, error) {
	out, err := s.repos.DescriptionTypes.List(ctx, s.conn(tx))
	return out, aggregates.MapError("Catalog.Read.ListDescriptionTypes", err)
}

func (s *catalogService) ListChanges(ctx context.Context, tx *gorm.DB, afterID int64, limit int) ([]*changelog.Change, error) {
	const op = "Catalog.Read.ListChanges"
	if afterID < 0 {
		return nil, aggregates.MapError(op, aggregates.ValidationError("after must not be negative"))
	}
	out, err := s.repos.Changes.ListAfter(ctx, s.conn(tx), afterID, limit)
	return out, aggregates.MapError(op, err)
}

func (s *catalogService) Breadcrumb(ctx context.Context, node hierarchy.NodeRef) ([]Crumb, error) {
	const op = "Catalog.Read.Breadcrumb"
	path := []hierarchy.NodeRef{node}
	for anc, err := range s.hierarchy.Ancestors(ctx, node) {
		if err != nil {
			return nil, aggregates.MapError(op, err)
		}
		path = append(path, anc)
	}
	out := make([]Crumb, 0, len(path))
	for i := len(path) - 1; i >= 0; i-- {
		names, err := s.namesOf(ctx, path[i])
		if err != nil {
			return nil, aggregates.MapError(op, err)
		}
		out = append(out, Crumb{NodeRef: path[i], Name: firstName(names)})
	}
	return out, nil
}

func (s *catalogService) Children(ctx context.Context, node hierarchy.NodeRef) ([]hierarchy.NodeRef, error) {
	if _, err := s.namesOf(ctx, node); err != nil {
		return nil, aggregates.MapError("Catalog.Read.Children", err)
	}
	return s.hierarchy.Children(ctx, node)
}

func (s *catalogService) namesOf(ctx context.Context, node hierarchy.NodeRef) (catalog.Names, error) {
	switch node.Kind {
	case hierarchy.KindArea:
		row, err := s.repos.Areas.GetByID(ctx, s.db, node.ID)
		if err != nil {
			return nil, err
		}
		return row.Names, nil
	case hierarchy.KindFormation:
		row, err := s.repos.Formations.GetByID(ctx, s.db, node.ID)
		if err != nil {
			return nil, err
		}
		return row.Names, nil
	case hierarchy.KindClimb:
		row, err := s.repos.Climbs.GetByID(ctx, s.db, node.ID)
		if err != nil {
			return nil, err
		}
		return row.Names, nil
	default:
		return nil, aggregates.ValidationError(fmt.Sprintf("unknown node kind %q", node.Kind))
	}
}

// childIDs groups the direct children of parent by kind. A missing parent is
// not_found rather than an empty list.
func (s *catalogService) childIDs(ctx context.Context, tx *gorm.DB, op string, parent hierarchy.NodeRef) (map[hierarchy.NodeKind][]int64, error) {
	var ok bool
	var err error
	switch parent.Kind {
	case hierarchy.KindArea:
		ok, err = s.repos.Areas.Exists(ctx, tx, parent.ID)
	case hierarchy.KindFormation:
		ok, err = s.repos.Formations.Exists(ctx, tx, parent.ID)
	}
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if !ok {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("%s not found", parent), nil)
	}
	kids, err := s.repos.BelongsTo.Children(ctx, tx, parent)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	out := map[hierarchy.NodeKind][]int64{
		hierarchy.KindArea:      {},
		hierarchy.KindFormation: {},
		hierarchy.KindClimb:     {},
	}
	for _, k := range kids {
		out[k.Kind] = append(out[k.Kind], k.ID)
	}
	return out, nil
}

// gradesOf lists owner's grades ordered by grade type name, then value.
func (s *catalogService) gradesOf(ctx context.Context, tx *gorm.DB, kind links.Kind, owner int64) ([]catalog.GradeValue, error) {
	out := []catalog.GradeValue{}
	ids, err := s.repos.Links.RightOf(ctx, tx, kind, owner)
	if err != nil || len(ids) == 0 {
		return out, err
	}
	grades, err := s.repos.Grades.GetByIDs(ctx, tx, ids)
	if err != nil {
		return nil, err
	}
	typeIDs := make([]int64, 0, len(grades))
	for _, g := range grades {
		typeIDs = append(typeIDs, g.GradeTypeID)
	}
	types, err := s.repos.GradeTypes.GetByIDs(ctx, tx, typeIDs)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(types))
	for _, t := range types {
		names[t.ID] = t.Name
	}
	for _, g := range grades {
		out = append(out, catalog.GradeValue{GradeType: names[g.GradeTypeID], Value: g.Value})
	}
	slices.SortFunc(out, func(a, b catalog.GradeValue) int {
		return cmp.Or(cmp.Compare(a.GradeType, b.GradeType), cmp.Compare(a.Value, b.Value))
	})
	return out, nil
}

func optionalParent(op string, areaID, formationID *int64) (*hierarchy.NodeRef, error) {
	if areaID == nil && formationID == nil {
		return nil, nil
	}
	p, err := hierarchy.ParentRefFromColumns(areaID, formationID)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeValidation, op, err)
	}
	n := p.Node()
	return &n, nil
}

func firstName(names catalog.Names) string {
	for _, n := range names {
		if n != nil && *n != "" {
			return *n
		}
	}
	return ""
}
