package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lgrosz/climb-catalog/internal/domain/hierarchy"
	"github.com/lgrosz/climb-catalog/internal/platform/logger"
)

// BelongsToRepo reads and writes the three containment relations. Callers own
// the invariant checks; this layer only maps rows.
type BelongsToRepo interface {
	GetAreaParent(ctx context.Context, tx *gorm.DB, areaID int64) (*hierarchy.AreaBelongsTo, error)
	GetFormationParent(ctx context.Context, tx *gorm.DB, formationID int64) (*hierarchy.FormationBelongsTo, error)
	GetClimbParent(ctx context.Context, tx *gorm.DB, climbID int64) (*hierarchy.ClimbBelongsTo, error)
	// ParentOf returns the node's parent, or nil for a root.
	ParentOf(ctx context.Context, tx *gorm.DB, node hierarchy.NodeRef) (*hierarchy.NodeRef, error)

	UpsertAreaParent(ctx context.Context, tx *gorm.DB, row *hierarchy.AreaBelongsTo) error
	UpsertFormationParent(ctx context.Context, tx *gorm.DB, row *hierarchy.FormationBelongsTo) error
	UpsertClimbParent(ctx context.Context, tx *gorm.DB, row *hierarchy.ClimbBelongsTo) error

	DeleteAreaParent(ctx context.Context, tx *gorm.DB, areaID int64) (int64, error)
	DeleteFormationParent(ctx context.Context, tx *gorm.DB, formationID int64) (int64, error)
	DeleteClimbParent(ctx context.Context, tx *gorm.DB, climbID int64) (int64, error)
	DeleteChildRow(ctx context.Context, tx *gorm.DB, node hierarchy.NodeRef) (int64, error)

	Children(ctx context.Context, tx *gorm.DB, node hierarchy.NodeRef) ([]hierarchy.NodeRef, error)
	CountChildren(ctx context.Context, tx *gorm.DB, node hierarchy.NodeRef) (int64, error)

	ListAreaParents(ctx context.Context, tx *gorm.DB) ([]*hierarchy.AreaBelongsTo, error)
	ListFormationParents(ctx context.Context, tx *gorm.DB) ([]*hierarchy.FormationBelongsTo, error)
	ListClimbParents(ctx context.Context, tx *gorm.DB) ([]*hierarchy.ClimbBelongsTo, error)
}

type belongsToRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBelongsToRepo(db *gorm.DB, baseLog *logger.Logger) BelongsToRepo {
	repoLog := baseLog.With("repo", "BelongsToRepo")
	return &belongsToRepo{db: db, log: repoLog}
}

func (r *belongsToRepo) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx)
}

func (r *belongsToRepo) GetAreaParent(ctx context.Context, tx *gorm.DB, areaID int64) (*hierarchy.AreaBelongsTo, error) {
	var row hierarchy.AreaBelongsTo
	err := r.conn(ctx, tx).Where("area_id = ?", areaID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *belongsToRepo) GetFormationParent(ctx context.Context, tx *gorm.DB, formationID int64) (*hierarchy.FormationBelongsTo, error) {
	var row hierarchy.FormationBelongsTo
	err := r.conn(ctx, tx).Where("formation_id = ?", formationID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *belongsToRepo) GetClimbParent(ctx context.Context, tx *gorm.DB, climbID int64) (*hierarchy.ClimbBelongsTo, error) {
	var row hierarchy.ClimbBelongsTo
	err := r.conn(ctx, tx).Where("climb_id = ?", climbID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *belongsToRepo) ParentOf(ctx context.Context, tx *gorm.DB, node hierarchy.NodeRef) (*hierarchy.NodeRef, error) {
	var (
		parent hierarchy.ParentRef
		err    error
	)
	switch node.Kind {
	case hierarchy.KindArea:
		row, gerr := r.GetAreaParent(ctx, tx, node.ID)
		if gerr != nil || row == nil {
			return nil, gerr
		}
		parent = row.Parent()
	case hierarchy.KindFormation:
		row, gerr := r.GetFormationParent(ctx, tx, node.ID)
		if gerr != nil || row == nil {
			return nil, gerr
		}
		parent, err = row.Parent()
	case hierarchy.KindClimb:
		row, gerr := r.GetClimbParent(ctx, tx, node.ID)
		if gerr != nil || row == nil {
			return nil, gerr
		}
		parent, err = row.Parent()
	default:
		return nil, fmt.Errorf("unknown node kind %q", node.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", node, err)
	}
	ref := parent.Node()
	return &ref, nil
}

func (r *belongsToRepo) UpsertAreaParent(ctx context.Context, tx *gorm.DB, row *hierarchy.AreaBelongsTo) error {
	return r.conn(ctx, tx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "area_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"super_area_id"}),
	}).Create(row).Error
}

// UpsertFormationParent writes both parent columns so the unused one is nulled
// by the same statement.
func (r *belongsToRepo) UpsertFormationParent(ctx context.Context, tx *gorm.DB, row *hierarchy.FormationBelongsTo) error {
	return r.conn(ctx, tx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "formation_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"area_id", "super_formation_id"}),
	}).Create(row).Error
}

func (r *belongsToRepo) UpsertClimbParent(ctx context.Context, tx *gorm.DB, row *hierarchy.ClimbBelongsTo) error {
	return r.conn(ctx, tx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "climb_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"area_id", "formation_id"}),
	}).Create(row).Error
}

func (r *belongsToRepo) DeleteAreaParent(ctx context.Context, tx *gorm.DB, areaID int64) (int64, error) {
	res := r.conn(ctx, tx).Where("area_id = ?", areaID).Delete(&hierarchy.AreaBelongsTo{})
	return res.RowsAffected, res.Error
}

func (r *belongsToRepo) DeleteFormationParent(ctx context.Context, tx *gorm.DB, formationID int64) (int64, error) {
	res := r.conn(ctx, tx).Where("formation_id = ?", formationID).Delete(&hierarchy.FormationBelongsTo{})
	return res.RowsAffected, res.Error
}

func (r *belongsToRepo) DeleteClimbParent(ctx context.Context, tx *gorm.DB, climbID int64) (int64, error) {
	res := r.conn(ctx, tx).Where("climb_id = ?", climbID).Delete(&hierarchy.ClimbBelongsTo{})
	return res.RowsAffected, res.Error
}

func (r *belongsToRepo) DeleteChildRow(ctx context.Context, tx *gorm.DB, node hierarchy.NodeRef) (int64, error) {
	switch node.Kind {
	case hierarchy.KindArea:
		return r.DeleteAreaParent(ctx, tx, node.ID)
	case hierarchy.KindFormation:
		return r.DeleteFormationParent(ctx, tx, node.ID)
	case hierarchy.KindClimb:
		return r.DeleteClimbParent(ctx, tx, node.ID)
	default:
		return 0, fmt.Errorf("unknown node kind %q", node.Kind)
	}
}

type childQuery struct {
	kind   hierarchy.NodeKind
	table  string
	idCol  string
	parent string
}

func childQueries(kind hierarchy.NodeKind) []childQuery {
	switch kind {
	case hierarchy.KindArea:
		return []childQuery{
			{hierarchy.KindArea, "area_belongs_to", "area_id", "super_area_id"},
			{hierarchy.KindFormation, "formation_belongs_to", "formation_id", "area_id"},
			{hierarchy.KindClimb, "climb_belongs_to", "climb_id", "area_id"},
		}
	case hierarchy.KindFormation:
		return []childQuery{
			{hierarchy.KindFormation, "formation_belongs_to", "formation_id", "super_formation_id"},
			{hierarchy.KindClimb, "climb_belongs_to", "climb_id", "formation_id"},
		}
	default:
		return nil
	}
}

func (r *belongsToRepo) Children(ctx context.Context, tx *gorm.DB, node hierarchy.NodeRef) ([]hierarchy.NodeRef, error) {
	out := []hierarchy.NodeRef{}
	for _, q := range childQueries(node.Kind) {
		var ids []int64
		if err := r.conn(ctx, tx).
			Table(q.table).
			Where(q.parent+" = ?", node.ID).
			Pluck(q.idCol, &ids).Error; err != nil {
			return nil, err
		}
		for _, id := range ids {
			out = append(out, hierarchy.NodeRef{Kind: q.kind, ID: id})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return kindOrder(out[i].Kind) < kindOrder(out[j].Kind)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func kindOrder(k hierarchy.NodeKind) int {
	switch k {
	case hierarchy.KindArea:
		return 0
	case hierarchy.KindFormation:
		return 1
	default:
		return 2
	}
}

func (r *belongsToRepo) CountChildren(ctx context.Context, tx *gorm.DB, node hierarchy.NodeRef) (int64, error) {
	var total int64
	for _, q := range childQueries(node.Kind) {
		var count int64
		if err := r.conn(ctx, tx).
			Table(q.table).
			Where(q.parent+" = ?", node.ID).
			Count(&count).Error; err != nil {
			return 0, err
		}
		total += count
	}
	return total, nil
}

func (r *belongsToRepo) ListAreaParents(ctx context.Context, tx *gorm.DB) ([]*hierarchy.AreaBelongsTo, error) {
	var rows []*hierarchy.AreaBelongsTo
	if err := r.conn(ctx, tx).Order("area_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *belongsToRepo) ListFormationParents(ctx context.Context, tx *gorm.DB) ([]*hierarchy.FormationBelongsTo, error) {
	var rows []*hierarchy.FormationBelongsTo
	if err := r.conn(ctx, tx).Order("formation_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *belongsToRepo) ListClimbParents(ctx context.Context, tx *gorm.DB) ([]*hierarchy.ClimbBelongsTo, error) {
	var rows []*hierarchy.ClimbBelongsTo
	if err := r.conn(ctx, tx).Order("climb_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
