package aggregates

import (
	"context"

	"github.com/lgrosz/climb-catalog/internal/domain/catalog"
	"github.com/lgrosz/climb-catalog/internal/domain/hierarchy"
)

var CatalogAggregateContract = Contract{
	Name:             "Catalog.EntityAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyTableRepoQueries,
	Notes:            "Owns entity lifecycle; create-with-relations and delete-with-restrict run in one transaction.",
}

// CatalogAggregate owns entity create/delete and name mutation.
//
// Write method failures return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeParentNotFound, CodeSelfReference,
// CodeCycleDetected, CodeMutualExclusion, CodeRestrictedDelete,
// CodeUniquenessViolated, CodeRetryable, CodeInternal.
type CatalogAggregate interface {
	Aggregate

	CreateArea(ctx context.Context, in CreateAreaInput) (int64, error)
	CreateFormation(ctx context.Context, in CreateFormationInput) (int64, error)
	CreateClimb(ctx context.Context, in CreateClimbInput) (int64, error)
	CreateClimber(ctx context.Context, in CreateClimberInput) (int64, error)
	CreateAscent(ctx context.Context, in CreateAscentInput) (int64, error)

	// DeleteArea and DeleteFormation fail with CodeRestrictedDelete while the
	// node is referenced as a parent.
	DeleteArea(ctx context.Context, id int64) (int64, error)
	DeleteFormation(ctx context.Context, id int64) (int64, error)
	DeleteClimb(ctx context.Context, id int64) (int64, error)
	DeleteClimber(ctx context.Context, id int64) (int64, error)
	DeleteAscent(ctx context.Context, id int64) (int64, error)

	// AppendName is a no-op when the name is already present.
	AppendName(ctx context.Context, node hierarchy.NodeRef, name string) (catalog.Names, error)
	// RemoveName drops every occurrence of the name.
	RemoveName(ctx context.Context, node hierarchy.NodeRef, name string) (catalog.Names, error)

	SetFormationLocation(ctx context.Context, formationID int64, loc catalog.Location) error
	ClearFormationLocation(ctx context.Context, formationID int64) error
}

type CreateAreaInput struct {
	Names       catalog.Names
	SuperAreaID *int64
}

type CreateFormationInput struct {
	Names    catalog.Names
	Location *catalog.Location
	Parent   *hierarchy.ParentRef
}

// CreateClimbInput keys Descriptions by description type name. Grade rows are
// upserted on (grade type, value) and linked in order.
type CreateClimbInput struct {
	Names        catalog.Names
	Parent       *hierarchy.ParentRef
	Descriptions map[string]string
	Grades       []catalog.GradeValue
}

type CreateClimberInput struct {
	FirstName string
	LastName  string
}

type CreateAscentInput struct {
	ClimbID    int64
	Date       *catalog.DateRange
	ClimberIDs []int64
	Grades     []catalog.GradeValue
}
