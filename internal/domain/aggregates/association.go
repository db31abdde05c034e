package aggregates

import (
	"context"

	"github.com/lgrosz/climb-catalog/internal/domain/links"
)

var AssociationAggregateContract = Contract{
	Name:             "Catalog.AssociationAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyTableRepoQueries,
	Notes:            "Owns many-to-many links and per-climb descriptions; link is insert-or-ignore, unlink is idempotent.",
}

// AssociationAggregate owns link tables and climb descriptions.
//
// Write method failures return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeSelfReference, CodeRetryable, CodeInternal.
type AssociationAggregate interface {
	Aggregate

	// Link reports whether a new row was written; an existing pair is not an error.
	Link(ctx context.Context, kind links.Kind, left, right int64) (bool, error)
	// Unlink reports whether a row was removed; an absent pair is not an error.
	Unlink(ctx context.Context, kind links.Kind, left, right int64) (bool, error)

	// LinkGrade upserts the (grade type name, value) grade and links it to
	// owner. kind must be a grade link kind.
	LinkGrade(ctx context.Context, kind links.Kind, owner int64, gradeType, value string) (bool, error)
	UnlinkGrade(ctx context.Context, kind links.Kind, owner int64, gradeType, value string) (bool, error)

	SetClimbDescription(ctx context.Context, climbID int64, descriptionType, text string) error
	ClearClimbDescription(ctx context.Context, climbID int64, descriptionType string) error
}
