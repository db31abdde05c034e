package aggregates

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	domainagg "github.com/lgrosz/climb-catalog/internal/domain/aggregates"
)

func TestMapError_Validation(t *testing.T) {
	err := MapError("op", ValidationError("bad input"))
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("expected validation code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_NotFound(t *testing.T) {
	err := MapError("op", gorm.ErrRecordNotFound)
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("expected not_found code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_ContextIsRetryable(t *testing.T) {
	err := MapError("op", fmt.Errorf("query: %w", context.DeadlineExceeded))
	if !domainagg.IsCode(err, domainagg.CodeRetryable) {
		t.Fatalf("expected retryable code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_PassthroughAggregateError(t *testing.T) {
	in := domainagg.NewError(domainagg.CodeRetryable, "op", "retry", errors.New("boom"))
	out := MapError("other", in)
	if out != in {
		t.Fatalf("expected passthrough aggregate error")
	}
}

func TestMapError_Postgres(t *testing.T) {
	cases := []struct {
		name string
		op   string
		err  *pgconn.PgError
		want domainagg.ErrorCode
	}{
		{"unique", "op", &pgconn.PgError{Code: "23505"}, domainagg.CodeUniquenessViolated},
		{"restrict", "Catalog.Entity.DeleteArea", &pgconn.PgError{
			Code:    "23503",
			Message: `update or delete on table "areas" violates foreign key constraint "area_belongs_to_super_area_id_fkey" on table "area_belongs_to"`,
		}, domainagg.CodeRestrictedDelete},
		{"missing parent", "op", &pgconn.PgError{
			Code:      "23503",
			Message:   `insert or update on table "climb_belongs_to" violates foreign key constraint`,
			TableName: "climb_belongs_to",
		}, domainagg.CodeParentNotFound},
		{"missing link endpoint", "op", &pgconn.PgError{
			Code:      "23503",
			Message:   `insert or update on table "climb_grades" violates foreign key constraint`,
			TableName: "climb_grades",
		}, domainagg.CodeNotFound},
		{"self", "op", &pgconn.PgError{Code: "23514", ConstraintName: "area_belongs_to_no_self"}, domainagg.CodeSelfReference},
		{"cycle", "op", &pgconn.PgError{Code: "23514", ConstraintName: "formation_belongs_to_no_cycle"}, domainagg.CodeCycleDetected},
		{"one parent", "op", &pgconn.PgError{Code: "23514", ConstraintName: "climb_belongs_to_one_parent"}, domainagg.CodeMutualExclusion},
		{"location", "op", &pgconn.PgError{Code: "23514", ConstraintName: "formations_location_complete"}, domainagg.CodeValidation},
		{"deadlock", "op", &pgconn.PgError{Code: "40P01"}, domainagg.CodeRetryable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MapError(tc.op, fmt.Errorf("wrapped: %w", tc.err))
			if !domainagg.IsCode(got, tc.want) {
				t.Fatalf("want %q got %q (%v)", tc.want, domainagg.CodeOf(got), got)
			}
		})
	}
}

func TestMapError_SQLite(t *testing.T) {
	cases := []struct {
		name string
		op   string
		err  sqlite3.Error
		want domainagg.ErrorCode
	}{
		{"unique", "op", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, domainagg.CodeUniquenessViolated},
		{"restrict", "Catalog.Entity.DeleteFormation", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}, domainagg.CodeRestrictedDelete},
		{"missing parent", "Catalog.Hierarchy.SetClimbParent", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}, domainagg.CodeParentNotFound},
		{"missing endpoint", "Catalog.Association.Link", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}, domainagg.CodeNotFound},
		{"busy", "op", sqlite3.Error{Code: sqlite3.ErrBusy}, domainagg.CodeRetryable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MapError(tc.op, tc.err)
			if !domainagg.IsCode(got, tc.want) {
				t.Fatalf("want %q got %q (%v)", tc.want, domainagg.CodeOf(got), got)
			}
		})
	}
}

func TestConstraintCode(t *testing.T) {
	if got := constraintCode("CHECK constraint failed: climb_variations_no_self"); got != domainagg.CodeSelfReference {
		t.Fatalf("sqlite message: got %q", got)
	}
	if got := constraintCode(""); got != domainagg.CodeValidation {
		t.Fatalf("empty: got %q", got)
	}
}
