package aggregates

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	domainagg "github.com/lgrosz/climb-catalog/internal/domain/aggregates"
)

var (
	// ErrValidation indicates caller input validation failure.
	ErrValidation = errors.New("aggregate validation")
	// ErrRetryable indicates transient retryable failure.
	ErrRetryable = errors.New("aggregate retryable")
)

// ValidationError tags an error as validation failure.
func ValidationError(msg string) error {
	return errors.Join(ErrValidation, errors.New(strings.TrimSpace(msg)))
}

// RetryableError tags an error as retryable failure.
func RetryableError(msg string) error {
	return errors.Join(ErrRetryable, errors.New(strings.TrimSpace(msg)))
}

// Named check constraints and the codes they surface as.
var constraintCodes = []struct {
	suffix string
	code   domainagg.ErrorCode
}{
	{"_no_self", domainagg.CodeSelfReference},
	{"_no_cycle", domainagg.CodeCycleDetected},
	{"_one_parent", domainagg.CodeMutualExclusion},
}

func constraintCode(name string) domainagg.ErrorCode {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, c := range constraintCodes {
		if strings.Contains(name, c.suffix) {
			return c.code
		}
	}
	return domainagg.CodeValidation
}

// MapError maps infrastructure/domain failures into aggregate error codes.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var aggErr *domainagg.Error
	if errors.As(err, &aggErr) {
		return err
	}
	switch {
	case errors.Is(err, ErrValidation):
		return domainagg.Wrap(domainagg.CodeValidation, op, err)
	case errors.Is(err, ErrRetryable):
		return domainagg.Wrap(domainagg.CodeRetryable, op, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domainagg.Wrap(domainagg.CodeNotFound, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return domainagg.Wrap(domainagg.CodeRetryable, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505":
			return domainagg.Wrap(domainagg.CodeUniquenessViolated, op, err) // unique_violation
		case "23503":
			return domainagg.Wrap(foreignKeyCode(op, pgErr.Message, pgErr.TableName), op, err)
		case "23514":
			return domainagg.Wrap(constraintCode(pgErr.ConstraintName), op, err) // check_violation
		case "23502":
			return domainagg.Wrap(domainagg.CodeValidation, op, err) // not_null_violation
		case "40001", "40P01", "55P03":
			return domainagg.Wrap(domainagg.CodeRetryable, op, err) // serialization/deadlock/lock_not_available
		}
	}

	var sqErr sqlite3.Error
	if errors.As(err, &sqErr) {
		switch {
		case sqErr.ExtendedCode == sqlite3.ErrConstraintUnique, sqErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey:
			return domainagg.Wrap(domainagg.CodeUniquenessViolated, op, err)
		case sqErr.ExtendedCode == sqlite3.ErrConstraintForeignKey:
			return domainagg.Wrap(foreignKeyCode(op, "", ""), op, err)
		case sqErr.ExtendedCode == sqlite3.ErrConstraintCheck:
			return domainagg.Wrap(constraintCode(sqErr.Error()), op, err)
		case sqErr.ExtendedCode == sqlite3.ErrConstraintNotNull:
			return domainagg.Wrap(domainagg.CodeValidation, op, err)
		case sqErr.Code == sqlite3.ErrBusy, sqErr.Code == sqlite3.ErrLocked:
			return domainagg.Wrap(domainagg.CodeRetryable, op, err)
		}
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "duplicate key"), strings.Contains(msg, "unique constraint"):
		return domainagg.Wrap(domainagg.CodeUniquenessViolated, op, err)
	case strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "serialization"),
		strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "timeout"):
		return domainagg.Wrap(domainagg.CodeRetryable, op, err)
	default:
		return domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
}

// foreignKeyCode distinguishes a blocked parent delete from a dangling
// reference. postgres names the referencing table; sqlite only tells us the
// operation.
func foreignKeyCode(op, message, table string) domainagg.ErrorCode {
	message = strings.ToLower(message)
	switch {
	case strings.HasPrefix(message, "update or delete on table"):
		return domainagg.CodeRestrictedDelete
	case message == "" && strings.Contains(op, ".Delete"):
		return domainagg.CodeRestrictedDelete
	case strings.HasSuffix(table, "_belongs_to"), strings.Contains(op, "Parent"):
		return domainagg.CodeParentNotFound
	default:
		return domainagg.CodeNotFound
	}
}
