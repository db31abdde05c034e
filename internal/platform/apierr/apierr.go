package apierr

import (
	"errors"
	"fmt"
	"net/http"

	domainagg "github.com/lgrosz/climb-catalog/internal/domain/aggregates"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

var statusByCode = map[domainagg.ErrorCode]int{
	domainagg.CodeValidation:         http.StatusBadRequest,
	domainagg.CodeMutualExclusion:    http.StatusUnprocessableEntity,
	domainagg.CodeSelfReference:      http.StatusUnprocessableEntity,
	domainagg.CodeCycleDetected:      http.StatusUnprocessableEntity,
	domainagg.CodeNotFound:           http.StatusNotFound,
	domainagg.CodeParentNotFound:     http.StatusUnprocessableEntity,
	domainagg.CodeRestrictedDelete:   http.StatusConflict,
	domainagg.CodeUniquenessViolated: http.StatusConflict,
	domainagg.CodeRetryable:          http.StatusServiceUnavailable,
	domainagg.CodeInternal:           http.StatusInternalServerError,
}

// FromAggregate maps an aggregate error onto an HTTP status and stable code.
// Errors without an aggregate code are internal.
func FromAggregate(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	code := domainagg.CodeOf(err)
	status, ok := statusByCode[code]
	if !ok {
		return New(http.StatusInternalServerError, string(domainagg.CodeInternal), err)
	}
	return New(status, string(code), err)
}
