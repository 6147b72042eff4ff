package repo

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// NotFoundError is returned when a lookup matches no row.
type NotFoundError struct {
	label string
}

func (e *NotFoundError) Error() string {
	return "repo: " + e.label + " not found"
}

// IsNotFound reports whether err is a *NotFoundError.
func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

func notFound(label string) error {
	return &NotFoundError{label: label}
}

// Postgres SQLSTATE codes surfaced as constraint errors.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

// ConstraintError wraps a violated integrity constraint.
type ConstraintError struct {
	Code       string
	Constraint string
	wrap       error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("repo: constraint %q violated (%s): %v", e.Constraint, e.Code, e.wrap)
}

func (e *ConstraintError) Unwrap() error { return e.wrap }

// Unique reports whether this is a unique violation.
func (e *ConstraintError) Unique() bool { return e.Code == codeUniqueViolation }

// IsConstraintError reports whether err is a *ConstraintError.
func IsConstraintError(err error) bool {
	var e *ConstraintError
	return errors.As(err, &e)
}

// IsUniqueViolation reports whether err violated the named unique constraint.
// An empty name matches any unique constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var e *ConstraintError
	if !errors.As(err, &e) || !e.Unique() {
		return false
	}
	return constraint == "" || e.Constraint == constraint
}

// mapError translates driver errors into repo errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case codeUniqueViolation, codeForeignKeyViolation, codeCheckViolation:
			return &ConstraintError{Code: string(pqErr.Code), Constraint: pqErr.Constraint, wrap: err}
		}
	}
	return err
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
