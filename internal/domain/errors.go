package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals a duplicate resource.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidSchema signals an invalid item payload.
	ErrInvalidSchema = errors.New("invalid schema")
	// ErrInvalidTransition signals a lifecycle action not allowed in the current status.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrVersionConflict signals an optimistic locking conflict on an item version.
	ErrVersionConflict = errors.New("version conflict")
	// ErrNotImplemented signals an unimplemented feature.
	ErrNotImplemented = errors.New("not implemented")

	// ErrValidation is the parent of every malformed-query error below.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidSpecification signals a filter or sort specification that is not a mapping.
	ErrInvalidSpecification = newValidationKind("invalid specification")
	// ErrInvalidOperator signals an unknown combine or per-field operator.
	ErrInvalidOperator = newValidationKind("invalid operator")
	// ErrInvalidWildcardUsage signals a wildcard filter with an operator other than eq/co.
	ErrInvalidWildcardUsage = newValidationKind("invalid wildcard usage")
	// ErrInvalidNullComparison signals an empty value list with an operator other than eq.
	ErrInvalidNullComparison = newValidationKind("invalid null comparison")
	// ErrInvalidFieldsDirectiveState signals a child directive requested for an excluded field.
	ErrInvalidFieldsDirectiveState = newValidationKind("invalid fields directive state")
	// ErrInvalidPagination signals a page number below 1 or a negative page size.
	ErrInvalidPagination = newValidationKind("invalid pagination")
)

// validationKind is a sentinel that also matches ErrValidation.
type validationKind struct {
	msg string
}

func newValidationKind(msg string) error { return &validationKind{msg: msg} }

func (k *validationKind) Error() string { return k.msg }
func (k *validationKind) Unwrap() error { return ErrValidation }

// VersionConflictError wraps ErrVersionConflict with the current item version.
type VersionConflictError struct {
	CurrentVersion string
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("%s: current version is %s", ErrVersionConflict.Error(), e.CurrentVersion)
}

func (e *VersionConflictError) Unwrap() error { return ErrVersionConflict }

// NewVersionConflict creates a version conflict error.
func NewVersionConflict(currentVersion string) error {
	return &VersionConflictError{CurrentVersion: currentVersion}
}
