// Package errors provides common domain error types for the venda application.
//
// This package defines sentinel errors for common domain conditions like "not found"
// or "forbidden" that can be used across all packages. Using typed errors enables
// consistent error handling patterns with errors.Is() checks.
//
// Usage:
//
//	import verrors "github.com/vendaflow/venda-cli/pkg/errors"
//
//	// Return a domain error
//	return nil, verrors.ErrNotFound
//
//	// Check for domain errors
//	if verrors.IsNotFound(err) {
//	    // handle not found case
//	}
package errors

import (
	"errors"
	"strings"
)

// Domain errors - common sentinel errors for domain conditions.
var (
	// ErrNotFound indicates the referenced card, funnel, or request does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates the actor does not own the record it tried to mutate.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation indicates invalid input or validation failure.
	ErrValidation = errors.New("validation error")

	// ErrAlreadyResolved indicates an approval request is no longer pending.
	ErrAlreadyResolved = errors.New("already resolved")

	// ErrInvalidState indicates the operation is not valid for the current state.
	ErrInvalidState = errors.New("invalid state")
)

// IsNotFound reports whether any error in err's chain is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsForbidden reports whether any error in err's chain is ErrForbidden.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsValidation reports whether any error in err's chain is ErrValidation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsAlreadyResolved reports whether any error in err's chain is ErrAlreadyResolved.
func IsAlreadyResolved(err error) bool {
	return errors.Is(err, ErrAlreadyResolved)
}

// IsInvalidState reports whether any error in err's chain is ErrInvalidState.
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState)
}

// IncompleteFieldsError reports a forward stage move blocked because required
// fields are missing. Missing holds the human-readable field labels in the
// order the stage's policy lists them, so the caller can surface every missing
// field in a single message.
type IncompleteFieldsError struct {
	TargetStage string
	Missing     []string
}

func (e *IncompleteFieldsError) Error() string {
	return "incomplete fields for stage " + e.TargetStage + ": " + strings.Join(e.Missing, ", ")
}

// Unwrap makes IncompleteFieldsError match ErrValidation in errors.Is chains.
func (e *IncompleteFieldsError) Unwrap() error {
	return ErrValidation
}

// IsIncompleteFields reports whether err is an IncompleteFieldsError and, if
// so, returns it.
func IsIncompleteFields(err error) (*IncompleteFieldsError, bool) {
	var ife *IncompleteFieldsError
	if errors.As(err, &ife) {
		return ife, true
	}
	return nil, false
}
