package domtree

import (
	"fmt"

	apperrors "github.com/memsnap/heapdom/pkg/errors"
)

// Sentinel errors, one per kind named by the specification. Use errors.Is
// against these, or apperrors.GetErrorCode to recover the AppError code.

var (
	// ErrPreconditionViolation means a caller invoked the engine out of
	// phase order or with invalid input (e.g. calling BulkExtract before
	// Run, or a nil HeapWalker).
	ErrPreconditionViolation = apperrors.ErrPreconditionViolation

	// ErrCollaboratorFailure means the heap walker returned an error or
	// produced data violating its contract (e.g. a duplicate address).
	// References naming an address never enumerated are dropped, not
	// reported as this error.
	ErrCollaboratorFailure = apperrors.ErrCollaboratorFailure

	// ErrInvariantViolation means the engine itself detected a state it
	// should be impossible to reach (a defect in the engine, not the
	// caller or the collaborator).
	ErrInvariantViolation = apperrors.ErrInvariantViolation
)

// preconditionf wraps ErrPreconditionViolation with a formatted message.
func preconditionf(format string, args ...any) error {
	return apperrors.Wrap(apperrors.CodePreconditionViolation, fmt.Sprintf(format, args...), ErrPreconditionViolation)
}

// collaboratorf wraps ErrCollaboratorFailure with a formatted message.
func collaboratorf(format string, args ...any) error {
	return apperrors.Wrap(apperrors.CodeCollaboratorFailure, fmt.Sprintf(format, args...), ErrCollaboratorFailure)
}

// invariantf wraps ErrInvariantViolation with a formatted message.
func invariantf(format string, args ...any) error {
	return apperrors.Wrap(apperrors.CodeInvariantViolation, fmt.Sprintf(format, args...), ErrInvariantViolation)
}
