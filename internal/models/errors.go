package models

import (
	"errors"
	"fmt"
	"strings"
)

// Validation-class errors. These are never retried automatically and are
// surfaced to the operator with the offending values.
var (
	// ErrOutOfRange indicates a numeric value outside the raffle's number space.
	ErrOutOfRange = errors.New("value out of range for digit width")

	// ErrSpaceExhausted indicates the raffle's number space cannot
	// accommodate the requested allocation.
	ErrSpaceExhausted = errors.New("ticket number space exhausted")

	// ErrDuplicateInBatch indicates a proposed ticket batch contains the
	// same number more than once.
	ErrDuplicateInBatch = errors.New("duplicate ticket number in batch")

	// ErrQuantityMismatch indicates a proposed ticket batch whose size
	// differs from the submission's requested quantity.
	ErrQuantityMismatch = errors.New("ticket numbers do not match requested quantity")

	// ErrConflictWithExisting is the errors.Is target for ConflictError.
	ErrConflictWithExisting = errors.New("ticket number already issued")

	// ErrInvalidTransition indicates an attempted transition out of a
	// terminal submission state.
	ErrInvalidTransition = errors.New("submission is not pending")

	// ErrMissingReason indicates a rejection without an admin note.
	ErrMissingReason = errors.New("rejection requires a non-empty note")

	// ErrImmutableDigitWidth indicates an attempt to change a raffle's
	// digit width after creation.
	ErrImmutableDigitWidth = errors.New("digit width cannot be changed after creation")

	// ErrInvalidCursor indicates an unparseable pagination cursor.
	ErrInvalidCursor = errors.New("invalid pagination cursor")

	// ErrNotFound indicates the referenced entity does not exist.
	ErrNotFound = errors.New("not found")
)

// ConflictError reports the exact ticket numbers that are already issued
// within the raffle, so the operator can resubmit a corrected batch.
type ConflictError struct {
	Numbers []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("ticket numbers already issued: %s", strings.Join(e.Numbers, ", "))
}

// Is makes errors.Is(err, ErrConflictWithExisting) match a ConflictError.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflictWithExisting
}

// TransportError wraps a transient transport-level failure. Callers may
// retry the operation once before surfacing it.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransient reports whether err is a transport-level failure eligible for
// a single retry. Validation-class errors are never transient.
func IsTransient(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
