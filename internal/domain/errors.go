package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalid marks malformed input rejected at construction.
	ErrInvalid = errors.New("invalid input")

	// ErrInsufficientData marks a dataset that was non-empty on input but
	// holds no finite values once non-finite values are discarded.
	ErrInsufficientData = errors.New("insufficient data")
)

// Specific validation failures. Each wraps ErrInvalid.
var (
	ErrDuplicateOutcome = fmt.Errorf("%w: duplicate outcome", ErrInvalid)
	ErrMissingOutcome   = fmt.Errorf("%w: missing outcome", ErrInvalid)
	ErrCategoryMismatch = fmt.Errorf("%w: category count mismatch", ErrInvalid)
	ErrMissingLabel     = fmt.Errorf("%w: no such label", ErrInvalid)
)

// Invalidf returns a validation error with the given detail.
func Invalidf(format string, args ...any) error {
	return wrapf(ErrInvalid, format, args...)
}

// Insufficientf returns an insufficient-data error with the given detail.
func Insufficientf(format string, args ...any) error {
	return wrapf(ErrInsufficientData, format, args...)
}

func wrapf(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}
