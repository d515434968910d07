package cme

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrMissingColumn  = errors.New("required column not found")
	ErrEmptyRanges    = errors.New("range set is empty")
	ErrInvalidRange   = errors.New("invalid range")
	ErrMalformedPivot = errors.New("malformed pivot table")
)

// NewMissingColumnError reports an absent input column
func NewMissingColumnError(column string) error {
	return fmt.Errorf("%w: %q", ErrMissingColumn, column)
}

// IsMissingColumnError checks for ErrMissingColumn anywhere in the chain
func IsMissingColumnError(err error) bool {
	return errors.Is(err, ErrMissingColumn)
}
