package stepwise

import (
	"errors"
	"fmt"
)

// ErrValidation matches every *ValidationError via errors.Is.
var ErrValidation = errors.New("invalid thought submission")

// ValidationError reports a submission that violates a type, presence or
// range constraint. The ledger is left untouched when one is returned.
type ValidationError struct {
	// Field is the boundary (JSON) name of the offending field.
	Field string
	// Reason describes the violated constraint.
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid thought submission: %s", e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
