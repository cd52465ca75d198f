package ladder

import (
	"errors"
	"fmt"
)

// MultipleDriversError reports a bit driven by more than one coil.
//
// This is the only fatal condition in the model: two coils fighting
// over one bit makes the committed value depend on rung order, which
// breaks the determinism guarantee. Programs with this conflict are
// rejected at load time and the scheduler keeps its previous program.
type MultipleDriversError struct {
	// ID is the contested bit.
	ID string

	// Rungs are the zero-based indices of every rung driving the bit.
	Rungs []int
}

// Error implements the error interface.
func (e *MultipleDriversError) Error() string {
	return fmt.Sprintf("bit %q driven by coils on %d rungs %v: a bit may have at most one driver", e.ID, len(e.Rungs), e.Rungs)
}

// IsMultipleDrivers reports whether err is a single-driver violation.
// Uses errors.As to handle wrapped errors.
func IsMultipleDrivers(err error) bool {
	var me *MultipleDriversError
	return errors.As(err, &me)
}
