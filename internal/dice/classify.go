package dice

import "github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/errors"

// Outcome is the classification band of a d20 roll.
type Outcome string

// Classification bands. The three bands partition [1, 20] exactly.
const (
	CriticalFailure Outcome = "critical_failure"
	Regular         Outcome = "regular"
	CriticalSuccess Outcome = "critical_success"
)

// Band boundaries, inclusive.
const (
	criticalFailureMax = 4
	regularMax         = 15
)

// Classify maps an already-drawn roll to its band. It is a pure function so
// it can be tested without re-rolling. Values outside [1, 20] are a
// programming error and return an out-of-range error, never a silent clamp.
func Classify(value int) (Outcome, error) {
	if value < 1 || value > Sides {
		return "", errors.OutOfRangef("roll value %d is outside [1, %d]", value, Sides)
	}
	switch {
	case value <= criticalFailureMax:
		return CriticalFailure, nil
	case value <= regularMax:
		return Regular, nil
	default:
		return CriticalSuccess, nil
	}
}
