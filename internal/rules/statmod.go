// Package rules holds the pure stat-modification math layered on top of a
// dice roll. It has no state and no side effects.
package rules

import (
	"math"

	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/dice"
)

// ApplyRoll converts a narrator-proposed base delta and a d20 roll into the
// final integer stat change:
//
//	1–4   critical failure: 0, the boon or penalty is fully negated
//	5–15  regular:          base × (1 + (roll−10)/10), linear, identity at 10
//	16–20 critical success: base × 2
//
// Results round half away from zero. The sign of base is always preserved:
// a curse scaled by a low roll stays a curse and is not floored at zero, for
// health and non-health stats alike. Health clamping to [0, max] happens
// where the delta is applied to the character, never here.
//
// Rolls outside [1, 20] are a programming error and are rejected.
func ApplyRoll(rollValue int, base int) (int, error) {
	outcome, err := dice.Classify(rollValue)
	if err != nil {
		return 0, err
	}

	switch outcome {
	case dice.CriticalFailure:
		return 0, nil
	case dice.CriticalSuccess:
		return base * 2, nil
	default:
		multiplier := 1 + float64(rollValue-10)/10
		return int(math.Round(float64(base) * multiplier)), nil
	}
}
