// Package dice provides the d20 roll and its classification bands for the
// campaign engine. Randomness is injected through the Roller interface so
// every consumer can be driven deterministically in tests.
package dice

import (
	toolkit "github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/errors"
)

// Sides is the die used for every engine roll.
const Sides = 20

// Roller produces a single d20 roll in [1, 20].
type Roller interface {
	Roll() (int, error)
}

// ToolkitRoller rolls through rpg-toolkit's dice package.
type ToolkitRoller struct{}

// NewRoller returns the production d20 roller.
func NewRoller() *ToolkitRoller {
	return &ToolkitRoller{}
}

// Roll draws one d20.
func (r *ToolkitRoller) Roll() (int, error) {
	roll, err := toolkit.NewRoll(1, Sides)
	if err != nil {
		return 0, errors.Wrap(err, "failed to roll d20")
	}
	return roll.GetValue(), nil
}

// Scripted replays a fixed sequence of values; tests use it to make
// scenarios reproducible. It is not safe for concurrent use.
type Scripted struct {
	values []int
	next   int
}

// NewScripted returns a roller that yields the given values in order.
func NewScripted(values ...int) *Scripted {
	return &Scripted{values: values}
}

// Roll returns the next scripted value, erroring when exhausted.
func (s *Scripted) Roll() (int, error) {
	if s.next >= len(s.values) {
		return 0, errors.Internal("scripted roller exhausted")
	}
	v := s.values[s.next]
	s.next++
	return v, nil
}
