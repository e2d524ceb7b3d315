package narrator

import (
	"context"
	"log/slog"
	"time"

	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/entities"
)

const defaultTimeout = 8 * time.Second

// FallbackConfig holds the configuration for the fallback narrator
type FallbackConfig struct {
	// Inner is the real generator. Nil means fully static mode: the game
	// runs on fallback content alone.
	Inner Service
	// Timeout bounds every inner call. Zero means the default.
	Timeout time.Duration
	Logger  *slog.Logger
}

type fallback struct {
	inner   Service
	timeout time.Duration
	logger  *slog.Logger
}

// NewFallback wraps a narrator so it never fails: every inner call runs
// under a short timeout and any error or invalid answer is replaced with
// deterministic content keyed off the event number. The returned Service
// always returns nil errors.
func NewFallback(cfg *FallbackConfig) Service {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &fallback{inner: cfg.Inner, timeout: timeout, logger: logger}
}

var _ Service = (*fallback)(nil)

func (f *fallback) GenerateEventType(ctx context.Context, ec EventContext) (entities.EventType, error) {
	if f.inner != nil {
		cctx, cancel := context.WithTimeout(ctx, f.timeout)
		defer cancel()
		t, err := f.inner.GenerateEventType(cctx, ec)
		if err == nil {
			return t, nil
		}
		f.warn("event type", err)
	}
	return staticEventType(ec.EventNumber), nil
}

func (f *fallback) GenerateDescription(ctx context.Context, ec EventContext) (string, error) {
	if f.inner != nil {
		cctx, cancel := context.WithTimeout(ctx, f.timeout)
		defer cancel()
		text, err := f.inner.GenerateDescription(cctx, ec)
		if err == nil {
			return text, nil
		}
		f.warn("description", err)
	}
	return staticDescription(ec), nil
}

func (f *fallback) GenerateStatBoost(ctx context.Context, ec EventContext) (*StatBoost, error) {
	if f.inner != nil {
		cctx, cancel := context.WithTimeout(ctx, f.timeout)
		defer cancel()
		boost, err := f.inner.GenerateStatBoost(cctx, ec)
		if err == nil {
			return boost, nil
		}
		f.warn("stat boost", err)
	}
	return &StatBoost{Stat: entities.StatHealth, Value: 5}, nil
}

func (f *fallback) GenerateItemDrop(ctx context.Context, ec EventContext) (*entities.Item, error) {
	if f.inner != nil {
		cctx, cancel := context.WithTimeout(ctx, f.timeout)
		defer cancel()
		item, err := f.inner.GenerateItemDrop(cctx, ec)
		if err == nil {
			return item, nil
		}
		f.warn("item drop", err)
	}
	item := minorHealthPotion
	return &item, nil
}

func (f *fallback) GenerateBonusStat(ctx context.Context, ec EventContext) (*StatBoost, error) {
	if f.inner != nil {
		cctx, cancel := context.WithTimeout(ctx, f.timeout)
		defer cancel()
		boost, err := f.inner.GenerateBonusStat(cctx, ec)
		if err == nil {
			return boost, nil
		}
		f.warn("bonus stat", err)
	}
	return &StatBoost{Stat: entities.StatAttack, Value: 1}, nil
}

func (f *fallback) warn(what string, err error) {
	f.logger.Warn("narrator unavailable, using fallback content",
		"content", what,
		"error", err)
}

// minorHealthPotion is the hardcoded loot reward when the generator cannot
// produce one. Its fixed id lets repeated fallbacks stack.
var minorHealthPotion = entities.Item{
	ID:           "itm_minor_health_potion",
	Name:         "Minor Health Potion",
	Description:  "A vial of red liquid. It tastes like copper and hope.",
	StatModified: entities.StatHealth,
	StatValue:    5,
	Rarity:       "common",
}

// staticEventType deals out a fixed rotation so offline play still has
// combat and loot in it.
func staticEventType(eventNumber int) entities.EventType {
	switch {
	case eventNumber%5 == 0:
		return entities.EventItemDrop
	case eventNumber%3 == 0:
		return entities.EventCombat
	case eventNumber%4 == 0:
		return entities.EventEnvironmental
	default:
		return entities.EventDescriptive
	}
}

var staticDescriptions = map[entities.EventType][]string{
	entities.EventDescriptive: {
		"The corridor ahead is silent except for the drip of unseen water.",
		"Your torch gutters. Shadows pool in the cracks of the old stonework.",
		"Bones of something small crunch underfoot. Nothing stirs.",
	},
	entities.EventEnvironmental: {
		"A strange altar hums in the dark. Something about it invites a closer look.",
		"A narrow fissure exhales warm air. There may be something inside.",
	},
	entities.EventCombat: {
		"Something moves at the edge of the torchlight, and it is not friendly.",
		"A snarl echoes off the walls. Steel clears its sheath.",
	},
	entities.EventItemDrop: {
		"Half-buried in rubble, something glints.",
		"A rotted pack lies against the wall, its owner long gone.",
	},
}

func staticDescription(ec EventContext) string {
	switch {
	case ec.Outcome == entities.CombatOutcomeVictory:
		return "The enemy falls. The dungeon is quiet again, for now."
	case ec.Outcome == entities.CombatOutcomeDefeat:
		return "Darkness takes you. The dungeon keeps its secrets."
	case ec.Outcome == entities.CombatOutcomeFled:
		return "You slip away into the dark, heart hammering."
	}

	lines, ok := staticDescriptions[ec.EventType]
	if !ok || len(lines) == 0 {
		lines = staticDescriptions[entities.EventDescriptive]
	}
	line := lines[ec.EventNumber%len(lines)]
	if ec.Enemy != nil {
		return line + " A " + ec.Enemy.Name + " blocks the way."
	}
	return line
}
