// Package narrator defines the contract for the external text-generation
// collaborator that supplies event types, descriptions, and loot or stat
// suggestions. The engine only ever talks to a Fallback-wrapped Service, so
// generator outages turn into deterministic content instead of errors.
package narrator

import (
	"context"

	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/entities"
)

// EventContext is the structured context handed to the narrator. Only the
// fields relevant to the requested content need to be set.
type EventContext struct {
	CampaignID    string
	CharacterName string
	// EventNumber is the next durable event number; fallback content keys
	// off it so repeated failures still vary.
	EventNumber  int
	EventType    entities.EventType
	RecentEvents []string
	Enemy        *entities.Enemy
	Item         *entities.Item
	Outcome      entities.CombatOutcome
}

// StatBoost is a narrator-proposed stat change before any dice math.
type StatBoost struct {
	Stat  entities.StatType
	Value int
}

// Service generates narrative content. Implementations may fail or time
// out; callers are expected to reach them through Fallback.
type Service interface {
	// GenerateEventType picks the next event type for an exploration turn
	GenerateEventType(ctx context.Context, ec EventContext) (entities.EventType, error)

	// GenerateDescription produces the narrative text for an event
	GenerateDescription(ctx context.Context, ec EventContext) (string, error)

	// GenerateStatBoost proposes a stat change for an investigation or a
	// regular combat reward
	GenerateStatBoost(ctx context.Context, ec EventContext) (*StatBoost, error)

	// GenerateItemDrop produces a loot item descriptor
	GenerateItemDrop(ctx context.Context, ec EventContext) (*entities.Item, error)

	// GenerateBonusStat proposes the extra stat reward on a critical
	// success
	GenerateBonusStat(ctx context.Context, ec EventContext) (*StatBoost, error)
}
