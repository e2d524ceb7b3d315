package entities

import (
	"time"

	"github.com/KirkDiggler/rpg-toolkit/core"
)

// EventType classifies a logged game event.
type EventType string

// Event types produced by the narrator and the engine.
const (
	EventDescriptive   EventType = "DESCRIPTIVE"
	EventEnvironmental EventType = "ENVIRONMENTAL"
	EventCombat        EventType = "COMBAT"
	EventItemDrop      EventType = "ITEM_DROP"
)

// KnownEventType reports whether t is one of the defined event types.
func KnownEventType(t EventType) bool {
	switch t {
	case EventDescriptive, EventEnvironmental, EventCombat, EventItemDrop:
		return true
	}
	return false
}

// CombatEventPhase distinguishes the two durable combat events of a fight.
type CombatEventPhase string

// Combat event phases. A fight is open when its most recent combat event is
// an encounter with no later conclusion; that is what restart recovery keys
// off.
const (
	CombatPhaseEncounter  CombatEventPhase = "encounter"
	CombatPhaseConclusion CombatEventPhase = "conclusion"
)

// CombatOutcome is how a concluded fight ended.
type CombatOutcome string

// Combat outcomes recorded on conclusion events.
const (
	CombatOutcomeVictory CombatOutcome = "victory"
	CombatOutcomeDefeat  CombatOutcome = "defeat"
	CombatOutcomeFled    CombatOutcome = "fled"
)

// GameEvent is an immutable append-only log row: the system of record for
// what happened in a campaign. Numbers are per-campaign, monotonically
// increasing, and gapless.
type GameEvent struct {
	ID         string        `db:"id" json:"id"`
	CampaignID string        `db:"campaign_id" json:"campaignId"`
	Number     int           `db:"number" json:"number"`
	Type       EventType     `db:"type" json:"type"`
	Message    string        `db:"message" json:"message"`
	Payload    *EventPayload `db:"-" json:"payload,omitempty"`
	CreatedAt  time.Time     `db:"created_at" json:"createdAt"`
}

// GetID implements core.Entity.
func (e *GameEvent) GetID() string { return e.ID }

// GetType implements core.Entity.
func (e *GameEvent) GetType() string { return "game_event" }

var _ core.Entity = (*GameEvent)(nil)

// EventPayload captures the structured facts behind an event. Only the
// sections relevant to the event are populated.
type EventPayload struct {
	Roll       *RollData          `json:"roll,omitempty"`
	StatChange *StatChangeData    `json:"statChange,omitempty"`
	Combat     *CombatData        `json:"combat,omitempty"`
	Loot       *LootData          `json:"loot,omitempty"`
	Declined   *DeclinedEventData `json:"declined,omitempty"`
}

// RollData records a die roll and its classification.
type RollData struct {
	Value   int    `json:"value"`
	Outcome string `json:"outcome"`
}

// StatChangeData records a resolved stat modification.
type StatChangeData struct {
	Stat    StatType `json:"stat"`
	Base    int      `json:"base"`
	Applied int      `json:"applied"`
}

// CombatData records the durable bookends of a fight.
type CombatData struct {
	EnemyID   string           `json:"enemyId"`
	EnemyName string           `json:"enemyName,omitempty"`
	Phase     CombatEventPhase `json:"phase"`
	Outcome   CombatOutcome    `json:"outcome,omitempty"`
}

// LootData records an item drop.
type LootData struct {
	ItemID   string `json:"itemId"`
	ItemName string `json:"itemName"`
	// Kept reports whether the item fit into the inventory.
	Kept bool `json:"kept"`
}

// DeclinedEventData records a declined investigation prompt.
type DeclinedEventData struct {
	DeclinedType EventType `json:"declinedType"`
}
