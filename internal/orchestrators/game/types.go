package game

import (
	"context"

	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/dice"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/entities"
)

// Service defines the interface for the campaign game engine
type Service interface {
	// StartCampaign creates a campaign with its starter character and
	// opening event
	StartCampaign(ctx context.Context, input *StartCampaignInput) (*StartCampaignOutput, error)

	// ListCampaigns returns the account's campaigns
	ListCampaigns(ctx context.Context, input *ListCampaignsInput) (*ListCampaignsOutput, error)

	// GetGameState returns the current state without advancing the story.
	// Safe to call on page load; repeated calls return the same phase and
	// message.
	GetGameState(ctx context.Context, input *GetGameStateInput) (*GetGameStateOutput, error)

	// ProcessAction resolves one player turn
	ProcessAction(ctx context.Context, input *ProcessActionInput) (*ProcessActionOutput, error)
}

// Tuning holds the gameplay knobs that were deliberately lifted out of the
// engine logic into configuration.
type Tuning struct {
	// BossEventThreshold forces the boss encounter once the event counter
	// reaches this number.
	BossEventThreshold int
	// DifficultyTierEvents is how many events pass before the enemy tier
	// cap rises by one.
	DifficultyTierEvents int
	// MaxConsecutiveDescriptive caps descriptive events in a row before a
	// different type is forced.
	MaxConsecutiveDescriptive int
	// InventoryCapacity bounds how many item copies a campaign can hold.
	InventoryCapacity int
	// RecentEventWindow is how many recent events are surfaced in the
	// game state and fed to the narrator as context.
	RecentEventWindow int
}

func defaultTuning() Tuning {
	return Tuning{
		BossEventThreshold:        20,
		DifficultyTierEvents:      7,
		MaxConsecutiveDescriptive: 3,
		InventoryCapacity:         10,
		RecentEventWindow:         10,
	}
}

func (t Tuning) withDefaults() Tuning {
	d := defaultTuning()
	if t.BossEventThreshold <= 0 {
		t.BossEventThreshold = d.BossEventThreshold
	}
	if t.DifficultyTierEvents <= 0 {
		t.DifficultyTierEvents = d.DifficultyTierEvents
	}
	if t.MaxConsecutiveDescriptive <= 0 {
		t.MaxConsecutiveDescriptive = d.MaxConsecutiveDescriptive
	}
	if t.InventoryCapacity <= 0 {
		t.InventoryCapacity = d.InventoryCapacity
	}
	if t.RecentEventWindow <= 0 {
		t.RecentEventWindow = d.RecentEventWindow
	}
	return t
}

// CombatView is the render-ready slice of an active fight.
type CombatView struct {
	Enemy            entities.Enemy  `json:"enemy"`
	EnemyHP          int             `json:"enemyHp"`
	EnemyMaxHP       int             `json:"enemyMaxHp"`
	EffectiveAttack  int             `json:"effectiveAttack"`
	EffectiveDefense int             `json:"effectiveDefense"`
	Inventory        []entities.Item `json:"inventory"`
	Log              []string        `json:"log"`
}

// GameState is the full view the UI needs to render a campaign.
type GameState struct {
	Campaign     *entities.Campaign     `json:"campaign"`
	Character    *entities.Character    `json:"character"`
	Phase        entities.GamePhase     `json:"phase"`
	Choices      []entities.ActionType  `json:"choices"`
	Message      string                 `json:"message"`
	Inventory    []*entities.Item       `json:"inventory"`
	Combat       *CombatView            `json:"combat,omitempty"`
	RecentEvents []*entities.GameEvent  `json:"recentEvents"`
}

// CombatResult describes what one combat turn did.
type CombatResult struct {
	Roll          int           `json:"roll"`
	RollOutcome   dice.Outcome  `json:"rollOutcome"`
	DamageDealt   int           `json:"damageDealt"`
	DamageTaken   int           `json:"damageTaken"`
	EnemyDefeated bool          `json:"enemyDefeated"`
	Fled          bool          `json:"fled"`
}

// StartCampaignInput contains parameters for starting a campaign
type StartCampaignInput struct {
	AccountID     string
	Name          string
	CharacterName string
}

// StartCampaignOutput contains the result of starting a campaign
type StartCampaignOutput struct {
	State *GameState
}

// ListCampaignsInput contains parameters for listing campaigns
type ListCampaignsInput struct {
	AccountID string
}

// ListCampaignsOutput contains the account's campaigns
type ListCampaignsOutput struct {
	Campaigns []*entities.Campaign
}

// GetGameStateInput contains parameters for reading a campaign's state
type GetGameStateInput struct {
	AccountID  string
	CampaignID string
}

// GetGameStateOutput contains the campaign's current state
type GetGameStateOutput struct {
	State *GameState
}

// ProcessActionInput contains one player turn
type ProcessActionInput struct {
	AccountID string
	Action    entities.PlayerAction
}

// ProcessActionOutput contains the resolved turn
type ProcessActionOutput struct {
	State *GameState
	// Message is the narrative line produced by this turn.
	Message string
	// Combat is set when the turn touched an active fight.
	Combat *CombatResult
	// ItemFound is set when the turn produced loot.
	ItemFound *entities.Item
}
