// Package combat provides the transient combat snapshot store. A snapshot is
// keyed by campaign so at most one fight is active per campaign; snapshots
// expire on their own, and the engine rebuilds a fresh one from the durable
// event log when a fight was open but the snapshot is gone.
package combat

import (
	"context"

	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/entities"
)

// CreateInput contains parameters for storing a snapshot. An existing
// snapshot for the same campaign is replaced.
type CreateInput struct {
	Snapshot *entities.CombatSnapshot
}

// CreateOutput contains the stored snapshot
type CreateOutput struct {
	Snapshot *entities.CombatSnapshot
}

// GetInput contains parameters for retrieving a campaign's snapshot
type GetInput struct {
	CampaignID string
}

// GetOutput contains the campaign's snapshot
type GetOutput struct {
	Snapshot *entities.CombatSnapshot
}

// UpdateEnemyHPInput applies a delta to the snapshot's enemy health
type UpdateEnemyHPInput struct {
	CampaignID string
	Delta      int
}

// UpdateEnemyHPOutput contains the snapshot after the change
type UpdateEnemyHPOutput struct {
	Snapshot *entities.CombatSnapshot
}

// ApplyBuffInput adds a temporary stat bonus for the rest of the fight
type ApplyBuffInput struct {
	CampaignID string
	Stat       entities.StatType
	Value      int
}

// ApplyBuffOutput contains the snapshot after the change
type ApplyBuffOutput struct {
	Snapshot *entities.CombatSnapshot
}

// RemoveOneItemInput removes a single copy of an item from the snapshot's
// inventory
type RemoveOneItemInput struct {
	CampaignID string
	ItemID     string
}

// RemoveOneItemOutput contains the removed item and the updated snapshot
type RemoveOneItemOutput struct {
	Item     *entities.Item
	Snapshot *entities.CombatSnapshot
}

// AppendLogInput appends a line to the snapshot's combat log
type AppendLogInput struct {
	CampaignID string
	Line       string
}

// AppendLogOutput contains the snapshot after the change
type AppendLogOutput struct {
	Snapshot *entities.CombatSnapshot
}

// DeleteInput contains parameters for discarding a snapshot
type DeleteInput struct {
	CampaignID string
}

// DeleteOutput contains the result of discarding a snapshot
type DeleteOutput struct {
	// Existed reports whether a snapshot was present to delete.
	Existed bool
}

// Repository defines the interface for the combat snapshot store. Delete is
// idempotent; every other mutation returns NotFound when no snapshot exists.
type Repository interface {
	// Create stores a snapshot, replacing any existing one for the campaign
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves the campaign's active snapshot
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// UpdateEnemyHP applies a delta to enemy health, clamped to [0, max]
	UpdateEnemyHP(ctx context.Context, input UpdateEnemyHPInput) (*UpdateEnemyHPOutput, error)

	// ApplyBuff adds a temporary attack or defense bonus
	ApplyBuff(ctx context.Context, input ApplyBuffInput) (*ApplyBuffOutput, error)

	// RemoveOneItem removes exactly one copy of an item from the snapshot
	RemoveOneItem(ctx context.Context, input RemoveOneItemInput) (*RemoveOneItemOutput, error)

	// AppendLog appends a line to the combat log
	AppendLog(ctx context.Context, input AppendLogInput) (*AppendLogOutput, error)

	// Delete discards the campaign's snapshot if present
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)
}
