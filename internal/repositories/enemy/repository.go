// Package enemy provides read access to the enemy catalog.
package enemy

import (
	"context"

	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/entities"
)

// GetInput contains parameters for retrieving a catalog enemy
type GetInput struct {
	ID string
}

// GetOutput contains the result of retrieving a catalog enemy
type GetOutput struct {
	Enemy *entities.Enemy
}

// GetRandomInput selects a random enemy at or below MaxTier. Boss controls
// whether the pick comes from the boss pool or the regular pool.
type GetRandomInput struct {
	MaxTier int
	Boss    bool
}

// GetRandomOutput contains the selected enemy
type GetRandomOutput struct {
	Enemy *entities.Enemy
}

// Repository defines read operations over the enemy catalog
type Repository interface {
	// Get retrieves a catalog enemy by ID
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// GetRandom picks a random enemy within the tier cap
	GetRandom(ctx context.Context, input GetRandomInput) (*GetRandomOutput, error)
}
