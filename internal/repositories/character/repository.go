// Package character provides the repository interface and types for the
// durable player character record.
package character

import (
	"context"

	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/entities"
)

// CreateInput contains parameters for creating a character
type CreateInput struct {
	Character *entities.Character
}

// CreateOutput contains the result of creating a character
type CreateOutput struct {
	Character *entities.Character
}

// GetByCampaignInput contains parameters for retrieving a campaign's character
type GetByCampaignInput struct {
	CampaignID string
}

// GetByCampaignOutput contains the result of retrieving a campaign's character
type GetByCampaignOutput struct {
	Character *entities.Character
}

// UpdateInput contains parameters for updating a character
type UpdateInput struct {
	Character *entities.Character
}

// UpdateOutput contains the result of updating a character
type UpdateOutput struct {
	Character *entities.Character
}

// EquipInput contains parameters for equipping a catalog item
type EquipInput struct {
	CampaignID  string
	EquipmentID string
}

// EquipOutput contains the result of equipping a catalog item
type EquipOutput struct {
	Character *entities.Character
}

// Repository defines the interface for character storage operations.
// Implementations hydrate the equipment references on every read.
type Repository interface {
	// Create stores a new character
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// GetByCampaign retrieves the character belonging to a campaign
	GetByCampaign(ctx context.Context, input GetByCampaignInput) (*GetByCampaignOutput, error)

	// Update replaces the character's mutable stats and equipment refs
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)

	// Equip sets the slot matching the catalog item to that item
	Equip(ctx context.Context, input EquipInput) (*EquipOutput, error)
}
