// Package campaign provides the repository interface and types for campaign
// records.
package campaign

import (
	"context"

	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/entities"
)

// CreateInput contains parameters for creating a campaign
type CreateInput struct {
	Campaign *entities.Campaign
}

// CreateOutput contains the result of creating a campaign
type CreateOutput struct {
	Campaign *entities.Campaign
}

// GetInput contains parameters for retrieving a campaign
type GetInput struct {
	ID string
}

// GetOutput contains the result of retrieving a campaign
type GetOutput struct {
	Campaign *entities.Campaign
}

// UpdateInput contains parameters for updating a campaign
type UpdateInput struct {
	Campaign *entities.Campaign
}

// UpdateOutput contains the result of updating a campaign
type UpdateOutput struct {
	Campaign *entities.Campaign
}

// ListByAccountInput contains parameters for listing an account's campaigns
type ListByAccountInput struct {
	AccountID string
}

// ListByAccountOutput contains the result of listing an account's campaigns
type ListByAccountOutput struct {
	Campaigns []*entities.Campaign
}

// Repository defines the interface for campaign storage operations
type Repository interface {
	// Create stores a new campaign
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves a campaign by ID
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Update replaces an existing campaign's mutable fields
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)

	// ListByAccount returns all campaigns owned by an account
	ListByAccount(ctx context.Context, input ListByAccountInput) (*ListByAccountOutput, error)
}
