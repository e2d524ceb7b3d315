// Package inventory provides the repository for a campaign's item inventory.
//
// The inventory is a multiset: two rows sharing an item ID are a stack of
// identical consumables, and removal always takes exactly one row.
package inventory

import (
	"context"

	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/entities"
)

// AddInput contains parameters for adding an item to a campaign's inventory
type AddInput struct {
	CampaignID string
	Item       *entities.Item
}

// AddOutput contains the result of adding an item
type AddOutput struct {
	Item *entities.Item
}

// ListInput contains parameters for listing a campaign's inventory
type ListInput struct {
	CampaignID string
}

// ListOutput contains the campaign's items, oldest first, one entry per
// stacked copy
type ListOutput struct {
	Items []*entities.Item
}

// RemoveOneInput contains parameters for removing a single copy of an item
type RemoveOneInput struct {
	CampaignID string
	ItemID     string
}

// RemoveOneOutput contains the removed item
type RemoveOneOutput struct {
	Item *entities.Item
}

// Repository defines the interface for inventory storage operations
type Repository interface {
	// Add appends one copy of an item to the campaign's inventory
	Add(ctx context.Context, input AddInput) (*AddOutput, error)

	// List returns every item copy held by the campaign
	List(ctx context.Context, input ListInput) (*ListOutput, error)

	// RemoveOne deletes exactly one copy of the item, leaving other copies
	// of the same stack untouched
	RemoveOne(ctx context.Context, input RemoveOneInput) (*RemoveOneOutput, error)
}
