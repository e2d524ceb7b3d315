// Package gameevent provides the append-only event log repository: the
// durable system of record for everything that happened in a campaign.
package gameevent

import (
	"context"

	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/entities"
)

// AppendInput contains parameters for appending an event. The repository
// assigns the ID, the per-campaign sequence number, and the timestamp.
type AppendInput struct {
	CampaignID string
	Type       entities.EventType
	Message    string
	Payload    *entities.EventPayload
}

// AppendOutput contains the stored event with its assigned number
type AppendOutput struct {
	Event *entities.GameEvent
}

// LatestInput contains parameters for fetching the most recent event
type LatestInput struct {
	CampaignID string
}

// LatestOutput contains the most recent event, or a nil Event when the log
// is empty
type LatestOutput struct {
	Event *entities.GameEvent
}

// ListRecentInput contains parameters for listing the newest events
type ListRecentInput struct {
	CampaignID string
	Limit      int
}

// ListRecentOutput contains the newest events in chronological order
type ListRecentOutput struct {
	Events []*entities.GameEvent
}

// Repository defines the interface for the event log. Events are immutable
// once appended; numbers are monotonically increasing and gapless per
// campaign.
type Repository interface {
	// Append stores a new event with the next sequence number
	Append(ctx context.Context, input AppendInput) (*AppendOutput, error)

	// Latest returns the most recent event for a campaign
	Latest(ctx context.Context, input LatestInput) (*LatestOutput, error)

	// ListRecent returns up to Limit newest events, oldest first
	ListRecent(ctx context.Context, input ListRecentInput) (*ListRecentOutput, error)
}
