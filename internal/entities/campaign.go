// Package entities defines the domain records shared by the repositories,
// the combat session store, and the game orchestrator.
package entities

import "time"

// CampaignState is the lifecycle state of a campaign.
type CampaignState string

// Campaign lifecycle states. Completed and game over are terminal: once set
// they are never changed back to active.
const (
	CampaignActive    CampaignState = "active"
	CampaignCompleted CampaignState = "completed"
	CampaignGameOver  CampaignState = "game_over"
)

// Campaign is one player's playthrough instance.
type Campaign struct {
	ID        string        `db:"id" json:"id"`
	AccountID string        `db:"account_id" json:"accountId"`
	Name      string        `db:"name" json:"name"`
	State     CampaignState `db:"state" json:"state"`
	CreatedAt time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time     `db:"updated_at" json:"updatedAt"`
}

// IsTerminal reports whether the campaign has reached a terminal state.
func (c *Campaign) IsTerminal() bool {
	return c.State == CampaignCompleted || c.State == CampaignGameOver
}
