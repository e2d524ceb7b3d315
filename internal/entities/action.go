package entities

// ActionType is the kind of move a player submits for a turn.
type ActionType string

// Player actions. The orchestrator validates each against the current phase.
const (
	ActionContinue    ActionType = "continue"
	ActionInvestigate ActionType = "investigate"
	ActionDecline     ActionType = "decline"
	ActionAttack      ActionType = "attack"
	ActionFlee        ActionType = "flee"
	ActionUseItem     ActionType = "use_item_combat"
)

// KnownActionType reports whether t is one of the defined action types.
func KnownActionType(t ActionType) bool {
	switch t {
	case ActionContinue, ActionInvestigate, ActionDecline,
		ActionAttack, ActionFlee, ActionUseItem:
		return true
	}
	return false
}

// PlayerAction is a single submitted turn.
type PlayerAction struct {
	CampaignID string     `json:"campaignId"`
	Type       ActionType `json:"actionType"`
	// ItemID is required for ActionUseItem and ignored otherwise.
	ItemID string `json:"itemId,omitempty"`
}
