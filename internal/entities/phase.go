package entities

// GamePhase is the derived position in the campaign state machine. It is
// never stored; it is computed from the campaign state, the combat session
// store, and the pending-investigation marker.
type GamePhase string

// Game phases.
const (
	PhaseExploration   GamePhase = "exploration"
	PhaseInvestigation GamePhase = "investigation_prompt"
	PhaseCombat        GamePhase = "combat"
	PhaseGameOver      GamePhase = "game_over"
	PhaseVictory       GamePhase = "victory"
)

// Choices returns the actions the UI may offer in this phase. Terminal
// phases offer none.
func (p GamePhase) Choices() []ActionType {
	switch p {
	case PhaseExploration:
		return []ActionType{ActionContinue}
	case PhaseInvestigation:
		return []ActionType{ActionInvestigate, ActionDecline}
	case PhaseCombat:
		return []ActionType{ActionAttack, ActionFlee, ActionUseItem}
	default:
		return []ActionType{}
	}
}

// Allows reports whether the action is legal in this phase.
func (p GamePhase) Allows(t ActionType) bool {
	for _, a := range p.Choices() {
		if a == t {
			return true
		}
	}
	return false
}
