package entities

import "github.com/KirkDiggler/rpg-toolkit/core"

// Enemy is a read-only catalog entry. A combat encounter copies these values
// into a CombatSnapshot; the catalog row itself is never mutated.
type Enemy struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Tier      int    `db:"tier" json:"tier"`
	Boss      bool   `db:"boss" json:"boss"`
	Health    int    `db:"health" json:"health"`
	Attack    int    `db:"attack" json:"attack"`
	Defense   int    `db:"defense" json:"defense"`
	SpriteRef string `db:"sprite_ref" json:"spriteRef"`
}

// GetID implements core.Entity.
func (e *Enemy) GetID() string { return e.ID }

// GetType implements core.Entity.
func (e *Enemy) GetType() string { return "enemy" }

var _ core.Entity = (*Enemy)(nil)
