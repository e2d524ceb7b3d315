package entities

import "github.com/KirkDiggler/rpg-toolkit/core"

// StatType identifies which character stat a delta applies to.
type StatType string

// Stat types affected by investigations, items, and rewards.
const (
	StatHealth  StatType = "health"
	StatAttack  StatType = "attack"
	StatDefense StatType = "defense"
)

// Character is the durable player character record, 1:1 with a campaign.
// Equipment references are hydrated by the character repository.
type Character struct {
	ID            string `db:"id" json:"id"`
	CampaignID    string `db:"campaign_id" json:"campaignId"`
	Name          string `db:"name" json:"name"`
	CurrentHealth int    `db:"current_health" json:"currentHealth"`
	MaxHealth     int    `db:"max_health" json:"maxHealth"`
	Attack        int    `db:"attack" json:"attack"`
	Defense       int    `db:"defense" json:"defense"`
	SpriteRef     string `db:"sprite_ref" json:"spriteRef"`

	WeaponID string `db:"weapon_id" json:"-"`
	ArmorID  string `db:"armor_id" json:"-"`
	ShieldID string `db:"shield_id" json:"-"`

	Weapon *Equipment `db:"-" json:"weapon,omitempty"`
	Armor  *Equipment `db:"-" json:"armor,omitempty"`
	Shield *Equipment `db:"-" json:"shield,omitempty"`
}

// GetID implements core.Entity.
func (c *Character) GetID() string { return c.ID }

// GetType implements core.Entity.
func (c *Character) GetType() string { return "character" }

var _ core.Entity = (*Character)(nil)

// WeaponBonus returns the equipped weapon's attack bonus, zero when unarmed.
func (c *Character) WeaponBonus() int {
	if c.Weapon == nil {
		return 0
	}
	return c.Weapon.Bonus
}

// ShieldBonus returns the equipped shield's defense bonus.
func (c *Character) ShieldBonus() int {
	if c.Shield == nil {
		return 0
	}
	return c.Shield.Bonus
}

// ArmorBonus returns the equipped armor's max-health bonus.
func (c *Character) ArmorBonus() int {
	if c.Armor == nil {
		return 0
	}
	return c.Armor.Bonus
}

// EffectiveMaxHealth is the health ceiling including armor.
func (c *Character) EffectiveMaxHealth() int {
	return c.MaxHealth + c.ArmorBonus()
}

// EffectiveAttack is base attack plus weapon bonus, outside combat buffs.
func (c *Character) EffectiveAttack() int {
	return c.Attack + c.WeaponBonus()
}

// EffectiveDefense is base defense plus shield bonus, outside combat buffs.
func (c *Character) EffectiveDefense() int {
	return c.Defense + c.ShieldBonus()
}

// ApplyHealthDelta adjusts current health by delta, clamping the result to
// [0, EffectiveMaxHealth]. It returns the delta that was actually applied
// after clamping.
func (c *Character) ApplyHealthDelta(delta int) int {
	before := c.CurrentHealth
	after := before + delta
	if ceil := c.EffectiveMaxHealth(); after > ceil {
		after = ceil
	}
	if after < 0 {
		after = 0
	}
	c.CurrentHealth = after
	return after - before
}

// ApplyStatDelta routes a delta to the named stat. Health deltas respect the
// max-health clamp; attack and defense are unclamped so curses can bite.
func (c *Character) ApplyStatDelta(stat StatType, delta int) int {
	switch stat {
	case StatHealth:
		return c.ApplyHealthDelta(delta)
	case StatAttack:
		c.Attack += delta
		return delta
	case StatDefense:
		c.Defense += delta
		return delta
	}
	return 0
}

// IsDead reports whether the character has been reduced to zero health.
func (c *Character) IsDead() bool { return c.CurrentHealth <= 0 }
