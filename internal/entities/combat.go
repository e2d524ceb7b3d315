package entities

import "time"

// TemporaryBuffs are additive in-combat bonuses granted by item use. They
// live only for the lifetime of a snapshot and are discarded on combat
// resolution; they never reach the durable character record.
type TemporaryBuffs struct {
	Attack  int `json:"attack"`
	Defense int `json:"defense"`
}

// CombatSnapshot is the transient record of an active fight. It is the only
// place where per-turn combat math happens: the enemy side and the inventory
// are snapshotted here, while character health stays durable. At most one
// snapshot exists per campaign at any time.
type CombatSnapshot struct {
	CampaignID string `json:"campaignId"`

	Enemy      Enemy `json:"enemy"`
	EnemyHP    int   `json:"enemyHp"`
	EnemyMaxHP int   `json:"enemyMaxHp"`

	// Character baseline captured when combat began.
	CharacterAttack  int `json:"characterAttack"`
	CharacterDefense int `json:"characterDefense"`
	WeaponBonus      int `json:"weaponBonus"`
	ShieldBonus      int `json:"shieldBonus"`

	// Inventory copy for in-combat item use. OriginalItemIDs is the
	// multiset of item ids present when combat began, used on conclusion
	// to reconcile consumed items against durable inventory.
	Inventory       []Item   `json:"inventory"`
	OriginalItemIDs []string `json:"originalItemIds"`

	Buffs TemporaryBuffs `json:"buffs"`

	Log []string `json:"log"`

	CreatedAt time.Time `json:"createdAt"`
}

// EffectiveAttack is recomputed on every read; it is never stored.
func (s *CombatSnapshot) EffectiveAttack() int {
	return s.CharacterAttack + s.WeaponBonus + s.Buffs.Attack
}

// EffectiveDefense is recomputed on every read; it is never stored.
func (s *CombatSnapshot) EffectiveDefense() int {
	return s.CharacterDefense + s.ShieldBonus + s.Buffs.Defense
}

// FindItem returns the first inventory entry with the given item id, or nil.
func (s *CombatSnapshot) FindItem(itemID string) *Item {
	for i := range s.Inventory {
		if s.Inventory[i].ID == itemID {
			return &s.Inventory[i]
		}
	}
	return nil
}

// ConsumedItemIDs returns the multiset difference between the items present
// at combat start and the items still held, i.e. everything used during the
// fight that must be removed from durable inventory on conclusion.
func (s *CombatSnapshot) ConsumedItemIDs() []string {
	remaining := make(map[string]int, len(s.Inventory))
	for _, it := range s.Inventory {
		remaining[it.ID]++
	}
	var consumed []string
	for _, id := range s.OriginalItemIDs {
		if remaining[id] > 0 {
			remaining[id]--
			continue
		}
		consumed = append(consumed, id)
	}
	return consumed
}
