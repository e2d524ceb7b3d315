package entities

// Item is a consumable or stat-affecting drop held in a campaign's
// inventory. Positive StatValue is a boon, negative a curse. Two inventory
// rows may share the same ItemID; that is a stack of identical consumables.
type Item struct {
	ID           string   `db:"item_id" json:"id"`
	Name         string   `db:"name" json:"name"`
	Description  string   `db:"description" json:"description"`
	StatModified StatType `db:"stat_modified" json:"statModified"`
	StatValue    int      `db:"stat_value" json:"statValue"`
	Rarity       string   `db:"rarity" json:"rarity"`
}
