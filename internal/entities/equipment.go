package entities

// EquipmentSlot identifies the slot a catalog item occupies.
type EquipmentSlot string

// Equipment slots.
const (
	SlotWeapon EquipmentSlot = "weapon"
	SlotArmor  EquipmentSlot = "armor"
	SlotShield EquipmentSlot = "shield"
)

// Equipment is an immutable catalog entry with a single numeric bonus:
// attack for weapons, max health for armor, defense for shields.
type Equipment struct {
	ID          string        `db:"id" json:"id"`
	Slot        EquipmentSlot `db:"slot" json:"slot"`
	Name        string        `db:"name" json:"name"`
	Bonus       int           `db:"bonus" json:"bonus"`
	Rarity      string        `db:"rarity" json:"rarity"`
	Description string        `db:"description" json:"description"`
}
