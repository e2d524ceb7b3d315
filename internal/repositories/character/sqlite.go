package character

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/jmoiron/sqlx"

	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/entities"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/errors"
)

// Config holds the dependencies for the sqlite repository
type Config struct {
	DB *sqlx.DB
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c.DB == nil {
		return errors.InvalidArgument("db is required")
	}
	return nil
}

type sqliteRepository struct {
	db *sqlx.DB
}

// NewSQLite creates a new sqlite-backed character repository
func NewSQLite(cfg *Config) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return &sqliteRepository{db: cfg.DB}, nil
}

var _ Repository = (*sqliteRepository)(nil)

const characterColumns = `id, campaign_id, name, current_health, max_health,
	attack, defense, sprite_ref, weapon_id, armor_id, shield_id`

func (r *sqliteRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Character == nil {
		return nil, errors.InvalidArgument("character cannot be nil")
	}
	if input.Character.ID == "" {
		return nil, errors.InvalidArgument("character ID cannot be empty")
	}
	if input.Character.CampaignID == "" {
		return nil, errors.InvalidArgument("campaign ID cannot be empty")
	}

	ch := *input.Character
	const stmt = `INSERT INTO characters (id, campaign_id, name, current_health, max_health,
			attack, defense, sprite_ref, weapon_id, armor_id, shield_id)
		VALUES (:id, :campaign_id, :name, :current_health, :max_health,
			:attack, :defense, :sprite_ref, :weapon_id, :armor_id, :shield_id)`
	if _, err := r.db.NamedExecContext(ctx, stmt, &ch); err != nil {
		return nil, errors.Wrap(err, "failed to insert character")
	}

	if err := r.hydrate(ctx, &ch); err != nil {
		return nil, err
	}
	return &CreateOutput{Character: &ch}, nil
}

func (r *sqliteRepository) GetByCampaign(ctx context.Context, input GetByCampaignInput) (*GetByCampaignOutput, error) {
	if input.CampaignID == "" {
		return nil, errors.InvalidArgument("campaign ID cannot be empty")
	}

	var ch entities.Character
	stmt := `SELECT ` + characterColumns + ` FROM characters WHERE campaign_id = ?`
	if err := r.db.GetContext(ctx, &ch, stmt, input.CampaignID); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundf("character for campaign %s not found", input.CampaignID)
		}
		return nil, errors.Wrap(err, "failed to get character")
	}

	if err := r.hydrate(ctx, &ch); err != nil {
		return nil, err
	}
	return &GetByCampaignOutput{Character: &ch}, nil
}

func (r *sqliteRepository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if input.Character == nil {
		return nil, errors.InvalidArgument("character cannot be nil")
	}
	if input.Character.ID == "" {
		return nil, errors.InvalidArgument("character ID cannot be empty")
	}

	ch := *input.Character
	const stmt = `UPDATE characters SET name = :name, current_health = :current_health,
			max_health = :max_health, attack = :attack, defense = :defense,
			sprite_ref = :sprite_ref, weapon_id = :weapon_id, armor_id = :armor_id,
			shield_id = :shield_id
		WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, stmt, &ch)
	if err != nil {
		return nil, errors.Wrap(err, "failed to update character")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, errors.NotFoundf("character %s not found", ch.ID)
	}

	if err := r.hydrate(ctx, &ch); err != nil {
		return nil, err
	}
	return &UpdateOutput{Character: &ch}, nil
}

func (r *sqliteRepository) Equip(ctx context.Context, input EquipInput) (*EquipOutput, error) {
	if input.CampaignID == "" {
		return nil, errors.InvalidArgument("campaign ID cannot be empty")
	}
	if input.EquipmentID == "" {
		return nil, errors.InvalidArgument("equipment ID cannot be empty")
	}

	eq, err := r.getEquipment(ctx, input.EquipmentID)
	if err != nil {
		return nil, err
	}

	var column string
	switch eq.Slot {
	case entities.SlotWeapon:
		column = "weapon_id"
	case entities.SlotArmor:
		column = "armor_id"
	case entities.SlotShield:
		column = "shield_id"
	default:
		return nil, errors.Internalf("equipment %s has unknown slot %q", eq.ID, eq.Slot)
	}

	stmt := `UPDATE characters SET ` + column + ` = ? WHERE campaign_id = ?`
	res, err := r.db.ExecContext(ctx, stmt, eq.ID, input.CampaignID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to equip item")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, errors.NotFoundf("character for campaign %s not found", input.CampaignID)
	}

	out, err := r.GetByCampaign(ctx, GetByCampaignInput{CampaignID: input.CampaignID})
	if err != nil {
		return nil, err
	}
	return &EquipOutput{Character: out.Character}, nil
}

// hydrate fills the equipment references from the catalog. A dangling
// reference is treated as empty rather than an error so that catalog edits
// cannot brick a character.
func (r *sqliteRepository) hydrate(ctx context.Context, ch *entities.Character) error {
	refs := []struct {
		id   string
		dest **entities.Equipment
	}{
		{ch.WeaponID, &ch.Weapon},
		{ch.ArmorID, &ch.Armor},
		{ch.ShieldID, &ch.Shield},
	}
	for _, ref := range refs {
		if ref.id == "" {
			continue
		}
		eq, err := r.getEquipment(ctx, ref.id)
		if err != nil {
			if errors.IsNotFound(err) {
				continue
			}
			return err
		}
		*ref.dest = eq
	}
	return nil
}

func (r *sqliteRepository) getEquipment(ctx context.Context, id string) (*entities.Equipment, error) {
	var eq entities.Equipment
	const stmt = `SELECT id, slot, name, bonus, rarity, description FROM equipment WHERE id = ?`
	if err := r.db.GetContext(ctx, &eq, stmt, id); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundf("equipment %s not found", id)
		}
		return nil, errors.Wrap(err, "failed to get equipment")
	}
	return &eq, nil
}
