package inventory

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/jmoiron/sqlx"

	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/entities"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/errors"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/pkg/clock"
)

// Config holds the dependencies for the sqlite repository
type Config struct {
	DB    *sqlx.DB
	Clock clock.Clock
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c.DB == nil {
		return errors.InvalidArgument("db is required")
	}
	if c.Clock == nil {
		return errors.InvalidArgument("clock is required")
	}
	return nil
}

type sqliteRepository struct {
	db    *sqlx.DB
	clock clock.Clock
}

// NewSQLite creates a new sqlite-backed inventory repository
func NewSQLite(cfg *Config) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return &sqliteRepository{db: cfg.DB, clock: cfg.Clock}, nil
}

var _ Repository = (*sqliteRepository)(nil)

func (r *sqliteRepository) Add(ctx context.Context, input AddInput) (*AddOutput, error) {
	if input.CampaignID == "" {
		return nil, errors.InvalidArgument("campaign ID cannot be empty")
	}
	if input.Item == nil {
		return nil, errors.InvalidArgument("item cannot be nil")
	}
	if input.Item.ID == "" {
		return nil, errors.InvalidArgument("item ID cannot be empty")
	}

	const stmt = `INSERT INTO inventory_items
			(campaign_id, item_id, name, description, stat_modified, stat_value, rarity, acquired_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, stmt,
		input.CampaignID,
		input.Item.ID,
		input.Item.Name,
		input.Item.Description,
		input.Item.StatModified,
		input.Item.StatValue,
		input.Item.Rarity,
		r.clock.Now().UTC(),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to insert inventory item")
	}

	item := *input.Item
	return &AddOutput{Item: &item}, nil
}

func (r *sqliteRepository) List(ctx context.Context, input ListInput) (*ListOutput, error) {
	if input.CampaignID == "" {
		return nil, errors.InvalidArgument("campaign ID cannot be empty")
	}

	items := []*entities.Item{}
	const stmt = `SELECT item_id, name, description, stat_modified, stat_value, rarity
		FROM inventory_items WHERE campaign_id = ? ORDER BY id`
	if err := r.db.SelectContext(ctx, &items, stmt, input.CampaignID); err != nil {
		return nil, errors.Wrap(err, "failed to list inventory")
	}

	return &ListOutput{Items: items}, nil
}

func (r *sqliteRepository) RemoveOne(ctx context.Context, input RemoveOneInput) (*RemoveOneOutput, error) {
	if input.CampaignID == "" {
		return nil, errors.InvalidArgument("campaign ID cannot be empty")
	}
	if input.ItemID == "" {
		return nil, errors.InvalidArgument("item ID cannot be empty")
	}

	// Read the oldest copy, then delete that one row by primary key. Stacks
	// shrink by exactly one per call.
	var row struct {
		RowID int64 `db:"id"`
		entities.Item
	}
	const selectStmt = `SELECT id, item_id, name, description, stat_modified, stat_value, rarity
		FROM inventory_items WHERE campaign_id = ? AND item_id = ? ORDER BY id LIMIT 1`
	if err := r.db.GetContext(ctx, &row, selectStmt, input.CampaignID, input.ItemID); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundf("item %s not in inventory of campaign %s", input.ItemID, input.CampaignID)
		}
		return nil, errors.Wrap(err, "failed to find inventory item")
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM inventory_items WHERE id = ?`, row.RowID); err != nil {
		return nil, errors.Wrap(err, "failed to remove inventory item")
	}

	item := row.Item
	return &RemoveOneOutput{Item: &item}, nil
}
