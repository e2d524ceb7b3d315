package campaign

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

// NewSQLite creates a new sqlite-backed campaign repository
func NewSQLite(cfg *Config) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return &sqliteRepository{db: cfg.DB, clock: cfg.Clock}, nil
}

var _ Repository = (*sqliteRepository)(nil)

func (r *sqliteRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Campaign == nil {
		return nil, errors.InvalidArgument("campaign cannot be nil")
	}
	if input.Campaign.ID == "" {
		return nil, errors.InvalidArgument("campaign ID cannot be empty")
	}
	if input.Campaign.AccountID == "" {
		return nil, errors.InvalidArgument("account ID cannot be empty")
	}

	c := *input.Campaign
	now := r.clock.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.State == "" {
		c.State = entities.CampaignActive
	}

	const stmt = `INSERT INTO campaigns (id, account_id, name, state, created_at, updated_at)
		VALUES (:id, :account_id, :name, :state, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, stmt, &c); err != nil {
		return nil, errors.Wrap(err, "failed to insert campaign")
	}

	return &CreateOutput{Campaign: &c}, nil
}

func (r *sqliteRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument("campaign ID cannot be empty")
	}

	var c entities.Campaign
	const stmt = `SELECT id, account_id, name, state, created_at, updated_at
		FROM campaigns WHERE id = ?`
	if err := r.db.GetContext(ctx, &c, stmt, input.ID); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundf("campaign %s not found", input.ID)
		}
		return nil, errors.Wrap(err, "failed to get campaign")
	}

	return &GetOutput{Campaign: &c}, nil
}

func (r *sqliteRepository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if input.Campaign == nil {
		return nil, errors.InvalidArgument("campaign cannot be nil")
	}
	if input.Campaign.ID == "" {
		return nil, errors.InvalidArgument("campaign ID cannot be empty")
	}

	c := *input.Campaign
	c.UpdatedAt = r.clock.Now().UTC()

	const stmt = `UPDATE campaigns SET name = :name, state = :state, updated_at = :updated_at
		WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, stmt, &c)
	if err != nil {
		return nil, errors.Wrap(err, "failed to update campaign")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, errors.NotFoundf("campaign %s not found", c.ID)
	}

	return &UpdateOutput{Campaign: &c}, nil
}

func (r *sqliteRepository) ListByAccount(ctx context.Context, input ListByAccountInput) (*ListByAccountOutput, error) {
	if input.AccountID == "" {
		return nil, errors.InvalidArgument("account ID cannot be empty")
	}

	campaigns := []*entities.Campaign{}
	const stmt = `SELECT id, account_id, name, state, created_at, updated_at
		FROM campaigns WHERE account_id = ? ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &campaigns, stmt, input.AccountID); err != nil {
		return nil, errors.Wrap(err, "failed to list campaigns")
	}

	return &ListByAccountOutput{Campaigns: campaigns}, nil
}
