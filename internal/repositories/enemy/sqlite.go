package enemy

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

// NewSQLite creates a new sqlite-backed enemy repository
func NewSQLite(cfg *Config) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return &sqliteRepository{db: cfg.DB}, nil
}

var _ Repository = (*sqliteRepository)(nil)

const enemyColumns = `id, name, tier, boss, health, attack, defense, sprite_ref`

func (r *sqliteRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument("enemy ID cannot be empty")
	}

	var e entities.Enemy
	stmt := `SELECT ` + enemyColumns + ` FROM enemies WHERE id = ?`
	if err := r.db.GetContext(ctx, &e, stmt, input.ID); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundf("enemy %s not found", input.ID)
		}
		return nil, errors.Wrap(err, "failed to get enemy")
	}

	return &GetOutput{Enemy: &e}, nil
}

func (r *sqliteRepository) GetRandom(ctx context.Context, input GetRandomInput) (*GetRandomOutput, error) {
	if input.MaxTier < 1 {
		return nil, errors.InvalidArgument("max tier must be at least 1")
	}

	// Highest eligible tier wins ties so the difficulty ramp is felt; within
	// a tier the pick is uniform.
	stmt := `SELECT ` + enemyColumns + ` FROM enemies
		WHERE boss = ? AND tier <= ?
		ORDER BY tier DESC, RANDOM() LIMIT 1`

	var e entities.Enemy
	if err := r.db.GetContext(ctx, &e, stmt, input.Boss, input.MaxTier); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundf("no enemy available at tier <= %d (boss=%t)", input.MaxTier, input.Boss)
		}
		return nil, errors.Wrap(err, "failed to pick enemy")
	}

	return &GetRandomOutput{Enemy: &e}, nil
}
