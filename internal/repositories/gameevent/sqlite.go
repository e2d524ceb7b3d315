package gameevent

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/entities"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/errors"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/pkg/clock"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/pkg/idgen"
)

// Config holds the dependencies for the sqlite repository
type Config struct {
	DB    *sqlx.DB
	Clock clock.Clock
	IDGen idgen.Generator
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c.DB == nil {
		return errors.InvalidArgument("db is required")
	}
	if c.Clock == nil {
		return errors.InvalidArgument("clock is required")
	}
	if c.IDGen == nil {
		return errors.InvalidArgument("id generator is required")
	}
	return nil
}

type sqliteRepository struct {
	db    *sqlx.DB
	clock clock.Clock
	idGen idgen.Generator
}

// NewSQLite creates a new sqlite-backed event log repository
func NewSQLite(cfg *Config) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return &sqliteRepository{db: cfg.DB, clock: cfg.Clock, idGen: cfg.IDGen}, nil
}

var _ Repository = (*sqliteRepository)(nil)

// eventRow carries the raw payload column alongside the entity fields.
type eventRow struct {
	ID         string             `db:"id"`
	CampaignID string             `db:"campaign_id"`
	Number     int                `db:"number"`
	Type       entities.EventType `db:"type"`
	Message    string             `db:"message"`
	Payload    sql.NullString     `db:"payload"`
	CreatedAt  time.Time          `db:"created_at"`
}

func (row *eventRow) toEntity() (*entities.GameEvent, error) {
	event := &entities.GameEvent{
		ID:         row.ID,
		CampaignID: row.CampaignID,
		Number:     row.Number,
		Type:       row.Type,
		Message:    row.Message,
		CreatedAt:  row.CreatedAt,
	}
	if row.Payload.Valid && row.Payload.String != "" {
		var payload entities.EventPayload
		if err := json.Unmarshal([]byte(row.Payload.String), &payload); err != nil {
			return nil, errors.Wrapf(err, "corrupt payload on event %s", row.ID)
		}
		event.Payload = &payload
	}
	return event, nil
}

func (r *sqliteRepository) Append(ctx context.Context, input AppendInput) (*AppendOutput, error) {
	if input.CampaignID == "" {
		return nil, errors.InvalidArgument("campaign ID cannot be empty")
	}
	if !entities.KnownEventType(input.Type) {
		return nil, errors.InvalidArgumentf("unknown event type %q", input.Type)
	}

	var payload sql.NullString
	if input.Payload != nil {
		data, err := json.Marshal(input.Payload)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal event payload")
		}
		payload = sql.NullString{String: string(data), Valid: true}
	}

	event := &entities.GameEvent{
		ID:         r.idGen.Generate(),
		CampaignID: input.CampaignID,
		Type:       input.Type,
		Message:    input.Message,
		Payload:    input.Payload,
		CreatedAt:  r.clock.Now().UTC(),
	}

	// The number is assigned inside the transaction so concurrent appends to
	// the same campaign cannot produce gaps or duplicates; the UNIQUE
	// constraint backstops the read-then-insert.
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	var next int
	const nextStmt = `SELECT COALESCE(MAX(number), 0) + 1 FROM game_events WHERE campaign_id = ?`
	if err := tx.GetContext(ctx, &next, nextStmt, input.CampaignID); err != nil {
		return nil, errors.Wrap(err, "failed to compute next event number")
	}
	event.Number = next

	const insertStmt = `INSERT INTO game_events (id, campaign_id, number, type, message, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, insertStmt,
		event.ID, event.CampaignID, event.Number, event.Type, event.Message, payload, event.CreatedAt,
	); err != nil {
		return nil, errors.Wrap(err, "failed to insert event")
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "failed to commit event")
	}

	return &AppendOutput{Event: event}, nil
}

func (r *sqliteRepository) Latest(ctx context.Context, input LatestInput) (*LatestOutput, error) {
	if input.CampaignID == "" {
		return nil, errors.InvalidArgument("campaign ID cannot be empty")
	}

	var row eventRow
	const stmt = `SELECT id, campaign_id, number, type, message, payload, created_at
		FROM game_events WHERE campaign_id = ? ORDER BY number DESC LIMIT 1`
	if err := r.db.GetContext(ctx, &row, stmt, input.CampaignID); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return &LatestOutput{}, nil
		}
		return nil, errors.Wrap(err, "failed to get latest event")
	}

	event, err := row.toEntity()
	if err != nil {
		return nil, err
	}
	return &LatestOutput{Event: event}, nil
}

func (r *sqliteRepository) ListRecent(ctx context.Context, input ListRecentInput) (*ListRecentOutput, error) {
	if input.CampaignID == "" {
		return nil, errors.InvalidArgument("campaign ID cannot be empty")
	}
	if input.Limit <= 0 {
		return nil, errors.InvalidArgument("limit must be positive")
	}

	rows := []eventRow{}
	const stmt = `SELECT id, campaign_id, number, type, message, payload, created_at
		FROM game_events WHERE campaign_id = ? ORDER BY number DESC LIMIT ?`
	if err := r.db.SelectContext(ctx, &rows, stmt, input.CampaignID, input.Limit); err != nil {
		return nil, errors.Wrap(err, "failed to list events")
	}

	// Reverse into chronological order for callers building narrative
	// context.
	events := make([]*entities.GameEvent, len(rows))
	for i := range rows {
		event, err := rows[i].toEntity()
		if err != nil {
			return nil, err
		}
		events[len(rows)-1-i] = event
	}

	return &ListRecentOutput{Events: events}, nil
}
