package testutils

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/database"
)

// CreateTestDB opens an in-memory sqlite database with the schema and
// catalog fixtures applied
func CreateTestDB(t *testing.T) (*sqlx.DB, func()) {
	t.Helper()

	db, err := database.Open(context.Background(), ":memory:")
	require.NoError(t, err, "failed to open test database")

	cleanup := func() {
		_ = db.Close()
	}

	return db, cleanup
}
