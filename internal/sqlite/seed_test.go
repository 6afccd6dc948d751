package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/vgs/pkg/types"
)

// setupTestDB attaches a backend in a temp dir with the baseline schema.
func setupTestDB(t *testing.T) *Backend {
	t.Helper()
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { b.Detach() })
	require.NoError(t, b.EnsureSchema(context.Background()))
	return b
}

func count(t *testing.T, b *Backend, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, b.DB().QueryRow(query, args...).Scan(&n))
	return n
}

func TestSeed(t *testing.T) {
	b := setupTestDB(t)
	now := time.Unix(1700000000, 0)

	res, err := Seed(context.Background(), b, SeedOptions{
		Triggers:         2,
		BodiesPerTrigger: 3,
		TokensPerBody:    2,
		RedeemEvery:      4,
		Now:              now,
	})
	require.NoError(t, err)

	assert.Len(t, res.TriggerIDs, 2)
	assert.Len(t, res.Bodies, 6)
	assert.Len(t, res.Statuses, 12)
	assert.Equal(t, 6, count(t, b, "SELECT COUNT(*) FROM grant_bodies"))
	assert.Equal(t, 12, count(t, b, "SELECT COUNT(*) FROM grant_spend_statuses"))
	assert.Equal(t, 3, count(t, b, "SELECT COUNT(*) FROM grant_spend_statuses WHERE redeemed_at = ?", now.Unix()))
	assert.Equal(t, 3, count(t, b, "SELECT COUNT(*) FROM grant_bodies WHERE trigger_id = ?", res.TriggerIDs[1]))

	assert.Equal(t, 9, count(t, b, "SELECT COUNT(*) FROM grant_spend_statuses WHERE redeemed_at IS NULL"))

	for _, s := range res.Statuses {
		assert.Equal(t, s.RedeemedAt != nil, s.Spent())
	}
}

func TestSeedIDsAreDeterministic(t *testing.T) {
	opts := SeedOptions{Triggers: 2, BodiesPerTrigger: 2, TokensPerBody: 1, Now: time.Unix(1700000000, 0)}

	first, err := Seed(context.Background(), setupTestDB(t), opts)
	require.NoError(t, err)
	second, err := Seed(context.Background(), setupTestDB(t), opts)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// A second run into the same store needs its own label.
	b := setupTestDB(t)
	_, err = Seed(context.Background(), b, opts)
	require.NoError(t, err)
	_, err = Seed(context.Background(), b, opts)
	assert.ErrorIs(t, err, types.ErrDatabase)

	opts.Label = "second"
	labeled, err := Seed(context.Background(), b, opts)
	require.NoError(t, err)
	assert.NotEqual(t, first.TriggerIDs, labeled.TriggerIDs)
	assert.Equal(t, 8, count(t, b, "SELECT COUNT(*) FROM grant_bodies"))
}

func TestSeedRejectsEmptyOptions(t *testing.T) {
	b := setupTestDB(t)
	_, err := Seed(context.Background(), b, SeedOptions{})
	assert.ErrorIs(t, err, types.ErrInvalidConfig)
	assert.Zero(t, count(t, b, "SELECT COUNT(*) FROM grant_bodies"))
}

func TestSeedWithoutSchemaFails(t *testing.T) {
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { b.Detach() })

	_, err := Seed(context.Background(), b, SeedOptions{Triggers: 1, BodiesPerTrigger: 1})
	assert.ErrorIs(t, err, types.ErrDatabase)
}
