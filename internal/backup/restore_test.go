package backup

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/mesh-intelligence/vgs/internal/metrics"
	"github.com/mesh-intelligence/vgs/pkg/types"
)

func TestRestoreStoreCallOrder(t *testing.T) {
	exec := newRecordingExecutor().withGrantTables()
	c := newTestCoordinator(t, exec)

	require.NoError(t, c.RestoreVgs(context.Background(), nil, nil))
	assert.Equal(t, []string{
		"QueryTableSchema:grant_bodies",
		"QueryTableSchema:grant_spend_statuses",
		"QueryIndexSchemas:grant_bodies",
		"QueryIndexSchemas:grant_spend_statuses",
		"ExecuteTransaction",
	}, exec.recordedCalls())
}

func TestRestoreMissingTableWithoutBaseline(t *testing.T) {
	exec := newRecordingExecutor().withGrantTables()
	delete(exec.tables, types.GrantSpendStatusesTable)
	c := newTestCoordinator(t, exec)

	err := c.RestoreVgs(context.Background(), []types.GrantBody{body1}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrSchemaNotFound)
	assert.Empty(t, exec.executedTransactions(), "no destructive statement may be submitted")
	assert.NotContains(t, exec.recordedCalls(), "QueryIndexSchemas:grant_bodies")
}

func TestRestoreMissingTableWithBaseline(t *testing.T) {
	exec := newRecordingExecutor().withGrantTables()
	delete(exec.tables, types.GrantSpendStatusesTable)
	delete(exec.indices, types.GrantSpendStatusesTable)
	plan := Plan{Tables: map[string]TablePlan{
		types.GrantSpendStatusesTable: {
			Baseline:        "CREATE TABLE grant_spend_statuses (token_id TEXT PRIMARY KEY, creds_id TEXT, redeemed_at INTEGER, redeem_type INTEGER)",
			BaselineIndices: []string{"CREATE INDEX idx_grant_spend_statuses_creds_id ON grant_spend_statuses(creds_id)"},
		},
	}}
	c := newTestCoordinator(t, exec, WithPlan(plan))

	require.NoError(t, c.RestoreVgs(context.Background(), nil, []types.GrantSpendStatus{status1}))
	assert.NotContains(t, exec.recordedCalls(), "QueryIndexSchemas:grant_spend_statuses")

	sqls := statementSQL(exec.executedTransactions()[0])
	assert.Contains(t, sqls, plan.Tables[types.GrantSpendStatusesTable].Baseline)
	assert.Equal(t, plan.Tables[types.GrantSpendStatusesTable].BaselineIndices[0], sqls[len(sqls)-1])
	assert.NotContains(t, sqls, `DROP TABLE IF EXISTS "grant_spend_statuses"`)
}

func TestRestoreSchemaFetchFailure(t *testing.T) {
	exec := newRecordingExecutor().withGrantTables()
	exec.tableErr = errors.New("disk I/O error")
	c := newTestCoordinator(t, exec)

	err := c.RestoreVgs(context.Background(), []types.GrantBody{body1}, nil)
	assert.ErrorIs(t, err, types.ErrDatabase)
	assert.Empty(t, exec.executedTransactions())
}

func TestRestoreIndexFetchFailure(t *testing.T) {
	exec := newRecordingExecutor().withGrantTables()
	exec.indexErr = errors.New("database is locked")
	c := newTestCoordinator(t, exec)

	err := c.RestoreVgs(context.Background(), []types.GrantBody{body1}, []types.GrantSpendStatus{status1})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrDatabase)
	assert.NotContains(t, exec.recordedCalls(), "ExecuteTransaction")
}

func TestRestoreTransactionFailure(t *testing.T) {
	exec := newRecordingExecutor().withGrantTables()
	exec.execErr = errors.New("UNIQUE constraint failed: grant_bodies.creds_id")
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	c := newTestCoordinator(t, exec, WithMetrics(m))

	err := c.RestoreVgs(context.Background(), []types.GrantBody{body1, body1}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrDatabase)
	assert.ErrorContains(t, err, "UNIQUE constraint failed")
	assert.Len(t, exec.executedTransactions(), 1)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RestoresTotal.WithLabelValues(metrics.OutcomeError)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.RestoreStatementsTotal))
}

func TestRestoreMetrics(t *testing.T) {
	exec := newRecordingExecutor().withGrantTables()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	c := newTestCoordinator(t, exec, WithMetrics(m))

	require.NoError(t, c.RestoreVgs(context.Background(), []types.GrantBody{body1}, nil))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RestoresTotal.WithLabelValues(metrics.OutcomeOK)))
	// 2 index drops, 4 table statements, 1 insert, 2 index creates.
	assert.Equal(t, 9.0, testutil.ToFloat64(m.RestoreStatementsTotal))
	assert.Equal(t, 3, testutil.CollectAndCount(m.RestoreStageSeconds))
}

func TestRestoreSpans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	exec := newRecordingExecutor().withGrantTables()
	exec.indexErr = errors.New("database is locked")
	c := newTestCoordinator(t, exec, WithTracer(tp.Tracer("test")))

	require.Error(t, c.RestoreVgs(context.Background(), nil, nil))

	ended := sr.Ended()
	names := make([]string, len(ended))
	for i, s := range ended {
		names[i] = s.Name()
	}
	assert.Equal(t, []string{
		"restore.fetching_table_schemas",
		"restore.fetching_index_schemas",
		"backup.RestoreVgs",
	}, names)
	assert.Equal(t, codes.Unset, ended[0].Status().Code)
	assert.Equal(t, codes.Error, ended[1].Status().Code)
	assert.Equal(t, codes.Error, ended[2].Status().Code)
}

func TestRestoreStateNames(t *testing.T) {
	assert.Equal(t, "fetching_table_schemas", stateFetchingTableSchemas.String())
	assert.Equal(t, "fetching_index_schemas", stateFetchingIndexSchemas.String())
	assert.Equal(t, "rewriting", stateRewriting.String())
	assert.Equal(t, "committed", stateCommitted.String())
	assert.Equal(t, "failed", stateFailed.String())
	assert.True(t, stateCommitted.terminal())
	assert.False(t, stateRewriting.terminal())
}
