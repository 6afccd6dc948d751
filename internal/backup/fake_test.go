package backup

import (
	"context"
	"fmt"
	"sync"

	"github.com/mesh-intelligence/vgs/pkg/types"
)

// recordingExecutor is a types.Executor double. It serves canned schemas and
// rows and records every call and every transaction it is handed.
type recordingExecutor struct {
	mu sync.Mutex

	tables  map[string]types.TableSchema
	indices map[string][]types.IndexSchema
	rows    []types.RawRow

	tableErr error
	indexErr error
	execErr  error

	calls        []string
	transactions []types.Transaction
}

func newRecordingExecutor() *recordingExecutor {
	return &recordingExecutor{
		tables:  make(map[string]types.TableSchema),
		indices: make(map[string][]types.IndexSchema),
	}
}

func (f *recordingExecutor) ExecuteTransaction(_ context.Context, tx types.Transaction) (types.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "ExecuteTransaction")
	f.transactions = append(f.transactions, tx)
	if f.execErr != nil {
		return types.Response{}, f.execErr
	}
	return types.Response{Rows: f.rows}, nil
}

func (f *recordingExecutor) QueryTableSchema(_ context.Context, name string) (types.TableSchema, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "QueryTableSchema:"+name)
	if f.tableErr != nil {
		return types.TableSchema{}, f.tableErr
	}
	s, ok := f.tables[name]
	if !ok {
		return types.TableSchema{}, fmt.Errorf("%w: table %s", types.ErrSchemaNotFound, name)
	}
	return s, nil
}

func (f *recordingExecutor) QueryIndexSchemas(_ context.Context, table string) ([]types.IndexSchema, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "QueryIndexSchemas:"+table)
	if f.indexErr != nil {
		return nil, f.indexErr
	}
	return f.indices[table], nil
}

// withGrantTables installs single-line schemas and one index per table.
func (f *recordingExecutor) withGrantTables() *recordingExecutor {
	f.tables[types.GrantBodiesTable] = types.TableSchema{
		Name: types.GrantBodiesTable,
		SQL:  "CREATE TABLE grant_bodies (creds_id TEXT PRIMARY KEY, trigger_id TEXT, trigger_type INTEGER, creds TEXT, blinded_creds TEXT, signed_creds TEXT, public_key TEXT, batch_proof TEXT, status INTEGER)",
	}
	f.tables[types.GrantSpendStatusesTable] = types.TableSchema{
		Name: types.GrantSpendStatusesTable,
		SQL:  "CREATE TABLE grant_spend_statuses (token_id TEXT PRIMARY KEY, creds_id TEXT, redeemed_at INTEGER, redeem_type INTEGER)",
	}
	f.indices[types.GrantBodiesTable] = []types.IndexSchema{{
		Name:  "idx_grant_bodies_trigger_id",
		Table: types.GrantBodiesTable,
		SQL:   "CREATE INDEX idx_grant_bodies_trigger_id ON grant_bodies(trigger_id)",
	}}
	f.indices[types.GrantSpendStatusesTable] = []types.IndexSchema{{
		Name:  "idx_grant_spend_statuses_creds_id",
		Table: types.GrantSpendStatusesTable,
		SQL:   "CREATE INDEX idx_grant_spend_statuses_creds_id ON grant_spend_statuses(creds_id)",
	}}
	return f
}

func (f *recordingExecutor) executedTransactions() []types.Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]types.Transaction(nil), f.transactions...)
}

func (f *recordingExecutor) recordedCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// bodyRow builds a grant_bodies RawRow in column order.
func bodyRow(b types.GrantBody) types.RawRow {
	return types.RawRow{Columns: types.GrantBodyColumns, Values: b.Values()}
}

// nullRow builds a RawRow with every column NULL.
func nullRow(columns []string) types.RawRow {
	return types.RawRow{Columns: columns, Values: make([]any, len(columns))}
}
