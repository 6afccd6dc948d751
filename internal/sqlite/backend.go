package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/vgs/pkg/types"
)

// Backend implements types.Store over a single SQLite database file.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	path     string
	db       *sql.DB
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{}
}

// Attach opens the database file named by config, creating DataDir if
// needed, and applies connection pragmas. Existing tables are left as they
// are; call EnsureSchema to create the baseline tables.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	config = config.WithDefaults()
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	path := filepath.Join(dataDir, config.Database)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %w", types.ErrDatabase, path, err)
	}

	// One connection: pragmas stick, and store access is serialized.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db, config.BusyTimeout); err != nil {
		db.Close()
		return err
	}

	b.db = db
	b.path = path
	b.config = config
	b.attached = true
	return nil
}

// Detach closes the database. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	err := b.db.Close()
	b.db = nil
	b.attached = false
	if err != nil {
		return fmt.Errorf("%w: closing database: %w", types.ErrDatabase, err)
	}
	return nil
}

// Path returns the database file path, or "" when detached.
func (b *Backend) Path() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.path
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution: writes through DB bypass the transaction contract.
func (b *Backend) DB() *sql.DB {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.db
}

// EnsureSchema creates the baseline grant tables and indices when they do
// not exist. Existing definitions are not touched.
func (b *Backend) EnsureSchema(ctx context.Context) error {
	var tx types.Transaction
	for _, stmt := range ensureDDL() {
		tx.Execute(stmt)
	}
	_, err := b.ExecuteTransaction(ctx, tx)
	return err
}

// ExecuteTransaction runs every statement of txn inside one SQLite
// transaction and commits only if all of them succeed. Rows produced by Read
// statements are returned in statement order.
func (b *Backend) ExecuteTransaction(ctx context.Context, txn types.Transaction) (types.Response, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return types.Response{}, types.ErrDetached
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Response{}, fmt.Errorf("%w: beginning transaction: %w", types.ErrDatabase, err)
	}
	defer tx.Rollback()

	var resp types.Response
	for i, stmt := range txn.Statements {
		switch stmt.Kind {
		case types.StatementExecute:
			if _, err := tx.ExecContext(ctx, stmt.SQL, stmt.Args...); err != nil {
				return types.Response{}, fmt.Errorf("%w: statement %d: %w", types.ErrDatabase, i, err)
			}
		case types.StatementRead:
			rows, err := tx.QueryContext(ctx, stmt.SQL, stmt.Args...)
			if err != nil {
				return types.Response{}, fmt.Errorf("%w: statement %d: %w", types.ErrDatabase, i, err)
			}
			out, err := scanRows(rows)
			rows.Close()
			if err != nil {
				return types.Response{}, fmt.Errorf("%w: statement %d: %w", types.ErrDatabase, i, err)
			}
			resp.Rows = append(resp.Rows, out...)
		default:
			return types.Response{}, fmt.Errorf("%w: statement %d: unknown kind %d", types.ErrDatabase, i, stmt.Kind)
		}
	}

	if err := tx.Commit(); err != nil {
		return types.Response{}, fmt.Errorf("%w: committing transaction: %w", types.ErrDatabase, err)
	}
	return resp, nil
}

// QueryTableSchema reads the CREATE TABLE text for name from sqlite_master.
// Returns ErrSchemaNotFound when the table does not exist.
func (b *Backend) QueryTableSchema(ctx context.Context, name string) (types.TableSchema, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return types.TableSchema{}, types.ErrDetached
	}

	var ddl sql.NullString
	err := b.db.QueryRowContext(ctx,
		`SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&ddl)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !ddl.Valid) {
		return types.TableSchema{}, fmt.Errorf("%w: table %s", types.ErrSchemaNotFound, name)
	}
	if err != nil {
		return types.TableSchema{}, fmt.Errorf("%w: reading schema of %s: %w", types.ErrDatabase, name, err)
	}
	return types.TableSchema{Name: name, SQL: ddl.String}, nil
}

// QueryIndexSchemas lists the explicit indices of table from sqlite_master.
// Automatic indices backing PRIMARY KEY and UNIQUE constraints have no
// statement text and are skipped.
func (b *Backend) QueryIndexSchemas(ctx context.Context, table string) ([]types.IndexSchema, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDetached
	}

	rows, err := b.db.QueryContext(ctx, `
		SELECT name, tbl_name, sql FROM sqlite_master
		WHERE type = 'index' AND tbl_name = ? AND sql IS NOT NULL
		ORDER BY name`, table)
	if err != nil {
		return nil, fmt.Errorf("%w: reading indices of %s: %w", types.ErrDatabase, table, err)
	}
	defer rows.Close()

	var out []types.IndexSchema
	for rows.Next() {
		var idx types.IndexSchema
		if err := rows.Scan(&idx.Name, &idx.Table, &idx.SQL); err != nil {
			return nil, fmt.Errorf("%w: scanning index of %s: %w", types.ErrDatabase, table, err)
		}
		out = append(out, idx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading indices of %s: %w", types.ErrDatabase, table, err)
	}
	return out, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB, busyTimeout int) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", busyTimeout),
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("%w: executing %q: %w", types.ErrDatabase, pragma, err)
		}
	}
	return nil
}

var _ types.Store = (*Backend)(nil)
