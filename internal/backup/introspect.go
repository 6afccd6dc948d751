package backup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/mesh-intelligence/vgs/pkg/types"
)

// Introspector reads the live table and index definitions from the store.
type Introspector struct {
	exec   types.Executor
	logger *slog.Logger
}

// NewIntrospector returns an Introspector over exec. A nil logger uses
// slog.Default().
func NewIntrospector(exec types.Executor, logger *slog.Logger) *Introspector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Introspector{exec: exec, logger: logger}
}

// GetTableSchema returns the CREATE TABLE text currently in effect for name.
// An absent table is reported as ErrSchemaNotFound, not ErrDatabase.
func (i *Introspector) GetTableSchema(ctx context.Context, name string) (types.TableSchema, error) {
	if name == "" {
		return types.TableSchema{}, fmt.Errorf("%w: empty table name", types.ErrInvalidTable)
	}

	schema, err := i.exec.QueryTableSchema(ctx, name)
	if errors.Is(err, types.ErrSchemaNotFound) {
		i.logger.Debug("table schema not found", "table", name)
		return types.TableSchema{}, err
	}
	if err != nil {
		return types.TableSchema{}, asDatabaseError(fmt.Errorf("table schema of %s: %w", name, err))
	}
	if strings.TrimSpace(schema.SQL) == "" {
		return types.TableSchema{}, fmt.Errorf("%w: table %s has no definition", types.ErrSchemaNotFound, name)
	}
	if schema.Name == "" {
		schema.Name = name
	}
	return schema, nil
}

// GetIndexSchemas returns the explicit indices of table ordered by name.
// Entries without statement text are dropped; they cannot be recreated.
func (i *Introspector) GetIndexSchemas(ctx context.Context, table string) ([]types.IndexSchema, error) {
	if table == "" {
		return nil, fmt.Errorf("%w: empty table name", types.ErrInvalidTable)
	}

	indices, err := i.exec.QueryIndexSchemas(ctx, table)
	if err != nil {
		return nil, asDatabaseError(fmt.Errorf("index schemas of %s: %w", table, err))
	}

	out := make([]types.IndexSchema, 0, len(indices))
	for _, idx := range indices {
		if strings.TrimSpace(idx.SQL) == "" {
			continue
		}
		if idx.Table == "" {
			idx.Table = table
		}
		out = append(out, idx)
	}
	slices.SortFunc(out, func(a, b types.IndexSchema) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out, nil
}

// asDatabaseError makes sure err matches ErrDatabase.
func asDatabaseError(err error) error {
	if err == nil || errors.Is(err, types.ErrDatabase) {
		return err
	}
	return fmt.Errorf("%w: %w", types.ErrDatabase, err)
}
