package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mesh-intelligence/vgs/pkg/types"
)

// source describes how one table is read back into records.
type source[T any] struct {
	table   string
	key     string // linking identifier the Filter applies to
	columns []string
	decode  func(types.RawRow) (T, error)
}

var (
	bodySource = source[types.GrantBody]{
		table:   types.GrantBodiesTable,
		key:     types.ColTriggerID,
		columns: types.GrantBodyColumns,
		decode:  decodeBody,
	}
	spendStatusSource = source[types.GrantSpendStatus]{
		table:   types.GrantSpendStatusesTable,
		key:     types.ColTokenID,
		columns: types.GrantSpendStatusColumns,
		decode:  decodeSpendStatus,
	}
)

// BackupBodies returns the grant bodies whose trigger id passes filter, in
// store order. Tombstone rows are skipped. On failure the list is nil.
func (c *Coordinator) BackupBodies(ctx context.Context, filter Filter) ([]types.GrantBody, error) {
	return runBackup(ctx, c, bodySource, filter)
}

// BackupSpendStatuses returns the spend statuses whose token id passes
// filter, in store order. Tombstone rows are skipped. On failure the list is
// nil.
func (c *Coordinator) BackupSpendStatuses(ctx context.Context, filter Filter) ([]types.GrantSpendStatus, error) {
	return runBackup(ctx, c, spendStatusSource, filter)
}

func runBackup[T any](ctx context.Context, c *Coordinator, src source[T], filter Filter) (records []T, err error) {
	ctx, span := c.tracer.Start(ctx, "backup."+src.table, trace.WithAttributes(
		attribute.String("vgs.table", src.table),
		attribute.String("vgs.filter", filter.String()),
	))
	defer span.End()

	skipped := 0
	defer func() {
		c.metrics.ObserveBackup(src.table, len(records), skipped, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.logger.Error("backup failed", "table", src.table, "filter", filter.String(), "error", err)
			return
		}
		span.SetAttributes(attribute.Int("vgs.records", len(records)))
		c.logger.Info("backup finished", "table", src.table, "records", len(records), "tombstones", skipped)
	}()

	if filter.IsEmpty() {
		return []T{}, nil
	}

	query, args, err := selectSQL(src.table, src.columns, src.key, filter)
	if err != nil {
		return nil, fmt.Errorf("backup %s: %w", src.table, err)
	}
	var tx types.Transaction
	tx.Read(query, args...)

	resp, err := c.exec.ExecuteTransaction(ctx, tx)
	if err != nil {
		return nil, asDatabaseError(fmt.Errorf("backup %s: %w", src.table, err))
	}

	out := make([]T, 0, len(resp.Rows))
	for i, row := range resp.Rows {
		if IsAllAbsent(row) {
			skipped++
			c.logger.Debug("skipping tombstone row", "table", src.table, "row", i)
			continue
		}
		rec, err := src.decode(row)
		if err != nil {
			return nil, fmt.Errorf("backup %s row %d: %w", src.table, i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// selectSQL builds the read query for a table. A restricting filter binds
// its ids as one JSON array parameter expanded by json_each, so the set size
// is not limited by the store's bound-variable cap.
func selectSQL(table string, columns []string, key string, filter Filter) (string, []any, error) {
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(columns, ", "), table)
	if filter.IsAll() {
		return query, nil, nil
	}
	ids, err := json.Marshal(filter.IDs())
	if err != nil {
		return "", nil, fmt.Errorf("encoding filter ids: %w", err)
	}
	return fmt.Sprintf("%s WHERE %s IN (SELECT value FROM json_each(?))", query, key), []any{string(ids)}, nil
}
