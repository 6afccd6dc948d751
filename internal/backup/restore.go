package backup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mesh-intelligence/vgs/pkg/types"
)

// restoreState is a stage of the restore state machine.
type restoreState int

const (
	stateFetchingTableSchemas restoreState = iota
	stateFetchingIndexSchemas
	stateRewriting
	stateCommitted
	stateFailed
)

func (s restoreState) String() string {
	switch s {
	case stateFetchingTableSchemas:
		return "fetching_table_schemas"
	case stateFetchingIndexSchemas:
		return "fetching_index_schemas"
	case stateRewriting:
		return "rewriting"
	case stateCommitted:
		return "committed"
	case stateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s restoreState) terminal() bool {
	return s == stateCommitted || s == stateFailed
}

// restoreRun carries one RestoreVgs invocation through the state machine.
type restoreRun struct {
	c        *Coordinator
	logger   *slog.Logger
	state    restoreState
	tables   []capturedTable
	bodies   []types.GrantBody
	statuses []types.GrantSpendStatus

	statements int
	err        error
}

// RestoreVgs rewrites both grant tables and reinserts bodies and statuses,
// which normally come from a backup taken before the schema change. The
// rewrite is one store transaction: on error the tables are as they were.
// A failure while reading schemas returns before any statement is built.
func (c *Coordinator) RestoreVgs(ctx context.Context, bodies []types.GrantBody, statuses []types.GrantSpendStatus) error {
	runID := c.newRunID()
	ctx, span := c.tracer.Start(ctx, "backup.RestoreVgs", trace.WithAttributes(
		attribute.String("vgs.restore_id", runID),
		attribute.Int("vgs.bodies", len(bodies)),
		attribute.Int("vgs.spend_statuses", len(statuses)),
	))
	defer span.End()

	r := &restoreRun{
		c:        c,
		logger:   c.logger.With("restore_id", runID),
		state:    stateFetchingTableSchemas,
		bodies:   bodies,
		statuses: statuses,
	}
	r.logger.Info("restore started", "bodies", len(bodies), "spend_statuses", len(statuses))

	for !r.state.terminal() {
		r.transition(ctx)
	}

	c.metrics.ObserveRestore(r.statements, r.err)
	if r.err != nil {
		span.RecordError(r.err)
		span.SetStatus(codes.Error, r.err.Error())
		r.logger.Error("restore failed", "error", r.err)
		return r.err
	}
	r.logger.Info("restore committed", "statements", r.statements)
	return nil
}

// transition runs the current stage and moves to the state it returns.
func (r *restoreRun) transition(ctx context.Context) {
	from := r.state
	ctx, span := r.c.tracer.Start(ctx, "restore."+from.String())
	start := time.Now()

	var next restoreState
	switch from {
	case stateFetchingTableSchemas:
		next = r.fetchTableSchemas(ctx)
	case stateFetchingIndexSchemas:
		next = r.fetchIndexSchemas(ctx)
	case stateRewriting:
		next = r.rewrite(ctx)
	default:
		r.err = fmt.Errorf("restore: no transition from %s", from)
		next = stateFailed
	}

	r.c.metrics.ObserveStage(from.String(), time.Since(start))
	if next == stateFailed && r.err != nil {
		span.RecordError(r.err)
		span.SetStatus(codes.Error, r.err.Error())
	}
	span.End()

	r.logger.Debug("restore transition", "from", from.String(), "to", next.String())
	r.state = next
}

func (r *restoreRun) fail(err error) restoreState {
	r.err = err
	return stateFailed
}

func (r *restoreRun) fetchTableSchemas(ctx context.Context) restoreState {
	r.tables = make([]capturedTable, 0, len(types.StandardTableNames))
	for _, name := range types.StandardTableNames {
		schema, err := r.c.introspector.GetTableSchema(ctx, name)
		switch {
		case errors.Is(err, types.ErrSchemaNotFound):
			if !r.c.plan.For(name).canCreate() {
				return r.fail(fmt.Errorf("restore: table %s absent and no baseline supplied: %w", name, err))
			}
			r.logger.Warn("table absent, creating from plan", "table", name)
			r.tables = append(r.tables, capturedTable{name: name})
		case err != nil:
			return r.fail(fmt.Errorf("restore: %w", err))
		default:
			r.tables = append(r.tables, capturedTable{name: name, schema: schema, found: true})
		}
	}
	return stateFetchingIndexSchemas
}

func (r *restoreRun) fetchIndexSchemas(ctx context.Context) restoreState {
	for i := range r.tables {
		t := &r.tables[i]
		if !t.found {
			continue
		}
		indices, err := r.c.introspector.GetIndexSchemas(ctx, t.name)
		if err != nil {
			return r.fail(fmt.Errorf("restore: %w", err))
		}
		t.indices = indices
	}
	return stateRewriting
}

func (r *restoreRun) rewrite(ctx context.Context) restoreState {
	tx := assembleRestore(r.tables, r.c.plan, r.bodies, r.statuses)
	r.logger.Debug("submitting restore transaction", "statements", tx.Len())

	if _, err := r.c.exec.ExecuteTransaction(ctx, tx); err != nil {
		return r.fail(asDatabaseError(fmt.Errorf("restore: %w", err)))
	}
	r.statements = tx.Len()
	return stateCommitted
}
