package backup

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/mesh-intelligence/vgs/internal/metrics"
	"github.com/mesh-intelligence/vgs/pkg/types"
)

const tracerName = "github.com/mesh-intelligence/vgs/internal/backup"

// Coordinator runs backups and restores of the grant tables against one
// store. It keeps no record data between calls and may be shared by
// goroutines; callers must not overlap a restore with other access to the
// same tables.
type Coordinator struct {
	exec         types.Executor
	introspector *Introspector
	plan         Plan
	logger       *slog.Logger
	metrics      *metrics.Collector
	tracer       trace.Tracer
	newRunID     func() string
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithPlan sets the restore plan. The default plan restores every table in
// ModeCaptured and has no baselines.
func WithPlan(p Plan) Option {
	return func(c *Coordinator) { c.plan = p }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics sets the prometheus collectors.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *Coordinator) { c.metrics = m }
}

// WithTracer sets the tracer used for backup and restore spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *Coordinator) {
		if t != nil {
			c.tracer = t
		}
	}
}

// New returns a Coordinator over exec. Returns an error wrapping
// ErrInvalidPlan when the plan does not validate.
func New(exec types.Executor, opts ...Option) (*Coordinator, error) {
	if exec == nil {
		return nil, errors.New("backup: nil executor")
	}
	c := &Coordinator{
		exec:     exec,
		logger:   slog.Default(),
		tracer:   otel.Tracer(tracerName),
		newRunID: func() string { return uuid.Must(uuid.NewV7()).String() },
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.plan.Validate(); err != nil {
		return nil, err
	}
	c.introspector = NewIntrospector(exec, c.logger)
	return c, nil
}

// GetTableSchema returns the live CREATE TABLE text of name.
func (c *Coordinator) GetTableSchema(ctx context.Context, name string) (types.TableSchema, error) {
	return c.introspector.GetTableSchema(ctx, name)
}

// GetIndexSchemas returns the live explicit indices of table.
func (c *Coordinator) GetIndexSchemas(ctx context.Context, table string) ([]types.IndexSchema, error) {
	return c.introspector.GetIndexSchemas(ctx, table)
}
