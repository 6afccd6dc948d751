// Shared helpers for vgs CLI commands.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mesh-intelligence/vgs/internal/backup"
	"github.com/mesh-intelligence/vgs/internal/metrics"
	"github.com/mesh-intelligence/vgs/internal/paths"
	"github.com/mesh-intelligence/vgs/internal/sqlite"
	"github.com/mesh-intelligence/vgs/internal/telemetry"
	"github.com/mesh-intelligence/vgs/pkg/types"
)

// storeConfig builds the store Config from flags and config.yaml, following
// the paths precedence for the data directory.
func (a *app) storeConfig() (types.Config, error) {
	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, a.config.GetString(cfgKeyDataDir))
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
	}
	return types.Config{
		Backend:     a.config.GetString(cfgKeyBackend),
		DataDir:     dataDir,
		Database:    a.config.GetString(cfgKeyDatabase),
		BusyTimeout: a.config.GetInt(cfgKeyBusyTimeout),
	}.WithDefaults(), nil
}

// snapshotDir resolves where backups are written and restores read from.
func (a *app) snapshotDir(flag string) (string, error) {
	cfg, err := a.storeConfig()
	if err != nil {
		return "", err
	}
	return paths.ResolveSnapshotDir(flag, cfg.DataDir)
}

// loadPlan reads the restore plan named by flag, falling back to the plan
// key of config.yaml. The baseline definitions are always filled in so that
// a missing table can be created.
func (a *app) loadPlan(flag string) (backup.Plan, error) {
	path := flag
	if path == "" {
		path = a.config.GetString(cfgKeyPlan)
	}
	var plan backup.Plan
	if path != "" {
		p, err := backup.LoadPlan(path)
		if err != nil {
			return backup.Plan{}, userError("load plan", err)
		}
		plan = p
	}
	return plan.WithBaseline(sqlite.BaselineTables(), sqlite.BaselineIndices()), nil
}

// session is an attached store and a coordinator over it.
type session struct {
	store       *sqlite.Backend
	coord       *backup.Coordinator
	reg         *prometheus.Registry
	metricsFile string
	shutdown    func(context.Context) error
}

// open attaches the store and builds a coordinator with plan. With ensure
// set the baseline tables are created when missing. The caller must close
// the session.
func (a *app) open(ctx context.Context, plan backup.Plan, ensure bool) (*session, error) {
	cfg, err := a.storeConfig()
	if err != nil {
		return nil, sysError("resolve store config", err)
	}

	store := sqlite.NewBackend()
	if err := store.Attach(cfg); err != nil {
		if errors.Is(err, types.ErrInvalidConfig) {
			return nil, userError("attach store", err)
		}
		return nil, sysError("attach store", err)
	}
	a.logger.Debug("store attached", "path", store.Path())

	if ensure {
		if err := store.EnsureSchema(ctx); err != nil {
			store.Detach()
			return nil, sysError("create baseline tables", err)
		}
	}

	shutdown, err := telemetry.Setup(ctx, a.config.GetString(cfgKeyOtelEndpoint), Version)
	if err != nil {
		store.Detach()
		return nil, userError("set up tracing", err)
	}

	reg := prometheus.NewRegistry()
	coord, err := backup.New(store,
		backup.WithPlan(plan),
		backup.WithLogger(a.logger),
		backup.WithMetrics(metrics.New(reg)),
	)
	if err != nil {
		shutdown(ctx)
		store.Detach()
		return nil, userError("invalid plan", err)
	}

	metricsFile := a.flags.metricsFile
	if metricsFile == "" {
		metricsFile = a.config.GetString(cfgKeyMetricsFile)
	}
	return &session{store: store, coord: coord, reg: reg, metricsFile: metricsFile, shutdown: shutdown}, nil
}

// close writes the metrics textfile, when one is configured, flushes
// traces, and detaches the store.
func (s *session) close() error {
	var errs []error
	if err := s.shutdown(context.Background()); err != nil {
		errs = append(errs, fmt.Errorf("flush traces: %w", err))
	}
	if s.metricsFile != "" {
		if err := metrics.WriteTextfile(s.metricsFile, s.reg); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.store.Detach(); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return sysError("close store", err)
	}
	return nil
}

// finish closes s and returns the command error, or the close error when
// the command succeeded.
func (s *session) finish(err error) error {
	closeErr := s.close()
	if err != nil {
		return err
	}
	return closeErr
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
