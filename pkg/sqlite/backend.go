// Package sqlite provides the public API for the SQLite grant store.
// This package exposes factory functions for the executor while keeping
// implementation details internal.
package sqlite

import (
	"context"

	"github.com/mesh-intelligence/vgs/internal/sqlite"
	"github.com/mesh-intelligence/vgs/pkg/types"
)

// NewBackend creates a new SQLite store instance.
// The store is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	store := sqlite.NewBackend()
//	err := store.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".vgs-db",
//	})
//	defer store.Detach()
func NewBackend() types.Store {
	return sqlite.NewBackend()
}

// Open attaches a store with config and creates the baseline grant tables
// when they are missing. The caller must Detach the returned store.
func Open(ctx context.Context, config types.Config) (types.Store, error) {
	b := sqlite.NewBackend()
	if err := b.Attach(config); err != nil {
		return nil, err
	}
	if err := b.EnsureSchema(ctx); err != nil {
		b.Detach()
		return nil, err
	}
	return b, nil
}
