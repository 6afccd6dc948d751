package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/vgs/pkg/types"
)

// File names inside a snapshot directory.
const (
	BodiesFile   = types.GrantBodiesTable + ".jsonl"
	StatusesFile = types.GrantSpendStatusesTable + ".jsonl"
)

// Snapshot is the content of one backup: every preserved body and spend
// status, in the order the store returned them.
type Snapshot struct {
	Bodies   []types.GrantBody
	Statuses []types.GrantSpendStatus
}

// Write stores s under dir, creating dir if needed. Each file is replaced
// atomically; a crash leaves either the old or the new file.
func Write(dir string, s Snapshot) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating snapshot dir: %w", err)
	}
	bodies, err := encode(s.Bodies)
	if err != nil {
		return fmt.Errorf("encoding bodies: %w", err)
	}
	if err := writeJSONL(filepath.Join(dir, BodiesFile), bodies); err != nil {
		return fmt.Errorf("writing %s: %w", BodiesFile, err)
	}
	statuses, err := encode(s.Statuses)
	if err != nil {
		return fmt.Errorf("encoding spend statuses: %w", err)
	}
	if err := writeJSONL(filepath.Join(dir, StatusesFile), statuses); err != nil {
		return fmt.Errorf("writing %s: %w", StatusesFile, err)
	}
	return nil
}

// Read loads a snapshot from dir. Both files must exist: a missing file is
// an error rather than an empty table, since restoring it would wipe data.
// Any line that does not decode into a record fails the read with
// ErrMalformed for the same reason.
func Read(dir string) (Snapshot, error) {
	bodies, err := decode(filepath.Join(dir, BodiesFile), func(b types.GrantBody) bool {
		return b.CredsID != ""
	})
	if err != nil {
		return Snapshot{}, err
	}
	statuses, err := decode(filepath.Join(dir, StatusesFile), func(s types.GrantSpendStatus) bool {
		return s.TokenID != ""
	})
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Bodies: bodies, Statuses: statuses}, nil
}

func encode[T any](records []T) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(records))
	for _, r := range records {
		b, err := json.Marshal(r)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// decode reads path and unmarshals each line into T. Unknown fields are
// ignored. A line of the wrong shape, or one whose record fails keyed, is
// ErrMalformed.
func decode[T any](path string, keyed func(T) bool) ([]T, error) {
	raw, err := readJSONL(path)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raw))
	for i, rec := range raw {
		var v T
		if err := json.Unmarshal(rec, &v); err != nil {
			return nil, fmt.Errorf("%s record %d: %w: %w", path, i+1, ErrMalformed, err)
		}
		if !keyed(v) {
			return nil, fmt.Errorf("%s record %d: %w: missing key", path, i+1, ErrMalformed)
		}
		out = append(out, v)
	}
	return out, nil
}
