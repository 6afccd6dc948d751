package types

import "fmt"

// Config holds the parameters for opening a store.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// Database is the SQLite file name inside DataDir.
	Database string `json:"database" yaml:"database"`

	// BusyTimeout is the SQLite busy_timeout in milliseconds.
	BusyTimeout int `json:"busy_timeout" yaml:"busy_timeout"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// Defaults applied by WithDefaults.
const (
	DefaultDatabase    = "grants.db"
	DefaultBusyTimeout = 5000
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// WithDefaults returns a copy of c with empty fields filled in.
func (c Config) WithDefaults() Config {
	if c.Backend == "" {
		c.Backend = BackendSQLite
	}
	if c.Database == "" {
		c.Database = DefaultDatabase
	}
	if c.BusyTimeout == 0 {
		c.BusyTimeout = DefaultBusyTimeout
	}
	return c
}

// Validate checks that the Config is well-formed. Errors wrap ErrInvalidConfig.
func (c Config) Validate() error {
	if c.Backend == "" {
		return fmt.Errorf("%w: backend must not be empty", ErrInvalidConfig)
	}
	if !knownBackends[c.Backend] {
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, c.Backend)
	}
	if c.BusyTimeout < 0 {
		return fmt.Errorf("%w: busy timeout must not be negative", ErrInvalidConfig)
	}
	return nil
}
