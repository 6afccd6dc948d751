// Package paths resolves where vgs keeps its configuration, its SQLite
// database, and the JSONL snapshots written by backup.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// CWD-relative directory names used when nothing else is configured.
const (
	DefaultConfigDirName   = ".vgs"
	DefaultDataDirName     = ".vgs-db"
	DefaultSnapshotDirName = "snapshots"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "VGS_CONFIG_DIR"
	EnvDataDir   = "VGS_DATA_DIR"
)

const appDirName = "vgs"

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/vgs (fallback ~/.config/vgs)
// macOS:   ~/Library/Application Support/vgs
// Windows: %APPDATA%/vgs
func DefaultConfigDir() (string, error) {
	return platformAppDir("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the platform-specific default data directory.
//
// Linux:   $XDG_DATA_HOME/vgs (fallback ~/.local/share/vgs)
// macOS and Windows share the config location.
func DefaultDataDir() (string, error) {
	return platformAppDir("XDG_DATA_HOME", ".local", "share")
}

// platformAppDir resolves the app directory under an XDG base on Linux and
// under os.UserConfigDir elsewhere.
func platformAppDir(xdgEnv string, homeFallback ...string) (string, error) {
	if runtime.GOOS != "linux" {
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, appDirName), nil
	}
	if xdg := os.Getenv(xdgEnv); xdg != "" {
		return filepath.Join(xdg, appDirName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	parts := append([]string{home}, homeFallback...)
	return filepath.Join(append(parts, appDirName)...), nil
}

// ResolveConfigDir returns the configuration directory following the precedence
// chain: flag > VGS_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > config.yaml value > VGS_DATA_DIR env > $(CWD)/.vgs-db.
func ResolveDataDir(flag, configYAMLValue string) (string, error) {
	for _, candidate := range []string{flag, configYAMLValue, os.Getenv(EnvDataDir)} {
		if candidate != "" {
			return filepath.Abs(candidate)
		}
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}

// ResolveSnapshotDir returns the directory backup snapshots are written to.
// An explicit dir wins; otherwise snapshots live under the data directory.
func ResolveSnapshotDir(dir, dataDir string) (string, error) {
	if dir != "" {
		return filepath.Abs(dir)
	}
	return filepath.Join(dataDir, DefaultSnapshotDirName), nil
}
