// Config loading for the vgs CLI.
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"
	envPrefix      = "VGS"

	cfgKeyBackend      = "backend"
	cfgKeyDataDir      = "data_dir"
	cfgKeyDatabase     = "database"
	cfgKeyBusyTimeout  = "busy_timeout"
	cfgKeyPlan         = "plan"
	cfgKeyMetricsFile  = "metrics_file"
	cfgKeyLogLevel     = "log_level"
	cfgKeyOtelEndpoint = "otel_endpoint"

	defaultBackend = "sqlite"
)

// defaultConfigYAML is the content init writes to config.yaml.
const defaultConfigYAML = `# vgs configuration

# Backend selection
backend: sqlite

# Data directory (optional; overridable by --data-dir flag)
# data_dir:

# SQLite file name inside the data directory
# database: grants.db

# Restore plan applied by restore and migrate (optional)
# plan:

# Prometheus textfile written after each command (optional)
# metrics_file:

# debug, info, warn or error
# log_level: info

# OTLP/HTTP endpoint for restore and backup traces, e.g. http://localhost:4318
# otel_endpoint:
`

// envKeys are the settings that VGS_* environment variables override. The
// data directory is absent: its env fallback ranks below config.yaml and is
// resolved by the paths package.
var envKeys = []string{
	cfgKeyDatabase,
	cfgKeyBusyTimeout,
	cfgKeyPlan,
	cfgKeyMetricsFile,
	cfgKeyLogLevel,
	cfgKeyOtelEndpoint,
}

// loadConfig reads config.yaml from configDir using Viper. A missing file or
// directory is not an error.
func loadConfig(configDir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyBackend, defaultBackend)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	v.SetEnvPrefix(envPrefix)
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	return v, nil
}

// ensureDefaultConfigFile creates the config directory and a default
// config.yaml when they do not exist. An existing file is left alone.
func ensureDefaultConfigFile(configDir string) (bool, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return false, fmt.Errorf("create config dir: %w", err)
	}

	path := filepath.Join(configDir, configFileExt)
	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}
	if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	if err := os.WriteFile(path, []byte(defaultConfigYAML), 0o644); err != nil {
		return false, err
	}
	return true, nil
}
