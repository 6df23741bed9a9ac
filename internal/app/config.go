package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// ConfigPath points at the root monoplan.hcl or the workspace root
	// directory containing it.
	ConfigPath string
	// Task is the requested task name.
	Task string
	// Format is the report encoding: "text" or "json".
	Format string
	// SinglePackage restricts planning to the workspace root package and
	// forbids cross-package references.
	SinglePackage bool

	// CacheDir is the local cache directory, relative to the workspace
	// root unless absolute. Empty disables the local tier.
	CacheDir string
	// RemoteCacheURL is the remote cache artifact endpoint. Empty disables
	// the remote tier.
	RemoteCacheURL string
	// EnvFile optionally points at a dotenv file merged into the
	// environment snapshot (existing variables win).
	EnvFile string

	LogFormat   string
	LogLevel    string
	WorkerCount int
}

// NewConfig validates a Config and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ConfigPath == "" {
		return nil, errors.New("ConfigPath is a required configuration field and cannot be empty")
	}
	if cfg.Task == "" {
		return nil, errors.New("Task is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
