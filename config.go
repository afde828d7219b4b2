package a11ycheck

import (
	"github.com/webyes/a11ycheck/internal/config"
)

// Config is the top-level a11ycheck configuration. Re-exported from internal.
type Config = config.Config

// BrowserConfig controls Chrome lifecycle.
type BrowserConfig = config.BrowserConfig

// CheckerConfig controls the on-page checker surface.
type CheckerConfig = config.CheckerConfig

// ResourceConfig locates runtime assets (rule engine, guidelines, dashboard).
type ResourceConfig = config.ResourceConfig

// TimeoutConfig bounds every asynchronous wait in the audit pipeline.
type TimeoutConfig = config.TimeoutConfig

// HistoryConfig enables SQLite persistence of audit runs.
type HistoryConfig = config.HistoryConfig

// SinkConfig defines an output backend.
type SinkConfig = config.SinkConfig

// LoadConfigFile reads a YAML configuration file.
func LoadConfigFile(path string) (*Config, error) {
	return config.LoadFile(path)
}
