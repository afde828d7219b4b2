// Package config handles a11ycheck configuration from YAML files.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/webyes/a11ycheck/report"
)

// Config is the top-level a11ycheck configuration.
type Config struct {
	Browser   BrowserConfig          `yaml:"browser"`
	Checker   CheckerConfig          `yaml:"checker"`
	Resources ResourceConfig         `yaml:"resources"`
	Devices   []report.DeviceProfile `yaml:"devices"`
	Timeouts  TimeoutConfig          `yaml:"timeouts"`
	History   HistoryConfig          `yaml:"history"`
	Sinks     []SinkConfig           `yaml:"sinks"`
}

// BrowserConfig controls Chrome lifecycle.
type BrowserConfig struct {
	Remote           string        `yaml:"remote"`
	MemoryLimit      int64         `yaml:"memory_limit"`
	RecycleInterval  time.Duration `yaml:"recycle_interval"`
	ResourceBlocking []string      `yaml:"resource_blocking"`
}

// CheckerConfig controls the on-page checker surface.
type CheckerConfig struct {
	Enabled       bool   `yaml:"enabled"`
	IconPlacement string `yaml:"icon_placement"` // left | right
	PanelWidth    int    `yaml:"panel_width"`
}

// ResourceConfig locates the assets the checker loads at runtime.
type ResourceConfig struct {
	BaseURL       string `yaml:"base_url"`
	EngineScript  string `yaml:"engine_script"`  // rule-engine script, relative to base_url when not absolute
	GuidelineJSON string `yaml:"guideline_json"` // guideline taxonomy, same resolution
	DashboardJS   string `yaml:"dashboard_js"`
	DashboardCSS  string `yaml:"dashboard_css"`
}

// TimeoutConfig bounds every asynchronous wait in the audit pipeline.
type TimeoutConfig struct {
	FrameLoad     time.Duration `yaml:"frame_load"`
	EngineLoad    time.Duration `yaml:"engine_load"`
	PollInterval  time.Duration `yaml:"poll_interval"`
	SettleDelay   time.Duration `yaml:"settle_delay"`
	PreAuditDelay time.Duration `yaml:"pre_audit_delay"`
}

// HistoryConfig enables SQLite persistence of audit runs.
type HistoryConfig struct {
	Path string `yaml:"path"` // empty disables history
}

// SinkConfig defines an output backend.
type SinkConfig struct {
	Type string `yaml:"type"` // stdout | webhook
	URL  string `yaml:"url"`  // for webhook
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills zero-valued fields with production defaults.
func (c *Config) ApplyDefaults() {
	if c.Browser.MemoryLimit <= 0 {
		c.Browser.MemoryLimit = 1 << 30
	}
	if c.Browser.RecycleInterval <= 0 {
		c.Browser.RecycleInterval = 4 * time.Hour
	}
	if c.Checker.IconPlacement == "" {
		c.Checker.IconPlacement = "right"
	}
	if c.Checker.PanelWidth <= 0 {
		c.Checker.PanelWidth = 400
	}
	if c.Resources.EngineScript == "" {
		c.Resources.EngineScript = "js/axe.min.js"
	}
	if c.Resources.GuidelineJSON == "" {
		c.Resources.GuidelineJSON = "data/wcag_guidelines.json"
	}
	if len(c.Devices) == 0 {
		c.Devices = report.DefaultDevices()
	}
	if c.Timeouts.FrameLoad <= 0 {
		c.Timeouts.FrameLoad = 60 * time.Second
	}
	if c.Timeouts.EngineLoad <= 0 {
		c.Timeouts.EngineLoad = 10 * time.Second
	}
	if c.Timeouts.PollInterval <= 0 {
		c.Timeouts.PollInterval = 200 * time.Millisecond
	}
	if c.Timeouts.SettleDelay <= 0 {
		c.Timeouts.SettleDelay = 100 * time.Millisecond
	}
	if c.Timeouts.PreAuditDelay <= 0 {
		c.Timeouts.PreAuditDelay = 500 * time.Millisecond
	}
}

// ResolveResource joins a resource path with the configured base URL, leaving
// absolute URLs untouched.
func (c *Config) ResolveResource(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	base := c.Resources.BaseURL
	if base == "" {
		return path
	}
	if base[len(base)-1] == '/' {
		return base + path
	}
	return base + "/" + path
}
