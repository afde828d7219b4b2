package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.Checker.PanelWidth != 400 {
		t.Errorf("panel width: got %d, want 400", cfg.Checker.PanelWidth)
	}
	if cfg.Checker.IconPlacement != "right" {
		t.Errorf("icon placement: got %q, want right", cfg.Checker.IconPlacement)
	}
	if cfg.Timeouts.FrameLoad != 60*time.Second {
		t.Errorf("frame load: got %v, want 60s", cfg.Timeouts.FrameLoad)
	}
	if cfg.Timeouts.EngineLoad != 10*time.Second {
		t.Errorf("engine load: got %v, want 10s", cfg.Timeouts.EngineLoad)
	}
	if cfg.Timeouts.PollInterval != 200*time.Millisecond {
		t.Errorf("poll interval: got %v, want 200ms", cfg.Timeouts.PollInterval)
	}
	if cfg.Timeouts.PreAuditDelay != 500*time.Millisecond {
		t.Errorf("pre-audit delay: got %v, want 500ms", cfg.Timeouts.PreAuditDelay)
	}

	if len(cfg.Devices) != 2 {
		t.Fatalf("devices: got %d, want 2 defaults", len(cfg.Devices))
	}
	if cfg.Devices[0].Name != "desktop" || cfg.Devices[0].Width != 1200 || cfg.Devices[0].Height != 1080 {
		t.Errorf("desktop default: got %+v", cfg.Devices[0])
	}
	if cfg.Devices[1].Name != "mobile" || cfg.Devices[1].Width != 375 || cfg.Devices[1].Height != 667 {
		t.Errorf("mobile default: got %+v", cfg.Devices[1])
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a11ycheck.yaml")
	data := `
checker:
  enabled: true
  icon_placement: left
resources:
  base_url: https://assets.example.com/checker
devices:
  - name: desktop
    width: 1920
    height: 1080
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Checker.IconPlacement != "left" {
		t.Errorf("icon placement: got %q", cfg.Checker.IconPlacement)
	}
	// Unset fields fall back to defaults.
	if cfg.Timeouts.FrameLoad != 60*time.Second {
		t.Errorf("frame load default: got %v", cfg.Timeouts.FrameLoad)
	}
	if cfg.Timeouts.EngineLoad != 10*time.Second {
		t.Errorf("engine load default: got %v", cfg.Timeouts.EngineLoad)
	}
	if len(cfg.Devices) != 1 || cfg.Devices[0].Width != 1920 {
		t.Errorf("devices: got %+v", cfg.Devices)
	}
}

func TestResolveResource(t *testing.T) {
	cfg := Config{Resources: ResourceConfig{BaseURL: "https://assets.example.com/checker"}}

	cases := []struct {
		in   string
		want string
	}{
		{"js/axe.min.js", "https://assets.example.com/checker/js/axe.min.js"},
		{"https://cdn.example.com/axe.js", "https://cdn.example.com/axe.js"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := cfg.ResolveResource(tc.in); got != tc.want {
			t.Errorf("ResolveResource(%q): got %q, want %q", tc.in, got, tc.want)
		}
	}

	bare := Config{}
	if got := bare.ResolveResource("js/axe.min.js"); got != "js/axe.min.js" {
		t.Errorf("no base url: got %q", got)
	}
}
