// Package dashboard hosts the audit panel inside a live page: a shadow-DOM
// structure holding the display frame and the side panel, plus the viewport
// simulation applied to the frame for the selected device.
package dashboard

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/webyes/a11ycheck/report"
)

//go:embed shadow.js
var shadowJS []byte

// Config for creating a Bridge.
type Config struct {
	Page       *rod.Page
	PanelWidth int
	BundleURL  string
	CSSURL     string
	Devices    []report.DeviceProfile
	// OnShow is called after the dashboard becomes visible, to trigger the
	// initial audit. OnReset is called whenever overlay state becomes stale
	// (hide, device switch).
	OnShow  func(ctx context.Context)
	OnReset func(ctx context.Context)
	Logger  *slog.Logger
}

// Bridge owns the dashboard's visible/hidden lifecycle and the display
// frame's device simulation for one page.
type Bridge struct {
	page       *rod.Page
	panelWidth int
	bundleURL  string
	cssURL     string
	devices    []report.DeviceProfile
	onShow     func(ctx context.Context)
	onReset    func(ctx context.Context)
	logger     *slog.Logger

	mu       sync.Mutex
	injected bool
	visible  bool
	device   report.DeviceProfile
}

// NewBridge creates a Bridge. The shadow structure is built lazily on the
// first Show.
func NewBridge(cfg Config) *Bridge {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.PanelWidth <= 0 {
		cfg.PanelWidth = 400
	}
	devices := cfg.Devices
	if len(devices) == 0 {
		devices = report.DefaultDevices()
	}
	return &Bridge{
		page:       cfg.Page,
		panelWidth: cfg.PanelWidth,
		bundleURL:  cfg.BundleURL,
		cssURL:     cfg.CSSURL,
		devices:    devices,
		onShow:     cfg.OnShow,
		onReset:    cfg.OnReset,
		logger:     cfg.Logger,
		device:     devices[0],
	}
}

// Show makes the dashboard visible, building the shadow structure on first
// call, locks host page scrolling, sizes the display frame for the current
// device and triggers the initial audit.
func (b *Bridge) Show(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ensureInjectedLocked(ctx); err != nil {
		return err
	}

	opts := map[string]any{
		"panelWidth": b.panelWidth,
		"bundleUrl":  b.bundleURL,
		"cssUrl":     b.cssURL,
	}
	if _, err := b.page.Context(ctx).Eval(`o => window.__a11ycheckDashboard.show(o)`, opts); err != nil {
		return fmt.Errorf("dashboard: show: %w", err)
	}
	b.visible = true

	if err := b.applyViewportLocked(ctx); err != nil {
		return err
	}
	b.logger.Info("dashboard: shown", "device", b.device.Name)

	if b.onShow != nil {
		b.onShow(ctx)
	}
	return nil
}

// Hide conceals the dashboard, restores host page scrolling and resets
// overlay state.
func (b *Bridge) Hide(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.injected {
		return nil
	}

	if _, err := b.page.Context(ctx).Eval(`() => window.__a11ycheckDashboard.hide()`); err != nil {
		return fmt.Errorf("dashboard: hide: %w", err)
	}
	b.visible = false
	b.logger.Info("dashboard: hidden")

	if b.onReset != nil {
		b.onReset(ctx)
	}
	return nil
}

// Toggle shows or hides the dashboard depending on its current state.
func (b *Bridge) Toggle(ctx context.Context) error {
	b.mu.Lock()
	visible := b.visible
	b.mu.Unlock()
	if visible {
		return b.Hide(ctx)
	}
	return b.Show(ctx)
}

// Visible reports whether the dashboard is currently shown.
func (b *Bridge) Visible() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.visible
}

// Device returns the currently selected profile.
func (b *Bridge) Device() report.DeviceProfile {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.device
}

// SetDevice switches the display frame to the named profile: it recomputes
// dimensions and scale and resets stale overlay state. It does not re-audit.
func (b *Bridge) SetDevice(ctx context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var found bool
	for _, d := range b.devices {
		if d.Name == name {
			b.device = d
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("dashboard: unknown device %q", name)
	}

	if b.visible {
		if err := b.applyViewportLocked(ctx); err != nil {
			return err
		}
	}
	b.logger.Info("dashboard: device switched", "device", name)

	if b.onReset != nil {
		b.onReset(ctx)
	}
	return nil
}

// CurrentURL returns the display frame's current location when the dashboard
// is open and the frame is reachable, else the empty string. Audits target
// this URL when present, so in-frame navigation is audited, not the page the
// dashboard was opened on.
func (b *Bridge) CurrentURL(ctx context.Context) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.injected || !b.visible {
		return ""
	}
	res, err := b.page.Context(ctx).Eval(`() => window.__a11ycheckDashboard.frameURL()`)
	if err != nil {
		b.logger.Debug("dashboard: frame URL unavailable", "error", err)
		return ""
	}
	return res.Value.Str()
}

func (b *Bridge) ensureInjectedLocked(ctx context.Context) error {
	if b.injected {
		return nil
	}
	if _, err := b.page.Context(ctx).Eval(string(shadowJS)); err != nil {
		return fmt.Errorf("dashboard: inject host runtime: %w", err)
	}
	b.injected = true
	return nil
}

func (b *Bridge) applyViewportLocked(ctx context.Context) error {
	res, err := b.page.Context(ctx).Eval(
		`w => window.__a11ycheckDashboard.availableSize(w)`, b.panelWidth)
	if err != nil {
		return fmt.Errorf("dashboard: read window size: %w", err)
	}
	var avail struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}
	if err := json.Unmarshal([]byte(res.Value.Str()), &avail); err != nil {
		return fmt.Errorf("dashboard: parse window size: %w", err)
	}

	fit := FitViewport(b.device, avail.Width, avail.Height)
	v := map[string]any{
		"deviceWidth":  fit.DeviceWidth,
		"deviceHeight": fit.DeviceHeight,
		"scale":        fit.Scale,
	}
	if _, err := b.page.Context(ctx).Eval(`v => window.__a11ycheckDashboard.setViewport(v)`, v); err != nil {
		return fmt.Errorf("dashboard: apply viewport: %w", err)
	}
	b.logger.Debug("dashboard: viewport applied",
		"device", b.device.Name,
		"width", fit.ScaledWidth, "height", fit.ScaledHeight, "scale", fit.Scale)
	return nil
}
