package a11ycheck

import (
	"context"
	"fmt"

	"github.com/webyes/a11ycheck/internal/browser"
	"github.com/webyes/a11ycheck/internal/dashboard"
	"github.com/webyes/a11ycheck/internal/overlay"
	"github.com/webyes/a11ycheck/internal/sink"
	"github.com/webyes/a11ycheck/report"
)

// DashboardSession couples one live page with the side panel bridge and the
// issue marker overlay. Open at most one per audited page.
type DashboardSession struct {
	checker *Checker
	session *browser.Session
	bridge  *dashboard.Bridge
	overlay *overlay.Overlay

	// ctx spans the dashboard session, not the call that opened or showed it.
	// Background work (event loop, initial audit) hangs off it so a
	// request-scoped caller context cannot cancel an audit mid-flight.
	ctx    context.Context
	cancel context.CancelFunc
}

// OpenDashboard opens url in a host page and attaches the dashboard bridge
// and the marker overlay to it. The dashboard starts hidden; Show (or
// Toggle) builds the panel and triggers the initial audit.
func (c *Checker) OpenDashboard(ctx context.Context, url string) (*DashboardSession, error) {
	host := report.DeviceProfile{Name: "desktop", Width: 1200, Height: 1080}
	if len(c.cfg.Devices) > 0 {
		host = c.cfg.Devices[0]
	}

	s, err := c.openSession(ctx, url, host)
	if err != nil {
		return nil, fmt.Errorf("a11ycheck: open dashboard page: %w", err)
	}

	doc, err := overlay.NewDocument(ctx, s.Page, c.logger)
	if err != nil {
		s.Close()
		return nil, err
	}

	ds := &DashboardSession{checker: c, session: s}
	ds.ctx, ds.cancel = context.WithCancel(context.WithoutCancel(ctx))

	ds.overlay = overlay.New(overlay.Config{
		Document:  doc,
		Placement: c.cfg.Checker.IconPlacement,
		Listener:  ds.forwardMarkerEvent,
		Logger:    c.logger,
	})
	ds.overlay.Start(ds.ctx)

	ds.bridge = dashboard.NewBridge(dashboard.Config{
		Page:       s.Page,
		PanelWidth: c.cfg.Checker.PanelWidth,
		BundleURL:  c.cfg.ResolveResource(c.cfg.Resources.DashboardJS),
		CSSURL:     c.cfg.ResolveResource(c.cfg.Resources.DashboardCSS),
		Devices:    c.cfg.Devices,
		OnShow:     ds.runInitialAudit,
		OnReset: func(ctx context.Context) {
			if err := ds.overlay.Cleanup(ctx); err != nil {
				c.logger.Warn("a11ycheck: overlay cleanup failed", "error", err)
			}
		},
		Logger: c.logger,
	})
	return ds, nil
}

// Show makes the dashboard visible and triggers the initial audit.
func (ds *DashboardSession) Show(ctx context.Context) error { return ds.bridge.Show(ctx) }

// Hide conceals the dashboard and clears the overlay.
func (ds *DashboardSession) Hide(ctx context.Context) error { return ds.bridge.Hide(ctx) }

// Toggle flips dashboard visibility.
func (ds *DashboardSession) Toggle(ctx context.Context) error { return ds.bridge.Toggle(ctx) }

// SetDevice switches the display frame's simulated device. Marker positions
// are stale after a viewport change, so the overlay is cleared; it does not
// re-audit.
func (ds *DashboardSession) SetDevice(ctx context.Context, name string) error {
	return ds.bridge.SetDevice(ctx, name)
}

// Audit runs an audit targeting the display frame's current URL when the
// dashboard is open, so in-frame navigation is what gets audited. Falls back
// to the page the session was opened on.
func (ds *DashboardSession) Audit(ctx context.Context) (*report.AuditResult, error) {
	url := ds.bridge.CurrentURL(ctx)
	if url == "" {
		url = ds.session.URL
	}
	return ds.checker.Audit(ctx, url)
}

// MarkIssues replaces the overlay markers with one marker per issue item for
// the currently selected device. Unresolvable selectors are skipped.
func (ds *DashboardSession) MarkIssues(ctx context.Context, issues []report.EnrichedIssue) error {
	var markers []overlay.Marker
	i := 0
	for _, issue := range issues {
		for _, item := range issue.Items {
			markers = append(markers, overlay.Marker{Index: i, Selector: item.Selector})
			i++
		}
	}
	return ds.overlay.Mark(ctx, markers)
}

// ToggleMarker mirrors a list-UI selection: the same selection and deselection
// paths run whether the gesture started on the page or in the list.
func (ds *DashboardSession) ToggleMarker(ctx context.Context, index int) error {
	return ds.overlay.Toggle(ctx, index)
}

// Close clears the overlay, stops background work and closes the host page.
func (ds *DashboardSession) Close(ctx context.Context) {
	ds.cancel()
	if err := ds.overlay.Cleanup(ctx); err != nil {
		ds.checker.logger.Debug("a11ycheck: overlay cleanup on close", "error", err)
	}
	ds.session.Close()
}

// runInitialAudit is the Show hook. The audit runs on the session context:
// Show is often called from a request handler whose context ends with the
// response, long before the audit finishes.
func (ds *DashboardSession) runInitialAudit(context.Context) {
	go func() {
		result, err := ds.Audit(ds.ctx)
		if err != nil {
			ds.checker.logger.Error("a11ycheck: initial audit failed", "error", err)
			return
		}
		device := ds.bridge.Device().Name
		if err := ds.MarkIssues(ds.ctx, result.Issues[device]); err != nil {
			ds.checker.logger.Warn("a11ycheck: marking issues failed", "error", err)
		}
	}()
}

func (ds *DashboardSession) forwardMarkerEvent(e overlay.Event) {
	ev := sink.MarkerEvent{
		Type:     string(e.Kind),
		Index:    e.Index,
		Selector: e.Selector,
		Source:   sink.EventSource,
	}
	if err := ds.checker.sinkR.SendMarkerEvent(context.Background(), ev); err != nil {
		ds.checker.logger.Warn("a11ycheck: marker event delivery failed", "error", err)
	}
}
