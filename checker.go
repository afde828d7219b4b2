// Package a11ycheck runs multi-viewport accessibility audits against live
// pages using a disposable headless Chrome. Each configured device profile
// gets its own viewport session, the axe-core rule engine is injected and
// executed inside it, and raw violations are enriched with WCAG guideline
// metadata into one combined result.
//
// a11ycheck audits, it does not fix. Results are emitted to sinks (stdout,
// webhook, callback) and optionally persisted as run history.
package a11ycheck

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/webyes/a11ycheck/internal/browser"
	"github.com/webyes/a11ycheck/internal/config"
	"github.com/webyes/a11ycheck/internal/engine"
	"github.com/webyes/a11ycheck/internal/guideline"
	"github.com/webyes/a11ycheck/internal/history"
	"github.com/webyes/a11ycheck/internal/sink"
	"github.com/webyes/a11ycheck/report"
)

// Checker is the top-level orchestrator. It manages the browser, the
// guideline taxonomy, sinks and run history. Create one per instance.
type Checker struct {
	cfg    *config.Config
	mgr    *browser.Manager
	loader *guideline.Loader
	orch   *engine.Orchestrator
	sinkR  *sink.Router
	store  *history.Store
	logger *slog.Logger

	mu      sync.Mutex
	started bool
}

// New creates a Checker from configuration.
func New(cfg *config.Config, logger *slog.Logger, sinks ...sink.Sink) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.ApplyDefaults()

	mgr := browser.NewManager(browser.Config{
		RemoteURL:        cfg.Browser.Remote,
		MemoryLimit:      cfg.Browser.MemoryLimit,
		RecycleInterval:  cfg.Browser.RecycleInterval,
		ResourceBlocking: cfg.Browser.ResourceBlocking,
		Logger:           logger,
	})

	c := &Checker{
		cfg:    cfg,
		mgr:    mgr,
		loader: guideline.NewLoader(cfg.ResolveResource(cfg.Resources.GuidelineJSON), logger),
		sinkR:  sink.NewRouter(logger, sinks...),
		logger: logger,
	}

	scanner := engine.NewAxeScanner(
		cfg.ResolveResource(cfg.Resources.EngineScript), cfg.Timeouts.EngineLoad)
	c.orch = engine.NewOrchestrator(c.openSession, scanner, logger)
	return c
}

// Start launches the browser and opens the history store when configured.
func (c *Checker) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return nil
	}

	if _, err := c.mgr.Start(ctx); err != nil {
		return fmt.Errorf("a11ycheck: start browser: %w", err)
	}

	if c.cfg.History.Path != "" {
		store, err := history.Open(c.cfg.History.Path, c.logger)
		if err != nil {
			c.mgr.Close()
			return fmt.Errorf("a11ycheck: open history: %w", err)
		}
		c.store = store
	}

	c.started = true
	c.logger.Info("a11ycheck: started",
		"devices", len(c.cfg.Devices), "history", c.cfg.History.Path != "")
	return nil
}

// Stop sweeps stray sessions, closes the browser, the sinks and the history
// store.
func (c *Checker) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return nil
	}
	c.started = false

	c.mgr.Sweep()
	var firstErr error
	if err := c.mgr.Close(); err != nil {
		firstErr = err
	}
	if err := c.sinkR.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := c.store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	c.logger.Info("a11ycheck: stopped")
	return firstErr
}

// Audit runs the full multi-device audit against url: one viewport session
// per configured profile, sequentially, in profile order. The first failing
// device aborts the run. Results are enriched, sent to the sinks and saved
// to history.
func (c *Checker) Audit(ctx context.Context, url string) (*report.AuditResult, error) {
	if url == "" {
		return nil, fmt.Errorf("a11ycheck: audit: empty URL")
	}

	// Let late-loading widgets settle before the first session opens,
	// matching the delay applied before in-page audits.
	if err := sleepCtx(ctx, c.cfg.Timeouts.PreAuditDelay); err != nil {
		return nil, err
	}

	startedAt := time.Now().UnixMilli()
	raw, err := c.orch.RunAll(ctx, c.cfg.Devices, url)
	if err != nil {
		return nil, err
	}

	guidelines := c.loader.Load(ctx)
	result := &report.AuditResult{
		ID:        uuid.NewString(),
		URL:       url,
		StartedAt: startedAt,
		Devices:   c.cfg.Devices,
		Issues:    make(map[string][]report.EnrichedIssue, len(raw)),
		Raw:       raw,
	}
	for device, violations := range raw {
		result.Issues[device] = guideline.Enrich(violations, device, guidelines)
	}

	c.logger.Info("a11ycheck: audit complete",
		"id", result.ID, "url", url, "issues", result.IssueCount())

	if err := c.sinkR.SendResult(ctx, result); err != nil {
		c.logger.Warn("a11ycheck: sink delivery failed", "error", err)
	}
	if err := c.store.Save(ctx, result); err != nil {
		c.logger.Warn("a11ycheck: history save failed", "error", err)
	}
	return result, nil
}

// Guidelines returns the loaded taxonomy, fetching it on first use.
func (c *Checker) Guidelines(ctx context.Context) map[string]guideline.Guideline {
	return c.loader.Load(ctx)
}

// History returns the run history store, nil when history is disabled.
func (c *Checker) History() *history.Store { return c.store }

func (c *Checker) openSession(ctx context.Context, url string, device report.DeviceProfile) (*browser.Session, error) {
	return browser.OpenSession(ctx, c.mgr, url, device, browser.Timeouts{
		FrameLoad:    c.cfg.Timeouts.FrameLoad,
		PollInterval: c.cfg.Timeouts.PollInterval,
		SettleDelay:  c.cfg.Timeouts.SettleDelay,
	})
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
