package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/webyes/a11ycheck/internal/browser"
	"github.com/webyes/a11ycheck/report"
)

// DeviceError wraps a per-device audit failure so callers can attribute the
// failing profile without losing the underlying cause.
type DeviceError struct {
	Device string
	Err    error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("engine: %s audit: %v", e.Device, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// Scanner abstracts the inject-and-run step so the orchestrator can be tested
// without a browser. The production scanner drives axe-core through Inject
// and Run.
type Scanner interface {
	Scan(ctx context.Context, s *browser.Session) ([]report.RawViolation, error)
}

// axeScanner is the production Scanner.
type axeScanner struct {
	scriptURL   string
	loadTimeout time.Duration
}

func (a *axeScanner) Scan(ctx context.Context, s *browser.Session) ([]report.RawViolation, error) {
	if err := Inject(ctx, s, a.scriptURL, a.loadTimeout); err != nil {
		return nil, err
	}
	return Run(ctx, s)
}

// NewAxeScanner returns the production Scanner loading the engine script
// from scriptURL.
func NewAxeScanner(scriptURL string, loadTimeout time.Duration) Scanner {
	return &axeScanner{scriptURL: scriptURL, loadTimeout: loadTimeout}
}

// Opener abstracts session creation; implemented by the browser manager in
// production and by fakes in tests.
type Opener func(ctx context.Context, url string, device report.DeviceProfile) (*browser.Session, error)

// Orchestrator runs the rule engine across configured device profiles and
// assembles one combined raw result.
type Orchestrator struct {
	open    Opener
	scanner Scanner
	logger  *slog.Logger
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(open Opener, scanner Scanner, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{open: open, scanner: scanner, logger: logger}
}

// RunForDevice opens a session at the device viewport, scans it, and closes
// the session regardless of outcome.
func (o *Orchestrator) RunForDevice(ctx context.Context, device report.DeviceProfile, url string) ([]report.RawViolation, error) {
	start := time.Now()

	s, err := o.open(ctx, url, device)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	violations, err := o.scanner.Scan(ctx, s)
	if err != nil {
		return nil, err
	}

	o.logger.Info("engine: device scan complete",
		"device", device.Name, "url", url,
		"violations", len(violations), "elapsed", time.Since(start))
	return violations, nil
}

// RunAll scans every profile in configured order, sequentially. Sequential
// execution avoids two off-screen sessions contending for layout resources
// and keeps error attribution unambiguous. The first failing device aborts
// the run; there are no partial results.
func (o *Orchestrator) RunAll(ctx context.Context, devices []report.DeviceProfile, url string) (map[string][]report.RawViolation, error) {
	results := make(map[string][]report.RawViolation, len(devices))
	for _, device := range devices {
		violations, err := o.RunForDevice(ctx, device, url)
		if err != nil {
			return nil, &DeviceError{Device: device.Name, Err: err}
		}
		results[device.Name] = violations
	}
	return results, nil
}
