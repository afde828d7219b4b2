package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/webyes/a11ycheck/internal/poll"
	"github.com/webyes/a11ycheck/report"
)

// Timeouts bounds the waits involved in opening a session.
type Timeouts struct {
	// FrameLoad bounds the whole open-to-ready wait. Default: 60s.
	FrameLoad time.Duration
	// PollInterval is the readiness check cadence. Default: 200ms.
	PollInterval time.Duration
	// SettleDelay is applied after the native load event before the fast-path
	// readiness check, to accommodate deferred DOM construction. Default: 100ms.
	SettleDelay time.Duration
}

func (t *Timeouts) defaults() {
	if t.FrameLoad <= 0 {
		t.FrameLoad = 60 * time.Second
	}
	if t.PollInterval <= 0 {
		t.PollInterval = 200 * time.Millisecond
	}
	if t.SettleDelay <= 0 {
		t.SettleDelay = 100 * time.Millisecond
	}
}

// Session is one ready-to-scan document at one device viewport. It exclusively
// owns its page; the page is closed when the session ends and must not be
// assumed to survive past the owning audit call.
type Session struct {
	Page    *rod.Page
	URL     string
	Device    report.DeviceProfile
	manager   *Manager
	closeOnce sync.Once
}

// OpenSession creates a page emulating the device viewport, navigates it to
// the URL, and waits for the document to become ready. On any failure the
// page is closed before the error is returned.
func OpenSession(ctx context.Context, mgr *Manager, url string, device report.DeviceProfile, t Timeouts) (*Session, error) {
	t.defaults()

	b := mgr.Browser()
	if b == nil {
		return nil, fmt.Errorf("browser: no active browser")
	}

	page, err := stealth.Page(b)
	if err != nil {
		return nil, fmt.Errorf("browser: create session page: %w", err)
	}

	s := &Session{Page: page, URL: url, Device: device, manager: mgr}
	mgr.register(s)

	if err := s.open(ctx, t); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Session) open(ctx context.Context, t Timeouts) error {
	mobile := s.Device.Name != "desktop"
	err := s.Page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             s.Device.Width,
		Height:            s.Device.Height,
		DeviceScaleFactor: 1,
		Mobile:            mobile,
	})
	if err != nil {
		return fmt.Errorf("browser: set viewport %dx%d: %w", s.Device.Width, s.Device.Height, err)
	}

	if len(s.manager.cfg.ResourceBlocking) > 0 {
		if err := applyResourceBlocking(s.Page, s.manager.cfg.ResourceBlocking); err != nil {
			s.manager.cfg.Logger.Warn("browser: resource blocking failed", "error", err)
		}
	}

	navCtx, cancel := context.WithTimeout(ctx, t.FrameLoad)
	defer cancel()

	if err := s.Page.Context(navCtx).Navigate(s.URL); err != nil {
		return fmt.Errorf("%w: navigate %s: %v", ErrFrameLoadFailed, s.URL, err)
	}

	if err := s.waitReady(navCtx, t); err != nil {
		return err
	}

	s.suppressOwnUI()
	return nil
}

// waitReady polls document readiness until the frame-load deadline the caller
// put on ctx. The native load event, once settled, short-circuits the check:
// readyState is 'complete' by the time the event fires. Readiness check
// errors are treated as not-ready-yet while polling; only when the bound
// expires does a persisting error surface as ErrFrameInaccessible.
func (s *Session) waitReady(ctx context.Context, t Timeouts) error {
	var loaded atomic.Bool
	go func() {
		if err := s.Page.Context(ctx).WaitLoad(); err == nil {
			time.Sleep(t.SettleDelay)
			loaded.Store(true)
		}
	}()

	timeout := t.FrameLoad
	if dl, ok := ctx.Deadline(); ok {
		timeout = time.Until(dl)
	}

	var lastErr error
	err := poll.Until(ctx, t.PollInterval, timeout, func() (bool, error) {
		if loaded.Load() {
			return true, nil
		}
		ready, err := s.checkReady(ctx)
		if err != nil {
			lastErr = err
			return false, nil
		}
		lastErr = nil
		return ready, nil
	})
	return readyErr(err, lastErr, s.URL, t.FrameLoad)
}

// readyErr maps a poll failure onto the session error taxonomy. A check error
// observed on the last attempt wins over the bare timeout: it names the cause.
func readyErr(err, lastErr error, url string, bound time.Duration) error {
	if err == nil {
		return nil
	}
	if lastErr != nil {
		return fmt.Errorf("%w: %v", ErrFrameInaccessible, lastErr)
	}
	if errors.Is(err, poll.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s after %s", ErrFrameLoadTimeout, url, bound)
	}
	return err
}

// checkReady reports whether the session document is accessible, parsed far
// enough to scan, and has a body.
func (s *Session) checkReady(ctx context.Context) (bool, error) {
	res, err := s.Page.Context(ctx).Eval(`() => {
		const state = document.readyState;
		return (state === 'complete' || state === 'interactive') && document.body != null;
	}`)
	if err != nil {
		return false, err
	}
	return res.Value.Bool(), nil
}

// suppressOwnUI hides any checker icon or widget container the plugin itself
// injected into the audited document, since the checker scans its own site.
// Leaving them visible would put recursive overlays into the results.
func (s *Session) suppressOwnUI() {
	_, err := s.Page.Eval(`() => {
		const icon = document.getElementById('a11ycheck-icon');
		if (icon) icon.style.display = 'none';
		const widget = document.getElementById('accessibility-plus-container');
		if (widget) widget.style.display = 'none';
	}`)
	if err != nil {
		s.manager.cfg.Logger.Debug("browser: suppress own UI failed", "error", err)
	}
}

// Close closes the session page and removes it from the manager registry.
// Safe to call more than once, including concurrently: the owning audit's
// deferred Close can race the manager's Sweep.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if s.manager != nil {
			s.manager.unregister(s)
		}
		if s.Page != nil {
			if err := s.Page.Close(); err != nil && s.manager != nil {
				s.manager.cfg.Logger.Debug("browser: close session page", "error", err)
			}
		}
	})
}
