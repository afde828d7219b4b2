// Package engine injects the third-party accessibility rule engine into an
// audit session, runs the scan, and decodes the violation set. It also hosts
// the orchestrator that sequences scans across device profiles.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/webyes/a11ycheck/internal/browser"
	"github.com/webyes/a11ycheck/internal/poll"
	"github.com/webyes/a11ycheck/report"
)

// ErrEngineLoadTimeout is returned when the rule-engine script does not load
// within the configured bound.
var ErrEngineLoadTimeout = errors.New("engine: rule engine load timeout")

// ErrEngineLoadFailed is returned when the rule-engine script errors on load.
var ErrEngineLoadFailed = errors.New("engine: rule engine load failed")

// standardsTags is the fixed filter the engine runs under: WCAG 2.0/2.1/2.2
// conformance levels plus the US Section 508 statute tag. Everything else the
// engine knows (best-practice, experimental) is out of compliance scope.
var standardsTags = []string{
	"wcag2a", "wcag2aa", "wcag2aaa",
	"wcag21a", "wcag21aa",
	"wcag22aa",
	"section508",
}

// Inject appends the rule-engine script to the session document and waits for
// it to load.
func Inject(ctx context.Context, s *browser.Session, scriptURL string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	_, err := s.Page.Context(ctx).Eval(`(src) => {
		delete window.__a11ycheck_engine_error;
		const script = document.createElement('script');
		script.src = src;
		script.onerror = () => { window.__a11ycheck_engine_error = true; };
		document.head.appendChild(script);
	}`, scriptURL)
	if err != nil {
		return fmt.Errorf("engine: inject script %s: %w", scriptURL, err)
	}

	err = poll.Until(ctx, 100*time.Millisecond, timeout, func() (bool, error) {
		res, err := s.Page.Context(ctx).Eval(`() => {
			if (window.__a11ycheck_engine_error) return 'error';
			if (typeof window.axe !== 'undefined') return 'ready';
			return 'loading';
		}`)
		if err != nil {
			return false, err
		}
		switch res.Value.Str() {
		case "ready":
			return true, nil
		case "error":
			return false, fmt.Errorf("%w: %s", ErrEngineLoadFailed, scriptURL)
		default:
			return false, nil
		}
	})
	if errors.Is(err, poll.ErrTimeout) {
		return fmt.Errorf("%w: %s after %s", ErrEngineLoadTimeout, scriptURL, timeout)
	}
	return err
}

// Run invokes the loaded engine against the session document, restricted to
// the fixed standards tags, and decodes its violation list.
func Run(ctx context.Context, s *browser.Session) ([]report.RawViolation, error) {
	tags, _ := json.Marshal(standardsTags)

	res, err := s.Page.Context(ctx).Eval(fmt.Sprintf(`async () => {
		const results = await window.axe.run(document, {
			runOnly: { type: 'tag', values: %s },
		});
		return JSON.stringify({ violations: results.violations });
	}`, tags))
	if err != nil {
		return nil, fmt.Errorf("engine: run: %w", err)
	}

	var decoded struct {
		Violations []report.RawViolation `json:"violations"`
	}
	if err := json.Unmarshal([]byte(res.Value.Str()), &decoded); err != nil {
		return nil, fmt.Errorf("engine: decode result: %w", err)
	}
	return decoded.Violations, nil
}
