package a11ycheck

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/webyes/a11ycheck/internal/browser"
	"github.com/webyes/a11ycheck/internal/dashboard"
)

// recordingHandler captures log lines so tests can observe background work.
type recordingHandler struct {
	mu   sync.Mutex
	logs []string
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	line := r.Message
	r.Attrs(func(a slog.Attr) bool {
		line += " " + a.String()
		return true
	})
	h.mu.Lock()
	h.logs = append(h.logs, line)
	h.mu.Unlock()
	return nil
}

func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

func (h *recordingHandler) find(substr string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, l := range h.logs {
		if strings.Contains(l, substr) {
			return l, true
		}
	}
	return "", false
}

func TestInitialAudit_OutlivesShowCallContext(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()
	cfg.Timeouts.PreAuditDelay = 5 * time.Millisecond

	h := &recordingHandler{}
	logger := slog.New(h)
	c := New(cfg, logger)

	ds := &DashboardSession{
		checker: c,
		session: &browser.Session{URL: "https://example.com"},
		bridge:  dashboard.NewBridge(dashboard.Config{Logger: logger}),
	}
	ds.ctx, ds.cancel = context.WithCancel(context.Background())
	defer ds.cancel()

	// The Show caller's context ends immediately, as a request-scoped
	// context would once the response is written.
	showCtx, cancel := context.WithCancel(context.Background())
	cancel()
	ds.runInitialAudit(showCtx)

	// Without a started browser the audit fails at session open. Reaching
	// that failure proves it ran past the pre-audit delay instead of being
	// cancelled with the caller.
	deadline := time.After(2 * time.Second)
	for {
		if line, ok := h.find("initial audit failed"); ok {
			if strings.Contains(line, "context canceled") {
				t.Fatalf("initial audit was cancelled with the caller: %s", line)
			}
			if !strings.Contains(line, "no active browser") {
				t.Fatalf("unexpected audit failure: %s", line)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for the initial audit attempt")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
