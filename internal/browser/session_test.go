package browser

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/webyes/a11ycheck/internal/poll"
)

func TestReadyErr_Taxonomy(t *testing.T) {
	checkErr := errors.New("Runtime.evaluate: frame detached")
	canceled := context.Canceled

	tests := []struct {
		name    string
		err     error
		lastErr error
		want    error
	}{
		{"success", nil, nil, nil},
		{"poll timeout", poll.ErrTimeout, nil, ErrFrameLoadTimeout},
		{"deadline exceeded", context.DeadlineExceeded, nil, ErrFrameLoadTimeout},
		{"persisting check error", poll.ErrTimeout, checkErr, ErrFrameInaccessible},
		{"check error on deadline", context.DeadlineExceeded, checkErr, ErrFrameInaccessible},
		{"caller cancellation passes through", canceled, nil, canceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := readyErr(tt.err, tt.lastErr, "https://example.com", 60*time.Second)
			if tt.want == nil {
				if got != nil {
					t.Fatalf("readyErr: got %v, want nil", got)
				}
				return
			}
			if !errors.Is(got, tt.want) {
				t.Fatalf("readyErr: got %v, want errors.Is %v", got, tt.want)
			}
		})
	}
}

func TestSessionClose_ConcurrentWithSweep(t *testing.T) {
	mgr := NewManager(Config{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	s := &Session{URL: "https://example.com", manager: mgr}
	mgr.register(s)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Close()
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		mgr.Sweep()
	}()
	wg.Wait()

	mgr.mu.Lock()
	remaining := len(mgr.sessions)
	mgr.mu.Unlock()
	if remaining != 0 {
		t.Fatalf("sessions still registered after close: %d", remaining)
	}
}
