package sink

import (
	"context"
	"log/slog"

	"github.com/webyes/a11ycheck/report"
)

// Router fans out output to all configured sinks. One sink error does not
// block the others. Errors are logged and the first encountered is returned.
type Router struct {
	sinks  []Sink
	logger *slog.Logger
}

// NewRouter creates a fan-out router delivering to all sinks.
func NewRouter(logger *slog.Logger, sinks ...Sink) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{sinks: sinks, logger: logger}
}

func (r *Router) SendResult(ctx context.Context, result *report.AuditResult) error {
	var firstErr error
	for _, s := range r.sinks {
		if err := s.SendResult(ctx, result); err != nil {
			r.logger.Warn("sink: send result failed", "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (r *Router) SendMarkerEvent(ctx context.Context, event MarkerEvent) error {
	var firstErr error
	for _, s := range r.sinks {
		if err := s.SendMarkerEvent(ctx, event); err != nil {
			r.logger.Warn("sink: send marker event failed", "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (r *Router) Close() error {
	var firstErr error
	for _, s := range r.sinks {
		if err := s.Close(); err != nil {
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
