package sink

import (
	"context"

	"github.com/webyes/a11ycheck/report"
)

// ResultFunc is called for each completed audit (in-process, zero
// serialisation).
type ResultFunc func(ctx context.Context, result *report.AuditResult) error

// MarkerFunc is called for each marker interaction.
type MarkerFunc func(ctx context.Context, event MarkerEvent) error

// Callback delivers output via Go function calls. This is the path a list UI
// embedded in the same binary takes: selection events arrive as in-memory
// calls with no serialisation overhead.
type Callback struct {
	onResult ResultFunc
	onMarker MarkerFunc
}

// NewCallback creates a Callback sink. Either handler may be nil.
func NewCallback(onResult ResultFunc, onMarker MarkerFunc) *Callback {
	return &Callback{onResult: onResult, onMarker: onMarker}
}

func (c *Callback) SendResult(ctx context.Context, result *report.AuditResult) error {
	if c.onResult != nil {
		return c.onResult(ctx, result)
	}
	return nil
}

func (c *Callback) SendMarkerEvent(ctx context.Context, event MarkerEvent) error {
	if c.onMarker != nil {
		return c.onMarker(ctx, event)
	}
	return nil
}

func (c *Callback) Close() error { return nil }
