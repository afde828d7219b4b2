// Package sink defines output backends for audit results and marker
// interaction events.
package sink

import (
	"context"

	"github.com/webyes/a11ycheck/report"
)

// MarkerEvent mirrors an overlay interaction to external list UIs. Source
// identifies the emitter so consumers can ignore unrelated messages.
type MarkerEvent struct {
	Type     string `json:"type"`
	Index    int    `json:"index"`
	Selector string `json:"selector,omitempty"`
	Source   string `json:"source"`
}

// EventSource tags every marker event emitted by this module.
const EventSource = "a11ycheck-checker"

// Sink is the output interface. Implementations deliver audit results and
// marker events to different backends (stdout, webhook, in-process callback).
type Sink interface {
	SendResult(ctx context.Context, result *report.AuditResult) error
	SendMarkerEvent(ctx context.Context, event MarkerEvent) error
	Close() error
}
