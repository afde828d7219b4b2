package a11ycheck

import (
	"context"
	"io"
	"log/slog"

	"github.com/webyes/a11ycheck/internal/sink"
	"github.com/webyes/a11ycheck/report"
)

// Sink is the output interface for audit results and marker events.
type Sink = sink.Sink

// MarkerEvent mirrors an overlay interaction to external list UIs.
type MarkerEvent = sink.MarkerEvent

// NewStdoutSink creates a stdout JSON-lines sink.
func NewStdoutSink(w io.Writer) Sink {
	return sink.NewStdout(w)
}

// NewWebhookSink creates a webhook POST sink with retry.
func NewWebhookSink(url string, logger *slog.Logger) Sink {
	return sink.NewWebhook(url, sink.WithWebhookLogger(logger))
}

// NewCallbackSink creates an in-process callback sink for embedding hosts
// that want results without serialisation.
func NewCallbackSink(
	onResult func(ctx context.Context, result *report.AuditResult) error,
	onMarker func(ctx context.Context, event sink.MarkerEvent) error,
) Sink {
	return sink.NewCallback(onResult, onMarker)
}

// SinksFromConfig builds sinks from configuration entries. Unknown types are
// skipped with a warning.
func SinksFromConfig(cfgs []SinkConfig, logger *slog.Logger) []Sink {
	if logger == nil {
		logger = slog.Default()
	}
	var sinks []Sink
	for _, sc := range cfgs {
		switch sc.Type {
		case "stdout":
			sinks = append(sinks, sink.NewStdout(nil))
		case "webhook":
			sinks = append(sinks, sink.NewWebhook(sc.URL, sink.WithWebhookLogger(logger)))
		default:
			logger.Warn("a11ycheck: unknown sink type", "type", sc.Type)
		}
	}
	return sinks
}
