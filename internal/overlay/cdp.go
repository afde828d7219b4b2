package overlay

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

//go:embed overlay.js
var overlayJS []byte

const bindingName = "__a11ycheck_overlay"

// cdpDocument implements Document over a live page via the devtools
// protocol. The injected runtime owns layout and listeners; this side only
// issues commands and relays binding calls.
type cdpDocument struct {
	page   *rod.Page
	logger *slog.Logger
	events chan Event
	cancel context.CancelFunc
}

// NewDocument injects the overlay runtime into the page and starts relaying
// its interactions. The returned Document stops relaying when ctx ends.
func NewDocument(ctx context.Context, page *rod.Page, logger *slog.Logger) (Document, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := (proto.RuntimeAddBinding{Name: bindingName}.Call(page)); err != nil {
		logger.Warn("overlay: addBinding failed (may already exist)", "error", err)
	}

	relayCtx, cancel := context.WithCancel(ctx)
	d := &cdpDocument{
		page:   page,
		logger: logger,
		events: make(chan Event, 64),
		cancel: cancel,
	}
	go d.listenBinding(relayCtx)

	if _, err := page.Context(ctx).Eval(string(overlayJS)); err != nil {
		cancel()
		return nil, fmt.Errorf("overlay: inject runtime: %w", err)
	}
	return d, nil
}

func (d *cdpDocument) listenBinding(ctx context.Context) {
	defer close(d.events)
	d.page.Context(ctx).EachEvent(func(e *proto.RuntimeBindingCalled) {
		if e.Name != bindingName {
			return
		}
		var ev Event
		if err := json.Unmarshal([]byte(e.Payload), &ev); err != nil {
			d.logger.Warn("overlay: parse binding payload", "error", err)
			return
		}
		select {
		case d.events <- ev:
		default:
			d.logger.Warn("overlay: event channel full, interaction dropped")
		}
	})()
}

func (d *cdpDocument) Resolve(ctx context.Context, selector string) (bool, error) {
	res, err := d.page.Context(ctx).Eval(`s => window.__a11ycheckOverlay.resolve(s)`, selector)
	if err != nil {
		return false, fmt.Errorf("overlay: resolve: %w", err)
	}
	return res.Value.Bool(), nil
}

func (d *cdpDocument) PlaceMarker(ctx context.Context, index int, selector, placement string) error {
	_, err := d.page.Context(ctx).Eval(
		`(i, s, p) => window.__a11ycheckOverlay.place(i, s, p)`, index, selector, placement)
	if err != nil {
		return fmt.Errorf("overlay: place marker: %w", err)
	}
	return nil
}

func (d *cdpDocument) ClearMarkers(ctx context.Context) error {
	_, err := d.page.Context(ctx).Eval(`() => window.__a11ycheckOverlay.clearMarkers()`)
	if err != nil {
		return fmt.Errorf("overlay: clear markers: %w", err)
	}
	return nil
}

func (d *cdpDocument) SetBorder(ctx context.Context, selector string) error {
	_, err := d.page.Context(ctx).Eval(`s => window.__a11ycheckOverlay.setBorder(s)`, selector)
	if err != nil {
		return fmt.Errorf("overlay: set border: %w", err)
	}
	return nil
}

func (d *cdpDocument) ClearBorder(ctx context.Context) error {
	_, err := d.page.Context(ctx).Eval(`() => window.__a11ycheckOverlay.clearBorder()`)
	if err != nil {
		return fmt.Errorf("overlay: clear border: %w", err)
	}
	return nil
}

func (d *cdpDocument) ScrollIntoView(ctx context.Context, selector string) error {
	_, err := d.page.Context(ctx).Eval(`s => window.__a11ycheckOverlay.scrollIntoView(s)`, selector)
	if err != nil {
		return fmt.Errorf("overlay: scroll into view: %w", err)
	}
	return nil
}

func (d *cdpDocument) SetOutsideClickArmed(ctx context.Context, armed bool) error {
	_, err := d.page.Context(ctx).Eval(`a => window.__a11ycheckOverlay.setOutsideArmed(a)`, armed)
	if err != nil {
		return fmt.Errorf("overlay: set outside click: %w", err)
	}
	return nil
}

func (d *cdpDocument) Events() <-chan Event { return d.events }
