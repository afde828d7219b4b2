package overlay

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Marker identifies one issue occurrence to draw.
type Marker struct {
	Index    int
	Selector string
}

// Listener receives host-facing overlay events (marker click / deselect).
type Listener func(Event)

// Config for creating an Overlay.
type Config struct {
	Document  Document
	Placement string // "left" or "right"
	Listener  Listener
	Logger    *slog.Logger
}

const noSelection = -1

// Overlay owns the marker set and the single-selection state for one page.
// Selection index, element border and the outside-click listener always
// change together: there is no state where a border is visible without the
// outside-click listener armed, or vice versa.
type Overlay struct {
	doc       Document
	placement string
	notify    Listener
	logger    *slog.Logger

	mu       sync.Mutex
	markers  map[int]string // index -> selector, placed markers only
	selected int

	loopOnce sync.Once
}

// New creates an Overlay over the given document.
func New(cfg Config) *Overlay {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Placement == "" {
		cfg.Placement = "right"
	}
	return &Overlay{
		doc:       cfg.Document,
		placement: cfg.Placement,
		notify:    cfg.Listener,
		logger:    cfg.Logger,
		markers:   map[int]string{},
		selected:  noSelection,
	}
}

// Start begins consuming document events. Safe to call once per Overlay.
func (o *Overlay) Start(ctx context.Context) {
	o.loopOnce.Do(func() {
		go o.loop(ctx)
	})
}

// Mark replaces the marker set: any prior markers and the active selection
// are cleared before the new entries are placed, so the selected index can
// never outlive the marker it points at. Entries whose selector no longer
// matches anything are skipped with a debug log rather than failing the
// batch: the page may have mutated since the audit ran.
func (o *Overlay) Mark(ctx context.Context, markers []Marker) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.resetLocked(ctx); err != nil {
		return err
	}
	for _, m := range markers {
		ok, err := o.doc.Resolve(ctx, m.Selector)
		if err != nil {
			return fmt.Errorf("overlay: resolve %q: %w", m.Selector, err)
		}
		if !ok {
			o.logger.Debug("overlay: selector unresolvable, marker skipped",
				"index", m.Index, "selector", m.Selector)
			continue
		}
		if err := o.doc.PlaceMarker(ctx, m.Index, m.Selector, o.placement); err != nil {
			return fmt.Errorf("overlay: place marker %d: %w", m.Index, err)
		}
		o.markers[m.Index] = m.Selector
	}
	return nil
}

// Toggle selects the marker at index, or deselects it if it is already the
// active selection. Selecting while another marker is active moves the
// selection in one step.
func (o *Overlay) Toggle(ctx context.Context, index int) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.selected == index {
		return o.deselectLocked(ctx)
	}
	return o.selectLocked(ctx, index)
}

// Deselect clears the active selection, if any.
func (o *Overlay) Deselect(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.deselectLocked(ctx)
}

// Selected returns the active marker index, or -1 when nothing is selected.
func (o *Overlay) Selected() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.selected
}

// Cleanup removes all markers, clears any selection and disarms the
// outside-click listener. Idempotent, and the overlay stays usable: after a
// device switch invalidates marker positions, Mark places a fresh set.
func (o *Overlay) Cleanup(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.resetLocked(ctx)
}

// resetLocked is the shared clear path for Cleanup and the replace step at
// the start of Mark.
func (o *Overlay) resetLocked(ctx context.Context) error {
	var firstErr error
	if o.selected != noSelection {
		if err := o.deselectLocked(ctx); err != nil {
			firstErr = err
		}
	}
	if err := o.doc.ClearMarkers(ctx); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("overlay: clear markers: %w", err)
	}
	o.markers = map[int]string{}
	return firstErr
}

// selectLocked applies the full selection state transition: clear the old
// border if needed, then border + scroll + arm together.
func (o *Overlay) selectLocked(ctx context.Context, index int) error {
	selector, ok := o.markers[index]
	if !ok {
		return fmt.Errorf("overlay: no marker at index %d", index)
	}

	if o.selected != noSelection {
		if err := o.doc.ClearBorder(ctx); err != nil {
			return fmt.Errorf("overlay: clear border: %w", err)
		}
	}
	if err := o.doc.SetBorder(ctx, selector); err != nil {
		return fmt.Errorf("overlay: set border: %w", err)
	}
	if err := o.doc.ScrollIntoView(ctx, selector); err != nil {
		o.logger.Debug("overlay: scroll into view failed", "error", err)
	}
	if err := o.doc.SetOutsideClickArmed(ctx, true); err != nil {
		return fmt.Errorf("overlay: arm outside click: %w", err)
	}

	o.selected = index
	o.emit(Event{Kind: EventMarkerClick, Index: index, Selector: selector})
	return nil
}

// deselectLocked is the single deselection path, taken for explicit toggles,
// outside clicks and cleanup alike.
func (o *Overlay) deselectLocked(ctx context.Context) error {
	if o.selected == noSelection {
		return nil
	}
	index := o.selected

	if err := o.doc.ClearBorder(ctx); err != nil {
		return fmt.Errorf("overlay: clear border: %w", err)
	}
	if err := o.doc.SetOutsideClickArmed(ctx, false); err != nil {
		return fmt.Errorf("overlay: disarm outside click: %w", err)
	}

	o.selected = noSelection
	o.emit(Event{Kind: EventMarkerDeselect, Index: index})
	return nil
}

func (o *Overlay) emit(e Event) {
	if o.notify != nil {
		o.notify(e)
	}
}

// loop routes page interactions through the same mutators the host API uses.
func (o *Overlay) loop(ctx context.Context) {
	events := o.doc.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			var err error
			switch e.Kind {
			case EventMarkerClick:
				err = o.Toggle(ctx, e.Index)
			case EventOutsideClick:
				err = o.Deselect(ctx)
			}
			if err != nil {
				o.logger.Warn("overlay: handle page event failed",
					"kind", string(e.Kind), "index", e.Index, "error", err)
			}
		}
	}
}
