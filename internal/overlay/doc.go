// Package overlay draws per-issue markers inside an audited page and manages
// the single-selection highlight state. The selection state machine lives in
// Go; the page itself only provides drawing and event-forwarding primitives
// behind the Document interface, so the logic is testable without a browser.
package overlay

import "context"

// EventKind discriminates interactions forwarded from the page.
type EventKind string

const (
	// EventMarkerClick fires when the user clicks an issue marker.
	EventMarkerClick EventKind = "ISSUE_MARKER_CLICK"
	// EventMarkerDeselect fires when an active selection is cleared.
	EventMarkerDeselect EventKind = "ISSUE_MARKER_DESELECT"
	// EventOutsideClick fires on a capture-phase click that hits neither a
	// marker nor the currently highlighted element. Internal to the package;
	// hosts only ever see click and deselect events.
	EventOutsideClick EventKind = "OUTSIDE_CLICK"
)

// Event is a single overlay interaction.
type Event struct {
	Kind     EventKind `json:"kind"`
	Index    int       `json:"index"`
	Selector string    `json:"selector,omitempty"`
}

// Document is the minimal page surface the overlay needs. cdpDocument
// implements it over a live page; tests substitute an in-memory fake.
type Document interface {
	// Resolve reports whether selector matches at least one element.
	Resolve(ctx context.Context, selector string) (bool, error)

	// PlaceMarker draws the numbered marker for an issue occurrence next to
	// the element matched by selector. placement is "left" or "right".
	PlaceMarker(ctx context.Context, index int, selector, placement string) error

	// ClearMarkers removes every marker and its reposition listeners.
	ClearMarkers(ctx context.Context) error

	// SetBorder outlines the element matched by selector. At most one
	// element carries the outline at a time; the implementation replaces
	// any previous one.
	SetBorder(ctx context.Context, selector string) error

	// ClearBorder removes the outline, if any.
	ClearBorder(ctx context.Context) error

	// ScrollIntoView brings the element matched by selector into the
	// visible viewport.
	ScrollIntoView(ctx context.Context, selector string) error

	// SetOutsideClickArmed toggles the capture-phase document click listener
	// that reports clicks landing outside the active marker and element.
	SetOutsideClickArmed(ctx context.Context, armed bool) error

	// Events yields marker and outside-click interactions. The channel is
	// closed when the document goes away.
	Events() <-chan Event
}
