package overlay

import (
	"context"
	"testing"
	"time"
)

// fakeDocument records overlay commands in memory.
type fakeDocument struct {
	resolvable map[string]bool
	placed     map[int]string
	bordered   string
	armed      bool
	clearCalls int
	events     chan Event
}

func newFakeDocument(resolvable ...string) *fakeDocument {
	r := map[string]bool{}
	for _, s := range resolvable {
		r[s] = true
	}
	return &fakeDocument{
		resolvable: r,
		placed:     map[int]string{},
		events:     make(chan Event, 16),
	}
}

func (f *fakeDocument) Resolve(_ context.Context, selector string) (bool, error) {
	return f.resolvable[selector], nil
}

func (f *fakeDocument) PlaceMarker(_ context.Context, index int, selector, _ string) error {
	f.placed[index] = selector
	return nil
}

func (f *fakeDocument) ClearMarkers(context.Context) error {
	f.placed = map[int]string{}
	f.clearCalls++
	return nil
}

func (f *fakeDocument) SetBorder(_ context.Context, selector string) error {
	f.bordered = selector
	return nil
}

func (f *fakeDocument) ClearBorder(context.Context) error {
	f.bordered = ""
	return nil
}

func (f *fakeDocument) ScrollIntoView(context.Context, string) error { return nil }

func (f *fakeDocument) SetOutsideClickArmed(_ context.Context, armed bool) error {
	f.armed = armed
	return nil
}

func (f *fakeDocument) Events() <-chan Event { return f.events }

func newTestOverlay(doc *fakeDocument, notify Listener) *Overlay {
	return New(Config{Document: doc, Listener: notify})
}

func TestMark_SkipsUnresolvableSelectors(t *testing.T) {
	doc := newFakeDocument("#a", "#c")
	o := newTestOverlay(doc, nil)

	err := o.Mark(context.Background(), []Marker{
		{Index: 0, Selector: "#a"},
		{Index: 1, Selector: "#gone"},
		{Index: 2, Selector: "#c"},
	})
	if err != nil {
		t.Fatalf("Mark: %v", err)
	}
	if len(doc.placed) != 2 {
		t.Fatalf("placed: got %d markers, want 2", len(doc.placed))
	}
	if _, ok := doc.placed[1]; ok {
		t.Error("marker 1 placed despite unresolvable selector")
	}
}

func TestMark_ReplacesPriorMarkers(t *testing.T) {
	doc := newFakeDocument("#a", "#b", "#c")
	o := newTestOverlay(doc, nil)
	ctx := context.Background()

	if err := o.Mark(ctx, []Marker{{Index: 0, Selector: "#a"}, {Index: 1, Selector: "#b"}}); err != nil {
		t.Fatal(err)
	}
	if err := o.Toggle(ctx, 1); err != nil {
		t.Fatal(err)
	}

	if err := o.Mark(ctx, []Marker{{Index: 0, Selector: "#c"}}); err != nil {
		t.Fatalf("second Mark: %v", err)
	}

	if len(doc.placed) != 1 || doc.placed[0] != "#c" {
		t.Fatalf("after re-mark: placed=%v, want only 0:#c", doc.placed)
	}
	if o.Selected() != noSelection || doc.bordered != "" || doc.armed {
		t.Fatalf("after re-mark: selected=%d bordered=%q armed=%v, want -1/empty/false",
			o.Selected(), doc.bordered, doc.armed)
	}
	// Index 1 no longer exists after the replacement.
	if err := o.Toggle(ctx, 1); err == nil {
		t.Fatal("Toggle on replaced index: got nil error")
	}
}

func TestToggle_PairsSelectionBorderAndArming(t *testing.T) {
	doc := newFakeDocument("#a")
	var got []Event
	o := newTestOverlay(doc, func(e Event) { got = append(got, e) })
	ctx := context.Background()

	if err := o.Mark(ctx, []Marker{{Index: 0, Selector: "#a"}}); err != nil {
		t.Fatal(err)
	}

	if err := o.Toggle(ctx, 0); err != nil {
		t.Fatalf("Toggle select: %v", err)
	}
	if o.Selected() != 0 || doc.bordered != "#a" || !doc.armed {
		t.Fatalf("after select: selected=%d bordered=%q armed=%v, want 0/#a/true",
			o.Selected(), doc.bordered, doc.armed)
	}

	if err := o.Toggle(ctx, 0); err != nil {
		t.Fatalf("Toggle deselect: %v", err)
	}
	if o.Selected() != noSelection || doc.bordered != "" || doc.armed {
		t.Fatalf("after deselect: selected=%d bordered=%q armed=%v, want -1/empty/false",
			o.Selected(), doc.bordered, doc.armed)
	}

	if len(got) != 2 || got[0].Kind != EventMarkerClick || got[1].Kind != EventMarkerDeselect {
		t.Fatalf("events: got %v", got)
	}
}

func TestToggle_RepeatedTogglingIsIdempotent(t *testing.T) {
	doc := newFakeDocument("#a")
	o := newTestOverlay(doc, nil)
	ctx := context.Background()
	if err := o.Mark(ctx, []Marker{{Index: 0, Selector: "#a"}}); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 6; i++ {
		if err := o.Toggle(ctx, 0); err != nil {
			t.Fatalf("toggle %d: %v", i, err)
		}
		wantSelected := i%2 == 0
		if got := o.Selected() == 0; got != wantSelected {
			t.Fatalf("toggle %d: selected=%v, want %v", i, got, wantSelected)
		}
		if doc.armed != wantSelected {
			t.Fatalf("toggle %d: armed=%v, want %v", i, doc.armed, wantSelected)
		}
	}
}

func TestToggle_MovesSelectionBetweenMarkers(t *testing.T) {
	doc := newFakeDocument("#a", "#b")
	o := newTestOverlay(doc, nil)
	ctx := context.Background()
	if err := o.Mark(ctx, []Marker{{Index: 0, Selector: "#a"}, {Index: 1, Selector: "#b"}}); err != nil {
		t.Fatal(err)
	}

	if err := o.Toggle(ctx, 0); err != nil {
		t.Fatal(err)
	}
	if err := o.Toggle(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if o.Selected() != 1 || doc.bordered != "#b" || !doc.armed {
		t.Fatalf("after move: selected=%d bordered=%q armed=%v, want 1/#b/true",
			o.Selected(), doc.bordered, doc.armed)
	}
}

func TestToggle_UnknownIndex(t *testing.T) {
	doc := newFakeDocument("#a")
	o := newTestOverlay(doc, nil)
	if err := o.Toggle(context.Background(), 7); err == nil {
		t.Fatal("Toggle on unplaced index: got nil error")
	}
}

func TestOutsideClick_DeselectsThroughEventLoop(t *testing.T) {
	doc := newFakeDocument("#a")
	events := make(chan Event, 4)
	o := newTestOverlay(doc, func(e Event) { events <- e })
	ctx := context.Background()

	if err := o.Mark(ctx, []Marker{{Index: 0, Selector: "#a"}}); err != nil {
		t.Fatal(err)
	}
	o.Start(ctx)

	doc.events <- Event{Kind: EventMarkerClick, Index: 0}
	waitKind(t, events, EventMarkerClick)

	doc.events <- Event{Kind: EventOutsideClick}
	waitKind(t, events, EventMarkerDeselect)

	if o.Selected() != noSelection || doc.armed {
		t.Fatalf("after outside click: selected=%d armed=%v", o.Selected(), doc.armed)
	}
}

func TestCleanup_Idempotent(t *testing.T) {
	doc := newFakeDocument("#a")
	o := newTestOverlay(doc, nil)
	ctx := context.Background()

	if err := o.Mark(ctx, []Marker{{Index: 0, Selector: "#a"}}); err != nil {
		t.Fatal(err)
	}
	if err := o.Toggle(ctx, 0); err != nil {
		t.Fatal(err)
	}

	if err := o.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if err := o.Cleanup(ctx); err != nil {
		t.Fatalf("second Cleanup: %v", err)
	}

	if len(doc.placed) != 0 || doc.bordered != "" || doc.armed {
		t.Fatalf("after cleanup: placed=%d bordered=%q armed=%v", len(doc.placed), doc.bordered, doc.armed)
	}

	// The overlay stays usable: a fresh audit places new markers.
	if err := o.Mark(ctx, []Marker{{Index: 0, Selector: "#a"}}); err != nil {
		t.Fatalf("Mark after cleanup: %v", err)
	}
	if len(doc.placed) != 1 {
		t.Fatalf("re-mark: got %d markers, want 1", len(doc.placed))
	}
}

func waitKind(t *testing.T, ch <-chan Event, want EventKind) {
	t.Helper()
	select {
	case e := <-ch:
		if e.Kind != want {
			t.Fatalf("event: got %s, want %s", e.Kind, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", want)
	}
}
