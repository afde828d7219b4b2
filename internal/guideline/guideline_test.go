package guideline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestLoader_LoadAndIndex(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`[
			{"rule_id":"image-alt","title":"Images must have alternate text","issue_severity":"critical"},
			{"rule_id":"","title":"ignored, no rule id"},
			{"rule_id":"label","title":"Form elements must have labels"}
		]`))
	}))
	defer srv.Close()

	l := NewLoader(srv.URL, nil)
	g := l.Load(context.Background())

	if len(g) != 2 {
		t.Fatalf("Load: got %d guidelines, want 2", len(g))
	}
	if g["image-alt"].Title != "Images must have alternate text" {
		t.Errorf("image-alt title: got %q", g["image-alt"].Title)
	}

	// Second call must hit the cache, not the network.
	l.Load(context.Background())
	if hits.Load() != 1 {
		t.Errorf("fetch count: got %d, want 1", hits.Load())
	}
}

func TestLoader_SoftFailOnHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	l := NewLoader(srv.URL, nil)
	g := l.Load(context.Background())
	if g == nil {
		t.Fatal("Load: got nil map, want empty map")
	}
	if len(g) != 0 {
		t.Errorf("Load: got %d guidelines, want 0", len(g))
	}
}

func TestLoader_SoftFailOnParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"an array"`))
	}))
	defer srv.Close()

	l := NewLoader(srv.URL, nil)
	g := l.Load(context.Background())
	if len(g) != 0 {
		t.Errorf("Load: got %d guidelines, want 0", len(g))
	}
}

func TestGuideline_Version(t *testing.T) {
	cases := []struct {
		raw  any
		want string
	}{
		{float64(2), "2.0"},
		{2.1, "2.1"},
		{"2.2", "2.2"},
		{"2", "2.0"},
		{nil, ""},
		{"", ""},
	}
	for _, tc := range cases {
		g := Guideline{WCAGVersionNumber: tc.raw}
		if got := g.Version(); got != tc.want {
			t.Errorf("Version(%v): got %q, want %q", tc.raw, got, tc.want)
		}
	}
}
