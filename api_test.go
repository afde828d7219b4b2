package a11ycheck

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func testRouter(t *testing.T) *chi.Mux {
	t.Helper()
	cfg := &Config{}
	cfg.ApplyDefaults()
	c := New(cfg, nil)

	r := chi.NewRouter()
	c.RegisterHTTP(r)
	return r
}

func TestHandleAudit_RejectsMissingURL(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/audit", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestHandleHistory_DisabledWithoutStore(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/history", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestHandleGuidelines_SoftFailsToEmpty(t *testing.T) {
	r := testRouter(t)

	// No reachable guideline resource is configured: the loader degrades to
	// an empty taxonomy rather than failing the request.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/guidelines", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", w.Code, http.StatusOK)
	}
	if got := strings.TrimSpace(w.Body.String()); got != "{}" {
		t.Fatalf("body: got %q, want empty object", got)
	}
}
