package a11ycheck

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/webyes/a11ycheck/report"
)

// RegisterHTTP mounts the audit endpoints on a chi router.
func (c *Checker) RegisterHTTP(r chi.Router) {
	r.Post("/api/v1/audit", c.handleAudit)
	r.Get("/api/v1/history", c.handleHistory)
	r.Get("/api/v1/history/{run_id}", c.handleHistoryRun)
	r.Get("/api/v1/guidelines", c.handleGuidelines)
}

type auditRequest struct {
	URL string `json:"url"`
}

func (c *Checker) handleAudit(w http.ResponseWriter, r *http.Request) {
	var req auditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		httpError(w, http.StatusBadRequest, "missing or invalid url")
		return
	}

	result, err := c.Audit(r.Context(), req.URL)
	if err != nil {
		var devErr *DeviceError
		status := http.StatusBadGateway
		if errors.Is(err, ErrFrameLoadTimeout) || errors.Is(err, ErrEngineLoadTimeout) {
			status = http.StatusGatewayTimeout
		}
		body := map[string]string{"error": err.Error()}
		if errors.As(err, &devErr) {
			body["device"] = devErr.Device
		}
		writeJSON(w, status, body)
		return
	}

	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write([]byte(report.Markdown(result)))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (c *Checker) handleHistory(w http.ResponseWriter, r *http.Request) {
	if c.store == nil {
		httpError(w, http.StatusNotFound, "history disabled")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := c.store.Recent(r.Context(), limit)
	if err != nil {
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (c *Checker) handleHistoryRun(w http.ResponseWriter, r *http.Request) {
	if c.store == nil {
		httpError(w, http.StatusNotFound, "history disabled")
		return
	}

	result, err := c.store.Get(r.Context(), chi.URLParam(r, "run_id"))
	if err != nil {
		httpError(w, http.StatusNotFound, "unknown run")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (c *Checker) handleGuidelines(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, c.Guidelines(r.Context()))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
