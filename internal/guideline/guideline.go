// Package guideline loads the locally bundled guideline taxonomy and maps
// raw rule-engine output into the stable issue shape the dashboard renders,
// filling gaps via tag inference.
package guideline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// ErrGuidelineFetch is returned (wrapped) when the guideline resource cannot
// be fetched or parsed. Callers treat it as soft: enrichment proceeds with an
// empty taxonomy.
var ErrGuidelineFetch = errors.New("guideline: fetch failed")

// Guideline is the per-rule metadata bundled with the checker. Missing fields
// are derived from the violation's tags at enrichment time.
type Guideline struct {
	RuleID               string `json:"rule_id"`
	Title                string `json:"title"`
	Severity             string `json:"issue_severity"`
	StandardCode         string `json:"standard_code"`
	WCAGLevel            string `json:"wcag_level"`
	WCAGVersionNumber    any    `json:"wcag_version_number"`
	Help                 string `json:"help"`
	Description          string `json:"description"`
	AffectedDisabilities any    `json:"affected_disabilities_json"`
}

// Version returns the guideline's WCAG version as a "major.minor" string, or
// "" when unset. The bundled JSON stores it inconsistently as number or
// string, so both are accepted.
func (g *Guideline) Version() string {
	switch v := g.WCAGVersionNumber.(type) {
	case string:
		if v == "" {
			return ""
		}
		for _, c := range v {
			if c == '.' {
				return v
			}
		}
		return v + ".0"
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d.0", int64(v))
		}
		return fmt.Sprintf("%g", v)
	default:
		return ""
	}
}

// Loader fetches the guideline JSON resource once per dashboard session and
// indexes it by rule identifier.
type Loader struct {
	url    string
	client *http.Client
	logger *slog.Logger

	once       sync.Once
	guidelines map[string]Guideline
}

// NewLoader creates a Loader for the given resource URL.
func NewLoader(url string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

// Load returns the taxonomy, fetching it on first call. It fails soft: on
// network or parse errors it logs and returns an empty map, so an audit with
// no guideline data still produces usable, if less detailed, results.
func (l *Loader) Load(ctx context.Context) map[string]Guideline {
	l.once.Do(func() {
		guidelines, err := l.fetch(ctx)
		if err != nil {
			l.logger.Warn("guideline: load failed, continuing without taxonomy", "error", err)
			guidelines = map[string]Guideline{}
		}
		l.guidelines = guidelines
	})
	return l.guidelines
}

func (l *Loader) fetch(ctx context.Context) (map[string]Guideline, error) {
	if l.url == "" {
		return nil, fmt.Errorf("%w: no resource URL configured", ErrGuidelineFetch)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGuidelineFetch, err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGuidelineFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrGuidelineFetch, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGuidelineFetch, err)
	}

	var list []Guideline
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("%w: parse: %v", ErrGuidelineFetch, err)
	}

	guidelines := make(map[string]Guideline, len(list))
	for _, g := range list {
		if g.RuleID != "" {
			guidelines[g.RuleID] = g
		}
	}
	l.logger.Info("guideline: taxonomy loaded", "rules", len(guidelines))
	return guidelines, nil
}
