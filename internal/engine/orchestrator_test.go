package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/webyes/a11ycheck/internal/browser"
	"github.com/webyes/a11ycheck/internal/guideline"
	"github.com/webyes/a11ycheck/report"
)

// fakeScanner returns canned violations per device name.
type fakeScanner struct {
	byDevice map[string][]report.RawViolation
	err      error
	scanned  []string
}

func (f *fakeScanner) Scan(_ context.Context, s *browser.Session) ([]report.RawViolation, error) {
	f.scanned = append(f.scanned, s.Device.Name)
	if f.err != nil {
		return nil, f.err
	}
	return f.byDevice[s.Device.Name], nil
}

func fakeOpener(err error) Opener {
	return func(_ context.Context, url string, device report.DeviceProfile) (*browser.Session, error) {
		if err != nil {
			return nil, err
		}
		return &browser.Session{URL: url, Device: device}, nil
	}
}

func TestRunAll_DeviceOrderPreservedAndFiltered(t *testing.T) {
	devices := report.DefaultDevices()
	scanner := &fakeScanner{byDevice: map[string][]report.RawViolation{
		"desktop": {
			{
				RuleID: "image-alt",
				Impact: "critical",
				Tags:   []string{"wcag2a", "wcag111"},
				Nodes:  []report.ViolationNode{{HTML: "<img>", Target: []string{"img"}}},
			},
			{
				RuleID: "region",
				Impact: "moderate",
				Tags:   []string{"best-practice"},
				Nodes:  []report.ViolationNode{{HTML: "<div>", Target: []string{"div"}}},
			},
		},
		"mobile": {},
	}}

	o := NewOrchestrator(fakeOpener(nil), scanner, nil)
	raw, err := o.RunAll(context.Background(), devices, "https://example.com")
	if err != nil {
		t.Fatalf("RunAll: %v", err)
	}

	if len(scanner.scanned) != 2 || scanner.scanned[0] != "desktop" || scanner.scanned[1] != "mobile" {
		t.Fatalf("scan order: got %v, want [desktop mobile]", scanner.scanned)
	}

	// Only the WCAG-tagged violation survives enrichment filtering.
	desktop := guideline.Enrich(raw["desktop"], "desktop", nil)
	if len(desktop) != 1 {
		t.Fatalf("desktop issues: got %d, want 1", len(desktop))
	}
	if desktop[0].IssueID != "image-alt" {
		t.Errorf("issue id: got %q, want image-alt", desktop[0].IssueID)
	}
	mobile := guideline.Enrich(raw["mobile"], "mobile", nil)
	if len(mobile) != 0 {
		t.Fatalf("mobile issues: got %d, want 0", len(mobile))
	}
}

func TestRunAll_FirstFailureAbortsWithDeviceError(t *testing.T) {
	scanner := &fakeScanner{err: ErrEngineLoadFailed}
	o := NewOrchestrator(fakeOpener(nil), scanner, nil)

	raw, err := o.RunAll(context.Background(), report.DefaultDevices(), "https://example.com")
	if raw != nil {
		t.Fatal("RunAll: got partial results after failure")
	}

	var devErr *DeviceError
	if !errors.As(err, &devErr) {
		t.Fatalf("err: got %T, want *DeviceError", err)
	}
	if devErr.Device != "desktop" {
		t.Errorf("failing device: got %q, want desktop", devErr.Device)
	}
	if !errors.Is(err, ErrEngineLoadFailed) {
		t.Error("errors.Is through DeviceError failed")
	}
	// The first failure aborts: mobile is never scanned.
	if len(scanner.scanned) != 1 {
		t.Errorf("scans: got %d, want 1", len(scanner.scanned))
	}
}

func TestRunAll_FrameTimeoutDetectable(t *testing.T) {
	o := NewOrchestrator(fakeOpener(browser.ErrFrameLoadTimeout), &fakeScanner{}, nil)

	_, err := o.RunAll(context.Background(), report.DefaultDevices(), "https://slow.example")
	if !errors.Is(err, browser.ErrFrameLoadTimeout) {
		t.Fatalf("err: got %v, want frame load timeout", err)
	}

	var devErr *DeviceError
	if !errors.As(err, &devErr) || devErr.Device != "desktop" {
		t.Fatalf("device attribution missing: %v", err)
	}
}
