// Package report defines the structured types produced by an accessibility
// audit. These are the public API contract: any consumer (dashboard UIs,
// history stores, custom pipelines) imports this package to receive and
// process audit results.
package report

// Severity buckets an issue by how strongly it degrades access.
type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeveritySerious  Severity = "serious"
	SeverityCritical Severity = "critical"
)

// DeviceProfile is one simulated device viewport. Profiles are immutable and
// statically configured; audits run once per profile, in configured order.
type DeviceProfile struct {
	Name   string `json:"name" yaml:"name"`
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`
}

// DefaultDevices are the profiles audited when the configuration lists none.
func DefaultDevices() []DeviceProfile {
	return []DeviceProfile{
		{Name: "desktop", Width: 1200, Height: 1080},
		{Name: "mobile", Width: 375, Height: 667},
	}
}

// ViolationNode is one DOM node affected by a rule violation.
type ViolationNode struct {
	HTML           string   `json:"html"`
	Target         []string `json:"target"`
	FailureSummary string   `json:"failureSummary"`
}

// RawViolation is one rule failure as reported by the rule engine. It is
// read-only to the rest of the system; enrichment derives from it, never
// mutates it.
type RawViolation struct {
	RuleID      string          `json:"id"`
	Impact      string          `json:"impact"`
	Tags        []string        `json:"tags"`
	Help        string          `json:"help"`
	HelpURL     string          `json:"helpUrl"`
	Description string          `json:"description"`
	Nodes       []ViolationNode `json:"nodes"`
}

// IssueItem is one affected element of an enriched issue, the unit a marker
// is bound to.
type IssueItem struct {
	Selector    string `json:"selector"`
	Snippet     string `json:"snippet"`
	Label       string `json:"label"`
	Explanation string `json:"explanation"`
}

// EnrichedIssue is a raw violation mapped through the guideline taxonomy into
// the stable shape the dashboard renders.
type EnrichedIssue struct {
	IssueID              string      `json:"issue_id"`
	Title                string      `json:"title"`
	Severity             Severity    `json:"severity"`
	Device               string      `json:"device"`
	WCAGVersion          string      `json:"wcag_version"`
	WCAGLevel            string      `json:"wcag_level"`
	StandardCode         string      `json:"standard_code"`
	Help                 string      `json:"help,omitempty"`
	HelpURL              string      `json:"help_url,omitempty"`
	Description          string      `json:"description,omitempty"`
	RawTags              []string    `json:"raw_tags"`
	AffectedDisabilities []string    `json:"affected_disabilities"`
	Items                []IssueItem `json:"items"`
}

// AuditResult is the immutable snapshot of one multi-device audit run. A new
// run supersedes it wholesale; there is no incremental merge. Devices holds
// the profile order the run used, and Issues/Raw are keyed by profile name.
type AuditResult struct {
	ID        string                     `json:"id"`
	URL       string                     `json:"url"`
	StartedAt int64                      `json:"started_at"` // epoch milliseconds
	Devices   []DeviceProfile            `json:"devices"`
	Issues    map[string][]EnrichedIssue `json:"issues"`
	Raw       map[string][]RawViolation  `json:"raw,omitempty"`
}

// IssueCount returns the total enriched issue count across all devices.
func (r *AuditResult) IssueCount() int {
	n := 0
	for _, issues := range r.Issues {
		n += len(issues)
	}
	return n
}
