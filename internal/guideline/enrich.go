package guideline

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"

	"github.com/webyes/a11ycheck/report"
)

const (
	fallbackSnippet     = "No snippet available"
	fallbackSelector    = "No selector available"
	fallbackExplanation = "No explanation available"
)

// snippetPolicy strips scripts and event handlers from violation snippets
// before they travel to the dashboard or into storage. Snippets come straight
// from the audited page.
var snippetPolicy = bluemonday.UGCPolicy()

// Enrich maps raw rule-engine violations for one device into the stable shape
// the dashboard renders. Violations without a WCAG-family tag, or tagged
// best-practice, are excluded. Pure given the same input and taxonomy.
func Enrich(raw []report.RawViolation, device string, guidelines map[string]Guideline) []report.EnrichedIssue {
	issues := make([]report.EnrichedIssue, 0, len(raw))

	for _, v := range raw {
		if !isCompliance(v.Tags) {
			continue
		}

		g := guidelines[v.RuleID]

		severity := g.Severity
		if severity == "" {
			severity = v.Impact
		}
		if severity == "" {
			severity = string(report.SeverityModerate)
		}

		title := g.Title
		if title == "" {
			title = v.Help
		}
		if title == "" {
			title = v.RuleID
		}

		code := g.StandardCode
		level := g.WCAGLevel
		version := g.Version()
		if code == "" || level == "" || version == "" {
			d := deriveWCAG(v.Tags)
			if code == "" {
				code = d.Code
			}
			if level == "" {
				level = d.Level
			}
			if version == "" {
				version = d.Version
			}
		}

		help := g.Help
		if help == "" {
			help = v.Help
		}
		description := g.Description
		if description == "" {
			description = v.Description
		}

		issues = append(issues, report.EnrichedIssue{
			IssueID:              v.RuleID,
			Title:                title,
			Severity:             report.Severity(severity),
			Device:               device,
			WCAGVersion:          version,
			WCAGLevel:            level,
			StandardCode:         code,
			Help:                 help,
			HelpURL:              v.HelpURL,
			Description:          description,
			RawTags:              v.Tags,
			AffectedDisabilities: parseDisabilities(g.AffectedDisabilities),
			Items:                enrichItems(v.Nodes),
		})
	}

	return issues
}

// enrichItems builds one item per violating node: primary target selector,
// sanitized HTML snippet, plain-text label, failure explanation. Fallback
// text stands in for anything the engine left blank.
func enrichItems(nodes []report.ViolationNode) []report.IssueItem {
	items := make([]report.IssueItem, 0, len(nodes))
	for _, n := range nodes {
		selector := fallbackSelector
		if len(n.Target) > 0 && n.Target[0] != "" {
			selector = n.Target[0]
		}

		snippet := fallbackSnippet
		label := selector
		if n.HTML != "" {
			snippet = snippetPolicy.Sanitize(n.HTML)
			if text := snippetText(n.HTML); text != "" {
				label = text
			}
		}

		explanation := n.FailureSummary
		if explanation == "" {
			explanation = fallbackExplanation
		}

		items = append(items, report.IssueItem{
			Selector:    selector,
			Snippet:     snippet,
			Label:       label,
			Explanation: explanation,
		})
	}
	return items
}

// snippetText extracts the readable text of an HTML fragment for use as an
// element label in the issue list.
func snippetText(fragment string) string {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return ""
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.Join(strings.Fields(b.String()), " ")
}
