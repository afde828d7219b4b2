package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
)

// Markdown renders an AuditResult as a human-readable Markdown report.
// Violation snippets are HTML fragments from the audited page; they are
// converted to markdown so the report stays readable in plain text.
func Markdown(r *AuditResult) string {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
		),
	)

	var b strings.Builder
	fmt.Fprintf(&b, "# Accessibility audit: %s\n\n", r.URL)
	fmt.Fprintf(&b, "Run %s at %s. %d issues across %d device profiles.\n",
		r.ID,
		time.UnixMilli(r.StartedAt).UTC().Format(time.RFC3339),
		r.IssueCount(), len(r.Devices))

	for _, device := range r.Devices {
		issues := r.Issues[device.Name]
		fmt.Fprintf(&b, "\n## %s (%d issues)\n", device.Name, len(issues))
		if len(issues) == 0 {
			b.WriteString("\nNo violations found.\n")
			continue
		}
		for _, issue := range issues {
			fmt.Fprintf(&b, "\n### %s: %s\n\n", issue.IssueID, issue.Title)
			fmt.Fprintf(&b, "Severity: %s", issue.Severity)
			if issue.StandardCode != "" {
				fmt.Fprintf(&b, ", WCAG %s %s (%s)",
					issue.WCAGVersion, issue.WCAGLevel, issue.StandardCode)
			}
			b.WriteString("\n")
			if len(issue.AffectedDisabilities) > 0 {
				fmt.Fprintf(&b, "Affects: %s\n", strings.Join(issue.AffectedDisabilities, ", "))
			}
			for _, item := range issue.Items {
				fmt.Fprintf(&b, "\n- `%s`\n", item.Selector)
				if item.Snippet != "" {
					md, err := conv.ConvertString(item.Snippet)
					if err != nil || strings.TrimSpace(md) == "" {
						// Not every fragment converts (e.g. bare inputs);
						// fall back to the raw snippet in a code fence.
						fmt.Fprintf(&b, "\n  ```html\n  %s\n  ```\n", item.Snippet)
					} else {
						fmt.Fprintf(&b, "  %s\n", strings.TrimSpace(md))
					}
				}
				if item.Explanation != "" {
					fmt.Fprintf(&b, "  %s\n", item.Explanation)
				}
			}
		}
	}
	return b.String()
}
