package guideline

import (
	"regexp"
	"strings"
)

// Tag shapes the rule engine emits for WCAG classification:
//   - wcag412          success criterion 4.1.2
//   - wcag2a/wcag21aa  version 2.x at level A/AA/AAA
//   - wcag2/wcag21/wcag22  bare version markers
var (
	wcagAnyRe   = regexp.MustCompile(`(?i)^wcag(2|21|22)(a{1,3}|\d{3})$`)
	wcagCodeRe  = regexp.MustCompile(`^wcag(\d{3})$`)
	wcagLevelRe = regexp.MustCompile(`(?i)^wcag(\d{1,2})(a{1,3})$`)
)

// isCompliance reports whether the violation belongs in compliance results:
// it carries a WCAG-family tag and is not flagged best-practice.
func isCompliance(tags []string) bool {
	tagged := false
	for _, t := range tags {
		if t == "best-practice" {
			return false
		}
		if wcagAnyRe.MatchString(t) {
			tagged = true
		}
	}
	return tagged
}

// derivedWCAG is WCAG metadata inferred from rule tags, used when the
// guideline taxonomy has no entry for a rule.
type derivedWCAG struct {
	Code    string // success criterion, e.g. "4.1.2"
	Level   string // "A" | "AA" | "AAA"
	Version string // "2.0" | "2.1" | "2.2"
}

// deriveWCAG infers success criterion, conformance level and version from
// the engine's tags. A bare wcag22/wcag21/wcag2 tag overrides the version, in
// that precedence order.
func deriveWCAG(tags []string) derivedWCAG {
	var d derivedWCAG

	for _, t := range tags {
		if m := wcagCodeRe.FindStringSubmatch(t); m != nil && d.Code == "" {
			digits := m[1]
			d.Code = digits[0:1] + "." + digits[1:2] + "." + digits[2:3]
		}
		if m := wcagLevelRe.FindStringSubmatch(t); m != nil && d.Level == "" {
			d.Version = digitsToVersion(m[1])
			d.Level = strings.ToUpper(m[2])
		}
	}

	for _, t := range tags {
		if t == "wcag22" {
			d.Version = "2.2"
		}
	}
	if d.Version != "2.2" {
		for _, t := range tags {
			if t == "wcag21" {
				d.Version = "2.1"
			}
		}
	}
	if d.Version == "" {
		for _, t := range tags {
			if t == "wcag2" {
				d.Version = "2.0"
			}
		}
	}

	return d
}

// digitsToVersion turns a tag's version digits into "major.minor":
// "2" → "2.0", "21" → "2.1", "22" → "2.2".
func digitsToVersion(digits string) string {
	if len(digits) == 2 {
		return digits[0:1] + "." + digits[1:2]
	}
	return digits + ".0"
}
