package guideline

import "strings"

// parseDisabilities normalizes the guideline's affected-disabilities field, a
// pipe-delimited string ("Blind | Low vision | Cognitive"), into the token
// list the dashboard filters on. Multi-word phrases join camelCase, except
// two tokens the UI expects as single lowercase words. Already-tokenized
// arrays pass through; anything else yields an empty list.
func parseDisabilities(raw any) []string {
	switch v := raw.(type) {
	case string:
		parts := strings.Split(v, "|")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if tok := disabilityToken(p); tok != "" {
				out = append(out, tok)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return v
	default:
		return []string{}
	}
}

func disabilityToken(phrase string) string {
	words := strings.Fields(strings.TrimSpace(phrase))
	if len(words) == 0 {
		return ""
	}
	if len(words) == 1 {
		return strings.ToLower(words[0])
	}

	joined := strings.ToLower(strings.Join(words, ""))
	switch joined {
	case "colorblindness", "attentiondeficit":
		return joined
	}

	var b strings.Builder
	b.WriteString(strings.ToLower(words[0]))
	for _, w := range words[1:] {
		b.WriteString(strings.ToUpper(w[:1]))
		b.WriteString(strings.ToLower(w[1:]))
	}
	return b.String()
}
