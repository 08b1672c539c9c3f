package headline

import "strings"

// trailingSuffixes are site-name suffixes stripped from composite
// strings before splitting. Longest first, so the compound suffix is
// never left half-stripped.
var trailingSuffixes = []string{
	"| Professional Profile | LinkedIn",
	"| LinkedIn Profile",
	"| LinkedIn",
}

const primaryDelimiter = " - "

// SplitComposite parses one free-text composite string (a page title or
// meta-content value) into its (name, title, company) parts.
//
// Segments are split on " - ", falling back to "|" when the primary
// delimiter yields a single segment. A two-segment string may carry
// "Title at Company" in its second segment. A name that itself contains
// " - " or " at " mis-segments; that is an accepted limitation of the
// heuristic, not corrected here.
func SplitComposite(s string) (name, title, company *string) {
	t := strings.TrimSpace(s)
	for _, suffix := range trailingSuffixes {
		if strings.HasSuffix(t, suffix) {
			t = strings.TrimSpace(strings.TrimSuffix(t, suffix))
		}
	}

	parts := splitSegments(t, primaryDelimiter)
	if len(parts) <= 1 && strings.Contains(t, "|") {
		parts = splitSegments(t, "|")
	}

	if len(parts) > 0 {
		name = nonEmpty(parts[0])
	}
	switch {
	case len(parts) == 2:
		second := parts[1]
		if i := strings.Index(second, " at "); i >= 0 {
			title = nonEmpty(second[:i])
			company = nonEmpty(second[i+len(" at "):])
		} else {
			title = nonEmpty(second)
		}
	case len(parts) >= 3:
		title = nonEmpty(strings.Join(parts[1:len(parts)-1], primaryDelimiter))
		company = nonEmpty(parts[len(parts)-1])
	}
	return name, title, company
}

// splitSegments splits on sep, trimming each segment and dropping
// empties.
func splitSegments(s, sep string) []string {
	var out []string
	for _, p := range strings.Split(s, sep) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// nonEmpty trims s and returns a pointer to it, or nil when nothing
// remains. Every field the extractor produces goes through this, so
// stored and compared values are always normalized.
func nonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
