package utils

import (
	"regexp"
	"strings"
)

var (
	superscriptDigits = map[rune]rune{
		'⁰': '0', '¹': '1', '²': '2', '³': '3', '⁴': '4',
		'⁵': '5', '⁶': '6', '⁷': '7', '⁸': '8', '⁹': '9',
	}
	horizontalSpaceRE = regexp.MustCompile(`[ \t]+`)
	blankLinesRE      = regexp.MustCompile(`\n{2,}`)
	dashRE            = regexp.MustCompile(`[–—]`)
)

// Normalize canonicalizes raw extracted report text: superscript digits
// become ASCII digits, the Greek mu variant becomes the micro sign, en/em
// dashes become hyphen-minus, runs of horizontal whitespace collapse to one
// space and runs of blank lines to one newline. Idempotent.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	t := translateSuperscripts(raw)
	t = strings.ReplaceAll(t, "μ", "µ") // μ -> µ
	t = dashRE.ReplaceAllString(t, "-")
	t = horizontalSpaceRE.ReplaceAllString(t, " ")
	t = blankLinesRE.ReplaceAllString(t, "\n")
	return strings.TrimSpace(t)
}

func translateSuperscripts(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if d, ok := superscriptDigits[r]; ok {
			b.WriteRune(d)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
