package utils

import (
	"regexp"
	"strings"
)

var (
	issuanceDateRE = regexp.MustCompile(`(?i)datum\s+izdavanja\s+nalaza:\s*(\d{2}\.\d{2}\.\d{4}\.?)`)
	bareDateRE     = regexp.MustCompile(`\b(\d{2}\.\d{2}\.\d{4})\b`)
	dmyRE          = regexp.MustCompile(`^(\d{2})\.(\d{2})\.(\d{4})$`)
)

// ExtractReportDate finds the report issuance date in normalized text.
// The labeled "datum izdavanja nalaza:" form wins; otherwise the first bare
// dd.mm.yyyy token anywhere. Returns "" when neither is present. The value
// is returned as printed (dd.mm.yyyy); ISO conversion happens at admission.
func ExtractReportDate(text string) string {
	if m := issuanceDateRE.FindStringSubmatch(text); m != nil {
		return strings.TrimSuffix(m[1], ".")
	}
	if m := bareDateRE.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

// DmyToISO converts dd.mm.yyyy to yyyy-mm-dd. Returns "" for anything that
// is not an exact dd.mm.yyyy token.
func DmyToISO(dmy string) string {
	m := dmyRE.FindStringSubmatch(strings.TrimSpace(dmy))
	if m == nil {
		return ""
	}
	return m[3] + "-" + m[2] + "-" + m[1]
}
