package utils

import (
	"regexp"
	"strings"
)

// Boilerplate found on lab report printouts: disclaimers, clinic
// identification, signature lines, duplicate-report notices. Blanked out
// before row parsing so they cannot shadow measurement lines. Order matters:
// the issuance-date line is among them, so the date must be extracted
// before stripping.
var adminPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)napomena:.*`),
	regexp.MustCompile(`(?i)izvje[sš]taj\s+kontrolisa[oa]:.*`),
	regexp.MustCompile(`(?i)specijalista\s+klini[čc]ke\s+biohemije.*`),
	regexp.MustCompile(`(?i)rezultati\s+analiza\s+su\s+kompjuterski\s+[a-z\s]+va[žz]e\s+bez\s+potpisa\s+i\s+pe[čc]ata\.?`),
	regexp.MustCompile(`(?i)datum\s+izdavanja\s+nalaza:.*`),
	regexp.MustCompile(`(?i)poliklinika\s+mojlab.*`),
	regexp.MustCompile(`(?i)laboratorija.*moskovska.*`),
	regexp.MustCompile(`(?i)tel:\s*[+\d,\s]+`),
	regexp.MustCompile(`(?i)dom\s+zdravlja.*`),
	regexp.MustCompile(`(?i)centar\s+za\s+laboratorijsku\s+dijagnostiku.*`),
	regexp.MustCompile(`(?i)duplikat\s+kona[nm]og\s+nalaza.*`),
}

var (
	pageNumberRE = regexp.MustCompile(`(?i)^\s*\d+\s*/\s*\d+\s*$`)
	// Bare column-header labels that survive table flattening.
	columnHeaderRE = regexp.MustCompile(`(?i)^\s*(konstituent|rezultat|referentni\s+interval|jedinica|metoda\s+ispitivanja|jm|ref\.?vr|analiza)\s*$`)
)

// StripAdminBlocks removes boilerplate from normalized report text: admin
// patterns are blanked in place, then page-number-only lines, bare column
// headers and empty lines are dropped. Surviving lines keep their order.
func StripAdminBlocks(t string) string {
	text := t
	for _, pat := range adminPatterns {
		text = pat.ReplaceAllString(text, " ")
	}
	var cleaned []string
	for _, ln := range strings.Split(text, "\n") {
		s := strings.TrimSpace(ln)
		if s == "" {
			continue
		}
		if pageNumberRE.MatchString(s) {
			continue
		}
		if columnHeaderRE.MatchString(s) {
			continue
		}
		cleaned = append(cleaned, ln)
	}
	out := strings.Join(cleaned, "\n")
	out = horizontalSpaceRE.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}
