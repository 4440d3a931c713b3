package utils

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/labguard/labguard-backend/dto"
)

const (
	numPat = `[-+]?\d+(?:[.,]\d+)?`
	// Unit tokens seen across the supported report layouts. Exponent may be
	// written with *, ^ or a (already normalized) superscript digit; the
	// micro prefix may arrive as an ASCII "u".
	unitPat = `(?:10(?:[*^]?\d+)/L|10(?:[*^]?\d+)/(?:µL|uL)|mmol/L|[µu]mol/L|g/L|L/L|fL|pg|%|s|mm/h|/(?:µL|uL))`
)

var unitRE = regexp.MustCompile(unitPat)

// rowGrammar is one line rule: text in, one MeasurementRow or no match out.
type rowGrammar struct {
	name string
	re   *regexp.Regexp
}

// The grammars are tried in this exact order; the first match wins. (a)
// value-first with a single-letter category prefix on the analyte name,
// (b) name-first, (c) value-first without the prefix (analytes whose
// canonical line omits a category code, e.g. Gvožđe).
var rowGrammars = []rowGrammar{
	{
		name: "value-first-with-prefix",
		re: regexp.MustCompile(`^(?P<val>` + numPat + `)\s+(?P<un>` + unitPat + `)\s*(?P<low>` + numPat +
			`)\s*-\s*(?P<high>` + numPat + `)\s+(?P<an>[A-ZČĆŠĐŽ]-[A-Za-zČĆŠĐŽčćšđž.\-% ]+)$`),
	},
	{
		name: "name-first",
		re: regexp.MustCompile(`^(?P<an>[A-Za-zČĆŠĐŽčćšđž][A-Za-zČĆŠĐŽčćšđž.\-% ]+?)\s+(?P<val>` + numPat +
			`)\s+(?P<low>` + numPat + `)\s*-\s*(?P<high>` + numPat + `)\s+(?P<un>` + unitPat + `)$`),
	},
	{
		name: "value-first-no-prefix",
		re: regexp.MustCompile(`^(?P<val>` + numPat + `)\s*(?P<un>` + unitPat + `)\s*(?P<low>` + numPat +
			`)\s*-\s*(?P<high>` + numPat + `)\s*(?P<an>[A-Za-zČĆŠĐŽčćšđž][A-Za-zČĆŠĐŽčćšđž.\-% ]+)$`),
	},
}

var categoryPrefixRE = regexp.MustCompile(`(?i)^[A-ZČĆŠĐŽ]-\s*`)
var trailingUnitRE = regexp.MustCompile(unitPat + `\s*$`)

// ParseRows runs the grammars over every line of stripped report text and
// returns one MeasurementRow per matching line. Lines without a digit and a
// unit token (or percent sign) are not considered candidates at all;
// candidate lines that match no grammar are counted as skipped and dropped
// silently — heterogeneous layouts make that the expected case, not an
// error. reportDate and sourceFile are stamped onto every row.
func ParseRows(text, sourceFile, reportDate string) ([]dto.MeasurementRow, dto.ParseStats) {
	var rows []dto.MeasurementRow
	var stats dto.ParseStats

	for _, line := range strings.Split(text, "\n") {
		s := strings.Join(strings.Fields(line), " ")
		if s == "" || !hasDigitRE.MatchString(s) ||
			(!unitRE.MatchString(s) && !strings.Contains(s, "%")) {
			continue
		}

		row, ok := matchRowLine(s)
		if !ok {
			stats.Skipped++
			continue
		}
		stats.Matched++

		row.ReportDate = reportDate
		row.SourceFile = sourceFile
		row.RawLine = line
		rows = append(rows, row)
	}

	return rows, stats
}

func matchRowLine(s string) (dto.MeasurementRow, bool) {
	for _, g := range rowGrammars {
		m := g.re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		group := func(name string) string {
			return m[g.re.SubexpIndex(name)]
		}

		val := parseNumericToken(group("val"))
		low := parseNumericToken(group("low"))
		high := parseNumericToken(group("high"))

		return dto.MeasurementRow{
			Analyte: CleanAnalyteName(group("an")),
			Value:   val,
			Unit:    normalizeUnit(group("un")),
			RefLow:  low,
			RefHigh: high,
			Status:  StatusOf(val, low, high),
		}, true
	}
	return dto.MeasurementRow{}, false
}

// CleanAnalyteName strips a leading single-letter category prefix and any
// trailing unit remnant, then collapses whitespace.
func CleanAnalyteName(an string) string {
	name := categoryPrefixRE.ReplaceAllString(strings.TrimSpace(an), "")
	name = trailingUnitRE.ReplaceAllString(name, "")
	return strings.Join(strings.Fields(name), " ")
}

// StatusOf derives the reference-interval status. Any missing operand
// degrades to unknown.
func StatusOf(v, lo, hi *float64) dto.RowStatus {
	if v == nil || lo == nil || hi == nil {
		return dto.StatusUnknown
	}
	switch {
	case *v < *lo:
		return dto.StatusBelow
	case *v > *hi:
		return dto.StatusAbove
	default:
		return dto.StatusInRange
	}
}

// parseNumericToken accepts comma or period as the decimal separator.
// An unparsable token becomes nil, not an error.
func parseNumericToken(tok string) *float64 {
	n, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(tok), ",", "."), 64)
	if err != nil {
		return nil
	}
	return &n
}

func normalizeUnit(un string) string {
	un = strings.ReplaceAll(un, "^", "*")
	return strings.ReplaceAll(un, "umol", "µmol")
}

// DeduplicateRows collapses repeated analyte entries within one file's
// parse: rows are stable-sorted by (analyte name, reference-low proxy) and
// the first row per distinct analyte name is kept. Some layouts repeat an
// analyte in summary and detail sections; the first in sorted order is
// canonical. Idempotent.
func DeduplicateRows(rows []dto.MeasurementRow) []dto.MeasurementRow {
	sorted := make([]dto.MeasurementRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return dedupKey(sorted[i]) < dedupKey(sorted[j])
	})

	seen := make(map[string]bool, len(sorted))
	out := make([]dto.MeasurementRow, 0, len(sorted))
	for _, r := range sorted {
		if seen[r.Analyte] {
			continue
		}
		seen[r.Analyte] = true
		out = append(out, r)
	}
	return out
}

func dedupKey(r dto.MeasurementRow) string {
	low := ""
	if r.RefLow != nil {
		low = strconv.FormatFloat(*r.RefLow, 'f', -1, 64)
	}
	return r.Analyte + "\x00" + low
}
