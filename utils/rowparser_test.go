package utils

import (
	"strings"
	"testing"

	"github.com/labguard/labguard-backend/dto"
	"github.com/stretchr/testify/assert"
)

func TestParseRowsValueFirstWithPrefix(t *testing.T) {
	rows, stats := ParseRows("18.5 g/L 10-15 A-Hemoglobin", "nalaz.pdf", "05.03.2024")

	assert.Len(t, rows, 1)
	r := rows[0]
	assert.Equal(t, "Hemoglobin", r.Analyte)
	assert.Equal(t, 18.5, *r.Value)
	assert.Equal(t, "g/L", r.Unit)
	assert.Equal(t, 10.0, *r.RefLow)
	assert.Equal(t, 15.0, *r.RefHigh)
	assert.Equal(t, dto.StatusAbove, r.Status)
	assert.Equal(t, "05.03.2024", r.ReportDate)
	assert.Equal(t, "nalaz.pdf", r.SourceFile)
	assert.Equal(t, 1, stats.Matched)
	assert.Equal(t, 0, stats.Skipped)
}

func TestParseRowsNameFirst(t *testing.T) {
	rows, _ := ParseRows("Leukociti 6.2 4.0-9.0 10*9/L", "nalaz.pdf", "")

	assert.Len(t, rows, 1)
	assert.Equal(t, "Leukociti", rows[0].Analyte)
	assert.Equal(t, 6.2, *rows[0].Value)
	assert.Equal(t, "10*9/L", rows[0].Unit)
	assert.Equal(t, dto.StatusInRange, rows[0].Status)
}

func TestParseRowsValueFirstNoPrefix(t *testing.T) {
	rows, _ := ParseRows("12.4 µmol/L 10.7-28.6 Gvožđe", "", "")

	assert.Len(t, rows, 1)
	assert.Equal(t, "Gvožđe", rows[0].Analyte)
	assert.Equal(t, 12.4, *rows[0].Value)
	assert.Equal(t, "µmol/L", rows[0].Unit)
}

func TestParseRowsCommaDecimals(t *testing.T) {
	rows, _ := ParseRows("Trombociti 245,5 150,0-400,0 10*9/L", "", "")

	assert.Len(t, rows, 1)
	assert.Equal(t, 245.5, *rows[0].Value)
	assert.Equal(t, 150.0, *rows[0].RefLow)
	assert.Equal(t, 400.0, *rows[0].RefHigh)
}

func TestParseRowsGrammarPriority(t *testing.T) {
	// A value-first line with a category prefix also satisfies the
	// no-prefix grammar; the prefix grammar must win and strip the prefix.
	rows, _ := ParseRows("18.5 g/L 10-15 A-Hemoglobin", "", "")

	assert.Len(t, rows, 1)
	assert.Equal(t, "Hemoglobin", rows[0].Analyte)
}

func TestParseRowsUnitNormalization(t *testing.T) {
	rows, _ := ParseRows("Leukociti 6.2 4.0-9.0 10^9/L", "", "")
	assert.Len(t, rows, 1)
	assert.Equal(t, "10*9/L", rows[0].Unit)

	rows, _ = ParseRows("7.8 umol/L 3.0-9.0 B-Bilirubin", "", "")
	assert.Len(t, rows, 1)
	assert.Equal(t, "µmol/L", rows[0].Unit)
}

func TestParseRowsSkipsProseAndUnmatchedLines(t *testing.T) {
	text := strings.Join([]string{
		"Uzorak primljen u laboratoriju", // no digit, not a candidate
		"Vrijednosti od 12.02.2024",      // candidate, no grammar match
		"nerazumljiva linija 5 % teksta", // candidate, no grammar match
		"Hemoglobin 138 120-160 g/L",     // matches
	}, "\n")

	rows, stats := ParseRows(text, "", "")

	assert.Len(t, rows, 1)
	assert.Equal(t, "Hemoglobin", rows[0].Analyte)
	assert.Equal(t, 1, stats.Matched)
	assert.Equal(t, 2, stats.Skipped)
}

func TestStatusOf(t *testing.T) {
	lo, hi := dto.Float(10), dto.Float(15)

	assert.Equal(t, dto.StatusBelow, StatusOf(dto.Float(9.9), lo, hi))
	assert.Equal(t, dto.StatusAbove, StatusOf(dto.Float(15.1), lo, hi))
	assert.Equal(t, dto.StatusInRange, StatusOf(dto.Float(10), lo, hi))
	assert.Equal(t, dto.StatusInRange, StatusOf(dto.Float(15), lo, hi))
	assert.Equal(t, dto.StatusInRange, StatusOf(dto.Float(12), lo, hi))

	assert.Equal(t, dto.StatusUnknown, StatusOf(nil, lo, hi))
	assert.Equal(t, dto.StatusUnknown, StatusOf(dto.Float(12), nil, hi))
	assert.Equal(t, dto.StatusUnknown, StatusOf(dto.Float(12), lo, nil))
}

func TestCleanAnalyteName(t *testing.T) {
	assert.Equal(t, "Hemoglobin", CleanAnalyteName("A-Hemoglobin"))
	assert.Equal(t, "Gvožđe", CleanAnalyteName("  Gvožđe  "))
	assert.Equal(t, "Sedimentacija", CleanAnalyteName("Sedimentacija mm/h"))
}

func TestDeduplicateRowsKeepsFirstPerAnalyte(t *testing.T) {
	rows := []dto.MeasurementRow{
		{Analyte: "Hemoglobin", Value: dto.Float(140), RefLow: dto.Float(120)},
		{Analyte: "Hemoglobin", Value: dto.Float(138), RefLow: dto.Float(130)},
		{Analyte: "Gvožđe", Value: dto.Float(12.4), RefLow: dto.Float(10.7)},
	}

	out := DeduplicateRows(rows)

	assert.Len(t, out, 2)
	byName := map[string]dto.MeasurementRow{}
	for _, r := range out {
		byName[r.Analyte] = r
	}
	// Sorted by (name, refLow): the refLow=120 entry comes first.
	assert.Equal(t, 140.0, *byName["Hemoglobin"].Value)
	assert.Equal(t, 12.4, *byName["Gvožđe"].Value)
}

func TestDeduplicateRowsIdempotent(t *testing.T) {
	rows := []dto.MeasurementRow{
		{Analyte: "B", RefLow: dto.Float(2)},
		{Analyte: "A", RefLow: dto.Float(1)},
		{Analyte: "B", RefLow: dto.Float(1)},
	}

	once := DeduplicateRows(rows)
	twice := DeduplicateRows(once)

	assert.Equal(t, once, twice)
}
