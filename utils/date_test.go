package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractReportDateLabeled(t *testing.T) {
	text := "Laboratorijski nalaz\nDatum izdavanja nalaza: 05.03.2024.\nHemoglobin 138"
	assert.Equal(t, "05.03.2024", ExtractReportDate(text))
}

func TestExtractReportDateLabeledWithoutTrailingDot(t *testing.T) {
	text := "Datum izdavanja nalaza: 05.03.2024"
	assert.Equal(t, "05.03.2024", ExtractReportDate(text))
}

func TestExtractReportDateLabeledWinsOverEarlierBareDate(t *testing.T) {
	text := "Datum rođenja: 01.01.1990\nDatum izdavanja nalaza: 05.03.2024."
	assert.Equal(t, "05.03.2024", ExtractReportDate(text))
}

func TestExtractReportDateFallbackFirstBareDate(t *testing.T) {
	text := "uzorkovano 12.02.2024 u 08:15\nkasniji datum 13.02.2024"
	assert.Equal(t, "12.02.2024", ExtractReportDate(text))
}

func TestExtractReportDateAbsent(t *testing.T) {
	assert.Equal(t, "", ExtractReportDate("nema datuma ovdje"))
}

func TestDmyToISO(t *testing.T) {
	assert.Equal(t, "2024-03-01", DmyToISO("01.03.2024"))
	assert.Equal(t, "1990-01-01", DmyToISO(" 01.01.1990 "))
	assert.Equal(t, "", DmyToISO("1.3.2024"))
	assert.Equal(t, "", DmyToISO(""))
	assert.Equal(t, "", DmyToISO("01.03.2024."))
}
