package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripAdminBlocksRemovesBoilerplate(t *testing.T) {
	text := strings.Join([]string{
		"Poliklinika MojLab Podgorica",
		"Hemoglobin 138 120-160 g/L",
		"Napomena: rezultati važe uz pečat",
		"Izvještaj kontrolisao: dr N.N.",
		"Tel: +382 20 123 456",
		"Leukociti 6.2 4.0-9.0 10*9/L",
	}, "\n")

	got := StripAdminBlocks(text)

	assert.Contains(t, got, "Hemoglobin 138 120-160 g/L")
	assert.Contains(t, got, "Leukociti 6.2 4.0-9.0 10*9/L")
	assert.NotContains(t, got, "Poliklinika")
	assert.NotContains(t, got, "Napomena")
	assert.NotContains(t, got, "kontrolisao")
	assert.NotContains(t, got, "Tel:")
}

func TestStripAdminBlocksDropsPageNumbersAndHeaders(t *testing.T) {
	text := strings.Join([]string{
		"1 / 2",
		"Konstituent",
		"Rezultat",
		"Referentni interval",
		"Jedinica",
		"Hemoglobin 138 120-160 g/L",
		"2/2",
	}, "\n")

	got := StripAdminBlocks(text)

	assert.Equal(t, "Hemoglobin 138 120-160 g/L", got)
}

func TestStripAdminBlocksPreservesLineOrder(t *testing.T) {
	text := "prva linija x1\nNapomena: nebitno\ndruga linija x2\ntreća linija x3"

	got := StripAdminBlocks(text)
	lines := strings.Split(got, "\n")

	assert.Equal(t, []string{"prva linija x1", "druga linija x2", "treća linija x3"}, lines)
}

func TestStripAdminBlocksNoMatchesIsNoop(t *testing.T) {
	text := "Hemoglobin 138 120-160 g/L"
	assert.Equal(t, text, StripAdminBlocks(text))
}
