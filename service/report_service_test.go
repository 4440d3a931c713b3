package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labguard/labguard-backend/dto"
	"github.com/labguard/labguard-backend/store"
)

// stubProcessor treats the upload bytes as the already-extracted text, so
// pipeline tests can feed plain fixtures instead of real PDFs.
type stubProcessor struct{}

func (stubProcessor) ExtractText(data []byte) (string, error) {
	return string(data), nil
}

const anaMarchReport = `Ime i prezime: Ana Anić
Datum rođenja: 01.01.1990
Datum izdavanja nalaza: 01.03.2024
Glukoza 5.4 4.1-6.1 mmol/L
138 g/L 120-160 H-Hemoglobin
`

func newTestService() (*ReportService, *store.MemoryStore) {
	st := store.NewMemoryStore()
	return NewReportService(stubProcessor{}, st), st
}

func TestAnalyzeBatchAdmitsReport(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()

	resp, err := svc.AnalyzeBatch(ctx, "acc-1", []UploadFile{{Name: "mar.pdf", Data: []byte(anaMarchReport)}})
	require.NoError(t, err)

	assert.Equal(t, "2024-03-01", resp.Report.Date)
	assert.Equal(t, []string{"mar.pdf"}, resp.Report.SourceFiles)
	assert.NotEmpty(t, resp.Report.ID)
	assert.Equal(t, 2, resp.ParseStats.Matched)

	require.Len(t, resp.Report.Rows, 2)
	// Dedup sorts rows by analyte name.
	assert.Equal(t, "Glukoza", resp.Report.Rows[0].Analyte)
	assert.Equal(t, dto.StatusInRange, resp.Report.Rows[0].Status)
	assert.Equal(t, "Hemoglobin", resp.Report.Rows[1].Analyte)

	assert.Equal(t, "Ana Anić", resp.Identity.Name)
	assert.Equal(t, "01.01.1990", resp.Identity.DateOfBirth)

	// The batch identity is now bound to the account.
	bound, err := st.FindBoundIdentity(ctx, "acc-1")
	require.NoError(t, err)
	require.NotNil(t, bound)
	assert.Equal(t, "Ana Anić", bound.Name)

	stored, err := st.ListReports(ctx, "acc-1")
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestAnalyzeBatchRejectsDuplicateDate(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()

	_, err := svc.AnalyzeBatch(ctx, "acc-1", []UploadFile{{Name: "mar.pdf", Data: []byte(anaMarchReport)}})
	require.NoError(t, err)

	// Different file name, same printed issuance date.
	_, err = svc.AnalyzeBatch(ctx, "acc-1", []UploadFile{{Name: "mar-copy.pdf", Data: []byte(anaMarchReport)}})
	assert.ErrorIs(t, err, dto.ErrDuplicateReport)

	stored, _ := st.ListReports(ctx, "acc-1")
	assert.Len(t, stored, 1)
}

func TestAnalyzeBatchRejectsDuplicateFileName(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()

	_, err := svc.AnalyzeBatch(ctx, "acc-1", []UploadFile{{Name: "Mar.PDF", Data: []byte(anaMarchReport)}})
	require.NoError(t, err)

	april := `Datum izdavanja nalaza: 01.04.2024
Glukoza 5.0 4.1-6.1 mmol/L
`
	// Same file name in a different case, different date.
	_, err = svc.AnalyzeBatch(ctx, "acc-1", []UploadFile{{Name: "mar.pdf", Data: []byte(april)}})
	assert.ErrorIs(t, err, dto.ErrDuplicateReport)

	stored, _ := st.ListReports(ctx, "acc-1")
	assert.Len(t, stored, 1)
}

func TestAnalyzeBatchRejectsOwnerMismatch(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()

	_, err := svc.AnalyzeBatch(ctx, "acc-1", []UploadFile{{Name: "mar.pdf", Data: []byte(anaMarchReport)}})
	require.NoError(t, err)

	marko := `Ime i prezime: Marko Markov
Datum izdavanja nalaza: 01.04.2024
Glukoza 5.0 4.1-6.1 mmol/L
`
	_, err = svc.AnalyzeBatch(ctx, "acc-1", []UploadFile{{Name: "apr.pdf", Data: []byte(marko)}})
	assert.ErrorIs(t, err, dto.ErrOwnerMismatch)

	// Rejection leaves both the binding and the report list untouched.
	bound, _ := st.FindBoundIdentity(ctx, "acc-1")
	require.NotNil(t, bound)
	assert.Equal(t, "Ana Anić", bound.Name)
	stored, _ := st.ListReports(ctx, "acc-1")
	assert.Len(t, stored, 1)
}

func TestAnalyzeBatchAcceptsSamePersonFollowUp(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.AnalyzeBatch(ctx, "acc-1", []UploadFile{{Name: "mar.pdf", Data: []byte(anaMarchReport)}})
	require.NoError(t, err)

	// Name matching is case and whitespace insensitive; a missing DOB is
	// compatible with the bound one.
	followUp := `Ime i prezime:  ana   anić
Datum izdavanja nalaza: 01.04.2024
Glukoza 5.9 4.1-6.1 mmol/L
`
	resp, err := svc.AnalyzeBatch(ctx, "acc-1", []UploadFile{{Name: "apr.pdf", Data: []byte(followUp)}})
	require.NoError(t, err)
	assert.Equal(t, "2024-04-01", resp.Report.Date)
}

func TestAnalyzeBatchRejectsMixedIdentitiesInBatch(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()

	marko := `Ime i prezime: Marko Markov
Datum izdavanja nalaza: 01.03.2024
Glukoza 5.0 4.1-6.1 mmol/L
`
	_, err := svc.AnalyzeBatch(ctx, "acc-1", []UploadFile{
		{Name: "a.pdf", Data: []byte(anaMarchReport)},
		{Name: "b.pdf", Data: []byte(marko)},
	})
	assert.ErrorIs(t, err, dto.ErrIdentityMismatchInBatch)

	stored, _ := st.ListReports(ctx, "acc-1")
	assert.Empty(t, stored)
}

func TestAnalyzeBatchRejectsUnreadableUpload(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()

	_, err := svc.AnalyzeBatch(ctx, "acc-1", []UploadFile{
		{Name: "scan.pdf", Data: []byte("Poliklinika MojLab\nLaboratorijski nalaz\n")},
	})
	assert.ErrorIs(t, err, dto.ErrNoReadableContent)

	stored, _ := st.ListReports(ctx, "acc-1")
	assert.Empty(t, stored)
	bound, _ := st.FindBoundIdentity(ctx, "acc-1")
	assert.Nil(t, bound)
}

func TestAnalyzeBatchFallsBackToTodayWithoutDate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	undated := "Glukoza 5.4 4.1-6.1 mmol/L\n"
	resp, err := svc.AnalyzeBatch(ctx, "acc-1", []UploadFile{{Name: "nodate.pdf", Data: []byte(undated)}})
	require.NoError(t, err)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, resp.Report.Date)
}
