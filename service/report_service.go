package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/labguard/labguard-backend/dto"
	"github.com/labguard/labguard-backend/store"
	"github.com/labguard/labguard-backend/utils"
)

// UploadFile is one file of an upload batch, already read into memory.
type UploadFile struct {
	Name string
	Data []byte
}

// ReportService runs the ingestion pipeline: per-file text extraction,
// normalization, identity extraction, admin stripping and row parsing,
// then batch-level identity reconciliation and admission guarding. Files
// are processed strictly in order so an identity mismatch aborts before
// later files are touched. Nothing is written to the store until every
// check has passed.
type ReportService struct {
	processor PDFProcessor
	store     store.Store
}

func NewReportService(processor PDFProcessor, st store.Store) *ReportService {
	return &ReportService{processor: processor, store: st}
}

// AnalyzeBatch parses all files of one upload and, when the batch passes
// identity reconciliation and the admission guard, persists it as a single
// LabReport. Returns one of the dto sentinel errors on any rejection path;
// stored state is untouched in every such case.
func (s *ReportService) AnalyzeBatch(ctx context.Context, accountID string, files []UploadFile) (*dto.AnalyzeBatchResponse, error) {
	var (
		allRows   []dto.MeasurementRow
		fileNames []string
		batchID   dto.PersonIdentity
		stats     dto.ParseStats
	)

	for _, f := range files {
		fileNames = append(fileNames, f.Name)

		raw, err := s.processor.ExtractText(f.Data)
		if err != nil {
			return nil, fmt.Errorf("extract text from %s: %w", f.Name, err)
		}
		norm := utils.Normalize(raw)

		// Identity and date come from the unstripped text: both live in
		// header/footer lines the stripper would remove.
		fileID := utils.ExtractIdentity(norm)
		if fileID.HasAny() {
			if !batchID.HasAny() {
				batchID = fileID
			} else if !utils.IdentitiesCompatible(batchID, fileID) {
				return nil, dto.ErrIdentityMismatchInBatch
			} else {
				batchID = utils.MergeIdentity(batchID, fileID)
			}
		}

		reportDate := utils.ExtractReportDate(norm)
		cleaned := utils.StripAdminBlocks(norm)

		rows, fileStats := utils.ParseRows(cleaned, f.Name, reportDate)
		rows = utils.DeduplicateRows(rows)
		stats.Matched += fileStats.Matched
		stats.Skipped += fileStats.Skipped

		log.Debug().
			Str("file", f.Name).
			Int("matched", fileStats.Matched).
			Int("skipped", fileStats.Skipped).
			Msg("parsed report file")

		allRows = append(allRows, rows...)
	}

	if len(allRows) == 0 {
		return nil, dto.ErrNoReadableContent
	}

	report, err := s.admit(ctx, accountID, allRows, fileNames, batchID)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("account", accountID).
		Str("report", report.ID).
		Str("date", report.Date).
		Int("rows", len(report.Rows)).
		Msg("report admitted")

	return &dto.AnalyzeBatchResponse{
		Report:     report,
		Identity:   batchID,
		ParseStats: stats,
	}, nil
}

// admit applies the owner check and the one-report-per-day-per-account
// policy. Checks run before any write so a rejection leaves both the
// identity binding and the report collection untouched.
func (s *ReportService) admit(ctx context.Context, accountID string, rows []dto.MeasurementRow, fileNames []string, batchID dto.PersonIdentity) (*dto.LabReport, error) {
	var boundMissing bool
	if batchID.HasAny() {
		bound, err := s.store.FindBoundIdentity(ctx, accountID)
		if err != nil {
			return nil, fmt.Errorf("load bound identity: %w", err)
		}
		if bound == nil {
			boundMissing = true
		} else if !utils.IdentitiesCompatible(*bound, batchID) {
			return nil, dto.ErrOwnerMismatch
		}
	}

	reportDate := resolveReportDate(rows)

	existing, err := s.store.ListReports(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}

	incoming := make(map[string]bool, len(fileNames))
	for _, n := range fileNames {
		incoming[strings.ToLower(strings.TrimSpace(n))] = true
	}
	for _, r := range existing {
		if r.Date == reportDate {
			return nil, dto.ErrDuplicateReport
		}
		for _, fn := range r.SourceFiles {
			if incoming[strings.ToLower(strings.TrimSpace(fn))] {
				return nil, dto.ErrDuplicateReport
			}
		}
	}

	if boundMissing {
		if err := s.store.BindIdentity(ctx, accountID, batchID); err != nil {
			return nil, fmt.Errorf("bind identity: %w", err)
		}
	}

	report := dto.LabReport{
		ID:          uuid.NewString(),
		Date:        reportDate,
		SourceFiles: fileNames,
		Rows:        rows,
	}
	if err := s.store.AppendReport(ctx, accountID, report); err != nil {
		return nil, fmt.Errorf("append report: %w", err)
	}
	return &report, nil
}

// resolveReportDate takes the first row carrying a printed report date,
// converted to ISO; today when no row has one or it does not convert.
func resolveReportDate(rows []dto.MeasurementRow) string {
	for _, r := range rows {
		if r.ReportDate == "" {
			continue
		}
		if iso := utils.DmyToISO(r.ReportDate); iso != "" {
			return iso
		}
		break
	}
	return time.Now().Format("2006-01-02")
}

// ListReports returns all of the account's stored reports.
func (s *ReportService) ListReports(ctx context.Context, accountID string) ([]dto.LabReport, error) {
	return s.store.ListReports(ctx, accountID)
}

// DeleteReport removes one stored report on explicit user request.
func (s *ReportService) DeleteReport(ctx context.Context, accountID, reportID string) error {
	return s.store.DeleteReport(ctx, accountID, reportID)
}

// UpdateRow replaces one row of a stored report on explicit user request.
func (s *ReportService) UpdateRow(ctx context.Context, accountID, reportID string, rowIndex int, row dto.MeasurementRow) error {
	return s.store.UpdateRow(ctx, accountID, reportID, rowIndex, row)
}

// DeleteRow removes one row of a stored report on explicit user request.
func (s *ReportService) DeleteRow(ctx context.Context, accountID, reportID string, rowIndex int) error {
	return s.store.DeleteRow(ctx, accountID, reportID, rowIndex)
}
