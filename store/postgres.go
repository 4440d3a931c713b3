package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labguard/labguard-backend/dto"
)

// Migration is the DDL for the two tables this store uses. Safe to execute
// multiple times (IF NOT EXISTS); run it at startup as an auto-migration
// step.
const Migration = `
CREATE TABLE IF NOT EXISTS account_identities (
    account_id    TEXT PRIMARY KEY,
    identity_json JSONB NOT NULL,
    bound_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS lab_reports (
    id           TEXT PRIMARY KEY,
    account_id   TEXT NOT NULL,
    report_date  TEXT NOT NULL,
    source_files JSONB NOT NULL,
    rows_json    JSONB NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_lab_reports_account
    ON lab_reports (account_id, created_at);
`

// PostgresStore is the pgx-backed Store used when DATABASE_URL is set.
// Reports are stored as JSONB; the admission guard's duplicate checks run
// in the service layer over ListReports, so no uniqueness constraints are
// declared here.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the schema if it does not exist yet.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Migration); err != nil {
		return fmt.Errorf("migrate lab store: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindBoundIdentity(ctx context.Context, accountID string) (*dto.PersonIdentity, error) {
	const query = `SELECT identity_json FROM account_identities WHERE account_id = $1`

	var data []byte
	if err := s.pool.QueryRow(ctx, query, accountID).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find bound identity: %w", err)
	}

	var id dto.PersonIdentity
	if err := json.Unmarshal(data, &id); err != nil {
		return nil, fmt.Errorf("unmarshal bound identity: %w", err)
	}
	return &id, nil
}

func (s *PostgresStore) BindIdentity(ctx context.Context, accountID string, id dto.PersonIdentity) error {
	data, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}

	const query = `INSERT INTO account_identities (account_id, identity_json)
VALUES ($1, $2)
ON CONFLICT (account_id) DO UPDATE SET identity_json = EXCLUDED.identity_json,
                                       bound_at      = now()`

	if _, err := s.pool.Exec(ctx, query, accountID, data); err != nil {
		return fmt.Errorf("bind identity: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListReports(ctx context.Context, accountID string) ([]dto.LabReport, error) {
	const query = `SELECT id, report_date, source_files, rows_json
FROM lab_reports WHERE account_id = $1 ORDER BY created_at`

	rows, err := s.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var reports []dto.LabReport
	for rows.Next() {
		var (
			rep       dto.LabReport
			filesJSON []byte
			rowsJSON  []byte
		)
		if err := rows.Scan(&rep.ID, &rep.Date, &filesJSON, &rowsJSON); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		if err := json.Unmarshal(filesJSON, &rep.SourceFiles); err != nil {
			return nil, fmt.Errorf("unmarshal source files: %w", err)
		}
		if err := json.Unmarshal(rowsJSON, &rep.Rows); err != nil {
			return nil, fmt.Errorf("unmarshal rows: %w", err)
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

func (s *PostgresStore) AppendReport(ctx context.Context, accountID string, report dto.LabReport) error {
	filesJSON, err := json.Marshal(report.SourceFiles)
	if err != nil {
		return fmt.Errorf("marshal source files: %w", err)
	}
	rowsJSON, err := json.Marshal(report.Rows)
	if err != nil {
		return fmt.Errorf("marshal rows: %w", err)
	}

	const query = `INSERT INTO lab_reports (id, account_id, report_date, source_files, rows_json)
VALUES ($1, $2, $3, $4, $5)`

	if _, err := s.pool.Exec(ctx, query, report.ID, accountID, report.Date, filesJSON, rowsJSON); err != nil {
		return fmt.Errorf("append report: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteReport(ctx context.Context, accountID, reportID string) error {
	const query = `DELETE FROM lab_reports WHERE account_id = $1 AND id = $2`

	tag, err := s.pool.Exec(ctx, query, accountID, reportID)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrReportNotFound
	}
	return nil
}

func (s *PostgresStore) UpdateRow(ctx context.Context, accountID, reportID string, rowIndex int, row dto.MeasurementRow) error {
	return s.editRows(ctx, accountID, reportID, func(rows []dto.MeasurementRow) ([]dto.MeasurementRow, error) {
		if rowIndex < 0 || rowIndex >= len(rows) {
			return nil, ErrRowIndexOutOfRange
		}
		rows[rowIndex] = row
		return rows, nil
	})
}

func (s *PostgresStore) DeleteRow(ctx context.Context, accountID, reportID string, rowIndex int) error {
	return s.editRows(ctx, accountID, reportID, func(rows []dto.MeasurementRow) ([]dto.MeasurementRow, error) {
		if rowIndex < 0 || rowIndex >= len(rows) {
			return nil, ErrRowIndexOutOfRange
		}
		return append(rows[:rowIndex], rows[rowIndex+1:]...), nil
	})
}

// editRows applies an in-place edit to a report's row set, read-modify-write
// inside one transaction.
func (s *PostgresStore) editRows(ctx context.Context, accountID, reportID string, edit func([]dto.MeasurementRow) ([]dto.MeasurementRow, error)) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin row edit: %w", err)
	}
	defer tx.Rollback(ctx)

	const selectQ = `SELECT rows_json FROM lab_reports
WHERE account_id = $1 AND id = $2 FOR UPDATE`

	var rowsJSON []byte
	if err := tx.QueryRow(ctx, selectQ, accountID, reportID).Scan(&rowsJSON); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrReportNotFound
		}
		return fmt.Errorf("load rows for edit: %w", err)
	}

	var reportRows []dto.MeasurementRow
	if err := json.Unmarshal(rowsJSON, &reportRows); err != nil {
		return fmt.Errorf("unmarshal rows for edit: %w", err)
	}

	edited, err := edit(reportRows)
	if err != nil {
		return err
	}

	editedJSON, err := json.Marshal(edited)
	if err != nil {
		return fmt.Errorf("marshal edited rows: %w", err)
	}

	const updateQ = `UPDATE lab_reports SET rows_json = $1 WHERE account_id = $2 AND id = $3`
	if _, err := tx.Exec(ctx, updateQ, editedJSON, accountID, reportID); err != nil {
		return fmt.Errorf("store edited rows: %w", err)
	}

	return tx.Commit(ctx)
}
