// Package store holds the account/report persistence collaborator: the
// interface the ingestion core is written against, an in-memory
// implementation for tests and development, and a PostgreSQL one for
// production. The core never deletes or mutates reports on its own;
// report/row edits are explicit user operations passed through here.
package store

import (
	"context"
	"errors"

	"github.com/labguard/labguard-backend/dto"
)

var (
	ErrReportNotFound    = errors.New("report not found")
	ErrRowIndexOutOfRange = errors.New("row index out of range")
)

// Store is the account/report persistence contract.
type Store interface {
	// FindBoundIdentity returns the identity bound to the account, or nil
	// when no identity has been bound yet.
	FindBoundIdentity(ctx context.Context, accountID string) (*dto.PersonIdentity, error)
	// BindIdentity associates an identity with the account, replacing any
	// previous binding.
	BindIdentity(ctx context.Context, accountID string, id dto.PersonIdentity) error

	// ListReports returns all of the account's reports, in insertion order.
	ListReports(ctx context.Context, accountID string) ([]dto.LabReport, error)
	// AppendReport stores a new admitted report.
	AppendReport(ctx context.Context, accountID string, report dto.LabReport) error

	// DeleteReport removes one stored report.
	DeleteReport(ctx context.Context, accountID, reportID string) error
	// UpdateRow replaces one row of a stored report.
	UpdateRow(ctx context.Context, accountID, reportID string, rowIndex int, row dto.MeasurementRow) error
	// DeleteRow removes one row of a stored report.
	DeleteRow(ctx context.Context, accountID, reportID string, rowIndex int) error
}
