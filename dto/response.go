package dto

import "errors"

// Recoverable ingestion errors. All four leave stored state untouched; the
// caller may retry with different files.
var (
	// ErrNoReadableContent: zero rows parsed across the whole batch
	// (typically a scanned PDF without embedded text).
	ErrNoReadableContent = errors.New("no readable measurement lines found in upload")

	// ErrIdentityMismatchInBatch: files in one batch belong to different
	// people (different name or date of birth).
	ErrIdentityMismatchInBatch = errors.New("uploaded files appear to belong to different persons")

	// ErrOwnerMismatch: the report's identity conflicts with the identity
	// already bound to the account.
	ErrOwnerMismatch = errors.New("report appears to belong to a different person than this account")

	// ErrDuplicateReport: a report with the same date or the same source
	// file already exists for the account.
	ErrDuplicateReport = errors.New("a report with this date or file name already exists")
)

// ErrorResponse is the structured error body returned by all handlers.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// ParseStats counts how candidate lines fared against the row grammars.
// Unmatched lines are dropped by design; the counts are diagnostic only.
type ParseStats struct {
	Matched int `json:"matched"`
	Skipped int `json:"skipped"`
}

// AnalyzeBatchResponse is returned after a successful batch admission.
type AnalyzeBatchResponse struct {
	Report     *LabReport     `json:"report"`
	Identity   PersonIdentity `json:"identity"`
	ParseStats ParseStats     `json:"parse_stats"`
}

// ChatResponse is the narrative answer plus the analytes to highlight.
type ChatResponse struct {
	Answer            string   `json:"answer"`
	Timestamp         string   `json:"timestamp"`
	HighlightAnalytes []string `json:"highlight_analytes"`
}
