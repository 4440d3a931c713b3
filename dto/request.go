package dto

import (
	"errors"
	"mime/multipart"
)

// AnalyzeBatchRequest carries one upload batch: all PDF files of a single
// person's reports uploaded together.
type AnalyzeBatchRequest struct {
	Files []*multipart.FileHeader `form:"files[]" binding:"required"`
}

// Validate performs basic validation on the request.
func (r *AnalyzeBatchRequest) Validate(maxFiles int) error {
	if len(r.Files) == 0 {
		return errors.New("at least one PDF file is required")
	}
	if maxFiles > 0 && len(r.Files) > maxFiles {
		return errors.New("too many files in one batch")
	}
	return nil
}

// ChatRequest is a question for the narrative-answer service.
type ChatRequest struct {
	Question string `json:"question" binding:"required"`
}

// RowUpdateRequest replaces one row of a stored report.
type RowUpdateRequest struct {
	Row MeasurementRow `json:"row" binding:"required"`
}
