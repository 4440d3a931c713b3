package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/labguard/labguard-backend/dto"
	"github.com/labguard/labguard-backend/store"
)

// statusForError maps service and store errors onto HTTP status codes.
// Content problems in an otherwise well-formed upload are 422; conflicts
// with already-stored state are 409.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, dto.ErrNoReadableContent):
		return http.StatusUnprocessableEntity, "NO_READABLE_CONTENT"
	case errors.Is(err, dto.ErrIdentityMismatchInBatch):
		return http.StatusUnprocessableEntity, "IDENTITY_MISMATCH_IN_BATCH"
	case errors.Is(err, dto.ErrOwnerMismatch):
		return http.StatusConflict, "OWNER_MISMATCH"
	case errors.Is(err, dto.ErrDuplicateReport):
		return http.StatusConflict, "DUPLICATE_REPORT"
	case errors.Is(err, store.ErrReportNotFound):
		return http.StatusNotFound, "REPORT_NOT_FOUND"
	case errors.Is(err, store.ErrRowIndexOutOfRange):
		return http.StatusBadRequest, "ROW_INDEX_OUT_OF_RANGE"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

// sendServiceError writes the structured error body for a failed service call.
func sendServiceError(c *gin.Context, err error) {
	status, code := statusForError(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	c.JSON(status, dto.ErrorResponse{
		Error:   code,
		Message: err.Error(),
		Code:    status,
	})
}

// sendError writes a structured error for request-level problems.
func sendError(c *gin.Context, status int, code, message string) {
	c.JSON(status, dto.ErrorResponse{
		Error:   code,
		Message: message,
		Code:    status,
	})
}
