package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/labguard/labguard-backend/dto"
	"github.com/labguard/labguard-backend/store"
)

func TestStatusForError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{dto.ErrNoReadableContent, http.StatusUnprocessableEntity, "NO_READABLE_CONTENT"},
		{dto.ErrIdentityMismatchInBatch, http.StatusUnprocessableEntity, "IDENTITY_MISMATCH_IN_BATCH"},
		{dto.ErrOwnerMismatch, http.StatusConflict, "OWNER_MISMATCH"},
		{dto.ErrDuplicateReport, http.StatusConflict, "DUPLICATE_REPORT"},
		{store.ErrReportNotFound, http.StatusNotFound, "REPORT_NOT_FOUND"},
		{store.ErrRowIndexOutOfRange, http.StatusBadRequest, "ROW_INDEX_OUT_OF_RANGE"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		status, code := statusForError(tc.err)
		assert.Equal(t, tc.status, status, tc.code)
		assert.Equal(t, tc.code, code)
	}
}
