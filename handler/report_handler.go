package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/labguard/labguard-backend/dto"
	"github.com/labguard/labguard-backend/service"
)

type ReportHandler struct {
	reportService *service.ReportService
	maxFileSize   int64
	maxBatchFiles int
}

func NewReportHandler(reportService *service.ReportService, maxFileSize int64, maxBatchFiles int) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		maxFileSize:   maxFileSize,
		maxBatchFiles: maxBatchFiles,
	}
}

// AnalyzeBatch handles POST /accounts/:accountId/reports/analyze
func (h *ReportHandler) AnalyzeBatch(c *gin.Context) {
	accountID := c.Param("accountId")

	form, err := c.MultipartForm()
	if err != nil {
		sendError(c, http.StatusBadRequest, "BAD_REQUEST", "failed to parse multipart form")
		return
	}

	request := &dto.AnalyzeBatchRequest{Files: form.File["files[]"]}
	if err := request.Validate(h.maxBatchFiles); err != nil {
		sendError(c, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	var uploads []service.UploadFile
	for _, fh := range request.Files {
		if h.maxFileSize > 0 && fh.Size > h.maxFileSize {
			sendError(c, http.StatusBadRequest, "FILE_TOO_LARGE", "file "+fh.Filename+" exceeds the size limit")
			return
		}

		f, err := fh.Open()
		if err != nil {
			sendError(c, http.StatusBadRequest, "BAD_REQUEST", "failed to open uploaded file "+fh.Filename)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			sendError(c, http.StatusBadRequest, "BAD_REQUEST", "failed to read uploaded file "+fh.Filename)
			return
		}

		uploads = append(uploads, service.UploadFile{Name: fh.Filename, Data: data})
	}

	log.Info().
		Str("account", accountID).
		Int("files", len(uploads)).
		Msg("analyzing report batch")

	response, err := h.reportService.AnalyzeBatch(c.Request.Context(), accountID, uploads)
	if err != nil {
		sendServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ListReports handles GET /accounts/:accountId/reports
func (h *ReportHandler) ListReports(c *gin.Context) {
	reports, err := h.reportService.ListReports(c.Request.Context(), c.Param("accountId"))
	if err != nil {
		sendServiceError(c, err)
		return
	}
	if reports == nil {
		reports = []dto.LabReport{}
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

// DeleteReport handles DELETE /accounts/:accountId/reports/:reportId
func (h *ReportHandler) DeleteReport(c *gin.Context) {
	err := h.reportService.DeleteReport(c.Request.Context(), c.Param("accountId"), c.Param("reportId"))
	if err != nil {
		sendServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateRow handles PUT /accounts/:accountId/reports/:reportId/rows/:rowIndex
func (h *ReportHandler) UpdateRow(c *gin.Context) {
	rowIndex, err := strconv.Atoi(c.Param("rowIndex"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "BAD_REQUEST", "row index must be an integer")
		return
	}

	var request dto.RowUpdateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		sendError(c, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	err = h.reportService.UpdateRow(c.Request.Context(), c.Param("accountId"), c.Param("reportId"), rowIndex, request.Row)
	if err != nil {
		sendServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteRow handles DELETE /accounts/:accountId/reports/:reportId/rows/:rowIndex
func (h *ReportHandler) DeleteRow(c *gin.Context) {
	rowIndex, err := strconv.Atoi(c.Param("rowIndex"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "BAD_REQUEST", "row index must be an integer")
		return
	}

	err = h.reportService.DeleteRow(c.Request.Context(), c.Param("accountId"), c.Param("reportId"), rowIndex)
	if err != nil {
		sendServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
