package handler

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/labguard/labguard-backend/dto"
	"github.com/labguard/labguard-backend/service"
)

type TrendHandler struct {
	reportService *service.ReportService
	trendService  *service.TrendService
}

func NewTrendHandler(reportService *service.ReportService, trendService *service.TrendService) *TrendHandler {
	return &TrendHandler{reportService: reportService, trendService: trendService}
}

// Trends handles GET /accounts/:accountId/trends
func (h *TrendHandler) Trends(c *gin.Context) {
	reports, err := h.reportService.ListReports(c.Request.Context(), c.Param("accountId"))
	if err != nil {
		sendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trends": h.trendService.BuildTrends(reports)})
}

// Insight handles GET /accounts/:accountId/trends/:analyte/insight
func (h *TrendHandler) Insight(c *gin.Context) {
	reports, err := h.reportService.ListReports(c.Request.Context(), c.Param("accountId"))
	if err != nil {
		sendServiceError(c, err)
		return
	}

	trend, ok := h.trendService.TrendForAnalyte(reports, c.Param("analyte"))
	if !ok {
		sendError(c, http.StatusNotFound, "ANALYTE_NOT_FOUND", "no measurements stored for this analyte")
		return
	}
	c.JSON(http.StatusOK, h.trendService.Insight(trend))
}

// ExportCSV handles GET /accounts/:accountId/reports/export.csv
func (h *TrendHandler) ExportCSV(c *gin.Context) {
	reports, err := h.reportService.ListReports(c.Request.Context(), c.Param("accountId"))
	if err != nil {
		sendServiceError(c, err)
		return
	}

	// Display order: reports chronologically, rows as stored.
	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].Date < reports[j].Date
	})
	outOfRangeOnly := c.Query("outOfRange") == "true"
	var rows []dto.MeasurementRow
	for _, r := range reports {
		for _, row := range r.Rows {
			if outOfRangeOnly && row.Status != dto.StatusBelow && row.Status != dto.StatusAbove {
				continue
			}
			rows = append(rows, row)
		}
	}

	csv := h.trendService.ExportCSV(rows)
	c.Header("Content-Disposition", `attachment; filename="lab-results.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(csv))
}
