package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"agroterra/internal/services"
)

type ReportHandler struct {
	reports services.ReportService
}

func NewReportHandler(reports services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

func (h *ReportHandler) parsePeriod(c *gin.Context) (farmID int, from, to time.Time, ok bool) {
	farmID, err := strconv.Atoi(c.Query("farm_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "farm_id query parameter is required"})
		return 0, time.Time{}, time.Time{}, false
	}

	from, err = time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from must be YYYY-MM-DD"})
		return 0, time.Time{}, time.Time{}, false
	}
	to, err = time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must be YYYY-MM-DD"})
		return 0, time.Time{}, time.Time{}, false
	}
	if to.Before(from) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must not precede from"})
		return 0, time.Time{}, time.Time{}, false
	}
	return farmID, from, to, true
}

// @Summary      Cost summary for a farm
// @Tags         Reports
// @Produce      json
// @Security     BearerAuth
// @Param        farm_id  query  int     true  "Farm ID"
// @Param        from     query  string  true  "Start date (YYYY-MM-DD)"
// @Param        to       query  string  true  "End date (YYYY-MM-DD)"
// @Router       /reports/costs [get]
func (h *ReportHandler) CostSummary(c *gin.Context) {
	farmID, from, to, ok := h.parsePeriod(c)
	if !ok {
		return
	}

	summary, err := h.reports.CostSummary(farmID, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build cost summary"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// @Summary      Cost report as PDF
// @Tags         Reports
// @Produce      application/pdf
// @Security     BearerAuth
// @Router       /reports/costs/pdf [get]
func (h *ReportHandler) CostReportPDF(c *gin.Context) {
	farmID, from, to, ok := h.parsePeriod(c)
	if !ok {
		return
	}

	path, err := h.reports.CostReportPDF(farmID, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate report"})
		return
	}
	c.FileAttachment(path, "cost_report.pdf")
}
