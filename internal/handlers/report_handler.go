package handlers

import (
	"fmt"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/harentsoaR/smart-health-api/internal/middleware"
	"github.com/harentsoaR/smart-health-api/internal/models"
	"github.com/harentsoaR/smart-health-api/internal/services"
	"github.com/harentsoaR/smart-health-api/internal/utils"
)

type GenerateReportRequest struct {
	ReportType string                 `json:"report_type" binding:"required,reporttype"`
	Format     string                 `json:"format" binding:"omitempty,reportformat"`
	DateFrom   string                 `json:"date_from" binding:"required,isodate"`
	DateTo     string                 `json:"date_to" binding:"required,isodate"`
	Filters    map[string]interface{} `json:"filters"`
}

// GenerateReport stores a pending report and hands it to the job queue.
func (h *Handler) GenerateReport(c *gin.Context) {
	var req GenerateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBindingError(c, err)
		return
	}
	from, err := models.ParseDate(req.DateFrom)
	if err != nil {
		utils.SendFieldError(c, "date_from", "Invalid date format. Use YYYY-MM-DD.")
		return
	}
	to, err := models.ParseDate(req.DateTo)
	if err != nil {
		utils.SendFieldError(c, "date_to", "Invalid date format. Use YYYY-MM-DD.")
		return
	}
	if from.After(to) {
		utils.SendFieldError(c, "date_from", "date_from must be on or before date_to.")
		return
	}
	format := req.Format
	if format == "" {
		format = models.FormatCSV
	}

	rep := models.Report{
		ReportType:    req.ReportType,
		Format:        format,
		DateFrom:      datatypes.Date(from),
		DateTo:        datatypes.Date(to),
		GeneratedByID: middleware.CurrentUserID(c),
	}
	if len(req.Filters) > 0 {
		rep.Filters = datatypes.JSONMap(req.Filters)
	}
	if err := h.reports.Create(c.Request.Context(), &rep); err != nil {
		h.fail(c, err, "report")
		return
	}

	h.jobs.Submit(c.Request.Context(), rep.ID)
	h.log.Info("report requested",
		zap.Uint("report_id", rep.ID),
		zap.String("type", rep.ReportType),
		zap.String("format", rep.Format),
	)
	c.JSON(http.StatusAccepted, gin.H{
		"detail":        "Report generation started",
		"report_id":     rep.ID,
		"report_status": models.ReportStatusPending,
	})
}

// DownloadReport answers 202 while pending and 500 when generation gave up.
func (h *Handler) DownloadReport(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	rep, err := h.reports.FindByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "report")
		return
	}

	switch rep.Status() {
	case models.ReportStatusPending:
		c.JSON(http.StatusAccepted, gin.H{"report_status": models.ReportStatusPending})
		return
	case models.ReportStatusError:
		c.JSON(http.StatusInternalServerError, gin.H{"report_status": models.ReportStatusError})
		return
	}

	content, err := h.storage.Read(rep.File)
	if err != nil {
		h.log.Error("read report file", zap.Uint("report_id", rep.ID), zap.String("file", rep.File), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"report_status": models.ReportStatusError})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, path.Base(rep.File)))
	c.Data(http.StatusOK, services.ContentType(rep.Format), content)
}

func (h *Handler) ReportStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	rep, err := h.reports.FindByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "report")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"report_id":     rep.ID,
		"report_type":   rep.ReportType,
		"report_status": rep.Status(),
		"created_at":    rep.CreatedAt,
	})
}

func (h *Handler) ListReports(c *gin.Context) {
	page, ok := h.pageParams(c)
	if !ok {
		return
	}
	list, total, err := h.reports.List(c.Request.Context(), page)
	if err != nil {
		h.fail(c, err, "report")
		return
	}
	out := make([]ReportResponse, len(list))
	for i := range list {
		out[i] = toReport(&list[i])
	}
	c.JSON(http.StatusOK, h.newPage(c, page, total, out))
}

// ReportAnalytics summarises appointments, revenue and users for a period.
func (h *Handler) ReportAnalytics(c *gin.Context) {
	summary, err := h.analytics.Summary(c.Request.Context(), c.Query("period"), h.now())
	if err != nil {
		h.fail(c, err, "analytics")
		return
	}
	c.JSON(http.StatusOK, summary)
}
