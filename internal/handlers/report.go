package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/workforce-portal/internal/dto"
	apierrors "github.com/yukikurage/workforce-portal/internal/errors"
	"github.com/yukikurage/workforce-portal/internal/services"
	"github.com/yukikurage/workforce-portal/internal/tabular"
)

// ReportHandler serves the exports as JSON or, with ?format=csv, as a download.
type ReportHandler struct {
	reportService *services.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) Directors(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	report, err := h.reportService.DirectorsRoster(actor)
	h.respond(c, "directors", report, err)
}

func (h *ReportHandler) AllTasks(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	report, err := h.reportService.AllTasks(actor)
	h.respond(c, "all_tasks", report, err)
}

// Overview takes ?filter=all|daily|monthly|user with date, month or username
func (h *ReportHandler) Overview(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	filter := services.OverviewFilter{
		Kind:     c.DefaultQuery("filter", services.OverviewAll),
		Date:     c.Query("date"),
		Month:    c.Query("month"),
		Username: c.Query("username"),
	}
	report, err := h.reportService.TaskOverview(actor, filter)
	h.respond(c, "tasks_"+filter.NormalizedKind(), report, err)
}

func (h *ReportHandler) Department(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	report, err := h.reportService.DepartmentTasks(actor)
	h.respond(c, "department_tasks", report, err)
}

func (h *ReportHandler) respond(c *gin.Context, name string, report *services.Report, err error) {
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	if c.Query("format") != "csv" {
		c.JSON(http.StatusOK, dto.ToReportDTO(report))
		return
	}

	filename := fmt.Sprintf("%s_%s.csv", name, time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)
	if err := tabular.WriteCSV(c.Writer, report.Header, report.Rows); err != nil {
		_ = c.Error(err)
	}
}
