package handlers

import (
	"fmt"
	"topup/internal/app"
	"topup/internal/handlers/middleware"

	reportController "topup/internal/controllers/reports"

	"github.com/gofiber/fiber/v2"
)

const (
	MSG_REPORT_FAILED = "Failed to generate report"
	XLSX_CONTENT_TYPE = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type ReportHandler struct {
	Handler
	reportController reportController.ReportControllerInterface
}

func NewReportHandler(app app.App, router fiber.Router) *ReportHandler {
	return &ReportHandler{
		Handler:          newHandler(app, router, "report_handler"),
		reportController: app.Controllers.Report,
	}
}

func (h *ReportHandler) Register() {
	reports := h.router.Group("/reports", h.middleware.RequireAuth())
	reports.Get("/operator-work-days", h.operatorWorkDays)
}

func (h *ReportHandler) operatorWorkDays(c *fiber.Ctx) error {
	query := reportController.WorkDaysQuery{
		Period: c.Query("period"),
		Date:   c.Query("date"),
	}
	user := middleware.GetUser(c)

	if c.Query("format") != "xlsx" {
		report, err := h.reportController.WorkDays(c.UserContext(), user, query)
		if err != nil {
			return middleware.RespondError(c, err, MSG_REPORT_FAILED)
		}
		return c.JSON(report)
	}

	export, err := h.reportController.ExportWorkDays(c.UserContext(), user, query)
	if err != nil {
		return middleware.RespondError(c, err, MSG_REPORT_FAILED)
	}

	c.Set(fiber.HeaderContentType, XLSX_CONTENT_TYPE)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, export.Filename))
	return c.Send(export.Content)
}
