package handlers

import (
	"net/http"

	"github.com/agamariel/cocapremium/internal/auth"
	"github.com/agamariel/cocapremium/internal/services"
	"github.com/labstack/echo/v4"
)

// ReportHandler отдаёт отчёты администратору.
type ReportHandler struct {
	reports services.ReportService
}

// NewReportHandler создаёт обработчик отчётов.
func NewReportHandler(reports services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// DailySales обрабатывает GET /api/reports/daily-sales?date=YYYY-MM-DD.
// Маршрут закрыт JWTMiddleware, логин администратора попадает в отчёт.
func (h *ReportHandler) DailySales(c echo.Context) error {
	login, err := auth.GetLoginFromContext(c)
	if err != nil {
		return err
	}

	report, err := h.reports.DailySales(c.Request().Context(), c.QueryParam("date"))
	if err != nil {
		return err
	}
	report.GeneratedBy = login
	return respond(c, http.StatusOK, report, "")
}
