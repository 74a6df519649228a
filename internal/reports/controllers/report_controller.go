package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/c14220110/mediflow-backend/internal/common/middlewares"
	"github.com/c14220110/mediflow-backend/internal/common/response"
	"github.com/c14220110/mediflow-backend/internal/reports/models"
	"github.com/c14220110/mediflow-backend/internal/reports/services"
)

type ReportController struct {
	Dashboard *services.DashboardService
	Reports   *services.ReportService
}

func NewReportController(dashboard *services.DashboardService, reports *services.ReportService) *ReportController {
	return &ReportController{Dashboard: dashboard, Reports: reports}
}

// GetDashboard handles GET /dashboard?period=today|month|all
func (rc *ReportController) GetDashboard(c echo.Context) error {
	period, err := models.ParsePeriod(c.QueryParam("period"))
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeValidationError, err.Error(), nil)
	}
	d, err := rc.Dashboard.Dashboard(middlewares.IdentityFrom(c), period)
	if err != nil {
		return response.Error(c, err)
	}
	return response.JSON(c, http.StatusOK, "Dashboard retrieved successfully", d)
}

// GenerateReport handles POST /dashboard/report?period=...
func (rc *ReportController) GenerateReport(c echo.Context) error {
	period, err := models.ParsePeriod(c.QueryParam("period"))
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeValidationError, err.Error(), nil)
	}
	r, err := rc.Reports.Generate(c.Request().Context(), middlewares.IdentityFrom(c), period)
	if err != nil {
		return response.Error(c, err)
	}
	return response.JSON(c, http.StatusOK, "Report generated", r)
}
