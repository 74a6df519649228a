package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/c14220110/mediflow-backend/internal/reports/controllers"
)

func RegisterReportRoutes(api *echo.Group, rc *controllers.ReportController, jwt echo.MiddlewareFunc) {
	dashboard := api.Group("/dashboard", jwt)
	dashboard.GET("", rc.GetDashboard)
	dashboard.POST("/report", rc.GenerateReport)
}
