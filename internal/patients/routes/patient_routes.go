package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/c14220110/mediflow-backend/internal/patients/controllers"
)

func RegisterPatientRoutes(api *echo.Group, pc *controllers.PatientController, jwt echo.MiddlewareFunc) {
	patients := api.Group("/patients", jwt)
	patients.GET("", pc.ListPatients)
	patients.GET("/:id", pc.GetPatient)
}
