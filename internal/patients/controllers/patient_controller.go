package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/c14220110/mediflow-backend/internal/common/middlewares"
	"github.com/c14220110/mediflow-backend/internal/common/response"
	"github.com/c14220110/mediflow-backend/internal/patients/services"
)

type PatientController struct {
	Service *services.DirectoryService
}

func NewPatientController(service *services.DirectoryService) *PatientController {
	return &PatientController{Service: service}
}

// ListPatients mengembalikan seluruh direktori, atau hasil pencarian jika ?q= diisi.
func (pc *PatientController) ListPatients(c echo.Context) error {
	who := middlewares.IdentityFrom(c)
	if q := c.QueryParam("q"); q != "" {
		data, err := pc.Service.Search(who, q)
		if err != nil {
			return response.Error(c, err)
		}
		return response.JSON(c, http.StatusOK, "Patients retrieved successfully", data)
	}
	data, err := pc.Service.List(who)
	if err != nil {
		return response.Error(c, err)
	}
	return response.JSON(c, http.StatusOK, "Patients retrieved successfully", data)
}

func (pc *PatientController) GetPatient(c echo.Context) error {
	p, err := pc.Service.Get(middlewares.IdentityFrom(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.JSON(c, http.StatusOK, "Patient retrieved successfully", p)
}
