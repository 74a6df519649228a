package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/c14220110/mediflow-backend/internal/catalog/models"
	"github.com/c14220110/mediflow-backend/internal/catalog/services"
	"github.com/c14220110/mediflow-backend/internal/common/middlewares"
	"github.com/c14220110/mediflow-backend/internal/common/response"
)

// CatalogController menangani endpoint dokter, prosedur, dan ruang.
type CatalogController struct {
	Service *services.CatalogService
}

func NewCatalogController(service *services.CatalogService) *CatalogController {
	return &CatalogController{Service: service}
}

func (cc *CatalogController) ListDoctors(c echo.Context) error {
	data, err := cc.Service.ListDoctors(middlewares.IdentityFrom(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.JSON(c, http.StatusOK, "Doctors retrieved successfully", data)
}

func (cc *CatalogController) AddDoctor(c echo.Context) error {
	var in models.DoctorInput
	if err := c.Bind(&in); err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeValidationError, "Invalid request payload", nil)
	}
	d, err := cc.Service.AddDoctor(c.Request().Context(), middlewares.IdentityFrom(c), in)
	return response.Committed(c, http.StatusCreated, "Doctor created successfully", d, err)
}

func (cc *CatalogController) UpdateDoctor(c echo.Context) error {
	var in models.DoctorInput
	if err := c.Bind(&in); err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeValidationError, "Invalid request payload", nil)
	}
	d, err := cc.Service.UpdateDoctor(c.Request().Context(), middlewares.IdentityFrom(c), c.Param("id"), in)
	return response.Committed(c, http.StatusOK, "Doctor updated successfully", d, err)
}

func (cc *CatalogController) DeleteDoctor(c echo.Context) error {
	err := cc.Service.DeleteDoctor(c.Request().Context(), middlewares.IdentityFrom(c), c.Param("id"))
	return response.Committed(c, http.StatusOK, "Doctor deleted successfully", nil, err)
}

func (cc *CatalogController) ListProcedures(c echo.Context) error {
	data, err := cc.Service.ListProcedures(middlewares.IdentityFrom(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.JSON(c, http.StatusOK, "Procedures retrieved successfully", data)
}

func (cc *CatalogController) AddProcedure(c echo.Context) error {
	var in models.ProcedureInput
	if err := c.Bind(&in); err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeValidationError, "Invalid request payload", nil)
	}
	p, err := cc.Service.AddProcedure(c.Request().Context(), middlewares.IdentityFrom(c), in)
	return response.Committed(c, http.StatusCreated, "Procedure created successfully", p, err)
}

func (cc *CatalogController) UpdateProcedure(c echo.Context) error {
	var in models.ProcedureInput
	if err := c.Bind(&in); err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeValidationError, "Invalid request payload", nil)
	}
	p, err := cc.Service.UpdateProcedure(c.Request().Context(), middlewares.IdentityFrom(c), c.Param("id"), in)
	return response.Committed(c, http.StatusOK, "Procedure updated successfully", p, err)
}

func (cc *CatalogController) DeleteProcedure(c echo.Context) error {
	err := cc.Service.DeleteProcedure(c.Request().Context(), middlewares.IdentityFrom(c), c.Param("id"))
	return response.Committed(c, http.StatusOK, "Procedure deleted successfully", nil, err)
}

func (cc *CatalogController) ListRooms(c echo.Context) error {
	return response.JSON(c, http.StatusOK, "Rooms retrieved successfully", cc.Service.ListRooms())
}
