package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	billingModels "github.com/c14220110/mediflow-backend/internal/billing/models"
	"github.com/c14220110/mediflow-backend/internal/common/middlewares"
	"github.com/c14220110/mediflow-backend/internal/common/response"
	"github.com/c14220110/mediflow-backend/internal/visits/models"
	"github.com/c14220110/mediflow-backend/internal/visits/services"
)

// VisitController menangani alur kunjungan: pendaftaran, konsultasi, dan pembayaran.
type VisitController struct {
	Service *services.LedgerService
}

func NewVisitController(service *services.LedgerService) *VisitController {
	return &VisitController{Service: service}
}

// ListVisits mendukung filter ?status=WAITING dan ?date=2006-01-02 (hari kalender klinik).
func (vc *VisitController) ListVisits(c echo.Context) error {
	filter := services.ListFilter{Status: models.Status(c.QueryParam("status"))}
	if d := c.QueryParam("date"); d != "" {
		day, err := time.ParseInLocation(time.DateOnly, d, vc.Service.Location)
		if err != nil {
			return response.Fail(c, http.StatusBadRequest, response.CodeValidationError, "date must use the YYYY-MM-DD format", nil)
		}
		filter.Date = &day
	}

	data, err := vc.Service.List(middlewares.IdentityFrom(c), filter)
	if err != nil {
		return response.Error(c, err)
	}
	return response.JSON(c, http.StatusOK, "Visits retrieved successfully", data)
}

func (vc *VisitController) GetVisit(c echo.Context) error {
	v, err := vc.Service.Get(middlewares.IdentityFrom(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.JSON(c, http.StatusOK, "Visit retrieved successfully", v)
}

func (vc *VisitController) Admit(c echo.Context) error {
	var req models.AdmitRequest
	if err := c.Bind(&req); err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeValidationError, "Invalid request payload", nil)
	}
	v, err := vc.Service.Admit(c.Request().Context(), middlewares.IdentityFrom(c), req)
	return response.Committed(c, http.StatusCreated, "Patient admitted successfully", v, err)
}

func (vc *VisitController) Assign(c echo.Context) error {
	var req models.AssignRequest
	if err := c.Bind(&req); err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeValidationError, "Invalid request payload", nil)
	}
	v, err := vc.Service.Assign(c.Request().Context(), middlewares.IdentityFrom(c), c.Param("id"), req)
	return response.Committed(c, http.StatusOK, "Consultation started successfully", v, err)
}

// Finalize: body tanpa field "payments" memakai draft pembayaran.
func (vc *VisitController) Finalize(c echo.Context) error {
	var req models.FinalizeRequest
	if err := c.Bind(&req); err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeValidationError, "Invalid request payload", nil)
	}
	v, err := vc.Service.Finalize(c.Request().Context(), middlewares.IdentityFrom(c), c.Param("id"), req)
	return response.Committed(c, http.StatusOK, "Consultation finalized successfully", v, err)
}

type quoteRequest struct {
	BaseCost     float64  `json:"baseCost"`
	ProcedureIDs []string `json:"procedureIds"`
}

func (vc *VisitController) Quote(c echo.Context) error {
	var req quoteRequest
	if err := c.Bind(&req); err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeValidationError, "Invalid request payload", nil)
	}
	q, err := vc.Service.Quote(middlewares.IdentityFrom(c), c.Param("id"), req.BaseCost, req.ProcedureIDs)
	if err != nil {
		return response.Error(c, err)
	}
	return response.JSON(c, http.StatusOK, "Quote computed successfully", q)
}

func (vc *VisitController) ListPayments(c echo.Context) error {
	drafts, err := vc.Service.Drafts(middlewares.IdentityFrom(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.JSON(c, http.StatusOK, "Draft payments retrieved successfully", drafts)
}

func (vc *VisitController) AddPayment(c echo.Context) error {
	var p billingModels.PaymentRecord
	if err := c.Bind(&p); err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeValidationError, "Invalid request payload", nil)
	}
	drafts, err := vc.Service.AddPayment(c.Request().Context(), middlewares.IdentityFrom(c), c.Param("id"), p)
	if err != nil {
		return response.Error(c, err)
	}
	return response.JSON(c, http.StatusOK, "Payment added to draft", drafts)
}

func (vc *VisitController) RemovePayment(c echo.Context) error {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeValidationError, "Invalid payment index", nil)
	}
	drafts, err := vc.Service.RemovePayment(c.Request().Context(), middlewares.IdentityFrom(c), c.Param("id"), index)
	if err != nil {
		return response.Error(c, err)
	}
	return response.JSON(c, http.StatusOK, "Payment removed from draft", drafts)
}
