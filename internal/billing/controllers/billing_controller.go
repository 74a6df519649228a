package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/c14220110/mediflow-backend/internal/billing/models"
	"github.com/c14220110/mediflow-backend/internal/billing/services"
	"github.com/c14220110/mediflow-backend/internal/common/middlewares"
	"github.com/c14220110/mediflow-backend/internal/common/response"
)

// BillingController menangani permintaan terkait data billing.
type BillingController struct {
	Service *services.BillingService
}

func NewBillingController(service *services.BillingService) *BillingController {
	return &BillingController{Service: service}
}

// ListBilling mengembalikan tagihan terbaru; ?limit= membatasi jumlah baris.
func (bc *BillingController) ListBilling(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return response.Fail(c, http.StatusBadRequest, response.CodeValidationError, "Invalid limit", nil)
		}
		limit = n
	}

	data, err := bc.Service.GetRecentBilling(middlewares.IdentityFrom(c), limit)
	if err != nil {
		return response.Error(c, err)
	}
	return response.JSON(c, http.StatusOK, "Billing data retrieved successfully", data)
}

// BillingDetail mengembalikan detail billing berdasarkan visitId.
func (bc *BillingController) BillingDetail(c echo.Context) error {
	detail, err := bc.Service.GetBillingDetail(middlewares.IdentityFrom(c), c.Param("visitId"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.JSON(c, http.StatusOK, "Billing detail retrieved successfully", detail)
}

// PaymentMethods mengembalikan daftar metode pembayaran yang diterima.
func (bc *BillingController) PaymentMethods(c echo.Context) error {
	return response.JSON(c, http.StatusOK, "Payment methods retrieved successfully", models.PaymentMethods())
}
