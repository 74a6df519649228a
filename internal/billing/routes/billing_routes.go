package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/c14220110/mediflow-backend/internal/billing/controllers"
)

// RegisterBillingRoutes mendaftarkan endpoint billing yang dilindungi JWT.
func RegisterBillingRoutes(api *echo.Group, bc *controllers.BillingController, jwt echo.MiddlewareFunc) {
	billing := api.Group("/billing", jwt)
	billing.GET("/recent", bc.ListBilling)
	billing.GET("/detail/:visitId", bc.BillingDetail)
	billing.GET("/payment-methods", bc.PaymentMethods)
}
