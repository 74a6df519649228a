package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/c14220110/mediflow-backend/internal/visits/controllers"
)

// RegisterVisitRoutes mendaftarkan endpoint ledger kunjungan di bawah JWT.
func RegisterVisitRoutes(api *echo.Group, vc *controllers.VisitController, jwt echo.MiddlewareFunc) {
	visits := api.Group("/visits", jwt)
	visits.GET("", vc.ListVisits)
	visits.POST("", vc.Admit)
	visits.GET("/:id", vc.GetVisit)
	visits.PUT("/:id/assign", vc.Assign)
	visits.PUT("/:id/finalize", vc.Finalize)
	visits.POST("/:id/quote", vc.Quote)
	visits.GET("/:id/payments", vc.ListPayments)
	visits.POST("/:id/payments", vc.AddPayment)
	visits.DELETE("/:id/payments/:index", vc.RemovePayment)
}
