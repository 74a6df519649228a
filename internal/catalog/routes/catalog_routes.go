package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/c14220110/mediflow-backend/internal/catalog/controllers"
)

// RegisterCatalogRoutes mendaftarkan endpoint dokter, prosedur, dan ruang di bawah JWT.
func RegisterCatalogRoutes(api *echo.Group, cc *controllers.CatalogController, jwt echo.MiddlewareFunc) {
	doctors := api.Group("/doctors", jwt)
	doctors.GET("", cc.ListDoctors)
	doctors.POST("", cc.AddDoctor)
	doctors.PUT("/:id", cc.UpdateDoctor)
	doctors.DELETE("/:id", cc.DeleteDoctor)

	procedures := api.Group("/procedures", jwt)
	procedures.GET("", cc.ListProcedures)
	procedures.POST("", cc.AddProcedure)
	procedures.PUT("/:id", cc.UpdateProcedure)
	procedures.DELETE("/:id", cc.DeleteProcedure)

	api.GET("/rooms", cc.ListRooms, jwt)
}
