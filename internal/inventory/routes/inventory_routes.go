package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/c14220110/mediflow-backend/internal/access"
	"github.com/c14220110/mediflow-backend/internal/common/middlewares"
	"github.com/c14220110/mediflow-backend/internal/inventory/controllers"
)

// RegisterInventoryRoutes: seluruh grup tertutup untuk dokter.
func RegisterInventoryRoutes(api *echo.Group, ic *controllers.InventoryController, jwt echo.MiddlewareFunc) {
	inventory := api.Group("/inventory", jwt, middlewares.RequireCapability(access.ViewInventory))
	inventory.GET("/products", ic.ListProducts)
	inventory.POST("/products", ic.AddProduct)
	inventory.PUT("/products/:id", ic.UpdateProduct)
	inventory.DELETE("/products/:id", ic.DeleteProduct)
	inventory.GET("/suppliers", ic.ListSuppliers)
	inventory.POST("/suppliers", ic.AddSupplier)
	inventory.DELETE("/suppliers/:id", ic.DeleteSupplier)
	inventory.GET("/sales", ic.ListSales)
	inventory.POST("/sales", ic.RegisterSale)
	inventory.GET("/summary", ic.Summary)
}
