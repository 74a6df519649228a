package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/c14220110/mediflow-backend/internal/common/middlewares"
	"github.com/c14220110/mediflow-backend/internal/common/response"
	"github.com/c14220110/mediflow-backend/internal/inventory/models"
	"github.com/c14220110/mediflow-backend/internal/inventory/services"
)

type InventoryController struct {
	Service *services.InventoryService
}

func NewInventoryController(service *services.InventoryService) *InventoryController {
	return &InventoryController{Service: service}
}

func (ic *InventoryController) ListProducts(c echo.Context) error {
	data, err := ic.Service.ListProducts(middlewares.IdentityFrom(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.JSON(c, http.StatusOK, "Products retrieved successfully", data)
}

func (ic *InventoryController) AddProduct(c echo.Context) error {
	var in models.ProductInput
	if err := c.Bind(&in); err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeValidationError, "Invalid request payload", nil)
	}
	p, err := ic.Service.AddProduct(c.Request().Context(), middlewares.IdentityFrom(c), in)
	return response.Committed(c, http.StatusCreated, "Product created successfully", p, err)
}

func (ic *InventoryController) UpdateProduct(c echo.Context) error {
	var in models.ProductInput
	if err := c.Bind(&in); err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeValidationError, "Invalid request payload", nil)
	}
	p, err := ic.Service.UpdateProduct(c.Request().Context(), middlewares.IdentityFrom(c), c.Param("id"), in)
	return response.Committed(c, http.StatusOK, "Product updated successfully", p, err)
}

func (ic *InventoryController) DeleteProduct(c echo.Context) error {
	err := ic.Service.DeleteProduct(c.Request().Context(), middlewares.IdentityFrom(c), c.Param("id"))
	return response.Committed(c, http.StatusOK, "Product deleted successfully", nil, err)
}

func (ic *InventoryController) ListSuppliers(c echo.Context) error {
	data, err := ic.Service.ListSuppliers(middlewares.IdentityFrom(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.JSON(c, http.StatusOK, "Suppliers retrieved successfully", data)
}

func (ic *InventoryController) AddSupplier(c echo.Context) error {
	var in models.SupplierInput
	if err := c.Bind(&in); err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeValidationError, "Invalid request payload", nil)
	}
	s, err := ic.Service.AddSupplier(c.Request().Context(), middlewares.IdentityFrom(c), in)
	return response.Committed(c, http.StatusCreated, "Supplier created successfully", s, err)
}

func (ic *InventoryController) DeleteSupplier(c echo.Context) error {
	err := ic.Service.DeleteSupplier(c.Request().Context(), middlewares.IdentityFrom(c), c.Param("id"))
	return response.Committed(c, http.StatusOK, "Supplier deleted successfully", nil, err)
}

func (ic *InventoryController) RegisterSale(c echo.Context) error {
	var req models.SaleRequest
	if err := c.Bind(&req); err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeValidationError, "Invalid request payload", nil)
	}
	sale, err := ic.Service.RegisterSale(c.Request().Context(), middlewares.IdentityFrom(c), req)
	return response.Committed(c, http.StatusCreated, "Sale registered successfully", sale, err)
}

func (ic *InventoryController) ListSales(c echo.Context) error {
	data, err := ic.Service.ListSales(middlewares.IdentityFrom(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.JSON(c, http.StatusOK, "Sales retrieved successfully", data)
}

func (ic *InventoryController) Summary(c echo.Context) error {
	data, err := ic.Service.Summary(middlewares.IdentityFrom(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.JSON(c, http.StatusOK, "Inventory summary retrieved successfully", data)
}
