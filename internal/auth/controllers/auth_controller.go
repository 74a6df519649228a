package controllers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/c14220110/mediflow-backend/internal/auth/models"
	"github.com/c14220110/mediflow-backend/internal/auth/services"
	"github.com/c14220110/mediflow-backend/internal/common/middlewares"
	"github.com/c14220110/mediflow-backend/internal/common/response"
)

type AuthController struct {
	Service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{Service: service}
}

// Login menangani permintaan login semua role.
func (ac *AuthController) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeValidationError, "Invalid request payload", nil)
	}

	result, err := ac.Service.Login(req)
	if errors.Is(err, services.ErrInvalidCredentials) {
		return response.Fail(c, http.StatusUnauthorized, response.CodeUnauthorized, "Invalid username or password", nil)
	}
	if err != nil {
		return response.Fail(c, http.StatusInternalServerError, response.CodeInternalError, "Failed to generate token", nil)
	}
	return response.JSON(c, http.StatusOK, "Login successful", result)
}

// Me mengembalikan identitas dari token yang sedang dipakai.
func (ac *AuthController) Me(c echo.Context) error {
	return response.JSON(c, http.StatusOK, "Identity retrieved successfully", middlewares.IdentityFrom(c))
}
