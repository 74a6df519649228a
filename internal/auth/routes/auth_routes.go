package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/c14220110/mediflow-backend/internal/auth/controllers"
)

// RegisterAuthRoutes: login tidak memakai JWT.
func RegisterAuthRoutes(api *echo.Group, ac *controllers.AuthController, jwt echo.MiddlewareFunc) {
	auth := api.Group("/auth")
	auth.POST("/login", ac.Login)
	auth.GET("/me", ac.Me, jwt)
}
