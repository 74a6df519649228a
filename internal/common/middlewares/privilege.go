package middlewares

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/c14220110/mediflow-backend/internal/access"
	"github.com/c14220110/mediflow-backend/internal/common/response"
)

// RequireCapability menolak request lebih awal jika role tidak punya kapabilitas.
// Service tetap memeriksa ulang, termasuk batasan "hanya data milik sendiri".
func RequireCapability(required access.Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.Get(ContextKeyIdentity)
			if raw == nil {
				return response.Fail(c, http.StatusUnauthorized, response.CodeUnauthorized, "Missing or invalid JWT claims", nil)
			}
			who, ok := raw.(access.Identity)
			if !ok {
				return response.Fail(c, http.StatusUnauthorized, response.CodeUnauthorized, "Invalid JWT claims format", nil)
			}
			if err := access.Authorize(who, required); err != nil {
				return response.Error(c, err)
			}
			return next(c)
		}
	}
}
