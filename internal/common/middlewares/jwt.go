package middlewares

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/c14220110/mediflow-backend/internal/access"
	"github.com/c14220110/mediflow-backend/internal/common/response"
	"github.com/c14220110/mediflow-backend/pkg/utils"
)

// ContextKeyIdentity menyimpan access.Identity hasil validasi token di echo.Context.
const ContextKeyIdentity = "identity"

// JWTMiddleware memvalidasi header "Authorization: Bearer <token>". Query
// parameter ?token= juga diterima untuk koneksi websocket dari browser.
func JWTMiddleware(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenStr := c.QueryParam("token")
			if authHeader := c.Request().Header.Get("Authorization"); authHeader != "" {
				parts := strings.Split(authHeader, " ")
				if len(parts) != 2 || parts[0] != "Bearer" {
					return response.Fail(c, http.StatusUnauthorized, response.CodeUnauthorized, "Invalid authorization header", nil)
				}
				tokenStr = parts[1]
			}
			if tokenStr == "" {
				return response.Fail(c, http.StatusUnauthorized, response.CodeUnauthorized, "Authorization header missing", nil)
			}

			claims, err := utils.ValidateJWTToken(secret, tokenStr)
			if err != nil {
				return response.Fail(c, http.StatusUnauthorized, response.CodeUnauthorized, "Invalid token: "+err.Error(), nil)
			}
			role, err := access.ParseRole(claims.Role)
			if err != nil {
				return response.Fail(c, http.StatusUnauthorized, response.CodeUnauthorized, "Invalid token: "+err.Error(), nil)
			}

			c.Set(ContextKeyIdentity, access.Identity{Role: role, ID: claims.DoctorID, Name: claims.Name})
			return next(c)
		}
	}
}

// IdentityFrom mengambil identitas yang disimpan JWTMiddleware. Identity kosong
// tidak punya kapabilitas apa pun.
func IdentityFrom(c echo.Context) access.Identity {
	who, _ := c.Get(ContextKeyIdentity).(access.Identity)
	return who
}
