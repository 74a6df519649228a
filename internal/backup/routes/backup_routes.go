package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/c14220110/mediflow-backend/internal/access"
	"github.com/c14220110/mediflow-backend/internal/backup/controllers"
	"github.com/c14220110/mediflow-backend/internal/common/middlewares"
)

// RegisterBackupRoutes: seluruh grup hanya untuk admin.
func RegisterBackupRoutes(api *echo.Group, bc *controllers.BackupController, jwt echo.MiddlewareFunc) {
	backup := api.Group("/settings/backup", jwt, middlewares.RequireCapability(access.ManageSettings))
	backup.GET("", bc.Export)
	backup.POST("/preview", bc.PreviewRestore)
	backup.POST("/restore", bc.CommitRestore)
}
