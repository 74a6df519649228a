package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/c14220110/mediflow-backend/internal/access"
	authControllers "github.com/c14220110/mediflow-backend/internal/auth/controllers"
	authRoutes "github.com/c14220110/mediflow-backend/internal/auth/routes"
	authServices "github.com/c14220110/mediflow-backend/internal/auth/services"
	backupControllers "github.com/c14220110/mediflow-backend/internal/backup/controllers"
	backupRoutes "github.com/c14220110/mediflow-backend/internal/backup/routes"
	backupServices "github.com/c14220110/mediflow-backend/internal/backup/services"
	billingControllers "github.com/c14220110/mediflow-backend/internal/billing/controllers"
	billingRoutes "github.com/c14220110/mediflow-backend/internal/billing/routes"
	billingServices "github.com/c14220110/mediflow-backend/internal/billing/services"
	catalogControllers "github.com/c14220110/mediflow-backend/internal/catalog/controllers"
	catalogRoutes "github.com/c14220110/mediflow-backend/internal/catalog/routes"
	catalogServices "github.com/c14220110/mediflow-backend/internal/catalog/services"
	"github.com/c14220110/mediflow-backend/internal/common/middlewares"
	inventoryControllers "github.com/c14220110/mediflow-backend/internal/inventory/controllers"
	inventoryRoutes "github.com/c14220110/mediflow-backend/internal/inventory/routes"
	inventoryServices "github.com/c14220110/mediflow-backend/internal/inventory/services"
	patientControllers "github.com/c14220110/mediflow-backend/internal/patients/controllers"
	patientRoutes "github.com/c14220110/mediflow-backend/internal/patients/routes"
	patientServices "github.com/c14220110/mediflow-backend/internal/patients/services"
	reportControllers "github.com/c14220110/mediflow-backend/internal/reports/controllers"
	reportRoutes "github.com/c14220110/mediflow-backend/internal/reports/routes"
	reportServices "github.com/c14220110/mediflow-backend/internal/reports/services"
	visitControllers "github.com/c14220110/mediflow-backend/internal/visits/controllers"
	visitRoutes "github.com/c14220110/mediflow-backend/internal/visits/routes"
	visitServices "github.com/c14220110/mediflow-backend/internal/visits/services"
	"github.com/c14220110/mediflow-backend/ws"
)

// Deps berisi service yang sudah dirakit oleh perintah serve.
type Deps struct {
	Secret    []byte
	Auth      *authServices.AuthService
	Catalog   *catalogServices.CatalogService
	Patients  *patientServices.DirectoryService
	Ledger    *visitServices.LedgerService
	Billing   *billingServices.BillingService
	Inventory *inventoryServices.InventoryService
	Dashboard *reportServices.DashboardService
	Reports   *reportServices.ReportService
	Backup    *backupServices.BackupService
	Hub       *ws.Hub
}

// Init mendaftarkan semua routes di bawah /api dan feed antrian di /ws/queue.
func Init(e *echo.Echo, d Deps) {
	jwt := middlewares.JWTMiddleware(d.Secret)
	api := e.Group("/api")

	authRoutes.RegisterAuthRoutes(api, authControllers.NewAuthController(d.Auth), jwt)
	catalogRoutes.RegisterCatalogRoutes(api, catalogControllers.NewCatalogController(d.Catalog), jwt)
	patientRoutes.RegisterPatientRoutes(api, patientControllers.NewPatientController(d.Patients), jwt)
	visitRoutes.RegisterVisitRoutes(api, visitControllers.NewVisitController(d.Ledger), jwt)
	billingRoutes.RegisterBillingRoutes(api, billingControllers.NewBillingController(d.Billing), jwt)
	inventoryRoutes.RegisterInventoryRoutes(api, inventoryControllers.NewInventoryController(d.Inventory), jwt)
	reportRoutes.RegisterReportRoutes(api, reportControllers.NewReportController(d.Dashboard, d.Reports), jwt)
	backupRoutes.RegisterBackupRoutes(api, backupControllers.NewBackupController(d.Backup), jwt)

	if d.Hub != nil {
		e.GET("/ws/queue", ws.ServeWS(d.Hub, d.Ledger), jwt, middlewares.RequireCapability(access.ViewQueue))
	}
}
