package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/c14220110/mediflow-backend/config"
	"github.com/c14220110/mediflow-backend/internal/access"
	authModels "github.com/c14220110/mediflow-backend/internal/auth/models"
	authServices "github.com/c14220110/mediflow-backend/internal/auth/services"
	backupServices "github.com/c14220110/mediflow-backend/internal/backup/services"
	billingServices "github.com/c14220110/mediflow-backend/internal/billing/services"
	catalogServices "github.com/c14220110/mediflow-backend/internal/catalog/services"
	inventoryServices "github.com/c14220110/mediflow-backend/internal/inventory/services"
	patientServices "github.com/c14220110/mediflow-backend/internal/patients/services"
	reportServices "github.com/c14220110/mediflow-backend/internal/reports/services"
	"github.com/c14220110/mediflow-backend/internal/routes"
	"github.com/c14220110/mediflow-backend/internal/session"
	visitServices "github.com/c14220110/mediflow-backend/internal/visits/services"
	"github.com/c14220110/mediflow-backend/ws"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the queue websocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			ephemeral, _ := cmd.Flags().GetBool("ephemeral")
			return runServer(ephemeral)
		},
	}
}

func runServer(ephemeral bool) error {
	cfg := config.LoadConfig()
	log := newLogger(cfg)
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, ephemeral)
	if err != nil {
		log.Error().Err(err).Str("driver", cfg.StorageDriver).Msg("failed to open storage")
		return err
	}
	defer store.Close()

	loc := cfg.Location()
	sess := session.Open(ctx, store, log)
	hub := ws.NewHub(log)
	go hub.Run(ctx)

	catalog := catalogServices.NewCatalogService(sess, cfg.ClinicRooms)
	dashboard := reportServices.NewDashboardService(sess, loc)

	var gen reportServices.Generator
	if cfg.GeminiAPIKey != "" {
		g, err := reportServices.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Warn().Err(err).Msg("AI reports disabled")
		} else {
			gen = g
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType},
	}))
	e.Use(requestLogger(log))

	routes.Init(e, routes.Deps{
		Secret:    []byte(cfg.JWTSecret),
		Auth:      authServices.NewAuthService(accounts(cfg), catalog, []byte(cfg.JWTSecret), cfg.TokenTTL),
		Catalog:   catalog,
		Patients:  patientServices.NewDirectoryService(sess),
		Ledger:    visitServices.NewLedgerService(sess, catalog, loc, hub),
		Billing:   billingServices.NewBillingService(sess),
		Inventory: inventoryServices.NewInventoryService(sess),
		Dashboard: dashboard,
		Reports:   reportServices.NewReportService(dashboard, gen, cfg.ReportTimeout, log),
		Backup:    backupServices.NewBackupService(sess, log),
		Hub:       hub,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("storage", cfg.StorageDriver).Bool("ephemeral", ephemeral).Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// accounts membangun akun tetap admin dan asisten dari konfigurasi.
func accounts(cfg *config.Config) []authModels.Account {
	return []authModels.Account{
		{Username: cfg.AdminUsername, PasswordHash: cfg.AdminPasswordHash, Role: access.RoleAdmin, Name: "Administrador"},
		{Username: cfg.AssistantUsername, PasswordHash: cfg.AssistantPasswordHash, Role: access.RoleAssistant, Name: "Asistente"},
	}
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
