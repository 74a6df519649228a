package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/c14220110/mediflow-backend/internal/access"
	authModels "github.com/c14220110/mediflow-backend/internal/auth/models"
	authServices "github.com/c14220110/mediflow-backend/internal/auth/services"
	backupServices "github.com/c14220110/mediflow-backend/internal/backup/services"
	billingServices "github.com/c14220110/mediflow-backend/internal/billing/services"
	catalogServices "github.com/c14220110/mediflow-backend/internal/catalog/services"
	inventoryServices "github.com/c14220110/mediflow-backend/internal/inventory/services"
	patientServices "github.com/c14220110/mediflow-backend/internal/patients/services"
	reportServices "github.com/c14220110/mediflow-backend/internal/reports/services"
	"github.com/c14220110/mediflow-backend/internal/session"
	visitServices "github.com/c14220110/mediflow-backend/internal/visits/services"
	"github.com/c14220110/mediflow-backend/pkg/storage/memory"
	"github.com/c14220110/mediflow-backend/ws"
)

func newApp(t *testing.T) *echo.Echo {
	t.Helper()
	secret := []byte("routes-secret")
	hash, err := authServices.HashPassword("recep")
	if err != nil {
		t.Fatal(err)
	}
	sess := session.Open(context.Background(), memory.New(), zerolog.Nop())
	catalog := catalogServices.NewCatalogService(sess, nil)
	dashboard := reportServices.NewDashboardService(sess, time.UTC)
	hub := ws.NewHub(zerolog.Nop())

	e := echo.New()
	Init(e, Deps{
		Secret: secret,
		Auth: authServices.NewAuthService([]authModels.Account{
			{Username: "asistente", PasswordHash: hash, Role: access.RoleAssistant, Name: "Asistente"},
		}, catalog, secret, time.Hour),
		Catalog:   catalog,
		Patients:  patientServices.NewDirectoryService(sess),
		Ledger:    visitServices.NewLedgerService(sess, catalog, time.UTC, hub),
		Billing:   billingServices.NewBillingService(sess),
		Inventory: inventoryServices.NewInventoryService(sess),
		Dashboard: dashboard,
		Reports:   reportServices.NewReportService(dashboard, nil, time.Second, zerolog.Nop()),
		Backup:    backupServices.NewBackupService(sess, zerolog.Nop()),
		Hub:       hub,
	})
	return e
}

func do(e *echo.Echo, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestLoginThenUseProtectedRoutes(t *testing.T) {
	e := newApp(t)

	rec := do(e, http.MethodPost, "/api/auth/login", "", `{"username":"asistente","password":"recep"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: %d %s", rec.Code, rec.Body)
	}
	var body struct {
		Data authModels.LoginResult `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	token := body.Data.Token

	cases := []struct {
		method, path string
		token        string
		want         int
	}{
		{http.MethodGet, "/api/rooms", "", http.StatusUnauthorized},
		{http.MethodGet, "/api/rooms", token, http.StatusOK},
		{http.MethodGet, "/api/visits", token, http.StatusOK},
		{http.MethodGet, "/api/billing/payment-methods", token, http.StatusOK},
		{http.MethodGet, "/api/inventory/products", token, http.StatusOK},
		{http.MethodGet, "/api/dashboard", token, http.StatusForbidden},
		{http.MethodGet, "/api/settings/backup", token, http.StatusForbidden},
		{http.MethodGet, "/ws/queue", "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			if rec := do(e, tc.method, tc.path, tc.token, ""); rec.Code != tc.want {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tc.want, rec.Body)
			}
		})
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	e := newApp(t)
	rec := do(e, http.MethodPost, "/api/auth/login", "", `{"username":"asistente","password":"nope"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d", rec.Code)
	}
}
