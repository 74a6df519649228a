package services

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/c14220110/mediflow-backend/internal/access"
	"github.com/c14220110/mediflow-backend/internal/common/errs"
	"github.com/c14220110/mediflow-backend/internal/session"
	"github.com/c14220110/mediflow-backend/pkg/storage"
	"github.com/c14220110/mediflow-backend/pkg/storage/memory"
)

const ledger = `[
	{"id":"pa","name":"Ana","cedula":"V1","visitId":"v1","reason":"Control","status":"COMPLETED",
	 "arrivalTime":"2025-03-10T13:00:00Z","assignedDoctorId":"d1","assignedRoom":"Consultorio 1",
	 "startConsultationTime":"2025-03-10T13:10:00Z","endConsultationTime":"2025-03-10T13:30:00Z",
	 "baseCost":100,"performedProcedures":[{"id":"p1","name":"Eco","price":50}],"totalCost":150,
	 "payments":[{"method":"Zelle","amount":150}],"doctorEarnings":70,"clinicEarnings":80},
	{"id":"pb","name":"Luis","cedula":"V2","visitId":"v2","reason":"Dolor","status":"COMPLETED",
	 "arrivalTime":"2025-03-10T14:00:00Z","assignedDoctorId":"d2","assignedRoom":"Consultorio 2",
	 "startConsultationTime":"2025-03-10T14:05:00Z","endConsultationTime":"2025-03-10T14:20:00Z",
	 "baseCost":40,"performedProcedures":[],"totalCost":40,
	 "payments":[{"method":"Biopago","amount":40}],"doctorEarnings":20,"clinicEarnings":20},
	{"id":"pc","name":"Eva","cedula":"","visitId":"v3","reason":"Fiebre","status":"WAITING",
	 "arrivalTime":"2025-03-10T15:00:00Z"}
]`

func newBilling(t *testing.T) *BillingService {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	_ = store.Save(ctx, storage.KeyVisits, []byte(ledger))
	_ = store.Save(ctx, storage.KeyDoctors, []byte(`[{"id":"d1","name":"Dr. Ruiz"}]`))
	return NewBillingService(session.Open(ctx, store, zerolog.Nop()))
}

func TestGetRecentBilling(t *testing.T) {
	svc := newBilling(t)

	all, err := svc.GetRecentBilling(access.Identity{Role: access.RoleAssistant}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].VisitID != "v2" || all[1].VisitID != "v1" {
		t.Fatalf("expected completed bills newest first, got %+v", all)
	}
	if all[1].DoctorName != "Dr. Ruiz" || all[0].DoctorName != "Desconocido" {
		t.Errorf("doctor names = %q, %q", all[1].DoctorName, all[0].DoctorName)
	}

	own, _ := svc.GetRecentBilling(access.Identity{Role: access.RoleDoctor, ID: "d1"}, 0)
	if len(own) != 1 || own[0].VisitID != "v1" {
		t.Errorf("doctor should only see own bills, got %+v", own)
	}

	limited, _ := svc.GetRecentBilling(access.Identity{Role: access.RoleAdmin}, 1)
	if len(limited) != 1 {
		t.Errorf("limit ignored: %d", len(limited))
	}
}

func TestGetBillingDetail(t *testing.T) {
	svc := newBilling(t)
	admin := access.Identity{Role: access.RoleAdmin}

	d, err := svc.GetBillingDetail(admin, "v1")
	if err != nil {
		t.Fatal(err)
	}
	if d.Bill.ProceduresCost != 50 || d.Reconciliation.RemainingAmount != 0 || len(d.Procedures) != 1 {
		t.Errorf("detail = %+v", d)
	}

	var ae *errs.AuthorizationError
	if _, err := svc.GetBillingDetail(access.Identity{Role: access.RoleDoctor, ID: "d2"}, "v1"); !errors.As(err, &ae) {
		t.Errorf("foreign doctor: %v", err)
	}
	var ite *errs.InvalidTransitionError
	if _, err := svc.GetBillingDetail(admin, "v3"); !errors.As(err, &ite) {
		t.Errorf("waiting visit has no bill: %v", err)
	}
	var re *errs.ReferenceError
	if _, err := svc.GetBillingDetail(admin, "nope"); !errors.As(err, &re) {
		t.Errorf("missing visit: %v", err)
	}
}
