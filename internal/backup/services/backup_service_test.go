package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/c14220110/mediflow-backend/internal/access"
	"github.com/c14220110/mediflow-backend/internal/common/errs"
	"github.com/c14220110/mediflow-backend/internal/session"
	"github.com/c14220110/mediflow-backend/pkg/storage"
	"github.com/c14220110/mediflow-backend/pkg/storage/memory"
)

const fixture = `{
	"date": "2025-03-10T18:00:00Z",
	"patients": [
		{"id":"pa","name":"Ana","cedula":"V1","isMinor":false,"birthDate":"1990-01-01","phone":"","email":"",
		 "visitId":"v1","reason":"Control","status":"COMPLETED","arrivalTime":"2025-03-10T13:00:00Z",
		 "assignedDoctorId":"d1","assignedRoom":"Consultorio 1","startConsultationTime":"2025-03-10T13:10:00Z",
		 "endConsultationTime":"2025-03-10T13:30:00Z","baseCost":100,
		 "performedProcedures":[{"id":"p1","name":"Eco","price":50}],"totalCost":150,
		 "payments":[{"method":"Zelle","amount":60},{"method":"Efectivo $","amount":90}],
		 "doctorEarnings":70,"clinicEarnings":80},
		{"id":"pb","name":"Luis","cedula":"","isMinor":true,"representativeName":"Marta","birthDate":"","phone":"","email":"",
		 "visitId":"v2","reason":"Fiebre","status":"WAITING","arrivalTime":"2025-03-10T14:00:00Z"}
	],
	"doctors": [{"id":"d1","name":"Dr. Ruiz","specialty":"General","phone":"","email":"","consultationShare":50,"procedureShare":40}],
	"procedures": [{"id":"p1","name":"Eco","price":50},{"id":"p2","name":"ECG","price":30}],
	"patientDatabase": [
		{"id":"pa","name":"Ana","cedula":"V1","isMinor":false,"birthDate":"1990-01-01","phone":"","email":""},
		{"id":"pb","name":"Luis","cedula":"","isMinor":true,"representativeName":"Marta","birthDate":"","phone":"","email":""}
	]
}`

var admin = access.System()

func newBackup(t *testing.T) (*BackupService, *memory.Store) {
	t.Helper()
	store := memory.New()
	svc := NewBackupService(session.Open(context.Background(), store, zerolog.Nop()), zerolog.Nop())
	fixed := time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return fixed }
	return svc, store
}

func export(t *testing.T, svc *BackupService) []byte {
	t.Helper()
	doc, err := svc.Export(admin)
	if err != nil {
		t.Fatal(err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _ := newBackup(t)
	if _, err := svc.CommitRestore(ctx, admin, []byte(fixture)); err != nil {
		t.Fatal(err)
	}
	first := export(t, svc)

	other, _ := newBackup(t)
	if _, err := other.CommitRestore(ctx, admin, first); err != nil {
		t.Fatal(err)
	}
	second := export(t, other)

	if !bytes.Equal(first, second) {
		t.Fatalf("round trip changed the document:\nfirst:  %s\nsecond: %s", first, second)
	}

	doc, _ := other.Export(admin)
	if len(doc.Patients) != 2 || doc.Patients[0].VisitID != "v1" || doc.Patients[1].VisitID != "v2" {
		t.Errorf("visit order not preserved: %+v", doc.Patients)
	}
	if doc.Patients[1].Assignment != nil || doc.Patients[0].Settlement == nil {
		t.Error("status-dependent fields must survive the round trip")
	}
	if doc.Products == nil || len(doc.Products) != 0 {
		t.Errorf("absent collections restore as empty, got %v", doc.Products)
	}
}

// Dokumen yang ditulis aplikasi web lama: waktu dalam epoch milidetik, tanpa koleksi inventaris.
const epochFixture = `{
	"date": "2025-01-01T12:00:00.000Z",
	"patients": [
		{"id":"pa","name":"Ana","cedula":"V1","isMinor":false,"birthDate":"","phone":"","email":"",
		 "visitId":"v1","reason":"Control","status":"COMPLETED","arrivalTime":1735689600000,
		 "assignedDoctorId":"d1","assignedRoom":"Consultorio 1","startConsultationTime":1735690200000,
		 "endConsultationTime":1735691400000,"baseCost":100,"performedProcedures":[],"totalCost":100,
		 "payments":[{"method":"Zelle","amount":60},{"method":"Efectivo $","amount":40}],
		 "doctorEarnings":50,"clinicEarnings":50},
		{"id":"pb","name":"Luis","cedula":"","isMinor":false,"birthDate":"","phone":"","email":"",
		 "visitId":"v2","reason":"Fiebre","status":"WAITING","arrivalTime":1735693200000}
	],
	"doctors": [{"id":"d1","name":"Dr. Ruiz","specialty":"General","phone":"","email":"","consultationShare":50,"procedureShare":40}],
	"procedures": [],
	"patientDatabase": [
		{"id":"pa","name":"Ana","cedula":"V1","isMinor":false,"birthDate":"","phone":"","email":""},
		{"id":"pb","name":"Luis","cedula":"","isMinor":false,"birthDate":"","phone":"","email":""}
	]
}`

func TestRestoreEpochMillisDocument(t *testing.T) {
	svc, _ := newBackup(t)
	p, err := svc.CommitRestore(context.Background(), admin, []byte(epochFixture))
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if p.Visits != 2 || p.Date == nil || p.Products != 0 {
		t.Errorf("preview = %+v", p)
	}

	doc, _ := svc.Export(admin)
	done := doc.Patients[0]
	if want := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC); !done.ArrivalTime.Equal(want) {
		t.Errorf("arrival = %v, want %v", done.ArrivalTime.Time, want)
	}
	if wait := done.StartConsultationTime.Sub(done.ArrivalTime.Time); wait != 10*time.Minute {
		t.Errorf("wait = %v, want 10m", wait)
	}
	if done.EndConsultationTime.Sub(done.StartConsultationTime.Time) != 20*time.Minute {
		t.Errorf("consultation = %v", done.EndConsultationTime.Sub(done.StartConsultationTime.Time))
	}

	raw := export(t, svc)
	for _, want := range []string{`"arrivalTime":1735689600000`, `"endConsultationTime":1735691400000`, `"arrivalTime":1735693200000`} {
		if !bytes.Contains(raw, []byte(want)) {
			t.Errorf("export should keep epoch milliseconds, missing %s", want)
		}
	}
}

func TestPreviewDoesNotChangeState(t *testing.T) {
	svc, store := newBackup(t)
	p, err := svc.PreviewRestore(admin, []byte(fixture))
	if err != nil {
		t.Fatal(err)
	}
	if p.Visits != 2 || p.Procedures != 2 || p.Committed || p.Date == nil {
		t.Errorf("preview = %+v", p)
	}
	if _, err := store.Load(context.Background(), storage.KeyVisits); !errors.Is(err, storage.ErrNotFound) {
		t.Error("preview must not save anything")
	}
	doc, _ := svc.Export(admin)
	if len(doc.Patients) != 0 {
		t.Error("preview must not replace the ledger")
	}
}

func TestRestoreFormatErrors(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"not json", `hello`},
		{"array document", `[]`},
		{"doctors is an object", `{"doctors":{"id":"d1"}}`},
		{"patients is a string", `{"patients":"none"}`},
		{"malformed entry", `{"procedures":[{"price":"free"}]}`},
		{"unknown status", `{"patients":[{"visitId":"v1","status":"CANCELLED"}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := newBackup(t)
			_, _ = svc.CommitRestore(context.Background(), admin, []byte(fixture))

			_, err := svc.CommitRestore(context.Background(), admin, []byte(tc.raw))
			var rfe *errs.RestoreFormatError
			if !errors.As(err, &rfe) {
				t.Fatalf("expected RestoreFormatError, got %v", err)
			}
			doc, _ := svc.Export(admin)
			if len(doc.Patients) != 2 {
				t.Error("a rejected restore must leave the state unchanged")
			}
		})
	}
}

func TestRestoreTreatsMissingAndNullAsEmpty(t *testing.T) {
	svc, _ := newBackup(t)
	p, err := svc.CommitRestore(context.Background(), admin, []byte(`{"doctors":null}`))
	if err != nil {
		t.Fatal(err)
	}
	if !p.Committed || p.Doctors != 0 || p.Date != nil {
		t.Errorf("preview = %+v", p)
	}
}

func TestBackupRequiresAdmin(t *testing.T) {
	svc, _ := newBackup(t)
	var ae *errs.AuthorizationError
	if _, err := svc.Export(access.Identity{Role: access.RoleAssistant}); !errors.As(err, &ae) {
		t.Errorf("assistant export: %v", err)
	}
	if _, err := svc.PreviewRestore(access.Identity{Role: access.RoleDoctor, ID: "d1"}, []byte(`{}`)); !errors.As(err, &ae) {
		t.Errorf("doctor preview: %v", err)
	}
}
