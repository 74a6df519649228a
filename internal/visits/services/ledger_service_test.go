package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/c14220110/mediflow-backend/internal/access"
	billingModels "github.com/c14220110/mediflow-backend/internal/billing/models"
	billingServices "github.com/c14220110/mediflow-backend/internal/billing/services"
	catalogModels "github.com/c14220110/mediflow-backend/internal/catalog/models"
	catalogServices "github.com/c14220110/mediflow-backend/internal/catalog/services"
	"github.com/c14220110/mediflow-backend/internal/common/errs"
	patientModels "github.com/c14220110/mediflow-backend/internal/patients/models"
	"github.com/c14220110/mediflow-backend/internal/session"
	"github.com/c14220110/mediflow-backend/internal/visits/models"
	"github.com/c14220110/mediflow-backend/pkg/storage"
	"github.com/c14220110/mediflow-backend/pkg/storage/memory"
)

var (
	admin     = access.Identity{Role: access.RoleAdmin, Name: "Admin"}
	assistant = access.Identity{Role: access.RoleAssistant, Name: "Recepción"}
	drRuiz    = access.Identity{Role: access.RoleDoctor, ID: "d1", Name: "Dr. Ruiz"}
	drLeon    = access.Identity{Role: access.RoleDoctor, ID: "d2", Name: "Dra. León"}
)

type roomSet []string

func (r roomSet) IsRoom(room string) bool {
	for _, x := range r {
		if x == room {
			return true
		}
	}
	return false
}

type recorder struct {
	events []models.Event
}

func (r *recorder) Publish(e models.Event) { r.events = append(r.events, e) }

type failingStore struct {
	*memory.Store
	fail bool
}

func (f *failingStore) Save(ctx context.Context, key string, payload []byte) error {
	if f.fail {
		return errors.New("quota exceeded")
	}
	return f.Store.Save(ctx, key, payload)
}

type fixture struct {
	svc   *LedgerService
	store *failingStore
	feed  *recorder
	clock time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := &failingStore{Store: memory.New()}
	_ = store.Store.Save(ctx, storage.KeyDoctors, []byte(`[
		{"id":"d1","name":"Dr. Ruiz","specialty":"General","consultationShare":50,"procedureShare":40,"defaultRoom":"Consultorio 1"},
		{"id":"d2","name":"Dra. León","specialty":"Pediatría","consultationShare":60,"procedureShare":30}
	]`))
	_ = store.Store.Save(ctx, storage.KeyProcedures, []byte(`[
		{"id":"p1","name":"Ecografía","price":50},
		{"id":"p2","name":"Electrocardiograma","price":30}
	]`))

	f := &fixture{
		store: store,
		feed:  &recorder{},
		clock: time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC),
	}
	sess := session.Open(ctx, store, zerolog.Nop())
	f.svc = NewLedgerService(sess, roomSet{"Consultorio 1", "Consultorio 2"}, time.UTC, f.feed)
	f.svc.Now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) admit(t *testing.T, name, cedula string) models.Visit {
	t.Helper()
	v, err := f.svc.Admit(context.Background(), assistant, models.AdmitRequest{
		ProfileFields: patientModels.ProfileFields{Name: name, Cedula: cedula},
		Reason:        "Control",
	})
	if err != nil {
		t.Fatalf("Admit: %v", err)
	}
	return v
}

func (f *fixture) assign(t *testing.T, visitID, doctorID string) models.Visit {
	t.Helper()
	v, err := f.svc.Assign(context.Background(), assistant, visitID, models.AssignRequest{DoctorID: doctorID, Room: "Consultorio 2"})
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	return v
}

func payments(amounts ...float64) []billingModels.PaymentRecord {
	out := []billingModels.PaymentRecord{}
	for _, a := range amounts {
		out = append(out, billingModels.PaymentRecord{Method: billingModels.MethodZelle, Amount: a})
	}
	return out
}

func TestFullLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	v := f.admit(t, "Ana Pérez", "V123")
	if v.Status != models.StatusWaiting || !v.ArrivalTime.Equal(f.clock) {
		t.Fatalf("admitted visit = %+v", v)
	}
	if v.Assignment != nil || v.Settlement != nil {
		t.Fatal("a waiting visit carries no assignment or settlement")
	}

	f.clock = f.clock.Add(15 * time.Minute)
	v = f.assign(t, v.VisitID, "d1")
	if v.Status != models.StatusInConsultation || v.AssignedDoctorID != "d1" || v.AssignedRoom != "Consultorio 2" {
		t.Fatalf("assigned visit = %+v", v)
	}

	f.clock = f.clock.Add(20 * time.Minute)
	v, err := f.svc.Finalize(ctx, assistant, v.VisitID, models.FinalizeRequest{
		BaseCost:     100,
		ProcedureIDs: []string{"p1"},
		Payments: []billingModels.PaymentRecord{
			{Method: billingModels.MethodZelle, Amount: 90},
			{Method: billingModels.MethodCashUSD, Amount: 60},
		},
	})
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if v.Status != models.StatusCompleted || v.TotalCost != 150 {
		t.Fatalf("completed visit = %+v", v)
	}
	if math.Abs(v.DoctorEarnings-70) > 1e-9 || math.Abs(v.ClinicEarnings-80) > 1e-9 {
		t.Errorf("earnings = %v/%v, want 70/80", v.DoctorEarnings, v.ClinicEarnings)
	}
	if len(v.PerformedProcedures) != 1 || v.PerformedProcedures[0].Name != "Ecografía" {
		t.Errorf("procedure snapshot = %+v", v.PerformedProcedures)
	}
	if !v.EndConsultationTime.Equal(f.clock) {
		t.Errorf("end time = %v", v.EndConsultationTime)
	}

	got := []string{}
	for _, e := range f.feed.events {
		got = append(got, e.Type)
	}
	want := []string{models.EventAdmitted, models.EventAssigned, models.EventCompleted}
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
}

func TestAdmitValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	var ve *errs.ValidationError

	if _, err := f.svc.Admit(ctx, assistant, models.AdmitRequest{Reason: "Dolor"}); !errors.As(err, &ve) {
		t.Errorf("missing name: %v", err)
	}
	if _, err := f.svc.Admit(ctx, assistant, models.AdmitRequest{
		ProfileFields: patientModels.ProfileFields{Name: "Ana"}, Reason: "   ",
	}); !errors.As(err, &ve) {
		t.Errorf("blank reason: %v", err)
	}
	var ae *errs.AuthorizationError
	if _, err := f.svc.Admit(ctx, drRuiz, models.AdmitRequest{
		ProfileFields: patientModels.ProfileFields{Name: "Ana"}, Reason: "Dolor",
	}); !errors.As(err, &ae) {
		t.Errorf("doctors cannot admit: %v", err)
	}
	if n := len(f.feed.events); n != 0 {
		t.Errorf("rejected admissions must not publish, got %d events", n)
	}
}

func TestTransitionLegality(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	var ite *errs.InvalidTransitionError

	waiting := f.admit(t, "Luis", "")
	if _, err := f.svc.Finalize(ctx, assistant, waiting.VisitID, models.FinalizeRequest{}); !errors.As(err, &ite) {
		t.Errorf("finalize from WAITING: %v", err)
	}

	inConsult := f.assign(t, waiting.VisitID, "d1")
	if _, err := f.svc.Assign(ctx, assistant, inConsult.VisitID, models.AssignRequest{DoctorID: "d2", Room: "Consultorio 1"}); !errors.As(err, &ite) {
		t.Errorf("assign from IN_CONSULTATION: %v", err)
	}

	done, err := f.svc.Finalize(ctx, assistant, inConsult.VisitID, models.FinalizeRequest{BaseCost: 0, Payments: payments()})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Finalize(ctx, assistant, done.VisitID, models.FinalizeRequest{Payments: payments()}); !errors.As(err, &ite) {
		t.Errorf("finalize from COMPLETED: %v", err)
	}
	if _, err := f.svc.Assign(ctx, assistant, done.VisitID, models.AssignRequest{DoctorID: "d1", Room: "Consultorio 1"}); !errors.As(err, &ite) {
		t.Errorf("assign from COMPLETED: %v", err)
	}
}

func TestAssignChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.admit(t, "Carla", "")

	var re *errs.ReferenceError
	if _, err := f.svc.Assign(ctx, assistant, v.VisitID, models.AssignRequest{DoctorID: "nobody", Room: "Consultorio 1"}); !errors.As(err, &re) {
		t.Errorf("unknown doctor: %v", err)
	}
	var ve *errs.ValidationError
	if _, err := f.svc.Assign(ctx, assistant, v.VisitID, models.AssignRequest{DoctorID: "d2", Room: "Consultorio 9"}); !errors.As(err, &ve) {
		t.Errorf("unknown room: %v", err)
	}
	if _, err := f.svc.Assign(ctx, assistant, v.VisitID, models.AssignRequest{DoctorID: "d2"}); !errors.As(err, &ve) {
		t.Errorf("doctor without default room needs an explicit room: %v", err)
	}
	var ae *errs.AuthorizationError
	if _, err := f.svc.Assign(ctx, drRuiz, v.VisitID, models.AssignRequest{DoctorID: "d2", Room: "Consultorio 1"}); !errors.As(err, &ae) {
		t.Errorf("doctor assigning someone else: %v", err)
	}

	got, err := f.svc.Assign(ctx, drRuiz, v.VisitID, models.AssignRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if got.AssignedDoctorID != "d1" || got.AssignedRoom != "Consultorio 1" {
		t.Errorf("self-assign should use the doctor's default room, got %+v", got.Assignment)
	}
}

func TestFinalizeUnderpayment(t *testing.T) {
	f := newFixture(t)
	v := f.admit(t, "Pedro", "")
	f.assign(t, v.VisitID, "d1")

	_, err := f.svc.Finalize(context.Background(), assistant, v.VisitID, models.FinalizeRequest{
		BaseCost: 100,
		Payments: payments(90),
	})
	var ue *errs.UnderpaymentError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UnderpaymentError, got %v", err)
	}
	if ue.Remaining != 10 {
		t.Errorf("remaining = %v, want 10", ue.Remaining)
	}

	still, _ := f.svc.Get(admin, v.VisitID)
	if still.Status != models.StatusInConsultation || still.Settlement != nil {
		t.Errorf("rejected finalize must leave the visit untouched, got %+v", still)
	}
}

func TestFinalizeSplitPaymentCoversTotal(t *testing.T) {
	f := newFixture(t)
	v := f.admit(t, "Marta", "")
	f.assign(t, v.VisitID, "d1")

	done, err := f.svc.Finalize(context.Background(), assistant, v.VisitID, models.FinalizeRequest{
		BaseCost: 100,
		Payments: []billingModels.PaymentRecord{
			{Method: billingModels.MethodZelle, Amount: 60},
			{Method: billingModels.MethodPagoMovil, Amount: 40},
		},
	})
	if err != nil {
		t.Fatalf("60 + 40 should settle a bill of 100: %v", err)
	}
	if done.TotalCost != 100 || len(done.Payments) != 2 {
		t.Errorf("completed visit = %+v", done.Settlement)
	}
	if r := billingServices.ReconcilePayments(done.Payments, done.TotalCost); r.RemainingAmount != 0 {
		t.Errorf("remaining = %v, want 0", r.RemainingAmount)
	}
}

func TestCompletedVisitKeepsProcedurePrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.admit(t, "Irene", "")
	f.assign(t, v.VisitID, "d1")
	if _, err := f.svc.Finalize(ctx, assistant, v.VisitID, models.FinalizeRequest{
		BaseCost: 100, ProcedureIDs: []string{"p1"}, Payments: payments(150),
	}); err != nil {
		t.Fatal(err)
	}

	catalog := catalogServices.NewCatalogService(f.svc.Session, nil)
	price := 80.0
	if _, err := catalog.UpdateProcedure(ctx, admin, "p1", catalogModels.ProcedureInput{Name: "Ecografía", Price: &price}); err != nil {
		t.Fatal(err)
	}

	got, err := f.svc.Get(admin, v.VisitID)
	if err != nil {
		t.Fatal(err)
	}
	if got.PerformedProcedures[0].Price != 50 || got.TotalCost != 150 {
		t.Errorf("history changed after a price update: procedures=%+v total=%v", got.PerformedProcedures, got.TotalCost)
	}
	if got.DoctorEarnings != 70 || got.ClinicEarnings != 80 {
		t.Errorf("earnings changed: %v / %v", got.DoctorEarnings, got.ClinicEarnings)
	}

	next := f.admit(t, "Irene", "")
	f.assign(t, next.VisitID, "d1")
	q, err := f.svc.Quote(assistant, next.VisitID, 100, []string{"p1"})
	if err != nil {
		t.Fatal(err)
	}
	if q.Bill.TotalCost != 180 {
		t.Errorf("new visits should use the new price, total = %v", q.Bill.TotalCost)
	}
}

func TestQueueOmitsCompletedVisits(t *testing.T) {
	f := newFixture(t)
	first := f.admit(t, "Ana Pérez", "V-1")
	second := f.assign(t, f.admit(t, "Luis Gómez", "V-2").VisitID, "d1")
	third := f.assign(t, f.admit(t, "Marta Díaz", "V-3").VisitID, "d2")
	if _, err := f.svc.Finalize(context.Background(), assistant, third.VisitID, models.FinalizeRequest{Payments: payments()}); err != nil {
		t.Fatal(err)
	}

	queue := f.svc.Queue()
	if len(queue) != 2 || queue[0].VisitID != first.VisitID || queue[1].VisitID != second.VisitID {
		t.Fatalf("queue = %+v", queue)
	}
}

func TestFinalizeForeignVisitIsAuthorizationError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	waiting := f.admit(t, "Sofía", "")
	active := f.admit(t, "Mateo", "")
	f.assign(t, active.VisitID, "d1")

	var ae *errs.AuthorizationError
	for _, id := range []string{waiting.VisitID, active.VisitID} {
		_, err := f.svc.Finalize(ctx, drLeon, id, models.FinalizeRequest{BaseCost: 10, Payments: payments(10)})
		if !errors.As(err, &ae) {
			t.Errorf("visit %s: expected AuthorizationError, got %v", id, err)
		}
	}

	if _, err := f.svc.Finalize(ctx, drRuiz, active.VisitID, models.FinalizeRequest{BaseCost: 10, Payments: payments(10)}); err != nil {
		t.Errorf("assigned doctor may finalize: %v", err)
	}
}

func TestReadmissionSharesProfile(t *testing.T) {
	f := newFixture(t)
	first := f.admit(t, "Ana Pérez", "V123")
	second, err := f.svc.Admit(context.Background(), assistant, models.AdmitRequest{
		ProfileFields: patientModels.ProfileFields{Name: "Ana Pérez", Cedula: "V123", Phone: "0414-5550000"},
		Reason:        "Resultados",
	})
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != second.ID {
		t.Errorf("both visits should reference the same profile: %s vs %s", first.ID, second.ID)
	}
	if first.VisitID == second.VisitID {
		t.Error("visit ids must differ")
	}
	if second.Phone != "0414-5550000" {
		t.Errorf("second visit should carry the updated phone, got %q", second.Phone)
	}

	n := 0
	for range f.svc.All() {
		n++
	}
	if n != 2 {
		t.Errorf("ledger should hold two visits, got %d", n)
	}
	f.svc.Session.Read(func(st *session.State) {
		if len(st.PatientDatabase) != 1 || st.PatientDatabase[0].Phone != "0414-5550000" {
			t.Errorf("directory = %+v", st.PatientDatabase)
		}
	})
}

func TestDraftPaymentsAndQuote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.admit(t, "Elena", "")

	if _, err := f.svc.AddPayment(ctx, assistant, v.VisitID, payments(10)[0]); err == nil {
		t.Fatal("drafts are only allowed during consultation")
	}
	f.assign(t, v.VisitID, "d1")

	if _, err := f.svc.AddPayment(ctx, assistant, v.VisitID, billingModels.PaymentRecord{Method: "Cheque", Amount: 5}); err == nil {
		t.Fatal("unknown payment method must be rejected")
	}
	for _, amount := range []float64{100, 30, 50} {
		if _, err := f.svc.AddPayment(ctx, assistant, v.VisitID, payments(amount)[0]); err != nil {
			t.Fatal(err)
		}
	}
	drafts, err := f.svc.RemovePayment(ctx, assistant, v.VisitID, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(drafts) != 2 || drafts[1].Amount != 50 {
		t.Fatalf("drafts after removal = %+v", drafts)
	}

	q, err := f.svc.Quote(assistant, v.VisitID, 100, []string{"p1"})
	if err != nil {
		t.Fatal(err)
	}
	if q.Bill.TotalCost != 150 || q.Reconciliation.PaidAmount != 150 || !q.CanFinalize {
		t.Errorf("quote = %+v", q)
	}

	done, err := f.svc.Finalize(ctx, assistant, v.VisitID, models.FinalizeRequest{BaseCost: 100, ProcedureIDs: []string{"p1"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(done.Payments) != 2 {
		t.Errorf("finalize should use the draft, got %+v", done.Payments)
	}
	f.svc.Session.Read(func(st *session.State) {
		if _, ok := st.Drafts[v.VisitID]; ok {
			t.Error("draft should be cleared after finalize")
		}
	})
}

func TestUnknownProcedure(t *testing.T) {
	f := newFixture(t)
	v := f.admit(t, "Raúl", "")
	f.assign(t, v.VisitID, "d1")
	_, err := f.svc.Finalize(context.Background(), assistant, v.VisitID, models.FinalizeRequest{
		BaseCost: 10, ProcedureIDs: []string{"p9"}, Payments: payments(10),
	})
	var re *errs.ReferenceError
	if !errors.As(err, &re) {
		t.Errorf("expected ReferenceError, got %v", err)
	}
}

func TestListByStatusAndDate(t *testing.T) {
	f := newFixture(t)
	f.admit(t, "Uno", "")
	f.clock = f.clock.Add(24 * time.Hour)
	second := f.admit(t, "Dos", "")
	f.assign(t, second.VisitID, "d1")

	waiting := 0
	for range f.svc.ListByStatus(models.StatusWaiting) {
		waiting++
	}
	if waiting != 1 {
		t.Errorf("waiting = %d, want 1", waiting)
	}

	seq := f.svc.ListByDate(f.clock)
	for range 2 {
		n := 0
		for v := range seq {
			if v.VisitID != second.VisitID {
				t.Errorf("unexpected visit %s for the day", v.Name)
			}
			n++
		}
		if n != 1 {
			t.Errorf("visits for the day = %d, want 1", n)
		}
	}

	list, err := f.svc.List(admin, ListFilter{Status: "CANCELLED"})
	if err == nil {
		t.Errorf("unknown status should fail, got %v", list)
	}
}

func TestListByDateUsesLocalCalendarDay(t *testing.T) {
	f := newFixture(t)
	caracas := time.FixedZone("VET", -4*3600)
	f.svc.Location = caracas

	// 02:00 UTC on the 11th is still the 10th in Caracas.
	f.clock = time.Date(2025, 3, 11, 2, 0, 0, 0, time.UTC)
	v := f.admit(t, "Noche", "")

	n := 0
	for range f.svc.ListByDate(time.Date(2025, 3, 10, 12, 0, 0, 0, caracas)) {
		n++
	}
	if n != 1 {
		t.Errorf("visit %s should belong to the local day of the 10th", v.VisitID)
	}
}

func TestPersistenceFailureKeepsTransition(t *testing.T) {
	f := newFixture(t)
	f.store.fail = true

	v, err := f.svc.Admit(context.Background(), assistant, models.AdmitRequest{
		ProfileFields: patientModels.ProfileFields{Name: "Julia"},
		Reason:        "Fiebre",
	})
	if !errs.IsPersistence(err) {
		t.Fatalf("expected a PersistenceError, got %v", err)
	}
	got, getErr := f.svc.Get(admin, v.VisitID)
	if getErr != nil || got.Status != models.StatusWaiting {
		t.Errorf("visit should exist in memory, got %+v, %v", got, getErr)
	}
	if len(f.feed.events) != 1 {
		t.Errorf("committed change should still be published, got %d events", len(f.feed.events))
	}
}
