package services

import (
	"context"
	"iter"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/c14220110/mediflow-backend/internal/access"
	billingModels "github.com/c14220110/mediflow-backend/internal/billing/models"
	billingServices "github.com/c14220110/mediflow-backend/internal/billing/services"
	catalogModels "github.com/c14220110/mediflow-backend/internal/catalog/models"
	"github.com/c14220110/mediflow-backend/internal/common/errs"
	patientServices "github.com/c14220110/mediflow-backend/internal/patients/services"
	"github.com/c14220110/mediflow-backend/internal/session"
	"github.com/c14220110/mediflow-backend/internal/visits/models"
	"github.com/c14220110/mediflow-backend/pkg/storage"
)

// Notifier menerima event setiap kali ledger berubah (mis. hub websocket).
type Notifier interface {
	Publish(event models.Event)
}

// RoomChecker memvalidasi nama ruang konsultasi.
type RoomChecker interface {
	IsRoom(room string) bool
}

// LedgerService adalah state machine kunjungan:
// WAITING -> IN_CONSULTATION -> COMPLETED.
type LedgerService struct {
	Session  *session.Session
	Rooms    RoomChecker
	Location *time.Location
	Notifier Notifier
	Now      func() time.Time
}

func NewLedgerService(sess *session.Session, rooms RoomChecker, loc *time.Location, notifier Notifier) *LedgerService {
	if loc == nil {
		loc = time.UTC
	}
	return &LedgerService{
		Session:  sess,
		Rooms:    rooms,
		Location: loc,
		Notifier: notifier,
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

// Admit mendaftarkan kunjungan baru berstatus WAITING. Profil pasien dicocokkan
// ke direktori (atau dibuat baru) dan disalin ke kunjungan.
func (s *LedgerService) Admit(ctx context.Context, who access.Identity, req models.AdmitRequest) (models.Visit, error) {
	if err := access.Authorize(who, access.AdmitPatient); err != nil {
		return models.Visit{}, err
	}
	fields := req.ProfileFields.Normalized()
	reason := strings.TrimSpace(req.Reason)
	if fields.Name == "" {
		return models.Visit{}, errs.Validation("name", "is required")
	}
	if reason == "" {
		return models.Visit{}, errs.Validation("reason", "is required")
	}

	var visit models.Visit
	err := s.Session.Mutate(ctx, func(st *session.State) error {
		directory, profile, _ := patientServices.ResolveOrCreate(st.PatientDatabase, fields)
		st.PatientDatabase = directory
		visit = models.Visit{
			PatientProfile: profile,
			VisitID:        uuid.NewString(),
			Reason:         reason,
			Status:         models.StatusWaiting,
			ArrivalTime:    models.At(s.Now()),
		}
		st.Visits = append(st.Visits, visit)
		return nil
	}, storage.KeyVisits, storage.KeyPatientDatabase)
	s.notify(models.EventAdmitted, visit, err)
	return visit, err
}

// Assign memindahkan kunjungan WAITING ke ruang konsultasi. Room kosong memakai
// ruang default dokter; dokter yang login tanpa doctorId menugaskan dirinya sendiri.
func (s *LedgerService) Assign(ctx context.Context, who access.Identity, visitID string, req models.AssignRequest) (models.Visit, error) {
	doctorID := strings.TrimSpace(req.DoctorID)
	if doctorID == "" && who.Role == access.RoleDoctor {
		doctorID = who.ID
	}
	if err := access.AuthorizeAssign(who, doctorID); err != nil {
		return models.Visit{}, err
	}

	var visit models.Visit
	err := s.Session.Mutate(ctx, func(st *session.State) error {
		idx := indexVisit(st.Visits, visitID)
		if idx < 0 {
			return errs.NotFound("visit", visitID)
		}
		v := st.Visits[idx]
		if v.Status != models.StatusWaiting {
			return &errs.InvalidTransitionError{VisitID: visitID, Status: string(v.Status), Operation: "assign"}
		}
		doc, ok := findDoctor(st.Doctors, doctorID)
		if !ok {
			return errs.NotFound("doctor", doctorID)
		}
		room := strings.TrimSpace(req.Room)
		if room == "" {
			room = doc.DefaultRoom
		}
		if room == "" {
			return errs.Validation("room", "is required")
		}
		if !s.Rooms.IsRoom(room) {
			return errs.Validation("room", "unknown clinic room "+room)
		}

		v.Status = models.StatusInConsultation
		v.Assignment = &models.Assignment{
			AssignedDoctorID:      doc.ID,
			AssignedRoom:          room,
			StartConsultationTime: models.At(s.Now()),
		}
		st.Visits[idx] = v
		visit = v.Clone()
		return nil
	}, storage.KeyVisits)
	s.notify(models.EventAssigned, visit, err)
	return visit, err
}

// Finalize menutup konsultasi. Hak akses diperiksa sebelum status, sehingga dokter
// yang bukan penanggung jawab selalu mendapat AuthorizationError.
// Payments nil berarti memakai draft pembayaran kunjungan.
func (s *LedgerService) Finalize(ctx context.Context, who access.Identity, visitID string, req models.FinalizeRequest) (models.Visit, error) {
	if err := access.Authorize(who, access.FinalizeConsultation); err != nil {
		return models.Visit{}, err
	}

	var visit models.Visit
	err := s.Session.Mutate(ctx, func(st *session.State) error {
		idx := indexVisit(st.Visits, visitID)
		if idx < 0 {
			return errs.NotFound("visit", visitID)
		}
		v := st.Visits[idx]
		if err := access.AuthorizeFinalize(who, v.DoctorID()); err != nil {
			return err
		}
		if v.Status != models.StatusInConsultation {
			return &errs.InvalidTransitionError{VisitID: visitID, Status: string(v.Status), Operation: "finalize"}
		}

		payments := req.Payments
		if payments == nil {
			payments = st.Drafts[visitID]
		}
		quote, procedures, err := quoteFor(st, v, req.BaseCost, req.ProcedureIDs, payments)
		if err != nil {
			return err
		}
		if !quote.CanFinalize {
			return &errs.UnderpaymentError{Remaining: quote.Reconciliation.RemainingAmount}
		}

		v.Status = models.StatusCompleted
		v.Settlement = &models.Settlement{
			EndConsultationTime: models.At(s.Now()),
			BaseCost:            quote.Bill.BaseCost,
			PerformedProcedures: procedures,
			TotalCost:           quote.Bill.TotalCost,
			Payments:            slices.Clone(quote.Payments),
			DoctorEarnings:      quote.Bill.DoctorEarnings,
			ClinicEarnings:      quote.Bill.ClinicEarnings,
		}
		st.Visits[idx] = v
		delete(st.Drafts, visitID)
		visit = v.Clone()
		return nil
	}, storage.KeyVisits)
	s.notify(models.EventCompleted, visit, err)
	return visit, err
}

// Quote menghitung pratinjau tagihan memakai draft pembayaran saat ini.
func (s *LedgerService) Quote(who access.Identity, visitID string, baseCost float64, procedureIDs []string) (models.Quote, error) {
	var (
		quote models.Quote
		err   error
	)
	s.Session.Read(func(st *session.State) {
		var v models.Visit
		v, err = s.draftable(st, who, visitID)
		if err != nil {
			return
		}
		quote, _, err = quoteFor(st, v, baseCost, procedureIDs, st.Drafts[visitID])
	})
	return quote, err
}

// AddPayment menambahkan satu pembayaran ke draft. Draft tidak dipersist.
func (s *LedgerService) AddPayment(ctx context.Context, who access.Identity, visitID string, p billingModels.PaymentRecord) ([]billingModels.PaymentRecord, error) {
	if err := billingServices.ValidatePayment(p); err != nil {
		return nil, err
	}
	var drafts []billingModels.PaymentRecord
	err := s.Session.Mutate(ctx, func(st *session.State) error {
		if _, err := s.draftable(st, who, visitID); err != nil {
			return err
		}
		st.Drafts[visitID] = append(st.Drafts[visitID], p)
		drafts = slices.Clone(st.Drafts[visitID])
		return nil
	})
	return drafts, err
}

// RemovePayment menghapus pembayaran draft pada posisi index.
func (s *LedgerService) RemovePayment(ctx context.Context, who access.Identity, visitID string, index int) ([]billingModels.PaymentRecord, error) {
	var drafts []billingModels.PaymentRecord
	err := s.Session.Mutate(ctx, func(st *session.State) error {
		if _, err := s.draftable(st, who, visitID); err != nil {
			return err
		}
		current := st.Drafts[visitID]
		if index < 0 || index >= len(current) {
			return errs.Validation("index", "no draft payment at that position")
		}
		st.Drafts[visitID] = slices.Delete(slices.Clone(current), index, index+1)
		drafts = slices.Clone(st.Drafts[visitID])
		return nil
	})
	return drafts, err
}

func (s *LedgerService) Drafts(who access.Identity, visitID string) ([]billingModels.PaymentRecord, error) {
	var (
		drafts []billingModels.PaymentRecord
		err    error
	)
	s.Session.Read(func(st *session.State) {
		if _, err = s.draftable(st, who, visitID); err == nil {
			drafts = slices.Clone(st.Drafts[visitID])
		}
	})
	if drafts == nil {
		drafts = []billingModels.PaymentRecord{}
	}
	return drafts, err
}

func (s *LedgerService) Get(who access.Identity, visitID string) (models.Visit, error) {
	if err := access.Authorize(who, access.ViewQueue); err != nil {
		return models.Visit{}, err
	}
	var (
		visit models.Visit
		ok    bool
	)
	s.Session.Read(func(st *session.State) {
		if idx := indexVisit(st.Visits, visitID); idx >= 0 {
			visit, ok = st.Visits[idx].Clone(), true
		}
	})
	if !ok {
		return models.Visit{}, errs.NotFound("visit", visitID)
	}
	return visit, nil
}

// ListFilter: field kosong berarti tidak difilter.
type ListFilter struct {
	Status models.Status
	Date   *time.Time
}

func (s *LedgerService) List(who access.Identity, f ListFilter) ([]models.Visit, error) {
	if err := access.Authorize(who, access.ViewQueue); err != nil {
		return nil, err
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, errs.Validation("status", "unknown status "+string(f.Status))
	}
	seq := s.All()
	if f.Status != "" {
		seq = filter(seq, func(v models.Visit) bool { return v.Status == f.Status })
	}
	if f.Date != nil {
		seq = filter(seq, s.sameDay(*f.Date))
	}
	out := []models.Visit{}
	for v := range seq {
		out = append(out, v)
	}
	return out, nil
}

// All mengembalikan view atas salinan ledger saat dipanggil. Iterasi bisa diulang
// dan tidak terpengaruh mutasi berikutnya.
func (s *LedgerService) All() iter.Seq[models.Visit] {
	var snapshot []models.Visit
	s.Session.Read(func(st *session.State) {
		snapshot = make([]models.Visit, len(st.Visits))
		for i, v := range st.Visits {
			snapshot[i] = v.Clone()
		}
	})
	return func(yield func(models.Visit) bool) {
		for _, v := range snapshot {
			if !yield(v) {
				return
			}
		}
	}
}

func (s *LedgerService) ListByStatus(status models.Status) iter.Seq[models.Visit] {
	return filter(s.All(), func(v models.Visit) bool { return v.Status == status })
}

// Queue mengembalikan kunjungan yang belum selesai dalam urutan kedatangan,
// dipakai sebagai snapshot awal layar antrian.
func (s *LedgerService) Queue() []models.Visit {
	out := []models.Visit{}
	for v := range filter(s.All(), func(v models.Visit) bool { return v.Status != models.StatusCompleted }) {
		out = append(out, v)
	}
	return out
}

// ListByDate memakai hari kalender lokal (Location) dari arrivalTime.
func (s *LedgerService) ListByDate(date time.Time) iter.Seq[models.Visit] {
	return filter(s.All(), s.sameDay(date))
}

func (s *LedgerService) sameDay(date time.Time) func(models.Visit) bool {
	y, m, d := date.In(s.Location).Date()
	return func(v models.Visit) bool {
		vy, vm, vd := v.ArrivalTime.In(s.Location).Date()
		return vy == y && vm == m && vd == d
	}
}

func filter(seq iter.Seq[models.Visit], keep func(models.Visit) bool) iter.Seq[models.Visit] {
	return func(yield func(models.Visit) bool) {
		for v := range seq {
			if keep(v) && !yield(v) {
				return
			}
		}
	}
}

// draftable: kunjungan harus IN_CONSULTATION dan pemanggil boleh menutupnya.
func (s *LedgerService) draftable(st *session.State, who access.Identity, visitID string) (models.Visit, error) {
	idx := indexVisit(st.Visits, visitID)
	if idx < 0 {
		return models.Visit{}, errs.NotFound("visit", visitID)
	}
	v := st.Visits[idx]
	if err := access.AuthorizeFinalize(who, v.DoctorID()); err != nil {
		return models.Visit{}, err
	}
	if v.Status != models.StatusInConsultation {
		return models.Visit{}, &errs.InvalidTransitionError{VisitID: visitID, Status: string(v.Status), Operation: "edit payments of"}
	}
	return v, nil
}

func (s *LedgerService) notify(eventType string, v models.Visit, err error) {
	if s.Notifier == nil || (err != nil && !errs.IsPersistence(err)) {
		return
	}
	s.Notifier.Publish(models.Event{Type: eventType, Visit: v})
}

// quoteFor menghitung tagihan. Prosedur diambil dalam urutan katalog; id yang
// tidak dikenal menghasilkan ReferenceError.
func quoteFor(st *session.State, v models.Visit, baseCost float64, procedureIDs []string, payments []billingModels.PaymentRecord) (models.Quote, []catalogModels.Procedure, error) {
	if err := billingServices.ValidateAmount("baseCost", baseCost); err != nil {
		return models.Quote{}, nil, err
	}
	if err := billingServices.ValidatePayments(payments); err != nil {
		return models.Quote{}, nil, err
	}
	procedures, err := resolveProcedures(st.Procedures, procedureIDs)
	if err != nil {
		return models.Quote{}, nil, err
	}

	var shares *billingModels.Shares
	if doc, ok := findDoctor(st.Doctors, v.DoctorID()); ok {
		shares = &billingModels.Shares{
			ConsultationSharePercent: doc.ConsultationShare,
			ProcedureSharePercent:    doc.ProcedureShare,
		}
	}
	bill := billingServices.ComputeBill(baseCost, procedures, shares)
	rec := billingServices.ReconcilePayments(payments, bill.TotalCost)
	if payments == nil {
		payments = []billingModels.PaymentRecord{}
	}
	return models.Quote{
		Bill:           bill,
		Reconciliation: rec,
		Payments:       slices.Clone(payments),
		CanFinalize:    rec.Covered(),
	}, procedures, nil
}

func resolveProcedures(catalog []catalogModels.Procedure, ids []string) ([]catalogModels.Procedure, error) {
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	out := []catalogModels.Procedure{}
	for _, p := range catalog {
		if wanted[p.ID] {
			out = append(out, p)
			delete(wanted, p.ID)
		}
	}
	for _, id := range ids {
		if wanted[id] {
			return nil, errs.NotFound("procedure", id)
		}
	}
	return out, nil
}

func indexVisit(visits []models.Visit, id string) int {
	for i := range visits {
		if visits[i].VisitID == id {
			return i
		}
	}
	return -1
}

func findDoctor(doctors []catalogModels.Doctor, id string) (catalogModels.Doctor, bool) {
	if id == "" {
		return catalogModels.Doctor{}, false
	}
	for _, d := range doctors {
		if d.ID == id {
			return d, true
		}
	}
	return catalogModels.Doctor{}, false
}
