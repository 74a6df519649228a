package services

import (
	"context"
	"math"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/c14220110/mediflow-backend/internal/access"
	billingServices "github.com/c14220110/mediflow-backend/internal/billing/services"
	"github.com/c14220110/mediflow-backend/internal/catalog/models"
	"github.com/c14220110/mediflow-backend/internal/common/errs"
	"github.com/c14220110/mediflow-backend/internal/session"
	visitModels "github.com/c14220110/mediflow-backend/internal/visits/models"
	"github.com/c14220110/mediflow-backend/pkg/storage"
)

// CatalogService mengelola data dokter, daftar prosedur, dan ruang konsultasi.
type CatalogService struct {
	Session *session.Session
	Rooms   []string
}

func NewCatalogService(sess *session.Session, rooms []string) *CatalogService {
	if len(rooms) == 0 {
		rooms = models.DefaultRooms
	}
	return &CatalogService{Session: sess, Rooms: rooms}
}

func (s *CatalogService) ListRooms() []string {
	return append([]string{}, s.Rooms...)
}

func (s *CatalogService) IsRoom(room string) bool {
	for _, r := range s.Rooms {
		if r == room {
			return true
		}
	}
	return false
}

// ---- Dokter ----------------------------------------------------------------

func (s *CatalogService) ListDoctors(who access.Identity) ([]models.Doctor, error) {
	if err := access.Authorize(who, access.ViewDoctors); err != nil {
		return nil, err
	}
	out := []models.Doctor{}
	s.Session.Read(func(st *session.State) {
		for _, d := range st.Doctors {
			out = append(out, d.Public())
		}
	})
	return out, nil
}

// AddDoctor membuat dokter baru. Share kosong memakai default 50/40.
func (s *CatalogService) AddDoctor(ctx context.Context, who access.Identity, in models.DoctorInput) (models.Doctor, error) {
	if err := access.Authorize(who, access.CreateDoctor); err != nil {
		return models.Doctor{}, err
	}
	d := models.Doctor{
		ID:                uuid.NewString(),
		ConsultationShare: models.DefaultConsultationShare,
		ProcedureShare:    models.DefaultProcedureShare,
	}
	if err := s.applyDoctorInput(&d, in, true); err != nil {
		return models.Doctor{}, err
	}

	err := s.Session.Mutate(ctx, func(st *session.State) error {
		if err := usernameFree(st.Doctors, d.Username, ""); err != nil {
			return err
		}
		st.Doctors = append(st.Doctors, d)
		return nil
	}, storage.KeyDoctors)
	return d.Public(), err
}

func (s *CatalogService) UpdateDoctor(ctx context.Context, who access.Identity, id string, in models.DoctorInput) (models.Doctor, error) {
	if err := access.Authorize(who, access.EditDoctor); err != nil {
		return models.Doctor{}, err
	}
	var updated models.Doctor
	err := s.Session.Mutate(ctx, func(st *session.State) error {
		idx := indexDoctor(st.Doctors, id)
		if idx < 0 {
			return errs.NotFound("doctor", id)
		}
		d := st.Doctors[idx]
		if err := s.applyDoctorInput(&d, in, false); err != nil {
			return err
		}
		if err := usernameFree(st.Doctors, d.Username, id); err != nil {
			return err
		}
		st.Doctors[idx] = d
		updated = d
		return nil
	}, storage.KeyDoctors)
	return updated.Public(), err
}

// DeleteDoctor menolak jika dokter masih punya kunjungan aktif. Kunjungan yang
// sudah selesai tetap menyimpan id dokter sebagai referensi historis.
func (s *CatalogService) DeleteDoctor(ctx context.Context, who access.Identity, id string) error {
	if err := access.Authorize(who, access.EditDoctor); err != nil {
		return err
	}
	return s.Session.Mutate(ctx, func(st *session.State) error {
		idx := indexDoctor(st.Doctors, id)
		if idx < 0 {
			return errs.NotFound("doctor", id)
		}
		for _, v := range st.Visits {
			if v.Status == visitModels.StatusInConsultation && v.DoctorID() == id {
				return errs.Validation("doctor", "has a consultation in progress")
			}
		}
		st.Doctors = append(st.Doctors[:idx], st.Doctors[idx+1:]...)
		return nil
	}, storage.KeyDoctors)
}

// FindDoctorByUsername dipakai oleh autentikasi dokter.
func (s *CatalogService) FindDoctorByUsername(username string) (models.Doctor, bool) {
	var (
		found models.Doctor
		ok    bool
	)
	s.Session.Read(func(st *session.State) {
		for _, d := range st.Doctors {
			if d.Username != "" && strings.EqualFold(d.Username, username) {
				found, ok = d, true
				return
			}
		}
	})
	return found, ok
}

func (s *CatalogService) applyDoctorInput(d *models.Doctor, in models.DoctorInput, create bool) error {
	name := strings.TrimSpace(in.Name)
	specialty := strings.TrimSpace(in.Specialty)
	if create || name != "" {
		if name == "" {
			return errs.Validation("name", "is required")
		}
		d.Name = name
	}
	if create || specialty != "" {
		if specialty == "" {
			return errs.Validation("specialty", "is required")
		}
		d.Specialty = specialty
	}
	if create || in.Phone != "" {
		d.Phone = strings.TrimSpace(in.Phone)
	}
	if create || in.Email != "" {
		d.Email = strings.TrimSpace(in.Email)
	}
	if in.ConsultationShare != nil {
		if err := validateShare("consultationShare", *in.ConsultationShare); err != nil {
			return err
		}
		d.ConsultationShare = *in.ConsultationShare
	}
	if in.ProcedureShare != nil {
		if err := validateShare("procedureShare", *in.ProcedureShare); err != nil {
			return err
		}
		d.ProcedureShare = *in.ProcedureShare
	}
	if room := strings.TrimSpace(in.DefaultRoom); room != "" {
		if !s.IsRoom(room) {
			return errs.Validation("defaultRoom", "unknown clinic room "+room)
		}
		d.DefaultRoom = room
	}
	if username := strings.TrimSpace(in.Username); username != "" {
		d.Username = username
	}
	if in.Password != "" {
		if d.Username == "" {
			return errs.Validation("username", "is required when a password is set")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		d.PasswordHash = string(hash)
	}
	return nil
}

// validateShare: persentase harus di antara 0 dan 100.
func validateShare(field string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 100 {
		return errs.Validation(field, "must be between 0 and 100")
	}
	return nil
}

func usernameFree(doctors []models.Doctor, username, selfID string) error {
	if username == "" {
		return nil
	}
	for _, d := range doctors {
		if d.ID != selfID && strings.EqualFold(d.Username, username) {
			return errs.Validation("username", "is already taken")
		}
	}
	return nil
}

func indexDoctor(doctors []models.Doctor, id string) int {
	for i, d := range doctors {
		if d.ID == id {
			return i
		}
	}
	return -1
}

// ---- Prosedur --------------------------------------------------------------

func (s *CatalogService) ListProcedures(who access.Identity) ([]models.Procedure, error) {
	if err := access.Authorize(who, access.ViewProcedures); err != nil {
		return nil, err
	}
	var out []models.Procedure
	s.Session.Read(func(st *session.State) {
		out = append([]models.Procedure{}, st.Procedures...)
	})
	return out, nil
}

func (s *CatalogService) AddProcedure(ctx context.Context, who access.Identity, in models.ProcedureInput) (models.Procedure, error) {
	if err := access.Authorize(who, access.ManageProcedures); err != nil {
		return models.Procedure{}, err
	}
	p := models.Procedure{ID: uuid.NewString(), Name: strings.TrimSpace(in.Name)}
	if p.Name == "" {
		return models.Procedure{}, errs.Validation("name", "is required")
	}
	if in.Price == nil {
		return models.Procedure{}, errs.Validation("price", "is required")
	}
	if err := billingServices.ValidateAmount("price", *in.Price); err != nil {
		return models.Procedure{}, err
	}
	p.Price = *in.Price

	err := s.Session.Mutate(ctx, func(st *session.State) error {
		st.Procedures = append(st.Procedures, p)
		return nil
	}, storage.KeyProcedures)
	return p, err
}

// UpdateProcedure tidak mengubah kunjungan yang sudah selesai karena kunjungan
// menyimpan salinan prosedur.
func (s *CatalogService) UpdateProcedure(ctx context.Context, who access.Identity, id string, in models.ProcedureInput) (models.Procedure, error) {
	if err := access.Authorize(who, access.ManageProcedures); err != nil {
		return models.Procedure{}, err
	}
	name := strings.TrimSpace(in.Name)
	if in.Price != nil {
		if err := billingServices.ValidateAmount("price", *in.Price); err != nil {
			return models.Procedure{}, err
		}
	}
	var updated models.Procedure
	err := s.Session.Mutate(ctx, func(st *session.State) error {
		for i := range st.Procedures {
			if st.Procedures[i].ID != id {
				continue
			}
			if name != "" {
				st.Procedures[i].Name = name
			}
			if in.Price != nil {
				st.Procedures[i].Price = *in.Price
			}
			updated = st.Procedures[i]
			return nil
		}
		return errs.NotFound("procedure", id)
	}, storage.KeyProcedures)
	return updated, err
}

func (s *CatalogService) DeleteProcedure(ctx context.Context, who access.Identity, id string) error {
	if err := access.Authorize(who, access.ManageProcedures); err != nil {
		return err
	}
	return s.Session.Mutate(ctx, func(st *session.State) error {
		for i := range st.Procedures {
			if st.Procedures[i].ID == id {
				st.Procedures = append(st.Procedures[:i], st.Procedures[i+1:]...)
				return nil
			}
		}
		return errs.NotFound("procedure", id)
	}, storage.KeyProcedures)
}
