package services

import (
	"strings"

	"github.com/google/uuid"

	"github.com/c14220110/mediflow-backend/internal/access"
	"github.com/c14220110/mediflow-backend/internal/common/errs"
	"github.com/c14220110/mediflow-backend/internal/patients/models"
	"github.com/c14220110/mediflow-backend/internal/session"
)

// ResolveOrCreate mencari profil yang cocok (cédula sama ATAU nama sama tanpa
// membedakan huruf besar/kecil); kecocokan pertama sesuai urutan direktori
// yang dipakai. Jika ketemu, semua field kecuali ID ditimpa dengan input baru.
// Jika tidak, profil baru ditambahkan di akhir direktori.
// Cédula kosong tidak pernah dianggap cocok.
func ResolveOrCreate(directory []models.PatientProfile, fields models.ProfileFields) ([]models.PatientProfile, models.PatientProfile, bool) {
	fields = fields.Normalized()
	for i, p := range directory {
		if matches(p, fields) {
			merged := p.Apply(fields)
			directory[i] = merged
			return directory, merged, false
		}
	}
	created := models.PatientProfile{ID: uuid.NewString()}.Apply(fields)
	return append(directory, created), created, true
}

func matches(p models.PatientProfile, f models.ProfileFields) bool {
	if f.Cedula != "" && p.Cedula == f.Cedula {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(p.Name), f.Name)
}

// DirectoryService menangani query direktori pasien.
type DirectoryService struct {
	Session *session.Session
}

func NewDirectoryService(sess *session.Session) *DirectoryService {
	return &DirectoryService{Session: sess}
}

func (s *DirectoryService) List(who access.Identity) ([]models.PatientProfile, error) {
	if err := access.Authorize(who, access.ViewPatients); err != nil {
		return nil, err
	}
	var out []models.PatientProfile
	s.Session.Read(func(st *session.State) {
		out = append([]models.PatientProfile{}, st.PatientDatabase...)
	})
	return out, nil
}

// Search mencocokkan substring nama (case-insensitive) atau substring cédula.
func (s *DirectoryService) Search(who access.Identity, q string) ([]models.PatientProfile, error) {
	if err := access.Authorize(who, access.ViewPatients); err != nil {
		return nil, err
	}
	q = strings.TrimSpace(q)
	out := []models.PatientProfile{}
	if q == "" {
		return out, nil
	}
	lower := strings.ToLower(q)
	s.Session.Read(func(st *session.State) {
		for _, p := range st.PatientDatabase {
			if strings.Contains(strings.ToLower(p.Name), lower) || strings.Contains(p.Cedula, q) {
				out = append(out, p)
			}
		}
	})
	return out, nil
}

func (s *DirectoryService) Get(who access.Identity, id string) (models.PatientProfile, error) {
	if err := access.Authorize(who, access.ViewPatients); err != nil {
		return models.PatientProfile{}, err
	}
	var (
		found models.PatientProfile
		ok    bool
	)
	s.Session.Read(func(st *session.State) {
		for _, p := range st.PatientDatabase {
			if p.ID == id {
				found, ok = p, true
				return
			}
		}
	})
	if !ok {
		return models.PatientProfile{}, errs.NotFound("patient", id)
	}
	return found, nil
}
