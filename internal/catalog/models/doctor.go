package models

// Doctor menyimpan data dokter beserta persentase bagi hasil.
type Doctor struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Specialty         string  `json:"specialty"`
	Phone             string  `json:"phone"`
	Email             string  `json:"email"`
	ConsultationShare float64 `json:"consultationShare"`
	ProcedureShare    float64 `json:"procedureShare"`
	Username          string  `json:"username,omitempty"`
	PasswordHash      string  `json:"passwordHash,omitempty"`
	DefaultRoom       string  `json:"defaultRoom,omitempty"`
}

// Public menghapus hash password sebelum dikirim ke client.
func (d Doctor) Public() Doctor {
	d.PasswordHash = ""
	return d
}

// DoctorInput adalah payload create/update. Share nil memakai nilai default
// (create) atau nilai lama (update).
type DoctorInput struct {
	Name              string   `json:"name"`
	Specialty         string   `json:"specialty"`
	Phone             string   `json:"phone"`
	Email             string   `json:"email"`
	ConsultationShare *float64 `json:"consultationShare"`
	ProcedureShare    *float64 `json:"procedureShare"`
	Username          string   `json:"username"`
	Password          string   `json:"password"`
	DefaultRoom       string   `json:"defaultRoom"`
}

const (
	DefaultConsultationShare = 50
	DefaultProcedureShare    = 40
)
