package models

import "strings"

// PatientProfile adalah entri direktori pasien, terpisah dari riwayat kunjungan.
type PatientProfile struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Cedula             string `json:"cedula"`
	IsMinor            bool   `json:"isMinor"`
	RepresentativeName string `json:"representativeName,omitempty"`
	BirthDate          string `json:"birthDate"`
	Phone              string `json:"phone"`
	Email              string `json:"email"`
}

// ProfileFields adalah input registrasi tanpa identitas.
type ProfileFields struct {
	Name               string `json:"name"`
	Cedula             string `json:"cedula"`
	IsMinor            bool   `json:"isMinor"`
	RepresentativeName string `json:"representativeName"`
	BirthDate          string `json:"birthDate"`
	Phone              string `json:"phone"`
	Email              string `json:"email"`
}

func (f ProfileFields) Normalized() ProfileFields {
	f.Name = strings.TrimSpace(f.Name)
	f.Cedula = strings.TrimSpace(f.Cedula)
	f.RepresentativeName = strings.TrimSpace(f.RepresentativeName)
	f.BirthDate = strings.TrimSpace(f.BirthDate)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Email = strings.TrimSpace(f.Email)
	if !f.IsMinor {
		f.RepresentativeName = ""
	}
	return f
}

// Apply menimpa semua field profil kecuali ID.
func (p PatientProfile) Apply(f ProfileFields) PatientProfile {
	return PatientProfile{
		ID:                 p.ID,
		Name:               f.Name,
		Cedula:             f.Cedula,
		IsMinor:            f.IsMinor,
		RepresentativeName: f.RepresentativeName,
		BirthDate:          f.BirthDate,
		Phone:              f.Phone,
		Email:              f.Email,
	}
}
