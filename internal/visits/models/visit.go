package models

import (
	"slices"

	billingModels "github.com/c14220110/mediflow-backend/internal/billing/models"
	catalogModels "github.com/c14220110/mediflow-backend/internal/catalog/models"
	patientModels "github.com/c14220110/mediflow-backend/internal/patients/models"
)

type Status string

const (
	StatusWaiting        Status = "WAITING"
	StatusInConsultation Status = "IN_CONSULTATION"
	StatusCompleted      Status = "COMPLETED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusWaiting, StatusInConsultation, StatusCompleted:
		return true
	}
	return false
}

// Visit adalah satu kunjungan: snapshot profil pasien saat masuk, ditambah
// data yang terisi per transisi status. Assignment terisi saat masuk konsultasi,
// Settlement saat selesai; keduanya nil sebelum transisinya terjadi.
type Visit struct {
	patientModels.PatientProfile
	VisitID     string    `json:"visitId"`
	Reason      string    `json:"reason"`
	Status      Status    `json:"status"`
	ArrivalTime Timestamp `json:"arrivalTime"`
	*Assignment
	*Settlement
}

type Assignment struct {
	AssignedDoctorID      string    `json:"assignedDoctorId"`
	AssignedRoom          string    `json:"assignedRoom"`
	StartConsultationTime Timestamp `json:"startConsultationTime"`
}

type Settlement struct {
	EndConsultationTime Timestamp                     `json:"endConsultationTime"`
	BaseCost            float64                       `json:"baseCost"`
	PerformedProcedures []catalogModels.Procedure     `json:"performedProcedures"`
	TotalCost           float64                       `json:"totalCost"`
	Payments            []billingModels.PaymentRecord `json:"payments"`
	DoctorEarnings      float64                       `json:"doctorEarnings"`
	ClinicEarnings      float64                       `json:"clinicEarnings"`
}

// DoctorID aman dipanggil untuk kunjungan yang belum ditugaskan.
func (v Visit) DoctorID() string {
	if v.Assignment == nil {
		return ""
	}
	return v.AssignedDoctorID
}

// Clone menyalin kunjungan termasuk slice di dalam Settlement.
func (v Visit) Clone() Visit {
	if v.Assignment != nil {
		a := *v.Assignment
		v.Assignment = &a
	}
	if v.Settlement != nil {
		s := *v.Settlement
		s.PerformedProcedures = slices.Clone(s.PerformedProcedures)
		s.Payments = slices.Clone(s.Payments)
		v.Settlement = &s
	}
	return v
}

type AdmitRequest struct {
	patientModels.ProfileFields
	Reason string `json:"reason"`
}

type AssignRequest struct {
	DoctorID string `json:"doctorId"`
	Room     string `json:"room"`
}

// FinalizeRequest: Payments nil berarti memakai draft pembayaran kunjungan.
type FinalizeRequest struct {
	BaseCost     float64                       `json:"baseCost"`
	ProcedureIDs []string                      `json:"procedureIds"`
	Payments     []billingModels.PaymentRecord `json:"payments"`
}

// Quote adalah pratinjau tagihan sebelum finalisasi.
type Quote struct {
	Bill           billingModels.Bill            `json:"bill"`
	Reconciliation billingModels.Reconciliation  `json:"reconciliation"`
	Payments       []billingModels.PaymentRecord `json:"payments"`
	CanFinalize    bool                          `json:"canFinalize"`
}
