package models

import (
	"time"

	catalogModels "github.com/c14220110/mediflow-backend/internal/catalog/models"
)

// BillingSummary adalah satu baris daftar tagihan terbaru.
type BillingSummary struct {
	VisitID        string    `json:"visitId"`
	PatientName    string    `json:"patientName"`
	Cedula         string    `json:"cedula"`
	DoctorID       string    `json:"doctorId"`
	DoctorName     string    `json:"doctorName"`
	Room           string    `json:"room"`
	CompletedAt    time.Time `json:"completedAt"`
	TotalCost      float64   `json:"totalCost"`
	PaidAmount     float64   `json:"paidAmount"`
	DoctorEarnings float64   `json:"doctorEarnings"`
	ClinicEarnings float64   `json:"clinicEarnings"`
}

// BillingDetail berisi rincian lengkap tagihan satu kunjungan selesai.
type BillingDetail struct {
	BillingSummary
	Reason         string                    `json:"reason"`
	ArrivalTime    time.Time                 `json:"arrivalTime"`
	StartedAt      time.Time                 `json:"startedAt"`
	Bill           Bill                      `json:"bill"`
	Reconciliation Reconciliation            `json:"reconciliation"`
	Procedures     []catalogModels.Procedure `json:"procedures"`
	Payments       []PaymentRecord           `json:"payments"`
}
