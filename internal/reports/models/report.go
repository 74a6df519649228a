package models

import (
	"fmt"

	billingModels "github.com/c14220110/mediflow-backend/internal/billing/models"
)

// Period memfilter kunjungan selesai berdasarkan hari kalender lokal dari arrivalTime.
type Period string

const (
	PeriodToday Period = "today"
	PeriodMonth Period = "month"
	PeriodAll   Period = "all"
)

// ParsePeriod: string kosong berarti hari ini.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case "":
		return PeriodToday, nil
	case PeriodToday, PeriodMonth, PeriodAll:
		return Period(s), nil
	}
	return "", fmt.Errorf("unknown period %q", s)
}

type DoctorTotals struct {
	DoctorID   string  `json:"doctorId"`
	DoctorName string  `json:"doctorName"`
	Visits     int     `json:"visits"`
	Revenue    float64 `json:"revenue"`
	Earnings   float64 `json:"earnings"`
}

type MethodTotal struct {
	Method billingModels.PaymentMethod `json:"method"`
	Amount float64                     `json:"amount"`
}

type Dashboard struct {
	Period                 Period         `json:"period"`
	Visits                 int            `json:"visits"`
	Revenue                float64        `json:"revenue"`
	ClinicRevenue          float64        `json:"clinicRevenue"`
	DoctorRevenue          float64        `json:"doctorRevenue"`
	AvgWaitMinutes         float64        `json:"avgWaitMinutes"`
	AvgConsultationMinutes float64        `json:"avgConsultationMinutes"`
	ByDoctor               []DoctorTotals `json:"byDoctor"`
	ByMethod               []MethodTotal  `json:"byMethod"`
}

// VisitSummary adalah ringkasan read-only yang dikirim ke generator laporan.
type VisitSummary struct {
	Name               string  `json:"name"`
	DoctorName         string  `json:"doctorName"`
	WaitTimeMinutes    float64 `json:"waitTimeMinutes"`
	ConsultTimeMinutes float64 `json:"consultTimeMinutes"`
	TotalCost          float64 `json:"totalCost"`
	DoctorShare        float64 `json:"doctorShare"`
	ClinicShare        float64 `json:"clinicShare"`
	Payments           string  `json:"payments"`
}

// Report: Generated false berarti Text adalah salah satu teks fallback.
type Report struct {
	Period    Period `json:"period"`
	Visits    int    `json:"visits"`
	Text      string `json:"text"`
	Generated bool   `json:"generated"`
}
