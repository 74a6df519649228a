package services

import (
	"math"

	"github.com/c14220110/mediflow-backend/internal/billing/models"
	catalogModels "github.com/c14220110/mediflow-backend/internal/catalog/models"
	"github.com/c14220110/mediflow-backend/internal/common/errs"
)

// ComputeBill menghitung total tagihan dan bagi hasil dokter/klinik.
// Persentase prosedur dokter berlaku rata untuk semua prosedur. Jika shares nil
// (dokter tidak ditemukan), seluruh pendapatan menjadi milik klinik.
func ComputeBill(baseCost float64, procedures []catalogModels.Procedure, shares *models.Shares) models.Bill {
	var proceduresCost float64
	for _, p := range procedures {
		proceduresCost += p.Price
	}
	total := baseCost + proceduresCost

	var doctor float64
	if shares != nil {
		doctor = baseCost * shares.ConsultationSharePercent / 100
		for _, p := range procedures {
			doctor += p.Price * shares.ProcedureSharePercent / 100
		}
	}

	return models.Bill{
		BaseCost:       baseCost,
		ProceduresCost: proceduresCost,
		TotalCost:      total,
		DoctorEarnings: doctor,
		ClinicEarnings: total - doctor,
	}
}

// ReconcilePayments menjumlahkan pembayaran. Sisa negatif (kelebihan bayar) bukan error.
func ReconcilePayments(payments []models.PaymentRecord, totalCost float64) models.Reconciliation {
	var paid float64
	for _, p := range payments {
		paid += p.Amount
	}
	return models.Reconciliation{
		PaidAmount:      paid,
		RemainingAmount: totalCost - paid,
	}
}

// ValidatePayment memeriksa metode dan nominal satu pembayaran.
func ValidatePayment(p models.PaymentRecord) error {
	if !p.Method.Valid() {
		return errs.Validation("method", "unknown payment method "+string(p.Method))
	}
	if !validAmount(p.Amount) {
		return errs.Validation("amount", "must be a non-negative number")
	}
	return nil
}

func ValidatePayments(payments []models.PaymentRecord) error {
	for _, p := range payments {
		if err := ValidatePayment(p); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAmount untuk biaya dasar dan harga: angka hingga dan tidak negatif.
func ValidateAmount(field string, v float64) error {
	if !validAmount(v) {
		return errs.Validation(field, "must be a non-negative number")
	}
	return nil
}

// Round2 hanya untuk tampilan; perhitungan internal tetap presisi penuh.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func validAmount(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
