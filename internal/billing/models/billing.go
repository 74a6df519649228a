package models

import "fmt"

// PaymentMethod adalah daftar tertutup metode pembayaran yang diterima klinik.
type PaymentMethod string

const (
	MethodCashUSD      PaymentMethod = "Efectivo $"
	MethodPagoMovil    PaymentMethod = "Pago Móvil"
	MethodZelle        PaymentMethod = "Zelle"
	MethodBinance      PaymentMethod = "Binance"
	MethodCashea       PaymentMethod = "Cashea"
	MethodBankTransfer PaymentMethod = "Transferencia Bancaria"
	MethodCashBs       PaymentMethod = "Efectivo Bs."
	MethodBiopago      PaymentMethod = "Biopago"
)

func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{
		MethodCashUSD,
		MethodPagoMovil,
		MethodZelle,
		MethodBinance,
		MethodCashea,
		MethodBankTransfer,
		MethodCashBs,
		MethodBiopago,
	}
}

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCashUSD, MethodPagoMovil, MethodZelle, MethodBinance,
		MethodCashea, MethodBankTransfer, MethodCashBs, MethodBiopago:
		return true
	}
	return false
}

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(s)
	if !m.Valid() {
		return "", fmt.Errorf("unknown payment method %q", s)
	}
	return m, nil
}

type PaymentRecord struct {
	Method PaymentMethod `json:"method"`
	Amount float64       `json:"amount"`
}

// Shares adalah persentase bagi hasil dokter (0–100).
type Shares struct {
	ConsultationSharePercent float64 `json:"consultationSharePercent"`
	ProcedureSharePercent    float64 `json:"procedureSharePercent"`
}

type Bill struct {
	BaseCost       float64 `json:"baseCost"`
	ProceduresCost float64 `json:"proceduresCost"`
	TotalCost      float64 `json:"totalCost"`
	DoctorEarnings float64 `json:"doctorEarnings"`
	ClinicEarnings float64 `json:"clinicEarnings"`
}

type Reconciliation struct {
	PaidAmount      float64 `json:"paidAmount"`
	RemainingAmount float64 `json:"remainingAmount"`
}

// Tolerance: selisih maksimum total vs pembayaran sebelum finalisasi diblokir.
const Tolerance = 0.1

// Covered melaporkan apakah sisa tagihan masih dalam toleransi. Kelebihan bayar diizinkan.
func (r Reconciliation) Covered() bool {
	return r.RemainingAmount <= Tolerance
}
