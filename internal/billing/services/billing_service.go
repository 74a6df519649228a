package services

import (
	"slices"

	"github.com/c14220110/mediflow-backend/internal/access"
	"github.com/c14220110/mediflow-backend/internal/billing/models"
	"github.com/c14220110/mediflow-backend/internal/common/errs"
	"github.com/c14220110/mediflow-backend/internal/session"
	visitModels "github.com/c14220110/mediflow-backend/internal/visits/models"
)

// BillingService menyajikan tagihan kunjungan yang sudah selesai. Dokter hanya
// melihat tagihan kunjungannya sendiri.
type BillingService struct {
	Session *session.Session
}

func NewBillingService(sess *session.Session) *BillingService {
	return &BillingService{Session: sess}
}

// GetRecentBilling mengembalikan tagihan terbaru lebih dulu. limit <= 0 berarti semua.
func (s *BillingService) GetRecentBilling(who access.Identity, limit int) ([]models.BillingSummary, error) {
	if err := access.Authorize(who, access.ViewBilling); err != nil {
		return nil, err
	}
	scope := access.OwnScope(who)

	result := []models.BillingSummary{}
	s.Session.Read(func(st *session.State) {
		names := doctorNames(st)
		for _, v := range st.Visits {
			if v.Status != visitModels.StatusCompleted || v.Settlement == nil {
				continue
			}
			if scope != "" && v.DoctorID() != scope {
				continue
			}
			result = append(result, summarize(v, names))
		}
	})

	slices.SortStableFunc(result, func(a, b models.BillingSummary) int {
		return b.CompletedAt.Compare(a.CompletedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// GetBillingDetail mengembalikan rincian tagihan untuk visitId tertentu.
func (s *BillingService) GetBillingDetail(who access.Identity, visitID string) (models.BillingDetail, error) {
	if err := access.Authorize(who, access.ViewBilling); err != nil {
		return models.BillingDetail{}, err
	}

	var (
		detail models.BillingDetail
		err    error
	)
	s.Session.Read(func(st *session.State) {
		var v *visitModels.Visit
		for i := range st.Visits {
			if st.Visits[i].VisitID == visitID {
				v = &st.Visits[i]
				break
			}
		}
		if v == nil {
			err = errs.NotFound("visit", visitID)
			return
		}
		if scope := access.OwnScope(who); scope != "" && v.DoctorID() != scope {
			err = &errs.AuthorizationError{Role: string(who.Role), Operation: "view the bill of another doctor"}
			return
		}
		if v.Status != visitModels.StatusCompleted || v.Settlement == nil {
			err = &errs.InvalidTransitionError{VisitID: visitID, Status: string(v.Status), Operation: "view the bill of"}
			return
		}

		c := v.Clone()
		detail = models.BillingDetail{
			BillingSummary: summarize(c, doctorNames(st)),
			Reason:         c.Reason,
			ArrivalTime:    c.ArrivalTime.Time,
			StartedAt:      c.StartConsultationTime.Time,
			Bill: models.Bill{
				BaseCost:       c.BaseCost,
				ProceduresCost: c.TotalCost - c.BaseCost,
				TotalCost:      c.TotalCost,
				DoctorEarnings: c.DoctorEarnings,
				ClinicEarnings: c.ClinicEarnings,
			},
			Reconciliation: ReconcilePayments(c.Payments, c.TotalCost),
			Procedures:     c.PerformedProcedures,
			Payments:       c.Payments,
		}
	})
	return detail, err
}

func summarize(v visitModels.Visit, names map[string]string) models.BillingSummary {
	sum := models.BillingSummary{
		VisitID:     v.VisitID,
		PatientName: v.Name,
		Cedula:      v.Cedula,
		DoctorID:    v.DoctorID(),
		DoctorName:  names[v.DoctorID()],
	}
	if v.Assignment != nil {
		sum.Room = v.AssignedRoom
	}
	if v.Settlement != nil {
		sum.CompletedAt = v.EndConsultationTime.Time
		sum.TotalCost = v.TotalCost
		sum.PaidAmount = ReconcilePayments(v.Payments, v.TotalCost).PaidAmount
		sum.DoctorEarnings = v.DoctorEarnings
		sum.ClinicEarnings = v.ClinicEarnings
	}
	if sum.DoctorName == "" && sum.DoctorID != "" {
		sum.DoctorName = "Desconocido"
	}
	return sum
}

func doctorNames(st *session.State) map[string]string {
	names := make(map[string]string, len(st.Doctors))
	for _, d := range st.Doctors {
		names[d.ID] = d.Name
	}
	return names
}
