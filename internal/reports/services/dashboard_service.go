package services

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/c14220110/mediflow-backend/internal/access"
	billingModels "github.com/c14220110/mediflow-backend/internal/billing/models"
	billingServices "github.com/c14220110/mediflow-backend/internal/billing/services"
	"github.com/c14220110/mediflow-backend/internal/reports/models"
	"github.com/c14220110/mediflow-backend/internal/session"
	visitModels "github.com/c14220110/mediflow-backend/internal/visits/models"
)

const unknownDoctor = "Desconocido"

// DashboardService menghitung ringkasan finansial dari kunjungan selesai.
type DashboardService struct {
	Session  *session.Session
	Location *time.Location
	Now      func() time.Time
}

func NewDashboardService(sess *session.Session, loc *time.Location) *DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardService{Session: sess, Location: loc, Now: time.Now}
}

func (s *DashboardService) Dashboard(who access.Identity, period models.Period) (models.Dashboard, error) {
	if err := access.Authorize(who, access.ViewDashboard); err != nil {
		return models.Dashboard{}, err
	}
	visits, names := s.completed(who, period)

	d := models.Dashboard{Period: period, Visits: len(visits), ByDoctor: []models.DoctorTotals{}, ByMethod: []models.MethodTotal{}}
	byDoctor := map[string]int{}
	byMethod := map[billingModels.PaymentMethod]float64{}
	var wait, consult float64
	for _, v := range visits {
		d.Revenue += v.TotalCost
		d.ClinicRevenue += v.ClinicEarnings
		d.DoctorRevenue += v.DoctorEarnings
		w, c := durations(v)
		wait += w
		consult += c

		id := v.DoctorID()
		i, ok := byDoctor[id]
		if !ok {
			i = len(d.ByDoctor)
			byDoctor[id] = i
			d.ByDoctor = append(d.ByDoctor, models.DoctorTotals{DoctorID: id, DoctorName: nameOf(names, id)})
		}
		d.ByDoctor[i].Visits++
		d.ByDoctor[i].Revenue += v.TotalCost
		d.ByDoctor[i].Earnings += v.DoctorEarnings

		for _, p := range v.Payments {
			byMethod[p.Method] += p.Amount
		}
	}
	for _, m := range billingModels.PaymentMethods() {
		if amount, ok := byMethod[m]; ok {
			d.ByMethod = append(d.ByMethod, models.MethodTotal{Method: m, Amount: billingServices.Round2(amount)})
		}
	}
	if n := float64(len(visits)); n > 0 {
		d.AvgWaitMinutes = round1(wait / n)
		d.AvgConsultationMinutes = round1(consult / n)
	}
	d.Revenue = billingServices.Round2(d.Revenue)
	d.ClinicRevenue = billingServices.Round2(d.ClinicRevenue)
	d.DoctorRevenue = billingServices.Round2(d.DoctorRevenue)
	for i := range d.ByDoctor {
		d.ByDoctor[i].Revenue = billingServices.Round2(d.ByDoctor[i].Revenue)
		d.ByDoctor[i].Earnings = billingServices.Round2(d.ByDoctor[i].Earnings)
	}
	return d, nil
}

// Summaries membangun ringkasan per kunjungan untuk laporan AI.
func (s *DashboardService) Summaries(who access.Identity, period models.Period) ([]models.VisitSummary, error) {
	if err := access.Authorize(who, access.GenerateReport); err != nil {
		return nil, err
	}
	visits, names := s.completed(who, period)
	out := make([]models.VisitSummary, 0, len(visits))
	for _, v := range visits {
		w, c := durations(v)
		pays := make([]string, 0, len(v.Payments))
		for _, p := range v.Payments {
			pays = append(pays, fmt.Sprintf("%s: $%g", p.Method, p.Amount))
		}
		out = append(out, models.VisitSummary{
			Name:               v.Name,
			DoctorName:         nameOf(names, v.DoctorID()),
			WaitTimeMinutes:    round1(w),
			ConsultTimeMinutes: round1(c),
			TotalCost:          v.TotalCost,
			DoctorShare:        v.DoctorEarnings,
			ClinicShare:        v.ClinicEarnings,
			Payments:           strings.Join(pays, ", "),
		})
	}
	return out, nil
}

func (s *DashboardService) completed(who access.Identity, period models.Period) ([]visitModels.Visit, map[string]string) {
	scope := access.OwnScope(who)
	now := s.Now().In(s.Location)
	var out []visitModels.Visit
	names := map[string]string{}
	s.Session.Read(func(st *session.State) {
		for _, d := range st.Doctors {
			names[d.ID] = d.Name
		}
		for _, v := range st.Visits {
			if v.Status != visitModels.StatusCompleted || v.Settlement == nil {
				continue
			}
			if scope != "" && v.DoctorID() != scope {
				continue
			}
			if !inPeriod(v.ArrivalTime.In(s.Location), now, period) {
				continue
			}
			out = append(out, v.Clone())
		}
	})
	return out, names
}

func inPeriod(t, now time.Time, period models.Period) bool {
	switch period {
	case models.PeriodToday:
		ty, tm, td := t.Date()
		ny, nm, nd := now.Date()
		return ty == ny && tm == nm && td == nd
	case models.PeriodMonth:
		return t.Year() == now.Year() && t.Month() == now.Month()
	}
	return true
}

// durations mengembalikan menit tunggu dan menit konsultasi; 0 jika timestamp belum ada.
func durations(v visitModels.Visit) (wait, consult float64) {
	if v.Assignment == nil {
		return 0, 0
	}
	wait = v.StartConsultationTime.Sub(v.ArrivalTime.Time).Minutes()
	if v.Settlement != nil && !v.EndConsultationTime.IsZero() {
		consult = v.EndConsultationTime.Sub(v.StartConsultationTime.Time).Minutes()
	}
	return max(wait, 0), max(consult, 0)
}

func nameOf(names map[string]string, id string) string {
	if n, ok := names[id]; ok {
		return n
	}
	return unknownDoctor
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
