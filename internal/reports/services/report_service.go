package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/c14220110/mediflow-backend/internal/access"
	"github.com/c14220110/mediflow-backend/internal/reports/models"
)

// Teks fallback yang dikembalikan alih-alih error.
const (
	TextNotEnoughData = "No hay suficientes datos para generar un análisis."
	TextEmptyResponse = "Error generando reporte."
	TextGeneratorDown = "Error de conexión con IA. Verifica tu API Key."
	TextNotConfigured = "El análisis con IA no está configurado. Define GEMINI_API_KEY."
)

const reportInstruction = "Genera un reporte ejecutivo breve sobre eficiencia, ingresos y desempeño médico."

// Generator mengubah prompt menjadi teks. Hasilnya diperlakukan sebagai string opak.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type ReportService struct {
	Dashboard *DashboardService
	Generator Generator
	Timeout   time.Duration
	Log       zerolog.Logger

	group singleflight.Group
}

func NewReportService(dashboard *DashboardService, gen Generator, timeout time.Duration, log zerolog.Logger) *ReportService {
	return &ReportService{Dashboard: dashboard, Generator: gen, Timeout: timeout, Log: log}
}

// Generate tidak pernah mengembalikan error dari generator: kegagalan dan timeout
// menjadi teks fallback. Permintaan identik yang berjalan bersamaan digabung.
func (s *ReportService) Generate(ctx context.Context, who access.Identity, period models.Period) (models.Report, error) {
	summaries, err := s.Dashboard.Summaries(who, period)
	if err != nil {
		return models.Report{}, err
	}
	report := models.Report{Period: period, Visits: len(summaries)}
	if len(summaries) == 0 {
		report.Text = TextNotEnoughData
		return report, nil
	}
	if s.Generator == nil {
		report.Text = TextNotConfigured
		return report, nil
	}

	prompt, err := buildPrompt(summaries)
	if err != nil {
		return models.Report{}, err
	}
	key := fmt.Sprintf("%s|%s|%s", who.Role, access.OwnScope(who), prompt)
	v, _, _ := s.group.Do(key, func() (interface{}, error) {
		return s.generate(context.WithoutCancel(ctx), prompt), nil
	})
	res := v.(generated)
	report.Text = res.text
	report.Generated = res.ok
	return report, nil
}

type generated struct {
	text string
	ok   bool
}

func (s *ReportService) generate(ctx context.Context, prompt string) generated {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	start := time.Now()
	text, err := s.Generator.Generate(ctx, prompt)
	if err != nil {
		s.Log.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("report generation failed")
		return generated{text: TextGeneratorDown}
	}
	if strings.TrimSpace(text) == "" {
		s.Log.Warn().Msg("report generator returned no text")
		return generated{text: TextEmptyResponse}
	}
	s.Log.Info().Dur("elapsed", time.Since(start)).Msg("report generated")
	return generated{text: text, ok: true}
}

func buildPrompt(summaries []models.VisitSummary) (string, error) {
	data, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return "", err
	}
	return "Analiza los datos de la clínica:\n" + string(data) + "\n" + reportInstruction, nil
}
