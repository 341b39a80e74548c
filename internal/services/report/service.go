// Package report renders accepted briefs to PDF files for distribution.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/meridian/internal/common"
	"github.com/ternarybob/meridian/internal/models"
)

// Service writes brief PDFs into the configured output directory.
type Service struct {
	config common.ReportConfig
	logger arbor.ILogger
}

// NewService creates a new report service
func NewService(config common.ReportConfig, logger arbor.ILogger) *Service {
	return &Service{
		config: config,
		logger: logger,
	}
}

// WriteBrief renders one accepted brief to a PDF named after its analysis.
// Returns the written file path.
func (s *Service) WriteBrief(brief *models.Brief, analysisID string, createdAt time.Time) (string, error) {
	if err := os.MkdirAll(s.config.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	path := filepath.Join(s.config.OutputDir,
		fmt.Sprintf("brief-%s-%s.pdf", createdAt.UTC().Format("20060102"), analysisID))

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 10)
	pdf.AddPage()

	r := &briefRenderer{pdf: pdf}
	r.title(brief.BriefTopic, createdAt)
	r.breakingNews(brief.BreakingNews)
	r.keyNumbers(brief.KeyNumbers)
	r.marketPulse("Market Pulse", brief.MarketPulse)
	if len(brief.CryptoBarometer) > 0 {
		r.marketPulse("Crypto Barometer", brief.CryptoBarometer)
	}
	r.techEmergence(brief.TechEmergence)
	r.ideaDesk(brief.IdeaDesk)
	r.finalIntel(brief.FinalIntel)

	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("failed to write PDF: %w", err)
	}

	s.logger.Debug().
		Str("path", path).
		Str("topic", brief.BriefTopic).
		Msg("Brief PDF written")

	return path, nil
}

type briefRenderer struct {
	pdf *fpdf.Fpdf
}

func (r *briefRenderer) title(topic string, createdAt time.Time) {
	r.pdf.SetFont("Arial", "B", 16)
	r.pdf.MultiCell(0, 8, topic, "", "L", false)
	r.pdf.SetFont("Arial", "", 9)
	r.pdf.SetTextColor(110, 110, 110)
	r.pdf.CellFormat(0, 5, createdAt.UTC().Format("2 January 2006 15:04 UTC"), "", 1, "L", false, 0, "")
	r.pdf.SetTextColor(0, 0, 0)
	r.pdf.Ln(4)
}

func (r *briefRenderer) heading(text string) {
	r.pdf.Ln(3)
	r.pdf.SetFont("Arial", "B", 12)
	r.pdf.CellFormat(0, 7, text, "", 1, "L", false, 0, "")
	r.pdf.SetFont("Arial", "", 9)
}

func (r *briefRenderer) entry(label, body string) {
	r.pdf.SetFont("Arial", "B", 9)
	r.pdf.MultiCell(0, 5, label, "", "L", false)
	r.pdf.SetFont("Arial", "", 9)
	if body != "" {
		r.pdf.MultiCell(0, 5, body, "", "L", false)
	}
	r.pdf.Ln(2)
}

func (r *briefRenderer) breakingNews(items []models.BreakingNews) {
	if len(items) == 0 {
		return
	}
	r.heading("Breaking News")
	for _, item := range items {
		label := fmt.Sprintf("[Tier %d] %s (%s)", item.Tier, item.Headline, item.Time)
		body := item.Summary + "\nInsight: " + item.KeyInsight + "\nAction: " + item.ActionableAdvice
		r.entry(label, body)
	}
}

func (r *briefRenderer) keyNumbers(items []models.KeyNumber) {
	if len(items) == 0 {
		return
	}
	r.heading("Key Numbers")
	for _, item := range items {
		r.entry(item.Title+": "+item.Value, item.Context)
	}
}

func (r *briefRenderer) marketPulse(title string, items []models.MarketPulse) {
	if len(items) == 0 {
		return
	}
	r.heading(title)
	for _, item := range items {
		label := fmt.Sprintf("%s - %s", item.Asset, item.Direction)
		body := "Catalyst: " + item.Catalyst + "\n" + item.WhyItMatters
		r.entry(label, body)
	}
}

func (r *briefRenderer) techEmergence(items []models.TechEmergence) {
	if len(items) == 0 {
		return
	}
	r.heading("Tech Emergence")
	for _, item := range items {
		r.entry(item.Technology+" ("+item.Stage+")", item.Signal)
	}
}

func (r *briefRenderer) ideaDesk(items []models.IdeaDeskEntry) {
	if len(items) == 0 {
		return
	}
	r.heading("Idea Desk")
	for _, item := range items {
		r.entry(item.Action+" "+item.Ticker, item.Rationale)
	}
}

func (r *briefRenderer) finalIntel(intel models.FinalIntel) {
	r.heading("Final Intel")
	r.entry("Summary", intel.Summary)
	r.entry("Horizon", intel.InvestmentHorizon)

	r.pdf.SetFont("Arial", "B", 9)
	r.pdf.CellFormat(0, 5, "Key Risks", "", 1, "L", false, 0, "")
	r.pdf.SetFont("Arial", "", 9)
	for _, risk := range intel.KeyRisks {
		r.pdf.SetX(15)
		r.pdf.MultiCell(0, 5, "- "+risk, "", "L", false)
	}
}
