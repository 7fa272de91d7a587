// Package report renders prediction summaries as PDF documents and history
// as CSV.
package report

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/jonny/pdm-service/internal/domain/model"
	"github.com/jonny/pdm-service/internal/domain/port/outbound"
)

// ReportFileName is the attachment name of a rendered report.
const ReportFileName = "prediction_report.pdf"

const (
	pageFont   = "Helvetica"
	lineHeight = 7.0
	chartWidth = 170.0

	maxChartHeight = 230.0
)

// DefaultCurrency prefixes savings figures. The core PDF fonts have no
// rupee glyph, so amounts carry the ISO code.
const DefaultCurrency = "INR"

// PDFRenderer lays out a prediction report on A4 pages.
type PDFRenderer struct {
	title    string
	currency string
	now      func() time.Time
}

// NewPDFRenderer creates a renderer whose documents carry title.
func NewPDFRenderer(title string) *PDFRenderer {
	if title == "" {
		title = "Predictive Maintenance Report"
	}
	return &PDFRenderer{title: title, currency: DefaultCurrency, now: time.Now}
}

// WithCurrency sets the code printed before savings amounts. An empty code
// prints bare amounts.
func (r *PDFRenderer) WithCurrency(code string) *PDFRenderer {
	r.currency = strings.TrimSpace(code)
	return r
}

func (r *PDFRenderer) money(v float64) string {
	amount := strconv.FormatFloat(v, 'f', 2, 64)
	if r.currency == "" {
		return amount
	}
	return r.currency + " " + amount
}

var _ outbound.ReportRenderer = (*PDFRenderer)(nil)

func (r *PDFRenderer) ContentType() string { return "application/pdf" }

func (r *PDFRenderer) FileName() string { return ReportFileName }

// Render writes the complete document to w.
func (r *PDFRenderer) Render(w io.Writer, req model.ReportRequest, charts []model.Chart) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(r.title, true)
	pdf.SetCreator("pdm-service", true)
	pdf.SetCreationDate(r.now())
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont(pageFont, "B", 18)
	pdf.CellFormat(0, 12, tr(r.title), "", 1, "C", false, 0, "")
	pdf.SetFont(pageFont, "", 10)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 6, "Generated "+r.now().Format(model.TimestampLayout), "", 1, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	section(pdf, "Prediction Summary")
	rows := [][2]string{
		{"Machine", req.MachineID},
		{"Timestamp", req.Timestamp},
		{"Failure Probability", percent(req.FailureProbability)},
		{"Health Score", percent(req.HealthScore)},
		{"Risk Level", req.RiskLevel},
		{"Confidence", percent(req.ConfidenceScore)},
		{"Estimated Monthly Savings", r.money(req.MonthlySavings)},
		{"Top Risk Factor", req.TopRiskFactor},
		{"Top Impact Value", strconv.FormatFloat(req.TopImpactValue, 'f', 4, 64)},
	}
	for _, row := range rows {
		keyValue(pdf, tr, row[0], row[1], row[0] == "Risk Level")
	}

	if len(req.Explanation) > 0 {
		pdf.Ln(4)
		section(pdf, "Feature Contributions")
		for _, name := range orderedFeatures(req.Explanation) {
			keyValue(pdf, tr, name, strconv.FormatFloat(req.Explanation[name], 'f', 4, 64), false)
		}
	}

	if len(req.Recommendation) > 0 {
		pdf.Ln(4)
		section(pdf, "Recommendations")
		pdf.SetFont(pageFont, "", 11)
		for _, line := range req.Recommendation {
			pdf.MultiCell(0, lineHeight, tr("- "+line), "", "L", false)
		}
	}

	for i, c := range charts {
		if err := chart(pdf, tr, i, c); err != nil {
			return err
		}
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("laying out report: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

func section(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont(pageFont, "B", 13)
	pdf.SetFillColor(230, 236, 245)
	pdf.CellFormat(0, 9, title, "", 1, "L", true, 0, "")
	pdf.Ln(1)
}

func keyValue(pdf *fpdf.Fpdf, tr func(string) string, key, value string, colored bool) {
	pdf.SetFont(pageFont, "B", 11)
	pdf.CellFormat(70, lineHeight, tr(key), "B", 0, "L", false, 0, "")
	pdf.SetFont(pageFont, "", 11)
	if colored {
		r, g, b := riskColor(value)
		pdf.SetTextColor(r, g, b)
	}
	pdf.CellFormat(0, lineHeight, tr(value), "B", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

func chart(pdf *fpdf.Fpdf, tr func(string) string, i int, c model.Chart) error {
	name := fmt.Sprintf("chart-%d", i)
	info := pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(c.PNG))
	if err := pdf.Error(); err != nil || info == nil {
		return model.NewValidationError([]model.Violation{{
			Field:  "charts." + c.Title,
			Reason: model.ReasonInvalid,
			Limit:  "must be a readable PNG",
		}})
	}

	width, height := chartWidth, chartWidth*info.Height()/info.Width()
	if height > maxChartHeight {
		width, height = width*maxChartHeight/height, maxChartHeight
	}
	pdf.AddPage()
	section(pdf, tr(c.Title))
	pdf.ImageOptions(name, pdf.GetX(), pdf.GetY(), width, height, true, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	return nil
}

func riskColor(level string) (int, int, int) {
	switch model.RiskLevel(strings.ToUpper(level)) {
	case model.RiskHigh:
		return 200, 30, 30
	case model.RiskMedium:
		return 210, 130, 0
	case model.RiskLow:
		return 20, 140, 60
	}
	return 0, 0, 0
}

func percent(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}

// orderedFeatures lists known features in training order, then any others by name.
func orderedFeatures(contributions map[string]float64) []string {
	out := make([]string, 0, len(contributions))
	known := make(map[string]bool, len(model.FeatureNames))
	for _, name := range model.FeatureNames {
		known[name] = true
		if _, ok := contributions[name]; ok {
			out = append(out, name)
		}
	}
	var extra []string
	for name := range contributions {
		if !known[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}
