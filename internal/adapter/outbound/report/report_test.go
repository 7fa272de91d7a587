package report_test

import (
	"bytes"
	"encoding/csv"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/jonny/pdm-service/internal/adapter/outbound/report"
	"github.com/jonny/pdm-service/internal/domain/model"
)

func samplePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 10), G: 120, B: uint8(y * 10), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

func sampleRequest() model.ReportRequest {
	return model.ReportRequest{
		MachineID:          "Presse-Nº7",
		FailureProbability: 42,
		HealthScore:        58,
		RiskLevel:          "HIGH",
		MonthlySavings:     63000,
		Timestamp:          "2025-03-14 09:26:53",
		ConfidenceScore:    58,
		TopRiskFactor:      "rpm",
		TopImpactValue:     0.15,
		Explanation:        map[string]float64{"torque": 0.05, "rpm": 0.15, "air_temp": 0.02, "process_temp": 0.01},
		Recommendation:     []string{"rpm is increasing failure probability."},
	}
}

func TestPDFRenderer_Render(t *testing.T) {
	r := report.NewPDFRenderer("")
	var buf bytes.Buffer
	err := r.Render(&buf, sampleRequest(), []model.Chart{
		{Title: "Risk Trend", PNG: samplePNG(t, 20, 10)},
		{Title: "Tall", PNG: samplePNG(t, 4, 40)},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatalf("output does not start with %%PDF: %q", buf.Bytes()[:16])
	}
	if !bytes.Contains(buf.Bytes(), []byte("/Subtype /Image")) {
		t.Errorf("charts not embedded")
	}
	if r.ContentType() != "application/pdf" || r.FileName() != "prediction_report.pdf" {
		t.Errorf("metadata = %s %s", r.ContentType(), r.FileName())
	}
}

func TestPDFRenderer_RenderWithoutOptionalSections(t *testing.T) {
	var buf bytes.Buffer
	err := report.NewPDFRenderer("Line 3 Report").Render(&buf, model.ReportRequest{MachineID: "M-1"}, nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatalf("not a PDF")
	}
}

func TestPDFRenderer_RejectsCorruptPNG(t *testing.T) {
	bad := append([]byte("\x89PNG\r\n\x1a\n"), []byte("garbage")...)
	var buf bytes.Buffer
	err := report.NewPDFRenderer("").Render(&buf, sampleRequest(), []model.Chart{{Title: "Broken", PNG: bad}})
	if !model.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCSVEncoder_EncodeHistory(t *testing.T) {
	records := []model.PredictionRecord{
		{ID: 2, MachineID: "Press, Line 2", HealthScore: 5800, FailureProbability: 4200, RiskLevel: model.RiskHigh, MonthlySavings: 63000, Timestamp: "2025-03-14 09:26:53"},
		{ID: 1, MachineID: "M-1", HealthScore: 8766, FailureProbability: 1234, RiskLevel: model.RiskLow, MonthlySavings: 18510, Timestamp: "2025-03-14 09:00:00"},
	}
	var buf bytes.Buffer
	enc := report.CSVEncoder{}
	if err := enc.EncodeHistory(&buf, records); err != nil {
		t.Fatalf("EncodeHistory: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != "Machine,Health,Failure %,Risk,Savings,Timestamp" {
		t.Errorf("header = %q", lines[0])
	}

	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("reading csv back: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	want := []string{"Press, Line 2", "58", "42", "HIGH", "63000", "2025-03-14 09:26:53"}
	for i := range want {
		if rows[1][i] != want[i] {
			t.Errorf("row 1 col %d = %q, want %q", i, rows[1][i], want[i])
		}
	}
	if rows[2][1] != "87.66" || rows[2][2] != "12.34" {
		t.Errorf("row 2 = %v", rows[2])
	}
	if enc.FileName() != "prediction_history.csv" || !strings.HasPrefix(enc.ContentType(), "text/csv") {
		t.Errorf("metadata = %s %s", enc.ContentType(), enc.FileName())
	}
}

func TestCSVEncoder_EmptyHistoryHasHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := (report.CSVEncoder{}).EncodeHistory(&buf, nil); err != nil {
		t.Fatalf("EncodeHistory: %v", err)
	}
	if buf.String() != "Machine,Health,Failure %,Risk,Savings,Timestamp\n" {
		t.Errorf("output = %q", buf.String())
	}
}
