package service_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/jonny/pdm-service/internal/domain/model"
	"github.com/jonny/pdm-service/internal/domain/port/outbound"
)

// --- mock Classifier ---

type mockClassifier struct {
	probs []float64
	err   error
	calls int
}

func (m *mockClassifier) PredictProba(_ context.Context, _ model.FeatureVector) ([]float64, error) {
	m.calls++
	return m.probs, m.err
}

func (m *mockClassifier) HealthCheck(_ context.Context) error { return m.err }

func (m *mockClassifier) ModelInfo(_ context.Context) (outbound.ModelInfo, error) {
	return outbound.ModelInfo{Provider: "mock", Version: "test", Features: model.FeatureNames}, nil
}

var _ outbound.Classifier = (*mockClassifier)(nil)

// --- mock Explainer ---

type mockExplainer struct {
	out      outbound.ExplainerOutput
	err      error
	panicMsg string
}

func (m *mockExplainer) Explain(_ context.Context, _ model.FeatureVector) (outbound.ExplainerOutput, error) {
	if m.panicMsg != "" {
		panic(m.panicMsg)
	}
	return m.out, m.err
}

var _ outbound.Explainer = (*mockExplainer)(nil)

// --- mock PredictionRepository ---

type mockRepo struct {
	mu        sync.Mutex
	records   []model.PredictionRecord
	createErr error
	listErr   error
	lastQuery model.HistoryQuery
	lastOrder model.SortOrder
}

func (r *mockRepo) Create(_ context.Context, rec model.PredictionRecord) (model.PredictionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return model.PredictionRecord{}, r.createErr
	}
	rec = rec.WithID(int64(len(r.records) + 1))
	r.records = append(r.records, rec)
	return rec, nil
}

func (r *mockRepo) List(_ context.Context, q model.HistoryQuery) (outbound.PageResult[model.PredictionRecord], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastQuery = q
	if r.listErr != nil {
		return outbound.PageResult[model.PredictionRecord]{}, r.listErr
	}
	return outbound.PageResult[model.PredictionRecord]{
		Items:      r.records,
		TotalCount: int64(len(r.records)),
		Page:       q.Page,
		Size:       q.Limit,
	}, nil
}

func (r *mockRepo) Export(_ context.Context, _ model.HistoryFilter, order model.SortOrder) ([]model.PredictionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastOrder = order
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.records, nil
}

func (r *mockRepo) Ping(_ context.Context) error { return nil }

var _ outbound.PredictionRepository = (*mockRepo)(nil)

// --- mock sinks ---

type mockPublisher struct {
	published []model.PredictionRecord
	err       error
}

func (m *mockPublisher) PublishPrediction(_ context.Context, rec model.PredictionRecord) error {
	m.published = append(m.published, rec)
	return m.err
}

type mockNotifier struct {
	notified []outbound.RiskNotification
	err      error
}

func (m *mockNotifier) NotifyHighRisk(_ context.Context, n outbound.RiskNotification) error {
	m.notified = append(m.notified, n)
	return m.err
}

// --- mock Metrics ---

type mockMetrics struct {
	mu          sync.Mutex
	predictions map[model.RiskLevel]int
	errors      map[string]int
	degraded    int
	sideEffects map[string]int
	exports     int
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{
		predictions: make(map[model.RiskLevel]int),
		errors:      make(map[string]int),
		sideEffects: make(map[string]int),
	}
}

func (m *mockMetrics) ObservePrediction(risk model.RiskLevel, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictions[risk]++
}

func (m *mockMetrics) IncError(stage string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[stage]++
}

func (m *mockMetrics) IncAttributionDegraded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.degraded++
}

func (m *mockMetrics) IncSideEffectFailure(channel string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sideEffects[channel]++
}

func (m *mockMetrics) IncHistoryExport() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exports++
}

// --- mock encoders ---

type lineEncoder struct{}

func (lineEncoder) ContentType() string { return "text/plain" }
func (lineEncoder) FileName() string    { return "history.txt" }

func (lineEncoder) EncodeHistory(w io.Writer, records []model.PredictionRecord) error {
	for _, r := range records {
		if _, err := io.WriteString(w, r.MachineID+"\n"); err != nil {
			return err
		}
	}
	return nil
}

type mockRenderer struct {
	charts []model.Chart
	req    model.ReportRequest
	err    error
}

func (m *mockRenderer) ContentType() string { return "application/pdf" }
func (m *mockRenderer) FileName() string    { return "report.pdf" }

func (m *mockRenderer) Render(w io.Writer, req model.ReportRequest, charts []model.Chart) error {
	m.req = req
	m.charts = charts
	if m.err != nil {
		return m.err
	}
	_, err := io.WriteString(w, "%PDF-1.3 "+strings.ToUpper(req.MachineID))
	return err
}

var errBoom = errors.New("boom")

// --- helpers ---

func validRaw() model.RawReading {
	return model.RawReading{
		"air_temp":     "300",
		"process_temp": "310",
		"rpm":          "1500",
		"torque":       "40",
	}
}

func fixedClock() time.Time {
	return time.Date(2025, 3, 14, 9, 26, 53, 0, time.Local)
}
