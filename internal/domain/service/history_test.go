package service_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/jonny/pdm-service/internal/domain/model"
	"github.com/jonny/pdm-service/internal/domain/service"
)

func TestHistoryService_ListDefaults(t *testing.T) {
	repo := &mockRepo{}
	svc := service.NewHistoryService(repo, lineEncoder{}, nil, 0, 0)

	page, err := svc.List(context.Background(), model.HistoryQuery{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastQuery.Page != 1 || repo.lastQuery.Limit != service.DefaultPageSize || repo.lastQuery.Order != model.OrderDesc {
		t.Errorf("normalized query = %+v", repo.lastQuery)
	}
	if page.Items == nil {
		t.Errorf("empty page must have a non-nil item slice")
	}
}

func TestHistoryService_ListClampsLimit(t *testing.T) {
	repo := &mockRepo{}
	svc := service.NewHistoryService(repo, lineEncoder{}, nil, 25, 50)

	if _, err := svc.List(context.Background(), model.HistoryQuery{Page: 3, Limit: 1000, Order: model.OrderAsc}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastQuery.Limit != 50 || repo.lastQuery.Page != 3 || repo.lastQuery.Order != model.OrderAsc {
		t.Errorf("normalized query = %+v", repo.lastQuery)
	}

	if _, err := svc.List(context.Background(), model.HistoryQuery{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastQuery.Limit != 25 {
		t.Errorf("default limit = %d, want 25", repo.lastQuery.Limit)
	}
}

func TestHistoryService_ListRejectsNegative(t *testing.T) {
	svc := service.NewHistoryService(&mockRepo{}, lineEncoder{}, nil, 0, 0)
	_, err := svc.List(context.Background(), model.HistoryQuery{Page: -1, Limit: -5})
	var ve *model.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if len(ve.Violations) != 2 || ve.Field != "page" {
		t.Errorf("violations = %+v", ve.Violations)
	}
}

func TestHistoryService_ListRejectsOverflowingPage(t *testing.T) {
	tests := []model.HistoryQuery{
		{Page: math.MaxInt, Limit: 200},
		{Page: math.MaxInt/10 + 7, Limit: 10},
	}
	for _, q := range tests {
		repo := &mockRepo{}
		svc := service.NewHistoryService(repo, lineEncoder{}, nil, 0, 0)
		_, err := svc.List(context.Background(), q)
		var ve *model.ValidationError
		if !errors.As(err, &ve) || ve.Field != "page" {
			t.Errorf("page %d limit %d: expected page validation error, got %v", q.Page, q.Limit, err)
		}
		if repo.lastQuery.Page != 0 {
			t.Errorf("page %d reached the store", q.Page)
		}
	}
}

func TestHistoryService_ListLargestPageKeepsOffset(t *testing.T) {
	repo := &mockRepo{}
	svc := service.NewHistoryService(repo, lineEncoder{}, nil, 0, 0)
	if _, err := svc.List(context.Background(), model.HistoryQuery{Page: math.MaxInt/200 + 1, Limit: 200}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if off := repo.lastQuery.Offset(); off <= 0 || off > math.MaxInt-199 {
		t.Errorf("offset = %d", off)
	}
}

func TestHistoryService_ListWrapsStoreError(t *testing.T) {
	svc := service.NewHistoryService(&mockRepo{listErr: errBoom}, lineEncoder{}, nil, 0, 0)
	_, err := svc.List(context.Background(), model.HistoryQuery{})
	if !errors.Is(err, model.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
}

func TestHistoryService_Export(t *testing.T) {
	repo := &mockRepo{records: []model.PredictionRecord{
		{ID: 1, MachineID: "A"},
		{ID: 2, MachineID: "B"},
	}}
	metrics := newMockMetrics()
	svc := service.NewHistoryService(repo, lineEncoder{}, metrics, 0, 0)

	var buf bytes.Buffer
	n, err := svc.Export(context.Background(), model.HistoryFilter{}, "", &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 || buf.String() != "A\nB\n" {
		t.Errorf("exported %d rows: %q", n, buf.String())
	}
	if repo.lastOrder != model.OrderDesc {
		t.Errorf("order = %q, want DESC default", repo.lastOrder)
	}
	if metrics.exports != 1 {
		t.Errorf("export not counted")
	}
	if svc.FileName() != "history.txt" || svc.ContentType() != "text/plain" {
		t.Errorf("encoder metadata not forwarded")
	}
}

// A 1x1 transparent PNG.
const tinyPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

func TestReporter_DecodesCharts(t *testing.T) {
	renderer := &mockRenderer{}
	r := service.NewReporter(renderer)

	req := model.ReportRequest{
		Charts: map[string]string{
			"Risk Trend":     "data:image/png;base64," + tinyPNG,
			"Feature Impact": tinyPNG,
		},
	}
	var buf bytes.Buffer
	if err := r.RenderReport(context.Background(), req, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "%PDF") {
		t.Errorf("output = %q", buf.String())
	}
	if renderer.req.MachineID != model.DefaultMachineID {
		t.Errorf("machine id = %q, want default", renderer.req.MachineID)
	}
	if len(renderer.charts) != 2 || renderer.charts[0].Title != "Feature Impact" {
		t.Fatalf("charts = %+v", renderer.charts)
	}
	want, _ := base64.StdEncoding.DecodeString(tinyPNG)
	if !bytes.Equal(renderer.charts[1].PNG, want) {
		t.Errorf("chart bytes not decoded")
	}
}

func TestReporter_RejectsInvalidChart(t *testing.T) {
	tests := map[string]string{
		"not base64": "%%%",
		"not png":    base64.StdEncoding.EncodeToString([]byte("GIF89a")),
	}
	for name, data := range tests {
		renderer := &mockRenderer{}
		var buf bytes.Buffer
		err := service.NewReporter(renderer).RenderReport(context.Background(), model.ReportRequest{
			Charts: map[string]string{"chart": data},
		}, &buf)
		if !model.IsValidation(err) {
			t.Errorf("%s: expected validation error, got %v", name, err)
		}
		if buf.Len() != 0 {
			t.Errorf("%s: nothing may be written on failure", name)
		}
	}
}

func TestReporter_RenderErrorWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	err := service.NewReporter(&mockRenderer{err: errBoom}).RenderReport(context.Background(), model.ReportRequest{}, &buf)
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected render error, got %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("partial output written: %q", buf.String())
	}
}
