package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonny/pdm-service/internal/domain/model"
	"github.com/jonny/pdm-service/internal/domain/port/inbound"
	"github.com/jonny/pdm-service/internal/domain/port/outbound"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// Reporter decodes report requests and hands them to a document renderer.
type Reporter struct {
	renderer outbound.ReportRenderer
}

// NewReporter creates a Reporter.
func NewReporter(renderer outbound.ReportRenderer) *Reporter {
	return &Reporter{renderer: renderer}
}

var _ inbound.ReportPort = (*Reporter)(nil)

// RenderReport implements inbound.ReportPort. Charts that are not base64 PNG
// data fail with a *model.ValidationError before anything is written to w.
func (r *Reporter) RenderReport(ctx context.Context, req model.ReportRequest, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	charts, err := DecodeCharts(req.Charts)
	if err != nil {
		return err
	}
	if req.MachineID == "" {
		req.MachineID = model.DefaultMachineID
	}

	var buf bytes.Buffer
	if err := r.renderer.Render(&buf, req, charts); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	_, err = buf.WriteTo(w)
	return err
}

func (r *Reporter) ContentType() string { return r.renderer.ContentType() }

func (r *Reporter) FileName() string { return r.renderer.FileName() }

// DecodeCharts decodes title -> base64 PNG pairs, sorted by title. A
// "data:image/png;base64," prefix is accepted.
func DecodeCharts(encoded map[string]string) ([]model.Chart, error) {
	titles := make([]string, 0, len(encoded))
	for title := range encoded {
		titles = append(titles, title)
	}
	sort.Strings(titles)

	charts := make([]model.Chart, 0, len(titles))
	for _, title := range titles {
		data := encoded[title]
		if _, payload, ok := strings.Cut(data, ","); ok && strings.HasPrefix(data, "data:") {
			data = payload
		}
		raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(data))
		if err != nil || !bytes.HasPrefix(raw, pngSignature) {
			return nil, model.NewValidationError([]model.Violation{{
				Field:  "charts." + title,
				Reason: model.ReasonInvalid,
				Limit:  "must be a base64 PNG",
			}})
		}
		charts = append(charts, model.Chart{Title: title, PNG: raw})
	}
	return charts, nil
}
