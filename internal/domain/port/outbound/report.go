package outbound

import (
	"io"

	"github.com/jonny/pdm-service/internal/domain/model"
)

// ReportRenderer lays out a prediction summary with its decoded charts.
type ReportRenderer interface {
	ContentType() string
	FileName() string
	Render(w io.Writer, req model.ReportRequest, charts []model.Chart) error
}
