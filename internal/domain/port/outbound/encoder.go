package outbound

import (
	"io"

	"github.com/jonny/pdm-service/internal/domain/model"
)

// HistoryEncoder writes records as a downloadable table.
type HistoryEncoder interface {
	ContentType() string
	FileName() string
	EncodeHistory(w io.Writer, records []model.PredictionRecord) error
}
