package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/jonny/pdm-service/internal/domain/model"
	"github.com/jonny/pdm-service/internal/domain/port/outbound"
)

// HistoryFileName is the attachment name of a history export.
const HistoryFileName = "prediction_history.csv"

var historyHeader = []string{"Machine", "Health", "Failure %", "Risk", "Savings", "Timestamp"}

// CSVEncoder writes prediction history as comma-separated values.
type CSVEncoder struct{}

var _ outbound.HistoryEncoder = CSVEncoder{}

func (CSVEncoder) ContentType() string { return "text/csv; charset=utf-8" }

func (CSVEncoder) FileName() string { return HistoryFileName }

// EncodeHistory writes the header row followed by one row per record.
func (CSVEncoder) EncodeHistory(w io.Writer, records []model.PredictionRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(historyHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.MachineID,
			formatFloat(r.HealthScore.Float64()),
			formatFloat(r.FailureProbability.Float64()),
			string(r.RiskLevel),
			formatFloat(r.MonthlySavings),
			r.Timestamp,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row %d: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
