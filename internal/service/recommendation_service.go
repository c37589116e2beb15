// backend-go/internal/service/recommendation_service.go
package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/reorderly/backend-go/internal/domain"
	"github.com/reorderly/backend-go/internal/engine"
	"github.com/reorderly/backend-go/internal/tabular"
)

// RecommendationService turns an uploaded sales/inventory history into a
// reorder report. Everything is computed fresh per call; nothing is stored.
type RecommendationService struct {
	engine *engine.Engine
}

func NewRecommendationService(e *engine.Engine) *RecommendationService {
	return &RecommendationService{engine: e}
}

// ComputeFromUpload decodes the upload (CSV, or XLSX by extension) and runs
// the recommendation engine over it.
func (s *RecommendationService) ComputeFromUpload(ctx context.Context, r io.Reader, filename string, horizonDays int) ([]domain.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	table, err := tabular.ReadTable(r, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to decode upload %s: %w", filename, err)
	}

	return s.engine.Compute(table, horizonDays)
}

// ExportCSV writes a reorder report in spreadsheet form, one row per SKU in
// the recommendation order.
func (s *RecommendationService) ExportCSV(w io.Writer, recs []domain.Recommendation) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{
		"SKU", "Current Stock", "Avg Daily Sales", "Forecast", "Reorder Qty",
		"Reorder By", "Lead Time Days", "MOQ", "Unit Cost", "Status", "Reason",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, rec := range recs {
		record := []string{
			rec.SKU,
			strconv.FormatFloat(rec.CurrentStock, 'f', -1, 64),
			fmt.Sprintf("%.2f", rec.AvgDailySales),
			fmt.Sprintf("%.1f", rec.Forecast30d),
			strconv.FormatFloat(rec.ReorderQty, 'f', -1, 64),
			stringOrEmpty(rec.ReorderBy),
			strconv.Itoa(rec.LeadTimeDays),
			intOrEmpty(rec.MOQ),
			floatOrEmpty(rec.UnitCost),
			string(rec.Status),
			rec.Reason,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func stringOrEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func intOrEmpty(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func floatOrEmpty(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
