// backend-go/internal/engine/normalize.go
package engine

import (
	"strconv"
	"strings"
	"time"

	"github.com/reorderly/backend-go/internal/domain"
	"github.com/reorderly/backend-go/internal/tabular"
)

// RequiredColumns must all be present in an uploaded table. A missing column
// fails the whole request with a MissingColumnsError.
var RequiredColumns = []string{"SKU", "Date", "UnitsSold", "OnHand", "LeadTimeDays"}

// Optional columns, parsed when present.
const (
	colMOQ  = "MOQ"
	colCost = "Cost"
)

// Row is one normalized history record. Numeric fields stay nil when the
// source cell was empty or unparseable; defaulting happens at the point of
// use, never here, so a legitimate zero is distinguishable from a missing
// value.
type Row struct {
	SKU       string
	Date      time.Time
	UnitsSold *float64
	OnHand    *float64
	LeadTime  *float64
	MOQ       *float64
	Cost      *float64
}

// Date layouts accepted by the normalizer. ISO forms win, then day-first
// numeric forms (1/12/2025 is December 1st), then a month-first fallback for
// values that are impossible day-first (1/13/2025 is January 13th). Genuinely
// ambiguous dates resolve day-first; the source locale is not carried in-band.
var (
	isoLayouts = []string{
		"2006-01-02",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05Z07:00",
		"2006/01/02",
	}
	dayFirstLayouts = []string{
		"2/1/2006",
		"2-1-2006",
		"2/1/06",
	}
	monthFirstLayouts = []string{
		"1/2/2006",
		"1-2-2006",
		"1/2/06",
	}
)

// Normalize validates required columns and converts string cells into typed
// rows. Rows whose date cannot be parsed are dropped silently; the input
// table is never modified.
func Normalize(t *tabular.Table) ([]Row, error) {
	var missing []string
	for _, col := range RequiredColumns {
		if !t.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &domain.MissingColumnsError{Columns: missing}
	}

	skuIdx, _ := t.ColumnIndex("SKU")
	dateIdx, _ := t.ColumnIndex("Date")
	unitsIdx, _ := t.ColumnIndex("UnitsSold")
	onHandIdx, _ := t.ColumnIndex("OnHand")
	leadIdx, _ := t.ColumnIndex("LeadTimeDays")

	moqIdx, hasMOQ := t.ColumnIndex(colMOQ)
	costIdx, hasCost := t.ColumnIndex(colCost)

	rows := make([]Row, 0, len(t.Rows))
	for _, record := range t.Rows {
		date, ok := ParseDate(t.Cell(record, dateIdx))
		if !ok {
			continue
		}

		row := Row{
			SKU:       t.Cell(record, skuIdx),
			Date:      date,
			UnitsSold: parseOptionalFloat(t.Cell(record, unitsIdx)),
			OnHand:    parseOptionalFloat(t.Cell(record, onHandIdx)),
			LeadTime:  parseOptionalFloat(t.Cell(record, leadIdx)),
		}
		if hasMOQ {
			row.MOQ = parseOptionalFloat(t.Cell(record, moqIdx))
		}
		if hasCost {
			row.Cost = parseOptionalFloat(t.Cell(record, costIdx))
		}

		rows = append(rows, row)
	}

	return rows, nil
}

// ParseDate parses a heterogeneous date string into a canonical calendar date
// (midnight UTC, no time component). The bool is false when no layout matched.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	for _, layouts := range [][]string{isoLayouts, dayFirstLayouts, monthFirstLayouts} {
		for _, layout := range layouts {
			if parsed, err := time.Parse(layout, value); err == nil {
				return toCalendarDate(parsed), true
			}
		}
	}

	return time.Time{}, false
}

func toCalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func parseOptionalFloat(value string) *float64 {
	if value == "" {
		return nil
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}

	return &f
}
