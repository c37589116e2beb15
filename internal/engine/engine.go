// backend-go/internal/engine/engine.go
package engine

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/reorderly/backend-go/internal/domain"
	"github.com/reorderly/backend-go/internal/tabular"
)

const (
	// DefaultHorizonDays is the forward-looking period when the caller does
	// not supply one.
	DefaultHorizonDays = 30

	// demandWindowDays bounds the trailing window used for the daily demand
	// rate estimate.
	demandWindowDays = 28

	// trendWindowDays is the size of each half of the trend comparison.
	trendWindowDays = 14

	// amberBufferDays widens the RED threshold into the AMBER band.
	amberBufferDays = 7

	// trendNotePctThreshold is the minimum absolute percent change worth
	// reporting in the reason text.
	trendNotePctThreshold = 10.0

	noRecentSalesReason = "No recent sales detected; no reorder recommendation."
)

// Engine computes per-SKU reorder recommendations from a normalized sales
// history. It is a pure function of its input and the injected clock: no
// shared state, safe for concurrent use across requests.
type Engine struct {
	now func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the ambient clock used for reorder-by dates. Tests use
// this for deterministic output.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates a recommendation engine.
func New(opts ...Option) *Engine {
	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Compute validates and normalizes the table, then derives one recommendation
// per SKU, ordered by status priority (RED first) and reorder quantity
// descending within a status.
func (e *Engine) Compute(table *tabular.Table, horizonDays int) ([]domain.Recommendation, error) {
	rows, err := Normalize(table)
	if err != nil {
		return nil, err
	}

	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}

	groups := make(map[string][]Row)
	for _, row := range rows {
		groups[row.SKU] = append(groups[row.SKU], row)
	}

	skus := make([]string, 0, len(groups))
	for sku := range groups {
		skus = append(skus, sku)
	}
	sort.Strings(skus)

	today := toCalendarDate(e.now())

	recs := make([]domain.Recommendation, 0, len(skus))
	for _, sku := range skus {
		recs = append(recs, e.computeSKU(sku, groups[sku], horizonDays, today))
	}

	sortRecommendations(recs)

	return recs, nil
}

// sortRecommendations orders a report by risk first (RED before AMBER before
// GREEN), then by reorder quantity descending within a status.
func sortRecommendations(recs []domain.Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		pi, pj := recs[i].Status.Priority(), recs[j].Status.Priority()
		if pi != pj {
			return pi < pj
		}
		return recs[i].ReorderQty > recs[j].ReorderQty
	})
}

func (e *Engine) computeSKU(sku string, group []Row, horizonDays int, today time.Time) domain.Recommendation {
	sort.SliceStable(group, func(i, j int) bool {
		return group[i].Date.Before(group[j].Date)
	})

	// Snapshot fields come from the chronologically last row.
	last := group[len(group)-1]
	onHand := orZero(last.OnHand)
	leadTime := int(orZero(last.LeadTime))
	moq := toOptionalInt(last.MOQ)
	unitCost := last.Cost

	maxDate := last.Date
	recentCutoff := maxDate.AddDate(0, 0, -demandWindowDays)
	recent := selectWindow(group, recentCutoff, time.Time{})
	if len(recent) == 0 {
		// Unreachable today: the max-date row always satisfies the cutoff.
		// Kept for robustness against future windowing changes.
		recent = group
	}

	avgDaily := averageDailySales(recent)

	forecast := avgDaily * float64(horizonDays)
	targetStock := avgDaily * float64(horizonDays+maxInt(leadTime, 0))
	rawQty := math.Max(0, targetStock-onHand)
	reorderQty := ceilToMOQ(rawQty, moq)

	daysUntilStockout := math.Inf(1)
	if avgDaily > 0 {
		daysUntilStockout = onHand / avgDaily
	}

	var reorderBy *string
	if !math.IsInf(daysUntilStockout, 1) {
		daysToOrder := maxInt(0, int(math.Floor(daysUntilStockout-float64(leadTime))))
		date := today.AddDate(0, 0, daysToOrder).Format("2006-01-02")
		reorderBy = &date
	}

	var (
		status domain.Status
		reason string
	)
	if avgDaily == 0 {
		status = domain.StatusGreen
		reason = noRecentSalesReason
	} else {
		switch {
		case daysUntilStockout <= float64(leadTime):
			status = domain.StatusRed
		case daysUntilStockout <= float64(leadTime+amberBufferDays):
			status = domain.StatusAmber
		default:
			status = domain.StatusGreen
		}

		reason = fmt.Sprintf(
			"Avg daily sales %.1f. Lead time %dd. Forecast next %dd %.0f. Recommend reorder %.0f to cover horizon + lead time.",
			avgDaily, leadTime, horizonDays, forecast, reorderQty,
		)
		reason += trendNote(group, maxDate)
	}

	return domain.Recommendation{
		SKU:           sku,
		CurrentStock:  onHand,
		AvgDailySales: avgDaily,
		Forecast30d:   forecast,
		ReorderQty:    reorderQty,
		ReorderBy:     reorderBy,
		LeadTimeDays:  leadTime,
		MOQ:           moq,
		UnitCost:      unitCost,
		Status:        status,
		Reason:        reason,
	}
}

// averageDailySales sums units sold per distinct calendar date, then averages
// the per-day sums. Summing per day first keeps the rate correct when a day
// has multiple rows. A missing UnitsSold contributes nothing to its day's sum
// but the day still counts toward the mean.
func averageDailySales(window []Row) float64 {
	if len(window) == 0 {
		return 0
	}

	daily := make(map[time.Time]float64)
	for _, row := range window {
		daily[row.Date] += orZero(row.UnitsSold)
	}

	var total float64
	for _, sum := range daily {
		total += sum
	}

	return total / float64(len(daily))
}

// trendNote compares mean units sold over the trailing 14 days against the
// preceding 14-day window and reports the percent change when it is at least
// 10% in either direction.
func trendNote(group []Row, maxDate time.Time) string {
	recentStart := maxDate.AddDate(0, 0, -trendWindowDays)
	priorStart := maxDate.AddDate(0, 0, -demandWindowDays)

	recentMean, recentOK := meanUnitsSold(selectWindow(group, recentStart, time.Time{}))
	priorMean, priorOK := meanUnitsSold(selectWindow(group, priorStart, recentStart))

	if !recentOK || !priorOK || priorMean <= 0 {
		return ""
	}

	pct := (recentMean - priorMean) / priorMean * 100
	if math.Abs(pct) < trendNotePctThreshold {
		return ""
	}

	return fmt.Sprintf(" Demand changed ~%.0f%% vs prior 2 weeks.", pct)
}

// selectWindow returns rows with from <= Date < to. A zero `to` leaves the
// window open-ended.
func selectWindow(group []Row, from, to time.Time) []Row {
	var out []Row
	for _, row := range group {
		if row.Date.Before(from) {
			continue
		}
		if !to.IsZero() && !row.Date.Before(to) {
			continue
		}
		out = append(out, row)
	}

	return out
}

// meanUnitsSold averages the present UnitsSold values in the window. The bool
// is false when the window has no present value to average.
func meanUnitsSold(window []Row) (float64, bool) {
	var (
		total float64
		count int
	)
	for _, row := range window {
		if row.UnitsSold == nil {
			continue
		}
		total += *row.UnitsSold
		count++
	}

	if count == 0 {
		return 0, false
	}

	return total / float64(count), true
}

// ceilToMOQ rounds a raw quantity up to the nearest positive multiple of the
// minimum order quantity. Without an MOQ constraint the raw (possibly
// fractional) quantity passes through, floored at zero.
func ceilToMOQ(qty float64, moq *int) float64 {
	if moq == nil || *moq <= 0 {
		return math.Max(0, qty)
	}
	if qty <= 0 {
		return 0
	}

	m := float64(*moq)
	return math.Ceil(qty/m) * m
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}

	return *v
}

func toOptionalInt(v *float64) *int {
	if v == nil {
		return nil
	}

	i := int(*v)
	return &i
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}

	return b
}
