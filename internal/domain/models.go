// backend-go/internal/domain/models.go
package domain

// Recommendation is the per-SKU reorder advice computed from an uploaded
// sales/inventory history. ReorderBy is an ISO calendar date and is nil when
// no stockout is projected under the current demand rate.
type Recommendation struct {
	SKU           string   `json:"sku"`
	CurrentStock  float64  `json:"current_stock"`
	AvgDailySales float64  `json:"avg_daily_sales"`
	Forecast30d   float64  `json:"forecast_30d"`
	ReorderQty    float64  `json:"reorder_qty"`
	ReorderBy     *string  `json:"reorder_by"`
	LeadTimeDays  int      `json:"lead_time_days"`
	MOQ           *int     `json:"moq"`
	UnitCost      *float64 `json:"unit_cost"`
	Status        Status   `json:"status"`
	Reason        string   `json:"reason"`
}

// Identity is the authenticated caller extracted by the auth middleware.
// The engine accepts it but does not use it; it exists so results can be
// stored per organization later.
type Identity struct {
	UserID string `json:"user_id"`
	OrgID  string `json:"org_id"`
}
