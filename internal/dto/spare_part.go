package dto

// SparePartNeed 单条备件需求
type SparePartNeed struct {
	PartID              string   `json:"part_id"`
	Name                string   `json:"name"`
	Reason              string   `json:"reason"`
	Priority            string   `json:"priority"`
	DaysToAction        float64  `json:"days_to_action"`
	Quantity            int      `json:"quantity"`
	MinimumQuantity     int      `json:"minimum_quantity"`
	SuggestedQuantity   int      `json:"suggested_quantity"`
	Unit                string   `json:"unit"`
	StockPercentage     *float64 `json:"stock_percentage,omitempty"`
	DaysUntilExpiry     *int     `json:"days_until_expiry,omitempty"`
	DaysUntilEmpty      *float64 `json:"days_until_empty,omitempty"`
	DailyRate           *float64 `json:"daily_consumption_rate,omitempty"`
	RelatedDeviceID     string   `json:"related_device_id,omitempty"`
	TotalCostEstimation string   `json:"total_cost_estimation"`
}

// ForecastSummary 备件需求汇总
type ForecastSummary struct {
	TotalParts         int    `json:"total_parts"`
	HighPriorityCount  int    `json:"high_priority_count"`
	TotalEstimatedCost string `json:"total_estimated_cost"`
	DateGenerated      string `json:"date_generated"`
}

// ForecastResponse 备件需求预测报告
type ForecastResponse struct {
	Summary ForecastSummary `json:"summary"`
	Needs   []SparePartNeed `json:"needs"`
}
