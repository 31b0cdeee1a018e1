package dto

// ScoreDetail 单项更换评分
type ScoreDetail struct {
	ShouldRetire bool    `json:"should_retire"`
	Priority     string  `json:"priority"`
	Value        float64 `json:"value"`
	Reason       string  `json:"reason"`
}

// FinancialAnalysis 设备财务分析
type FinancialAnalysis struct {
	PurchaseCost         string  `json:"purchase_cost"`
	TotalMaintenanceCost string  `json:"total_maintenance_cost"`
	CostRatioPercent     float64 `json:"cost_ratio_percent"`
	YearlyAverageCost    string  `json:"yearly_average_cost"`
}

// ReplacementRecommendations 更换建议附加信息
type ReplacementRecommendations struct {
	SparePartsResidualValue string `json:"spare_parts_residual_value"`
	CostPerOperatingHour    string `json:"cost_per_operating_hour"`
}

// DeviceReplacement 单台设备的更换评估
type DeviceReplacement struct {
	DeviceID          string                     `json:"device_id"`
	DeviceName        string                     `json:"device_name"`
	Priority          string                     `json:"priority"`
	Confidence        string                     `json:"confidence"`
	Scores            map[string]*ScoreDetail    `json:"scores"`
	FinancialAnalysis *FinancialAnalysis         `json:"financial_analysis,omitempty"`
	Recommendations   ReplacementRecommendations `json:"recommendations"`
}

// ReplacementResponse 更换评估报告
type ReplacementResponse struct {
	GeneratedAt string              `json:"generated_at"`
	Total       int                 `json:"total"`
	Devices     []DeviceReplacement `json:"devices"`
}
