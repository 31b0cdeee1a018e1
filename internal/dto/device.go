package dto

// DeviceSummary 设备概要
type DeviceSummary struct {
	DeviceID       string `json:"device_id"`
	Name           string `json:"name"`
	CategoryName   string `json:"category_name"`
	JobDescription string `json:"job_description"`
	Status         string `json:"status"`
}

// SimilarDevice 相似设备（含名称相似度）
type SimilarDevice struct {
	DeviceSummary
	MatchPercentage *float64 `json:"match_percentage,omitempty"`
	MatchReason     string   `json:"match_reason"`
}

// DeviceSuggestionResponse 设备替代建议
type DeviceSuggestionResponse struct {
	Device                DeviceSummary   `json:"device"`
	UseRecommendations    string          `json:"use_recommendations"`
	SafetyRecommendations string          `json:"safety_recommendations"`
	SimilarDevices        []SimilarDevice `json:"similar_devices"`
}
