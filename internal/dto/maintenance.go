package dto

// MaintenanceFlag 单条维护预测
type MaintenanceFlag struct {
	DeviceID        string  `json:"device_id"`
	DeviceName      string  `json:"device_name"`
	MaintenanceType string  `json:"maintenance_type"`
	Priority        string  `json:"priority"`
	ExpectedDate    string  `json:"expected_date,omitempty"`
	EstimatedCost   string  `json:"estimated_cost"`
	CurrentHour     float64 `json:"current_hour"`
	MaximumHour     float64 `json:"maximum_hour"`
}

// MaintenancePredictionResponse 维护预测报告
type MaintenancePredictionResponse struct {
	GeneratedAt string            `json:"generated_at"`
	Total       int               `json:"total"`
	Devices     []MaintenanceFlag `json:"devices"`
}

// DevicePriority 设备维护优先级
type DevicePriority struct {
	DeviceID            string `json:"device_id"`
	DeviceName          string `json:"device_name"`
	Status              string `json:"status"`
	PeriodicPriority    string `json:"periodic_priority"`
	CalibrationPriority string `json:"calibration_priority"`
	FinalPriority       string `json:"final_priority"`
}

// DevicesNeedingMaintenanceResponse 需维护设备清单
type DevicesNeedingMaintenanceResponse struct {
	Total   int              `json:"total"`
	Devices []DevicePriority `json:"devices"`
}
