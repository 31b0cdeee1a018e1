package dto

// CreateReservationRequest 创建预约请求
type CreateReservationRequest struct {
	UserID       string   `json:"user_id" binding:"required,uuid"`
	LabID        string   `json:"lab_id" binding:"required,uuid"`
	ExperimentID string   `json:"experiment_id" binding:"required,uuid"`
	DeviceIDs    []string `json:"device_ids" binding:"required,min=1,dive,uuid"`
	Date         string   `json:"date" binding:"required"`       // YYYY-MM-DD
	StartTime    string   `json:"start_time" binding:"required"` // HH:MM
	EndTime      string   `json:"end_time" binding:"required"`   // HH:MM
	Purpose      string   `json:"purpose"`
}

// UpdateReservationRequest 修改预约请求（字段均可选，缺省沿用原值）
type UpdateReservationRequest struct {
	LabID        *string  `json:"lab_id" binding:"omitempty,uuid"`
	ExperimentID *string  `json:"experiment_id" binding:"omitempty,uuid"`
	DeviceIDs    []string `json:"device_ids" binding:"omitempty,min=1,dive,uuid"`
	Date         *string  `json:"date"`
	StartTime    *string  `json:"start_time"`
	EndTime      *string  `json:"end_time"`
	Purpose      *string  `json:"purpose"`
}

// ReservationResponse 预约结果
type ReservationResponse struct {
	ReservationID  string   `json:"reservation_id"`
	ReservationIDs []string `json:"reservation_ids,omitempty"`
	Allowed        bool     `json:"allowed"`
	Date           string   `json:"date"`
	StartTime      string   `json:"start_time"`
	EndTime        string   `json:"end_time"`
	DurationHours  float64  `json:"duration_hours"`
}
