package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nourhan03/Physics-Lab-P2/internal/model"
)

// ExperimentRepository 实验与实验-设备关联数据访问接口
type ExperimentRepository interface {
	GetByID(ctx context.Context, id string) (*model.Experiment, error)
	Update(ctx context.Context, experiment *model.Experiment) error
	// GetDeviceLink 查询实验与设备的关联行；不存在返回 gorm.ErrRecordNotFound
	GetDeviceLink(ctx context.Context, experimentID, deviceID string) (*model.ExperimentDevice, error)
	// ListExperimentIDsByDevice 查询设备参与的全部实验 ID
	ListExperimentIDsByDevice(ctx context.Context, deviceID string) ([]string, error)
}

type experimentRepo struct {
	db *gorm.DB
}

func NewExperimentRepo(db *gorm.DB) ExperimentRepository {
	return &experimentRepo{db: db}
}

func (r *experimentRepo) GetByID(ctx context.Context, id string) (*model.Experiment, error) {
	var experiment model.Experiment
	if err := r.db.WithContext(ctx).Where("experiment_id = ?", id).First(&experiment).Error; err != nil {
		return nil, err
	}
	return &experiment, nil
}

func (r *experimentRepo) Update(ctx context.Context, experiment *model.Experiment) error {
	return r.db.WithContext(ctx).Save(experiment).Error
}

func (r *experimentRepo) GetDeviceLink(ctx context.Context, experimentID, deviceID string) (*model.ExperimentDevice, error) {
	var link model.ExperimentDevice
	err := r.db.WithContext(ctx).
		Where("experiment_id = ? AND device_id = ?", experimentID, deviceID).
		First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *experimentRepo) ListExperimentIDsByDevice(ctx context.Context, deviceID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.ExperimentDevice{}).
		Where("device_id = ?", deviceID).
		Pluck("experiment_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
