package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nourhan03/Physics-Lab-P2/internal/model"
)

// DeviceRepository 设备数据访问接口
type DeviceRepository interface {
	GetByID(ctx context.Context, id string) (*model.Device, error)
	Update(ctx context.Context, device *model.Device) error
	ListAll(ctx context.Context) ([]*model.Device, error)
	// ListByStatusNotIn 查询状态不在排除列表中的设备
	ListByStatusNotIn(ctx context.Context, excluded []string) ([]*model.Device, error)
	// ListSimilar 查询同类别同用途的候选设备，排除指定设备与指定状态
	ListSimilar(ctx context.Context, categoryName, jobDescription, excludeID string, excludedStatuses []string) ([]*model.Device, error)
	// ListByCategory 查询同类别的其他设备
	ListByCategory(ctx context.Context, categoryName, excludeID string) ([]*model.Device, error)
}

type deviceRepo struct {
	db *gorm.DB
}

func NewDeviceRepo(db *gorm.DB) DeviceRepository {
	return &deviceRepo{db: db}
}

func (r *deviceRepo) GetByID(ctx context.Context, id string) (*model.Device, error) {
	var device model.Device
	if err := r.db.WithContext(ctx).Where("device_id = ?", id).First(&device).Error; err != nil {
		return nil, err
	}
	return &device, nil
}

func (r *deviceRepo) Update(ctx context.Context, device *model.Device) error {
	return r.db.WithContext(ctx).Save(device).Error
}

func (r *deviceRepo) ListAll(ctx context.Context) ([]*model.Device, error) {
	var devices []*model.Device
	if err := r.db.WithContext(ctx).Order("name").Find(&devices).Error; err != nil {
		return nil, err
	}
	return devices, nil
}

func (r *deviceRepo) ListByStatusNotIn(ctx context.Context, excluded []string) ([]*model.Device, error) {
	var devices []*model.Device
	err := r.db.WithContext(ctx).
		Where("status NOT IN ?", excluded).
		Order("name").
		Find(&devices).Error
	if err != nil {
		return nil, err
	}
	return devices, nil
}

func (r *deviceRepo) ListSimilar(ctx context.Context, categoryName, jobDescription, excludeID string, excludedStatuses []string) ([]*model.Device, error) {
	var devices []*model.Device
	err := r.db.WithContext(ctx).
		Where("LOWER(category_name) = LOWER(?)", categoryName).
		Where("LOWER(job_description) = LOWER(?)", jobDescription).
		Where("device_id <> ?", excludeID).
		Where("status NOT IN ?", excludedStatuses).
		Find(&devices).Error
	if err != nil {
		return nil, err
	}
	return devices, nil
}

func (r *deviceRepo) ListByCategory(ctx context.Context, categoryName, excludeID string) ([]*model.Device, error) {
	var devices []*model.Device
	err := r.db.WithContext(ctx).
		Where("category_name = ?", categoryName).
		Where("device_id <> ?", excludeID).
		Find(&devices).Error
	if err != nil {
		return nil, err
	}
	return devices, nil
}
