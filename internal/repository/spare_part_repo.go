package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nourhan03/Physics-Lab-P2/internal/model"
)

// SparePartRepository 备件数据访问接口
type SparePartRepository interface {
	// ListLowStock 查询库存量不高于最低库存 1.2 倍的备件
	ListLowStock(ctx context.Context) ([]*model.SparePart, error)
	// ListExpiringBefore 查询在指定日期前过期且仍有库存的备件
	ListExpiringBefore(ctx context.Context, before time.Time) ([]*model.SparePart, error)
	// ListWithRestockDate 查询有补货记录且仍有库存的备件
	ListWithRestockDate(ctx context.Context) ([]*model.SparePart, error)
	// ListByDevice 查询关联指定设备的备件
	ListByDevice(ctx context.Context, deviceID string) ([]*model.SparePart, error)
	ListAll(ctx context.Context) ([]*model.SparePart, error)
}

type sparePartRepo struct {
	db *gorm.DB
}

func NewSparePartRepo(db *gorm.DB) SparePartRepository {
	return &sparePartRepo{db: db}
}

func (r *sparePartRepo) ListLowStock(ctx context.Context) ([]*model.SparePart, error) {
	var parts []*model.SparePart
	err := r.db.WithContext(ctx).
		Where("quantity <= minimum_quantity * 1.2").
		Find(&parts).Error
	if err != nil {
		return nil, err
	}
	return parts, nil
}

func (r *sparePartRepo) ListExpiringBefore(ctx context.Context, before time.Time) ([]*model.SparePart, error) {
	var parts []*model.SparePart
	err := r.db.WithContext(ctx).
		Where("expiry_date IS NOT NULL AND expiry_date <= ?", before).
		Where("quantity > 0").
		Find(&parts).Error
	if err != nil {
		return nil, err
	}
	return parts, nil
}

func (r *sparePartRepo) ListWithRestockDate(ctx context.Context) ([]*model.SparePart, error) {
	var parts []*model.SparePart
	err := r.db.WithContext(ctx).
		Where("last_restock_date IS NOT NULL").
		Where("quantity > 0").
		Find(&parts).Error
	if err != nil {
		return nil, err
	}
	return parts, nil
}

func (r *sparePartRepo) ListByDevice(ctx context.Context, deviceID string) ([]*model.SparePart, error) {
	var parts []*model.SparePart
	err := r.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Find(&parts).Error
	if err != nil {
		return nil, err
	}
	return parts, nil
}

func (r *sparePartRepo) ListAll(ctx context.Context) ([]*model.SparePart, error) {
	var parts []*model.SparePart
	if err := r.db.WithContext(ctx).Order("name").Find(&parts).Error; err != nil {
		return nil, err
	}
	return parts, nil
}
