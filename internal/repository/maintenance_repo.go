package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nourhan03/Physics-Lab-P2/internal/model"
)

// MaintenanceRepository 维护记录数据访问接口
type MaintenanceRepository interface {
	// CountActiveOnDate 统计指定日期落在维护区间内且未完成的记录数
	CountActiveOnDate(ctx context.Context, deviceID string, date time.Time) (int64, error)
	// LastByDeviceAndType 查询设备指定类型最近一次已结束的维护记录
	LastByDeviceAndType(ctx context.Context, deviceID, maintType string) (*model.Maintenance, error)
	// LastCostByDevices 查询给定设备集合中最近一次指定类型维护的费用
	LastCostByDevices(ctx context.Context, deviceIDs []string, maintType string) (decimal.Decimal, bool, error)
	// AvgCostByType 查询指定类型维护的全局平均费用
	AvgCostByType(ctx context.Context, maintType string) (decimal.Decimal, bool, error)
	// CountByDeviceTypeSince 统计设备自指定时间起某类型维护的排期次数
	CountByDeviceTypeSince(ctx context.Context, deviceID, maintType string, since time.Time) (int64, error)
	// SumCostByDevice 统计设备历史维护总费用
	SumCostByDevice(ctx context.Context, deviceID string) (decimal.Decimal, error)
	// ListUpcoming 查询指定时间窗内排期的维护记录
	ListUpcoming(ctx context.Context, from, to time.Time, statuses []string) ([]*model.Maintenance, error)
}

type maintenanceRepo struct {
	db *gorm.DB
}

func NewMaintenanceRepo(db *gorm.DB) MaintenanceRepository {
	return &maintenanceRepo{db: db}
}

func (r *maintenanceRepo) CountActiveOnDate(ctx context.Context, deviceID string, date time.Time) (int64, error) {
	var count int64
	day := date.Format("2006-01-02")
	err := r.db.WithContext(ctx).
		Model(&model.Maintenance{}).
		Where("device_id = ?", deviceID).
		Where("status <> ?", model.MaintenanceStatusCompleted).
		Where("start_at IS NOT NULL AND end_at IS NOT NULL").
		Where("DATE(start_at) <= ? AND DATE(end_at) >= ?", day, day).
		Count(&count).Error
	return count, err
}

func (r *maintenanceRepo) LastByDeviceAndType(ctx context.Context, deviceID, maintType string) (*model.Maintenance, error) {
	var maintenance model.Maintenance
	err := r.db.WithContext(ctx).
		Where("device_id = ? AND maint_type = ?", deviceID, maintType).
		Where("end_at IS NOT NULL").
		Order("end_at DESC").
		First(&maintenance).Error
	if err != nil {
		return nil, err
	}
	return &maintenance, nil
}

func (r *maintenanceRepo) LastCostByDevices(ctx context.Context, deviceIDs []string, maintType string) (decimal.Decimal, bool, error) {
	if len(deviceIDs) == 0 {
		return decimal.Zero, false, nil
	}
	var maintenance model.Maintenance
	err := r.db.WithContext(ctx).
		Where("device_id IN ? AND maint_type = ?", deviceIDs, maintType).
		Where("end_at IS NOT NULL").
		Order("end_at DESC").
		First(&maintenance).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, err
	}
	return maintenance.Cost, true, nil
}

func (r *maintenanceRepo) AvgCostByType(ctx context.Context, maintType string) (decimal.Decimal, bool, error) {
	var result struct {
		Avg decimal.NullDecimal
	}
	err := r.db.WithContext(ctx).
		Model(&model.Maintenance{}).
		Select("AVG(cost) AS avg").
		Where("maint_type = ? AND cost > 0", maintType).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, false, err
	}
	if !result.Avg.Valid {
		return decimal.Zero, false, nil
	}
	return result.Avg.Decimal, true, nil
}

func (r *maintenanceRepo) CountByDeviceTypeSince(ctx context.Context, deviceID, maintType string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Maintenance{}).
		Where("device_id = ? AND maint_type = ?", deviceID, maintType).
		Where("scheduling_at >= ?", since).
		Count(&count).Error
	return count, err
}

func (r *maintenanceRepo) SumCostByDevice(ctx context.Context, deviceID string) (decimal.Decimal, error) {
	var result struct {
		Total decimal.NullDecimal
	}
	err := r.db.WithContext(ctx).
		Model(&model.Maintenance{}).
		Select("SUM(cost) AS total").
		Where("device_id = ?", deviceID).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !result.Total.Valid {
		return decimal.Zero, nil
	}
	return result.Total.Decimal, nil
}

func (r *maintenanceRepo) ListUpcoming(ctx context.Context, from, to time.Time, statuses []string) ([]*model.Maintenance, error) {
	var maintenances []*model.Maintenance
	err := r.db.WithContext(ctx).
		Where("status IN ?", statuses).
		Where("scheduling_at > ? AND scheduling_at <= ?", from, to).
		Order("scheduling_at").
		Find(&maintenances).Error
	if err != nil {
		return nil, err
	}
	return maintenances, nil
}
