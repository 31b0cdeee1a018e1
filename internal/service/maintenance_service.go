package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nourhan03/Physics-Lab-P2/internal/dto"
	"github.com/nourhan03/Physics-Lab-P2/internal/model"
	"github.com/nourhan03/Physics-Lab-P2/internal/repository"
	"github.com/nourhan03/Physics-Lab-P2/pkg/redis"
)

// ── 维护优先级 ──

// Priority 维护优先级，按 rank 比较
type Priority int

const (
	PriorityUndetermined Priority = iota
	PriorityLow
	PriorityMedium
	PriorityHigh
	PriorityEmergency
)

func (p Priority) String() string {
	switch p {
	case PriorityEmergency:
		return "emergency"
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	default:
		return "undetermined"
	}
}

// maxPriority 取两者中等级更高的优先级
func maxPriority(a, b Priority) Priority {
	if a >= b {
		return a
	}
	return b
}

// periodicPriority 按运行小时占比评定周期性维护优先级
func periodicPriority(currentHour, maximumHour float64) Priority {
	if maximumHour <= 0 {
		return PriorityUndetermined
	}
	if currentHour >= maximumHour {
		return PriorityEmergency
	}
	ratio := currentHour / maximumHour * 100
	switch {
	case ratio >= 90:
		return PriorityHigh
	case ratio >= 60:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// monthsBetween 日历月差，天数回退时减一
func monthsBetween(from, to time.Time) int {
	months := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	if to.Day() < from.Day() {
		months--
	}
	return months
}

const (
	cacheKeyPredictions = "maintenance:predictions"
	defaultRepairCost   = "500.00"
	hoursPerWorkDay     = 8.0
)

// excludedFromPrediction 预测时跳过的设备状态
var excludedFromPrediction = []string{
	model.StatusUnderMaintenance,
	model.StatusInMaintenance,
	model.StatusUnavailable,
}

// MaintenanceService 维护预测业务接口
type MaintenanceService interface {
	// 预测近期需要维护的设备（带缓存）
	PredictMaintenance(ctx context.Context) (*dto.MaintenancePredictionResponse, error)
	// 全量设备维护优先级清单，按最终优先级降序
	DevicesNeedingMaintenance(ctx context.Context) (*dto.DevicesNeedingMaintenanceResponse, error)
}

type maintenanceService struct {
	repo     *repository.Repository
	logger   *zap.Logger
	cache    *redis.Client
	cacheTTL time.Duration
	now      func() time.Time
}

// NewMaintenanceService 创建 MaintenanceService 实例；cache 可为 nil
func NewMaintenanceService(repo *repository.Repository, cache *redis.Client, cacheTTL time.Duration, logger *zap.Logger) MaintenanceService {
	return &maintenanceService{
		repo:     repo,
		logger:   logger,
		cache:    cache,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

// calibrationPriorityAt 按距上次校准的月数评定校准优先级
//
// 设备未设置校准周期或从无校准记录时返回 Undetermined。
func (s *maintenanceService) calibrationPriorityAt(ctx context.Context, now time.Time, device *model.Device) Priority {
	if device.CalibrationInterval == nil || *device.CalibrationInterval <= 0 {
		return PriorityUndetermined
	}
	last, err := s.repo.Maintenance.LastByDeviceAndType(ctx, device.DeviceID, model.MaintenanceTypeCalibration)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("查询校准记录失败", zap.String("device_id", device.DeviceID), zap.Error(err))
		}
		return PriorityUndetermined
	}
	interval := *device.CalibrationInterval
	months := monthsBetween(*last.EndAt, now)
	if months >= interval {
		return PriorityEmergency
	}
	pct := float64(months) / float64(interval) * 100
	switch {
	case pct >= 90:
		return PriorityHigh
	case pct >= 60:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// estimateCost 维护费用估算链：本机同类最近费用 → 同类别其他设备 → 全局均值 → 兜底常数
func (s *maintenanceService) estimateCost(ctx context.Context, device *model.Device, maintType string) decimal.Decimal {
	last, err := s.repo.Maintenance.LastByDeviceAndType(ctx, device.DeviceID, maintType)
	if err == nil {
		return last.Cost
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Warn("查询设备维护费用失败", zap.Error(err))
	}
	peers, err := s.repo.Device.ListByCategory(ctx, device.CategoryName, device.DeviceID)
	if err != nil {
		s.logger.Warn("查询同类别设备失败", zap.Error(err))
	} else if len(peers) > 0 {
		peerIDs := make([]string, 0, len(peers))
		for _, peer := range peers {
			peerIDs = append(peerIDs, peer.DeviceID)
		}
		cost, found, err := s.repo.Maintenance.LastCostByDevices(ctx, peerIDs, maintType)
		if err != nil {
			s.logger.Warn("查询同类别维护费用失败", zap.Error(err))
		} else if found {
			return cost
		}
	}
	avg, found, err := s.repo.Maintenance.AvgCostByType(ctx, maintType)
	if err != nil {
		s.logger.Warn("查询平均维护费用失败", zap.Error(err))
	} else if found {
		return avg.Round(2)
	}
	return decimal.RequireFromString(defaultRepairCost)
}

// ════════════════════════════════════════════════════════════
// PredictMaintenance
// ════════════════════════════════════════════════════════════

func (s *maintenanceService) PredictMaintenance(ctx context.Context) (*dto.MaintenancePredictionResponse, error) {
	if s.cache != nil {
		var cached dto.MaintenancePredictionResponse
		hit, err := s.cache.GetReport(ctx, cacheKeyPredictions, &cached)
		if err != nil {
			s.logger.Warn("读取预测缓存失败", zap.Error(err))
		} else if hit {
			return &cached, nil
		}
	}

	now := s.now()
	devices, err := s.repo.Device.ListByStatusNotIn(ctx, excludedFromPrediction)
	if err != nil {
		s.logger.Error("查询设备列表失败", zap.Error(err))
		return nil, err
	}

	flags := make([]dto.MaintenanceFlag, 0)
	for _, device := range devices {
		var periodicFlag *dto.MaintenanceFlag
		if device.MaximumHour > 0 && device.CurrentHour >= 0.9*device.MaximumHour {
			remaining := device.MaximumHour - device.CurrentHour
			if remaining < 0 {
				remaining = 0
			}
			expected := now.AddDate(0, 0, int(remaining/hoursPerWorkDay))
			periodicFlag = &dto.MaintenanceFlag{
				DeviceID:        device.DeviceID,
				DeviceName:      device.Name,
				MaintenanceType: model.MaintenanceTypePeriodic,
				Priority:        periodicPriority(device.CurrentHour, device.MaximumHour).String(),
				ExpectedDate:    expected.Format(dateLayout),
				EstimatedCost:   s.estimateCost(ctx, device, model.MaintenanceTypePeriodic).StringFixed(2),
				CurrentHour:     device.CurrentHour,
				MaximumHour:     device.MaximumHour,
			}
		}

		var calibrationFlag *dto.MaintenanceFlag
		if device.CalibrationInterval != nil && *device.CalibrationInterval > 0 {
			last, err := s.repo.Maintenance.LastByDeviceAndType(ctx, device.DeviceID, model.MaintenanceTypeCalibration)
			if err == nil && last.EndAt != nil {
				next := last.EndAt.AddDate(0, 0, *device.CalibrationInterval*30)
				daysUntil := int(next.Sub(now).Hours() / 24)
				switch {
				case daysUntil <= 0:
					// 校准已逾期：每台设备仅保留一条记录，逾期校准覆盖周期性标记
					calibrationFlag = &dto.MaintenanceFlag{
						DeviceID:        device.DeviceID,
						DeviceName:      device.Name,
						MaintenanceType: model.MaintenanceTypeOverdueCalibration,
						Priority:        PriorityEmergency.String(),
						ExpectedDate:    next.Format(dateLayout),
						EstimatedCost:   s.estimateCost(ctx, device, model.MaintenanceTypeCalibration).StringFixed(2),
						CurrentHour:     device.CurrentHour,
						MaximumHour:     device.MaximumHour,
					}
					periodicFlag = nil
				case daysUntil <= 30:
					// 30 天内到期：仅当无周期性标记或校准日期更早时替代
					if periodicFlag == nil || next.Before(mustParseDate(periodicFlag.ExpectedDate)) {
						calibrationFlag = &dto.MaintenanceFlag{
							DeviceID:        device.DeviceID,
							DeviceName:      device.Name,
							MaintenanceType: model.MaintenanceTypeCalibration,
							Priority:        s.calibrationPriorityAt(ctx, now, device).String(),
							ExpectedDate:    next.Format(dateLayout),
							EstimatedCost:   s.estimateCost(ctx, device, model.MaintenanceTypeCalibration).StringFixed(2),
							CurrentHour:     device.CurrentHour,
							MaximumHour:     device.MaximumHour,
						}
						periodicFlag = nil
					}
				}
			} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				s.logger.Warn("查询校准记录失败", zap.Error(err))
			}
		}

		if periodicFlag != nil {
			flags = append(flags, *periodicFlag)
		}
		if calibrationFlag != nil {
			flags = append(flags, *calibrationFlag)
		}
	}

	resp := &dto.MaintenancePredictionResponse{
		GeneratedAt: now.Format(time.RFC3339),
		Total:       len(flags),
		Devices:     flags,
	}
	if s.cache != nil {
		if err := s.cache.SetReport(ctx, cacheKeyPredictions, resp, s.cacheTTL); err != nil {
			s.logger.Warn("写入预测缓存失败", zap.Error(err))
		}
	}
	return resp, nil
}

func mustParseDate(s string) time.Time {
	t, _ := time.Parse(dateLayout, s)
	return t
}

// ════════════════════════════════════════════════════════════
// DevicesNeedingMaintenance — 全量设备按最终优先级降序
// ════════════════════════════════════════════════════════════

func (s *maintenanceService) DevicesNeedingMaintenance(ctx context.Context) (*dto.DevicesNeedingMaintenanceResponse, error) {
	now := s.now()
	devices, err := s.repo.Device.ListAll(ctx)
	if err != nil {
		s.logger.Error("查询设备列表失败", zap.Error(err))
		return nil, err
	}

	type ranked struct {
		item  dto.DevicePriority
		final Priority
	}
	entries := make([]ranked, 0, len(devices))
	for _, device := range devices {
		periodic := periodicPriority(device.CurrentHour, device.MaximumHour)
		calibration := s.calibrationPriorityAt(ctx, now, device)
		final := maxPriority(periodic, calibration)
		entries = append(entries, ranked{
			item: dto.DevicePriority{
				DeviceID:            device.DeviceID,
				DeviceName:          device.Name,
				Status:              device.Status,
				PeriodicPriority:    periodic.String(),
				CalibrationPriority: calibration.String(),
				FinalPriority:       final.String(),
			},
			final: final,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].final > entries[j].final
	})

	items := make([]dto.DevicePriority, 0, len(entries))
	for _, e := range entries {
		items = append(items, e.item)
	}
	return &dto.DevicesNeedingMaintenanceResponse{
		Total:   len(items),
		Devices: items,
	}, nil
}
