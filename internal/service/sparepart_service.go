package service

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/nourhan03/Physics-Lab-P2/internal/dto"
	"github.com/nourhan03/Physics-Lab-P2/internal/model"
	"github.com/nourhan03/Physics-Lab-P2/internal/repository"
	"github.com/nourhan03/Physics-Lab-P2/pkg/redis"
)

// ── 备件需求原因 ──

const (
	ReasonLowStock            = "low_stock"
	ReasonExpiringSoon        = "expiring_soon"
	ReasonHighConsumption     = "high_consumption"
	ReasonUpcomingMaintenance = "upcoming_maintenance"
)

const cacheKeyForecast = "spareparts:forecast"

// upcomingMaintenanceStatuses 视为待执行的维护状态
var upcomingMaintenanceStatuses = []string{
	model.MaintenanceStatusScheduled,
	model.MaintenanceStatusInProgress,
	model.MaintenanceStatusRescheduled,
}

// SparePartService 备件需求预测业务接口
type SparePartService interface {
	// 四轮扫描生成备件需求预测（带缓存）
	Forecast(ctx context.Context) (*dto.ForecastResponse, error)
	// 按优先级过滤预测结果
	ForecastByPriority(ctx context.Context, priority string) (*dto.ForecastResponse, error)
	// 按需求原因过滤预测结果
	ForecastByReason(ctx context.Context, reason string) (*dto.ForecastResponse, error)
}

type sparePartService struct {
	repo     *repository.Repository
	logger   *zap.Logger
	cache    *redis.Client
	cacheTTL time.Duration
	now      func() time.Time
}

// NewSparePartService 创建 SparePartService 实例；cache 可为 nil
func NewSparePartService(repo *repository.Repository, cache *redis.Client, cacheTTL time.Duration, logger *zap.Logger) SparePartService {
	return &sparePartService{
		repo:     repo,
		logger:   logger,
		cache:    cache,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

// forecastRank 需求优先级排序权重，高优先级在前
func forecastRank(priority string) int {
	switch priority {
	case "high":
		return 0
	case "medium":
		return 1
	default:
		return 2
	}
}

func (s *sparePartService) Forecast(ctx context.Context) (*dto.ForecastResponse, error) {
	if s.cache != nil {
		var cached dto.ForecastResponse
		hit, err := s.cache.GetReport(ctx, cacheKeyForecast, &cached)
		if err != nil {
			s.logger.Warn("读取备件预测缓存失败", zap.Error(err))
		} else if hit {
			return &cached, nil
		}
	}

	now := s.now()
	seen := map[string]bool{}
	needs := make([]dto.SparePartNeed, 0)

	appendNeed := func(need dto.SparePartNeed) {
		if seen[need.PartID] {
			return
		}
		seen[need.PartID] = true
		needs = append(needs, need)
	}

	// 第一轮：低库存
	lowStock, err := s.repo.SparePart.ListLowStock(ctx)
	if err != nil {
		s.logger.Error("查询低库存备件失败", zap.Error(err))
		return nil, err
	}
	for _, part := range lowStock {
		need := s.baseNeed(part, ReasonLowStock)
		if part.Quantity <= part.MinimumQuantity {
			need.Priority = "high"
			need.DaysToAction = 0
		} else {
			need.Priority = "medium"
			need.DaysToAction = float64((part.Quantity - part.MinimumQuantity) * 2)
		}
		if part.MinimumQuantity > 0 {
			pct := float64(part.Quantity) / float64(part.MinimumQuantity) * 100
			pct = math.Round(pct*100) / 100
			need.StockPercentage = &pct
		}
		need.SuggestedQuantity = maxInt(2*part.MinimumQuantity-part.Quantity, 5)
		s.finishNeed(&need, part)
		appendNeed(need)
	}

	// 第二轮：临近过期
	expiring, err := s.repo.SparePart.ListExpiringBefore(ctx, now.AddDate(0, 0, 60))
	if err != nil {
		s.logger.Error("查询临期备件失败", zap.Error(err))
		return nil, err
	}
	for _, part := range expiring {
		daysUntil := int(part.ExpiryDate.Sub(now).Hours() / 24)
		need := s.baseNeed(part, ReasonExpiringSoon)
		switch {
		case daysUntil <= 15:
			need.Priority = "high"
		case daysUntil <= 30:
			need.Priority = "medium"
		default:
			need.Priority = "low"
		}
		need.DaysToAction = float64(daysUntil)
		need.DaysUntilExpiry = &daysUntil
		need.SuggestedQuantity = maxInt(part.Quantity, part.MinimumQuantity)
		s.finishNeed(&need, part)
		appendNeed(need)
	}

	// 第三轮：高消耗（由上次补货日期估算日耗率）
	restocked, err := s.repo.SparePart.ListWithRestockDate(ctx)
	if err != nil {
		s.logger.Error("查询补货记录失败", zap.Error(err))
		return nil, err
	}
	for _, part := range restocked {
		daysSince := int(now.Sub(*part.LastRestockDate).Hours() / 24)
		if daysSince <= 0 {
			continue
		}
		// 估算原始库存为现存量的 1.5 倍
		consumed := 0.5 * float64(part.Quantity)
		rate := consumed / float64(daysSince)
		daysUntilEmpty := 999.0
		if rate > 0 {
			daysUntilEmpty = float64(part.Quantity) / rate
		}
		if daysUntilEmpty > 45 {
			continue
		}
		daysUntilEmpty = math.Round(daysUntilEmpty*100) / 100
		need := s.baseNeed(part, ReasonHighConsumption)
		switch {
		case daysUntilEmpty <= 15:
			need.Priority = "high"
		case daysUntilEmpty <= 30:
			need.Priority = "medium"
		default:
			need.Priority = "low"
		}
		need.DaysToAction = daysUntilEmpty
		need.DaysUntilEmpty = &daysUntilEmpty
		roundedRate := math.Round(rate*100) / 100
		need.DailyRate = &roundedRate
		need.SuggestedQuantity = maxInt(int(math.Round(rate*60)), part.MinimumQuantity)
		s.finishNeed(&need, part)
		appendNeed(need)
	}

	// 第四轮：近期维护关联备件
	upcoming, err := s.repo.Maintenance.ListUpcoming(ctx, now, now.AddDate(0, 0, 60), upcomingMaintenanceStatuses)
	if err != nil {
		s.logger.Error("查询近期维护失败", zap.Error(err))
		return nil, err
	}
	for _, maintenance := range upcoming {
		parts, err := s.repo.SparePart.ListByDevice(ctx, maintenance.DeviceID)
		if err != nil {
			s.logger.Error("查询维护关联备件失败", zap.Error(err))
			return nil, err
		}
		for _, part := range parts {
			need := s.baseNeed(part, ReasonUpcomingMaintenance)
			switch {
			case part.Quantity < part.MinimumQuantity:
				need.Priority = "high"
				need.DaysToAction = 0
			case float64(part.Quantity) < 1.5*float64(part.MinimumQuantity):
				need.Priority = "medium"
				need.DaysToAction = 15
			default:
				need.Priority = "low"
				need.DaysToAction = 30
			}
			need.SuggestedQuantity = maxInt(part.MinimumQuantity-part.Quantity+3, 3)
			need.RelatedDeviceID = maintenance.DeviceID
			s.finishNeed(&need, part)
			appendNeed(need)
		}
	}

	sort.SliceStable(needs, func(i, j int) bool {
		ri, rj := forecastRank(needs[i].Priority), forecastRank(needs[j].Priority)
		if ri != rj {
			return ri < rj
		}
		return needs[i].DaysToAction < needs[j].DaysToAction
	})

	totalCost := decimal.Zero
	highCount := 0
	for _, need := range needs {
		if need.Priority == "high" {
			highCount++
		}
		cost, err := decimal.NewFromString(need.TotalCostEstimation)
		if err == nil {
			totalCost = totalCost.Add(cost)
		}
	}

	resp := &dto.ForecastResponse{
		Summary: dto.ForecastSummary{
			TotalParts:         len(needs),
			HighPriorityCount:  highCount,
			TotalEstimatedCost: totalCost.StringFixed(2),
			DateGenerated:      now.Format(time.RFC3339),
		},
		Needs: needs,
	}
	if s.cache != nil {
		if err := s.cache.SetReport(ctx, cacheKeyForecast, resp, s.cacheTTL); err != nil {
			s.logger.Warn("写入备件预测缓存失败", zap.Error(err))
		}
	}
	return resp, nil
}

func (s *sparePartService) ForecastByPriority(ctx context.Context, priority string) (*dto.ForecastResponse, error) {
	full, err := s.Forecast(ctx)
	if err != nil {
		return nil, err
	}
	return filterForecast(full, func(need dto.SparePartNeed) bool {
		return need.Priority == priority
	}), nil
}

func (s *sparePartService) ForecastByReason(ctx context.Context, reason string) (*dto.ForecastResponse, error) {
	full, err := s.Forecast(ctx)
	if err != nil {
		return nil, err
	}
	return filterForecast(full, func(need dto.SparePartNeed) bool {
		return need.Reason == reason
	}), nil
}

// filterForecast 过滤需求并重算汇总
func filterForecast(full *dto.ForecastResponse, keep func(dto.SparePartNeed) bool) *dto.ForecastResponse {
	needs := make([]dto.SparePartNeed, 0)
	totalCost := decimal.Zero
	highCount := 0
	for _, need := range full.Needs {
		if !keep(need) {
			continue
		}
		needs = append(needs, need)
		if need.Priority == "high" {
			highCount++
		}
		if cost, err := decimal.NewFromString(need.TotalCostEstimation); err == nil {
			totalCost = totalCost.Add(cost)
		}
	}
	return &dto.ForecastResponse{
		Summary: dto.ForecastSummary{
			TotalParts:         len(needs),
			HighPriorityCount:  highCount,
			TotalEstimatedCost: totalCost.StringFixed(2),
			DateGenerated:      full.Summary.DateGenerated,
		},
		Needs: needs,
	}
}

func (s *sparePartService) baseNeed(part *model.SparePart, reason string) dto.SparePartNeed {
	return dto.SparePartNeed{
		PartID:          part.PartID,
		Name:            part.Name,
		Reason:          reason,
		Quantity:        part.Quantity,
		MinimumQuantity: part.MinimumQuantity,
		Unit:            part.Unit,
	}
}

// finishNeed 填充采购费用估算
func (s *sparePartService) finishNeed(need *dto.SparePartNeed, part *model.SparePart) {
	total := part.Cost.Mul(decimal.NewFromInt(int64(need.SuggestedQuantity)))
	need.TotalCostEstimation = total.Round(2).StringFixed(2)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
