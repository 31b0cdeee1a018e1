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
)

// ReplacementService 设备更换评估业务接口
type ReplacementService interface {
	// 评估全部设备并返回建议退役的清单，按优先级降序
	EvaluateReplacements(ctx context.Context) (*dto.ReplacementResponse, error)
}

type replacementService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewReplacementService 创建 ReplacementService 实例
func NewReplacementService(repo *repository.Repository, logger *zap.Logger) ReplacementService {
	return &replacementService{repo: repo, logger: logger, now: time.Now}
}

// scoreResult 单维度评分，nil 表示该维度不参与评估
type scoreResult struct {
	shouldRetire bool
	priority     Priority
	value        float64
	reason       string
}

// lifespanScore 按已用寿命占比评分；缺购买日期或寿命未设置时不评分
func lifespanScore(device *model.Device, now time.Time) *scoreResult {
	if device.PurchaseDate == nil || device.Lifespan <= 0 {
		return nil
	}
	ageDays := now.Sub(*device.PurchaseDate).Hours() / 24
	pct := ageDays / (float64(device.Lifespan) * 365) * 100
	switch {
	case pct >= 100:
		return &scoreResult{true, PriorityEmergency, pct, "设计寿命已耗尽"}
	case pct >= 85:
		return &scoreResult{true, PriorityHigh, pct, "已用寿命超过 85%"}
	case pct >= 65:
		return &scoreResult{true, PriorityMedium, pct, "已用寿命超过 65%"}
	case pct >= 50:
		return &scoreResult{false, PriorityLow, pct, "已用寿命过半，建议关注"}
	default:
		return nil
	}
}

// frequencyScore 按维护频率评分：近半年维修次数优先，其次近一年周期维护次数，
// 再退回加权组合（维修权重 2）
func (s *replacementService) frequencyScore(ctx context.Context, deviceID string, now time.Time) (*scoreResult, error) {
	repairs, err := s.repo.Maintenance.CountByDeviceTypeSince(ctx, deviceID, model.MaintenanceTypeRepair, now.AddDate(0, 0, -180))
	if err != nil {
		return nil, err
	}
	if repairs >= 2 {
		return &scoreResult{true, PriorityHigh, float64(repairs), "近半年维修次数过多"}, nil
	}
	if repairs >= 1 {
		return &scoreResult{true, PriorityMedium, float64(repairs), "近半年发生过维修"}, nil
	}

	periodic, err := s.repo.Maintenance.CountByDeviceTypeSince(ctx, deviceID, model.MaintenanceTypePeriodic, now.AddDate(0, 0, -365))
	if err != nil {
		return nil, err
	}
	if periodic >= 3 {
		return &scoreResult{true, PriorityHigh, float64(periodic), "近一年周期维护频繁"}, nil
	}
	if periodic >= 2 {
		return &scoreResult{true, PriorityMedium, float64(periodic), "近一年周期维护偏多"}, nil
	}

	combined := 2*repairs + periodic
	switch {
	case combined >= 3:
		return &scoreResult{true, PriorityHigh, float64(combined), "综合维护频率过高"}, nil
	case combined >= 2:
		return &scoreResult{true, PriorityMedium, float64(combined), "综合维护频率偏高"}, nil
	case combined >= 1:
		return &scoreResult{false, PriorityLow, float64(combined), "维护频率偏低，建议关注"}, nil
	default:
		return nil, nil
	}
}

// costScore 按维护费用与购置成本比值评分；购置成本未知时不评分
func costScore(totalMaintenance, purchaseCost decimal.Decimal) *scoreResult {
	if !purchaseCost.IsPositive() {
		return nil
	}
	ratio, _ := totalMaintenance.Div(purchaseCost).Mul(decimal.NewFromInt(100)).Float64()
	switch {
	case ratio >= 60:
		return &scoreResult{true, PriorityHigh, ratio, "维护费用已超购置成本六成"}
	case ratio >= 40:
		return &scoreResult{true, PriorityMedium, ratio, "维护费用已超购置成本四成"}
	case ratio >= 30:
		return &scoreResult{false, PriorityLow, ratio, "维护费用占比偏高，建议关注"}
	default:
		return nil
	}
}

// confidenceLabel 按建议退役维度占比评定置信度
func confidenceLabel(retireCount, scoredCount int) string {
	if scoredCount == 0 {
		return "low"
	}
	fraction := float64(retireCount) / float64(scoredCount)
	switch {
	case fraction >= 0.7:
		return "high"
	case fraction >= 0.4:
		return "medium"
	default:
		return "low"
	}
}

func (s *replacementService) EvaluateReplacements(ctx context.Context) (*dto.ReplacementResponse, error) {
	now := s.now()
	devices, err := s.repo.Device.ListAll(ctx)
	if err != nil {
		s.logger.Error("查询设备列表失败", zap.Error(err))
		return nil, err
	}

	type ranked struct {
		item     dto.DeviceReplacement
		priority Priority
	}
	candidates := make([]ranked, 0)

	for _, device := range devices {
		totalMaintenance, err := s.repo.Maintenance.SumCostByDevice(ctx, device.DeviceID)
		if err != nil {
			s.logger.Error("统计维护费用失败", zap.String("device_id", device.DeviceID), zap.Error(err))
			return nil, err
		}

		scores := map[string]*scoreResult{}
		scores["lifespan"] = lifespanScore(device, now)
		freq, err := s.frequencyScore(ctx, device.DeviceID, now)
		if err != nil {
			s.logger.Error("统计维护频率失败", zap.String("device_id", device.DeviceID), zap.Error(err))
			return nil, err
		}
		scores["maintenance_frequency"] = freq
		scores["cost_ratio"] = costScore(totalMaintenance, device.PurchaseCost)

		retireCount, scoredCount := 0, 0
		final := PriorityUndetermined
		for _, score := range scores {
			if score == nil {
				continue
			}
			scoredCount++
			if score.shouldRetire {
				retireCount++
				final = maxPriority(final, score.priority)
			}
		}
		if retireCount == 0 {
			continue
		}

		scoreDTOs := map[string]*dto.ScoreDetail{}
		for name, score := range scores {
			if score == nil {
				continue
			}
			scoreDTOs[name] = &dto.ScoreDetail{
				ShouldRetire: score.shouldRetire,
				Priority:     score.priority.String(),
				Value:        math.Round(score.value*100) / 100,
				Reason:       score.reason,
			}
		}

		item := dto.DeviceReplacement{
			DeviceID:   device.DeviceID,
			DeviceName: device.Name,
			Priority:   final.String(),
			Confidence: confidenceLabel(retireCount, scoredCount),
			Scores:     scoreDTOs,
		}

		if device.PurchaseCost.IsPositive() {
			ratio, _ := totalMaintenance.Div(device.PurchaseCost).Mul(decimal.NewFromInt(100)).Float64()
			yearly := totalMaintenance
			if device.PurchaseDate != nil {
				if years := now.Sub(*device.PurchaseDate).Hours() / 24 / 365; years >= 1 {
					yearly = totalMaintenance.Div(decimal.NewFromFloat(years))
				}
			}
			item.FinancialAnalysis = &dto.FinancialAnalysis{
				PurchaseCost:         device.PurchaseCost.StringFixed(2),
				TotalMaintenanceCost: totalMaintenance.StringFixed(2),
				CostRatioPercent:     math.Round(ratio*100) / 100,
				YearlyAverageCost:    yearly.Round(2).StringFixed(2),
			}
		}

		item.Recommendations = s.buildRecommendations(ctx, device)
		candidates = append(candidates, ranked{item: item, priority: final})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].priority > candidates[j].priority
	})

	items := make([]dto.DeviceReplacement, 0, len(candidates))
	for _, c := range candidates {
		items = append(items, c.item)
	}
	return &dto.ReplacementResponse{
		GeneratedAt: now.Format(time.RFC3339),
		Total:       len(items),
		Devices:     items,
	}, nil
}

// buildRecommendations 计算备件残值与单位运行小时成本（按购置成本摊算）
func (s *replacementService) buildRecommendations(ctx context.Context, device *model.Device) dto.ReplacementRecommendations {
	residual := decimal.Zero
	parts, err := s.repo.SparePart.ListByDevice(ctx, device.DeviceID)
	if err != nil {
		s.logger.Warn("查询关联备件失败", zap.String("device_id", device.DeviceID), zap.Error(err))
	} else {
		for _, part := range parts {
			residual = residual.Add(part.Cost.Mul(decimal.NewFromInt(int64(part.Quantity))))
		}
	}

	costPerHour := decimal.Zero
	if device.TotalOperatingHours > 0 {
		costPerHour = device.PurchaseCost.Div(decimal.NewFromFloat(device.TotalOperatingHours))
	}
	return dto.ReplacementRecommendations{
		SparePartsResidualValue: residual.StringFixed(2),
		CostPerOperatingHour:    costPerHour.Round(2).StringFixed(2),
	}
}
