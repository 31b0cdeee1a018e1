package service

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nourhan03/Physics-Lab-P2/internal/dto"
	"github.com/nourhan03/Physics-Lab-P2/internal/model"
	"github.com/nourhan03/Physics-Lab-P2/internal/repository"
)

// suggestionExcludedStatuses 替代建议中排除的设备状态
var suggestionExcludedStatuses = []string{
	model.StatusUnderMaintenance,
	model.StatusInMaintenance,
	model.StatusUnavailable,
}

// SuggestionService 设备替代建议业务接口
type SuggestionService interface {
	// 查询设备的使用建议与可替代设备
	SuggestAlternatives(ctx context.Context, deviceID string) (*dto.DeviceSuggestionResponse, error)
}

type suggestionService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSuggestionService 创建 SuggestionService 实例
func NewSuggestionService(repo *repository.Repository, logger *zap.Logger) SuggestionService {
	return &suggestionService{repo: repo, logger: logger}
}

// nameSimilarity 归一化编辑距离相似度，区间 [0,1]
func nameSimilarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == b {
		return 1
	}
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 0
	}
	distance := levenshtein.ComputeDistance(a, b)
	return 1 - float64(distance)/float64(longest)
}

func (s *suggestionService) SuggestAlternatives(ctx context.Context, deviceID string) (*dto.DeviceSuggestionResponse, error) {
	device, err := s.repo.Device.GetByID(ctx, deviceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeviceNotFound
		}
		s.logger.Error("查询设备失败", zap.Error(err))
		return nil, err
	}

	candidates, err := s.repo.Device.ListSimilar(ctx, device.CategoryName, device.JobDescription, device.DeviceID, suggestionExcludedStatuses)
	if err != nil {
		s.logger.Error("查询候选设备失败", zap.Error(err))
		return nil, err
	}

	sourceExperiments, err := s.repo.Experiment.ListExperimentIDsByDevice(ctx, device.DeviceID)
	if err != nil {
		s.logger.Error("查询设备关联实验失败", zap.Error(err))
		return nil, err
	}
	experimentSet := make(map[string]bool, len(sourceExperiments))
	for _, id := range sourceExperiments {
		experimentSet[id] = true
	}

	type scored struct {
		device *model.Device
		ratio  float64
	}
	nameMatches := make([]scored, 0)
	remaining := make([]*model.Device, 0)
	for _, candidate := range candidates {
		if ratio := nameSimilarity(device.Name, candidate.Name); ratio > 0.5 {
			nameMatches = append(nameMatches, scored{device: candidate, ratio: ratio})
		} else {
			remaining = append(remaining, candidate)
		}
	}
	sort.SliceStable(nameMatches, func(i, j int) bool {
		return nameMatches[i].ratio > nameMatches[j].ratio
	})

	similar := make([]dto.SimilarDevice, 0)
	listed := make(map[string]bool)

	for _, match := range nameMatches {
		pct := math.Round(match.ratio*10000) / 100
		similar = append(similar, dto.SimilarDevice{
			DeviceSummary:   summarize(match.device),
			MatchPercentage: &pct,
			MatchReason:     "similar_name",
		})
		listed[match.device.DeviceID] = true
	}

	// 其次：与源设备共用实验的设备
	sharedLeft := make([]*model.Device, 0)
	for _, candidate := range remaining {
		if listed[candidate.DeviceID] {
			continue
		}
		candidateExperiments, err := s.repo.Experiment.ListExperimentIDsByDevice(ctx, candidate.DeviceID)
		if err != nil {
			s.logger.Error("查询候选设备关联实验失败", zap.Error(err))
			return nil, err
		}
		shares := false
		for _, id := range candidateExperiments {
			if experimentSet[id] {
				shares = true
				break
			}
		}
		if shares {
			similar = append(similar, dto.SimilarDevice{
				DeviceSummary: summarize(candidate),
				MatchReason:   "shared_experiment",
			})
			listed[candidate.DeviceID] = true
		} else {
			sharedLeft = append(sharedLeft, candidate)
		}
	}

	// 最后：源设备确有关联实验时，补充其余同类同用途设备
	if len(sourceExperiments) > 0 {
		for _, candidate := range sharedLeft {
			if listed[candidate.DeviceID] {
				continue
			}
			similar = append(similar, dto.SimilarDevice{
				DeviceSummary: summarize(candidate),
				MatchReason:   "same_category",
			})
			listed[candidate.DeviceID] = true
		}
	}

	return &dto.DeviceSuggestionResponse{
		Device:                summarize(device),
		UseRecommendations:    device.UseRecommendations,
		SafetyRecommendations: device.SafetyRecommendations,
		SimilarDevices:        similar,
	}, nil
}

func summarize(device *model.Device) dto.DeviceSummary {
	return dto.DeviceSummary{
		DeviceID:       device.DeviceID,
		Name:           device.Name,
		CategoryName:   device.CategoryName,
		JobDescription: device.JobDescription,
		Status:         device.Status,
	}
}
