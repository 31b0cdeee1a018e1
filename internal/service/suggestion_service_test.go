package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/nourhan03/Physics-Lab-P2/internal/model"
)

func newSuggestionFixture() (*suggestionService, *mockRepos) {
	repo, mocks := newMockRepository()
	svc := &suggestionService{repo: repo, logger: zap.NewNop()}
	return svc, mocks
}

func TestNameSimilarity(t *testing.T) {
	if got := nameSimilarity("Laser-2000", "Laser-2000"); got != 1 {
		t.Errorf("相同名称相似度应为 1, got %v", got)
	}
	if got := nameSimilarity("Laser-2000", "laser-2000 "); got != 1 {
		t.Errorf("大小写与空白不应影响相似度, got %v", got)
	}
	if got := nameSimilarity("Laser-2000", "Laser-3000"); got < 0.85 {
		t.Errorf("仅一位差异相似度应较高, got %v", got)
	}
	if got := nameSimilarity("Laser", "Microscope"); got > 0.5 {
		t.Errorf("无关名称相似度应较低, got %v", got)
	}
	if got := nameSimilarity("", ""); got != 1 {
		t.Errorf("空名称对空名称应为 1, got %v", got)
	}
}

func TestSuggestAlternatives(t *testing.T) {
	svc, mocks := newSuggestionFixture()

	mocks.devices.add(&model.Device{
		DeviceID: "dev-src", Name: "Laser-2000", Status: model.StatusAvailable,
		CategoryName: "激光器", JobDescription: "光谱分析",
		UseRecommendations:    "先预热 15 分钟",
		SafetyRecommendations: "佩戴护目镜",
	})
	// 名称高度相似的候选
	mocks.devices.add(&model.Device{
		DeviceID: "dev-name", Name: "Laser-3000", Status: model.StatusAvailable,
		CategoryName: "激光器", JobDescription: "光谱分析",
	})
	// 名称无关但共用实验的候选
	mocks.devices.add(&model.Device{
		DeviceID: "dev-shared", Name: "BeamBox", Status: model.StatusAvailable,
		CategoryName: "激光器", JobDescription: "光谱分析",
	})
	// 名称无关也不共用实验的候选
	mocks.devices.add(&model.Device{
		DeviceID: "dev-rest", Name: "PhotonMax", Status: model.StatusAvailable,
		CategoryName: "激光器", JobDescription: "光谱分析",
	})
	// 维护中的候选应被排除
	mocks.devices.add(&model.Device{
		DeviceID: "dev-down", Name: "Laser-2001", Status: model.StatusUnderMaintenance,
		CategoryName: "激光器", JobDescription: "光谱分析",
	})
	// 类别不同的设备应被排除
	mocks.devices.add(&model.Device{
		DeviceID: "dev-other", Name: "Laser-2002", Status: model.StatusAvailable,
		CategoryName: "显微镜", JobDescription: "光谱分析",
	})

	mocks.experiments.links = []*model.ExperimentDevice{
		{ExperimentID: "exp-1", DeviceID: "dev-src"},
		{ExperimentID: "exp-1", DeviceID: "dev-shared"},
	}

	resp, err := svc.SuggestAlternatives(context.Background(), "dev-src")
	if err != nil {
		t.Fatalf("查询建议失败: %v", err)
	}
	if resp.Device.DeviceID != "dev-src" {
		t.Errorf("源设备错误: %s", resp.Device.DeviceID)
	}
	if resp.UseRecommendations != "先预热 15 分钟" || resp.SafetyRecommendations != "佩戴护目镜" {
		t.Error("使用与安全建议应原样返回")
	}

	if len(resp.SimilarDevices) != 3 {
		t.Fatalf("应有 3 台相似设备, got %d", len(resp.SimilarDevices))
	}
	first := resp.SimilarDevices[0]
	if first.DeviceID != "dev-name" || first.MatchReason != "similar_name" {
		t.Errorf("首位应为名称相似设备, got %s/%s", first.DeviceID, first.MatchReason)
	}
	if first.MatchPercentage == nil || *first.MatchPercentage <= 50 {
		t.Errorf("名称相似度应大于 50%%, got %v", first.MatchPercentage)
	}
	if resp.SimilarDevices[1].DeviceID != "dev-shared" || resp.SimilarDevices[1].MatchReason != "shared_experiment" {
		t.Errorf("次位应为共用实验设备, got %s/%s",
			resp.SimilarDevices[1].DeviceID, resp.SimilarDevices[1].MatchReason)
	}
	if resp.SimilarDevices[2].DeviceID != "dev-rest" || resp.SimilarDevices[2].MatchReason != "same_category" {
		t.Errorf("末位应为其余同类设备, got %s/%s",
			resp.SimilarDevices[2].DeviceID, resp.SimilarDevices[2].MatchReason)
	}

	for _, similar := range resp.SimilarDevices {
		if similar.DeviceID == "dev-down" || similar.DeviceID == "dev-other" {
			t.Errorf("设备 %s 不应出现在建议中", similar.DeviceID)
		}
	}
}

func TestSuggestAlternatives_NoExperimentsSkipsRest(t *testing.T) {
	svc, mocks := newSuggestionFixture()

	mocks.devices.add(&model.Device{
		DeviceID: "dev-src", Name: "Laser-2000", Status: model.StatusAvailable,
		CategoryName: "激光器", JobDescription: "光谱分析",
	})
	mocks.devices.add(&model.Device{
		DeviceID: "dev-rest", Name: "PhotonMax", Status: model.StatusAvailable,
		CategoryName: "激光器", JobDescription: "光谱分析",
	})

	resp, err := svc.SuggestAlternatives(context.Background(), "dev-src")
	if err != nil {
		t.Fatalf("查询建议失败: %v", err)
	}
	// 源设备无关联实验时，不补充"其余同类"候选
	if len(resp.SimilarDevices) != 0 {
		t.Errorf("不应有任何建议, got %d", len(resp.SimilarDevices))
	}
}

func TestSuggestAlternatives_NotFound(t *testing.T) {
	svc, _ := newSuggestionFixture()
	_, err := svc.SuggestAlternatives(context.Background(), "missing")
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("应返回 ErrDeviceNotFound, got %v", err)
	}
}
