package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNothingToBuy = errors.New("当前无需采购的备件")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 采购计划导出业务接口
//
// 设计说明：
//   - 采购计划由备件需求预测结果生成，一个 Sheet 按优先级排序列出
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportPurchasePlan 导出备件采购计划为 Excel
	ExportPurchasePlan(ctx context.Context) (*bytes.Buffer, string, error)
}

type exportService struct {
	spareParts SparePartService
	logger     *zap.Logger
	now        func() time.Time
}

// NewExportService 创建 ExportService 实例
func NewExportService(spareParts SparePartService, logger *zap.Logger) ExportService {
	return &exportService{spareParts: spareParts, logger: logger, now: time.Now}
}

// ═══════════════════════════════════════════════════════════
// ExportPurchasePlan — 导出备件采购计划为 Excel
// ═══════════════════════════════════════════════════════════

var purchasePlanHeaders = []string{
	"备件名称", "需求原因", "优先级", "当前库存", "最低库存",
	"建议采购量", "单位", "预计费用", "建议处理天数",
}

var priorityLabels = map[string]string{
	"high":   "高",
	"medium": "中",
	"low":    "低",
}

var reasonLabels = map[string]string{
	ReasonLowStock:            "库存不足",
	ReasonExpiringSoon:        "临近过期",
	ReasonHighConsumption:     "消耗过快",
	ReasonUpcomingMaintenance: "近期维护需要",
}

func (s *exportService) ExportPurchasePlan(ctx context.Context) (*bytes.Buffer, string, error) {
	forecast, err := s.spareParts.Forecast(ctx)
	if err != nil {
		return nil, "", err
	}
	if len(forecast.Needs) == 0 {
		return nil, "", ErrExportNothingToBuy
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "采购计划"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	for i, header := range purchasePlanHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for rowIdx, need := range forecast.Needs {
		row := rowIdx + 2
		values := []interface{}{
			need.Name,
			labelOr(reasonLabels, need.Reason),
			labelOr(priorityLabels, need.Priority),
			need.Quantity,
			need.MinimumQuantity,
			need.SuggestedQuantity,
			need.Unit,
			need.TotalCostEstimation,
			need.DaysToAction,
		}
		for colIdx, value := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, row)
			f.SetCellValue(sheet, cell, value)
		}
	}

	// 汇总行
	summaryRow := len(forecast.Needs) + 3
	cell, _ := excelize.CoordinatesToCellName(1, summaryRow)
	f.SetCellValue(sheet, cell, fmt.Sprintf("共 %d 项，高优先级 %d 项，预计总费用 %s",
		forecast.Summary.TotalParts,
		forecast.Summary.HighPriorityCount,
		forecast.Summary.TotalEstimatedCost))

	f.SetColWidth(sheet, "A", "A", 24)
	f.SetColWidth(sheet, "B", "I", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("写入 Excel 缓冲失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("purchase_plan_%s.xlsx", s.now().Format("20060102"))
	return buf, filename, nil
}

func labelOr(labels map[string]string, key string) string {
	if label, ok := labels[key]; ok {
		return label
	}
	return key
}
