package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/nourhan03/Physics-Lab-P2/internal/service"
	"github.com/nourhan03/Physics-Lab-P2/pkg/response"
)

// validForecastPriorities 备件需求过滤允许的优先级取值
var validForecastPriorities = map[string]bool{
	"high": true, "medium": true, "low": true,
}

// validForecastReasons 备件需求过滤允许的原因取值
var validForecastReasons = map[string]bool{
	service.ReasonLowStock:            true,
	service.ReasonExpiringSoon:        true,
	service.ReasonHighConsumption:     true,
	service.ReasonUpcomingMaintenance: true,
}

// SparePartHandler 备件需求预测 HTTP 处理器
type SparePartHandler struct {
	sparePartSvc service.SparePartService
}

// NewSparePartHandler 创建 SparePartHandler
func NewSparePartHandler(sparePartSvc service.SparePartService) *SparePartHandler {
	return &SparePartHandler{sparePartSvc: sparePartSvc}
}

// Needs 备件需求预测
// GET /api/v1/spare-parts/needs?priority=high&reason=low_stock
func (h *SparePartHandler) Needs(c *gin.Context) {
	priority := c.Query("priority")
	reason := c.Query("reason")

	if priority != "" && !validForecastPriorities[priority] {
		response.BadRequest(c, 15001, "priority 取值非法")
		return
	}
	if reason != "" && !validForecastReasons[reason] {
		response.BadRequest(c, 15002, "reason 取值非法")
		return
	}

	ctx := c.Request.Context()
	switch {
	case priority != "":
		result, err := h.sparePartSvc.ForecastByPriority(ctx, priority)
		if err != nil {
			response.InternalError(c)
			return
		}
		response.OK(c, result)
	case reason != "":
		result, err := h.sparePartSvc.ForecastByReason(ctx, reason)
		if err != nil {
			response.InternalError(c)
			return
		}
		response.OK(c, result)
	default:
		result, err := h.sparePartSvc.Forecast(ctx)
		if err != nil {
			response.InternalError(c)
			return
		}
		response.OK(c, result)
	}
}
