package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/nourhan03/Physics-Lab-P2/internal/service"
	"github.com/nourhan03/Physics-Lab-P2/pkg/response"
)

// MaintenanceHandler 维护预测模块 HTTP 处理器
type MaintenanceHandler struct {
	maintenanceSvc service.MaintenanceService
}

// NewMaintenanceHandler 创建 MaintenanceHandler
func NewMaintenanceHandler(maintenanceSvc service.MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{maintenanceSvc: maintenanceSvc}
}

// Predictions 维护预测报告
// GET /api/v1/maintenance/predictions
func (h *MaintenanceHandler) Predictions(c *gin.Context) {
	result, err := h.maintenanceSvc.PredictMaintenance(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// Needed 需维护设备清单
// GET /api/v1/maintenance/needed
func (h *MaintenanceHandler) Needed(c *gin.Context) {
	result, err := h.maintenanceSvc.DevicesNeedingMaintenance(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}
