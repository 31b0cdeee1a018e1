package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/nourhan03/Physics-Lab-P2/internal/service"
	"github.com/nourhan03/Physics-Lab-P2/pkg/response"
)

// ReplacementHandler 设备更换评估 HTTP 处理器
type ReplacementHandler struct {
	replacementSvc service.ReplacementService
}

// NewReplacementHandler 创建 ReplacementHandler
func NewReplacementHandler(replacementSvc service.ReplacementService) *ReplacementHandler {
	return &ReplacementHandler{replacementSvc: replacementSvc}
}

// Evaluate 设备更换评估报告
// GET /api/v1/devices/replacement
func (h *ReplacementHandler) Evaluate(c *gin.Context) {
	result, err := h.replacementSvc.EvaluateReplacements(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}
