package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/nourhan03/Physics-Lab-P2/internal/service"
	"github.com/nourhan03/Physics-Lab-P2/pkg/response"
)

// DeviceHandler 设备建议模块 HTTP 处理器
type DeviceHandler struct {
	suggestionSvc service.SuggestionService
}

// NewDeviceHandler 创建 DeviceHandler
func NewDeviceHandler(suggestionSvc service.SuggestionService) *DeviceHandler {
	return &DeviceHandler{suggestionSvc: suggestionSvc}
}

// Suggestions 设备使用建议与可替代设备
// GET /api/v1/devices/:id/suggestions
func (h *DeviceHandler) Suggestions(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 14001, "设备ID不能为空")
		return
	}

	result, err := h.suggestionSvc.SuggestAlternatives(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrDeviceNotFound) {
			response.NotFound(c, 14101, "设备不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}
