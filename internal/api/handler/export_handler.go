package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/nourhan03/Physics-Lab-P2/internal/service"
	"github.com/nourhan03/Physics-Lab-P2/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器（Excel 采购计划 + ICS 日历）
type ExportHandler struct {
	exportSvc   service.ExportService
	calendarSvc service.CalendarService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService, calendarSvc service.CalendarService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc, calendarSvc: calendarSvc}
}

// PurchasePlan 导出备件采购计划
// GET /api/v1/export/purchase-plan
func (h *ExportHandler) PurchasePlan(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportPurchasePlan(c.Request.Context())
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// LabCalendar 实验室预约日历订阅
// GET /api/v1/labs/:id/calendar.ics
func (h *ExportHandler) LabCalendar(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 16001, "实验室ID不能为空")
		return
	}

	calendar, err := h.calendarSvc.LabCalendar(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrLabNotFound) {
			response.NotFound(c, 16102, "实验室不存在")
			return
		}
		response.InternalError(c)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=lab_calendar.ics")
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(calendar))
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNothingToBuy):
		response.NotFound(c, 16101, "当前无需采购的备件")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}
