package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nourhan03/Physics-Lab-P2/internal/dto"
	"github.com/nourhan03/Physics-Lab-P2/internal/service"
	"github.com/nourhan03/Physics-Lab-P2/pkg/response"
)

// ReservationHandler 预约模块 HTTP 处理器
type ReservationHandler struct {
	reservationSvc service.ReservationService
}

// NewReservationHandler 创建 ReservationHandler
func NewReservationHandler(reservationSvc service.ReservationService) *ReservationHandler {
	return &ReservationHandler{reservationSvc: reservationSvc}
}

// Create 创建预约
// POST /api/v1/reservations
func (h *ReservationHandler) Create(c *gin.Context) {
	var req dto.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 12001, "参数校验失败")
		return
	}

	result, err := h.reservationSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleReservationError(c, err, result)
		return
	}

	response.Created(c, result)
}

// Update 修改预约
// PUT /api/v1/reservations/:id
func (h *ReservationHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 12001, "预约ID不能为空")
		return
	}

	var req dto.UpdateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 12001, "参数校验失败")
		return
	}

	result, err := h.reservationSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleReservationError(c, err, nil)
		return
	}

	response.OK(c, result)
}

// handleReservationError 业务错误到响应码的映射；
// 占用冲突带留痕记录 ID 时通过 details 一并返回
func (h *ReservationHandler) handleReservationError(c *gin.Context, err error, rejected *dto.ReservationResponse) {
	auditID := ""
	if rejected != nil {
		auditID = rejected.ReservationID
	}

	switch {
	case errors.Is(err, service.ErrNoDevicesSelected):
		response.BadRequest(c, 12005, "设备列表不能为空")
	case errors.Is(err, service.ErrMalformedDateTime):
		response.BadRequest(c, 12002, "日期或时间格式非法")
	case errors.Is(err, service.ErrPastDate):
		response.BadRequest(c, 12003, "预约日期不能早于今天")
	case errors.Is(err, service.ErrInvertedInterval):
		response.BadRequest(c, 12004, "结束时间必须晚于开始时间")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12101, "用户不存在")
	case errors.Is(err, service.ErrUserTypeNotAllowed):
		response.Forbidden(c, 12102, "该用户类型无预约权限")
	case errors.Is(err, service.ErrLabNotFound):
		response.NotFound(c, 12103, "实验室不存在")
	case errors.Is(err, service.ErrLabUnavailable):
		response.BadRequest(c, 12104, "实验室当前不可用")
	case errors.Is(err, service.ErrLabTypeMismatch):
		response.Forbidden(c, 12105, "用户类型与实验室类型不匹配")
	case errors.Is(err, service.ErrExperimentNotFound):
		response.NotFound(c, 12106, "实验不存在")
	case errors.Is(err, service.ErrExperimentWrongLab):
		response.BadRequest(c, 12107, "实验不属于该实验室")
	case errors.Is(err, service.ErrExperimentTypeMismatch):
		response.Forbidden(c, 12108, "用户类型与实验类型不匹配")
	case errors.Is(err, service.ErrDeviceNotFound):
		response.NotFound(c, 12109, "设备不存在")
	case errors.Is(err, service.ErrDeviceNotLinked):
		response.BadRequest(c, 12110, "设备未关联该实验")
	case errors.Is(err, service.ErrDeviceUnavailable):
		response.BadRequest(c, 12111, "设备当前不可用")
	case errors.Is(err, service.ErrDeviceInMaintenance):
		response.BadRequest(c, 12112, "该日期设备处于维护中")
	case errors.Is(err, service.ErrReservationNotFound):
		response.NotFound(c, 12113, "预约记录不存在")
	case errors.Is(err, service.ErrLabHeldByInstructor):
		response.ErrorWithDetails(c, http.StatusConflict, 12201, "该时段实验室已被教师占用", auditID)
	case errors.Is(err, service.ErrLabHeldByResearcher):
		response.ErrorWithDetails(c, http.StatusConflict, 12202, "该时段实验室已被研究人员占用", auditID)
	case errors.Is(err, service.ErrDeviceAlreadyBooked):
		response.ErrorWithDetails(c, http.StatusConflict, 12203, "该时段设备已被预约", auditID)
	default:
		response.InternalError(c)
	}
}
