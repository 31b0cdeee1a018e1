package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nourhan03/Physics-Lab-P2/internal/model"
)

// ── 预约模块业务错误 ──

var (
	ErrNoDevicesSelected      = errors.New("必须至少指定一台设备")
	ErrUserNotFound           = errors.New("用户不存在")
	ErrUserTypeNotAllowed     = errors.New("该用户类型无预约权限")
	ErrLabNotFound            = errors.New("实验室不存在")
	ErrLabUnavailable         = errors.New("实验室当前不可用")
	ErrLabTypeMismatch        = errors.New("用户类型与实验室类型不匹配")
	ErrPastDate               = errors.New("预约日期不能早于今天")
	ErrInvertedInterval       = errors.New("结束时间必须晚于开始时间")
	ErrLabHeldByInstructor    = errors.New("该时段实验室已被教师占用")
	ErrLabHeldByResearcher    = errors.New("该时段实验室已被研究人员占用")
	ErrExperimentNotFound     = errors.New("实验不存在")
	ErrExperimentWrongLab     = errors.New("实验不属于该实验室")
	ErrExperimentTypeMismatch = errors.New("用户类型与实验类型不匹配")
	ErrDeviceNotFound         = errors.New("设备不存在")
	ErrDeviceNotLinked        = errors.New("设备未关联该实验")
	ErrDeviceUnavailable      = errors.New("设备当前不可用")
	ErrDeviceAlreadyBooked    = errors.New("该时段设备已被预约")
	ErrDeviceInMaintenance    = errors.New("该日期设备处于维护中")
	ErrReservationNotFound    = errors.New("预约记录不存在")
)

// validatedWindow 校验通过后的预约时间窗
type validatedWindow struct {
	date       time.Time
	startClock string
	endClock   string
	startMin   int
	endMin     int
}

func (w validatedWindow) hours() float64 {
	return durationHours(w.startMin, w.endMin)
}

// validateWindow 校验日期与时段本身的合法性
func (s *reservationService) validateWindow(dateStr, startStr, endStr string, now time.Time) (*validatedWindow, error) {
	date, err := parseReservationDate(dateStr)
	if err != nil {
		return nil, err
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, date.Location())
	if date.Before(today) {
		return nil, ErrPastDate
	}
	startMin, err := parseClock(startStr)
	if err != nil {
		return nil, err
	}
	endMin, err := parseClock(endStr)
	if err != nil {
		return nil, err
	}
	if endMin <= startMin {
		return nil, ErrInvertedInterval
	}
	return &validatedWindow{
		date:       date,
		startClock: startStr,
		endClock:   endStr,
		startMin:   startMin,
		endMin:     endMin,
	}, nil
}

// validateUser 校验用户存在且具备预约权限
func (s *reservationService) validateUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	if !user.CanReserve() {
		return nil, ErrUserTypeNotAllowed
	}
	return user, nil
}

// validateLabEligibility 校验实验室存在、可用且类型与用户匹配；
// 不涉及时段，占用规则由 checkLabOccupancy 单独校验
func (s *reservationService) validateLabEligibility(ctx context.Context, labID string, user *model.User) (*model.Laboratory, error) {
	lab, err := s.repo.Laboratory.GetByID(ctx, labID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLabNotFound
		}
		s.logger.Error("查询实验室失败", zap.Error(err))
		return nil, err
	}
	if lab.Status != model.StatusAvailable {
		return nil, ErrLabUnavailable
	}
	if user.UserType == model.UserTypeInstructor && lab.LabType != model.TypeAcademic {
		return nil, ErrLabTypeMismatch
	}
	if user.UserType == model.UserTypeResearcher && lab.LabType != model.TypeResearch {
		return nil, ErrLabTypeMismatch
	}
	return lab, nil
}

// checkLabOccupancy 校验实验室时段占用规则
//
// 占用规则：持有者为教师时阻塞所有人；请求者为教师且持有者为研究人员
// 时同样阻塞；研究人员之间允许同时段共用实验室。
func (s *reservationService) checkLabOccupancy(ctx context.Context, labID string, user *model.User, w *validatedWindow, excludeReservationID string) error {
	existing, err := s.repo.Reservation.ListAllowedByLabDate(ctx, labID, w.date, excludeReservationID)
	if err != nil {
		s.logger.Error("查询实验室占用失败", zap.Error(err))
		return err
	}
	for _, other := range existing {
		otherStart, err := parseClock(other.StartTime)
		if err != nil {
			continue
		}
		otherEnd, err := parseClock(other.EndTime)
		if err != nil {
			continue
		}
		if !intervalsOverlap(w.startMin, w.endMin, otherStart, otherEnd) {
			continue
		}
		holderType := ""
		if other.User != nil {
			holderType = other.User.UserType
		}
		if holderType == model.UserTypeInstructor {
			return ErrLabHeldByInstructor
		}
		if user.UserType == model.UserTypeInstructor && holderType == model.UserTypeResearcher {
			return ErrLabHeldByResearcher
		}
		// 研究人员之间允许共用同一实验室时段
	}
	return nil
}

// validateExperiment 校验实验归属与类型匹配
func (s *reservationService) validateExperiment(ctx context.Context, experimentID, labID string, user *model.User) (*model.Experiment, error) {
	experiment, err := s.repo.Experiment.GetByID(ctx, experimentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExperimentNotFound
		}
		s.logger.Error("查询实验失败", zap.Error(err))
		return nil, err
	}
	if experiment.LabID != labID {
		return nil, ErrExperimentWrongLab
	}
	if user.UserType == model.UserTypeInstructor && experiment.ExperimentType != model.TypeAcademic {
		return nil, ErrExperimentTypeMismatch
	}
	if user.UserType == model.UserTypeResearcher && experiment.ExperimentType != model.TypeResearch {
		return nil, ErrExperimentTypeMismatch
	}
	return experiment, nil
}

// validateDevices 逐台校验设备：存在、已关联实验、状态可用、时段未被占用、当日无维护
func (s *reservationService) validateDevices(ctx context.Context, deviceIDs []string, experimentID string, w *validatedWindow, excludeReservationID string) ([]*model.Device, error) {
	devices := make([]*model.Device, 0, len(deviceIDs))
	for _, deviceID := range deviceIDs {
		device, err := s.repo.Device.GetByID(ctx, deviceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrDeviceNotFound
			}
			s.logger.Error("查询设备失败", zap.Error(err))
			return nil, err
		}
		if _, err := s.repo.Experiment.GetDeviceLink(ctx, experimentID, deviceID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrDeviceNotLinked
			}
			s.logger.Error("查询实验设备关联失败", zap.Error(err))
			return nil, err
		}
		if device.Status != model.StatusAvailable {
			return nil, ErrDeviceUnavailable
		}

		existing, err := s.repo.Reservation.ListAllowedByDeviceDate(ctx, deviceID, w.date, excludeReservationID)
		if err != nil {
			s.logger.Error("查询设备占用失败", zap.Error(err))
			return nil, err
		}
		for _, other := range existing {
			otherStart, perr := parseClock(other.StartTime)
			if perr != nil {
				continue
			}
			otherEnd, perr := parseClock(other.EndTime)
			if perr != nil {
				continue
			}
			if intervalCovered(w.startMin, w.endMin, otherStart, otherEnd) {
				return nil, ErrDeviceAlreadyBooked
			}
		}

		// 维护查询失败时不阻塞预约，仅记录告警
		active, err := s.repo.Maintenance.CountActiveOnDate(ctx, deviceID, w.date)
		if err != nil {
			s.logger.Warn("查询设备维护状态失败，跳过维护校验",
				zap.String("device_id", deviceID), zap.Error(err))
		} else if active > 0 {
			return nil, ErrDeviceInMaintenance
		}

		devices = append(devices, device)
	}
	return devices, nil
}

// isConflictError 判定是否为需要留痕的占用冲突
func isConflictError(err error) bool {
	return errors.Is(err, ErrLabHeldByInstructor) ||
		errors.Is(err, ErrLabHeldByResearcher) ||
		errors.Is(err, ErrDeviceAlreadyBooked)
}
