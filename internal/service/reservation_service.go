package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nourhan03/Physics-Lab-P2/internal/dto"
	"github.com/nourhan03/Physics-Lab-P2/internal/model"
	"github.com/nourhan03/Physics-Lab-P2/internal/repository"
)

// ReservationService 预约业务接口
type ReservationService interface {
	// 创建预约（校验全链路，冲突时落拒绝记录）
	Create(ctx context.Context, req *dto.CreateReservationRequest) (*dto.ReservationResponse, error)
	// 修改预约（部分字段合并后重新校验，事务内回退旧时长）
	Update(ctx context.Context, reservationID string, req *dto.UpdateReservationRequest) (*dto.ReservationResponse, error)
}

type reservationService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewReservationService 创建 ReservationService 实例
func NewReservationService(repo *repository.Repository, logger *zap.Logger) ReservationService {
	return &reservationService{repo: repo, logger: logger, now: time.Now}
}

// ════════════════════════════════════════════════════════════
// Create — 校验链: 用户 → 实验室 → 实验 → 设备
// ════════════════════════════════════════════════════════════

func (s *reservationService) Create(ctx context.Context, req *dto.CreateReservationRequest) (*dto.ReservationResponse, error) {
	if len(req.DeviceIDs) == 0 {
		return nil, ErrNoDevicesSelected
	}

	user, err := s.validateUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if _, err := s.validateLabEligibility(ctx, req.LabID, user); err != nil {
		return nil, err
	}
	w, err := s.validateWindow(req.Date, req.StartTime, req.EndTime, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.checkLabOccupancy(ctx, req.LabID, user, w, ""); err != nil {
		return s.recordRejection(ctx, req, w, err)
	}
	experiment, err := s.validateExperiment(ctx, req.ExperimentID, req.LabID, user)
	if err != nil {
		return nil, err
	}
	devices, err := s.validateDevices(ctx, req.DeviceIDs, req.ExperimentID, w, "")
	if err != nil {
		return s.recordRejection(ctx, req, w, err)
	}

	hours := w.hours()
	rows := make([]*model.Reservation, 0, len(devices))
	for _, device := range devices {
		rows = append(rows, &model.Reservation{
			UserID:       req.UserID,
			LabID:        req.LabID,
			ExperimentID: req.ExperimentID,
			DeviceID:     device.DeviceID,
			Date:         w.date,
			StartTime:    w.startClock,
			EndTime:      w.endClock,
			Purpose:      req.Purpose,
			IsAllowed:    true,
		})
	}

	err = s.repo.Tx.Transaction(ctx, func(txRepo *repository.Repository) error {
		if err := txRepo.Reservation.CreateBatch(ctx, rows); err != nil {
			return err
		}
		lab, err := txRepo.Laboratory.GetByID(ctx, req.LabID)
		if err != nil {
			return err
		}
		lab.UsageHours += hours
		lab.TotalOperatingHours += hours
		if err := txRepo.Laboratory.Update(ctx, lab); err != nil {
			return err
		}
		for _, device := range devices {
			d, err := txRepo.Device.GetByID(ctx, device.DeviceID)
			if err != nil {
				return err
			}
			d.CurrentHour += hours
			d.TotalOperatingHours += hours
			if err := txRepo.Device.Update(ctx, d); err != nil {
				return err
			}
		}
		exp, err := txRepo.Experiment.GetByID(ctx, experiment.ExperimentID)
		if err != nil {
			return err
		}
		exp.CompletedCount++
		return txRepo.Experiment.Update(ctx, exp)
	})
	if err != nil {
		s.logger.Error("创建预约事务失败", zap.Error(err))
		return nil, err
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ReservationID)
	}
	s.logger.Info("预约创建成功",
		zap.String("user_id", req.UserID),
		zap.String("lab_id", req.LabID),
		zap.Int("devices", len(rows)),
		zap.Float64("hours", hours))

	return &dto.ReservationResponse{
		ReservationID:  ids[0],
		ReservationIDs: ids,
		Allowed:        true,
		Date:           w.date.Format(dateLayout),
		StartTime:      w.startClock,
		EndTime:        w.endClock,
		DurationHours:  hours,
	}, nil
}

// recordRejection 占用冲突时落一条拒绝留痕记录，其余错误原样返回
func (s *reservationService) recordRejection(ctx context.Context, req *dto.CreateReservationRequest, w *validatedWindow, cause error) (*dto.ReservationResponse, error) {
	if !isConflictError(cause) {
		return nil, cause
	}
	rejected := &model.Reservation{
		UserID:       req.UserID,
		LabID:        req.LabID,
		ExperimentID: req.ExperimentID,
		DeviceID:     req.DeviceIDs[0],
		Date:         w.date,
		StartTime:    w.startClock,
		EndTime:      w.endClock,
		Purpose:      req.Purpose,
		IsAllowed:    false,
	}
	if err := s.repo.Reservation.Create(ctx, rejected); err != nil {
		s.logger.Error("冲突留痕写入失败", zap.Error(err))
		return nil, cause
	}
	s.logger.Info("预约因占用冲突被拒绝",
		zap.String("user_id", req.UserID),
		zap.String("reservation_id", rejected.ReservationID),
		zap.String("cause", cause.Error()))
	return &dto.ReservationResponse{
		ReservationID: rejected.ReservationID,
		Allowed:       false,
		Date:          w.date.Format(dateLayout),
		StartTime:     w.startClock,
		EndTime:       w.endClock,
		DurationHours: w.hours(),
	}, cause
}

// ════════════════════════════════════════════════════════════
// Update — 合并字段重新校验，事务内回退旧时长再累加新时长
// ════════════════════════════════════════════════════════════

func (s *reservationService) Update(ctx context.Context, reservationID string, req *dto.UpdateReservationRequest) (*dto.ReservationResponse, error) {
	existing, err := s.repo.Reservation.GetByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		s.logger.Error("查询预约失败", zap.Error(err))
		return nil, err
	}

	labID := existing.LabID
	if req.LabID != nil {
		labID = *req.LabID
	}
	experimentID := existing.ExperimentID
	if req.ExperimentID != nil {
		experimentID = *req.ExperimentID
	}
	deviceIDs := []string{existing.DeviceID}
	if len(req.DeviceIDs) > 0 {
		deviceIDs = req.DeviceIDs
	}
	dateStr := existing.Date.Format(dateLayout)
	if req.Date != nil {
		dateStr = *req.Date
	}
	startStr := existing.StartTime
	if req.StartTime != nil {
		startStr = *req.StartTime
	}
	endStr := existing.EndTime
	if req.EndTime != nil {
		endStr = *req.EndTime
	}
	purpose := existing.Purpose
	if req.Purpose != nil {
		purpose = *req.Purpose
	}

	user, err := s.validateUser(ctx, existing.UserID)
	if err != nil {
		return nil, err
	}
	if _, err := s.validateLabEligibility(ctx, labID, user); err != nil {
		return nil, err
	}
	w, err := s.validateWindow(dateStr, startStr, endStr, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.checkLabOccupancy(ctx, labID, user, w, reservationID); err != nil {
		return nil, err
	}
	if _, err := s.validateExperiment(ctx, experimentID, labID, user); err != nil {
		return nil, err
	}
	devices, err := s.validateDevices(ctx, deviceIDs, experimentID, w, reservationID)
	if err != nil {
		return nil, err
	}

	oldStart, err := parseClock(existing.StartTime)
	if err != nil {
		return nil, err
	}
	oldEnd, err := parseClock(existing.EndTime)
	if err != nil {
		return nil, err
	}
	oldHours := durationHours(oldStart, oldEnd)
	newHours := w.hours()

	err = s.repo.Tx.Transaction(ctx, func(txRepo *repository.Repository) error {
		// 回退原记录贡献的时长与完成次数（仅原记录当初被允许时）
		if existing.IsAllowed {
			oldLab, err := txRepo.Laboratory.GetByID(ctx, existing.LabID)
			if err != nil {
				return err
			}
			oldLab.UsageHours -= oldHours
			oldLab.TotalOperatingHours -= oldHours
			if err := txRepo.Laboratory.Update(ctx, oldLab); err != nil {
				return err
			}
			oldDevice, err := txRepo.Device.GetByID(ctx, existing.DeviceID)
			if err != nil {
				return err
			}
			oldDevice.CurrentHour -= oldHours
			oldDevice.TotalOperatingHours -= oldHours
			if err := txRepo.Device.Update(ctx, oldDevice); err != nil {
				return err
			}
			oldExp, err := txRepo.Experiment.GetByID(ctx, existing.ExperimentID)
			if err != nil {
				return err
			}
			oldExp.CompletedCount--
			if err := txRepo.Experiment.Update(ctx, oldExp); err != nil {
				return err
			}
		}

		existing.LabID = labID
		existing.ExperimentID = experimentID
		existing.DeviceID = devices[0].DeviceID
		existing.Date = w.date
		existing.StartTime = w.startClock
		existing.EndTime = w.endClock
		existing.Purpose = purpose
		existing.IsAllowed = true
		if err := txRepo.Reservation.Update(ctx, existing); err != nil {
			return err
		}

		newLab, err := txRepo.Laboratory.GetByID(ctx, labID)
		if err != nil {
			return err
		}
		newLab.UsageHours += newHours
		newLab.TotalOperatingHours += newHours
		if err := txRepo.Laboratory.Update(ctx, newLab); err != nil {
			return err
		}
		newDevice, err := txRepo.Device.GetByID(ctx, devices[0].DeviceID)
		if err != nil {
			return err
		}
		newDevice.CurrentHour += newHours
		newDevice.TotalOperatingHours += newHours
		if err := txRepo.Device.Update(ctx, newDevice); err != nil {
			return err
		}
		newExp, err := txRepo.Experiment.GetByID(ctx, experimentID)
		if err != nil {
			return err
		}
		newExp.CompletedCount++
		return txRepo.Experiment.Update(ctx, newExp)
	})
	if err != nil {
		s.logger.Error("修改预约事务失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("预约修改成功",
		zap.String("reservation_id", reservationID),
		zap.Float64("old_hours", oldHours),
		zap.Float64("new_hours", newHours))

	return &dto.ReservationResponse{
		ReservationID: existing.ReservationID,
		Allowed:       true,
		Date:          w.date.Format(dateLayout),
		StartTime:     w.startClock,
		EndTime:       w.endClock,
		DurationHours: newHours,
	}, nil
}
