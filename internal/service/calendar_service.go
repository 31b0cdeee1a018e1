package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nourhan03/Physics-Lab-P2/internal/repository"
)

// CalendarService 实验室预约日历订阅业务接口
//
// 输出标准 iCalendar 文本，供日历客户端订阅实验室的有效预约。
type CalendarService interface {
	// LabCalendar 生成实验室未来预约的 ICS 日历
	LabCalendar(ctx context.Context, labID string) (string, error)
}

type calendarService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewCalendarService 创建 CalendarService 实例
func NewCalendarService(repo *repository.Repository, logger *zap.Logger) CalendarService {
	return &calendarService{repo: repo, logger: logger, now: time.Now}
}

func (s *calendarService) LabCalendar(ctx context.Context, labID string) (string, error) {
	lab, err := s.repo.Laboratory.GetByID(ctx, labID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrLabNotFound
		}
		s.logger.Error("查询实验室失败", zap.Error(err))
		return "", err
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	reservations, err := s.repo.Reservation.ListAllowedByLab(ctx, labID, today)
	if err != nil {
		s.logger.Error("查询实验室预约失败", zap.Error(err))
		return "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//physics-lab//reservation-calendar//ZH")
	cal.SetName(fmt.Sprintf("%s 预约日历", lab.Name))

	for _, reservation := range reservations {
		start, err := combineDateTime(reservation.Date, reservation.StartTime)
		if err != nil {
			s.logger.Warn("预约时刻非法，跳过日历事件",
				zap.String("reservation_id", reservation.ReservationID))
			continue
		}
		end, err := combineDateTime(reservation.Date, reservation.EndTime)
		if err != nil {
			s.logger.Warn("预约时刻非法，跳过日历事件",
				zap.String("reservation_id", reservation.ReservationID))
			continue
		}

		event := cal.AddEvent(fmt.Sprintf("%s@physics-lab", reservation.ReservationID))
		event.SetCreatedTime(reservation.CreatedAt)
		event.SetDtStampTime(now)
		event.SetStartAt(start)
		event.SetEndAt(end)
		summary := lab.Name
		if reservation.User != nil {
			summary = fmt.Sprintf("%s - %s", lab.Name, reservation.User.Name)
		}
		event.SetSummary(summary)
		if reservation.Purpose != "" {
			event.SetDescription(reservation.Purpose)
		}
	}

	return cal.Serialize(), nil
}
