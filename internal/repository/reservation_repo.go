package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nourhan03/Physics-Lab-P2/internal/model"
)

// ReservationRepository 预约数据访问接口
type ReservationRepository interface {
	Create(ctx context.Context, reservation *model.Reservation) error
	// CreateBatch 批量写入同一次预约产生的多条设备预约行
	CreateBatch(ctx context.Context, reservations []*model.Reservation) error
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	Update(ctx context.Context, reservation *model.Reservation) error
	// ListAllowedByLabDate 查询指定实验室在指定日期的有效预约，可排除指定预约 ID
	ListAllowedByLabDate(ctx context.Context, labID string, date time.Time, excludeID string) ([]*model.Reservation, error)
	// ListAllowedByDeviceDate 查询指定设备在指定日期的有效预约，可排除指定预约 ID
	ListAllowedByDeviceDate(ctx context.Context, deviceID string, date time.Time, excludeID string) ([]*model.Reservation, error)
	// ListAllowedByLab 查询实验室从指定日期起的全部有效预约（日历导出用）
	ListAllowedByLab(ctx context.Context, labID string, from time.Time) ([]*model.Reservation, error)
}

type reservationRepo struct {
	db *gorm.DB
}

func NewReservationRepo(db *gorm.DB) ReservationRepository {
	return &reservationRepo{db: db}
}

func (r *reservationRepo) Create(ctx context.Context, reservation *model.Reservation) error {
	return r.db.WithContext(ctx).Create(reservation).Error
}

func (r *reservationRepo) CreateBatch(ctx context.Context, reservations []*model.Reservation) error {
	if len(reservations) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&reservations).Error
}

func (r *reservationRepo) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	var reservation model.Reservation
	if err := r.db.WithContext(ctx).Where("reservation_id = ?", id).First(&reservation).Error; err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *reservationRepo) Update(ctx context.Context, reservation *model.Reservation) error {
	return r.db.WithContext(ctx).Save(reservation).Error
}

func (r *reservationRepo) ListAllowedByLabDate(ctx context.Context, labID string, date time.Time, excludeID string) ([]*model.Reservation, error) {
	var reservations []*model.Reservation
	query := r.db.WithContext(ctx).
		Preload("User").
		Where("lab_id = ? AND date = ? AND is_allowed = ?", labID, date.Format("2006-01-02"), true)
	if excludeID != "" {
		query = query.Where("reservation_id <> ?", excludeID)
	}
	if err := query.Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}

func (r *reservationRepo) ListAllowedByDeviceDate(ctx context.Context, deviceID string, date time.Time, excludeID string) ([]*model.Reservation, error) {
	var reservations []*model.Reservation
	query := r.db.WithContext(ctx).
		Where("device_id = ? AND date = ? AND is_allowed = ?", deviceID, date.Format("2006-01-02"), true)
	if excludeID != "" {
		query = query.Where("reservation_id <> ?", excludeID)
	}
	if err := query.Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}

func (r *reservationRepo) ListAllowedByLab(ctx context.Context, labID string, from time.Time) ([]*model.Reservation, error) {
	var reservations []*model.Reservation
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("lab_id = ? AND is_allowed = ? AND date >= ?", labID, true, from.Format("2006-01-02")).
		Order("date, start_time").
		Find(&reservations).Error
	if err != nil {
		return nil, err
	}
	return reservations, nil
}
