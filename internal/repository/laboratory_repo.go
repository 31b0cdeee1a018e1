package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nourhan03/Physics-Lab-P2/internal/model"
)

// LaboratoryRepository 实验室数据访问接口
type LaboratoryRepository interface {
	GetByID(ctx context.Context, id string) (*model.Laboratory, error)
	Update(ctx context.Context, lab *model.Laboratory) error
}

type laboratoryRepo struct {
	db *gorm.DB
}

func NewLaboratoryRepo(db *gorm.DB) LaboratoryRepository {
	return &laboratoryRepo{db: db}
}

func (r *laboratoryRepo) GetByID(ctx context.Context, id string) (*model.Laboratory, error) {
	var lab model.Laboratory
	if err := r.db.WithContext(ctx).Where("lab_id = ?", id).First(&lab).Error; err != nil {
		return nil, err
	}
	return &lab, nil
}

func (r *laboratoryRepo) Update(ctx context.Context, lab *model.Laboratory) error {
	return r.db.WithContext(ctx).Save(lab).Error
}
