package repository

import (
	"hr_training_backend/internal/model"

	"gorm.io/gorm"
)

type MaterialRepository struct {
	DB *gorm.DB
}

func NewMaterialRepository(db *gorm.DB) *MaterialRepository {
	return &MaterialRepository{DB: db}
}

func (r *MaterialRepository) Create(m *model.Material) error {
	return r.DB.Create(m).Error
}

func (r *MaterialRepository) FindByID(id uint) (*model.Material, error) {
	var m model.Material
	err := r.DB.First(&m, id).Error
	return &m, err
}

func (r *MaterialRepository) ListByModule(moduleID uint) ([]model.Material, error) {
	var ms []model.Material
	err := r.DB.Where("module_id = ?", moduleID).
		Order("created_at DESC").
		Find(&ms).Error
	return ms, err
}

func (r *MaterialRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Material{}, id).Error
}
