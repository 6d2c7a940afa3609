package repository

import (
	"hr_training_backend/internal/model"

	"gorm.io/gorm"
)

type AssessmentRepository struct {
	DB *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{DB: db}
}

func (r *AssessmentRepository) CreateSubmission(s *model.AssessmentSubmission) error {
	return r.DB.Create(s).Error
}

func (r *AssessmentRepository) FindSubmissionByID(id uint) (*model.AssessmentSubmission, error) {
	var s model.AssessmentSubmission
	err := r.DB.Preload("Answers").First(&s, id).Error
	return &s, err
}

func (r *AssessmentRepository) ListByUserAndModule(userID, moduleID uint) ([]model.AssessmentSubmission, error) {
	var subs []model.AssessmentSubmission
	err := r.DB.Where("user_id = ? AND module_id = ?", userID, moduleID).
		Order("created_at DESC").
		Find(&subs).Error
	return subs, err
}
