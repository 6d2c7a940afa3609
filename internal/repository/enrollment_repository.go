package repository

import (
	"hr_training_backend/internal/model"

	"gorm.io/gorm"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

func (r *EnrollmentRepository) Create(e *model.Enrollment) error {
	return r.DB.Create(e).Error
}

func (r *EnrollmentRepository) FindByID(id uint) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.DB.Preload("Module").First(&e, id).Error
	return &e, err
}

func (r *EnrollmentRepository) FindByUserAndModule(userID, moduleID uint) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.DB.Where("user_id = ? AND module_id = ?", userID, moduleID).First(&e).Error
	return &e, err
}

func (r *EnrollmentRepository) Update(e *model.Enrollment) error {
	return r.DB.Save(e).Error
}

func (r *EnrollmentRepository) ListByUser(userID uint) ([]model.Enrollment, error) {
	var es []model.Enrollment
	err := r.DB.Preload("Module").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&es).Error
	return es, err
}

func (r *EnrollmentRepository) ListByModule(moduleID uint) ([]model.Enrollment, error) {
	var es []model.Enrollment
	err := r.DB.Where("module_id = ?", moduleID).Find(&es).Error
	return es, err
}

func (r *EnrollmentRepository) MarkLessonCompleted(enrollmentID, lessonID uint) error {
	lc := &model.LessonCompletion{
		EnrollmentID: enrollmentID,
		LessonID:     lessonID,
	}
	// 重复完成同一课时不算错误
	err := r.DB.Create(lc).Error
	if err != nil && r.DB.Where("enrollment_id = ? AND lesson_id = ?", enrollmentID, lessonID).
		First(&model.LessonCompletion{}).Error == nil {
		return nil
	}
	return err
}

func (r *EnrollmentRepository) CountCompletedLessons(enrollmentID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.LessonCompletion{}).
		Where("enrollment_id = ?", enrollmentID).
		Count(&count).Error
	return count, err
}

// ModuleStats 模块维度的报名聚合
type ModuleStats struct {
	ModuleID    uint    `json:"moduleId"`
	Enrolled    int64   `json:"enrolled"`
	Completed   int64   `json:"completed"`
	AvgProgress float64 `json:"avgProgress"`
	AvgScore    float64 `json:"avgScore"`
}

func (r *EnrollmentRepository) StatsByModule(moduleID uint) (*ModuleStats, error) {
	stats := &ModuleStats{ModuleID: moduleID}

	err := r.DB.Model(&model.Enrollment{}).
		Where("module_id = ?", moduleID).
		Count(&stats.Enrolled).Error
	if err != nil {
		return nil, err
	}

	err = r.DB.Model(&model.Enrollment{}).
		Where("module_id = ? AND status = ?", moduleID, model.Completed).
		Count(&stats.Completed).Error
	if err != nil {
		return nil, err
	}

	row := r.DB.Model(&model.Enrollment{}).
		Where("module_id = ?", moduleID).
		Select("COALESCE(AVG(progress), 0), COALESCE(AVG(score), 0)").
		Row()
	if err := row.Scan(&stats.AvgProgress, &stats.AvgScore); err != nil {
		return nil, err
	}

	return stats, nil
}

func (r *EnrollmentRepository) CountByStatus(userID uint, status model.EnrollmentStatus) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Enrollment{}).
		Where("user_id = ? AND status = ?", userID, status).
		Count(&count).Error
	return count, err
}
