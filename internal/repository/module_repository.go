package repository

import (
	"hr_training_backend/internal/model"

	"gorm.io/gorm"
)

type ModuleRepository struct {
	DB *gorm.DB
}

func NewModuleRepository(db *gorm.DB) *ModuleRepository {
	return &ModuleRepository{DB: db}
}

func (r *ModuleRepository) Create(m *model.TrainingModule) error {
	return r.DB.Create(m).Error
}

func (r *ModuleRepository) FindByID(id uint) (*model.TrainingModule, error) {
	var m model.TrainingModule
	err := r.DB.Preload("Lessons", func(db *gorm.DB) *gorm.DB {
		return db.Order("lessons.order ASC")
	}).Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("quiz_questions.order ASC")
	}).First(&m, id).Error
	return &m, err
}

func (r *ModuleRepository) Update(m *model.TrainingModule) error {
	return r.DB.Save(m).Error
}

func (r *ModuleRepository) Delete(id uint) error {
	return r.DB.Delete(&model.TrainingModule{}, id).Error
}

func (r *ModuleRepository) SetPublished(id uint, published bool) error {
	return r.DB.Model(&model.TrainingModule{}).
		Where("id = ?", id).
		Update("published", published).
		Error
}

func (r *ModuleRepository) ListAll() ([]model.TrainingModule, error) {
	var modules []model.TrainingModule
	err := r.DB.Order("created_at DESC").Find(&modules).Error
	return modules, err
}

func (r *ModuleRepository) ListPublished() ([]model.TrainingModule, error) {
	var modules []model.TrainingModule
	err := r.DB.Where("published = ?", true).
		Order("created_at DESC").
		Find(&modules).Error
	return modules, err
}

// SearchContent 按关键词检索模块标题/描述/正文，用于问答上下文
func (r *ModuleRepository) SearchContent(keyword string, limit int) ([]model.TrainingModule, error) {
	var modules []model.TrainingModule
	like := "%" + keyword + "%"
	err := r.DB.Where("published = ?", true).
		Where("title LIKE ? OR description LIKE ? OR content LIKE ?", like, like, like).
		Limit(limit).
		Find(&modules).Error
	return modules, err
}

func (r *ModuleRepository) CreateLesson(l *model.Lesson) error {
	return r.DB.Create(l).Error
}

func (r *ModuleRepository) FindLessonByID(id uint) (*model.Lesson, error) {
	var l model.Lesson
	err := r.DB.First(&l, id).Error
	return &l, err
}

func (r *ModuleRepository) CountLessons(moduleID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Lesson{}).
		Where("module_id = ?", moduleID).
		Count(&count).Error
	return count, err
}

func (r *ModuleRepository) CreateQuestion(q *model.QuizQuestion) error {
	return r.DB.Create(q).Error
}

func (r *ModuleRepository) CreateQuestions(qs []model.QuizQuestion) error {
	if len(qs) == 0 {
		return nil
	}
	return r.DB.Create(&qs).Error
}

func (r *ModuleRepository) FindQuestionByID(id uint) (*model.QuizQuestion, error) {
	var q model.QuizQuestion
	err := r.DB.First(&q, id).Error
	return &q, err
}

func (r *ModuleRepository) ListQuestions(moduleID uint) ([]model.QuizQuestion, error) {
	var qs []model.QuizQuestion
	err := r.DB.Where("module_id = ?", moduleID).
		Order("`order` ASC").
		Find(&qs).Error
	return qs, err
}

func (r *ModuleRepository) DeleteQuestion(id uint) error {
	return r.DB.Delete(&model.QuizQuestion{}, id).Error
}
