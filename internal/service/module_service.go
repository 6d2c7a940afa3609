package service

import (
	"context"
	"encoding/json"

	"hr_training_backend/internal/model"
	"hr_training_backend/internal/util"
	"hr_training_backend/pkg/logger"

	"go.uber.org/zap"
)

// moduleStore 模块持久化接口
type moduleStore interface {
	Create(m *model.TrainingModule) error
	FindByID(id uint) (*model.TrainingModule, error)
	Update(m *model.TrainingModule) error
	Delete(id uint) error
	SetPublished(id uint, published bool) error
	ListAll() ([]model.TrainingModule, error)
	ListPublished() ([]model.TrainingModule, error)
	CreateLesson(l *model.Lesson) error
	CreateQuestion(q *model.QuizQuestion) error
	DeleteQuestion(id uint) error
}

type ModuleService struct {
	repo   moduleStore
	mirror Mirror
}

func NewModuleService(repo moduleStore, mirror Mirror) *ModuleService {
	return &ModuleService{repo: repo, mirror: mirror}
}

type ModuleRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Category    string `json:"category"`
	Duration    int    `json:"duration"`
}

func (s *ModuleService) Create(ctx context.Context, authorID uint, req ModuleRequest) (*model.TrainingModule, error) {
	m := &model.TrainingModule{
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		Category:    req.Category,
		Duration:    req.Duration,
		AuthorID:    authorID,
	}
	if err := s.repo.Create(m); err != nil {
		return nil, err
	}
	s.refreshMirror(ctx)
	return m, nil
}

func (s *ModuleService) Update(ctx context.Context, id uint, req ModuleRequest) (*model.TrainingModule, error) {
	m, err := s.repo.FindByID(id)
	if err != nil {
		return nil, util.ErrModuleNotFound
	}

	m.Title = req.Title
	m.Description = req.Description
	m.Content = req.Content
	m.Category = req.Category
	m.Duration = req.Duration

	if err := s.repo.Update(m); err != nil {
		return nil, err
	}
	s.refreshMirror(ctx)
	return m, nil
}

func (s *ModuleService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.refreshMirror(ctx)
	return nil
}

func (s *ModuleService) SetPublished(ctx context.Context, id uint, published bool) error {
	if err := s.repo.SetPublished(id, published); err != nil {
		return err
	}
	s.refreshMirror(ctx)
	return nil
}

func (s *ModuleService) GetByID(id uint) (*model.TrainingModule, error) {
	return s.repo.FindByID(id)
}

func (s *ModuleService) ListAll() ([]model.TrainingModule, error) {
	return s.repo.ListAll()
}

// ListPublished 员工端列表，优先读快照，缺失时回源并回填
func (s *ModuleService) ListPublished(ctx context.Context) ([]model.TrainingModule, error) {
	var cached []model.TrainingModule
	hit, err := s.mirror.Get(ctx, publishedModulesKey, &cached)
	if err == nil && hit {
		return cached, nil
	}

	modules, err := s.repo.ListPublished()
	if err != nil {
		return nil, err
	}

	if err := s.mirror.Put(ctx, publishedModulesKey, modules); err != nil {
		logger.Log.Warn("failed to refill module mirror", zap.Error(err))
	}
	return modules, nil
}

type LessonRequest struct {
	Title         string `json:"title" binding:"required"`
	Content       string `json:"content"`
	VideoURL      string `json:"videoUrl"`
	VideoDuration int    `json:"videoDuration"`
	Order         int    `json:"order"`
}

func (s *ModuleService) AddLesson(ctx context.Context, moduleID uint, req LessonRequest) (*model.Lesson, error) {
	if _, err := s.repo.FindByID(moduleID); err != nil {
		return nil, util.ErrModuleNotFound
	}

	l := &model.Lesson{
		ModuleID:      moduleID,
		Title:         req.Title,
		Content:       req.Content,
		VideoURL:      req.VideoURL,
		VideoDuration: req.VideoDuration,
		Order:         req.Order,
	}
	if err := s.repo.CreateLesson(l); err != nil {
		return nil, err
	}
	s.refreshMirror(ctx)
	return l, nil
}

type QuestionRequest struct {
	Type        model.QuestionType `json:"type" binding:"required"`
	Prompt      string             `json:"prompt" binding:"required"`
	Options     []string           `json:"options"`
	Answer      string             `json:"answer"`
	Explanation string             `json:"explanation"`
	Points      int                `json:"points"`
	Order       int                `json:"order"`
}

func (s *ModuleService) AddQuestion(ctx context.Context, moduleID uint, req QuestionRequest) (*model.QuizQuestion, error) {
	if _, err := s.repo.FindByID(moduleID); err != nil {
		return nil, util.ErrModuleNotFound
	}

	var options json.RawMessage
	if len(req.Options) > 0 {
		options, _ = json.Marshal(req.Options)
	}

	points := req.Points
	if points <= 0 {
		points = 10
	}

	q := &model.QuizQuestion{
		ModuleID:    moduleID,
		Type:        req.Type,
		Prompt:      req.Prompt,
		Options:     options,
		Answer:      req.Answer,
		Explanation: req.Explanation,
		Points:      points,
		Order:       req.Order,
	}
	if err := s.repo.CreateQuestion(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *ModuleService) DeleteQuestion(id uint) error {
	return s.repo.DeleteQuestion(id)
}

// refreshMirror 把已发布模块列表整表重写到快照。
// 快照写失败只降级为回源读，不影响主流程。
func (s *ModuleService) refreshMirror(ctx context.Context) {
	modules, err := s.repo.ListPublished()
	if err != nil {
		logger.Log.Warn("failed to load modules for mirror refresh", zap.Error(err))
		return
	}
	if err := s.mirror.Put(ctx, publishedModulesKey, modules); err != nil {
		logger.Log.Warn("failed to refresh module mirror", zap.Error(err))
	}
}
