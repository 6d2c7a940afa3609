package service

import (
	"context"
	"time"

	"hr_training_backend/internal/model"
	"hr_training_backend/internal/util"
	"hr_training_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// enrollmentStore 报名记录持久化接口
type enrollmentStore interface {
	Create(e *model.Enrollment) error
	FindByID(id uint) (*model.Enrollment, error)
	FindByUserAndModule(userID, moduleID uint) (*model.Enrollment, error)
	Update(e *model.Enrollment) error
	ListByUser(userID uint) ([]model.Enrollment, error)
	MarkLessonCompleted(enrollmentID, lessonID uint) error
	CountCompletedLessons(enrollmentID uint) (int64, error)
}

// lessonSource 课时归属与数量查询
type lessonSource interface {
	FindByID(id uint) (*model.TrainingModule, error)
	FindLessonByID(id uint) (*model.Lesson, error)
	CountLessons(moduleID uint) (int64, error)
}

type EnrollmentService struct {
	enrollments enrollmentStore
	modules     lessonSource
	mirror      Mirror
}

func NewEnrollmentService(enrollRepo enrollmentStore, moduleRepo lessonSource, mirror Mirror) *EnrollmentService {
	return &EnrollmentService{
		enrollments: enrollRepo,
		modules:     moduleRepo,
		mirror:      mirror,
	}
}

func (s *EnrollmentService) Enroll(ctx context.Context, userID, moduleID uint) (*model.Enrollment, error) {
	m, err := s.modules.FindByID(moduleID)
	if err != nil {
		return nil, util.ErrModuleNotFound
	}
	if !m.Published {
		return nil, util.ErrModuleNotPublished
	}

	if _, err := s.enrollments.FindByUserAndModule(userID, moduleID); err == nil {
		return nil, util.ErrAlreadyEnrolled
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	e := &model.Enrollment{
		UserID:   userID,
		ModuleID: moduleID,
		Status:   model.Enrolled,
	}
	if err := s.enrollments.Create(e); err != nil {
		return nil, err
	}

	s.refreshMirror(ctx, userID)
	return e, nil
}

// CompleteLesson 记录课时完成并重算进度百分比；
// 进度到100时报名记录自动转为已完成
func (s *EnrollmentService) CompleteLesson(ctx context.Context, userID, moduleID, lessonID uint) (*model.Enrollment, error) {
	e, err := s.enrollments.FindByUserAndModule(userID, moduleID)
	if err != nil {
		return nil, util.ErrNotEnrolled
	}

	lesson, err := s.modules.FindLessonByID(lessonID)
	if err != nil || lesson.ModuleID != moduleID {
		return nil, util.ErrLessonNotFound
	}

	if err := s.enrollments.MarkLessonCompleted(e.ID, lessonID); err != nil {
		return nil, err
	}

	completed, err := s.enrollments.CountCompletedLessons(e.ID)
	if err != nil {
		return nil, err
	}
	total, err := s.modules.CountLessons(moduleID)
	if err != nil {
		return nil, err
	}

	e.Progress = ComputeProgress(completed, total)
	if e.Progress >= 100 {
		e.Status = model.Completed
		if e.CompletedAt == nil {
			now := time.Now()
			e.CompletedAt = &now
		}
	} else if e.Status == model.Enrolled {
		e.Status = model.InProgress
	}

	if err := s.enrollments.Update(e); err != nil {
		return nil, err
	}

	s.refreshMirror(ctx, userID)
	return e, nil
}

// ListForUser 员工报名列表，优先读快照
func (s *EnrollmentService) ListForUser(ctx context.Context, userID uint) ([]model.Enrollment, error) {
	var cached []model.Enrollment
	hit, err := s.mirror.Get(ctx, enrollmentsKey(userID), &cached)
	if err == nil && hit {
		return cached, nil
	}

	es, err := s.enrollments.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	if err := s.mirror.Put(ctx, enrollmentsKey(userID), es); err != nil {
		logger.Log.Warn("failed to refill enrollment mirror", zap.Error(err))
	}
	return es, nil
}

// ComputeProgress 进度百分比，无课时的模块报名即视为100
func ComputeProgress(completed, total int64) float64 {
	if total <= 0 {
		return 100
	}
	if completed >= total {
		return 100
	}
	return float64(completed) / float64(total) * 100
}

func (s *EnrollmentService) refreshMirror(ctx context.Context, userID uint) {
	es, err := s.enrollments.ListByUser(userID)
	if err != nil {
		logger.Log.Warn("failed to load enrollments for mirror refresh", zap.Error(err))
		return
	}
	if err := s.mirror.Put(ctx, enrollmentsKey(userID), es); err != nil {
		logger.Log.Warn("failed to refresh enrollment mirror", zap.Error(err))
	}
}
