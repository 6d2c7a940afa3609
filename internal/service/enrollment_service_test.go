package service

import (
	"context"
	"fmt"
	"testing"

	"hr_training_backend/internal/model"
	"hr_training_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memEnrollmentStore struct {
	nextID      uint
	enrollments map[uint]*model.Enrollment
	completions map[string]bool // "enrollmentID:lessonID"
}

func newMemEnrollmentStore() *memEnrollmentStore {
	return &memEnrollmentStore{
		nextID:      1,
		enrollments: make(map[uint]*model.Enrollment),
		completions: make(map[string]bool),
	}
}

func (s *memEnrollmentStore) Create(e *model.Enrollment) error {
	e.ID = s.nextID
	s.nextID++
	s.enrollments[e.ID] = e
	return nil
}

func (s *memEnrollmentStore) FindByID(id uint) (*model.Enrollment, error) {
	e, ok := s.enrollments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return e, nil
}

func (s *memEnrollmentStore) FindByUserAndModule(userID, moduleID uint) (*model.Enrollment, error) {
	for _, e := range s.enrollments {
		if e.UserID == userID && e.ModuleID == moduleID {
			return e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *memEnrollmentStore) Update(e *model.Enrollment) error {
	s.enrollments[e.ID] = e
	return nil
}

func (s *memEnrollmentStore) ListByUser(userID uint) ([]model.Enrollment, error) {
	var out []model.Enrollment
	for id := uint(1); id < s.nextID; id++ {
		if e, ok := s.enrollments[id]; ok && e.UserID == userID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (s *memEnrollmentStore) MarkLessonCompleted(enrollmentID, lessonID uint) error {
	s.completions[fmt.Sprintf("%d:%d", enrollmentID, lessonID)] = true
	return nil
}

func (s *memEnrollmentStore) CountCompletedLessons(enrollmentID uint) (int64, error) {
	var n int64
	for key := range s.completions {
		var eID, lID uint
		fmt.Sscanf(key, "%d:%d", &eID, &lID)
		if eID == enrollmentID {
			n++
		}
	}
	return n, nil
}

type memLessonSource struct {
	modules map[uint]*model.TrainingModule
	lessons map[uint]*model.Lesson
}

func newMemLessonSource() *memLessonSource {
	return &memLessonSource{
		modules: make(map[uint]*model.TrainingModule),
		lessons: make(map[uint]*model.Lesson),
	}
}

func (s *memLessonSource) addModule(id uint, published bool, lessonIDs ...uint) {
	m := &model.TrainingModule{Published: published}
	m.ID = id
	s.modules[id] = m
	for _, lid := range lessonIDs {
		l := &model.Lesson{ModuleID: id}
		l.ID = lid
		s.lessons[lid] = l
	}
}

func (s *memLessonSource) FindByID(id uint) (*model.TrainingModule, error) {
	m, ok := s.modules[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m, nil
}

func (s *memLessonSource) FindLessonByID(id uint) (*model.Lesson, error) {
	l, ok := s.lessons[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return l, nil
}

func (s *memLessonSource) CountLessons(moduleID uint) (int64, error) {
	var n int64
	for _, l := range s.lessons {
		if l.ModuleID == moduleID {
			n++
		}
	}
	return n, nil
}

func TestComputeProgress(t *testing.T) {
	tests := []struct {
		name      string
		completed int64
		total     int64
		want      float64
	}{
		{"无课时即完成", 0, 0, 100},
		{"未开始", 0, 4, 0},
		{"完成一半", 2, 4, 50},
		{"全部完成", 4, 4, 100},
		{"超额完成封顶", 5, 4, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeProgress(tt.completed, tt.total))
		})
	}
}

func TestEnroll(t *testing.T) {
	ctx := context.Background()
	store := newMemEnrollmentStore()
	modules := newMemLessonSource()
	modules.addModule(1, true, 10, 11)
	mirror := newMemMirror()
	svc := NewEnrollmentService(store, modules, mirror)

	e, err := svc.Enroll(ctx, 7, 1)
	require.NoError(t, err)
	assert.Equal(t, model.Enrolled, e.Status)
	assert.Zero(t, e.Progress)

	// 报名后快照立即包含新记录
	var cached []model.Enrollment
	require.True(t, mirror.snapshot(t, "mirror:enrollments:7", &cached))
	require.Len(t, cached, 1)
	assert.Equal(t, uint(1), cached[0].ModuleID)

	// 重复报名报错
	_, err = svc.Enroll(ctx, 7, 1)
	assert.ErrorIs(t, err, util.ErrAlreadyEnrolled)
}

func TestEnrollUnpublishedModule(t *testing.T) {
	modules := newMemLessonSource()
	modules.addModule(1, false)
	svc := NewEnrollmentService(newMemEnrollmentStore(), modules, newMemMirror())

	_, err := svc.Enroll(context.Background(), 7, 1)
	assert.ErrorIs(t, err, util.ErrModuleNotPublished)
}

func TestCompleteLessonProgression(t *testing.T) {
	ctx := context.Background()
	store := newMemEnrollmentStore()
	modules := newMemLessonSource()
	modules.addModule(1, true, 10, 11)
	mirror := newMemMirror()
	svc := NewEnrollmentService(store, modules, mirror)

	_, err := svc.Enroll(ctx, 7, 1)
	require.NoError(t, err)

	// 完成第一课：进度50，状态转为学习中
	e, err := svc.CompleteLesson(ctx, 7, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 50.0, e.Progress)
	assert.Equal(t, model.InProgress, e.Status)
	assert.Nil(t, e.CompletedAt)

	// 重复完成同一课不改变进度
	e, err = svc.CompleteLesson(ctx, 7, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 50.0, e.Progress)

	// 完成第二课：进度100，状态完成并记录时间
	e, err = svc.CompleteLesson(ctx, 7, 1, 11)
	require.NoError(t, err)
	assert.Equal(t, 100.0, e.Progress)
	assert.Equal(t, model.Completed, e.Status)
	require.NotNil(t, e.CompletedAt)

	// 快照与库内进度一致
	var cached []model.Enrollment
	require.True(t, mirror.snapshot(t, "mirror:enrollments:7", &cached))
	require.Len(t, cached, 1)
	assert.Equal(t, 100.0, cached[0].Progress)
	assert.Equal(t, model.Completed, cached[0].Status)
}

func TestCompleteLessonRequiresEnrollment(t *testing.T) {
	modules := newMemLessonSource()
	modules.addModule(1, true, 10)
	svc := NewEnrollmentService(newMemEnrollmentStore(), modules, newMemMirror())

	_, err := svc.CompleteLesson(context.Background(), 7, 1, 10)
	assert.ErrorIs(t, err, util.ErrNotEnrolled)
}

func TestCompleteLessonRejectsForeignLesson(t *testing.T) {
	ctx := context.Background()
	modules := newMemLessonSource()
	modules.addModule(1, true, 10)
	modules.addModule(2, true, 20)
	svc := NewEnrollmentService(newMemEnrollmentStore(), modules, newMemMirror())

	_, err := svc.Enroll(ctx, 7, 1)
	require.NoError(t, err)

	// 课时20属于模块2，对模块1的报名不可用
	_, err = svc.CompleteLesson(ctx, 7, 1, 20)
	assert.ErrorIs(t, err, util.ErrLessonNotFound)
}

func TestListForUserPrefersMirror(t *testing.T) {
	ctx := context.Background()
	mirror := newMemMirror()
	svc := NewEnrollmentService(newMemEnrollmentStore(), newMemLessonSource(), mirror)

	stale := []model.Enrollment{{UserID: 7, ModuleID: 3}}
	require.NoError(t, mirror.Put(ctx, "mirror:enrollments:7", stale))

	list, err := svc.ListForUser(ctx, 7)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, uint(3), list[0].ModuleID)
}

func TestListForUserRefillsMirrorOnMiss(t *testing.T) {
	ctx := context.Background()
	store := newMemEnrollmentStore()
	modules := newMemLessonSource()
	modules.addModule(1, true)
	mirror := newMemMirror()
	svc := NewEnrollmentService(store, modules, mirror)

	_, err := svc.Enroll(ctx, 7, 1)
	require.NoError(t, err)
	require.NoError(t, mirror.Del(ctx, "mirror:enrollments:7"))

	list, err := svc.ListForUser(ctx, 7)
	require.NoError(t, err)
	require.Len(t, list, 1)

	var cached []model.Enrollment
	assert.True(t, mirror.snapshot(t, "mirror:enrollments:7", &cached))
	assert.Len(t, cached, 1)
}
