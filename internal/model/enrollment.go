package model

import "time"

type EnrollmentStatus string

const (
	Enrolled   EnrollmentStatus = "enrolled"
	InProgress EnrollmentStatus = "in_progress"
	Completed  EnrollmentStatus = "completed"
)

// Enrollment 员工对模块的报名/进度记录
type Enrollment struct {
	BaseModel
	UserID      uint             `gorm:"index;not null;uniqueIndex:idx_user_module" json:"userId"`
	ModuleID    uint             `gorm:"index;not null;uniqueIndex:idx_user_module" json:"moduleId"`
	Module      TrainingModule   `gorm:"foreignKey:ModuleID" json:"module"`
	Status      EnrollmentStatus `gorm:"type:enum('enrolled','in_progress','completed');default:'enrolled'" json:"status"`
	Progress    float64          `gorm:"default:0" json:"progress"` // 0-100
	Score       *float64         `json:"score"`                     // 测验得分，未测验为 nil
	CompletedAt *time.Time       `json:"completedAt"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

// LessonCompletion 已完成课时记录，进度百分比由它重算
type LessonCompletion struct {
	BaseModel
	EnrollmentID uint `gorm:"index;not null;uniqueIndex:idx_enrollment_lesson" json:"enrollmentId"`
	LessonID     uint `gorm:"index;not null;uniqueIndex:idx_enrollment_lesson" json:"lessonId"`
}

func (LessonCompletion) TableName() string {
	return "lesson_completions"
}
