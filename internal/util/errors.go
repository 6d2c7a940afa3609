package util

import "errors"

var (
	ErrUserNotFound       = errors.New("用户不存在")
	ErrEmailRegistered    = errors.New("该邮箱已被注册")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrModuleNotFound     = errors.New("module not found")
	ErrModuleNotPublished = errors.New("module not published")
	ErrLessonNotFound     = errors.New("lesson not found")
	ErrAlreadyEnrolled    = errors.New("already enrolled in module")
	ErrNotEnrolled        = errors.New("not enrolled in module")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrNoQuizQuestions    = errors.New("module has no quiz questions")
	ErrAgentNoQuestions   = errors.New("agent returned no questions")
	ErrSubmissionNotFound = errors.New("submission not found")
)
