package service

import (
	"context"
	"encoding/json"
	"strings"

	"hr_training_backend/internal/model"
	"hr_training_backend/internal/util"
	"hr_training_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// quizStore 测验题目读写接口
type quizStore interface {
	FindByID(id uint) (*model.TrainingModule, error)
	ListQuestions(moduleID uint) ([]model.QuizQuestion, error)
	CreateQuestions(qs []model.QuizQuestion) error
}

// submissionStore 提交记录读写接口
type submissionStore interface {
	CreateSubmission(s *model.AssessmentSubmission) error
	ListByUserAndModule(userID, moduleID uint) ([]model.AssessmentSubmission, error)
}

// assessmentAgent 测验生成与开放题评分的Agent入口
type assessmentAgent interface {
	GenerateQuestions(ctx context.Context, moduleContent, assessmentType string) ([]GeneratedQuestion, error)
	GradeResponse(ctx context.Context, moduleContent, assessmentType, userResponse string, history []string) Evaluation
}

// enrollmentScoreStore 成绩回写入口
type enrollmentScoreStore interface {
	FindByUserAndModule(userID, moduleID uint) (*model.Enrollment, error)
	Update(e *model.Enrollment) error
	ListByUser(userID uint) ([]model.Enrollment, error)
}

type AssessmentService struct {
	modules     quizStore
	submissions submissionStore
	enrollments enrollmentScoreStore
	agent       assessmentAgent
	mirror      Mirror
}

func NewAssessmentService(moduleRepo quizStore, assessRepo submissionStore, enrollRepo enrollmentScoreStore, agent assessmentAgent, mirror Mirror) *AssessmentService {
	return &AssessmentService{
		modules:     moduleRepo,
		submissions: assessRepo,
		enrollments: enrollRepo,
		agent:       agent,
		mirror:      mirror,
	}
}

// GenerateQuiz 根据模块正文让Agent生成测验题并入库
func (s *AssessmentService) GenerateQuiz(ctx context.Context, moduleID uint, assessmentType string) ([]model.QuizQuestion, error) {
	m, err := s.modules.FindByID(moduleID)
	if err != nil {
		return nil, util.ErrModuleNotFound
	}

	generated, err := s.agent.GenerateQuestions(ctx, m.Content, assessmentType)
	if err != nil {
		return nil, err
	}

	existing, err := s.modules.ListQuestions(moduleID)
	if err != nil {
		return nil, err
	}
	nextOrder := len(existing) + 1

	questions := make([]model.QuizQuestion, 0, len(generated))
	for i, g := range generated {
		qType := model.QuestionType(g.Type)
		switch qType {
		case model.MultipleChoice, model.TrueFalse, model.ShortAnswer, model.OpenEnded:
		default:
			// 非法类型按开放题处理，不丢题
			qType = model.OpenEnded
		}

		var options json.RawMessage
		if len(g.Options) > 0 {
			options, _ = json.Marshal(g.Options)
		}

		questions = append(questions, model.QuizQuestion{
			ModuleID:    moduleID,
			Type:        qType,
			Prompt:      g.Prompt,
			Options:     options,
			Answer:      g.CorrectAnswer,
			Explanation: g.Explanation,
			Points:      10,
			Order:       nextOrder + i,
			Generated:   true,
		})
	}

	if err := s.modules.CreateQuestions(questions); err != nil {
		return nil, err
	}
	return questions, nil
}

type AnswerInput struct {
	QuestionID uint   `json:"questionId" binding:"required"`
	Response   string `json:"response"`
}

type SubmitRequest struct {
	ModuleID uint          `json:"moduleId" binding:"required"`
	Answers  []AnswerInput `json:"answers" binding:"required"`
}

// Submit 评阅一次测验提交。客观题本地判分，开放题交给Agent；
// Agent不可用时开放题记默认评分，且不回写报名成绩。
func (s *AssessmentService) Submit(ctx context.Context, userID uint, req SubmitRequest) (*model.AssessmentSubmission, error) {
	m, err := s.modules.FindByID(req.ModuleID)
	if err != nil {
		return nil, util.ErrModuleNotFound
	}

	questions, err := s.modules.ListQuestions(req.ModuleID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, util.ErrNoQuizQuestions
	}

	byID := make(map[uint]*model.QuizQuestion, len(questions))
	totalPoints := 0
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
		totalPoints += questions[i].Points
	}

	var (
		answers     []model.AssessmentAnswer
		earned      float64
		feedbacks   []string
		gaps        []string
		hadFallback bool
	)

	// 同一题重复作答只取第一条，避免重复计分
	seen := make(map[uint]bool, len(req.Answers))
	for _, in := range req.Answers {
		q, ok := byID[in.QuestionID]
		if !ok {
			return nil, util.ErrQuestionNotFound
		}
		if seen[in.QuestionID] {
			continue
		}
		seen[in.QuestionID] = true

		a := model.AssessmentAnswer{
			QuestionID: in.QuestionID,
			Response:   in.Response,
		}

		if q.Type == model.OpenEnded {
			ev := s.agent.GradeResponse(ctx, m.Content, "grading", in.Response, nil)
			a.Score = ev.Score / 100 * float64(q.Points)
			a.Feedback = ev.Feedback
			if ev.Fallback {
				hadFallback = true
			}
			if ev.Feedback != "" {
				feedbacks = append(feedbacks, ev.Feedback)
			}
			gaps = append(gaps, ev.Gaps...)
		} else {
			correct := answersMatch(q, in.Response)
			a.Correct = &correct
			if correct {
				a.Score = float64(q.Points)
			}
		}

		earned += a.Score
		answers = append(answers, a)
	}

	score := 0.0
	if totalPoints > 0 {
		score = earned / float64(totalPoints) * 100
	}

	submission := &model.AssessmentSubmission{
		UserID:   userID,
		ModuleID: req.ModuleID,
		Score:    score,
		Feedback: strings.Join(feedbacks, "\n"),
		Gaps:     strings.Join(gaps, "\n"),
		Answers:  answers,
	}

	if err := s.submissions.CreateSubmission(submission); err != nil {
		return nil, err
	}

	// 兜底评分不算有效成绩，不回写报名记录
	if !hadFallback {
		s.updateEnrollmentScore(ctx, userID, req.ModuleID, score)
	}

	return submission, nil
}

// updateEnrollmentScore 把历史最高分回写到报名记录，并同步刷新报名快照
func (s *AssessmentService) updateEnrollmentScore(ctx context.Context, userID, moduleID uint, score float64) {
	e, err := s.enrollments.FindByUserAndModule(userID, moduleID)
	if err == gorm.ErrRecordNotFound {
		return
	}
	if err != nil {
		return
	}

	if e.Score == nil || score > *e.Score {
		e.Score = &score
		if err := s.enrollments.Update(e); err != nil {
			return
		}

		es, err := s.enrollments.ListByUser(userID)
		if err != nil {
			logger.Log.Warn("failed to load enrollments for mirror refresh", zap.Error(err))
			return
		}
		if err := s.mirror.Put(ctx, enrollmentsKey(userID), es); err != nil {
			logger.Log.Warn("failed to refresh enrollment mirror", zap.Error(err))
		}
	}
}

func (s *AssessmentService) ListSubmissions(userID, moduleID uint) ([]model.AssessmentSubmission, error) {
	return s.submissions.ListByUserAndModule(userID, moduleID)
}

// answersMatch 客观题判分：大小写与首尾空白不敏感
func answersMatch(q *model.QuizQuestion, response string) bool {
	want := strings.ToLower(strings.TrimSpace(q.Answer))
	got := strings.ToLower(strings.TrimSpace(response))
	if want == "" || got == "" {
		return false
	}
	return want == got
}
