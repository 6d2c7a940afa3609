package service

import (
	"context"
	"encoding/json"
	"testing"

	"hr_training_backend/internal/model"
	"hr_training_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeQuizStore struct {
	module    *model.TrainingModule
	questions []model.QuizQuestion
	created   []model.QuizQuestion
}

func (f *fakeQuizStore) FindByID(id uint) (*model.TrainingModule, error) {
	if f.module == nil || f.module.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return f.module, nil
}

func (f *fakeQuizStore) ListQuestions(moduleID uint) ([]model.QuizQuestion, error) {
	return f.questions, nil
}

func (f *fakeQuizStore) CreateQuestions(qs []model.QuizQuestion) error {
	f.created = qs
	return nil
}

type fakeSubmissionStore struct {
	submissions []model.AssessmentSubmission
}

func (f *fakeSubmissionStore) CreateSubmission(s *model.AssessmentSubmission) error {
	f.submissions = append(f.submissions, *s)
	return nil
}

func (f *fakeSubmissionStore) ListByUserAndModule(userID, moduleID uint) ([]model.AssessmentSubmission, error) {
	return f.submissions, nil
}

type fakeEnrollmentScores struct {
	enrollment *model.Enrollment
	updated    bool
}

func (f *fakeEnrollmentScores) FindByUserAndModule(userID, moduleID uint) (*model.Enrollment, error) {
	if f.enrollment == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.enrollment, nil
}

func (f *fakeEnrollmentScores) Update(e *model.Enrollment) error {
	f.updated = true
	f.enrollment = e
	return nil
}

func (f *fakeEnrollmentScores) ListByUser(userID uint) ([]model.Enrollment, error) {
	if f.enrollment == nil {
		return nil, nil
	}
	return []model.Enrollment{*f.enrollment}, nil
}

type fakeAssessmentAgent struct {
	questions  []GeneratedQuestion
	genErr     error
	evaluation Evaluation
}

func (f *fakeAssessmentAgent) GenerateQuestions(ctx context.Context, moduleContent, assessmentType string) ([]GeneratedQuestion, error) {
	return f.questions, f.genErr
}

func (f *fakeAssessmentAgent) GradeResponse(ctx context.Context, moduleContent, assessmentType, userResponse string, history []string) Evaluation {
	return f.evaluation
}

type assessmentFixture struct {
	svc    *AssessmentService
	quiz   *fakeQuizStore
	subs   *fakeSubmissionStore
	enroll *fakeEnrollmentScores
	mirror *memMirror
}

func newAssessmentFixture(questions []model.QuizQuestion, agent *fakeAssessmentAgent) assessmentFixture {
	module := &model.TrainingModule{Content: "模块正文"}
	module.ID = 1

	quiz := &fakeQuizStore{module: module, questions: questions}
	subs := &fakeSubmissionStore{}
	enroll := &fakeEnrollmentScores{enrollment: &model.Enrollment{UserID: 7, ModuleID: 1}}
	mirror := newMemMirror()
	return assessmentFixture{
		svc:    NewAssessmentService(quiz, subs, enroll, agent, mirror),
		quiz:   quiz,
		subs:   subs,
		enroll: enroll,
		mirror: mirror,
	}
}

func objectiveQuestion(id uint, qType model.QuestionType, answer string, points int) model.QuizQuestion {
	q := model.QuizQuestion{ModuleID: 1, Type: qType, Prompt: "题目", Answer: answer, Points: points}
	q.ID = id
	return q
}

func TestGenerateQuizPersistsQuestions(t *testing.T) {
	agent := &fakeAssessmentAgent{questions: []GeneratedQuestion{
		{Prompt: "年假几天？", Type: "multiple_choice", Options: []string{"3天", "5天"}, CorrectAnswer: "5天", Explanation: "见制度"},
		{Prompt: "谈谈你对信息安全的理解", Type: "essay"}, // 非法类型
	}}
	f := newAssessmentFixture(nil, agent)

	questions, err := f.svc.GenerateQuiz(context.Background(), 1, "quiz")
	require.NoError(t, err)
	require.Len(t, questions, 2)
	require.Len(t, f.quiz.created, 2)

	assert.Equal(t, model.MultipleChoice, questions[0].Type)
	assert.Equal(t, "5天", questions[0].Answer)
	assert.True(t, questions[0].Generated)
	assert.Equal(t, 1, questions[0].Order)

	var opts []string
	require.NoError(t, json.Unmarshal(questions[0].Options, &opts))
	assert.Equal(t, []string{"3天", "5天"}, opts)

	// 非法类型按开放题兜底
	assert.Equal(t, model.OpenEnded, questions[1].Type)
	assert.Equal(t, 2, questions[1].Order)
}

func TestGenerateQuizModuleNotFound(t *testing.T) {
	f := newAssessmentFixture(nil, &fakeAssessmentAgent{})

	_, err := f.svc.GenerateQuiz(context.Background(), 99, "quiz")
	assert.ErrorIs(t, err, util.ErrModuleNotFound)
}

func TestGenerateQuizPropagatesAgentError(t *testing.T) {
	f := newAssessmentFixture(nil, &fakeAssessmentAgent{genErr: util.ErrAgentNoQuestions})

	_, err := f.svc.GenerateQuiz(context.Background(), 1, "quiz")
	assert.ErrorIs(t, err, util.ErrAgentNoQuestions)
	assert.Empty(t, f.quiz.created)
}

func TestSubmitObjectiveGrading(t *testing.T) {
	questions := []model.QuizQuestion{
		objectiveQuestion(1, model.MultipleChoice, "5天", 10),
		objectiveQuestion(2, model.TrueFalse, "true", 10),
	}
	f := newAssessmentFixture(questions, &fakeAssessmentAgent{})

	submission, err := f.svc.Submit(context.Background(), 7, SubmitRequest{
		ModuleID: 1,
		Answers: []AnswerInput{
			{QuestionID: 1, Response: " 5天 "}, // 首尾空白不敏感
			{QuestionID: 2, Response: "FALSE"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 50.0, submission.Score)
	require.Len(t, submission.Answers, 2)
	assert.True(t, *submission.Answers[0].Correct)
	assert.False(t, *submission.Answers[1].Correct)

	require.Len(t, f.subs.submissions, 1)
	assert.True(t, f.enroll.updated)
	require.NotNil(t, f.enroll.enrollment.Score)
	assert.Equal(t, 50.0, *f.enroll.enrollment.Score)
}

func TestSubmitOpenEndedGrading(t *testing.T) {
	questions := []model.QuizQuestion{
		objectiveQuestion(1, model.OpenEnded, "", 20),
	}
	agent := &fakeAssessmentAgent{evaluation: Evaluation{
		Score:    80,
		Feedback: "回答较完整",
		Gaps:     []string{"未提到审批流程"},
	}}
	f := newAssessmentFixture(questions, agent)

	submission, err := f.svc.Submit(context.Background(), 7, SubmitRequest{
		ModuleID: 1,
		Answers:  []AnswerInput{{QuestionID: 1, Response: "我的理解是……"}},
	})
	require.NoError(t, err)

	// 80分的开放题占20分权重 → 16分，总分百分比80
	assert.Equal(t, 80.0, submission.Score)
	assert.Equal(t, "回答较完整", submission.Feedback)
	assert.Equal(t, "未提到审批流程", submission.Gaps)
	require.Len(t, submission.Answers, 1)
	assert.Nil(t, submission.Answers[0].Correct)
	assert.Equal(t, 16.0, submission.Answers[0].Score)
}

func TestSubmitFallbackGradingSkipsEnrollmentScore(t *testing.T) {
	questions := []model.QuizQuestion{
		objectiveQuestion(1, model.OpenEnded, "", 10),
	}
	agent := &fakeAssessmentAgent{evaluation: Evaluation{
		Feedback: FallbackFeedback,
		Fallback: true,
	}}
	f := newAssessmentFixture(questions, agent)

	submission, err := f.svc.Submit(context.Background(), 7, SubmitRequest{
		ModuleID: 1,
		Answers:  []AnswerInput{{QuestionID: 1, Response: "我的回答"}},
	})
	require.NoError(t, err)

	// 提交记录要落库，但兜底评分不回写报名成绩
	require.Len(t, f.subs.submissions, 1)
	assert.Equal(t, FallbackFeedback, submission.Feedback)
	assert.False(t, f.enroll.updated)
	assert.Nil(t, f.enroll.enrollment.Score)
}

func TestSubmitKeepsBestEnrollmentScore(t *testing.T) {
	questions := []model.QuizQuestion{
		objectiveQuestion(1, model.MultipleChoice, "A", 10),
	}
	f := newAssessmentFixture(questions, &fakeAssessmentAgent{})
	best := 90.0
	f.enroll.enrollment.Score = &best

	_, err := f.svc.Submit(context.Background(), 7, SubmitRequest{
		ModuleID: 1,
		Answers:  []AnswerInput{{QuestionID: 1, Response: "B"}}, // 0分
	})
	require.NoError(t, err)

	// 低于历史最高分不覆盖
	assert.False(t, f.enroll.updated)
	assert.Equal(t, 90.0, *f.enroll.enrollment.Score)
}

func TestSubmitRefreshesEnrollmentMirror(t *testing.T) {
	questions := []model.QuizQuestion{
		objectiveQuestion(1, model.MultipleChoice, "5天", 10),
	}
	f := newAssessmentFixture(questions, &fakeAssessmentAgent{})

	// 提交前先有快照，模拟报名列表已被读过一次
	stale, err := f.enroll.ListByUser(7)
	require.NoError(t, err)
	require.NoError(t, f.mirror.Put(context.Background(), "mirror:enrollments:7", stale))

	_, err = f.svc.Submit(context.Background(), 7, SubmitRequest{
		ModuleID: 1,
		Answers:  []AnswerInput{{QuestionID: 1, Response: "5天"}},
	})
	require.NoError(t, err)

	// 成绩回写后快照同步刷新，读快照和读库一致
	var cached []model.Enrollment
	require.True(t, f.mirror.snapshot(t, "mirror:enrollments:7", &cached))
	require.Len(t, cached, 1)
	require.NotNil(t, cached[0].Score)
	assert.Equal(t, 100.0, *cached[0].Score)
}

func TestSubmitDuplicateAnswersScoredOnce(t *testing.T) {
	questions := []model.QuizQuestion{
		objectiveQuestion(1, model.MultipleChoice, "5天", 10),
		objectiveQuestion(2, model.TrueFalse, "true", 10),
	}
	f := newAssessmentFixture(questions, &fakeAssessmentAgent{})

	submission, err := f.svc.Submit(context.Background(), 7, SubmitRequest{
		ModuleID: 1,
		Answers: []AnswerInput{
			{QuestionID: 1, Response: "5天"},
			{QuestionID: 1, Response: "5天"},
			{QuestionID: 1, Response: "5天"},
		},
	})
	require.NoError(t, err)

	// 重复作答只计一次，总分不超过满分
	assert.Equal(t, 50.0, submission.Score)
	require.Len(t, submission.Answers, 1)
	require.NotNil(t, f.enroll.enrollment.Score)
	assert.Equal(t, 50.0, *f.enroll.enrollment.Score)
}

func TestSubmitUnknownQuestion(t *testing.T) {
	questions := []model.QuizQuestion{
		objectiveQuestion(1, model.MultipleChoice, "A", 10),
	}
	f := newAssessmentFixture(questions, &fakeAssessmentAgent{})

	_, err := f.svc.Submit(context.Background(), 7, SubmitRequest{
		ModuleID: 1,
		Answers:  []AnswerInput{{QuestionID: 42, Response: "A"}},
	})
	assert.ErrorIs(t, err, util.ErrQuestionNotFound)
}

func TestSubmitNoQuestions(t *testing.T) {
	f := newAssessmentFixture(nil, &fakeAssessmentAgent{})

	_, err := f.svc.Submit(context.Background(), 7, SubmitRequest{ModuleID: 1})
	assert.ErrorIs(t, err, util.ErrNoQuizQuestions)
}
