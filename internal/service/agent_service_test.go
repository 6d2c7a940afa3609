package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"hr_training_backend/internal/config"
	"hr_training_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAgentServer(t *testing.T, handler func(w http.ResponseWriter, req AgentRequest)) (*httptest.Server, *AgentService) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req AgentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotEmpty(t, req.UserID)
		assert.NotEmpty(t, req.SessionID)

		handler(w, req)
	}))
	t.Cleanup(srv.Close)

	agent := NewAgentService(config.AgentConfig{
		BaseURL:           srv.URL,
		APIKey:            "test-key",
		QAAgentID:         "qa-agent",
		AssessmentAgentID: "assess-agent",
	})
	return srv, agent
}

func TestAnswerQuestionSuccess(t *testing.T) {
	_, agent := newAgentServer(t, func(w http.ResponseWriter, req AgentRequest) {
		assert.Equal(t, "qa-agent", req.AgentID)
		assert.Contains(t, req.Message, "年假怎么申请")
		assert.Contains(t, req.Message, "考勤制度")

		w.Write([]byte(`{"response":{"content":"在OA系统提交申请","confidence":0.92,"source_reference":{"section":"第二章 休假"}}}`))
	})

	ans := agent.AnswerQuestion(context.Background(), "sess-1", "年假怎么申请", "考勤制度：……")
	assert.False(t, ans.Fallback)
	assert.Equal(t, "在OA系统提交申请", ans.Content)
	assert.Equal(t, 0.92, ans.Confidence)
	assert.Equal(t, "第二章 休假", ans.Section)
}

func TestAnswerQuestionProseWrappedReply(t *testing.T) {
	_, agent := newAgentServer(t, func(w http.ResponseWriter, req AgentRequest) {
		w.Write([]byte("好的，结果如下：\n```json\n{\"response\":{\"content\":\"答案\",\"confidence\":0.5,\"source_reference\":{\"section\":\"\"}}}\n```"))
	})

	ans := agent.AnswerQuestion(context.Background(), "sess-1", "问题", "")
	assert.False(t, ans.Fallback)
	assert.Equal(t, "答案", ans.Content)
}

func TestAnswerQuestionFallbackOnServerError(t *testing.T) {
	_, agent := newAgentServer(t, func(w http.ResponseWriter, req AgentRequest) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	ans := agent.AnswerQuestion(context.Background(), "sess-1", "问题", "")
	assert.True(t, ans.Fallback)
	assert.Equal(t, FallbackAnswer, ans.Content)
}

func TestAnswerQuestionFallbackOnGarbageReply(t *testing.T) {
	_, agent := newAgentServer(t, func(w http.ResponseWriter, req AgentRequest) {
		w.Write([]byte("抱歉，我处理不了这个请求。"))
	})

	ans := agent.AnswerQuestion(context.Background(), "sess-1", "问题", "")
	assert.True(t, ans.Fallback)
	assert.Equal(t, FallbackAnswer, ans.Content)
}

func TestAnswerQuestionFallbackOnUnreachableGateway(t *testing.T) {
	agent := NewAgentService(config.AgentConfig{
		BaseURL:   "http://127.0.0.1:1", // 不可达
		APIKey:    "test-key",
		QAAgentID: "qa-agent",
	})

	ans := agent.AnswerQuestion(context.Background(), "sess-1", "问题", "")
	assert.True(t, ans.Fallback)
	assert.Equal(t, FallbackAnswer, ans.Content)
}

func TestGenerateQuestions(t *testing.T) {
	_, agent := newAgentServer(t, func(w http.ResponseWriter, req AgentRequest) {
		assert.Equal(t, "assess-agent", req.AgentID)

		var envelope AssessmentEnvelope
		require.NoError(t, json.Unmarshal([]byte(req.Message), &envelope))
		assert.Equal(t, "模块正文", envelope.ModuleContent)
		assert.Equal(t, "quiz", envelope.AssessmentType)
		assert.Empty(t, envelope.UserResponse)

		w.Write([]byte(`{"assessment":{"questions":[
			{"question":"年假几天？","type":"multiple_choice","options":["3天","5天","10天"],"correct_answer":"5天","explanation":"见休假制度"},
			{"question":"加班需审批，对吗？","type":"true_false","correct_answer":"true"}
		]}}`))
	})

	questions, err := agent.GenerateQuestions(context.Background(), "模块正文", "quiz")
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, "年假几天？", questions[0].Prompt)
	assert.Equal(t, "multiple_choice", questions[0].Type)
	assert.Equal(t, []string{"3天", "5天", "10天"}, questions[0].Options)
	assert.Equal(t, "5天", questions[0].CorrectAnswer)
}

func TestGenerateQuestionsEmptyReply(t *testing.T) {
	_, agent := newAgentServer(t, func(w http.ResponseWriter, req AgentRequest) {
		w.Write([]byte(`{"assessment":{"questions":[]}}`))
	})

	_, err := agent.GenerateQuestions(context.Background(), "模块正文", "quiz")
	assert.ErrorIs(t, err, util.ErrAgentNoQuestions)
}

func TestGradeResponse(t *testing.T) {
	_, agent := newAgentServer(t, func(w http.ResponseWriter, req AgentRequest) {
		var envelope AssessmentEnvelope
		require.NoError(t, json.Unmarshal([]byte(req.Message), &envelope))
		assert.Equal(t, "员工的回答原文", envelope.UserResponse)
		assert.Equal(t, []string{"上一轮回答"}, envelope.History)

		w.Write([]byte(`{"assessment":{"evaluation":{"score":85,"feedback":"回答基本正确","gaps_identified":["未提到审批流程"]}}}`))
	})

	ev := agent.GradeResponse(context.Background(), "模块正文", "open_ended", "员工的回答原文", []string{"上一轮回答"})
	assert.False(t, ev.Fallback)
	assert.Equal(t, 85.0, ev.Score)
	assert.Equal(t, "回答基本正确", ev.Feedback)
	assert.Equal(t, []string{"未提到审批流程"}, ev.Gaps)
}

func TestGradeResponseClampsScore(t *testing.T) {
	_, agent := newAgentServer(t, func(w http.ResponseWriter, req AgentRequest) {
		w.Write([]byte(`{"assessment":{"evaluation":{"score":150,"feedback":"满分","gaps_identified":[]}}}`))
	})

	ev := agent.GradeResponse(context.Background(), "内容", "open_ended", "回答", nil)
	assert.Equal(t, 100.0, ev.Score)
}

func TestGradeResponseFallback(t *testing.T) {
	_, agent := newAgentServer(t, func(w http.ResponseWriter, req AgentRequest) {
		w.WriteHeader(http.StatusBadGateway)
	})

	ev := agent.GradeResponse(context.Background(), "内容", "open_ended", "回答", nil)
	assert.True(t, ev.Fallback)
	assert.Equal(t, FallbackFeedback, ev.Feedback)
	assert.Zero(t, ev.Score)
}

func TestNewSessionIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewSessionID()
		assert.False(t, seen[id], "duplicate session id %s", id)
		seen[id] = true
	}
}
