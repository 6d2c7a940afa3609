package service

import (
	"context"
	"errors"
	"testing"

	"hr_training_backend/internal/model"
	"hr_training_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTranscript struct {
	messages  []model.ChatMessage
	appendErr error
}

func (f *fakeTranscript) Append(msg *model.ChatMessage) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.messages = append(f.messages, *msg)
	return nil
}

func (f *fakeTranscript) ListBySession(userID uint, sessionID string) ([]model.ChatMessage, error) {
	var out []model.ChatMessage
	for _, m := range f.messages {
		if m.UserID == userID && m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeTranscript) ListSessions(userID uint, limit int) ([]model.ChatMessage, error) {
	return nil, nil
}

func (f *fakeTranscript) DeleteSession(userID uint, sessionID string) error {
	kept := f.messages[:0]
	for _, m := range f.messages {
		if m.UserID != userID || m.SessionID != sessionID {
			kept = append(kept, m)
		}
	}
	f.messages = kept
	return nil
}

type fakeModuleSource struct {
	modules map[uint]*model.TrainingModule
}

func (f *fakeModuleSource) FindByID(id uint) (*model.TrainingModule, error) {
	if m, ok := f.modules[id]; ok {
		return m, nil
	}
	return nil, util.ErrModuleNotFound
}

func (f *fakeModuleSource) SearchContent(keyword string, limit int) ([]model.TrainingModule, error) {
	return nil, nil
}

type fakeAnswerer struct {
	answer      Answer
	gotQuestion string
	gotContext  string
}

func (f *fakeAnswerer) AnswerQuestion(ctx context.Context, sessionID, question, contextText string) Answer {
	f.gotQuestion = question
	f.gotContext = contextText
	return f.answer
}

func newQAFixture(answer Answer) (*QAService, *fakeTranscript, *fakeAnswerer) {
	transcript := &fakeTranscript{}
	answerer := &fakeAnswerer{answer: answer}
	modules := &fakeModuleSource{modules: map[uint]*model.TrainingModule{
		1: {Title: "入职指南", Description: "制度说明", Content: "考勤与休假制度正文"},
	}}
	modules.modules[1].ID = 1
	return NewQAService(transcript, modules, answerer), transcript, answerer
}

func TestAskAppendsOneUserAndOneAssistantMessage(t *testing.T) {
	svc, transcript, _ := newQAFixture(Answer{Content: "在OA系统申请", Confidence: 0.9})

	resp, err := svc.Ask(context.Background(), 7, AskRequest{Question: "年假怎么申请"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.SessionID)

	require.Len(t, transcript.messages, 2)
	assert.Equal(t, "user", transcript.messages[0].Role)
	assert.Equal(t, "年假怎么申请", transcript.messages[0].Content)
	assert.Equal(t, "assistant", transcript.messages[1].Role)
	assert.Equal(t, "在OA系统申请", transcript.messages[1].Content)

	for _, m := range transcript.messages {
		assert.Equal(t, uint(7), m.UserID)
		assert.Equal(t, resp.SessionID, m.SessionID)
	}
}

func TestAskAppendsBothMessagesOnAgentFallback(t *testing.T) {
	svc, transcript, _ := newQAFixture(Answer{Content: FallbackAnswer, Fallback: true})

	resp, err := svc.Ask(context.Background(), 7, AskRequest{Question: "问题"})
	require.NoError(t, err)
	assert.True(t, resp.Fallback)
	assert.Equal(t, FallbackAnswer, resp.Answer)

	// Agent降级也要留下完整的一问一答
	require.Len(t, transcript.messages, 2)
	assert.True(t, transcript.messages[1].Fallback)
}

func TestAskReusesProvidedSessionID(t *testing.T) {
	svc, transcript, _ := newQAFixture(Answer{Content: "答"})

	resp, err := svc.Ask(context.Background(), 7, AskRequest{Question: "问", SessionID: "sess_abc"})
	require.NoError(t, err)
	assert.Equal(t, "sess_abc", resp.SessionID)
	assert.Equal(t, "sess_abc", transcript.messages[0].SessionID)
}

func TestAskUsesModuleContentAsContext(t *testing.T) {
	svc, _, answerer := newQAFixture(Answer{Content: "答"})

	moduleID := uint(1)
	resp, err := svc.Ask(context.Background(), 7, AskRequest{Question: "考勤制度是什么", ModuleID: &moduleID})
	require.NoError(t, err)
	assert.Equal(t, "module_content", resp.Source)
	assert.Contains(t, answerer.gotContext, "考勤与休假制度正文")
}

func TestAskFallsBackToLLMSourceWithoutMatch(t *testing.T) {
	svc, _, answerer := newQAFixture(Answer{Content: "答"})

	resp, err := svc.Ask(context.Background(), 7, AskRequest{Question: "随便聊聊"})
	require.NoError(t, err)
	assert.Equal(t, "llm", resp.Source)
	assert.Empty(t, answerer.gotContext)
}

func TestAskFailsWhenUserMessageCannotPersist(t *testing.T) {
	transcript := &fakeTranscript{appendErr: errors.New("db down")}
	svc := NewQAService(transcript, &fakeModuleSource{}, &fakeAnswerer{})

	_, err := svc.Ask(context.Background(), 7, AskRequest{Question: "问"})
	assert.Error(t, err)
	assert.Empty(t, transcript.messages)
}

func TestGetHistoryScopedToUserAndSession(t *testing.T) {
	svc, _, _ := newQAFixture(Answer{Content: "答"})

	_, err := svc.Ask(context.Background(), 7, AskRequest{Question: "问1", SessionID: "s1"})
	require.NoError(t, err)
	_, err = svc.Ask(context.Background(), 8, AskRequest{Question: "问2", SessionID: "s1"})
	require.NoError(t, err)

	history, err := svc.GetHistory(7, "s1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "问1", history[0].Content)

	require.NoError(t, svc.DeleteSession(7, "s1"))
	history, err = svc.GetHistory(7, "s1")
	require.NoError(t, err)
	assert.Empty(t, history)
}
