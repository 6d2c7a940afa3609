package service

import (
	"context"
	"fmt"

	"hr_training_backend/internal/model"
	"hr_training_backend/pkg/logger"

	"go.uber.org/zap"
)

// transcriptStore 聊天记录的落库接口，测试时可替换为内存实现
type transcriptStore interface {
	Append(msg *model.ChatMessage) error
	ListBySession(userID uint, sessionID string) ([]model.ChatMessage, error)
	ListSessions(userID uint, limit int) ([]model.ChatMessage, error)
	DeleteSession(userID uint, sessionID string) error
}

// moduleContextSource 问答上下文的检索来源
type moduleContextSource interface {
	FindByID(id uint) (*model.TrainingModule, error)
	SearchContent(keyword string, limit int) ([]model.TrainingModule, error)
}

// questionAnswerer Agent问答入口
type questionAnswerer interface {
	AnswerQuestion(ctx context.Context, sessionID, question, contextText string) Answer
}

type QAService struct {
	transcript transcriptStore
	modules    moduleContextSource
	agent      questionAnswerer
}

func NewQAService(chatRepo transcriptStore, moduleRepo moduleContextSource, agent questionAnswerer) *QAService {
	return &QAService{
		transcript: chatRepo,
		modules:    moduleRepo,
		agent:      agent,
	}
}

type AskRequest struct {
	Question  string `json:"question" binding:"required"`
	SessionID string `json:"sessionId"`
	ModuleID  *uint  `json:"moduleId"`
}

type AskResponse struct {
	SessionID  string  `json:"sessionId"`
	Answer     string  `json:"answer"`
	Confidence float64 `json:"confidence"`
	Section    string  `json:"section"`
	Source     string  `json:"source"` // module_content 或 llm
	Fallback   bool    `json:"fallback"`
}

// Ask 处理一次学习问答。不论Agent成功与否，
// 每次调用固定向聊天记录追加一条user消息和一条assistant消息。
func (s *QAService) Ask(ctx context.Context, userID uint, req AskRequest) (*AskResponse, error) {
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = NewSessionID()
	}

	contextText, source := s.buildContext(req)

	userMsg := &model.ChatMessage{
		UserID:    userID,
		SessionID: sessionID,
		ModuleID:  req.ModuleID,
		Role:      "user",
		Content:   req.Question,
	}
	if err := s.transcript.Append(userMsg); err != nil {
		return nil, err
	}

	answer := s.agent.AnswerQuestion(ctx, sessionID, req.Question, contextText)

	assistantMsg := &model.ChatMessage{
		UserID:     userID,
		SessionID:  sessionID,
		ModuleID:   req.ModuleID,
		Role:       "assistant",
		Content:    answer.Content,
		Confidence: answer.Confidence,
		Section:    answer.Section,
		Fallback:   answer.Fallback,
	}
	if err := s.transcript.Append(assistantMsg); err != nil {
		// 应答已经产生，落库失败只记日志，不让用户白等一轮
		logger.Log.Error("failed to persist assistant message", zap.Error(err))
	}

	return &AskResponse{
		SessionID:  sessionID,
		Answer:     answer.Content,
		Confidence: answer.Confidence,
		Section:    answer.Section,
		Source:     source,
		Fallback:   answer.Fallback,
	}, nil
}

// buildContext 组装问答上下文：指定了模块就用该模块正文，
// 否则按关键词在已发布模块里检索
func (s *QAService) buildContext(req AskRequest) (string, string) {
	if req.ModuleID != nil {
		m, err := s.modules.FindByID(*req.ModuleID)
		if err == nil {
			return fmt.Sprintf("[模块] %s\n%s\n\n%s", m.Title, m.Description, m.Content), "module_content"
		}
	}

	modules, err := s.modules.SearchContent(req.Question, 2)
	if err != nil || len(modules) == 0 {
		return "", "llm"
	}

	var contextText string
	for _, m := range modules {
		contextText += fmt.Sprintf("[模块] 标题: %s\n描述: %s\n内容: %s\n\n", m.Title, m.Description, m.Content)
	}
	return contextText, "module_content"
}

func (s *QAService) GetHistory(userID uint, sessionID string) ([]model.ChatMessage, error) {
	return s.transcript.ListBySession(userID, sessionID)
}

func (s *QAService) ListSessions(userID uint) ([]model.ChatMessage, error) {
	return s.transcript.ListSessions(userID, 50)
}

func (s *QAService) DeleteSession(userID uint, sessionID string) error {
	return s.transcript.DeleteSession(userID, sessionID)
}
