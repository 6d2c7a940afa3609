package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"hr_training_backend/internal/config"
	"hr_training_backend/internal/util"
	"hr_training_backend/pkg/logger"
	"hr_training_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// AgentService 外部大模型Agent网关。
// 固定两个agent：一个负责学习问答，一个负责测验生成与评分。
// 任何网络错误、非JSON应答或字段缺失都降级为兜底结果，绝不向上层返回致命错误。
type AgentService struct {
	cfg    config.AgentConfig
	client *http.Client
}

func NewAgentService(cfg config.AgentConfig) *AgentService {
	return &AgentService{
		cfg:    cfg,
		client: &http.Client{},
	}
}

// 兜底文案与默认评分，Agent不可用时使用
const (
	FallbackAnswer   = "培训助手暂时无法回答，请稍后再试。您也可以直接查阅模块资料或联系HR。"
	FallbackFeedback = "自动评阅暂时不可用，本次作答已记录，请稍后重试或等待HR人工评阅。"
)

// AgentRequest 请求信封，message为纯文本或JSON序列化后的评测信封
type AgentRequest struct {
	UserID    string `json:"user_id"`
	AgentID   string `json:"agent_id"`
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// AssessmentEnvelope 测验生成/评分的结构化信封
type AssessmentEnvelope struct {
	ModuleContent  string   `json:"module_content"`
	AssessmentType string   `json:"assessment_type"`
	UserResponse   string   `json:"user_response,omitempty"`
	History        []string `json:"history,omitempty"`
}

// Answer 问答应答
type Answer struct {
	Content    string  `json:"content"`
	Confidence float64 `json:"confidence"`
	Section    string  `json:"section"`
	Fallback   bool    `json:"fallback"`
}

// GeneratedQuestion Agent生成的测验题
type GeneratedQuestion struct {
	Prompt        string   `json:"question"`
	Type          string   `json:"type"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
}

// Evaluation 开放题评分结果
type Evaluation struct {
	Score    float64  `json:"score"` // 0-100
	Feedback string   `json:"feedback"`
	Gaps     []string `json:"gaps"`
	Fallback bool     `json:"fallback"`
}

type qaReply struct {
	Response struct {
		Content         string  `json:"content"`
		Confidence      float64 `json:"confidence"`
		SourceReference struct {
			Section string `json:"section"`
		} `json:"source_reference"`
	} `json:"response"`
}

type generationReply struct {
	Assessment struct {
		Questions []GeneratedQuestion `json:"questions"`
	} `json:"assessment"`
}

type evaluationReply struct {
	Assessment struct {
		Evaluation struct {
			Score          float64  `json:"score"`
			Feedback       string   `json:"feedback"`
			GapsIdentified []string `json:"gaps_identified"`
		} `json:"evaluation"`
	} `json:"assessment"`
}

// NewSessionID 生成合成会话ID：时间戳毫秒+随机后缀
func NewSessionID() string {
	return "sess_" + strconv.FormatInt(time.Now().UnixMilli(), 10) + "_" + randSuffix()
}

func syntheticUserID() string {
	return "u_" + strconv.FormatInt(time.Now().UnixMilli(), 10) + "_" + randSuffix()
}

func randSuffix() string {
	return strconv.FormatInt(rand.Int63n(1<<31), 36)
}

// call 发起一次Agent调用并返回原始应答体。无重试、无退避。
func (s *AgentService) call(ctx context.Context, agentID, sessionID, message string) (string, error) {
	reqBody := AgentRequest{
		UserID:    syntheticUserID(),
		AgentID:   agentID,
		SessionID: sessionID,
		Message:   message,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.cfg.BaseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	start := time.Now()
	resp, err := s.client.Do(req)
	monitoring.AgentCallDuration.WithLabelValues(agentID).Observe(time.Since(start).Seconds())
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("agent API error (status %d): %s", resp.StatusCode, string(body))
	}

	return string(body), nil
}

// AnswerQuestion 调用问答Agent。失败时返回兜底应答，不返回错误。
func (s *AgentService) AnswerQuestion(ctx context.Context, sessionID, question, contextText string) Answer {
	message := question
	if contextText != "" {
		message = fmt.Sprintf("请结合以下培训内容回答员工的问题。\n\n【培训内容】\n%s\n\n【问题】\n%s", contextText, question)
	}

	raw, err := s.call(ctx, s.cfg.QAAgentID, sessionID, message)
	if err != nil {
		logger.Log.Error("qa agent call failed", zap.Error(err))
		monitoring.AgentCallCounter.WithLabelValues(s.cfg.QAAgentID, "true").Inc()
		return Answer{Content: FallbackAnswer, Fallback: true}
	}

	var reply qaReply
	if !util.ExtractJSON(raw, &reply) || reply.Response.Content == "" {
		logger.Log.Warn("qa agent returned unparsable reply", zap.String("body", truncate(raw, 512)))
		monitoring.AgentCallCounter.WithLabelValues(s.cfg.QAAgentID, "true").Inc()
		return Answer{Content: FallbackAnswer, Fallback: true}
	}

	monitoring.AgentCallCounter.WithLabelValues(s.cfg.QAAgentID, "false").Inc()
	return Answer{
		Content:    reply.Response.Content,
		Confidence: reply.Response.Confidence,
		Section:    reply.Response.SourceReference.Section,
	}
}

// GenerateQuestions 调用评测Agent生成测验题。
// 生成失败没有可用的兜底内容，错误交由调用方处理。
func (s *AgentService) GenerateQuestions(ctx context.Context, moduleContent, assessmentType string) ([]GeneratedQuestion, error) {
	envelope, err := json.Marshal(AssessmentEnvelope{
		ModuleContent:  moduleContent,
		AssessmentType: assessmentType,
	})
	if err != nil {
		return nil, err
	}

	raw, err := s.call(ctx, s.cfg.AssessmentAgentID, NewSessionID(), string(envelope))
	if err != nil {
		monitoring.AgentCallCounter.WithLabelValues(s.cfg.AssessmentAgentID, "true").Inc()
		return nil, err
	}

	var reply generationReply
	if !util.ExtractJSON(raw, &reply) || len(reply.Assessment.Questions) == 0 {
		monitoring.AgentCallCounter.WithLabelValues(s.cfg.AssessmentAgentID, "true").Inc()
		return nil, util.ErrAgentNoQuestions
	}

	monitoring.AgentCallCounter.WithLabelValues(s.cfg.AssessmentAgentID, "false").Inc()
	return reply.Assessment.Questions, nil
}

// GradeResponse 调用评测Agent评阅开放题。失败时返回默认评分对象，不返回错误。
func (s *AgentService) GradeResponse(ctx context.Context, moduleContent, assessmentType, userResponse string, history []string) Evaluation {
	envelope, err := json.Marshal(AssessmentEnvelope{
		ModuleContent:  moduleContent,
		AssessmentType: assessmentType,
		UserResponse:   userResponse,
		History:        history,
	})
	if err != nil {
		return Evaluation{Feedback: FallbackFeedback, Fallback: true}
	}

	raw, err := s.call(ctx, s.cfg.AssessmentAgentID, NewSessionID(), string(envelope))
	if err != nil {
		logger.Log.Error("grading agent call failed", zap.Error(err))
		monitoring.AgentCallCounter.WithLabelValues(s.cfg.AssessmentAgentID, "true").Inc()
		return Evaluation{Feedback: FallbackFeedback, Fallback: true}
	}

	var reply evaluationReply
	parsed := util.ExtractJSON(raw, &reply)
	ev := reply.Assessment.Evaluation
	if !parsed || (ev.Feedback == "" && ev.Score == 0 && len(ev.GapsIdentified) == 0) {
		logger.Log.Warn("grading agent returned unparsable reply", zap.String("body", truncate(raw, 512)))
		monitoring.AgentCallCounter.WithLabelValues(s.cfg.AssessmentAgentID, "true").Inc()
		return Evaluation{Feedback: FallbackFeedback, Fallback: true}
	}

	monitoring.AgentCallCounter.WithLabelValues(s.cfg.AssessmentAgentID, "false").Inc()
	if ev.Score < 0 {
		ev.Score = 0
	}
	if ev.Score > 100 {
		ev.Score = 100
	}
	return Evaluation{
		Score:    ev.Score,
		Feedback: ev.Feedback,
		Gaps:     ev.GapsIdentified,
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
