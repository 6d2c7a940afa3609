package controller

import (
	"hr_training_backend/internal/service"
	"hr_training_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QAController struct {
	QAService *service.QAService
}

func NewQAController(qaService *service.QAService) *QAController {
	return &QAController{QAService: qaService}
}

// Ask godoc
// @Summary 学习问答
// @Description 向智能助教提问，可关联具体模块获取更精准的回答
// @Tags 问答
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.AskRequest true "问题"
// @Success 200 {object} util.Response{data=service.AskResponse}
// @Router /api/qa/ask [post]
func (c *QAController) Ask(ctx *gin.Context) {
	var req service.AskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	resp, err := c.QAService.Ask(ctx.Request.Context(), claims.UserID, req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, resp)
}

// History godoc
// @Summary 会话聊天记录
// @Tags 问答
// @Security ApiKeyAuth
// @Param   sessionId path string true "会话ID"
// @Success 200 {object} util.Response{data=[]model.ChatMessage}
// @Router /api/qa/sessions/{sessionId} [get]
func (c *QAController) History(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	messages, err := c.QAService.GetHistory(claims.UserID, ctx.Param("sessionId"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, messages)
}

// Sessions godoc
// @Summary 会话列表
// @Description 返回每个会话的首条提问，按时间倒序
// @Tags 问答
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.ChatMessage}
// @Router /api/qa/sessions [get]
func (c *QAController) Sessions(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	sessions, err := c.QAService.ListSessions(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, sessions)
}

// DeleteSession godoc
// @Summary 删除会话
// @Tags 问答
// @Security ApiKeyAuth
// @Param   sessionId path string true "会话ID"
// @Success 200 {object} util.Response
// @Router /api/qa/sessions/{sessionId} [delete]
func (c *QAController) DeleteSession(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if err := c.QAService.DeleteSession(claims.UserID, ctx.Param("sessionId")); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
