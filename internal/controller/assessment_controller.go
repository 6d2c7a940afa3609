package controller

import (
	"errors"

	"hr_training_backend/internal/service"
	"hr_training_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AssessmentController struct {
	AssessmentService *service.AssessmentService
}

func NewAssessmentController(assessmentService *service.AssessmentService) *AssessmentController {
	return &AssessmentController{AssessmentService: assessmentService}
}

type generateQuizRequest struct {
	AssessmentType string `json:"assessmentType" binding:"omitempty,oneof=quiz open_ended"`
}

// GenerateQuiz godoc
// @Summary 基于模块内容生成测验题
// @Description 调用评估Agent根据模块内容出题并入库
// @Tags 评估
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "模块ID"
// @Param   body body generateQuizRequest false "生成参数"
// @Success 201 {object} util.Response{data=[]model.QuizQuestion}
// @Router /api/hr/modules/{id}/quiz/generate [post]
func (c *AssessmentController) GenerateQuiz(ctx *gin.Context) {
	moduleID, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req generateQuizRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}
	if req.AssessmentType == "" {
		req.AssessmentType = "quiz"
	}

	questions, err := c.AssessmentService.GenerateQuiz(ctx.Request.Context(), moduleID, req.AssessmentType)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrModuleNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrAgentNoQuestions):
			util.Error(ctx, 502, "生成测验失败，请稍后重试")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, questions)
}

// Submit godoc
// @Summary 提交测验答卷
// @Tags 评估
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.SubmitRequest true "答卷"
// @Success 200 {object} util.Response{data=model.AssessmentSubmission}
// @Router /api/assessments/submit [post]
func (c *AssessmentController) Submit(ctx *gin.Context) {
	var req service.SubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	submission, err := c.AssessmentService.Submit(ctx.Request.Context(), claims.UserID, req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrModuleNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrNoQuizQuestions):
			util.BadRequest(ctx, "该模块暂无测验题")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, submission)
}

// ListSubmissions godoc
// @Summary 我的答卷记录
// @Tags 评估
// @Security ApiKeyAuth
// @Param   id path int true "模块ID"
// @Success 200 {object} util.Response{data=[]model.AssessmentSubmission}
// @Router /api/modules/{id}/submissions [get]
func (c *AssessmentController) ListSubmissions(ctx *gin.Context) {
	moduleID, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	claims := util.GetUserFromContext(ctx)
	list, err := c.AssessmentService.ListSubmissions(claims.UserID, moduleID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, list)
}
