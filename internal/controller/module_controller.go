package controller

import (
	"errors"
	"strconv"

	"hr_training_backend/internal/model"
	"hr_training_backend/internal/service"
	"hr_training_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ModuleController struct {
	ModuleService *service.ModuleService
}

func NewModuleController(moduleService *service.ModuleService) *ModuleController {
	return &ModuleController{ModuleService: moduleService}
}

func parseID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// CreateModule godoc
// @Summary 创建培训模块
// @Tags 模块
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.ModuleRequest true "模块信息"
// @Success 201 {object} util.Response{data=model.TrainingModule}
// @Router /api/hr/modules [post]
func (c *ModuleController) CreateModule(ctx *gin.Context) {
	var req service.ModuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	m, err := c.ModuleService.Create(ctx.Request.Context(), claims.UserID, req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, m)
}

// UpdateModule godoc
// @Summary 更新培训模块
// @Tags 模块
// @Security ApiKeyAuth
// @Param   id path int true "模块ID"
// @Param   body body service.ModuleRequest true "模块信息"
// @Success 200 {object} util.Response{data=model.TrainingModule}
// @Router /api/hr/modules/{id} [put]
func (c *ModuleController) UpdateModule(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req service.ModuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	m, err := c.ModuleService.Update(ctx.Request.Context(), id, req)
	if err != nil {
		if errors.Is(err, util.ErrModuleNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, m)
}

// DeleteModule godoc
// @Summary 删除培训模块
// @Tags 模块
// @Security ApiKeyAuth
// @Param   id path int true "模块ID"
// @Success 200 {object} util.Response
// @Router /api/hr/modules/{id} [delete]
func (c *ModuleController) DeleteModule(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	if err := c.ModuleService.Delete(ctx.Request.Context(), id); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

type publishRequest struct {
	Published bool `json:"published"`
}

// PublishModule godoc
// @Summary 发布/下架培训模块
// @Tags 模块
// @Security ApiKeyAuth
// @Param   id path int true "模块ID"
// @Param   body body publishRequest true "发布状态"
// @Success 200 {object} util.Response
// @Router /api/hr/modules/{id}/publish [patch]
func (c *ModuleController) PublishModule(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req publishRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.ModuleService.SetPublished(ctx.Request.Context(), id, req.Published); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"published": req.Published})
}

// ListModules godoc
// @Summary 模块列表
// @Description HR看全部模块，员工只看已发布模块
// @Tags 模块
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.TrainingModule}
// @Router /api/modules [get]
func (c *ModuleController) ListModules(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	if claims.Role == model.HR {
		modules, err := c.ModuleService.ListAll()
		if err != nil {
			util.LogInternalError(ctx, err)
			return
		}
		util.Success(ctx, modules)
		return
	}

	modules, err := c.ModuleService.ListPublished(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, modules)
}

// GetModule godoc
// @Summary 模块详情（含课时和题目）
// @Tags 模块
// @Security ApiKeyAuth
// @Param   id path int true "模块ID"
// @Success 200 {object} util.Response{data=model.TrainingModule}
// @Router /api/modules/{id} [get]
func (c *ModuleController) GetModule(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	m, err := c.ModuleService.GetByID(id)
	if err != nil {
		util.NotFound(ctx)
		return
	}

	claims := util.GetUserFromContext(ctx)
	if claims.Role != model.HR && !m.Published {
		util.NotFound(ctx)
		return
	}

	util.Success(ctx, m)
}

// AddLesson godoc
// @Summary 为模块添加课时
// @Tags 模块
// @Security ApiKeyAuth
// @Param   id path int true "模块ID"
// @Param   body body service.LessonRequest true "课时信息"
// @Success 201 {object} util.Response{data=model.Lesson}
// @Router /api/hr/modules/{id}/lessons [post]
func (c *ModuleController) AddLesson(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req service.LessonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	l, err := c.ModuleService.AddLesson(ctx.Request.Context(), id, req)
	if err != nil {
		if errors.Is(err, util.ErrModuleNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, l)
}

// AddQuestion godoc
// @Summary 为模块手工录入测验题
// @Tags 模块
// @Security ApiKeyAuth
// @Param   id path int true "模块ID"
// @Param   body body service.QuestionRequest true "题目信息"
// @Success 201 {object} util.Response{data=model.QuizQuestion}
// @Router /api/hr/modules/{id}/questions [post]
func (c *ModuleController) AddQuestion(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.ModuleService.AddQuestion(ctx.Request.Context(), id, req)
	if err != nil {
		if errors.Is(err, util.ErrModuleNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, q)
}

// DeleteQuestion godoc
// @Summary 删除测验题
// @Tags 模块
// @Security ApiKeyAuth
// @Param   questionId path int true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/hr/questions/{questionId} [delete]
func (c *ModuleController) DeleteQuestion(ctx *gin.Context) {
	id, ok := parseID(ctx, "questionId")
	if !ok {
		return
	}

	if err := c.ModuleService.DeleteQuestion(id); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
