package controller

import (
	"errors"

	"hr_training_backend/internal/service"
	"hr_training_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type EnrollmentController struct {
	EnrollmentService *service.EnrollmentService
}

func NewEnrollmentController(enrollmentService *service.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{EnrollmentService: enrollmentService}
}

// Enroll godoc
// @Summary 报名培训模块
// @Tags 学习
// @Security ApiKeyAuth
// @Param   id path int true "模块ID"
// @Success 201 {object} util.Response{data=model.Enrollment}
// @Router /api/modules/{id}/enroll [post]
func (c *EnrollmentController) Enroll(ctx *gin.Context) {
	moduleID, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	claims := util.GetUserFromContext(ctx)
	e, err := c.EnrollmentService.Enroll(ctx.Request.Context(), claims.UserID, moduleID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrModuleNotFound), errors.Is(err, util.ErrModuleNotPublished):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrAlreadyEnrolled):
			util.BadRequest(ctx, "已报名该模块")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, e)
}

// CompleteLesson godoc
// @Summary 标记课时完成
// @Description 记录课时完成并重新计算学习进度
// @Tags 学习
// @Security ApiKeyAuth
// @Param   id path int true "模块ID"
// @Param   lessonId path int true "课时ID"
// @Success 200 {object} util.Response{data=model.Enrollment}
// @Router /api/modules/{id}/lessons/{lessonId}/complete [post]
func (c *EnrollmentController) CompleteLesson(ctx *gin.Context) {
	moduleID, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	lessonID, ok := parseID(ctx, "lessonId")
	if !ok {
		return
	}

	claims := util.GetUserFromContext(ctx)
	e, err := c.EnrollmentService.CompleteLesson(ctx.Request.Context(), claims.UserID, moduleID, lessonID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrNotEnrolled):
			util.BadRequest(ctx, "尚未报名该模块")
		case errors.Is(err, util.ErrLessonNotFound):
			util.NotFound(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, e)
}

// MyEnrollments godoc
// @Summary 我的学习记录
// @Tags 学习
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Enrollment}
// @Router /api/enrollments [get]
func (c *EnrollmentController) MyEnrollments(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	list, err := c.EnrollmentService.ListForUser(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, list)
}
