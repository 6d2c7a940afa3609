package controller

import (
	"strconv"

	"hr_training_backend/internal/service"
	"hr_training_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

// UpdateProfile godoc
// @Summary 更新个人资料
// @Tags 用户
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.UpdateProfileRequest true "资料"
// @Success 200 {object} util.Response{data=model.User}
// @Router /api/profile [put]
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	var req service.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	user, err := c.UserService.UpdateProfile(claims.UserID, req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// ListEmployees godoc
// @Summary 员工列表
// @Tags 用户
// @Security ApiKeyAuth
// @Param   page query int false "页码" default(1)
// @Param   limit query int false "每页条数" default(20)
// @Success 200 {object} util.PageResponse{data=[]model.User}
// @Router /api/hr/employees [get]
func (c *UserController) ListEmployees(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	users, total, err := c.UserService.ListEmployees(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Page(ctx, users, total, page, limit)
}

type disableRequest struct {
	Disabled bool `json:"disabled"`
}

// SetDisabled godoc
// @Summary 启用/停用员工账号
// @Tags 用户
// @Security ApiKeyAuth
// @Param   id path int true "用户ID"
// @Param   body body disableRequest true "停用状态"
// @Success 200 {object} util.Response
// @Router /api/hr/employees/{id}/disable [patch]
func (c *UserController) SetDisabled(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req disableRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.UserService.SetDisabled(id, req.Disabled); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"disabled": req.Disabled})
}
