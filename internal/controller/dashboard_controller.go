package controller

import (
	"hr_training_backend/internal/service"
	"hr_training_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	DashboardService *service.DashboardService
}

func NewDashboardController(dashboardService *service.DashboardService) *DashboardController {
	return &DashboardController{DashboardService: dashboardService}
}

// HROverview godoc
// @Summary HR培训看板
// @Description 各模块的报名数、完成率、平均成绩及近7日活跃员工数
// @Tags 看板
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.HROverview}
// @Router /api/hr/dashboard [get]
func (c *DashboardController) HROverview(ctx *gin.Context) {
	overview, err := c.DashboardService.GetHROverview()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, overview)
}

// EmployeeOverview godoc
// @Summary 员工学习看板
// @Tags 看板
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.EmployeeOverview}
// @Router /api/dashboard [get]
func (c *DashboardController) EmployeeOverview(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	overview, err := c.DashboardService.GetEmployeeOverview(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, overview)
}
