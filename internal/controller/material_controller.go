package controller

import (
	"errors"

	"hr_training_backend/internal/service"
	"hr_training_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type MaterialController struct {
	MaterialService *service.MaterialService
}

func NewMaterialController(materialService *service.MaterialService) *MaterialController {
	return &MaterialController{MaterialService: materialService}
}

// Upload godoc
// @Summary 上传培训素材
// @Description 视频文件会自动探测时长并生成封面图
// @Tags 素材
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "模块ID"
// @Param   file formData file true "文件"
// @Success 201 {object} util.Response{data=model.Material}
// @Router /api/hr/modules/{id}/materials [post]
func (c *MaterialController) Upload(ctx *gin.Context) {
	moduleID, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	header, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "缺少上传文件")
		return
	}

	claims := util.GetUserFromContext(ctx)
	m, err := c.MaterialService.Upload(ctx.Request.Context(), moduleID, claims.UserID, header)
	if err != nil {
		if errors.Is(err, util.ErrModuleNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, m)
}

// List godoc
// @Summary 模块素材列表
// @Tags 素材
// @Security ApiKeyAuth
// @Param   id path int true "模块ID"
// @Success 200 {object} util.Response{data=[]model.Material}
// @Router /api/modules/{id}/materials [get]
func (c *MaterialController) List(ctx *gin.Context) {
	moduleID, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	list, err := c.MaterialService.ListByModule(moduleID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// Delete godoc
// @Summary 删除素材
// @Tags 素材
// @Security ApiKeyAuth
// @Param   materialId path int true "素材ID"
// @Success 200 {object} util.Response
// @Router /api/hr/materials/{materialId} [delete]
func (c *MaterialController) Delete(ctx *gin.Context) {
	id, ok := parseID(ctx, "materialId")
	if !ok {
		return
	}

	if err := c.MaterialService.Delete(ctx.Request.Context(), id); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
