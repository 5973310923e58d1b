package controller

import (
	"ai_teaching_backend/internal/service"
	"ai_teaching_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// List godoc
// @Summary 章节学习进度列表
// @Tags 学习进度
// @Produce json
// @Security ApiKeyAuth
// @Param courseId query string false "课程ID"
// @Success 200 {object} util.Response{data=[]model.ChapterProgress}
// @Router /api/chapter-progress [get]
func (c *ProgressController) List(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	list, err := c.ProgressService.List(user.UserID, ctx.Query("courseId"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// Get godoc
// @Summary 章节学习进度
// @Tags 学习进度
// @Produce json
// @Security ApiKeyAuth
// @Param chapterId path string true "章节ID"
// @Success 200 {object} util.Response{data=model.ChapterProgress}
// @Failure 404 {object} util.Response
// @Router /api/chapter-progress/{chapterId} [get]
func (c *ProgressController) Get(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	p, err := c.ProgressService.Get(user.UserID, ctx.Param("chapterId"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, p)
}

// Update godoc
// @Summary 更新章节学习进度
// @Description 进度限制在 0-100，达到 100 标记完成，并重新计算课程进度
// @Tags 学习进度
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param chapterId path string true "章节ID"
// @Param body body service.ChapterProgressRequest true "进度"
// @Success 200 {object} util.Response{data=model.ChapterProgress}
// @Failure 403 {object} util.Response "未选修该课程"
// @Router /api/chapter-progress/{chapterId} [put]
func (c *ProgressController) Update(ctx *gin.Context) {
	var req service.ChapterProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	user := util.GetUserFromContext(ctx)
	p, err := c.ProgressService.Update(user.UserID, ctx.Param("chapterId"), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, p)
}

// Delete godoc
// @Summary 重置章节学习进度
// @Tags 学习进度
// @Security ApiKeyAuth
// @Param chapterId path string true "章节ID"
// @Success 200 {object} util.Response
// @Router /api/chapter-progress/{chapterId} [delete]
func (c *ProgressController) Delete(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if err := c.ProgressService.Delete(user.UserID, ctx.Param("chapterId")); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
