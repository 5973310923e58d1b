package controller

import (
	"ai_teaching_backend/internal/service"
	"ai_teaching_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ChapterController struct {
	ChapterService *service.ChapterService
}

func NewChapterController(chapterService *service.ChapterService) *ChapterController {
	return &ChapterController{ChapterService: chapterService}
}

// List godoc
// @Summary 章节列表
// @Description status 默认为 published，传 all 返回全部状态
// @Tags 章节
// @Produce json
// @Param courseId query string false "课程ID"
// @Param status query string false "状态" Enums(published, draft, all)
// @Success 200 {object} util.Response{data=[]service.ChapterResponse}
// @Router /api/chapters [get]
func (c *ChapterController) List(ctx *gin.Context) {
	list, err := c.ChapterService.List(ctx.Query("courseId"), ctx.Query("status"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// Get godoc
// @Summary 章节详情
// @Tags 章节
// @Produce json
// @Param id path string true "章节ID"
// @Success 200 {object} util.Response{data=service.ChapterResponse}
// @Failure 404 {object} util.Response
// @Router /api/chapters/{id} [get]
func (c *ChapterController) Get(ctx *gin.Context) {
	ch, err := c.ChapterService.Get(ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, ch)
}

// Create godoc
// @Summary 创建章节
// @Tags 教师-章节
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.ChapterRequest true "章节信息"
// @Success 201 {object} util.Response{data=model.Chapter}
// @Router /api/teacher/chapters [post]
func (c *ChapterController) Create(ctx *gin.Context) {
	var req service.ChapterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	ch, err := c.ChapterService.Create(ctx.Request.Context(), util.GetUserFromContext(ctx), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, ch)
}

// Update godoc
// @Summary 更新章节
// @Tags 教师-章节
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "章节ID"
// @Param body body service.ChapterRequest true "章节信息"
// @Success 200 {object} util.Response{data=model.Chapter}
// @Router /api/teacher/chapters/{id} [put]
func (c *ChapterController) Update(ctx *gin.Context) {
	var req service.ChapterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	ch, err := c.ChapterService.Update(ctx.Request.Context(), util.GetUserFromContext(ctx), ctx.Param("id"), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, ch)
}

// Delete godoc
// @Summary 删除章节
// @Tags 教师-章节
// @Security ApiKeyAuth
// @Param id path string true "章节ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/chapters/{id} [delete]
func (c *ChapterController) Delete(ctx *gin.Context) {
	if err := c.ChapterService.Delete(ctx.Request.Context(), util.GetUserFromContext(ctx), ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Reorder godoc
// @Summary 调整章节顺序
// @Tags 教师-章节
// @Accept json
// @Security ApiKeyAuth
// @Param id path string true "课程ID"
// @Param body body service.ReorderRequest true "排序"
// @Success 200 {object} util.Response
// @Router /api/teacher/courses/{id}/chapters/reorder [put]
func (c *ChapterController) Reorder(ctx *gin.Context) {
	var req service.ReorderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.ChapterService.Reorder(ctx.Request.Context(), util.GetUserFromContext(ctx), ctx.Param("id"), req.Updates); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
