package controller

import (
	"ai_teaching_backend/internal/repository"
	"ai_teaching_backend/internal/service"
	"ai_teaching_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type KnowledgePointController struct {
	KnowledgePointService *service.KnowledgePointService
	ProgressService       *service.ProgressService
}

func NewKnowledgePointController(kpService *service.KnowledgePointService, progressService *service.ProgressService) *KnowledgePointController {
	return &KnowledgePointController{
		KnowledgePointService: kpService,
		ProgressService:       progressService,
	}
}

// List godoc
// @Summary 知识点列表
// @Tags 知识点
// @Produce json
// @Param chapterId query string false "章节ID"
// @Param courseId query string false "课程ID"
// @Param search query string false "关键字"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=service.KnowledgePointList}
// @Router /api/knowledge-points [get]
func (c *KnowledgePointController) List(ctx *gin.Context) {
	page, limit := util.ParsePage(ctx)
	list, err := c.KnowledgePointService.List(repository.KnowledgePointFilter{
		ChapterID: ctx.Query("chapterId"),
		CourseID:  ctx.Query("courseId"),
		Search:    ctx.Query("search"),
	}, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// Get godoc
// @Summary 知识点详情
// @Tags 知识点
// @Produce json
// @Param id path string true "知识点ID"
// @Success 200 {object} util.Response{data=model.KnowledgePoint}
// @Failure 404 {object} util.Response
// @Router /api/knowledge-points/{id} [get]
func (c *KnowledgePointController) Get(ctx *gin.Context) {
	kp, err := c.KnowledgePointService.Get(ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, kp)
}

// Create godoc
// @Summary 创建知识点
// @Description difficulty 取 easy/medium/hard，importance 取 low/medium/high 或 1-5
// @Tags 教师-知识点
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.KnowledgePointRequest true "知识点信息"
// @Success 201 {object} util.Response{data=model.KnowledgePoint}
// @Router /api/teacher/knowledge-points [post]
func (c *KnowledgePointController) Create(ctx *gin.Context) {
	var req service.KnowledgePointRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	kp, err := c.KnowledgePointService.Create(ctx.Request.Context(), util.GetUserFromContext(ctx), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, kp)
}

// Update godoc
// @Summary 更新知识点
// @Tags 教师-知识点
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "知识点ID"
// @Param body body service.KnowledgePointRequest true "知识点信息"
// @Success 200 {object} util.Response{data=model.KnowledgePoint}
// @Router /api/teacher/knowledge-points/{id} [put]
func (c *KnowledgePointController) Update(ctx *gin.Context) {
	var req service.KnowledgePointRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	kp, err := c.KnowledgePointService.Update(ctx.Request.Context(), util.GetUserFromContext(ctx), ctx.Param("id"), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, kp)
}

// Delete godoc
// @Summary 删除知识点
// @Tags 教师-知识点
// @Security ApiKeyAuth
// @Param id path string true "知识点ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/knowledge-points/{id} [delete]
func (c *KnowledgePointController) Delete(ctx *gin.Context) {
	if err := c.KnowledgePointService.Delete(ctx.Request.Context(), util.GetUserFromContext(ctx), ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Reorder godoc
// @Summary 调整知识点顺序
// @Tags 教师-知识点
// @Accept json
// @Security ApiKeyAuth
// @Param id path string true "章节ID"
// @Param body body service.ReorderRequest true "排序"
// @Success 200 {object} util.Response
// @Router /api/teacher/chapters/{id}/knowledge-points/reorder [put]
func (c *KnowledgePointController) Reorder(ctx *gin.Context) {
	var req service.ReorderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.KnowledgePointService.Reorder(ctx.Request.Context(), util.GetUserFromContext(ctx), ctx.Param("id"), req.Updates); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// UpdateProgress godoc
// @Summary 更新知识点进度
// @Tags 学生
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "知识点ID"
// @Param body body service.KnowledgePointProgressRequest true "进度"
// @Success 200 {object} util.Response{data=model.KnowledgePointProgress}
// @Router /api/knowledge-points/{id}/progress [put]
func (c *KnowledgePointController) UpdateProgress(ctx *gin.Context) {
	var req service.KnowledgePointProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	user := util.GetUserFromContext(ctx)
	p, err := c.ProgressService.UpdateKnowledgePoint(user.UserID, ctx.Param("id"), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, p)
}
