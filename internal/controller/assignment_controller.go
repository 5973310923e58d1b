package controller

import (
	"ai_teaching_backend/internal/service"
	"ai_teaching_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AssignmentController struct {
	AssignmentService *service.AssignmentService
}

func NewAssignmentController(assignmentService *service.AssignmentService) *AssignmentController {
	return &AssignmentController{AssignmentService: assignmentService}
}

// List godoc
// @Summary 作业列表
// @Description 学生只能看到已发布的作业，并附带自己的提交
// @Tags 作业
// @Produce json
// @Security ApiKeyAuth
// @Param courseId query string false "课程ID"
// @Param knowledgePointId query string false "知识点ID"
// @Param status query string false "状态（教师可用）"
// @Param type query string false "类型"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=service.AssignmentList}
// @Router /api/assignments [get]
func (c *AssignmentController) List(ctx *gin.Context) {
	page, limit := util.ParsePage(ctx)
	list, err := c.AssignmentService.List(util.GetUserFromContext(ctx), service.AssignmentQuery{
		KnowledgePointID: ctx.Query("knowledgePointId"),
		CourseID:         ctx.Query("courseId"),
		Status:           ctx.Query("status"),
		Type:             ctx.Query("type"),
		Page:             page,
		Limit:            limit,
	})
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// Get godoc
// @Summary 作业详情
// @Tags 作业
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "作业ID"
// @Success 200 {object} util.Response{data=model.Assignment}
// @Failure 404 {object} util.Response
// @Router /api/assignments/{id} [get]
func (c *AssignmentController) Get(ctx *gin.Context) {
	a, err := c.AssignmentService.Get(util.GetUserFromContext(ctx), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

// Submit godoc
// @Summary 提交作业
// @Description 只接收文本答案，每个学生只能提交一次
// @Tags 学生
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "作业ID"
// @Param body body service.SubmitRequest true "答案"
// @Success 201 {object} util.Response{data=model.Submission}
// @Failure 400 {object} util.Response "已提交或作业已截止"
// @Router /api/assignments/{id}/submit [post]
func (c *AssignmentController) Submit(ctx *gin.Context) {
	var req service.SubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	sub, err := c.AssignmentService.Submit(util.GetUserFromContext(ctx), ctx.Param("id"), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, sub)
}

// TeacherList godoc
// @Summary 我的作业
// @Tags 教师-作业
// @Produce json
// @Security ApiKeyAuth
// @Param courseId query string false "课程ID"
// @Success 200 {object} util.Response{data=[]model.Assignment}
// @Router /api/teacher/assignments [get]
func (c *AssignmentController) TeacherList(ctx *gin.Context) {
	list, err := c.AssignmentService.TeacherList(util.GetUserFromContext(ctx), ctx.Query("courseId"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// Create godoc
// @Summary 创建作业
// @Tags 教师-作业
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.AssignmentRequest true "作业信息"
// @Success 201 {object} util.Response{data=model.Assignment}
// @Router /api/teacher/assignments [post]
func (c *AssignmentController) Create(ctx *gin.Context) {
	var req service.AssignmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	a, err := c.AssignmentService.Create(util.GetUserFromContext(ctx), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, a)
}

// Update godoc
// @Summary 更新作业
// @Tags 教师-作业
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "作业ID"
// @Param body body service.AssignmentRequest true "作业信息"
// @Success 200 {object} util.Response{data=model.Assignment}
// @Router /api/teacher/assignments/{id} [put]
func (c *AssignmentController) Update(ctx *gin.Context) {
	var req service.AssignmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	a, err := c.AssignmentService.Update(util.GetUserFromContext(ctx), ctx.Param("id"), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

// Delete godoc
// @Summary 删除作业
// @Tags 教师-作业
// @Security ApiKeyAuth
// @Param id path string true "作业ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/assignments/{id} [delete]
func (c *AssignmentController) Delete(ctx *gin.Context) {
	if err := c.AssignmentService.Delete(util.GetUserFromContext(ctx), ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Grade godoc
// @Summary 批改提交
// @Tags 教师-作业
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "提交ID"
// @Param body body service.GradeRequest true "评分"
// @Success 200 {object} util.Response{data=model.Submission}
// @Failure 400 {object} util.Response "分数超出范围"
// @Router /api/teacher/submissions/{id}/grade [put]
func (c *AssignmentController) Grade(ctx *gin.Context) {
	var req service.GradeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	sub, err := c.AssignmentService.Grade(util.GetUserFromContext(ctx), ctx.Param("id"), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, sub)
}
