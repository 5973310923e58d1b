package controller

import (
	"ai_teaching_backend/internal/service"
	"ai_teaching_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LearningController struct {
	LearningService *service.LearningService
}

func NewLearningController(learningService *service.LearningService) *LearningController {
	return &LearningController{LearningService: learningService}
}

// List godoc
// @Summary 学习记录列表
// @Tags 学习记录
// @Produce json
// @Security ApiKeyAuth
// @Param courseId query string false "课程ID"
// @Param studentId query int false "学生ID（管理员可用）"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=service.LearningRecordList}
// @Router /api/learning-records [get]
func (c *LearningController) List(ctx *gin.Context) {
	page, limit := util.ParsePage(ctx)
	list, err := c.LearningService.ListRecords(util.GetUserFromContext(ctx), service.LearningRecordQuery{
		CourseID:  ctx.Query("courseId"),
		StudentID: util.MustParseUint(ctx.Query("studentId")),
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// Get godoc
// @Summary 学习记录详情
// @Tags 学习记录
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "记录ID"
// @Success 200 {object} util.Response{data=service.LearningRecord}
// @Router /api/learning-records/{id} [get]
func (c *LearningController) Get(ctx *gin.Context) {
	r, err := c.LearningService.GetRecord(util.GetUserFromContext(ctx), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, r)
}

// Create godoc
// @Summary 记录学习进度
// @Tags 学习记录
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.LearningRecordRequest true "课程与进度"
// @Success 201 {object} util.Response{data=service.LearningRecord}
// @Router /api/learning-records [post]
func (c *LearningController) Create(ctx *gin.Context) {
	var req service.LearningRecordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if req.CourseID == "" {
		util.BadRequest(ctx, "courseId is required")
		return
	}
	r, err := c.LearningService.RecordProgress(util.GetUserFromContext(ctx), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, r)
}

// Update godoc
// @Summary 更新学习进度
// @Tags 学习记录
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "记录ID"
// @Param body body service.LearningRecordRequest true "进度"
// @Success 200 {object} util.Response{data=service.LearningRecord}
// @Router /api/learning-records/{id} [put]
func (c *LearningController) Update(ctx *gin.Context) {
	var req service.LearningRecordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	r, err := c.LearningService.UpdateRecord(util.GetUserFromContext(ctx), ctx.Param("id"), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, r)
}

// Delete godoc
// @Summary 重置学习进度
// @Tags 学习记录
// @Security ApiKeyAuth
// @Param id path string true "记录ID"
// @Success 200 {object} util.Response
// @Router /api/learning-records/{id} [delete]
func (c *LearningController) Delete(ctx *gin.Context) {
	if err := c.LearningService.ResetRecord(util.GetUserFromContext(ctx), ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Stats godoc
// @Summary 课程学习统计
// @Description 学习时长（分钟）、已批改作业的平均得分（百分制）
// @Tags 学习记录
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "课程ID"
// @Success 200 {object} util.Response{data=service.StudentStats}
// @Router /api/student-stats/{courseId} [get]
func (c *LearningController) Stats(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	stats, err := c.LearningService.Stats(user.UserID, ctx.Param("courseId"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}
