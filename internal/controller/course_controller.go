package controller

import (
	"ai_teaching_backend/internal/model"
	"ai_teaching_backend/internal/service"
	"ai_teaching_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService *service.CourseService
}

func NewCourseController(courseService *service.CourseService) *CourseController {
	return &CourseController{CourseService: courseService}
}

func listQuery(ctx *gin.Context) service.CourseListQuery {
	page, limit := util.ParsePage(ctx)
	return service.CourseListQuery{
		Search:   ctx.Query("search"),
		Category: ctx.Query("category"),
		Page:     page,
		Limit:    limit,
	}
}

// List godoc
// @Summary 课程列表
// @Description 已发布课程，支持搜索和分类筛选
// @Tags 课程
// @Produce json
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Param search query string false "关键字"
// @Param category query string false "分类"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/courses [get]
func (c *CourseController) List(ctx *gin.Context) {
	q := listQuery(ctx)
	courses, total, err := c.CourseService.ListPublished(q)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.NewPage(courses, total, q.Page, q.Limit))
}

// Get godoc
// @Summary 课程详情
// @Description 课程及其有序章节和知识点
// @Tags 课程
// @Produce json
// @Param id path string true "课程ID"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 404 {object} util.Response
// @Router /api/courses/{id} [get]
func (c *CourseController) Get(ctx *gin.Context) {
	course, err := c.CourseService.GetDetail(util.GetUserFromContext(ctx), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// TeacherList godoc
// @Summary 我管理的课程
// @Tags 教师-课程
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/teacher/courses [get]
func (c *CourseController) TeacherList(ctx *gin.Context) {
	q := listQuery(ctx)
	courses, total, err := c.CourseService.ListManaged(util.GetUserFromContext(ctx), q)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.NewPage(courses, total, q.Page, q.Limit))
}

// Create godoc
// @Summary 创建课程
// @Tags 教师-课程
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.CourseRequest true "课程信息"
// @Success 201 {object} util.Response{data=model.Course}
// @Failure 400 {object} util.Response "课程代码已存在"
// @Router /api/teacher/courses [post]
func (c *CourseController) Create(ctx *gin.Context) {
	var req service.CourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	course, err := c.CourseService.Create(util.GetUserFromContext(ctx), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// Update godoc
// @Summary 更新课程
// @Tags 教师-课程
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "课程ID"
// @Param body body service.CourseRequest true "课程信息"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 403 {object} util.Response
// @Router /api/teacher/courses/{id} [put]
func (c *CourseController) Update(ctx *gin.Context) {
	var req service.CourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	course, err := c.CourseService.Update(ctx.Request.Context(), util.GetUserFromContext(ctx), ctx.Param("id"), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// Delete godoc
// @Summary 删除课程
// @Description 同时删除章节、知识点、选课和学习进度
// @Tags 教师-课程
// @Security ApiKeyAuth
// @Param id path string true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/courses/{id} [delete]
func (c *CourseController) Delete(ctx *gin.Context) {
	if err := c.CourseService.Delete(ctx.Request.Context(), util.GetUserFromContext(ctx), ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Publish godoc
// @Summary 发布课程
// @Tags 教师-课程
// @Security ApiKeyAuth
// @Param id path string true "课程ID"
// @Success 200 {object} util.Response{data=model.Course}
// @Router /api/teacher/courses/{id}/publish [post]
func (c *CourseController) Publish(ctx *gin.Context) {
	c.setStatus(ctx, model.CoursePublished)
}

// Unpublish godoc
// @Summary 取消发布
// @Tags 教师-课程
// @Security ApiKeyAuth
// @Param id path string true "课程ID"
// @Success 200 {object} util.Response{data=model.Course}
// @Router /api/teacher/courses/{id}/unpublish [post]
func (c *CourseController) Unpublish(ctx *gin.Context) {
	c.setStatus(ctx, model.CourseDraft)
}

func (c *CourseController) setStatus(ctx *gin.Context, status model.CourseStatus) {
	course, err := c.CourseService.SetStatus(ctx.Request.Context(), util.GetUserFromContext(ctx), ctx.Param("id"), status)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// Enroll godoc
// @Summary 选课
// @Tags 学生
// @Security ApiKeyAuth
// @Param id path string true "课程ID"
// @Success 201 {object} util.Response{data=model.Enrollment}
// @Failure 400 {object} util.Response "已选修"
// @Router /api/courses/{id}/enroll [post]
func (c *CourseController) Enroll(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	e, err := c.CourseService.Enroll(user.UserID, ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, e)
}

// Unenroll godoc
// @Summary 退课
// @Tags 学生
// @Security ApiKeyAuth
// @Param id path string true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{id}/enroll [delete]
func (c *CourseController) Unenroll(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if err := c.CourseService.Unenroll(user.UserID, ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// StudentCourses godoc
// @Summary 我的课程
// @Description 已选课程及学习进度
// @Tags 学生
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.StudentCourse}
// @Router /api/student/courses [get]
func (c *CourseController) StudentCourses(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	list, err := c.CourseService.StudentCourses(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, list)
}
