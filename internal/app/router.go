package app

import (
	"ai_teaching_backend/docs"
	"ai_teaching_backend/internal/config"
	"ai_teaching_backend/internal/middleware"
	"ai_teaching_backend/internal/mock"
	"ai_teaching_backend/internal/model"
	"ai_teaching_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c, cfg)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		// 学生/通用 授权接口
		a.registerStudentRoutes(authGroup, c)

		// 知识图谱
		a.registerGraphRoutes(authGroup, c)

		// 教师相关接口
		a.registerTeacherRoutes(authGroup, c)
	}

	// 3. 开发模式下挂载模拟数据接口，供前端联调
	if cfg.Server.Mode == gin.DebugMode {
		mock.NewServer().Register(router.Group("/mock"))
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)

		public.GET("/courses", c.course.List)
		// 归属教师可以查看未发布课程
		public.GET("/courses/:id", middleware.TryAuthMiddleware(cfg), c.course.Get)

		public.GET("/chapters", c.chapter.List)
		public.GET("/chapters/:id", c.chapter.Get)

		public.GET("/knowledge-points", c.knowledge.List)
		public.GET("/knowledge-points/:id", c.knowledge.Get)
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/me", c.auth.Me)

	rg.POST("/courses/:id/enroll", c.course.Enroll)
	rg.DELETE("/courses/:id/enroll", c.course.Unenroll)
	rg.GET("/student/courses", c.course.StudentCourses)

	progress := rg.Group("/chapter-progress")
	{
		progress.GET("", c.progress.List)
		progress.GET("/:chapterId", c.progress.Get)
		progress.PUT("/:chapterId", c.progress.Update)
		progress.DELETE("/:chapterId", c.progress.Delete)
	}

	rg.PUT("/knowledge-points/:id/progress", c.knowledge.UpdateProgress)

	assignments := rg.Group("/assignments")
	{
		assignments.GET("", c.assignment.List)
		assignments.GET("/:id", c.assignment.Get)
		assignments.POST("/:id/submit", middleware.RoleMiddleware(model.Student), c.assignment.Submit)
	}

	records := rg.Group("/learning-records")
	{
		records.GET("", c.learning.List)
		records.GET("/:id", c.learning.Get)
		records.POST("", middleware.RoleMiddleware(model.Student), c.learning.Create)
		records.PUT("/:id", middleware.RoleMiddleware(model.Student), c.learning.Update)
		records.DELETE("/:id", middleware.RoleMiddleware(model.Student), c.learning.Delete)
	}

	rg.GET("/student-stats/:courseId", c.learning.Stats)
}

func (a *App) registerGraphRoutes(rg *gin.RouterGroup, c *controllers) {
	graph := rg.Group("/graph/courses/:id")
	{
		graph.GET("", c.graph.Get)
		graph.GET("/svg", c.graph.SVG)
		graph.POST("/snapshot", c.graph.Snapshot)
		graph.GET("/snapshots", c.graph.Snapshots)
		graph.GET("/ws", c.graph.WebSocket)
	}
}

func (a *App) registerTeacherRoutes(rg *gin.RouterGroup, c *controllers) {
	teacher := rg.Group("/teacher")
	teacher.Use(middleware.RoleMiddleware(model.Teacher))
	{
		teacher.GET("/courses", c.course.TeacherList)
		teacher.POST("/courses", c.course.Create)
		teacher.PUT("/courses/:id", c.course.Update)
		teacher.DELETE("/courses/:id", c.course.Delete)
		teacher.POST("/courses/:id/publish", c.course.Publish)
		teacher.POST("/courses/:id/unpublish", c.course.Unpublish)
		teacher.PUT("/courses/:id/chapters/reorder", c.chapter.Reorder)

		teacher.POST("/chapters", c.chapter.Create)
		teacher.PUT("/chapters/:id", c.chapter.Update)
		teacher.DELETE("/chapters/:id", c.chapter.Delete)
		teacher.PUT("/chapters/:id/knowledge-points/reorder", c.knowledge.Reorder)

		teacher.POST("/knowledge-points", c.knowledge.Create)
		teacher.PUT("/knowledge-points/:id", c.knowledge.Update)
		teacher.DELETE("/knowledge-points/:id", c.knowledge.Delete)

		teacher.GET("/assignments", c.assignment.TeacherList)
		teacher.POST("/assignments", c.assignment.Create)
		teacher.PUT("/assignments/:id", c.assignment.Update)
		teacher.DELETE("/assignments/:id", c.assignment.Delete)
		teacher.PUT("/submissions/:id/grade", c.assignment.Grade)
	}
}
