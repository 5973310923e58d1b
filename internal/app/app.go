package app

import (
	"ai_teaching_backend/internal/config"
	"ai_teaching_backend/internal/controller"
	"ai_teaching_backend/internal/repository"
	"ai_teaching_backend/internal/service"
	"ai_teaching_backend/pkg/cache"
	"ai_teaching_backend/pkg/configwatcher"
	"ai_teaching_backend/pkg/database"
	"ai_teaching_backend/pkg/logger"
	"ai_teaching_backend/pkg/monitoring"
	"ai_teaching_backend/pkg/security"
	"ai_teaching_backend/pkg/tracing"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
	// 配置文件目录，为空时不启用热更新
	ConfigDir string

	services        *services
	tracer          *sdktrace.TracerProvider
	mu              sync.Mutex
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user       *repository.UserRepository
	course     *repository.CourseRepository
	chapter    *repository.ChapterRepository
	knowledge  *repository.KnowledgePointRepository
	enrollment *repository.EnrollmentRepository
	progress   *repository.ProgressRepository
	snapshot   *repository.SnapshotRepository
	assignment *repository.AssignmentRepository
}

type services struct {
	auth       *service.AuthService
	storage    *service.StorageService
	structure  *service.StructureCache
	course     *service.CourseService
	chapter    *service.ChapterService
	knowledge  *service.KnowledgePointService
	progress   *service.ProgressService
	graph      *service.GraphService
	graphHub   *service.GraphHub
	assignment *service.AssignmentService
	learning   *service.LearningService
}

type controllers struct {
	auth       *controller.AuthController
	course     *controller.CourseController
	chapter    *controller.ChapterController
	knowledge  *controller.KnowledgePointController
	progress   *controller.ProgressController
	graph      *controller.GraphController
	health     *controller.HealthController
	assignment *controller.AssignmentController
	learning   *controller.LearningController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.configCallbacks = append(a.configCallbacks, callback)
}

// applyConfig 热更新回调，按注册顺序执行
func (a *App) applyConfig(cfg *config.Config) {
	a.mu.Lock()
	callbacks := append([]func(*config.Config){}, a.configCallbacks...)
	a.mu.Unlock()
	for _, cb := range callbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		course:     repository.NewCourseRepository(db),
		chapter:    repository.NewChapterRepository(db),
		knowledge:  repository.NewKnowledgePointRepository(db),
		enrollment: repository.NewEnrollmentRepository(db),
		progress:   repository.NewProgressRepository(db),
		snapshot:   repository.NewSnapshotRepository(db),
		assignment: repository.NewAssignmentRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.structure = service.NewStructureCache(cache.New(rdb), time.Duration(cfg.Redis.CacheTTL)*time.Second)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.course = service.NewCourseService(repos.course, repos.enrollment, s.structure)
	s.chapter = service.NewChapterService(repos.chapter, s.course, s.structure)
	s.knowledge = service.NewKnowledgePointService(repos.knowledge, s.chapter, s.structure)
	s.progress = service.NewProgressService(repos.progress, repos.chapter, repos.knowledge, repos.course, repos.enrollment)
	s.graph = service.NewGraphService(
		cfg.Graph,
		repos.course,
		repos.chapter,
		repos.knowledge,
		repos.progress,
		repos.snapshot,
		s.course,
		s.storage,
		s.structure,
	)
	s.graphHub = service.NewGraphHub(s.graph, security.OriginChecker(cfg.CORS.AllowedOrigins))
	s.assignment = service.NewAssignmentService(repos.assignment, repos.enrollment, s.course, s.knowledge)
	s.learning = service.NewLearningService(repos.enrollment, repos.chapter, repos.assignment)

	a.RegisterConfigCallback(func(c *config.Config) {
		s.graph.ApplyConfig(c.Graph)
	})

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:      controller.NewAuthController(s.auth),
		course:    controller.NewCourseController(s.course),
		chapter:   controller.NewChapterController(s.chapter),
		knowledge: controller.NewKnowledgePointController(s.knowledge, s.progress),
		progress:  controller.NewProgressController(s.progress),
		graph:     controller.NewGraphController(s.graph, s.graphHub),
		health:    controller.NewHealthController(db, rdb, s.graphHub),

		assignment: controller.NewAssignmentController(s.assignment),
		learning:   controller.NewLearningController(s.learning),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// New 使用已建立的连接组装应用，rdb 为 nil 时使用内存缓存
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *App {
	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	app.services = app.initServices(repos, cfg, rdb)
	controllers := app.initControllers(app.services, db, rdb)

	// 监控初始化
	monitoring.Init()

	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Server.Mode == gin.DebugMode {
		router.Use(gin.Logger())
	}
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

// NewApp 初始化日志、数据库、Redis 与追踪后组装应用
func NewApp(cfg *config.Config) (*App, error) {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")
	gin.SetMode(cfg.Server.Mode)

	db, err := database.InitDB(cfg)
	if err != nil {
		return nil, err
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// Redis 不可用时退回内存缓存，不影响主流程
		logger.Log.Warn("Failed to initialize redis, falling back to memory cache", zap.Error(err))
		rdb = nil
	}

	var tp *sdktrace.TracerProvider
	if cfg.Tracing.Enabled {
		tp, err = tracing.InitTracer(tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			return nil, err
		}
	}

	app := New(cfg, db, rdb)
	app.tracer = tp
	return app, nil
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if a.ConfigDir != "" {
		go func() {
			if err := configwatcher.WatchConfig(ctx, config.Path(a.ConfigDir), a.applyConfig); err != nil {
				logger.Log.Warn("Config watcher disabled", zap.Error(err))
			}
		}()
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	// 关闭图谱会话
	a.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	logger.Log.Info("Server exiting")
}

// Close 关闭所有 websocket 会话
func (a *App) Close() {
	if a.services != nil && a.services.graphHub != nil {
		a.services.graphHub.Stop()
	}
}
