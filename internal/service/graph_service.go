package service

import (
	"ai_teaching_backend/internal/config"
	"ai_teaching_backend/internal/fetch"
	"ai_teaching_backend/internal/graph"
	"ai_teaching_backend/internal/model"
	"ai_teaching_backend/internal/repository"
	"ai_teaching_backend/internal/util"
	"ai_teaching_backend/pkg/logger"
	"ai_teaching_backend/pkg/monitoring"
	"ai_teaching_backend/pkg/tracing"
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GraphResponse 图谱投影及统计
type GraphResponse struct {
	CourseID string       `json:"courseId"`
	Nodes    []graph.Node `json:"nodes"`
	Edges    []graph.Edge `json:"edges"`
	Stats    graph.Stats  `json:"stats"`
}

type GraphService struct {
	CourseRepo    *repository.CourseRepository
	ChapterRepo   *repository.ChapterRepository
	KnowledgeRepo *repository.KnowledgePointRepository
	ProgressRepo  *repository.ProgressRepository
	SnapshotRepo  *repository.SnapshotRepository
	CourseService *CourseService
	Storage       *StorageService
	Structure     *StructureCache
	Builder       *graph.Builder

	mu             sync.RWMutex
	clickThreshold float64
	sourceFactory  func(userID uint) fetch.Source
}

// LayoutFromConfig 配置中的布局参数
func LayoutFromConfig(cfg config.GraphConfig) graph.Layout {
	return graph.Layout{
		ChapterRadius:      cfg.ChapterRadius,
		KnowledgeRadiusMin: cfg.KnowledgeRadiusMin,
		KnowledgeRadiusMax: cfg.KnowledgeRadiusMax,
	}
}

func NewGraphService(
	cfg config.GraphConfig,
	courseRepo *repository.CourseRepository,
	chapterRepo *repository.ChapterRepository,
	kpRepo *repository.KnowledgePointRepository,
	progressRepo *repository.ProgressRepository,
	snapshotRepo *repository.SnapshotRepository,
	courseService *CourseService,
	storage *StorageService,
	structure *StructureCache,
) *GraphService {
	return &GraphService{
		CourseRepo:     courseRepo,
		ChapterRepo:    chapterRepo,
		KnowledgeRepo:  kpRepo,
		ProgressRepo:   progressRepo,
		SnapshotRepo:   snapshotRepo,
		CourseService:  courseService,
		Storage:        storage,
		Structure:      structure,
		Builder:        graph.NewBuilder(LayoutFromConfig(cfg), cfg.Seed),
		clickThreshold: cfg.ClickThreshold,
	}
}

// ApplyConfig 配置热更新，只影响之后的构图和新建会话
func (s *GraphService) ApplyConfig(cfg config.GraphConfig) {
	s.Builder.SetLayout(LayoutFromConfig(cfg))
	s.mu.Lock()
	s.clickThreshold = cfg.ClickThreshold
	s.mu.Unlock()
	logger.Log.Info("图谱布局配置已更新",
		zap.Float64("chapterRadius", cfg.ChapterRadius),
		zap.Float64("clickThreshold", cfg.ClickThreshold))
}

func (s *GraphService) ClickThreshold() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clickThreshold
}

// NewController 为交互会话创建独立的视图控制器
func (s *GraphService) NewController(opts ...graph.ControllerOption) *graph.Controller {
	opts = append([]graph.ControllerOption{graph.WithClickThreshold(s.ClickThreshold())}, opts...)
	return graph.NewController(s.Builder, opts...)
}

// CheckAccess 未发布课程只对归属教师和管理员开放
func (s *GraphService) CheckAccess(claims *util.Claims, courseID string) error {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		return courseNotFound(err)
	}
	if course.Status != model.CoursePublished && authorizeCourse(claims, course) != nil {
		return util.ErrCourseNotFound
	}
	return nil
}

// SetSource 替换构图数据源，传 nil 恢复为数据库
func (s *GraphService) SetSource(fn func(userID uint) fetch.Source) {
	s.mu.Lock()
	s.sourceFactory = fn
	s.mu.Unlock()
}

// Source 默认以数据库为数据源，结果与 HTTP 接口返回的数据一致
func (s *GraphService) Source(userID uint) fetch.Source {
	s.mu.RLock()
	fn := s.sourceFactory
	s.mu.RUnlock()
	if fn != nil {
		return fn(userID)
	}
	return &dbSource{svc: s, userID: userID}
}

// DatabaseSource 不受 SetSource 影响的数据库数据源
func (s *GraphService) DatabaseSource(userID uint) fetch.Source {
	return &dbSource{svc: s, userID: userID}
}

// Load 并发读取课程、章节和知识点，得到构图输入
func (s *GraphService) Load(ctx context.Context, claims *util.Claims, courseID string) (graph.Input, error) {
	ctx, span := tracing.Start(ctx, "graph.Load", courseID)
	if err := s.CheckAccess(claims, courseID); err != nil {
		tracing.End(span, err)
		return graph.Input{}, err
	}
	in, err := fetch.NewLoader(s.Source(claims.UserID)).Load(ctx, courseID)
	tracing.End(span, err)
	return in, err
}

func (s *GraphService) Build(ctx context.Context, claims *util.Claims, courseID string) (*graph.Graph, error) {
	start := time.Now()
	in, err := s.Load(ctx, claims, courseID)
	if err != nil {
		monitoring.ObserveGraphBuild(start, 0, err)
		return nil, err
	}

	_, span := tracing.Start(ctx, "graph.Build", courseID)
	g := s.Builder.Build(in)
	tracing.End(span, nil)

	monitoring.ObserveGraphBuild(start, len(g.Nodes), nil)
	return g, nil
}

func (s *GraphService) Projection(ctx context.Context, claims *util.Claims, courseID string) (*GraphResponse, error) {
	g, err := s.Build(ctx, claims, courseID)
	if err != nil {
		return nil, err
	}
	return &GraphResponse{CourseID: courseID, Nodes: g.Nodes, Edges: g.Edges, Stats: g.Stats()}, nil
}

// RenderSVG 无状态渲染：视图状态完全由调用方给出
func (s *GraphService) RenderSVG(ctx context.Context, claims *util.Claims, courseID string, state graph.ViewState, width, height float64) ([]byte, graph.Stats, error) {
	g, err := s.Build(ctx, claims, courseID)
	if err != nil {
		return nil, graph.Stats{}, err
	}
	var buf bytes.Buffer
	graph.Render(g, state).WriteSVG(&buf, width, height)
	return buf.Bytes(), g.Stats(), nil
}

// Snapshot 渲染 SVG 并写入存储后端
func (s *GraphService) Snapshot(ctx context.Context, claims *util.Claims, courseID string, state graph.ViewState, width, height float64) (*model.GraphSnapshot, error) {
	data, stats, err := s.RenderSVG(ctx, claims, courseID, state, width, height)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("graph-snapshots/%s/%s.svg", courseID, uuid.New().String())
	url, err := s.Storage.Put(ctx, key, data, util.MimeSVG)
	if err != nil {
		return nil, err
	}

	snap := &model.GraphSnapshot{
		CourseID:  courseID,
		UserID:    claims.UserID,
		ObjectKey: key,
		URL:       url,
		Size:      int64(len(data)),
		NodeCount: stats.NodeCount,
		EdgeCount: stats.EdgeCount,
	}
	if err := s.SnapshotRepo.Create(snap); err != nil {
		if delErr := s.Storage.Delete(ctx, key); delErr != nil {
			logger.Log.Warn("清理快照文件失败", zap.String("key", key), zap.Error(delErr))
		}
		return nil, err
	}
	return snap, nil
}

func (s *GraphService) Snapshots(claims *util.Claims, courseID string, limit int) ([]model.GraphSnapshot, error) {
	if err := s.CheckAccess(claims, courseID); err != nil {
		return nil, err
	}
	return s.SnapshotRepo.ListByCourse(courseID, limit)
}

// dbSource 实现 fetch.Source。课程取自用户的选课记录，
// 未选课时构图阶段会用章节信息生成占位课程节点
type dbSource struct {
	svc    *GraphService
	userID uint
}

func (d *dbSource) Courses(ctx context.Context) ([]fetch.Course, error) {
	list, err := d.svc.CourseService.StudentCourses(d.userID)
	if err != nil {
		return nil, err
	}
	out := make([]fetch.Course, 0, len(list))
	for _, c := range list {
		out = append(out, fetch.Course{
			ID:                c.ID,
			Name:              c.Name,
			Description:       c.Description,
			Progress:          c.Progress,
			TotalChapters:     c.TotalChapters,
			CompletedChapters: c.CompletedChapters,
		})
	}
	return out, nil
}

func (d *dbSource) Chapters(ctx context.Context, courseID string) ([]fetch.Chapter, error) {
	return fetchCached(ctx, d.svc.Structure, chaptersKeyPrefix+courseID, func() ([]fetch.Chapter, error) {
		chapters, err := d.svc.ChapterRepo.List(courseID, "")
		if err != nil {
			return nil, err
		}
		counts, err := d.svc.ChapterRepo.KnowledgePointCounts(courseID)
		if err != nil {
			return nil, err
		}
		out := make([]fetch.Chapter, 0, len(chapters))
		for _, ch := range chapters {
			item := fetch.Chapter{
				ID:                  ch.ID,
				CourseID:            ch.CourseID,
				Title:               ch.Title,
				Description:         ch.Description,
				Order:               ch.Order,
				KnowledgePointCount: counts[ch.ID],
			}
			if ch.Course != nil {
				item.CourseName = ch.Course.Name
			}
			out = append(out, item)
		}
		return out, nil
	})
}

// KnowledgePoints 结构走缓存，学习进度每次实时读取
func (d *dbSource) KnowledgePoints(ctx context.Context, courseID string) ([]fetch.KnowledgePoint, error) {
	points, err := fetchCached(ctx, d.svc.Structure, knowledgePointsKeyPrefix+courseID, func() ([]fetch.KnowledgePoint, error) {
		list, err := d.svc.KnowledgeRepo.ListByCourse(courseID)
		if err != nil {
			return nil, err
		}
		out := make([]fetch.KnowledgePoint, 0, len(list))
		for _, kp := range list {
			out = append(out, fetch.KnowledgePoint{
				ID:            kp.ID,
				ChapterID:     kp.ChapterID,
				CourseID:      courseID,
				Title:         kp.Title,
				Description:   kp.Description,
				Difficulty:    graph.ParseDifficulty(kp.Difficulty),
				Importance:    graph.ParseImportance(kp.Importance),
				EstimatedTime: kp.EstimatedTime,
			})
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	progress, err := d.svc.ProgressRepo.KnowledgePointProgressMap(d.userID, courseID)
	if err != nil {
		return nil, err
	}
	for i := range points {
		points[i].Progress = progress[points[i].ID]
	}
	return points, nil
}
