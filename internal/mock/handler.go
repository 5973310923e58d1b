package mock

import (
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

// Shape 响应的包装形式
type Shape int

const (
	ShapeArray Shape = iota
	ShapeData
	ShapeNested
	shapeCount
)

var shapeNames = map[string]Shape{
	"array":  ShapeArray,
	"data":   ShapeData,
	"nested": ShapeNested,
}

// Server 模拟课程接口。未通过 ?shape= 指定形状时，每次请求轮换一种包装形式，
// 用于验证前端和数据层对不同响应形状的兼容性。
type Server struct {
	counter atomic.Uint64
}

func NewServer() *Server {
	return &Server{}
}

func (s *Server) Register(r gin.IRouter) {
	r.GET("/api/student/courses", s.courses)
	r.GET("/api/chapters", s.chapters)
	r.GET("/api/knowledge-points", s.knowledgePoints)
}

// Router 独立运行时使用的 gin 引擎
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	s.Register(r)
	return r
}

func (s *Server) shape(ctx *gin.Context) Shape {
	if v, ok := shapeNames[ctx.Query("shape")]; ok {
		return v
	}
	return Shape((s.counter.Add(1) - 1) % uint64(shapeCount))
}

func (s *Server) write(ctx *gin.Context, field string, list any) {
	switch s.shape(ctx) {
	case ShapeData:
		ctx.JSON(http.StatusOK, gin.H{"success": true, "data": list})
	case ShapeNested:
		ctx.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{field: list}})
	default:
		ctx.JSON(http.StatusOK, list)
	}
}

func (s *Server) courses(ctx *gin.Context) {
	s.write(ctx, "courses", Courses)
}

func (s *Server) chapters(ctx *gin.Context) {
	list := ChaptersOf(ctx.Query("courseId"))
	if status := ctx.DefaultQuery("status", "published"); status != "all" {
		filtered := []Chapter{}
		for _, ch := range list {
			if ch.Status == status {
				filtered = append(filtered, ch)
			}
		}
		list = filtered
	}
	s.write(ctx, "chapters", list)
}

func (s *Server) knowledgePoints(ctx *gin.Context) {
	s.write(ctx, "knowledgePoints", KnowledgePointsOf(ctx.Query("courseId"), ctx.Query("chapterId")))
}
