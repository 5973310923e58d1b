package controller

import (
	"ai_teaching_backend/internal/graph"
	"ai_teaching_backend/internal/service"
	"ai_teaching_backend/internal/util"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
)

type GraphController struct {
	GraphService *service.GraphService
	Hub          *service.GraphHub
}

func NewGraphController(graphService *service.GraphService, hub *service.GraphHub) *GraphController {
	return &GraphController{GraphService: graphService, Hub: hub}
}

type SnapshotRequest struct {
	Zoom            *float64 `json:"zoom"`
	PanX            float64  `json:"panX"`
	PanY            float64  `json:"panY"`
	SelectedID      string   `json:"selectedId"`
	Difficulties    []string `json:"difficulties"`
	Importances     []string `json:"importances"`
	ShowConnections *bool    `json:"showConnections"`
	Width           float64  `json:"width"`
	Height          float64  `json:"height"`
}

func (r SnapshotRequest) viewState() graph.ViewState {
	s := graph.DefaultViewState()
	if r.Zoom != nil {
		s.SetZoom(*r.Zoom)
	}
	s.Pan = graph.Position{X: r.PanX, Y: r.PanY}
	s.SelectedID = r.SelectedID
	if r.Difficulties != nil {
		s.SetDifficulties(service.DifficultySet(r.Difficulties))
	}
	if r.Importances != nil {
		s.SetImportances(service.ImportanceSet(r.Importances))
	}
	if r.ShowConnections != nil {
		s.SetShowConnections(*r.ShowConnections)
	}
	return s
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	return strings.Split(raw, ",")
}

// viewStateFromQuery 缺省参数取默认值；difficulty/importance 传空串表示空集合
func viewStateFromQuery(ctx *gin.Context) graph.ViewState {
	s := graph.DefaultViewState()
	s.SetZoom(util.QueryFloat(ctx, "zoom", 1))
	s.Pan = graph.Position{X: util.QueryFloat(ctx, "panX", 0), Y: util.QueryFloat(ctx, "panY", 0)}
	s.SelectedID = ctx.Query("selected")
	if raw, ok := ctx.GetQuery("difficulty"); ok {
		s.SetDifficulties(service.DifficultySet(splitList(raw)))
	}
	if raw, ok := ctx.GetQuery("importance"); ok {
		s.SetImportances(service.ImportanceSet(splitList(raw)))
	}
	s.SetShowConnections(util.QueryBool(ctx, "connections", true))
	return s
}

func canvasSize(width, height float64) (float64, float64) {
	if width <= 0 || height <= 0 {
		return graph.DefaultCanvasWidth, graph.DefaultCanvasHeight
	}
	return width, height
}

// Get godoc
// @Summary 课程知识图谱
// @Description 返回节点、边和统计信息，节点坐标由服务端布局生成
// @Tags 知识图谱
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "课程ID"
// @Success 200 {object} util.Response{data=service.GraphResponse}
// @Failure 404 {object} util.Response
// @Router /api/graph/courses/{id} [get]
func (c *GraphController) Get(ctx *gin.Context) {
	resp, err := c.GraphService.Projection(ctx.Request.Context(), util.GetUserFromContext(ctx), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, resp)
}

// SVG godoc
// @Summary 渲染知识图谱 SVG
// @Tags 知识图谱
// @Produce image/svg+xml
// @Security ApiKeyAuth
// @Param id path string true "课程ID"
// @Param zoom query number false "缩放 0.3-3"
// @Param panX query number false "水平平移"
// @Param panY query number false "垂直平移"
// @Param selected query string false "选中节点ID"
// @Param difficulty query string false "难度筛选，逗号分隔"
// @Param importance query string false "重要性筛选，逗号分隔"
// @Param connections query bool false "是否显示连线"
// @Param width query number false "画布宽度"
// @Param height query number false "画布高度"
// @Success 200 {string} string "SVG"
// @Router /api/graph/courses/{id}/svg [get]
func (c *GraphController) SVG(ctx *gin.Context) {
	width, height := canvasSize(util.QueryFloat(ctx, "width", 0), util.QueryFloat(ctx, "height", 0))
	data, _, err := c.GraphService.RenderSVG(ctx.Request.Context(), util.GetUserFromContext(ctx), ctx.Param("id"), viewStateFromQuery(ctx), width, height)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.Data(http.StatusOK, util.MimeSVG, data)
}

// Snapshot godoc
// @Summary 保存图谱快照
// @Tags 知识图谱
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "课程ID"
// @Param body body SnapshotRequest false "视图状态"
// @Success 201 {object} util.Response{data=model.GraphSnapshot}
// @Router /api/graph/courses/{id}/snapshot [post]
func (c *GraphController) Snapshot(ctx *gin.Context) {
	var req SnapshotRequest
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}
	width, height := canvasSize(req.Width, req.Height)
	snap, err := c.GraphService.Snapshot(ctx.Request.Context(), util.GetUserFromContext(ctx), ctx.Param("id"), req.viewState(), width, height)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, snap)
}

// Snapshots godoc
// @Summary 图谱快照列表
// @Tags 知识图谱
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "课程ID"
// @Param limit query int false "数量"
// @Success 200 {object} util.Response{data=[]model.GraphSnapshot}
// @Router /api/graph/courses/{id}/snapshots [get]
func (c *GraphController) Snapshots(ctx *gin.Context) {
	_, limit := util.ParsePage(ctx)
	list, err := c.GraphService.Snapshots(util.GetUserFromContext(ctx), ctx.Param("id"), limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// WebSocket godoc
// @Summary 交互式图谱会话
// @Description 升级为 websocket，token 可通过查询参数传递
// @Tags 知识图谱
// @Param id path string true "课程ID"
// @Param token query string false "JWT"
// @Param width query number false "画布宽度"
// @Param height query number false "画布高度"
// @Router /api/graph/courses/{id}/ws [get]
func (c *GraphController) WebSocket(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	courseID := ctx.Param("id")
	// 握手前校验，升级后无法再返回 HTTP 状态码
	if err := c.GraphService.CheckAccess(claims, courseID); err != nil {
		respondError(ctx, err)
		return
	}
	c.Hub.ServeWs(ctx.Writer, ctx.Request, claims, courseID,
		cast.ToFloat64(ctx.Query("width")), cast.ToFloat64(ctx.Query("height")))
}
