package graph

import "fmt"

// DefaultClickThreshold 拖动距离（屏幕坐标）不超过该值时视为点击
const DefaultClickThreshold = 3.0

type LoadState string

const (
	LoadIdle    LoadState = "idle"
	LoadLoading LoadState = "loading"
	LoadReady   LoadState = "ready"
	LoadError   LoadState = "error"
)

type Status struct {
	State     LoadState `json:"state"`
	Error     string    `json:"error,omitempty"`
	Retryable bool      `json:"retryable"`
}

type EdgePatch struct {
	ID string  `json:"id"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// DragPatch 拖动过程中的增量更新：只包含被拖节点的位置和与之相连的边
type DragPatch struct {
	NodeID    string      `json:"nodeId"`
	Position  Position    `json:"position"`
	Transform string      `json:"transform"`
	Edges     []EdgePatch `json:"edges"`
}

type dragSession struct {
	nodeID      string
	startScreen Position
	startPos    Position
	current     Position
	moved       float64
}

type panSession struct {
	last Position
}

// Controller 持有图投影和视图状态，每次状态变化恰好触发一次渲染。
// 不是并发安全的，调用方需保证所有事件在同一个 goroutine 中顺序处理。
type Controller struct {
	builder        *Builder
	graph          *Graph
	state          ViewState
	status         Status
	clickThreshold float64

	drag *dragSession
	pan  *panSession

	renders  int
	onRender func(Scene)
	onStatus func(Status)
}

type ControllerOption func(*Controller)

func WithClickThreshold(t float64) ControllerOption {
	return func(c *Controller) {
		if t > 0 {
			c.clickThreshold = t
		}
	}
}

func OnRender(fn func(Scene)) ControllerOption {
	return func(c *Controller) { c.onRender = fn }
}

func OnStatus(fn func(Status)) ControllerOption {
	return func(c *Controller) { c.onStatus = fn }
}

func NewController(builder *Builder, opts ...ControllerOption) *Controller {
	c := &Controller{
		builder:        builder,
		state:          DefaultViewState(),
		status:         Status{State: LoadIdle},
		clickThreshold: DefaultClickThreshold,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Graph() *Graph { return c.graph }

func (c *Controller) State() ViewState { return c.state }

func (c *Controller) Status() Status { return c.status }

// Renders 已执行的渲染次数
func (c *Controller) Renders() int { return c.renders }

func (c *Controller) Scene() Scene { return Render(c.graph, c.state) }

func (c *Controller) Dragging() bool { return c.drag != nil }

func (c *Controller) Panning() bool { return c.pan != nil }

func (c *Controller) setStatus(s Status) {
	c.status = s
	c.notifyStatus()
}

func (c *Controller) notifyStatus() {
	if c.onStatus != nil {
		c.onStatus(c.status)
	}
}

func (c *Controller) render() {
	c.renders++
	if c.onRender != nil {
		c.onRender(Render(c.graph, c.state))
	}
}

// BeginLoad 标记数据请求进行中，已渲染的内容保持不变
func (c *Controller) BeginLoad() {
	c.setStatus(Status{State: LoadLoading})
}

// FailLoad 请求失败时保留之前的图，只更新状态并允许重试
func (c *Controller) FailLoad(err error) {
	msg := "load failed"
	if err != nil {
		msg = err.Error()
	}
	c.setStatus(Status{State: LoadError, Error: msg, Retryable: true})
}

// Rebuild 用新数据完整重建图。进行中的拖动和平移会被丢弃，
// 手动拖动过的位置不会保留。
func (c *Controller) Rebuild(in Input) {
	c.drag = nil
	c.pan = nil
	c.graph = c.builder.Build(in)
	if _, ok := c.graph.Node(c.state.SelectedID); !ok {
		c.state.SelectedID = ""
	}
	c.status = Status{State: LoadReady}
	c.notifyStatus()
	c.render()
}

func (c *Controller) ZoomIn() {
	c.state.ZoomIn()
	c.render()
}

func (c *Controller) ZoomOut() {
	c.state.ZoomOut()
	c.render()
}

func (c *Controller) Center() {
	c.state.Center()
	c.render()
}

func (c *Controller) ToggleSelect(id string) {
	c.state.ToggleSelect(id)
	c.render()
}

func (c *Controller) SetDifficulties(values []Difficulty) {
	c.state.SetDifficulties(values)
	c.render()
}

func (c *Controller) SetImportances(values []Importance) {
	c.state.SetImportances(values)
	c.render()
}

func (c *Controller) SetShowConnections(v bool) {
	c.state.SetShowConnections(v)
	c.render()
}

func (c *Controller) ToggleConnections() {
	c.SetShowConnections(!c.state.ShowConnections)
}

// PointerDown 在可见节点上按下开始拖动，在空白处或被过滤的节点上按下开始平移
func (c *Controller) PointerDown(nodeID string, at Position) {
	if n, ok := c.graph.Node(nodeID); ok && nodeID != "" && c.state.NodeVisible(*n) {
		c.pan = nil
		c.drag = &dragSession{
			nodeID:      nodeID,
			startScreen: at,
			startPos:    n.Position,
			current:     n.Position,
		}
		return
	}
	c.drag = nil
	c.pan = &panSession{last: at}
}

// PointerMove 拖动时返回增量补丁，不触发整体渲染；平移时更新视图并渲染。
// 平移期间不检查坐标是否在画布内。
func (c *Controller) PointerMove(at Position) *DragPatch {
	switch {
	case c.drag != nil:
		return c.moveDrag(at)
	case c.pan != nil:
		c.state.PanBy(at.Sub(c.pan.last))
		c.pan.last = at
		c.render()
	}
	return nil
}

func (c *Controller) moveDrag(at Position) *DragPatch {
	d := c.drag
	if _, ok := c.graph.Node(d.nodeID); !ok {
		return nil
	}
	zoom := c.state.Zoom
	if zoom == 0 {
		zoom = 1
	}
	delta := at.Sub(d.startScreen)
	if dist := at.Dist(d.startScreen); dist > d.moved {
		d.moved = dist
	}
	d.current = d.startPos.Add(delta.Scale(1 / zoom))
	return c.patch(d.nodeID, d.current)
}

// patch 通过邻接索引找到受影响的边，不做坐标匹配
func (c *Controller) patch(nodeID string, pos Position) *DragPatch {
	p := &DragPatch{
		NodeID:    nodeID,
		Position:  pos,
		Transform: fmt.Sprintf("translate(%g,%g)", pos.X, pos.Y),
	}
	if !c.state.ShowConnections {
		return p
	}
	for _, i := range c.graph.IncidentEdges(nodeID) {
		e := c.graph.Edges[i]
		if !c.visible(e.Source) || !c.visible(e.Target) {
			continue
		}
		src := c.endpoint(e.Source, nodeID, pos)
		dst := c.endpoint(e.Target, nodeID, pos)
		p.Edges = append(p.Edges, EdgePatch{ID: e.ID, X1: src.X, Y1: src.Y, X2: dst.X, Y2: dst.Y})
	}
	return p
}

func (c *Controller) visible(id string) bool {
	n, ok := c.graph.Node(id)
	return ok && c.state.NodeVisible(*n)
}

func (c *Controller) endpoint(id, dragged string, pos Position) Position {
	if id == dragged {
		return pos
	}
	if n, ok := c.graph.Node(id); ok {
		return n.Position
	}
	return Position{}
}

// PointerUp 结束拖动或平移。拖动结束时把位置写回节点；
// 移动距离不超过阈值时视为点击，节点回到原位并切换选中状态。
func (c *Controller) PointerUp(at Position) {
	if d := c.drag; d != nil {
		c.moveDrag(at)
		c.drag = nil
		n, ok := c.graph.Node(d.nodeID)
		if !ok {
			return
		}
		if d.moved <= c.clickThreshold {
			n.Position = d.startPos
			c.state.ToggleSelect(d.nodeID)
		} else {
			n.Position = d.current
		}
		c.render()
		return
	}
	c.pan = nil
}
