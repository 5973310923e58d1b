package graph

import (
	"math"
	"slices"
)

const (
	MinZoom  = 0.3
	MaxZoom  = 3.0
	ZoomStep = 1.2
)

// ViewState 视图状态：缩放、平移、选中节点、筛选条件
// 每次渲染都显式传入，渲染结果只取决于 (图, 视图状态)
type ViewState struct {
	Zoom            float64      `json:"zoom"`
	Pan             Position     `json:"pan"`
	SelectedID      string       `json:"selectedId,omitempty"`
	Difficulties    []Difficulty `json:"difficulties"`
	Importances     []Importance `json:"importances"`
	ShowConnections bool         `json:"showConnections"`
}

func DefaultViewState() ViewState {
	return ViewState{
		Zoom:            1,
		Difficulties:    slices.Clone(AllDifficulties),
		Importances:     slices.Clone(AllImportances),
		ShowConnections: true,
	}
}

func clampZoom(z float64) float64 {
	return math.Max(MinZoom, math.Min(MaxZoom, z))
}

func (s *ViewState) ZoomIn() {
	s.Zoom = clampZoom(s.Zoom * ZoomStep)
}

func (s *ViewState) ZoomOut() {
	s.Zoom = clampZoom(s.Zoom / ZoomStep)
}

// SetZoom 用于无状态渲染时直接指定缩放
func (s *ViewState) SetZoom(z float64) {
	if math.IsNaN(z) || z == 0 {
		z = 1
	}
	s.Zoom = clampZoom(z)
}

// Center 平移归零并恢复 1 倍缩放
func (s *ViewState) Center() {
	s.Pan = Position{}
	s.Zoom = 1
}

func (s *ViewState) PanBy(delta Position) {
	s.Pan = s.Pan.Add(delta)
}

// ToggleSelect 单选：再次点击同一节点取消选中
func (s *ViewState) ToggleSelect(id string) {
	if s.SelectedID == id {
		s.SelectedID = ""
		return
	}
	s.SelectedID = id
}

// SetDifficulties 去重并按固定顺序保存，未知取值被忽略
func (s *ViewState) SetDifficulties(values []Difficulty) {
	out := make([]Difficulty, 0, len(AllDifficulties))
	for _, d := range AllDifficulties {
		if slices.Contains(values, d) {
			out = append(out, d)
		}
	}
	s.Difficulties = out
}

func (s *ViewState) SetImportances(values []Importance) {
	out := make([]Importance, 0, len(AllImportances))
	for _, i := range AllImportances {
		if slices.Contains(values, i) {
			out = append(out, i)
		}
	}
	s.Importances = out
}

func (s *ViewState) SetShowConnections(v bool) {
	s.ShowConnections = v
}

// NodeVisible 课程和章节节点不参与筛选
func (s ViewState) NodeVisible(n Node) bool {
	if n.Type != NodeKnowledge {
		return true
	}
	return slices.Contains(s.Difficulties, n.Difficulty) && slices.Contains(s.Importances, n.Importance)
}

// Visible 返回筛选后可见的节点和边的下标
func Visible(g *Graph, s ViewState) (nodes []int, edges []int) {
	if g == nil {
		return nil, nil
	}
	keep := make(map[string]bool, len(g.Nodes))
	for i, n := range g.Nodes {
		if s.NodeVisible(n) {
			keep[n.ID] = true
			nodes = append(nodes, i)
		}
	}
	if !s.ShowConnections {
		return nodes, nil
	}
	for i, e := range g.Edges {
		if keep[e.Source] && keep[e.Target] {
			edges = append(edges, i)
		}
	}
	return nodes, edges
}
