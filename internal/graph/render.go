package graph

import (
	"fmt"
	"strings"

	"github.com/rivo/uniseg"
)

const (
	dimmedOpacity    = 0.3
	labelWidthFactor = 1.6
	maxLabelLines    = 2
	ellipsis         = "…"
)

var captions = map[NodeType]string{
	NodeCourse:    "课程",
	NodeChapter:   "章节",
	NodeKnowledge: "知识点",
}

var fontSizes = map[NodeType]float64{
	NodeCourse:    14,
	NodeChapter:   12,
	NodeKnowledge: 10,
}

type NodeShape struct {
	ID          string   `json:"id"`
	Type        NodeType `json:"type"`
	X           float64  `json:"x"`
	Y           float64  `json:"y"`
	Radius      float64  `json:"radius"`
	Fill        string   `json:"fill"`
	Stroke      string   `json:"stroke"`
	StrokeWidth float64  `json:"strokeWidth"`
	Opacity     float64  `json:"opacity"`
	Selected    bool     `json:"selected"`
	FontSize    float64  `json:"fontSize"`
	Label       []string `json:"label"`
	Caption     string   `json:"caption"`
}

type EdgeShape struct {
	ID      string       `json:"id"`
	Kind    RelationKind `json:"kind"`
	Source  string       `json:"source"`
	Target  string       `json:"target"`
	X1      float64      `json:"x1"`
	Y1      float64      `json:"y1"`
	X2      float64      `json:"x2"`
	Y2      float64      `json:"y2"`
	Width   float64      `json:"width"`
	Opacity float64      `json:"opacity"`
}

// Scene 一次渲染的完整结果；边在前、节点在后
type Scene struct {
	Transform string      `json:"transform"`
	Edges     []EdgeShape `json:"edges"`
	Nodes     []NodeShape `json:"nodes"`
}

// Render 根据图和视图状态生成场景，相同输入总是得到相同输出
func Render(g *Graph, s ViewState) Scene {
	sc := Scene{
		Transform: fmt.Sprintf("translate(%g,%g) scale(%g)", s.Pan.X, s.Pan.Y, s.Zoom),
		Edges:     []EdgeShape{},
		Nodes:     []NodeShape{},
	}
	if g == nil {
		return sc
	}

	nodeIdx, edgeIdx := Visible(g, s)
	for _, i := range edgeIdx {
		sc.Edges = append(sc.Edges, edgeShape(g, g.Edges[i]))
	}

	sel, hasSelection := g.Node(s.SelectedID)
	hasSelection = hasSelection && s.NodeVisible(*sel)
	for _, i := range nodeIdx {
		n := g.Nodes[i]
		shape := NodeShape{
			ID:          n.ID,
			Type:        n.Type,
			X:           n.Position.X,
			Y:           n.Position.Y,
			Radius:      n.Size,
			Fill:        n.Color,
			Stroke:      normalStroke,
			StrokeWidth: 2,
			Opacity:     1,
			FontSize:    fontSizes[n.Type],
			Caption:     caption(n),
		}
		shape.Label = WrapLabel(n.Label, n.Size*labelWidthFactor, shape.FontSize)
		if hasSelection {
			if n.ID == s.SelectedID {
				shape.Selected = true
				shape.Stroke = selectedStroke
				shape.StrokeWidth = 4
			} else {
				shape.Opacity = dimmedOpacity
			}
		}
		sc.Nodes = append(sc.Nodes, shape)
	}
	return sc
}

func edgeShape(g *Graph, e Edge) EdgeShape {
	src, _ := g.Node(e.Source)
	dst, _ := g.Node(e.Target)
	shape := EdgeShape{
		ID:      e.ID,
		Kind:    e.Kind,
		Source:  e.Source,
		Target:  e.Target,
		Width:   1 + 2*e.Strength,
		Opacity: 0.2 + 0.6*e.Strength,
	}
	if src != nil {
		shape.X1, shape.Y1 = src.Position.X, src.Position.Y
	}
	if dst != nil {
		shape.X2, shape.Y2 = dst.Position.X, dst.Position.Y
	}
	return shape
}

// caption 圆形下方的类型说明，进度在此处再次做范围限制
func caption(n Node) string {
	name := captions[n.Type]
	switch n.Type {
	case NodeCourse, NodeKnowledge:
		return fmt.Sprintf("%s %.0f%%", name, ClampProgress(n.Progress))
	default:
		return name
	}
}

// WrapLabel 按可用宽度把标签拆成至多两行，超出部分以省略号截断。
// 宽字符（如中文）按两个单元计算。
func WrapLabel(label string, maxWidth, fontSize float64) []string {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil
	}
	unit := fontSize * 0.6
	cells := int(maxWidth / unit)
	if cells < 2 {
		cells = 2
	}

	var lines []string
	var cur strings.Builder
	width := 0
	gr := uniseg.NewGraphemes(label)
	truncated := false
	for gr.Next() {
		w := gr.Width()
		if width+w > cells {
			if len(lines) == maxLabelLines-1 {
				truncated = true
				break
			}
			lines = append(lines, strings.TrimSpace(cur.String()))
			cur.Reset()
			width = 0
		}
		cur.WriteString(gr.Str())
		width += w
	}
	last := strings.TrimSpace(cur.String())
	if truncated {
		last = truncateToWidth(last, cells-uniseg.StringWidth(ellipsis)) + ellipsis
	}
	if last != "" {
		lines = append(lines, last)
	}
	return lines
}

func truncateToWidth(s string, cells int) string {
	var b strings.Builder
	width := 0
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		if width+gr.Width() > cells {
			break
		}
		b.WriteString(gr.Str())
		width += gr.Width()
	}
	return b.String()
}
