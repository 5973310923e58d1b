package graph

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strconv"

	svg "github.com/ajstarks/svgo/float"
)

const (
	DefaultCanvasWidth  = 1200
	DefaultCanvasHeight = 800

	lineHeightFactor = 1.2
	captionGap       = 14
)

func attr(name, value string) string {
	return fmt.Sprintf(`%s="%s"`, name, html.EscapeString(value))
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteSVG 将场景写成 SVG。外层分组把原点移到画布中心，
// 内层 viewport 分组承载平移和缩放。
func (sc Scene) WriteSVG(w io.Writer, width, height float64) {
	canvas := svg.New(w)
	canvas.Start(width, height, attr("id", "knowledge-graph"))
	canvas.Gtransform(fmt.Sprintf("translate(%s,%s)", num(width/2), num(height/2)))
	canvas.Group(attr("id", "viewport"), attr("transform", sc.Transform))

	canvas.Group(attr("class", "edges"))
	for _, e := range sc.Edges {
		canvas.Line(e.X1, e.Y1, e.X2, e.Y2,
			attr("id", "edge-"+e.ID),
			attr("class", "edge edge-"+string(e.Kind)),
			attr("stroke", edgeColor),
			attr("stroke-width", num(e.Width)),
			attr("stroke-opacity", num(e.Opacity)),
		)
	}
	canvas.Gend()

	canvas.Group(attr("class", "nodes"))
	for _, n := range sc.Nodes {
		canvas.Group(
			attr("id", "node-"+n.ID),
			attr("class", "node node-"+string(n.Type)),
			attr("data-node-id", n.ID),
			attr("transform", fmt.Sprintf("translate(%s,%s)", num(n.X), num(n.Y))),
			attr("opacity", num(n.Opacity)),
		)
		canvas.Circle(0, 0, n.Radius,
			attr("fill", n.Fill),
			attr("stroke", n.Stroke),
			attr("stroke-width", num(n.StrokeWidth)),
		)
		writeLabel(canvas, n)
		canvas.Text(0, n.Radius+captionGap, n.Caption,
			attr("class", "caption"),
			attr("text-anchor", "middle"),
			attr("font-size", num(n.FontSize-1)),
		)
		canvas.Gend()
	}
	canvas.Gend()

	canvas.Gend()
	canvas.Gend()
	canvas.End()
}

func writeLabel(canvas *svg.SVG, n NodeShape) {
	lh := n.FontSize * lineHeightFactor
	// 多行文本整体垂直居中
	top := -lh*float64(len(n.Label)-1)/2 + n.FontSize/3
	for i, line := range n.Label {
		canvas.Text(0, top+float64(i)*lh, line,
			attr("class", "label"),
			attr("text-anchor", "middle"),
			attr("font-size", num(n.FontSize)),
		)
	}
}

// SVG 以默认画布尺寸输出
func (sc Scene) SVG() []byte {
	var buf bytes.Buffer
	sc.WriteSVG(&buf, DefaultCanvasWidth, DefaultCanvasHeight)
	return buf.Bytes()
}
