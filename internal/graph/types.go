package graph

import (
	"math"
	"strings"
)

type NodeType string

const (
	NodeCourse    NodeType = "course"
	NodeChapter   NodeType = "chapter"
	NodeKnowledge NodeType = "knowledge"
)

// RelationKind 边的关系类型
type RelationKind string

const (
	RelCourseChapter      RelationKind = "course-chapter"
	RelChapterKnowledge   RelationKind = "chapter-knowledge"
	RelKnowledgeKnowledge RelationKind = "knowledge-knowledge"
)

const (
	StrengthCourseChapter      = 1.0
	StrengthChapterKnowledge   = 0.8
	StrengthKnowledgeKnowledge = 0.3
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

type Importance string

const (
	ImportanceLow    Importance = "low"
	ImportanceMedium Importance = "medium"
	ImportanceHigh   Importance = "high"
)

var (
	AllDifficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}
	AllImportances  = []Importance{ImportanceLow, ImportanceMedium, ImportanceHigh}
)

// ParseDifficulty 不区分大小写，无法识别时返回 medium
func ParseDifficulty(s string) Difficulty {
	switch Difficulty(strings.ToLower(strings.TrimSpace(s))) {
	case DifficultyEasy:
		return DifficultyEasy
	case DifficultyHard:
		return DifficultyHard
	default:
		return DifficultyMedium
	}
}

// ParseImportance 同时接受 low/medium/high 以及 1-5 的数值评分
func ParseImportance(s string) Importance {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "1", "2":
		return ImportanceLow
	case "high", "4", "5":
		return ImportanceHigh
	default:
		return ImportanceMedium
	}
}

// Position 二维坐标
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Position) Add(q Position) Position {
	return Position{X: p.X + q.X, Y: p.Y + q.Y}
}

func (p Position) Sub(q Position) Position {
	return Position{X: p.X - q.X, Y: p.Y - q.Y}
}

func (p Position) Scale(f float64) Position {
	return Position{X: p.X * f, Y: p.Y * f}
}

func (p Position) Dist(q Position) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

type Node struct {
	ID       string   `json:"id"`
	EntityID string   `json:"entityId"`
	Type     NodeType `json:"type"`
	Label    string   `json:"label"`
	Position Position `json:"position"`
	Size     float64  `json:"size"`
	Color    string   `json:"color"`

	Description   string     `json:"description,omitempty"`
	Progress      float64    `json:"progress"`
	Difficulty    Difficulty `json:"difficulty,omitempty"`
	Importance    Importance `json:"importance,omitempty"`
	EstimatedTime int        `json:"estimatedTime,omitempty"`
	Order         int        `json:"order,omitempty"`

	TotalChapters     int `json:"totalChapters,omitempty"`
	CompletedChapters int `json:"completedChapters,omitempty"`
}

type Edge struct {
	ID       string       `json:"id"`
	Source   string       `json:"source"`
	Target   string       `json:"target"`
	Kind     RelationKind `json:"kind"`
	Strength float64      `json:"strength"`
}

type Stats struct {
	NodeCount      int `json:"nodeCount"`
	EdgeCount      int `json:"edgeCount"`
	ChapterCount   int `json:"chapterCount"`
	KnowledgeCount int `json:"knowledgeCount"`
}

// Graph 由课程/章节/知识点派生出的内存投影，仅用于渲染
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`

	nodeIndex map[string]int
	incident  map[string][]int
}

// NewGraph 构建图并建立节点索引与邻接索引
func NewGraph(nodes []Node, edges []Edge) *Graph {
	g := &Graph{Nodes: nodes, Edges: edges}
	g.reindex()
	return g
}

func (g *Graph) reindex() {
	g.nodeIndex = make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		g.nodeIndex[n.ID] = i
	}
	g.incident = make(map[string][]int, len(g.Nodes))
	for i, e := range g.Edges {
		g.incident[e.Source] = append(g.incident[e.Source], i)
		if e.Target != e.Source {
			g.incident[e.Target] = append(g.incident[e.Target], i)
		}
	}
}

// Node 按 id 查找节点，返回的指针指向图内部数据
func (g *Graph) Node(id string) (*Node, bool) {
	if g == nil {
		return nil, false
	}
	i, ok := g.nodeIndex[id]
	if !ok {
		return nil, false
	}
	return &g.Nodes[i], true
}

// IncidentEdges 返回与节点相连的边下标
func (g *Graph) IncidentEdges(id string) []int {
	if g == nil {
		return nil
	}
	return g.incident[id]
}

func (g *Graph) Stats() Stats {
	s := Stats{}
	if g == nil {
		return s
	}
	s.NodeCount = len(g.Nodes)
	s.EdgeCount = len(g.Edges)
	for _, n := range g.Nodes {
		switch n.Type {
		case NodeChapter:
			s.ChapterCount++
		case NodeKnowledge:
			s.KnowledgeCount++
		}
	}
	return s
}

// ClampProgress 将进度限制在 [0,100]，NaN 视为 0
func ClampProgress(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
