package graph

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1 门课程，2 个章节，第一章有 2 个知识点
func referenceInput() Input {
	return Input{
		Course: &CourseInfo{ID: "c1", Name: "高等数学", Progress: 40, TotalChapters: 2, CompletedChapters: 1},
		Chapters: []ChapterInfo{
			{ID: "ch2", CourseID: "c1", CourseName: "高等数学", Title: "第二章 导数与微分", Order: 2},
			{ID: "ch1", CourseID: "c1", CourseName: "高等数学", Title: "第一章 函数与极限", Order: 1},
		},
		KnowledgePoints: []KnowledgePointInfo{
			{ID: "k1", ChapterID: "ch1", Title: "极限概念", Difficulty: DifficultyEasy, Importance: ImportanceHigh},
			{ID: "k2", ChapterID: "ch1", Title: "极限运算规则", Difficulty: DifficultyHard, Importance: ImportanceMedium},
		},
	}
}

func countKind(g *Graph, kind RelationKind) int {
	n := 0
	for _, e := range g.Edges {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func TestBuildReferenceScenario(t *testing.T) {
	g := NewBuilder(DefaultLayout(), 7).Build(referenceInput())

	assert.Len(t, g.Nodes, 5)
	assert.Len(t, g.Edges, 5)
	assert.Equal(t, 2, countKind(g, RelCourseChapter))
	assert.Equal(t, 2, countKind(g, RelChapterKnowledge))
	assert.Equal(t, 1, countKind(g, RelKnowledgeKnowledge))

	stats := g.Stats()
	assert.Equal(t, Stats{NodeCount: 5, EdgeCount: 5, ChapterCount: 2, KnowledgeCount: 2}, stats)

	for _, e := range g.Edges {
		if e.Kind == RelChapterKnowledge {
			assert.Equal(t, ChapterNodeID("ch1"), e.Source)
		}
	}
}

func TestBuildNoDanglingEdges(t *testing.T) {
	in := referenceInput()
	in.KnowledgePoints = append(in.KnowledgePoints,
		KnowledgePointInfo{ID: "orphan", ChapterID: "missing", Title: "孤立知识点"},
		KnowledgePointInfo{ID: "k3", ChapterID: "ch2", Title: "导数定义"},
	)
	g := NewBuilder(DefaultLayout(), 1).Build(in)

	_, ok := g.Node(KnowledgeNodeID("orphan"))
	assert.False(t, ok, "knowledge point without chapter must be dropped")

	for _, e := range g.Edges {
		_, srcOK := g.Node(e.Source)
		_, dstOK := g.Node(e.Target)
		assert.True(t, srcOK, "edge %s has dangling source", e.ID)
		assert.True(t, dstOK, "edge %s has dangling target", e.ID)
	}
}

func TestBuildPlaceholderCourse(t *testing.T) {
	in := referenceInput()
	in.Course = nil
	g := NewBuilder(DefaultLayout(), 1).Build(in)

	course, ok := g.Node(CourseNodeID("c1"))
	require.True(t, ok)
	assert.Equal(t, "高等数学", course.Label)
	assert.Equal(t, 0, course.CompletedChapters)
	assert.Equal(t, 2, course.TotalChapters)
	assert.Equal(t, 2, countKind(g, RelCourseChapter))
}

func TestBuildWithoutCourseOrChapters(t *testing.T) {
	g := NewBuilder(DefaultLayout(), 1).Build(Input{
		KnowledgePoints: []KnowledgePointInfo{{ID: "k1", ChapterID: "ch1"}},
	})
	assert.Empty(t, g.Nodes)
	assert.Empty(t, g.Edges)
}

func TestBuildLayout(t *testing.T) {
	layout := DefaultLayout()
	g := NewBuilder(layout, 42).Build(referenceInput())

	course, _ := g.Node(CourseNodeID("c1"))
	assert.Equal(t, Position{}, course.Position)

	// 按 order 排序后第一章位于角度 0，第二章位于角度 π
	ch1, _ := g.Node(ChapterNodeID("ch1"))
	ch2, _ := g.Node(ChapterNodeID("ch2"))
	assert.InDelta(t, layout.ChapterRadius, ch1.Position.X, 1e-9)
	assert.InDelta(t, 0, ch1.Position.Y, 1e-9)
	assert.InDelta(t, -layout.ChapterRadius, ch2.Position.X, 1e-9)

	for _, id := range []string{"k1", "k2"} {
		kp, ok := g.Node(KnowledgeNodeID(id))
		require.True(t, ok)
		d := kp.Position.Dist(ch1.Position)
		assert.GreaterOrEqual(t, d, layout.KnowledgeRadiusMin-1e-9)
		assert.LessOrEqual(t, d, layout.KnowledgeRadiusMax+1e-9)
	}
}

func TestBuildSeededLayoutIsReproducible(t *testing.T) {
	a := NewBuilder(DefaultLayout(), 99).Build(referenceInput())
	b := NewBuilder(DefaultLayout(), 99).Build(referenceInput())
	assert.Equal(t, a.Nodes, b.Nodes)
}

func TestBuildSizesAndColors(t *testing.T) {
	g := NewBuilder(DefaultLayout(), 3).Build(referenceInput())

	course, _ := g.Node(CourseNodeID("c1"))
	ch, _ := g.Node(ChapterNodeID("ch1"))
	kp, _ := g.Node(KnowledgeNodeID("k1"))
	assert.Equal(t, float64(CourseNodeSize), course.Size)
	assert.Equal(t, float64(ChapterNodeSize), ch.Size)
	assert.Equal(t, float64(KnowledgeNodeSize), kp.Size)
	assert.Equal(t, CourseColor, course.Color)
	assert.Equal(t, ChapterColor, ch.Color)
	assert.Equal(t, KnowledgeColor(DifficultyEasy, ImportanceHigh), kp.Color)
	assert.Equal(t, DefaultColor, KnowledgeColor("", ImportanceHigh))
}

func TestIncidentEdges(t *testing.T) {
	g := NewBuilder(DefaultLayout(), 3).Build(referenceInput())

	// k1: 章节边 + 与 k2 的同章节边
	assert.Len(t, g.IncidentEdges(KnowledgeNodeID("k1")), 2)
	// ch1: 课程边 + 两条知识点边
	assert.Len(t, g.IncidentEdges(ChapterNodeID("ch1")), 3)
	assert.Empty(t, g.IncidentEdges("nope"))
}

func TestClampProgress(t *testing.T) {
	assert.Equal(t, 100.0, ClampProgress(150))
	assert.Equal(t, 0.0, ClampProgress(math.NaN()))
	assert.Equal(t, 0.0, ClampProgress(-3))
	assert.Equal(t, 55.5, ClampProgress(55.5))
}

func TestParseDifficultyAndImportance(t *testing.T) {
	assert.Equal(t, DifficultyEasy, ParseDifficulty("EASY"))
	assert.Equal(t, DifficultyHard, ParseDifficulty(" hard "))
	assert.Equal(t, DifficultyMedium, ParseDifficulty(""))

	assert.Equal(t, ImportanceHigh, ParseImportance("5"))
	assert.Equal(t, ImportanceLow, ParseImportance("1"))
	assert.Equal(t, ImportanceMedium, ParseImportance("3"))
	assert.Equal(t, ImportanceHigh, ParseImportance("HIGH"))
}
