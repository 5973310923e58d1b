package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZoomIsReversibleWithinBounds(t *testing.T) {
	s := DefaultViewState()
	for i := 0; i < 3; i++ {
		s.ZoomIn()
	}
	assert.InDelta(t, 1.728, s.Zoom, 1e-9)
	for i := 0; i < 3; i++ {
		s.ZoomOut()
	}
	assert.InDelta(t, 1.0, s.Zoom, 1e-9)
}

func TestZoomClamped(t *testing.T) {
	s := DefaultViewState()
	for i := 0; i < 20; i++ {
		s.ZoomIn()
	}
	assert.Equal(t, MaxZoom, s.Zoom)
	for i := 0; i < 40; i++ {
		s.ZoomOut()
	}
	assert.Equal(t, MinZoom, s.Zoom)

	s.SetZoom(0)
	assert.Equal(t, 1.0, s.Zoom)
	s.SetZoom(10)
	assert.Equal(t, MaxZoom, s.Zoom)
}

func TestCenterResetsPanAndZoom(t *testing.T) {
	s := DefaultViewState()
	s.ZoomIn()
	s.PanBy(Position{X: 40, Y: -12})
	s.Center()
	assert.Equal(t, 1.0, s.Zoom)
	assert.Equal(t, Position{}, s.Pan)
}

func TestToggleSelect(t *testing.T) {
	s := DefaultViewState()
	s.ToggleSelect("kp-1")
	assert.Equal(t, "kp-1", s.SelectedID)
	s.ToggleSelect("kp-2")
	assert.Equal(t, "kp-2", s.SelectedID)
	s.ToggleSelect("kp-2")
	assert.Empty(t, s.SelectedID)
}

func TestDifficultyFilterHidesKnowledgeAndEdges(t *testing.T) {
	g := NewBuilder(DefaultLayout(), 5).Build(referenceInput())
	s := DefaultViewState()
	s.SetDifficulties([]Difficulty{DifficultyEasy})

	nodes, edges := Visible(g, s)
	ids := make([]string, 0, len(nodes))
	for _, i := range nodes {
		ids = append(ids, g.Nodes[i].ID)
	}
	assert.ElementsMatch(t, []string{
		CourseNodeID("c1"), ChapterNodeID("ch1"), ChapterNodeID("ch2"), KnowledgeNodeID("k1"),
	}, ids)

	// k2 被隐藏，它的章节边和同章节边都不可见
	for _, i := range edges {
		e := g.Edges[i]
		assert.NotEqual(t, KnowledgeNodeID("k2"), e.Source)
		assert.NotEqual(t, KnowledgeNodeID("k2"), e.Target)
	}
	assert.Len(t, edges, 3)
}

func TestEmptyFilterHidesAllKnowledge(t *testing.T) {
	g := NewBuilder(DefaultLayout(), 5).Build(referenceInput())
	s := DefaultViewState()
	s.SetImportances(nil)

	nodes, _ := Visible(g, s)
	for _, i := range nodes {
		assert.NotEqual(t, NodeKnowledge, g.Nodes[i].Type)
	}
	assert.Len(t, nodes, 3)
}

func TestHideConnections(t *testing.T) {
	g := NewBuilder(DefaultLayout(), 5).Build(referenceInput())
	s := DefaultViewState()
	s.SetShowConnections(false)

	nodes, edges := Visible(g, s)
	assert.Len(t, nodes, 5)
	assert.Empty(t, edges)
}

func TestSetDifficultiesCanonicalOrder(t *testing.T) {
	s := DefaultViewState()
	s.SetDifficulties([]Difficulty{DifficultyHard, "unknown", DifficultyEasy, DifficultyHard})
	assert.Equal(t, []Difficulty{DifficultyEasy, DifficultyHard}, s.Difficulties)
}
