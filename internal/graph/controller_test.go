package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestController(t *testing.T, opts ...ControllerOption) *Controller {
	t.Helper()
	c := NewController(NewBuilder(DefaultLayout(), 17), opts...)
	c.Rebuild(referenceInput())
	require.Equal(t, LoadReady, c.Status().State)
	return c
}

func TestControllerRendersOncePerChange(t *testing.T) {
	var scenes []Scene
	c := newTestController(t, OnRender(func(sc Scene) { scenes = append(scenes, sc) }))
	assert.Equal(t, 1, c.Renders())

	c.ZoomIn()
	c.ZoomOut()
	c.ToggleSelect(ChapterNodeID("ch1"))
	c.SetDifficulties([]Difficulty{DifficultyEasy})
	c.SetImportances(AllImportances)
	c.ToggleConnections()
	c.Center()

	assert.Equal(t, 8, c.Renders())
	assert.Len(t, scenes, 8)
	assert.Empty(t, scenes[len(scenes)-1].Edges)
}

func TestControllerDragPatchesIncidentEdges(t *testing.T) {
	c := newTestController(t)
	c.ZoomIn()
	c.ZoomIn()
	zoom := c.State().Zoom
	renders := c.Renders()

	id := KnowledgeNodeID("k1")
	start, _ := c.Graph().Node(id)
	origin := start.Position

	c.PointerDown(id, Position{X: 100, Y: 100})
	require.True(t, c.Dragging())
	p := c.PointerMove(Position{X: 130, Y: 70})
	require.NotNil(t, p)

	want := origin.Add(Position{X: 30 / zoom, Y: -30 / zoom})
	assert.InDelta(t, want.X, p.Position.X, 1e-9)
	assert.InDelta(t, want.Y, p.Position.Y, 1e-9)
	assert.Len(t, p.Edges, 2)
	for _, e := range p.Edges {
		if e.ID == edgeID(RelChapterKnowledge, ChapterNodeID("ch1"), id) {
			assert.InDelta(t, want.X, e.X2, 1e-9)
		}
	}
	// 拖动中不做整体渲染
	assert.Equal(t, renders, c.Renders())

	c.PointerUp(Position{X: 130, Y: 70})
	assert.False(t, c.Dragging())
	assert.Equal(t, renders+1, c.Renders())

	n, _ := c.Graph().Node(id)
	assert.InDelta(t, want.X, n.Position.X, 1e-9)
	assert.Empty(t, c.State().SelectedID, "a real drag is not a click")
}

func TestControllerDragPatchSkipsHiddenEdges(t *testing.T) {
	c := newTestController(t)
	c.SetDifficulties([]Difficulty{DifficultyEasy})

	c.PointerDown(KnowledgeNodeID("k1"), Position{})
	p := c.PointerMove(Position{X: 10})
	require.NotNil(t, p)
	// k2 被筛掉，只剩章节边
	assert.Len(t, p.Edges, 1)

	c.SetShowConnections(false)
	p = c.PointerMove(Position{X: 20})
	require.NotNil(t, p)
	assert.Empty(t, p.Edges)
}

func TestControllerClickSelects(t *testing.T) {
	c := newTestController(t, WithClickThreshold(5))
	id := ChapterNodeID("ch2")

	c.PointerDown(id, Position{X: 10, Y: 10})
	c.PointerMove(Position{X: 12, Y: 11})
	c.PointerUp(Position{X: 12, Y: 11})
	assert.Equal(t, id, c.State().SelectedID)

	c.PointerDown(id, Position{X: 0, Y: 0})
	c.PointerUp(Position{X: 0, Y: 0})
	assert.Empty(t, c.State().SelectedID)
}

func TestControllerClickKeepsPosition(t *testing.T) {
	c := newTestController(t, WithClickThreshold(5))
	c.ZoomOut()
	c.ZoomOut()
	id := KnowledgeNodeID("k1")
	before, _ := c.Graph().Node(id)
	origin := before.Position

	c.PointerDown(id, Position{X: 10, Y: 10})
	p := c.PointerMove(Position{X: 13, Y: 13})
	require.NotNil(t, p)
	assert.NotEqual(t, origin, p.Position)
	c.PointerUp(Position{X: 13, Y: 13})

	after, _ := c.Graph().Node(id)
	assert.Equal(t, origin, after.Position)
	assert.Equal(t, id, c.State().SelectedID)
}

func TestControllerPointerDownOnHiddenNodePans(t *testing.T) {
	c := newTestController(t)
	c.SetDifficulties([]Difficulty{DifficultyEasy})
	id := KnowledgeNodeID("k2")
	before, _ := c.Graph().Node(id)
	origin := before.Position

	c.PointerDown(id, Position{X: 0, Y: 0})
	assert.False(t, c.Dragging())
	require.True(t, c.Panning())
	assert.Nil(t, c.PointerMove(Position{X: 40, Y: 0}))
	c.PointerUp(Position{X: 40, Y: 0})

	after, _ := c.Graph().Node(id)
	assert.Equal(t, origin, after.Position)
	assert.Equal(t, Position{X: 40, Y: 0}, c.State().Pan)
	assert.Empty(t, c.State().SelectedID)
}

func TestControllerPanRendersEachMove(t *testing.T) {
	c := newTestController(t)
	renders := c.Renders()

	c.PointerDown("", Position{X: 10, Y: 10})
	require.True(t, c.Panning())
	assert.Nil(t, c.PointerMove(Position{X: 20, Y: 5}))
	assert.Nil(t, c.PointerMove(Position{X: 25, Y: 5}))
	c.PointerUp(Position{X: 25, Y: 5})

	assert.False(t, c.Panning())
	assert.Equal(t, renders+2, c.Renders())
	assert.Equal(t, Position{X: 15, Y: -5}, c.State().Pan)
}

func TestControllerRebuildDiscardsDrag(t *testing.T) {
	c := newTestController(t)
	id := ChapterNodeID("ch1")
	before, _ := c.Graph().Node(id)
	origin := before.Position

	c.PointerDown(id, Position{})
	c.PointerMove(Position{X: 80, Y: 80})
	c.PointerUp(Position{X: 80, Y: 80})
	moved, _ := c.Graph().Node(id)
	assert.NotEqual(t, origin, moved.Position)

	c.PointerDown(id, Position{})
	c.Rebuild(referenceInput())
	assert.False(t, c.Dragging())
	assert.Nil(t, c.PointerMove(Position{X: 10, Y: 10}))

	after, _ := c.Graph().Node(id)
	assert.InDelta(t, origin.X, after.Position.X, 1e-9)
	assert.InDelta(t, origin.Y, after.Position.Y, 1e-9)
}

func TestControllerRebuildClearsStaleSelection(t *testing.T) {
	c := newTestController(t)
	c.ToggleSelect(KnowledgeNodeID("k2"))

	in := referenceInput()
	in.KnowledgePoints = in.KnowledgePoints[:1]
	c.Rebuild(in)
	assert.Empty(t, c.State().SelectedID)
}

func TestControllerFailLoadKeepsGraph(t *testing.T) {
	var statuses []Status
	c := newTestController(t, OnStatus(func(s Status) { statuses = append(statuses, s) }))
	g := c.Graph()
	renders := c.Renders()

	c.BeginLoad()
	assert.Equal(t, LoadLoading, c.Status().State)
	c.FailLoad(errors.New("connection refused"))

	assert.Same(t, g, c.Graph())
	assert.Equal(t, renders, c.Renders())
	assert.Equal(t, Status{State: LoadError, Error: "connection refused", Retryable: true}, c.Status())
	require.Len(t, statuses, 3)
	assert.Equal(t, LoadReady, statuses[0].State)
}
