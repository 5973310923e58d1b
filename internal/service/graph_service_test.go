package service

import (
	"ai_teaching_backend/internal/graph"
	"ai_teaching_backend/internal/model"
	"ai_teaching_backend/internal/util"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphProjectionForEnrolledStudent(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.graph.Projection(context.Background(), env.student(), env.seed.CourseID)
	require.NoError(t, err)
	assert.Equal(t, 13, resp.Stats.NodeCount)
	assert.Equal(t, 22, resp.Stats.EdgeCount)
	assert.Equal(t, 3, resp.Stats.ChapterCount)
	assert.Equal(t, 9, resp.Stats.KnowledgeCount)

	g := graph.NewGraph(resp.Nodes, resp.Edges)
	course, ok := g.Node(graph.CourseNodeID(env.seed.CourseID))
	require.True(t, ok)
	assert.Equal(t, "高等数学", course.Label)
	assert.Equal(t, 3, course.TotalChapters)
}

func TestGraphProjectionWithoutEnrollment(t *testing.T) {
	env := newTestEnv(t)
	visitor := env.newUser(t, "visitor@example.com", model.Student)

	resp, err := env.graph.Projection(context.Background(), visitor, env.seed.CourseID)
	require.NoError(t, err)
	assert.Equal(t, 13, resp.Stats.NodeCount)

	g := graph.NewGraph(resp.Nodes, resp.Edges)
	course, ok := g.Node(graph.CourseNodeID(env.seed.CourseID))
	require.True(t, ok)
	assert.Equal(t, "高等数学", course.Label)
	assert.Zero(t, course.Progress)
}

func TestGraphDraftCourseHidden(t *testing.T) {
	env := newTestEnv(t)
	draft, err := env.course.Create(env.teacher(), CourseRequest{Code: "DRAFT1", Name: "草稿课程"})
	require.NoError(t, err)

	_, err = env.graph.Projection(context.Background(), env.student(), draft.ID)
	assert.ErrorIs(t, err, util.ErrCourseNotFound)

	resp, err := env.graph.Projection(context.Background(), env.teacher(), draft.ID)
	require.NoError(t, err)
	// 没有章节也没有选课记录时图为空
	assert.Zero(t, resp.Stats.NodeCount)

	_, err = env.graph.Projection(context.Background(), env.student(), "missing")
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
}

func TestGraphRenderSVGFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	data, stats, err := env.graph.RenderSVG(ctx, env.student(), env.seed.CourseID, graph.DefaultViewState(), 800, 600)
	require.NoError(t, err)
	assert.Equal(t, 13, stats.NodeCount)
	assert.Contains(t, string(data), "<svg")
	assert.Contains(t, string(data), `data-node-id="kp-`)

	state := graph.DefaultViewState()
	state.SetDifficulties([]graph.Difficulty{})
	data, _, err = env.graph.RenderSVG(ctx, env.student(), env.seed.CourseID, state, 800, 600)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `data-node-id="kp-`)
	assert.Contains(t, string(data), `data-node-id="chapter-`)
}

func TestGraphSnapshot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	snap, err := env.graph.Snapshot(ctx, env.student(), env.seed.CourseID, graph.DefaultViewState(), 800, 600)
	require.NoError(t, err)
	assert.Equal(t, 13, snap.NodeCount)
	assert.Equal(t, "/uploads/"+snap.ObjectKey, snap.URL)

	content, err := os.ReadFile(filepath.Join(env.cfg.Storage.LocalPath, filepath.FromSlash(snap.ObjectKey)))
	require.NoError(t, err)
	assert.EqualValues(t, snap.Size, len(content))

	list, err := env.graph.Snapshots(env.student(), env.seed.CourseID, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, snap.ID, list[0].ID)
}

func TestGraphStructureCacheInvalidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.graph.Projection(ctx, env.student(), env.seed.CourseID)
	require.NoError(t, err)
	assert.Equal(t, 13, resp.Stats.NodeCount)

	_, err = env.chapter.Create(ctx, env.teacher(), ChapterRequest{CourseID: env.seed.CourseID, Title: "第四章 微分方程"})
	require.NoError(t, err)

	resp, err = env.graph.Projection(ctx, env.student(), env.seed.CourseID)
	require.NoError(t, err)
	assert.Equal(t, 14, resp.Stats.NodeCount)
}

func TestGraphKnowledgeProgress(t *testing.T) {
	env := newTestEnv(t)
	kp := env.chapters(t)[0].KnowledgePoints[1]
	_, err := env.progress.UpdateKnowledgePoint(env.seed.StudentID, kp.ID, KnowledgePointProgressRequest{Progress: ptr(80)})
	require.NoError(t, err)

	resp, err := env.graph.Projection(context.Background(), env.student(), env.seed.CourseID)
	require.NoError(t, err)
	n, ok := graph.NewGraph(resp.Nodes, resp.Edges).Node(graph.KnowledgeNodeID(kp.ID))
	require.True(t, ok)
	assert.Equal(t, 80.0, n.Progress)
}
