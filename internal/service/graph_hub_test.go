package service

import (
	"ai_teaching_backend/internal/fetch"
	"ai_teaching_backend/internal/graph"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func readWS(t *testing.T, conn *websocket.Conn) inbound {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg inbound
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func sendWS(t *testing.T, conn *websocket.Conn, typ string, data interface{}) {
	t.Helper()
	msg := map[string]interface{}{"type": typ}
	if data != nil {
		msg["data"] = data
	}
	require.NoError(t, conn.WriteJSON(msg))
}

func dialHub(t *testing.T, env *testEnv) (*GraphHub, *websocket.Conn) {
	t.Helper()
	hub := NewGraphHub(env.graph, func(*http.Request) bool { return true })
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWs(w, r, env.student(), env.seed.CourseID, 800, 600)
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return hub, conn
}

func readStatus(t *testing.T, conn *websocket.Conn) graph.Status {
	t.Helper()
	msg := readWS(t, conn)
	require.Equal(t, MsgStatus, msg.Type, string(msg.Data))
	var status graph.Status
	require.NoError(t, json.Unmarshal(msg.Data, &status))
	return status
}

func readScene(t *testing.T, conn *websocket.Conn) ScenePayload {
	t.Helper()
	msg := readWS(t, conn)
	require.Equal(t, MsgScene, msg.Type, string(msg.Data))
	var scene ScenePayload
	require.NoError(t, json.Unmarshal(msg.Data, &scene))
	return scene
}

// brokenSource 在 broken 为真时所有请求都失败
type brokenSource struct {
	fetch.Source
	broken *atomic.Bool
}

func (b brokenSource) Courses(ctx context.Context) ([]fetch.Course, error) {
	if b.broken.Load() {
		return nil, errors.New("upstream unavailable")
	}
	return b.Source.Courses(ctx)
}

func TestGraphHubSession(t *testing.T) {
	env := newTestEnv(t)
	hub, conn := dialHub(t, env)

	var status graph.Status
	msg := readWS(t, conn)
	require.Equal(t, MsgStatus, msg.Type)
	require.NoError(t, json.Unmarshal(msg.Data, &status))
	assert.Equal(t, graph.LoadLoading, status.State)

	msg = readWS(t, conn)
	require.Equal(t, MsgStatus, msg.Type)
	require.NoError(t, json.Unmarshal(msg.Data, &status))
	assert.Equal(t, graph.LoadReady, status.State)

	var scene ScenePayload
	msg = readWS(t, conn)
	require.Equal(t, MsgScene, msg.Type)
	require.NoError(t, json.Unmarshal(msg.Data, &scene))
	assert.Equal(t, 13, scene.Stats.NodeCount)
	assert.Contains(t, scene.SVG, "<svg")
	assert.Equal(t, 1.0, scene.State.Zoom)

	sendWS(t, conn, MsgZoomIn, nil)
	msg = readWS(t, conn)
	require.Equal(t, MsgScene, msg.Type)
	require.NoError(t, json.Unmarshal(msg.Data, &scene))
	assert.InDelta(t, 1.2, scene.State.Zoom, 1e-9)

	sendWS(t, conn, MsgSetDifficulty, map[string]interface{}{"values": []string{"hard"}})
	msg = readWS(t, conn)
	require.Equal(t, MsgScene, msg.Type)
	require.NoError(t, json.Unmarshal(msg.Data, &scene))
	assert.Equal(t, []graph.Difficulty{graph.DifficultyHard}, scene.State.Difficulties)

	sendWS(t, conn, MsgSelect, nil)
	msg = readWS(t, conn)
	assert.Equal(t, MsgError, msg.Type)

	sendWS(t, conn, "bogus", nil)
	msg = readWS(t, conn)
	assert.Equal(t, MsgError, msg.Type)
	assert.Contains(t, string(msg.Data), "unknown message type")

	assert.Equal(t, 1, hub.Count())
	hub.Stop()
	assert.Eventually(t, func() bool { return hub.Count() == 0 }, 5*time.Second, 20*time.Millisecond)
}

func TestGraphHubDrag(t *testing.T) {
	env := newTestEnv(t)
	_, conn := dialHub(t, env)

	assert.Equal(t, graph.LoadLoading, readStatus(t, conn).State)
	assert.Equal(t, graph.LoadReady, readStatus(t, conn).State)
	before := readScene(t, conn)

	target := graph.ChapterNodeID(env.chapters(t)[0].ID)
	sendWS(t, conn, MsgPointerDown, map[string]interface{}{"target": target, "x": 100, "y": 100})
	sendWS(t, conn, MsgPointerMove, map[string]interface{}{"x": 150, "y": 100})

	var first, second DragPayload
	msg := readWS(t, conn)
	require.Equal(t, MsgDrag, msg.Type, string(msg.Data))
	require.NoError(t, json.Unmarshal(msg.Data, &first))
	assert.Equal(t, target, first.NodeID)
	assert.Contains(t, first.Transform, "translate(")
	assert.NotEmpty(t, first.Edges)

	sendWS(t, conn, MsgPointerMove, map[string]interface{}{"x": 200, "y": 100})
	msg = readWS(t, conn)
	require.Equal(t, MsgDrag, msg.Type, string(msg.Data))
	require.NoError(t, json.Unmarshal(msg.Data, &second))
	assert.InDelta(t, 50, second.X-first.X, 1e-9)
	assert.InDelta(t, first.Y, second.Y, 1e-9)

	sendWS(t, conn, MsgPointerUp, map[string]interface{}{"x": 200, "y": 100})
	after := readScene(t, conn)
	assert.NotEqual(t, before.SVG, after.SVG)
	assert.Empty(t, after.State.SelectedID)
}

func TestGraphHubRetryAfterFailedLoad(t *testing.T) {
	env := newTestEnv(t)
	broken := &atomic.Bool{}
	broken.Store(true)
	env.graph.SetSource(func(userID uint) fetch.Source {
		return brokenSource{Source: env.graph.DatabaseSource(userID), broken: broken}
	})
	_, conn := dialHub(t, env)

	assert.Equal(t, graph.LoadLoading, readStatus(t, conn).State)
	failed := readStatus(t, conn)
	assert.Equal(t, graph.LoadError, failed.State)
	assert.True(t, failed.Retryable)
	assert.Contains(t, failed.Error, "upstream unavailable")

	broken.Store(false)
	sendWS(t, conn, MsgRetry, nil)
	assert.Equal(t, graph.LoadLoading, readStatus(t, conn).State)
	assert.Equal(t, graph.LoadReady, readStatus(t, conn).State)
	scene := readScene(t, conn)
	assert.Equal(t, 13, scene.Stats.NodeCount)
}

func TestLevelSets(t *testing.T) {
	assert.Equal(t, []graph.Difficulty{graph.DifficultyEasy, graph.DifficultyHard}, DifficultySet([]string{"easy", "HARD", "extreme"}))
	assert.Empty(t, DifficultySet(nil))
	assert.Equal(t, []graph.Importance{graph.ImportanceHigh}, ImportanceSet([]string{"high"}))
}
