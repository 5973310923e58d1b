package service

import (
	"ai_teaching_backend/internal/graph"
	"ai_teaching_backend/internal/util"
	"ai_teaching_backend/pkg/logger"
	"ai_teaching_backend/pkg/monitoring"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
	loadTimeout    = 15 * time.Second
)

// 客户端 → 服务端消息类型
const (
	MsgLoad              = "load"
	MsgRetry             = "retry"
	MsgZoomIn            = "zoom_in"
	MsgZoomOut           = "zoom_out"
	MsgCenter            = "center"
	MsgSelect            = "select"
	MsgSetDifficulty     = "set_difficulty"
	MsgSetImportance     = "set_importance"
	MsgToggleConnections = "toggle_connections"
	MsgPointerDown       = "pointer_down"
	MsgPointerMove       = "pointer_move"
	MsgPointerUp         = "pointer_up"
)

// 服务端 → 客户端消息类型
const (
	MsgStatus = "status"
	MsgScene  = "scene"
	MsgDrag   = "drag"
	MsgError  = "error"
)

type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type outMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type ScenePayload struct {
	SVG   string          `json:"svg"`
	Stats graph.Stats     `json:"stats"`
	State graph.ViewState `json:"state"`
}

type DragPayload struct {
	NodeID    string            `json:"nodeId"`
	X         float64           `json:"x"`
	Y         float64           `json:"y"`
	Transform string            `json:"transform"`
	Edges     []graph.EdgePatch `json:"edges"`
}

type selectData struct {
	ID string `json:"id"`
}

type valuesData struct {
	Values []string `json:"values"`
}

type pointerData struct {
	Target string  `json:"target"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

type loadResult struct {
	seq   int
	input graph.Input
	err   error
}

// GraphHub 管理所有交互式图谱会话
type GraphHub struct {
	Graph    *GraphService
	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[*GraphSession]struct{}
}

func NewGraphHub(graphService *GraphService, checkOrigin func(r *http.Request) bool) *GraphHub {
	return &GraphHub{
		Graph: graphService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin,
		},
		sessions: make(map[*GraphSession]struct{}),
	}
}

// GraphSession 一个 websocket 连接对应一个会话。
// 所有事件和加载结果都在 run 协程中顺序处理，Controller 只被该协程访问。
type GraphSession struct {
	hub      *GraphHub
	conn     *websocket.Conn
	send     chan []byte
	events   chan WSMessage
	results  chan loadResult
	limiter  *rate.Limiter
	claims   *util.Claims
	courseID string
	width    float64
	height   float64

	ctx    context.Context
	cancel context.CancelFunc

	ctrl       *graph.Controller
	loadSeq    int
	cancelLoad context.CancelFunc
}

func (h *GraphHub) register(s *GraphSession) {
	h.mu.Lock()
	h.sessions[s] = struct{}{}
	h.mu.Unlock()
	monitoring.GraphSessions.Inc()
}

func (h *GraphHub) unregister(s *GraphSession) {
	h.mu.Lock()
	if _, ok := h.sessions[s]; ok {
		delete(h.sessions, s)
		monitoring.GraphSessions.Dec()
	}
	h.mu.Unlock()
}

// Count 当前会话数
func (h *GraphHub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Stop 关闭所有连接，读协程退出后会话自行清理
func (h *GraphHub) Stop() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.sessions))
	for s := range h.sessions {
		conns = append(conns, s.conn)
	}
	h.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
	logger.Log.Info("GraphHub stopped", zap.Int("closedConnections", len(conns)))
}

// ServeWs 升级连接并启动会话，连接建立后立即开始加载
func (h *GraphHub) ServeWs(w http.ResponseWriter, r *http.Request, claims *util.Claims, courseID string, width, height float64) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Error("WebSocket upgrade failed", zap.Error(err), zap.Uint("userId", claims.UserID))
		return
	}

	if width <= 0 || height <= 0 {
		width, height = graph.DefaultCanvasWidth, graph.DefaultCanvasHeight
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &GraphSession{
		hub:      h,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		events:   make(chan WSMessage, sendBuffer),
		results:  make(chan loadResult),
		limiter:  rate.NewLimiter(rate.Limit(60), 120), // 每秒60条，允许突发120条
		claims:   claims,
		courseID: courseID,
		width:    width,
		height:   height,
		ctx:      ctx,
		cancel:   cancel,
	}
	s.ctrl = h.Graph.NewController(
		graph.OnStatus(func(st graph.Status) { s.emit(MsgStatus, st) }),
		graph.OnRender(s.emitScene),
	)
	h.register(s)

	go s.writePump()
	go s.run()
	go s.readPump()
}

func (s *GraphSession) readPump() {
	defer func() {
		close(s.events)
		s.conn.Close()
	}()
	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error { s.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Error("WebSocket unexpected close", zap.Error(err), zap.Uint("userId", s.claims.UserID))
			}
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			s.emit(MsgError, errorPayload("invalid message"))
			continue
		}
		// pointer_up 不限流，否则拖动无法结束
		if msg.Type != MsgPointerUp && !s.limiter.Allow() {
			continue
		}
		monitoring.GraphEvents.WithLabelValues(msg.Type, "in").Inc()
		s.events <- msg
	}
}

func (s *GraphSession) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()
	for {
		select {
		case message, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// 每条消息单独一帧，客户端按帧解析 JSON
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *GraphSession) run() {
	defer func() {
		s.cancel()
		s.hub.unregister(s)
		close(s.send)
	}()

	s.startLoad()
	for {
		select {
		case msg, ok := <-s.events:
			if !ok {
				return
			}
			s.handle(msg)
		case res := <-s.results:
			s.finishLoad(res)
		}
	}
}

func (s *GraphSession) emit(typ string, data interface{}) {
	payload, err := json.Marshal(outMessage{Type: typ, Data: data})
	if err != nil {
		logger.Log.Error("序列化会话消息失败", zap.String("type", typ), zap.Error(err))
		return
	}
	select {
	case s.send <- payload:
		monitoring.GraphEvents.WithLabelValues(typ, "out").Inc()
	default:
		logger.Log.Debug("发送队列已满，丢弃消息", zap.String("type", typ))
	}
}

func (s *GraphSession) emitScene(sc graph.Scene) {
	var buf bytes.Buffer
	sc.WriteSVG(&buf, s.width, s.height)
	s.emit(MsgScene, ScenePayload{
		SVG:   buf.String(),
		Stats: s.ctrl.Graph().Stats(),
		State: s.ctrl.State(),
	})
}

// startLoad 异步加载，新的加载会取消尚未完成的旧加载
func (s *GraphSession) startLoad() {
	if s.cancelLoad != nil {
		s.cancelLoad()
	}
	s.loadSeq++
	seq := s.loadSeq
	ctx, cancel := context.WithTimeout(s.ctx, loadTimeout)
	s.cancelLoad = cancel
	s.ctrl.BeginLoad()

	go func() {
		in, err := s.hub.Graph.Load(ctx, s.claims, s.courseID)
		select {
		case s.results <- loadResult{seq: seq, input: in, err: err}:
		case <-s.ctx.Done():
		}
	}()
}

func (s *GraphSession) finishLoad(res loadResult) {
	if res.seq != s.loadSeq {
		return
	}
	s.cancelLoad()
	s.cancelLoad = nil
	if res.err != nil {
		logger.Log.Warn("图谱数据加载失败", zap.String("courseId", s.courseID), zap.Error(res.err))
		s.ctrl.FailLoad(res.err)
		return
	}
	s.ctrl.Rebuild(res.input)
}

func (s *GraphSession) handle(msg WSMessage) {
	switch msg.Type {
	case MsgLoad, MsgRetry:
		s.startLoad()
	case MsgZoomIn:
		s.ctrl.ZoomIn()
	case MsgZoomOut:
		s.ctrl.ZoomOut()
	case MsgCenter:
		s.ctrl.Center()
	case MsgToggleConnections:
		s.ctrl.ToggleConnections()
	case MsgSelect:
		var d selectData
		if s.decode(msg, &d) {
			s.ctrl.ToggleSelect(d.ID)
		}
	case MsgSetDifficulty:
		var d valuesData
		if s.decode(msg, &d) {
			s.ctrl.SetDifficulties(DifficultySet(d.Values))
		}
	case MsgSetImportance:
		var d valuesData
		if s.decode(msg, &d) {
			s.ctrl.SetImportances(ImportanceSet(d.Values))
		}
	case MsgPointerDown:
		var d pointerData
		if s.decode(msg, &d) {
			s.ctrl.PointerDown(d.Target, graph.Position{X: d.X, Y: d.Y})
		}
	case MsgPointerMove:
		var d pointerData
		if s.decode(msg, &d) {
			if p := s.ctrl.PointerMove(graph.Position{X: d.X, Y: d.Y}); p != nil {
				s.emit(MsgDrag, DragPayload{
					NodeID:    p.NodeID,
					X:         p.Position.X,
					Y:         p.Position.Y,
					Transform: p.Transform,
					Edges:     p.Edges,
				})
			}
		}
	case MsgPointerUp:
		var d pointerData
		if s.decode(msg, &d) {
			s.ctrl.PointerUp(graph.Position{X: d.X, Y: d.Y})
		}
	default:
		s.emit(MsgError, errorPayload("unknown message type: "+msg.Type))
	}
}

func (s *GraphSession) decode(msg WSMessage, v interface{}) bool {
	if len(msg.Data) == 0 {
		s.emit(MsgError, errorPayload(msg.Type+": missing data"))
		return false
	}
	if err := json.Unmarshal(msg.Data, v); err != nil {
		s.emit(MsgError, errorPayload(msg.Type+": "+err.Error()))
		return false
	}
	return true
}

func errorPayload(message string) map[string]string {
	return map[string]string{"message": message}
}

// DifficultySet 只保留可识别的取值，空集合表示隐藏所有知识点
func DifficultySet(values []string) []graph.Difficulty {
	out := make([]graph.Difficulty, 0, len(values))
	for _, v := range values {
		d := graph.Difficulty(strings.ToLower(strings.TrimSpace(v)))
		if slices.Contains(graph.AllDifficulties, d) {
			out = append(out, d)
		}
	}
	return out
}

func ImportanceSet(values []string) []graph.Importance {
	out := make([]graph.Importance, 0, len(values))
	for _, v := range values {
		i := graph.Importance(strings.ToLower(strings.TrimSpace(v)))
		if slices.Contains(graph.AllImportances, i) {
			out = append(out, i)
		}
	}
	return out
}
