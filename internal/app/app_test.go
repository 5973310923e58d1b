package app

import (
	"ai_teaching_backend/internal/config"
	"ai_teaching_backend/pkg/database"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t   *testing.T
	app *App
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server:    config.ServerConfig{Port: "0", Mode: gin.TestMode},
		Database:  config.DatabaseConfig{Type: "sqlite", Path: ":memory:"},
		JWT:       config.JWTConfig{Secret: "app-test-secret", ExpireTime: time.Hour},
		Storage:   config.StorageConfig{Type: "local", LocalPath: t.TempDir()},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		RateLimit: config.RateLimitConfig{MaxRequests: 1000, WindowMinutes: 1},
		Redis:     config.RedisConfig{CacheTTL: 60},
		Graph: config.GraphConfig{
			ChapterRadius:      300,
			KnowledgeRadiusMin: 100,
			KnowledgeRadiusMax: 150,
			Seed:               7,
			ClickThreshold:     3,
		},
	}

	db, err := database.Open(&cfg.Database, false)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return &testServer{t: t, app: New(cfg, db, nil)}
}

func (s *testServer) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.app.Router.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") != "" && bytes.HasPrefix(w.Body.Bytes(), []byte("{")) {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

// login 注册并登录，返回 token
func (s *testServer) login(name, email, role string) string {
	s.t.Helper()
	w, _ := s.do(http.MethodPost, "/api/register", "", gin.H{
		"name": name, "email": email, "password": "secret123", "role": role,
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())

	w, env := s.do(http.MethodPost, "/api/login", "", gin.H{"email": email, "password": "secret123"})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &resp))
	require.NotEmpty(s.t, resp.Token)
	return resp.Token
}

func decodeID(t *testing.T, env envelope) string {
	t.Helper()
	var v struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &v))
	require.NotEmpty(t, v.ID)
	return v.ID
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w, env := s.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusOK, env.Code)
}

func TestAuthErrors(t *testing.T) {
	s := newTestServer(t)
	s.login("老师", "t@example.com", "teacher")

	w, _ := s.do(http.MethodPost, "/api/register", "", gin.H{
		"name": "dup", "email": "t@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(http.MethodPost, "/api/login", "", gin.H{"email": "t@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(http.MethodGet, "/api/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCourseGraphFlow(t *testing.T) {
	s := newTestServer(t)
	teacher := s.login("老师", "teacher@example.com", "teacher")
	student := s.login("学生", "student@example.com", "student")

	// 学生不能访问教师接口
	w, _ := s.do(http.MethodPost, "/api/teacher/courses", student, gin.H{"code": "X1", "name": "x"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env := s.do(http.MethodPost, "/api/teacher/courses", teacher, gin.H{"code": "MATH101", "name": "高等数学"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	courseID := decodeID(t, env)

	w, _ = s.do(http.MethodPost, "/api/teacher/courses", teacher, gin.H{"code": "MATH101", "name": "重复"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 草稿课程对游客不可见，对归属教师可见
	w, _ = s.do(http.MethodGet, "/api/courses/"+courseID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = s.do(http.MethodGet, "/api/courses/"+courseID, teacher, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(http.MethodPost, "/api/teacher/chapters", teacher, gin.H{
		"courseId": courseID, "title": "第一章 函数与极限", "status": "published",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	chapterID := decodeID(t, env)

	w, env = s.do(http.MethodPost, "/api/teacher/knowledge-points", teacher, gin.H{
		"chapterId": chapterID, "title": "极限概念", "difficulty": "Hard", "importance": "5",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var kp struct {
		ID         string `json:"id"`
		Difficulty string `json:"difficulty"`
		Importance string `json:"importance"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &kp))
	assert.Equal(t, "hard", kp.Difficulty)
	assert.Equal(t, "high", kp.Importance)

	w, _ = s.do(http.MethodPost, "/api/courses/"+courseID+"/enroll", student, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(http.MethodPost, "/api/teacher/courses/"+courseID+"/publish", teacher, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, _ = s.do(http.MethodPost, "/api/courses/"+courseID+"/enroll", student, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w, _ = s.do(http.MethodPost, "/api/courses/"+courseID+"/enroll", student, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(http.MethodPut, "/api/chapter-progress/"+chapterID, student, gin.H{"progress": 120})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var progress struct {
		Progress    float64 `json:"progress"`
		IsCompleted bool    `json:"isCompleted"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &progress))
	assert.Equal(t, 100.0, progress.Progress)
	assert.True(t, progress.IsCompleted)

	w, _ = s.do(http.MethodPut, "/api/knowledge-points/"+kp.ID+"/progress", student, gin.H{"progress": 40})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// 图谱
	w, _ = s.do(http.MethodGet, "/api/graph/courses/"+courseID, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = s.do(http.MethodGet, "/api/graph/courses/"+courseID, student, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var projection struct {
		Nodes []struct {
			ID       string  `json:"id"`
			Progress float64 `json:"progress"`
		} `json:"nodes"`
		Stats struct {
			NodeCount int `json:"nodeCount"`
			EdgeCount int `json:"edgeCount"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &projection))
	assert.Equal(t, 3, projection.Stats.NodeCount)
	assert.Equal(t, 2, projection.Stats.EdgeCount)
	for _, n := range projection.Nodes {
		switch n.ID {
		case "course-" + courseID:
			assert.Equal(t, 100.0, n.Progress)
		case "kp-" + kp.ID:
			assert.Equal(t, 40.0, n.Progress)
		}
	}

	w, _ = s.do(http.MethodGet, "/api/graph/courses/"+courseID+"/svg?zoom=2&difficulty=easy", student, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "image/svg+xml")
	assert.Contains(t, w.Body.String(), "<svg")
	assert.NotContains(t, w.Body.String(), `data-node-id="kp-`)

	w, _ = s.do(http.MethodPost, "/api/graph/courses/"+courseID+"/snapshot", student, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w, env = s.do(http.MethodGet, "/api/graph/courses/"+courseID+"/snapshots", student, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var snaps []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &snaps))
	assert.Len(t, snaps, 1)

	w, _ = s.do(http.MethodGet, "/api/graph/courses/missing", student, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// 删除课程后章节也不存在
	w, _ = s.do(http.MethodDelete, "/api/teacher/courses/"+courseID, teacher, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w, _ = s.do(http.MethodGet, "/api/chapters/"+chapterID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestKnowledgePointListPagination(t *testing.T) {
	s := newTestServer(t)
	teacher := s.login("老师", "teacher@example.com", "teacher")

	_, env := s.do(http.MethodPost, "/api/teacher/courses", teacher, gin.H{"code": "C1", "name": "课程"})
	courseID := decodeID(t, env)
	_, env = s.do(http.MethodPost, "/api/teacher/chapters", teacher, gin.H{"courseId": courseID, "title": "第一章"})
	chapterID := decodeID(t, env)
	for _, title := range []string{"a", "b", "c"} {
		w, _ := s.do(http.MethodPost, "/api/teacher/knowledge-points", teacher, gin.H{"chapterId": chapterID, "title": title})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w, env := s.do(http.MethodGet, "/api/knowledge-points?courseId="+courseID+"&limit=2&page=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var page struct {
		KnowledgePoints []struct {
			Title string `json:"title"`
		} `json:"knowledgePoints"`
		Pagination struct {
			Total      int `json:"total"`
			TotalPages int `json:"totalPages"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Len(t, page.KnowledgePoints, 1)
	assert.Equal(t, "c", page.KnowledgePoints[0].Title)
	assert.Equal(t, 3, page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.TotalPages)

	w, _ = s.do(http.MethodPut, "/api/teacher/chapters/"+chapterID+"/knowledge-points/reorder", teacher, gin.H{"updates": []gin.H{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssignmentAndLearningRecordFlow(t *testing.T) {
	s := newTestServer(t)
	teacher := s.login("老师", "teacher@example.com", "teacher")
	student := s.login("学生", "student@example.com", "student")

	_, env := s.do(http.MethodPost, "/api/teacher/courses", teacher, gin.H{"code": "LA101", "name": "线性代数"})
	courseID := decodeID(t, env)
	_, env = s.do(http.MethodPost, "/api/teacher/chapters", teacher, gin.H{
		"courseId": courseID, "title": "第一章 行列式", "duration": 200, "status": "published",
	})
	chapterID := decodeID(t, env)
	_, env = s.do(http.MethodPost, "/api/teacher/knowledge-points", teacher, gin.H{"chapterId": chapterID, "title": "行列式展开"})
	kpID := decodeID(t, env)
	w, _ := s.do(http.MethodPost, "/api/teacher/courses/"+courseID+"/publish", teacher, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w, _ = s.do(http.MethodPost, "/api/courses/"+courseID+"/enroll", student, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, _ = s.do(http.MethodPost, "/api/teacher/assignments", student, gin.H{"title": "x", "type": "homework", "knowledgePointId": kpID})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = s.do(http.MethodPost, "/api/teacher/assignments", teacher, gin.H{"title": "x", "type": "essay", "knowledgePointId": kpID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(http.MethodPost, "/api/teacher/assignments", teacher, gin.H{
		"title": "行列式计算", "type": "homework", "knowledgePointId": kpID, "totalPoints": 20, "status": "published",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assignmentID := decodeID(t, env)

	w, env = s.do(http.MethodGet, "/api/assignments?courseId="+courseID, student, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var list struct {
		Assignments []struct {
			ID string `json:"id"`
		} `json:"assignments"`
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list.Assignments, 1)
	assert.Equal(t, assignmentID, list.Assignments[0].ID)

	w, _ = s.do(http.MethodPost, "/api/assignments/"+assignmentID+"/submit", teacher, gin.H{"content": "x"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = s.do(http.MethodPost, "/api/assignments/"+assignmentID+"/submit", student, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, env = s.do(http.MethodPost, "/api/assignments/"+assignmentID+"/submit", student, gin.H{"content": "det(A) = -2"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	submissionID := decodeID(t, env)
	w, _ = s.do(http.MethodPost, "/api/assignments/"+assignmentID+"/submit", student, gin.H{"content": "again"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(http.MethodPut, "/api/teacher/submissions/"+submissionID+"/grade", teacher, gin.H{"score": 25})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = s.do(http.MethodPut, "/api/teacher/submissions/"+submissionID+"/grade", teacher, gin.H{"score": 15, "feedback": "符号有误"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env = s.do(http.MethodGet, "/api/teacher/assignments", teacher, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var mine []struct {
		Submissions []struct {
			Score  float64 `json:"score"`
			Status string  `json:"status"`
		} `json:"submissions"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &mine))
	require.Len(t, mine, 1)
	require.Len(t, mine[0].Submissions, 1)
	assert.Equal(t, 15.0, mine[0].Submissions[0].Score)
	assert.Equal(t, "graded", mine[0].Submissions[0].Status)

	// 学习记录
	w, _ = s.do(http.MethodPost, "/api/learning-records", student, gin.H{"progress": 10})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, env = s.do(http.MethodPost, "/api/learning-records", student, gin.H{"courseId": courseID, "progress": 50})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var rec struct {
		ID         string  `json:"id"`
		Progress   float64 `json:"progress"`
		Duration   int     `json:"duration"`
		CourseName string  `json:"courseName"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &rec))
	assert.Equal(t, 50.0, rec.Progress)
	assert.Equal(t, 100, rec.Duration)
	assert.Equal(t, "线性代数", rec.CourseName)

	w, _ = s.do(http.MethodPut, "/api/learning-records/"+rec.ID, teacher, gin.H{"progress": 80})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = s.do(http.MethodGet, "/api/learning-records/"+rec.ID, teacher, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(http.MethodGet, "/api/learning-records/missing", student, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = s.do(http.MethodGet, "/api/student-stats/"+courseID, student, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var stats struct {
		StudyTime              int     `json:"studyTime"`
		AverageScore           float64 `json:"averageScore"`
		GradedAssignmentsCount int     `json:"gradedAssignmentsCount"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 100, stats.StudyTime)
	assert.InDelta(t, 75, stats.AverageScore, 1e-9)
	assert.Equal(t, 1, stats.GradedAssignmentsCount)

	w, _ = s.do(http.MethodDelete, "/api/learning-records/"+rec.ID, student, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w, _ = s.do(http.MethodDelete, "/api/teacher/assignments/"+assignmentID, teacher, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w, _ = s.do(http.MethodGet, "/api/assignments/"+assignmentID, student, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
