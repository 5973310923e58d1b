package service

import (
	"ai_teaching_backend/internal/config"
	"ai_teaching_backend/internal/model"
	"ai_teaching_backend/internal/repository"
	"ai_teaching_backend/internal/util"
	"ai_teaching_backend/pkg/cache"
	"ai_teaching_backend/pkg/database"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(&config.DatabaseConfig{Type: "sqlite", Path: ":memory:"}, false)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

type testEnv struct {
	db         *gorm.DB
	cfg        *config.Config
	course     *CourseService
	chapter    *ChapterService
	knowledge  *KnowledgePointService
	progress   *ProgressService
	graph      *GraphService
	assignment *AssignmentService
	learning   *LearningService
	seed       *SeedReport
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		JWT:     config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour},
		Storage: config.StorageConfig{Type: "local", LocalPath: t.TempDir()},
		Graph: config.GraphConfig{
			ChapterRadius:      300,
			KnowledgeRadiusMin: 100,
			KnowledgeRadiusMax: 150,
			Seed:               42,
			ClickThreshold:     3,
		},
	}
}

// newTestEnv 内存数据库 + 演示课程 MATH101（学生已选课）
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	cfg := testConfig(t)

	report, err := NewSeedService(db).Seed(DefaultSeedCourseCode)
	require.NoError(t, err)

	courseRepo := repository.NewCourseRepository(db)
	chapterRepo := repository.NewChapterRepository(db)
	kpRepo := repository.NewKnowledgePointRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	structure := NewStructureCache(cache.NewMemory(), time.Minute)

	env := &testEnv{db: db, cfg: cfg, seed: report}
	env.course = NewCourseService(courseRepo, enrollmentRepo, structure)
	env.chapter = NewChapterService(chapterRepo, env.course, structure)
	env.knowledge = NewKnowledgePointService(kpRepo, env.chapter, structure)
	env.progress = NewProgressService(progressRepo, chapterRepo, kpRepo, courseRepo, enrollmentRepo)
	env.graph = NewGraphService(cfg.Graph, courseRepo, chapterRepo, kpRepo, progressRepo,
		repository.NewSnapshotRepository(db), env.course, NewStorageService(cfg), structure)
	assignmentRepo := repository.NewAssignmentRepository(db)
	env.assignment = NewAssignmentService(assignmentRepo, enrollmentRepo, env.course, env.knowledge)
	env.learning = NewLearningService(enrollmentRepo, chapterRepo, assignmentRepo)
	return env
}

func (e *testEnv) teacher() *util.Claims {
	return &util.Claims{UserID: e.seed.TeacherID, Role: model.Teacher}
}

func (e *testEnv) student() *util.Claims {
	return &util.Claims{UserID: e.seed.StudentID, Role: model.Student}
}

// newUser 直接写库创建用户
func (e *testEnv) newUser(t *testing.T, email string, role model.UserRole) *util.Claims {
	t.Helper()
	u := &model.User{Name: email, Email: email, Password: "x", Role: role}
	require.NoError(t, e.db.Create(u).Error)
	return &util.Claims{UserID: u.ID, Role: role, Email: email}
}

// knowledgePoint 演示课程第一章的第一个知识点
func (e *testEnv) knowledgePoint(t *testing.T) model.KnowledgePoint {
	t.Helper()
	chapters := e.chapters(t)
	require.NotEmpty(t, chapters)
	require.NotEmpty(t, chapters[0].KnowledgePoints)
	return chapters[0].KnowledgePoints[0]
}

func (e *testEnv) chapters(t *testing.T) []model.Chapter {
	t.Helper()
	course, err := e.course.GetDetail(e.teacher(), e.seed.CourseID)
	require.NoError(t, err)
	return course.Chapters
}
