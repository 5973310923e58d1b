package service

import (
	"ai_teaching_backend/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countOf(counts []TableCount, table string) int64 {
	for _, c := range counts {
		if c.Table == table {
			return c.Count
		}
	}
	return -1
}

func TestSeedIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewSeedService(db)
	steps := 0
	svc.OnStep = func(string) { steps++ }

	first, err := svc.Seed(DefaultSeedCourseCode)
	require.NoError(t, err)
	assert.Equal(t, SeedSteps(), steps)
	assert.Equal(t, 3, first.Chapters)
	assert.Equal(t, 9, first.KnowledgePoints)
	assert.Equal(t, 16, first.Created)

	second, err := svc.Seed(DefaultSeedCourseCode)
	require.NoError(t, err)
	assert.Equal(t, first.CourseID, second.CourseID)
	assert.Equal(t, 0, second.Created)

	var users int64
	require.NoError(t, db.Model(&model.User{}).Count(&users).Error)
	assert.EqualValues(t, 2, users)
}

func TestVerifyAndCleanup(t *testing.T) {
	db := newTestDB(t)
	svc := NewSeedService(db)
	_, err := svc.Seed(DefaultSeedCourseCode)
	require.NoError(t, err)

	counts, err := svc.Verify(DefaultSeedCourseCode)
	require.NoError(t, err)
	assert.EqualValues(t, 1, countOf(counts, "courses"))
	assert.EqualValues(t, 3, countOf(counts, "chapters"))
	assert.EqualValues(t, 9, countOf(counts, "knowledge_points"))
	assert.EqualValues(t, 1, countOf(counts, "enrollments"))
	assert.False(t, Empty(counts))

	steps := 0
	svc.OnStep = func(string) { steps++ }
	deleted, err := svc.Cleanup(DefaultSeedCourseCode)
	require.NoError(t, err)
	assert.Equal(t, CleanupSteps, steps)
	assert.EqualValues(t, 9, countOf(deleted, "knowledge_points"))
	assert.EqualValues(t, 1, countOf(deleted, "courses"))

	counts, err = svc.Verify(DefaultSeedCourseCode)
	require.NoError(t, err)
	assert.True(t, Empty(counts))

	// 用户保留
	var users int64
	require.NoError(t, db.Model(&model.User{}).Count(&users).Error)
	assert.EqualValues(t, 2, users)

	// 清理后可以重新写入
	again, err := svc.Seed(DefaultSeedCourseCode)
	require.NoError(t, err)
	assert.Equal(t, 14, again.Created)
}

func TestCleanupUnknownCourse(t *testing.T) {
	deleted, err := NewSeedService(newTestDB(t)).Cleanup("NOPE")
	require.NoError(t, err)
	assert.True(t, Empty(deleted))
	assert.Len(t, deleted, CleanupSteps)
}
