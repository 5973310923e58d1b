package service

import (
	"ai_teaching_backend/internal/model"
	"ai_teaching_backend/internal/util"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCourseDetailOrdersStructure(t *testing.T) {
	env := newTestEnv(t)

	course, err := env.course.GetDetail(nil, env.seed.CourseID)
	require.NoError(t, err)
	require.Len(t, course.Chapters, 3)
	for i, ch := range course.Chapters {
		assert.Equal(t, i+1, ch.Order)
	}
	require.Len(t, course.Chapters[0].KnowledgePoints, 4)
	assert.Equal(t, "函数的概念", course.Chapters[0].KnowledgePoints[0].Title)
}

func TestDraftCourseVisibleToOwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course, err := env.course.Create(env.teacher(), CourseRequest{Code: "PHY101", Name: "大学物理"})
	require.NoError(t, err)
	assert.Equal(t, model.CourseDraft, course.Status)

	_, err = env.course.GetDetail(nil, course.ID)
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
	_, err = env.course.GetDetail(env.student(), course.ID)
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
	_, err = env.course.GetDetail(env.teacher(), course.ID)
	assert.NoError(t, err)

	// 未发布课程不能选修
	_, err = env.course.Enroll(env.seed.StudentID, course.ID)
	assert.ErrorIs(t, err, util.ErrCourseNotFound)

	_, err = env.course.SetStatus(ctx, env.teacher(), course.ID, model.CoursePublished)
	require.NoError(t, err)
	_, err = env.course.GetDetail(nil, course.ID)
	assert.NoError(t, err)

	list, total, err := env.course.ListPublished(CourseListQuery{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, list, 2)
}

func TestCourseCodeMustBeUnique(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.course.Create(env.teacher(), CourseRequest{Code: DefaultSeedCourseCode, Name: "重复"})
	assert.ErrorIs(t, err, util.ErrCourseCodeExists)

	other, err := env.course.Create(env.teacher(), CourseRequest{Code: "LA101", Name: "线性代数"})
	require.NoError(t, err)
	_, err = env.course.Update(context.Background(), env.teacher(), other.ID, CourseRequest{Code: DefaultSeedCourseCode, Name: "线性代数"})
	assert.ErrorIs(t, err, util.ErrCourseCodeExists)
}

func TestCourseOwnership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	intruder := env.newUser(t, "teacher2@example.com", model.Teacher)
	admin := env.newUser(t, "admin@example.com", model.Admin)
	req := CourseRequest{Code: DefaultSeedCourseCode, Name: "高等数学（上）", Credits: 4}

	_, err := env.course.Update(ctx, intruder, env.seed.CourseID, req)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	updated, err := env.course.Update(ctx, admin, env.seed.CourseID, req)
	require.NoError(t, err)
	assert.Equal(t, "高等数学（上）", updated.Name)
	assert.Equal(t, 4, updated.Credits)

	mine, total, err := env.course.ListManaged(intruder, CourseListQuery{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, mine)

	all, total, err := env.course.ListManaged(admin, CourseListQuery{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, all, 1)
}

func TestEnrollmentLifecycle(t *testing.T) {
	env := newTestEnv(t)
	other := env.newUser(t, "student2@example.com", model.Student)

	_, err := env.course.Enroll(env.seed.StudentID, env.seed.CourseID)
	assert.ErrorIs(t, err, util.ErrAlreadyEnrolled)

	e, err := env.course.Enroll(other.UserID, env.seed.CourseID)
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentActive, e.Status)

	courses, err := env.course.StudentCourses(other.UserID)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, 3, courses[0].TotalChapters)
	assert.Zero(t, courses[0].CompletedChapters)

	require.NoError(t, env.course.Unenroll(other.UserID, env.seed.CourseID))
	assert.ErrorIs(t, env.course.Unenroll(other.UserID, env.seed.CourseID), util.ErrNotEnrolled)

	// 退课后可以重新选课
	_, err = env.course.Enroll(other.UserID, env.seed.CourseID)
	assert.NoError(t, err)
}

func TestDeleteCourseCascades(t *testing.T) {
	env := newTestEnv(t)
	chapters := env.chapters(t)
	progress := 50.0
	_, err := env.progress.Update(env.seed.StudentID, chapters[0].ID, ChapterProgressRequest{Progress: &progress})
	require.NoError(t, err)

	require.NoError(t, env.course.Delete(context.Background(), env.teacher(), env.seed.CourseID))

	counts, err := NewSeedService(env.db).Verify(DefaultSeedCourseCode)
	require.NoError(t, err)
	assert.True(t, Empty(counts), "%v", counts)

	_, err = env.course.GetDetail(env.teacher(), env.seed.CourseID)
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
}
