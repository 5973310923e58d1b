package service

import (
	"ai_teaching_backend/internal/model"
	"ai_teaching_backend/internal/util"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func homework(kpID string) AssignmentRequest {
	return AssignmentRequest{
		Title:            "极限练习",
		Type:             model.AssignmentHomework,
		KnowledgePointID: kpID,
	}
}

func TestAssignmentLifecycle(t *testing.T) {
	env := newTestEnv(t)
	kp := env.knowledgePoint(t)
	intruder := env.newUser(t, "other-teacher@example.com", model.Teacher)
	outsider := env.newUser(t, "outsider@example.com", model.Student)

	_, err := env.assignment.Create(intruder, homework(kp.ID))
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	a, err := env.assignment.Create(env.teacher(), homework(kp.ID))
	require.NoError(t, err)
	assert.Equal(t, model.AssignmentDraft, a.Status)
	assert.Equal(t, 100.0, a.TotalPoints)
	assert.Equal(t, env.seed.CourseID, a.CourseID)

	// 草稿对学生不可见
	list, err := env.assignment.List(env.student(), AssignmentQuery{CourseID: env.seed.CourseID, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, list.Assignments)
	list, err = env.assignment.List(env.teacher(), AssignmentQuery{CourseID: env.seed.CourseID, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, list.Assignments, 1)
	_, err = env.assignment.Get(env.student(), a.ID)
	assert.ErrorIs(t, err, util.ErrAssignmentNotFound)
	_, err = env.assignment.Submit(env.student(), a.ID, SubmitRequest{Content: "答案"})
	assert.ErrorIs(t, err, util.ErrAssignmentNotFound)

	req := homework(kp.ID)
	req.Status = model.AssignmentPublished
	req.TotalPoints = 50
	_, err = env.assignment.Update(intruder, a.ID, req)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
	a, err = env.assignment.Update(env.teacher(), a.ID, req)
	require.NoError(t, err)
	assert.Equal(t, model.AssignmentPublished, a.Status)
	assert.Equal(t, 50.0, a.TotalPoints)

	sub, err := env.assignment.Submit(env.student(), a.ID, SubmitRequest{Content: "lim x→0 sin x / x = 1"})
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionSubmitted, sub.Status)
	assert.Nil(t, sub.Score)

	_, err = env.assignment.Submit(env.student(), a.ID, SubmitRequest{Content: "again"})
	assert.ErrorIs(t, err, util.ErrAlreadySubmitted)
	_, err = env.assignment.Submit(outsider, a.ID, SubmitRequest{Content: "x"})
	assert.ErrorIs(t, err, util.ErrNotEnrolled)

	list, err = env.assignment.List(env.student(), AssignmentQuery{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, list.Assignments, 1)
	assert.Len(t, list.Assignments[0].Submissions, 1)
	got, err := env.assignment.Get(env.student(), a.ID)
	require.NoError(t, err)
	assert.Len(t, got.Submissions, 1)

	mine, err := env.assignment.TeacherList(env.teacher(), "")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Len(t, mine[0].Submissions, 1)
	require.NotNil(t, mine[0].Submissions[0].User)
	assert.Equal(t, env.seed.StudentID, mine[0].Submissions[0].User.ID)
	others, err := env.assignment.TeacherList(intruder, "")
	require.NoError(t, err)
	assert.Empty(t, others)

	tooHigh := 60.0
	_, err = env.assignment.Grade(env.teacher(), sub.ID, GradeRequest{Score: &tooHigh})
	assert.ErrorIs(t, err, util.ErrInvalidScore)
	score := 40.0
	_, err = env.assignment.Grade(intruder, sub.ID, GradeRequest{Score: &score})
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
	_, err = env.assignment.Grade(env.teacher(), "missing", GradeRequest{Score: &score})
	assert.ErrorIs(t, err, util.ErrSubmissionNotFound)

	graded, err := env.assignment.Grade(env.teacher(), sub.ID, GradeRequest{Score: &score, Feedback: "推导完整"})
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionGraded, graded.Status)
	require.NotNil(t, graded.GradedAt)
	assert.Equal(t, "推导完整", graded.Feedback)

	stats, err := env.learning.Stats(env.seed.StudentID, env.seed.CourseID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.GradedAssignmentsCount)
	assert.InDelta(t, 80, stats.AverageScore, 1e-9)
	assert.EqualValues(t, 1, stats.SubmittedCount)
	assert.EqualValues(t, 1, stats.PublishedAssignments)
}

func TestAssignmentSubmitWindow(t *testing.T) {
	env := newTestEnv(t)
	kp := env.knowledgePoint(t)

	past := time.Now().Add(-time.Hour)
	req := homework(kp.ID)
	req.Status = model.AssignmentPublished
	req.DueDate = &past
	overdue, err := env.assignment.Create(env.teacher(), req)
	require.NoError(t, err)
	_, err = env.assignment.Submit(env.student(), overdue.ID, SubmitRequest{Content: "迟交"})
	assert.ErrorIs(t, err, util.ErrAssignmentClosed)

	req = homework(kp.ID)
	req.Status = model.AssignmentClosed
	closed, err := env.assignment.Create(env.teacher(), req)
	require.NoError(t, err)
	_, err = env.assignment.Submit(env.student(), closed.ID, SubmitRequest{Content: "x"})
	assert.ErrorIs(t, err, util.ErrAssignmentClosed)

	_, err = env.assignment.Submit(env.student(), "missing", SubmitRequest{Content: "x"})
	assert.ErrorIs(t, err, util.ErrAssignmentNotFound)
}

func TestAssignmentsFollowKnowledgePointDeletion(t *testing.T) {
	env := newTestEnv(t)
	kp := env.knowledgePoint(t)

	req := homework(kp.ID)
	req.Status = model.AssignmentPublished
	a, err := env.assignment.Create(env.teacher(), req)
	require.NoError(t, err)
	_, err = env.assignment.Submit(env.student(), a.ID, SubmitRequest{Content: "答案"})
	require.NoError(t, err)

	require.NoError(t, env.knowledge.Delete(context.Background(), env.teacher(), kp.ID))

	_, err = env.assignment.Get(env.teacher(), a.ID)
	assert.ErrorIs(t, err, util.ErrAssignmentNotFound)
	var n int64
	require.NoError(t, env.db.Unscoped().Model(&model.Submission{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestAssignmentDeleteAndCourseCascade(t *testing.T) {
	env := newTestEnv(t)
	kp := env.knowledgePoint(t)

	first, err := env.assignment.Create(env.teacher(), homework(kp.ID))
	require.NoError(t, err)
	_, err = env.assignment.Create(env.teacher(), homework(kp.ID))
	require.NoError(t, err)

	require.NoError(t, env.assignment.Delete(env.teacher(), first.ID))
	_, err = env.assignment.Get(env.teacher(), first.ID)
	assert.ErrorIs(t, err, util.ErrAssignmentNotFound)

	require.NoError(t, env.course.Delete(context.Background(), env.teacher(), env.seed.CourseID))
	var n int64
	require.NoError(t, env.db.Unscoped().Model(&model.Assignment{}).Count(&n).Error)
	assert.Zero(t, n)
}
