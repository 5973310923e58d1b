package fetch

import (
	"math"
	"testing"

	"ai_teaching_backend/internal/graph"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeShapes(t *testing.T) {
	cases := []struct {
		name string
		body string
		want int
	}{
		{"bare array", `[{"id":"a"},{"id":"b"}]`, 2},
		{"data array", `{"success":true,"data":[{"id":"a"}]}`, 1},
		{"data without success", `{"data":[{"id":"a"},{"id":"b"},{"id":"c"}]}`, 3},
		{"nested field", `{"success":true,"data":{"knowledgePoints":[{"id":"a"}],"pagination":{"total":1}}}`, 1},
		{"nested unknown field", `{"data":{"items":[{"id":"a"}]}}`, 0},
		{"data is scalar", `{"data":"oops"}`, 0},
		{"no data", `{"success":false,"message":"boom"}`, 0},
		{"not json", `<html>502</html>`, 0},
		{"empty body", ``, 0},
		{"null data", `{"data":null}`, 0},
		{"empty array", `[]`, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize([]byte(tc.body), FieldKnowledgePoints)
			require.NotNil(t, got)
			assert.Len(t, got, tc.want)
		})
	}
}

func TestNormalizeFieldOrder(t *testing.T) {
	body := []byte(`{"data":{"chapters":[{"id":"c1"}],"courses":[{"id":"x"},{"id":"y"}]}}`)
	assert.Len(t, Normalize(body, FieldCourses, FieldChapters), 2)
	assert.Len(t, Normalize(body, FieldChapters), 1)
}

func TestParseKnowledgePointLooseFields(t *testing.T) {
	kp, ok := ParseKnowledgePoint([]byte(`{"id":12,"chapter":{"id":"ch1"},"title":" 极限 ","difficulty":"HARD","importance":5,"estimatedTime":"45","progress":"NaN"}`))
	require.True(t, ok)
	assert.Equal(t, "12", kp.ID)
	assert.Equal(t, "ch1", kp.ChapterID)
	assert.Equal(t, "极限", kp.Title)
	assert.Equal(t, graph.DifficultyHard, kp.Difficulty)
	assert.Equal(t, graph.ImportanceHigh, kp.Importance)
	assert.Equal(t, 45, kp.EstimatedTime)
	assert.True(t, math.IsNaN(kp.Progress))
	assert.Equal(t, 0.0, graph.ClampProgress(kp.Progress))

	_, ok = ParseKnowledgePoint([]byte(`{"title":"no id"}`))
	assert.False(t, ok)
	_, ok = ParseKnowledgePoint([]byte(`"string"`))
	assert.False(t, ok)
}

func TestParseChapterAndCourse(t *testing.T) {
	ch, ok := ParseChapter([]byte(`{"id":"ch1","course":{"id":"c1","name":"高等数学"},"name":"函数","order":"2"}`))
	require.True(t, ok)
	assert.Equal(t, "c1", ch.CourseID)
	assert.Equal(t, "高等数学", ch.CourseName)
	assert.Equal(t, "函数", ch.Title)
	assert.Equal(t, 2, ch.Order)

	c, ok := ParseCourse([]byte(`{"id":"c1","title":"大学物理","progress":120,"chapters":[{},{}]}`))
	require.True(t, ok)
	assert.Equal(t, "大学物理", c.Name)
	assert.Equal(t, 120.0, c.Progress)
	assert.Equal(t, 2, c.TotalChapters)
}
