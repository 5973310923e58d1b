package fetch

import (
	"encoding/json"
	"math"
	"strings"

	"ai_teaching_backend/internal/graph"

	"github.com/spf13/cast"
)

// 接口返回的字段类型并不统一（数字可能是字符串，字段名有多种写法），
// 这里统一解码成 map 后再逐字段转换

type Course struct {
	ID                string
	Name              string
	Description       string
	Progress          float64
	TotalChapters     int
	CompletedChapters int
}

type Chapter struct {
	ID                  string
	CourseID            string
	CourseName          string
	Title               string
	Description         string
	Order               int
	KnowledgePointCount int
}

type KnowledgePoint struct {
	ID            string
	ChapterID     string
	CourseID      string
	Title         string
	Description   string
	Difficulty    graph.Difficulty
	Importance    graph.Importance
	EstimatedTime int
	Progress      float64
}

type record map[string]any

func decodeRecord(raw json.RawMessage) (record, bool) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil || m == nil {
		return nil, false
	}
	return record(m), true
}

func (r record) first(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (r record) str(keys ...string) string {
	v, ok := r.first(keys...)
	if !ok {
		return ""
	}
	return strings.TrimSpace(cast.ToString(v))
}

func (r record) integer(keys ...string) int {
	v, ok := r.first(keys...)
	if !ok {
		return 0
	}
	return cast.ToInt(v)
}

// float 字符串 "NaN" 保留为 NaN，由显示端统一限制范围
func (r record) float(keys ...string) float64 {
	v, ok := r.first(keys...)
	if !ok {
		return 0
	}
	if s, isStr := v.(string); isStr && strings.EqualFold(strings.TrimSpace(s), "nan") {
		return math.NaN()
	}
	return cast.ToFloat64(v)
}

// nested 读取形如 course: {id, name} 的嵌套对象
func (r record) nested(key string) record {
	if m, ok := r[key].(map[string]any); ok {
		return record(m)
	}
	return record{}
}

func ParseCourse(raw json.RawMessage) (Course, bool) {
	r, ok := decodeRecord(raw)
	if !ok {
		return Course{}, false
	}
	c := Course{
		ID:                r.str("id"),
		Name:              r.str("name", "title"),
		Description:       r.str("description"),
		Progress:          r.float("progress"),
		TotalChapters:     r.integer("totalChapters", "total_chapters"),
		CompletedChapters: r.integer("completedChapters", "completed_chapters"),
	}
	if c.TotalChapters == 0 {
		if chs, ok := r["chapters"].([]any); ok {
			c.TotalChapters = len(chs)
		}
	}
	return c, c.ID != ""
}

func ParseChapter(raw json.RawMessage) (Chapter, bool) {
	r, ok := decodeRecord(raw)
	if !ok {
		return Chapter{}, false
	}
	course := r.nested("course")
	ch := Chapter{
		ID:                  r.str("id"),
		CourseID:            r.str("courseId", "course_id"),
		CourseName:          r.str("courseName", "course_name"),
		Title:               r.str("title", "name"),
		Description:         r.str("description"),
		Order:               r.integer("order", "orderIndex", "sort"),
		KnowledgePointCount: r.integer("knowledgePointCount", "knowledgePointsCount"),
	}
	if ch.CourseID == "" {
		ch.CourseID = course.str("id")
	}
	if ch.CourseName == "" {
		ch.CourseName = course.str("name", "title")
	}
	return ch, ch.ID != ""
}

func ParseKnowledgePoint(raw json.RawMessage) (KnowledgePoint, bool) {
	r, ok := decodeRecord(raw)
	if !ok {
		return KnowledgePoint{}, false
	}
	kp := KnowledgePoint{
		ID:            r.str("id"),
		ChapterID:     r.str("chapterId", "chapter_id"),
		CourseID:      r.str("courseId", "course_id"),
		Title:         r.str("title", "name"),
		Description:   r.str("description"),
		Difficulty:    graph.ParseDifficulty(r.str("difficulty")),
		Importance:    graph.ParseImportance(r.str("importance")),
		EstimatedTime: r.integer("estimatedTime", "estimated_time", "duration"),
		Progress:      r.float("progress"),
	}
	if kp.ChapterID == "" {
		kp.ChapterID = r.nested("chapter").str("id")
	}
	return kp, kp.ID != ""
}

func parseAll[T any](items []json.RawMessage, parse func(json.RawMessage) (T, bool)) []T {
	out := make([]T, 0, len(items))
	for _, raw := range items {
		if v, ok := parse(raw); ok {
			out = append(out, v)
		}
	}
	return out
}

func (c Course) Info() *graph.CourseInfo {
	return &graph.CourseInfo{
		ID:                c.ID,
		Name:              c.Name,
		Description:       c.Description,
		Progress:          c.Progress,
		TotalChapters:     c.TotalChapters,
		CompletedChapters: c.CompletedChapters,
	}
}

func (ch Chapter) Info() graph.ChapterInfo {
	return graph.ChapterInfo{
		ID:                  ch.ID,
		CourseID:            ch.CourseID,
		CourseName:          ch.CourseName,
		Title:               ch.Title,
		Description:         ch.Description,
		Order:               ch.Order,
		KnowledgePointCount: ch.KnowledgePointCount,
	}
}

func (kp KnowledgePoint) Info() graph.KnowledgePointInfo {
	return graph.KnowledgePointInfo{
		ID:            kp.ID,
		ChapterID:     kp.ChapterID,
		Title:         kp.Title,
		Description:   kp.Description,
		Difficulty:    kp.Difficulty,
		Importance:    kp.Importance,
		EstimatedTime: kp.EstimatedTime,
		Progress:      kp.Progress,
	}
}
