package fetch

import (
	"context"
	"sort"

	"ai_teaching_backend/internal/graph"

	"golang.org/x/sync/errgroup"
)

// Source 构图所需的三类数据
type Source interface {
	Courses(ctx context.Context) ([]Course, error)
	Chapters(ctx context.Context, courseID string) ([]Chapter, error)
	KnowledgePoints(ctx context.Context, courseID string) ([]KnowledgePoint, error)
}

// Loader 并发拉取课程、章节和知识点，任一请求失败则整体失败
type Loader struct {
	src Source
}

func NewLoader(src Source) *Loader {
	return &Loader{src: src}
}

// Load 返回课程的构图输入。课程不在已选课程列表中时 Course 为空，
// 由构图阶段根据章节生成占位课程。
func (l *Loader) Load(ctx context.Context, courseID string) (graph.Input, error) {
	var (
		courses  []Course
		chapters []Chapter
		points   []KnowledgePoint
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		courses, err = l.src.Courses(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		chapters, err = l.src.Chapters(gctx, courseID)
		return err
	})
	g.Go(func() error {
		var err error
		points, err = l.src.KnowledgePoints(gctx, courseID)
		return err
	})
	if err := g.Wait(); err != nil {
		return graph.Input{}, err
	}
	return assemble(courseID, courses, chapters, points), nil
}

func assemble(courseID string, courses []Course, chapters []Chapter, points []KnowledgePoint) graph.Input {
	in := graph.Input{}
	for _, c := range courses {
		if c.ID == courseID {
			in.Course = c.Info()
			break
		}
	}

	in.Chapters = make([]graph.ChapterInfo, 0, len(chapters))
	for _, ch := range chapters {
		if ch.CourseID != "" && ch.CourseID != courseID {
			continue
		}
		info := ch.Info()
		if info.CourseID == "" {
			info.CourseID = courseID
		}
		in.Chapters = append(in.Chapters, info)
	}
	sort.SliceStable(in.Chapters, func(i, j int) bool { return in.Chapters[i].Order < in.Chapters[j].Order })

	in.KnowledgePoints = make([]graph.KnowledgePointInfo, 0, len(points))
	for _, kp := range points {
		in.KnowledgePoints = append(in.KnowledgePoints, kp.Info())
	}
	return in
}
