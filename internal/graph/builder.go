package graph

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"sync"
	"time"
)

const (
	CourseNodeSize    = 60
	ChapterNodeSize   = 40
	KnowledgeNodeSize = 25
)

// Layout 布局参数
type Layout struct {
	ChapterRadius      float64
	KnowledgeRadiusMin float64
	KnowledgeRadiusMax float64
}

func DefaultLayout() Layout {
	return Layout{
		ChapterRadius:      300,
		KnowledgeRadiusMin: 100,
		KnowledgeRadiusMax: 150,
	}
}

type CourseInfo struct {
	ID                string
	Name              string
	Description       string
	Progress          float64
	TotalChapters     int
	CompletedChapters int
}

type ChapterInfo struct {
	ID                  string
	CourseID            string
	CourseName          string
	Title               string
	Description         string
	Order               int
	KnowledgePointCount int
}

type KnowledgePointInfo struct {
	ID            string
	ChapterID     string
	Title         string
	Description   string
	Difficulty    Difficulty
	Importance    Importance
	EstimatedTime int
	Progress      float64
}

// Input 构图所需的源数据，Course 可以为空
type Input struct {
	Course          *CourseInfo
	Chapters        []ChapterInfo
	KnowledgePoints []KnowledgePointInfo
}

// Builder 将课程结构转换为带坐标的节点和边
type Builder struct {
	layout Layout

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewBuilder seed 为 0 时按当前时间播种，布局不可复现
func NewBuilder(layout Layout, seed uint64) *Builder {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Builder{
		layout: layout,
		rnd:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (b *Builder) Layout() Layout {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.layout
}

// SetLayout 配置热更新时调用，对之后的构图生效
func (b *Builder) SetLayout(layout Layout) {
	b.mu.Lock()
	b.layout = layout
	b.mu.Unlock()
}

func CourseNodeID(id string) string    { return "course-" + id }
func ChapterNodeID(id string) string   { return "chapter-" + id }
func KnowledgeNodeID(id string) string { return "kp-" + id }

func edgeID(kind RelationKind, source, target string) string {
	return fmt.Sprintf("%s:%s:%s", kind, source, target)
}

func (b *Builder) Build(in Input) *Graph {
	b.mu.Lock()
	defer b.mu.Unlock()

	chapters := make([]ChapterInfo, len(in.Chapters))
	copy(chapters, in.Chapters)
	sort.SliceStable(chapters, func(i, j int) bool { return chapters[i].Order < chapters[j].Order })

	nodes := make([]Node, 0, 1+len(chapters)+len(in.KnowledgePoints))
	edges := make([]Edge, 0, len(chapters)+len(in.KnowledgePoints))

	course := in.Course
	if course == nil && len(chapters) > 0 {
		course = &CourseInfo{
			ID:                chapters[0].CourseID,
			Name:              chapters[0].CourseName,
			TotalChapters:     len(chapters),
			CompletedChapters: 0,
		}
	}

	courseNodeID := ""
	if course != nil {
		courseNodeID = CourseNodeID(course.ID)
		total := course.TotalChapters
		if total == 0 {
			total = len(chapters)
		}
		nodes = append(nodes, Node{
			ID:                courseNodeID,
			EntityID:          course.ID,
			Type:              NodeCourse,
			Label:             course.Name,
			Description:       course.Description,
			Position:          Position{},
			Size:              CourseNodeSize,
			Color:             CourseColor,
			Progress:          course.Progress,
			TotalChapters:     total,
			CompletedChapters: course.CompletedChapters,
		})
	}

	chapterPos := make(map[string]Position, len(chapters))
	for i, ch := range chapters {
		angle := float64(i) / float64(len(chapters)) * 2 * math.Pi
		pos := Position{
			X: b.layout.ChapterRadius * math.Cos(angle),
			Y: b.layout.ChapterRadius * math.Sin(angle),
		}
		chapterPos[ch.ID] = pos
		id := ChapterNodeID(ch.ID)
		nodes = append(nodes, Node{
			ID:          id,
			EntityID:    ch.ID,
			Type:        NodeChapter,
			Label:       ch.Title,
			Description: ch.Description,
			Position:    pos,
			Size:        ChapterNodeSize,
			Color:       ChapterColor,
			Order:       ch.Order,
		})
		if courseNodeID != "" {
			edges = append(edges, Edge{
				ID:       edgeID(RelCourseChapter, courseNodeID, id),
				Source:   courseNodeID,
				Target:   id,
				Kind:     RelCourseChapter,
				Strength: StrengthCourseChapter,
			})
		}
	}

	// 按章节分组，用于生成同章节知识点之间的连线
	byChapter := make(map[string][]string)
	var chapterOrder []string
	for _, kp := range in.KnowledgePoints {
		center, ok := chapterPos[kp.ChapterID]
		if !ok {
			continue
		}
		angle := b.rnd.Float64() * 2 * math.Pi
		r := b.layout.KnowledgeRadiusMin + b.rnd.Float64()*(b.layout.KnowledgeRadiusMax-b.layout.KnowledgeRadiusMin)
		id := KnowledgeNodeID(kp.ID)
		nodes = append(nodes, Node{
			ID:            id,
			EntityID:      kp.ID,
			Type:          NodeKnowledge,
			Label:         kp.Title,
			Description:   kp.Description,
			Position:      Position{X: center.X + r*math.Cos(angle), Y: center.Y + r*math.Sin(angle)},
			Size:          KnowledgeNodeSize,
			Color:         KnowledgeColor(kp.Difficulty, kp.Importance),
			Progress:      kp.Progress,
			Difficulty:    kp.Difficulty,
			Importance:    kp.Importance,
			EstimatedTime: kp.EstimatedTime,
		})
		chID := ChapterNodeID(kp.ChapterID)
		edges = append(edges, Edge{
			ID:       edgeID(RelChapterKnowledge, chID, id),
			Source:   chID,
			Target:   id,
			Kind:     RelChapterKnowledge,
			Strength: StrengthChapterKnowledge,
		})
		if _, seen := byChapter[kp.ChapterID]; !seen {
			chapterOrder = append(chapterOrder, kp.ChapterID)
		}
		byChapter[kp.ChapterID] = append(byChapter[kp.ChapterID], id)
	}

	for _, chID := range chapterOrder {
		ids := byChapter[chID]
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				edges = append(edges, Edge{
					ID:       edgeID(RelKnowledgeKnowledge, ids[i], ids[j]),
					Source:   ids[i],
					Target:   ids[j],
					Kind:     RelKnowledgeKnowledge,
					Strength: StrengthKnowledgeKnowledge,
				})
			}
		}
	}

	return NewGraph(nodes, edges)
}
