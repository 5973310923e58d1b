package service

import (
	"ai_teaching_backend/internal/model"
	"ai_teaching_backend/internal/repository"
	"ai_teaching_backend/internal/util"
	"context"
	"errors"

	"gorm.io/gorm"
)

// 章节列表 status 参数取值 all 时不过滤
const StatusAll = "all"

type ChapterRequest struct {
	CourseID    string              `json:"courseId" binding:"required"`
	Title       string              `json:"title" binding:"required,max=255"`
	Description string              `json:"description"`
	Order       *int                `json:"order"`
	Duration    int                 `json:"duration" binding:"min=0"`
	Status      model.ChapterStatus `json:"status" binding:"omitempty,oneof=draft published"`
}

type ReorderRequest struct {
	Updates []repository.OrderUpdate `json:"updates"`
}

type ChapterResponse struct {
	model.Chapter
	CourseName          string `json:"courseName"`
	KnowledgePointCount int    `json:"knowledgePointCount"`
}

type ChapterService struct {
	ChapterRepo   *repository.ChapterRepository
	CourseService *CourseService
	Structure     *StructureCache
}

func NewChapterService(chapterRepo *repository.ChapterRepository, courseService *CourseService, structure *StructureCache) *ChapterService {
	return &ChapterService{
		ChapterRepo:   chapterRepo,
		CourseService: courseService,
		Structure:     structure,
	}
}

func chapterNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrChapterNotFound
	}
	return err
}

// ParseChapterStatus 空值默认只看已发布章节
func ParseChapterStatus(s string) model.ChapterStatus {
	switch s {
	case "":
		return model.ChapterPublished
	case StatusAll:
		return ""
	default:
		return model.ChapterStatus(s)
	}
}

func (s *ChapterService) List(courseID, status string) ([]ChapterResponse, error) {
	chapters, err := s.ChapterRepo.List(courseID, ParseChapterStatus(status))
	if err != nil {
		return nil, err
	}

	counts := map[string]int{}
	if courseID != "" {
		if counts, err = s.ChapterRepo.KnowledgePointCounts(courseID); err != nil {
			return nil, err
		}
	}

	out := make([]ChapterResponse, 0, len(chapters))
	for _, ch := range chapters {
		resp := ChapterResponse{Chapter: ch, KnowledgePointCount: counts[ch.ID]}
		if ch.Course != nil {
			resp.CourseName = ch.Course.Name
		}
		// 课程信息已展开为 courseName
		resp.Chapter.Course = nil
		out = append(out, resp)
	}
	return out, nil
}

func (s *ChapterService) Get(id string) (*ChapterResponse, error) {
	ch, err := s.ChapterRepo.FindWithKnowledgePoints(id)
	if err != nil {
		return nil, chapterNotFound(err)
	}
	resp := &ChapterResponse{Chapter: *ch, KnowledgePointCount: len(ch.KnowledgePoints)}
	if ch.Course != nil {
		resp.CourseName = ch.Course.Name
	}
	resp.Chapter.Course = nil
	return resp, nil
}

// ownedChapter 加载章节并校验所属课程的归属
func (s *ChapterService) ownedChapter(claims *util.Claims, id string) (*model.Chapter, error) {
	ch, err := s.ChapterRepo.FindByID(id)
	if err != nil {
		return nil, chapterNotFound(err)
	}
	if ch.Course == nil {
		return nil, util.ErrCourseNotFound
	}
	if err := authorizeCourse(claims, ch.Course); err != nil {
		return nil, err
	}
	return ch, nil
}

func (s *ChapterService) Create(ctx context.Context, claims *util.Claims, req ChapterRequest) (*model.Chapter, error) {
	if _, err := s.CourseService.OwnedCourse(claims, req.CourseID); err != nil {
		return nil, err
	}

	ch := &model.Chapter{
		CourseID:    req.CourseID,
		Title:       req.Title,
		Description: req.Description,
		Duration:    req.Duration,
		Status:      req.Status,
	}
	if ch.Status == "" {
		ch.Status = model.ChapterDraft
	}
	if req.Order != nil {
		ch.Order = *req.Order
	} else {
		next, err := s.ChapterRepo.NextOrder(req.CourseID)
		if err != nil {
			return nil, err
		}
		ch.Order = next
	}

	if err := s.ChapterRepo.Create(ch); err != nil {
		return nil, err
	}
	s.Structure.Invalidate(ctx, req.CourseID)
	return ch, nil
}

// Update 不允许把章节移动到其他课程
func (s *ChapterService) Update(ctx context.Context, claims *util.Claims, id string, req ChapterRequest) (*model.Chapter, error) {
	ch, err := s.ownedChapter(claims, id)
	if err != nil {
		return nil, err
	}

	ch.Title = req.Title
	ch.Description = req.Description
	ch.Duration = req.Duration
	if req.Order != nil {
		ch.Order = *req.Order
	}
	if req.Status != "" {
		ch.Status = req.Status
	}
	if err := s.ChapterRepo.Update(ch); err != nil {
		return nil, err
	}
	s.Structure.Invalidate(ctx, ch.CourseID)
	ch.Course = nil
	return ch, nil
}

func (s *ChapterService) Delete(ctx context.Context, claims *util.Claims, id string) error {
	ch, err := s.ownedChapter(claims, id)
	if err != nil {
		return err
	}
	if err := s.ChapterRepo.Delete(id); err != nil {
		return err
	}
	s.Structure.Invalidate(ctx, ch.CourseID)
	return nil
}

// Reorder 批量调整课程内章节顺序
func (s *ChapterService) Reorder(ctx context.Context, claims *util.Claims, courseID string, updates []repository.OrderUpdate) error {
	if len(updates) == 0 {
		return util.ErrInvalidOrderUpdates
	}
	if _, err := s.CourseService.OwnedCourse(claims, courseID); err != nil {
		return err
	}
	if err := s.ChapterRepo.UpdateOrders(courseID, updates); err != nil {
		return chapterNotFound(err)
	}
	s.Structure.Invalidate(ctx, courseID)
	return nil
}
