package service

import (
	"ai_teaching_backend/internal/graph"
	"ai_teaching_backend/internal/model"
	"ai_teaching_backend/internal/repository"
	"ai_teaching_backend/internal/util"
	"context"
	"errors"

	"gorm.io/gorm"
)

type KnowledgePointRequest struct {
	ChapterID     string                     `json:"chapterId" binding:"required"`
	Title         string                     `json:"title" binding:"required,max=100"`
	Description   string                     `json:"description"`
	Content       string                     `json:"content"`
	Difficulty    string                     `json:"difficulty"`
	Importance    string                     `json:"importance"`
	EstimatedTime int                        `json:"estimatedTime" binding:"min=0"`
	Order         *int                       `json:"order"`
	Status        model.KnowledgePointStatus `json:"status" binding:"omitempty,oneof=draft published"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

func NewPagination(page, limit int, total int64) Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}

type KnowledgePointList struct {
	KnowledgePoints []model.KnowledgePoint `json:"knowledgePoints"`
	Pagination      Pagination             `json:"pagination"`
}

type KnowledgePointService struct {
	KnowledgeRepo  *repository.KnowledgePointRepository
	ChapterService *ChapterService
	Structure      *StructureCache
}

func NewKnowledgePointService(kpRepo *repository.KnowledgePointRepository, chapterService *ChapterService, structure *StructureCache) *KnowledgePointService {
	return &KnowledgePointService{
		KnowledgeRepo:  kpRepo,
		ChapterService: chapterService,
		Structure:      structure,
	}
}

func knowledgeNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrKnowledgeNotFound
	}
	return err
}

func (s *KnowledgePointService) List(f repository.KnowledgePointFilter, page, limit int) (*KnowledgePointList, error) {
	points, total, err := s.KnowledgeRepo.List(f, page, limit)
	if err != nil {
		return nil, err
	}
	return &KnowledgePointList{
		KnowledgePoints: points,
		Pagination:      NewPagination(page, limit, total),
	}, nil
}

func (s *KnowledgePointService) Get(id string) (*model.KnowledgePoint, error) {
	kp, err := s.KnowledgeRepo.FindByID(id)
	if err != nil {
		return nil, knowledgeNotFound(err)
	}
	return kp, nil
}

// normalizeLevels 难度与重要性统一存为 easy/medium/hard 与 low/medium/high
func normalizeLevels(kp *model.KnowledgePoint, difficulty, importance string) {
	kp.Difficulty = string(graph.ParseDifficulty(difficulty))
	kp.Importance = string(graph.ParseImportance(importance))
}

func (s *KnowledgePointService) Create(ctx context.Context, claims *util.Claims, req KnowledgePointRequest) (*model.KnowledgePoint, error) {
	ch, err := s.ChapterService.ownedChapter(claims, req.ChapterID)
	if err != nil {
		return nil, err
	}

	kp := &model.KnowledgePoint{
		ChapterID:     req.ChapterID,
		Title:         req.Title,
		Description:   req.Description,
		Content:       req.Content,
		EstimatedTime: req.EstimatedTime,
		Status:        req.Status,
	}
	normalizeLevels(kp, req.Difficulty, req.Importance)
	if kp.Status == "" {
		kp.Status = model.KPDraft
	}
	if req.Order != nil {
		kp.Order = *req.Order
	} else {
		next, err := s.KnowledgeRepo.NextOrder(req.ChapterID)
		if err != nil {
			return nil, err
		}
		kp.Order = next
	}

	if err := s.KnowledgeRepo.Create(kp); err != nil {
		return nil, err
	}
	s.Structure.Invalidate(ctx, ch.CourseID)
	return kp, nil
}

// owned 加载知识点并校验归属，返回所属课程 id
func (s *KnowledgePointService) owned(claims *util.Claims, id string) (*model.KnowledgePoint, string, error) {
	kp, err := s.KnowledgeRepo.FindByID(id)
	if err != nil {
		return nil, "", knowledgeNotFound(err)
	}
	if kp.Chapter == nil || kp.Chapter.Course == nil {
		return nil, "", util.ErrChapterNotFound
	}
	if err := authorizeCourse(claims, kp.Chapter.Course); err != nil {
		return nil, "", err
	}
	return kp, kp.Chapter.CourseID, nil
}

// Update 可以把知识点移到同一课程的其他章节
func (s *KnowledgePointService) Update(ctx context.Context, claims *util.Claims, id string, req KnowledgePointRequest) (*model.KnowledgePoint, error) {
	kp, courseID, err := s.owned(claims, id)
	if err != nil {
		return nil, err
	}
	if req.ChapterID != kp.ChapterID {
		target, err := s.ChapterService.ownedChapter(claims, req.ChapterID)
		if err != nil {
			return nil, err
		}
		if target.CourseID != courseID {
			return nil, util.ErrPermissionDenied
		}
		kp.ChapterID = req.ChapterID
	}

	kp.Title = req.Title
	kp.Description = req.Description
	kp.Content = req.Content
	kp.EstimatedTime = req.EstimatedTime
	normalizeLevels(kp, req.Difficulty, req.Importance)
	if req.Order != nil {
		kp.Order = *req.Order
	}
	if req.Status != "" {
		kp.Status = req.Status
	}
	kp.Chapter = nil
	if err := s.KnowledgeRepo.Update(kp); err != nil {
		return nil, err
	}
	s.Structure.Invalidate(ctx, courseID)
	return kp, nil
}

func (s *KnowledgePointService) Delete(ctx context.Context, claims *util.Claims, id string) error {
	_, courseID, err := s.owned(claims, id)
	if err != nil {
		return err
	}
	if err := s.KnowledgeRepo.Delete(id); err != nil {
		return err
	}
	s.Structure.Invalidate(ctx, courseID)
	return nil
}

func (s *KnowledgePointService) Reorder(ctx context.Context, claims *util.Claims, chapterID string, updates []repository.OrderUpdate) error {
	if len(updates) == 0 {
		return util.ErrInvalidOrderUpdates
	}
	ch, err := s.ChapterService.ownedChapter(claims, chapterID)
	if err != nil {
		return err
	}
	if err := s.KnowledgeRepo.UpdateOrders(chapterID, updates); err != nil {
		return knowledgeNotFound(err)
	}
	s.Structure.Invalidate(ctx, ch.CourseID)
	return nil
}
