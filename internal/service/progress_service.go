package service

import (
	"ai_teaching_backend/internal/graph"
	"ai_teaching_backend/internal/model"
	"ai_teaching_backend/internal/repository"
	"ai_teaching_backend/internal/util"
	"errors"
	"time"

	"gorm.io/gorm"
)

type ChapterProgressRequest struct {
	Progress    *float64 `json:"progress" binding:"required"`
	WatchedTime int      `json:"watchedTime" binding:"min=0"`
}

type KnowledgePointProgressRequest struct {
	Progress *float64 `json:"progress" binding:"required"`
}

type ProgressService struct {
	ProgressRepo   *repository.ProgressRepository
	ChapterRepo    *repository.ChapterRepository
	KnowledgeRepo  *repository.KnowledgePointRepository
	CourseRepo     *repository.CourseRepository
	EnrollmentRepo *repository.EnrollmentRepository
}

func NewProgressService(
	progressRepo *repository.ProgressRepository,
	chapterRepo *repository.ChapterRepository,
	kpRepo *repository.KnowledgePointRepository,
	courseRepo *repository.CourseRepository,
	enrollmentRepo *repository.EnrollmentRepository,
) *ProgressService {
	return &ProgressService{
		ProgressRepo:   progressRepo,
		ChapterRepo:    chapterRepo,
		KnowledgeRepo:  kpRepo,
		CourseRepo:     courseRepo,
		EnrollmentRepo: enrollmentRepo,
	}
}

func (s *ProgressService) List(userID uint, courseID string) ([]model.ChapterProgress, error) {
	return s.ProgressRepo.ListChapterProgress(userID, courseID)
}

func (s *ProgressService) Get(userID uint, chapterID string) (*model.ChapterProgress, error) {
	p, err := s.ProgressRepo.FindChapterProgress(userID, chapterID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrProgressNotFound
	}
	return p, err
}

func (s *ProgressService) enrollment(userID uint, courseID string) (*model.Enrollment, error) {
	e, err := s.EnrollmentRepo.Find(userID, courseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrNotEnrolled
	}
	return e, err
}

// Update 记录章节进度：限制在 [0,100]，达到 100 视为完成，并重算课程整体进度
func (s *ProgressService) Update(userID uint, chapterID string, req ChapterProgressRequest) (*model.ChapterProgress, error) {
	ch, err := s.ChapterRepo.FindByID(chapterID)
	if err != nil {
		return nil, chapterNotFound(err)
	}
	e, err := s.enrollment(userID, ch.CourseID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	progress := graph.ClampProgress(*req.Progress)
	p := &model.ChapterProgress{
		UserID:        userID,
		ChapterID:     chapterID,
		CourseID:      ch.CourseID,
		WatchedTime:   req.WatchedTime,
		Progress:      progress,
		IsCompleted:   progress >= 100,
		LastWatchedAt: &now,
	}
	if err := s.ProgressRepo.SaveChapterProgress(p); err != nil {
		return nil, err
	}
	if err := s.recompute(e); err != nil {
		return nil, err
	}
	return s.ProgressRepo.FindChapterProgress(userID, chapterID)
}

func (s *ProgressService) Delete(userID uint, chapterID string) error {
	n, err := s.ProgressRepo.DeleteChapterProgress(userID, chapterID)
	if err != nil {
		return err
	}
	if n == 0 {
		return util.ErrProgressNotFound
	}

	ch, err := s.ChapterRepo.FindByID(chapterID)
	if err != nil {
		return nil
	}
	if e, err := s.enrollment(userID, ch.CourseID); err == nil {
		return s.recompute(e)
	}
	return nil
}

// recompute 课程进度 = 各章节进度之和 / 章节总数
func (s *ProgressService) recompute(e *model.Enrollment) error {
	total, err := s.CourseRepo.CountChapters(e.CourseID)
	if err != nil {
		return err
	}
	sum, err := s.ProgressRepo.SumChapterProgress(e.UserID, e.CourseID)
	if err != nil {
		return err
	}

	progress := 0.0
	if total > 0 {
		progress = graph.ClampProgress(sum / float64(total))
	}
	status := model.EnrollmentActive
	if progress >= 100 {
		status = model.EnrollmentCompleted
	}
	e.Progress = progress
	e.Status = status
	return s.EnrollmentRepo.UpdateProgress(e.ID, progress, status)
}

// UpdateKnowledgePoint 知识点进度，用于图谱节点的完成度
func (s *ProgressService) UpdateKnowledgePoint(userID uint, kpID string, req KnowledgePointProgressRequest) (*model.KnowledgePointProgress, error) {
	kp, err := s.KnowledgeRepo.FindByID(kpID)
	if err != nil {
		return nil, knowledgeNotFound(err)
	}
	if kp.Chapter == nil {
		return nil, util.ErrChapterNotFound
	}
	if _, err := s.enrollment(userID, kp.Chapter.CourseID); err != nil {
		return nil, err
	}

	progress := graph.ClampProgress(*req.Progress)
	p := &model.KnowledgePointProgress{
		UserID:           userID,
		KnowledgePointID: kpID,
		Progress:         progress,
		IsCompleted:      progress >= 100,
	}
	if err := s.ProgressRepo.SaveKnowledgePointProgress(p); err != nil {
		return nil, err
	}
	return p, nil
}
