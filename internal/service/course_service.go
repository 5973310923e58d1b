package service

import (
	"ai_teaching_backend/internal/graph"
	"ai_teaching_backend/internal/model"
	"ai_teaching_backend/internal/repository"
	"ai_teaching_backend/internal/util"
	"context"
	"errors"
	"math"
	"time"

	"gorm.io/gorm"
)

type CourseRequest struct {
	Code        string `json:"code" binding:"required,max=50"`
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description"`
	Category    string `json:"category" binding:"max=100"`
	Credits     int    `json:"credits" binding:"min=0"`
}

type CourseListQuery struct {
	Search   string
	Category string
	Page     int
	Limit    int
}

// StudentCourse 学生已选课程及学习进度
type StudentCourse struct {
	ID                string                 `json:"id"`
	Code              string                 `json:"code"`
	Name              string                 `json:"name"`
	Description       string                 `json:"description"`
	Category          string                 `json:"category"`
	Status            model.EnrollmentStatus `json:"status"`
	Progress          float64                `json:"progress"`
	TotalChapters     int                    `json:"totalChapters"`
	CompletedChapters int                    `json:"completedChapters"`
	EnrolledAt        time.Time              `json:"enrolledAt"`
}

type CourseService struct {
	CourseRepo     *repository.CourseRepository
	EnrollmentRepo *repository.EnrollmentRepository
	Structure      *StructureCache
}

func NewCourseService(courseRepo *repository.CourseRepository, enrollmentRepo *repository.EnrollmentRepository, structure *StructureCache) *CourseService {
	return &CourseService{
		CourseRepo:     courseRepo,
		EnrollmentRepo: enrollmentRepo,
		Structure:      structure,
	}
}

// authorizeCourse 教师只能操作自己的课程，管理员不受限制
func authorizeCourse(claims *util.Claims, course *model.Course) error {
	if claims == nil {
		return util.ErrPermissionDenied
	}
	if claims.IsAdmin() || course.TeacherID == claims.UserID {
		return nil
	}
	return util.ErrPermissionDenied
}

func courseNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrCourseNotFound
	}
	return err
}

// OwnedCourse 加载课程并校验归属
func (s *CourseService) OwnedCourse(claims *util.Claims, id string) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(id)
	if err != nil {
		return nil, courseNotFound(err)
	}
	if err := authorizeCourse(claims, course); err != nil {
		return nil, err
	}
	return course, nil
}

// ListPublished 公开课程列表
func (s *CourseService) ListPublished(q CourseListQuery) ([]model.Course, int64, error) {
	return s.CourseRepo.List(repository.CourseFilter{
		Search:   q.Search,
		Category: q.Category,
		Status:   model.CoursePublished,
	}, q.Page, q.Limit)
}

// ListManaged 教师看到自己的全部课程，管理员看到所有课程
func (s *CourseService) ListManaged(claims *util.Claims, q CourseListQuery) ([]model.Course, int64, error) {
	filter := repository.CourseFilter{Search: q.Search, Category: q.Category}
	if !claims.IsAdmin() {
		filter.TeacherID = claims.UserID
	}
	return s.CourseRepo.List(filter, q.Page, q.Limit)
}

// GetDetail 课程详情，未发布的课程只对归属教师和管理员可见
func (s *CourseService) GetDetail(claims *util.Claims, id string) (*model.Course, error) {
	course, err := s.CourseRepo.FindWithStructure(id)
	if err != nil {
		return nil, courseNotFound(err)
	}
	if course.Status != model.CoursePublished && authorizeCourse(claims, course) != nil {
		return nil, util.ErrCourseNotFound
	}
	return course, nil
}

func (s *CourseService) Create(claims *util.Claims, req CourseRequest) (*model.Course, error) {
	if _, err := s.CourseRepo.FindByCode(req.Code); err == nil {
		return nil, util.ErrCourseCodeExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	course := &model.Course{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Credits:     req.Credits,
		Status:      model.CourseDraft,
		TeacherID:   claims.UserID,
	}
	if err := s.CourseRepo.Create(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) Update(ctx context.Context, claims *util.Claims, id string, req CourseRequest) (*model.Course, error) {
	course, err := s.OwnedCourse(claims, id)
	if err != nil {
		return nil, err
	}
	if req.Code != course.Code {
		if _, err := s.CourseRepo.FindByCode(req.Code); err == nil {
			return nil, util.ErrCourseCodeExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	course.Code = req.Code
	course.Name = req.Name
	course.Description = req.Description
	course.Category = req.Category
	course.Credits = req.Credits
	if err := s.CourseRepo.Update(course); err != nil {
		return nil, err
	}
	s.Structure.Invalidate(ctx, id)
	return course, nil
}

func (s *CourseService) Delete(ctx context.Context, claims *util.Claims, id string) error {
	if _, err := s.OwnedCourse(claims, id); err != nil {
		return err
	}
	if err := s.CourseRepo.DeleteCascade(id); err != nil {
		return err
	}
	s.Structure.Invalidate(ctx, id)
	return nil
}

func (s *CourseService) SetStatus(ctx context.Context, claims *util.Claims, id string, status model.CourseStatus) (*model.Course, error) {
	course, err := s.OwnedCourse(claims, id)
	if err != nil {
		return nil, err
	}
	if err := s.CourseRepo.UpdateStatus(id, status); err != nil {
		return nil, err
	}
	course.Status = status
	s.Structure.Invalidate(ctx, id)
	return course, nil
}

// Enroll 只能选修已发布的课程
func (s *CourseService) Enroll(userID uint, courseID string) (*model.Enrollment, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		return nil, courseNotFound(err)
	}
	if course.Status != model.CoursePublished {
		return nil, util.ErrCourseNotFound
	}

	if _, err := s.EnrollmentRepo.Find(userID, courseID); err == nil {
		return nil, util.ErrAlreadyEnrolled
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	e := &model.Enrollment{
		UserID:     userID,
		CourseID:   courseID,
		Status:     model.EnrollmentActive,
		EnrolledAt: time.Now(),
	}
	if err := s.EnrollmentRepo.Create(e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *CourseService) Unenroll(userID uint, courseID string) error {
	if _, err := s.EnrollmentRepo.Find(userID, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrNotEnrolled
		}
		return err
	}
	return s.EnrollmentRepo.Delete(userID, courseID)
}

// StudentCourses 已选课程，completedChapters 由整体进度按章节数折算
func (s *CourseService) StudentCourses(userID uint) ([]StudentCourse, error) {
	enrollments, err := s.EnrollmentRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	out := make([]StudentCourse, 0, len(enrollments))
	for _, e := range enrollments {
		if e.Course == nil {
			continue
		}
		progress := math.Round(graph.ClampProgress(e.Progress))
		total := len(e.Course.Chapters)
		out = append(out, StudentCourse{
			ID:                e.Course.ID,
			Code:              e.Course.Code,
			Name:              e.Course.Name,
			Description:       e.Course.Description,
			Category:          e.Course.Category,
			Status:            e.Status,
			Progress:          progress,
			TotalChapters:     total,
			CompletedChapters: int(math.Round(progress / 100 * float64(total))),
			EnrolledAt:        e.EnrolledAt,
		})
	}
	return out, nil
}
