package service

import (
	"ai_teaching_backend/internal/model"
	"ai_teaching_backend/internal/repository"
	"ai_teaching_backend/internal/util"
	"ai_teaching_backend/pkg/logger"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AssignmentRequest struct {
	Title            string                 `json:"title" binding:"required,max=255"`
	Description      string                 `json:"description"`
	Type             model.AssignmentType   `json:"type" binding:"required,oneof=homework quiz exam project"`
	KnowledgePointID string                 `json:"knowledgePointId" binding:"required"`
	DueDate          *time.Time             `json:"dueDate"`
	TotalPoints      float64                `json:"totalPoints" binding:"min=0"`
	Order            int                    `json:"order"`
	Status           model.AssignmentStatus `json:"status" binding:"omitempty,oneof=draft published closed"`
}

// SubmitRequest 只接收文本答案
type SubmitRequest struct {
	Content string `json:"content" binding:"required"`
}

type GradeRequest struct {
	Score    *float64               `json:"score" binding:"required"`
	Feedback string                 `json:"feedback"`
	Status   model.SubmissionStatus `json:"status" binding:"omitempty,oneof=graded returned"`
}

type AssignmentQuery struct {
	KnowledgePointID string
	CourseID         string
	Status           string
	Type             string
	Page             int
	Limit            int
}

type AssignmentList struct {
	Assignments []model.Assignment `json:"assignments"`
	Pagination  Pagination         `json:"pagination"`
}

type AssignmentService struct {
	AssignmentRepo   *repository.AssignmentRepository
	EnrollmentRepo   *repository.EnrollmentRepository
	CourseService    *CourseService
	KnowledgeService *KnowledgePointService
}

func NewAssignmentService(
	assignmentRepo *repository.AssignmentRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	courseService *CourseService,
	kpService *KnowledgePointService,
) *AssignmentService {
	return &AssignmentService{
		AssignmentRepo:   assignmentRepo,
		EnrollmentRepo:   enrollmentRepo,
		CourseService:    courseService,
		KnowledgeService: kpService,
	}
}

func assignmentNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrAssignmentNotFound
	}
	return err
}

func isStudent(claims *util.Claims) bool {
	return claims == nil || claims.Role == model.Student
}

// List 学生只能看到已发布的作业，并附带自己的提交
func (s *AssignmentService) List(claims *util.Claims, q AssignmentQuery) (*AssignmentList, error) {
	f := repository.AssignmentFilter{
		KnowledgePointID: q.KnowledgePointID,
		CourseID:         q.CourseID,
		Type:             model.AssignmentType(strings.ToLower(q.Type)),
	}
	var userID uint
	if isStudent(claims) {
		f.Status = model.AssignmentPublished
		if claims != nil {
			userID = claims.UserID
		}
	} else if q.Status != "" {
		f.Status = model.AssignmentStatus(strings.ToLower(q.Status))
	}

	list, total, err := s.AssignmentRepo.List(f, userID, q.Page, q.Limit)
	if err != nil {
		return nil, err
	}
	return &AssignmentList{Assignments: list, Pagination: NewPagination(q.Page, q.Limit, total)}, nil
}

// Get 未发布的作业只对课程归属教师和管理员可见
func (s *AssignmentService) Get(claims *util.Claims, id string) (*model.Assignment, error) {
	a, err := s.AssignmentRepo.FindByID(id)
	if err != nil {
		return nil, assignmentNotFound(err)
	}
	if a.Status != model.AssignmentPublished {
		if _, err := s.CourseService.OwnedCourse(claims, a.CourseID); err != nil {
			return nil, util.ErrAssignmentNotFound
		}
	}
	if isStudent(claims) && claims != nil {
		if sub, err := s.AssignmentRepo.FindSubmission(a.ID, claims.UserID); err == nil {
			a.Submissions = []model.Submission{*sub}
		}
	}
	return a, nil
}

// TeacherList 教师自己创建的作业，管理员看到全部
func (s *AssignmentService) TeacherList(claims *util.Claims, courseID string) ([]model.Assignment, error) {
	f := repository.AssignmentFilter{CourseID: courseID}
	if !claims.IsAdmin() {
		f.TeacherID = claims.UserID
	}
	return s.AssignmentRepo.ListWithSubmissions(f)
}

func (s *AssignmentService) Create(claims *util.Claims, req AssignmentRequest) (*model.Assignment, error) {
	_, courseID, err := s.KnowledgeService.owned(claims, req.KnowledgePointID)
	if err != nil {
		return nil, err
	}

	a := &model.Assignment{
		Title:            req.Title,
		Description:      req.Description,
		Type:             req.Type,
		KnowledgePointID: req.KnowledgePointID,
		CourseID:         courseID,
		TeacherID:        claims.UserID,
		DueDate:          req.DueDate,
		TotalPoints:      req.TotalPoints,
		Order:            req.Order,
		Status:           req.Status,
	}
	if a.TotalPoints == 0 {
		a.TotalPoints = 100
	}
	if a.Status == "" {
		a.Status = model.AssignmentDraft
	}
	if err := s.AssignmentRepo.Create(a); err != nil {
		return nil, err
	}
	logger.Log.Info("作业已创建",
		zap.String("assignmentId", a.ID),
		zap.String("courseId", courseID),
		zap.Uint("teacherId", claims.UserID))
	return a, nil
}

// owned 加载作业并校验课程归属
func (s *AssignmentService) owned(claims *util.Claims, id string) (*model.Assignment, error) {
	a, err := s.AssignmentRepo.FindByID(id)
	if err != nil {
		return nil, assignmentNotFound(err)
	}
	if _, err := s.CourseService.OwnedCourse(claims, a.CourseID); err != nil {
		return nil, err
	}
	return a, nil
}

// Update 可以把作业挂到自己名下的其他知识点
func (s *AssignmentService) Update(claims *util.Claims, id string, req AssignmentRequest) (*model.Assignment, error) {
	a, err := s.owned(claims, id)
	if err != nil {
		return nil, err
	}
	if req.KnowledgePointID != a.KnowledgePointID {
		_, courseID, err := s.KnowledgeService.owned(claims, req.KnowledgePointID)
		if err != nil {
			return nil, err
		}
		a.KnowledgePointID = req.KnowledgePointID
		a.CourseID = courseID
	}

	a.Title = req.Title
	a.Description = req.Description
	a.Type = req.Type
	a.DueDate = req.DueDate
	a.Order = req.Order
	if req.TotalPoints > 0 {
		a.TotalPoints = req.TotalPoints
	}
	if req.Status != "" {
		a.Status = req.Status
	}
	a.KnowledgePoint = nil
	if err := s.AssignmentRepo.Update(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AssignmentService) Delete(claims *util.Claims, id string) error {
	if _, err := s.owned(claims, id); err != nil {
		return err
	}
	return s.AssignmentRepo.Delete(id)
}

// Submit 只接受已发布且未过截止时间的作业，学生需已选修该课程
func (s *AssignmentService) Submit(claims *util.Claims, id string, req SubmitRequest) (*model.Submission, error) {
	a, err := s.AssignmentRepo.FindByID(id)
	if err != nil {
		return nil, assignmentNotFound(err)
	}
	if a.Status == model.AssignmentDraft {
		return nil, util.ErrAssignmentNotFound
	}
	if a.Status != model.AssignmentPublished {
		return nil, util.ErrAssignmentClosed
	}
	now := time.Now()
	if a.DueDate != nil && now.After(*a.DueDate) {
		return nil, util.ErrAssignmentClosed
	}

	if _, err := s.EnrollmentRepo.Find(claims.UserID, a.CourseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotEnrolled
		}
		return nil, err
	}
	if _, err := s.AssignmentRepo.FindSubmission(id, claims.UserID); err == nil {
		return nil, util.ErrAlreadySubmitted
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	sub := &model.Submission{
		AssignmentID: id,
		UserID:       claims.UserID,
		Content:      req.Content,
		Status:       model.SubmissionSubmitted,
		SubmittedAt:  now,
	}
	if err := s.AssignmentRepo.CreateSubmission(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Grade 分数必须在 0 与作业总分之间
func (s *AssignmentService) Grade(claims *util.Claims, submissionID string, req GradeRequest) (*model.Submission, error) {
	sub, err := s.AssignmentRepo.FindSubmissionByID(submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSubmissionNotFound
		}
		return nil, err
	}
	if sub.Assignment == nil {
		return nil, util.ErrAssignmentNotFound
	}
	if _, err := s.CourseService.OwnedCourse(claims, sub.Assignment.CourseID); err != nil {
		return nil, err
	}
	if *req.Score < 0 || *req.Score > sub.Assignment.TotalPoints {
		return nil, util.ErrInvalidScore
	}

	now := time.Now()
	sub.Score = req.Score
	sub.Feedback = req.Feedback
	sub.Status = req.Status
	if sub.Status == "" {
		sub.Status = model.SubmissionGraded
	}
	sub.GradedAt = &now
	assignment := sub.Assignment
	sub.Assignment = nil
	if err := s.AssignmentRepo.UpdateSubmission(sub); err != nil {
		return nil, err
	}
	sub.Assignment = assignment
	return sub, nil
}
