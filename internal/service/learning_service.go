package service

import (
	"ai_teaching_backend/internal/graph"
	"ai_teaching_backend/internal/model"
	"ai_teaching_backend/internal/repository"
	"ai_teaching_backend/internal/util"
	"errors"
	"math"
	"time"

	"gorm.io/gorm"
)

// LearningRecord 以选课记录为载体的学习记录
type LearningRecord struct {
	ID            string    `json:"id"`
	StudentID     uint      `json:"studentId"`
	StudentName   string    `json:"studentName"`
	CourseID      string    `json:"courseId"`
	CourseName    string    `json:"courseName"`
	Progress      float64   `json:"progress"`
	Duration      int       `json:"duration"` // 分钟，由章节总时长和进度估算
	LastStudyTime time.Time `json:"lastStudyTime"`
}

type LearningRecordList struct {
	Records    []LearningRecord `json:"records"`
	Pagination Pagination       `json:"pagination"`
}

type LearningRecordQuery struct {
	CourseID  string
	StudentID uint
	Page      int
	Limit     int
}

type LearningRecordRequest struct {
	CourseID string   `json:"courseId"`
	Progress *float64 `json:"progress" binding:"required"`
}

// StudentStats 学生在单门课程中的学习统计
type StudentStats struct {
	CourseID               string  `json:"courseId"`
	Progress               float64 `json:"progress"`
	StudyTime              int     `json:"studyTime"`    // 分钟
	AverageScore           float64 `json:"averageScore"` // 百分制
	GradedAssignmentsCount int     `json:"gradedAssignmentsCount"`
	SubmittedCount         int64   `json:"submittedCount"`
	PublishedAssignments   int64   `json:"publishedAssignments"`
}

type LearningService struct {
	EnrollmentRepo *repository.EnrollmentRepository
	ChapterRepo    *repository.ChapterRepository
	AssignmentRepo *repository.AssignmentRepository
}

func NewLearningService(
	enrollmentRepo *repository.EnrollmentRepository,
	chapterRepo *repository.ChapterRepository,
	assignmentRepo *repository.AssignmentRepository,
) *LearningService {
	return &LearningService{
		EnrollmentRepo: enrollmentRepo,
		ChapterRepo:    chapterRepo,
		AssignmentRepo: assignmentRepo,
	}
}

func recordNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrRecordNotFound
	}
	return err
}

func studyMinutes(totalDuration int, progress float64) int {
	return int(math.Floor(float64(totalDuration) * graph.ClampProgress(progress) / 100))
}

func (s *LearningService) toRecord(e *model.Enrollment) (LearningRecord, error) {
	total, err := s.ChapterRepo.TotalDuration(e.CourseID)
	if err != nil {
		return LearningRecord{}, err
	}
	r := LearningRecord{
		ID:            e.ID,
		StudentID:     e.UserID,
		CourseID:      e.CourseID,
		Progress:      e.Progress,
		Duration:      studyMinutes(total, e.Progress),
		LastStudyTime: e.UpdatedAt,
	}
	if e.User != nil {
		r.StudentName = e.User.Name
	}
	if e.Course != nil {
		r.CourseName = e.Course.Name
	}
	return r, nil
}

// ListRecords 学生只看自己的记录，教师看自己课程的记录，管理员可按学生筛选
func (s *LearningService) ListRecords(claims *util.Claims, q LearningRecordQuery) (*LearningRecordList, error) {
	f := repository.RecordFilter{CourseID: q.CourseID}
	switch {
	case claims.IsAdmin():
		f.UserID = q.StudentID
	case claims.Role == model.Teacher:
		f.TeacherID = claims.UserID
	default:
		f.UserID = claims.UserID
	}

	list, total, err := s.EnrollmentRepo.ListRecords(f, q.Page, q.Limit)
	if err != nil {
		return nil, err
	}
	records := make([]LearningRecord, 0, len(list))
	for i := range list {
		r, err := s.toRecord(&list[i])
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return &LearningRecordList{Records: records, Pagination: NewPagination(q.Page, q.Limit, total)}, nil
}

// canAccessRecord 学生只能访问自己的记录，教师只能访问自己课程的记录
func canAccessRecord(claims *util.Claims, e *model.Enrollment) error {
	switch {
	case claims.IsAdmin():
		return nil
	case claims.Role == model.Teacher:
		if e.Course != nil && e.Course.TeacherID == claims.UserID {
			return nil
		}
	case e.UserID == claims.UserID:
		return nil
	}
	return util.ErrPermissionDenied
}

func (s *LearningService) GetRecord(claims *util.Claims, id string) (*LearningRecord, error) {
	e, err := s.EnrollmentRepo.FindByID(id)
	if err != nil {
		return nil, recordNotFound(err)
	}
	if err := canAccessRecord(claims, e); err != nil {
		return nil, err
	}
	r, err := s.toRecord(e)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *LearningService) setProgress(e *model.Enrollment, progress float64) (*LearningRecord, error) {
	progress = graph.ClampProgress(progress)
	status := model.EnrollmentActive
	if progress >= 100 {
		status = model.EnrollmentCompleted
	}
	if err := s.EnrollmentRepo.UpdateProgress(e.ID, progress, status); err != nil {
		return nil, err
	}
	updated, err := s.EnrollmentRepo.FindByID(e.ID)
	if err != nil {
		return nil, err
	}
	r, err := s.toRecord(updated)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// RecordProgress 直接写入课程整体进度，之后的章节进度更新会重新计算并覆盖
func (s *LearningService) RecordProgress(claims *util.Claims, req LearningRecordRequest) (*LearningRecord, error) {
	e, err := s.EnrollmentRepo.Find(claims.UserID, req.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotEnrolled
		}
		return nil, err
	}
	return s.setProgress(e, *req.Progress)
}

func (s *LearningService) UpdateRecord(claims *util.Claims, id string, req LearningRecordRequest) (*LearningRecord, error) {
	e, err := s.EnrollmentRepo.FindByID(id)
	if err != nil {
		return nil, recordNotFound(err)
	}
	if e.UserID != claims.UserID {
		return nil, util.ErrPermissionDenied
	}
	return s.setProgress(e, *req.Progress)
}

// ResetRecord 把进度清零，选课关系保留
func (s *LearningService) ResetRecord(claims *util.Claims, id string) error {
	e, err := s.EnrollmentRepo.FindByID(id)
	if err != nil {
		return recordNotFound(err)
	}
	if !claims.IsAdmin() && e.UserID != claims.UserID {
		return util.ErrPermissionDenied
	}
	return s.EnrollmentRepo.UpdateProgress(e.ID, 0, model.EnrollmentActive)
}

// Stats 学习时长按章节总时长乘以进度估算，平均分只统计已批改且已发布的作业
func (s *LearningService) Stats(userID uint, courseID string) (*StudentStats, error) {
	stats := &StudentStats{CourseID: courseID}

	e, err := s.EnrollmentRepo.Find(userID, courseID)
	switch {
	case err == nil:
		stats.Progress = e.Progress
		total, err := s.ChapterRepo.TotalDuration(courseID)
		if err != nil {
			return nil, err
		}
		stats.StudyTime = studyMinutes(total, e.Progress)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	graded, err := s.AssignmentRepo.GradedSubmissions(userID, courseID)
	if err != nil {
		return nil, err
	}
	var sum float64
	for _, sub := range graded {
		if sub.Score != nil && sub.Assignment != nil && sub.Assignment.TotalPoints > 0 {
			sum += *sub.Score / sub.Assignment.TotalPoints * 100
		}
	}
	stats.GradedAssignmentsCount = len(graded)
	if len(graded) > 0 {
		stats.AverageScore = sum / float64(len(graded))
	}

	if stats.SubmittedCount, err = s.AssignmentRepo.CountSubmissions(userID, courseID); err != nil {
		return nil, err
	}
	if stats.PublishedAssignments, err = s.AssignmentRepo.CountByCourse(courseID, model.AssignmentPublished); err != nil {
		return nil, err
	}
	return stats, nil
}
