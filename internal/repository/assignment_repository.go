package repository

import (
	"ai_teaching_backend/internal/model"

	"gorm.io/gorm"
)

type AssignmentFilter struct {
	KnowledgePointID string
	CourseID         string
	TeacherID        uint
	Status           model.AssignmentStatus
	Type             model.AssignmentType
}

type AssignmentRepository struct {
	DB *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{DB: db}
}

// deleteAssignments 在事务内删除符合条件的作业及其提交，tx 需为 Unscoped
func deleteAssignments(tx *gorm.DB, query string, args ...interface{}) error {
	ids := tx.Model(&model.Assignment{}).Select("id").Where(query, args...)
	if err := tx.Where("assignment_id IN (?)", ids).Delete(&model.Submission{}).Error; err != nil {
		return err
	}
	return tx.Where(query, args...).Delete(&model.Assignment{}).Error
}

func (r *AssignmentRepository) filtered(f AssignmentFilter) *gorm.DB {
	query := r.DB.Model(&model.Assignment{})
	if f.KnowledgePointID != "" {
		query = query.Where("knowledge_point_id = ?", f.KnowledgePointID)
	}
	if f.CourseID != "" {
		query = query.Where("course_id = ?", f.CourseID)
	}
	if f.TeacherID != 0 {
		query = query.Where("teacher_id = ?", f.TeacherID)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.Type != "" {
		query = query.Where("type = ?", f.Type)
	}
	return query
}

// List userID 非 0 时只预加载该用户自己的提交
func (r *AssignmentRepository) List(f AssignmentFilter, userID uint, page, limit int) ([]model.Assignment, int64, error) {
	var total int64
	if err := r.filtered(f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.filtered(f).Preload("KnowledgePoint")
	if userID != 0 {
		query = query.Preload("Submissions", "user_id = ?", userID)
	}
	var list []model.Assignment
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&list).Error
	return list, total, err
}

// ListWithSubmissions 教师视图，带全部提交及提交人
func (r *AssignmentRepository) ListWithSubmissions(f AssignmentFilter) ([]model.Assignment, error) {
	var list []model.Assignment
	err := r.filtered(f).
		Preload("KnowledgePoint").
		Preload("Submissions", func(db *gorm.DB) *gorm.DB {
			return db.Order("submitted_at ASC")
		}).
		Preload("Submissions.User").
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *AssignmentRepository) FindByID(id string) (*model.Assignment, error) {
	var a model.Assignment
	err := r.DB.Preload("KnowledgePoint").Where("id = ?", id).First(&a).Error
	return &a, err
}

func (r *AssignmentRepository) Create(a *model.Assignment) error {
	return r.DB.Omit("KnowledgePoint", "Submissions").Create(a).Error
}

func (r *AssignmentRepository) Update(a *model.Assignment) error {
	return r.DB.Omit("KnowledgePoint", "Submissions").Save(a).Error
}

func (r *AssignmentRepository) Delete(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return deleteAssignments(tx.Unscoped().Session(&gorm.Session{}), "id = ?", id)
	})
}

func (r *AssignmentRepository) FindSubmission(assignmentID string, userID uint) (*model.Submission, error) {
	var s model.Submission
	err := r.DB.Where("assignment_id = ? AND user_id = ?", assignmentID, userID).First(&s).Error
	return &s, err
}

func (r *AssignmentRepository) FindSubmissionByID(id string) (*model.Submission, error) {
	var s model.Submission
	err := r.DB.Preload("Assignment").Where("id = ?", id).First(&s).Error
	return &s, err
}

func (r *AssignmentRepository) CreateSubmission(s *model.Submission) error {
	return r.DB.Omit("Assignment", "User").Create(s).Error
}

func (r *AssignmentRepository) UpdateSubmission(s *model.Submission) error {
	return r.DB.Omit("Assignment", "User").Save(s).Error
}

// GradedSubmissions 学生在课程中已批改的提交，只统计已发布的作业
func (r *AssignmentRepository) GradedSubmissions(userID uint, courseID string) ([]model.Submission, error) {
	var list []model.Submission
	err := r.DB.
		Joins("JOIN assignments ON assignments.id = submissions.assignment_id AND assignments.deleted_at IS NULL").
		Where("submissions.user_id = ? AND submissions.status = ?", userID, model.SubmissionGraded).
		Where("assignments.course_id = ? AND assignments.status = ?", courseID, model.AssignmentPublished).
		Preload("Assignment").
		Find(&list).Error
	return list, err
}

func (r *AssignmentRepository) CountByCourse(courseID string, status model.AssignmentStatus) (int64, error) {
	var n int64
	err := r.filtered(AssignmentFilter{CourseID: courseID, Status: status}).Count(&n).Error
	return n, err
}

func (r *AssignmentRepository) CountSubmissions(userID uint, courseID string) (int64, error) {
	var n int64
	err := r.DB.Model(&model.Submission{}).
		Joins("JOIN assignments ON assignments.id = submissions.assignment_id AND assignments.deleted_at IS NULL").
		Where("submissions.user_id = ? AND assignments.course_id = ?", userID, courseID).
		Count(&n).Error
	return n, err
}
