package repository

import (
	"ai_teaching_backend/internal/model"

	"gorm.io/gorm"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

func (r *EnrollmentRepository) Find(userID uint, courseID string) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&e).Error
	return &e, err
}

func (r *EnrollmentRepository) Create(e *model.Enrollment) error {
	return r.DB.Omit("Course", "User").Create(e).Error
}

// Delete 退课时一并清除该课程的章节进度
func (r *EnrollmentRepository) Delete(userID uint, courseID string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		tx = tx.Unscoped().Session(&gorm.Session{})
		if err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).
			Delete(&model.ChapterProgress{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ? AND course_id = ?", userID, courseID).
			Delete(&model.Enrollment{}).Error
	})
}

// ListByUser 学生的选课记录，附带课程及其章节
func (r *EnrollmentRepository) ListByUser(userID uint) ([]model.Enrollment, error) {
	var list []model.Enrollment
	err := r.DB.
		Preload("Course").
		Preload("Course.Chapters", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Where("user_id = ? AND status <> ?", userID, model.EnrollmentDropped).
		Order("enrolled_at DESC").
		Find(&list).Error
	return list, err
}

func (r *EnrollmentRepository) UpdateProgress(id string, progress float64, status model.EnrollmentStatus) error {
	return r.DB.Model(&model.Enrollment{}).Where("id = ?", id).Updates(map[string]interface{}{
		"progress": progress,
		"status":   status,
	}).Error
}

func (r *EnrollmentRepository) CountByCourse(courseID string) (int64, error) {
	var n int64
	err := r.DB.Model(&model.Enrollment{}).Where("course_id = ?", courseID).Count(&n).Error
	return n, err
}

// RecordFilter 学习记录查询条件，TeacherID 非 0 时只看该教师课程下的记录
type RecordFilter struct {
	UserID    uint
	TeacherID uint
	CourseID  string
}

func (r *EnrollmentRepository) records(f RecordFilter) *gorm.DB {
	query := r.DB.Model(&model.Enrollment{})
	if f.UserID != 0 {
		query = query.Where("enrollments.user_id = ?", f.UserID)
	}
	if f.TeacherID != 0 {
		query = query.
			Joins("JOIN courses ON courses.id = enrollments.course_id AND courses.deleted_at IS NULL").
			Where("courses.teacher_id = ?", f.TeacherID)
	}
	if f.CourseID != "" {
		query = query.Where("enrollments.course_id = ?", f.CourseID)
	}
	return query
}

// ListRecords 最近更新的排在前面
func (r *EnrollmentRepository) ListRecords(f RecordFilter, page, limit int) ([]model.Enrollment, int64, error) {
	var total int64
	if err := r.records(f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []model.Enrollment
	err := r.records(f).
		Preload("User").
		Preload("Course").
		Order("enrollments.updated_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&list).Error
	return list, total, err
}

func (r *EnrollmentRepository) FindByID(id string) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.DB.Preload("User").Preload("Course").Where("id = ?", id).First(&e).Error
	return &e, err
}
