package repository

import (
	"ai_teaching_backend/internal/model"

	"gorm.io/gorm"
)

type CourseFilter struct {
	Search    string
	Category  string
	Status    model.CourseStatus
	TeacherID uint
}

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) List(f CourseFilter, page, limit int) ([]model.Course, int64, error) {
	query := r.DB.Model(&model.Course{})
	if f.Search != "" {
		like := "%" + f.Search + "%"
		query = query.Where("name LIKE ? OR description LIKE ? OR code LIKE ?", like, like, like)
	}
	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.TeacherID != 0 {
		query = query.Where("teacher_id = ?", f.TeacherID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var courses []model.Course
	err := query.Preload("Teacher").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&courses).Error
	return courses, total, err
}

func (r *CourseRepository) FindByID(id string) (*model.Course, error) {
	var course model.Course
	err := r.DB.Where("id = ?", id).First(&course).Error
	return &course, err
}

func (r *CourseRepository) FindByCode(code string) (*model.Course, error) {
	var course model.Course
	err := r.DB.Where("code = ?", code).First(&course).Error
	return &course, err
}

// FindWithStructure 课程及其有序的章节和知识点
func (r *CourseRepository) FindWithStructure(id string) (*model.Course, error) {
	var course model.Course
	err := r.DB.
		Preload("Teacher").
		Preload("Chapters", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Chapters.KnowledgePoints", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Where("id = ?", id).
		First(&course).Error
	return &course, err
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *CourseRepository) Update(course *model.Course) error {
	return r.DB.Omit("Teacher", "Chapters").Save(course).Error
}

func (r *CourseRepository) UpdateStatus(id string, status model.CourseStatus) error {
	return r.DB.Model(&model.Course{}).Where("id = ?", id).Update("status", status).Error
}

// DeleteCascade 按依赖顺序删除课程下的全部数据
func (r *CourseRepository) DeleteCascade(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		tx = tx.Unscoped().Session(&gorm.Session{})
		chapterIDs := tx.Model(&model.Chapter{}).Select("id").Where("course_id = ?", id)
		kpIDs := tx.Model(&model.KnowledgePoint{}).Select("id").Where("chapter_id IN (?)", chapterIDs)

		if err := deleteAssignments(tx, "course_id = ?", id); err != nil {
			return err
		}
		if err := tx.Where("knowledge_point_id IN (?)", kpIDs).Delete(&model.KnowledgePointProgress{}).Error; err != nil {
			return err
		}
		if err := tx.Where("chapter_id IN (?)", chapterIDs).Delete(&model.KnowledgePoint{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&model.ChapterProgress{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&model.Chapter{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&model.Enrollment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&model.GraphSnapshot{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Course{}).Error
	})
}

func (r *CourseRepository) CountChapters(courseID string) (int64, error) {
	var n int64
	err := r.DB.Model(&model.Chapter{}).Where("course_id = ?", courseID).Count(&n).Error
	return n, err
}
