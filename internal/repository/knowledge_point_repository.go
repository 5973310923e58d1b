package repository

import (
	"ai_teaching_backend/internal/model"

	"gorm.io/gorm"
)

type KnowledgePointFilter struct {
	ChapterID string
	CourseID  string
	Search    string
}

type KnowledgePointRepository struct {
	DB *gorm.DB
}

func NewKnowledgePointRepository(db *gorm.DB) *KnowledgePointRepository {
	return &KnowledgePointRepository{DB: db}
}

func (r *KnowledgePointRepository) filtered(f KnowledgePointFilter) *gorm.DB {
	query := r.DB.Model(&model.KnowledgePoint{})
	if f.ChapterID != "" {
		query = query.Where("knowledge_points.chapter_id = ?", f.ChapterID)
	}
	if f.CourseID != "" {
		query = query.
			Joins("JOIN chapters ON chapters.id = knowledge_points.chapter_id AND chapters.deleted_at IS NULL").
			Where("chapters.course_id = ?", f.CourseID)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		query = query.Where("knowledge_points.title LIKE ? OR knowledge_points.description LIKE ?", like, like)
	}
	return query
}

func (r *KnowledgePointRepository) List(f KnowledgePointFilter, page, limit int) ([]model.KnowledgePoint, int64, error) {
	var total int64
	if err := r.filtered(f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var points []model.KnowledgePoint
	err := r.filtered(f).
		Preload("Chapter").
		Order("knowledge_points.sort_order ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&points).Error
	return points, total, err
}

// ListByCourse 课程下全部知识点，按章节内顺序排列
func (r *KnowledgePointRepository) ListByCourse(courseID string) ([]model.KnowledgePoint, error) {
	var points []model.KnowledgePoint
	err := r.filtered(KnowledgePointFilter{CourseID: courseID}).
		Order("knowledge_points.sort_order ASC").
		Find(&points).Error
	return points, err
}

func (r *KnowledgePointRepository) FindByID(id string) (*model.KnowledgePoint, error) {
	var kp model.KnowledgePoint
	err := r.DB.Preload("Chapter").Preload("Chapter.Course").Where("id = ?", id).First(&kp).Error
	return &kp, err
}

func (r *KnowledgePointRepository) Create(kp *model.KnowledgePoint) error {
	return r.DB.Omit("Chapter").Create(kp).Error
}

func (r *KnowledgePointRepository) Update(kp *model.KnowledgePoint) error {
	return r.DB.Omit("Chapter").Save(kp).Error
}

func (r *KnowledgePointRepository) Delete(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		tx = tx.Unscoped().Session(&gorm.Session{})
		if err := deleteAssignments(tx, "knowledge_point_id = ?", id); err != nil {
			return err
		}
		if err := tx.Where("knowledge_point_id = ?", id).Delete(&model.KnowledgePointProgress{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.KnowledgePoint{}).Error
	})
}

func (r *KnowledgePointRepository) NextOrder(chapterID string) (int, error) {
	var max *int
	err := r.DB.Model(&model.KnowledgePoint{}).
		Where("chapter_id = ?", chapterID).
		Select("MAX(sort_order)").
		Scan(&max).Error
	if err != nil || max == nil {
		return 1, err
	}
	return *max + 1, nil
}

// UpdateOrders 只允许调整同一章节内的知识点
func (r *KnowledgePointRepository) UpdateOrders(chapterID string, updates []OrderUpdate) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.KnowledgePoint{}).
			Where("id IN ? AND chapter_id = ?", orderIDs(updates), chapterID).
			Count(&n).Error; err != nil {
			return err
		}
		if int(n) != len(updates) {
			return gorm.ErrRecordNotFound
		}
		for _, u := range updates {
			if err := tx.Model(&model.KnowledgePoint{}).Where("id = ?", u.ID).Update("sort_order", u.Order).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
