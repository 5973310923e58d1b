package repository

import (
	"ai_teaching_backend/internal/model"

	"gorm.io/gorm"
)

type ChapterRepository struct {
	DB *gorm.DB
}

func NewChapterRepository(db *gorm.DB) *ChapterRepository {
	return &ChapterRepository{DB: db}
}

// List 按顺序返回课程章节，status 为空时不过滤
func (r *ChapterRepository) List(courseID string, status model.ChapterStatus) ([]model.Chapter, error) {
	query := r.DB.Model(&model.Chapter{}).Preload("Course")
	if courseID != "" {
		query = query.Where("course_id = ?", courseID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var chapters []model.Chapter
	err := query.Order("sort_order ASC").Find(&chapters).Error
	return chapters, err
}

func (r *ChapterRepository) FindByID(id string) (*model.Chapter, error) {
	var chapter model.Chapter
	err := r.DB.Preload("Course").Where("id = ?", id).First(&chapter).Error
	return &chapter, err
}

func (r *ChapterRepository) FindWithKnowledgePoints(id string) (*model.Chapter, error) {
	var chapter model.Chapter
	err := r.DB.
		Preload("Course").
		Preload("KnowledgePoints", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Where("id = ?", id).
		First(&chapter).Error
	return &chapter, err
}

func (r *ChapterRepository) Create(chapter *model.Chapter) error {
	return r.DB.Omit("Course", "KnowledgePoints").Create(chapter).Error
}

func (r *ChapterRepository) Update(chapter *model.Chapter) error {
	return r.DB.Omit("Course", "KnowledgePoints").Save(chapter).Error
}

// Delete 同时删除章节下的知识点和学习进度
func (r *ChapterRepository) Delete(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		tx = tx.Unscoped().Session(&gorm.Session{})
		kpIDs := tx.Model(&model.KnowledgePoint{}).Select("id").Where("chapter_id = ?", id)
		if err := deleteAssignments(tx, "knowledge_point_id IN (?)", kpIDs); err != nil {
			return err
		}
		if err := tx.Where("knowledge_point_id IN (?)", kpIDs).Delete(&model.KnowledgePointProgress{}).Error; err != nil {
			return err
		}
		if err := tx.Where("chapter_id = ?", id).Delete(&model.KnowledgePoint{}).Error; err != nil {
			return err
		}
		if err := tx.Where("chapter_id = ?", id).Delete(&model.ChapterProgress{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Chapter{}).Error
	})
}

// UpdateOrders 在同一事务内批量更新排序，只允许修改 courseID 下的章节
func (r *ChapterRepository) UpdateOrders(courseID string, updates []OrderUpdate) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.Chapter{}).
			Where("id IN ? AND course_id = ?", orderIDs(updates), courseID).
			Count(&n).Error; err != nil {
			return err
		}
		if int(n) != len(updates) {
			return gorm.ErrRecordNotFound
		}
		for _, u := range updates {
			if err := tx.Model(&model.Chapter{}).Where("id = ?", u.ID).Update("sort_order", u.Order).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// NextOrder 新章节默认排在末尾
func (r *ChapterRepository) NextOrder(courseID string) (int, error) {
	var max *int
	err := r.DB.Model(&model.Chapter{}).
		Where("course_id = ?", courseID).
		Select("MAX(sort_order)").
		Scan(&max).Error
	if err != nil || max == nil {
		return 1, err
	}
	return *max + 1, nil
}

type chapterCount struct {
	ChapterID string
	Total     int
}

// KnowledgePointCounts 每个章节的知识点数量
func (r *ChapterRepository) KnowledgePointCounts(courseID string) (map[string]int, error) {
	var rows []chapterCount
	err := r.DB.Model(&model.KnowledgePoint{}).
		Select("knowledge_points.chapter_id AS chapter_id, COUNT(*) AS total").
		Joins("JOIN chapters ON chapters.id = knowledge_points.chapter_id AND chapters.deleted_at IS NULL").
		Where("chapters.course_id = ?", courseID).
		Group("knowledge_points.chapter_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.ChapterID] = row.Total
	}
	return counts, nil
}

// TotalDuration 课程下所有章节时长之和（分钟）
func (r *ChapterRepository) TotalDuration(courseID string) (int, error) {
	var total *int
	err := r.DB.Model(&model.Chapter{}).
		Where("course_id = ?", courseID).
		Select("SUM(duration)").
		Scan(&total).Error
	if err != nil || total == nil {
		return 0, err
	}
	return *total, nil
}
