package repository

import (
	"ai_teaching_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) ListChapterProgress(userID uint, courseID string) ([]model.ChapterProgress, error) {
	query := r.DB.Preload("Chapter").Where("user_id = ?", userID)
	if courseID != "" {
		query = query.Where("course_id = ?", courseID)
	}
	var list []model.ChapterProgress
	err := query.Order("updated_at DESC").Find(&list).Error
	return list, err
}

func (r *ProgressRepository) FindChapterProgress(userID uint, chapterID string) (*model.ChapterProgress, error) {
	var p model.ChapterProgress
	err := r.DB.Preload("Chapter").Where("user_id = ? AND chapter_id = ?", userID, chapterID).First(&p).Error
	return &p, err
}

// SaveChapterProgress 按 (user_id, chapter_id) 插入或更新
func (r *ProgressRepository) SaveChapterProgress(p *model.ChapterProgress) error {
	return r.DB.Omit("Chapter", "Course").Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "chapter_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"watched_time", "progress", "is_completed", "last_watched_at", "updated_at"}),
	}).Create(p).Error
}

func (r *ProgressRepository) DeleteChapterProgress(userID uint, chapterID string) (int64, error) {
	res := r.DB.Unscoped().Where("user_id = ? AND chapter_id = ?", userID, chapterID).Delete(&model.ChapterProgress{})
	return res.RowsAffected, res.Error
}

// SumChapterProgress 用户在课程内各章节进度之和
func (r *ProgressRepository) SumChapterProgress(userID uint, courseID string) (float64, error) {
	var sum *float64
	err := r.DB.Model(&model.ChapterProgress{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Select("SUM(progress)").
		Scan(&sum).Error
	if err != nil || sum == nil {
		return 0, err
	}
	return *sum, nil
}

func (r *ProgressRepository) SaveKnowledgePointProgress(p *model.KnowledgePointProgress) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "knowledge_point_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"progress", "is_completed", "updated_at"}),
	}).Create(p).Error
}

// KnowledgePointProgressMap 用户在课程内的知识点进度，key 为知识点 id
func (r *ProgressRepository) KnowledgePointProgressMap(userID uint, courseID string) (map[string]float64, error) {
	var list []model.KnowledgePointProgress
	err := r.DB.Model(&model.KnowledgePointProgress{}).
		Joins("JOIN knowledge_points ON knowledge_points.id = knowledge_point_progress.knowledge_point_id").
		Joins("JOIN chapters ON chapters.id = knowledge_points.chapter_id").
		Where("knowledge_point_progress.user_id = ? AND chapters.course_id = ?", userID, courseID).
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(list))
	for _, p := range list {
		out[p.KnowledgePointID] = p.Progress
	}
	return out, nil
}
