package repository

import (
	"ai_teaching_backend/internal/model"

	"gorm.io/gorm"
)

type SnapshotRepository struct {
	DB *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{DB: db}
}

func (r *SnapshotRepository) Create(s *model.GraphSnapshot) error {
	return r.DB.Create(s).Error
}

func (r *SnapshotRepository) ListByCourse(courseID string, limit int) ([]model.GraphSnapshot, error) {
	var list []model.GraphSnapshot
	err := r.DB.Where("course_id = ?", courseID).
		Order("created_at DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}
