package model

import "time"

type ChapterProgress struct {
	UUIDBase
	UserID        uint       `gorm:"uniqueIndex:idx_chapter_progress_user_chapter;not null" json:"userId"`
	ChapterID     string     `gorm:"type:varchar(36);uniqueIndex:idx_chapter_progress_user_chapter;not null" json:"chapterId"`
	CourseID      string     `gorm:"type:varchar(36);index;not null" json:"courseId"`
	WatchedTime   int        `gorm:"default:0" json:"watchedTime"` // 秒
	Progress      float64    `gorm:"default:0" json:"progress"`
	IsCompleted   bool       `gorm:"default:false" json:"isCompleted"`
	LastWatchedAt *time.Time `json:"lastWatchedAt"`

	Chapter *Chapter `gorm:"foreignKey:ChapterID" json:"chapter,omitempty"`
	Course  *Course  `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

func (ChapterProgress) TableName() string {
	return "chapter_progress"
}

type KnowledgePointProgress struct {
	UUIDBase
	UserID           uint    `gorm:"uniqueIndex:idx_kp_progress_user_kp;not null" json:"userId"`
	KnowledgePointID string  `gorm:"type:varchar(36);uniqueIndex:idx_kp_progress_user_kp;not null" json:"knowledgePointId"`
	Progress         float64 `gorm:"default:0" json:"progress"`
	IsCompleted      bool    `gorm:"default:false" json:"isCompleted"`
}

func (KnowledgePointProgress) TableName() string {
	return "knowledge_point_progress"
}
