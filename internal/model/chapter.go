package model

type ChapterStatus string

const (
	ChapterDraft     ChapterStatus = "draft"
	ChapterPublished ChapterStatus = "published"
)

// swagger:model Chapter
type Chapter struct {
	UUIDBase
	CourseID    string        `gorm:"type:varchar(36);index;not null" json:"courseId"`
	Title       string        `gorm:"size:255;not null" json:"title"`
	Description string        `gorm:"type:text" json:"description"`
	Order       int           `gorm:"column:sort_order;default:0" json:"order"`
	Duration    int           `gorm:"default:0" json:"duration"` // 分钟
	Status      ChapterStatus `gorm:"size:20;default:'draft';index" json:"status"`

	Course          *Course          `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	KnowledgePoints []KnowledgePoint `gorm:"foreignKey:ChapterID" json:"knowledgePoints,omitempty"`
}

func (Chapter) TableName() string {
	return "chapters"
}
