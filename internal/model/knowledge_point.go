package model

type KnowledgePointStatus string

const (
	KPDraft     KnowledgePointStatus = "draft"
	KPPublished KnowledgePointStatus = "published"
)

// swagger:model KnowledgePoint
type KnowledgePoint struct {
	UUIDBase
	ChapterID     string               `gorm:"type:varchar(36);index;not null" json:"chapterId"`
	Title         string               `gorm:"size:100;not null" json:"title"`
	Description   string               `gorm:"type:text" json:"description"`
	Content       string               `gorm:"type:text" json:"content"`
	Difficulty    string               `gorm:"size:20;default:'medium'" json:"difficulty"`
	Importance    string               `gorm:"size:20;default:'medium'" json:"importance"`
	EstimatedTime int                  `gorm:"default:0" json:"estimatedTime"` // 分钟
	Order         int                  `gorm:"column:sort_order;default:0" json:"order"`
	Status        KnowledgePointStatus `gorm:"size:20;default:'draft'" json:"status"`

	Chapter *Chapter `gorm:"foreignKey:ChapterID" json:"chapter,omitempty"`
}

func (KnowledgePoint) TableName() string {
	return "knowledge_points"
}
