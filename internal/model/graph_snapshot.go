package model

// GraphSnapshot 导出的知识图谱 SVG 快照
type GraphSnapshot struct {
	UUIDBase
	CourseID  string `gorm:"type:varchar(36);index;not null" json:"courseId"`
	UserID    uint   `gorm:"index" json:"userId"`
	ObjectKey string `gorm:"size:255;not null" json:"objectKey"`
	URL       string `gorm:"size:500" json:"url"`
	Size      int64  `json:"size"`
	NodeCount int    `json:"nodeCount"`
	EdgeCount int    `json:"edgeCount"`
}

func (GraphSnapshot) TableName() string {
	return "graph_snapshots"
}
