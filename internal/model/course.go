package model

type CourseStatus string

const (
	CourseDraft     CourseStatus = "draft"
	CoursePublished CourseStatus = "published"
	CourseArchived  CourseStatus = "archived"
)

// swagger:model Course
type Course struct {
	UUIDBase
	Code        string       `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Name        string       `gorm:"size:255;not null" json:"name"`
	Description string       `gorm:"type:text" json:"description"`
	Category    string       `gorm:"size:100;index" json:"category"`
	Credits     int          `gorm:"default:0" json:"credits"`
	Status      CourseStatus `gorm:"size:20;default:'draft';index" json:"status"`
	TeacherID   uint         `gorm:"index" json:"teacherId"`
	Teacher     *User        `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`
	Chapters    []Chapter    `gorm:"foreignKey:CourseID" json:"chapters,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}
