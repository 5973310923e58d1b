package model

import "time"

type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentCompleted EnrollmentStatus = "completed"
	EnrollmentDropped   EnrollmentStatus = "dropped"
)

// Enrollment 选课记录，Progress 为各章节进度之和除以章节总数
type Enrollment struct {
	UUIDBase
	UserID     uint             `gorm:"uniqueIndex:idx_enrollment_user_course;not null" json:"userId"`
	CourseID   string           `gorm:"type:varchar(36);uniqueIndex:idx_enrollment_user_course;not null" json:"courseId"`
	Status     EnrollmentStatus `gorm:"size:20;default:'active';index" json:"status"`
	Progress   float64          `gorm:"default:0" json:"progress"`
	EnrolledAt time.Time        `json:"enrolledAt"`

	Course *Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	User   *User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
