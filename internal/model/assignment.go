package model

import "time"

type AssignmentStatus string

const (
	AssignmentDraft     AssignmentStatus = "draft"
	AssignmentPublished AssignmentStatus = "published"
	AssignmentClosed    AssignmentStatus = "closed"
)

type AssignmentType string

const (
	AssignmentHomework AssignmentType = "homework"
	AssignmentQuiz     AssignmentType = "quiz"
	AssignmentExam     AssignmentType = "exam"
	AssignmentProject  AssignmentType = "project"
)

// Assignment 挂在知识点下的作业，CourseID 冗余保存以便按课程筛选和级联删除
// swagger:model Assignment
type Assignment struct {
	UUIDBase
	Title            string           `gorm:"size:255;not null" json:"title"`
	Description      string           `gorm:"type:text" json:"description"`
	Type             AssignmentType   `gorm:"size:20;default:'homework'" json:"type"`
	KnowledgePointID string           `gorm:"type:varchar(36);index;not null" json:"knowledgePointId"`
	CourseID         string           `gorm:"type:varchar(36);index;not null" json:"courseId"`
	TeacherID        uint             `gorm:"index;not null" json:"teacherId"`
	DueDate          *time.Time       `json:"dueDate,omitempty"`
	TotalPoints      float64          `gorm:"default:100" json:"totalPoints"`
	Order            int              `gorm:"column:sort_order;default:0" json:"order"`
	Status           AssignmentStatus `gorm:"size:20;default:'draft';index" json:"status"`

	KnowledgePoint *KnowledgePoint `gorm:"foreignKey:KnowledgePointID" json:"knowledgePoint,omitempty"`
	Submissions    []Submission    `gorm:"foreignKey:AssignmentID" json:"submissions,omitempty"`
}

func (Assignment) TableName() string {
	return "assignments"
}

type SubmissionStatus string

const (
	SubmissionSubmitted SubmissionStatus = "submitted"
	SubmissionGraded    SubmissionStatus = "graded"
	SubmissionReturned  SubmissionStatus = "returned"
)

// Submission 每个学生对同一作业只能提交一次
// swagger:model Submission
type Submission struct {
	UUIDBase
	AssignmentID string           `gorm:"type:varchar(36);uniqueIndex:idx_submission_assignment_user;not null" json:"assignmentId"`
	UserID       uint             `gorm:"uniqueIndex:idx_submission_assignment_user;not null" json:"userId"`
	Content      string           `gorm:"type:text" json:"content"`
	Score        *float64         `json:"score"`
	Feedback     string           `gorm:"type:text" json:"feedback"`
	Status       SubmissionStatus `gorm:"size:20;default:'submitted';index" json:"status"`
	SubmittedAt  time.Time        `json:"submittedAt"`
	GradedAt     *time.Time       `json:"gradedAt,omitempty"`

	Assignment *Assignment `gorm:"foreignKey:AssignmentID" json:"assignment,omitempty"`
	User       *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Submission) TableName() string {
	return "submissions"
}
