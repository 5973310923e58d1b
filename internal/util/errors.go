package util

import "errors"

var (
	ErrUserNotFound        = errors.New("用户不存在")
	ErrEmailRegistered     = errors.New("该邮箱已被注册")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserDisabled        = errors.New("user disabled")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrCourseNotFound      = errors.New("course not found")
	ErrCourseCodeExists    = errors.New("course code already exists")
	ErrChapterNotFound     = errors.New("chapter not found")
	ErrKnowledgeNotFound   = errors.New("knowledge point not found")
	ErrAlreadyEnrolled     = errors.New("already enrolled in this course")
	ErrNotEnrolled         = errors.New("not enrolled in this course")
	ErrInvalidOrderUpdates = errors.New("updates must be a non-empty array")
	ErrProgressNotFound    = errors.New("progress not found")
	ErrInvalidViewState    = errors.New("invalid view state")
	ErrAssignmentNotFound  = errors.New("assignment not found")
	ErrAssignmentClosed    = errors.New("assignment is not open for submission")
	ErrAlreadySubmitted    = errors.New("you have already submitted this assignment")
	ErrSubmissionNotFound  = errors.New("submission not found")
	ErrInvalidScore        = errors.New("score must be between 0 and the assignment total points")
	ErrRecordNotFound      = errors.New("learning record not found")
)
