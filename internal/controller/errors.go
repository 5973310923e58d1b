package controller

import (
	"ai_teaching_backend/internal/util"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// respondError 把业务错误映射为统一响应
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrCourseNotFound),
		errors.Is(err, util.ErrChapterNotFound),
		errors.Is(err, util.ErrKnowledgeNotFound),
		errors.Is(err, util.ErrProgressNotFound),
		errors.Is(err, util.ErrUserNotFound),
		errors.Is(err, util.ErrAssignmentNotFound),
		errors.Is(err, util.ErrSubmissionNotFound),
		errors.Is(err, util.ErrRecordNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		util.Error(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, util.ErrPermissionDenied), errors.Is(err, util.ErrNotEnrolled):
		util.Error(ctx, http.StatusForbidden, err.Error())
	case errors.Is(err, util.ErrInvalidCredentials), errors.Is(err, util.ErrUserDisabled):
		util.Error(ctx, http.StatusUnauthorized, err.Error())
	case errors.Is(err, util.ErrEmailRegistered),
		errors.Is(err, util.ErrCourseCodeExists),
		errors.Is(err, util.ErrAlreadyEnrolled),
		errors.Is(err, util.ErrAlreadySubmitted),
		errors.Is(err, util.ErrAssignmentClosed),
		errors.Is(err, util.ErrInvalidScore),
		errors.Is(err, util.ErrInvalidOrderUpdates),
		errors.Is(err, util.ErrInvalidViewState),
		errors.Is(err, gorm.ErrDuplicatedKey):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
