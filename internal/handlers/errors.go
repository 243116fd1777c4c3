package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campusjam/CampusJam/internal/services"
)

// respondError 将 Service 层哨兵错误映射为 HTTP 状态码
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrSelfAction),
		errors.Is(err, services.ErrInvalidContent),
		errors.Is(err, services.ErrInvalidReason),
		errors.Is(err, services.ErrInvalidEmail),
		errors.Is(err, services.ErrInvalidName),
		errors.Is(err, services.ErrWeakPassword),
		errors.Is(err, services.ErrMissingField):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})

	case errors.Is(err, services.ErrNotHost):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})

	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrSessionNotFound),
		errors.Is(err, services.ErrNotAttendee):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, services.ErrAlreadyFollowing),
		errors.Is(err, services.ErrAlreadyBlocked),
		errors.Is(err, services.ErrAlreadyAttendee),
		errors.Is(err, services.ErrAlreadyInvited),
		errors.Is(err, services.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, services.ErrInvalidSessionState),
		errors.Is(err, services.ErrNotInvited):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})

	case errors.Is(err, services.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// currentUserID 从 gin context 取当前登录用户
func currentUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return 0, false
	}
	return userID.(uint), true
}

// paramUint 解析路径参数为 uint，非法时直接写 400
func paramUint(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(v), true
}
