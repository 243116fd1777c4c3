package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusjam/CampusJam/internal/services"
)

// UserHandler 社交关系与举报
type UserHandler struct {
	SocialService *services.SocialService
	ReportService *services.ReportService
}

func NewUserHandler(socialService *services.SocialService, reportService *services.ReportService) *UserHandler {
	return &UserHandler{
		SocialService: socialService,
		ReportService: reportService,
	}
}

func (h *UserHandler) Follow(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	targetID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	if err := h.SocialService.Follow(userID, targetID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "now following user"})
}

func (h *UserHandler) Unfollow(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	targetID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	if err := h.SocialService.Unfollow(userID, targetID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "unfollowed user"})
}

func (h *UserHandler) Block(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	targetID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	if err := h.SocialService.Block(userID, targetID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user blocked"})
}

func (h *UserHandler) Unblock(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	targetID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	if err := h.SocialService.Unblock(userID, targetID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user unblocked"})
}

// ListFollowing 用户关注的人
func (h *UserHandler) ListFollowing(c *gin.Context) {
	targetID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	users, err := h.SocialService.ListFollowing(targetID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// ListFollowers 关注该用户的人
func (h *UserHandler) ListFollowers(c *gin.Context) {
	targetID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	users, err := h.SocialService.ListFollowers(targetID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// ListBlocked 屏蔽列表只能看自己的
func (h *UserHandler) ListBlocked(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	targetID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	if userID != targetID {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot view another user's block list"})
		return
	}

	users, err := h.SocialService.ListBlocked(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) Report(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	targetID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	req := services.ReportRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	report, err := h.ReportService.Report(userID, targetID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, report)
}
