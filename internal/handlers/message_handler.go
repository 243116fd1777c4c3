package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusjam/CampusJam/internal/services"
)

// MessageHandler 私信
type MessageHandler struct {
	MessageService *services.MessageService
}

func NewMessageHandler(messageService *services.MessageService) *MessageHandler {
	return &MessageHandler{MessageService: messageService}
}

func (h *MessageHandler) SendDirect(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	req := services.SendDirectRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	msg, err := h.MessageService.SendDirect(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// GetConversations 会话列表，每个对话对象最近一条消息，按时间倒序
func (h *MessageHandler) GetConversations(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	conversations, err := h.MessageService.GetConversations(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, conversations)
}

// GetDirectMessages 与某个用户的完整私信记录
func (h *MessageHandler) GetDirectMessages(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	otherID, ok := paramUint(c, "userId")
	if !ok {
		return
	}

	messages, err := h.MessageService.GetDirectMessages(userID, otherID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, messages)
}

// MarkAsRead 将某个发送者发来的全部未读私信标记为已读
func (h *MessageHandler) MarkAsRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	senderID, ok := paramUint(c, "senderId")
	if !ok {
		return
	}

	updated, err := h.MessageService.MarkAsRead(userID, senderID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated})
}
