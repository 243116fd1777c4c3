package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusjam/CampusJam/internal/models"
	"github.com/campusjam/CampusJam/internal/services"
)

// SessionHandler Jam Session 生命周期、成员与群聊
type SessionHandler struct {
	SessionService *services.SessionService
	MessageService *services.MessageService
}

func NewSessionHandler(sessionService *services.SessionService, messageService *services.MessageService) *SessionHandler {
	return &SessionHandler{
		SessionService: sessionService,
		MessageService: messageService,
	}
}

func (h *SessionHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	req := services.CreateSessionRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	session, err := h.SessionService.Create(userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

func (h *SessionHandler) Get(c *gin.Context) {
	sessionID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	session, err := h.SessionService.Get(sessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	sessionID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	req := services.UpdateSessionRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	session, err := h.SessionService.Update(sessionID, userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	sessionID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	if err := h.SessionService.Delete(sessionID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "session deleted"})
}

// Join 当前用户加入 Session
func (h *SessionHandler) Join(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	sessionID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	if err := h.SessionService.Join(sessionID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "joined session"})
}

// RemoveParticipant 移除参与者：移除自己即退出，移除他人仅发起人可操作
func (h *SessionHandler) RemoveParticipant(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	sessionID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	targetID, ok := paramUint(c, "userId")
	if !ok {
		return
	}

	var err error
	if targetID == userID {
		err = h.SessionService.Leave(sessionID, userID)
	} else {
		err = h.SessionService.RemoveAttendee(sessionID, userID, targetID)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "participant removed"})
}

// ListParticipants Session 参与者列表
func (h *SessionHandler) ListParticipants(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	sessionID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	users, err := h.SessionService.ListAttendees(sessionID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// Invite 发起人邀请用户加入私有 Session
func (h *SessionHandler) Invite(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	sessionID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var req struct {
		UserID uint `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.SessionService.Invite(sessionID, userID, req.UserID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user invited"})
}

// SetVisibility 切换公开/私有
func (h *SessionHandler) SetVisibility(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	sessionID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var req struct {
		IsPublic *bool `json:"is_public" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.SessionService.SetVisibility(sessionID, userID, *req.IsPublic); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "visibility updated"})
}

func (h *SessionHandler) Start(c *gin.Context) {
	h.transition(c, h.SessionService.Start, "session started")
}

func (h *SessionHandler) Complete(c *gin.Context) {
	h.transition(c, h.SessionService.MarkComplete, "session completed")
}

func (h *SessionHandler) Cancel(c *gin.Context) {
	h.transition(c, h.SessionService.Cancel, "session cancelled")
}

func (h *SessionHandler) transition(c *gin.Context, fn func(sessionID, hostID uint) error, message string) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	sessionID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	if err := fn(sessionID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}

func (h *SessionHandler) ListPublic(c *gin.Context) {
	h.list(c, h.SessionService.ListPublic)
}

func (h *SessionHandler) ListActive(c *gin.Context) {
	h.list(c, h.SessionService.ListActive)
}

func (h *SessionHandler) ListUpcoming(c *gin.Context) {
	h.list(c, h.SessionService.ListUpcoming)
}

func (h *SessionHandler) ListPast(c *gin.Context) {
	h.list(c, h.SessionService.ListPast)
}

func (h *SessionHandler) list(c *gin.Context, fn func() ([]models.Session, error)) {
	sessions, err := fn()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// ListJoined 当前用户加入的 Session ID 列表
func (h *SessionHandler) ListJoined(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ids, err := h.SessionService.ListJoined(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"session_ids": ids})
}

// SendMessage 发送群聊消息
func (h *SessionHandler) SendMessage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	sessionID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	req := services.SendSessionMessageRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	msg, err := h.MessageService.SendSessionMessage(userID, sessionID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// GetMessages 群聊记录
func (h *SessionHandler) GetMessages(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	sessionID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	messages, err := h.MessageService.GetSessionMessages(sessionID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, messages)
}
