package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campusjam/CampusJam/internal/models"
	"github.com/campusjam/CampusJam/internal/repositories"
	"github.com/campusjam/CampusJam/internal/utils"
	"github.com/campusjam/CampusJam/utils/ratelimit"
	"github.com/campusjam/CampusJam/utils/snowflake"
)

// MessageStore covers the direct- and session-message persistence the
// message service depends on.
type MessageStore interface {
	CreateDirect(msg *models.DirectMessage) error
	GetDirectBetween(userID, otherID uint) ([]models.DirectMessage, error)
	MarkDirectRead(recipientID, senderID uint) (int64, error)
	Conversations(userID uint) ([]repositories.ConversationRow, error)
	CreateSessionMessage(msg *models.SessionMessage) error
	GetSessionMessages(sessionID uint) ([]models.SessionMessage, error)
}

// MessageSessionRepo is the session membership slice needed for group chat.
type MessageSessionRepo interface {
	GetByID(id uint) (*models.Session, error)
	IsAttendee(sessionID, userID uint) (bool, error)
}

// BlockChecker reports whether either side has blocked the other.
type BlockChecker interface {
	IsBlockedEither(a, b uint) (bool, error)
}

const dmRateWindow = time.Minute

// MessageService 私信与 Session 群聊
type MessageService struct {
	messageRepo MessageStore
	userRepo    SocialUserRepo
	sessionRepo MessageSessionRepo
	blocks      BlockChecker
	idGen       *snowflake.Generator
	limiter     ratelimit.Limiter
	perMinute   int
	publisher   RealtimePublisher
}

func NewMessageService(
	messageRepo MessageStore,
	userRepo SocialUserRepo,
	sessionRepo MessageSessionRepo,
	blocks BlockChecker,
	idGen *snowflake.Generator,
	limiter ratelimit.Limiter,
	perMinute int,
	publisher RealtimePublisher,
) *MessageService {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &MessageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		blocks:      blocks,
		idGen:       idGen,
		limiter:     limiter,
		perMinute:   perMinute,
		publisher:   publisher,
	}
}

// SendDirectRequest 发送私信请求
type SendDirectRequest struct {
	RecipientID uint   `json:"recipient_id" binding:"required"`
	Content     string `json:"content" binding:"required"`
}

// MessageView 私信对外投影，双方展开为公共视图
// 落库与推送共用同一份，客户端无需再查用户
type MessageView struct {
	ID          int64             `json:"id"`
	SenderID    uint              `json:"sender_id"`
	RecipientID uint              `json:"recipient_id"`
	Sender      models.PublicView `json:"sender"`
	Recipient   models.PublicView `json:"recipient"`
	Content     string            `json:"content"`
	Read        bool              `json:"read"`
	CreatedAt   time.Time         `json:"created_at"`
}

func directMessageView(msg *models.DirectMessage, sender, recipient models.PublicView) *MessageView {
	return &MessageView{
		ID:          msg.ID,
		SenderID:    msg.SenderID,
		RecipientID: msg.RecipientID,
		Sender:      sender,
		Recipient:   recipient,
		Content:     msg.Content,
		Read:        msg.Read,
		CreatedAt:   msg.CreatedAt,
	}
}

// ConversationView 会话列表项：对话对象与双方的最近一条消息
type ConversationView struct {
	Counterpart models.PublicView `json:"counterpart"`
	LastMessage MessageView       `json:"last_message"`
}

// SessionMessageView 群聊消息投影，发送者展开为公共视图
type SessionMessageView struct {
	ID        int64             `json:"id"`
	SessionID uint              `json:"session_id"`
	SenderID  uint              `json:"sender_id"`
	Sender    models.PublicView `json:"sender"`
	Content   string            `json:"content"`
	CreatedAt time.Time         `json:"created_at"`
}

func sessionMessageView(msg *models.SessionMessage, sender models.PublicView) *SessionMessageView {
	return &SessionMessageView{
		ID:        msg.ID,
		SessionID: msg.SessionID,
		SenderID:  msg.SenderID,
		Sender:    sender,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
}

// SendDirect 发送私信。消息先落库，websocket 推送尽力而为。
func (s *MessageService) SendDirect(ctx context.Context, senderID uint, req *SendDirectRequest) (*MessageView, error) {
	if senderID == req.RecipientID {
		return nil, ErrSelfAction
	}
	if !utils.ValidateMessageContent(req.Content) {
		return nil, ErrInvalidContent
	}
	recipient, err := s.userRepo.GetByID(req.RecipientID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if blocked, err := s.blocks.IsBlockedEither(senderID, req.RecipientID); err != nil {
		return nil, err
	} else if blocked {
		return nil, ErrUserNotFound
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, fmt.Sprintf("dm:%d", senderID), s.perMinute, dmRateWindow)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, ErrRateLimited
		}
	}

	sender, err := s.userRepo.GetByID(senderID)
	if err != nil {
		return nil, err
	}

	id, err := s.idGen.NextID()
	if err != nil {
		return nil, err
	}

	msg := &models.DirectMessage{
		ID:          id,
		SenderID:    senderID,
		RecipientID: req.RecipientID,
		Content:     req.Content,
	}
	if err := s.messageRepo.CreateDirect(msg); err != nil {
		return nil, err
	}

	view := directMessageView(msg, sender.Public(), recipient.Public())
	s.publisher.PublishToUser(req.RecipientID, EventReceiveMessage, view)
	s.publisher.PublishToUser(senderID, EventMessageSent, view)
	return view, nil
}

// GetConversations 返回每个会话的最近一条消息，按时间倒序
// 对话对象批量展开成公共视图
func (s *MessageService) GetConversations(userID uint) ([]ConversationView, error) {
	self, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	rows, err := s.messageRepo.Conversations(userID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(rows))
	for i := range rows {
		ids = append(ids, rows[i].CounterpartID)
	}
	counterparts, err := s.publicViewsByID(ids)
	if err != nil {
		return nil, err
	}

	selfView := self.Public()
	views := make([]ConversationView, 0, len(rows))
	for i := range rows {
		counterpart := counterparts[rows[i].CounterpartID]
		senderView, recipientView := selfView, counterpart
		if rows[i].SenderID == rows[i].CounterpartID {
			senderView, recipientView = counterpart, selfView
		}
		views = append(views, ConversationView{
			Counterpart: counterpart,
			LastMessage: *directMessageView(&rows[i].DirectMessage, senderView, recipientView),
		})
	}
	return views, nil
}

// GetDirectMessages 返回双方的完整私信记录，按发送顺序，双方展开
func (s *MessageService) GetDirectMessages(userID, otherID uint) ([]*MessageView, error) {
	self, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	other, err := s.userRepo.GetByID(otherID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	messages, err := s.messageRepo.GetDirectBetween(userID, otherID)
	if err != nil {
		return nil, err
	}

	selfView, otherView := self.Public(), other.Public()
	views := make([]*MessageView, 0, len(messages))
	for i := range messages {
		senderView, recipientView := selfView, otherView
		if messages[i].SenderID == otherID {
			senderView, recipientView = otherView, selfView
		}
		views = append(views, directMessageView(&messages[i], senderView, recipientView))
	}
	return views, nil
}

// requireParticipant 群聊门禁：发起人或参与者
func (s *MessageService) requireParticipant(sessionID, userID uint) error {
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	if session.HostID == userID {
		return nil
	}
	if ok, err := s.sessionRepo.IsAttendee(sessionID, userID); err != nil {
		return err
	} else if !ok {
		return ErrNotAttendee
	}
	return nil
}

// publicViewsByID 批量展开用户公共视图
func (s *MessageService) publicViewsByID(ids []uint) (map[uint]models.PublicView, error) {
	users, err := s.userRepo.GetManyByIDs(ids)
	if err != nil {
		return nil, err
	}
	views := make(map[uint]models.PublicView, len(users))
	for i := range users {
		views[users[i].ID] = users[i].Public()
	}
	return views, nil
}

// MarkAsRead 将 sender 发给当前用户的所有未读私信标记为已读，幂等
func (s *MessageService) MarkAsRead(recipientID, senderID uint) (int64, error) {
	return s.messageRepo.MarkDirectRead(recipientID, senderID)
}

// SendSessionMessageRequest 发送群聊消息请求
type SendSessionMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// SendSessionMessage 向 Session 群聊发送消息，发起人和参与者可发
func (s *MessageService) SendSessionMessage(senderID, sessionID uint, req *SendSessionMessageRequest) (*SessionMessageView, error) {
	if !utils.ValidateMessageContent(req.Content) {
		return nil, ErrInvalidContent
	}
	if err := s.requireParticipant(sessionID, senderID); err != nil {
		return nil, err
	}

	sender, err := s.userRepo.GetByID(senderID)
	if err != nil {
		return nil, err
	}

	id, err := s.idGen.NextID()
	if err != nil {
		return nil, err
	}

	msg := &models.SessionMessage{
		ID:        id,
		SessionID: sessionID,
		SenderID:  senderID,
		Content:   req.Content,
	}
	if err := s.messageRepo.CreateSessionMessage(msg); err != nil {
		return nil, err
	}
	return sessionMessageView(msg, sender.Public()), nil
}

// GetSessionMessages 返回 Session 群聊记录，发起人和参与者可读，发送者批量展开
func (s *MessageService) GetSessionMessages(sessionID, userID uint) ([]*SessionMessageView, error) {
	if err := s.requireParticipant(sessionID, userID); err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.GetSessionMessages(sessionID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(messages))
	seen := make(map[uint]bool, len(messages))
	for i := range messages {
		if !seen[messages[i].SenderID] {
			seen[messages[i].SenderID] = true
			ids = append(ids, messages[i].SenderID)
		}
	}
	senders, err := s.publicViewsByID(ids)
	if err != nil {
		return nil, err
	}

	views := make([]*SessionMessageView, 0, len(messages))
	for i := range messages {
		views = append(views, sessionMessageView(&messages[i], senders[messages[i].SenderID]))
	}
	return views, nil
}
