package services

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/campusjam/CampusJam/internal/models"
	"github.com/campusjam/CampusJam/internal/utils"
	"github.com/campusjam/CampusJam/pkg/mq"
)

const notificationPageSize = 20

// NotificationStore covers notification persistence.
type NotificationStore interface {
	Create(notification *models.Notification) error
	ListByRecipient(recipientID uint, limit int) ([]models.Notification, error)
	MarkRead(id uint) error
	MarkAllRead(recipientID uint) error
}

// EventProducer publishes a keyed event to the social events topic.
type EventProducer interface {
	SendMessage(key string, message any) error
}

// NotificationService 通知生成与查询
// 有 Kafka 时事件走消息队列由消费端落库并推送，
// 没有时退化为进程内异步直写，两条路径语义一致。
type NotificationService struct {
	notificationRepo NotificationStore
	userRepo         SocialUserRepo
	producer         EventProducer
	publisher        RealtimePublisher
	logger           *zap.Logger
}

func NewNotificationService(
	notificationRepo NotificationStore,
	userRepo SocialUserRepo,
	producer EventProducer,
	publisher RealtimePublisher,
	logger *zap.Logger,
) *NotificationService {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		producer:         producer,
		publisher:        publisher,
		logger:           logger,
	}
}

// NotificationView 通知对外投影，发送者展开为公共视图
type NotificationView struct {
	models.Notification
	Sender models.PublicView `json:"sender"`
}

// NotifyFollow 生成关注通知，尽力而为：失败只记日志，不影响关注动作
func (s *NotificationService) NotifyFollow(recipientID, senderID uint, senderName string) {
	if s.producer != nil {
		event := mq.FollowEvent{
			Type:        mq.EventFollow,
			RecipientID: recipientID,
			SenderID:    senderID,
			SenderName:  senderName,
		}
		if err := s.producer.SendMessage(strconv.FormatUint(uint64(recipientID), 10), event); err == nil {
			return
		} else {
			s.logger.Warn("publish follow event failed, falling back to direct dispatch",
				zap.Uint("recipient_id", recipientID),
				zap.Error(err),
			)
		}
	}

	utils.Submit(func() {
		if err := s.CreateFollowNotification(recipientID, senderID, senderName); err != nil {
			s.logger.Error("create follow notification failed",
				zap.Uint("recipient_id", recipientID),
				zap.Uint("sender_id", senderID),
				zap.Error(err),
			)
		}
	})
}

// CreateFollowNotification 落库并推送一条关注通知，生产路径与消费端共用
func (s *NotificationService) CreateFollowNotification(recipientID, senderID uint, senderName string) error {
	notification := &models.Notification{
		RecipientID: recipientID,
		SenderID:    senderID,
		Type:        models.NotificationFollow,
		Message:     fmt.Sprintf("%s started following you.", senderName),
		Link:        fmt.Sprintf("/profile/%d", senderID),
	}
	if err := s.notificationRepo.Create(notification); err != nil {
		return err
	}

	// 推送带展开的发送者视图，查不到时退化为只带 ID 和名字
	senderView := models.PublicView{ID: senderID, Name: senderName}
	if sender, err := s.userRepo.GetByID(senderID); err == nil {
		senderView = sender.Public()
	}
	s.publisher.PublishToUser(recipientID, EventNotification, &NotificationView{
		Notification: *notification,
		Sender:       senderView,
	})
	return nil
}

// List 最新 20 条通知，发送者批量展开
func (s *NotificationService) List(userID uint) ([]NotificationView, error) {
	notifications, err := s.notificationRepo.ListByRecipient(userID, notificationPageSize)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(notifications))
	seen := make(map[uint]bool, len(notifications))
	for i := range notifications {
		if !seen[notifications[i].SenderID] {
			seen[notifications[i].SenderID] = true
			ids = append(ids, notifications[i].SenderID)
		}
	}
	users, err := s.userRepo.GetManyByIDs(ids)
	if err != nil {
		return nil, err
	}
	senders := make(map[uint]models.PublicView, len(users))
	for i := range users {
		senders[users[i].ID] = users[i].Public()
	}

	views := make([]NotificationView, 0, len(notifications))
	for i := range notifications {
		views = append(views, NotificationView{
			Notification: notifications[i],
			Sender:       senders[notifications[i].SenderID],
		})
	}
	return views, nil
}

// MarkRead 将单条通知置为已读
func (s *NotificationService) MarkRead(id uint) error {
	return s.notificationRepo.MarkRead(id)
}

// MarkAllRead 将全部通知置为已读，幂等
func (s *NotificationService) MarkAllRead(userID uint) error {
	return s.notificationRepo.MarkAllRead(userID)
}
