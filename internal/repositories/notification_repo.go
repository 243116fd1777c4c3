package repositories

import (
	"gorm.io/gorm"

	"github.com/campusjam/CampusJam/internal/models"
)

// NotificationRepository 通知仓储
type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create 创建通知
func (r *NotificationRepository) Create(notification *models.Notification) error {
	return translate(r.db.Create(notification).Error)
}

// ListByRecipient 最新的 limit 条通知
// 发送者的公共视图由服务层批量补齐
func (r *NotificationRepository) ListByRecipient(recipientID uint, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

// MarkRead 将单条通知置为已读
func (r *NotificationRepository) MarkRead(id uint) error {
	return translate(r.db.Model(&models.Notification{}).
		Where("id = ?", id).
		Update("is_read", true).Error)
}

// MarkAllRead 将用户的全部未读通知置为已读，幂等
func (r *NotificationRepository) MarkAllRead(recipientID uint) error {
	return translate(r.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true).Error)
}
