package models

import (
	"time"

	"gorm.io/gorm"
)

// Notification types. Only "follow" for now.
const (
	NotificationFollow = "follow"
)

// Notification 通知模型，作为社交动作的副作用生成，生成失败不影响触发动作
type Notification struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	RecipientID uint           `gorm:"not null;index" json:"recipient_id"`
	SenderID    uint           `gorm:"not null" json:"sender_id"`
	Type        string         `gorm:"not null" json:"type"`
	Message     string         `gorm:"not null" json:"message"`
	IsRead      bool           `gorm:"default:false" json:"is_read"`
	Link        string         `json:"link"`
	CreatedAt   time.Time      `json:"created_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Sender *User `gorm:"foreignKey:SenderID" json:"-"`
}

func (Notification) TableName() string {
	return "notifications"
}
