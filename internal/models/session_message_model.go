package models

import (
	"time"

	"gorm.io/gorm"
)

// SessionMessage Session 群聊消息，群聊语境下不跟踪已读状态
type SessionMessage struct {
	ID        int64          `gorm:"primaryKey" json:"id"`
	SessionID uint           `gorm:"not null;index" json:"session_id"`
	SenderID  uint           `gorm:"not null;index" json:"sender_id"`
	Content   string         `gorm:"type:varchar(2000);not null" json:"content"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Sender *User `gorm:"foreignKey:SenderID" json:"-"`
}

func (SessionMessage) TableName() string {
	return "session_messages"
}
