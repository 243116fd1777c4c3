package models

import (
	"time"

	"gorm.io/gorm"
)

// DirectMessage 私信模型
// ID 由 snowflake 生成，时间有序，作为同一毫秒内 created_at 的决胜排序键。
// 除 read 标记外创建后不可变
type DirectMessage struct {
	ID          int64          `gorm:"primaryKey" json:"id"`
	SenderID    uint           `gorm:"not null;index:idx_dm_pair" json:"sender_id"`
	RecipientID uint           `gorm:"not null;index:idx_dm_pair" json:"recipient_id"`
	Content     string         `gorm:"type:varchar(2000);not null" json:"content"`
	Read        bool           `gorm:"default:false" json:"read"`
	CreatedAt   time.Time      `gorm:"index:idx_dm_pair" json:"created_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Sender    *User `gorm:"foreignKey:SenderID" json:"-"`
	Recipient *User `gorm:"foreignKey:RecipientID" json:"-"`
}

func (DirectMessage) TableName() string {
	return "direct_messages"
}
