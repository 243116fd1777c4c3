package models

import "time"

// Block 拉黑关系边表
// 创建 Block 的同时会在同一事务里删除双向的 Follow 记录
type Block struct {
	BlockerID uint      `gorm:"primaryKey" json:"blocker_id"`
	BlockedID uint      `gorm:"primaryKey" json:"blocked_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (Block) TableName() string {
	return "blocks"
}
