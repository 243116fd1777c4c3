package models

import "time"

// Follow 关注关系边表
// 一行即代表 "follower 关注了 followee"，两个方向的列表都由这张表投影得出，
// 因此关注关系不可能出现单向不一致
type Follow struct {
	FollowerID uint      `gorm:"primaryKey" json:"follower_id"`
	FolloweeID uint      `gorm:"primaryKey" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Follow) TableName() string {
	return "follows"
}
