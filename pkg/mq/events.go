package mq

// Event types carried on the social events topic.
const (
	EventFollow = "social.follow"
)

// FollowEvent 关注事件，消费侧据此生成通知并推送给接收者
type FollowEvent struct {
	Type        string `json:"type"`
	RecipientID uint   `json:"recipient_id"`
	SenderID    uint   `json:"sender_id"`
	SenderName  string `json:"sender_name"`
}
