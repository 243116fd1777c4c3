package repositories

import (
	"gorm.io/gorm"

	"github.com/campusjam/CampusJam/internal/models"
)

// MessageRepository 私信与 Session 群聊消息仓储
type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// CreateDirect 持久化私信
func (r *MessageRepository) CreateDirect(msg *models.DirectMessage) error {
	return translate(r.db.Create(msg).Error)
}

// GetDirectBetween 获取两个用户之间的全部私信
// 升序排列：created_at 相同（同一毫秒）时按雪花 ID 决胜，即插入顺序
// 双方的公共视图由服务层补齐，这里不做关联查询
func (r *MessageRepository) GetDirectBetween(userID, otherID uint) ([]models.DirectMessage, error) {
	var messages []models.DirectMessage
	err := r.db.
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
			userID, otherID, otherID, userID).
		Order("created_at, id").
		Find(&messages).Error
	return messages, err
}

// MarkDirectRead 批量把 sender → recipient 的未读私信置为已读，幂等
func (r *MessageRepository) MarkDirectRead(recipientID, senderID uint) (int64, error) {
	result := r.db.Model(&models.DirectMessage{}).
		Where("sender_id = ? AND recipient_id = ? AND read = ?", senderID, recipientID, false).
		Update("read", true)
	return result.RowsAffected, result.Error
}

// ConversationRow 会话聚合行：某个对话对象与双方之间最新的一条私信
type ConversationRow struct {
	models.DirectMessage
	CounterpartID uint `gorm:"column:counterpart" json:"counterpart_id"`
}

// Conversations 会话列表聚合
// 对用户参与的全部私信按对话对象分组，每组仅保留最新一条，
// 组间按该条消息的时间倒序。DISTINCT ON 配合内层排序一次完成
func (r *MessageRepository) Conversations(userID uint) ([]ConversationRow, error) {
	var rows []ConversationRow
	err := r.db.Raw(`
		SELECT * FROM (
			SELECT DISTINCT ON (counterpart) * FROM (
				SELECT *,
					CASE WHEN sender_id = @uid THEN recipient_id ELSE sender_id END AS counterpart
				FROM direct_messages
				WHERE (sender_id = @uid OR recipient_id = @uid) AND deleted_at IS NULL
			) m
			ORDER BY counterpart, created_at DESC, id DESC
		) latest
		ORDER BY created_at DESC, id DESC`,
		map[string]any{"uid": userID},
	).Scan(&rows).Error
	return rows, err
}

// CreateSessionMessage 持久化 Session 群聊消息
func (r *MessageRepository) CreateSessionMessage(msg *models.SessionMessage) error {
	return translate(r.db.Create(msg).Error)
}

// GetSessionMessages 获取 Session 的全部消息，升序
func (r *MessageRepository) GetSessionMessages(sessionID uint) ([]models.SessionMessage, error) {
	var messages []models.SessionMessage
	err := r.db.
		Where("session_id = ?", sessionID).
		Order("created_at, id").
		Find(&messages).Error
	return messages, err
}
