package repositories

import (
	"time"

	"gorm.io/gorm"

	"github.com/campusjam/CampusJam/internal/models"
)

// SessionRepository Jam Session 仓储，含参与者与邀请中间表
type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create 创建 Session
func (r *SessionRepository) Create(session *models.Session) error {
	return translate(r.db.Create(session).Error)
}

// GetByID 根据 ID 获取 Session，预加载 Host
func (r *SessionRepository) GetByID(id uint) (*models.Session, error) {
	var session models.Session
	if err := r.db.Preload("Host").First(&session, id).Error; err != nil {
		return nil, translate(err)
	}
	return &session, nil
}

// ExistsByID 检查 Session 是否存在
func (r *SessionRepository) ExistsByID(id uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Session{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// Update 更新 Session
func (r *SessionRepository) Update(session *models.Session) error {
	return translate(r.db.Save(session).Error)
}

// Delete 删除 Session 并级联清理参与者、邀请与群聊消息
func (r *SessionRepository) Delete(id uint) error {
	return translate(r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", id).
			Delete(&models.SessionAttendee{}).Error; err != nil {
			return err
		}
		if err := tx.Where("session_id = ?", id).
			Delete(&models.SessionInvite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("session_id = ?", id).
			Delete(&models.SessionMessage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Session{}, id).Error
	}))
}

// TransitionStatus 以 CAS 方式迁移状态：仅当当前状态在 from 内才更新
// 返回是否真的发生了迁移，并发的重复调用只有一个能成功
func (r *SessionRepository) TransitionStatus(id uint, from []string, to string, setEndTime bool) (bool, error) {
	updates := map[string]any{"status": to}
	if setEndTime {
		updates["end_time"] = time.Now()
	}

	result := r.db.Model(&models.Session{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// SetVisibility 更新可见性，不触碰参与者与邀请列表
func (r *SessionRepository) SetVisibility(id uint, isPublic bool) error {
	return translate(r.db.Model(&models.Session{}).
		Where("id = ?", id).
		Update("is_public", isPublic).Error)
}

// AddAttendee 添加参与者，联合主键保证重复加入报 ErrDuplicateKey
func (r *SessionRepository) AddAttendee(sessionID, userID uint) error {
	attendee := models.SessionAttendee{
		SessionID: sessionID,
		UserID:    userID,
	}
	return translate(r.db.Create(&attendee).Error)
}

// RemoveAttendee 移除参与者，返回是否确有记录被删除
func (r *SessionRepository) RemoveAttendee(sessionID, userID uint) (bool, error) {
	result := r.db.
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		Delete(&models.SessionAttendee{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// IsAttendee 检查用户是否为参与者
func (r *SessionRepository) IsAttendee(sessionID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.SessionAttendee{}).
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		Count(&count).Error
	return count > 0, err
}

// ListAttendees 获取参与者列表
func (r *SessionRepository) ListAttendees(sessionID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.
		Joins("JOIN session_attendees ON session_attendees.user_id = users.id").
		Where("session_attendees.session_id = ?", sessionID).
		Order("session_attendees.created_at").
		Find(&users).Error
	return users, err
}

// AddInvite 邀请用户加入私有 Session
func (r *SessionRepository) AddInvite(sessionID, userID uint) error {
	invite := models.SessionInvite{
		SessionID: sessionID,
		UserID:    userID,
	}
	return translate(r.db.Create(&invite).Error)
}

// IsInvited 检查用户是否在受邀列表
func (r *SessionRepository) IsInvited(sessionID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.SessionInvite{}).
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		Count(&count).Error
	return count > 0, err
}

// ListPublic 公开 Session 列表
func (r *SessionRepository) ListPublic() ([]models.Session, error) {
	var sessions []models.Session
	err := r.db.Preload("Host").
		Where("is_public = ?", true).
		Order("start_time").
		Find(&sessions).Error
	return sessions, err
}

// ListByStatus 按状态列出公开 Session
func (r *SessionRepository) ListByStatus(status string) ([]models.Session, error) {
	var sessions []models.Session
	err := r.db.Preload("Host").
		Where("is_public = ? AND status = ?", true, status).
		Order("start_time").
		Find(&sessions).Error
	return sessions, err
}

// ListUpcoming 未开始的公开 Session
func (r *SessionRepository) ListUpcoming(now time.Time) ([]models.Session, error) {
	var sessions []models.Session
	err := r.db.Preload("Host").
		Where("is_public = ? AND status = ? AND start_time > ?", true, models.SessionScheduled, now).
		Order("start_time").
		Find(&sessions).Error
	return sessions, err
}

// ListPast 已结束的公开 Session
func (r *SessionRepository) ListPast() ([]models.Session, error) {
	var sessions []models.Session
	err := r.db.Preload("Host").
		Where("is_public = ? AND status = ?", true, models.SessionFinished).
		Order("end_time DESC").
		Find(&sessions).Error
	return sessions, err
}

// ListJoinedSessionIDs 用户加入的 Session ID 列表
func (r *SessionRepository) ListJoinedSessionIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.SessionAttendee{}).
		Where("user_id = ?", userID).
		Pluck("session_id", &ids).Error
	return ids, err
}
