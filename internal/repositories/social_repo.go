package repositories

import (
	"gorm.io/gorm"

	"github.com/campusjam/CampusJam/internal/models"
)

// SocialRepository 社交关系仓储，负责 follows / blocks 两张边表
type SocialRepository struct {
	db *gorm.DB
}

func NewSocialRepository(db *gorm.DB) *SocialRepository {
	return &SocialRepository{db: db}
}

// CreateFollow 创建关注边
// 一行同时承载 "A.following 含 B" 与 "B.followers 含 A" 两个方向，
// 联合主键使重复关注直接报 ErrDuplicateKey，无需先查后插
func (r *SocialRepository) CreateFollow(followerID, followeeID uint) error {
	follow := models.Follow{
		FollowerID: followerID,
		FolloweeID: followeeID,
	}
	return translate(r.db.Create(&follow).Error)
}

// DeleteFollow 删除关注边，关系不存在时静默返回
func (r *SocialRepository) DeleteFollow(followerID, followeeID uint) error {
	return translate(r.db.
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&models.Follow{}).Error)
}

// IsFollowing 检查关注关系是否存在
func (r *SocialRepository) IsFollowing(followerID, followeeID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error
	return count > 0, err
}

// CreateBlock 创建拉黑边并在同一事务里清除双向关注
// 无论关注关系之前朝哪个方向存在，这里都无条件清理，
// 事务保证不会出现 "已拉黑但仍互相关注" 的中间状态
func (r *SocialRepository) CreateBlock(blockerID, blockedID uint) error {
	return translate(r.db.Transaction(func(tx *gorm.DB) error {
		block := models.Block{
			BlockerID: blockerID,
			BlockedID: blockedID,
		}
		if err := tx.Create(&block).Error; err != nil {
			return err
		}
		return tx.
			Where("(follower_id = ? AND followee_id = ?) OR (follower_id = ? AND followee_id = ?)",
				blockerID, blockedID, blockedID, blockerID).
			Delete(&models.Follow{}).Error
	}))
}

// DeleteBlock 解除拉黑，不存在时静默返回
func (r *SocialRepository) DeleteBlock(blockerID, blockedID uint) error {
	return translate(r.db.
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&models.Block{}).Error)
}

// IsBlocked 检查拉黑关系是否存在
func (r *SocialRepository) IsBlocked(blockerID, blockedID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Block{}).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Count(&count).Error
	return count > 0, err
}

// ListFollowing 获取用户关注的人
func (r *SocialRepository) ListFollowing(userID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.
		Joins("JOIN follows ON follows.followee_id = users.id").
		Where("follows.follower_id = ?", userID).
		Order("follows.created_at").
		Find(&users).Error
	return users, err
}

// ListFollowers 获取用户的关注者
func (r *SocialRepository) ListFollowers(userID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.followee_id = ?", userID).
		Order("follows.created_at").
		Find(&users).Error
	return users, err
}

// ListBlocked 获取用户拉黑的人
func (r *SocialRepository) ListBlocked(userID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.
		Joins("JOIN blocks ON blocks.blocked_id = users.id").
		Where("blocks.blocker_id = ?", userID).
		Order("blocks.created_at").
		Find(&users).Error
	return users, err
}
