package services

import (
	"errors"

	"github.com/campusjam/CampusJam/internal/models"
	"github.com/campusjam/CampusJam/internal/repositories"
)

// SocialGraphRepo covers the follow/block edge operations the social
// service depends on.
type SocialGraphRepo interface {
	CreateFollow(followerID, followeeID uint) error
	DeleteFollow(followerID, followeeID uint) error
	IsFollowing(followerID, followeeID uint) (bool, error)
	CreateBlock(blockerID, blockedID uint) error
	DeleteBlock(blockerID, blockedID uint) error
	IsBlocked(blockerID, blockedID uint) (bool, error)
	ListFollowing(userID uint) ([]models.User, error)
	ListFollowers(userID uint) ([]models.User, error)
	ListBlocked(userID uint) ([]models.User, error)
}

// SocialUserRepo is the user lookup slice the social service needs.
type SocialUserRepo interface {
	GetByID(id uint) (*models.User, error)
	GetManyByIDs(ids []uint) ([]models.User, error)
	ExistsByID(id uint) (bool, error)
}

// FollowNotifier delivers a follow notification out of band. Failures
// are the notifier's problem, the follow edge is already committed.
type FollowNotifier interface {
	NotifyFollow(recipientID, senderID uint, senderName string)
}

// SocialService 关注/屏蔽关系管理
type SocialService struct {
	socialRepo SocialGraphRepo
	userRepo   SocialUserRepo
	notifier   FollowNotifier
}

func NewSocialService(socialRepo SocialGraphRepo, userRepo SocialUserRepo, notifier FollowNotifier) *SocialService {
	return &SocialService{socialRepo: socialRepo, userRepo: userRepo, notifier: notifier}
}

// Follow 关注用户，重复关注返回冲突
func (s *SocialService) Follow(followerID, followeeID uint) error {
	if followerID == followeeID {
		return ErrSelfAction
	}

	follower, err := s.userRepo.GetByID(followerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if ok, err := s.userRepo.ExistsByID(followeeID); err != nil {
		return err
	} else if !ok {
		return ErrUserNotFound
	}

	// 任一方向存在屏蔽都不允许建立关注边，对外与用户不存在同响应
	if blocked, err := s.IsBlockedEither(followerID, followeeID); err != nil {
		return err
	} else if blocked {
		return ErrUserNotFound
	}

	if err := s.socialRepo.CreateFollow(followerID, followeeID); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return ErrAlreadyFollowing
		}
		return err
	}

	if s.notifier != nil {
		s.notifier.NotifyFollow(followeeID, followerID, follower.Name)
	}
	return nil
}

// Unfollow 取消关注，关系不存在时静默成功
func (s *SocialService) Unfollow(followerID, followeeID uint) error {
	if followerID == followeeID {
		return ErrSelfAction
	}
	if ok, err := s.userRepo.ExistsByID(followeeID); err != nil {
		return err
	} else if !ok {
		return ErrUserNotFound
	}
	return s.socialRepo.DeleteFollow(followerID, followeeID)
}

// Block 屏蔽用户，同一事务内移除双向关注
func (s *SocialService) Block(blockerID, blockedID uint) error {
	if blockerID == blockedID {
		return ErrSelfAction
	}
	if ok, err := s.userRepo.ExistsByID(blockedID); err != nil {
		return err
	} else if !ok {
		return ErrUserNotFound
	}

	if err := s.socialRepo.CreateBlock(blockerID, blockedID); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return ErrAlreadyBlocked
		}
		return err
	}
	return nil
}

// Unblock 解除屏蔽，关系不存在时静默成功
func (s *SocialService) Unblock(blockerID, blockedID uint) error {
	if blockerID == blockedID {
		return ErrSelfAction
	}
	if ok, err := s.userRepo.ExistsByID(blockedID); err != nil {
		return err
	} else if !ok {
		return ErrUserNotFound
	}
	return s.socialRepo.DeleteBlock(blockerID, blockedID)
}

func (s *SocialService) ListFollowing(userID uint) ([]models.PublicView, error) {
	if err := s.requireUser(userID); err != nil {
		return nil, err
	}
	users, err := s.socialRepo.ListFollowing(userID)
	if err != nil {
		return nil, err
	}
	return publicViews(users), nil
}

func (s *SocialService) ListFollowers(userID uint) ([]models.PublicView, error) {
	if err := s.requireUser(userID); err != nil {
		return nil, err
	}
	users, err := s.socialRepo.ListFollowers(userID)
	if err != nil {
		return nil, err
	}
	return publicViews(users), nil
}

func (s *SocialService) ListBlocked(userID uint) ([]models.PublicView, error) {
	if err := s.requireUser(userID); err != nil {
		return nil, err
	}
	users, err := s.socialRepo.ListBlocked(userID)
	if err != nil {
		return nil, err
	}
	return publicViews(users), nil
}

// IsBlockedEither 任一方向存在屏蔽即视为屏蔽
func (s *SocialService) IsBlockedEither(a, b uint) (bool, error) {
	if blocked, err := s.socialRepo.IsBlocked(a, b); err != nil || blocked {
		return blocked, err
	}
	return s.socialRepo.IsBlocked(b, a)
}

func (s *SocialService) requireUser(userID uint) error {
	ok, err := s.userRepo.ExistsByID(userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUserNotFound
	}
	return nil
}

func publicViews(users []models.User) []models.PublicView {
	views := make([]models.PublicView, 0, len(users))
	for i := range users {
		views = append(views, users[i].Public())
	}
	return views
}
