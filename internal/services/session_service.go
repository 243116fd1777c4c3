package services

import (
	"errors"
	"time"

	"github.com/campusjam/CampusJam/internal/models"
	"github.com/campusjam/CampusJam/internal/repositories"
)

// SessionStore covers the session persistence the session service
// depends on.
type SessionStore interface {
	Create(session *models.Session) error
	GetByID(id uint) (*models.Session, error)
	ExistsByID(id uint) (bool, error)
	Update(session *models.Session) error
	Delete(id uint) error
	TransitionStatus(id uint, from []string, to string, setEndTime bool) (bool, error)
	SetVisibility(id uint, isPublic bool) error
	AddAttendee(sessionID, userID uint) error
	RemoveAttendee(sessionID, userID uint) (bool, error)
	IsAttendee(sessionID, userID uint) (bool, error)
	ListAttendees(sessionID uint) ([]models.User, error)
	AddInvite(sessionID, userID uint) error
	IsInvited(sessionID, userID uint) (bool, error)
	ListPublic() ([]models.Session, error)
	ListByStatus(status string) ([]models.Session, error)
	ListUpcoming(now time.Time) ([]models.Session, error)
	ListPast() ([]models.Session, error)
	ListJoinedSessionIDs(userID uint) ([]uint, error)
}

// SessionService Jam Session 生命周期与成员管理
type SessionService struct {
	sessionRepo SessionStore
	userRepo    SocialUserRepo
	blocks      BlockChecker
}

func NewSessionService(sessionRepo SessionStore, userRepo SocialUserRepo, blocks BlockChecker) *SessionService {
	return &SessionService{sessionRepo: sessionRepo, userRepo: userRepo, blocks: blocks}
}

// CreateSessionRequest 创建 Session 请求
type CreateSessionRequest struct {
	Title             string    `json:"title" binding:"required"`
	Description       string    `json:"description"`
	IsPublic          *bool     `json:"is_public"`
	StartTime         time.Time `json:"start_time" binding:"required"`
	Location          string    `json:"location"`
	Genre             string    `json:"genre"`
	SkillLevel        string    `json:"skill_level"`
	InstrumentsNeeded string    `json:"instruments_needed"`
}

// UpdateSessionRequest 更新 Session 请求，nil 字段不更新
type UpdateSessionRequest struct {
	Title             *string    `json:"title"`
	Description       *string    `json:"description"`
	StartTime         *time.Time `json:"start_time"`
	Location          *string    `json:"location"`
	Genre             *string    `json:"genre"`
	SkillLevel        *string    `json:"skill_level"`
	InstrumentsNeeded *string    `json:"instruments_needed"`
}

// Create 创建 Session
// 发起人不进入参与者名单，凭 HostID 获得管理与群聊权限
func (s *SessionService) Create(hostID uint, req *CreateSessionRequest) (*models.Session, error) {
	if req.Title == "" || req.StartTime.IsZero() {
		return nil, ErrMissingField
	}

	session := &models.Session{
		Title:             req.Title,
		Description:       req.Description,
		HostID:            hostID,
		IsPublic:          true,
		Status:            models.SessionScheduled,
		StartTime:         req.StartTime,
		Location:          req.Location,
		Genre:             req.Genre,
		SkillLevel:        req.SkillLevel,
		InstrumentsNeeded: req.InstrumentsNeeded,
	}
	if req.IsPublic != nil {
		session.IsPublic = *req.IsPublic
	}
	if session.SkillLevel == "" {
		session.SkillLevel = "Any"
	}

	if err := s.sessionRepo.Create(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *SessionService) Get(sessionID uint) (*models.Session, error) {
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

// Update 更新 Session 信息，仅发起人可操作
func (s *SessionService) Update(sessionID, userID uint, req *UpdateSessionRequest) (*models.Session, error) {
	session, err := s.requireHost(sessionID, userID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if *req.Title == "" {
			return nil, ErrMissingField
		}
		session.Title = *req.Title
	}
	if req.Description != nil {
		session.Description = *req.Description
	}
	if req.StartTime != nil {
		session.StartTime = *req.StartTime
	}
	if req.Location != nil {
		session.Location = *req.Location
	}
	if req.Genre != nil {
		session.Genre = *req.Genre
	}
	if req.SkillLevel != nil {
		session.SkillLevel = *req.SkillLevel
	}
	if req.InstrumentsNeeded != nil {
		session.InstrumentsNeeded = *req.InstrumentsNeeded
	}

	if err := s.sessionRepo.Update(session); err != nil {
		return nil, err
	}
	return session, nil
}

// Delete 删除 Session，仅发起人可操作，级联清理参与者、邀请与群聊消息
func (s *SessionService) Delete(sessionID, userID uint) error {
	if _, err := s.requireHost(sessionID, userID); err != nil {
		return err
	}
	return s.sessionRepo.Delete(sessionID)
}

// Join 加入 Session：公开的任何人可加入，私有的仅受邀用户可加入
func (s *SessionService) Join(sessionID, userID uint) error {
	session, err := s.Get(sessionID)
	if err != nil {
		return err
	}
	if session.Status == models.SessionFinished || session.Status == models.SessionCancelled {
		return ErrInvalidSessionState
	}

	if blocked, err := s.blocks.IsBlockedEither(session.HostID, userID); err != nil {
		return err
	} else if blocked && session.HostID != userID {
		return ErrSessionNotFound
	}

	if !session.IsPublic && session.HostID != userID {
		invited, err := s.sessionRepo.IsInvited(sessionID, userID)
		if err != nil {
			return err
		}
		if !invited {
			return ErrNotInvited
		}
	}

	if err := s.sessionRepo.AddAttendee(sessionID, userID); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return ErrAlreadyAttendee
		}
		return err
	}
	return nil
}

// Leave 退出 Session，未加入时返回 NotFound
func (s *SessionService) Leave(sessionID, userID uint) error {
	if ok, err := s.sessionRepo.ExistsByID(sessionID); err != nil {
		return err
	} else if !ok {
		return ErrSessionNotFound
	}
	removed, err := s.sessionRepo.RemoveAttendee(sessionID, userID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotAttendee
	}
	return nil
}

// RemoveAttendee 发起人移除参与者，目标不在成员表中时返回 NotFound
func (s *SessionService) RemoveAttendee(sessionID, hostID, targetID uint) error {
	if _, err := s.requireHost(sessionID, hostID); err != nil {
		return err
	}
	removed, err := s.sessionRepo.RemoveAttendee(sessionID, targetID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotAttendee
	}
	return nil
}

// Invite 发起人邀请用户加入私有 Session
func (s *SessionService) Invite(sessionID, hostID, targetID uint) error {
	if _, err := s.requireHost(sessionID, hostID); err != nil {
		return err
	}
	if hostID == targetID {
		return ErrSelfAction
	}
	if ok, err := s.userRepo.ExistsByID(targetID); err != nil {
		return err
	} else if !ok {
		return ErrUserNotFound
	}
	if err := s.sessionRepo.AddInvite(sessionID, targetID); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return ErrAlreadyInvited
		}
		return err
	}
	return nil
}

// SetVisibility 切换公开/私有。转为公开不清空邀请名单，
// 之后再转回私有时原受邀用户依然有效。
func (s *SessionService) SetVisibility(sessionID, hostID uint, isPublic bool) error {
	if _, err := s.requireHost(sessionID, hostID); err != nil {
		return err
	}
	return s.sessionRepo.SetVisibility(sessionID, isPublic)
}

// Start Scheduled -> Ongoing
func (s *SessionService) Start(sessionID, hostID uint) error {
	return s.transition(sessionID, hostID,
		[]string{models.SessionScheduled}, models.SessionOngoing, false)
}

// MarkComplete Scheduled/Ongoing -> Finished，记录结束时间。
// 已结束或已取消的 Session 不可再次完成。
func (s *SessionService) MarkComplete(sessionID, hostID uint) error {
	return s.transition(sessionID, hostID,
		[]string{models.SessionScheduled, models.SessionOngoing}, models.SessionFinished, true)
}

// Cancel Scheduled/Ongoing -> Cancelled
func (s *SessionService) Cancel(sessionID, hostID uint) error {
	return s.transition(sessionID, hostID,
		[]string{models.SessionScheduled, models.SessionOngoing}, models.SessionCancelled, false)
}

func (s *SessionService) transition(sessionID, hostID uint, from []string, to string, setEndTime bool) error {
	if _, err := s.requireHost(sessionID, hostID); err != nil {
		return err
	}
	ok, err := s.sessionRepo.TransitionStatus(sessionID, from, to, setEndTime)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidSessionState
	}
	return nil
}

// ListAttendees 返回 Session 参与者，私有时仅发起人和参与者可见
func (s *SessionService) ListAttendees(sessionID, userID uint) ([]models.PublicView, error) {
	session, err := s.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsPublic && session.HostID != userID {
		if ok, err := s.sessionRepo.IsAttendee(sessionID, userID); err != nil {
			return nil, err
		} else if !ok {
			return nil, ErrNotAttendee
		}
	}
	users, err := s.sessionRepo.ListAttendees(sessionID)
	if err != nil {
		return nil, err
	}
	return publicViews(users), nil
}

func (s *SessionService) ListPublic() ([]models.Session, error) {
	return s.sessionRepo.ListPublic()
}

// ListActive 当前进行中的公开 Session
func (s *SessionService) ListActive() ([]models.Session, error) {
	return s.sessionRepo.ListByStatus(models.SessionOngoing)
}

// ListUpcoming 尚未开始的公开 Session
func (s *SessionService) ListUpcoming() ([]models.Session, error) {
	return s.sessionRepo.ListUpcoming(time.Now())
}

// ListPast 已结束的公开 Session
func (s *SessionService) ListPast() ([]models.Session, error) {
	return s.sessionRepo.ListPast()
}

// ListJoined 用户已加入的 Session ID 列表
func (s *SessionService) ListJoined(userID uint) ([]uint, error) {
	return s.sessionRepo.ListJoinedSessionIDs(userID)
}

func (s *SessionService) requireHost(sessionID, userID uint) (*models.Session, error) {
	session, err := s.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if session.HostID != userID {
		return nil, ErrNotHost
	}
	return session, nil
}
