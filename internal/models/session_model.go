package models

import (
	"time"

	"gorm.io/gorm"
)

// Session status values.
const (
	SessionScheduled = "Scheduled"
	SessionOngoing   = "Ongoing"
	SessionFinished  = "Finished"
	SessionCancelled = "Cancelled"
)

// Session Jam Session 模型，应用的核心事件实体
type Session struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:varchar(1000)" json:"description"`
	HostID      uint   `gorm:"not null;index" json:"host_id"`
	Host        *User  `gorm:"foreignKey:HostID" json:"host,omitempty"`

	IsPublic bool   `gorm:"default:true" json:"is_public"`
	Status   string `gorm:"default:Scheduled" json:"status"` // Scheduled, Ongoing, Finished, Cancelled

	StartTime time.Time  `gorm:"not null" json:"start_time"`
	EndTime   *time.Time `json:"end_time"` // set when the session finishes

	Location          string `json:"location"`
	Genre             string `json:"genre"`
	SkillLevel        string `gorm:"default:Any" json:"skill_level"` // Any, Beginner, Intermediate, Advanced
	InstrumentsNeeded string `json:"instruments_needed"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Session) TableName() string {
	return "sessions"
}

// SessionAttendee 参与者中间表，联合主键保证同一用户最多出现一次
type SessionAttendee struct {
	SessionID uint      `gorm:"primaryKey" json:"session_id"`
	UserID    uint      `gorm:"primaryKey" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (SessionAttendee) TableName() string {
	return "session_attendees"
}

// SessionInvite 私有 Session 的受邀用户
type SessionInvite struct {
	SessionID uint      `gorm:"primaryKey" json:"session_id"`
	UserID    uint      `gorm:"primaryKey" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (SessionInvite) TableName() string {
	return "session_invites"
}
