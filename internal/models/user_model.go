package models

import (
	"time"

	"gorm.io/gorm"
)

// User 用户模型
type User struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name         string    `gorm:"not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"` // stored lowercase
	PasswordHash string    `gorm:"not null" json:"-"`
	DateOfBirth  time.Time `gorm:"not null" json:"date_of_birth"`
	Campus       string    `json:"campus"`

	SubscriptionTier string `gorm:"default:basic" json:"subscription_tier"` // basic, pro

	// Musician profile
	Instruments string `json:"instruments"` // comma separated
	Genres      string `json:"genres"`
	SkillLevel  string `gorm:"default:Beginner" json:"skill_level"` // Beginner, Intermediate, Advanced, Expert
	Bio         string `gorm:"type:varchar(500)" json:"bio"`

	// External calendar link; the token itself never leaves the server
	GoogleRefreshToken string `json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// PublicView is the minimal projection exposed when a user appears inside
// someone else's social lists or messages.
type PublicView struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u *User) Public() PublicView {
	return PublicView{ID: u.ID, Name: u.Name, Email: u.Email}
}
