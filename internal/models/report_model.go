package models

import "time"

// Report 举报记录，只追加不修改
type Report struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ReportedUserID uint      `gorm:"not null;index" json:"reported_user_id"`
	ReportedByID   uint      `gorm:"not null" json:"reported_by_id"`
	Reason         string    `gorm:"type:varchar(1000);not null" json:"reason"`
	TraceID        string    `gorm:"size:36" json:"trace_id"` // uuid, correlates with moderation logs
	CreatedAt      time.Time `json:"created_at"`
}

func (Report) TableName() string {
	return "reports"
}
