package repositories

import (
	"gorm.io/gorm"

	"github.com/campusjam/CampusJam/internal/models"
)

// ReportRepository 举报仓储，只追加
type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create 创建举报记录
func (r *ReportRepository) Create(report *models.Report) error {
	return translate(r.db.Create(report).Error)
}

// ListForUser 某个用户被举报的全部记录，供审核侧使用
func (r *ReportRepository) ListForUser(reportedUserID uint) ([]models.Report, error) {
	var reports []models.Report
	err := r.db.
		Where("reported_user_id = ?", reportedUserID).
		Order("created_at DESC").
		Find(&reports).Error
	return reports, err
}
