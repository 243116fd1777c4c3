package services

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusjam/CampusJam/internal/models"
	"github.com/campusjam/CampusJam/internal/utils"
)

// ReportStore covers report persistence.
type ReportStore interface {
	Create(report *models.Report) error
	ListForUser(reportedUserID uint) ([]models.Report, error)
}

// ReportService 用户举报
type ReportService struct {
	reportRepo ReportStore
	userRepo   SocialUserRepo
	logger     *zap.Logger
}

func NewReportService(reportRepo ReportStore, userRepo SocialUserRepo, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{reportRepo: reportRepo, userRepo: userRepo, logger: logger}
}

// ReportRequest 举报请求
type ReportRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Report 举报用户，trace id 关联审核日志
func (s *ReportService) Report(reporterID, reportedUserID uint, req *ReportRequest) (*models.Report, error) {
	if reporterID == reportedUserID {
		return nil, ErrSelfAction
	}
	if req.Reason == "" || len(req.Reason) > utils.MaxReasonLength {
		return nil, ErrInvalidReason
	}
	if ok, err := s.userRepo.ExistsByID(reportedUserID); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrUserNotFound
	}

	report := &models.Report{
		ReportedUserID: reportedUserID,
		ReportedByID:   reporterID,
		Reason:         req.Reason,
		TraceID:        uuid.NewString(),
	}
	if err := s.reportRepo.Create(report); err != nil {
		return nil, err
	}

	s.logger.Info("user reported",
		zap.Uint("reported_user_id", reportedUserID),
		zap.Uint("reported_by_id", reporterID),
		zap.String("trace_id", report.TraceID),
	)
	return report, nil
}

// ListForUser 某个用户被举报的记录
func (s *ReportService) ListForUser(reportedUserID uint) ([]models.Report, error) {
	return s.reportRepo.ListForUser(reportedUserID)
}
