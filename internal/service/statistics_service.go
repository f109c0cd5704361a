package service

import (
	"context"
	"fmt"
	"time"

	"github.com/GharOffice/docu-flow-realty-hub/internal/model"
	"gorm.io/gorm"
)

// StatisticsService 统计服务接口
type StatisticsService interface {
	GetDashboard(ctx context.Context) (*DashboardStatistics, error)
	GetDocumentStatisticsByStatus(ctx context.Context) ([]*DocumentStatisticsByStatus, error)
	GetApprovalStatistics(ctx context.Context) (*ApprovalStatistics, error)
	CountOverdueDocuments(ctx context.Context, now time.Time) (int64, error)
}

// DocumentStatisticsByStatus 按状态统计
type DocumentStatisticsByStatus struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// ApprovalStatistics 审批统计
type ApprovalStatistics struct {
	TotalDecisions      int64   `json:"total_decisions"`
	ApprovedCount       int64   `json:"approved_count"`
	RejectedCount       int64   `json:"rejected_count"`
	ApprovalRate        float64 `json:"approval_rate"`         // 百分比
	AverageDecisionTime float64 `json:"average_decision_time"` // 单位:秒,步骤创建到决策
}

// DashboardStatistics 仪表盘统计
type DashboardStatistics struct {
	TotalDocuments   int64                         `json:"total_documents"`
	PendingDocuments int64                         `json:"pending_documents"`
	OverdueDocuments int64                         `json:"overdue_documents"`
	ActiveUsers      int64                         `json:"active_users"` // 近 30 天有活动的用户
	ByStatus         []*DocumentStatisticsByStatus `json:"by_status"`
	Approvals        *ApprovalStatistics           `json:"approvals"`
}

// statisticsService 统计服务实现
type statisticsService struct {
	db *gorm.DB
}

// NewStatisticsService 创建统计服务
func NewStatisticsService(db *gorm.DB) StatisticsService {
	return &statisticsService{db: db}
}

// GetDashboard 汇总仪表盘统计
func (s *statisticsService) GetDashboard(ctx context.Context) (*DashboardStatistics, error) {
	byStatus, err := s.GetDocumentStatisticsByStatus(ctx)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStatistics{ByStatus: byStatus}
	for _, st := range byStatus {
		stats.TotalDocuments += st.Count
		if st.Status == string(model.DocumentStatusPending) {
			stats.PendingDocuments = st.Count
		}
	}

	now := time.Now()
	if stats.OverdueDocuments, err = s.CountOverdueDocuments(ctx, now); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Model(&model.ActivityLogModel{}).
		Where("created_at >= ?", now.AddDate(0, 0, -30)).
		Distinct("user_id").
		Count(&stats.ActiveUsers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count active users: %w", err)
	}

	if stats.Approvals, err = s.GetApprovalStatistics(ctx); err != nil {
		return nil, err
	}
	return stats, nil
}

// GetDocumentStatisticsByStatus 按状态统计文档
func (s *statisticsService) GetDocumentStatisticsByStatus(ctx context.Context) ([]*DocumentStatisticsByStatus, error) {
	var results []struct {
		Status string
		Count  int64
	}

	err := s.db.WithContext(ctx).Model(&model.DocumentModel{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Order("status").
		Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get document statistics by status: %w", err)
	}

	stats := make([]*DocumentStatisticsByStatus, 0, len(results))
	for _, r := range results {
		stats = append(stats, &DocumentStatisticsByStatus{Status: r.Status, Count: r.Count})
	}
	return stats, nil
}

// CountOverdueDocuments 统计超过文档类型 SLA 天数仍在审批中的文档
// SLA 天数为 0 的类型不计入
func (s *statisticsService) CountOverdueDocuments(ctx context.Context, now time.Time) (int64, error) {
	var rows []struct {
		CreatedAt time.Time
		SLADays   int
	}
	err := s.db.WithContext(ctx).Model(&model.DocumentModel{}).
		Select("documents.created_at, document_types.sla_days").
		Joins("JOIN document_types ON document_types.id = documents.document_type_id").
		Where("documents.status = ?", model.DocumentStatusPending).
		Where("document_types.sla_days > 0").
		Scan(&rows).Error
	if err != nil {
		return 0, fmt.Errorf("failed to load pending documents: %w", err)
	}

	var overdue int64
	for _, r := range rows {
		if now.After(r.CreatedAt.AddDate(0, 0, r.SLADays)) {
			overdue++
		}
	}
	return overdue, nil
}

// GetApprovalStatistics 获取审批决策统计
func (s *statisticsService) GetApprovalStatistics(ctx context.Context) (*ApprovalStatistics, error) {
	var decided []struct {
		Status    string
		CreatedAt time.Time
		DecidedAt *time.Time
	}
	err := s.db.WithContext(ctx).Model(&model.ApprovalStepModel{}).
		Select("status, created_at, decided_at").
		Where("status <> ?", model.StepStatusPending).
		Scan(&decided).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load decided steps: %w", err)
	}

	stats := &ApprovalStatistics{}
	var totalSeconds float64
	var timed int64
	for _, d := range decided {
		stats.TotalDecisions++
		switch model.StepStatus(d.Status) {
		case model.StepStatusApproved:
			stats.ApprovedCount++
		case model.StepStatusRejected:
			stats.RejectedCount++
		}
		if d.DecidedAt != nil {
			totalSeconds += d.DecidedAt.Sub(d.CreatedAt).Seconds()
			timed++
		}
	}
	if stats.TotalDecisions > 0 {
		stats.ApprovalRate = float64(stats.ApprovedCount) / float64(stats.TotalDecisions) * 100
	}
	if timed > 0 {
		stats.AverageDecisionTime = totalSeconds / float64(timed)
	}
	return stats, nil
}
