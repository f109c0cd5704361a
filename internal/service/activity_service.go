package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/GharOffice/docu-flow-realty-hub/internal/model"
	"github.com/GharOffice/docu-flow-realty-hub/internal/repository"
	"github.com/GharOffice/docu-flow-realty-hub/internal/workflow"
	"gorm.io/gorm"
)

// ActivityService 活动日志查询服务
type ActivityService interface {
	ListByDocument(ctx context.Context, documentID string) ([]*ActivityView, error)
	ListByUser(ctx context.Context, userID string) ([]*ActivityView, error)
	Recent(ctx context.Context, limit int) ([]*ActivityView, error)
}

// ActivityView 活动日志视图,details 解析为对象
type ActivityView struct {
	*model.ActivityLogModel
	Details map[string]interface{} `json:"details,omitempty"`
}

func newActivityViews(logs []*model.ActivityLogModel) []*ActivityView {
	views := make([]*ActivityView, 0, len(logs))
	for _, l := range logs {
		views = append(views, &ActivityView{ActivityLogModel: l, Details: l.DetailsMap()})
	}
	return views
}

type activityService struct {
	db *gorm.DB
}

// NewActivityService 创建活动日志查询服务
func NewActivityService(db *gorm.DB) ActivityService {
	return &activityService{db: db}
}

// ListByDocument 按时间顺序列出文档的活动
func (s *activityService) ListByDocument(ctx context.Context, documentID string) ([]*ActivityView, error) {
	db := s.db.WithContext(ctx)
	if _, err := repository.NewDocumentRepository(db).FindByID(documentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", workflow.ErrDocumentNotFound, documentID)
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	logs, err := repository.NewActivityLogRepository(db).FindByDocumentID(documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	return newActivityViews(logs), nil
}

// ListByUser 列出用户的活动,最新的在前
func (s *activityService) ListByUser(ctx context.Context, userID string) ([]*ActivityView, error) {
	logs, err := repository.NewActivityLogRepository(s.db.WithContext(ctx)).FindByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	return newActivityViews(logs), nil
}

// Recent 最近的活动
func (s *activityService) Recent(ctx context.Context, limit int) ([]*ActivityView, error) {
	logs, err := repository.NewActivityLogRepository(s.db.WithContext(ctx)).FindRecent(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	return newActivityViews(logs), nil
}
