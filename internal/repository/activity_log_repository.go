package repository

import (
	"github.com/GharOffice/docu-flow-realty-hub/internal/model"
	"gorm.io/gorm"
)

// ActivityLogRepository 活动日志仓储接口
type ActivityLogRepository interface {
	Save(log *model.ActivityLogModel) error
	FindByDocumentID(documentID string) ([]*model.ActivityLogModel, error)
	FindByUserID(userID string) ([]*model.ActivityLogModel, error)
	FindRecent(limit int) ([]*model.ActivityLogModel, error)
	CountByAction(documentID, userID, action string) (int64, error)
	DeleteByAction(documentID, userID, action string) (int64, error)
}

// activityLogRepository 活动日志仓储实现
type activityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository 创建活动日志仓储
func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

// Save 保存活动日志
func (r *activityLogRepository) Save(log *model.ActivityLogModel) error {
	if err := log.Validate(); err != nil {
		return err
	}
	return r.db.Save(log).Error
}

// FindByDocumentID 查找文档的活动日志
func (r *activityLogRepository) FindByDocumentID(documentID string) ([]*model.ActivityLogModel, error) {
	var logs []*model.ActivityLogModel
	err := r.db.Where("document_id = ?", documentID).Order("created_at ASC").Find(&logs).Error
	return logs, err
}

// FindByUserID 查找用户的活动日志
func (r *activityLogRepository) FindByUserID(userID string) ([]*model.ActivityLogModel, error) {
	var logs []*model.ActivityLogModel
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&logs).Error
	return logs, err
}

// FindRecent 查找最近的活动日志
func (r *activityLogRepository) FindRecent(limit int) ([]*model.ActivityLogModel, error) {
	if limit <= 0 {
		limit = 20
	}
	var logs []*model.ActivityLogModel
	err := r.db.Order("created_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}

// CountByAction 统计用户在文档上某类活动的条数
func (r *activityLogRepository) CountByAction(documentID, userID, action string) (int64, error) {
	var count int64
	err := r.db.Model(&model.ActivityLogModel{}).
		Where("document_id = ? AND user_id = ? AND action = ?", documentID, userID, action).
		Count(&count).Error
	return count, err
}

// DeleteByAction 删除用户在文档上某类活动
func (r *activityLogRepository) DeleteByAction(documentID, userID, action string) (int64, error) {
	result := r.db.Where("document_id = ? AND user_id = ? AND action = ?", documentID, userID, action).
		Delete(&model.ActivityLogModel{})
	return result.RowsAffected, result.Error
}
