package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/GharOffice/docu-flow-realty-hub/internal/model"
	"github.com/GharOffice/docu-flow-realty-hub/internal/workflow"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WorkflowStore 基于 GORM 的审批流程存储
// 实现 workflow.Store 接口
type WorkflowStore struct {
	db *gorm.DB
}

// NewWorkflowStore 创建审批流程存储
func NewWorkflowStore(db *gorm.DB) *WorkflowStore {
	return &WorkflowStore{db: db}
}

var _ workflow.Store = (*WorkflowStore)(nil)

// Transaction 在数据库事务中执行 fn
func (s *WorkflowStore) Transaction(ctx context.Context, fn func(tx workflow.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&WorkflowStore{db: tx})
	})
}

// GetDocument 读取文档,PostgreSQL 下 lock 为 true 时使用 SELECT ... FOR UPDATE
// SQLite 的写事务本身是串行的,不需要行锁
func (s *WorkflowStore) GetDocument(ctx context.Context, id string, lock bool) (*model.DocumentModel, error) {
	query := s.db.WithContext(ctx)
	if lock && s.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var doc model.DocumentModel
	if err := query.Where("id = ?", id).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", workflow.ErrDocumentNotFound, id)
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &doc, nil
}

// GetDocumentType 读取文档类型
func (s *WorkflowStore) GetDocumentType(ctx context.Context, id string) (*model.DocumentTypeModel, error) {
	var docType model.DocumentTypeModel
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&docType).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", workflow.ErrDocumentTypeNotFound, id)
		}
		return nil, fmt.Errorf("failed to get document type: %w", err)
	}
	return &docType, nil
}

// ListSteps 按 sequence 升序读取文档的审批步骤
func (s *WorkflowStore) ListSteps(ctx context.Context, documentID string) ([]*model.ApprovalStepModel, error) {
	var steps []*model.ApprovalStepModel
	err := s.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("sequence ASC").
		Find(&steps).Error
	return steps, err
}

// InsertSteps 批量插入审批步骤,(document_id, sequence) 唯一索引冲突时返回 ErrDuplicateSequence
func (s *WorkflowStore) InsertSteps(ctx context.Context, steps []*model.ApprovalStepModel) error {
	if len(steps) == 0 {
		return nil
	}
	for _, step := range steps {
		if err := step.Validate(); err != nil {
			return fmt.Errorf("%w: %v", workflow.ErrInvalidConfiguration, err)
		}
	}
	if err := s.db.WithContext(ctx).Create(&steps).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: %v", workflow.ErrDuplicateSequence, err)
		}
		return fmt.Errorf("failed to insert steps: %w", err)
	}
	return nil
}

// CompareAndSwapStep 条件更新步骤状态
// UPDATE approval_steps SET ... WHERE id = ? AND status = ?,影响行数为 0 说明已被其他请求修改
func (s *WorkflowStore) CompareAndSwapStep(ctx context.Context, stepID string, expected model.StepStatus, decision workflow.StepDecision) (bool, error) {
	updates := map[string]interface{}{
		"status":      decision.Status,
		"approver_id": gorm.Expr("COALESCE(approver_id, ?)", decision.ApproverID),
		"comment":     decision.Comment,
		"decided_at":  decision.DecidedAt,
		"updated_at":  decision.DecidedAt,
	}

	result := s.db.WithContext(ctx).
		Model(&model.ApprovalStepModel{}).
		Where("id = ? AND status = ?", stepID, expected).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// UpdateDocumentStatus 更新文档状态
func (s *WorkflowStore) UpdateDocumentStatus(ctx context.Context, documentID string, status model.DocumentStatus) error {
	result := s.db.WithContext(ctx).
		Model(&model.DocumentModel{}).
		Where("id = ?", documentID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", workflow.ErrDocumentNotFound, documentID)
	}
	return nil
}
