package repository

import (
	"github.com/GharOffice/docu-flow-realty-hub/internal/model"
	"gorm.io/gorm"
)

// ApprovalStepRepository 审批步骤仓储接口
type ApprovalStepRepository interface {
	FindByID(id string) (*model.ApprovalStepModel, error)
	FindByDocumentID(documentID string) ([]*model.ApprovalStepModel, error)
	FindByDocumentIDs(documentIDs []string) (map[string][]*model.ApprovalStepModel, error)
	FindPendingDocumentIDsForApprover(approverID string) ([]string, error)
}

// approvalStepRepository 审批步骤仓储实现
type approvalStepRepository struct {
	db *gorm.DB
}

// NewApprovalStepRepository 创建审批步骤仓储
func NewApprovalStepRepository(db *gorm.DB) ApprovalStepRepository {
	return &approvalStepRepository{db: db}
}

// FindByID 根据 ID 查找审批步骤
func (r *approvalStepRepository) FindByID(id string) (*model.ApprovalStepModel, error) {
	var step model.ApprovalStepModel
	if err := r.db.Where("id = ?", id).First(&step).Error; err != nil {
		return nil, err
	}
	return &step, nil
}

// FindByDocumentID 按 sequence 升序查找文档的审批步骤
func (r *approvalStepRepository) FindByDocumentID(documentID string) ([]*model.ApprovalStepModel, error) {
	var steps []*model.ApprovalStepModel
	err := r.db.Where("document_id = ?", documentID).Order("sequence ASC").Find(&steps).Error
	return steps, err
}

// FindByDocumentIDs 批量查找审批步骤,按文档分组
func (r *approvalStepRepository) FindByDocumentIDs(documentIDs []string) (map[string][]*model.ApprovalStepModel, error) {
	grouped := make(map[string][]*model.ApprovalStepModel, len(documentIDs))
	if len(documentIDs) == 0 {
		return grouped, nil
	}

	var steps []*model.ApprovalStepModel
	err := r.db.Where("document_id IN ?", documentIDs).
		Order("document_id ASC, sequence ASC").
		Find(&steps).Error
	if err != nil {
		return nil, err
	}
	for _, s := range steps {
		grouped[s.DocumentID] = append(grouped[s.DocumentID], s)
	}
	return grouped, nil
}

// FindPendingDocumentIDsForApprover 查找审批中文档里指派给该审批人或未指派的 pending 步骤所属文档
func (r *approvalStepRepository) FindPendingDocumentIDsForApprover(approverID string) ([]string, error) {
	var ids []string
	err := r.db.Model(&model.ApprovalStepModel{}).
		Joins("JOIN documents ON documents.id = approval_steps.document_id").
		Where("approval_steps.status = ?", model.StepStatusPending).
		Where("documents.status = ?", model.DocumentStatusPending).
		Where("approval_steps.approver_id = ? OR approval_steps.approver_id IS NULL", approverID).
		Distinct().
		Pluck("approval_steps.document_id", &ids).Error
	return ids, err
}
