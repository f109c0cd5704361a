package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/GharOffice/docu-flow-realty-hub/internal/model"
	"github.com/google/uuid"
)

// Initializer 为新文档生成审批步骤
type Initializer struct {
	store Store
	now   func() time.Time
}

// NewInitializer 创建审批步骤初始化器
func NewInitializer(store Store) *Initializer {
	return &Initializer{store: store, now: time.Now}
}

// Initialize 按文档类型要求的审批数生成 1..N 的 pending 步骤
// 文档已存在步骤时返回 ErrDuplicateSequence,重复调用不会产生重复的 sequence
func (i *Initializer) Initialize(ctx context.Context, documentID string, documentTypeID string) ([]*model.ApprovalStepModel, error) {
	var steps []*model.ApprovalStepModel
	err := i.store.Transaction(ctx, func(tx Store) error {
		if _, err := tx.GetDocument(ctx, documentID, true); err != nil {
			return err
		}

		docType, err := tx.GetDocumentType(ctx, documentTypeID)
		if err != nil {
			return err
		}
		if docType.RequiredApprovals < 1 {
			return fmt.Errorf("%w: document type %q requires %d approvals", ErrInvalidConfiguration, docType.Name, docType.RequiredApprovals)
		}

		existing, err := tx.ListSteps(ctx, documentID)
		if err != nil {
			return fmt.Errorf("failed to list steps: %w", err)
		}
		if len(existing) > 0 {
			return fmt.Errorf("%w: document %s has %d steps", ErrDuplicateSequence, documentID, len(existing))
		}

		steps = BuildSteps(documentID, docType, i.now())
		if err := tx.InsertSteps(ctx, steps); err != nil {
			return err
		}

		status, _ := Aggregate(steps)
		return tx.UpdateDocumentStatus(ctx, documentID, status)
	})
	if err != nil {
		return nil, err
	}
	return steps, nil
}

// BuildSteps 构造文档类型对应的审批步骤,按位置预指派审批人
func BuildSteps(documentID string, docType *model.DocumentTypeModel, now time.Time) []*model.ApprovalStepModel {
	approvers := docType.Approvers()
	steps := make([]*model.ApprovalStepModel, 0, docType.RequiredApprovals)
	for seq := 1; seq <= docType.RequiredApprovals; seq++ {
		step := &model.ApprovalStepModel{
			ID:         uuid.New().String(),
			DocumentID: documentID,
			Sequence:   seq,
			Status:     model.StepStatusPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if seq <= len(approvers) && approvers[seq-1] != "" {
			approver := approvers[seq-1]
			step.ApproverID = &approver
		}
		steps = append(steps, step)
	}
	return steps
}
