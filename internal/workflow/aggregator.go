package workflow

import (
	"context"
	"fmt"

	"github.com/GharOffice/docu-flow-realty-hub/internal/model"
)

// Aggregate 根据步骤状态计算文档整体状态
// 没有步骤时返回 false,文档保持原状态(draft)
func Aggregate(steps []*model.ApprovalStepModel) (model.DocumentStatus, bool) {
	if len(steps) == 0 {
		return "", false
	}

	allApproved := true
	for _, s := range steps {
		switch s.Status {
		case model.StepStatusRejected:
			return model.DocumentStatusRejected, true
		case model.StepStatusApproved:
		default:
			allApproved = false
		}
	}
	if allApproved {
		return model.DocumentStatusApproved, true
	}
	return model.DocumentStatusPending, true
}

// Aggregator 文档状态聚合器
type Aggregator struct {
	store Store
}

// NewAggregator 创建文档状态聚合器
func NewAggregator(store Store) *Aggregator {
	return &Aggregator{store: store}
}

// Recompute 重新读取文档步骤并持久化聚合后的文档状态
func (a *Aggregator) Recompute(ctx context.Context, documentID string) (model.DocumentStatus, error) {
	var status model.DocumentStatus
	err := a.store.Transaction(ctx, func(tx Store) error {
		var err error
		status, err = recomputeIn(ctx, tx, documentID)
		return err
	})
	if err != nil {
		return "", err
	}
	return status, nil
}

// recomputeIn 在已有事务中重算文档状态
func recomputeIn(ctx context.Context, tx Store, documentID string) (model.DocumentStatus, error) {
	doc, err := tx.GetDocument(ctx, documentID, true)
	if err != nil {
		return "", err
	}

	steps, err := tx.ListSteps(ctx, documentID)
	if err != nil {
		return "", fmt.Errorf("failed to list steps: %w", err)
	}

	status, ok := Aggregate(steps)
	if !ok {
		return doc.Status, nil
	}
	if status != doc.Status {
		if err := tx.UpdateDocumentStatus(ctx, documentID, status); err != nil {
			return "", fmt.Errorf("failed to update document status: %w", err)
		}
	}
	return status, nil
}
