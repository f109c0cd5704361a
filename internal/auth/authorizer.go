package auth

import (
	"context"
	"fmt"

	"github.com/GharOffice/docu-flow-realty-hub/internal/model"
	"github.com/GharOffice/docu-flow-realty-hub/internal/workflow"
)

// RelationAuthorizer 基于 OpenFGA approver 关系的步骤决策授权
// 已指派审批人的步骤仍只允许该审批人决策
type RelationAuthorizer struct {
	checker PermissionChecker
}

// NewRelationAuthorizer 创建关系授权器
func NewRelationAuthorizer(checker PermissionChecker) *RelationAuthorizer {
	return &RelationAuthorizer{checker: checker}
}

// CanDecide 实现 workflow.Authorizer
func (a *RelationAuthorizer) CanDecide(ctx context.Context, userID string, step *model.ApprovalStepModel) (bool, error) {
	if userID == "" {
		return false, nil
	}
	if step.ApproverID != nil && *step.ApproverID != userID {
		return false, nil
	}
	return a.checker.CheckPermission(ctx, userID, RelationApprover, ObjectDocument, step.DocumentID)
}

// NewAuthorizer 按策略名称构造授权器,openfga 策略需要 checker
func NewAuthorizer(policy string, checker PermissionChecker) (workflow.Authorizer, error) {
	switch policy {
	case "", "assigned":
		return workflow.AssignedApprover, nil
	case "allow_all":
		return workflow.AllowAll, nil
	case "openfga":
		if checker == nil {
			return nil, fmt.Errorf("openfga policy requires a permission checker")
		}
		return NewRelationAuthorizer(checker), nil
	default:
		return nil, fmt.Errorf("unknown authorization policy %q", policy)
	}
}
