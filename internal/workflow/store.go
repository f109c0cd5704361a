package workflow

import (
	"context"
	"time"

	"github.com/GharOffice/docu-flow-realty-hub/internal/model"
)

// Store 审批流程依赖的持久化存储
// 实现必须保证 Transaction 回调中的所有操作共享同一事务
type Store interface {
	// Transaction 在事务中执行 fn,fn 返回错误时回滚
	Transaction(ctx context.Context, fn func(tx Store) error) error
	// GetDocument 读取文档,lock 为 true 时对文档行加锁(数据库支持时)
	GetDocument(ctx context.Context, id string, lock bool) (*model.DocumentModel, error)
	GetDocumentType(ctx context.Context, id string) (*model.DocumentTypeModel, error)
	// ListSteps 按 sequence 升序返回文档的全部审批步骤
	ListSteps(ctx context.Context, documentID string) ([]*model.ApprovalStepModel, error)
	InsertSteps(ctx context.Context, steps []*model.ApprovalStepModel) error
	// CompareAndSwapStep 仅当步骤当前状态等于 expected 时写入决策,返回是否写入成功
	CompareAndSwapStep(ctx context.Context, stepID string, expected model.StepStatus, decision StepDecision) (bool, error)
	UpdateDocumentStatus(ctx context.Context, documentID string, status model.DocumentStatus) error
}

// StepDecision 一次步骤决策写入的内容
type StepDecision struct {
	Status     model.StepStatus
	ApproverID string // 仅在步骤未指派审批人时写入
	Comment    *string
	DecidedAt  time.Time
}

// Authorizer 判断用户能否决策某个审批步骤
type Authorizer interface {
	CanDecide(ctx context.Context, userID string, step *model.ApprovalStepModel) (bool, error)
}

// AuthorizerFunc 函数形式的 Authorizer
type AuthorizerFunc func(ctx context.Context, userID string, step *model.ApprovalStepModel) (bool, error)

// CanDecide 实现 Authorizer
func (f AuthorizerFunc) CanDecide(ctx context.Context, userID string, step *model.ApprovalStepModel) (bool, error) {
	return f(ctx, userID, step)
}

// AllowAll 允许任何已认证用户决策
var AllowAll = AuthorizerFunc(func(ctx context.Context, userID string, step *model.ApprovalStepModel) (bool, error) {
	return userID != "", nil
})

// AssignedApprover 已指派审批人的步骤只允许该审批人决策,未指派的步骤允许任何已认证用户
var AssignedApprover = AuthorizerFunc(func(ctx context.Context, userID string, step *model.ApprovalStepModel) (bool, error) {
	if userID == "" {
		return false, nil
	}
	if step.ApproverID == nil {
		return true, nil
	}
	return *step.ApproverID == userID, nil
})

// ActivityEvent 审批流程产生的活动事件
type ActivityEvent struct {
	Action         string               `json:"action"`
	DocumentID     string               `json:"document_id"`
	StepID         string               `json:"step_id,omitempty"`
	Sequence       int                  `json:"sequence,omitempty"`
	UserID         string               `json:"user_id"`
	Comment        string               `json:"comment,omitempty"`
	DocumentStatus model.DocumentStatus `json:"document_status"`
	OccurredAt     time.Time            `json:"occurred_at"`
}

// 活动类型
const (
	ActionCreate  = "create"
	ActionApprove = "approve"
	ActionReject  = "reject"
	ActionComment = "comment"
	// ActionFavorite 用户收藏文档,不推送给订阅者
	ActionFavorite = "favorite"
)

// ActivitySink 活动事件接收方,记录失败不影响审批结果
type ActivitySink interface {
	Record(ctx context.Context, event *ActivityEvent) error
}
