package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/GharOffice/docu-flow-realty-hub/internal/metrics"
	"github.com/GharOffice/docu-flow-realty-hub/internal/model"
	"github.com/sirupsen/logrus"
)

// DecideRequest 步骤决策请求
type DecideRequest struct {
	DocumentID   string
	StepID       string
	ActingUserID string
	Decision     model.StepStatus // approved 或 rejected
	Comment      string
}

// DecideResult 步骤决策结果
type DecideResult struct {
	DocumentStatus model.DocumentStatus     `json:"document_status"`
	Step           *model.ApprovalStepModel `json:"step"`
}

// Executor 执行审批决策
type Executor struct {
	store      Store
	authorizer Authorizer
	sink       ActivitySink
	logger     logrus.FieldLogger
	now        func() time.Time
}

// NewExecutor 创建审批决策执行器
// authorizer 为 nil 时使用 AssignedApprover,sink 为 nil 时不记录活动
func NewExecutor(store Store, authorizer Authorizer, sink ActivitySink, logger logrus.FieldLogger) *Executor {
	if authorizer == nil {
		authorizer = AssignedApprover
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Executor{
		store:      store,
		authorizer: authorizer,
		sink:       sink,
		logger:     logger,
		now:        time.Now,
	}
}

// Decide 对当前可决策步骤执行通过或拒绝
// 条件写入冲突时重新读取状态重试一次,仍失败则返回 ErrStepNotActionable
func (e *Executor) Decide(ctx context.Context, req *DecideRequest) (*DecideResult, error) {
	if req.Decision != model.StepStatusApproved && req.Decision != model.StepStatusRejected {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDecision, req.Decision)
	}

	result, err := e.decideOnce(ctx, req)
	if errors.Is(err, ErrStoreConflict) {
		metrics.RecordDecisionConflict()
		e.logger.WithFields(logrus.Fields{
			"document_id": req.DocumentID,
			"step_id":     req.StepID,
		}).Warn("approval step conflict, re-evaluating")

		result, err = e.decideOnce(ctx, req)
		if errors.Is(err, ErrStoreConflict) {
			return nil, fmt.Errorf("%w: step %s changed during decision", ErrStepNotActionable, req.StepID)
		}
	}
	if err != nil {
		return nil, err
	}

	metrics.RecordDecision(string(req.Decision))
	e.emit(ctx, req, result)
	return result, nil
}

// decideOnce 校验前置条件并在事务中提交决策
func (e *Executor) decideOnce(ctx context.Context, req *DecideRequest) (*DecideResult, error) {
	// 1. 事务外校验前置条件(授权可能访问外部服务,不在事务中进行)
	step, err := e.checkPreconditions(ctx, req)
	if err != nil {
		return nil, err
	}

	var comment *string
	if c := strings.TrimSpace(req.Comment); c != "" {
		comment = &c
	}
	decision := StepDecision{
		Status:     req.Decision,
		ApproverID: req.ActingUserID,
		Comment:    comment,
		DecidedAt:  e.now(),
	}

	// 2. 事务内重新读取状态,条件写入步骤并重算文档状态
	result := &DecideResult{}
	err = e.store.Transaction(ctx, func(tx Store) error {
		doc, err := tx.GetDocument(ctx, req.DocumentID, true)
		if err != nil {
			return err
		}
		if doc.Status == model.DocumentStatusApproved {
			return finalizedError(req.DocumentID)
		}

		steps, err := tx.ListSteps(ctx, req.DocumentID)
		if err != nil {
			return fmt.Errorf("failed to list steps: %w", err)
		}
		if head := AvailableStep(steps); head == nil || head.ID != step.ID {
			return ErrStoreConflict
		}

		swapped, err := tx.CompareAndSwapStep(ctx, step.ID, model.StepStatusPending, decision)
		if err != nil {
			return fmt.Errorf("failed to update step: %w", err)
		}
		if !swapped {
			return ErrStoreConflict
		}

		steps, err = tx.ListSteps(ctx, req.DocumentID)
		if err != nil {
			return fmt.Errorf("failed to list steps: %w", err)
		}
		status, _ := Aggregate(steps)
		if err := tx.UpdateDocumentStatus(ctx, req.DocumentID, status); err != nil {
			return fmt.Errorf("failed to update document status: %w", err)
		}

		result.DocumentStatus = status
		for _, s := range steps {
			if s.ID == step.ID {
				result.Step = s
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// finalizedError 已通过文档上的决策,其步骤同样不可决策
func finalizedError(documentID string) error {
	return fmt.Errorf("%w: %w: document %s", ErrDocumentAlreadyFinalized, ErrStepNotActionable, documentID)
}

// checkPreconditions 按顺序校验文档状态、步骤门控、审批意见和授权
func (e *Executor) checkPreconditions(ctx context.Context, req *DecideRequest) (*model.ApprovalStepModel, error) {
	doc, err := e.store.GetDocument(ctx, req.DocumentID, false)
	if err != nil {
		return nil, err
	}
	if doc.Status == model.DocumentStatusApproved {
		return nil, finalizedError(req.DocumentID)
	}

	steps, err := e.store.ListSteps(ctx, req.DocumentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list steps: %w", err)
	}
	step := AvailableStep(steps)
	if step == nil {
		return nil, fmt.Errorf("%w: document %s has no available step", ErrStepNotActionable, req.DocumentID)
	}
	if step.ID != req.StepID {
		return nil, fmt.Errorf("%w: step %s is not the current step (current is sequence %d)", ErrStepNotActionable, req.StepID, step.Sequence)
	}

	if req.Decision == model.StepStatusRejected && strings.TrimSpace(req.Comment) == "" {
		return nil, ErrCommentRequired
	}

	allowed, err := e.authorizer.CanDecide(ctx, req.ActingUserID, step)
	if err != nil {
		return nil, fmt.Errorf("failed to check permission: %w", err)
	}
	if !allowed {
		return nil, fmt.Errorf("%w: user %q on step %d", ErrNotAuthorized, req.ActingUserID, step.Sequence)
	}
	return step, nil
}

// emit 记录活动事件,失败只记日志
func (e *Executor) emit(ctx context.Context, req *DecideRequest, result *DecideResult) {
	if e.sink == nil {
		return
	}

	action := ActionApprove
	if req.Decision == model.StepStatusRejected {
		action = ActionReject
	}
	event := &ActivityEvent{
		Action:         action,
		DocumentID:     req.DocumentID,
		StepID:         req.StepID,
		UserID:         req.ActingUserID,
		Comment:        strings.TrimSpace(req.Comment),
		DocumentStatus: result.DocumentStatus,
		OccurredAt:     e.now(),
	}
	if result.Step != nil {
		event.Sequence = result.Step.Sequence
	}

	if err := e.sink.Record(context.WithoutCancel(ctx), event); err != nil {
		e.logger.WithError(err).WithFields(logrus.Fields{
			"document_id": req.DocumentID,
			"step_id":     req.StepID,
			"action":      action,
		}).Error("failed to record activity")
	}
}
