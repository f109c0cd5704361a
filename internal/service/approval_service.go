package service

import (
	"context"
	"fmt"
	"time"

	"github.com/GharOffice/docu-flow-realty-hub/internal/auth"
	"github.com/GharOffice/docu-flow-realty-hub/internal/model"
	"github.com/GharOffice/docu-flow-realty-hub/internal/repository"
	"github.com/GharOffice/docu-flow-realty-hub/internal/workflow"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const tracerName = "github.com/GharOffice/docu-flow-realty-hub/internal/service"

// ApprovalService 审批服务接口
type ApprovalService interface {
	Approve(ctx context.Context, documentID, stepID string, req *DecisionRequest) (*workflow.DecideResult, error)
	Reject(ctx context.Context, documentID, stepID string, req *DecisionRequest) (*workflow.DecideResult, error)
	Recompute(ctx context.Context, documentID string) (model.DocumentStatus, error)
	PendingForUser(ctx context.Context, userID string) ([]*PendingApproval, error)
}

// DecisionRequest 审批决策请求,拒绝时 comment 必填
type DecisionRequest struct {
	Comment string `json:"comment"`
}

// PendingApproval 等待当前用户处理的审批
type PendingApproval struct {
	Document         *model.DocumentModel     `json:"document"`
	Step             *model.ApprovalStepModel `json:"step"`
	DocumentTypeName string                   `json:"document_type_name"`
	DueAt            *time.Time               `json:"due_at,omitempty"`
	Overdue          bool                     `json:"overdue"`
}

// approvalService 审批服务实现
type approvalService struct {
	db         *gorm.DB
	executor   *workflow.Executor
	aggregator *workflow.Aggregator
	tracer     trace.Tracer
}

// NewApprovalService 创建审批服务
func NewApprovalService(db *gorm.DB, executor *workflow.Executor, aggregator *workflow.Aggregator) ApprovalService {
	return &approvalService{
		db:         db,
		executor:   executor,
		aggregator: aggregator,
		tracer:     otel.Tracer(tracerName),
	}
}

// Approve 通过当前步骤
func (s *approvalService) Approve(ctx context.Context, documentID, stepID string, req *DecisionRequest) (*workflow.DecideResult, error) {
	return s.decide(ctx, documentID, stepID, model.StepStatusApproved, req)
}

// Reject 拒绝当前步骤
func (s *approvalService) Reject(ctx context.Context, documentID, stepID string, req *DecisionRequest) (*workflow.DecideResult, error) {
	return s.decide(ctx, documentID, stepID, model.StepStatusRejected, req)
}

func (s *approvalService) decide(ctx context.Context, documentID, stepID string, decision model.StepStatus, req *DecisionRequest) (*workflow.DecideResult, error) {
	userID := auth.UserIDFromContext(ctx)
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	ctx, span := s.tracer.Start(ctx, "approval.decide", trace.WithAttributes(
		attribute.String("document.id", documentID),
		attribute.String("step.id", stepID),
		attribute.String("decision", string(decision)),
	))
	defer span.End()

	comment := ""
	if req != nil {
		comment = req.Comment
	}
	result, err := s.executor.Decide(ctx, &workflow.DecideRequest{
		DocumentID:   documentID,
		StepID:       stepID,
		ActingUserID: userID,
		Decision:     decision,
		Comment:      comment,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("document.status", string(result.DocumentStatus)))
	return result, nil
}

// Recompute 重新计算文档状态
func (s *approvalService) Recompute(ctx context.Context, documentID string) (model.DocumentStatus, error) {
	ctx, span := s.tracer.Start(ctx, "approval.recompute", trace.WithAttributes(
		attribute.String("document.id", documentID),
	))
	defer span.End()

	status, err := s.aggregator.Recompute(ctx, documentID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return status, nil
}

// PendingForUser 查询当前轮到 userID 处理的审批
func (s *approvalService) PendingForUser(ctx context.Context, userID string) ([]*PendingApproval, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	db := s.db.WithContext(ctx)

	ids, err := repository.NewApprovalStepRepository(db).FindPendingDocumentIDsForApprover(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find pending steps: %w", err)
	}
	if len(ids) == 0 {
		return []*PendingApproval{}, nil
	}

	docs, err := repository.NewDocumentRepository(db).FindByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}
	stepsByDoc, err := repository.NewApprovalStepRepository(db).FindByDocumentIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load steps: %w", err)
	}
	docTypes, err := repository.NewDocumentTypeRepository(db).FindAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load document types: %w", err)
	}
	typeByID := make(map[string]*model.DocumentTypeModel, len(docTypes))
	for _, t := range docTypes {
		typeByID[t.ID] = t
	}

	now := time.Now()
	pending := make([]*PendingApproval, 0, len(docs))
	for _, doc := range docs {
		step := workflow.AvailableStepFor(stepsByDoc[doc.ID], userID)
		if step == nil {
			continue
		}
		item := &PendingApproval{Document: doc, Step: step}
		if t, ok := typeByID[doc.DocumentTypeID]; ok {
			item.DocumentTypeName = t.Name
			if t.SLADays > 0 {
				due := doc.CreatedAt.AddDate(0, 0, t.SLADays)
				item.DueAt = &due
				item.Overdue = now.After(due)
			}
		}
		pending = append(pending, item)
	}
	return pending, nil
}
