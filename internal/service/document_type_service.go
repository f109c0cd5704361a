package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/GharOffice/docu-flow-realty-hub/internal/model"
	"github.com/GharOffice/docu-flow-realty-hub/internal/repository"
	"github.com/GharOffice/docu-flow-realty-hub/internal/utils"
	"github.com/GharOffice/docu-flow-realty-hub/internal/workflow"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocumentTypeService 文档类型服务接口
type DocumentTypeService interface {
	Create(ctx context.Context, req *CreateDocumentTypeRequest) (*DocumentTypeView, error)
	Get(ctx context.Context, id string) (*DocumentTypeView, error)
	List(ctx context.Context) ([]*DocumentTypeView, error)
}

// CreateDocumentTypeRequest 创建文档类型请求
type CreateDocumentTypeRequest struct {
	ID                string   `json:"id" yaml:"id"`
	Name              string   `json:"name" yaml:"name" binding:"required"`
	Description       string   `json:"description" yaml:"description"`
	RequiredApprovals int      `json:"required_approvals" yaml:"required_approvals"`
	SLADays           int      `json:"sla_days" yaml:"sla_days"`
	ApproverIDs       []string `json:"approver_ids" yaml:"approver_ids"`
}

// DocumentTypeView 文档类型视图
type DocumentTypeView struct {
	*model.DocumentTypeModel
	ApproverIDs []string `json:"approver_ids"`
}

func newDocumentTypeView(t *model.DocumentTypeModel) *DocumentTypeView {
	approvers := t.Approvers()
	if approvers == nil {
		approvers = []string{}
	}
	return &DocumentTypeView{DocumentTypeModel: t, ApproverIDs: approvers}
}

// documentTypeService 文档类型服务实现
type documentTypeService struct {
	db *gorm.DB
}

// NewDocumentTypeService 创建文档类型服务
func NewDocumentTypeService(db *gorm.DB) DocumentTypeService {
	return &documentTypeService{db: db}
}

// Create 创建文档类型,required_approvals 必须至少为 1
func (s *documentTypeService) Create(ctx context.Context, req *CreateDocumentTypeRequest) (*DocumentTypeView, error) {
	if err := utils.ValidateName(req.Name); err != nil {
		return nil, fmt.Errorf("%w: name: %v", ErrInvalidInput, err)
	}
	if req.RequiredApprovals < 1 {
		return nil, fmt.Errorf("%w: required_approvals must be at least 1", workflow.ErrInvalidConfiguration)
	}
	if req.SLADays < 0 {
		return nil, fmt.Errorf("%w: sla_days must not be negative", ErrInvalidInput)
	}
	if len(req.ApproverIDs) > req.RequiredApprovals {
		return nil, fmt.Errorf("%w: %d approvers for %d steps", workflow.ErrInvalidConfiguration, len(req.ApproverIDs), req.RequiredApprovals)
	}
	for _, id := range req.ApproverIDs {
		// 空字符串表示该位置不预指派
		if id == "" {
			continue
		}
		if err := utils.ValidateID(id); err != nil {
			return nil, fmt.Errorf("%w: approver %q: %v", ErrInvalidInput, id, err)
		}
	}

	id := req.ID
	if id == "" {
		id = uuid.New().String()
	} else if err := utils.ValidateID(id); err != nil {
		return nil, fmt.Errorf("%w: id: %v", ErrInvalidInput, err)
	}

	repo := repository.NewDocumentTypeRepository(s.db.WithContext(ctx))
	name := strings.TrimSpace(req.Name)
	if _, err := repo.FindByName(name); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrDocumentTypeExists, name)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check document type: %w", err)
	}

	now := time.Now()
	docType := &model.DocumentTypeModel{
		ID:                id,
		Name:              name,
		Description:       req.Description,
		RequiredApprovals: req.RequiredApprovals,
		SLADays:           req.SLADays,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := docType.SetApprovers(req.ApproverIDs); err != nil {
		return nil, fmt.Errorf("failed to encode approvers: %w", err)
	}

	if err := repo.Save(docType); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: %s", ErrDocumentTypeExists, name)
		}
		return nil, fmt.Errorf("failed to save document type: %w", err)
	}
	return newDocumentTypeView(docType), nil
}

// Get 获取文档类型
func (s *documentTypeService) Get(ctx context.Context, id string) (*DocumentTypeView, error) {
	docType, err := repository.NewDocumentTypeRepository(s.db.WithContext(ctx)).FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", workflow.ErrDocumentTypeNotFound, id)
		}
		return nil, fmt.Errorf("failed to get document type: %w", err)
	}
	return newDocumentTypeView(docType), nil
}

// List 列出所有文档类型
func (s *documentTypeService) List(ctx context.Context) ([]*DocumentTypeView, error) {
	docTypes, err := repository.NewDocumentTypeRepository(s.db.WithContext(ctx)).FindAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list document types: %w", err)
	}
	views := make([]*DocumentTypeView, 0, len(docTypes))
	for _, t := range docTypes {
		views = append(views, newDocumentTypeView(t))
	}
	return views, nil
}
