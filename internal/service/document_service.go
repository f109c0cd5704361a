package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/GharOffice/docu-flow-realty-hub/internal/auth"
	"github.com/GharOffice/docu-flow-realty-hub/internal/metrics"
	"github.com/GharOffice/docu-flow-realty-hub/internal/model"
	"github.com/GharOffice/docu-flow-realty-hub/internal/repository"
	"github.com/GharOffice/docu-flow-realty-hub/internal/utils"
	"github.com/GharOffice/docu-flow-realty-hub/internal/workflow"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DocumentService 文档服务接口
type DocumentService interface {
	Create(ctx context.Context, req *CreateDocumentRequest) (*DocumentDetail, error)
	Get(ctx context.Context, id string) (*DocumentDetail, error)
	List(ctx context.Context, req *ListDocumentsRequest) ([]*model.DocumentModel, int64, error)
	Steps(ctx context.Context, id string) ([]*model.ApprovalStepModel, error)
	AvailableStep(ctx context.Context, id string) (*model.ApprovalStepModel, error)
	Comment(ctx context.Context, id string, comment string) error
	Favorite(ctx context.Context, id string) error
	Unfavorite(ctx context.Context, id string) error
}

// CreateDocumentRequest 创建文档请求
// 文件内容存放在外部对象存储,这里只保存引用
type CreateDocumentRequest struct {
	Title          string `json:"title" binding:"required"`
	Description    string `json:"description"`
	DocumentTypeID string `json:"document_type_id" binding:"required"`
	FilePath       string `json:"file_path"`
	FileSize       int64  `json:"file_size"`
	FileType       string `json:"file_type"`
}

// ListDocumentsRequest 文档列表查询参数
type ListDocumentsRequest struct {
	Status         string `form:"status"`
	DocumentTypeID string `form:"document_type_id"`
	CreatedBy      string `form:"created_by"`
	Mine           bool   `form:"mine"`
	Favorites      bool   `form:"favorites"` // 只列出当前用户收藏的文档
	Page           int    `form:"page"`
	PageSize       int    `form:"page_size"`
	SortBy         string `form:"sort_by"`
	Order          string `form:"order"`
}

// CommentRequest 文档评论请求
type CommentRequest struct {
	Comment string `json:"comment" binding:"required"`
}

// DocumentDetail 文档详情,包含审批步骤和当前可决策步骤
type DocumentDetail struct {
	*model.DocumentModel
	Steps         []*model.ApprovalStepModel `json:"steps"`
	AvailableStep *model.ApprovalStepModel   `json:"available_step"`
	Favorited     bool                       `json:"favorited"`
}

// documentService 文档服务实现
type documentService struct {
	db        *gorm.DB
	sink      workflow.ActivitySink
	relations auth.RelationWriter
	logger    logrus.FieldLogger
}

// NewDocumentService 创建文档服务
// relations 不为空时为文档所有者和预指派审批人写入 OpenFGA 关系
func NewDocumentService(db *gorm.DB, sink workflow.ActivitySink, relations auth.RelationWriter, logger logrus.FieldLogger) DocumentService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &documentService{
		db:        db,
		sink:      sink,
		relations: relations,
		logger:    logger,
	}
}

// Create 创建文档并在同一事务中初始化审批步骤
func (s *documentService) Create(ctx context.Context, req *CreateDocumentRequest) (*DocumentDetail, error) {
	userID := auth.UserIDFromContext(ctx)
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if err := utils.ValidateName(req.Title); err != nil {
		return nil, fmt.Errorf("%w: title: %v", ErrInvalidInput, err)
	}
	if err := utils.ValidateID(req.DocumentTypeID); err != nil {
		return nil, fmt.Errorf("%w: document_type_id: %v", ErrInvalidInput, err)
	}
	if req.FileSize < 0 {
		return nil, fmt.Errorf("%w: file_size must not be negative", ErrInvalidInput)
	}

	now := time.Now()
	doc := &model.DocumentModel{
		ID:             uuid.New().String(),
		Title:          strings.TrimSpace(req.Title),
		Description:    req.Description,
		DocumentTypeID: req.DocumentTypeID,
		CreatedBy:      userID,
		FilePath:       req.FilePath,
		FileSize:       req.FileSize,
		FileType:       req.FileType,
		Status:         model.DocumentStatusDraft,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	var steps []*model.ApprovalStepModel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewDocumentRepository(tx).Create(doc); err != nil {
			return fmt.Errorf("failed to create document: %w", err)
		}
		var err error
		steps, err = workflow.NewInitializer(repository.NewWorkflowStore(tx)).Initialize(ctx, doc.ID, doc.DocumentTypeID)
		return err
	})
	if err != nil {
		return nil, err
	}

	doc.Status, _ = workflow.Aggregate(steps)
	metrics.RecordDocumentCreated()
	s.grantRelations(ctx, doc, steps)
	s.record(ctx, &workflow.ActivityEvent{
		Action:         workflow.ActionCreate,
		DocumentID:     doc.ID,
		UserID:         userID,
		DocumentStatus: doc.Status,
		OccurredAt:     now,
	})

	return &DocumentDetail{
		DocumentModel: doc,
		Steps:         steps,
		AvailableStep: workflow.AvailableStep(steps),
	}, nil
}

// grantRelations 写入 OpenFGA 关系,失败只记录日志
func (s *documentService) grantRelations(ctx context.Context, doc *model.DocumentModel, steps []*model.ApprovalStepModel) {
	if s.relations == nil {
		return
	}
	if err := s.relations.SetRelation(ctx, doc.CreatedBy, auth.RelationOwner, auth.ObjectDocument, doc.ID); err != nil {
		s.logger.WithError(err).WithField("document_id", doc.ID).Error("failed to grant owner relation")
	}
	for _, step := range steps {
		if step.ApproverID == nil {
			continue
		}
		if err := s.relations.SetRelation(ctx, *step.ApproverID, auth.RelationApprover, auth.ObjectDocument, doc.ID); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"document_id": doc.ID,
				"approver_id": *step.ApproverID,
			}).Error("failed to grant approver relation")
		}
	}
}

func (s *documentService) record(ctx context.Context, evt *workflow.ActivityEvent) {
	if s.sink == nil {
		return
	}
	if err := s.sink.Record(context.WithoutCancel(ctx), evt); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"document_id": evt.DocumentID,
			"action":      evt.Action,
		}).Error("failed to record activity")
	}
}

// Get 获取文档详情
func (s *documentService) Get(ctx context.Context, id string) (*DocumentDetail, error) {
	doc, err := s.findDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	steps, err := repository.NewApprovalStepRepository(s.db.WithContext(ctx)).FindByDocumentID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to list steps: %w", err)
	}
	detail := &DocumentDetail{
		DocumentModel: doc,
		Steps:         steps,
		AvailableStep: workflow.AvailableStep(steps),
	}
	if userID := auth.UserIDFromContext(ctx); userID != "" {
		count, err := repository.NewActivityLogRepository(s.db.WithContext(ctx)).CountByAction(id, userID, workflow.ActionFavorite)
		if err != nil {
			return nil, fmt.Errorf("failed to check favorite: %w", err)
		}
		detail.Favorited = count > 0
	}
	return detail, nil
}

func (s *documentService) findDocument(ctx context.Context, id string) (*model.DocumentModel, error) {
	doc, err := repository.NewDocumentRepository(s.db.WithContext(ctx)).FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", workflow.ErrDocumentNotFound, id)
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return doc, nil
}

// List 分页查询文档
func (s *documentService) List(ctx context.Context, req *ListDocumentsRequest) ([]*model.DocumentModel, int64, error) {
	filter := &repository.DocumentFilter{
		Page:     req.Page,
		PageSize: req.PageSize,
		SortBy:   req.SortBy,
		Order:    req.Order,
	}
	if req.Status != "" {
		status := model.DocumentStatus(req.Status)
		switch status {
		case model.DocumentStatusDraft, model.DocumentStatusPending, model.DocumentStatusApproved, model.DocumentStatusRejected:
		default:
			return nil, 0, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, req.Status)
		}
		filter.Status = &req.Status
	}
	if req.DocumentTypeID != "" {
		filter.DocumentTypeID = &req.DocumentTypeID
	}
	if req.Mine {
		userID := auth.UserIDFromContext(ctx)
		filter.CreatedBy = &userID
	} else if req.CreatedBy != "" {
		filter.CreatedBy = &req.CreatedBy
	}
	if req.Favorites {
		userID := auth.UserIDFromContext(ctx)
		if userID == "" {
			return nil, 0, ErrUnauthenticated
		}
		filter.FavoritedBy = &userID
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}
	if filter.SortBy != "" {
		if err := utils.ValidateSortField(filter.SortBy); err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}
	if filter.Order != "" {
		if err := utils.ValidateSortOrder(filter.Order); err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}

	return repository.NewDocumentRepository(s.db.WithContext(ctx)).FindByFilter(filter)
}

// Steps 获取文档的审批步骤
func (s *documentService) Steps(ctx context.Context, id string) ([]*model.ApprovalStepModel, error) {
	if _, err := s.findDocument(ctx, id); err != nil {
		return nil, err
	}
	steps, err := repository.NewApprovalStepRepository(s.db.WithContext(ctx)).FindByDocumentID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to list steps: %w", err)
	}
	return steps, nil
}

// AvailableStep 获取当前可决策步骤,没有时返回 nil
func (s *documentService) AvailableStep(ctx context.Context, id string) (*model.ApprovalStepModel, error) {
	steps, err := s.Steps(ctx, id)
	if err != nil {
		return nil, err
	}
	return workflow.AvailableStep(steps), nil
}

// Comment 对文档发表评论,不改变审批状态
func (s *documentService) Comment(ctx context.Context, id string, comment string) error {
	userID := auth.UserIDFromContext(ctx)
	if userID == "" {
		return ErrUnauthenticated
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return fmt.Errorf("%w: comment must not be blank", ErrInvalidInput)
	}

	doc, err := s.findDocument(ctx, id)
	if err != nil {
		return err
	}
	if s.sink == nil {
		return nil
	}
	return s.sink.Record(ctx, &workflow.ActivityEvent{
		Action:         workflow.ActionComment,
		DocumentID:     doc.ID,
		UserID:         userID,
		Comment:        comment,
		DocumentStatus: doc.Status,
		OccurredAt:     time.Now(),
	})
}

// Favorite 收藏文档,重复收藏不产生新记录
func (s *documentService) Favorite(ctx context.Context, id string) error {
	userID := auth.UserIDFromContext(ctx)
	if userID == "" {
		return ErrUnauthenticated
	}
	doc, err := s.findDocument(ctx, id)
	if err != nil {
		return err
	}

	repo := repository.NewActivityLogRepository(s.db.WithContext(ctx))
	count, err := repo.CountByAction(doc.ID, userID, workflow.ActionFavorite)
	if err != nil {
		return fmt.Errorf("failed to check favorite: %w", err)
	}
	if count > 0 {
		return nil
	}

	entry := &model.ActivityLogModel{
		ID:         uuid.New().String(),
		Action:     workflow.ActionFavorite,
		DocumentID: doc.ID,
		UserID:     userID,
		RequestID:  utils.RequestIDFromContext(ctx),
		CreatedAt:  time.Now(),
	}
	if err := entry.SetDetails(map[string]interface{}{"favorited": true}); err != nil {
		return fmt.Errorf("failed to marshal favorite details: %w", err)
	}
	if err := repo.Save(entry); err != nil {
		return fmt.Errorf("failed to save favorite: %w", err)
	}
	return nil
}

// Unfavorite 取消收藏,未收藏时无操作
func (s *documentService) Unfavorite(ctx context.Context, id string) error {
	userID := auth.UserIDFromContext(ctx)
	if userID == "" {
		return ErrUnauthenticated
	}
	doc, err := s.findDocument(ctx, id)
	if err != nil {
		return err
	}
	if _, err := repository.NewActivityLogRepository(s.db.WithContext(ctx)).DeleteByAction(doc.ID, userID, workflow.ActionFavorite); err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	return nil
}
