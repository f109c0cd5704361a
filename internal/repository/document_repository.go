package repository

import (
	"fmt"
	"strings"

	"github.com/GharOffice/docu-flow-realty-hub/internal/model"
	"github.com/GharOffice/docu-flow-realty-hub/internal/utils"
	"github.com/GharOffice/docu-flow-realty-hub/internal/workflow"
	"gorm.io/gorm"
)

// DocumentRepository 文档仓储接口
type DocumentRepository interface {
	Create(doc *model.DocumentModel) error
	FindByID(id string) (*model.DocumentModel, error)
	FindByFilter(filter *DocumentFilter) ([]*model.DocumentModel, int64, error)
	FindByIDs(ids []string) ([]*model.DocumentModel, error)
}

// DocumentFilter 文档查询过滤器
type DocumentFilter struct {
	Status         *string
	DocumentTypeID *string
	CreatedBy      *string
	FavoritedBy    *string // 只返回该用户收藏的文档
	Page           int
	PageSize       int
	SortBy         string
	Order          string
}

// documentRepository 文档仓储实现
type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository 创建文档仓储
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

// Create 创建文档
func (r *documentRepository) Create(doc *model.DocumentModel) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	return r.db.Create(doc).Error
}

// FindByID 根据 ID 查找文档
func (r *documentRepository) FindByID(id string) (*model.DocumentModel, error) {
	var doc model.DocumentModel
	if err := r.db.Where("id = ?", id).First(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// FindByIDs 批量查找文档
func (r *documentRepository) FindByIDs(ids []string) ([]*model.DocumentModel, error) {
	var docs []*model.DocumentModel
	if len(ids) == 0 {
		return docs, nil
	}
	err := r.db.Where("id IN ?", ids).Order("created_at DESC").Find(&docs).Error
	return docs, err
}

// FindByFilter 根据过滤器分页查找文档,返回当前页和总数
func (r *documentRepository) FindByFilter(filter *DocumentFilter) ([]*model.DocumentModel, int64, error) {
	if filter == nil {
		filter = &DocumentFilter{}
	}
	query := r.db.Model(&model.DocumentModel{})

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.DocumentTypeID != nil {
		query = query.Where("document_type_id = ?", *filter.DocumentTypeID)
	}
	if filter.CreatedBy != nil {
		query = query.Where("created_by = ?", *filter.CreatedBy)
	}
	if filter.FavoritedBy != nil {
		favorites := r.db.Model(&model.ActivityLogModel{}).
			Select("document_id").
			Where("action = ? AND user_id = ?", workflow.ActionFavorite, *filter.FavoritedBy)
		query = query.Where("id IN (?)", favorites)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count documents: %w", err)
	}

	// 验证排序字段,防止 SQL 注入
	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	if err := utils.ValidateSortField(sortBy); err != nil {
		return nil, 0, fmt.Errorf("invalid sort field: %w", err)
	}
	order := filter.Order
	if order == "" {
		order = "desc"
	}
	if err := utils.ValidateSortOrder(order); err != nil {
		return nil, 0, fmt.Errorf("invalid sort order: %w", err)
	}
	query = query.Order(fmt.Sprintf("%s %s", sortBy, strings.ToUpper(order)))

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	query = query.Offset((page - 1) * pageSize).Limit(pageSize)

	var docs []*model.DocumentModel
	if err := query.Find(&docs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to query documents: %w", err)
	}
	return docs, total, nil
}
