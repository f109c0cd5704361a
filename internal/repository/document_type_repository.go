package repository

import (
	"github.com/GharOffice/docu-flow-realty-hub/internal/model"
	"gorm.io/gorm"
)

// DocumentTypeRepository 文档类型仓储接口
type DocumentTypeRepository interface {
	Save(docType *model.DocumentTypeModel) error
	FindByID(id string) (*model.DocumentTypeModel, error)
	FindByName(name string) (*model.DocumentTypeModel, error)
	FindAll() ([]*model.DocumentTypeModel, error)
}

// documentTypeRepository 文档类型仓储实现
type documentTypeRepository struct {
	db *gorm.DB
}

// NewDocumentTypeRepository 创建文档类型仓储
func NewDocumentTypeRepository(db *gorm.DB) DocumentTypeRepository {
	return &documentTypeRepository{db: db}
}

// Save 保存文档类型
func (r *documentTypeRepository) Save(docType *model.DocumentTypeModel) error {
	if err := docType.Validate(); err != nil {
		return err
	}
	return r.db.Save(docType).Error
}

// FindByID 根据 ID 查找文档类型
func (r *documentTypeRepository) FindByID(id string) (*model.DocumentTypeModel, error) {
	var docType model.DocumentTypeModel
	if err := r.db.Where("id = ?", id).First(&docType).Error; err != nil {
		return nil, err
	}
	return &docType, nil
}

// FindByName 根据名称查找文档类型
func (r *documentTypeRepository) FindByName(name string) (*model.DocumentTypeModel, error) {
	var docType model.DocumentTypeModel
	if err := r.db.Where("name = ?", name).First(&docType).Error; err != nil {
		return nil, err
	}
	return &docType, nil
}

// FindAll 查找所有文档类型
func (r *documentTypeRepository) FindAll() ([]*model.DocumentTypeModel, error) {
	var docTypes []*model.DocumentTypeModel
	err := r.db.Order("name ASC").Find(&docTypes).Error
	return docTypes, err
}
