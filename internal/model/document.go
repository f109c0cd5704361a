package model

import (
	"errors"
	"time"
)

// DocumentStatus 文档整体状态
type DocumentStatus string

const (
	DocumentStatusDraft    DocumentStatus = "draft"
	DocumentStatusPending  DocumentStatus = "pending"
	DocumentStatusApproved DocumentStatus = "approved"
	DocumentStatusRejected DocumentStatus = "rejected"
)

// IsFinal 文档是否处于终态
func (s DocumentStatus) IsFinal() bool {
	return s == DocumentStatusApproved || s == DocumentStatusRejected
}

// DocumentModel 文档数据模型
type DocumentModel struct {
	ID             string         `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Title          string         `gorm:"type:varchar(255);not null" json:"title"`
	Description    string         `gorm:"type:text" json:"description"`
	DocumentTypeID string         `gorm:"type:varchar(64);not null;index" json:"document_type_id"`
	CreatedBy      string         `gorm:"type:varchar(64);not null;index" json:"created_by"`
	FilePath       string         `gorm:"type:varchar(512)" json:"file_path"` // 对象存储中的文件标识
	FileSize       int64          `gorm:"type:bigint" json:"file_size"`
	FileType       string         `gorm:"type:varchar(128)" json:"file_type"`
	Status         DocumentStatus `gorm:"type:varchar(32);not null;default:'draft';index" json:"status"`
	CreatedAt      time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null;index" json:"updated_at"`
}

// TableName 指定表名
func (DocumentModel) TableName() string {
	return "documents"
}

// Validate 验证文档模型
func (d *DocumentModel) Validate() error {
	if d.ID == "" {
		return errors.New("document ID is required")
	}
	if d.Title == "" {
		return errors.New("document title is required")
	}
	if d.DocumentTypeID == "" {
		return errors.New("document type ID is required")
	}
	if d.CreatedBy == "" {
		return errors.New("document owner is required")
	}
	if d.Status == "" {
		d.Status = DocumentStatusDraft
	}
	return nil
}
