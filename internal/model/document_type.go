package model

import (
	"encoding/json"
	"errors"
	"time"
)

// DocumentTypeModel 文档类型数据模型
// 由管理员配置,决定文档需要的审批步骤数
type DocumentTypeModel struct {
	ID                string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name              string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
	Description       string    `gorm:"type:text" json:"description"`
	RequiredApprovals int       `gorm:"type:int;not null;default:1" json:"required_approvals"`
	SLADays           int       `gorm:"type:int;not null;default:0" json:"sla_days"` // 0 表示不限
	ApproverIDs       string    `gorm:"type:text" json:"-"`                          // 按顺序预指派的审批人(JSON 数组)
	CreatedAt         time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time `gorm:"not null" json:"updated_at"`
}

// TableName 指定表名
func (DocumentTypeModel) TableName() string {
	return "document_types"
}

// Approvers 解析按顺序预指派的审批人
func (t *DocumentTypeModel) Approvers() []string {
	if len(t.ApproverIDs) == 0 {
		return nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(t.ApproverIDs), &ids); err != nil {
		return nil
	}
	return ids
}

// SetApprovers 设置预指派审批人
func (t *DocumentTypeModel) SetApprovers(ids []string) error {
	if len(ids) == 0 {
		t.ApproverIDs = ""
		return nil
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	t.ApproverIDs = string(data)
	return nil
}

// Validate 验证文档类型模型
func (t *DocumentTypeModel) Validate() error {
	if t.ID == "" {
		return errors.New("document type ID is required")
	}
	if t.Name == "" {
		return errors.New("document type name is required")
	}
	if t.RequiredApprovals < 1 {
		return errors.New("required approvals must be at least 1")
	}
	if t.SLADays < 0 {
		return errors.New("sla days must not be negative")
	}
	if len(t.Approvers()) > t.RequiredApprovals {
		return errors.New("more approvers than required approvals")
	}
	return nil
}
