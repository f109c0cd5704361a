package model

import (
	"errors"
	"time"
)

// StepStatus 审批步骤状态
type StepStatus string

const (
	StepStatusPending  StepStatus = "pending"
	StepStatusApproved StepStatus = "approved"
	StepStatusRejected StepStatus = "rejected"
)

// IsValid 判断步骤状态是否合法
func (s StepStatus) IsValid() bool {
	switch s {
	case StepStatusPending, StepStatusApproved, StepStatusRejected:
		return true
	}
	return false
}

// ApprovalStepModel 审批步骤数据模型
// 每个文档按 sequence 顺序(从 1 开始、连续)拥有若干审批步骤
type ApprovalStepModel struct {
	ID         string     `gorm:"primaryKey;type:varchar(64)" json:"id"`
	DocumentID string     `gorm:"type:varchar(64);not null;uniqueIndex:idx_steps_document_sequence" json:"document_id"`
	Sequence   int        `gorm:"type:int;not null;uniqueIndex:idx_steps_document_sequence" json:"sequence"`
	Status     StepStatus `gorm:"type:varchar(32);not null;default:'pending';index" json:"status"`
	ApproverID *string    `gorm:"type:varchar(64);index" json:"approver_id"` // 为空表示尚未指派
	Comment    *string    `gorm:"type:text" json:"comment"`
	DecidedAt  *time.Time `json:"decided_at"` // 离开 pending 时写入
	CreatedAt  time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"not null" json:"updated_at"`
}

// TableName 指定表名
func (ApprovalStepModel) TableName() string {
	return "approval_steps"
}

// IsPending 步骤是否仍待审批
func (s *ApprovalStepModel) IsPending() bool {
	return s.Status == StepStatusPending
}

// IsTerminal 步骤是否已决策
func (s *ApprovalStepModel) IsTerminal() bool {
	return s.Status == StepStatusApproved || s.Status == StepStatusRejected
}

// IsDecidedBy 步骤是否由指定用户决策
func (s *ApprovalStepModel) IsDecidedBy(userID string) bool {
	if !s.IsTerminal() || s.ApproverID == nil {
		return false
	}
	return *s.ApproverID == userID
}

// IsAssignedTo 步骤是否指派给指定用户
func (s *ApprovalStepModel) IsAssignedTo(userID string) bool {
	return s.ApproverID != nil && *s.ApproverID == userID
}

// Validate 验证审批步骤模型
func (s *ApprovalStepModel) Validate() error {
	if s.ID == "" {
		return errors.New("step ID is required")
	}
	if s.DocumentID == "" {
		return errors.New("document ID is required")
	}
	if s.Sequence < 1 {
		return errors.New("step sequence must start at 1")
	}
	if !s.Status.IsValid() {
		return errors.New("invalid step status")
	}
	if s.IsPending() != (s.DecidedAt == nil) {
		return errors.New("decided_at must be set exactly when the step is decided")
	}
	return nil
}
