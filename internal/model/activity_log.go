package model

import (
	"encoding/json"
	"errors"
	"time"
)

// ActivityLogModel 文档活动日志数据模型
type ActivityLogModel struct {
	ID         string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Action     string    `gorm:"type:varchar(64);not null;index" json:"action"` // create/approve/reject/comment
	DocumentID string    `gorm:"type:varchar(64);index" json:"document_id"`
	StepID     string    `gorm:"type:varchar(64)" json:"step_id,omitempty"`
	UserID     string    `gorm:"type:varchar(64);index" json:"user_id"`
	RequestID  string    `gorm:"type:varchar(64)" json:"request_id,omitempty"`
	Details    string    `gorm:"type:text" json:"details,omitempty"` // 操作详情(JSON)
	CreatedAt  time.Time `gorm:"not null;index" json:"created_at"`
}

// TableName 指定表名
func (ActivityLogModel) TableName() string {
	return "activity_logs"
}

// Validate 验证活动日志模型
func (a *ActivityLogModel) Validate() error {
	if a.ID == "" {
		return errors.New("activity ID is required")
	}
	if a.Action == "" {
		return errors.New("action is required")
	}
	if a.DocumentID == "" {
		return errors.New("document ID is required")
	}
	return nil
}

// SetDetails 序列化操作详情
func (a *ActivityLogModel) SetDetails(details map[string]interface{}) error {
	if len(details) == 0 {
		a.Details = ""
		return nil
	}
	data, err := json.Marshal(details)
	if err != nil {
		return err
	}
	a.Details = string(data)
	return nil
}

// DetailsMap 解析操作详情
func (a *ActivityLogModel) DetailsMap() map[string]interface{} {
	if a.Details == "" {
		return nil
	}
	var details map[string]interface{}
	if err := json.Unmarshal([]byte(a.Details), &details); err != nil {
		return nil
	}
	return details
}
