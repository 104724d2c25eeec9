package model

import (
	"errors"
	"time"
)

// ApprovalAssignmentModel 当前审批指派数据模型
// 记录"当前谁欠一个审批决定",每个计划+审批人一行,原地更新。
// 历史由 approval_workflow_history 账本保留,本表只描述当前状态
type ApprovalAssignmentModel struct {
	ID           string    `gorm:"primaryKey;type:varchar(64)"`
	PlanID       string    `gorm:"type:varchar(64);not null;index"`
	ApproverID   string    `gorm:"type:varchar(64);not null;index"`
	ApproverRole string    `gorm:"type:varchar(32);not null"`
	Status       string    `gorm:"type:varchar(32);not null;index"` // Pending/Approved/Declined
	Comment      string    `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null;index"`
}

// TableName 指定表名(历史遗留表名)
func (ApprovalAssignmentModel) TableName() string {
	return "approvalworkflow"
}

// Validate 验证审批指派模型
func (aam *ApprovalAssignmentModel) Validate() error {
	if aam.ID == "" {
		return errors.New("assignment ID is required")
	}
	if aam.PlanID == "" {
		return errors.New("plan ID is required")
	}
	if aam.ApproverID == "" {
		return errors.New("approver ID is required")
	}
	if aam.Status == "" {
		return errors.New("status is required")
	}
	return nil
}
