package model

import (
	"errors"
	"time"
)

// ApprovalHistoryModel 审批历史数据模型(账本)
// 除 is_current_step 外所有字段写入后不可变;审批人姓名/角色在写入时固化,
// 即使人员记录后续变更,历史记录仍保留当时的显示信息
type ApprovalHistoryModel struct {
	ID              string    `gorm:"primaryKey;type:varchar(64)"`
	PlanID          string    `gorm:"type:varchar(64);not null;index"`
	ApproverID      string    `gorm:"type:varchar(64);not null;index"`
	ApproverName    string    `gorm:"type:varchar(255);not null"` // 写入时固化的审批人姓名
	ApproverRole    string    `gorm:"type:varchar(32);not null"`  // 写入时固化的审批人角色
	Status          string    `gorm:"type:varchar(32);not null"`  // Pending/Approved/Declined
	Comment         string    `gorm:"type:text"`
	ActionDate      time.Time `gorm:"not null;index"`
	StepNumber      int       `gorm:"type:int;not null"` // 每个计划内从 1 开始严格递增
	IsCurrentStep   bool      `gorm:"not null;default:false;index"` // 每个计划至多一条为 true
	CreatedByUserID string    `gorm:"type:varchar(64);not null"`
	CreatedByName   string    `gorm:"type:varchar(255)"`
	CreatedAt       time.Time `gorm:"not null;index"`
}

// TableName 指定表名
func (ApprovalHistoryModel) TableName() string {
	return "approval_workflow_history"
}

// Validate 验证审批历史模型
func (ahm *ApprovalHistoryModel) Validate() error {
	if ahm.ID == "" {
		return errors.New("history ID is required")
	}
	if ahm.PlanID == "" {
		return errors.New("plan ID is required")
	}
	if ahm.ApproverID == "" {
		return errors.New("approver ID is required")
	}
	if ahm.Status == "" {
		return errors.New("status is required")
	}
	if ahm.StepNumber < 1 {
		return errors.New("step number must be 1-based")
	}
	return nil
}
