package model

import (
	"errors"
	"time"
)

// 计划状态常量
const (
	PlanStatusPending  = "Pending"
	PlanStatusApproved = "Approved"
	PlanStatusDeclined = "Declined"
)

// 报告开关常量
const (
	ReportingActive     = "active"
	ReportingDeactivate = "deactivate"
)

// PlanModel 计划数据模型
// 一条计划对应目标层级(goal/objective/specific objective/detail)的一次完整选择
type PlanModel struct {
	ID                        string    `gorm:"primaryKey;type:varchar(64)"`
	CreatorID                 string    `gorm:"type:varchar(64);not null;index"` // 创建人用户 ID
	EmployeeID                string    `gorm:"type:varchar(64);not null"`
	DepartmentID              string    `gorm:"type:varchar(64);not null;index"`
	SupervisorID              string    `gorm:"type:varchar(64);not null"`
	GoalID                    string    `gorm:"type:varchar(64);not null"`
	ObjectiveID               string    `gorm:"type:varchar(64);not null"`
	SpecificObjectiveID       string    `gorm:"type:varchar(64);not null"`
	SpecificObjectiveDetailID string    `gorm:"type:varchar(64);not null"`
	Status                    string    `gorm:"type:varchar(32);not null;index"` // Pending/Approved/Declined
	Reporting                 string    `gorm:"type:varchar(32);not null;default:'deactivate'"` // active/deactivate
	Year                      int       `gorm:"type:int;not null;index"`
	CreatedAt                 time.Time `gorm:"not null;index"`
	UpdatedAt                 time.Time `gorm:"not null;index"`
}

// TableName 指定表名
func (PlanModel) TableName() string {
	return "plans"
}

// Validate 验证计划模型
func (pm *PlanModel) Validate() error {
	if pm.ID == "" {
		return errors.New("plan ID is required")
	}
	if pm.CreatorID == "" {
		return errors.New("creator ID is required")
	}
	if pm.DepartmentID == "" {
		return errors.New("department ID is required")
	}
	if pm.GoalID == "" || pm.ObjectiveID == "" || pm.SpecificObjectiveID == "" || pm.SpecificObjectiveDetailID == "" {
		return errors.New("hierarchy selection is required")
	}
	if pm.Status == "" {
		return errors.New("plan status is required")
	}
	return nil
}

// IsDeclined 判断计划是否已被拒绝
// 审批链是否走完由 approvalworkflow 当前指派决定,这里只覆盖拒绝终态
func (pm *PlanModel) IsDeclined() bool {
	return pm.Status == PlanStatusDeclined
}
