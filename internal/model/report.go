package model

import (
	"errors"
	"time"
)

// ReportModel 进度报告数据模型
// 仅当所属计划的 reporting 开关为 active 时才允许写入
type ReportModel struct {
	ID              string    `gorm:"primaryKey;type:varchar(64)"`
	PlanID          string    `gorm:"type:varchar(64);not null;index"`
	CreatedByUserID string    `gorm:"type:varchar(64);not null;index"`
	CreatedByName   string    `gorm:"type:varchar(255)"` // 写入时固化的报告人姓名
	Content         string    `gorm:"type:text;not null"`
	Progress        int       `gorm:"type:int;not null;default:0"` // 0-100
	CreatedAt       time.Time `gorm:"not null;index"`
	UpdatedAt       time.Time `gorm:"not null"`
}

// TableName 指定表名
func (ReportModel) TableName() string {
	return "reports"
}

// Validate 验证报告模型
func (rm *ReportModel) Validate() error {
	if rm.ID == "" {
		return errors.New("report ID is required")
	}
	if rm.PlanID == "" {
		return errors.New("plan ID is required")
	}
	if rm.CreatedByUserID == "" {
		return errors.New("creator ID is required")
	}
	if rm.Content == "" {
		return errors.New("report content is required")
	}
	if rm.Progress < 0 || rm.Progress > 100 {
		return errors.New("progress must be between 0 and 100")
	}
	return nil
}
