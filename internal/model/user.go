package model

import (
	"errors"
	"time"
)

// UserModel 用户数据模型
// 只承载工作流所需的最小字段,账号/凭证管理由外部身份系统负责
type UserModel struct {
	ID         string    `gorm:"primaryKey;type:varchar(64)"`
	Username   string    `gorm:"type:varchar(128);not null;uniqueIndex"`
	Name       string    `gorm:"type:varchar(255);not null"`
	Role       string    `gorm:"type:varchar(32);not null;index"` // staff/supervisor/general_manager/ceo/admin
	EmployeeID string    `gorm:"type:varchar(64);index"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// Validate 验证用户模型
func (um *UserModel) Validate() error {
	if um.ID == "" {
		return errors.New("user ID is required")
	}
	if um.Username == "" {
		return errors.New("username is required")
	}
	if um.Role == "" {
		return errors.New("role is required")
	}
	return nil
}

// EmployeeModel 员工数据模型
type EmployeeModel struct {
	ID           string    `gorm:"primaryKey;type:varchar(64)"`
	Name         string    `gorm:"type:varchar(255);not null"`
	DepartmentID string    `gorm:"type:varchar(64);not null;index"`
	SupervisorID string    `gorm:"type:varchar(64);index"` // 直属主管的员工 ID
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName 指定表名
func (EmployeeModel) TableName() string {
	return "employees"
}

// DepartmentModel 部门数据模型
type DepartmentModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)"`
	Name      string    `gorm:"type:varchar(255);not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName 指定表名
func (DepartmentModel) TableName() string {
	return "departments"
}
