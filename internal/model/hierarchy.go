package model

import "time"

// GoalModel 目标数据模型(层级第一级)
type GoalModel struct {
	ID          string    `gorm:"primaryKey;type:varchar(64)"`
	Name        string    `gorm:"type:varchar(255);not null"`
	Description string    `gorm:"type:text"`
	Year        int       `gorm:"type:int;index"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName 指定表名
func (GoalModel) TableName() string {
	return "goals"
}

// ObjectiveModel 目的数据模型(层级第二级)
type ObjectiveModel struct {
	ID          string    `gorm:"primaryKey;type:varchar(64)"`
	GoalID      string    `gorm:"type:varchar(64);not null;index"`
	Name        string    `gorm:"type:varchar(255);not null"`
	Description string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName 指定表名
func (ObjectiveModel) TableName() string {
	return "objectives"
}

// SpecificObjectiveModel 具体目的数据模型(层级第三级)
type SpecificObjectiveModel struct {
	ID          string    `gorm:"primaryKey;type:varchar(64)"`
	ObjectiveID string    `gorm:"type:varchar(64);not null;index"`
	Name        string    `gorm:"type:varchar(255);not null"`
	Description string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName 指定表名
func (SpecificObjectiveModel) TableName() string {
	return "specific_objectives"
}

// SpecificObjectiveDetailModel 具体目的明细数据模型(层级第四级)
type SpecificObjectiveDetailModel struct {
	ID                  string    `gorm:"primaryKey;type:varchar(64)"`
	SpecificObjectiveID string    `gorm:"type:varchar(64);not null;index"`
	Name                string    `gorm:"type:varchar(255);not null"`
	Description         string    `gorm:"type:text"`
	Measurement         string    `gorm:"type:varchar(64)"` // 度量单位
	Baseline            string    `gorm:"type:varchar(64)"`
	Target              string    `gorm:"type:varchar(64)"`
	CreatedAt           time.Time `gorm:"not null"`
	UpdatedAt           time.Time `gorm:"not null"`
}

// TableName 指定表名
func (SpecificObjectiveDetailModel) TableName() string {
	return "specific_objective_details"
}
