package repository

import (
	"errors"

	"github.com/mautops/planflow-gin/internal/model"
	"gorm.io/gorm"
)

// HierarchyNames 计划引用的层级与部门的显示名称
type HierarchyNames struct {
	Department              string
	Goal                    string
	Objective               string
	SpecificObjective       string
	SpecificObjectiveDetail string
}

// HierarchyRepository 目标层级仓储接口
// 只承担读侧名称解析,层级的维护不在本服务范围内
type HierarchyRepository interface {
	ResolveNames(plan *model.PlanModel) (*HierarchyNames, error)
}

// hierarchyRepository 目标层级仓储实现
type hierarchyRepository struct {
	db *gorm.DB
}

// NewHierarchyRepository 创建目标层级仓储
func NewHierarchyRepository(db *gorm.DB) HierarchyRepository {
	return &hierarchyRepository{db: db}
}

// ResolveNames 解析计划引用的各级名称
// 缺失的引用解析为空串而不是报错,展示层自行决定如何兜底
func (r *hierarchyRepository) ResolveNames(plan *model.PlanModel) (*HierarchyNames, error) {
	names := &HierarchyNames{}

	var department model.DepartmentModel
	if err := r.db.Where("id = ?", plan.DepartmentID).First(&department).Error; err == nil {
		names.Department = department.Name
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var goal model.GoalModel
	if err := r.db.Where("id = ?", plan.GoalID).First(&goal).Error; err == nil {
		names.Goal = goal.Name
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var objective model.ObjectiveModel
	if err := r.db.Where("id = ?", plan.ObjectiveID).First(&objective).Error; err == nil {
		names.Objective = objective.Name
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var specificObjective model.SpecificObjectiveModel
	if err := r.db.Where("id = ?", plan.SpecificObjectiveID).First(&specificObjective).Error; err == nil {
		names.SpecificObjective = specificObjective.Name
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var detail model.SpecificObjectiveDetailModel
	if err := r.db.Where("id = ?", plan.SpecificObjectiveDetailID).First(&detail).Error; err == nil {
		names.SpecificObjectiveDetail = detail.Name
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return names, nil
}
