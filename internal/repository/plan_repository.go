package repository

import (
	"github.com/mautops/planflow-gin/internal/model"
	"gorm.io/gorm"
)

// PlanRepository 计划仓储接口
type PlanRepository interface {
	Save(plan *model.PlanModel) error
	FindByID(id string) (*model.PlanModel, error)
	FindByCreator(creatorID string) ([]*model.PlanModel, error)
	CountByStatus() (map[string]int64, error)
}

// planRepository 计划仓储实现
type planRepository struct {
	db *gorm.DB
}

// NewPlanRepository 创建计划仓储
func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

// Save 保存计划
func (r *planRepository) Save(plan *model.PlanModel) error {
	return r.db.Save(plan).Error
}

// FindByID 根据 ID 查找计划
func (r *planRepository) FindByID(id string) (*model.PlanModel, error) {
	var plan model.PlanModel
	if err := r.db.Where("id = ?", id).First(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

// FindByCreator 查找用户创建的全部计划,按创建时间倒序
func (r *planRepository) FindByCreator(creatorID string) ([]*model.PlanModel, error) {
	var plans []*model.PlanModel
	err := r.db.Where("creator_id = ?", creatorID).Order("created_at DESC").Find(&plans).Error
	return plans, err
}

// CountByStatus 按状态统计计划数量(用于指标采集)
func (r *planRepository) CountByStatus() (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := r.db.Model(&model.PlanModel{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, rr := range rows {
		counts[rr.Status] = rr.Count
	}
	return counts, nil
}
