package repository

import (
	"github.com/mautops/planflow-gin/internal/model"
	"gorm.io/gorm"
)

// ApprovalHistoryRepository 审批历史仓储接口
type ApprovalHistoryRepository interface {
	Save(entry *model.ApprovalHistoryModel) error
	FindByPlanID(planID string) ([]*model.ApprovalHistoryModel, error)
	FindCurrentStep(planID string) (*model.ApprovalHistoryModel, error)
	ExistsForPlanAndApprover(planID, approverID string) (bool, error)
}

// approvalHistoryRepository 审批历史仓储实现
type approvalHistoryRepository struct {
	db *gorm.DB
}

// NewApprovalHistoryRepository 创建审批历史仓储
func NewApprovalHistoryRepository(db *gorm.DB) ApprovalHistoryRepository {
	return &approvalHistoryRepository{db: db}
}

// Save 保存审批历史条目
func (r *approvalHistoryRepository) Save(entry *model.ApprovalHistoryModel) error {
	return r.db.Save(entry).Error
}

// FindByPlanID 查找计划的全部审批历史,按步号与操作时间升序
func (r *approvalHistoryRepository) FindByPlanID(planID string) ([]*model.ApprovalHistoryModel, error) {
	var entries []*model.ApprovalHistoryModel
	err := r.db.Where("plan_id = ?", planID).
		Order("step_number ASC, action_date ASC").
		Find(&entries).Error
	return entries, err
}

// FindCurrentStep 查找计划的当前步条目,没有时返回 gorm.ErrRecordNotFound
func (r *approvalHistoryRepository) FindCurrentStep(planID string) (*model.ApprovalHistoryModel, error) {
	var entry model.ApprovalHistoryModel
	if err := r.db.Where("plan_id = ? AND is_current_step = ?", planID, true).
		First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// ExistsForPlanAndApprover 判断计划+审批人组合是否已有账本条目(回填守卫)
func (r *approvalHistoryRepository) ExistsForPlanAndApprover(planID, approverID string) (bool, error) {
	var count int64
	err := r.db.Model(&model.ApprovalHistoryModel{}).
		Where("plan_id = ? AND approver_id = ?", planID, approverID).
		Count(&count).Error
	return count > 0, err
}
