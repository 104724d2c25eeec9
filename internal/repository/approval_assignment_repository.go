package repository

import (
	"github.com/mautops/planflow-gin/internal/model"
	"gorm.io/gorm"
)

// ApprovalAssignmentRepository 审批指派仓储接口
type ApprovalAssignmentRepository interface {
	Save(assignment *model.ApprovalAssignmentModel) error
	FindByPlanID(planID string) ([]*model.ApprovalAssignmentModel, error)
	FindPendingByApprover(approverID string) ([]*model.ApprovalAssignmentModel, error)
	FindAllOrdered() ([]*model.ApprovalAssignmentModel, error)
}

// approvalAssignmentRepository 审批指派仓储实现
type approvalAssignmentRepository struct {
	db *gorm.DB
}

// NewApprovalAssignmentRepository 创建审批指派仓储
func NewApprovalAssignmentRepository(db *gorm.DB) ApprovalAssignmentRepository {
	return &approvalAssignmentRepository{db: db}
}

// Save 保存审批指派
func (r *approvalAssignmentRepository) Save(assignment *model.ApprovalAssignmentModel) error {
	return r.db.Save(assignment).Error
}

// FindByPlanID 查找计划的全部指派,按创建时间升序
func (r *approvalAssignmentRepository) FindByPlanID(planID string) ([]*model.ApprovalAssignmentModel, error) {
	var assignments []*model.ApprovalAssignmentModel
	err := r.db.Where("plan_id = ?", planID).Order("created_at ASC").Find(&assignments).Error
	return assignments, err
}

// FindPendingByApprover 查找审批人名下待决的指派(审批收件箱)
func (r *approvalAssignmentRepository) FindPendingByApprover(approverID string) ([]*model.ApprovalAssignmentModel, error) {
	var assignments []*model.ApprovalAssignmentModel
	err := r.db.Where("approver_id = ? AND status = ?", approverID, model.PlanStatusPending).
		Order("created_at ASC").
		Find(&assignments).Error
	return assignments, err
}

// FindAllOrdered 返回全部指派,按计划分组、更新时间升序(回填用)
func (r *approvalAssignmentRepository) FindAllOrdered() ([]*model.ApprovalAssignmentModel, error) {
	var assignments []*model.ApprovalAssignmentModel
	err := r.db.Order("plan_id ASC, updated_at ASC, created_at ASC").Find(&assignments).Error
	return assignments, err
}
