package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mautops/planflow-gin/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Engine 审批工作流引擎
// 负责推进计划的审批状态并保持账本(approval_workflow_history)与计划状态一致。
// 每次状态迁移(提交/审批)都在单个数据库事务内完成:计划写入、当前步标志清除、
// 账本追加和指派更新要么全部生效要么全部回滚
type Engine struct {
	db *gorm.DB
}

// NewEngine 创建审批工作流引擎
func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// HierarchySelection 计划的目标层级选择
// 四级引用必须全部存在且逐级从属
type HierarchySelection struct {
	GoalID                    string `json:"goal_id" example:"goal-001" binding:"required"`                             // 目标 ID
	ObjectiveID               string `json:"objective_id" example:"obj-001" binding:"required"`                         // 目的 ID
	SpecificObjectiveID       string `json:"specific_objective_id" example:"so-001" binding:"required"`                 // 具体目的 ID
	SpecificObjectiveDetailID string `json:"specific_objective_details_id" example:"sod-001" binding:"required"`        // 具体目的明细 ID
}

// Actor 执行审批操作的用户身份
// 由鉴权中间件从已验证的 token 与用户表解析得到
type Actor struct {
	UserID string
	Name   string
	Role   Role
}

// SubmitPlan 提交计划,启动审批链
// 校验层级引用与创建人归属后,在单个事务内写入计划(Pending)、首个审批指派
// (直属主管)和账本第 1 步。账本写入是提交的必要组成,失败即整体回滚
func (e *Engine) SubmitPlan(ctx context.Context, creatorUserID string, sel *HierarchySelection) (*model.PlanModel, error) {
	if sel == nil || sel.GoalID == "" || sel.ObjectiveID == "" || sel.SpecificObjectiveID == "" || sel.SpecificObjectiveDetailID == "" {
		return nil, fmt.Errorf("%w: incomplete hierarchy selection", ErrMissingReference)
	}

	// 在任何写入前校验四级引用存在且逐级从属
	if err := e.validateHierarchy(ctx, sel); err != nil {
		return nil, err
	}

	// 解析创建人 -> 员工 -> 部门/主管
	creator, err := e.findUserByID(ctx, creatorUserID)
	if err != nil {
		return nil, fmt.Errorf("%w: creator %s", ErrUserNotFound, creatorUserID)
	}
	if creator.EmployeeID == "" {
		return nil, fmt.Errorf("%w: creator %s has no employee record", ErrUserNotFound, creatorUserID)
	}

	var employee model.EmployeeModel
	if err := e.db.WithContext(ctx).Where("id = ?", creator.EmployeeID).First(&employee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: employee %s", ErrUserNotFound, creator.EmployeeID)
		}
		return nil, fmt.Errorf("failed to look up employee: %w", err)
	}
	if employee.SupervisorID == "" {
		return nil, fmt.Errorf("%w: employee %s has no supervisor", ErrUserNotFound, employee.ID)
	}

	// 主管的用户账号,用于指派与账本的固化字段
	var supervisor model.UserModel
	if err := e.db.WithContext(ctx).Where("employee_id = ?", employee.SupervisorID).First(&supervisor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: supervisor employee %s has no user account", ErrUserNotFound, employee.SupervisorID)
		}
		return nil, fmt.Errorf("failed to look up supervisor: %w", err)
	}

	now := time.Now()
	plan := &model.PlanModel{
		ID:                        uuid.New().String(),
		CreatorID:                 creator.ID,
		EmployeeID:                employee.ID,
		DepartmentID:              employee.DepartmentID,
		SupervisorID:              supervisor.ID,
		GoalID:                    sel.GoalID,
		ObjectiveID:               sel.ObjectiveID,
		SpecificObjectiveID:       sel.SpecificObjectiveID,
		SpecificObjectiveDetailID: sel.SpecificObjectiveDetailID,
		Status:                    model.PlanStatusPending,
		Reporting:                 model.ReportingDeactivate,
		Year:                      now.Year(),
		CreatedAt:                 now,
		UpdatedAt:                 now,
	}

	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(plan).Error; err != nil {
			return fmt.Errorf("failed to create plan: %w", err)
		}

		assignment := &model.ApprovalAssignmentModel{
			ID:           uuid.New().String(),
			PlanID:       plan.ID,
			ApproverID:   supervisor.ID,
			ApproverRole: RoleSupervisor.String(),
			Status:       model.PlanStatusPending,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.Create(assignment).Error; err != nil {
			return fmt.Errorf("failed to create approval assignment: %w", err)
		}

		entry := &model.ApprovalHistoryModel{
			ID:              uuid.New().String(),
			PlanID:          plan.ID,
			ApproverID:      supervisor.ID,
			ApproverName:    supervisor.Name,
			ApproverRole:    RoleSupervisor.String(),
			Status:          model.PlanStatusPending,
			ActionDate:      now,
			StepNumber:      1,
			IsCurrentStep:   true,
			CreatedByUserID: creator.ID,
			CreatedByName:   creator.Name,
			CreatedAt:       now,
		}
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("failed to create approval history entry: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return plan, nil
}

// RecordDecision 记录一次审批决定并推进审批链
// 在单个事务内:锁定计划行,校验调用者是当前指派的审批人(或持有该步角色,
// admin 例外放行),清除旧的当前步标志,以 max(step_number)+1 追加账本条目,
// 同步计划状态,然后推进或终止链。已终止(被拒绝或 CEO 已批准)的计划拒绝
// 任何后续决定且不产生新条目
func (e *Engine) RecordDecision(ctx context.Context, planID string, actor *Actor, decision Status, comment string) (*model.ApprovalHistoryModel, error) {
	if actor == nil || actor.UserID == "" {
		return nil, ErrAccessDenied
	}
	if decision != StatusApproved && decision != StatusDeclined {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDecision, decision)
	}

	var entry *model.ApprovalHistoryModel
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 行级锁防止同一计划的并发决定交错(sqlite 无 FOR UPDATE,测试依赖事务串行化)
		planQuery := tx
		if tx.Dialector.Name() == "postgres" {
			planQuery = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var plan model.PlanModel
		if err := planQuery.Where("id = ?", planID).First(&plan).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPlanNotFound
			}
			return fmt.Errorf("failed to load plan: %w", err)
		}

		// 拒绝是终态:之后的任何决定都不再追加账本条目
		if plan.IsDeclined() {
			return ErrWorkflowFinished
		}

		var assignment model.ApprovalAssignmentModel
		if err := tx.Where("plan_id = ? AND status = ?", planID, model.PlanStatusPending).
			Order("created_at DESC").First(&assignment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// 没有待决指派说明链已走完(CEO 已批准)
				return ErrWorkflowFinished
			}
			return fmt.Errorf("failed to load approval assignment: %w", err)
		}

		assignmentRole, err := ParseRole(assignment.ApproverRole)
		if err != nil {
			return fmt.Errorf("corrupt assignment role: %w", err)
		}
		if !e.mayDecide(actor, &assignment, assignmentRole) {
			return ErrNotCurrentApprover
		}

		// 清除本计划全部当前步标志,再插入新条目,保证恰好一条为 true
		if err := tx.Model(&model.ApprovalHistoryModel{}).
			Where("plan_id = ?", planID).
			Update("is_current_step", false).Error; err != nil {
			return fmt.Errorf("failed to clear current step flags: %w", err)
		}

		var maxStep int
		if err := tx.Model(&model.ApprovalHistoryModel{}).
			Where("plan_id = ?", planID).
			Select("COALESCE(MAX(step_number), 0)").
			Scan(&maxStep).Error; err != nil {
			return fmt.Errorf("failed to resolve max step number: %w", err)
		}

		now := time.Now()
		entry = &model.ApprovalHistoryModel{
			ID:              uuid.New().String(),
			PlanID:          planID,
			ApproverID:      actor.UserID,
			ApproverName:    actor.Name,
			ApproverRole:    actor.Role.String(),
			Status:          decision.String(),
			Comment:         comment,
			ActionDate:      now,
			StepNumber:      maxStep + 1,
			IsCurrentStep:   true,
			CreatedByUserID: actor.UserID,
			CreatedByName:   actor.Name,
			CreatedAt:       now,
		}
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("failed to append approval history entry: %w", err)
		}

		// 指派表原地更新为本次决定
		if err := tx.Model(&model.ApprovalAssignmentModel{}).
			Where("id = ?", assignment.ID).
			Updates(map[string]interface{}{
				"status":     decision.String(),
				"comment":    comment,
				"updated_at": now,
			}).Error; err != nil {
			return fmt.Errorf("failed to update approval assignment: %w", err)
		}

		// 计划状态与当前步账本条目保持一致
		planUpdates := map[string]interface{}{
			"status":     decision.String(),
			"updated_at": now,
		}

		if decision == StatusApproved {
			next, ok := assignmentRole.Next()
			if !ok {
				// CEO 批准,链终止,打开进度报告开关
				planUpdates["reporting"] = model.ReportingActive
			} else {
				nextApprover, err := e.findUserByRole(tx, next)
				if err != nil {
					return err
				}
				nextAssignment := &model.ApprovalAssignmentModel{
					ID:           uuid.New().String(),
					PlanID:       planID,
					ApproverID:   nextApprover.ID,
					ApproverRole: next.String(),
					Status:       model.PlanStatusPending,
					CreatedAt:    now,
					UpdatedAt:    now,
				}
				if err := tx.Create(nextAssignment).Error; err != nil {
					return fmt.Errorf("failed to create next approval assignment: %w", err)
				}
			}
		}

		if err := tx.Model(&model.PlanModel{}).
			Where("id = ?", planID).
			Updates(planUpdates).Error; err != nil {
			return fmt.Errorf("failed to update plan status: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// mayDecide 判断调用者是否可以对当前指派作出决定
// 指派的审批人本人总是可以;主管之后的步骤按角色寻址,持有该角色的用户也可以;
// admin 不受限制
func (e *Engine) mayDecide(actor *Actor, assignment *model.ApprovalAssignmentModel, assignmentRole Role) bool {
	if actor.Role == RoleAdmin {
		return true
	}
	if actor.UserID == assignment.ApproverID {
		return true
	}
	return assignmentRole != RoleSupervisor && actor.Role == assignmentRole
}

// validateHierarchy 校验层级引用存在且逐级从属,任何缺失都在写入前失败
func (e *Engine) validateHierarchy(ctx context.Context, sel *HierarchySelection) error {
	var count int64

	if err := e.db.WithContext(ctx).Model(&model.GoalModel{}).
		Where("id = ?", sel.GoalID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to validate goal: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("%w: goal %s", ErrMissingReference, sel.GoalID)
	}

	if err := e.db.WithContext(ctx).Model(&model.ObjectiveModel{}).
		Where("id = ? AND goal_id = ?", sel.ObjectiveID, sel.GoalID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to validate objective: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("%w: objective %s", ErrMissingReference, sel.ObjectiveID)
	}

	if err := e.db.WithContext(ctx).Model(&model.SpecificObjectiveModel{}).
		Where("id = ? AND objective_id = ?", sel.SpecificObjectiveID, sel.ObjectiveID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to validate specific objective: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("%w: specific objective %s", ErrMissingReference, sel.SpecificObjectiveID)
	}

	if err := e.db.WithContext(ctx).Model(&model.SpecificObjectiveDetailModel{}).
		Where("id = ? AND specific_objective_id = ?", sel.SpecificObjectiveDetailID, sel.SpecificObjectiveID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to validate specific objective detail: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("%w: specific objective detail %s", ErrMissingReference, sel.SpecificObjectiveDetailID)
	}

	return nil
}

// findUserByID 按用户 ID 查找用户
func (e *Engine) findUserByID(ctx context.Context, userID string) (*model.UserModel, error) {
	var user model.UserModel
	if err := e.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// findUserByRole 在事务内解析下一步的角色审批人
// 同角色多个用户时取最早创建的,保证解析结果稳定
func (e *Engine) findUserByRole(tx *gorm.DB, role Role) (*model.UserModel, error) {
	var user model.UserModel
	if err := tx.Where("role = ?", role.String()).Order("created_at ASC").First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNoApproverForRole, role)
		}
		return nil, fmt.Errorf("failed to resolve %s approver: %w", role, err)
	}
	return &user, nil
}
