package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mautops/planflow-gin/internal/metrics"
	"github.com/mautops/planflow-gin/internal/model"
	"github.com/mautops/planflow-gin/internal/repository"
	"github.com/mautops/planflow-gin/internal/utils"
	"github.com/mautops/planflow-gin/internal/workflow"
	"gorm.io/gorm"
)

// 审批意见最大长度
const maxCommentLen = 4000

// PlanService 计划服务接口
type PlanService interface {
	Submit(ctx context.Context, creatorUserID string, req *SubmitPlanRequest) (*model.PlanModel, error)
	Decide(ctx context.Context, planID string, actorUserID string, req *DecisionRequest) (*model.ApprovalHistoryModel, error)
	ToggleReporting(ctx context.Context, planID string, actorUserID string, reporting string) error
}

// SubmitPlanRequest 提交计划请求
// @Description 提交计划的请求参数,四级层级引用必须全部给出
type SubmitPlanRequest struct {
	GoalID                    string `json:"goal_id" example:"goal-001" binding:"required"`                      // 目标 ID
	ObjectiveID               string `json:"objective_id" example:"obj-001" binding:"required"`                  // 目的 ID
	SpecificObjectiveID       string `json:"specific_objective_id" example:"so-001" binding:"required"`          // 具体目的 ID
	SpecificObjectiveDetailID string `json:"specific_objective_details_id" example:"sod-001" binding:"required"` // 具体目的明细 ID
}

// DecisionRequest 审批决定请求
// @Description 审批决定的请求参数
type DecisionRequest struct {
	Status  string `json:"status" example:"Approved" binding:"required"` // Approved 或 Declined
	Comment string `json:"comment" example:"ok"`                        // 审批意见(可选)
}

// ReportingRequest 报告开关请求
// @Description 切换计划报告开关的请求参数
type ReportingRequest struct {
	Reporting string `json:"reporting" example:"active" binding:"required"` // active 或 deactivate
}

// planService 计划服务实现
type planService struct {
	engine      *workflow.Engine
	planRepo    repository.PlanRepository
	userRepo    repository.UserRepository
	auditLogSvc AuditLogService
}

// NewPlanService 创建计划服务
func NewPlanService(engine *workflow.Engine, planRepo repository.PlanRepository, userRepo repository.UserRepository, auditLogSvc AuditLogService) PlanService {
	return &planService{
		engine:      engine,
		planRepo:    planRepo,
		userRepo:    userRepo,
		auditLogSvc: auditLogSvc,
	}
}

// Submit 提交计划
func (s *planService) Submit(ctx context.Context, creatorUserID string, req *SubmitPlanRequest) (*model.PlanModel, error) {
	sel := &workflow.HierarchySelection{
		GoalID:                    req.GoalID,
		ObjectiveID:               req.ObjectiveID,
		SpecificObjectiveID:       req.SpecificObjectiveID,
		SpecificObjectiveDetailID: req.SpecificObjectiveDetailID,
	}

	plan, err := s.engine.SubmitPlan(ctx, creatorUserID, sel)
	if err != nil {
		return nil, err
	}

	// 记录业务指标
	metrics.RecordPlanSubmitted()

	// 审计日志尽力而为,不阻断提交
	if s.auditLogSvc != nil {
		details := map[string]interface{}{"plan_id": plan.ID, "goal_id": plan.GoalID}
		_ = s.auditLogSvc.RecordAction(ctx, creatorUserID, "submit", "plan", plan.ID, details)
	}

	return plan, nil
}

// Decide 记录审批决定
func (s *planService) Decide(ctx context.Context, planID string, actorUserID string, req *DecisionRequest) (*model.ApprovalHistoryModel, error) {
	decision, err := workflow.ParseDecision(req.Status)
	if err != nil {
		return nil, err
	}

	actor, err := s.resolveActor(actorUserID)
	if err != nil {
		return nil, err
	}

	comment := utils.TrimComment(req.Comment, maxCommentLen)
	entry, err := s.engine.RecordDecision(ctx, planID, actor, decision, comment)
	if err != nil {
		return nil, err
	}

	metrics.RecordDecision(decision.String())

	if s.auditLogSvc != nil {
		action := "approve"
		if decision == workflow.StatusDeclined {
			action = "decline"
		}
		details := map[string]interface{}{"plan_id": planID, "step_number": entry.StepNumber}
		_ = s.auditLogSvc.RecordAction(ctx, actorUserID, action, "plan", planID, details)
	}

	return entry, nil
}

// ToggleReporting 切换计划的报告开关
func (s *planService) ToggleReporting(ctx context.Context, planID string, actorUserID string, reporting string) error {
	if reporting != model.ReportingActive && reporting != model.ReportingDeactivate {
		return fmt.Errorf("%w: reporting must be active or deactivate", workflow.ErrInvalidDecision)
	}

	actor, err := s.resolveActor(actorUserID)
	if err != nil {
		return err
	}
	if !actor.Role.CanToggleReporting() {
		return workflow.ErrAccessDenied
	}

	plan, err := s.planRepo.FindByID(planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return workflow.ErrPlanNotFound
		}
		return fmt.Errorf("failed to load plan: %w", err)
	}

	plan.Reporting = reporting
	if err := s.planRepo.Save(plan); err != nil {
		return fmt.Errorf("failed to update reporting flag: %w", err)
	}

	if s.auditLogSvc != nil {
		details := map[string]interface{}{"plan_id": planID, "reporting": reporting}
		_ = s.auditLogSvc.RecordAction(ctx, actorUserID, "reporting", "plan", planID, details)
	}

	return nil
}

// resolveActor 根据用户表解析操作者身份
// 角色以用户表为准,token 中的角色声明只用于鉴权中间件
func (s *planService) resolveActor(userID string) (*workflow.Actor, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", workflow.ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	role, err := workflow.ParseRole(user.Role)
	if err != nil {
		return nil, fmt.Errorf("corrupt user role: %w", err)
	}

	return &workflow.Actor{
		UserID: user.ID,
		Name:   user.Name,
		Role:   role,
	}, nil
}
