package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mautops/planflow-gin/internal/model"
	"github.com/mautops/planflow-gin/internal/repository"
	"github.com/mautops/planflow-gin/internal/utils"
	"github.com/mautops/planflow-gin/internal/workflow"
	"gorm.io/gorm"
)

// 空意见的展示兜底值
const defaultComment = "No comment provided"

const timeFormat = "2006-01-02T15:04:05Z07:00"

// QueryService 查询服务接口
// 只读装配计划、层级名称与审批历史,不承载业务逻辑
type QueryService interface {
	ApprovalHistory(planID string, caller *workflow.Actor) (*ApprovalHistoryResult, error)
	MyPlansHistory(userID string) (*MyPlansResult, error)
	PendingApprovals(approverID string) ([]*PendingApproval, error)
	ListPlans(filter *ListPlansFilter) ([]*PlanSummary, int64, error)
	GetPlan(planID string) (*PlanSummary, error)
}

// HistoryEntry 审批历史条目(展示视图)
type HistoryEntry struct {
	HistoryID     string `json:"history_id"`
	ApproverID    string `json:"approver_id"`
	ApproverName  string `json:"approver_name"`
	ApproverRole  string `json:"approver_role"`
	Status        string `json:"status"`
	Comment       string `json:"comment"`
	ActionDate    string `json:"action_date"`
	StepNumber    int    `json:"step_number"`
	IsCurrentStep bool   `json:"is_current_step"`
	CreatedByName string `json:"created_by_name"`
}

// PlanDetails 计划引用的显示名称
type PlanDetails struct {
	Department              string `json:"department"`
	Goal                    string `json:"goal"`
	Objective               string `json:"objective"`
	SpecificObjective       string `json:"specific_objective"`
	SpecificObjectiveDetail string `json:"specific_objective_detail"`
}

// ApprovalHistoryResult 审批历史查询结果
type ApprovalHistoryResult struct {
	PlanID          string          `json:"plan_id"`
	TotalSteps      int             `json:"total_steps"`
	PlanDetails     *PlanDetails    `json:"plan_details"`
	ApprovalHistory []*HistoryEntry `json:"approval_history"`
}

// ApprovalSummary 单个计划的审批进度汇总
type ApprovalSummary struct {
	TotalSteps    int    `json:"total_steps"`
	ApprovedSteps int    `json:"approved_steps"`
	DeclinedSteps int    `json:"declined_steps"`
	CurrentStatus string `json:"current_status"`
}

// PlanWithSummary 计划及其审批汇总
type PlanWithSummary struct {
	PlanID          string           `json:"plan_id"`
	PlanCreatedAt   string           `json:"plan_created_at"`
	PlanStatus      string           `json:"plan_status"`
	PlanDetails     *PlanDetails     `json:"plan_details"`
	ApprovalSummary *ApprovalSummary `json:"approval_summary"`
}

// MyPlansResult 用户计划列表查询结果
type MyPlansResult struct {
	UserID     string             `json:"user_id"`
	TotalPlans int                `json:"total_plans"`
	Plans      []*PlanWithSummary `json:"plans"`
}

// PendingApproval 待决审批(审批收件箱条目)
type PendingApproval struct {
	AssignmentID string       `json:"assignment_id"`
	PlanID       string       `json:"plan_id"`
	ApproverRole string       `json:"approver_role"`
	PlanStatus   string       `json:"plan_status"`
	PlanDetails  *PlanDetails `json:"plan_details"`
	AssignedAt   string       `json:"assigned_at"`
}

// PlanSummary 计划详情(展示视图)
type PlanSummary struct {
	PlanID      string       `json:"plan_id"`
	CreatorID   string       `json:"creator_id"`
	Status      string       `json:"status"`
	Reporting   string       `json:"reporting"`
	Year        int          `json:"year"`
	CreatedAt   string       `json:"created_at"`
	UpdatedAt   string       `json:"updated_at"`
	PlanDetails *PlanDetails `json:"plan_details"`
}

// ListPlansFilter 计划列表查询过滤器
type ListPlansFilter struct {
	Status       *string
	Year         *int
	DepartmentID *string
	CreatorID    *string
	Page         int
	PageSize     int
	SortBy       string
	Order        string
}

// queryService 查询服务实现
type queryService struct {
	db             *gorm.DB
	planRepo       repository.PlanRepository
	historyRepo    repository.ApprovalHistoryRepository
	assignmentRepo repository.ApprovalAssignmentRepository
	hierarchyRepo  repository.HierarchyRepository
}

// NewQueryService 创建查询服务
func NewQueryService(db *gorm.DB) QueryService {
	return &queryService{
		db:             db,
		planRepo:       repository.NewPlanRepository(db),
		historyRepo:    repository.NewApprovalHistoryRepository(db),
		assignmentRepo: repository.NewApprovalAssignmentRepository(db),
		hierarchyRepo:  repository.NewHierarchyRepository(db),
	}
}

// ApprovalHistory 查询计划的完整审批历史
// 调用者必须是计划创建人,或持有可查看任意历史的角色
func (s *queryService) ApprovalHistory(planID string, caller *workflow.Actor) (*ApprovalHistoryResult, error) {
	plan, err := s.planRepo.FindByID(planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, workflow.ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}

	if caller == nil || (caller.UserID != plan.CreatorID && !caller.Role.CanViewAnyHistory()) {
		return nil, workflow.ErrAccessDenied
	}

	entries, err := s.historyRepo.FindByPlanID(planID)
	if err != nil {
		return nil, fmt.Errorf("failed to load approval history: %w", err)
	}
	// 计划创建即写入首个账本条目,空历史只在数据异常时出现,防御性检查
	if len(entries) == 0 {
		return nil, workflow.ErrNoHistory
	}

	details, err := s.planDetails(plan)
	if err != nil {
		return nil, err
	}

	result := &ApprovalHistoryResult{
		PlanID:          planID,
		TotalSteps:      len(entries),
		PlanDetails:     details,
		ApprovalHistory: make([]*HistoryEntry, 0, len(entries)),
	}
	for _, e := range entries {
		result.ApprovalHistory = append(result.ApprovalHistory, toHistoryEntry(e))
	}

	return result, nil
}

// MyPlansHistory 查询用户创建的全部计划及审批进度汇总
func (s *queryService) MyPlansHistory(userID string) (*MyPlansResult, error) {
	plans, err := s.planRepo.FindByCreator(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load plans: %w", err)
	}

	result := &MyPlansResult{
		UserID:     userID,
		TotalPlans: len(plans),
		Plans:      make([]*PlanWithSummary, 0, len(plans)),
	}

	for _, plan := range plans {
		entries, err := s.historyRepo.FindByPlanID(plan.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load approval history: %w", err)
		}

		summary := &ApprovalSummary{
			TotalSteps: len(entries),
			// 没有条目被标记为当前步时兜底为 Pending
			CurrentStatus: model.PlanStatusPending,
		}
		for _, e := range entries {
			switch e.Status {
			case model.PlanStatusApproved:
				summary.ApprovedSteps++
			case model.PlanStatusDeclined:
				summary.DeclinedSteps++
			}
			if e.IsCurrentStep {
				summary.CurrentStatus = e.Status
			}
		}

		details, err := s.planDetails(plan)
		if err != nil {
			return nil, err
		}

		result.Plans = append(result.Plans, &PlanWithSummary{
			PlanID:          plan.ID,
			PlanCreatedAt:   plan.CreatedAt.Format(timeFormat),
			PlanStatus:      plan.Status,
			PlanDetails:     details,
			ApprovalSummary: summary,
		})
	}

	return result, nil
}

// PendingApprovals 查询审批人名下待决的指派
func (s *queryService) PendingApprovals(approverID string) ([]*PendingApproval, error) {
	assignments, err := s.assignmentRepo.FindPendingByApprover(approverID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending assignments: %w", err)
	}

	pending := make([]*PendingApproval, 0, len(assignments))
	for _, a := range assignments {
		item := &PendingApproval{
			AssignmentID: a.ID,
			PlanID:       a.PlanID,
			ApproverRole: a.ApproverRole,
			AssignedAt:   a.CreatedAt.Format(timeFormat),
		}

		if plan, err := s.planRepo.FindByID(a.PlanID); err == nil {
			item.PlanStatus = plan.Status
			if details, err := s.planDetails(plan); err == nil {
				item.PlanDetails = details
			}
		}

		pending = append(pending, item)
	}

	return pending, nil
}

// ListPlans 列出计划
func (s *queryService) ListPlans(filter *ListPlansFilter) ([]*PlanSummary, int64, error) {
	query := s.db.Model(&model.PlanModel{})

	// 应用过滤条件
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Year != nil {
		query = query.Where("year = ?", *filter.Year)
	}
	if filter.DepartmentID != nil {
		query = query.Where("department_id = ?", *filter.DepartmentID)
	}
	if filter.CreatorID != nil {
		query = query.Where("creator_id = ?", *filter.CreatorID)
	}

	// 获取总数
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count plans: %w", err)
	}

	// 应用排序(验证排序字段,防止 SQL 注入)
	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	if err := utils.ValidateSortField(sortBy); err != nil {
		return nil, 0, fmt.Errorf("invalid sort field: %w", err)
	}

	order := filter.Order
	if order == "" {
		order = "desc"
	}
	if err := utils.ValidateSortOrder(order); err != nil {
		return nil, 0, fmt.Errorf("invalid sort order: %w", err)
	}
	query = query.Order(fmt.Sprintf("%s %s", sortBy, strings.ToUpper(order)))

	// 应用分页
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	query = query.Offset((page - 1) * pageSize).Limit(pageSize)

	var models []*model.PlanModel
	if err := query.Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to query plans: %w", err)
	}

	plans := make([]*PlanSummary, 0, len(models))
	for _, pm := range models {
		summary, err := s.toPlanSummary(pm)
		if err != nil {
			return nil, 0, err
		}
		plans = append(plans, summary)
	}

	return plans, total, nil
}

// GetPlan 获取计划详情
func (s *queryService) GetPlan(planID string) (*PlanSummary, error) {
	plan, err := s.planRepo.FindByID(planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, workflow.ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}

	return s.toPlanSummary(plan)
}

// planDetails 解析计划引用的显示名称
func (s *queryService) planDetails(plan *model.PlanModel) (*PlanDetails, error) {
	names, err := s.hierarchyRepo.ResolveNames(plan)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve hierarchy names: %w", err)
	}

	return &PlanDetails{
		Department:              names.Department,
		Goal:                    names.Goal,
		Objective:               names.Objective,
		SpecificObjective:       names.SpecificObjective,
		SpecificObjectiveDetail: names.SpecificObjectiveDetail,
	}, nil
}

// toPlanSummary 转换计划为展示视图
func (s *queryService) toPlanSummary(plan *model.PlanModel) (*PlanSummary, error) {
	details, err := s.planDetails(plan)
	if err != nil {
		return nil, err
	}

	return &PlanSummary{
		PlanID:      plan.ID,
		CreatorID:   plan.CreatorID,
		Status:      plan.Status,
		Reporting:   plan.Reporting,
		Year:        plan.Year,
		CreatedAt:   plan.CreatedAt.Format(timeFormat),
		UpdatedAt:   plan.UpdatedAt.Format(timeFormat),
		PlanDetails: details,
	}, nil
}

// toHistoryEntry 转换账本条目为展示视图,空意见兜底
func toHistoryEntry(e *model.ApprovalHistoryModel) *HistoryEntry {
	comment := e.Comment
	if comment == "" {
		comment = defaultComment
	}

	return &HistoryEntry{
		HistoryID:     e.ID,
		ApproverID:    e.ApproverID,
		ApproverName:  e.ApproverName,
		ApproverRole:  e.ApproverRole,
		Status:        e.Status,
		Comment:       comment,
		ActionDate:    e.ActionDate.Format(timeFormat),
		StepNumber:    e.StepNumber,
		IsCurrentStep: e.IsCurrentStep,
		CreatedByName: e.CreatedByName,
	}
}
