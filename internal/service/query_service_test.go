package service

import (
	"context"
	"testing"

	"github.com/mautops/planflow-gin/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApprovalHistoryAccess(t *testing.T) {
	db := setupServiceDB(t)
	seedWorkflowData(t, db)
	planSvc := newTestPlanService(db)
	querySvc := NewQueryService(db)

	plan := submitPlanForTest(t, planSvc)

	// 创建人可以查看自己计划的历史
	result, err := querySvc.ApprovalHistory(plan.ID, &workflow.Actor{UserID: "user-staff", Role: workflow.RoleStaff})
	require.NoError(t, err)
	assert.Equal(t, plan.ID, result.PlanID)
	assert.Equal(t, 1, result.TotalSteps)

	// 其他普通员工不行
	_, err = querySvc.ApprovalHistory(plan.ID, &workflow.Actor{UserID: "user-other", Role: workflow.RoleStaff})
	assert.ErrorIs(t, err, workflow.ErrAccessDenied)

	// 特权角色可以查看任意计划
	_, err = querySvc.ApprovalHistory(plan.ID, &workflow.Actor{UserID: "user-gm", Role: workflow.RoleGeneralManager})
	require.NoError(t, err)

	_, err = querySvc.ApprovalHistory("no-such-plan", &workflow.Actor{UserID: "user-gm", Role: workflow.RoleGeneralManager})
	assert.ErrorIs(t, err, workflow.ErrPlanNotFound)
}

func TestApprovalHistoryOrderingAndDefaults(t *testing.T) {
	db := setupServiceDB(t)
	seedWorkflowData(t, db)
	planSvc := newTestPlanService(db)
	querySvc := NewQueryService(db)
	ctx := context.Background()

	plan := submitPlanForTest(t, planSvc)

	// 主管无意见批准,总经理带意见批准
	_, err := planSvc.Decide(ctx, plan.ID, "user-sup", &DecisionRequest{Status: "Approved"})
	require.NoError(t, err)
	_, err = planSvc.Decide(ctx, plan.ID, "user-gm", &DecisionRequest{Status: "Approved", Comment: "well planned"})
	require.NoError(t, err)

	result, err := querySvc.ApprovalHistory(plan.ID, &workflow.Actor{UserID: "user-staff", Role: workflow.RoleStaff})
	require.NoError(t, err)
	require.Equal(t, 3, result.TotalSteps)

	// 按步序号升序,且恰好最后一条是当前步
	for i, e := range result.ApprovalHistory {
		assert.Equal(t, i+1, e.StepNumber)
	}
	assert.True(t, result.ApprovalHistory[2].IsCurrentStep)
	assert.False(t, result.ApprovalHistory[0].IsCurrentStep)

	// 空意见展示兜底值,非空意见原样保留
	assert.Equal(t, "No comment provided", result.ApprovalHistory[1].Comment)
	assert.Equal(t, "well planned", result.ApprovalHistory[2].Comment)

	// 层级显示名称已装配
	require.NotNil(t, result.PlanDetails)
	assert.Equal(t, "Engineering", result.PlanDetails.Department)
	assert.Equal(t, "Digital transformation", result.PlanDetails.Goal)
	assert.Equal(t, "Migrate billing service", result.PlanDetails.SpecificObjectiveDetail)
}

func TestMyPlansHistorySummary(t *testing.T) {
	db := setupServiceDB(t)
	seedWorkflowData(t, db)
	planSvc := newTestPlanService(db)
	querySvc := NewQueryService(db)
	ctx := context.Background()

	first := submitPlanForTest(t, planSvc)
	second := submitPlanForTest(t, planSvc)

	// 第一个计划走到总经理步,第二个被主管拒绝
	_, err := planSvc.Decide(ctx, first.ID, "user-sup", &DecisionRequest{Status: "Approved"})
	require.NoError(t, err)
	_, err = planSvc.Decide(ctx, second.ID, "user-sup", &DecisionRequest{Status: "Declined", Comment: "no budget"})
	require.NoError(t, err)

	result, err := querySvc.MyPlansHistory("user-staff")
	require.NoError(t, err)
	assert.Equal(t, "user-staff", result.UserID)
	require.Equal(t, 2, result.TotalPlans)

	summaries := make(map[string]*ApprovalSummary)
	for _, p := range result.Plans {
		summaries[p.PlanID] = p.ApprovalSummary
	}

	require.Contains(t, summaries, first.ID)
	assert.Equal(t, 2, summaries[first.ID].TotalSteps)
	assert.Equal(t, 1, summaries[first.ID].ApprovedSteps)
	assert.Equal(t, 0, summaries[first.ID].DeclinedSteps)
	assert.Equal(t, "Approved", summaries[first.ID].CurrentStatus)

	require.Contains(t, summaries, second.ID)
	assert.Equal(t, 2, summaries[second.ID].TotalSteps)
	assert.Equal(t, 1, summaries[second.ID].DeclinedSteps)
	assert.Equal(t, "Declined", summaries[second.ID].CurrentStatus)

	// 没有计划的用户返回空列表
	empty, err := querySvc.MyPlansHistory("user-nobody")
	require.NoError(t, err)
	assert.Zero(t, empty.TotalPlans)
	assert.Empty(t, empty.Plans)
}

func TestPendingApprovals(t *testing.T) {
	db := setupServiceDB(t)
	seedWorkflowData(t, db)
	planSvc := newTestPlanService(db)
	querySvc := NewQueryService(db)
	ctx := context.Background()

	plan := submitPlanForTest(t, planSvc)

	pending, err := querySvc.PendingApprovals("user-sup")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, plan.ID, pending[0].PlanID)
	assert.Equal(t, "supervisor", pending[0].ApproverRole)

	// 批准后主管队列清空,总经理队列出现
	_, err = planSvc.Decide(ctx, plan.ID, "user-sup", &DecisionRequest{Status: "Approved"})
	require.NoError(t, err)

	pending, err = querySvc.PendingApprovals("user-sup")
	require.NoError(t, err)
	assert.Empty(t, pending)

	pending, err = querySvc.PendingApprovals("user-gm")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "general_manager", pending[0].ApproverRole)
}

func TestListPlansFilterAndSort(t *testing.T) {
	db := setupServiceDB(t)
	seedWorkflowData(t, db)
	planSvc := newTestPlanService(db)
	querySvc := NewQueryService(db)
	ctx := context.Background()

	first := submitPlanForTest(t, planSvc)
	second := submitPlanForTest(t, planSvc)
	_, err := planSvc.Decide(ctx, second.ID, "user-sup", &DecisionRequest{Status: "Declined"})
	require.NoError(t, err)

	status := "Pending"
	plans, total, err := querySvc.ListPlans(&ListPlansFilter{Status: &status})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, plans, 1)
	assert.Equal(t, first.ID, plans[0].PlanID)

	// 分页
	plans, total, err = querySvc.ListPlans(&ListPlansFilter{Page: 1, PageSize: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, plans, 1)

	// 非白名单排序字段被拒绝
	_, _, err = querySvc.ListPlans(&ListPlansFilter{SortBy: "status; DROP TABLE plans"})
	assert.Error(t, err)

	_, _, err = querySvc.ListPlans(&ListPlansFilter{Order: "sideways"})
	assert.Error(t, err)
}

func TestGetPlan(t *testing.T) {
	db := setupServiceDB(t)
	seedWorkflowData(t, db)
	planSvc := newTestPlanService(db)
	querySvc := NewQueryService(db)

	plan := submitPlanForTest(t, planSvc)

	got, err := querySvc.GetPlan(plan.ID)
	require.NoError(t, err)
	assert.Equal(t, plan.ID, got.PlanID)
	assert.Equal(t, "user-staff", got.CreatorID)
	require.NotNil(t, got.PlanDetails)
	assert.Equal(t, "Engineering", got.PlanDetails.Department)

	_, err = querySvc.GetPlan("no-such-plan")
	assert.ErrorIs(t, err, workflow.ErrPlanNotFound)
}
