package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mautops/planflow-gin/internal/model"
	"github.com/mautops/planflow-gin/internal/repository"
	"github.com/mautops/planflow-gin/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestPlanService(db *gorm.DB) PlanService {
	return NewPlanService(
		workflow.NewEngine(db),
		repository.NewPlanRepository(db),
		repository.NewUserRepository(db),
		NewAuditLogService(repository.NewAuditLogRepository(db)),
	)
}

func submitPlanForTest(t *testing.T, svc PlanService) *model.PlanModel {
	t.Helper()

	plan, err := svc.Submit(context.Background(), "user-staff", &SubmitPlanRequest{
		GoalID:                    "goal-1",
		ObjectiveID:               "obj-1",
		SpecificObjectiveID:       "so-1",
		SpecificObjectiveDetailID: "sod-1",
	})
	require.NoError(t, err)
	return plan
}

func TestPlanServiceSubmitAndDecide(t *testing.T) {
	db := setupServiceDB(t)
	seedWorkflowData(t, db)
	svc := newTestPlanService(db)
	ctx := context.Background()

	plan := submitPlanForTest(t, svc)
	assert.Equal(t, model.PlanStatusPending, plan.Status)

	// 决定接受大小写与别名写法
	entry, err := svc.Decide(ctx, plan.ID, "user-sup", &DecisionRequest{Status: "approve", Comment: "  ok  "})
	require.NoError(t, err)
	assert.Equal(t, 2, entry.StepNumber)
	assert.Equal(t, model.PlanStatusApproved, entry.Status)
	// 意见去除首尾空白后固化
	assert.Equal(t, "ok", entry.Comment)

	// 提交与决定都写入审计日志,详情均为 JSON 对象
	var logs []model.AuditLogModel
	require.NoError(t, db.Find(&logs).Error)
	assert.Len(t, logs, 2)
	for _, log := range logs {
		var details map[string]interface{}
		require.NoError(t, json.Unmarshal(log.Details, &details))
		assert.Equal(t, plan.ID, details["plan_id"])
	}
}

func TestPlanServiceDecideInvalidStatus(t *testing.T) {
	db := setupServiceDB(t)
	seedWorkflowData(t, db)
	svc := newTestPlanService(db)

	plan := submitPlanForTest(t, svc)

	_, err := svc.Decide(context.Background(), plan.ID, "user-sup", &DecisionRequest{Status: "Pending"})
	assert.ErrorIs(t, err, workflow.ErrInvalidDecision)

	_, err = svc.Decide(context.Background(), plan.ID, "user-ghost", &DecisionRequest{Status: "Approved"})
	assert.ErrorIs(t, err, workflow.ErrUserNotFound)
}

func TestPlanServiceToggleReporting(t *testing.T) {
	db := setupServiceDB(t)
	seedWorkflowData(t, db)
	svc := newTestPlanService(db)
	ctx := context.Background()

	plan := submitPlanForTest(t, svc)

	// 普通角色不能切换报告开关
	err := svc.ToggleReporting(ctx, plan.ID, "user-sup", model.ReportingActive)
	assert.ErrorIs(t, err, workflow.ErrAccessDenied)

	// CEO 可以
	require.NoError(t, svc.ToggleReporting(ctx, plan.ID, "user-ceo", model.ReportingActive))

	var got model.PlanModel
	require.NoError(t, db.Where("id = ?", plan.ID).First(&got).Error)
	assert.Equal(t, model.ReportingActive, got.Reporting)

	// 非法取值被拒绝
	err = svc.ToggleReporting(ctx, plan.ID, "user-ceo", "sometimes")
	assert.Error(t, err)

	err = svc.ToggleReporting(ctx, "no-such-plan", "user-admin", model.ReportingActive)
	assert.ErrorIs(t, err, workflow.ErrPlanNotFound)
}
