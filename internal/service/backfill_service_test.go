package service

import (
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mautops/planflow-gin/internal/model"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newBackfillLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// seedLegacyPlan 写入一个只有指派记录、没有账本条目的历史计划
func seedLegacyPlan(t *testing.T, db *gorm.DB, planID string) {
	t.Helper()

	now := time.Now()
	require.NoError(t, db.Create(&model.PlanModel{
		ID: planID, CreatorID: "user-staff", EmployeeID: "emp-staff",
		DepartmentID: "dept-1", SupervisorID: "user-sup",
		GoalID: "goal-1", ObjectiveID: "obj-1",
		SpecificObjectiveID: "so-1", SpecificObjectiveDetailID: "sod-1",
		Status: model.PlanStatusApproved, Reporting: model.ReportingDeactivate,
		Year: now.Year(), CreatedAt: now.Add(-48 * time.Hour), UpdatedAt: now,
	}).Error)

	// 主管先批,总经理后批,updated_at 体现决定顺序
	assignments := []*model.ApprovalAssignmentModel{
		{
			ID: uuid.New().String(), PlanID: planID, ApproverID: "user-sup",
			ApproverRole: "supervisor", Status: model.PlanStatusApproved, Comment: "fine",
			CreatedAt: now.Add(-48 * time.Hour), UpdatedAt: now.Add(-24 * time.Hour),
		},
		{
			ID: uuid.New().String(), PlanID: planID, ApproverID: "user-gm",
			ApproverRole: "general_manager", Status: model.PlanStatusApproved,
			CreatedAt: now.Add(-24 * time.Hour), UpdatedAt: now.Add(-12 * time.Hour),
		},
	}
	for _, a := range assignments {
		require.NoError(t, db.Create(a).Error)
	}
}

func TestBackfillCreatesOrderedEntries(t *testing.T) {
	db := setupServiceDB(t)
	seedWorkflowData(t, db)
	seedLegacyPlan(t, db, "legacy-1")

	backfill := NewBackfillService(db, newBackfillLogger())
	result, err := backfill.Run()
	require.NoError(t, err)
	assert.Equal(t, 2, result.AssignmentsScanned)
	assert.Equal(t, 2, result.EntriesCreated)
	assert.Equal(t, 0, result.EntriesSkipped)

	var entries []model.ApprovalHistoryModel
	require.NoError(t, db.Where("plan_id = ?", "legacy-1").Order("step_number ASC").Find(&entries).Error)
	require.Len(t, entries, 2)

	// 步序号按指派更新顺序推断
	assert.Equal(t, 1, entries[0].StepNumber)
	assert.Equal(t, "user-sup", entries[0].ApproverID)
	assert.Equal(t, "Supervisor One", entries[0].ApproverName)
	assert.Equal(t, "fine", entries[0].Comment)
	assert.False(t, entries[0].IsCurrentStep)

	assert.Equal(t, 2, entries[1].StepNumber)
	assert.Equal(t, "user-gm", entries[1].ApproverID)
	// 回填后最后一条成为当前步
	assert.True(t, entries[1].IsCurrentStep)
}

func TestBackfillIsIdempotent(t *testing.T) {
	db := setupServiceDB(t)
	seedWorkflowData(t, db)
	seedLegacyPlan(t, db, "legacy-1")

	backfill := NewBackfillService(db, newBackfillLogger())
	_, err := backfill.Run()
	require.NoError(t, err)

	// 重复执行只跳过,不产生重复条目
	result, err := backfill.Run()
	require.NoError(t, err)
	assert.Equal(t, 0, result.EntriesCreated)
	assert.Equal(t, 2, result.EntriesSkipped)

	var count int64
	require.NoError(t, db.Model(&model.ApprovalHistoryModel{}).Where("plan_id = ?", "legacy-1").Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestBackfillPreservesExistingCurrentStep(t *testing.T) {
	db := setupServiceDB(t)
	seedWorkflowData(t, db)
	seedLegacyPlan(t, db, "legacy-1")

	// 账本已有一条当前步(例如新引擎写入的),回填不得改写
	now := time.Now()
	require.NoError(t, db.Create(&model.ApprovalHistoryModel{
		ID: uuid.New().String(), PlanID: "legacy-1", ApproverID: "user-ceo",
		ApproverName: "CEO One", ApproverRole: "ceo", Status: model.PlanStatusApproved,
		ActionDate: now, StepNumber: 5, IsCurrentStep: true,
		CreatedByUserID: "user-ceo", CreatedByName: "CEO One", CreatedAt: now,
	}).Error)

	backfill := NewBackfillService(db, newBackfillLogger())
	result, err := backfill.Run()
	require.NoError(t, err)
	assert.Equal(t, 2, result.EntriesCreated)

	// 新写入的条目从已有最大步之后继续编号
	var entries []model.ApprovalHistoryModel
	require.NoError(t, db.Where("plan_id = ?", "legacy-1").Order("step_number ASC").Find(&entries).Error)
	require.Len(t, entries, 3)
	assert.Equal(t, 5, entries[0].StepNumber)
	assert.Equal(t, 6, entries[1].StepNumber)
	assert.Equal(t, 7, entries[2].StepNumber)

	// 当前步仍然是原有的那条
	var current []model.ApprovalHistoryModel
	require.NoError(t, db.Where("plan_id = ? AND is_current_step = ?", "legacy-1", true).Find(&current).Error)
	require.Len(t, current, 1)
	assert.Equal(t, 5, current[0].StepNumber)
}

func TestBackfillSkipsMissingPlans(t *testing.T) {
	db := setupServiceDB(t)
	seedWorkflowData(t, db)

	now := time.Now()
	require.NoError(t, db.Create(&model.ApprovalAssignmentModel{
		ID: uuid.New().String(), PlanID: "plan-gone", ApproverID: "user-sup",
		ApproverRole: "supervisor", Status: model.PlanStatusApproved,
		CreatedAt: now, UpdatedAt: now,
	}).Error)

	backfill := NewBackfillService(db, newBackfillLogger())
	result, err := backfill.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, result.PlansMissing)
	assert.Equal(t, 0, result.EntriesCreated)
}
