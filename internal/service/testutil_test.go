package service

import (
	"testing"
	"time"

	"github.com/mautops/planflow-gin/internal/database"
	"github.com/mautops/planflow-gin/internal/model"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupServiceDB 创建内存数据库并执行迁移
func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	return db
}

// seedWorkflowData 写入完整的审批链测试数据
func seedWorkflowData(t *testing.T, db *gorm.DB) {
	t.Helper()

	now := time.Now()

	require.NoError(t, db.Create(&model.DepartmentModel{
		ID: "dept-1", Name: "Engineering", CreatedAt: now, UpdatedAt: now,
	}).Error)

	require.NoError(t, db.Create(&model.GoalModel{
		ID: "goal-1", Name: "Digital transformation", CreatedAt: now, UpdatedAt: now,
	}).Error)
	require.NoError(t, db.Create(&model.ObjectiveModel{
		ID: "obj-1", GoalID: "goal-1", Name: "Modernize infrastructure", CreatedAt: now, UpdatedAt: now,
	}).Error)
	require.NoError(t, db.Create(&model.SpecificObjectiveModel{
		ID: "so-1", ObjectiveID: "obj-1", Name: "Migrate services", CreatedAt: now, UpdatedAt: now,
	}).Error)
	require.NoError(t, db.Create(&model.SpecificObjectiveDetailModel{
		ID: "sod-1", SpecificObjectiveID: "so-1", Name: "Migrate billing service", CreatedAt: now, UpdatedAt: now,
	}).Error)

	require.NoError(t, db.Create(&model.EmployeeModel{
		ID: "emp-staff", Name: "Staff One", DepartmentID: "dept-1", SupervisorID: "emp-sup",
		CreatedAt: now, UpdatedAt: now,
	}).Error)
	require.NoError(t, db.Create(&model.EmployeeModel{
		ID: "emp-sup", Name: "Supervisor One", DepartmentID: "dept-1",
		CreatedAt: now, UpdatedAt: now,
	}).Error)

	users := []*model.UserModel{
		{ID: "user-staff", Username: "staff1", Name: "Staff One", Role: "staff", EmployeeID: "emp-staff"},
		{ID: "user-sup", Username: "sup1", Name: "Supervisor One", Role: "supervisor", EmployeeID: "emp-sup"},
		{ID: "user-gm", Username: "gm1", Name: "GM One", Role: "general_manager"},
		{ID: "user-ceo", Username: "ceo1", Name: "CEO One", Role: "ceo"},
		{ID: "user-admin", Username: "admin1", Name: "Admin One", Role: "admin"},
	}
	for i, u := range users {
		u.CreatedAt = now.Add(time.Duration(i) * time.Second)
		u.UpdatedAt = u.CreatedAt
		require.NoError(t, db.Create(u).Error)
	}
}
