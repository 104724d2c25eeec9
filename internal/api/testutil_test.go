package api

import (
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mautops/planflow-gin/internal/database"
	"github.com/mautops/planflow-gin/internal/model"
	"github.com/mautops/planflow-gin/internal/repository"
	"github.com/mautops/planflow-gin/internal/service"
	"github.com/mautops/planflow-gin/internal/workflow"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupAPITest 创建内存数据库、服务与测试路由
// 测试路由用假鉴权中间件代替 Keycloak:从 X-Test-User 头读取用户 ID
func setupAPITest(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	engine := workflow.NewEngine(db)
	planSvc := service.NewPlanService(
		engine,
		repository.NewPlanRepository(db),
		repository.NewUserRepository(db),
		nil,
	)
	querySvc := service.NewQueryService(db)
	reportSvc := service.NewReportService(db, nil)

	planController := NewPlanController(planSvc, querySvc)
	queryController := NewQueryController(querySvc, repository.NewUserRepository(db))
	reportController := NewReportController(reportSvc)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		if user := c.GetHeader("X-Test-User"); user != "" {
			c.Set("user_id", user)
		}
		c.Next()
	})

	v1 := router.Group("/api/v1")
	{
		plans := v1.Group("/plans")
		{
			plans.POST("", planController.Submit)
			plans.GET("", planController.List)
			plans.GET("/:id", planController.Get)
			plans.PUT("/:id/approve", planController.Decide)
			plans.PUT("/:id/reporting", planController.ToggleReporting)
			plans.POST("/:id/reports", reportController.Create)
			plans.GET("/:id/reports", reportController.List)
		}
		v1.GET("/approval-history/:id", queryController.ApprovalHistory)
		v1.GET("/my-plans-history", queryController.MyPlansHistory)
		v1.GET("/pending-approvals", queryController.PendingApprovals)
	}

	return db, router
}

// seedAPIData 写入审批链测试数据
func seedAPIData(t *testing.T, db *gorm.DB) {
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
	}
	for i, u := range users {
		u.CreatedAt = now.Add(time.Duration(i) * time.Second)
		u.UpdatedAt = u.CreatedAt
		require.NoError(t, db.Create(u).Error)
	}
}
