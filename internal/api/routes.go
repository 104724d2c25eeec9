package api

import (
	"github.com/gin-gonic/gin"
	"github.com/mautops/planflow-gin/internal/auth"
	"github.com/mautops/planflow-gin/internal/config"
	"github.com/mautops/planflow-gin/internal/repository"
	"github.com/mautops/planflow-gin/internal/service"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "github.com/mautops/planflow-gin/docs" // 导入生成的 docs 包
)

// RouterDeps 路由依赖
type RouterDeps struct {
	Config        *config.Config
	DB            *gorm.DB
	Validator     *auth.KeycloakTokenValidator
	PlanService   service.PlanService
	QueryService  service.QueryService
	ReportService service.ReportService
}

// SetupRoutes 配置路由
func SetupRoutes(deps *RouterDeps) *gin.Engine {
	router := gin.Default()

	// 中间件
	router.Use(RequestIDMiddleware())
	router.Use(RequestLogMiddleware())
	router.Use(SecurityHeadersMiddleware())
	router.Use(ErrorHandlerMiddleware())

	if deps.Config != nil && len(deps.Config.CORS.AllowedOrigins) > 0 {
		router.Use(CORSMiddleware(deps.Config.CORS.AllowedOrigins))
	}
	if deps.Config != nil && deps.Config.RateLimit.Enabled {
		router.Use(RateLimitMiddleware(deps.Config.RateLimit.RPS, deps.Config.RateLimit.Burst))
	}

	// 健康检查
	healthController := NewHealthController(deps.DB)
	router.GET("/health", healthController.Check)

	// Prometheus 指标端点
	router.GET("/metrics", MetricsHandler)

	// 版本信息
	router.GET("/version", VersionHandler)

	// Swagger UI 路由
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler,
		ginSwagger.URL("http://localhost:8080/swagger/doc.json"),
	))

	planController := NewPlanController(deps.PlanService, deps.QueryService)
	queryController := NewQueryController(deps.QueryService, repository.NewUserRepository(deps.DB))
	reportController := NewReportController(deps.ReportService)

	// API v1 路由组,全部要求认证
	v1 := router.Group("/api/v1")
	if deps.Validator != nil {
		v1.Use(auth.KeycloakAuthMiddleware(deps.Validator))
	}
	{
		// 计划管理路由
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

		// 审批历史查询路由
		v1.GET("/approval-history/:id", queryController.ApprovalHistory)
		v1.GET("/my-plans-history", queryController.MyPlansHistory)
		v1.GET("/pending-approvals", queryController.PendingApprovals)
	}

	// 未匹配路由返回 JSON 404
	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, ErrorResponse{
			Code:    404,
			Message: "route not found",
		})
	})

	return router
}
