package container

import (
	"fmt"
	"time"

	"github.com/mautops/planflow-gin/internal/auth"
	"github.com/mautops/planflow-gin/internal/config"
	"github.com/mautops/planflow-gin/internal/database"
	"github.com/mautops/planflow-gin/internal/metrics"
	"github.com/mautops/planflow-gin/internal/repository"
	"github.com/mautops/planflow-gin/internal/service"
	"github.com/mautops/planflow-gin/internal/workflow"
	"gorm.io/gorm"
)

// Container 依赖注入容器
// 管理所有应用依赖,包括数据库、工作流引擎、服务等
type Container struct {
	db                *gorm.DB
	engine            *workflow.Engine
	planService       service.PlanService
	queryService      service.QueryService
	reportService     service.ReportService
	auditLogService   service.AuditLogService
	keycloakValidator *auth.KeycloakTokenValidator
	collector         *metrics.Collector
}

// NewContainer 创建依赖注入容器
// 根据配置初始化所有依赖组件
func NewContainer(cfg *config.Config) (*Container, error) {
	// 1. 初始化数据库（带重试机制）
	// 默认重试 3 次,初始间隔 1 秒,指数退避
	db, err := database.ConnectWithRetry(cfg.Database, 3, time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// 执行数据库迁移
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	if err := database.CreateIndexes(db); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	// 2. 初始化工作流引擎
	engine := workflow.NewEngine(db)

	// 3. 初始化服务层
	auditLogService := service.NewAuditLogService(repository.NewAuditLogRepository(db))
	planService := service.NewPlanService(
		engine,
		repository.NewPlanRepository(db),
		repository.NewUserRepository(db),
		auditLogService,
	)
	queryService := service.NewQueryService(db)
	reportService := service.NewReportService(db, auditLogService)

	// 4. 初始化 Keycloak Token 验证器
	keycloakValidator := auth.NewKeycloakTokenValidator(cfg.Keycloak.Issuer)

	// 5. 初始化指标收集器
	collector := metrics.NewCollector(db, 30*time.Second)
	collector.Start()

	return &Container{
		db:                db,
		engine:            engine,
		planService:       planService,
		queryService:      queryService,
		reportService:     reportService,
		auditLogService:   auditLogService,
		keycloakValidator: keycloakValidator,
		collector:         collector,
	}, nil
}

// DB 获取数据库连接
func (c *Container) DB() *gorm.DB {
	return c.db
}

// Engine 获取工作流引擎
func (c *Container) Engine() *workflow.Engine {
	return c.engine
}

// PlanService 获取计划服务
func (c *Container) PlanService() service.PlanService {
	return c.planService
}

// QueryService 获取查询服务
func (c *Container) QueryService() service.QueryService {
	return c.queryService
}

// ReportService 获取进度报告服务
func (c *Container) ReportService() service.ReportService {
	return c.reportService
}

// AuditLogService 获取审计日志服务
func (c *Container) AuditLogService() service.AuditLogService {
	return c.auditLogService
}

// KeycloakValidator 获取 Keycloak Token 验证器
func (c *Container) KeycloakValidator() *auth.KeycloakTokenValidator {
	return c.keycloakValidator
}

// Close 关闭容器,清理资源
func (c *Container) Close() error {
	if c.collector != nil {
		c.collector.Stop()
	}

	if c.db != nil {
		sqlDB, err := c.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	return nil
}
