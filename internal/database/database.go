package database

import (
	"context"
	"fmt"
	"time"

	"github.com/mautops/planflow-gin/internal/config"
	"github.com/mautops/planflow-gin/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// PoolConfig 连接池配置
type PoolConfig struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime int // 秒
	ConnMaxIdleTime int // 秒
}

// BuildDSN 构建 PostgreSQL DSN
func BuildDSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
}

// GetPoolConfig 获取连接池配置
func GetPoolConfig() *PoolConfig {
	return &PoolConfig{
		MaxIdleConns:    10,
		MaxOpenConns:    100,
		ConnMaxLifetime: 3600, // 1 小时
		ConnMaxIdleTime: 600,  // 10 分钟
	}
}

// Connect 连接数据库
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := BuildDSN(cfg)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	// 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	// 从配置中读取连接池参数,未设置的项使用默认值
	poolConfig := GetPoolConfig()
	if cfg.MaxIdleConns > 0 {
		poolConfig.MaxIdleConns = cfg.MaxIdleConns
	}
	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxOpenConns = cfg.MaxOpenConns
	}
	if cfg.ConnMaxLifetime > 0 {
		poolConfig.ConnMaxLifetime = cfg.ConnMaxLifetime
	}
	if cfg.ConnMaxIdleTime > 0 {
		poolConfig.ConnMaxIdleTime = cfg.ConnMaxIdleTime
	}

	sqlDB.SetMaxIdleConns(poolConfig.MaxIdleConns)
	sqlDB.SetMaxOpenConns(poolConfig.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(poolConfig.ConnMaxLifetime) * time.Second)
	sqlDB.SetConnMaxIdleTime(time.Duration(poolConfig.ConnMaxIdleTime) * time.Second)

	return db, nil
}

// ConnectWithRetry 带重试的数据库连接
func ConnectWithRetry(cfg config.DatabaseConfig, maxRetries int, retryInterval time.Duration) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	for i := 0; i < maxRetries; i++ {
		db, err = Connect(cfg)
		if err == nil {
			return db, nil
		}

		// 如果不是最后一次重试,等待后重试
		if i < maxRetries-1 {
			time.Sleep(retryInterval)
			retryInterval *= 2 // 指数退避
		}
	}

	return nil, fmt.Errorf("failed to connect database after %d retries: %w", maxRetries, err)
}

// Migrate 执行数据库迁移
func Migrate(db *gorm.DB) error {
	// 检测数据库类型
	dialector := db.Dialector.Name()

	// SQLite 不支持 jsonb,需要手动创建表
	if dialector == "sqlite" || dialector == "sqlite3" {
		if err := createSQLiteTables(db); err != nil {
			return fmt.Errorf("failed to create SQLite tables: %w", err)
		}
	} else {
		// PostgreSQL 等其他数据库使用 AutoMigrate
		if err := db.AutoMigrate(
			&model.DepartmentModel{},
			&model.EmployeeModel{},
			&model.UserModel{},
			&model.GoalModel{},
			&model.ObjectiveModel{},
			&model.SpecificObjectiveModel{},
			&model.SpecificObjectiveDetailModel{},
			&model.PlanModel{},
			&model.ApprovalAssignmentModel{},
			&model.ApprovalHistoryModel{},
			&model.ReportModel{},
			&model.AuditLogModel{},
		); err != nil {
			return fmt.Errorf("failed to auto migrate: %w", err)
		}
	}

	// 创建索引
	if err := CreateIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// createSQLiteTables 为 SQLite 手动创建表(使用 TEXT 替代 jsonb)
func createSQLiteTables(db *gorm.DB) error {
	statements := []struct {
		table string
		ddl   string
	}{
		{"departments", `
			CREATE TABLE IF NOT EXISTS departments (
				id VARCHAR(64) PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			)
		`},
		{"employees", `
			CREATE TABLE IF NOT EXISTS employees (
				id VARCHAR(64) PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				department_id VARCHAR(64) NOT NULL,
				supervisor_id VARCHAR(64),
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			)
		`},
		{"users", `
			CREATE TABLE IF NOT EXISTS users (
				id VARCHAR(64) PRIMARY KEY,
				username VARCHAR(128) NOT NULL UNIQUE,
				name VARCHAR(255) NOT NULL,
				role VARCHAR(32) NOT NULL,
				employee_id VARCHAR(64),
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			)
		`},
		{"goals", `
			CREATE TABLE IF NOT EXISTS goals (
				id VARCHAR(64) PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				description TEXT,
				year INTEGER,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			)
		`},
		{"objectives", `
			CREATE TABLE IF NOT EXISTS objectives (
				id VARCHAR(64) PRIMARY KEY,
				goal_id VARCHAR(64) NOT NULL,
				name VARCHAR(255) NOT NULL,
				description TEXT,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			)
		`},
		{"specific_objectives", `
			CREATE TABLE IF NOT EXISTS specific_objectives (
				id VARCHAR(64) PRIMARY KEY,
				objective_id VARCHAR(64) NOT NULL,
				name VARCHAR(255) NOT NULL,
				description TEXT,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			)
		`},
		{"specific_objective_details", `
			CREATE TABLE IF NOT EXISTS specific_objective_details (
				id VARCHAR(64) PRIMARY KEY,
				specific_objective_id VARCHAR(64) NOT NULL,
				name VARCHAR(255) NOT NULL,
				description TEXT,
				measurement VARCHAR(64),
				baseline VARCHAR(64),
				target VARCHAR(64),
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			)
		`},
		{"plans", `
			CREATE TABLE IF NOT EXISTS plans (
				id VARCHAR(64) PRIMARY KEY,
				creator_id VARCHAR(64) NOT NULL,
				employee_id VARCHAR(64) NOT NULL,
				department_id VARCHAR(64) NOT NULL,
				supervisor_id VARCHAR(64) NOT NULL,
				goal_id VARCHAR(64) NOT NULL,
				objective_id VARCHAR(64) NOT NULL,
				specific_objective_id VARCHAR(64) NOT NULL,
				specific_objective_detail_id VARCHAR(64) NOT NULL,
				status VARCHAR(32) NOT NULL,
				reporting VARCHAR(32) NOT NULL DEFAULT 'deactivate',
				year INTEGER NOT NULL,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			)
		`},
		{"approvalworkflow", `
			CREATE TABLE IF NOT EXISTS approvalworkflow (
				id VARCHAR(64) PRIMARY KEY,
				plan_id VARCHAR(64) NOT NULL,
				approver_id VARCHAR(64) NOT NULL,
				approver_role VARCHAR(32) NOT NULL,
				status VARCHAR(32) NOT NULL,
				comment TEXT,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			)
		`},
		{"approval_workflow_history", `
			CREATE TABLE IF NOT EXISTS approval_workflow_history (
				id VARCHAR(64) PRIMARY KEY,
				plan_id VARCHAR(64) NOT NULL,
				approver_id VARCHAR(64) NOT NULL,
				approver_name VARCHAR(255) NOT NULL,
				approver_role VARCHAR(32) NOT NULL,
				status VARCHAR(32) NOT NULL,
				comment TEXT,
				action_date DATETIME NOT NULL,
				step_number INTEGER NOT NULL,
				is_current_step BOOLEAN NOT NULL DEFAULT 0,
				created_by_user_id VARCHAR(64) NOT NULL,
				created_by_name VARCHAR(255),
				created_at DATETIME NOT NULL
			)
		`},
		{"reports", `
			CREATE TABLE IF NOT EXISTS reports (
				id VARCHAR(64) PRIMARY KEY,
				plan_id VARCHAR(64) NOT NULL,
				created_by_user_id VARCHAR(64) NOT NULL,
				created_by_name VARCHAR(255),
				content TEXT NOT NULL,
				progress INTEGER NOT NULL DEFAULT 0,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			)
		`},
		{"audit_logs", `
			CREATE TABLE IF NOT EXISTS audit_logs (
				id VARCHAR(64) PRIMARY KEY,
				user_id VARCHAR(64) NOT NULL,
				action VARCHAR(64) NOT NULL,
				resource_type VARCHAR(32) NOT NULL,
				resource_id VARCHAR(64) NOT NULL,
				request_id VARCHAR(64),
				ip VARCHAR(45),
				user_agent TEXT,
				details TEXT,
				created_at DATETIME NOT NULL
			)
		`},
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt.ddl).Error; err != nil {
			return fmt.Errorf("failed to create %s table: %w", stmt.table, err)
		}
	}

	return nil
}

// CreateIndexes 创建数据库索引
func CreateIndexes(db *gorm.DB) error {
	indexes := []struct {
		name string
		ddl  string
	}{
		{"idx_plans_creator_id", "CREATE INDEX IF NOT EXISTS idx_plans_creator_id ON plans(creator_id)"},
		{"idx_plans_status", "CREATE INDEX IF NOT EXISTS idx_plans_status ON plans(status)"},
		{"idx_plans_department_year", "CREATE INDEX IF NOT EXISTS idx_plans_department_year ON plans(department_id, year)"},
		{"idx_workflow_plan_id", "CREATE INDEX IF NOT EXISTS idx_workflow_plan_id ON approvalworkflow(plan_id)"},
		{"idx_workflow_approver_status", "CREATE INDEX IF NOT EXISTS idx_workflow_approver_status ON approvalworkflow(approver_id, status)"},
		{"idx_history_plan_id", "CREATE INDEX IF NOT EXISTS idx_history_plan_id ON approval_workflow_history(plan_id)"},
		{"idx_history_plan_current", "CREATE INDEX IF NOT EXISTS idx_history_plan_current ON approval_workflow_history(plan_id, is_current_step)"},
		{"idx_history_approver_id", "CREATE INDEX IF NOT EXISTS idx_history_approver_id ON approval_workflow_history(approver_id)"},
		{"idx_reports_plan_id", "CREATE INDEX IF NOT EXISTS idx_reports_plan_id ON reports(plan_id)"},
		{"idx_audit_resource", "CREATE INDEX IF NOT EXISTS idx_audit_resource ON audit_logs(resource_type, resource_id)"},
		{"idx_audit_user_id", "CREATE INDEX IF NOT EXISTS idx_audit_user_id ON audit_logs(user_id)"},
		{"idx_users_role", "CREATE INDEX IF NOT EXISTS idx_users_role ON users(role)"},
	}

	for _, idx := range indexes {
		if err := db.Exec(idx.ddl).Error; err != nil {
			return fmt.Errorf("failed to create %s: %w", idx.name, err)
		}
	}

	return nil
}

// CheckHealth 检查数据库连接健康状态
func CheckHealth(db *gorm.DB) bool {
	if db == nil {
		return false
	}

	sqlDB, err := db.DB()
	if err != nil {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return false
	}

	return true
}
