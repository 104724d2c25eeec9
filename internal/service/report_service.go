package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mautops/planflow-gin/internal/metrics"
	"github.com/mautops/planflow-gin/internal/model"
	"github.com/mautops/planflow-gin/internal/repository"
	"github.com/mautops/planflow-gin/internal/workflow"
	"gorm.io/gorm"
)

// ReportService 进度报告服务接口
type ReportService interface {
	CreateReport(ctx context.Context, planID string, callerID string, req *CreateReportRequest) (*ReportView, error)
	ListReports(planID string) ([]*ReportView, error)
}

// CreateReportRequest 创建进度报告请求
type CreateReportRequest struct {
	Content  string `json:"content" binding:"required" example:"Completed phase one deliverables"` // 报告内容
	Progress int    `json:"progress" binding:"min=0,max=100" example:"45"`                         // 进度百分比
}

// ReportView 进度报告展示视图
type ReportView struct {
	ReportID      string `json:"report_id"`
	PlanID        string `json:"plan_id"`
	CreatedByName string `json:"created_by_name"`
	Content       string `json:"content"`
	Progress      int    `json:"progress"`
	CreatedAt     string `json:"created_at"`
}

// reportService 进度报告服务实现
type reportService struct {
	planRepo    repository.PlanRepository
	reportRepo  repository.ReportRepository
	userRepo    repository.UserRepository
	auditLogSvc AuditLogService
}

// NewReportService 创建进度报告服务
func NewReportService(db *gorm.DB, auditLogSvc AuditLogService) ReportService {
	return &reportService{
		planRepo:    repository.NewPlanRepository(db),
		reportRepo:  repository.NewReportRepository(db),
		userRepo:    repository.NewUserRepository(db),
		auditLogSvc: auditLogSvc,
	}
}

// CreateReport 为计划创建进度报告
// 只有报告开关处于 active 的计划才能提交报告
func (s *reportService) CreateReport(ctx context.Context, planID string, callerID string, req *CreateReportRequest) (*ReportView, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, fmt.Errorf("report content is required")
	}
	if req.Progress < 0 || req.Progress > 100 {
		return nil, fmt.Errorf("progress must be between 0 and 100")
	}

	plan, err := s.planRepo.FindByID(planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, workflow.ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}
	if plan.Reporting != model.ReportingActive {
		return nil, workflow.ErrReportingInactive
	}

	caller, err := s.userRepo.FindByID(callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, workflow.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	report := &model.ReportModel{
		ID:              uuid.New().String(),
		PlanID:          plan.ID,
		CreatedByUserID: caller.ID,
		CreatedByName:   caller.Name,
		Content:         content,
		Progress:        req.Progress,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	if err := s.reportRepo.Save(report); err != nil {
		return nil, fmt.Errorf("failed to save report: %w", err)
	}

	metrics.RecordReportCreated()

	// 记录审计日志,失败只记录不阻断
	if s.auditLogSvc != nil {
		_ = s.auditLogSvc.RecordAction(ctx, callerID, "create_report", "report", report.ID, map[string]interface{}{
			"plan_id":  plan.ID,
			"progress": req.Progress,
		})
	}

	return toReportView(report), nil
}

// ListReports 列出计划的全部进度报告
func (s *reportService) ListReports(planID string) ([]*ReportView, error) {
	if _, err := s.planRepo.FindByID(planID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, workflow.ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}

	reports, err := s.reportRepo.FindByPlanID(planID)
	if err != nil {
		return nil, fmt.Errorf("failed to load reports: %w", err)
	}

	views := make([]*ReportView, 0, len(reports))
	for _, r := range reports {
		views = append(views, toReportView(r))
	}

	return views, nil
}

// toReportView 转换报告为展示视图
func toReportView(r *model.ReportModel) *ReportView {
	return &ReportView{
		ReportID:      r.ID,
		PlanID:        r.PlanID,
		CreatedByName: r.CreatedByName,
		Content:       r.Content,
		Progress:      r.Progress,
		CreatedAt:     r.CreatedAt.Format(timeFormat),
	}
}
