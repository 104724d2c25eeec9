package repository

import (
	"github.com/mautops/planflow-gin/internal/model"
	"gorm.io/gorm"
)

// ReportRepository 进度报告仓储接口
type ReportRepository interface {
	Save(report *model.ReportModel) error
	FindByPlanID(planID string) ([]*model.ReportModel, error)
}

// reportRepository 进度报告仓储实现
type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository 创建进度报告仓储
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

// Save 保存进度报告
func (r *reportRepository) Save(report *model.ReportModel) error {
	return r.db.Save(report).Error
}

// FindByPlanID 查找计划的全部进度报告,按创建时间升序
func (r *reportRepository) FindByPlanID(planID string) ([]*model.ReportModel, error) {
	var reports []*model.ReportModel
	err := r.db.Where("plan_id = ?", planID).Order("created_at ASC").Find(&reports).Error
	return reports, err
}
