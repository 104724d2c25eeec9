package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mautops/planflow-gin/internal/model"
	"github.com/mautops/planflow-gin/internal/repository"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// BackfillService 历史回填服务
// 将账本问世前只存在于 approvalworkflow 指派表中的审批记录
// 迁移为 approval_workflow_history 账本条目。可重复执行,
// 已回填过的 计划+审批人 组合会被跳过
type BackfillService struct {
	db             *gorm.DB
	planRepo       repository.PlanRepository
	historyRepo    repository.ApprovalHistoryRepository
	assignmentRepo repository.ApprovalAssignmentRepository
	userRepo       repository.UserRepository
	logger         *logrus.Logger
}

// BackfillResult 回填执行结果统计
type BackfillResult struct {
	AssignmentsScanned int `json:"assignments_scanned"`
	EntriesCreated     int `json:"entries_created"`
	EntriesSkipped     int `json:"entries_skipped"`
	PlansMissing       int `json:"plans_missing"`
}

// NewBackfillService 创建历史回填服务
func NewBackfillService(db *gorm.DB, logger *logrus.Logger) *BackfillService {
	return &BackfillService{
		db:             db,
		planRepo:       repository.NewPlanRepository(db),
		historyRepo:    repository.NewApprovalHistoryRepository(db),
		assignmentRepo: repository.NewApprovalAssignmentRepository(db),
		userRepo:       repository.NewUserRepository(db),
		logger:         logger,
	}
}

// Run 执行回填
// 指派按 计划 ID、更新时间 排序读取,步序号按该顺序在每个计划内
// 从已有账本条目的最大步序号之后继续分配。updated_at 即决定发生
// 时间,作为推断原始审批顺序的依据
func (s *BackfillService) Run() (*BackfillResult, error) {
	assignments, err := s.assignmentRepo.FindAllOrdered()
	if err != nil {
		return nil, fmt.Errorf("failed to load assignments: %w", err)
	}

	result := &BackfillResult{AssignmentsScanned: len(assignments)}

	// 每个计划内步序号从已有账本的最大值之后继续
	nextStep := make(map[string]int)
	// 已有当前步的计划不再改写 is_current_step
	hasCurrent := make(map[string]bool)
	// 每个计划最后创建的回填条目,收尾时标记当前步
	lastEntry := make(map[string]*model.ApprovalHistoryModel)

	for _, a := range assignments {
		plan, err := s.planRepo.FindByID(a.PlanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				result.PlansMissing++
				s.logger.WithField("plan_id", a.PlanID).Warn("Skipping assignment for missing plan")
				continue
			}
			return nil, fmt.Errorf("failed to load plan %s: %w", a.PlanID, err)
		}

		if _, ok := nextStep[plan.ID]; !ok {
			maxStep, cur, err := s.planLedgerState(plan.ID)
			if err != nil {
				return nil, err
			}
			nextStep[plan.ID] = maxStep + 1
			hasCurrent[plan.ID] = cur
		}

		exists, err := s.historyRepo.ExistsForPlanAndApprover(plan.ID, a.ApproverID)
		if err != nil {
			return nil, fmt.Errorf("failed to check existing entries: %w", err)
		}
		if exists {
			result.EntriesSkipped++
			continue
		}

		entry := &model.ApprovalHistoryModel{
			ID:              uuid.New().String(),
			PlanID:          plan.ID,
			ApproverID:      a.ApproverID,
			ApproverName:    s.approverName(a.ApproverID),
			ApproverRole:    a.ApproverRole,
			Status:          a.Status,
			Comment:         a.Comment,
			ActionDate:      a.UpdatedAt,
			StepNumber:      nextStep[plan.ID],
			IsCurrentStep:   false,
			CreatedByUserID: a.ApproverID,
			CreatedByName:   s.approverName(a.ApproverID),
			CreatedAt:       time.Now(),
		}
		if err := s.historyRepo.Save(entry); err != nil {
			return nil, fmt.Errorf("failed to save backfilled entry: %w", err)
		}

		nextStep[plan.ID]++
		lastEntry[plan.ID] = entry
		result.EntriesCreated++
	}

	// 收尾:账本中尚无当前步的计划,把最后一条回填条目标记为当前步
	for planID, entry := range lastEntry {
		if hasCurrent[planID] {
			continue
		}
		if err := s.db.Model(&model.ApprovalHistoryModel{}).
			Where("id = ?", entry.ID).
			Update("is_current_step", true).Error; err != nil {
			return nil, fmt.Errorf("failed to mark current step: %w", err)
		}
	}

	s.logger.WithFields(logrus.Fields{
		"scanned": result.AssignmentsScanned,
		"created": result.EntriesCreated,
		"skipped": result.EntriesSkipped,
		"missing": result.PlansMissing,
	}).Info("Backfill completed")

	return result, nil
}

// planLedgerState 读取计划账本的最大步序号及是否已有当前步
func (s *BackfillService) planLedgerState(planID string) (int, bool, error) {
	var maxStep int
	err := s.db.Model(&model.ApprovalHistoryModel{}).
		Where("plan_id = ?", planID).
		Select("COALESCE(MAX(step_number), 0)").
		Scan(&maxStep).Error
	if err != nil {
		return 0, false, fmt.Errorf("failed to read max step for plan %s: %w", planID, err)
	}

	var count int64
	err = s.db.Model(&model.ApprovalHistoryModel{}).
		Where("plan_id = ? AND is_current_step = ?", planID, true).
		Count(&count).Error
	if err != nil {
		return 0, false, fmt.Errorf("failed to check current step for plan %s: %w", planID, err)
	}

	return maxStep, count > 0, nil
}

// approverName 解析审批人显示姓名,缺失时回退为 ID
func (s *BackfillService) approverName(approverID string) string {
	user, err := s.userRepo.FindByID(approverID)
	if err != nil {
		return approverID
	}
	if user.Name != "" {
		return user.Name
	}
	return approverID
}
