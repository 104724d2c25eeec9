package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mautops/planflow-gin/internal/service"
	"github.com/mautops/planflow-gin/internal/utils"
)

// PlanController 计划控制器
type PlanController struct {
	planService  service.PlanService
	queryService service.QueryService
}

// NewPlanController 创建计划控制器
func NewPlanController(planService service.PlanService, queryService service.QueryService) *PlanController {
	return &PlanController{
		planService:  planService,
		queryService: queryService,
	}
}

// validatePlanID 验证计划 ID 并返回错误响应（如果无效）
func (c *PlanController) validatePlanID(ctx *gin.Context, id string) bool {
	if err := utils.ValidatePlanID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid plan ID", err.Error())
		return false
	}
	return true
}

// Submit 提交计划
// @Summary      提交计划
// @Description  基于目标层级引用创建计划并启动审批链
// @Tags         计划管理
// @Accept       json
// @Produce      json
// @Param        request body service.SubmitPlanRequest true "计划信息"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /plans [post]
// @Security     BearerAuth
func (c *PlanController) Submit(ctx *gin.Context) {
	userID := ctx.GetString("user_id")
	if userID == "" {
		Error(ctx, http.StatusUnauthorized, "authentication required", "missing user identity")
		return
	}

	var req service.SubmitPlanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	plan, err := c.planService.Submit(ctx.Request.Context(), userID, &req)
	if err != nil {
		handleWorkflowError(ctx, err, "submit plan")
		return
	}

	Success(ctx, gin.H{
		"plan_id": plan.ID,
		"status":  plan.Status,
	})
}

// Decide 审批决定
// @Summary      审批计划
// @Description  当前审批人对计划作出批准或拒绝决定
// @Tags         计划管理
// @Accept       json
// @Produce      json
// @Param        id path string true "计划 ID"
// @Param        request body service.DecisionRequest true "审批决定"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /plans/{id}/approve [put]
// @Security     BearerAuth
func (c *PlanController) Decide(ctx *gin.Context) {
	userID := ctx.GetString("user_id")
	if userID == "" {
		Error(ctx, http.StatusUnauthorized, "authentication required", "missing user identity")
		return
	}

	id := ctx.Param("id")
	if !c.validatePlanID(ctx, id) {
		return
	}

	var req service.DecisionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	entry, err := c.planService.Decide(ctx.Request.Context(), id, userID, &req)
	if err != nil {
		handleWorkflowError(ctx, err, "record decision")
		return
	}

	Success(ctx, gin.H{
		"plan_id":     entry.PlanID,
		"status":      entry.Status,
		"step_number": entry.StepNumber,
	})
}

// ToggleReporting 切换报告开关
// @Summary      切换计划报告开关
// @Description  开启或关闭计划的进度报告提交
// @Tags         计划管理
// @Accept       json
// @Produce      json
// @Param        id path string true "计划 ID"
// @Param        request body service.ReportingRequest true "报告开关"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /plans/{id}/reporting [put]
// @Security     BearerAuth
func (c *PlanController) ToggleReporting(ctx *gin.Context) {
	userID := ctx.GetString("user_id")
	if userID == "" {
		Error(ctx, http.StatusUnauthorized, "authentication required", "missing user identity")
		return
	}

	id := ctx.Param("id")
	if !c.validatePlanID(ctx, id) {
		return
	}

	var req service.ReportingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	if err := c.planService.ToggleReporting(ctx.Request.Context(), id, userID, req.Reporting); err != nil {
		handleWorkflowError(ctx, err, "toggle reporting")
		return
	}

	Success(ctx, gin.H{
		"plan_id":   id,
		"reporting": req.Reporting,
	})
}

// Get 获取计划详情
// @Summary      获取计划详情
// @Description  根据 ID 获取计划及其层级引用的显示名称
// @Tags         计划管理
// @Accept       json
// @Produce      json
// @Param        id path string true "计划 ID"
// @Success      200  {object}  Response
// @Failure      404  {object}  ErrorResponse
// @Router       /plans/{id} [get]
// @Security     BearerAuth
func (c *PlanController) Get(ctx *gin.Context) {
	id := ctx.Param("id")
	if !c.validatePlanID(ctx, id) {
		return
	}

	plan, err := c.queryService.GetPlan(id)
	if err != nil {
		handleWorkflowError(ctx, err, "get plan")
		return
	}

	Success(ctx, plan)
}

// List 列出计划
// @Summary      列出计划
// @Description  按状态、年度、部门、创建人过滤并分页列出计划
// @Tags         计划管理
// @Accept       json
// @Produce      json
// @Param        status query string false "计划状态"
// @Param        year query int false "计划年度"
// @Param        department_id query string false "部门 ID"
// @Param        creator_id query string false "创建人 ID"
// @Param        page query int false "页码"
// @Param        page_size query int false "每页数量"
// @Param        sort_by query string false "排序字段"
// @Param        order query string false "排序方向"
// @Success      200  {object}  PaginatedResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /plans [get]
// @Security     BearerAuth
func (c *PlanController) List(ctx *gin.Context) {
	filter := &service.ListPlansFilter{
		SortBy: ctx.Query("sort_by"),
		Order:  ctx.Query("order"),
	}

	if status := ctx.Query("status"); status != "" {
		filter.Status = &status
	}
	if departmentID := ctx.Query("department_id"); departmentID != "" {
		filter.DepartmentID = &departmentID
	}
	if creatorID := ctx.Query("creator_id"); creatorID != "" {
		filter.CreatorID = &creatorID
	}

	var yearParam struct {
		Year *int `form:"year"`
	}
	if err := ctx.ShouldBindQuery(&yearParam); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid query", err.Error())
		return
	}
	filter.Year = yearParam.Year

	var pageParams struct {
		Page     int `form:"page,default=1"`
		PageSize int `form:"page_size,default=20"`
	}
	if err := ctx.ShouldBindQuery(&pageParams); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid query", err.Error())
		return
	}
	filter.Page = pageParams.Page
	filter.PageSize = pageParams.PageSize

	plans, total, err := c.queryService.ListPlans(filter)
	if err != nil {
		Error(ctx, http.StatusBadRequest, "failed to list plans", err.Error())
		return
	}

	totalPage := int(total) / filter.PageSize
	if int(total)%filter.PageSize > 0 {
		totalPage++
	}

	Paginated(ctx, plans, PaginationInfo{
		Page:      filter.Page,
		PageSize:  filter.PageSize,
		Total:     total,
		TotalPage: totalPage,
	})
}
