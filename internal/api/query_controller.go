package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mautops/planflow-gin/internal/repository"
	"github.com/mautops/planflow-gin/internal/service"
	"github.com/mautops/planflow-gin/internal/workflow"
	"gorm.io/gorm"
)

// 历史查询端点的稳定错误标识,消费方按标识分支处理
const (
	errCodeTokenMissing   = "TOKEN_MISSING"
	errCodePlanIDMissing  = "PLAN_ID_MISSING"
	errCodePlanNotFound   = "PLAN_NOT_FOUND"
	errCodeAccessDenied   = "ACCESS_DENIED"
	errCodeNoHistoryFound = "NO_HISTORY_FOUND"
	errCodeDBError        = "DB_ERROR"
	errCodeInternalError  = "INTERNAL_ERROR"
)

// QueryController 审批历史查询控制器
type QueryController struct {
	queryService service.QueryService
	userRepo     repository.UserRepository
}

// NewQueryController 创建查询控制器
func NewQueryController(queryService service.QueryService, userRepo repository.UserRepository) *QueryController {
	return &QueryController{
		queryService: queryService,
		userRepo:     userRepo,
	}
}

// caller 解析当前调用者身份与角色
func (c *QueryController) caller(ctx *gin.Context) (*workflow.Actor, error) {
	userID := ctx.GetString("user_id")
	if userID == "" {
		return nil, workflow.ErrAccessDenied
	}

	user, err := c.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 身份有效但无本地用户记录,按无角色的普通调用者处理
			return &workflow.Actor{UserID: userID, Role: workflow.RoleStaff}, nil
		}
		return nil, err
	}

	role, err := workflow.ParseRole(user.Role)
	if err != nil {
		role = workflow.RoleStaff
	}

	return &workflow.Actor{UserID: user.ID, Name: user.Name, Role: role}, nil
}

// ApprovalHistory 查询计划审批历史
// @Summary      查询计划审批历史
// @Description  返回计划的完整审批账本,按步序号升序排列
// @Tags         审批历史
// @Accept       json
// @Produce      json
// @Param        id path string true "计划 ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]interface{}
// @Failure      403  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /approval-history/{id} [get]
// @Security     BearerAuth
func (c *QueryController) ApprovalHistory(ctx *gin.Context) {
	if ctx.GetString("user_id") == "" {
		ErrorWithCode(ctx, http.StatusUnauthorized, errCodeTokenMissing, "authentication token is required")
		return
	}

	planID := ctx.Param("id")
	if planID == "" {
		ErrorWithCode(ctx, http.StatusBadRequest, errCodePlanIDMissing, "plan ID is required")
		return
	}

	actor, err := c.caller(ctx)
	if err != nil {
		ErrorWithCode(ctx, http.StatusInternalServerError, errCodeDBError, "failed to resolve caller identity")
		return
	}

	result, err := c.queryService.ApprovalHistory(planID, actor)
	if err != nil {
		switch {
		case errors.Is(err, workflow.ErrPlanNotFound):
			ErrorWithCode(ctx, http.StatusNotFound, errCodePlanNotFound, "plan not found")
		case errors.Is(err, workflow.ErrAccessDenied):
			ErrorWithCode(ctx, http.StatusForbidden, errCodeAccessDenied, "you are not allowed to view this plan's history")
		case errors.Is(err, workflow.ErrNoHistory):
			ErrorWithCode(ctx, http.StatusNotFound, errCodeNoHistoryFound, "no approval history found for this plan")
		default:
			ErrorWithCode(ctx, http.StatusInternalServerError, errCodeDBError, "failed to load approval history")
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success":          true,
		"plan_id":          result.PlanID,
		"total_steps":      result.TotalSteps,
		"plan_details":     result.PlanDetails,
		"approval_history": result.ApprovalHistory,
	})
}

// MyPlansHistory 查询当前用户的计划及审批进度
// @Summary      查询我的计划审批历史
// @Description  返回当前用户创建的全部计划及每个计划的审批进度汇总
// @Tags         审批历史
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]interface{}
// @Router       /my-plans-history [get]
// @Security     BearerAuth
func (c *QueryController) MyPlansHistory(ctx *gin.Context) {
	userID := ctx.GetString("user_id")
	if userID == "" {
		ErrorWithCode(ctx, http.StatusUnauthorized, errCodeTokenMissing, "authentication token is required")
		return
	}

	result, err := c.queryService.MyPlansHistory(userID)
	if err != nil {
		ErrorWithCode(ctx, http.StatusInternalServerError, errCodeDBError, "failed to load plans history")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success":     true,
		"user_id":     result.UserID,
		"total_plans": result.TotalPlans,
		"plans":       result.Plans,
	})
}

// PendingApprovals 查询当前用户的待审批队列
// @Summary      查询待审批队列
// @Description  返回当前用户名下所有待决的审批指派
// @Tags         审批历史
// @Accept       json
// @Produce      json
// @Success      200  {object}  Response
// @Failure      401  {object}  ErrorResponse
// @Router       /pending-approvals [get]
// @Security     BearerAuth
func (c *QueryController) PendingApprovals(ctx *gin.Context) {
	userID := ctx.GetString("user_id")
	if userID == "" {
		Error(ctx, http.StatusUnauthorized, "authentication required", "missing user identity")
		return
	}

	pending, err := c.queryService.PendingApprovals(userID)
	if err != nil {
		Error(ctx, http.StatusInternalServerError, "failed to load pending approvals", err.Error())
		return
	}

	Success(ctx, gin.H{
		"total":   len(pending),
		"pending": pending,
	})
}
