package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mautops/planflow-gin/internal/service"
	"github.com/mautops/planflow-gin/internal/utils"
)

// ReportController 进度报告控制器
type ReportController struct {
	reportService service.ReportService
}

// NewReportController 创建进度报告控制器
func NewReportController(reportService service.ReportService) *ReportController {
	return &ReportController{
		reportService: reportService,
	}
}

// Create 创建进度报告
// @Summary      创建进度报告
// @Description  为报告开关处于 active 的计划提交进度报告
// @Tags         进度报告
// @Accept       json
// @Produce      json
// @Param        id path string true "计划 ID"
// @Param        request body service.CreateReportRequest true "报告内容"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /plans/{id}/reports [post]
// @Security     BearerAuth
func (c *ReportController) Create(ctx *gin.Context) {
	userID := ctx.GetString("user_id")
	if userID == "" {
		Error(ctx, http.StatusUnauthorized, "authentication required", "missing user identity")
		return
	}

	id := ctx.Param("id")
	if err := utils.ValidatePlanID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid plan ID", err.Error())
		return
	}

	var req service.CreateReportRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	report, err := c.reportService.CreateReport(ctx.Request.Context(), id, userID, &req)
	if err != nil {
		handleWorkflowError(ctx, err, "create report")
		return
	}

	Success(ctx, report)
}

// List 列出进度报告
// @Summary      列出进度报告
// @Description  列出计划的全部进度报告
// @Tags         进度报告
// @Accept       json
// @Produce      json
// @Param        id path string true "计划 ID"
// @Success      200  {object}  Response
// @Failure      404  {object}  ErrorResponse
// @Router       /plans/{id}/reports [get]
// @Security     BearerAuth
func (c *ReportController) List(ctx *gin.Context) {
	id := ctx.Param("id")
	if err := utils.ValidatePlanID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid plan ID", err.Error())
		return
	}

	reports, err := c.reportService.ListReports(id)
	if err != nil {
		handleWorkflowError(ctx, err, "list reports")
		return
	}

	Success(ctx, gin.H{
		"plan_id": id,
		"total":   len(reports),
		"reports": reports,
	})
}
