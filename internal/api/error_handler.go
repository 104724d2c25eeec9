package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mautops/planflow-gin/internal/workflow"
)

// APIError API 错误
type APIError struct {
	Code    int
	Message string
	Detail  string
}

func (e *APIError) Error() string {
	return e.Message
}

// ErrorHandlerMiddleware 错误处理中间件
func ErrorHandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()

			var apiErr *APIError
			if errors.As(err, &apiErr) {
				Error(c, apiErr.Code, apiErr.Message, apiErr.Detail)
			} else {
				Error(c, http.StatusInternalServerError, "internal server error", err.Error())
			}
		}
	}
}

// WrapError 包装错误
func WrapError(err error, code int, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Detail:  err.Error(),
	}
}

// workflowErrorStatus 工作流哨兵错误到 HTTP 状态码的映射
func workflowErrorStatus(err error) (int, bool) {
	switch {
	case errors.Is(err, workflow.ErrPlanNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, workflow.ErrUserNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, workflow.ErrMissingReference):
		return http.StatusBadRequest, true
	case errors.Is(err, workflow.ErrInvalidDecision):
		return http.StatusBadRequest, true
	case errors.Is(err, workflow.ErrWorkflowFinished):
		return http.StatusConflict, true
	case errors.Is(err, workflow.ErrNotCurrentApprover):
		return http.StatusForbidden, true
	case errors.Is(err, workflow.ErrAccessDenied):
		return http.StatusForbidden, true
	case errors.Is(err, workflow.ErrNoApproverForRole):
		return http.StatusConflict, true
	case errors.Is(err, workflow.ErrReportingInactive):
		return http.StatusConflict, true
	case errors.Is(err, workflow.ErrNoHistory):
		return http.StatusNotFound, true
	}
	return 0, false
}

// handleWorkflowError 处理服务层返回的工作流错误
// 未识别的错误按 500 返回
func handleWorkflowError(c *gin.Context, err error, operation string) {
	if status, ok := workflowErrorStatus(err); ok {
		Error(c, status, "failed to "+operation, err.Error())
		return
	}
	Error(c, http.StatusInternalServerError, "failed to "+operation, err.Error())
}
