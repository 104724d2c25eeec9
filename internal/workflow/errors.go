package workflow

import "errors"

// 工作流哨兵错误,HTTP 层据此映射状态码与 error_code
var (
	ErrPlanNotFound       = errors.New("plan not found")
	ErrMissingReference   = errors.New("missing or invalid reference")
	ErrUserNotFound       = errors.New("user not found")
	ErrWorkflowFinished   = errors.New("approval workflow already finished")
	ErrNotCurrentApprover = errors.New("caller is not the current approver")
	ErrNoApproverForRole  = errors.New("no approver found for next role")
	ErrInvalidDecision    = errors.New("invalid approval decision")
	ErrAccessDenied       = errors.New("access denied")
	ErrNoHistory          = errors.New("no approval history found")
	ErrReportingInactive  = errors.New("reporting is not active for this plan")
)
