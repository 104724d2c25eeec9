package utils

import (
	"regexp"
	"strings"
)

var idPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidatePlanID 验证计划 ID 格式
func ValidatePlanID(id string) error {
	if id == "" {
		return ErrEmptyID
	}

	// 只允许字母、数字、连字符、下划线
	if !idPattern.MatchString(id) {
		return ErrInvalidIDFormat
	}

	if len(id) > 64 {
		return ErrIDTooLong
	}

	return nil
}

// ValidateUserID 验证用户 ID 格式
func ValidateUserID(id string) error {
	return ValidatePlanID(id) // 使用相同的验证规则
}

// TrimComment 规整审批意见,截断超长输入
func TrimComment(comment string, maxLen int) string {
	trimmed := strings.TrimSpace(comment)
	if maxLen > 0 && len(trimmed) > maxLen {
		return trimmed[:maxLen]
	}
	return trimmed
}

// 错误定义
var (
	ErrEmptyID         = &ValidationError{Code: "EMPTY_ID", Message: "id cannot be empty"}
	ErrInvalidIDFormat = &ValidationError{Code: "INVALID_ID_FORMAT", Message: "id contains invalid characters"}
	ErrIDTooLong       = &ValidationError{Code: "ID_TOO_LONG", Message: "id exceeds maximum length"}
)

// ValidationError 验证错误
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
