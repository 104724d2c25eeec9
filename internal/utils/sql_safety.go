package utils

import (
	"errors"
	"regexp"
	"strings"
)

var sortFieldPattern = regexp.MustCompile(`^[a-zA-Z0-9_.]+$`)

// 计划列表允许的排序字段
var allowedSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"status":     true,
	"year":       true,
}

// ValidateSortField 验证排序字段,防止 SQL 注入
// 采用白名单:排序只对已有索引的字段开放
func ValidateSortField(field string) error {
	if field == "" {
		return errors.New("sort field cannot be empty")
	}

	if !sortFieldPattern.MatchString(field) {
		return errors.New("invalid sort field format")
	}

	if !allowedSortFields[strings.ToLower(field)] {
		return errors.New("sort field not allowed")
	}

	return nil
}

// ValidateSortOrder 验证排序方向
func ValidateSortOrder(order string) error {
	upperOrder := strings.ToUpper(strings.TrimSpace(order))
	if upperOrder != "ASC" && upperOrder != "DESC" {
		return errors.New("sort order must be ASC or DESC")
	}
	return nil
}

// SanitizeSortOrder 清理排序方向
func SanitizeSortOrder(order string) string {
	upperOrder := strings.ToUpper(strings.TrimSpace(order))
	if upperOrder == "ASC" || upperOrder == "DESC" {
		return upperOrder
	}
	return "DESC" // 默认降序
}
