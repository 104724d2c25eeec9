package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePlanID(t *testing.T) {
	assert.NoError(t, ValidatePlanID("plan-123"))
	assert.NoError(t, ValidatePlanID("a1b2c3d4-e5f6-7890-abcd-ef1234567890"))
	assert.NoError(t, ValidatePlanID("plan_2026"))

	assert.ErrorIs(t, ValidatePlanID(""), ErrEmptyID)
	assert.ErrorIs(t, ValidatePlanID("plan 123"), ErrInvalidIDFormat)
	assert.ErrorIs(t, ValidatePlanID("plan;DROP TABLE plans"), ErrInvalidIDFormat)
	assert.ErrorIs(t, ValidatePlanID("plan/../etc"), ErrInvalidIDFormat)
	assert.ErrorIs(t, ValidatePlanID(strings.Repeat("a", 65)), ErrIDTooLong)
}

func TestTrimComment(t *testing.T) {
	assert.Equal(t, "ok", TrimComment("  ok  ", 100))
	assert.Equal(t, "", TrimComment("   ", 100))
	assert.Equal(t, "abc", TrimComment("abcdef", 3))
	// maxLen 为 0 表示不截断
	assert.Equal(t, "abcdef", TrimComment("abcdef", 0))
}

func TestValidateSortField(t *testing.T) {
	assert.NoError(t, ValidateSortField("created_at"))
	assert.NoError(t, ValidateSortField("Status"))
	assert.NoError(t, ValidateSortField("year"))

	assert.Error(t, ValidateSortField(""))
	assert.Error(t, ValidateSortField("password"))
	assert.Error(t, ValidateSortField("created_at; DROP TABLE plans"))
}

func TestSortOrder(t *testing.T) {
	assert.NoError(t, ValidateSortOrder("asc"))
	assert.NoError(t, ValidateSortOrder(" DESC "))
	assert.Error(t, ValidateSortOrder("sideways"))
	assert.Error(t, ValidateSortOrder(""))

	assert.Equal(t, "ASC", SanitizeSortOrder("asc"))
	assert.Equal(t, "DESC", SanitizeSortOrder("junk"))
}
