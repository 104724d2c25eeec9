package workflow

import (
	"fmt"
	"strings"

	"github.com/mautops/planflow-gin/internal/model"
)

// Status 审批状态
type Status string

const (
	StatusPending  Status = model.PlanStatusPending
	StatusApproved Status = model.PlanStatusApproved
	StatusDeclined Status = model.PlanStatusDeclined
)

// ParseDecision 解析审批决定
// 只接受 Approved/Declined,Pending 不是合法的决定
func ParseDecision(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "approved", "approve":
		return StatusApproved, nil
	case "declined", "decline", "rejected", "reject":
		return StatusDeclined, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDecision, s)
	}
}

// String 返回状态名
func (s Status) String() string {
	return string(s)
}
