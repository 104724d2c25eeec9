package workflow

import (
	"fmt"
	"strings"
)

// Role 审批链角色
// 封闭枚举,审批链顺序: supervisor -> general_manager -> ceo
// staff 只能创建计划,admin 拥有查看与代审权限但不在链上
type Role string

const (
	RoleStaff          Role = "staff"
	RoleSupervisor     Role = "supervisor"
	RoleGeneralManager Role = "general_manager"
	RoleCEO            Role = "ceo"
	RoleAdmin          Role = "admin"
)

// ParseRole 解析角色名(大小写不敏感,兼容历史写法)
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "staff", "employee":
		return RoleStaff, nil
	case "supervisor":
		return RoleSupervisor, nil
	case "general_manager", "general manager", "manager":
		return RoleGeneralManager, nil
	case "ceo":
		return RoleCEO, nil
	case "admin":
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role: %q", s)
	}
}

// Valid 判断角色是否合法
func (r Role) Valid() bool {
	switch r {
	case RoleStaff, RoleSupervisor, RoleGeneralManager, RoleCEO, RoleAdmin:
		return true
	default:
		return false
	}
}

// String 返回角色名
func (r Role) String() string {
	return string(r)
}

// Next 返回审批链中的下一个角色
// 链首之外的角色(staff/admin)和链尾(ceo)返回 false
func (r Role) Next() (Role, bool) {
	switch r {
	case RoleSupervisor:
		return RoleGeneralManager, true
	case RoleGeneralManager:
		return RoleCEO, true
	default:
		return "", false
	}
}

// OnChain 判断角色是否在审批链上
func (r Role) OnChain() bool {
	switch r {
	case RoleSupervisor, RoleGeneralManager, RoleCEO:
		return true
	default:
		return false
	}
}

// CanViewAnyHistory 判断角色是否可以查看任意计划的审批历史
// 非特权角色只能查看自己创建的计划
func (r Role) CanViewAnyHistory() bool {
	switch r {
	case RoleSupervisor, RoleGeneralManager, RoleCEO, RoleAdmin:
		return true
	default:
		return false
	}
}

// CanToggleReporting 判断角色是否可以切换计划的报告开关
func (r Role) CanToggleReporting() bool {
	return r == RoleCEO || r == RoleAdmin
}
