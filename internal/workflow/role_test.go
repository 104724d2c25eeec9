package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	cases := []struct {
		input    string
		expected Role
	}{
		{"staff", RoleStaff},
		{"employee", RoleStaff},
		{"Supervisor", RoleSupervisor},
		{"general_manager", RoleGeneralManager},
		{"General Manager", RoleGeneralManager},
		{"manager", RoleGeneralManager},
		{"CEO", RoleCEO},
		{"admin", RoleAdmin},
	}
	for _, tc := range cases {
		role, err := ParseRole(tc.input)
		require.NoError(t, err, "parsing %q", tc.input)
		assert.Equal(t, tc.expected, role, "parsing %q", tc.input)
	}

	_, err := ParseRole("janitor")
	assert.Error(t, err)
	_, err = ParseRole("")
	assert.Error(t, err)
}

func TestRoleNext(t *testing.T) {
	next, ok := RoleSupervisor.Next()
	require.True(t, ok)
	assert.Equal(t, RoleGeneralManager, next)

	next, ok = RoleGeneralManager.Next()
	require.True(t, ok)
	assert.Equal(t, RoleCEO, next)

	// CEO 是链的终点
	_, ok = RoleCEO.Next()
	assert.False(t, ok)

	_, ok = RoleStaff.Next()
	assert.False(t, ok)
	_, ok = RoleAdmin.Next()
	assert.False(t, ok)
}

func TestRoleOnChain(t *testing.T) {
	assert.True(t, RoleSupervisor.OnChain())
	assert.True(t, RoleGeneralManager.OnChain())
	assert.True(t, RoleCEO.OnChain())
	assert.False(t, RoleStaff.OnChain())
	assert.False(t, RoleAdmin.OnChain())
}

func TestRolePermissions(t *testing.T) {
	assert.True(t, RoleSupervisor.CanViewAnyHistory())
	assert.True(t, RoleGeneralManager.CanViewAnyHistory())
	assert.True(t, RoleCEO.CanViewAnyHistory())
	assert.True(t, RoleAdmin.CanViewAnyHistory())
	assert.False(t, RoleStaff.CanViewAnyHistory())

	assert.True(t, RoleCEO.CanToggleReporting())
	assert.True(t, RoleAdmin.CanToggleReporting())
	assert.False(t, RoleGeneralManager.CanToggleReporting())
	assert.False(t, RoleSupervisor.CanToggleReporting())
}

func TestParseDecision(t *testing.T) {
	cases := []struct {
		input    string
		expected Status
	}{
		{"Approved", StatusApproved},
		{"approve", StatusApproved},
		{"Declined", StatusDeclined},
		{"decline", StatusDeclined},
		{"rejected", StatusDeclined},
		{"reject", StatusDeclined},
	}
	for _, tc := range cases {
		status, err := ParseDecision(tc.input)
		require.NoError(t, err, "parsing %q", tc.input)
		assert.Equal(t, tc.expected, status, "parsing %q", tc.input)
	}

	_, err := ParseDecision("Pending")
	assert.Error(t, err)
	_, err = ParseDecision("")
	assert.Error(t, err)
}
