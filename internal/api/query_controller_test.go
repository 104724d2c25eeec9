package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApprovalHistoryEndpointErrorCodes(t *testing.T) {
	db, router := setupAPITest(t)
	seedAPIData(t, db)

	planID := submitPlanHTTP(t, router)

	// 无认证 -> TOKEN_MISSING
	w := doRequest(router, http.MethodGet, "/api/v1/approval-history/"+planID, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "TOKEN_MISSING", resp["error_code"])
	assert.Equal(t, false, resp["success"])

	// 不存在的计划 -> PLAN_NOT_FOUND
	w = doRequest(router, http.MethodGet, "/api/v1/approval-history/no-such-plan", "user-staff", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "PLAN_NOT_FOUND", resp["error_code"])

	// 非创建人的普通用户 -> ACCESS_DENIED
	w = doRequest(router, http.MethodGet, "/api/v1/approval-history/"+planID, "user-outsider", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ACCESS_DENIED", resp["error_code"])
}

func TestApprovalHistoryEndpointBody(t *testing.T) {
	db, router := setupAPITest(t)
	seedAPIData(t, db)

	planID := submitPlanHTTP(t, router)

	w := doRequest(router, http.MethodPut, "/api/v1/plans/"+planID+"/approve", "user-sup",
		gin.H{"status": "Approved", "comment": "looks solid"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/approval-history/"+planID, "user-staff", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success         bool   `json:"success"`
		PlanID          string `json:"plan_id"`
		TotalSteps      int    `json:"total_steps"`
		PlanDetails     struct {
			Department string `json:"department"`
			Goal       string `json:"goal"`
		} `json:"plan_details"`
		ApprovalHistory []struct {
			StepNumber    int    `json:"step_number"`
			Status        string `json:"status"`
			Comment       string `json:"comment"`
			ApproverRole  string `json:"approver_role"`
			IsCurrentStep bool   `json:"is_current_step"`
		} `json:"approval_history"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.Equal(t, planID, resp.PlanID)
	require.Equal(t, 2, resp.TotalSteps)
	assert.Equal(t, "Engineering", resp.PlanDetails.Department)
	assert.Equal(t, "Digital transformation", resp.PlanDetails.Goal)

	// 步 1 是提交时写入的 Pending 条目,空意见展示兜底值
	assert.Equal(t, 1, resp.ApprovalHistory[0].StepNumber)
	assert.Equal(t, "Pending", resp.ApprovalHistory[0].Status)
	assert.Equal(t, "No comment provided", resp.ApprovalHistory[0].Comment)
	assert.False(t, resp.ApprovalHistory[0].IsCurrentStep)

	assert.Equal(t, 2, resp.ApprovalHistory[1].StepNumber)
	assert.Equal(t, "Approved", resp.ApprovalHistory[1].Status)
	assert.Equal(t, "looks solid", resp.ApprovalHistory[1].Comment)
	assert.True(t, resp.ApprovalHistory[1].IsCurrentStep)
}

func TestMyPlansHistoryEndpoint(t *testing.T) {
	db, router := setupAPITest(t)
	seedAPIData(t, db)

	submitPlanHTTP(t, router)
	submitPlanHTTP(t, router)

	// 无认证 -> TOKEN_MISSING
	w := doRequest(router, http.MethodGet, "/api/v1/my-plans-history", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/my-plans-history", "user-staff", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success    bool   `json:"success"`
		UserID     string `json:"user_id"`
		TotalPlans int    `json:"total_plans"`
		Plans      []struct {
			PlanID          string `json:"plan_id"`
			PlanStatus      string `json:"plan_status"`
			ApprovalSummary struct {
				TotalSteps    int    `json:"total_steps"`
				CurrentStatus string `json:"current_status"`
			} `json:"approval_summary"`
		} `json:"plans"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.Equal(t, "user-staff", resp.UserID)
	require.Equal(t, 2, resp.TotalPlans)
	for _, p := range resp.Plans {
		assert.Equal(t, "Pending", p.PlanStatus)
		assert.Equal(t, 1, p.ApprovalSummary.TotalSteps)
		assert.Equal(t, "Pending", p.ApprovalSummary.CurrentStatus)
	}

	// 没有计划的用户得到空列表
	w = doRequest(router, http.MethodGet, "/api/v1/my-plans-history", "user-gm", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Zero(t, resp.TotalPlans)
}

func TestPendingApprovalsEndpoint(t *testing.T) {
	db, router := setupAPITest(t)
	seedAPIData(t, db)

	planID := submitPlanHTTP(t, router)

	w := doRequest(router, http.MethodGet, "/api/v1/pending-approvals", "user-sup", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Total   int `json:"total"`
			Pending []struct {
				PlanID       string `json:"plan_id"`
				ApproverRole string `json:"approver_role"`
			} `json:"pending"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Data.Total)
	assert.Equal(t, planID, resp.Data.Pending[0].PlanID)
	assert.Equal(t, "supervisor", resp.Data.Pending[0].ApproverRole)
}
