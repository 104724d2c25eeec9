package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doRequest(router *gin.Engine, method, path, user string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func submitPlanHTTP(t *testing.T, router *gin.Engine) string {
	t.Helper()

	w := doRequest(router, http.MethodPost, "/api/v1/plans", "user-staff", gin.H{
		"goal_id":                       "goal-1",
		"objective_id":                  "obj-1",
		"specific_objective_id":         "so-1",
		"specific_objective_details_id": "sod-1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			PlanID string `json:"plan_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.PlanID)
	return resp.Data.PlanID
}

func TestSubmitPlanEndpoint(t *testing.T) {
	db, router := setupAPITest(t)
	seedAPIData(t, db)

	planID := submitPlanHTTP(t, router)

	// 提交后计划可查,状态 Pending
	w := doRequest(router, http.MethodGet, "/api/v1/plans/"+planID, "user-staff", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Status    string `json:"status"`
			Reporting string `json:"reporting"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Pending", resp.Data.Status)
	assert.Equal(t, "deactivate", resp.Data.Reporting)
}

func TestSubmitPlanRejectsIncompleteBody(t *testing.T) {
	db, router := setupAPITest(t)
	seedAPIData(t, db)

	// binding:required 缺字段直接 400
	w := doRequest(router, http.MethodPost, "/api/v1/plans", "user-staff", gin.H{
		"goal_id": "goal-1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 未认证 401
	w = doRequest(router, http.MethodPost, "/api/v1/plans", "", gin.H{
		"goal_id":                       "goal-1",
		"objective_id":                  "obj-1",
		"specific_objective_id":         "so-1",
		"specific_objective_details_id": "sod-1",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestApproveEndpointChain(t *testing.T) {
	db, router := setupAPITest(t)
	seedAPIData(t, db)

	planID := submitPlanHTTP(t, router)
	path := fmt.Sprintf("/api/v1/plans/%s/approve", planID)

	// 非当前审批人 403
	w := doRequest(router, http.MethodPut, path, "user-gm", gin.H{"status": "Approved"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// 主管、总经理、CEO 依次批准
	for _, user := range []string{"user-sup", "user-gm", "user-ceo"} {
		w = doRequest(router, http.MethodPut, path, user, gin.H{"status": "Approved", "comment": "ok"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	// 链走完后再批 409
	w = doRequest(router, http.MethodPut, path, "user-ceo", gin.H{"status": "Approved"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// 不存在的计划 404
	w = doRequest(router, http.MethodPut, "/api/v1/plans/no-such-plan/approve", "user-sup", gin.H{"status": "Approved"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReportingAndReportsEndpoints(t *testing.T) {
	db, router := setupAPITest(t)
	seedAPIData(t, db)

	planID := submitPlanHTTP(t, router)

	// 开关未打开时报告被拒绝
	w := doRequest(router, http.MethodPost, fmt.Sprintf("/api/v1/plans/%s/reports", planID), "user-staff",
		gin.H{"content": "progress update", "progress": 20})
	assert.Equal(t, http.StatusConflict, w.Code)

	// 主管不能切开关
	w = doRequest(router, http.MethodPut, fmt.Sprintf("/api/v1/plans/%s/reporting", planID), "user-sup",
		gin.H{"reporting": "active"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// CEO 打开开关后报告写入成功
	w = doRequest(router, http.MethodPut, fmt.Sprintf("/api/v1/plans/%s/reporting", planID), "user-ceo",
		gin.H{"reporting": "active"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodPost, fmt.Sprintf("/api/v1/plans/%s/reports", planID), "user-staff",
		gin.H{"content": "progress update", "progress": 20})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doRequest(router, http.MethodGet, fmt.Sprintf("/api/v1/plans/%s/reports", planID), "user-staff", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Total int `json:"total"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Data.Total)
}

func TestListPlansEndpoint(t *testing.T) {
	db, router := setupAPITest(t)
	seedAPIData(t, db)

	submitPlanHTTP(t, router)
	submitPlanHTTP(t, router)

	w := doRequest(router, http.MethodGet, "/api/v1/plans?status=Pending&page=1&page_size=1", "user-staff", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp PaginatedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.EqualValues(t, 2, resp.Pagination.Total)
	assert.Equal(t, 2, resp.Pagination.TotalPage)

	// 非法排序字段 400
	w = doRequest(router, http.MethodGet, "/api/v1/plans?sort_by=evil", "user-staff", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
