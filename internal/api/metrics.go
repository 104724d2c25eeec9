package api

import (
	"github.com/gin-gonic/gin"
	"github.com/mautops/planflow-gin/internal/metrics"
)

// MetricsHandler 暴露 Prometheus 采集端点
// 输出计划提交、审批决定、进度报告与 API 请求等指标
func MetricsHandler(c *gin.Context) {
	metrics.Handler().ServeHTTP(c.Writer, c.Request)
}
