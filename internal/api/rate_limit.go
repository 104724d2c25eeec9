package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitMiddleware 令牌桶限流中间件
// 单进程内所有计划接口共享一个桶,用于压制提交和审批的突发流量。
// 多实例部署时每个实例各自限流,全局上限为 rps * 实例数
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(c *gin.Context) {
		if limiter.Allow() {
			c.Next()
			return
		}

		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
			Code:      http.StatusTooManyRequests,
			Message:   "too many requests",
			ErrorCode: "RATE_LIMITED",
		})
	}
}
