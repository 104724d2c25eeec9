package api

import (
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"
)

// 构建期通过 -ldflags 注入
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// VersionInfo 版本信息
type VersionInfo struct {
	Version   string `json:"version" example:"1.0.0"`
	GitCommit string `json:"git_commit" example:"a1b2c3d"`
	BuildTime string `json:"build_time" example:"2026-01-15T10:00:00Z"`
	GoVersion string `json:"go_version" example:"go1.23"`
}

// VersionHandler 版本信息端点
func VersionHandler(c *gin.Context) {
	c.JSON(http.StatusOK, VersionInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	})
}
