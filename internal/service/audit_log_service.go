package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mautops/planflow-gin/internal/model"
	"github.com/mautops/planflow-gin/internal/repository"
)

// AuditLogService 审计日志服务
type AuditLogService interface {
	RecordAction(ctx context.Context, userID string, action string, resourceType string, resourceID string, details interface{}) error
}

// requestMetaKey 请求元数据在 context 中的键类型
type requestMetaKey string

const (
	metaKeyRequestID requestMetaKey = "request_id"
	metaKeyIP        requestMetaKey = "ip"
	metaKeyUserAgent requestMetaKey = "user_agent"
)

// WithRequestMetadata 将请求元数据写入 context
// 请求中间件在入口处调用,审计日志落库时读取
func WithRequestMetadata(ctx context.Context, requestID string, ip string, userAgent string) context.Context {
	ctx = context.WithValue(ctx, metaKeyRequestID, requestID)
	ctx = context.WithValue(ctx, metaKeyIP, ip)
	ctx = context.WithValue(ctx, metaKeyUserAgent, userAgent)
	return ctx
}

// auditLogService 审计日志服务实现
type auditLogService struct {
	auditRepo repository.AuditLogRepository
}

// NewAuditLogService 创建审计日志服务
func NewAuditLogService(auditRepo repository.AuditLogRepository) AuditLogService {
	return &auditLogService{
		auditRepo: auditRepo,
	}
}

// RecordAction 记录操作审计日志
func (s *auditLogService) RecordAction(
	ctx context.Context,
	userID string,
	action string,
	resourceType string,
	resourceID string,
	details interface{},
) error {
	if s.auditRepo == nil {
		return nil
	}

	// 序列化详情
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return err
	}

	// 获取请求信息
	requestID := ""
	if v := ctx.Value(metaKeyRequestID); v != nil {
		requestID, _ = v.(string)
	}

	ip := ""
	if v := ctx.Value(metaKeyIP); v != nil {
		ip, _ = v.(string)
	}

	userAgent := ""
	if v := ctx.Value(metaKeyUserAgent); v != nil {
		userAgent, _ = v.(string)
	}

	auditLog := &model.AuditLogModel{
		ID:           uuid.New().String(),
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		RequestID:    requestID,
		IP:           ip,
		UserAgent:    userAgent,
		Details:      detailsJSON,
		CreatedAt:    time.Now(),
	}

	return s.auditRepo.Save(auditLog)
}
