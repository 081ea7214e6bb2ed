package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"kmarket_dev_v1_202608/internal/market"
	"kmarket_dev_v1_202608/internal/model"
)

// ==================== PushService 出站推送管道 ====================

// 推送失败分类
const (
	CategoryInvalid     = "INVALID"
	CategoryRateLimit   = "RATE_LIMIT"
	CategoryServerError = "SERVER_ERROR"
	CategoryNetwork     = "NETWORK"
)

// PushResult 单次推送结果, 由调用方决定如何落库
type PushResult struct {
	OK         bool   `json:"ok"`
	Skipped    bool   `json:"skipped"`
	StatusCode int    `json:"status_code"`
	Category   string `json:"category"`
	Attempts   int    `json:"attempts"`
	Message    string `json:"message"`
}

// PushConfig 推送管道配置, 运单与客服回复各自独立
type PushConfig struct {
	MockPush        bool
	TrackingEnabled bool
	ReplyEnabled    bool

	TrackingMaxRetries int
	TrackingBackoff    time.Duration
	ReplyMaxRetries    int
	ReplyBackoff       time.Duration
}

// PushService 向市场推送运单号与客服回复
type PushService struct {
	registry *market.Registry
	vault    *VaultService
	config   PushConfig

	// 测试中替换为空实现以跳过真实等待
	sleep func(time.Duration)
}

// NewPushService 创建推送服务
func NewPushService(registry *market.Registry, vault *VaultService, config PushConfig) *PushService {
	return &PushService{
		registry: registry,
		vault:    vault,
		config:   config,
		sleep:    time.Sleep,
	}
}

// SetSleepFunc 替换重试等待实现, 仅测试使用
func (s *PushService) SetSleepFunc(fn func(time.Duration)) {
	s.sleep = fn
}

// ==================== 推送操作 ====================

// PushTracking 推送国内运单号
func (s *PushService) PushTracking(ctx context.Context, cfg *model.MarketConfig, marketOrderID, trackingNo, courierCode string) *PushResult {
	if !s.config.TrackingEnabled || cfg.TrackingPushDisabled {
		return &PushResult{OK: true, Skipped: true, Message: "运单推送已关闭"}
	}
	return s.push(ctx, cfg, s.config.TrackingMaxRetries, s.config.TrackingBackoff,
		func(ctx context.Context, adapter market.Adapter, creds market.Credentials) (*market.RawResponse, error) {
			return adapter.PushTracking(ctx, creds, marketOrderID, trackingNo, courierCode)
		})
}

// PushReply 推送客服回复
func (s *PushService) PushReply(ctx context.Context, cfg *model.MarketConfig, inquiryID, content string) *PushResult {
	if !s.config.ReplyEnabled || cfg.ReplyPushDisabled {
		return &PushResult{OK: true, Skipped: true, Message: "客服回复推送已关闭"}
	}
	return s.push(ctx, cfg, s.config.ReplyMaxRetries, s.config.ReplyBackoff,
		func(ctx context.Context, adapter market.Adapter, creds market.Credentials) (*market.RawResponse, error) {
			return adapter.PushReply(ctx, creds, inquiryID, content)
		})
}

// ==================== 推送内核 ====================

type pushCall func(ctx context.Context, adapter market.Adapter, creds market.Credentials) (*market.RawResponse, error)

// push 校验配置、解密凭证后带重试地执行单个推送操作
func (s *PushService) push(ctx context.Context, cfg *model.MarketConfig, maxRetries int, backoff time.Duration, call pushCall) *PushResult {
	adapter, ok := s.registry.Get(cfg.MarketCode)
	if !ok {
		return &PushResult{
			Category: CategoryInvalid,
			Message:  fmt.Sprintf("[%s] 不支持的市场", cfg.MarketCode),
		}
	}
	if !cfg.Active {
		return &PushResult{
			Category: CategoryInvalid,
			Message:  fmt.Sprintf("[%s] 市场配置已停用", cfg.MarketCode),
		}
	}

	creds, err := s.decryptCredentials(cfg)
	if err != nil {
		return &PushResult{
			Category: CategoryInvalid,
			Message:  fmt.Sprintf("[%s] 凭证解密失败: %v", cfg.MarketCode, err),
		}
	}

	// Mock 模式直接合成成功
	if s.config.MockPush {
		return &PushResult{OK: true, StatusCode: http.StatusOK, Attempts: 1, Message: "mock"}
	}

	var last *PushResult
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			// 不加抖动的指数退避
			s.sleep(backoff * time.Duration(1<<(attempt-1)))
		}

		resp, err := call(ctx, adapter, creds)
		last = classify(cfg.MarketCode, resp, err)
		last.Attempts = attempt + 1
		if last.OK || !retryable(last.Category) {
			return last
		}
		log.Printf("[Push] [%s] 第 %d 次推送失败 (%s): %s", cfg.MarketCode, last.Attempts, last.Category, last.Message)
	}
	return last
}

// decryptCredentials 解密市场配置中的凭证
func (s *PushService) decryptCredentials(cfg *model.MarketConfig) (market.Credentials, error) {
	accessKey, err := s.vault.Decrypt(cfg.APIKey)
	if err != nil {
		return market.Credentials{}, err
	}
	secretKey, err := s.vault.Decrypt(cfg.APISecret)
	if err != nil {
		return market.Credentials{}, err
	}
	return market.Credentials{
		AccessKey: accessKey,
		SecretKey: secretKey,
		VendorID:  cfg.VendorID,
	}, nil
}

// classify 按 HTTP 结果归类推送结果
func classify(marketCode string, resp *market.RawResponse, err error) *PushResult {
	if err != nil {
		// 凭证被平台拒绝是配置问题, 不按网络失败重试
		var authErr *market.AuthError
		if errors.As(err, &authErr) {
			return &PushResult{
				StatusCode: authErr.StatusCode,
				Category:   CategoryInvalid,
				Message:    fmt.Sprintf("[%s] 凭证被拒绝: %v", marketCode, err),
			}
		}
		return &PushResult{
			Category: CategoryNetwork,
			Message:  fmt.Sprintf("[%s] 网络请求失败: %v", marketCode, err),
		}
	}

	switch {
	case resp.StatusCode < 400:
		return &PushResult{OK: true, StatusCode: resp.StatusCode}
	case resp.StatusCode == http.StatusTooManyRequests:
		return &PushResult{
			StatusCode: resp.StatusCode,
			Category:   CategoryRateLimit,
			Message:    fmt.Sprintf("[%s] 触发限流: %s", marketCode, truncateBody(resp.Body)),
		}
	case resp.StatusCode >= 500:
		return &PushResult{
			StatusCode: resp.StatusCode,
			Category:   CategoryServerError,
			Message:    fmt.Sprintf("[%s] 服务端错误 [%d]: %s", marketCode, resp.StatusCode, truncateBody(resp.Body)),
		}
	default:
		return &PushResult{
			StatusCode: resp.StatusCode,
			Category:   CategoryInvalid,
			Message:    fmt.Sprintf("[%s] 请求被拒绝 [%d]: %s", marketCode, resp.StatusCode, truncateBody(resp.Body)),
		}
	}
}

// retryable 仅限流/服务端/网络失败可重试
func retryable(category string) bool {
	switch category {
	case CategoryRateLimit, CategoryServerError, CategoryNetwork:
		return true
	}
	return false
}

func truncateBody(body string) string {
	const maxLen = 200
	if len(body) > maxLen {
		return body[:maxLen] + "..."
	}
	return body
}
