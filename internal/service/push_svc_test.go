package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"kmarket_dev_v1_202608/internal/market"
	"kmarket_dev_v1_202608/internal/model"
)

// ==================== 桩适配器 ====================

// stubAdapter 按预设序列返回推送结果的桩
type stubAdapter struct {
	code     string
	statuses []int
	err      error
	calls    int
}

func (a *stubAdapter) Code() string { return a.code }

func (a *stubAdapter) FetchOrders(ctx context.Context, creds market.Credentials, since time.Time) ([]market.FetchedOrder, error) {
	return nil, nil
}

func (a *stubAdapter) FetchInquiries(ctx context.Context, creds market.Credentials, since time.Time) ([]market.FetchedInquiry, error) {
	return nil, nil
}

func (a *stubAdapter) PushTracking(ctx context.Context, creds market.Credentials, orderID, trackingNo, courierCode string) (*market.RawResponse, error) {
	return a.respond()
}

func (a *stubAdapter) PushReply(ctx context.Context, creds market.Credentials, inquiryID, content string) (*market.RawResponse, error) {
	return a.respond()
}

func (a *stubAdapter) respond() (*market.RawResponse, error) {
	defer func() { a.calls++ }()
	if a.err != nil {
		return nil, a.err
	}
	idx := a.calls
	if idx >= len(a.statuses) {
		idx = len(a.statuses) - 1
	}
	return &market.RawResponse{StatusCode: a.statuses[idx], Body: "{}"}, nil
}

// ==================== 测试辅助 ====================

func newPushFixture(t *testing.T, adapter market.Adapter, cfg PushConfig) (*PushService, *model.MarketConfig) {
	vault, err := NewVaultService("push-test-key")
	if err != nil {
		t.Fatalf("创建凭证服务失败: %v", err)
	}

	svc := NewPushService(market.NewRegistry(adapter), vault, cfg)
	svc.SetSleepFunc(func(time.Duration) {})

	// 凭证存明文，Decrypt 幂等
	marketCfg := &model.MarketConfig{
		ID:         1,
		MarketCode: adapter.Code(),
		APIKey:     "plain-key",
		APISecret:  "plain-secret",
		Active:     true,
	}
	return svc, marketCfg
}

func defaultPushConfig() PushConfig {
	return PushConfig{
		TrackingEnabled:    true,
		ReplyEnabled:       true,
		TrackingMaxRetries: 3,
		TrackingBackoff:    100 * time.Millisecond,
		ReplyMaxRetries:    2,
		ReplyBackoff:       100 * time.Millisecond,
	}
}

// ==================== 推送结果分类 ====================

func TestPushService_Success(t *testing.T) {
	stub := &stubAdapter{code: model.MarketCoupang, statuses: []int{200}}
	svc, cfg := newPushFixture(t, stub, defaultPushConfig())

	result := svc.PushTracking(context.Background(), cfg, "order-1", "123456", "CJGLS")
	if !result.OK || result.Skipped {
		t.Fatalf("推送应成功: %+v", result)
	}
	if result.Attempts != 1 {
		t.Errorf("attempts = %d, want 1", result.Attempts)
	}
	if stub.calls != 1 {
		t.Errorf("calls = %d, want 1", stub.calls)
	}
}

func TestPushService_RateLimitRetry(t *testing.T) {
	stub := &stubAdapter{code: model.MarketCoupang, statuses: []int{429}}
	svc, cfg := newPushFixture(t, stub, defaultPushConfig())

	var delays []time.Duration
	svc.SetSleepFunc(func(d time.Duration) { delays = append(delays, d) })

	result := svc.PushTracking(context.Background(), cfg, "order-1", "123456", "CJGLS")
	if result.OK {
		t.Fatal("限流耗尽重试后应失败")
	}
	if result.Category != CategoryRateLimit {
		t.Errorf("category = %s, want %s", result.Category, CategoryRateLimit)
	}
	if result.Attempts != 4 {
		t.Errorf("attempts = %d, want 4 (首次 + 3 次重试)", result.Attempts)
	}
	// 退避曲线 base * 2^n，不加抖动
	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond}
	if len(delays) != len(want) {
		t.Fatalf("delays = %v, want %v", delays, want)
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Errorf("delays[%d] = %v, want %v", i, delays[i], want[i])
		}
	}
}

func TestPushService_RetryThenSuccess(t *testing.T) {
	stub := &stubAdapter{code: model.MarketCoupang, statuses: []int{500, 502, 200}}
	svc, cfg := newPushFixture(t, stub, defaultPushConfig())

	result := svc.PushTracking(context.Background(), cfg, "order-1", "123456", "CJGLS")
	if !result.OK {
		t.Fatalf("第三次应成功: %+v", result)
	}
	if result.Attempts != 3 {
		t.Errorf("attempts = %d, want 3", result.Attempts)
	}
}

func TestPushService_BadRequestNotRetried(t *testing.T) {
	stub := &stubAdapter{code: model.MarketCoupang, statuses: []int{400}}
	svc, cfg := newPushFixture(t, stub, defaultPushConfig())

	result := svc.PushTracking(context.Background(), cfg, "order-1", "123456", "CJGLS")
	if result.OK {
		t.Fatal("400 应失败")
	}
	if result.Category != CategoryInvalid {
		t.Errorf("category = %s, want %s", result.Category, CategoryInvalid)
	}
	if result.Attempts != 1 {
		t.Errorf("400 不应重试: attempts = %d", result.Attempts)
	}
	if stub.calls != 1 {
		t.Errorf("calls = %d, want 1", stub.calls)
	}
}

func TestPushService_NetworkErrorRetried(t *testing.T) {
	stub := &stubAdapter{code: model.MarketCoupang, err: errors.New("connection refused")}
	svc, cfg := newPushFixture(t, stub, defaultPushConfig())

	result := svc.PushReply(context.Background(), cfg, "inq-1", "回复内容")
	if result.OK {
		t.Fatal("网络错误耗尽重试后应失败")
	}
	if result.Category != CategoryNetwork {
		t.Errorf("category = %s, want %s", result.Category, CategoryNetwork)
	}
	if result.Attempts != 3 {
		t.Errorf("attempts = %d, want 3 (首次 + 2 次重试)", result.Attempts)
	}
}

func TestPushService_AuthErrorNotRetried(t *testing.T) {
	stub := &stubAdapter{code: model.MarketSmartStore, err: &market.AuthError{
		Market:     model.MarketSmartStore,
		StatusCode: 401,
		Body:       `{"message":"invalid client"}`,
	}}
	svc, cfg := newPushFixture(t, stub, defaultPushConfig())

	// 凭证被平台拒绝是配置问题, 不能按网络失败重试
	result := svc.PushReply(context.Background(), cfg, "inq-1", "回复内容")
	if result.OK {
		t.Fatal("凭证被拒绝应失败")
	}
	if result.Category != CategoryInvalid {
		t.Errorf("category = %s, want %s", result.Category, CategoryInvalid)
	}
	if result.Attempts != 1 {
		t.Errorf("attempts = %d, want 1 (不重试)", result.Attempts)
	}
	if result.StatusCode != 401 {
		t.Errorf("status = %d, want 401", result.StatusCode)
	}
}

// ==================== 跳过与校验 ====================

func TestPushService_DisabledSkipped(t *testing.T) {
	stub := &stubAdapter{code: model.MarketCoupang, statuses: []int{200}}
	pushCfg := defaultPushConfig()
	pushCfg.TrackingEnabled = false
	svc, cfg := newPushFixture(t, stub, pushCfg)

	result := svc.PushTracking(context.Background(), cfg, "order-1", "123456", "CJGLS")
	if !result.OK || !result.Skipped {
		t.Fatalf("关闭推送应返回 skipped+ok: %+v", result)
	}
	if result.Attempts != 0 {
		t.Errorf("跳过时不应有尝试次数: %d", result.Attempts)
	}
	if stub.calls != 0 {
		t.Errorf("跳过时不应发起调用: %d", stub.calls)
	}
}

func TestPushService_ConfigDisabledSkipped(t *testing.T) {
	stub := &stubAdapter{code: model.MarketCoupang, statuses: []int{200}}
	svc, cfg := newPushFixture(t, stub, defaultPushConfig())
	cfg.ReplyPushDisabled = true

	result := svc.PushReply(context.Background(), cfg, "inq-1", "回复内容")
	if !result.OK || !result.Skipped {
		t.Fatalf("配置级关闭应返回 skipped+ok: %+v", result)
	}
}

func TestPushService_UnsupportedMarket(t *testing.T) {
	stub := &stubAdapter{code: model.MarketCoupang, statuses: []int{200}}
	svc, cfg := newPushFixture(t, stub, defaultPushConfig())
	cfg.MarketCode = "nowhere"

	result := svc.PushTracking(context.Background(), cfg, "order-1", "123456", "CJGLS")
	if result.OK || result.Category != CategoryInvalid {
		t.Fatalf("未知市场应立即失败: %+v", result)
	}
	if stub.calls != 0 {
		t.Errorf("未知市场不应发起调用: %d", stub.calls)
	}
}

func TestPushService_InactiveConfig(t *testing.T) {
	stub := &stubAdapter{code: model.MarketCoupang, statuses: []int{200}}
	svc, cfg := newPushFixture(t, stub, defaultPushConfig())
	cfg.Active = false

	result := svc.PushTracking(context.Background(), cfg, "order-1", "123456", "CJGLS")
	if result.OK || result.Category != CategoryInvalid {
		t.Fatalf("停用配置应立即失败: %+v", result)
	}
}

func TestPushService_BadCredentials(t *testing.T) {
	stub := &stubAdapter{code: model.MarketCoupang, statuses: []int{200}}
	svc, cfg := newPushFixture(t, stub, defaultPushConfig())
	cfg.APIKey = "enc:v1:not-valid-base64!!!"

	result := svc.PushTracking(context.Background(), cfg, "order-1", "123456", "CJGLS")
	if result.OK || result.Category != CategoryInvalid {
		t.Fatalf("凭证解密失败应立即失败: %+v", result)
	}
	if stub.calls != 0 {
		t.Errorf("解密失败不应发起调用: %d", stub.calls)
	}
}

func TestPushService_MockMode(t *testing.T) {
	stub := &stubAdapter{code: model.MarketCoupang, statuses: []int{500}}
	pushCfg := defaultPushConfig()
	pushCfg.MockPush = true
	svc, cfg := newPushFixture(t, stub, pushCfg)

	result := svc.PushTracking(context.Background(), cfg, "order-1", "123456", "CJGLS")
	if !result.OK || result.StatusCode != http.StatusOK {
		t.Fatalf("mock 模式应合成成功: %+v", result)
	}
	if stub.calls != 0 {
		t.Errorf("mock 模式不应发起真实调用: %d", stub.calls)
	}
}
