package market

import (
	"context"
	"fmt"
	"time"
)

// ==================== 通用数据结构 ====================

// Credentials 解密后的平台 API 凭证
type Credentials struct {
	AccessKey string
	SecretKey string
	VendorID  string // Coupang 卖家编号，其他平台可为空
}

// FetchedOrder 各平台拉回的订单统一结构
type FetchedOrder struct {
	OrderID    string            `json:"order_id"` // 平台订单唯一标识
	OrderNo    string            `json:"order_no"`
	Status     string            `json:"status"` // 平台原始状态字符串
	BuyerName  string            `json:"buyer_name"`
	BuyerPhone string            `json:"buyer_phone"`
	BuyerInfo  map[string]string `json:"buyer_info"`
	TotalPrice int64             `json:"total_price"`
	OrderedAt  time.Time         `json:"ordered_at"`
	Items      []FetchedItem     `json:"items"`
	RawData    []byte            `json:"-"`
}

// FetchedItem 订单项快照
type FetchedItem struct {
	ProductName string `json:"product_name"`
	Option      string `json:"option"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
}

// FetchedInquiry 各平台拉回的客服咨询统一结构
type FetchedInquiry struct {
	InquiryID  string    `json:"inquiry_id"`
	WriterID   string    `json:"writer_id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Answered   bool      `json:"answered"`
	InquiredAt time.Time `json:"inquired_at"`
}

// RawResponse 推送调用的原始响应
// 4xx/5xx 也通过它返回，只有传输层失败才返回 error
type RawResponse struct {
	StatusCode int
	Body       string
}

// AuthError 平台拒绝了凭证（token 换取或签名校验返回 4xx）
// 是配置问题而不是网络问题，推送管线据此归类且不重试
type AuthError struct {
	Market     string
	StatusCode int
	Body       string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("[%s] 凭证被拒绝 [%d]: %s", e.Market, e.StatusCode, e.Body)
}

// ==================== Adapter 平台适配器接口 ====================

// Adapter 单个平台的客户端抽象
// 各实现自己负责签名方式（Coupang HMAC / SmartStore OAuth Bearer）
type Adapter interface {
	// Code 平台代码
	Code() string

	// FetchOrders 拉取 since 之后有变动的订单
	FetchOrders(ctx context.Context, creds Credentials, since time.Time) ([]FetchedOrder, error)

	// FetchInquiries 拉取 since 之后的客服咨询
	FetchInquiries(ctx context.Context, creds Credentials, since time.Time) ([]FetchedInquiry, error)

	// PushTracking 向平台回传运单号
	PushTracking(ctx context.Context, creds Credentials, orderID, trackingNo, courierCode string) (*RawResponse, error)

	// PushReply 向平台回传客服回复
	PushReply(ctx context.Context, creds Credentials, inquiryID, content string) (*RawResponse, error)
}

// ==================== Registry 适配器注册表 ====================

// Registry 按平台代码分发适配器
// 启动时注册一次，新平台只加适配器不加分支
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry 创建注册表
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.Code()] = a
	}
	return r
}

// Register 注册适配器，同 code 覆盖
func (r *Registry) Register(a Adapter) {
	r.adapters[a.Code()] = a
}

// Get 按平台代码取适配器
func (r *Registry) Get(code string) (Adapter, bool) {
	a, ok := r.adapters[code]
	return a, ok
}

// Supported 返回已注册的平台代码
func (r *Registry) Supported() []string {
	codes := make([]string, 0, len(r.adapters))
	for code := range r.adapters {
		codes = append(codes, code)
	}
	return codes
}
