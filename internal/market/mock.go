package market

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// ==================== MockAdapter ====================

// MockAdapter 假适配器
// 没有真实凭证的环境（本地开发、预发）通过配置选它，不在真实适配器里开分支
// 产出确定性的数据：同样的 code + 序号永远生成同样的订单/咨询
type MockAdapter struct {
	code       string
	orderCount int
}

// NewMockAdapter 创建指定平台代码的假适配器
func NewMockAdapter(code string) *MockAdapter {
	return &MockAdapter{
		code:       code,
		orderCount: 3,
	}
}

// Code 平台代码
func (a *MockAdapter) Code() string {
	return a.code
}

// FetchOrders 生成确定性的模拟订单
func (a *MockAdapter) FetchOrders(ctx context.Context, creds Credentials, since time.Time) ([]FetchedOrder, error) {
	orders := make([]FetchedOrder, 0, a.orderCount)
	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

	for i := 1; i <= a.orderCount; i++ {
		orders = append(orders, FetchedOrder{
			OrderID:    fmt.Sprintf("mock-%s-order-%d", a.code, i),
			OrderNo:    fmt.Sprintf("M%s%04d", a.code, i),
			Status:     "PAYED",
			BuyerName:  fmt.Sprintf("买家%d", i),
			BuyerPhone: fmt.Sprintf("010-0000-%04d", i),
			BuyerInfo: map[string]string{
				"receiver_name": fmt.Sprintf("买家%d", i),
				"address":       "首尔特别市江南区测试路 1",
				"post_code":     "06000",
			},
			TotalPrice: int64(10000 * i),
			OrderedAt:  base.Add(time.Duration(i) * time.Hour),
			Items: []FetchedItem{
				{
					ProductName: fmt.Sprintf("模拟商品 %d", i),
					Option:      "默认",
					Quantity:    1,
					UnitPrice:   int64(10000 * i),
				},
			},
		})
	}

	return orders, nil
}

// FetchInquiries 生成确定性的模拟咨询
func (a *MockAdapter) FetchInquiries(ctx context.Context, creds Credentials, since time.Time) ([]FetchedInquiry, error) {
	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	inquiries := make([]FetchedInquiry, 0, 2)

	for i := 1; i <= 2; i++ {
		inquiries = append(inquiries, FetchedInquiry{
			InquiryID:  fmt.Sprintf("mock-%s-inquiry-%d", a.code, i),
			WriterID:   fmt.Sprintf("writer-%d", i),
			Title:      fmt.Sprintf("发货咨询 %d", i),
			Content:    "什么时候发货？",
			Answered:   false,
			InquiredAt: base.Add(time.Duration(i) * time.Hour),
		})
	}

	return inquiries, nil
}

// PushTracking 模拟推送成功
func (a *MockAdapter) PushTracking(ctx context.Context, creds Credentials, orderID, trackingNo, courierCode string) (*RawResponse, error) {
	return &RawResponse{StatusCode: http.StatusOK, Body: `{"mock":true}`}, nil
}

// PushReply 模拟推送成功
func (a *MockAdapter) PushReply(ctx context.Context, creds Credentials, inquiryID, content string) (*RawResponse, error) {
	return &RawResponse{StatusCode: http.StatusOK, Body: `{"mock":true}`}, nil
}
