package market

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"kmarket_dev_v1_202608/internal/model"
	"kmarket_dev_v1_202608/pkg/net"
	"kmarket_dev_v1_202608/pkg/utils"
)

const smartStoreBaseURL = "https://api.commerce.naver.com/external"

// ==================== SmartStoreAdapter ====================

// SmartStoreAdapter Naver 智能店铺适配器
// 鉴权方式：client_credentials 换取 Bearer token，token 进内存缓存提前量续期
type SmartStoreAdapter struct {
	baseURL    string
	dispatcher net.Dispatcher

	// token 换取走表单请求，用 resty
	tokenTimeout time.Duration
}

// NewSmartStoreAdapter 创建智能店铺适配器
func NewSmartStoreAdapter(dispatcher net.Dispatcher) *SmartStoreAdapter {
	return &SmartStoreAdapter{
		baseURL:      smartStoreBaseURL,
		dispatcher:   dispatcher,
		tokenTimeout: 15 * time.Second,
	}
}

// SetBaseURL 覆盖 API 地址（测试用）
func (a *SmartStoreAdapter) SetBaseURL(baseURL string) {
	a.baseURL = baseURL
}

// Code 平台代码
func (a *SmartStoreAdapter) Code() string {
	return model.MarketSmartStore
}

// ==================== Token ====================

// 辅助结构体：Token 响应
type smartStoreTokenResp struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// getToken 获取访问令牌，优先走内存缓存
func (a *SmartStoreAdapter) getToken(ctx context.Context, creds Credentials) (string, error) {
	cacheKey := "smartstore_token:" + creds.AccessKey
	if token, ok := utils.GetCache(cacheKey); ok {
		return token, nil
	}

	client := utils.NewRestyClient(a.tokenTimeout)

	resp, err := client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"grant_type":    "client_credentials",
			"client_id":     creds.AccessKey,
			"client_secret": creds.SecretKey,
			"type":          "SELF",
		}).
		Post(a.baseURL + "/v1/oauth2/token")
	if err != nil {
		return "", fmt.Errorf("换取 token 失败: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		sc := resp.StatusCode()
		// 4xx 是凭证/配置问题, 用类型化错误让推送管线归类不重试
		// 限流与 5xx 仍按普通错误处理, 可以重试
		if sc >= 400 && sc < 500 && sc != http.StatusTooManyRequests {
			return "", &AuthError{Market: a.Code(), StatusCode: sc, Body: resp.String()}
		}
		return "", fmt.Errorf("smartstore 拒绝 token 请求 [%d]: %s", sc, resp.String())
	}

	var tokenResp smartStoreTokenResp
	if err := json.Unmarshal(resp.Body(), &tokenResp); err != nil {
		return "", fmt.Errorf("解析 token 响应失败: %v", err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("token 响应缺少 access_token")
	}

	// 提前 60 秒过期，避免边界失效
	ttl := time.Duration(tokenResp.ExpiresIn-60) * time.Second
	if ttl > 0 {
		utils.SetCache(cacheKey, tokenResp.AccessToken, ttl)
	}

	return tokenResp.AccessToken, nil
}

// ==================== 订单拉取 ====================

type smartStoreOrderResp struct {
	Data struct {
		Contents []struct {
			ProductOrderID string `json:"productOrderId"`
			OrderID        string `json:"orderId"`
			Status         string `json:"productOrderStatus"`
			OrderDate      string `json:"orderDate"`
			ProductName    string `json:"productName"`
			ProductOption  string `json:"productOption"`
			Quantity       int    `json:"quantity"`
			UnitPrice      int64  `json:"unitPrice"`
			TotalPayAmount int64  `json:"totalPaymentAmount"`
			OrdererName    string `json:"ordererName"`
			OrdererTel     string `json:"ordererTel"`
			ShippingAddr   struct {
				Name        string `json:"name"`
				BaseAddress string `json:"baseAddress"`
				Detail      string `json:"detailedAddress"`
				ZipCode     string `json:"zipCode"`
			} `json:"shippingAddress"`
		} `json:"contents"`
	} `json:"data"`
}

// FetchOrders 拉取 since 之后有变动的商品订单
// SmartStore 一条商品订单对应一个 productOrderId，按其做幂等键
func (a *SmartStoreAdapter) FetchOrders(ctx context.Context, creds Credentials, since time.Time) ([]FetchedOrder, error) {
	token, err := a.getToken(ctx, creds)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("from", since.Format(time.RFC3339))
	params.Set("rangeType", "PAYED_DATETIME")

	apiURL := a.baseURL + "/v1/pay-order/seller/product-orders?" + params.Encode()
	body, err := a.send(ctx, http.MethodGet, apiURL, nil, token)
	if err != nil {
		return nil, err
	}

	var resp smartStoreOrderResp
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("解析订单响应失败: %v", err)
	}

	orders := make([]FetchedOrder, 0, len(resp.Data.Contents))
	for _, c := range resp.Data.Contents {
		order := FetchedOrder{
			OrderID:    c.ProductOrderID,
			OrderNo:    c.OrderID,
			Status:     c.Status,
			BuyerName:  c.OrdererName,
			BuyerPhone: c.OrdererTel,
			BuyerInfo: map[string]string{
				"receiver_name": c.ShippingAddr.Name,
				"address":       c.ShippingAddr.BaseAddress + " " + c.ShippingAddr.Detail,
				"post_code":     c.ShippingAddr.ZipCode,
			},
			TotalPrice: c.TotalPayAmount,
			Items: []FetchedItem{
				{
					ProductName: c.ProductName,
					Option:      c.ProductOption,
					Quantity:    c.Quantity,
					UnitPrice:   c.UnitPrice,
				},
			},
		}
		if t, err := time.Parse(time.RFC3339, c.OrderDate); err == nil {
			order.OrderedAt = t
		}
		if raw, err := json.Marshal(c); err == nil {
			order.RawData = raw
		}
		orders = append(orders, order)
	}

	return orders, nil
}

// ==================== 客服咨询拉取 ====================

type smartStoreInquiryResp struct {
	Contents []struct {
		InquiryNo  int64  `json:"inquiryNo"`
		CustomerID string `json:"customerId"`
		Title      string `json:"title"`
		Content    string `json:"inquiryContent"`
		Answered   bool   `json:"answered"`
		CreateDate string `json:"createDate"`
	} `json:"contents"`
}

// FetchInquiries 拉取客户咨询
func (a *SmartStoreAdapter) FetchInquiries(ctx context.Context, creds Credentials, since time.Time) ([]FetchedInquiry, error) {
	token, err := a.getToken(ctx, creds)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("startSearchDate", since.Format("2006-01-02"))
	params.Set("endSearchDate", time.Now().Format("2006-01-02"))

	apiURL := a.baseURL + "/v1/seller/inquiries?" + params.Encode()
	body, err := a.send(ctx, http.MethodGet, apiURL, nil, token)
	if err != nil {
		return nil, err
	}

	var resp smartStoreInquiryResp
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("解析咨询响应失败: %v", err)
	}

	inquiries := make([]FetchedInquiry, 0, len(resp.Contents))
	for _, c := range resp.Contents {
		inq := FetchedInquiry{
			InquiryID: fmt.Sprintf("%d", c.InquiryNo),
			WriterID:  c.CustomerID,
			Title:     c.Title,
			Content:   c.Content,
			Answered:  c.Answered,
		}
		if t, err := time.Parse("2006-01-02T15:04:05", c.CreateDate); err == nil {
			inq.InquiredAt = t
		}
		inquiries = append(inquiries, inq)
	}

	return inquiries, nil
}

// ==================== 推送 ====================

// PushTracking 回传发货信息
func (a *SmartStoreAdapter) PushTracking(ctx context.Context, creds Credentials, orderID, trackingNo, courierCode string) (*RawResponse, error) {
	token, err := a.getToken(ctx, creds)
	if err != nil {
		return nil, err
	}

	reqBody := map[string]interface{}{
		"dispatchProductOrders": []map[string]interface{}{
			{
				"productOrderId":      orderID,
				"deliveryMethod":      "DELIVERY",
				"deliveryCompanyCode": courierCode,
				"trackingNumber":      trackingNo,
				"dispatchDate":        time.Now().Format(time.RFC3339),
			},
		},
	}

	apiURL := a.baseURL + "/v1/pay-order/seller/product-orders/dispatch"
	return a.pushJSON(ctx, http.MethodPost, apiURL, reqBody, token)
}

// PushReply 回复客户咨询
func (a *SmartStoreAdapter) PushReply(ctx context.Context, creds Credentials, inquiryID, content string) (*RawResponse, error) {
	token, err := a.getToken(ctx, creds)
	if err != nil {
		return nil, err
	}

	reqBody := map[string]interface{}{
		"answerContent": content,
	}

	apiURL := fmt.Sprintf("%s/v1/seller/inquiries/%s/answer", a.baseURL, inquiryID)
	return a.pushJSON(ctx, http.MethodPut, apiURL, reqBody, token)
}

// ==================== 内部方法 ====================

// send Bearer 请求，HTTP >= 400 视为错误（拉取场景）
func (a *SmartStoreAdapter) send(ctx context.Context, method, apiURL string, body io.Reader, token string) ([]byte, error) {
	req, err := net.BuildBearerRequest(ctx, method, apiURL, body, token)
	if err != nil {
		return nil, fmt.Errorf("构建请求失败: %v", err)
	}

	resp, err := a.dispatcher.Send(req)
	if err != nil {
		return nil, fmt.Errorf("请求 smartstore API 失败: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %v", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("smartstore API 错误 [%d]: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

// pushJSON Bearer 推送请求，原样返回状态码（推送场景由管线归类重试）
func (a *SmartStoreAdapter) pushJSON(ctx context.Context, method, apiURL string, reqBody interface{}, token string) (*RawResponse, error) {
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("序列化请求体失败: %v", err)
	}

	req, err := net.BuildBearerRequest(ctx, method, apiURL, bytes.NewReader(bodyBytes), token)
	if err != nil {
		return nil, fmt.Errorf("构建请求失败: %v", err)
	}

	resp, err := a.dispatcher.Send(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	return &RawResponse{
		StatusCode: resp.StatusCode,
		Body:       string(respBody),
	}, nil
}
