package market

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"kmarket_dev_v1_202608/internal/model"
	"kmarket_dev_v1_202608/pkg/net"
)

const coupangBaseURL = "https://api-gateway.coupang.com"

// ==================== CoupangAdapter ====================

// CoupangAdapter 酷澎开放平台适配器
// 鉴权方式：每个请求单独计算 CEA HMAC-SHA256 签名头
type CoupangAdapter struct {
	baseURL    string
	dispatcher net.Dispatcher

	// 翻页之间的限速间隔
	pageSleep time.Duration
}

// NewCoupangAdapter 创建酷澎适配器
func NewCoupangAdapter(dispatcher net.Dispatcher) *CoupangAdapter {
	return &CoupangAdapter{
		baseURL:    coupangBaseURL,
		dispatcher: dispatcher,
		pageSleep:  300 * time.Millisecond,
	}
}

// SetBaseURL 覆盖 API 地址（测试用）
func (a *CoupangAdapter) SetBaseURL(baseURL string) {
	a.baseURL = baseURL
	a.pageSleep = 0
}

// Code 平台代码
func (a *CoupangAdapter) Code() string {
	return model.MarketCoupang
}

// ==================== 订单拉取 ====================

// coupang 订单接口响应结构
type coupangOrderSheetResp struct {
	Code      int                 `json:"code"`
	Message   string              `json:"message"`
	NextToken string              `json:"nextToken"`
	Data      []coupangOrderSheet `json:"data"`
}

type coupangOrderSheet struct {
	ShipmentBoxID int64  `json:"shipmentBoxId"`
	OrderID       int64  `json:"orderId"`
	Status        string `json:"status"`
	OrderedAt     string `json:"orderedAt"`
	Orderer       struct {
		Name       string `json:"name"`
		SafeNumber string `json:"safeNumber"`
	} `json:"orderer"`
	Receiver struct {
		Name     string `json:"name"`
		Addr1    string `json:"addr1"`
		Addr2    string `json:"addr2"`
		PostCode string `json:"postCode"`
	} `json:"receiver"`
	OrderItems []struct {
		VendorItemName    string `json:"vendorItemName"`
		SellerProductName string `json:"sellerProductName"`
		FirstItemOption   string `json:"firstSellerProductItemName"`
		ShippingCount     int    `json:"shippingCount"`
		OrderPrice        int64  `json:"orderPrice"`
		SalesPrice        int64  `json:"salesPrice"`
	} `json:"orderItems"`
}

// FetchOrders 拉取发货单（ordersheets），自动翻页
func (a *CoupangAdapter) FetchOrders(ctx context.Context, creds Credentials, since time.Time) ([]FetchedOrder, error) {
	path := fmt.Sprintf("/v2/providers/openapi/apis/api/v4/vendors/%s/ordersheets", creds.VendorID)

	var orders []FetchedOrder
	nextToken := ""

	for {
		params := url.Values{}
		params.Set("createdAtFrom", since.Format("2006-01-02T15:04"))
		params.Set("createdAtTo", time.Now().Format("2006-01-02T15:04"))
		params.Set("maxPerPage", "50")
		if nextToken != "" {
			params.Set("nextToken", nextToken)
		}

		body, err := a.send(ctx, creds, http.MethodGet, path, params.Encode(), nil)
		if err != nil {
			return nil, err
		}

		var resp coupangOrderSheetResp
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("解析订单响应失败: %v", err)
		}
		if resp.Code != 0 && resp.Code != 200 {
			return nil, fmt.Errorf("coupang 订单接口返回错误 [%d]: %s", resp.Code, resp.Message)
		}

		for i := range resp.Data {
			orders = append(orders, a.convertOrder(&resp.Data[i]))
		}

		nextToken = resp.NextToken
		if nextToken == "" {
			break
		}
		// 翻页限速
		time.Sleep(a.pageSleep)
	}

	return orders, nil
}

// convertOrder 转换为统一订单结构
func (a *CoupangAdapter) convertOrder(sheet *coupangOrderSheet) FetchedOrder {
	items := make([]FetchedItem, 0, len(sheet.OrderItems))
	var total int64
	for _, it := range sheet.OrderItems {
		items = append(items, FetchedItem{
			ProductName: it.VendorItemName,
			Option:      it.FirstItemOption,
			Quantity:    it.ShippingCount,
			UnitPrice:   it.SalesPrice,
		})
		total += it.OrderPrice
	}

	order := FetchedOrder{
		OrderID:    strconv.FormatInt(sheet.ShipmentBoxID, 10),
		OrderNo:    strconv.FormatInt(sheet.OrderID, 10),
		Status:     sheet.Status,
		BuyerName:  sheet.Orderer.Name,
		BuyerPhone: sheet.Orderer.SafeNumber,
		BuyerInfo: map[string]string{
			"receiver_name": sheet.Receiver.Name,
			"address":       sheet.Receiver.Addr1 + " " + sheet.Receiver.Addr2,
			"post_code":     sheet.Receiver.PostCode,
		},
		TotalPrice: total,
		Items:      items,
	}

	if t, err := time.Parse("2006-01-02T15:04:05", sheet.OrderedAt); err == nil {
		order.OrderedAt = t
	}
	if raw, err := json.Marshal(sheet); err == nil {
		order.RawData = raw
	}

	return order
}

// ==================== 客服咨询拉取 ====================

type coupangInquiryResp struct {
	Code int `json:"code"`
	Data struct {
		Content []struct {
			InquiryID int64  `json:"inquiryId"`
			MemberID  string `json:"buyerEmail"`
			Title     string `json:"sellerProductName"`
			Content   string `json:"content"`
			InquiryAt string `json:"inquiryAt"`
			Answered  bool   `json:"answered"`
		} `json:"content"`
	} `json:"data"`
}

// FetchInquiries 拉取商品咨询
func (a *CoupangAdapter) FetchInquiries(ctx context.Context, creds Credentials, since time.Time) ([]FetchedInquiry, error) {
	path := fmt.Sprintf("/v2/providers/openapi/apis/api/v4/vendors/%s/onlineInquiries", creds.VendorID)

	params := url.Values{}
	params.Set("inquiryStartAt", since.Format("2006-01-02"))
	params.Set("inquiryEndAt", time.Now().Format("2006-01-02"))
	params.Set("answeredType", "ALL")

	body, err := a.send(ctx, creds, http.MethodGet, path, params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var resp coupangInquiryResp
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("解析咨询响应失败: %v", err)
	}

	inquiries := make([]FetchedInquiry, 0, len(resp.Data.Content))
	for _, c := range resp.Data.Content {
		inq := FetchedInquiry{
			InquiryID: strconv.FormatInt(c.InquiryID, 10),
			WriterID:  c.MemberID,
			Title:     c.Title,
			Content:   c.Content,
			Answered:  c.Answered,
		}
		if t, err := time.Parse("2006-01-02T15:04:05", c.InquiryAt); err == nil {
			inq.InquiredAt = t
		}
		inquiries = append(inquiries, inq)
	}

	return inquiries, nil
}

// ==================== 推送 ====================

// PushTracking 回传运单号（上传 invoice）
func (a *CoupangAdapter) PushTracking(ctx context.Context, creds Credentials, orderID, trackingNo, courierCode string) (*RawResponse, error) {
	path := fmt.Sprintf("/v2/providers/openapi/apis/api/v4/vendors/%s/orders/invoices", creds.VendorID)

	shipmentBoxID, _ := strconv.ParseInt(orderID, 10, 64)
	reqBody := map[string]interface{}{
		"vendorId": creds.VendorID,
		"orderSheetInvoiceApplyDtos": []map[string]interface{}{
			{
				"shipmentBoxId":       shipmentBoxID,
				"deliveryCompanyCode": courierCode,
				"invoiceNumber":       trackingNo,
			},
		},
	}

	return a.push(ctx, creds, http.MethodPost, path, reqBody)
}

// PushReply 回复商品咨询
func (a *CoupangAdapter) PushReply(ctx context.Context, creds Credentials, inquiryID, content string) (*RawResponse, error) {
	path := fmt.Sprintf("/v2/providers/openapi/apis/api/v4/vendors/%s/onlineInquiries/%s/replies", creds.VendorID, inquiryID)

	reqBody := map[string]interface{}{
		"content":      content,
		"vendorUserId": creds.VendorID,
	}

	return a.push(ctx, creds, http.MethodPost, path, reqBody)
}

// ==================== 内部方法 ====================

// send 发送签名请求，HTTP >= 400 视为错误（拉取场景）
func (a *CoupangAdapter) send(ctx context.Context, creds Credentials, method, path, query string, body io.Reader) ([]byte, error) {
	req, err := net.BuildCoupangRequest(ctx, method, a.baseURL, path, query, body, creds.AccessKey, creds.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("构建请求失败: %v", err)
	}

	resp, err := a.dispatcher.Send(req)
	if err != nil {
		return nil, fmt.Errorf("请求 coupang API 失败: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %v", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("coupang API 错误 [%d]: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

// push 发送签名请求，原样返回状态码（推送场景由管线归类重试）
func (a *CoupangAdapter) push(ctx context.Context, creds Credentials, method, path string, reqBody interface{}) (*RawResponse, error) {
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("序列化请求体失败: %v", err)
	}

	req, err := net.BuildCoupangRequest(ctx, method, a.baseURL, path, "", bytes.NewReader(bodyBytes), creds.AccessKey, creds.SecretKey)
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
