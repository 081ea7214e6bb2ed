package dto

import "time"

// ==================== 订单列表查询 ====================

// ListOrdersRequest 订单列表请求
type ListOrdersRequest struct {
	MarketConfigID int64  `form:"market_config_id"`
	UserID         int64  `form:"user_id"`
	Status         string `form:"status"`     // collected, ordered, shipped, ...
	StartDate      string `form:"start_date"` // 2026-01-01
	EndDate        string `form:"end_date"`
	Keyword        string `form:"keyword"` // 搜索：订单号、买家名
	Page           int    `form:"page,default=1"`
	PageSize       int    `form:"page_size,default=20"`
}

// ListOrdersResponse 订单列表响应
type ListOrdersResponse struct {
	Total int64           `json:"total"`
	List  []OrderListItem `json:"list"`
}

// OrderListItem 订单列表项
type OrderListItem struct {
	ID             int64      `json:"id"`
	MarketConfigID int64      `json:"market_config_id"`
	MarketCode     string     `json:"market_code"`
	MarketOrderID  string     `json:"market_order_id"`
	OrderNo        string     `json:"order_no"`
	BuyerName      string     `json:"buyer_name"`
	Status         string     `json:"status"`
	MarketStatus   string     `json:"market_status"`
	TrackingNo     string     `json:"tracking_no"`
	ItemCount      int        `json:"item_count"`
	TotalPrice     int64      `json:"total_price"`
	OrderedAt      *time.Time `json:"ordered_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ==================== 订单详情 ====================

// OrderDetailResponse 订单详情响应
type OrderDetailResponse struct {
	Order *OrderVO      `json:"order"`
	Items []OrderItemVO `json:"items"`
}

// OrderVO 订单视图对象
type OrderVO struct {
	ID                 int64             `json:"id"`
	MarketConfigID     int64             `json:"market_config_id"`
	MarketCode         string            `json:"market_code"`
	MarketOrderID      string            `json:"market_order_id"`
	OrderNo            string            `json:"order_no"`
	Status             string            `json:"status"`
	MarketStatus       string            `json:"market_status"`
	OverseasOrderNo    string            `json:"overseas_order_no"`
	OverseasTrackingNo string            `json:"overseas_tracking_no"`
	ForwarderID        int64             `json:"forwarder_id"`
	TrackingNo         string            `json:"tracking_no"`
	CourierCode        string            `json:"courier_code"`
	BuyerName          string            `json:"buyer_name"`
	BuyerPhone         string            `json:"buyer_phone"`
	BuyerInfo          map[string]string `json:"buyer_info,omitempty"`
	TotalPrice         int64             `json:"total_price"`
	Memo               string            `json:"memo"`
	MemoUpdatedAt      *time.Time        `json:"memo_updated_at,omitempty"`
	SyncedAt           *time.Time        `json:"synced_at,omitempty"`
	OrderedAt          *time.Time        `json:"ordered_at,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// OrderItemVO 订单项视图对象
type OrderItemVO struct {
	ID          int64  `json:"id"`
	ProductName string `json:"product_name"`
	Option      string `json:"option"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	TotalPrice  int64  `json:"total_price"`
}

// ==================== 订单操作 ====================

// UpdateStatusRequest 更新订单状态请求
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateMemoRequest 更新订单备注请求
type UpdateMemoRequest struct {
	Memo string `json:"memo"`
}

// StepOrdersRequest 批量步进请求
type StepOrdersRequest struct {
	OrderIDs  []int64 `json:"order_ids" binding:"required"`
	Direction string  `json:"direction" binding:"required"` // up / down
}

// StepOrdersResponse 批量步进响应
type StepOrdersResponse struct {
	Updated []int64            `json:"updated"`
	Skipped []StepSkippedOrder `json:"skipped"`
}

// StepSkippedOrder 被跳过的订单
type StepSkippedOrder struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// PushTrackingRequest 推送运单号请求
type PushTrackingRequest struct {
	TrackingNo  string `json:"tracking_no" binding:"required"`
	CourierCode string `json:"courier_code" binding:"required"`
}
