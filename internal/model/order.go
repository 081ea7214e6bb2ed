package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ==================== 订单状态常量 ====================

// 内部履约状态，与平台自身的状态字符串相互独立
// 正向流程按数组顺序推进，例外状态单独判定
const (
	OrderStatusCollected        = "collected"         // 已采集
	OrderStatusOrdered          = "ordered"           // 已下单（向上游采购）
	OrderStatusOverseasShipping = "overseas_shipping" // 国际段运输中
	OrderStatusDomesticArrived  = "domestic_arrived"  // 已到达韩国仓
	OrderStatusShipped          = "shipped"           // 末端已发货
	OrderStatusDelivered        = "delivered"         // 已签收
	OrderStatusConfirmed        = "confirmed"         // 买家已确认

	OrderStatusCancelled = "cancelled" // 已取消（终态）
	OrderStatusReturned  = "returned"  // 退货中
	OrderStatusExchanged = "exchanged" // 已换货（终态）
)

// StatusFlow 正向履约流程，下标即推进方向
var StatusFlow = []string{
	OrderStatusCollected,
	OrderStatusOrdered,
	OrderStatusOverseasShipping,
	OrderStatusDomesticArrived,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusConfirmed,
}

// FlowIndex 返回状态在正向流程中的下标，不在流程内返回 -1
func FlowIndex(status string) int {
	for i, s := range StatusFlow {
		if s == status {
			return i
		}
	}
	return -1
}

// IsTerminalStatus 终态不再有任何出边（同状态除外）
func IsTerminalStatus(status string) bool {
	return status == OrderStatusCancelled || status == OrderStatusExchanged
}

// ==================== Order 订单主表 ====================

// Order 订单
// 唯一键 (market_config_id, market_order_id)：同步引擎靠它做幂等 upsert
type Order struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"`
	MarketConfigID int64  `gorm:"uniqueIndex:idx_cfg_order;not null"`
	MarketOrderID  string `gorm:"uniqueIndex:idx_cfg_order;size:64;not null"`

	// 订单号与状态
	OrderNo      string `gorm:"size:64;index"`
	MarketStatus string `gorm:"size:64"` // 平台上报的原始状态，不做语义解释
	Status       string `gorm:"size:32;index;default:collected"`

	// 采购/转运信息
	OverseasOrderNo    string `gorm:"size:64"`
	OverseasTrackingNo string `gorm:"size:64"`
	ForwarderID        int64

	// 末端物流
	TrackingNo  string `gorm:"size:64;index"`
	CourierCode string `gorm:"size:32"`

	// 买家信息（JSONB）
	BuyerName  string            `gorm:"size:128"`
	BuyerPhone string            `gorm:"size:32"`
	BuyerInfo  datatypes.JSONMap `gorm:"type:jsonb"` // 地址、邮编等

	// 金额（KRW，整数）
	TotalPrice int64

	// 备注
	Memo          string `gorm:"type:text"`
	MemoUpdatedAt *time.Time

	// 平台原始数据与同步时间
	RawData  datatypes.JSON `gorm:"type:jsonb"`
	SyncedAt *time.Time

	// 平台侧下单时间
	OrderedAt *time.Time

	// 审计字段
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	// 关联
	Items []OrderItem `gorm:"foreignKey:OrderID"`
}

func (*Order) TableName() string {
	return "orders"
}

// InFlow 内部状态是否处于正向流程中
func (o *Order) InFlow() bool {
	return FlowIndex(o.Status) >= 0
}

// GetBuyerInfoField 获取买家信息字段
func (o *Order) GetBuyerInfoField(key string) string {
	if o.BuyerInfo == nil {
		return ""
	}
	if v, ok := o.BuyerInfo[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// ==================== OrderItem 订单项 ====================

// OrderItem 订单项，下单时的商品快照，创建后不再修改
type OrderItem struct {
	ID      int64 `gorm:"primaryKey;autoIncrement"`
	OrderID int64 `gorm:"index;not null"`

	ProductName string `gorm:"size:500"`
	Option      string `gorm:"size:255"`
	Quantity    int    `gorm:"default:1"`
	UnitPrice   int64

	CreatedAt time.Time
}

func (*OrderItem) TableName() string {
	return "order_items"
}

// GetTotalPrice 获取小计
func (i *OrderItem) GetTotalPrice() int64 {
	return i.UnitPrice * int64(i.Quantity)
}
