package model

import (
	"time"

	"gorm.io/gorm"
)

// ==================== 市场代码常量 ====================

// MarketCode 对接的韩国电商平台代码
const (
	MarketCoupang    = "coupang"    // 酷澎
	MarketSmartStore = "smartstore" // Naver 智能店铺
	MarketGmarket    = "gmarket"    // Gmarket
	MarketAuction    = "auction"    // Auction
	MarketElevenst   = "elevenst"   // 11번가
)

// ==================== MarketConfig 平台配置 ====================

// MarketConfig 用户与某个平台的一条对接配置
// 凭证字段存的是密文，引擎侧只读，修改只经过设置接口
type MarketConfig struct {
	ID     int64 `gorm:"primaryKey;autoIncrement"`
	UserID int64 `gorm:"index;not null"`

	// 平台标识
	MarketCode string `gorm:"size:32;index;not null"`
	VendorID   string `gorm:"size:64"` // Coupang 卖家编号，SmartStore 不需要

	// API 凭证（加密存储）
	APIKey    string `gorm:"size:512;not null"`
	APISecret string `gorm:"size:512;not null"`

	// 启用状态
	Active bool `gorm:"default:true;index"`

	// 默认费率（%），计价时可被价格策略覆盖
	DefaultFeeRate float64 `gorm:"default:0"`

	// 推送开关（单独控制运单推送与客服回复推送）
	TrackingPushDisabled bool `gorm:"default:false"`
	ReplyPushDisabled    bool `gorm:"default:false"`

	// 审计字段
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (*MarketConfig) TableName() string {
	return "market_configs"
}
