package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ==================== PricePolicy 价格策略 ====================

// MarginTier 阶梯利润条目，按成本价命中区间
type MarginTier struct {
	MinPrice     float64 `json:"min_price"`
	MaxPrice     float64 `json:"max_price"`
	MarginRate   float64 `json:"margin_rate"`
	MarginAmount float64 `json:"margin_amount"` // 非零时直接使用，不再按比例计算
}

// PricePolicy 价格策略
// 阶梯与各平台费率覆盖都存 JSONB，由策略设置界面维护，引擎只读
type PricePolicy struct {
	ID     int64  `gorm:"primaryKey;autoIncrement"`
	UserID int64  `gorm:"index;not null"`
	Name   string `gorm:"size:128"`

	// 基础利润（阶梯都不命中时回退）
	BaseMarginRate   float64 `gorm:"default:30"`
	BaseMarginAmount float64 `gorm:"default:0"`

	// 运费（KRW）
	IntlShippingFee     float64 `gorm:"default:0"`
	DomesticShippingFee float64 `gorm:"default:0"`

	// 汇率（成本币种 → KRW）
	ExchangeRate float64 `gorm:"default:1"`

	// 阶梯利润，升序区间
	MarginTiers datatypes.JSON `gorm:"type:jsonb"`

	// 各平台费率覆盖 {"coupang": 10.8, ...}
	MarketFeeRates datatypes.JSONMap `gorm:"type:jsonb"`

	// 审计字段
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (*PricePolicy) TableName() string {
	return "price_policies"
}

// GetMarginTiers 解析阶梯利润列表
func (p *PricePolicy) GetMarginTiers() []MarginTier {
	if len(p.MarginTiers) == 0 {
		return nil
	}
	var tiers []MarginTier
	if err := json.Unmarshal(p.MarginTiers, &tiers); err != nil {
		return nil
	}
	return tiers
}

// GetMarketFeeRate 获取平台费率覆盖，没有覆盖返回 (0, false)
func (p *PricePolicy) GetMarketFeeRate(code string) (float64, bool) {
	if p.MarketFeeRates == nil {
		return 0, false
	}
	v, ok := p.MarketFeeRates[code]
	if !ok {
		return 0, false
	}
	if f, ok := v.(float64); ok {
		return f, true
	}
	return 0, false
}
