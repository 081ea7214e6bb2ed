package service

import (
	"math"

	"kmarket_dev_v1_202608/internal/model"
)

// ==================== 默认费率表 ====================

// defaultMarketFeeRates 各平台默认销售佣金（%），策略覆盖优先
var defaultMarketFeeRates = map[string]float64{
	model.MarketCoupang:    10.8,
	model.MarketSmartStore: 5.5,
	model.MarketGmarket:    13,
	model.MarketAuction:    13,
	model.MarketElevenst:   13,
}

// fallbackFeeRate 费率表也没有时的兜底
const fallbackFeeRate = 10

// ==================== 计算结果 ====================

// PriceBreakdown 一次定价计算的明细
// 金额字段全部按 KRW 取整
type PriceBreakdown struct {
	MarketCode   string  `json:"market_code,omitempty"`
	PurchaseCost int64   `json:"purchase_cost"` // 采购成本（成本价 × 汇率）
	BaseCost     int64   `json:"base_cost"`     // 采购成本 + 运费（+ 策略模式的利润额）
	SalePrice    int64   `json:"sale_price"`
	MarginAmount int64   `json:"margin_amount,omitempty"`
	Fee          int64   `json:"fee"`
	Profit       int64   `json:"profit"`
	MarginRate   float64 `json:"margin_rate"`
	FeeRate      float64 `json:"fee_rate"`
}

// ==================== PricingService 定价引擎 ====================

// PricingService 定价引擎，纯函数，无任何外部依赖
type PricingService struct{}

// NewPricingService 创建定价引擎
func NewPricingService() *PricingService {
	return &PricingService{}
}

// ==================== 简单模式 ====================

// CalcFlat 简单模式定价
// 售价 = (成本×汇率 + 运费) / (1 - (利润率+费率)/100)，向上取整到 10
// 利润率范围 0~90，费率范围 0~40（默认 11）
// 负数输入一律按 0 处理；分母最低压到 0.01，防止费率过高时爆掉
func (s *PricingService) CalcFlat(costPrice, exchangeRate, shippingFee, marginRate, feeRate float64) PriceBreakdown {
	costPrice = clampMin(costPrice, 0)
	shippingFee = clampMin(shippingFee, 0)
	if exchangeRate <= 0 {
		exchangeRate = 1
	}
	marginRate = clampRange(marginRate, 0, 90)
	feeRate = clampRange(feeRate, 0, 40)

	purchaseCost := costPrice * exchangeRate
	baseCost := purchaseCost + shippingFee

	denominator := 1 - (marginRate+feeRate)/100
	if denominator < 0.01 {
		denominator = 0.01
	}

	rawSale := baseCost / denominator
	salePrice := math.Ceil(rawSale/10) * 10
	if salePrice < 0 {
		salePrice = 0
	}

	breakdown := PriceBreakdown{
		PurchaseCost: int64(math.Round(purchaseCost)),
		BaseCost:     int64(math.Round(baseCost)),
		SalePrice:    int64(salePrice),
		Fee:          int64(math.Round(salePrice * feeRate / 100)),
		MarginRate:   marginRate,
		FeeRate:      feeRate,
	}
	// 用取整后的值算利润，保证 profit = sale - base - fee 恒等
	breakdown.Profit = breakdown.SalePrice - breakdown.BaseCost - breakdown.Fee

	return breakdown
}

// DefaultFlatFeeRate 简单模式下调用方未指定费率时的默认值
const DefaultFlatFeeRate = 11

// ==================== 策略模式 ====================

// CalcByPolicy 按价格策略定价
// 利润按阶梯解析（按成本价命中区间，命中不了回退基础利润）
// 售价向上取整到 100（策略模式面向批量铺价，粒度更粗）
func (s *PricingService) CalcByPolicy(policy *model.PricePolicy, costPrice, feeRate float64) PriceBreakdown {
	costPrice = clampMin(costPrice, 0)
	exchangeRate := policy.ExchangeRate
	if exchangeRate <= 0 {
		exchangeRate = 1
	}

	purchaseCost := costPrice * exchangeRate
	marginRate, marginAmount := s.resolveMargin(policy, costPrice, purchaseCost)

	shipping := clampMin(policy.IntlShippingFee, 0) + clampMin(policy.DomesticShippingFee, 0)
	baseCost := purchaseCost + marginAmount + shipping

	denominator := 1 - feeRate/100
	if denominator < 0.01 {
		denominator = 0.01
	}

	rawSale := baseCost / denominator
	salePrice := math.Ceil(rawSale/100) * 100
	if salePrice < 0 {
		salePrice = 0
	}

	breakdown := PriceBreakdown{
		PurchaseCost: int64(math.Round(purchaseCost)),
		BaseCost:     int64(math.Round(baseCost)),
		SalePrice:    int64(salePrice),
		MarginAmount: int64(math.Round(marginAmount)),
		Fee:          int64(math.Round(salePrice * feeRate / 100)),
		MarginRate:   marginRate,
		FeeRate:      feeRate,
	}
	// 利润 = 售价 - 采购成本 - 运费 - 佣金（利润额本身就是利润，不算成本）
	breakdown.Profit = breakdown.SalePrice - breakdown.PurchaseCost - int64(math.Round(shipping)) - breakdown.Fee

	return breakdown
}

// resolveMargin 解析策略利润
// 阶梯按成本价（不是售价）命中，第一个 [min, max] 包含成本价的条目生效
// MarginAmount 非零时直接用金额，否则按比例算
func (s *PricingService) resolveMargin(policy *model.PricePolicy, costPrice, purchaseCost float64) (rate float64, amount float64) {
	for _, tier := range policy.GetMarginTiers() {
		if costPrice >= tier.MinPrice && costPrice <= tier.MaxPrice {
			if tier.MarginAmount != 0 {
				return tier.MarginRate, tier.MarginAmount
			}
			return tier.MarginRate, purchaseCost * tier.MarginRate / 100
		}
	}

	// 回退基础利润
	if policy.BaseMarginAmount != 0 {
		return policy.BaseMarginRate, policy.BaseMarginAmount
	}
	return policy.BaseMarginRate, purchaseCost * policy.BaseMarginRate / 100
}

// ==================== 按平台定价 ====================

// CalcForMarkets 同一成本价按多个平台的费率各算一份
// 费率优先级：策略覆盖 > 默认费率表 > 兜底 10%
func (s *PricingService) CalcForMarkets(policy *model.PricePolicy, costPrice float64, marketCodes []string) []PriceBreakdown {
	breakdowns := make([]PriceBreakdown, 0, len(marketCodes))

	for _, code := range marketCodes {
		feeRate := s.MarketFeeRate(policy, code)
		b := s.CalcByPolicy(policy, costPrice, feeRate)
		b.MarketCode = code
		breakdowns = append(breakdowns, b)
	}

	return breakdowns
}

// MarketFeeRate 解析某平台生效的费率
func (s *PricingService) MarketFeeRate(policy *model.PricePolicy, code string) float64 {
	if policy != nil {
		if rate, ok := policy.GetMarketFeeRate(code); ok {
			return rate
		}
	}
	if rate, ok := defaultMarketFeeRates[code]; ok {
		return rate
	}
	return fallbackFeeRate
}

// ==================== 辅助函数 ====================

func clampMin(v, min float64) float64 {
	if v < min {
		return min
	}
	return v
}

func clampRange(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
