package service

import (
	"encoding/json"
	"testing"

	"kmarket_dev_v1_202608/internal/model"

	"gorm.io/datatypes"
)

// ==================== 简单模式 ====================

func TestPricingService_CalcFlat(t *testing.T) {
	svc := NewPricingService()

	b := svc.CalcFlat(10000, 1, 0, 30, 11)

	if b.SalePrice%10 != 0 {
		t.Errorf("售价应取整到 10: %d", b.SalePrice)
	}
	if b.SalePrice != 16950 {
		t.Errorf("salePrice = %d, want 16950", b.SalePrice)
	}
	if b.Profit != b.SalePrice-b.BaseCost-b.Fee {
		t.Errorf("利润恒等式不成立: profit=%d sale=%d base=%d fee=%d",
			b.Profit, b.SalePrice, b.BaseCost, b.Fee)
	}
}

func TestPricingService_CalcFlat_Clamp(t *testing.T) {
	svc := NewPricingService()

	// 负数输入按 0 处理
	b := svc.CalcFlat(-100, 1, -50, 30, 11)
	if b.SalePrice != 0 || b.BaseCost != 0 {
		t.Errorf("负数输入未被钳制: sale=%d base=%d", b.SalePrice, b.BaseCost)
	}

	// 利润率超限收到 90，费率超限收到 40
	b = svc.CalcFlat(1000, 1, 0, 200, 99)
	if b.MarginRate != 90 {
		t.Errorf("marginRate = %v, want 90", b.MarginRate)
	}
	if b.FeeRate != 40 {
		t.Errorf("feeRate = %v, want 40", b.FeeRate)
	}
	// 分母被压到 0.01 而不是除零爆掉
	if b.SalePrice <= 0 {
		t.Errorf("高费率下售价应为正: %d", b.SalePrice)
	}
}

// ==================== 策略模式 ====================

func newTestPolicy(t *testing.T) *model.PricePolicy {
	tiers, err := json.Marshal([]model.MarginTier{
		{MinPrice: 0, MaxPrice: 5000, MarginRate: 10},
		{MinPrice: 5001, MaxPrice: 20000, MarginRate: 20},
	})
	if err != nil {
		t.Fatalf("构造阶梯失败: %v", err)
	}
	return &model.PricePolicy{
		BaseMarginRate: 30,
		ExchangeRate:   1,
		MarginTiers:    datatypes.JSON(tiers),
	}
}

func TestPricingService_CalcByPolicy_TierSelection(t *testing.T) {
	svc := NewPricingService()
	policy := newTestPolicy(t)

	// 成本价命中第二阶梯 (20%)
	b := svc.CalcByPolicy(policy, 10000, 10)
	if b.MarginRate != 20 {
		t.Errorf("marginRate = %v, want 20", b.MarginRate)
	}
	if b.MarginAmount != 2000 {
		t.Errorf("marginAmount = %d, want 2000", b.MarginAmount)
	}
	if b.SalePrice != 13400 {
		t.Errorf("salePrice = %d, want 13400", b.SalePrice)
	}
	if b.SalePrice%100 != 0 {
		t.Errorf("策略模式售价应取整到 100: %d", b.SalePrice)
	}
}

func TestPricingService_CalcByPolicy_TierFallback(t *testing.T) {
	svc := NewPricingService()
	policy := newTestPolicy(t)

	// 成本价不在任何阶梯内，回退基础利润 30%
	b := svc.CalcByPolicy(policy, 30000, 10)
	if b.MarginRate != 30 {
		t.Errorf("marginRate = %v, want 30", b.MarginRate)
	}
	if b.MarginAmount != 9000 {
		t.Errorf("marginAmount = %d, want 9000", b.MarginAmount)
	}
}

func TestPricingService_CalcByPolicy_MarginAmountVerbatim(t *testing.T) {
	svc := NewPricingService()
	tiers, _ := json.Marshal([]model.MarginTier{
		{MinPrice: 0, MaxPrice: 10000, MarginRate: 15, MarginAmount: 3000},
	})
	policy := &model.PricePolicy{
		BaseMarginRate: 30,
		ExchangeRate:   1,
		MarginTiers:    datatypes.JSON(tiers),
	}

	// MarginAmount 非零时按金额，不按比例
	b := svc.CalcByPolicy(policy, 5000, 10)
	if b.MarginAmount != 3000 {
		t.Errorf("marginAmount = %d, want 3000", b.MarginAmount)
	}
}

// ==================== 按平台定价 ====================

func TestPricingService_MarketFeeRate(t *testing.T) {
	svc := NewPricingService()

	policy := &model.PricePolicy{
		MarketFeeRates: datatypes.JSONMap{
			model.MarketCoupang: 12.5,
		},
	}

	// 策略覆盖优先
	if rate := svc.MarketFeeRate(policy, model.MarketCoupang); rate != 12.5 {
		t.Errorf("coupang rate = %v, want 12.5", rate)
	}
	// 无覆盖时走默认费率表
	if rate := svc.MarketFeeRate(policy, model.MarketSmartStore); rate != 5.5 {
		t.Errorf("smartstore rate = %v, want 5.5", rate)
	}
	// 表里也没有的平台兜底 10
	if rate := svc.MarketFeeRate(policy, "unknown"); rate != 10 {
		t.Errorf("unknown rate = %v, want 10", rate)
	}
}

func TestPricingService_CalcForMarkets(t *testing.T) {
	svc := NewPricingService()
	policy := newTestPolicy(t)

	breakdowns := svc.CalcForMarkets(policy, 10000, []string{model.MarketCoupang, model.MarketSmartStore})
	if len(breakdowns) != 2 {
		t.Fatalf("应返回 2 份明细, got %d", len(breakdowns))
	}
	if breakdowns[0].MarketCode != model.MarketCoupang || breakdowns[0].FeeRate != 10.8 {
		t.Errorf("coupang 明细错误: %+v", breakdowns[0])
	}
	if breakdowns[1].MarketCode != model.MarketSmartStore || breakdowns[1].FeeRate != 5.5 {
		t.Errorf("smartstore 明细错误: %+v", breakdowns[1])
	}
	// 费率低的平台售价不应更高
	if breakdowns[1].SalePrice > breakdowns[0].SalePrice {
		t.Errorf("smartstore 售价 %d 不应高于 coupang %d",
			breakdowns[1].SalePrice, breakdowns[0].SalePrice)
	}
}
