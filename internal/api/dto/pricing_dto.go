package dto

// ==================== 定价计算 ====================

// CalcFlatRequest 扁平模式定价请求
// 进货价允许为 0（赠品核价），汇率缺省时由服务层取 1
type CalcFlatRequest struct {
	CostPrice    float64  `json:"cost_price"` // 进货价 (CNY)
	ExchangeRate float64  `json:"exchange_rate"`
	ShippingFee  float64  `json:"shipping_fee"`
	MarginRate   float64  `json:"margin_rate"`
	FeeRate      *float64 `json:"fee_rate"` // 缺省时取默认费率
}

// CalcPolicyRequest 策略模式定价请求
type CalcPolicyRequest struct {
	PolicyID  int64   `json:"policy_id" binding:"required"`
	CostPrice float64 `json:"cost_price"`
	// 为空时按策略所有市场分别计算
	MarketCodes []string `json:"market_codes"`
}

// PriceBreakdownVO 价格拆解视图对象
type PriceBreakdownVO struct {
	MarketCode   string  `json:"market_code,omitempty"`
	PurchaseCost int64   `json:"purchase_cost"`
	BaseCost     int64   `json:"base_cost"`
	SalePrice    int64   `json:"sale_price"`
	MarginRate   float64 `json:"margin_rate"`
	MarginAmount int64   `json:"margin_amount"`
	FeeRate      float64 `json:"fee_rate"`
	Fee          int64   `json:"fee"`
	Profit       int64   `json:"profit"`
}

// CalcPolicyResponse 策略定价响应
type CalcPolicyResponse struct {
	List []PriceBreakdownVO `json:"list"`
}
