package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kmarket_dev_v1_202608/internal/api/dto"
	"kmarket_dev_v1_202608/internal/repository"
	"kmarket_dev_v1_202608/internal/service"
)

// PricingController 定价计算控制器
type PricingController struct {
	pricingSvc *service.PricingService
	policyRepo repository.PricePolicyRepository
}

// NewPricingController 创建定价控制器
func NewPricingController(pricingSvc *service.PricingService, policyRepo repository.PricePolicyRepository) *PricingController {
	return &PricingController{pricingSvc: pricingSvc, policyRepo: policyRepo}
}

// ==================== 定价计算 ====================

// CalcFlat 扁平模式定价
// POST /api/pricing/flat
func (c *PricingController) CalcFlat(ctx *gin.Context) {
	var req dto.CalcFlatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	feeRate := float64(service.DefaultFlatFeeRate)
	if req.FeeRate != nil {
		feeRate = *req.FeeRate
	}

	b := c.pricingSvc.CalcFlat(req.CostPrice, req.ExchangeRate, req.ShippingFee, req.MarginRate, feeRate)
	ctx.JSON(http.StatusOK, gin.H{"data": breakdownToVO(b)})
}

// CalcPolicy 策略模式定价, 按市场分别计算
// POST /api/pricing/policy
func (c *PricingController) CalcPolicy(ctx *gin.Context) {
	var req dto.CalcPolicyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	policy, err := c.policyRepo.GetByID(ctx, req.PolicyID)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "定价策略不存在"})
		return
	}

	marketCodes := req.MarketCodes
	if len(marketCodes) == 0 {
		for code := range policy.MarketFeeRates {
			marketCodes = append(marketCodes, code)
		}
	}
	if len(marketCodes) == 0 {
		// 策略未配置市场时按单一默认费率计算
		b := c.pricingSvc.CalcByPolicy(policy, req.CostPrice, c.pricingSvc.MarketFeeRate(policy, ""))
		ctx.JSON(http.StatusOK, gin.H{"data": dto.CalcPolicyResponse{List: []dto.PriceBreakdownVO{breakdownToVO(b)}}})
		return
	}

	breakdowns := c.pricingSvc.CalcForMarkets(policy, req.CostPrice, marketCodes)
	list := make([]dto.PriceBreakdownVO, len(breakdowns))
	for i, b := range breakdowns {
		list[i] = breakdownToVO(b)
	}

	ctx.JSON(http.StatusOK, gin.H{"data": dto.CalcPolicyResponse{List: list}})
}

func breakdownToVO(b service.PriceBreakdown) dto.PriceBreakdownVO {
	return dto.PriceBreakdownVO{
		MarketCode:   b.MarketCode,
		PurchaseCost: b.PurchaseCost,
		BaseCost:     b.BaseCost,
		SalePrice:    b.SalePrice,
		MarginRate:   b.MarginRate,
		MarginAmount: b.MarginAmount,
		FeeRate:      b.FeeRate,
		Fee:          b.Fee,
		Profit:       b.Profit,
	}
}
