package controller

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"kmarket_dev_v1_202608/internal/api/dto"
	"kmarket_dev_v1_202608/internal/model"
	"kmarket_dev_v1_202608/internal/repository"
	"kmarket_dev_v1_202608/internal/service"
)

// OrderController 订单控制器
type OrderController struct {
	orderRepo    repository.OrderRepository
	configRepo   repository.MarketConfigRepository
	lifecycleSvc *service.LifecycleService
	pushSvc      *service.PushService
}

// NewOrderController 创建订单控制器
func NewOrderController(
	orderRepo repository.OrderRepository,
	configRepo repository.MarketConfigRepository,
	lifecycleSvc *service.LifecycleService,
	pushSvc *service.PushService,
) *OrderController {
	return &OrderController{
		orderRepo:    orderRepo,
		configRepo:   configRepo,
		lifecycleSvc: lifecycleSvc,
		pushSvc:      pushSvc,
	}
}

// ==================== 订单列表与详情 ====================

// List 订单列表
// GET /api/orders
func (c *OrderController) List(ctx *gin.Context) {
	var req dto.ListOrdersRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filter := repository.OrderFilter{
		MarketConfigID: req.MarketConfigID,
		UserID:         req.UserID,
		Status:         req.Status,
		Keyword:        req.Keyword,
		Page:           req.Page,
		PageSize:       req.PageSize,
	}

	if req.StartDate != "" {
		if t, err := time.Parse("2006-01-02", req.StartDate); err == nil {
			filter.StartDate = &t
		}
	}
	if req.EndDate != "" {
		if t, err := time.Parse("2006-01-02", req.EndDate); err == nil {
			endOfDay := t.Add(24*time.Hour - time.Second)
			filter.EndDate = &endOfDay
		}
	}

	orders, total, err := c.orderRepo.List(ctx, filter)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	list := make([]dto.OrderListItem, len(orders))
	for i, o := range orders {
		list[i] = dto.OrderListItem{
			ID:             o.ID,
			MarketConfigID: o.MarketConfigID,
			MarketOrderID:  o.MarketOrderID,
			OrderNo:        o.OrderNo,
			BuyerName:      o.BuyerName,
			Status:         o.Status,
			MarketStatus:   o.MarketStatus,
			TrackingNo:     o.TrackingNo,
			ItemCount:      len(o.Items),
			TotalPrice:     o.TotalPrice,
			OrderedAt:      o.OrderedAt,
			CreatedAt:      o.CreatedAt,
		}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"data": dto.ListOrdersResponse{
			Total: total,
			List:  list,
		},
	})
}

// GetByID 获取订单详情
// GET /api/orders/:id
func (c *OrderController) GetByID(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的ID"})
		return
	}

	order, err := c.orderRepo.GetByIDWithItems(ctx, id)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "订单不存在"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": c.buildOrderDetailResponse(order)})
}

// ==================== 订单状态 ====================

// UpdateStatus 更新订单内部状态
// PATCH /api/orders/:id/status
func (c *OrderController) UpdateStatus(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的ID"})
		return
	}

	var req dto.UpdateStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := c.lifecycleSvc.ApplyStatus(ctx, id, req.Status); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "状态已更新"})
}

// StepOrders 批量步进订单状态
// POST /api/orders/step
func (c *OrderController) StepOrders(ctx *gin.Context) {
	var req dto.StepOrdersRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := c.lifecycleSvc.StepOrders(ctx, req.OrderIDs, req.Direction)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	skipped := make([]dto.StepSkippedOrder, len(result.Skipped))
	for i, s := range result.Skipped {
		skipped[i] = dto.StepSkippedOrder{ID: s.ID, Status: s.Status}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"data": dto.StepOrdersResponse{
			Updated: result.Updated,
			Skipped: skipped,
		},
	})
}

// UpdateMemo 更新订单备注
// PATCH /api/orders/:id/memo
func (c *OrderController) UpdateMemo(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的ID"})
		return
	}

	var req dto.UpdateMemoRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	err = c.orderRepo.UpdateFields(ctx, id, map[string]interface{}{
		"memo":            req.Memo,
		"memo_updated_at": &now,
	})
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "备注已更新"})
}

// ==================== 运单推送 ====================

// PushTracking 推送国内运单号到市场
// POST /api/orders/:id/push-tracking
func (c *OrderController) PushTracking(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的ID"})
		return
	}

	var req dto.PushTrackingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := c.orderRepo.GetByID(ctx, id)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "订单不存在"})
		return
	}

	cfg, err := c.configRepo.GetByID(ctx, order.MarketConfigID)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "市场配置不存在"})
		return
	}

	result := c.pushSvc.PushTracking(ctx, cfg, order.MarketOrderID, req.TrackingNo, req.CourierCode)

	// 推送管道不落库, 由此处持久化运单字段
	if result.OK && !result.Skipped {
		fields := map[string]interface{}{
			"tracking_no":  req.TrackingNo,
			"courier_code": req.CourierCode,
		}
		if err := c.orderRepo.UpdateFields(ctx, id, fields); err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "data": result})
			return
		}
	}

	status := http.StatusOK
	if !result.OK {
		status = http.StatusBadGateway
		if result.Category == service.CategoryInvalid {
			status = http.StatusBadRequest
		}
	}
	ctx.JSON(status, gin.H{"data": result})
}

// ==================== 响应构建 ====================

func (c *OrderController) buildOrderDetailResponse(order *model.Order) *dto.OrderDetailResponse {
	vo := &dto.OrderVO{
		ID:                 order.ID,
		MarketConfigID:     order.MarketConfigID,
		MarketOrderID:      order.MarketOrderID,
		OrderNo:            order.OrderNo,
		Status:             order.Status,
		MarketStatus:       order.MarketStatus,
		OverseasOrderNo:    order.OverseasOrderNo,
		OverseasTrackingNo: order.OverseasTrackingNo,
		ForwarderID:        order.ForwarderID,
		TrackingNo:         order.TrackingNo,
		CourierCode:        order.CourierCode,
		BuyerName:          order.BuyerName,
		BuyerPhone:         order.BuyerPhone,
		TotalPrice:         order.TotalPrice,
		Memo:               order.Memo,
		MemoUpdatedAt:      order.MemoUpdatedAt,
		SyncedAt:           order.SyncedAt,
		OrderedAt:          order.OrderedAt,
		CreatedAt:          order.CreatedAt,
		UpdatedAt:          order.UpdatedAt,
	}

	if len(order.BuyerInfo) > 0 {
		vo.BuyerInfo = make(map[string]string, len(order.BuyerInfo))
		for k := range order.BuyerInfo {
			vo.BuyerInfo[k] = order.GetBuyerInfoField(k)
		}
	}

	items := make([]dto.OrderItemVO, len(order.Items))
	for i, item := range order.Items {
		items[i] = dto.OrderItemVO{
			ID:          item.ID,
			ProductName: item.ProductName,
			Option:      item.Option,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.GetTotalPrice(),
		}
	}

	return &dto.OrderDetailResponse{Order: vo, Items: items}
}
