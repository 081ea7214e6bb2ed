package router

import (
	"kmarket_dev_v1_202608/internal/controller"

	"github.com/gin-gonic/gin"
)

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine,
	orderCtl *controller.OrderController,
	inquiryCtl *controller.InquiryController,
	syncCtl *controller.SyncController,
	pricingCtl *controller.PricingController) {
	api := r.Group("/api")
	{
		// order 订单管理
		orders := api.Group("/orders")
		{
			// GET /api/orders
			orders.GET("", orderCtl.List)
			orders.GET("/:id", orderCtl.GetByID)
			orders.PATCH("/:id/status", orderCtl.UpdateStatus)
			orders.PATCH("/:id/memo", orderCtl.UpdateMemo)
			// POST /api/orders/step 批量步进
			orders.POST("/step", orderCtl.StepOrders)
			orders.POST("/:id/push-tracking", orderCtl.PushTracking)
		}
		// inquiry 客服咨询
		inquiries := api.Group("/inquiries")
		{
			inquiries.GET("", inquiryCtl.List)
			inquiries.POST("/:id/reply", inquiryCtl.Reply)
		}
		// sync 同步触发与审计
		sync := api.Group("/sync")
		{
			sync.POST("/orders", syncCtl.TriggerOrderSync)
			sync.POST("/inquiries", syncCtl.TriggerInquirySync)
			sync.GET("/logs", syncCtl.ListLogs)
		}
		// pricing 定价计算
		pricing := api.Group("/pricing")
		{
			pricing.POST("/flat", pricingCtl.CalcFlat)
			pricing.POST("/policy", pricingCtl.CalcPolicy)
		}
	}
}
