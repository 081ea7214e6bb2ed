package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kmarket_dev_v1_202608/internal/api/dto"
	"kmarket_dev_v1_202608/internal/repository"
	"kmarket_dev_v1_202608/internal/task"
)

// SyncController 同步控制器
type SyncController struct {
	syncTask    *task.SyncTask
	syncLogRepo repository.SyncRunLogRepository
}

// NewSyncController 创建同步控制器
func NewSyncController(syncTask *task.SyncTask, syncLogRepo repository.SyncRunLogRepository) *SyncController {
	return &SyncController{syncTask: syncTask, syncLogRepo: syncLogRepo}
}

// ==================== 手动触发 ====================

// TriggerOrderSync 手动触发订单同步
// POST /api/sync/orders
func (c *SyncController) TriggerOrderSync(ctx *gin.Context) {
	var req dto.TriggerSyncRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.syncTask.SyncOrdersNow("manual", req.LookbackMinutes)
	ctx.JSON(http.StatusAccepted, gin.H{"message": "订单同步已触发"})
}

// TriggerInquirySync 手动触发客服咨询同步
// POST /api/sync/inquiries
func (c *SyncController) TriggerInquirySync(ctx *gin.Context) {
	var req dto.TriggerSyncRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.syncTask.SyncInquiriesNow("manual", req.LookbackDays)
	ctx.JSON(http.StatusAccepted, gin.H{"message": "咨询同步已触发"})
}

// ==================== 同步日志 ====================

// ListLogs 查询最近的同步日志
// GET /api/sync/logs
func (c *SyncController) ListLogs(ctx *gin.Context) {
	var req dto.ListSyncLogsRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	logs, err := c.syncLogRepo.ListRecent(ctx, req.Limit)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	list := make([]dto.SyncLogVO, len(logs))
	for i, l := range logs {
		list[i] = dto.SyncLogVO{
			ID:          l.ID,
			RunID:       l.RunID,
			Actor:       l.Actor,
			Kind:        l.Kind,
			ConfigCount: l.ConfigCount,
			Fetched:     l.Fetched,
			Upserted:    l.Upserted,
			Warnings:    l.Warnings,
			DurationMs:  l.DurationMs,
			CreatedAt:   l.CreatedAt,
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"data": list})
}
