package dto

import "time"

// ==================== 同步触发 ====================

// TriggerSyncRequest 手动触发同步请求
type TriggerSyncRequest struct {
	LookbackMinutes int `json:"lookback_minutes"` // 订单同步回溯分钟数, 0 取上限
	LookbackDays    int `json:"lookback_days"`    // 咨询同步回溯天数, 0 取上限
}

// ==================== 同步日志 ====================

// ListSyncLogsRequest 同步日志列表请求
type ListSyncLogsRequest struct {
	Limit int `form:"limit,default=50"`
}

// SyncLogVO 同步日志视图对象
type SyncLogVO struct {
	ID          int64     `json:"id"`
	RunID       string    `json:"run_id"`
	Actor       string    `json:"actor"`
	Kind        string    `json:"kind"`
	ConfigCount int       `json:"config_count"`
	Fetched     int       `json:"fetched"`
	Upserted    int       `json:"upserted"`
	Warnings    []string  `json:"warnings,omitempty"`
	DurationMs  int64     `json:"duration_ms"`
	CreatedAt   time.Time `json:"created_at"`
}
