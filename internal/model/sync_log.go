package model

import (
	"time"

	"github.com/lib/pq"
)

// ==================== 同步类型常量 ====================

const (
	SyncKindOrder   = "order"   // 订单同步
	SyncKindInquiry = "inquiry" // 客服咨询同步
)

// ==================== SyncRunLog 同步运行日志 ====================

// SyncRunLog 一次编排运行的审计记录，由调度器持久化
// 引擎本身只返回内存里的 SyncRunResult，这里是落库的汇总
type SyncRunLog struct {
	ID    int64  `gorm:"primaryKey;autoIncrement"`
	RunID string `gorm:"size:64;index;not null"` // uuid，一次运行内各 kind 共用
	Actor string `gorm:"size:64"`                // cron / 用户名
	Kind  string `gorm:"size:16;index"`

	ConfigCount int
	Fetched     int
	Upserted    int
	Warnings    pq.StringArray `gorm:"type:text[]"`

	DurationMs int64

	CreatedAt time.Time
}

func (*SyncRunLog) TableName() string {
	return "sync_run_logs"
}
