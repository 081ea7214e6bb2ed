package repository

import (
	"context"

	"kmarket_dev_v1_202608/internal/model"

	"gorm.io/gorm"
)

// ==================== SyncRunLogRepository 同步日志仓库 ====================

// SyncRunLogRepository 同步运行日志仓库接口
type SyncRunLogRepository interface {
	Create(ctx context.Context, log *model.SyncRunLog) error
	ListRecent(ctx context.Context, limit int) ([]model.SyncRunLog, error)
	GetByRunID(ctx context.Context, runID string) ([]model.SyncRunLog, error)
}

type syncRunLogRepository struct {
	db *gorm.DB
}

// NewSyncRunLogRepository 创建同步日志仓库
func NewSyncRunLogRepository(db *gorm.DB) SyncRunLogRepository {
	return &syncRunLogRepository{db: db}
}

func (r *syncRunLogRepository) Create(ctx context.Context, log *model.SyncRunLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *syncRunLogRepository) ListRecent(ctx context.Context, limit int) ([]model.SyncRunLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var logs []model.SyncRunLog
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

func (r *syncRunLogRepository) GetByRunID(ctx context.Context, runID string) ([]model.SyncRunLog, error) {
	var logs []model.SyncRunLog
	err := r.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("id ASC").
		Find(&logs).Error
	return logs, err
}
