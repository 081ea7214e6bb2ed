package repository

import (
	"context"

	"kmarket_dev_v1_202608/internal/model"

	"gorm.io/gorm"
)

// ==================== MarketConfigRepository 平台配置仓库 ====================

// MarketConfigRepository 平台配置仓库接口
// 引擎侧只读，写入发生在设置接口
type MarketConfigRepository interface {
	GetByID(ctx context.Context, id int64) (*model.MarketConfig, error)
	ListActive(ctx context.Context) ([]model.MarketConfig, error)
	ListByUser(ctx context.Context, userID int64) ([]model.MarketConfig, error)
	Create(ctx context.Context, cfg *model.MarketConfig) error
	Update(ctx context.Context, cfg *model.MarketConfig) error
}

type marketConfigRepository struct {
	db *gorm.DB
}

// NewMarketConfigRepository 创建平台配置仓库
func NewMarketConfigRepository(db *gorm.DB) MarketConfigRepository {
	return &marketConfigRepository{db: db}
}

func (r *marketConfigRepository) GetByID(ctx context.Context, id int64) (*model.MarketConfig, error) {
	var cfg model.MarketConfig
	err := r.db.WithContext(ctx).First(&cfg, id).Error
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *marketConfigRepository) ListActive(ctx context.Context) ([]model.MarketConfig, error) {
	var configs []model.MarketConfig
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("id ASC").
		Find(&configs).Error
	return configs, err
}

func (r *marketConfigRepository) ListByUser(ctx context.Context, userID int64) ([]model.MarketConfig, error) {
	var configs []model.MarketConfig
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&configs).Error
	return configs, err
}

func (r *marketConfigRepository) Create(ctx context.Context, cfg *model.MarketConfig) error {
	return r.db.WithContext(ctx).Create(cfg).Error
}

func (r *marketConfigRepository) Update(ctx context.Context, cfg *model.MarketConfig) error {
	return r.db.WithContext(ctx).Save(cfg).Error
}
