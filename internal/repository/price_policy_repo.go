package repository

import (
	"context"
	"errors"

	"kmarket_dev_v1_202608/internal/model"

	"gorm.io/gorm"
)

// ==================== PricePolicyRepository 定价策略仓库 ====================

// PricePolicyRepository 定价策略仓库接口
type PricePolicyRepository interface {
	GetByID(ctx context.Context, id int64) (*model.PricePolicy, error)
	GetByUserID(ctx context.Context, userID int64) (*model.PricePolicy, error)
	Create(ctx context.Context, policy *model.PricePolicy) error
	Update(ctx context.Context, policy *model.PricePolicy) error
}

type pricePolicyRepository struct {
	db *gorm.DB
}

// NewPricePolicyRepository 创建定价策略仓库
func NewPricePolicyRepository(db *gorm.DB) PricePolicyRepository {
	return &pricePolicyRepository{db: db}
}

func (r *pricePolicyRepository) GetByID(ctx context.Context, id int64) (*model.PricePolicy, error) {
	var policy model.PricePolicy
	err := r.db.WithContext(ctx).First(&policy, id).Error
	if err != nil {
		return nil, err
	}
	return &policy, nil
}

// GetByUserID 获取用户的定价策略, 不存在时返回 nil 而不是错误
func (r *pricePolicyRepository) GetByUserID(ctx context.Context, userID int64) (*model.PricePolicy, error) {
	var policy model.PricePolicy
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&policy).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &policy, nil
}

func (r *pricePolicyRepository) Create(ctx context.Context, policy *model.PricePolicy) error {
	return r.db.WithContext(ctx).Create(policy).Error
}

func (r *pricePolicyRepository) Update(ctx context.Context, policy *model.PricePolicy) error {
	return r.db.WithContext(ctx).Save(policy).Error
}
