package repository

import (
	"context"
	"errors"
	"time"

	"kmarket_dev_v1_202608/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ==================== 过滤条件 ====================

// OrderFilter 订单过滤条件
type OrderFilter struct {
	MarketConfigID int64
	UserID         int64
	Status         string
	StartDate      *time.Time
	EndDate        *time.Time
	Keyword        string
	Page           int
	PageSize       int
}

// ==================== OrderRepository 订单仓库 ====================

// OrderRepository 订单仓库接口
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	GetByIDs(ctx context.Context, ids []int64) ([]model.Order, error)
	GetByMarketOrderID(ctx context.Context, configID int64, marketOrderID string) (*model.Order, error)
	GetByIDWithItems(ctx context.Context, id int64) (*model.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error)
	Update(ctx context.Context, order *model.Order) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	UpdateStatus(ctx context.Context, id int64, status string) error

	// 同步相关：按 (market_config_id, market_order_id) 冲突键 upsert
	// 冲突时只覆盖平台权威字段，内部状态与备注保持不动
	UpsertFromMarket(ctx context.Context, order *model.Order) error
}

// ==================== 实现 ====================

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByIDs(ctx context.Context, ids []int64) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&orders).Error
	return orders, err
}

// GetByMarketOrderID 按冲突键查订单, 不存在时返回 nil 而不是错误
func (r *orderRepository) GetByMarketOrderID(ctx context.Context, configID int64, marketOrderID string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("market_config_id = ? AND market_order_id = ?", configID, marketOrderID).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByIDWithItems(ctx context.Context, id int64) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Order{})

	// 应用过滤条件
	if filter.MarketConfigID > 0 {
		db = db.Where("market_config_id = ?", filter.MarketConfigID)
	}
	if filter.UserID > 0 {
		db = db.Where("market_config_id IN (?)",
			r.db.Model(&model.MarketConfig{}).Select("id").Where("user_id = ?", filter.UserID))
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.StartDate != nil {
		db = db.Where("ordered_at >= ?", filter.StartDate)
	}
	if filter.EndDate != nil {
		db = db.Where("ordered_at <= ?", filter.EndDate)
	}
	if filter.Keyword != "" {
		keyword := "%" + filter.Keyword + "%"
		db = db.Where("order_no LIKE ? OR buyer_name LIKE ? OR tracking_no LIKE ?",
			keyword, keyword, keyword)
	}

	// 计算总数
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 分页
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	err := db.
		Preload("Items").
		Order("ordered_at DESC").
		Limit(filter.PageSize).
		Offset(offset).
		Find(&orders).Error

	return orders, total, err
}

func (r *orderRepository) Update(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

func (r *orderRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id).Updates(fields).Error
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id).Update("status", status).Error
}

// UpsertFromMarket 冲突键 (market_config_id, market_order_id)
// 冲突时只刷新平台上报的字段，内部状态 / 备注 / 物流回填不动
func (r *orderRepository) UpsertFromMarket(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "market_config_id"},
			{Name: "market_order_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"market_status", "buyer_name", "buyer_phone", "buyer_info",
			"total_price", "raw_data", "synced_at", "updated_at",
		}),
	}).Create(order).Error
}

// ==================== OrderItemRepository 订单项仓库 ====================

// OrderItemRepository 订单项仓库接口
// 订单项是下单时的快照，只建不改
type OrderItemRepository interface {
	CreateBatch(ctx context.Context, items []model.OrderItem) error
	GetByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
}

type orderItemRepository struct {
	db *gorm.DB
}

// NewOrderItemRepository 创建订单项仓库
func NewOrderItemRepository(db *gorm.DB) OrderItemRepository {
	return &orderItemRepository{db: db}
}

func (r *orderItemRepository) CreateBatch(ctx context.Context, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(items, 100).Error
}

func (r *orderItemRepository) GetByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	var items []model.OrderItem
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Find(&items).Error
	return items, err
}
