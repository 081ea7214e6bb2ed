package service

import (
	"context"
	"fmt"
	"time"

	"kmarket_dev_v1_202608/internal/market"
	"kmarket_dev_v1_202608/internal/model"
	"kmarket_dev_v1_202608/internal/repository"

	"gorm.io/datatypes"
)

// ==================== SyncService 入站同步引擎 ====================

// SyncConfig 同步引擎配置
type SyncConfig struct {
	MockOrderSync bool
	MockCsSync    bool

	// 回溯窗口上限
	OrderLookbackMinutes int
	InquiryLookbackDays  int
}

// SyncRunResult 单个市场配置的一次同步结果
type SyncRunResult struct {
	ConfigID   int64    `json:"config_id"`
	MarketCode string   `json:"market_code"`
	Fetched    int      `json:"fetched"`
	Upserted   int      `json:"upserted"`
	Warnings   []string `json:"warnings,omitempty"`
}

// SyncService 从市场拉取订单与客服咨询并写入本地
type SyncService struct {
	orderRepo     repository.OrderRepository
	orderItemRepo repository.OrderItemRepository
	inquiryRepo   repository.CsInquiryRepository
	registry      *market.Registry
	vault         *VaultService
	config        SyncConfig
}

// NewSyncService 创建同步服务
func NewSyncService(
	orderRepo repository.OrderRepository,
	orderItemRepo repository.OrderItemRepository,
	inquiryRepo repository.CsInquiryRepository,
	registry *market.Registry,
	vault *VaultService,
	config SyncConfig,
) *SyncService {
	return &SyncService{
		orderRepo:     orderRepo,
		orderItemRepo: orderItemRepo,
		inquiryRepo:   inquiryRepo,
		registry:      registry,
		vault:         vault,
		config:        config,
	}
}

// ==================== 订单同步 ====================

// SyncOrders 同步单个市场配置的订单
// lookbackMinutes 超过上限时截断, 为 0 时取上限
func (s *SyncService) SyncOrders(ctx context.Context, cfg *model.MarketConfig, lookbackMinutes int) (*SyncRunResult, error) {
	result := &SyncRunResult{ConfigID: cfg.ID, MarketCode: cfg.MarketCode}

	adapter, creds, err := s.resolveAdapter(cfg, s.config.MockOrderSync)
	if err != nil {
		return result, err
	}

	lookback := capLookback(lookbackMinutes, s.config.OrderLookbackMinutes)
	since := time.Now().Add(-time.Duration(lookback) * time.Minute)

	fetched, err := adapter.FetchOrders(ctx, creds, since)
	if err != nil {
		return result, fmt.Errorf("[%s] 拉取订单失败: %w", cfg.MarketCode, err)
	}
	result.Fetched = len(fetched)

	for i := range fetched {
		isNew, err := s.upsertOrder(ctx, cfg, &fetched[i])
		if err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("[%s] 订单 %s 写入失败: %v", cfg.MarketCode, fetched[i].OrderID, err))
			continue
		}
		if isNew {
			result.Upserted++
		}
	}

	return result, nil
}

// upsertOrder 写入单个订单, 已存在时仅覆盖市场侧字段
func (s *SyncService) upsertOrder(ctx context.Context, cfg *model.MarketConfig, f *market.FetchedOrder) (bool, error) {
	existing, err := s.orderRepo.GetByMarketOrderID(ctx, cfg.ID, f.OrderID)
	if err != nil {
		return false, err
	}
	isNew := existing == nil

	now := time.Now()
	order := &model.Order{
		MarketConfigID: cfg.ID,
		MarketOrderID:  f.OrderID,
		OrderNo:        f.OrderNo,
		MarketStatus:   f.Status,
		BuyerName:      f.BuyerName,
		BuyerPhone:     f.BuyerPhone,
		TotalPrice:     f.TotalPrice,
		SyncedAt:       &now,
	}
	if !f.OrderedAt.IsZero() {
		orderedAt := f.OrderedAt
		order.OrderedAt = &orderedAt
	}
	if len(f.BuyerInfo) > 0 {
		info := make(datatypes.JSONMap, len(f.BuyerInfo))
		for k, v := range f.BuyerInfo {
			info[k] = v
		}
		order.BuyerInfo = info
	}
	if len(f.RawData) > 0 {
		order.RawData = datatypes.JSON(f.RawData)
	}
	if isNew {
		order.Status = model.OrderStatusCollected
	}

	if err := s.orderRepo.UpsertFromMarket(ctx, order); err != nil {
		return false, err
	}

	// 订单项为下单时快照, 仅首次写入
	if isNew && order.ID > 0 && len(f.Items) > 0 {
		items := make([]model.OrderItem, len(f.Items))
		for i, it := range f.Items {
			items[i] = model.OrderItem{
				OrderID:     order.ID,
				ProductName: it.ProductName,
				Option:      it.Option,
				Quantity:    it.Quantity,
				UnitPrice:   it.UnitPrice,
			}
		}
		if err := s.orderItemRepo.CreateBatch(ctx, items); err != nil {
			return isNew, err
		}
	}

	return isNew, nil
}

// ==================== 客服咨询同步 ====================

// SyncInquiries 同步单个市场配置的客服咨询
func (s *SyncService) SyncInquiries(ctx context.Context, cfg *model.MarketConfig, lookbackDays int) (*SyncRunResult, error) {
	result := &SyncRunResult{ConfigID: cfg.ID, MarketCode: cfg.MarketCode}

	adapter, creds, err := s.resolveAdapter(cfg, s.config.MockCsSync)
	if err != nil {
		return result, err
	}

	lookback := capLookback(lookbackDays, s.config.InquiryLookbackDays)
	since := time.Now().AddDate(0, 0, -lookback)

	fetched, err := adapter.FetchInquiries(ctx, creds, since)
	if err != nil {
		return result, fmt.Errorf("[%s] 拉取咨询失败: %w", cfg.MarketCode, err)
	}
	result.Fetched = len(fetched)

	for i := range fetched {
		f := &fetched[i]
		existing, err := s.inquiryRepo.GetByInquiryID(ctx, cfg.ID, f.InquiryID)
		if err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("[%s] 咨询 %s 查询失败: %v", cfg.MarketCode, f.InquiryID, err))
			continue
		}

		// 市场侧已答的咨询首次入库即带已答标记
		// answered 不在冲突更新列里, 本地回复不会被重新同步冲掉
		inquiry := &model.CsInquiry{
			MarketConfigID: cfg.ID,
			InquiryID:      f.InquiryID,
			WriterID:       f.WriterID,
			Title:          f.Title,
			Content:        f.Content,
			Answered:       f.Answered,
		}
		if !f.InquiredAt.IsZero() {
			inquiredAt := f.InquiredAt
			inquiry.InquiredAt = &inquiredAt
		}
		if err := s.inquiryRepo.UpsertFromMarket(ctx, inquiry); err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("[%s] 咨询 %s 写入失败: %v", cfg.MarketCode, f.InquiryID, err))
			continue
		}
		if existing == nil {
			result.Upserted++
		}
	}

	return result, nil
}

// ==================== 辅助方法 ====================

// resolveAdapter 选择适配器并解密凭证, mock 模式下使用合成适配器
func (s *SyncService) resolveAdapter(cfg *model.MarketConfig, mock bool) (market.Adapter, market.Credentials, error) {
	if mock {
		return market.NewMockAdapter(cfg.MarketCode), market.Credentials{}, nil
	}

	adapter, ok := s.registry.Get(cfg.MarketCode)
	if !ok {
		return nil, market.Credentials{}, fmt.Errorf("[%s] 不支持的市场", cfg.MarketCode)
	}

	accessKey, err := s.vault.Decrypt(cfg.APIKey)
	if err != nil {
		return nil, market.Credentials{}, fmt.Errorf("[%s] 凭证解密失败: %w", cfg.MarketCode, err)
	}
	secretKey, err := s.vault.Decrypt(cfg.APISecret)
	if err != nil {
		return nil, market.Credentials{}, fmt.Errorf("[%s] 凭证解密失败: %w", cfg.MarketCode, err)
	}

	return adapter, market.Credentials{
		AccessKey: accessKey,
		SecretKey: secretKey,
		VendorID:  cfg.VendorID,
	}, nil
}

func capLookback(requested, limit int) int {
	if limit <= 0 {
		limit = 1
	}
	if requested <= 0 || requested > limit {
		return limit
	}
	return requested
}
