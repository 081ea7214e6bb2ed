package repository

import (
	"context"
	"testing"
	"time"

	"kmarket_dev_v1_202608/internal/model"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ==================== 测试辅助 ====================

func setupRepoTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	err = db.AutoMigrate(&model.Order{}, &model.OrderItem{}, &model.CsInquiry{}, &model.MarketConfig{})
	if err != nil {
		t.Fatalf("自动建表失败: %v", err)
	}
	return db
}

func marketOrder(configID int64, marketOrderID string) *model.Order {
	now := time.Now()
	return &model.Order{
		MarketConfigID: configID,
		MarketOrderID:  marketOrderID,
		OrderNo:        "ORD-" + marketOrderID,
		MarketStatus:   "ACCEPT",
		Status:         model.OrderStatusCollected,
		BuyerName:      "김철수",
		BuyerPhone:     "010-0000-0000",
		BuyerInfo:      datatypes.JSONMap{"address": "서울시"},
		TotalPrice:     25000,
		RawData:        datatypes.JSON([]byte(`{"orderId":"` + marketOrderID + `"}`)),
		SyncedAt:       &now,
		OrderedAt:      &now,
	}
}

// ==================== 订单 upsert ====================

func TestOrderRepository_UpsertFromMarket_NoDuplicate(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	if err := repo.UpsertFromMarket(ctx, marketOrder(1, "M-1001")); err != nil {
		t.Fatalf("首次 upsert 失败: %v", err)
	}
	if err := repo.UpsertFromMarket(ctx, marketOrder(1, "M-1001")); err != nil {
		t.Fatalf("二次 upsert 失败: %v", err)
	}

	var count int64
	db.Model(&model.Order{}).Count(&count)
	if count != 1 {
		t.Errorf("同一冲突键应只有一行, 实际 %d 行", count)
	}

	// 不同配置下的同一平台订单号是不同的行
	if err := repo.UpsertFromMarket(ctx, marketOrder(2, "M-1001")); err != nil {
		t.Fatalf("跨配置 upsert 失败: %v", err)
	}
	db.Model(&model.Order{}).Count(&count)
	if count != 2 {
		t.Errorf("不同配置应各有一行, 实际 %d 行", count)
	}
}

func TestOrderRepository_UpsertFromMarket_PreservesInternalFields(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	first := marketOrder(1, "M-2001")
	if err := repo.UpsertFromMarket(ctx, first); err != nil {
		t.Fatalf("首次 upsert 失败: %v", err)
	}

	// 运营侧手动推进状态并留备注
	err := repo.UpdateFields(ctx, first.ID, map[string]interface{}{
		"status":      model.OrderStatusShipped,
		"memo":        "客户催发货",
		"tracking_no": "CJ123456789",
	})
	if err != nil {
		t.Fatalf("更新内部字段失败: %v", err)
	}

	// 平台侧状态变化后再次同步
	second := marketOrder(1, "M-2001")
	second.MarketStatus = "DELIVERING"
	second.BuyerPhone = "010-1111-2222"
	if err := repo.UpsertFromMarket(ctx, second); err != nil {
		t.Fatalf("二次 upsert 失败: %v", err)
	}

	got, err := repo.GetByMarketOrderID(ctx, 1, "M-2001")
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if got == nil {
		t.Fatal("订单不应为空")
	}

	if got.MarketStatus != "DELIVERING" {
		t.Errorf("平台状态应被刷新, 实际 %s", got.MarketStatus)
	}
	if got.BuyerPhone != "010-1111-2222" {
		t.Errorf("买家电话应被刷新, 实际 %s", got.BuyerPhone)
	}
	if got.Status != model.OrderStatusShipped {
		t.Errorf("内部状态不应被同步覆盖, 实际 %s", got.Status)
	}
	if got.Memo != "客户催发货" {
		t.Errorf("备注不应被同步覆盖, 实际 %s", got.Memo)
	}
	if got.TrackingNo != "CJ123456789" {
		t.Errorf("物流单号不应被同步覆盖, 实际 %s", got.TrackingNo)
	}
}

func TestOrderRepository_GetByMarketOrderID_NotFound(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewOrderRepository(db)

	got, err := repo.GetByMarketOrderID(context.Background(), 1, "missing")
	if err != nil {
		t.Fatalf("不存在的订单不应报错: %v", err)
	}
	if got != nil {
		t.Error("不存在的订单应返回 nil")
	}
}

// ==================== 订单列表过滤 ====================

func TestOrderRepository_List_Filter(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	if err := db.Create(&model.MarketConfig{ID: 1, UserID: 10, MarketCode: model.MarketCoupang, Active: true}).Error; err != nil {
		t.Fatalf("创建配置失败: %v", err)
	}

	for i, status := range []string{model.OrderStatusCollected, model.OrderStatusShipped, model.OrderStatusShipped} {
		o := marketOrder(1, "M-300"+string(rune('1'+i)))
		o.Status = status
		if err := repo.Create(ctx, o); err != nil {
			t.Fatalf("创建订单失败: %v", err)
		}
	}

	orders, total, err := repo.List(ctx, OrderFilter{Status: model.OrderStatusShipped})
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if total != 2 || len(orders) != 2 {
		t.Errorf("按状态过滤应命中 2 行, 实际 total=%d len=%d", total, len(orders))
	}

	// 按用户过滤走配置子查询
	_, total, err = repo.List(ctx, OrderFilter{UserID: 10})
	if err != nil {
		t.Fatalf("按用户查询失败: %v", err)
	}
	if total != 3 {
		t.Errorf("用户 10 应命中 3 行, 实际 %d", total)
	}

	_, total, err = repo.List(ctx, OrderFilter{UserID: 99})
	if err != nil {
		t.Fatalf("按用户查询失败: %v", err)
	}
	if total != 0 {
		t.Errorf("用户 99 应命中 0 行, 实际 %d", total)
	}

	// 关键字命中买家姓名
	_, total, err = repo.List(ctx, OrderFilter{Keyword: "철수"})
	if err != nil {
		t.Fatalf("关键字查询失败: %v", err)
	}
	if total != 3 {
		t.Errorf("关键字应命中 3 行, 实际 %d", total)
	}
}

// ==================== 咨询 upsert ====================

func marketInquiry(configID int64, inquiryID string) *model.CsInquiry {
	now := time.Now()
	return &model.CsInquiry{
		MarketConfigID: configID,
		InquiryID:      inquiryID,
		WriterID:       "buyer01",
		Title:          "배송 문의",
		Content:        "언제 도착하나요?",
		InquiredAt:     &now,
	}
}

func TestCsInquiryRepository_UpsertFromMarket_PreservesReply(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewCsInquiryRepository(db)
	ctx := context.Background()

	first := marketInquiry(1, "INQ-1")
	if err := repo.UpsertFromMarket(ctx, first); err != nil {
		t.Fatalf("首次 upsert 失败: %v", err)
	}

	if err := repo.MarkReplied(ctx, first.ID, "내일 도착 예정입니다"); err != nil {
		t.Fatalf("标记已回复失败: %v", err)
	}

	if err := repo.UpsertFromMarket(ctx, marketInquiry(1, "INQ-1")); err != nil {
		t.Fatalf("二次 upsert 失败: %v", err)
	}

	got, err := repo.GetByInquiryID(ctx, 1, "INQ-1")
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if got == nil {
		t.Fatal("咨询不应为空")
	}
	if !got.Answered {
		t.Error("已答标记不应被同步覆盖")
	}
	if got.ReplyContent != "내일 도착 예정입니다" {
		t.Errorf("回复内容不应被同步覆盖, 实际 %s", got.ReplyContent)
	}

	var count int64
	db.Model(&model.CsInquiry{}).Count(&count)
	if count != 1 {
		t.Errorf("同一冲突键应只有一行, 实际 %d 行", count)
	}
}

func TestCsInquiryRepository_GetByInquiryID_NotFound(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewCsInquiryRepository(db)

	got, err := repo.GetByInquiryID(context.Background(), 1, "missing")
	if err != nil {
		t.Fatalf("不存在的咨询不应报错: %v", err)
	}
	if got != nil {
		t.Error("不存在的咨询应返回 nil")
	}
}
