package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"kmarket_dev_v1_202608/internal/model"
	"kmarket_dev_v1_202608/internal/repository"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ==================== 测试辅助 ====================

func setupLifecycleTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	if err := db.AutoMigrate(&model.Order{}, &model.OrderItem{}); err != nil {
		t.Fatalf("自动建表失败: %v", err)
	}
	return db
}

func createTestOrder(t *testing.T, db *gorm.DB, id int64, status string) {
	order := &model.Order{
		ID:             id,
		MarketConfigID: 1,
		MarketOrderID:  fmt.Sprintf("test-order-%d", id),
		Status:         status,
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("创建测试订单失败: %v", err)
	}
}

// ==================== 状态流转规则 ====================

func TestCanTransition_FlowForward(t *testing.T) {
	cases := []struct {
		current string
		next    string
		want    bool
	}{
		// 流程内严格向前
		{model.OrderStatusCollected, model.OrderStatusOrdered, true},
		{model.OrderStatusCollected, model.OrderStatusConfirmed, true},
		{model.OrderStatusOrdered, model.OrderStatusCollected, false},
		{model.OrderStatusShipped, model.OrderStatusOverseasShipping, false},
		{model.OrderStatusDelivered, model.OrderStatusConfirmed, true},
		// 同状态空操作
		{model.OrderStatusShipped, model.OrderStatusShipped, true},
		{model.OrderStatusCancelled, model.OrderStatusCancelled, true},
		{model.OrderStatusExchanged, model.OrderStatusExchanged, true},
		// 未知当前状态按初始态处理
		{"", model.OrderStatusOrdered, true},
		{"garbage", model.OrderStatusOrdered, true},
		{"", model.OrderStatusCollected, true},
	}

	for _, c := range cases {
		if got := CanTransition(c.current, c.next); got != c.want {
			t.Errorf("CanTransition(%q, %q) = %v, want %v", c.current, c.next, got, c.want)
		}
	}
}

func TestCanTransition_ExceptionStates(t *testing.T) {
	cases := []struct {
		current string
		next    string
		want    bool
	}{
		// 取消：非终态都可以
		{model.OrderStatusCollected, model.OrderStatusCancelled, true},
		{model.OrderStatusShipped, model.OrderStatusCancelled, true},
		{model.OrderStatusReturned, model.OrderStatusCancelled, true},
		// 退货：除终态外都可以
		{model.OrderStatusCollected, model.OrderStatusReturned, true},
		{model.OrderStatusConfirmed, model.OrderStatusReturned, true},
		// 换货：只能从退货/已发货/已送达/已确认
		{model.OrderStatusReturned, model.OrderStatusExchanged, true},
		{model.OrderStatusShipped, model.OrderStatusExchanged, true},
		{model.OrderStatusDelivered, model.OrderStatusExchanged, true},
		{model.OrderStatusConfirmed, model.OrderStatusExchanged, true},
		{model.OrderStatusCollected, model.OrderStatusExchanged, false},
		{model.OrderStatusOrdered, model.OrderStatusExchanged, false},
	}

	for _, c := range cases {
		if got := CanTransition(c.current, c.next); got != c.want {
			t.Errorf("CanTransition(%q, %q) = %v, want %v", c.current, c.next, got, c.want)
		}
	}
}

func TestCanTransition_TerminalStates(t *testing.T) {
	// 取消和换货是终态，除自身外没有合法出边
	for _, terminal := range []string{model.OrderStatusCancelled, model.OrderStatusExchanged} {
		targets := append([]string{}, model.StatusFlow...)
		targets = append(targets, model.OrderStatusCancelled, model.OrderStatusReturned, model.OrderStatusExchanged)
		for _, next := range targets {
			want := next == terminal
			if got := CanTransition(terminal, next); got != want {
				t.Errorf("CanTransition(%q, %q) = %v, want %v", terminal, next, got, want)
			}
		}
	}
}

// ==================== 状态变更 ====================

func TestLifecycleService_ApplyStatus(t *testing.T) {
	db := setupLifecycleTestDB(t)
	orderRepo := repository.NewOrderRepository(db)
	svc := NewLifecycleService(orderRepo)
	ctx := context.Background()

	createTestOrder(t, db, 1, model.OrderStatusCollected)

	if err := svc.ApplyStatus(ctx, 1, model.OrderStatusOrdered); err != nil {
		t.Fatalf("合法流转失败: %v", err)
	}

	order, _ := orderRepo.GetByID(ctx, 1)
	if order.Status != model.OrderStatusOrdered {
		t.Errorf("status = %s, want %s", order.Status, model.OrderStatusOrdered)
	}

	// 回退是非法的
	if err := svc.ApplyStatus(ctx, 1, model.OrderStatusCollected); err == nil {
		t.Error("回退流转应被拒绝")
	}

	// 未知目标状态
	if err := svc.ApplyStatus(ctx, 1, "bogus"); err == nil {
		t.Error("未知状态应被拒绝")
	}
}

// ==================== 批量步进 ====================

func TestLifecycleService_StepOrders(t *testing.T) {
	db := setupLifecycleTestDB(t)
	orderRepo := repository.NewOrderRepository(db)
	svc := NewLifecycleService(orderRepo)
	ctx := context.Background()

	createTestOrder(t, db, 1, model.OrderStatusCollected)
	createTestOrder(t, db, 2, model.OrderStatusShipped)
	createTestOrder(t, db, 3, model.OrderStatusConfirmed) // 流程顶端
	createTestOrder(t, db, 4, model.OrderStatusCancelled) // 终态

	result, err := svc.StepOrders(ctx, []int64{1, 2, 3, 4}, StepUp)
	if err != nil {
		t.Fatalf("批量步进失败: %v", err)
	}
	if len(result.Updated) != 2 {
		t.Errorf("updated = %v, want 2 个", result.Updated)
	}
	if len(result.Skipped) != 2 {
		t.Errorf("skipped = %v, want 2 个", result.Skipped)
	}

	order1, _ := orderRepo.GetByID(ctx, 1)
	if order1.Status != model.OrderStatusOrdered {
		t.Errorf("订单1 status = %s, want %s", order1.Status, model.OrderStatusOrdered)
	}
	order2, _ := orderRepo.GetByID(ctx, 2)
	if order2.Status != model.OrderStatusDelivered {
		t.Errorf("订单2 status = %s, want %s", order2.Status, model.OrderStatusDelivered)
	}
}

func TestLifecycleService_StepOrders_Boundary(t *testing.T) {
	db := setupLifecycleTestDB(t)
	orderRepo := repository.NewOrderRepository(db)
	svc := NewLifecycleService(orderRepo)
	ctx := context.Background()

	createTestOrder(t, db, 1, model.OrderStatusConfirmed)
	createTestOrder(t, db, 2, model.OrderStatusCollected)

	// 顶端向上全部跳过，错误信息带示例 (id + status)
	_, err := svc.StepOrders(ctx, []int64{1}, StepUp)
	if err == nil {
		t.Fatal("全部跳过时应返回错误")
	}
	if !strings.Contains(err.Error(), "1") || !strings.Contains(err.Error(), model.OrderStatusConfirmed) {
		t.Errorf("错误信息应包含示例订单与状态: %v", err)
	}

	// 底端向下同理
	_, err = svc.StepOrders(ctx, []int64{2}, StepDown)
	if err == nil {
		t.Fatal("底端向下应返回错误")
	}
	if !strings.Contains(err.Error(), model.OrderStatusCollected) {
		t.Errorf("错误信息应包含示例状态: %v", err)
	}
}

func TestLifecycleService_StepOrders_BadDirection(t *testing.T) {
	db := setupLifecycleTestDB(t)
	svc := NewLifecycleService(repository.NewOrderRepository(db))

	if _, err := svc.StepOrders(context.Background(), []int64{1}, "sideways"); err == nil {
		t.Error("未知方向应被拒绝")
	}
}
