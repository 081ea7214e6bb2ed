package service

import (
	"context"
	"fmt"

	"kmarket_dev_v1_202608/internal/model"
	"kmarket_dev_v1_202608/internal/repository"
)

// ==================== LifecycleService 订单状态机服务 ====================

// 批量步进方向
const (
	StepUp   = "up"
	StepDown = "down"
)

// LifecycleService 订单内部状态流转服务
type LifecycleService struct {
	orderRepo repository.OrderRepository
}

// NewLifecycleService 创建状态机服务
func NewLifecycleService(orderRepo repository.OrderRepository) *LifecycleService {
	return &LifecycleService{orderRepo: orderRepo}
}

// ==================== 状态流转规则 ====================

// CanTransition 判断内部状态能否从 current 流转到 next
func CanTransition(current, next string) bool {
	// 未知状态视为初始态
	if model.FlowIndex(current) < 0 && !isExceptionStatus(current) {
		current = model.OrderStatusCollected
	}

	// 同状态为合法空操作
	if current == next {
		return true
	}

	// 终态无出边
	if model.IsTerminalStatus(current) {
		return false
	}

	switch next {
	case model.OrderStatusCancelled:
		return true
	case model.OrderStatusReturned:
		return true
	case model.OrderStatusExchanged:
		switch current {
		case model.OrderStatusReturned, model.OrderStatusShipped, model.OrderStatusDelivered, model.OrderStatusConfirmed:
			return true
		}
		return false
	}

	// 流程状态之间只允许严格向前
	curIdx := model.FlowIndex(current)
	nextIdx := model.FlowIndex(next)
	if curIdx >= 0 && nextIdx >= 0 {
		return nextIdx > curIdx
	}
	return false
}

func isExceptionStatus(status string) bool {
	switch status {
	case model.OrderStatusCancelled, model.OrderStatusReturned, model.OrderStatusExchanged:
		return true
	}
	return false
}

// ==================== 状态变更 ====================

// ApplyStatus 校验并持久化状态变更
func (s *LifecycleService) ApplyStatus(ctx context.Context, orderID int64, next string) error {
	if model.FlowIndex(next) < 0 && !isExceptionStatus(next) {
		return fmt.Errorf("未知订单状态: %s", next)
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("订单不存在")
	}

	if !CanTransition(order.Status, next) {
		return fmt.Errorf("订单 %d 状态不允许从 %s 变更为 %s", orderID, order.Status, next)
	}

	if order.Status == next {
		return nil
	}

	if err := s.orderRepo.UpdateStatus(ctx, orderID, next); err != nil {
		return fmt.Errorf("更新订单状态失败: %w", err)
	}
	return nil
}

// ==================== 批量步进 ====================

// StepResult 批量步进结果
type StepResult struct {
	Updated []int64
	Skipped []SkippedOrder
}

// SkippedOrder 被跳过的订单及其当前状态
type SkippedOrder struct {
	ID     int64
	Status string
}

// StepOrders 将一组订单沿流程数组各移动一格
// 处于终态/异常态或流程边界的订单跳过并单独上报
func (s *LifecycleService) StepOrders(ctx context.Context, orderIDs []int64, direction string) (*StepResult, error) {
	if direction != StepUp && direction != StepDown {
		return nil, fmt.Errorf("未知步进方向: %s", direction)
	}
	if len(orderIDs) == 0 {
		return nil, fmt.Errorf("订单 ID 列表为空")
	}

	orders, err := s.orderRepo.GetByIDs(ctx, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("查询订单失败: %w", err)
	}
	if len(orders) == 0 {
		return nil, fmt.Errorf("订单不存在")
	}

	result := &StepResult{}
	for _, order := range orders {
		next, ok := stepStatus(order.Status, direction)
		if !ok {
			result.Skipped = append(result.Skipped, SkippedOrder{ID: order.ID, Status: order.Status})
			continue
		}
		if err := s.orderRepo.UpdateStatus(ctx, order.ID, next); err != nil {
			return nil, fmt.Errorf("更新订单 %d 状态失败: %w", order.ID, err)
		}
		result.Updated = append(result.Updated, order.ID)
	}

	// 全部被跳过时附带一个示例帮助排查
	if len(result.Updated) == 0 && len(result.Skipped) > 0 {
		example := result.Skipped[0]
		return nil, fmt.Errorf("没有可变更的订单, 例如订单 %d 当前状态为 %s", example.ID, example.Status)
	}

	return result, nil
}

// stepStatus 计算单个订单步进后的状态, 不可步进时返回 false
func stepStatus(current, direction string) (string, bool) {
	idx := model.FlowIndex(current)
	if idx < 0 {
		if isExceptionStatus(current) {
			return "", false
		}
		idx = 0
	}

	if direction == StepUp {
		if idx >= len(model.StatusFlow)-1 {
			return "", false
		}
		return model.StatusFlow[idx+1], true
	}
	if idx <= 0 {
		return "", false
	}
	return model.StatusFlow[idx-1], true
}
