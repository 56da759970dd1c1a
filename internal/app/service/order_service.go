package service

import (
	"context"
	"errors"
	"time"

	"github.com/wuwumall/wuwumall-backend/internal/app/model"
	"github.com/wuwumall/wuwumall-backend/internal/app/repository"
	"github.com/wuwumall/wuwumall-backend/internal/events"
	"github.com/wuwumall/wuwumall-backend/internal/store"
	"github.com/wuwumall/wuwumall-backend/pkg/logger"
	"github.com/wuwumall/wuwumall-backend/pkg/util"
)

var (
	ErrOrderNotFound     = errors.New("订单不存在")
	ErrEmptyCart         = errors.New("购物车是空的，快去挑选商品吧")
	ErrInvalidTransition = errors.New("订单状态无法变更")
	ErrNotOrderOwner     = errors.New("无权操作该订单")
)

type OrderService interface {
	Checkout(ctx context.Context, userID, addressID, remark string) (*model.Order, error)
	GetByID(ctx context.Context, userID, orderID string) (*model.Order, error)
	ListByUser(ctx context.Context, userID string) ([]model.Order, error)
	ListAll(ctx context.Context) ([]model.Order, error)
	UpdateStatus(ctx context.Context, orderID, newStatus string) (*model.Order, error)
	Cancel(ctx context.Context, userID, orderID string) (*model.Order, error)
}

type orderService struct {
	orderRepo    repository.OrderRepository
	cartService  CartService
	activityRepo repository.ActivityRepository
	bus          *events.Bus
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	cartService CartService,
	activityRepo repository.ActivityRepository,
	bus *events.Bus,
) OrderService {
	return &orderService{
		orderRepo:    orderRepo,
		cartService:  cartService,
		activityRepo: activityRepo,
		bus:          bus,
	}
}

// Checkout turns the whole cart into a pending order and empties the
// cart. Item prices were snapshotted at add-to-cart time.
func (s *orderService) Checkout(ctx context.Context, userID, addressID, remark string) (*model.Order, error) {
	logger.Info("Checkout started", map[string]interface{}{
		"user_id": userID,
	})

	summary, err := s.cartService.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(summary.Items) == 0 {
		return nil, ErrEmptyCart
	}

	now := time.Now()
	order := &model.Order{
		ID:        util.NewID("order"),
		UserID:    userID,
		Status:    model.OrderStatusPending,
		Total:     summary.TotalPrice,
		AddressID: addressID,
		Remark:    remark,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, item := range summary.Items {
		order.Items = append(order.Items, model.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Image:     item.Image,
			Quantity:  item.Quantity,
		})
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		logger.Error("Failed to create order", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	if err := s.cartService.ClearCart(ctx, userID); err != nil {
		logger.Error("Failed to clear cart after checkout", err, map[string]interface{}{
			"user_id":  userID,
			"order_id": order.ID,
		})
	}

	s.logActivity(ctx, userID, model.ActivityOrderPlaced, "提交订单 "+order.ID)
	s.bus.Publish(events.TopicOrderCreated, map[string]interface{}{
		"orderId": order.ID,
		"userId":  userID,
		"total":   order.Total,
	})

	logger.Info("Order created", map[string]interface{}{
		"order_id": order.ID,
		"user_id":  userID,
		"total":    order.Total,
		"items":    len(order.Items),
	})
	return order, nil
}

func (s *orderService) GetByID(ctx context.Context, userID, orderID string) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if userID != "" && order.UserID != userID {
		return nil, ErrNotOrderOwner
	}
	return order, nil
}

func (s *orderService) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	return s.orderRepo.FindByUser(ctx, userID)
}

func (s *orderService) ListAll(ctx context.Context) ([]model.Order, error) {
	return s.orderRepo.FindAll(ctx)
}

// UpdateStatus moves an order along its lifecycle. Only forward moves
// are allowed; terminal orders never change.
func (s *orderService) UpdateStatus(ctx context.Context, orderID, newStatus string) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if !model.CanTransition(order.Status, newStatus) {
		logger.Warn("Rejected order status transition", map[string]interface{}{
			"order_id": orderID,
			"from":     order.Status,
			"to":       newStatus,
		})
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	order.Status = newStatus
	order.UpdatedAt = now

	switch newStatus {
	case model.OrderStatusShipped:
		order.ShippedAt = &now
		// The original sends a shipping notice email with an estimate
		// of three days; here it is a structured log line
		logger.Info("Shipping notice email (simulated)", map[string]interface{}{
			"order_id":           orderID,
			"user_id":            order.UserID,
			"subject":            "您的订单已发货",
			"estimated_delivery": now.Add(72 * time.Hour).Format("2006-01-02"),
		})
	case model.OrderStatusCompleted:
		order.CompletedAt = &now
	}

	if err := s.orderRepo.Update(ctx, order); err != nil {
		logger.Error("Failed to update order status", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}

	s.bus.Publish(events.TopicOrderUpdated, map[string]interface{}{
		"orderId": order.ID,
		"userId":  order.UserID,
		"status":  order.Status,
	})

	logger.Info("Order status updated", map[string]interface{}{
		"order_id": orderID,
		"status":   newStatus,
	})
	return order, nil
}

// Cancel is allowed from any non-terminal status and only by the owner
func (s *orderService) Cancel(ctx context.Context, userID, orderID string) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrNotOrderOwner
	}
	if !model.CanTransition(order.Status, model.OrderStatusCancelled) {
		return nil, ErrInvalidTransition
	}

	order.Status = model.OrderStatusCancelled
	order.UpdatedAt = time.Now()
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	s.logActivity(ctx, userID, model.ActivityOrderCancelled, "取消订单 "+order.ID)
	s.bus.Publish(events.TopicOrderUpdated, map[string]interface{}{
		"orderId": order.ID,
		"userId":  order.UserID,
		"status":  order.Status,
	})

	logger.Info("Order cancelled", map[string]interface{}{
		"order_id": orderID,
		"user_id":  userID,
	})
	return order, nil
}

func (s *orderService) logActivity(ctx context.Context, userID, action, detail string) {
	activity := &model.Activity{
		ID:        util.NewID("act"),
		UserID:    userID,
		Action:    action,
		Detail:    detail,
		Timestamp: time.Now(),
	}
	if err := s.activityRepo.Append(ctx, activity); err != nil {
		logger.Error("Failed to append activity", err, map[string]interface{}{
			"user_id": userID,
			"action":  action,
		})
	}
}
