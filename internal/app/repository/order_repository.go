package repository

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/wuwumall/wuwumall-backend/internal/app/model"
	"github.com/wuwumall/wuwumall-backend/internal/store"
)

// OrderRepository defines order persistence
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, id string) (*model.Order, error)
	FindByUser(ctx context.Context, userID string) ([]model.Order, error)
	FindByStatus(ctx context.Context, status string) ([]model.Order, error)
	FindAll(ctx context.Context) ([]model.Order, error)
	Update(ctx context.Context, order *model.Order) error
}

type orderRepository struct {
	store store.Store
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(s store.Store) OrderRepository {
	return &orderRepository{store: s}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	_, err := r.store.Add(ctx, "orders", order)
	return err
}

func (r *orderRepository) FindByID(ctx context.Context, id string) (*model.Order, error) {
	raw, err := r.store.Get(ctx, "orders", id)
	if err != nil {
		return nil, err
	}
	return decodeOrder(raw)
}

func (r *orderRepository) FindByUser(ctx context.Context, userID string) ([]model.Order, error) {
	raws, err := r.store.Query(ctx, "orders", "userId", userID)
	if err != nil {
		return nil, err
	}
	return decodeOrders(raws)
}

func (r *orderRepository) FindByStatus(ctx context.Context, status string) ([]model.Order, error) {
	raws, err := r.store.Query(ctx, "orders", "status", status)
	if err != nil {
		return nil, err
	}
	return decodeOrders(raws)
}

func (r *orderRepository) FindAll(ctx context.Context) ([]model.Order, error) {
	raws, err := r.store.GetAll(ctx, "orders")
	if err != nil {
		return nil, err
	}
	return decodeOrders(raws)
}

func (r *orderRepository) Update(ctx context.Context, order *model.Order) error {
	return r.store.Update(ctx, "orders", order)
}

func decodeOrder(raw json.RawMessage) (*model.Order, error) {
	var order model.Order
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// decodeOrders returns orders newest first regardless of backend order
func decodeOrders(raws []json.RawMessage) ([]model.Order, error) {
	orders := make([]model.Order, 0, len(raws))
	for _, raw := range raws {
		order, err := decodeOrder(raw)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}
