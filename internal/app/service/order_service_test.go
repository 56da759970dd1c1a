package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wuwumall/wuwumall-backend/internal/app/model"
	"github.com/wuwumall/wuwumall-backend/internal/app/repository"
	"github.com/wuwumall/wuwumall-backend/internal/events"
	"github.com/wuwumall/wuwumall-backend/internal/store"
)

type orderFixture struct {
	service OrderService
	cart    CartService
	orders  repository.OrderRepository
	bus     *events.Bus
}

func setupOrderServiceTest(t *testing.T) *orderFixture {
	t.Helper()

	s, err := store.OpenFileStore(t.TempDir())
	require.NoError(t, err)

	productRepo := repository.NewProductRepository(s)
	cartService := NewCartService(repository.NewCartRepository(s), nil, productRepo)
	orderRepo := repository.NewOrderRepository(s)
	bus := events.NewBus()
	service := NewOrderService(orderRepo, cartService, repository.NewActivityRepository(s), bus)

	now := time.Now()
	require.NoError(t, productRepo.Create(context.Background(), &model.Product{
		ID: "prod_1", Name: "保温杯", Price: 89, Category: "home",
		Stock: 100, IsOnSale: true, CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, productRepo.Create(context.Background(), &model.Product{
		ID: "prod_2", Name: "机械键盘", Price: 399, Category: "electronics",
		Stock: 30, IsOnSale: true, CreatedAt: now, UpdatedAt: now,
	}))

	return &orderFixture{service: service, cart: cartService, orders: orderRepo, bus: bus}
}

func TestOrderService_Checkout(t *testing.T) {
	f := setupOrderServiceTest(t)
	ctx := context.Background()

	t.Run("Empty cart", func(t *testing.T) {
		_, err := f.service.Checkout(ctx, "user_1", "", "")
		assert.ErrorIs(t, err, ErrEmptyCart)
	})

	_, err := f.cart.AddToCart(ctx, "user_1", "prod_1", 2)
	require.NoError(t, err)
	_, err = f.cart.AddToCart(ctx, "user_1", "prod_2", 1)
	require.NoError(t, err)

	var published []events.Event
	f.bus.Subscribe(events.TopicOrderCreated, func(e events.Event) {
		published = append(published, e)
	})

	order, err := f.service.Checkout(ctx, "user_1", "addr_1", "尽快发货")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, float64(89*2+399), order.Total)
	assert.Len(t, order.Items, 2)
	assert.Equal(t, "addr_1", order.AddressID)
	assert.Len(t, published, 1)

	// Cart is emptied by checkout
	summary, err := f.cart.GetCart(ctx, "user_1")
	require.NoError(t, err)
	assert.Empty(t, summary.Items)
}

func TestOrderService_StatusTransitions(t *testing.T) {
	f := setupOrderServiceTest(t)
	ctx := context.Background()

	_, err := f.cart.AddToCart(ctx, "user_1", "prod_1", 1)
	require.NoError(t, err)
	order, err := f.service.Checkout(ctx, "user_1", "", "")
	require.NoError(t, err)

	t.Run("Cannot skip ahead", func(t *testing.T) {
		_, err := f.service.UpdateStatus(ctx, order.ID, model.OrderStatusShipped)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("Forward path", func(t *testing.T) {
		paid, err := f.service.UpdateStatus(ctx, order.ID, model.OrderStatusPaid)
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusPaid, paid.Status)

		shipped, err := f.service.UpdateStatus(ctx, order.ID, model.OrderStatusShipped)
		require.NoError(t, err)
		require.NotNil(t, shipped.ShippedAt)

		completed, err := f.service.UpdateStatus(ctx, order.ID, model.OrderStatusCompleted)
		require.NoError(t, err)
		require.NotNil(t, completed.CompletedAt)
	})

	t.Run("Terminal orders never move", func(t *testing.T) {
		_, err := f.service.UpdateStatus(ctx, order.ID, model.OrderStatusPaid)
		assert.ErrorIs(t, err, ErrInvalidTransition)

		_, err = f.service.UpdateStatus(ctx, order.ID, model.OrderStatusCancelled)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestOrderService_Cancel(t *testing.T) {
	f := setupOrderServiceTest(t)
	ctx := context.Background()

	_, err := f.cart.AddToCart(ctx, "user_1", "prod_1", 1)
	require.NoError(t, err)
	order, err := f.service.Checkout(ctx, "user_1", "", "")
	require.NoError(t, err)

	t.Run("Only the owner cancels", func(t *testing.T) {
		_, err := f.service.Cancel(ctx, "user_2", order.ID)
		assert.ErrorIs(t, err, ErrNotOrderOwner)
	})

	t.Run("Cancel pending order", func(t *testing.T) {
		cancelled, err := f.service.Cancel(ctx, "user_1", order.ID)
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusCancelled, cancelled.Status)
	})

	t.Run("Cancel twice", func(t *testing.T) {
		_, err := f.service.Cancel(ctx, "user_1", order.ID)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestOrderService_CancelShippedOrder(t *testing.T) {
	f := setupOrderServiceTest(t)
	ctx := context.Background()

	_, err := f.cart.AddToCart(ctx, "user_1", "prod_1", 1)
	require.NoError(t, err)
	order, err := f.service.Checkout(ctx, "user_1", "", "")
	require.NoError(t, err)

	_, err = f.service.UpdateStatus(ctx, order.ID, model.OrderStatusPaid)
	require.NoError(t, err)
	_, err = f.service.UpdateStatus(ctx, order.ID, model.OrderStatusShipped)
	require.NoError(t, err)

	// Shipped is not terminal, so cancel still works
	cancelled, err := f.service.Cancel(ctx, "user_1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, cancelled.Status)
}

func TestOrderService_OwnerScopedRead(t *testing.T) {
	f := setupOrderServiceTest(t)
	ctx := context.Background()

	_, err := f.cart.AddToCart(ctx, "user_1", "prod_1", 1)
	require.NoError(t, err)
	order, err := f.service.Checkout(ctx, "user_1", "", "")
	require.NoError(t, err)

	_, err = f.service.GetByID(ctx, "user_2", order.ID)
	assert.ErrorIs(t, err, ErrNotOrderOwner)

	got, err := f.service.GetByID(ctx, "user_1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = f.service.GetByID(ctx, "user_1", "order_nope")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
