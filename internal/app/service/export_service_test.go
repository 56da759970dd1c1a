package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wuwumall/wuwumall-backend/internal/app/model"
	"github.com/wuwumall/wuwumall-backend/internal/app/repository"
	"github.com/wuwumall/wuwumall-backend/internal/store"
)

type exportFixture struct {
	service ExportService
	cart    repository.CartRepository
	orders  repository.OrderRepository
}

func setupExportServiceTest(t *testing.T) *exportFixture {
	t.Helper()

	s, err := store.OpenFileStore(t.TempDir())
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(s)
	cartRepo := repository.NewCartRepository(s)
	orderRepo := repository.NewOrderRepository(s)
	addressRepo := repository.NewAddressRepository(s)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, userRepo.Create(ctx, &model.User{
		ID: "user_1", Username: "alice", Phone: "13800138000",
		PasswordHash: "$2a$12$hash", Status: model.StatusActive,
		Role: model.RoleCustomer, Points: 100, VIPLevel: 1,
		CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, cartRepo.Create(ctx, &model.CartItem{
		ID: "cart_1", UserID: "user_1", ProductID: "prod_1",
		Name: "毛毯", Price: 99, Quantity: 2, AddedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, orderRepo.Create(ctx, &model.Order{
		ID: "order_1", UserID: "user_1", Total: 99,
		Status: model.OrderStatusPaid, CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, addressRepo.Create(ctx, &model.Address{
		ID: "addr_1", UserID: "user_1", Recipient: "alice",
		Phone: "13800138000", Detail: "某某路1号", IsDefault: true,
		CreatedAt: now, UpdatedAt: now,
	}))

	return &exportFixture{
		service: NewExportService(userRepo, cartRepo, orderRepo, addressRepo),
		cart:    cartRepo,
		orders:  orderRepo,
	}
}

func TestExportService_Export(t *testing.T) {
	f := setupExportServiceTest(t)

	snapshot, err := f.service.Export(context.Background(), "user_1")
	require.NoError(t, err)

	assert.Equal(t, "1.0", snapshot.Version)
	assert.False(t, snapshot.ExportTime.IsZero())
	assert.Equal(t, "alice", snapshot.User.Username)
	assert.Len(t, snapshot.Cart, 1)
	assert.Len(t, snapshot.Orders, 1)
	assert.Len(t, snapshot.Addresses, 1)

	_, err = f.service.Export(context.Background(), "user_nope")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestExportService_ImportRoundTrip(t *testing.T) {
	f := setupExportServiceTest(t)
	ctx := context.Background()

	snapshot, err := f.service.Export(ctx, "user_1")
	require.NoError(t, err)

	// Wipe the cart, then restore from the snapshot
	require.NoError(t, f.cart.DeleteByUser(ctx, "user_1"))
	require.NoError(t, f.service.Import(ctx, "user_1", snapshot))

	items, err := f.cart.FindByUser(ctx, "user_1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "cart_1", items[0].ID)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestExportService_ImportRejectsBadSnapshots(t *testing.T) {
	f := setupExportServiceTest(t)
	ctx := context.Background()

	t.Run("Nil snapshot", func(t *testing.T) {
		assert.ErrorIs(t, f.service.Import(ctx, "user_1", nil), ErrUnsupportedSnapshot)
	})

	t.Run("Wrong version", func(t *testing.T) {
		err := f.service.Import(ctx, "user_1", &Snapshot{Version: "2.0"})
		assert.ErrorIs(t, err, ErrUnsupportedSnapshot)
	})

	t.Run("Foreign snapshot", func(t *testing.T) {
		snapshot, err := f.service.Export(ctx, "user_1")
		require.NoError(t, err)
		err = f.service.Import(ctx, "user_other", snapshot)
		assert.ErrorIs(t, err, ErrSnapshotMismatch)
	})
}
