package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wuwumall/wuwumall-backend/internal/app/model"
	"github.com/wuwumall/wuwumall-backend/internal/app/repository"
	"github.com/wuwumall/wuwumall-backend/internal/store"
	"github.com/xuri/excelize/v2"
)

func setupSellerServiceTest(t *testing.T) (SellerService, repository.OrderRepository) {
	t.Helper()

	s, err := store.OpenFileStore(t.TempDir())
	require.NoError(t, err)

	orderRepo := repository.NewOrderRepository(s)
	productRepo := repository.NewProductRepository(s)
	userRepo := repository.NewUserRepository(s)
	ctx := context.Background()

	require.NoError(t, userRepo.Create(ctx, &model.User{
		ID: "user_1", Username: "alice", Phone: "13800138000",
		Status: model.StatusActive, Role: model.RoleCustomer,
	}))
	require.NoError(t, productRepo.Create(ctx, &model.Product{
		ID: "prod_1", Name: "台灯", Price: 129, Category: "home",
	}))

	now := time.Now()
	orders := []model.Order{
		{ID: "order_1", UserID: "user_1", Total: 258, Status: model.OrderStatusPaid,
			Items: []model.OrderItem{{ProductID: "prod_1", Quantity: 2, Price: 129}},
			CreatedAt: now, UpdatedAt: now},
		{ID: "order_2", UserID: "user_1", Total: 129, Status: model.OrderStatusPending,
			Items: []model.OrderItem{{ProductID: "prod_1", Quantity: 1, Price: 129}},
			CreatedAt: now.AddDate(0, 0, -2), UpdatedAt: now},
		{ID: "order_3", UserID: "user_1", Total: 500, Status: model.OrderStatusCancelled,
			CreatedAt: now, UpdatedAt: now},
	}
	for i := range orders {
		require.NoError(t, orderRepo.Create(ctx, &orders[i]))
	}

	return NewSellerService(orderRepo, productRepo, userRepo), orderRepo
}

func TestSellerService_DashboardStats(t *testing.T) {
	service, _ := setupSellerServiceTest(t)

	stats, err := service.GetDashboardStats(context.Background())
	require.NoError(t, err)

	// Cancelled orders are excluded from totals but counted by status
	assert.Equal(t, 2, stats.TotalOrders)
	assert.Equal(t, float64(387), stats.TotalRevenue)
	assert.Equal(t, 1, stats.PendingOrders)
	assert.Equal(t, 1, stats.ProductCount)
	assert.Equal(t, 1, stats.CustomerCount)
	assert.Equal(t, 1, stats.StatusCounts[model.OrderStatusCancelled])

	require.Len(t, stats.SalesByDay, 7)
	today := stats.SalesByDay[6]
	assert.Equal(t, 1, today.Orders)
	assert.Equal(t, float64(258), today.Amount)

	require.Len(t, stats.TopCustomers, 1)
	assert.Equal(t, "alice", stats.TopCustomers[0].Username)
	assert.Equal(t, float64(387), stats.TopCustomers[0].TotalSpent)
}

func TestSellerService_ListCustomers(t *testing.T) {
	service, _ := setupSellerServiceTest(t)

	customers, err := service.ListCustomers(context.Background())
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, 2, customers[0].OrderCount)
	assert.Equal(t, "13800138000", customers[0].Phone)
}

func TestSellerService_ExportProductsXLSX(t *testing.T) {
	service, _ := setupSellerServiceTest(t)

	data, err := service.ExportProductsXLSX(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "商品ID", rows[0][0])
	assert.Equal(t, "台灯", rows[1][1])
}

func TestSellerService_ExportOrdersXLSX(t *testing.T) {
	service, _ := setupSellerServiceTest(t)

	data, err := service.ExportOrdersXLSX(context.Background())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	// Header plus all three orders, cancelled included
	assert.Len(t, rows, 4)
}
