package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/wuwumall/wuwumall-backend/internal/app/model"
	"github.com/wuwumall/wuwumall-backend/internal/app/repository"
	"github.com/wuwumall/wuwumall-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

// DailySales is one point of the dashboard sales chart
type DailySales struct {
	Date   string  `json:"date"`
	Orders int     `json:"orders"`
	Amount float64 `json:"amount"`
}

// CustomerSummary aggregates a customer's purchase history
type CustomerSummary struct {
	UserID     string  `json:"userId"`
	Username   string  `json:"username"`
	Phone      string  `json:"phone"`
	OrderCount int     `json:"orderCount"`
	TotalSpent float64 `json:"totalSpent"`
}

// DashboardStats is the seller dashboard payload
type DashboardStats struct {
	TotalOrders   int               `json:"totalOrders"`
	TotalRevenue  float64           `json:"totalRevenue"`
	PendingOrders int               `json:"pendingOrders"`
	ProductCount  int               `json:"productCount"`
	CustomerCount int               `json:"customerCount"`
	SalesByDay    []DailySales      `json:"salesByDay"`
	StatusCounts  map[string]int    `json:"statusCounts"`
	TopCustomers  []CustomerSummary `json:"topCustomers"`
}

type SellerService interface {
	GetDashboardStats(ctx context.Context) (*DashboardStats, error)
	ListCustomers(ctx context.Context) ([]CustomerSummary, error)
	ExportProductsXLSX(ctx context.Context) ([]byte, error)
	ExportOrdersXLSX(ctx context.Context) ([]byte, error)
}

type sellerService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
}

func NewSellerService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
) SellerService {
	return &sellerService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
	}
}

func (s *sellerService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	orders, err := s.orderRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		ProductCount: len(products),
		StatusCounts: map[string]int{},
	}

	// Trailing seven days, oldest first
	today := time.Now().Truncate(24 * time.Hour)
	byDay := map[string]*DailySales{}
	for i := 6; i >= 0; i-- {
		date := today.AddDate(0, 0, -i).Format("2006-01-02")
		point := &DailySales{Date: date}
		byDay[date] = point
		stats.SalesByDay = append(stats.SalesByDay, *point)
	}

	customers := map[string]*CustomerSummary{}
	for _, order := range orders {
		stats.StatusCounts[order.Status]++
		if order.Status == model.OrderStatusPending {
			stats.PendingOrders++
		}
		if order.Status == model.OrderStatusCancelled {
			continue
		}

		stats.TotalOrders++
		stats.TotalRevenue += order.Total

		date := order.CreatedAt.Format("2006-01-02")
		if point, ok := byDay[date]; ok {
			point.Orders++
			point.Amount += order.Total
		}

		c, ok := customers[order.UserID]
		if !ok {
			c = &CustomerSummary{UserID: order.UserID}
			customers[order.UserID] = c
		}
		c.OrderCount++
		c.TotalSpent += order.Total
	}

	for i, point := range stats.SalesByDay {
		if updated, ok := byDay[point.Date]; ok {
			stats.SalesByDay[i] = *updated
		}
	}

	stats.CustomerCount = len(customers)
	stats.TopCustomers = s.resolveCustomers(ctx, customers, 10)

	logger.Debug("Dashboard stats computed", map[string]interface{}{
		"orders":    stats.TotalOrders,
		"revenue":   stats.TotalRevenue,
		"customers": stats.CustomerCount,
	})
	return stats, nil
}

func (s *sellerService) ListCustomers(ctx context.Context) ([]CustomerSummary, error) {
	orders, err := s.orderRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	customers := map[string]*CustomerSummary{}
	for _, order := range orders {
		if order.Status == model.OrderStatusCancelled {
			continue
		}
		c, ok := customers[order.UserID]
		if !ok {
			c = &CustomerSummary{UserID: order.UserID}
			customers[order.UserID] = c
		}
		c.OrderCount++
		c.TotalSpent += order.Total
	}

	return s.resolveCustomers(ctx, customers, 0), nil
}

// resolveCustomers fills in usernames and phones and returns customers
// sorted by spend. limit 0 means all.
func (s *sellerService) resolveCustomers(ctx context.Context, customers map[string]*CustomerSummary, limit int) []CustomerSummary {
	result := make([]CustomerSummary, 0, len(customers))
	for userID, c := range customers {
		if user, err := s.userRepo.FindByID(ctx, userID); err == nil {
			c.Username = user.Username
			c.Phone = user.Phone
		}
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].TotalSpent > result[j].TotalSpent
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

// ExportProductsXLSX writes the catalog into a spreadsheet
func (s *sellerService) ExportProductsXLSX(ctx context.Context) ([]byte, error) {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	headers := []string{"商品ID", "名称", "分类", "价格", "原价", "库存", "销量", "热卖", "上架"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, p := range products {
		values := []interface{}{
			p.ID, p.Name, p.Category, p.Price, p.OriginalPrice,
			p.Stock, p.Sales, boolToCN(p.IsHot), boolToCN(p.IsOnSale),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	logger.Info("Product export generated", map[string]interface{}{
		"count": len(products),
	})
	return buf.Bytes(), nil
}

// ExportOrdersXLSX writes all orders into a spreadsheet
func (s *sellerService) ExportOrdersXLSX(ctx context.Context) ([]byte, error) {
	orders, err := s.orderRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	headers := []string{"订单号", "用户ID", "状态", "金额", "商品数", "下单时间", "发货时间", "完成时间"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, o := range orders {
		itemCount := 0
		for _, item := range o.Items {
			itemCount += item.Quantity
		}
		values := []interface{}{
			o.ID, o.UserID, o.Status, o.Total, itemCount,
			o.CreatedAt.Format("2006-01-02 15:04:05"),
			formatTimePtr(o.ShippedAt),
			formatTimePtr(o.CompletedAt),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	logger.Info("Order export generated", map[string]interface{}{
		"count": len(orders),
	})
	return buf.Bytes(), nil
}

func boolToCN(b bool) string {
	if b {
		return "是"
	}
	return "否"
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}
