package controller

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wuwumall/wuwumall-backend/internal/app/service"
	apperrors "github.com/wuwumall/wuwumall-backend/internal/errors"
	"github.com/wuwumall/wuwumall-backend/internal/middleware"
)

type SellerController struct {
	sellerService service.SellerService
}

func NewSellerController(sellerService service.SellerService) *SellerController {
	return &SellerController{sellerService: sellerService}
}

// Stats returns the dashboard aggregates
// GET /api/v1/seller/stats
func (ctrl *SellerController) Stats(c *gin.Context) {
	stats, err := ctrl.sellerService.GetDashboardStats(c.Request.Context())
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to compute dashboard stats", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   stats,
	})
}

// Customers returns the aggregated customer list
// GET /api/v1/seller/customers
func (ctrl *SellerController) Customers(c *gin.Context) {
	customers, err := ctrl.sellerService.ListCustomers(c.Request.Context())
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"customers": customers,
	})
}

// ExportProducts streams the catalog as a spreadsheet
// GET /api/v1/seller/export/products
func (ctrl *SellerController) ExportProducts(c *gin.Context) {
	data, err := ctrl.sellerService.ExportProductsXLSX(c.Request.Context())
	if err != nil {
		apperrors.InternalError(c, "导出失败，请稍后重试")
		return
	}
	serveXLSX(c, "products", data)
}

// ExportOrders streams all orders as a spreadsheet
// GET /api/v1/seller/export/orders
func (ctrl *SellerController) ExportOrders(c *gin.Context) {
	data, err := ctrl.sellerService.ExportOrdersXLSX(c.Request.Context())
	if err != nil {
		apperrors.InternalError(c, "导出失败，请稍后重试")
		return
	}
	serveXLSX(c, "orders", data)
}

func serveXLSX(c *gin.Context, name string, data []byte) {
	filename := fmt.Sprintf("wuwumall_%s_%s.xlsx", name, time.Now().Format("20060102"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
