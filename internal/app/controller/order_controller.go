package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wuwumall/wuwumall-backend/internal/app/service"
	apperrors "github.com/wuwumall/wuwumall-backend/internal/errors"
	"github.com/wuwumall/wuwumall-backend/internal/middleware"
)

type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{orderService: orderService}
}

type CheckoutRequest struct {
	AddressID string `json:"addressId"`
	Remark    string `json:"remark"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// Checkout turns the cart into an order
// POST /api/v1/orders
func (ctrl *OrderController) Checkout(c *gin.Context) {
	var req CheckoutRequest
	// Body is optional: address and remark may be absent
	_ = c.ShouldBindJSON(&req)

	userID := c.GetString(middleware.UserIDKey)
	order, err := ctrl.orderService.Checkout(c.Request.Context(), userID, req.AddressID, req.Remark)
	if err != nil {
		if errors.Is(err, service.ErrEmptyCart) {
			apperrors.BadRequest(c, apperrors.OrderEmptyCart, err.Error())
			return
		}
		apperrors.RespondStoreError(c, err, "create order")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "订单提交成功",
		"order":   order,
	})
}

// List returns the current user's orders, newest first
// GET /api/v1/orders
func (ctrl *OrderController) List(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	orders, err := ctrl.orderService.ListByUser(c.Request.Context(), userID)
	if err != nil {
		apperrors.RespondStoreError(c, err, "list orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"orders":  orders,
		"total":   len(orders),
	})
}

// Get returns one of the current user's orders
// GET /api/v1/orders/:id
func (ctrl *OrderController) Get(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	order, err := ctrl.orderService.GetByID(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"order":   order,
	})
}

// Cancel cancels one of the current user's orders
// POST /api/v1/orders/:id/cancel
func (ctrl *OrderController) Cancel(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	order, err := ctrl.orderService.Cancel(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "订单已取消",
		"order":   order,
	})
}

// ListAll returns every order (seller dashboard)
// GET /api/v1/seller/orders
func (ctrl *OrderController) ListAll(c *gin.Context) {
	orders, err := ctrl.orderService.ListAll(c.Request.Context())
	if err != nil {
		apperrors.RespondStoreError(c, err, "list orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"orders":  orders,
		"total":   len(orders),
	})
}

// UpdateStatus advances an order's lifecycle (seller dashboard)
// PUT /api/v1/seller/orders/:id/status
func (ctrl *OrderController) UpdateStatus(c *gin.Context) {
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "请指定订单状态")
		return
	}

	order, err := ctrl.orderService.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "订单状态已更新",
		"order":   order,
	})
}

func respondOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		apperrors.NotFound(c, apperrors.OrderNotFound, err.Error())
	case errors.Is(err, service.ErrNotOrderOwner):
		apperrors.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrInvalidTransition):
		apperrors.Conflict(c, apperrors.OrderInvalidTransition, err.Error())
	default:
		apperrors.RespondStoreError(c, err, "order")
	}
}
