package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wuwumall/wuwumall-backend/internal/app/service"
	apperrors "github.com/wuwumall/wuwumall-backend/internal/errors"
	"github.com/wuwumall/wuwumall-backend/internal/middleware"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{cartService: cartService}
}

type AddToCartRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

type UpdateCartRequest struct {
	Quantity int `json:"quantity"`
}

// Get returns the current user's cart
// GET /api/v1/cart
func (ctrl *CartController) Get(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	summary, err := ctrl.cartService.GetCart(c.Request.Context(), userID)
	if err != nil {
		apperrors.RespondStoreError(c, err, "cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"items":      summary.Items,
		"totalCount": summary.TotalCount,
		"totalPrice": summary.TotalPrice,
	})
}

// Add puts a product into the cart
// POST /api/v1/cart
func (ctrl *CartController) Add(c *gin.Context) {
	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "请选择商品")
		return
	}

	userID := c.GetString(middleware.UserIDKey)
	item, err := ctrl.cartService.AddToCart(c.Request.Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, err.Error())
			return
		}
		apperrors.RespondStoreError(c, err, "update cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "已加入购物车",
		"item":    item,
	})
}

// UpdateQuantity changes a line's quantity, zero removes it
// PUT /api/v1/cart/:productId
func (ctrl *CartController) UpdateQuantity(c *gin.Context) {
	var req UpdateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "数量无效")
		return
	}

	userID := c.GetString(middleware.UserIDKey)
	err := ctrl.cartService.UpdateQuantity(c.Request.Context(), userID, c.Param("productId"), req.Quantity)
	if err != nil {
		if errors.Is(err, service.ErrCartItemNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, err.Error())
			return
		}
		apperrors.RespondStoreError(c, err, "update cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "购物车已更新",
	})
}

// Remove deletes one line from the cart
// DELETE /api/v1/cart/:productId
func (ctrl *CartController) Remove(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	err := ctrl.cartService.RemoveFromCart(c.Request.Context(), userID, c.Param("productId"))
	if err != nil {
		if errors.Is(err, service.ErrCartItemNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, err.Error())
			return
		}
		apperrors.RespondStoreError(c, err, "delete cart item")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "已从购物车移除",
	})
}

// Clear empties the cart
// DELETE /api/v1/cart
func (ctrl *CartController) Clear(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	if err := ctrl.cartService.ClearCart(c.Request.Context(), userID); err != nil {
		apperrors.RespondStoreError(c, err, "delete cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "购物车已清空",
	})
}
