package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wuwumall/wuwumall-backend/internal/app/model"
	"github.com/wuwumall/wuwumall-backend/internal/app/service"
	apperrors "github.com/wuwumall/wuwumall-backend/internal/errors"
	"github.com/wuwumall/wuwumall-backend/internal/middleware"
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{productService: productService}
}

type ProductRequest struct {
	Name          string   `json:"name" binding:"required"`
	Price         float64  `json:"price" binding:"required,gt=0"`
	OriginalPrice float64  `json:"originalPrice"`
	Category      string   `json:"category" binding:"required"`
	Image         string   `json:"image"`
	Description   string   `json:"description"`
	Stock         int      `json:"stock"`
	IsHot         bool     `json:"isHot"`
	IsOnSale      bool     `json:"isOnSale"`
	Tags          []string `json:"tags"`
}

// List returns the catalog with optional filters
// GET /api/v1/products?category=&keyword=&hot=&onSale=
func (ctrl *ProductController) List(c *gin.Context) {
	filter := service.ProductFilter{
		Category: c.Query("category"),
		Keyword:  c.Query("keyword"),
		HotOnly:  c.Query("hot") == "true",
		OnSale:   c.Query("onSale") == "true",
	}

	products, err := ctrl.productService.List(c.Request.Context(), filter)
	if err != nil {
		apperrors.RespondStoreError(c, err, "list products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"products": products,
		"total":    len(products),
	})
}

// Get returns one product
// GET /api/v1/products/:id
func (ctrl *ProductController) Get(c *gin.Context) {
	product, err := ctrl.productService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, err.Error())
			return
		}
		apperrors.RespondStoreError(c, err, "product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"product": product,
	})
}

// Create adds a catalog entry (seller only)
// POST /api/v1/seller/products
func (ctrl *ProductController) Create(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "商品信息不完整")
		return
	}

	product := model.Product{
		Name:          req.Name,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		Category:      req.Category,
		Image:         req.Image,
		Description:   req.Description,
		Stock:         req.Stock,
		IsHot:         req.IsHot,
		IsOnSale:      req.IsOnSale,
		Tags:          req.Tags,
	}
	if err := ctrl.productService.Create(c.Request.Context(), &product); err != nil {
		if errors.Is(err, service.ErrInvalidProduct) {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
			return
		}
		apperrors.RespondStoreError(c, err, "create product")
		return
	}

	middleware.GetLoggerFromContext(c).Info("Product created by seller", map[string]interface{}{
		"product_id": product.ID,
		"user_id":    c.GetString(middleware.UserIDKey),
	})

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "商品已上架",
		"product": product,
	})
}

// Update edits a catalog entry (seller only)
// PUT /api/v1/seller/products/:id
func (ctrl *ProductController) Update(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "商品信息不完整")
		return
	}

	product := model.Product{
		ID:            c.Param("id"),
		Name:          req.Name,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		Category:      req.Category,
		Image:         req.Image,
		Description:   req.Description,
		Stock:         req.Stock,
		IsHot:         req.IsHot,
		IsOnSale:      req.IsOnSale,
		Tags:          req.Tags,
	}
	if err := ctrl.productService.Update(c.Request.Context(), &product); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, err.Error())
			return
		}
		apperrors.RespondStoreError(c, err, "update product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "商品已更新",
		"product": product,
	})
}

// Delete removes a catalog entry (seller only)
// DELETE /api/v1/seller/products/:id
func (ctrl *ProductController) Delete(c *gin.Context) {
	if err := ctrl.productService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, err.Error())
			return
		}
		apperrors.RespondStoreError(c, err, "delete product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "商品已下架",
	})
}
