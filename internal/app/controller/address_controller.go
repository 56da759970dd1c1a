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

type AddressController struct {
	addressService service.AddressService
}

func NewAddressController(addressService service.AddressService) *AddressController {
	return &AddressController{addressService: addressService}
}

type AddressRequest struct {
	Recipient string `json:"recipient" binding:"required"`
	Phone     string `json:"phone" binding:"required"`
	Province  string `json:"province"`
	City      string `json:"city"`
	District  string `json:"district"`
	Detail    string `json:"detail" binding:"required"`
	IsDefault bool   `json:"isDefault"`
}

// List returns the current user's addresses
// GET /api/v1/addresses
func (ctrl *AddressController) List(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	addresses, err := ctrl.addressService.ListByUser(c.Request.Context(), userID)
	if err != nil {
		apperrors.RespondStoreError(c, err, "list addresses")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"addresses": addresses,
	})
}

// Create adds a shipping address
// POST /api/v1/addresses
func (ctrl *AddressController) Create(c *gin.Context) {
	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "请填写完整的收货信息")
		return
	}

	userID := c.GetString(middleware.UserIDKey)
	address, err := ctrl.addressService.Create(c.Request.Context(), userID, model.Address{
		Recipient: req.Recipient,
		Phone:     req.Phone,
		Province:  req.Province,
		City:      req.City,
		District:  req.District,
		Detail:    req.Detail,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		respondAddressError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "收货地址已保存",
		"address": address,
	})
}

// Update edits a shipping address
// PUT /api/v1/addresses/:id
func (ctrl *AddressController) Update(c *gin.Context) {
	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "请填写完整的收货信息")
		return
	}

	userID := c.GetString(middleware.UserIDKey)
	address, err := ctrl.addressService.Update(c.Request.Context(), userID, model.Address{
		ID:        c.Param("id"),
		Recipient: req.Recipient,
		Phone:     req.Phone,
		Province:  req.Province,
		City:      req.City,
		District:  req.District,
		Detail:    req.Detail,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		respondAddressError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "收货地址已更新",
		"address": address,
	})
}

// Delete removes a shipping address
// DELETE /api/v1/addresses/:id
func (ctrl *AddressController) Delete(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	if err := ctrl.addressService.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondAddressError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "收货地址已删除",
	})
}

// SetDefault marks an address as the default
// POST /api/v1/addresses/:id/default
func (ctrl *AddressController) SetDefault(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	if err := ctrl.addressService.SetDefault(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondAddressError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "默认地址已设置",
	})
}

func respondAddressError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidAddress):
		apperrors.BadRequest(c, apperrors.ValidationRequired, err.Error())
	case errors.Is(err, service.ErrAddressNotFound):
		apperrors.NotFound(c, apperrors.ResourceNotFound, err.Error())
	case errors.Is(err, service.ErrNotAddressOwner):
		apperrors.Forbidden(c, err.Error())
	default:
		apperrors.RespondStoreError(c, err, "address")
	}
}
