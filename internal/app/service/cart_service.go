package service

import (
	"context"
	"errors"
	"time"

	"github.com/wuwumall/wuwumall-backend/internal/app/model"
	"github.com/wuwumall/wuwumall-backend/internal/app/repository"
	"github.com/wuwumall/wuwumall-backend/internal/store"
	"github.com/wuwumall/wuwumall-backend/pkg/logger"
	"github.com/wuwumall/wuwumall-backend/pkg/util"
)

var (
	ErrCartItemNotFound = errors.New("购物车中没有该商品")
	ErrInvalidQuantity  = errors.New("商品数量无效")
)

// CartSummary is the cart with its totals
type CartSummary struct {
	Items      []model.CartItem `json:"items"`
	TotalCount int              `json:"totalCount"`
	TotalPrice float64          `json:"totalPrice"`
}

type CartService interface {
	GetCart(ctx context.Context, userID string) (*CartSummary, error)
	AddToCart(ctx context.Context, userID, productID string, quantity int) (*model.CartItem, error)
	UpdateQuantity(ctx context.Context, userID, productID string, quantity int) error
	RemoveFromCart(ctx context.Context, userID, productID string) error
	ClearCart(ctx context.Context, userID string) error
}

// cartService keeps the cart in the primary store and mirrors every
// write to the file store, so an abrupt primary outage never loses a
// cart. Reads fall back to the mirror when the primary errors.
type cartService struct {
	cartRepo    repository.CartRepository
	mirrorRepo  repository.CartRepository // nil when primary is already the file store
	productRepo repository.ProductRepository
}

func NewCartService(
	cartRepo repository.CartRepository,
	mirrorRepo repository.CartRepository,
	productRepo repository.ProductRepository,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		mirrorRepo:  mirrorRepo,
		productRepo: productRepo,
	}
}

func (s *cartService) GetCart(ctx context.Context, userID string) (*CartSummary, error) {
	items, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		if s.mirrorRepo == nil {
			return nil, err
		}
		logger.Warn("Primary cart read failed, serving mirror", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		items, err = s.mirrorRepo.FindByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	summary := &CartSummary{Items: items}
	for _, item := range items {
		summary.TotalCount += item.Quantity
		summary.TotalPrice += item.Subtotal()
	}
	return summary, nil
}

func (s *cartService) AddToCart(ctx context.Context, userID, productID string, quantity int) (*model.CartItem, error) {
	if quantity <= 0 {
		quantity = 1
	}

	logger.Info("Adding item to cart", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"quantity":   quantity,
	})

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	now := time.Now()
	existing, err := s.cartRepo.FindByUserAndProduct(ctx, userID, productID)
	switch {
	case err == nil:
		// Same product again just bumps the quantity
		existing.Quantity += quantity
		existing.UpdatedAt = now
		if err := s.cartRepo.Update(ctx, existing); err != nil {
			return nil, err
		}
		s.mirror(ctx, userID)
		return existing, nil
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	item := &model.CartItem{
		ID:        util.NewID("cart"),
		UserID:    userID,
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Image:     product.Image,
		Category:  product.Category,
		Quantity:  quantity,
		AddedAt:   now,
		UpdatedAt: now,
	}
	if err := s.cartRepo.Create(ctx, item); err != nil {
		return nil, err
	}
	s.mirror(ctx, userID)
	return item, nil
}

func (s *cartService) UpdateQuantity(ctx context.Context, userID, productID string, quantity int) error {
	item, err := s.cartRepo.FindByUserAndProduct(ctx, userID, productID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrCartItemNotFound
		}
		return err
	}

	// Zero or negative removes the line
	if quantity <= 0 {
		if err := s.cartRepo.Delete(ctx, item.ID); err != nil {
			return err
		}
		s.mirror(ctx, userID)
		return nil
	}

	item.Quantity = quantity
	item.UpdatedAt = time.Now()
	if err := s.cartRepo.Update(ctx, item); err != nil {
		return err
	}
	s.mirror(ctx, userID)
	return nil
}

func (s *cartService) RemoveFromCart(ctx context.Context, userID, productID string) error {
	item, err := s.cartRepo.FindByUserAndProduct(ctx, userID, productID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrCartItemNotFound
		}
		return err
	}
	if err := s.cartRepo.Delete(ctx, item.ID); err != nil {
		return err
	}
	s.mirror(ctx, userID)
	return nil
}

func (s *cartService) ClearCart(ctx context.Context, userID string) error {
	if err := s.cartRepo.DeleteByUser(ctx, userID); err != nil {
		return err
	}
	s.mirror(ctx, userID)
	return nil
}

// mirror copies the user's cart into the file store. Mirror failures
// are logged, never surfaced.
func (s *cartService) mirror(ctx context.Context, userID string) {
	if s.mirrorRepo == nil {
		return
	}
	items, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		logger.Error("Failed to read cart for mirroring", err, map[string]interface{}{
			"user_id": userID,
		})
		return
	}
	if err := s.mirrorRepo.ReplaceByUser(ctx, userID, items); err != nil {
		logger.Error("Failed to mirror cart", err, map[string]interface{}{
			"user_id": userID,
		})
	}
}
