package repository

import (
	"context"
	"encoding/json"

	"github.com/wuwumall/wuwumall-backend/internal/app/model"
	"github.com/wuwumall/wuwumall-backend/internal/store"
)

// CartRepository defines cart persistence
type CartRepository interface {
	Create(ctx context.Context, item *model.CartItem) error
	FindByID(ctx context.Context, id string) (*model.CartItem, error)
	FindByUser(ctx context.Context, userID string) ([]model.CartItem, error)
	FindByUserAndProduct(ctx context.Context, userID, productID string) (*model.CartItem, error)
	Update(ctx context.Context, item *model.CartItem) error
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) error
	ReplaceByUser(ctx context.Context, userID string, items []model.CartItem) error
}

type cartRepository struct {
	store store.Store
}

// NewCartRepository creates a new cart repository
func NewCartRepository(s store.Store) CartRepository {
	return &cartRepository{store: s}
}

func (r *cartRepository) Create(ctx context.Context, item *model.CartItem) error {
	_, err := r.store.Add(ctx, "cart", item)
	return err
}

func (r *cartRepository) FindByID(ctx context.Context, id string) (*model.CartItem, error) {
	raw, err := r.store.Get(ctx, "cart", id)
	if err != nil {
		return nil, err
	}
	return decodeCartItem(raw)
}

func (r *cartRepository) FindByUser(ctx context.Context, userID string) ([]model.CartItem, error) {
	raws, err := r.store.Query(ctx, "cart", "userId", userID)
	if err != nil {
		return nil, err
	}
	items := make([]model.CartItem, 0, len(raws))
	for _, raw := range raws {
		item, err := decodeCartItem(raw)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}

func (r *cartRepository) FindByUserAndProduct(ctx context.Context, userID, productID string) (*model.CartItem, error) {
	items, err := r.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ProductID == productID {
			return &items[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *cartRepository) Update(ctx context.Context, item *model.CartItem) error {
	return r.store.Update(ctx, "cart", item)
}

func (r *cartRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, "cart", id)
}

func (r *cartRepository) DeleteByUser(ctx context.Context, userID string) error {
	items, err := r.FindByUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, item := range items {
		if err := r.store.Delete(ctx, "cart", item.ID); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceByUser swaps a user's cart wholesale, used by snapshot import
func (r *cartRepository) ReplaceByUser(ctx context.Context, userID string, items []model.CartItem) error {
	if err := r.DeleteByUser(ctx, userID); err != nil {
		return err
	}
	for i := range items {
		items[i].UserID = userID
		if err := r.Create(ctx, &items[i]); err != nil {
			return err
		}
	}
	return nil
}

func decodeCartItem(raw json.RawMessage) (*model.CartItem, error) {
	var item model.CartItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, err
	}
	return &item, nil
}
