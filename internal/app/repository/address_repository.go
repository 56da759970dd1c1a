package repository

import (
	"context"
	"encoding/json"

	"github.com/wuwumall/wuwumall-backend/internal/app/model"
	"github.com/wuwumall/wuwumall-backend/internal/store"
)

// AddressRepository defines shipping address persistence
type AddressRepository interface {
	Create(ctx context.Context, address *model.Address) error
	FindByID(ctx context.Context, id string) (*model.Address, error)
	FindByUser(ctx context.Context, userID string) ([]model.Address, error)
	Update(ctx context.Context, address *model.Address) error
	Delete(ctx context.Context, id string) error
}

type addressRepository struct {
	store store.Store
}

// NewAddressRepository creates a new address repository
func NewAddressRepository(s store.Store) AddressRepository {
	return &addressRepository{store: s}
}

func (r *addressRepository) Create(ctx context.Context, address *model.Address) error {
	_, err := r.store.Add(ctx, "addresses", address)
	return err
}

func (r *addressRepository) FindByID(ctx context.Context, id string) (*model.Address, error) {
	raw, err := r.store.Get(ctx, "addresses", id)
	if err != nil {
		return nil, err
	}
	return decodeAddress(raw)
}

func (r *addressRepository) FindByUser(ctx context.Context, userID string) ([]model.Address, error) {
	raws, err := r.store.Query(ctx, "addresses", "userId", userID)
	if err != nil {
		return nil, err
	}
	addresses := make([]model.Address, 0, len(raws))
	for _, raw := range raws {
		address, err := decodeAddress(raw)
		if err != nil {
			return nil, err
		}
		addresses = append(addresses, *address)
	}
	return addresses, nil
}

func (r *addressRepository) Update(ctx context.Context, address *model.Address) error {
	return r.store.Update(ctx, "addresses", address)
}

func (r *addressRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, "addresses", id)
}

func decodeAddress(raw json.RawMessage) (*model.Address, error) {
	var address model.Address
	if err := json.Unmarshal(raw, &address); err != nil {
		return nil, err
	}
	return &address, nil
}
