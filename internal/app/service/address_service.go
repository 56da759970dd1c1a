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
	ErrAddressNotFound = errors.New("收货地址不存在")
	ErrInvalidAddress  = errors.New("请填写完整的收货信息")
	ErrNotAddressOwner = errors.New("无权操作该地址")
)

type AddressService interface {
	ListByUser(ctx context.Context, userID string) ([]model.Address, error)
	Create(ctx context.Context, userID string, address model.Address) (*model.Address, error)
	Update(ctx context.Context, userID string, address model.Address) (*model.Address, error)
	Delete(ctx context.Context, userID, addressID string) error
	SetDefault(ctx context.Context, userID, addressID string) error
}

type addressService struct {
	addressRepo repository.AddressRepository
}

func NewAddressService(addressRepo repository.AddressRepository) AddressService {
	return &addressService{addressRepo: addressRepo}
}

func (s *addressService) ListByUser(ctx context.Context, userID string) ([]model.Address, error) {
	addresses, err := s.addressRepo.FindByUser(ctx, userID)
	if err != nil {
		logger.Error("Failed to list addresses", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return addresses, nil
}

func (s *addressService) Create(ctx context.Context, userID string, address model.Address) (*model.Address, error) {
	if address.Recipient == "" || address.Phone == "" || address.Detail == "" {
		return nil, ErrInvalidAddress
	}

	now := time.Now()
	address.ID = util.NewID("addr")
	address.UserID = userID
	address.CreatedAt = now
	address.UpdatedAt = now

	if address.IsDefault {
		if err := s.clearDefault(ctx, userID); err != nil {
			return nil, err
		}
	}

	if err := s.addressRepo.Create(ctx, &address); err != nil {
		logger.Error("Failed to create address", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return &address, nil
}

func (s *addressService) Update(ctx context.Context, userID string, address model.Address) (*model.Address, error) {
	existing, err := s.ownedAddress(ctx, userID, address.ID)
	if err != nil {
		return nil, err
	}

	if address.IsDefault && !existing.IsDefault {
		if err := s.clearDefault(ctx, userID); err != nil {
			return nil, err
		}
	}

	address.UserID = userID
	address.CreatedAt = existing.CreatedAt
	address.UpdatedAt = time.Now()
	if err := s.addressRepo.Update(ctx, &address); err != nil {
		return nil, err
	}
	return &address, nil
}

func (s *addressService) Delete(ctx context.Context, userID, addressID string) error {
	if _, err := s.ownedAddress(ctx, userID, addressID); err != nil {
		return err
	}
	return s.addressRepo.Delete(ctx, addressID)
}

// SetDefault makes one address the default and clears the flag from
// every other address of the user
func (s *addressService) SetDefault(ctx context.Context, userID, addressID string) error {
	target, err := s.ownedAddress(ctx, userID, addressID)
	if err != nil {
		return err
	}

	if err := s.clearDefault(ctx, userID); err != nil {
		return err
	}

	target.IsDefault = true
	target.UpdatedAt = time.Now()
	return s.addressRepo.Update(ctx, target)
}

func (s *addressService) clearDefault(ctx context.Context, userID string) error {
	addresses, err := s.addressRepo.FindByUser(ctx, userID)
	if err != nil {
		return err
	}
	for i := range addresses {
		if addresses[i].IsDefault {
			addresses[i].IsDefault = false
			addresses[i].UpdatedAt = time.Now()
			if err := s.addressRepo.Update(ctx, &addresses[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *addressService) ownedAddress(ctx context.Context, userID, addressID string) (*model.Address, error) {
	address, err := s.addressRepo.FindByID(ctx, addressID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, err
	}
	if address.UserID != userID {
		return nil, ErrNotAddressOwner
	}
	return address, nil
}
