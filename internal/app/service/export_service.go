package service

import (
	"context"
	"errors"
	"time"

	"github.com/wuwumall/wuwumall-backend/internal/app/model"
	"github.com/wuwumall/wuwumall-backend/internal/app/repository"
	"github.com/wuwumall/wuwumall-backend/internal/store"
	"github.com/wuwumall/wuwumall-backend/pkg/logger"
)

const snapshotVersion = "1.0"

var (
	ErrUnsupportedSnapshot = errors.New("数据版本不兼容，无法导入")
	ErrSnapshotMismatch    = errors.New("数据不属于当前账号")
)

// Snapshot is a portable dump of one user's data
type Snapshot struct {
	User       model.PublicUser `json:"user"`
	Cart       []model.CartItem `json:"cart"`
	Orders     []model.Order    `json:"orders"`
	Addresses  []model.Address  `json:"addresses"`
	ExportTime time.Time        `json:"exportTime"`
	Version    string           `json:"version"`
}

type ExportService interface {
	Export(ctx context.Context, userID string) (*Snapshot, error)
	Import(ctx context.Context, userID string, snapshot *Snapshot) error
}

type exportService struct {
	userRepo    repository.UserRepository
	cartRepo    repository.CartRepository
	orderRepo   repository.OrderRepository
	addressRepo repository.AddressRepository
}

func NewExportService(
	userRepo repository.UserRepository,
	cartRepo repository.CartRepository,
	orderRepo repository.OrderRepository,
	addressRepo repository.AddressRepository,
) ExportService {
	return &exportService{
		userRepo:    userRepo,
		cartRepo:    cartRepo,
		orderRepo:   orderRepo,
		addressRepo: addressRepo,
	}
}

func (s *exportService) Export(ctx context.Context, userID string) (*Snapshot, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	cart, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	orders, err := s.orderRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	addresses, err := s.addressRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	snapshot := &Snapshot{
		User:       user.Public(),
		Cart:       cart,
		Orders:     orders,
		Addresses:  addresses,
		ExportTime: time.Now(),
		Version:    snapshotVersion,
	}

	logger.Info("User data exported", map[string]interface{}{
		"user_id":   userID,
		"cart":      len(cart),
		"orders":    len(orders),
		"addresses": len(addresses),
	})
	return snapshot, nil
}

// Import restores a previously exported snapshot. The cart is replaced
// wholesale; orders and addresses are merged by id, never deleted.
func (s *exportService) Import(ctx context.Context, userID string, snapshot *Snapshot) error {
	if snapshot == nil || snapshot.Version != snapshotVersion {
		return ErrUnsupportedSnapshot
	}
	if snapshot.User.ID != "" && snapshot.User.ID != userID {
		return ErrSnapshotMismatch
	}

	if err := s.cartRepo.ReplaceByUser(ctx, userID, snapshot.Cart); err != nil {
		logger.Error("Failed to import cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}

	for i := range snapshot.Orders {
		order := snapshot.Orders[i]
		if order.UserID != userID {
			continue
		}
		if err := s.orderRepo.Update(ctx, &order); err != nil {
			logger.Error("Failed to import order", err, map[string]interface{}{
				"order_id": order.ID,
			})
			return err
		}
	}

	for i := range snapshot.Addresses {
		address := snapshot.Addresses[i]
		if address.UserID != userID {
			continue
		}
		if err := s.addressRepo.Update(ctx, &address); err != nil {
			logger.Error("Failed to import address", err, map[string]interface{}{
				"address_id": address.ID,
			})
			return err
		}
	}

	logger.Info("User data imported", map[string]interface{}{
		"user_id":   userID,
		"cart":      len(snapshot.Cart),
		"orders":    len(snapshot.Orders),
		"addresses": len(snapshot.Addresses),
	})
	return nil
}
