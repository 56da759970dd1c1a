package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/wuwumall/wuwumall-backend/internal/app/model"
	"github.com/wuwumall/wuwumall-backend/internal/app/repository"
	"github.com/wuwumall/wuwumall-backend/internal/store"
	"github.com/wuwumall/wuwumall-backend/pkg/logger"
	"github.com/wuwumall/wuwumall-backend/pkg/util"
)

var (
	ErrProductNotFound = errors.New("商品不存在或已下架")
	ErrInvalidProduct  = errors.New("商品信息不完整")
)

// ProductFilter narrows catalog listings
type ProductFilter struct {
	Category string
	Keyword  string
	HotOnly  bool
	OnSale   bool
}

type ProductService interface {
	List(ctx context.Context, filter ProductFilter) ([]model.Product, error)
	GetByID(ctx context.Context, id string) (*model.Product, error)
	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id string) error
	Seed(ctx context.Context, products []model.Product) error
}

type productService struct {
	productRepo repository.ProductRepository
}

func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

func (s *productService) List(ctx context.Context, filter ProductFilter) ([]model.Product, error) {
	var products []model.Product
	var err error

	if filter.Category != "" {
		products, err = s.productRepo.FindByCategory(ctx, filter.Category)
	} else {
		products, err = s.productRepo.FindAll(ctx)
	}
	if err != nil {
		logger.Error("Failed to list products", err, map[string]interface{}{
			"category": filter.Category,
		})
		return nil, err
	}

	filtered := products[:0]
	keyword := strings.ToLower(filter.Keyword)
	for _, p := range products {
		if filter.HotOnly && !p.IsHot {
			continue
		}
		if filter.OnSale && !p.IsOnSale {
			continue
		}
		if keyword != "" && !strings.Contains(strings.ToLower(p.Name), keyword) &&
			!strings.Contains(strings.ToLower(p.Description), keyword) {
			continue
		}
		filtered = append(filtered, p)
	}

	// Hot items first, then by sales
	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].IsHot != filtered[j].IsHot {
			return filtered[i].IsHot
		}
		return filtered[i].Sales > filtered[j].Sales
	})

	return filtered, nil
}

func (s *productService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) Create(ctx context.Context, product *model.Product) error {
	if product.Name == "" || product.Price <= 0 || product.Category == "" {
		return ErrInvalidProduct
	}

	now := time.Now()
	if product.ID == "" {
		product.ID = util.NewID("prod")
	}
	product.CreatedAt = now
	product.UpdatedAt = now

	if err := s.productRepo.Create(ctx, product); err != nil {
		logger.Error("Failed to create product", err, map[string]interface{}{
			"name": product.Name,
		})
		return err
	}

	logger.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})
	return nil
}

func (s *productService) Update(ctx context.Context, product *model.Product) error {
	if product.ID == "" {
		return ErrProductNotFound
	}
	existing, err := s.productRepo.FindByID(ctx, product.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now()
	return s.productRepo.Update(ctx, product)
}

func (s *productService) Delete(ctx context.Context, id string) error {
	if _, err := s.productRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	return s.productRepo.Delete(ctx, id)
}

// Seed loads the demo catalog on first start, skipping when products
// already exist
func (s *productService) Seed(ctx context.Context, products []model.Product) error {
	existing, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logger.Debug("Catalog already seeded", map[string]interface{}{
			"count": len(existing),
		})
		return nil
	}

	now := time.Now()
	for i := range products {
		if products[i].ID == "" {
			products[i].ID = util.NewID("prod")
		}
		products[i].CreatedAt = now
		products[i].UpdatedAt = now
	}
	if err := s.productRepo.CreateBatch(ctx, products); err != nil {
		logger.Error("Failed to seed catalog", err, nil)
		return err
	}

	logger.Info("Catalog seeded", map[string]interface{}{
		"count": len(products),
	})
	return nil
}
