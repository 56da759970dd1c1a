package repository

import (
	"context"
	"encoding/json"

	"github.com/wuwumall/wuwumall-backend/internal/app/model"
	"github.com/wuwumall/wuwumall-backend/internal/store"
)

// ProductRepository defines catalog persistence
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	CreateBatch(ctx context.Context, products []model.Product) error
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindAll(ctx context.Context) ([]model.Product, error)
	FindByCategory(ctx context.Context, category string) ([]model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id string) error
}

type productRepository struct {
	store store.Store
}

// NewProductRepository creates a new product repository
func NewProductRepository(s store.Store) ProductRepository {
	return &productRepository{store: s}
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	_, err := r.store.Add(ctx, "products", product)
	return err
}

func (r *productRepository) CreateBatch(ctx context.Context, products []model.Product) error {
	docs := make([]interface{}, 0, len(products))
	for i := range products {
		docs = append(docs, &products[i])
	}
	_, err := r.store.BulkAdd(ctx, "products", docs)
	return err
}

func (r *productRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	raw, err := r.store.Get(ctx, "products", id)
	if err != nil {
		return nil, err
	}
	return decodeProduct(raw)
}

func (r *productRepository) FindAll(ctx context.Context) ([]model.Product, error) {
	raws, err := r.store.GetAll(ctx, "products")
	if err != nil {
		return nil, err
	}
	return decodeProducts(raws)
}

func (r *productRepository) FindByCategory(ctx context.Context, category string) ([]model.Product, error) {
	raws, err := r.store.Query(ctx, "products", "category", category)
	if err != nil {
		return nil, err
	}
	return decodeProducts(raws)
}

func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	return r.store.Update(ctx, "products", product)
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, "products", id)
}

func decodeProduct(raw json.RawMessage) (*model.Product, error) {
	var product model.Product
	if err := json.Unmarshal(raw, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func decodeProducts(raws []json.RawMessage) ([]model.Product, error) {
	products := make([]model.Product, 0, len(raws))
	for _, raw := range raws {
		product, err := decodeProduct(raw)
		if err != nil {
			return nil, err
		}
		products = append(products, *product)
	}
	return products, nil
}
