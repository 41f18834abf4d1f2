package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go-stockbook/internal/model"
	"go-stockbook/internal/repository"
	"go-stockbook/internal/ws"
	"go-stockbook/pkg/apperr"
	"go-stockbook/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const storeTimeout = 5 * time.Second

type CreateProductInput struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"gte=0"`
	Category    string          `json:"category" validate:"required"`
}

// UpdateProductInput updates only the provided fields. Stock is absent
// on purpose: stock moves through the posting engine or AdjustStock.
type UpdateProductInput struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Category    *string          `json:"category"`
}

type ProductService interface {
	CreateProduct(ctx context.Context, businessID uuid.UUID, input CreateProductInput) (*model.Product, error)
	GetProducts(ctx context.Context, businessID uuid.UUID, filter repository.ProductFilter) ([]model.Product, int64, error)
	GetProduct(ctx context.Context, businessID, id uuid.UUID) (*model.Product, error)
	UpdateProduct(ctx context.Context, businessID, id uuid.UUID, input UpdateProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, businessID, id uuid.UUID) error
	AdjustStock(ctx context.Context, businessID, id uuid.UUID, delta int) (*model.Product, error)
}

type productService struct {
	db          *gorm.DB
	productRepo repository.ProductRepository
	hub         *ws.Hub
}

func NewProductService(db *gorm.DB, pRepo repository.ProductRepository, hub *ws.Hub) ProductService {
	return &productService{db: db, productRepo: pRepo, hub: hub}
}

func (s *productService) CreateProduct(ctx context.Context, businessID uuid.UUID, input CreateProductInput) (*model.Product, error) {
	if errs := validator.ValidateStruct(&input); len(errs) > 0 {
		first := errs[0]
		return nil, apperr.InvalidInput("validation failed: field '%s' failed on tag '%s'", first.FailedField, first.Tag)
	}
	if input.Price.IsNegative() {
		return nil, apperr.InvalidInput("price must not be negative")
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	product := &model.Product{
		BusinessID:  businessID,
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		Stock:       input.Stock,
		Category:    strings.TrimSpace(input.Category),
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, storeErr(err)
	}

	go s.hub.Publish(map[string]interface{}{
		"type":   "stock_update",
		"action": "product_created",
		"product": map[string]interface{}{
			"id":    product.ID,
			"name":  product.Name,
			"stock": product.Stock,
			"price": product.Price,
		},
	})

	return product, nil
}

func (s *productService) GetProducts(ctx context.Context, businessID uuid.UUID, filter repository.ProductFilter) ([]model.Product, int64, error) {
	products, total, err := s.productRepo.FindAll(ctx, businessID, filter)
	if err != nil {
		return nil, 0, storeErr(err)
	}
	return products, total, nil
}

func (s *productService) GetProduct(ctx context.Context, businessID, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, businessID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product not found")
		}
		return nil, storeErr(err)
	}
	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, businessID, id uuid.UUID, input UpdateProductInput) (*model.Product, error) {
	if input.Price != nil && input.Price.IsNegative() {
		return nil, apperr.InvalidInput("price must not be negative")
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	product, err := s.productRepo.FindByID(ctx, businessID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product not found")
		}
		return nil, storeErr(err)
	}

	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		product.Description = strings.TrimSpace(*input.Description)
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.Category != nil {
		product.Category = strings.TrimSpace(*input.Category)
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, storeErr(err)
	}
	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, businessID, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	if err := s.productRepo.Delete(ctx, businessID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("product not found")
		}
		return storeErr(err)
	}
	return nil
}

// AdjustStock applies a signed delta to a product's stock in one atomic
// guarded statement. No ledger entry is written.
func (s *productService) AdjustStock(ctx context.Context, businessID, id uuid.UUID, delta int) (*model.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	rows, err := s.productRepo.ApplyStockDelta(s.db.WithContext(ctx), businessID, id, delta)
	if err != nil {
		return nil, storeErr(err)
	}
	if rows == 0 {
		product, err := s.productRepo.FindByID(ctx, businessID, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product not found")
		}
		if err != nil {
			return nil, storeErr(err)
		}
		return nil, apperr.InvalidInput("stock cannot be negative: product %s has %d", product.Name, product.Stock)
	}

	product, err := s.productRepo.FindByID(ctx, businessID, id)
	if err != nil {
		return nil, storeErr(err)
	}

	go s.hub.Publish(map[string]interface{}{
		"type":   "stock_update",
		"action": "stock_adjusted",
		"product": map[string]interface{}{
			"id":    product.ID,
			"name":  product.Name,
			"stock": product.Stock,
		},
	})

	return product, nil
}
