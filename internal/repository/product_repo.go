package repository

import (
	"context"

	"go-stockbook/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductFilter struct {
	Search   string
	Category string
	Page     int
	Limit    int
}

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindAll(ctx context.Context, businessID uuid.UUID, filter ProductFilter) ([]model.Product, int64, error)
	FindByID(ctx context.Context, businessID, id uuid.UUID) (*model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, businessID, id uuid.UUID) error

	// FindByIDs reads products inside tx, scoped to the tenant.
	FindByIDs(tx *gorm.DB, businessID uuid.UUID, ids []uuid.UUID) ([]model.Product, error)

	// ApplyStockDelta adds delta to a product's stock in a single atomic
	// statement, refusing any result below zero. Returns the number of
	// rows updated: 0 means the row is missing or the floor was hit.
	ApplyStockDelta(tx *gorm.DB, businessID, id uuid.UUID, delta int) (int64, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepo) FindAll(ctx context.Context, businessID uuid.UUID, filter ProductFilter) ([]model.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Product{}).Where("business_id = ?", businessID)
	if filter.Search != "" {
		query = query.Where("name LIKE ?", "%"+filter.Search+"%")
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := pageWindow(filter.Page, filter.Limit, 50)

	var products []model.Product
	err := query.Order("name ASC").Offset(offset).Limit(limit).Find(&products).Error
	return products, total, err
}

func (r *productRepo) FindByID(ctx context.Context, businessID, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).First(&product, "business_id = ? AND id = ?", businessID, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) Update(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *productRepo) Delete(ctx context.Context, businessID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("business_id = ?", businessID).Delete(&model.Product{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepo) FindByIDs(tx *gorm.DB, businessID uuid.UUID, ids []uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	err := tx.Where("business_id = ? AND id IN ?", businessID, ids).Find(&products).Error
	return products, err
}

func (r *productRepo) ApplyStockDelta(tx *gorm.DB, businessID, id uuid.UUID, delta int) (int64, error) {
	result := tx.Model(&model.Product{}).
		Where("business_id = ? AND id = ? AND stock + ? >= 0", businessID, id, delta).
		Update("stock", gorm.Expr("stock + ?", delta))
	return result.RowsAffected, result.Error
}
