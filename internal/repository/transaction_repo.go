package repository

import (
	"context"
	"time"

	"go-stockbook/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransactionFilter struct {
	Kind      model.TransactionKind
	ContactID uuid.UUID
	From      time.Time
	To        time.Time
	Page      int
	Limit     int
}

// StockMovementData for chart data
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

// DashboardStats for tenant overview stats
type DashboardStats struct {
	TotalProducts  int64  `json:"total_products"`
	LowStockCount  int64  `json:"low_stock_count"`
	TotalValuation string `json:"total_valuation"`
}

type TransactionRepository interface {
	// Insert runs inside the caller's tx so the ledger row commits
	// atomically with the stock updates.
	Insert(tx *gorm.DB, transaction *model.Transaction) error

	FindAll(ctx context.Context, businessID uuid.UUID, filter TransactionFilter) ([]model.Transaction, int64, error)
	FindByID(ctx context.Context, businessID, id uuid.UUID) (*model.Transaction, error)
	GetStockMovement(ctx context.Context, businessID uuid.UUID, startDate, endDate time.Time) ([]StockMovementData, error)
	GetDashboardStats(ctx context.Context, businessID uuid.UUID) (*DashboardStats, error)
}

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db}
}

func (r *transactionRepo) Insert(tx *gorm.DB, transaction *model.Transaction) error {
	return tx.Create(transaction).Error
}

func (r *transactionRepo) FindAll(ctx context.Context, businessID uuid.UUID, filter TransactionFilter) ([]model.Transaction, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Transaction{}).Where("business_id = ?", businessID)
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.ContactID != uuid.Nil {
		query = query.Where("contact_id = ?", filter.ContactID)
	}
	if !filter.From.IsZero() {
		query = query.Where("date >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("date <= ?", filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := pageWindow(filter.Page, filter.Limit, 20)

	var transactions []model.Transaction
	err := query.
		Preload("Contact").
		Preload("Items").
		Preload("Items.Product").
		Order("date DESC").
		Offset(offset).
		Limit(limit).
		Find(&transactions).Error
	return transactions, total, err
}

func (r *transactionRepo) FindByID(ctx context.Context, businessID, id uuid.UUID) (*model.Transaction, error) {
	var transaction model.Transaction
	err := r.db.WithContext(ctx).
		Preload("Contact").
		Preload("Items").
		Preload("Items.Product").
		First(&transaction, "business_id = ? AND id = ?", businessID, id).Error
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (r *transactionRepo) GetStockMovement(ctx context.Context, businessID uuid.UUID, startDate, endDate time.Time) ([]StockMovementData, error) {
	var results []StockMovementData

	// Aggregate line item quantities per day, purchases as inbound and
	// sales as outbound
	rows, err := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Select(`
			DATE(transactions.date) as date,
			COALESCE(SUM(CASE WHEN transactions.kind = 'purchase' THEN transaction_items.quantity ELSE 0 END), 0) as inbound,
			COALESCE(SUM(CASE WHEN transactions.kind = 'sale' THEN transaction_items.quantity ELSE 0 END), 0) as outbound
		`).
		Joins("JOIN transaction_items ON transaction_items.transaction_id = transactions.id").
		Where("transactions.business_id = ? AND transactions.date BETWEEN ? AND ?", businessID, startDate, endDate).
		Group("DATE(transactions.date)").
		Order("date ASC").
		Rows()

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data StockMovementData
		if err := rows.Scan(&data.Date, &data.Inbound, &data.Outbound); err != nil {
			return nil, err
		}
		results = append(results, data)
	}

	return results, rows.Err()
}

func (r *transactionRepo) GetDashboardStats(ctx context.Context, businessID uuid.UUID) (*DashboardStats, error) {
	var stats DashboardStats
	db := r.db.WithContext(ctx)

	if err := db.Model(&model.Product{}).Where("business_id = ?", businessID).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}

	// Low Stock Count (stock < 10)
	if err := db.Model(&model.Product{}).Where("business_id = ? AND stock < ?", businessID, 10).Count(&stats.LowStockCount).Error; err != nil {
		return nil, err
	}

	// Total Valuation (SUM of stock * price)
	if err := db.Model(&model.Product{}).
		Where("business_id = ?", businessID).
		Select("COALESCE(SUM(stock * price), 0)").
		Scan(&stats.TotalValuation).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}
