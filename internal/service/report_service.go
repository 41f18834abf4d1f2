package service

import (
	"context"

	"go-stockbook/internal/model"
	"go-stockbook/internal/repository"

	"github.com/google/uuid"
)

// ReportService is read-only filtered retrieval over the ledger and the
// product catalogue. No invariant-bearing logic lives here.
type ReportService interface {
	GetTransactionReport(ctx context.Context, businessID uuid.UUID, filter repository.TransactionFilter) ([]model.Transaction, int64, error)
	GetTransaction(ctx context.Context, businessID, id uuid.UUID) (*model.Transaction, error)
	GetInventoryReport(ctx context.Context, businessID uuid.UUID, filter repository.ProductFilter) ([]model.Product, int64, error)
}

type reportService struct {
	txRepo      repository.TransactionRepository
	productRepo repository.ProductRepository
}

func NewReportService(tRepo repository.TransactionRepository, pRepo repository.ProductRepository) ReportService {
	return &reportService{txRepo: tRepo, productRepo: pRepo}
}

func (s *reportService) GetTransactionReport(ctx context.Context, businessID uuid.UUID, filter repository.TransactionFilter) ([]model.Transaction, int64, error) {
	transactions, total, err := s.txRepo.FindAll(ctx, businessID, filter)
	if err != nil {
		return nil, 0, storeErr(err)
	}
	return transactions, total, nil
}

func (s *reportService) GetTransaction(ctx context.Context, businessID, id uuid.UUID) (*model.Transaction, error) {
	transaction, err := s.txRepo.FindByID(ctx, businessID, id)
	if err != nil {
		return nil, storeErr(err)
	}
	return transaction, nil
}

func (s *reportService) GetInventoryReport(ctx context.Context, businessID uuid.UUID, filter repository.ProductFilter) ([]model.Product, int64, error) {
	products, total, err := s.productRepo.FindAll(ctx, businessID, filter)
	if err != nil {
		return nil, 0, storeErr(err)
	}
	return products, total, nil
}
