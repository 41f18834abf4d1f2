package service

import (
	"context"
	"time"

	"go-stockbook/internal/repository"

	"github.com/google/uuid"
)

type DashboardService interface {
	GetStockMovement(ctx context.Context, businessID uuid.UUID, days int) ([]repository.StockMovementData, error)
	GetDashboardStats(ctx context.Context, businessID uuid.UUID) (*repository.DashboardStats, error)
}

type dashboardService struct {
	txRepo repository.TransactionRepository
}

func NewDashboardService(txRepo repository.TransactionRepository) DashboardService {
	return &dashboardService{txRepo: txRepo}
}

func (s *dashboardService) GetStockMovement(ctx context.Context, businessID uuid.UUID, days int) ([]repository.StockMovementData, error) {
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -days)

	data, err := s.txRepo.GetStockMovement(ctx, businessID, startDate, endDate)
	if err != nil {
		return nil, storeErr(err)
	}
	return data, nil
}

func (s *dashboardService) GetDashboardStats(ctx context.Context, businessID uuid.UUID) (*repository.DashboardStats, error) {
	stats, err := s.txRepo.GetDashboardStats(ctx, businessID)
	if err != nil {
		return nil, storeErr(err)
	}
	return stats, nil
}
