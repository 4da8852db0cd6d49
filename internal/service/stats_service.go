package service

import (
	"context"
	"encoding/json"
	"time"

	"buildsite/internal/cache"
	"buildsite/internal/repository"
	"buildsite/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const statsTTL = 60 * time.Second

// DashboardStats is the company overview shown on the landing screen.
type DashboardStats struct {
	Sites           int64           `json:"sites"`
	Warehouses      int64           `json:"warehouses"`
	Users           int64           `json:"users"`
	Workers         int64           `json:"workers"`
	PendingRequests int64           `json:"pending_requests"`
	StockValue      decimal.Decimal `json:"stock_value"`
	GeneratedAt     time.Time       `json:"generated_at"`
}

type StatsService interface {
	Dashboard(ctx context.Context, actorID uuid.UUID) (*DashboardStats, error)
}

type statsService struct {
	sites      repository.SiteRepository
	warehouses repository.WarehouseRepository
	users      repository.UserRepository
	requests   repository.SupplyRequestRepository
	cache      *cache.Cache
	logger     *zap.Logger
}

func NewStatsService(
	sites repository.SiteRepository,
	warehouses repository.WarehouseRepository,
	users repository.UserRepository,
	requests repository.SupplyRequestRepository,
	statsCache *cache.Cache,
	logger *zap.Logger,
) StatsService {
	return &statsService{
		sites:      sites,
		warehouses: warehouses,
		users:      users,
		requests:   requests,
		cache:      statsCache,
		logger:     logger,
	}
}

// Dashboard aggregates company-wide counts and the warehouse stock value.
// Results are cached briefly; request approval invalidates the cache so the
// pending count never lags a handled request for long.
func (s *statsService) Dashboard(ctx context.Context, actorID uuid.UUID) (*DashboardStats, error) {
	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return nil, apperror.Unauthorized("User not found")
	}
	if actor.CompanyID == nil {
		return nil, apperror.Forbidden("User does not belong to a company")
	}
	companyID := *actor.CompanyID

	key := statsCacheKey(companyID)
	if raw, ok := s.cache.Get(ctx, key); ok {
		var cached DashboardStats
		if json.Unmarshal(raw, &cached) == nil {
			return &cached, nil
		}
	}

	stats, err := s.compute(ctx, companyID)
	if err != nil {
		return nil, err
	}

	if raw, marshalErr := json.Marshal(stats); marshalErr == nil {
		s.cache.Set(ctx, key, raw, statsTTL)
	}
	return stats, nil
}

func (s *statsService) compute(ctx context.Context, companyID uuid.UUID) (*DashboardStats, error) {
	_, siteCount, err := s.sites.List(ctx, companyID, 1, 1)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	warehouses, warehouseCount, err := s.warehouses.List(ctx, companyID, 1, 500)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	_, userCount, err := s.users.List(ctx, &companyID, "", 1, 1)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	pending, err := s.requests.CountPending(ctx, companyID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	workerCount, err := s.sites.CountWorkers(ctx, companyID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	stockValue := decimal.Zero
	for i := range warehouses {
		supplies, listErr := s.warehouses.ListSupplies(ctx, warehouses[i].ID)
		if listErr != nil {
			return nil, apperror.Internal(listErr)
		}
		for _, line := range supplies {
			stockValue = stockValue.Add(line.CurrentPrice.Mul(decimal.NewFromFloat(line.Quantity)))
		}
	}

	return &DashboardStats{
		Sites:           siteCount,
		Warehouses:      warehouseCount,
		Users:           userCount,
		Workers:         workerCount,
		PendingRequests: pending,
		StockValue:      stockValue,
		GeneratedAt:     time.Now(),
	}, nil
}
