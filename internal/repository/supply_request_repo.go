package repository

import (
	"context"

	"buildsite/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SupplyRequestFilter narrows List queries.
type SupplyRequestFilter struct {
	CompanyID   *uuid.UUID
	SiteID      *uuid.UUID
	WarehouseID *uuid.UUID
	Status      string
	BatchID     *uuid.UUID
}

type SupplyRequestRepository interface {
	Create(ctx context.Context, req *model.SupplyRequest) error
	Update(ctx context.Context, req *model.SupplyRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.SupplyRequest, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.SupplyRequest, error)
	List(ctx context.Context, filter SupplyRequestFilter, page, limit int) ([]model.SupplyRequest, int64, error)
	CountPending(ctx context.Context, companyID uuid.UUID) (int64, error)
}

type supplyRequestRepository struct {
	db *gorm.DB
}

func NewSupplyRequestRepository(db *gorm.DB) SupplyRequestRepository {
	return &supplyRequestRepository{db: db}
}

func (r *supplyRequestRepository) Create(ctx context.Context, req *model.SupplyRequest) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *supplyRequestRepository) Update(ctx context.Context, req *model.SupplyRequest) error {
	return GetDB(ctx, r.db).Save(req).Error
}

func (r *supplyRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.SupplyRequest, error) {
	var req model.SupplyRequest
	if err := GetDB(ctx, r.db).Preload("Requester").Preload("Handler").First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *supplyRequestRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.SupplyRequest, error) {
	var req model.SupplyRequest
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *supplyRequestRepository) List(ctx context.Context, filter SupplyRequestFilter, page, limit int) ([]model.SupplyRequest, int64, error) {
	var requests []model.SupplyRequest
	var total int64

	apply := func(q *gorm.DB) *gorm.DB {
		if filter.CompanyID != nil {
			q = q.Where("company_id = ?", *filter.CompanyID)
		}
		if filter.SiteID != nil {
			q = q.Where("site_id = ?", *filter.SiteID)
		}
		if filter.WarehouseID != nil {
			q = q.Where("warehouse_id = ?", *filter.WarehouseID)
		}
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		if filter.BatchID != nil {
			q = q.Where("batch_id = ?", *filter.BatchID)
		}
		return q
	}

	if err := apply(GetDB(ctx, r.db).Model(&model.SupplyRequest{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := apply(GetDB(ctx, r.db).Preload("Requester").Preload("Handler")).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

func (r *supplyRequestRepository) CountPending(ctx context.Context, companyID uuid.UUID) (int64, error) {
	var total int64
	err := GetDB(ctx, r.db).Model(&model.SupplyRequest{}).
		Where("company_id = ? AND status = ?", companyID, model.RequestPending).
		Count(&total).Error
	return total, err
}
