package repository

import (
	"context"

	"buildsite/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WarehouseRepository interface {
	Create(ctx context.Context, warehouse *model.Warehouse) error
	Update(ctx context.Context, warehouse *model.Warehouse) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Warehouse, error)
	List(ctx context.Context, companyID uuid.UUID, page, limit int) ([]model.Warehouse, int64, error)

	CreateSupply(ctx context.Context, supply *model.WarehouseSupply) error
	UpdateSupply(ctx context.Context, supply *model.WarehouseSupply) error
	DeleteSupply(ctx context.Context, id uuid.UUID) error
	FindSupplyByID(ctx context.Context, id uuid.UUID) (*model.WarehouseSupply, error)
	FindSupplyByKey(ctx context.Context, warehouseID uuid.UUID, key string) (*model.WarehouseSupply, error)
	FindSupplyByKeyForUpdate(ctx context.Context, warehouseID uuid.UUID, key string) (*model.WarehouseSupply, error)
	ListSupplies(ctx context.Context, warehouseID uuid.UUID) ([]model.WarehouseSupply, error)
}

type warehouseRepository struct {
	db *gorm.DB
}

func NewWarehouseRepository(db *gorm.DB) WarehouseRepository {
	return &warehouseRepository{db: db}
}

func (r *warehouseRepository) Create(ctx context.Context, warehouse *model.Warehouse) error {
	return GetDB(ctx, r.db).Create(warehouse).Error
}

func (r *warehouseRepository) Update(ctx context.Context, warehouse *model.Warehouse) error {
	return GetDB(ctx, r.db).Save(warehouse).Error
}

func (r *warehouseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Warehouse{}).Error
}

func (r *warehouseRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Warehouse, error) {
	var warehouse model.Warehouse
	if err := GetDB(ctx, r.db).First(&warehouse, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &warehouse, nil
}

func (r *warehouseRepository) List(ctx context.Context, companyID uuid.UUID, page, limit int) ([]model.Warehouse, int64, error) {
	var warehouses []model.Warehouse
	var total int64

	query := GetDB(ctx, r.db).Model(&model.Warehouse{}).Where("company_id = ?", companyID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&warehouses).Error; err != nil {
		return nil, 0, err
	}

	return warehouses, total, nil
}

func (r *warehouseRepository) CreateSupply(ctx context.Context, supply *model.WarehouseSupply) error {
	return GetDB(ctx, r.db).Create(supply).Error
}

func (r *warehouseRepository) UpdateSupply(ctx context.Context, supply *model.WarehouseSupply) error {
	return GetDB(ctx, r.db).Save(supply).Error
}

func (r *warehouseRepository) DeleteSupply(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.WarehouseSupply{}).Error
}

func (r *warehouseRepository) FindSupplyByID(ctx context.Context, id uuid.UUID) (*model.WarehouseSupply, error) {
	var supply model.WarehouseSupply
	if err := GetDB(ctx, r.db).First(&supply, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &supply, nil
}

func (r *warehouseRepository) FindSupplyByKey(ctx context.Context, warehouseID uuid.UUID, key string) (*model.WarehouseSupply, error) {
	var supply model.WarehouseSupply
	if err := GetDB(ctx, r.db).Where("warehouse_id = ? AND normalized_name = ?", warehouseID, key).
		First(&supply).Error; err != nil {
		return nil, err
	}
	return &supply, nil
}

func (r *warehouseRepository) FindSupplyByKeyForUpdate(ctx context.Context, warehouseID uuid.UUID, key string) (*model.WarehouseSupply, error) {
	var supply model.WarehouseSupply
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("warehouse_id = ? AND normalized_name = ?", warehouseID, key).First(&supply).Error; err != nil {
		return nil, err
	}
	return &supply, nil
}

func (r *warehouseRepository) ListSupplies(ctx context.Context, warehouseID uuid.UUID) ([]model.WarehouseSupply, error) {
	var supplies []model.WarehouseSupply
	if err := GetDB(ctx, r.db).Where("warehouse_id = ?", warehouseID).Order("item_name asc").Find(&supplies).Error; err != nil {
		return nil, err
	}
	return supplies, nil
}
