package service

import (
	"context"

	"buildsite/internal/importer"
	"buildsite/internal/model"
	"buildsite/internal/normalize"
	"buildsite/internal/repository"
	"buildsite/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// --- DTOs ---

type CreateWarehouseDTO struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
}

type UpdateWarehouseDTO struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
}

type AddWarehouseSupplyDTO struct {
	ItemName string  `json:"item_name" binding:"required"`
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
	Unit     string  `json:"unit"`
	Price    string  `json:"price" binding:"required"`
}

type UpdateWarehouseSupplyDTO struct {
	ItemName *string  `json:"item_name"`
	Quantity *float64 `json:"quantity"`
	Unit     *string  `json:"unit"`
	Price    *string  `json:"price"`
}

// WarehouseValuation totals a warehouse's stock at current prices.
type WarehouseValuation struct {
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	Items       int             `json:"items"`
	TotalValue  decimal.Decimal `json:"total_value"`
}

// --- Interface ---

type WarehouseService interface {
	Create(ctx context.Context, actorID uuid.UUID, dto CreateWarehouseDTO) (*model.Warehouse, error)
	Update(ctx context.Context, actorID, warehouseID uuid.UUID, dto UpdateWarehouseDTO) (*model.Warehouse, error)
	Delete(ctx context.Context, actorID, warehouseID uuid.UUID) error
	Get(ctx context.Context, actorID, warehouseID uuid.UUID) (*model.Warehouse, error)
	List(ctx context.Context, actorID uuid.UUID, page, limit int) ([]model.Warehouse, int64, error)

	AddSupply(ctx context.Context, actorID, warehouseID uuid.UUID, dto AddWarehouseSupplyDTO) (*model.WarehouseSupply, error)
	UpdateSupply(ctx context.Context, actorID, warehouseID, supplyID uuid.UUID, dto UpdateWarehouseSupplyDTO) (*model.WarehouseSupply, error)
	DeleteSupply(ctx context.Context, actorID, warehouseID, supplyID uuid.UUID) error
	ListSupplies(ctx context.Context, actorID, warehouseID uuid.UUID) ([]model.WarehouseSupply, error)
	BulkImportSupplies(ctx context.Context, actorID, warehouseID uuid.UUID, rows []importer.RawRow) (*ImportSummary, error)
	Valuation(ctx context.Context, actorID, warehouseID uuid.UUID) (*WarehouseValuation, error)
}

type warehouseService struct {
	warehouses repository.WarehouseRepository
	users      repository.UserRepository
	txManager  repository.TransactionManager
	activity   ActivityRecorder
	logger     *zap.Logger
}

func NewWarehouseService(
	warehouses repository.WarehouseRepository,
	users repository.UserRepository,
	txManager repository.TransactionManager,
	activity ActivityRecorder,
	logger *zap.Logger,
) WarehouseService {
	return &warehouseService{
		warehouses: warehouses,
		users:      users,
		txManager:  txManager,
		activity:   activity,
		logger:     logger,
	}
}

// --- Warehouses ---

func (s *warehouseService) Create(ctx context.Context, actorID uuid.UUID, dto CreateWarehouseDTO) (*model.Warehouse, error) {
	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	warehouse := &model.Warehouse{
		Name:      dto.Name,
		Address:   dto.Address,
		AdminID:   actorID,
		CompanyID: actor.CompanyID,
	}
	if err := s.warehouses.Create(ctx, warehouse); err != nil {
		return nil, apperror.Internal(err)
	}
	return warehouse, nil
}

func (s *warehouseService) Update(ctx context.Context, actorID, warehouseID uuid.UUID, dto UpdateWarehouseDTO) (*model.Warehouse, error) {
	_, warehouse, err := s.authorize(ctx, actorID, warehouseID)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil {
		warehouse.Name = *dto.Name
	}
	if dto.Address != nil {
		warehouse.Address = *dto.Address
	}
	if err := s.warehouses.Update(ctx, warehouse); err != nil {
		return nil, apperror.Internal(err)
	}
	return warehouse, nil
}

func (s *warehouseService) Delete(ctx context.Context, actorID, warehouseID uuid.UUID) error {
	_, _, err := s.authorize(ctx, actorID, warehouseID)
	if err != nil {
		return err
	}
	if err := s.warehouses.Delete(ctx, warehouseID); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (s *warehouseService) Get(ctx context.Context, actorID, warehouseID uuid.UUID) (*model.Warehouse, error) {
	_, warehouse, err := s.authorize(ctx, actorID, warehouseID)
	if err != nil {
		return nil, err
	}
	return warehouse, nil
}

func (s *warehouseService) List(ctx context.Context, actorID uuid.UUID, page, limit int) ([]model.Warehouse, int64, error) {
	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return nil, 0, err
	}
	if actor.CompanyID == nil {
		return nil, 0, apperror.Forbidden("User does not belong to a company")
	}
	warehouses, total, err := s.warehouses.List(ctx, *actor.CompanyID, page, limit)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return warehouses, total, nil
}

// --- Supplies ---

// AddSupply stocks a new line. Price is mandatory in a warehouse; EntryPrice
// is fixed at this moment and never changes afterwards.
func (s *warehouseService) AddSupply(ctx context.Context, actorID, warehouseID uuid.UUID, dto AddWarehouseSupplyDTO) (*model.WarehouseSupply, error) {
	actor, warehouse, err := s.authorize(ctx, actorID, warehouseID)
	if err != nil {
		return nil, err
	}
	if !validQuantity(dto.Quantity) {
		return nil, apperror.Validation("Quantity must be a positive number")
	}
	price, parseErr := decimal.NewFromString(dto.Price)
	if parseErr != nil || price.IsNegative() {
		return nil, apperror.Validation("Invalid price")
	}

	unit := dto.Unit
	if unit == "" {
		unit = "pcs"
	}
	key := normalize.Key(dto.ItemName)

	var supply *model.WarehouseSupply
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		existing, findErr := s.warehouses.FindSupplyByKeyForUpdate(txCtx, warehouseID, key)
		if findErr == nil {
			existing.Quantity += dto.Quantity
			existing.CurrentPrice = price
			if updErr := s.warehouses.UpdateSupply(txCtx, existing); updErr != nil {
				return apperror.Internal(updErr)
			}
			supply = existing
			return nil
		}
		if !notFound(findErr) {
			return apperror.Internal(findErr)
		}

		supply = &model.WarehouseSupply{
			WarehouseID:    warehouseID,
			ItemName:       dto.ItemName,
			NormalizedName: key,
			Quantity:       dto.Quantity,
			Unit:           unit,
			EntryPrice:     price,
			CurrentPrice:   price,
		}
		if createErr := s.warehouses.CreateSupply(txCtx, supply); createErr != nil {
			return apperror.Internal(createErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activity.Log(ctx, Target{Model: model.EntityWarehouse, ID: warehouseID}, model.ActionAddSupply,
		PerformerUser(actor),
		map[string]interface{}{"item_name": supply.ItemName, "quantity": dto.Quantity, "price": price.String()},
		"Stocked "+supply.ItemName+" in "+warehouse.Name)

	return supply, nil
}

func (s *warehouseService) UpdateSupply(ctx context.Context, actorID, warehouseID, supplyID uuid.UUID, dto UpdateWarehouseSupplyDTO) (*model.WarehouseSupply, error) {
	actor, warehouse, err := s.authorize(ctx, actorID, warehouseID)
	if err != nil {
		return nil, err
	}

	supply, err := s.findSupply(ctx, warehouseID, supplyID)
	if err != nil {
		return nil, err
	}

	if dto.ItemName != nil && *dto.ItemName != "" {
		supply.ItemName = *dto.ItemName
		supply.NormalizedName = normalize.Key(*dto.ItemName)
	}
	if dto.Quantity != nil {
		if !validQuantity(*dto.Quantity) {
			return nil, apperror.Validation("Quantity must be a positive number")
		}
		supply.Quantity = *dto.Quantity
	}
	if dto.Unit != nil && *dto.Unit != "" {
		supply.Unit = *dto.Unit
	}
	if dto.Price != nil {
		price, parseErr := decimal.NewFromString(*dto.Price)
		if parseErr != nil || price.IsNegative() {
			return nil, apperror.Validation("Invalid price")
		}
		// Only the operative price moves; the entry price stays as recorded.
		supply.CurrentPrice = price
	}
	if err := s.warehouses.UpdateSupply(ctx, supply); err != nil {
		return nil, apperror.Internal(err)
	}

	s.activity.Log(ctx, Target{Model: model.EntityWarehouse, ID: warehouseID}, model.ActionUpdateSupply,
		PerformerUser(actor),
		map[string]interface{}{"item_name": supply.ItemName, "quantity": supply.Quantity},
		"Updated "+supply.ItemName+" in "+warehouse.Name)

	return supply, nil
}

func (s *warehouseService) DeleteSupply(ctx context.Context, actorID, warehouseID, supplyID uuid.UUID) error {
	_, _, err := s.authorize(ctx, actorID, warehouseID)
	if err != nil {
		return err
	}
	if _, err := s.findSupply(ctx, warehouseID, supplyID); err != nil {
		return err
	}
	if err := s.warehouses.DeleteSupply(ctx, supplyID); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (s *warehouseService) ListSupplies(ctx context.Context, actorID, warehouseID uuid.UUID) ([]model.WarehouseSupply, error) {
	_, _, err := s.authorize(ctx, actorID, warehouseID)
	if err != nil {
		return nil, err
	}
	supplies, err := s.warehouses.ListSupplies(ctx, warehouseID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return supplies, nil
}

// BulkImportSupplies mirrors the site import but every row must carry a
// price. New lines take the row price as both entry and current price;
// matched lines add quantity and refresh the current price only.
func (s *warehouseService) BulkImportSupplies(ctx context.Context, actorID, warehouseID uuid.UUID, rows []importer.RawRow) (*ImportSummary, error) {
	actor, warehouse, err := s.authorize(ctx, actorID, warehouseID)
	if err != nil {
		return nil, err
	}
	if len(rows) > importer.MaxRows {
		return nil, apperror.Validation("Import exceeds the %d row limit", importer.MaxRows)
	}

	current, err := s.warehouses.ListSupplies(ctx, warehouseID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	existing := make([]importer.ExistingItem, 0, len(current))
	for _, line := range current {
		existing = append(existing, importer.ExistingItem{
			Key:         line.NormalizedName,
			DisplayName: line.ItemName,
			Quantity:    line.Quantity,
		})
	}

	result := importer.Reconcile(existing, rows, importer.Options{RequirePrice: true})

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		for _, item := range result.ToCreate {
			supply := &model.WarehouseSupply{
				WarehouseID:    warehouseID,
				ItemName:       item.ItemName,
				NormalizedName: item.Key,
				Quantity:       item.Quantity,
				Unit:           item.Unit,
				EntryPrice:     item.Price,
				CurrentPrice:   item.Price,
			}
			if createErr := s.warehouses.CreateSupply(txCtx, supply); createErr != nil {
				return apperror.Internal(createErr)
			}
		}
		for _, item := range result.ToUpdate {
			supply, findErr := s.warehouses.FindSupplyByKeyForUpdate(txCtx, warehouseID, item.Key)
			if findErr != nil {
				return apperror.Internal(findErr)
			}
			supply.Quantity += item.AddQuantity
			supply.CurrentPrice = item.Price
			if updErr := s.warehouses.UpdateSupply(txCtx, supply); updErr != nil {
				return apperror.Internal(updErr)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	summary := &ImportSummary{
		Created:          len(result.ToCreate),
		Updated:          len(result.ToUpdate),
		Skipped:          len(result.Errors),
		DuplicatesMerged: result.DuplicatesMerged,
		Errors:           result.Errors,
	}

	s.activity.Log(ctx, Target{Model: model.EntityWarehouse, ID: warehouseID}, model.ActionBulkImportSupplies,
		PerformerUser(actor),
		map[string]interface{}{
			"created": summary.Created,
			"updated": summary.Updated,
			"skipped": summary.Skipped,
		},
		"Bulk imported supplies into "+warehouse.Name)

	return summary, nil
}

// Valuation sums quantity times current price over the warehouse's stock.
func (s *warehouseService) Valuation(ctx context.Context, actorID, warehouseID uuid.UUID) (*WarehouseValuation, error) {
	_, _, err := s.authorize(ctx, actorID, warehouseID)
	if err != nil {
		return nil, err
	}

	supplies, err := s.warehouses.ListSupplies(ctx, warehouseID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	total := decimal.Zero
	for _, line := range supplies {
		total = total.Add(line.CurrentPrice.Mul(decimal.NewFromFloat(line.Quantity)))
	}
	return &WarehouseValuation{WarehouseID: warehouseID, Items: len(supplies), TotalValue: total}, nil
}

// --- Helpers ---

func (s *warehouseService) loadActor(ctx context.Context, actorID uuid.UUID) (*model.User, error) {
	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		if notFound(err) {
			return nil, apperror.Unauthorized("User not found")
		}
		return nil, apperror.Internal(err)
	}
	return actor, nil
}

// authorize checks company membership and, for warehouse managers, that the
// warehouse is the one they run.
func (s *warehouseService) authorize(ctx context.Context, actorID, warehouseID uuid.UUID) (*model.User, *model.Warehouse, error) {
	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}

	warehouse, err := s.warehouses.FindByID(ctx, warehouseID)
	if err != nil {
		if notFound(err) {
			return nil, nil, apperror.NotFound("Warehouse not found")
		}
		return nil, nil, apperror.Internal(err)
	}

	if warehouse.CompanyID != nil {
		if actor.CompanyID == nil || *actor.CompanyID != *warehouse.CompanyID {
			return nil, nil, apperror.Forbidden("Warehouse belongs to a different company")
		}
	}
	if actor.Role == model.RoleWarehouseManager {
		if actor.WarehouseID == nil || *actor.WarehouseID != warehouseID {
			return nil, nil, apperror.Forbidden("Warehouse is not assigned to you")
		}
	}

	return actor, warehouse, nil
}

func (s *warehouseService) findSupply(ctx context.Context, warehouseID, supplyID uuid.UUID) (*model.WarehouseSupply, error) {
	supply, err := s.warehouses.FindSupplyByID(ctx, supplyID)
	if err != nil {
		if notFound(err) {
			return nil, apperror.NotFound("Supply not found")
		}
		return nil, apperror.Internal(err)
	}
	if supply.WarehouseID != warehouseID {
		return nil, apperror.NotFound("Supply not found")
	}
	return supply, nil
}
