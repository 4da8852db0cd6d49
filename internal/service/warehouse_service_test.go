package service

import (
	"context"
	"testing"

	"buildsite/internal/model"
	"buildsite/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func (f *fakeWarehouseRepo) CreateSupply(_ context.Context, supply *model.WarehouseSupply) error {
	if supply.ID == uuid.Nil {
		supply.ID = uuid.New()
	}
	if f.supplies[supply.WarehouseID] == nil {
		f.supplies[supply.WarehouseID] = make(map[string]*model.WarehouseSupply)
	}
	copied := *supply
	f.supplies[supply.WarehouseID][supply.NormalizedName] = &copied
	return nil
}

func (f *fakeWarehouseRepo) FindSupplyByID(_ context.Context, id uuid.UUID) (*model.WarehouseSupply, error) {
	for _, lines := range f.supplies {
		for _, supply := range lines {
			if supply.ID == id {
				copied := *supply
				return &copied, nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeWarehouseRepo) ListSupplies(_ context.Context, warehouseID uuid.UUID) ([]model.WarehouseSupply, error) {
	var out []model.WarehouseSupply
	for _, supply := range f.supplies[warehouseID] {
		out = append(out, *supply)
	}
	return out, nil
}

type warehouseFixture struct {
	svc         WarehouseService
	warehouses  *fakeWarehouseRepo
	users       *fakeUserRepo
	recorder    *fakeRecorder
	companyID   uuid.UUID
	warehouseID uuid.UUID
	ownerID     uuid.UUID
}

func newWarehouseFixture(t *testing.T) *warehouseFixture {
	t.Helper()

	f := &warehouseFixture{
		warehouses:  newFakeWarehouseRepo(),
		users:       newFakeUserRepo(),
		recorder:    &fakeRecorder{},
		companyID:   uuid.New(),
		warehouseID: uuid.New(),
		ownerID:     uuid.New(),
	}
	f.warehouses.warehouses[f.warehouseID] = &model.Warehouse{
		ID: f.warehouseID, Name: "Central", CompanyID: &f.companyID, AdminID: f.ownerID,
	}
	f.users.users[f.ownerID] = &model.User{ID: f.ownerID, Username: "owner1", Role: model.RoleCompanyOwner, CompanyID: &f.companyID}
	f.svc = NewWarehouseService(f.warehouses, f.users, fakeTxManager{}, f.recorder, zap.NewNop())
	return f
}

func TestWarehouseUpdateSupplyKeepsEntryPrice(t *testing.T) {
	f := newWarehouseFixture(t)

	supply, err := f.svc.AddSupply(context.Background(), f.ownerID, f.warehouseID, AddWarehouseSupplyDTO{
		ItemName: "Cement", Quantity: 100, Unit: "bag", Price: "350",
	})
	require.NoError(t, err)
	assert.True(t, supply.EntryPrice.Equal(decimal.NewFromInt(350)))

	newPrice := "420"
	updated, err := f.svc.UpdateSupply(context.Background(), f.ownerID, f.warehouseID, supply.ID, UpdateWarehouseSupplyDTO{
		Price: &newPrice,
	})
	require.NoError(t, err)
	assert.True(t, updated.CurrentPrice.Equal(decimal.NewFromInt(420)))
	assert.True(t, updated.EntryPrice.Equal(decimal.NewFromInt(350)), "entry price is fixed at stocking time")
}

func TestWarehouseAddSupplyMergeRefreshesCurrentPriceOnly(t *testing.T) {
	f := newWarehouseFixture(t)

	first, err := f.svc.AddSupply(context.Background(), f.ownerID, f.warehouseID, AddWarehouseSupplyDTO{
		ItemName: "Cement", Quantity: 100, Unit: "bag", Price: "350",
	})
	require.NoError(t, err)

	merged, err := f.svc.AddSupply(context.Background(), f.ownerID, f.warehouseID, AddWarehouseSupplyDTO{
		ItemName: "cement", Quantity: 50, Unit: "bag", Price: "400",
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, merged.ID, "restock merges into the existing line")
	assert.Equal(t, 150.0, merged.Quantity)
	assert.True(t, merged.CurrentPrice.Equal(decimal.NewFromInt(400)))
	assert.True(t, merged.EntryPrice.Equal(decimal.NewFromInt(350)))
}

func TestWarehouseManagerScopedToOwnWarehouse(t *testing.T) {
	f := newWarehouseFixture(t)
	otherWarehouse := uuid.New()
	f.warehouses.warehouses[otherWarehouse] = &model.Warehouse{
		ID: otherWarehouse, Name: "North", CompanyID: &f.companyID, AdminID: f.ownerID,
	}
	managerID := uuid.New()
	f.users.users[managerID] = &model.User{
		ID: managerID, Username: "mgr1", Role: model.RoleWarehouseManager,
		CompanyID: &f.companyID, WarehouseID: &f.warehouseID,
	}

	_, err := f.svc.ListSupplies(context.Background(), managerID, otherWarehouse)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))

	_, err = f.svc.ListSupplies(context.Background(), managerID, f.warehouseID)
	assert.NoError(t, err)
}

func TestWarehouseValuation(t *testing.T) {
	f := newWarehouseFixture(t)

	_, err := f.svc.AddSupply(context.Background(), f.ownerID, f.warehouseID, AddWarehouseSupplyDTO{
		ItemName: "Cement", Quantity: 10, Unit: "bag", Price: "350",
	})
	require.NoError(t, err)
	_, err = f.svc.AddSupply(context.Background(), f.ownerID, f.warehouseID, AddWarehouseSupplyDTO{
		ItemName: "Sand", Quantity: 2.5, Unit: "ton", Price: "1200",
	})
	require.NoError(t, err)

	valuation, err := f.svc.Valuation(context.Background(), f.ownerID, f.warehouseID)
	require.NoError(t, err)
	assert.Equal(t, 2, valuation.Items)
	assert.True(t, valuation.TotalValue.Equal(decimal.NewFromInt(6500)), "10*350 + 2.5*1200")
}

func TestWarehouseAddSupplyRejectsBadPrice(t *testing.T) {
	f := newWarehouseFixture(t)

	_, err := f.svc.AddSupply(context.Background(), f.ownerID, f.warehouseID, AddWarehouseSupplyDTO{
		ItemName: "Cement", Quantity: 10, Unit: "bag", Price: "-5",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}
