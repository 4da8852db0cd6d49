package service

import (
	"context"
	"testing"

	"buildsite/internal/model"
	"buildsite/internal/repository"
	"buildsite/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// --- Fakes. Unembedded interface methods panic when reached, which is the
// point: these tests should only touch the paths implemented below. ---

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type fakeRequestRepo struct {
	repository.SupplyRequestRepository
	requests map[uuid.UUID]*model.SupplyRequest
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: make(map[uuid.UUID]*model.SupplyRequest)}
}

func (f *fakeRequestRepo) Create(_ context.Context, req *model.SupplyRequest) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	copied := *req
	f.requests[req.ID] = &copied
	return nil
}

func (f *fakeRequestRepo) Update(_ context.Context, req *model.SupplyRequest) error {
	copied := *req
	f.requests[req.ID] = &copied
	return nil
}

func (f *fakeRequestRepo) FindByIDForUpdate(_ context.Context, id uuid.UUID) (*model.SupplyRequest, error) {
	req, ok := f.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *req
	return &copied, nil
}

type fakeWarehouseRepo struct {
	repository.WarehouseRepository
	warehouses map[uuid.UUID]*model.Warehouse
	supplies   map[uuid.UUID]map[string]*model.WarehouseSupply
}

func newFakeWarehouseRepo() *fakeWarehouseRepo {
	return &fakeWarehouseRepo{
		warehouses: make(map[uuid.UUID]*model.Warehouse),
		supplies:   make(map[uuid.UUID]map[string]*model.WarehouseSupply),
	}
}

func (f *fakeWarehouseRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Warehouse, error) {
	w, ok := f.warehouses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return w, nil
}

func (f *fakeWarehouseRepo) FindSupplyByKeyForUpdate(_ context.Context, warehouseID uuid.UUID, key string) (*model.WarehouseSupply, error) {
	supply, ok := f.supplies[warehouseID][key]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *supply
	return &copied, nil
}

func (f *fakeWarehouseRepo) UpdateSupply(_ context.Context, supply *model.WarehouseSupply) error {
	copied := *supply
	f.supplies[supply.WarehouseID][supply.NormalizedName] = &copied
	return nil
}

func (f *fakeWarehouseRepo) stock(warehouseID uuid.UUID, supply model.WarehouseSupply) {
	if f.supplies[warehouseID] == nil {
		f.supplies[warehouseID] = make(map[string]*model.WarehouseSupply)
	}
	supply.WarehouseID = warehouseID
	f.supplies[warehouseID][supply.NormalizedName] = &supply
}

type fakeSiteRepo struct {
	repository.SiteRepository
	sites       map[uuid.UUID]*model.Site
	supplies    map[uuid.UUID]map[string]*model.SiteSupply
	workerStore *fakeWorkerStore
}

func newFakeSiteRepo() *fakeSiteRepo {
	return &fakeSiteRepo{
		sites:    make(map[uuid.UUID]*model.Site),
		supplies: make(map[uuid.UUID]map[string]*model.SiteSupply),
	}
}

func (f *fakeSiteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Site, error) {
	s, ok := f.sites[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (f *fakeSiteRepo) FindSupplyByKeyForUpdate(_ context.Context, siteID uuid.UUID, key string) (*model.SiteSupply, error) {
	supply, ok := f.supplies[siteID][key]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *supply
	return &copied, nil
}

func (f *fakeSiteRepo) CreateSupply(_ context.Context, supply *model.SiteSupply) error {
	if supply.ID == uuid.Nil {
		supply.ID = uuid.New()
	}
	if f.supplies[supply.SiteID] == nil {
		f.supplies[supply.SiteID] = make(map[string]*model.SiteSupply)
	}
	copied := *supply
	f.supplies[supply.SiteID][supply.NormalizedName] = &copied
	return nil
}

func (f *fakeSiteRepo) UpdateSupply(_ context.Context, supply *model.SiteSupply) error {
	copied := *supply
	f.supplies[supply.SiteID][supply.NormalizedName] = &copied
	return nil
}

type fakeUserRepo struct {
	repository.UserRepository
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

type recordedLog struct {
	target Target
	action string
}

type fakeRecorder struct {
	entries []recordedLog
}

func (f *fakeRecorder) Log(_ context.Context, target Target, action string, _ Performer, _ map[string]interface{}, _ string) *model.ActivityLog {
	f.entries = append(f.entries, recordedLog{target: target, action: action})
	return &model.ActivityLog{}
}

// --- Fixture ---

type requestFixture struct {
	svc         SupplyRequestService
	requests    *fakeRequestRepo
	warehouses  *fakeWarehouseRepo
	sites       *fakeSiteRepo
	users       *fakeUserRepo
	recorder    *fakeRecorder
	companyID   uuid.UUID
	siteID      uuid.UUID
	warehouseID uuid.UUID
	approverID  uuid.UUID
}

func newRequestFixture(t *testing.T, strictReject bool) *requestFixture {
	t.Helper()

	f := &requestFixture{
		requests:    newFakeRequestRepo(),
		warehouses:  newFakeWarehouseRepo(),
		sites:       newFakeSiteRepo(),
		users:       newFakeUserRepo(),
		recorder:    &fakeRecorder{},
		companyID:   uuid.New(),
		siteID:      uuid.New(),
		warehouseID: uuid.New(),
		approverID:  uuid.New(),
	}

	f.sites.sites[f.siteID] = &model.Site{ID: f.siteID, Name: "Tower A", CompanyID: f.companyID, AdminID: f.approverID}
	f.warehouses.warehouses[f.warehouseID] = &model.Warehouse{ID: f.warehouseID, Name: "Central", CompanyID: &f.companyID}
	f.users.users[f.approverID] = &model.User{ID: f.approverID, Username: "owner1", Role: model.RoleCompanyOwner, CompanyID: &f.companyID}

	f.svc = NewSupplyRequestService(
		f.requests, f.warehouses, f.sites, f.users,
		fakeTxManager{}, f.recorder, nil, nil, nil,
		zap.NewNop(), strictReject,
	)
	return f
}

func (f *requestFixture) pendingRequest(item string, qty float64) *model.SupplyRequest {
	companyID := f.companyID
	req := &model.SupplyRequest{
		ID:                uuid.New(),
		SiteID:            f.siteID,
		WarehouseID:       f.warehouseID,
		CompanyID:         &companyID,
		ItemName:          item,
		NormalizedName:    "cement bag",
		RequestedQuantity: qty,
		Unit:              "bag",
		Status:            model.RequestPending,
	}
	f.requests.requests[req.ID] = req
	return req
}

// --- Tests ---

func TestApproveTransfersStock(t *testing.T) {
	f := newRequestFixture(t, false)
	f.warehouses.stock(f.warehouseID, model.WarehouseSupply{
		ItemName:       "Cement Bags",
		NormalizedName: "cement bag",
		Quantity:       100,
		Unit:           "bag",
		EntryPrice:     decimal.NewFromInt(45),
		CurrentPrice:   decimal.NewFromInt(50),
	})
	req := f.pendingRequest("cement-bags", 20)

	result, err := f.svc.Approve(context.Background(), req.ID, 20, f.approverID)
	require.NoError(t, err)

	assert.Equal(t, model.RequestApproved, result.Status)
	assert.Equal(t, 20.0, result.TransferredQuantity)
	assert.Equal(t, "50", result.TransferPrice)
	assert.Equal(t, "owner1", result.HandledByName)
	require.NotNil(t, result.HandledAt)

	stock := f.warehouses.supplies[f.warehouseID]["cement bag"]
	assert.Equal(t, 80.0, stock.Quantity)

	siteSupply := f.sites.supplies[f.siteID]["cement bag"]
	require.NotNil(t, siteSupply, "site inventory line must be created")
	assert.Equal(t, 20.0, siteSupply.Quantity)
	assert.Equal(t, model.SupplyPriced, siteSupply.Status)
	assert.True(t, siteSupply.Cost.Equal(decimal.NewFromInt(50)))

	require.Len(t, f.recorder.entries, 2, "one warehouse entry and one site entry")
	assert.Equal(t, model.ActionTransferSupply, f.recorder.entries[0].action)
	assert.Equal(t, model.EntityWarehouse, f.recorder.entries[0].target.Model)
	assert.Equal(t, model.ActionReceiveSupply, f.recorder.entries[1].action)
	assert.Equal(t, model.EntitySite, f.recorder.entries[1].target.Model)
}

func TestApproveAddsToExistingSiteSupply(t *testing.T) {
	f := newRequestFixture(t, false)
	f.warehouses.stock(f.warehouseID, model.WarehouseSupply{
		ItemName:       "Cement Bags",
		NormalizedName: "cement bag",
		Quantity:       100,
		CurrentPrice:   decimal.NewFromInt(50),
	})
	require.NoError(t, f.sites.CreateSupply(context.Background(), &model.SiteSupply{
		SiteID:         f.siteID,
		ItemName:       "Cement",
		NormalizedName: "cement bag",
		Quantity:       5,
		Status:         model.SupplyPendingPricing,
	}))
	req := f.pendingRequest("cement bags", 10)

	_, err := f.svc.Approve(context.Background(), req.ID, 10, f.approverID)
	require.NoError(t, err)

	siteSupply := f.sites.supplies[f.siteID]["cement bag"]
	assert.Equal(t, 15.0, siteSupply.Quantity)
	assert.Equal(t, model.SupplyPriced, siteSupply.Status, "unpriced line inherits the transfer price")
	assert.True(t, siteSupply.CurrentPrice.Equal(decimal.NewFromInt(50)))
}

func TestApproveTwiceConflicts(t *testing.T) {
	f := newRequestFixture(t, false)
	f.warehouses.stock(f.warehouseID, model.WarehouseSupply{
		NormalizedName: "cement bag",
		Quantity:       100,
		CurrentPrice:   decimal.NewFromInt(50),
	})
	req := f.pendingRequest("cement bags", 20)

	_, err := f.svc.Approve(context.Background(), req.ID, 20, f.approverID)
	require.NoError(t, err)

	_, err = f.svc.Approve(context.Background(), req.ID, 20, f.approverID)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))

	stock := f.warehouses.supplies[f.warehouseID]["cement bag"]
	assert.Equal(t, 80.0, stock.Quantity, "second approval must not ship again")
}

func TestApproveInsufficientStock(t *testing.T) {
	f := newRequestFixture(t, false)
	f.warehouses.stock(f.warehouseID, model.WarehouseSupply{
		NormalizedName: "cement bag",
		Quantity:       10,
		CurrentPrice:   decimal.NewFromInt(50),
	})
	req := f.pendingRequest("cement bags", 20)

	_, err := f.svc.Approve(context.Background(), req.ID, 20, f.approverID)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindInsufficientStock))

	stock := f.warehouses.supplies[f.warehouseID]["cement bag"]
	assert.Equal(t, 10.0, stock.Quantity, "stock untouched")
	assert.Equal(t, model.RequestPending, f.requests.requests[req.ID].Status, "request stays pending")
	assert.Empty(t, f.recorder.entries, "failed approval writes no audit rows")
}

func TestApproveValidatesQuantity(t *testing.T) {
	f := newRequestFixture(t, false)
	req := f.pendingRequest("cement bags", 20)

	for _, qty := range []float64{0, -5} {
		_, err := f.svc.Approve(context.Background(), req.ID, qty, f.approverID)
		require.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindValidation), "quantity %v", qty)
	}
}

func TestApproveMissingWarehouseStock(t *testing.T) {
	f := newRequestFixture(t, false)
	req := f.pendingRequest("cement bags", 20)

	_, err := f.svc.Approve(context.Background(), req.ID, 20, f.approverID)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestApproveFallsBackToEntryPrice(t *testing.T) {
	f := newRequestFixture(t, false)
	f.warehouses.stock(f.warehouseID, model.WarehouseSupply{
		NormalizedName: "cement bag",
		Quantity:       50,
		EntryPrice:     decimal.NewFromInt(42),
		CurrentPrice:   decimal.Zero,
	})
	req := f.pendingRequest("cement bags", 5)

	result, err := f.svc.Approve(context.Background(), req.ID, 5, f.approverID)
	require.NoError(t, err)
	assert.Equal(t, "42", result.TransferPrice)
}

func TestRejectDefaultsReason(t *testing.T) {
	f := newRequestFixture(t, false)
	req := f.pendingRequest("cement bags", 20)

	result, err := f.svc.Reject(context.Background(), req.ID, "", f.approverID)
	require.NoError(t, err)

	assert.Equal(t, model.RequestRejected, result.Status)
	assert.Equal(t, "No reason provided", result.Reason)

	require.Len(t, f.recorder.entries, 2)
	assert.Equal(t, model.ActionRejectRequest, f.recorder.entries[0].action)
	assert.Equal(t, model.ActionRejectRequest, f.recorder.entries[1].action)
}

func TestRejectStrictGuard(t *testing.T) {
	strict := newRequestFixture(t, true)
	req := strict.pendingRequest("cement bags", 20)
	req.Status = model.RequestApproved

	_, err := strict.svc.Reject(context.Background(), req.ID, "late", strict.approverID)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))

	lenient := newRequestFixture(t, false)
	req2 := lenient.pendingRequest("cement bags", 20)
	req2.Status = model.RequestApproved

	result, err := lenient.svc.Reject(context.Background(), req2.ID, "late", lenient.approverID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestRejected, result.Status)
}

func TestCreateBatchesMultipleItems(t *testing.T) {
	f := newRequestFixture(t, false)

	created, err := f.svc.Create(context.Background(), f.approverID, CreateSupplyRequestDTO{
		SiteID:      f.siteID.String(),
		WarehouseID: f.warehouseID.String(),
		Items: []SupplyRequestItem{
			{ItemName: "Cement Bags", Quantity: 10, Unit: "bag"},
			{ItemName: "Steel Rods", Quantity: 25},
		},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)

	require.NotNil(t, created[0].BatchID)
	require.NotNil(t, created[1].BatchID)
	assert.Equal(t, *created[0].BatchID, *created[1].BatchID, "items raised together share a batch")
	assert.Equal(t, "pcs", created[1].Unit, "missing unit defaults")
	assert.Equal(t, model.RequestPending, created[0].Status)
}

func TestCreateSingleItemHasNoBatch(t *testing.T) {
	f := newRequestFixture(t, false)

	created, err := f.svc.Create(context.Background(), f.approverID, CreateSupplyRequestDTO{
		SiteID:      f.siteID.String(),
		WarehouseID: f.warehouseID.String(),
		Items:       []SupplyRequestItem{{ItemName: "Cement Bags", Quantity: 10}},
	})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Nil(t, created[0].BatchID)
}
