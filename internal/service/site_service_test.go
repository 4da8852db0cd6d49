package service

import (
	"context"
	"testing"
	"time"

	"buildsite/internal/importer"
	"buildsite/internal/model"
	"buildsite/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Extra fake methods the site flows need, on top of the ones the request
// tests define.

func (f *fakeSiteRepo) ListSupplies(_ context.Context, siteID uuid.UUID) ([]model.SiteSupply, error) {
	var out []model.SiteSupply
	for _, supply := range f.supplies[siteID] {
		out = append(out, *supply)
	}
	return out, nil
}

type fakeWorkerStore struct {
	workers    map[uuid.UUID]*model.Worker
	attendance map[string]*model.AttendanceRecord
}

func attendanceKey(workerID uuid.UUID, day time.Time) string {
	return workerID.String() + "/" + day.Format("2006-01-02")
}

func (f *fakeSiteRepo) ensureWorkerStore() {
	if f.workerStore == nil {
		f.workerStore = &fakeWorkerStore{
			workers:    make(map[uuid.UUID]*model.Worker),
			attendance: make(map[string]*model.AttendanceRecord),
		}
	}
}

func (f *fakeSiteRepo) CreateWorker(_ context.Context, worker *model.Worker) error {
	f.ensureWorkerStore()
	if worker.ID == uuid.Nil {
		worker.ID = uuid.New()
	}
	copied := *worker
	f.workerStore.workers[worker.ID] = &copied
	return nil
}

func (f *fakeSiteRepo) FindWorkerByID(_ context.Context, id uuid.UUID) (*model.Worker, error) {
	f.ensureWorkerStore()
	w, ok := f.workerStore.workers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return w, nil
}

func (f *fakeSiteRepo) CreateAttendance(_ context.Context, record *model.AttendanceRecord) error {
	f.ensureWorkerStore()
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	copied := *record
	f.workerStore.attendance[attendanceKey(record.WorkerID, record.Date)] = &copied
	return nil
}

func (f *fakeSiteRepo) UpdateAttendance(_ context.Context, record *model.AttendanceRecord) error {
	copied := *record
	f.workerStore.attendance[attendanceKey(record.WorkerID, record.Date)] = &copied
	return nil
}

func (f *fakeSiteRepo) FindAttendance(_ context.Context, workerID uuid.UUID, day time.Time) (*model.AttendanceRecord, error) {
	f.ensureWorkerStore()
	record, ok := f.workerStore.attendance[attendanceKey(workerID, day)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *record
	return &copied, nil
}

type siteFixture struct {
	svc       SiteService
	sites     *fakeSiteRepo
	users     *fakeUserRepo
	recorder  *fakeRecorder
	companyID uuid.UUID
	siteID    uuid.UUID
	ownerID   uuid.UUID
}

func newSiteFixture(t *testing.T) *siteFixture {
	t.Helper()

	f := &siteFixture{
		sites:     newFakeSiteRepo(),
		users:     newFakeUserRepo(),
		recorder:  &fakeRecorder{},
		companyID: uuid.New(),
		siteID:    uuid.New(),
		ownerID:   uuid.New(),
	}
	f.sites.sites[f.siteID] = &model.Site{ID: f.siteID, Name: "Tower A", CompanyID: f.companyID, AdminID: f.ownerID}
	f.users.users[f.ownerID] = &model.User{ID: f.ownerID, Username: "owner1", Role: model.RoleCompanyOwner, CompanyID: &f.companyID}
	f.svc = NewSiteService(f.sites, f.users, fakeTxManager{}, f.recorder, nil, zap.NewNop())
	return f
}

func TestBulkImportSuppliesAppliesReconciliation(t *testing.T) {
	f := newSiteFixture(t)
	require.NoError(t, f.sites.CreateSupply(context.Background(), &model.SiteSupply{
		SiteID:         f.siteID,
		ItemName:       "Cement Bags",
		NormalizedName: "cement bag",
		Quantity:       40,
		Status:         model.SupplyPendingPricing,
	}))

	rows := []importer.RawRow{
		{ItemName: "cement-bag", Quantity: "10", Unit: "bag", DisplayRow: 2},
		{ItemName: "Apple", Quantity: "3", Unit: "kg", DisplayRow: 3},
		{ItemName: "apples", Quantity: "5", Unit: "kg", Price: "2.50", DisplayRow: 4},
		{ItemName: "", Quantity: "9", DisplayRow: 5},
	}

	summary, err := f.svc.BulkImportSupplies(context.Background(), f.ownerID, f.siteID, rows)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1, summary.DuplicatesMerged)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, 5, summary.Errors[0].Row)

	cement := f.sites.supplies[f.siteID]["cement bag"]
	assert.Equal(t, 50.0, cement.Quantity)

	apple := f.sites.supplies[f.siteID]["apple"]
	require.NotNil(t, apple, "spelling variants merge into one line")
	assert.Equal(t, "Apple", apple.ItemName)
	assert.Equal(t, 8.0, apple.Quantity)
	assert.Equal(t, model.SupplyPriced, apple.Status, "merged group carries the quoted price")
	assert.True(t, apple.CurrentPrice.Equal(decimal.RequireFromString("2.50")))

	require.Len(t, f.recorder.entries, 1)
	assert.Equal(t, model.ActionBulkImportSupplies, f.recorder.entries[0].action)
}

func TestAddSupplyMergesExistingSpelling(t *testing.T) {
	f := newSiteFixture(t)
	require.NoError(t, f.sites.CreateSupply(context.Background(), &model.SiteSupply{
		SiteID:         f.siteID,
		ItemName:       "Cement Bags",
		NormalizedName: "cement bag",
		Quantity:       40,
	}))

	supply, err := f.svc.AddSupply(context.Background(), f.ownerID, f.siteID, AddSupplyDTO{
		ItemName: "CEMENT-BAG",
		Quantity: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 50.0, supply.Quantity)
	assert.Equal(t, "Cement Bags", supply.ItemName, "stored spelling kept")
}

func TestMarkAttendanceOverwritesSameDay(t *testing.T) {
	f := newSiteFixture(t)
	worker, err := f.svc.AddWorker(context.Background(), f.ownerID, f.siteID, AddWorkerDTO{FullName: "Ravi Kumar"})
	require.NoError(t, err)

	first, err := f.svc.MarkAttendance(context.Background(), f.ownerID, f.siteID, MarkAttendanceDTO{
		WorkerID: worker.ID.String(),
		Date:     "2026-08-31",
		Status:   model.AttendancePresent,
	})
	require.NoError(t, err)
	assert.Equal(t, model.AttendancePresent, first.Status)

	second, err := f.svc.MarkAttendance(context.Background(), f.ownerID, f.siteID, MarkAttendanceDTO{
		WorkerID: worker.ID.String(),
		Date:     "2026-08-31",
		Status:   model.AttendanceHalfday,
	})
	require.NoError(t, err)
	assert.Equal(t, model.AttendanceHalfday, second.Status)
	assert.Equal(t, first.ID, second.ID, "same day updates in place")
}

func TestMarkAttendanceRejectsUnknownStatus(t *testing.T) {
	f := newSiteFixture(t)
	worker, err := f.svc.AddWorker(context.Background(), f.ownerID, f.siteID, AddWorkerDTO{FullName: "Ravi Kumar"})
	require.NoError(t, err)

	_, err = f.svc.MarkAttendance(context.Background(), f.ownerID, f.siteID, MarkAttendanceDTO{
		WorkerID: worker.ID.String(),
		Date:     "2026-08-31",
		Status:   "late",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestSupervisorNeedsAssignment(t *testing.T) {
	f := newSiteFixture(t)
	supervisorID := uuid.New()
	f.users.users[supervisorID] = &model.User{
		ID: supervisorID, Username: "sup1", Role: model.RoleSupervisor, CompanyID: &f.companyID,
	}

	_, err := f.svc.ListSupplies(context.Background(), supervisorID, f.siteID)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))

	f.users.users[supervisorID].AssignedSites = []model.Site{{ID: f.siteID}}
	_, err = f.svc.ListSupplies(context.Background(), supervisorID, f.siteID)
	assert.NoError(t, err)
}

func TestCrossCompanyAccessDenied(t *testing.T) {
	f := newSiteFixture(t)
	otherCompany := uuid.New()
	outsiderID := uuid.New()
	f.users.users[outsiderID] = &model.User{
		ID: outsiderID, Username: "other", Role: model.RoleCompanyOwner, CompanyID: &otherCompany,
	}

	_, err := f.svc.Get(context.Background(), outsiderID, f.siteID)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))
}
