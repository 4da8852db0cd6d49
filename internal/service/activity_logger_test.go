package service

import (
	"context"
	"errors"
	"testing"

	"buildsite/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeActivityRepo struct {
	rows    []*model.ActivityLog
	failing bool
}

func (f *fakeActivityRepo) Append(_ context.Context, entry *model.ActivityLog) error {
	if f.failing {
		return errors.New("insert failed")
	}
	f.rows = append(f.rows, entry)
	return nil
}

func (f *fakeActivityRepo) ListByEntity(context.Context, string, uuid.UUID, int) ([]model.ActivityLog, error) {
	return nil, nil
}

func (f *fakeActivityRepo) ListByCompany(context.Context, uuid.UUID, int, int) ([]model.ActivityLog, int64, error) {
	return nil, 0, nil
}

type fakeUserDirectory struct {
	byID   map[uuid.UUID]*model.User
	byName map[string]*model.User
}

func (f *fakeUserDirectory) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserDirectory) FindByUsername(_ context.Context, username string) (*model.User, error) {
	if u, ok := f.byName[username]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type loggerFixture struct {
	logger    *ActivityLogger
	repo      *fakeActivityRepo
	users     *fakeUserDirectory
	sites     *fakeSiteRepo
	companyID uuid.UUID
	siteID    uuid.UUID
}

func newLoggerFixture(t *testing.T) *loggerFixture {
	t.Helper()

	f := &loggerFixture{
		repo:      &fakeActivityRepo{},
		users:     &fakeUserDirectory{byID: map[uuid.UUID]*model.User{}, byName: map[string]*model.User{}},
		sites:     newFakeSiteRepo(),
		companyID: uuid.New(),
		siteID:    uuid.New(),
	}
	f.sites.sites[f.siteID] = &model.Site{ID: f.siteID, CompanyID: f.companyID}
	f.logger = NewActivityLogger(f.repo, f.users, f.sites, newFakeWarehouseRepo(), zap.NewNop())
	return f
}

func (f *loggerFixture) addUser(username, role string) *model.User {
	u := &model.User{ID: uuid.New(), Username: username, Role: role, CompanyID: &f.companyID}
	f.users.byID[u.ID] = u
	f.users.byName[username] = u
	return u
}

func TestLogWritesEntityAndCompany(t *testing.T) {
	f := newLoggerFixture(t)
	actor := f.addUser("sup1", model.RoleSupervisor)

	entry := f.logger.Log(context.Background(), Target{Model: model.EntitySite, ID: f.siteID},
		model.ActionAddSupply, PerformerUser(actor),
		map[string]interface{}{"item_name": "Cement"}, "Added Cement")

	require.NotNil(t, entry)
	assert.Equal(t, model.EntitySite, entry.EntityType)
	assert.Equal(t, f.siteID, entry.EntityID)
	require.NotNil(t, entry.CompanyID)
	assert.Equal(t, f.companyID, *entry.CompanyID)
	assert.Equal(t, "sup1", entry.PerformedByName)
	assert.Equal(t, model.RoleSupervisor, entry.PerformedByRole)
	assert.Contains(t, entry.Details, "Cement")
	require.Len(t, f.repo.rows, 1)
}

func TestLogMissingTargetReturnsNil(t *testing.T) {
	f := newLoggerFixture(t)
	actor := f.addUser("sup1", model.RoleSupervisor)

	entry := f.logger.Log(context.Background(), Target{Model: model.EntitySite, ID: uuid.New()},
		model.ActionAddSupply, PerformerUser(actor), nil, "")

	assert.Nil(t, entry)
	assert.Empty(t, f.repo.rows, "no row for a target that does not exist")
}

func TestLogAppendFailureReturnsNil(t *testing.T) {
	f := newLoggerFixture(t)
	f.repo.failing = true
	actor := f.addUser("sup1", model.RoleSupervisor)

	entry := f.logger.Log(context.Background(), Target{Model: model.EntitySite, ID: f.siteID},
		model.ActionAddSupply, PerformerUser(actor), nil, "")

	assert.Nil(t, entry, "storage failure must not escape the logger")
}

func TestLogResolvesPerformerByRef(t *testing.T) {
	f := newLoggerFixture(t)
	user := f.addUser("mgr1", model.RoleWarehouseManager)

	byID := f.logger.Log(context.Background(), Target{Model: model.EntitySite, ID: f.siteID},
		model.ActionAddSupply, PerformerRef(user.ID.String()), nil, "")
	require.NotNil(t, byID)
	assert.Equal(t, "mgr1", byID.PerformedByName)
	assert.Equal(t, model.RoleWarehouseManager, byID.PerformedByRole)

	byName := f.logger.Log(context.Background(), Target{Model: model.EntitySite, ID: f.siteID},
		model.ActionAddSupply, PerformerRef("mgr1"), nil, "")
	require.NotNil(t, byName)
	assert.Equal(t, user.ID, *byName.PerformedBy)

	legacy := f.logger.Log(context.Background(), Target{Model: model.EntitySite, ID: f.siteID},
		model.ActionAddSupply, PerformerRef("Old Import Script"), nil, "")
	require.NotNil(t, legacy)
	assert.Nil(t, legacy.PerformedBy)
	assert.Equal(t, "Old Import Script", legacy.PerformedByName)
	assert.Equal(t, "", legacy.PerformedByRole)
}

func TestLogSystemPerformer(t *testing.T) {
	f := newLoggerFixture(t)

	entry := f.logger.Log(context.Background(), Target{Model: model.EntitySite, ID: f.siteID},
		model.ActionBulkImportSupplies, SystemPerformer(), nil, "")

	require.NotNil(t, entry)
	assert.Equal(t, "System", entry.PerformedByName)
	assert.Equal(t, "system", entry.PerformedByRole)
	assert.Nil(t, entry.PerformedBy)
}

func TestLogDefaultsEmptyTargetModelToSite(t *testing.T) {
	f := newLoggerFixture(t)

	entry := f.logger.Log(context.Background(), Target{ID: f.siteID},
		model.ActionUpdateSite, SystemPerformer(), nil, "")

	require.NotNil(t, entry)
	assert.Equal(t, model.EntitySite, entry.EntityType)
}

func TestLogUnknownEntityTypeReturnsNil(t *testing.T) {
	f := newLoggerFixture(t)

	entry := f.logger.Log(context.Background(), Target{Model: "Invoice", ID: uuid.New()},
		model.ActionUpdateSite, SystemPerformer(), nil, "")

	assert.Nil(t, entry)
	assert.Empty(t, f.repo.rows)
}
