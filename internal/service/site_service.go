package service

import (
	"context"
	"time"

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

type CreateSiteDTO struct {
	Name          string   `json:"name" binding:"required"`
	Address       string   `json:"address"`
	SupervisorIDs []string `json:"supervisor_ids"`
}

type UpdateSiteDTO struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
}

type AddSupplyDTO struct {
	ItemName string  `json:"item_name" binding:"required"`
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
	Unit     string  `json:"unit"`
	Price    *string `json:"price"`
}

type UpdateSupplyDTO struct {
	ItemName *string  `json:"item_name"`
	Quantity *float64 `json:"quantity"`
	Unit     *string  `json:"unit"`
}

type PriceSupplyDTO struct {
	Price string `json:"price" binding:"required"`
}

type AddWorkerDTO struct {
	FullName  string `json:"full_name" binding:"required"`
	Trade     string `json:"trade"`
	Phone     string `json:"phone"`
	DailyWage string `json:"daily_wage"`
}

type UpdateWorkerDTO struct {
	FullName  *string `json:"full_name"`
	Trade     *string `json:"trade"`
	Phone     *string `json:"phone"`
	DailyWage *string `json:"daily_wage"`
}

type MarkAttendanceDTO struct {
	WorkerID string `json:"worker_id" binding:"required"`
	Date     string `json:"date" binding:"required"` // YYYY-MM-DD
	Status   string `json:"status" binding:"required"`
}

type PostAnnouncementDTO struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body"`
}

// ImportSummary reports what a bulk import did. Skipped rows are returned with
// their file row numbers so the uploader can fix them.
type ImportSummary struct {
	Created          int                 `json:"created"`
	Updated          int                 `json:"updated"`
	Skipped          int                 `json:"skipped"`
	DuplicatesMerged int                 `json:"duplicates_merged"`
	Errors           []importer.RowError `json:"errors,omitempty"`
}

// --- Interface ---

type SiteService interface {
	Create(ctx context.Context, actorID uuid.UUID, dto CreateSiteDTO) (*model.Site, error)
	Update(ctx context.Context, actorID, siteID uuid.UUID, dto UpdateSiteDTO) (*model.Site, error)
	Delete(ctx context.Context, actorID, siteID uuid.UUID) error
	Get(ctx context.Context, actorID, siteID uuid.UUID) (*model.Site, error)
	List(ctx context.Context, actorID uuid.UUID, page, limit int) ([]model.Site, int64, error)
	AssignSupervisors(ctx context.Context, actorID, siteID uuid.UUID, supervisorIDs []string) (*model.Site, error)

	AddSupply(ctx context.Context, actorID, siteID uuid.UUID, dto AddSupplyDTO) (*model.SiteSupply, error)
	UpdateSupply(ctx context.Context, actorID, siteID, supplyID uuid.UUID, dto UpdateSupplyDTO) (*model.SiteSupply, error)
	DeleteSupply(ctx context.Context, actorID, siteID, supplyID uuid.UUID) error
	ListSupplies(ctx context.Context, actorID, siteID uuid.UUID) ([]model.SiteSupply, error)
	PriceSupply(ctx context.Context, actorID, siteID, supplyID uuid.UUID, dto PriceSupplyDTO) (*model.SiteSupply, error)
	BulkImportSupplies(ctx context.Context, actorID, siteID uuid.UUID, rows []importer.RawRow) (*ImportSummary, error)

	AddWorker(ctx context.Context, actorID, siteID uuid.UUID, dto AddWorkerDTO) (*model.Worker, error)
	UpdateWorker(ctx context.Context, actorID, siteID, workerID uuid.UUID, dto UpdateWorkerDTO) (*model.Worker, error)
	DeleteWorker(ctx context.Context, actorID, siteID, workerID uuid.UUID) error
	ListWorkers(ctx context.Context, actorID, siteID uuid.UUID) ([]model.Worker, error)
	MarkAttendance(ctx context.Context, actorID, siteID uuid.UUID, dto MarkAttendanceDTO) (*model.AttendanceRecord, error)
	ListAttendance(ctx context.Context, actorID, siteID, workerID uuid.UUID, from, to time.Time) ([]model.AttendanceRecord, error)

	PostAnnouncement(ctx context.Context, actorID, siteID uuid.UUID, dto PostAnnouncementDTO) (*model.Announcement, error)
	ListAnnouncements(ctx context.Context, actorID, siteID uuid.UUID, page, limit int) ([]model.Announcement, int64, error)
	MarkAnnouncementRead(ctx context.Context, actorID, siteID, announcementID uuid.UUID) error
}

type siteService struct {
	sites     repository.SiteRepository
	users     repository.UserRepository
	txManager repository.TransactionManager
	activity  ActivityRecorder
	hub       EventPublisher
	logger    *zap.Logger
}

func NewSiteService(
	sites repository.SiteRepository,
	users repository.UserRepository,
	txManager repository.TransactionManager,
	activity ActivityRecorder,
	hub EventPublisher,
	logger *zap.Logger,
) SiteService {
	return &siteService{
		sites:     sites,
		users:     users,
		txManager: txManager,
		activity:  activity,
		hub:       hub,
		logger:    logger,
	}
}

// --- Sites ---

func (s *siteService) Create(ctx context.Context, actorID uuid.UUID, dto CreateSiteDTO) (*model.Site, error) {
	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor.CompanyID == nil {
		return nil, apperror.Forbidden("User does not belong to a company")
	}

	supervisors, err := s.loadSupervisors(ctx, *actor.CompanyID, dto.SupervisorIDs)
	if err != nil {
		return nil, err
	}

	site := &model.Site{
		Name:      dto.Name,
		Address:   dto.Address,
		CompanyID: *actor.CompanyID,
		AdminID:   actorID,
	}
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.sites.Create(txCtx, site); createErr != nil {
			return apperror.Internal(createErr)
		}
		if len(supervisors) > 0 {
			if assignErr := s.sites.ReplaceSupervisors(txCtx, site, supervisors); assignErr != nil {
				return apperror.Internal(assignErr)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activity.Log(ctx, Target{Model: model.EntitySite, ID: site.ID}, model.ActionCreateSite,
		PerformerUser(actor), map[string]interface{}{"name": site.Name}, "Created site "+site.Name)

	site.Supervisors = supervisors
	return site, nil
}

func (s *siteService) Update(ctx context.Context, actorID, siteID uuid.UUID, dto UpdateSiteDTO) (*model.Site, error) {
	actor, site, err := s.authorize(ctx, actorID, siteID)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil {
		site.Name = *dto.Name
	}
	if dto.Address != nil {
		site.Address = *dto.Address
	}
	if err := s.sites.Update(ctx, site); err != nil {
		return nil, apperror.Internal(err)
	}

	s.activity.Log(ctx, Target{Model: model.EntitySite, ID: site.ID}, model.ActionUpdateSite,
		PerformerUser(actor), map[string]interface{}{"name": site.Name}, "Updated site "+site.Name)

	return site, nil
}

func (s *siteService) Delete(ctx context.Context, actorID, siteID uuid.UUID) error {
	_, _, err := s.authorize(ctx, actorID, siteID)
	if err != nil {
		return err
	}
	if err := s.sites.Delete(ctx, siteID); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (s *siteService) Get(ctx context.Context, actorID, siteID uuid.UUID) (*model.Site, error) {
	_, site, err := s.authorize(ctx, actorID, siteID)
	if err != nil {
		return nil, err
	}
	return site, nil
}

func (s *siteService) List(ctx context.Context, actorID uuid.UUID, page, limit int) ([]model.Site, int64, error) {
	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return nil, 0, err
	}
	if actor.CompanyID == nil {
		return nil, 0, apperror.Forbidden("User does not belong to a company")
	}

	// Supervisors only see the sites they are assigned to.
	if actor.Role == model.RoleSupervisor {
		return actor.AssignedSites, int64(len(actor.AssignedSites)), nil
	}

	sites, total, err := s.sites.List(ctx, *actor.CompanyID, page, limit)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return sites, total, nil
}

func (s *siteService) AssignSupervisors(ctx context.Context, actorID, siteID uuid.UUID, supervisorIDs []string) (*model.Site, error) {
	_, site, err := s.authorize(ctx, actorID, siteID)
	if err != nil {
		return nil, err
	}

	supervisors, err := s.loadSupervisors(ctx, site.CompanyID, supervisorIDs)
	if err != nil {
		return nil, err
	}
	if err := s.sites.ReplaceSupervisors(ctx, site, supervisors); err != nil {
		return nil, apperror.Internal(err)
	}
	site.Supervisors = supervisors
	return site, nil
}

// --- Supplies ---

func (s *siteService) AddSupply(ctx context.Context, actorID, siteID uuid.UUID, dto AddSupplyDTO) (*model.SiteSupply, error) {
	actor, site, err := s.authorize(ctx, actorID, siteID)
	if err != nil {
		return nil, err
	}
	if !validQuantity(dto.Quantity) {
		return nil, apperror.Validation("Quantity must be a positive number")
	}

	unit := dto.Unit
	if unit == "" {
		unit = "pcs"
	}
	key := normalize.Key(dto.ItemName)

	var supply *model.SiteSupply
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		existing, findErr := s.sites.FindSupplyByKeyForUpdate(txCtx, siteID, key)
		if findErr == nil {
			// Same item under a different spelling merges into the stored line.
			existing.Quantity += dto.Quantity
			if updErr := s.sites.UpdateSupply(txCtx, existing); updErr != nil {
				return apperror.Internal(updErr)
			}
			supply = existing
			return nil
		}
		if !notFound(findErr) {
			return apperror.Internal(findErr)
		}

		supply = &model.SiteSupply{
			SiteID:         siteID,
			ItemName:       dto.ItemName,
			NormalizedName: key,
			Quantity:       dto.Quantity,
			Unit:           unit,
			Status:         model.SupplyPendingPricing,
		}
		if dto.Price != nil {
			price, parseErr := decimal.NewFromString(*dto.Price)
			if parseErr != nil || price.IsNegative() {
				return apperror.Validation("Invalid price")
			}
			now := time.Now()
			supply.Cost = price
			supply.CurrentPrice = price
			supply.Status = model.SupplyPriced
			supply.PricedBy = &actorID
			supply.PricedAt = &now
		}
		if createErr := s.sites.CreateSupply(txCtx, supply); createErr != nil {
			return apperror.Internal(createErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activity.Log(ctx, Target{Model: model.EntitySite, ID: siteID}, model.ActionAddSupply,
		PerformerUser(actor),
		map[string]interface{}{"item_name": supply.ItemName, "quantity": dto.Quantity, "unit": supply.Unit},
		"Added "+supply.ItemName+" to "+site.Name)

	return supply, nil
}

func (s *siteService) UpdateSupply(ctx context.Context, actorID, siteID, supplyID uuid.UUID, dto UpdateSupplyDTO) (*model.SiteSupply, error) {
	actor, site, err := s.authorize(ctx, actorID, siteID)
	if err != nil {
		return nil, err
	}

	supply, err := s.findSiteSupply(ctx, siteID, supplyID)
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
	if err := s.sites.UpdateSupply(ctx, supply); err != nil {
		return nil, apperror.Internal(err)
	}

	s.activity.Log(ctx, Target{Model: model.EntitySite, ID: siteID}, model.ActionUpdateSupply,
		PerformerUser(actor),
		map[string]interface{}{"item_name": supply.ItemName, "quantity": supply.Quantity},
		"Updated "+supply.ItemName+" on "+site.Name)

	return supply, nil
}

func (s *siteService) DeleteSupply(ctx context.Context, actorID, siteID, supplyID uuid.UUID) error {
	_, _, err := s.authorize(ctx, actorID, siteID)
	if err != nil {
		return err
	}
	if _, err := s.findSiteSupply(ctx, siteID, supplyID); err != nil {
		return err
	}
	if err := s.sites.DeleteSupply(ctx, supplyID); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (s *siteService) ListSupplies(ctx context.Context, actorID, siteID uuid.UUID) ([]model.SiteSupply, error) {
	_, _, err := s.authorize(ctx, actorID, siteID)
	if err != nil {
		return nil, err
	}
	supplies, err := s.sites.ListSupplies(ctx, siteID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return supplies, nil
}

// PriceSupply sets the cost of a pending_pricing line and flips it to priced.
func (s *siteService) PriceSupply(ctx context.Context, actorID, siteID, supplyID uuid.UUID, dto PriceSupplyDTO) (*model.SiteSupply, error) {
	actor, site, err := s.authorize(ctx, actorID, siteID)
	if err != nil {
		return nil, err
	}

	price, parseErr := decimal.NewFromString(dto.Price)
	if parseErr != nil || price.IsNegative() {
		return nil, apperror.Validation("Invalid price")
	}

	supply, err := s.findSiteSupply(ctx, siteID, supplyID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	supply.Cost = price
	supply.CurrentPrice = price
	supply.Status = model.SupplyPriced
	supply.PricedBy = &actorID
	supply.PricedAt = &now
	if err := s.sites.UpdateSupply(ctx, supply); err != nil {
		return nil, apperror.Internal(err)
	}

	s.activity.Log(ctx, Target{Model: model.EntitySite, ID: siteID}, model.ActionPriceSupply,
		PerformerUser(actor),
		map[string]interface{}{"item_name": supply.ItemName, "price": price.String()},
		"Priced "+supply.ItemName+" on "+site.Name)

	return supply, nil
}

// BulkImportSupplies reconciles an uploaded sheet against the site's current
// inventory and applies the result in one transaction. Price is optional for
// site imports; rows without one create pending_pricing lines.
func (s *siteService) BulkImportSupplies(ctx context.Context, actorID, siteID uuid.UUID, rows []importer.RawRow) (*ImportSummary, error) {
	actor, site, err := s.authorize(ctx, actorID, siteID)
	if err != nil {
		return nil, err
	}
	if len(rows) > importer.MaxRows {
		return nil, apperror.Validation("Import exceeds the %d row limit", importer.MaxRows)
	}

	current, err := s.sites.ListSupplies(ctx, siteID)
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

	result := importer.Reconcile(existing, rows, importer.Options{RequirePrice: false})

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		for _, item := range result.ToCreate {
			supply := &model.SiteSupply{
				SiteID:         siteID,
				ItemName:       item.ItemName,
				NormalizedName: item.Key,
				Quantity:       item.Quantity,
				Unit:           item.Unit,
				Status:         model.SupplyPendingPricing,
			}
			if item.HasPrice {
				now := time.Now()
				supply.Cost = item.Price
				supply.CurrentPrice = item.Price
				supply.Status = model.SupplyPriced
				supply.PricedBy = &actorID
				supply.PricedAt = &now
			}
			if createErr := s.sites.CreateSupply(txCtx, supply); createErr != nil {
				return apperror.Internal(createErr)
			}
		}
		for _, item := range result.ToUpdate {
			supply, findErr := s.sites.FindSupplyByKeyForUpdate(txCtx, siteID, item.Key)
			if findErr != nil {
				return apperror.Internal(findErr)
			}
			supply.Quantity += item.AddQuantity
			if item.HasPrice && supply.Status != model.SupplyPriced {
				now := time.Now()
				supply.Cost = item.Price
				supply.CurrentPrice = item.Price
				supply.Status = model.SupplyPriced
				supply.PricedBy = &actorID
				supply.PricedAt = &now
			}
			if updErr := s.sites.UpdateSupply(txCtx, supply); updErr != nil {
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

	s.activity.Log(ctx, Target{Model: model.EntitySite, ID: siteID}, model.ActionBulkImportSupplies,
		PerformerUser(actor),
		map[string]interface{}{
			"created": summary.Created,
			"updated": summary.Updated,
			"skipped": summary.Skipped,
		},
		"Bulk imported supplies into "+site.Name)

	return summary, nil
}

// --- Workers & attendance ---

func (s *siteService) AddWorker(ctx context.Context, actorID, siteID uuid.UUID, dto AddWorkerDTO) (*model.Worker, error) {
	actor, site, err := s.authorize(ctx, actorID, siteID)
	if err != nil {
		return nil, err
	}

	wage := decimal.Zero
	if dto.DailyWage != "" {
		parsed, parseErr := decimal.NewFromString(dto.DailyWage)
		if parseErr != nil || parsed.IsNegative() {
			return nil, apperror.Validation("Invalid daily wage")
		}
		wage = parsed
	}

	worker := &model.Worker{
		SiteID:    siteID,
		FullName:  dto.FullName,
		Trade:     dto.Trade,
		Phone:     dto.Phone,
		DailyWage: wage,
	}
	if err := s.sites.CreateWorker(ctx, worker); err != nil {
		return nil, apperror.Internal(err)
	}

	s.activity.Log(ctx, Target{Model: model.EntitySite, ID: siteID}, model.ActionAddWorker,
		PerformerUser(actor),
		map[string]interface{}{"full_name": worker.FullName, "trade": worker.Trade},
		"Added worker "+worker.FullName+" to "+site.Name)

	return worker, nil
}

func (s *siteService) UpdateWorker(ctx context.Context, actorID, siteID, workerID uuid.UUID, dto UpdateWorkerDTO) (*model.Worker, error) {
	_, _, err := s.authorize(ctx, actorID, siteID)
	if err != nil {
		return nil, err
	}

	worker, err := s.findWorker(ctx, siteID, workerID)
	if err != nil {
		return nil, err
	}

	if dto.FullName != nil && *dto.FullName != "" {
		worker.FullName = *dto.FullName
	}
	if dto.Trade != nil {
		worker.Trade = *dto.Trade
	}
	if dto.Phone != nil {
		worker.Phone = *dto.Phone
	}
	if dto.DailyWage != nil {
		wage, parseErr := decimal.NewFromString(*dto.DailyWage)
		if parseErr != nil || wage.IsNegative() {
			return nil, apperror.Validation("Invalid daily wage")
		}
		worker.DailyWage = wage
	}
	if err := s.sites.UpdateWorker(ctx, worker); err != nil {
		return nil, apperror.Internal(err)
	}
	return worker, nil
}

func (s *siteService) DeleteWorker(ctx context.Context, actorID, siteID, workerID uuid.UUID) error {
	_, _, err := s.authorize(ctx, actorID, siteID)
	if err != nil {
		return err
	}
	if _, err := s.findWorker(ctx, siteID, workerID); err != nil {
		return err
	}
	if err := s.sites.DeleteWorker(ctx, workerID); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (s *siteService) ListWorkers(ctx context.Context, actorID, siteID uuid.UUID) ([]model.Worker, error) {
	_, _, err := s.authorize(ctx, actorID, siteID)
	if err != nil {
		return nil, err
	}
	workers, err := s.sites.ListWorkers(ctx, siteID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return workers, nil
}

// MarkAttendance records one worker's status for one day. Marking the same
// day again overwrites the earlier status.
func (s *siteService) MarkAttendance(ctx context.Context, actorID, siteID uuid.UUID, dto MarkAttendanceDTO) (*model.AttendanceRecord, error) {
	actor, _, err := s.authorize(ctx, actorID, siteID)
	if err != nil {
		return nil, err
	}

	switch dto.Status {
	case model.AttendancePresent, model.AttendanceAbsent, model.AttendanceHalfday:
	default:
		return nil, apperror.Validation("Status must be present, absent or halfday")
	}

	workerID, err := uuid.Parse(dto.WorkerID)
	if err != nil {
		return nil, apperror.Validation("Invalid worker id")
	}
	day, err := time.Parse("2006-01-02", dto.Date)
	if err != nil {
		return nil, apperror.Validation("Date must be YYYY-MM-DD")
	}

	worker, err := s.findWorker(ctx, siteID, workerID)
	if err != nil {
		return nil, err
	}

	var record *model.AttendanceRecord
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		existing, findErr := s.sites.FindAttendance(txCtx, workerID, day)
		if findErr == nil {
			existing.Status = dto.Status
			existing.MarkedBy = &actorID
			if updErr := s.sites.UpdateAttendance(txCtx, existing); updErr != nil {
				return apperror.Internal(updErr)
			}
			record = existing
			return nil
		}
		if !notFound(findErr) {
			return apperror.Internal(findErr)
		}

		record = &model.AttendanceRecord{
			WorkerID: workerID,
			Date:     day,
			Status:   dto.Status,
			MarkedBy: &actorID,
		}
		if createErr := s.sites.CreateAttendance(txCtx, record); createErr != nil {
			return apperror.Internal(createErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activity.Log(ctx, Target{Model: model.EntitySite, ID: siteID}, model.ActionMarkAttendance,
		PerformerUser(actor),
		map[string]interface{}{"worker": worker.FullName, "date": dto.Date, "status": dto.Status},
		"Marked "+worker.FullName+" "+dto.Status)

	return record, nil
}

func (s *siteService) ListAttendance(ctx context.Context, actorID, siteID, workerID uuid.UUID, from, to time.Time) ([]model.AttendanceRecord, error) {
	_, _, err := s.authorize(ctx, actorID, siteID)
	if err != nil {
		return nil, err
	}
	if _, err := s.findWorker(ctx, siteID, workerID); err != nil {
		return nil, err
	}
	records, err := s.sites.ListAttendance(ctx, workerID, from, to)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return records, nil
}

// --- Announcements ---

func (s *siteService) PostAnnouncement(ctx context.Context, actorID, siteID uuid.UUID, dto PostAnnouncementDTO) (*model.Announcement, error) {
	actor, site, err := s.authorize(ctx, actorID, siteID)
	if err != nil {
		return nil, err
	}

	announcement := &model.Announcement{
		SiteID:    siteID,
		Title:     dto.Title,
		Body:      dto.Body,
		CreatedBy: &actorID,
	}
	if err := s.sites.CreateAnnouncement(ctx, announcement); err != nil {
		return nil, apperror.Internal(err)
	}

	s.activity.Log(ctx, Target{Model: model.EntitySite, ID: siteID}, model.ActionPostAnnouncement,
		PerformerUser(actor),
		map[string]interface{}{"title": announcement.Title},
		"Posted announcement on "+site.Name)

	if s.hub != nil {
		s.hub.Publish("announcement.posted", map[string]interface{}{
			"site_id": siteID.String(),
			"id":      announcement.ID.String(),
			"title":   announcement.Title,
		})
	}

	return announcement, nil
}

func (s *siteService) ListAnnouncements(ctx context.Context, actorID, siteID uuid.UUID, page, limit int) ([]model.Announcement, int64, error) {
	_, _, err := s.authorize(ctx, actorID, siteID)
	if err != nil {
		return nil, 0, err
	}
	announcements, total, err := s.sites.ListAnnouncements(ctx, siteID, page, limit)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return announcements, total, nil
}

func (s *siteService) MarkAnnouncementRead(ctx context.Context, actorID, siteID, announcementID uuid.UUID) error {
	_, _, err := s.authorize(ctx, actorID, siteID)
	if err != nil {
		return err
	}

	announcement, err := s.sites.FindAnnouncementByID(ctx, announcementID)
	if err != nil {
		if notFound(err) {
			return apperror.NotFound("Announcement not found")
		}
		return apperror.Internal(err)
	}
	if announcement.SiteID != siteID {
		return apperror.NotFound("Announcement not found")
	}

	read := &model.AnnouncementRead{AnnouncementID: announcementID, UserID: actorID}
	if err := s.sites.MarkAnnouncementRead(ctx, read); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

// --- Helpers ---

func (s *siteService) loadActor(ctx context.Context, actorID uuid.UUID) (*model.User, error) {
	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		if notFound(err) {
			return nil, apperror.Unauthorized("User not found")
		}
		return nil, apperror.Internal(err)
	}
	return actor, nil
}

// authorize loads the actor and the site and checks the actor may touch it:
// same company, and for supervisors the site must be among their assignments.
func (s *siteService) authorize(ctx context.Context, actorID, siteID uuid.UUID) (*model.User, *model.Site, error) {
	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}

	site, err := s.sites.FindByID(ctx, siteID)
	if err != nil {
		if notFound(err) {
			return nil, nil, apperror.NotFound("Site not found")
		}
		return nil, nil, apperror.Internal(err)
	}

	if actor.CompanyID == nil || *actor.CompanyID != site.CompanyID {
		return nil, nil, apperror.Forbidden("Site belongs to a different company")
	}
	if actor.Role == model.RoleSupervisor && !assignedTo(actor, siteID) {
		return nil, nil, apperror.Forbidden("Site is not assigned to you")
	}

	return actor, site, nil
}

func assignedTo(u *model.User, siteID uuid.UUID) bool {
	for _, site := range u.AssignedSites {
		if site.ID == siteID {
			return true
		}
	}
	return false
}

// loadSupervisors resolves and validates a list of supervisor ids against the
// company.
func (s *siteService) loadSupervisors(ctx context.Context, companyID uuid.UUID, ids []string) ([]model.User, error) {
	supervisors := make([]model.User, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, apperror.Validation("Invalid supervisor id %q", raw)
		}
		user, err := s.users.FindByID(ctx, id)
		if err != nil {
			if notFound(err) {
				return nil, apperror.NotFound("Supervisor %s not found", raw)
			}
			return nil, apperror.Internal(err)
		}
		if user.Role != model.RoleSupervisor {
			return nil, apperror.Validation("User %s is not a supervisor", user.Username)
		}
		if user.CompanyID == nil || *user.CompanyID != companyID {
			return nil, apperror.Validation("Supervisor %s belongs to a different company", user.Username)
		}
		supervisors = append(supervisors, *user)
	}
	return supervisors, nil
}

func (s *siteService) findSiteSupply(ctx context.Context, siteID, supplyID uuid.UUID) (*model.SiteSupply, error) {
	supply, err := s.sites.FindSupplyByID(ctx, supplyID)
	if err != nil {
		if notFound(err) {
			return nil, apperror.NotFound("Supply not found")
		}
		return nil, apperror.Internal(err)
	}
	if supply.SiteID != siteID {
		return nil, apperror.NotFound("Supply not found")
	}
	return supply, nil
}

func (s *siteService) findWorker(ctx context.Context, siteID, workerID uuid.UUID) (*model.Worker, error) {
	worker, err := s.sites.FindWorkerByID(ctx, workerID)
	if err != nil {
		if notFound(err) {
			return nil, apperror.NotFound("Worker not found")
		}
		return nil, apperror.Internal(err)
	}
	if worker.SiteID != siteID {
		return nil, apperror.NotFound("Worker not found")
	}
	return worker, nil
}
