package service

import (
	"context"
	"math"
	"time"

	"buildsite/internal/cache"
	"buildsite/internal/mailer"
	"buildsite/internal/model"
	"buildsite/internal/normalize"
	"buildsite/internal/repository"
	"buildsite/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// EventPublisher pushes realtime events to connected clients. The websocket
// hub implements it.
type EventPublisher interface {
	Publish(event string, data map[string]interface{})
}

// --- DTOs ---

type SupplyRequestItem struct {
	ItemName string  `json:"item_name" binding:"required"`
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
	Unit     string  `json:"unit"`
}

type CreateSupplyRequestDTO struct {
	SiteID      string              `json:"site_id" binding:"required"`
	WarehouseID string              `json:"warehouse_id" binding:"required"`
	Items       []SupplyRequestItem `json:"items" binding:"required,min=1,dive"`
}

type ApproveRequestDTO struct {
	TransferQuantity float64 `json:"transfer_quantity" binding:"required"`
}

type RejectRequestDTO struct {
	Reason string `json:"reason"`
}

type SupplyRequestResponse struct {
	ID                  uuid.UUID  `json:"id"`
	SiteID              uuid.UUID  `json:"site_id"`
	WarehouseID         uuid.UUID  `json:"warehouse_id"`
	ItemName            string     `json:"item_name"`
	RequestedQuantity   float64    `json:"requested_quantity"`
	Unit                string     `json:"unit"`
	Status              string     `json:"status"`
	TransferredQuantity float64    `json:"transferred_quantity"`
	TransferPrice       string     `json:"transfer_price"`
	Reason              string     `json:"reason,omitempty"`
	BatchID             *uuid.UUID `json:"batch_id,omitempty"`
	RequesterName       string     `json:"requester_name,omitempty"`
	HandledByName       string     `json:"handled_by_name,omitempty"`
	HandledAt           *string    `json:"handled_at,omitempty"`
	CreatedAt           string     `json:"created_at"`
}

type SupplyRequestFilterDTO struct {
	SiteID      string
	WarehouseID string
	Status      string
	Page        int
	Limit       int
}

// --- Interface ---

type SupplyRequestService interface {
	Create(ctx context.Context, requesterID uuid.UUID, req CreateSupplyRequestDTO) ([]SupplyRequestResponse, error)
	List(ctx context.Context, companyID uuid.UUID, filter SupplyRequestFilterDTO) ([]SupplyRequestResponse, int64, error)
	Approve(ctx context.Context, requestID uuid.UUID, transferQuantity float64, approverID uuid.UUID) (SupplyRequestResponse, error)
	Reject(ctx context.Context, requestID uuid.UUID, reason string, approverID uuid.UUID) (SupplyRequestResponse, error)
}

type supplyRequestService struct {
	requests   repository.SupplyRequestRepository
	warehouses repository.WarehouseRepository
	sites      repository.SiteRepository
	users      repository.UserRepository
	txManager  repository.TransactionManager
	activity   ActivityRecorder
	hub        EventPublisher
	cache      *cache.Cache
	mailer     *mailer.Mailer
	logger     *zap.Logger

	// strictReject requires pending status before a rejection. The source
	// system had no such guard; kept configurable pending product sign-off.
	strictReject bool
}

func NewSupplyRequestService(
	requests repository.SupplyRequestRepository,
	warehouses repository.WarehouseRepository,
	sites repository.SiteRepository,
	users repository.UserRepository,
	txManager repository.TransactionManager,
	activity ActivityRecorder,
	hub EventPublisher,
	statsCache *cache.Cache,
	mail *mailer.Mailer,
	logger *zap.Logger,
	strictReject bool,
) SupplyRequestService {
	return &supplyRequestService{
		requests:     requests,
		warehouses:   warehouses,
		sites:        sites,
		users:        users,
		txManager:    txManager,
		activity:     activity,
		hub:          hub,
		cache:        statsCache,
		mailer:       mail,
		logger:       logger,
		strictReject: strictReject,
	}
}

// --- Implementation ---

func (s *supplyRequestService) Create(ctx context.Context, requesterID uuid.UUID, req CreateSupplyRequestDTO) ([]SupplyRequestResponse, error) {
	siteID, err := uuid.Parse(req.SiteID)
	if err != nil {
		return nil, apperror.Validation("Invalid site id")
	}
	warehouseID, err := uuid.Parse(req.WarehouseID)
	if err != nil {
		return nil, apperror.Validation("Invalid warehouse id")
	}

	site, err := s.sites.FindByID(ctx, siteID)
	if err != nil {
		if notFound(err) {
			return nil, apperror.NotFound("Site not found")
		}
		return nil, apperror.Internal(err)
	}
	warehouse, err := s.warehouses.FindByID(ctx, warehouseID)
	if err != nil {
		if notFound(err) {
			return nil, apperror.NotFound("Warehouse not found")
		}
		return nil, apperror.Internal(err)
	}

	requester, err := s.users.FindByID(ctx, requesterID)
	if err != nil {
		return nil, apperror.Unauthorized("Requesting user not found")
	}

	for _, item := range req.Items {
		if !validQuantity(item.Quantity) {
			return nil, apperror.Validation("Invalid quantity for item %q", item.ItemName)
		}
	}

	// Requests raised together share a batch id.
	var batchID *uuid.UUID
	if len(req.Items) > 1 {
		id := uuid.New()
		batchID = &id
	}

	created := make([]*model.SupplyRequest, 0, len(req.Items))
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		for _, item := range req.Items {
			unit := item.Unit
			if unit == "" {
				unit = "pcs"
			}
			companyID := site.CompanyID
			request := &model.SupplyRequest{
				SiteID:            siteID,
				WarehouseID:       warehouseID,
				CompanyID:         &companyID,
				ItemName:          item.ItemName,
				NormalizedName:    normalize.Key(item.ItemName),
				RequestedQuantity: item.Quantity,
				Unit:              unit,
				Status:            model.RequestPending,
				BatchID:           batchID,
				RequestedBy:       &requesterID,
			}
			if createErr := s.requests.Create(txCtx, request); createErr != nil {
				return apperror.Internal(createErr)
			}
			created = append(created, request)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, request := range created {
		s.activity.Log(ctx, Target{Model: model.EntitySite, ID: siteID}, model.ActionCreateSupplyRequest,
			PerformerUser(requester),
			map[string]interface{}{
				"request_id": request.ID.String(),
				"item_name":  request.ItemName,
				"quantity":   request.RequestedQuantity,
				"unit":       request.Unit,
				"warehouse":  warehouse.Name,
			},
			"Requested "+request.ItemName+" from "+warehouse.Name)
	}

	if s.hub != nil {
		s.hub.Publish("supply_request.created", map[string]interface{}{
			"site_id":      siteID.String(),
			"warehouse_id": warehouseID.String(),
			"count":        len(created),
		})
	}
	s.notifyAdmin(ctx, site, created)

	responses := make([]SupplyRequestResponse, 0, len(created))
	for _, request := range created {
		request.Requester = requester
		responses = append(responses, toSupplyRequestResponse(request))
	}
	return responses, nil
}

func (s *supplyRequestService) List(ctx context.Context, companyID uuid.UUID, filter SupplyRequestFilterDTO) ([]SupplyRequestResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	repoFilter := repository.SupplyRequestFilter{CompanyID: &companyID, Status: filter.Status}
	if filter.SiteID != "" {
		id, err := uuid.Parse(filter.SiteID)
		if err != nil {
			return nil, 0, apperror.Validation("Invalid site id")
		}
		repoFilter.SiteID = &id
	}
	if filter.WarehouseID != "" {
		id, err := uuid.Parse(filter.WarehouseID)
		if err != nil {
			return nil, 0, apperror.Validation("Invalid warehouse id")
		}
		repoFilter.WarehouseID = &id
	}

	requests, total, err := s.requests.List(ctx, repoFilter, filter.Page, filter.Limit)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}

	responses := make([]SupplyRequestResponse, 0, len(requests))
	for i := range requests {
		responses = append(responses, toSupplyRequestResponse(&requests[i]))
	}
	return responses, total, nil
}

// Approve transfers stock from the warehouse to the site and marks the
// request handled. The warehouse decrement, site upsert and status flip run
// in one transaction with the request and stock rows locked, so a concurrent
// second approval observes the committed status and fails the pending guard
// instead of double-shipping.
func (s *supplyRequestService) Approve(ctx context.Context, requestID uuid.UUID, transferQuantity float64, approverID uuid.UUID) (SupplyRequestResponse, error) {
	if !validQuantity(transferQuantity) {
		return SupplyRequestResponse{}, apperror.Validation("Transfer quantity must be a positive number")
	}

	approver, err := s.users.FindByID(ctx, approverID)
	if err != nil {
		return SupplyRequestResponse{}, apperror.Unauthorized("Approving user not found")
	}

	var (
		request       *model.SupplyRequest
		transferPrice decimal.Decimal
	)
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var txErr error
		request, txErr = s.requests.FindByIDForUpdate(txCtx, requestID)
		if txErr != nil {
			if notFound(txErr) {
				return apperror.NotFound("Supply request not found")
			}
			return apperror.Internal(txErr)
		}

		if request.Status != model.RequestPending {
			return apperror.Conflict("Supply request is already %s", request.Status)
		}

		stock, txErr := s.warehouses.FindSupplyByKeyForUpdate(txCtx, request.WarehouseID, request.NormalizedName)
		if txErr != nil {
			if notFound(txErr) {
				return apperror.NotFound("Warehouse does not stock %q", request.ItemName)
			}
			return apperror.Internal(txErr)
		}

		if stock.Quantity < transferQuantity {
			return apperror.InsufficientStock("Insufficient stock for %q: have %g, requested %g",
				request.ItemName, stock.Quantity, transferQuantity)
		}

		transferPrice = stock.CurrentPrice
		if transferPrice.IsZero() {
			transferPrice = stock.EntryPrice
		}

		stock.Quantity -= transferQuantity
		if txErr = s.warehouses.UpdateSupply(txCtx, stock); txErr != nil {
			return apperror.Internal(txErr)
		}

		if txErr = s.upsertSiteSupply(txCtx, request, stock, transferQuantity, transferPrice, approverID); txErr != nil {
			return txErr
		}

		now := time.Now()
		request.Status = model.RequestApproved
		request.TransferredQuantity = transferQuantity
		request.TransferPrice = transferPrice
		request.HandledBy = &approverID
		request.HandledByName = approver.Username
		request.HandledAt = &now
		if txErr = s.requests.Update(txCtx, request); txErr != nil {
			return apperror.Internal(txErr)
		}

		return nil
	})
	if err != nil {
		return SupplyRequestResponse{}, err
	}

	// Audit + notifications are best effort and stay outside the transaction:
	// a log failure must not unwind a committed transfer.
	transferDetails := map[string]interface{}{
		"request_id":     request.ID.String(),
		"item_name":      request.ItemName,
		"quantity":       transferQuantity,
		"unit":           request.Unit,
		"transfer_price": transferPrice.String(),
	}
	s.activity.Log(ctx, Target{Model: model.EntityWarehouse, ID: request.WarehouseID}, model.ActionTransferSupply,
		PerformerUser(approver), transferDetails, "Transferred "+request.ItemName+" to site")
	s.activity.Log(ctx, Target{Model: model.EntitySite, ID: request.SiteID}, model.ActionReceiveSupply,
		PerformerUser(approver), transferDetails, "Received "+request.ItemName+" from warehouse")

	if s.hub != nil {
		s.hub.Publish("supply_request.approved", map[string]interface{}{
			"request_id":   request.ID.String(),
			"site_id":      request.SiteID.String(),
			"warehouse_id": request.WarehouseID.String(),
			"item_name":    request.ItemName,
			"quantity":     transferQuantity,
		})
	}
	if request.CompanyID != nil {
		s.cache.Delete(ctx, statsCacheKey(*request.CompanyID))
	}

	request.Handler = approver
	return toSupplyRequestResponse(request), nil
}

// upsertSiteSupply adds the transferred quantity to the site's matching
// inventory line, creating it when absent. An unpriced site line inherits the
// warehouse transfer price and becomes priced, attributed to the approver.
func (s *supplyRequestService) upsertSiteSupply(ctx context.Context, request *model.SupplyRequest, stock *model.WarehouseSupply, quantity float64, price decimal.Decimal, approverID uuid.UUID) error {
	now := time.Now()

	supply, err := s.sites.FindSupplyByKeyForUpdate(ctx, request.SiteID, request.NormalizedName)
	if err != nil {
		if !notFound(err) {
			return apperror.Internal(err)
		}
		supply = &model.SiteSupply{
			SiteID:         request.SiteID,
			ItemName:       request.ItemName,
			NormalizedName: request.NormalizedName,
			Quantity:       quantity,
			Unit:           request.Unit,
			Currency:       stock.Currency,
			Cost:           price,
			CurrentPrice:   price,
			Status:         model.SupplyPriced,
			PricedBy:       &approverID,
			PricedAt:       &now,
		}
		if createErr := s.sites.CreateSupply(ctx, supply); createErr != nil {
			return apperror.Internal(createErr)
		}
		return nil
	}

	supply.Quantity += quantity
	if supply.Status != model.SupplyPriced || supply.CurrentPrice.IsZero() {
		supply.Cost = price
		supply.CurrentPrice = price
		supply.Status = model.SupplyPriced
		supply.PricedBy = &approverID
		supply.PricedAt = &now
	} else if !supply.CurrentPrice.Equal(price) {
		// Already priced: refresh the operative price, keep the recorded cost.
		supply.CurrentPrice = price
	}
	if updateErr := s.sites.UpdateSupply(ctx, supply); updateErr != nil {
		return apperror.Internal(updateErr)
	}
	return nil
}

func (s *supplyRequestService) Reject(ctx context.Context, requestID uuid.UUID, reason string, approverID uuid.UUID) (SupplyRequestResponse, error) {
	approver, err := s.users.FindByID(ctx, approverID)
	if err != nil {
		return SupplyRequestResponse{}, apperror.Unauthorized("Approving user not found")
	}

	if reason == "" {
		reason = "No reason provided"
	}

	var request *model.SupplyRequest
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var txErr error
		request, txErr = s.requests.FindByIDForUpdate(txCtx, requestID)
		if txErr != nil {
			if notFound(txErr) {
				return apperror.NotFound("Supply request not found")
			}
			return apperror.Internal(txErr)
		}

		if s.strictReject && request.Status != model.RequestPending {
			return apperror.Conflict("Supply request is already %s", request.Status)
		}

		now := time.Now()
		request.Status = model.RequestRejected
		request.Reason = reason
		request.HandledBy = &approverID
		request.HandledByName = approver.Username
		request.HandledAt = &now
		if txErr = s.requests.Update(txCtx, request); txErr != nil {
			return apperror.Internal(txErr)
		}
		return nil
	})
	if err != nil {
		return SupplyRequestResponse{}, err
	}

	rejectDetails := map[string]interface{}{
		"request_id": request.ID.String(),
		"item_name":  request.ItemName,
		"reason":     reason,
	}
	s.activity.Log(ctx, Target{Model: model.EntityWarehouse, ID: request.WarehouseID}, model.ActionRejectRequest,
		PerformerUser(approver), rejectDetails, "Rejected supply request for "+request.ItemName)
	s.activity.Log(ctx, Target{Model: model.EntitySite, ID: request.SiteID}, model.ActionRejectRequest,
		PerformerUser(approver), rejectDetails, "Supply request for "+request.ItemName+" was rejected")

	if s.hub != nil {
		s.hub.Publish("supply_request.rejected", map[string]interface{}{
			"request_id": request.ID.String(),
			"site_id":    request.SiteID.String(),
			"item_name":  request.ItemName,
			"reason":     reason,
		})
	}

	request.Handler = approver
	return toSupplyRequestResponse(request), nil
}

// notifyAdmin emails the site's admin about new pending requests, best effort.
func (s *supplyRequestService) notifyAdmin(ctx context.Context, site *model.Site, created []*model.SupplyRequest) {
	if s.mailer == nil || len(created) == 0 {
		return
	}
	admin, err := s.users.FindByID(ctx, site.AdminID)
	if err != nil || admin.Email == nil {
		return
	}
	first := created[0]
	s.mailer.SendSupplyRequestNotice(ctx, *admin.Email, site.Name, first.ItemName, first.RequestedQuantity, first.Unit)
}

// --- Helpers ---

func validQuantity(q float64) bool {
	return !math.IsNaN(q) && !math.IsInf(q, 0) && q > 0
}

func statsCacheKey(companyID uuid.UUID) string {
	return "stats:company:" + companyID.String()
}

func toSupplyRequestResponse(r *model.SupplyRequest) SupplyRequestResponse {
	resp := SupplyRequestResponse{
		ID:                  r.ID,
		SiteID:              r.SiteID,
		WarehouseID:         r.WarehouseID,
		ItemName:            r.ItemName,
		RequestedQuantity:   r.RequestedQuantity,
		Unit:                r.Unit,
		Status:              r.Status,
		TransferredQuantity: r.TransferredQuantity,
		TransferPrice:       r.TransferPrice.String(),
		Reason:              r.Reason,
		BatchID:             r.BatchID,
		HandledByName:       r.HandledByName,
		CreatedAt:           r.CreatedAt.Format(time.RFC3339),
	}
	if r.Requester != nil {
		resp.RequesterName = r.Requester.Username
	}
	if r.HandledAt != nil {
		t := r.HandledAt.Format(time.RFC3339)
		resp.HandledAt = &t
	}
	return resp
}
