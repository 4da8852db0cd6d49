package model

import (
	"time"

	"github.com/google/uuid"
)

// Entity types an activity log can attach to.
const (
	EntitySite      = "Site"
	EntityWarehouse = "Warehouse"
	EntityUser      = "User"
)

// Activity log actions.
const (
	ActionCreateSite          = "CREATE_SITE"
	ActionUpdateSite          = "UPDATE_SITE"
	ActionAddSupply           = "ADD_SUPPLY"
	ActionUpdateSupply        = "UPDATE_SUPPLY"
	ActionPriceSupply         = "PRICE_SUPPLY"
	ActionBulkImportSupplies  = "BULK_IMPORT_SUPPLIES"
	ActionAddWorker           = "ADD_WORKER"
	ActionMarkAttendance      = "MARK_ATTENDANCE"
	ActionPostAnnouncement    = "POST_ANNOUNCEMENT"
	ActionCreateSupplyRequest = "CREATE_SUPPLY_REQUEST"
	ActionRejectRequest       = "REJECT_SUPPLY_REQUEST"
	ActionTransferSupply      = "TRANSFER_SUPPLY"
	ActionReceiveSupply       = "RECEIVE_SUPPLY"
	ActionCreateUser          = "CREATE_USER"
	ActionDeleteUser          = "DELETE_USER"
)

// ActivityLog is an append-only audit row. One table serves both access
// patterns of the source system: the per-entity embedded log array (scan by
// entity_type + entity_id) and the centralized per-company collection (scan by
// company_id). CompanyID is nullable; rows whose company could not be resolved
// still exist on the entity feed but are absent from the company feed.
type ActivityLog struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EntityType      string     `gorm:"type:varchar(30);not null;index:idx_activity_entity,priority:1" json:"entity_type"`
	EntityID        uuid.UUID  `gorm:"type:uuid;not null;index:idx_activity_entity,priority:2" json:"entity_id"`
	CompanyID       *uuid.UUID `gorm:"type:uuid;index" json:"company_id"`
	Action          string     `gorm:"type:varchar(50);not null;index" json:"action"`
	PerformedBy     *uuid.UUID `gorm:"type:uuid;index" json:"performed_by"`
	PerformedByName string     `gorm:"type:varchar(255);not null" json:"performed_by_name"`
	PerformedByRole string     `gorm:"type:varchar(30);not null" json:"performed_by_role"`
	Details         string     `gorm:"type:jsonb" json:"details"`
	Description     string     `gorm:"type:text" json:"description"`
	CreatedAt       time.Time  `gorm:"index" json:"created_at"`
}
