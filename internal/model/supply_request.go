package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SupplyRequest status enum constants. RequestInTransit is reserved in the
// schema; no operation currently drives a request into it.
const (
	RequestPending   = "pending"
	RequestApproved  = "approved"
	RequestRejected  = "rejected"
	RequestInTransit = "in_transit"
)

// SupplyRequest is a transfer intent: a site demands quantity of an item from
// a warehouse. It is created by a supervisor and handled exactly once by an
// admin or warehouse manager.
type SupplyRequest struct {
	ID                  uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SiteID              uuid.UUID       `gorm:"type:uuid;not null;index" json:"site_id"`
	Site                *Site           `gorm:"foreignKey:SiteID" json:"site,omitempty"`
	WarehouseID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"warehouse_id"`
	Warehouse           *Warehouse      `gorm:"foreignKey:WarehouseID" json:"warehouse,omitempty"`
	CompanyID           *uuid.UUID      `gorm:"type:uuid;index" json:"company_id"`
	ItemName            string          `gorm:"type:varchar(255);not null" json:"item_name"`
	NormalizedName      string          `gorm:"type:varchar(255);not null;index" json:"-"`
	RequestedQuantity   float64         `gorm:"not null" json:"requested_quantity"`
	Unit                string          `gorm:"type:varchar(50);not null;default:'pcs'" json:"unit"`
	Status              string          `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	TransferredQuantity float64         `gorm:"not null;default:0" json:"transferred_quantity"`
	TransferPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"transfer_price"`
	Reason              string          `gorm:"type:text" json:"reason,omitempty"`
	BatchID             *uuid.UUID      `gorm:"type:uuid;index" json:"batch_id,omitempty"`
	RequestedBy         *uuid.UUID      `gorm:"type:uuid;index" json:"requested_by"`
	Requester           *User           `gorm:"foreignKey:RequestedBy" json:"requester,omitempty"`
	HandledBy           *uuid.UUID      `gorm:"type:uuid" json:"handled_by,omitempty"`
	Handler             *User           `gorm:"foreignKey:HandledBy" json:"handler,omitempty"`
	HandledByName       string          `gorm:"type:varchar(255)" json:"handled_by_name,omitempty"`
	HandledAt           *time.Time      `json:"handled_at,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}
