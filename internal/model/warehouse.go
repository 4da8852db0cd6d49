package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Warehouse is an inventory pool that fulfils supply requests raised by sites.
type Warehouse struct {
	ID        uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string            `gorm:"type:varchar(255);not null" json:"name"`
	Address   string            `gorm:"type:text" json:"address"`
	AdminID   uuid.UUID         `gorm:"type:uuid;not null;index" json:"admin_id"`
	CompanyID *uuid.UUID        `gorm:"type:uuid;index" json:"company_id"`
	Company   *Company          `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	Supplies  []WarehouseSupply `gorm:"foreignKey:WarehouseID" json:"supplies,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	DeletedAt gorm.DeletedAt    `gorm:"index" json:"-"`
}

// WarehouseSupply is a stock line in a warehouse. EntryPrice is recorded when
// the line is first created and never changes through the update endpoint;
// CurrentPrice is the operative transfer price.
type WarehouseSupply struct {
	ID             uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	WarehouseID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_warehouse_supply_name,priority:1" json:"warehouse_id"`
	ItemName       string          `gorm:"type:varchar(255);not null" json:"item_name"`
	NormalizedName string          `gorm:"type:varchar(255);not null;uniqueIndex:idx_warehouse_supply_name,priority:2" json:"-"`
	Quantity       float64         `gorm:"not null;default:0" json:"quantity"`
	Unit           string          `gorm:"type:varchar(50);not null;default:'pcs'" json:"unit"`
	Currency       string          `gorm:"type:varchar(10);not null;default:'INR'" json:"currency"`
	EntryPrice     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"entry_price"`
	CurrentPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"current_price"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
