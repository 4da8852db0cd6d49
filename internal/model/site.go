package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SiteSupply status enum constants
const (
	SupplyPendingPricing = "pending_pricing"
	SupplyPriced         = "priced"
)

// Attendance status enum constants
const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceHalfday = "halfday"
)

// Site is a construction location owned by one admin and one company.
// The document-style sub-collections of the source system (supplies, workers,
// announcements) live in child tables keyed by SiteID.
type Site struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name          string         `gorm:"type:varchar(255);not null" json:"name"`
	Address       string         `gorm:"type:text" json:"address"`
	CompanyID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"company_id"`
	Company       *Company       `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	AdminID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"admin_id"`
	Supervisors   []User         `gorm:"many2many:site_supervisors;" json:"supervisors,omitempty"`
	Supplies      []SiteSupply   `gorm:"foreignKey:SiteID" json:"supplies,omitempty"`
	Workers       []Worker       `gorm:"foreignKey:SiteID" json:"workers,omitempty"`
	Announcements []Announcement `gorm:"foreignKey:SiteID" json:"announcements,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// SiteSupply is an inventory line item on a site. An item starts in
// pending_pricing and becomes priced once an admin sets its cost, or once a
// warehouse transfer copies the warehouse price onto it.
type SiteSupply struct {
	ID             uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SiteID         uuid.UUID       `gorm:"type:uuid;not null;index:idx_site_supply_name,priority:1" json:"site_id"`
	ItemName       string          `gorm:"type:varchar(255);not null" json:"item_name"`
	NormalizedName string          `gorm:"type:varchar(255);not null;index:idx_site_supply_name,priority:2" json:"-"`
	Quantity       float64         `gorm:"not null;default:0" json:"quantity"`
	Unit           string          `gorm:"type:varchar(50);not null;default:'pcs'" json:"unit"`
	Currency       string          `gorm:"type:varchar(10);not null;default:'INR'" json:"currency"`
	Cost           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"cost"`
	CurrentPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"current_price"`
	Status         string          `gorm:"type:varchar(20);not null;default:'pending_pricing'" json:"status"`
	PricedBy       *uuid.UUID      `gorm:"type:uuid" json:"priced_by,omitempty"`
	PricedAt       *time.Time      `json:"priced_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Worker is a labourer registered on a site with an attendance history.
type Worker struct {
	ID         uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SiteID     uuid.UUID          `gorm:"type:uuid;not null;index" json:"site_id"`
	FullName   string             `gorm:"type:varchar(255);not null" json:"full_name"`
	Trade      string             `gorm:"type:varchar(100)" json:"trade"`
	Phone      string             `gorm:"type:varchar(20)" json:"phone"`
	DailyWage  decimal.Decimal    `gorm:"type:decimal(18,4);not null;default:0" json:"daily_wage"`
	Attendance []AttendanceRecord `gorm:"foreignKey:WorkerID" json:"attendance,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
	DeletedAt  gorm.DeletedAt     `gorm:"index" json:"-"`
}

// AttendanceRecord holds one worker's status for one calendar day.
type AttendanceRecord struct {
	ID       uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	WorkerID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_worker_day,priority:1" json:"worker_id"`
	Date     time.Time  `gorm:"type:date;not null;uniqueIndex:idx_worker_day,priority:2" json:"date"`
	Status   string     `gorm:"type:varchar(20);not null" json:"status"` // present, absent, halfday
	MarkedBy *uuid.UUID `gorm:"type:uuid" json:"marked_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Announcement is a site-wide notice with per-user read receipts.
type Announcement struct {
	ID        uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SiteID    uuid.UUID          `gorm:"type:uuid;not null;index" json:"site_id"`
	Title     string             `gorm:"type:varchar(255);not null" json:"title"`
	Body      string             `gorm:"type:text" json:"body"`
	CreatedBy *uuid.UUID         `gorm:"type:uuid" json:"created_by,omitempty"`
	Reads     []AnnouncementRead `gorm:"foreignKey:AnnouncementID" json:"reads,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// AnnouncementRead records that a user has seen an announcement.
type AnnouncementRead struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AnnouncementID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_announcement_user,priority:1" json:"announcement_id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_announcement_user,priority:2" json:"user_id"`
	ReadAt         time.Time `gorm:"autoCreateTime" json:"read_at"`
}
