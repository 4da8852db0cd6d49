package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SubscriptionStatus enum constants
const (
	SubscriptionActive    = "active"
	SubscriptionSuspended = "suspended"
	SubscriptionTrial     = "trial"
)

// Company is the tenant root. Every site, warehouse and non-platform user
// belongs to exactly one company.
type Company struct {
	ID                 uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name               string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Email              string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Phone              string         `gorm:"type:varchar(20);uniqueIndex;not null" json:"phone"`
	GSTIN              string         `gorm:"type:varchar(30)" json:"gstin"`
	Address            string         `gorm:"type:text" json:"address"`
	SubscriptionStatus string         `gorm:"type:varchar(20);not null;default:'active'" json:"subscription_status"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}
