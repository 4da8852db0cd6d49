package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role enum constants
const (
	RoleAdmin            = "admin"
	RoleCompanyOwner     = "company_owner"
	RoleSupervisor       = "supervisor"
	RoleWarehouseManager = "warehouse_manager"
	RoleStaff            = "staff"
)

// ValidRole reports whether role is one of the known role constants.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleCompanyOwner, RoleSupervisor, RoleWarehouseManager, RoleStaff:
		return true
	}
	return false
}

// User is polymorphic over Role. Which fields are required depends on the
// role: admins must carry email and phone, staff must carry a full name and
// warehouse managers must reference the warehouse they run.
type User struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Username    string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	Password    string     `gorm:"type:varchar(255);not null" json:"-"`
	Role        string     `gorm:"type:varchar(30);not null;index" json:"role"`
	FullName    string     `gorm:"type:varchar(255)" json:"full_name"`
	Email       *string    `gorm:"type:varchar(255)" json:"email,omitempty"`
	Phone       *string    `gorm:"type:varchar(20)" json:"phone,omitempty"`
	CompanyID   *uuid.UUID `gorm:"type:uuid;index" json:"company_id"`
	Company     *Company   `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	WarehouseID *uuid.UUID `gorm:"type:uuid;index" json:"warehouse_id,omitempty"`
	CreatedBy   *uuid.UUID `gorm:"type:uuid" json:"created_by,omitempty"`

	// AssignedSites is populated for supervisors only.
	AssignedSites []Site `gorm:"many2many:user_assigned_sites;" json:"assigned_sites,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
