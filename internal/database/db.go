package database

import (
	"log"

	"buildsite/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM and migrates the
// schema.
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&model.Company{},
		&model.User{},
		&model.Site{},
		&model.SiteSupply{},
		&model.Worker{},
		&model.AttendanceRecord{},
		&model.Announcement{},
		&model.AnnouncementRead{},
		&model.Warehouse{},
		&model.WarehouseSupply{},
		&model.SupplyRequest{},
		&model.Message{},
		&model.ActivityLog{},
	)
	if err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}
