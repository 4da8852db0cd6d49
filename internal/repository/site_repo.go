package repository

import (
	"context"
	"time"

	"buildsite/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SiteRepository interface {
	Create(ctx context.Context, site *model.Site) error
	Update(ctx context.Context, site *model.Site) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Site, error)
	List(ctx context.Context, companyID uuid.UUID, page, limit int) ([]model.Site, int64, error)
	ReplaceSupervisors(ctx context.Context, site *model.Site, supervisors []model.User) error

	// Supplies
	CreateSupply(ctx context.Context, supply *model.SiteSupply) error
	UpdateSupply(ctx context.Context, supply *model.SiteSupply) error
	DeleteSupply(ctx context.Context, id uuid.UUID) error
	FindSupplyByID(ctx context.Context, id uuid.UUID) (*model.SiteSupply, error)
	FindSupplyByKey(ctx context.Context, siteID uuid.UUID, key string) (*model.SiteSupply, error)
	FindSupplyByKeyForUpdate(ctx context.Context, siteID uuid.UUID, key string) (*model.SiteSupply, error)
	ListSupplies(ctx context.Context, siteID uuid.UUID) ([]model.SiteSupply, error)

	// Workers & attendance
	CreateWorker(ctx context.Context, worker *model.Worker) error
	UpdateWorker(ctx context.Context, worker *model.Worker) error
	DeleteWorker(ctx context.Context, id uuid.UUID) error
	FindWorkerByID(ctx context.Context, id uuid.UUID) (*model.Worker, error)
	ListWorkers(ctx context.Context, siteID uuid.UUID) ([]model.Worker, error)
	CountWorkers(ctx context.Context, companyID uuid.UUID) (int64, error)
	CreateAttendance(ctx context.Context, record *model.AttendanceRecord) error
	UpdateAttendance(ctx context.Context, record *model.AttendanceRecord) error
	FindAttendance(ctx context.Context, workerID uuid.UUID, day time.Time) (*model.AttendanceRecord, error)
	ListAttendance(ctx context.Context, workerID uuid.UUID, from, to time.Time) ([]model.AttendanceRecord, error)

	// Announcements
	CreateAnnouncement(ctx context.Context, a *model.Announcement) error
	FindAnnouncementByID(ctx context.Context, id uuid.UUID) (*model.Announcement, error)
	ListAnnouncements(ctx context.Context, siteID uuid.UUID, page, limit int) ([]model.Announcement, int64, error)
	MarkAnnouncementRead(ctx context.Context, read *model.AnnouncementRead) error
}

type siteRepository struct {
	db *gorm.DB
}

func NewSiteRepository(db *gorm.DB) SiteRepository {
	return &siteRepository{db: db}
}

func (r *siteRepository) Create(ctx context.Context, site *model.Site) error {
	return GetDB(ctx, r.db).Create(site).Error
}

func (r *siteRepository) Update(ctx context.Context, site *model.Site) error {
	return GetDB(ctx, r.db).Save(site).Error
}

func (r *siteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Site{}).Error
}

func (r *siteRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Site, error) {
	var site model.Site
	if err := GetDB(ctx, r.db).Preload("Supervisors").First(&site, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &site, nil
}

func (r *siteRepository) List(ctx context.Context, companyID uuid.UUID, page, limit int) ([]model.Site, int64, error) {
	var sites []model.Site
	var total int64

	query := GetDB(ctx, r.db).Model(&model.Site{}).Where("company_id = ?", companyID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Preload("Supervisors").Order("created_at desc").Offset(offset).Limit(limit).Find(&sites).Error; err != nil {
		return nil, 0, err
	}

	return sites, total, nil
}

func (r *siteRepository) ReplaceSupervisors(ctx context.Context, site *model.Site, supervisors []model.User) error {
	return GetDB(ctx, r.db).Model(site).Association("Supervisors").Replace(supervisors)
}

// --- Supplies ---

func (r *siteRepository) CreateSupply(ctx context.Context, supply *model.SiteSupply) error {
	return GetDB(ctx, r.db).Create(supply).Error
}

func (r *siteRepository) UpdateSupply(ctx context.Context, supply *model.SiteSupply) error {
	return GetDB(ctx, r.db).Save(supply).Error
}

func (r *siteRepository) DeleteSupply(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.SiteSupply{}).Error
}

func (r *siteRepository) FindSupplyByID(ctx context.Context, id uuid.UUID) (*model.SiteSupply, error) {
	var supply model.SiteSupply
	if err := GetDB(ctx, r.db).First(&supply, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &supply, nil
}

func (r *siteRepository) FindSupplyByKey(ctx context.Context, siteID uuid.UUID, key string) (*model.SiteSupply, error) {
	var supply model.SiteSupply
	if err := GetDB(ctx, r.db).Where("site_id = ? AND normalized_name = ?", siteID, key).First(&supply).Error; err != nil {
		return nil, err
	}
	return &supply, nil
}

func (r *siteRepository) FindSupplyByKeyForUpdate(ctx context.Context, siteID uuid.UUID, key string) (*model.SiteSupply, error) {
	var supply model.SiteSupply
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("site_id = ? AND normalized_name = ?", siteID, key).First(&supply).Error; err != nil {
		return nil, err
	}
	return &supply, nil
}

func (r *siteRepository) ListSupplies(ctx context.Context, siteID uuid.UUID) ([]model.SiteSupply, error) {
	var supplies []model.SiteSupply
	if err := GetDB(ctx, r.db).Where("site_id = ?", siteID).Order("item_name asc").Find(&supplies).Error; err != nil {
		return nil, err
	}
	return supplies, nil
}

// --- Workers & attendance ---

func (r *siteRepository) CreateWorker(ctx context.Context, worker *model.Worker) error {
	return GetDB(ctx, r.db).Create(worker).Error
}

func (r *siteRepository) UpdateWorker(ctx context.Context, worker *model.Worker) error {
	return GetDB(ctx, r.db).Save(worker).Error
}

func (r *siteRepository) DeleteWorker(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Worker{}).Error
}

func (r *siteRepository) FindWorkerByID(ctx context.Context, id uuid.UUID) (*model.Worker, error) {
	var worker model.Worker
	if err := GetDB(ctx, r.db).First(&worker, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &worker, nil
}

func (r *siteRepository) ListWorkers(ctx context.Context, siteID uuid.UUID) ([]model.Worker, error) {
	var workers []model.Worker
	if err := GetDB(ctx, r.db).Where("site_id = ?", siteID).Order("full_name asc").Find(&workers).Error; err != nil {
		return nil, err
	}
	return workers, nil
}

func (r *siteRepository) CountWorkers(ctx context.Context, companyID uuid.UUID) (int64, error) {
	var total int64
	err := GetDB(ctx, r.db).Model(&model.Worker{}).
		Joins("JOIN sites ON sites.id = workers.site_id").
		Where("sites.company_id = ?", companyID).
		Count(&total).Error
	return total, err
}

func (r *siteRepository) CreateAttendance(ctx context.Context, record *model.AttendanceRecord) error {
	return GetDB(ctx, r.db).Create(record).Error
}

func (r *siteRepository) UpdateAttendance(ctx context.Context, record *model.AttendanceRecord) error {
	return GetDB(ctx, r.db).Save(record).Error
}

func (r *siteRepository) FindAttendance(ctx context.Context, workerID uuid.UUID, day time.Time) (*model.AttendanceRecord, error) {
	var record model.AttendanceRecord
	if err := GetDB(ctx, r.db).Where("worker_id = ? AND date = ?", workerID, day.Format("2006-01-02")).
		First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *siteRepository) ListAttendance(ctx context.Context, workerID uuid.UUID, from, to time.Time) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	query := GetDB(ctx, r.db).Where("worker_id = ?", workerID)
	if !from.IsZero() {
		query = query.Where("date >= ?", from.Format("2006-01-02"))
	}
	if !to.IsZero() {
		query = query.Where("date <= ?", to.Format("2006-01-02"))
	}
	if err := query.Order("date desc").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// --- Announcements ---

func (r *siteRepository) CreateAnnouncement(ctx context.Context, a *model.Announcement) error {
	return GetDB(ctx, r.db).Create(a).Error
}

func (r *siteRepository) FindAnnouncementByID(ctx context.Context, id uuid.UUID) (*model.Announcement, error) {
	var a model.Announcement
	if err := GetDB(ctx, r.db).Preload("Reads").First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *siteRepository) ListAnnouncements(ctx context.Context, siteID uuid.UUID, page, limit int) ([]model.Announcement, int64, error) {
	var announcements []model.Announcement
	var total int64

	query := GetDB(ctx, r.db).Model(&model.Announcement{}).Where("site_id = ?", siteID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Preload("Reads").Order("created_at desc").Offset(offset).Limit(limit).Find(&announcements).Error; err != nil {
		return nil, 0, err
	}

	return announcements, total, nil
}

func (r *siteRepository) MarkAnnouncementRead(ctx context.Context, read *model.AnnouncementRead) error {
	// Idempotent: a second read receipt for the same user is a no-op.
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(read).Error
}
