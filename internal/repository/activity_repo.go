package repository

import (
	"context"

	"buildsite/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ActivityRepository interface {
	Append(ctx context.Context, entry *model.ActivityLog) error
	ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID, limit int) ([]model.ActivityLog, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID, page, limit int) ([]model.ActivityLog, int64, error)
}

type activityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Append(ctx context.Context, entry *model.ActivityLog) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *activityRepository) ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID, limit int) ([]model.ActivityLog, error) {
	var logs []model.ActivityLog
	if err := GetDB(ctx, r.db).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at desc").Limit(limit).Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *activityRepository) ListByCompany(ctx context.Context, companyID uuid.UUID, page, limit int) ([]model.ActivityLog, int64, error) {
	var logs []model.ActivityLog
	var total int64

	query := GetDB(ctx, r.db).Model(&model.ActivityLog{}).Where("company_id = ?", companyID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}
