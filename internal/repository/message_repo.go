package repository

import (
	"context"

	"buildsite/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageRepository interface {
	Create(ctx context.Context, message *model.Message) error
	Update(ctx context.Context, message *model.Message) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Message, error)
	List(ctx context.Context, companyID uuid.UUID, siteID *uuid.UUID, page, limit int) ([]model.Message, int64, error)
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *model.Message) error {
	return GetDB(ctx, r.db).Create(message).Error
}

func (r *messageRepository) Update(ctx context.Context, message *model.Message) error {
	return GetDB(ctx, r.db).Save(message).Error
}

func (r *messageRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Message, error) {
	var message model.Message
	if err := GetDB(ctx, r.db).Preload("Sender").First(&message, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *messageRepository) List(ctx context.Context, companyID uuid.UUID, siteID *uuid.UUID, page, limit int) ([]model.Message, int64, error) {
	var messages []model.Message
	var total int64

	query := GetDB(ctx, r.db).Model(&model.Message{}).Where("company_id = ?", companyID)
	if siteID != nil {
		query = query.Where("site_id = ?", *siteID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Preload("Sender").Order("created_at desc").Offset(offset).Limit(limit).Find(&messages).Error; err != nil {
		return nil, 0, err
	}

	return messages, total, nil
}
