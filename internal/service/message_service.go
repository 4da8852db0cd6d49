package service

import (
	"context"
	"time"

	"buildsite/internal/model"
	"buildsite/internal/repository"
	"buildsite/pkg/apperror"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SendMessageDTO struct {
	SiteID   string `json:"site_id" binding:"required"`
	Body     string `json:"body" binding:"required"`
	VideoURL string `json:"video_url"`
}

type MessageService interface {
	Send(ctx context.Context, senderID uuid.UUID, dto SendMessageDTO) (*model.Message, error)
	List(ctx context.Context, actorID uuid.UUID, siteID string, page, limit int) ([]model.Message, int64, error)
	MarkRead(ctx context.Context, actorID, messageID uuid.UUID) (*model.Message, error)
}

type messageService struct {
	messages repository.MessageRepository
	sites    repository.SiteRepository
	users    repository.UserRepository
	hub      EventPublisher
	logger   *zap.Logger
}

func NewMessageService(
	messages repository.MessageRepository,
	sites repository.SiteRepository,
	users repository.UserRepository,
	hub EventPublisher,
	logger *zap.Logger,
) MessageService {
	return &messageService{
		messages: messages,
		sites:    sites,
		users:    users,
		hub:      hub,
		logger:   logger,
	}
}

func (s *messageService) Send(ctx context.Context, senderID uuid.UUID, dto SendMessageDTO) (*model.Message, error) {
	sender, err := s.users.FindByID(ctx, senderID)
	if err != nil {
		return nil, apperror.Unauthorized("Sending user not found")
	}

	siteID, err := uuid.Parse(dto.SiteID)
	if err != nil {
		return nil, apperror.Validation("Invalid site id")
	}
	site, err := s.sites.FindByID(ctx, siteID)
	if err != nil {
		if notFound(err) {
			return nil, apperror.NotFound("Site not found")
		}
		return nil, apperror.Internal(err)
	}
	if sender.CompanyID == nil || *sender.CompanyID != site.CompanyID {
		return nil, apperror.Forbidden("Site belongs to a different company")
	}
	if sender.Role == model.RoleSupervisor && !assignedTo(sender, siteID) {
		return nil, apperror.Forbidden("Site is not assigned to you")
	}

	companyID := site.CompanyID
	message := &model.Message{
		SiteID:    siteID,
		CompanyID: &companyID,
		SenderID:  senderID,
		Body:      dto.Body,
		VideoURL:  dto.VideoURL,
	}
	if err := s.messages.Create(ctx, message); err != nil {
		return nil, apperror.Internal(err)
	}

	if s.hub != nil {
		s.hub.Publish("message.sent", map[string]interface{}{
			"id":      message.ID.String(),
			"site_id": siteID.String(),
			"sender":  sender.Username,
		})
	}

	message.Sender = sender
	return message, nil
}

func (s *messageService) List(ctx context.Context, actorID uuid.UUID, siteID string, page, limit int) ([]model.Message, int64, error) {
	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return nil, 0, apperror.Unauthorized("User not found")
	}
	if actor.CompanyID == nil {
		return nil, 0, apperror.Forbidden("User does not belong to a company")
	}

	var siteFilter *uuid.UUID
	if siteID != "" {
		id, parseErr := uuid.Parse(siteID)
		if parseErr != nil {
			return nil, 0, apperror.Validation("Invalid site id")
		}
		siteFilter = &id
	}

	messages, total, err := s.messages.List(ctx, *actor.CompanyID, siteFilter, page, limit)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return messages, total, nil
}

func (s *messageService) MarkRead(ctx context.Context, actorID, messageID uuid.UUID) (*model.Message, error) {
	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return nil, apperror.Unauthorized("User not found")
	}

	message, err := s.messages.FindByID(ctx, messageID)
	if err != nil {
		if notFound(err) {
			return nil, apperror.NotFound("Message not found")
		}
		return nil, apperror.Internal(err)
	}
	if message.CompanyID == nil || actor.CompanyID == nil || *message.CompanyID != *actor.CompanyID {
		return nil, apperror.NotFound("Message not found")
	}

	if message.IsRead {
		return message, nil
	}
	now := time.Now()
	message.IsRead = true
	message.ReadAt = &now
	if err := s.messages.Update(ctx, message); err != nil {
		return nil, apperror.Internal(err)
	}
	return message, nil
}
