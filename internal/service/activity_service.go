package service

import (
	"context"

	"buildsite/internal/model"
	"buildsite/internal/repository"
	"buildsite/pkg/apperror"

	"github.com/google/uuid"
)

const entityFeedLimit = 100

// ActivityService is the read side of the audit trail: the per-entity feed
// and the paginated company feed.
type ActivityService interface {
	EntityFeed(ctx context.Context, actorID uuid.UUID, entityType string, entityID uuid.UUID) ([]model.ActivityLog, error)
	CompanyFeed(ctx context.Context, actorID uuid.UUID, page, limit int) ([]model.ActivityLog, int64, error)
}

type activityService struct {
	activity repository.ActivityRepository
	users    repository.UserRepository
}

func NewActivityService(activity repository.ActivityRepository, users repository.UserRepository) ActivityService {
	return &activityService{activity: activity, users: users}
}

func (s *activityService) EntityFeed(ctx context.Context, actorID uuid.UUID, entityType string, entityID uuid.UUID) ([]model.ActivityLog, error) {
	switch entityType {
	case model.EntitySite, model.EntityWarehouse, model.EntityUser:
	default:
		return nil, apperror.Validation("Unknown entity type %q", entityType)
	}
	if _, err := s.users.FindByID(ctx, actorID); err != nil {
		return nil, apperror.Unauthorized("User not found")
	}

	logs, err := s.activity.ListByEntity(ctx, entityType, entityID, entityFeedLimit)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return logs, nil
}

func (s *activityService) CompanyFeed(ctx context.Context, actorID uuid.UUID, page, limit int) ([]model.ActivityLog, int64, error) {
	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return nil, 0, apperror.Unauthorized("User not found")
	}
	if actor.CompanyID == nil {
		return nil, 0, apperror.Forbidden("User does not belong to a company")
	}

	logs, total, err := s.activity.ListByCompany(ctx, *actor.CompanyID, page, limit)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return logs, total, nil
}
