package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"buildsite/internal/model"
	"buildsite/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Target identifies the entity an activity log entry attaches to.
type Target struct {
	Model string // model.EntitySite, model.EntityWarehouse or model.EntityUser
	ID    uuid.UUID
}

// Performer is the acting identity behind a logged action, resolved once at
// the logging boundary. Exactly one of the three shapes applies:
//   - User set: a loaded user record, used as-is.
//   - Raw set: an id or username looked up against users; when nothing
//     matches, Raw is kept as a legacy display name.
//   - Neither set: a system-initiated action.
type Performer struct {
	User *model.User
	Raw  string
}

// SystemPerformer marks an action as system-initiated.
func SystemPerformer() Performer { return Performer{} }

// PerformerUser wraps a loaded user.
func PerformerUser(u *model.User) Performer { return Performer{User: u} }

// PerformerRef wraps a bare identifier (id, username or legacy name).
func PerformerRef(raw string) Performer { return Performer{Raw: raw} }

// ActivityRecorder is what services log through. The production
// implementation is ActivityLogger; tests substitute a counter.
type ActivityRecorder interface {
	Log(ctx context.Context, target Target, action string, performer Performer, details map[string]interface{}, description string) *model.ActivityLog
}

// Narrow lookup views of the repositories, so the logger can be exercised
// against small fakes.
type userDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
}

type siteDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Site, error)
}

type warehouseDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Warehouse, error)
}

// ActivityLogger appends audit rows for entity feeds and the per-company
// feed. Logging is strictly best effort: Log never returns an error and never
// panics, so a failed audit write can never fail the business operation that
// triggered it.
type ActivityLogger struct {
	activity   repository.ActivityRepository
	users      userDirectory
	sites      siteDirectory
	warehouses warehouseDirectory
	logger     *zap.Logger
}

func NewActivityLogger(
	activity repository.ActivityRepository,
	users userDirectory,
	sites siteDirectory,
	warehouses warehouseDirectory,
	logger *zap.Logger,
) *ActivityLogger {
	return &ActivityLogger{
		activity:   activity,
		users:      users,
		sites:      sites,
		warehouses: warehouses,
		logger:     logger,
	}
}

// Log appends one activity entry to the target's feed. The row carries a
// denormalized company id resolved from the target entity first and the
// performer second; when neither yields one, the row is written without it
// (visible on the entity feed, absent from the company feed) and a warning is
// emitted. On any failure Log returns nil.
func (l *ActivityLogger) Log(ctx context.Context, target Target, action string, performer Performer, details map[string]interface{}, description string) (entry *model.ActivityLog) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("activity logging panicked", zap.Any("panic", r), zap.String("action", action))
			entry = nil
		}
	}()

	if target.Model == "" {
		target.Model = model.EntitySite
	}

	actorID, actorName, actorRole := l.resolvePerformer(ctx, performer)

	companyID, err := l.resolveCompany(ctx, target)
	if err != nil {
		l.logger.Error("activity logging skipped: target not found",
			zap.String("entity_type", target.Model),
			zap.String("entity_id", target.ID.String()),
			zap.String("action", action),
			zap.Error(err))
		return nil
	}
	if companyID == nil && actorID != nil {
		if u, lookupErr := l.users.FindByID(ctx, *actorID); lookupErr == nil {
			companyID = u.CompanyID
		}
	}
	if companyID == nil {
		l.logger.Warn("activity log has no resolvable company; company feed will skip it",
			zap.String("entity_type", target.Model),
			zap.String("action", action))
	}

	detailsJSON := "{}"
	if details != nil {
		if raw, marshalErr := json.Marshal(details); marshalErr == nil {
			detailsJSON = string(raw)
		}
	}

	row := &model.ActivityLog{
		EntityType:      target.Model,
		EntityID:        target.ID,
		CompanyID:       companyID,
		Action:          action,
		PerformedBy:     actorID,
		PerformedByName: actorName,
		PerformedByRole: actorRole,
		Details:         detailsJSON,
		Description:     description,
		CreatedAt:       time.Now(),
	}

	if err := l.activity.Append(ctx, row); err != nil {
		l.logger.Error("failed to append activity log",
			zap.String("entity_type", target.Model),
			zap.String("action", action),
			zap.Error(err))
		return nil
	}

	return row
}

func (l *ActivityLogger) resolvePerformer(ctx context.Context, performer Performer) (*uuid.UUID, string, string) {
	if performer.User != nil {
		id := performer.User.ID
		return &id, performer.User.Username, performer.User.Role
	}

	if performer.Raw == "" {
		return nil, "System", "system"
	}

	if id, err := uuid.Parse(performer.Raw); err == nil {
		if u, lookupErr := l.users.FindByID(ctx, id); lookupErr == nil {
			return &u.ID, u.Username, u.Role
		}
	}
	if u, err := l.users.FindByUsername(ctx, performer.Raw); err == nil {
		return &u.ID, u.Username, u.Role
	}

	// Legacy callers passed a plain display name; keep it verbatim.
	return nil, performer.Raw, ""
}

// resolveCompany returns the company owning the target entity. A missing
// target is an error; a target without a company (platform-level users,
// unattached warehouses) resolves to nil.
func (l *ActivityLogger) resolveCompany(ctx context.Context, target Target) (*uuid.UUID, error) {
	switch target.Model {
	case model.EntitySite:
		site, err := l.sites.FindByID(ctx, target.ID)
		if err != nil {
			return nil, err
		}
		id := site.CompanyID
		return &id, nil
	case model.EntityWarehouse:
		warehouse, err := l.warehouses.FindByID(ctx, target.ID)
		if err != nil {
			return nil, err
		}
		return warehouse.CompanyID, nil
	case model.EntityUser:
		user, err := l.users.FindByID(ctx, target.ID)
		if err != nil {
			return nil, err
		}
		return user.CompanyID, nil
	default:
		return nil, errors.New("unknown entity type: " + target.Model)
	}
}

// notFound reports whether err is the driver's record-not-found.
func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
