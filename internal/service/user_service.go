package service

import (
	"context"
	"time"

	"buildsite/internal/mailer"
	"buildsite/internal/model"
	"buildsite/internal/repository"
	"buildsite/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 24 * time.Hour

// --- DTOs ---

type RegisterCompanyDTO struct {
	CompanyName    string `json:"company_name" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	Phone          string `json:"phone" binding:"required"`
	GSTIN          string `json:"gstin"`
	Address        string `json:"address"`
	OwnerUsername  string `json:"owner_username" binding:"required"`
	OwnerPassword  string `json:"owner_password" binding:"required,min=6"`
	OwnerFullName  string `json:"owner_full_name"`
}

type LoginDTO struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type CreateUserDTO struct {
	Username    string   `json:"username" binding:"required"`
	Password    string   `json:"password" binding:"required,min=6"`
	Role        string   `json:"role" binding:"required"`
	FullName    string   `json:"full_name"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	WarehouseID string   `json:"warehouse_id"`
	SiteIDs     []string `json:"site_ids"`
}

type UpdateUserDTO struct {
	Password    *string  `json:"password"`
	FullName    *string  `json:"full_name"`
	Email       *string  `json:"email"`
	Phone       *string  `json:"phone"`
	WarehouseID *string  `json:"warehouse_id"`
	SiteIDs     []string `json:"site_ids"`
}

// --- Interface ---

type UserService interface {
	RegisterCompany(ctx context.Context, dto RegisterCompanyDTO) (*model.Company, *model.User, error)
	Login(ctx context.Context, dto LoginDTO) (*LoginResult, error)
	Create(ctx context.Context, actorID uuid.UUID, dto CreateUserDTO) (*model.User, error)
	Update(ctx context.Context, actorID, userID uuid.UUID, dto UpdateUserDTO) (*model.User, error)
	Delete(ctx context.Context, actorID, userID uuid.UUID) error
	Get(ctx context.Context, actorID, userID uuid.UUID) (*model.User, error)
	List(ctx context.Context, actorID uuid.UUID, role string, page, limit int) ([]model.User, int64, error)
}

type userService struct {
	users      repository.UserRepository
	companies  repository.CompanyRepository
	sites      repository.SiteRepository
	warehouses repository.WarehouseRepository
	txManager  repository.TransactionManager
	activity   ActivityRecorder
	mailer     *mailer.Mailer
	logger     *zap.Logger
	jwtSecret  []byte
}

func NewUserService(
	users repository.UserRepository,
	companies repository.CompanyRepository,
	sites repository.SiteRepository,
	warehouses repository.WarehouseRepository,
	txManager repository.TransactionManager,
	activity ActivityRecorder,
	mail *mailer.Mailer,
	logger *zap.Logger,
	jwtSecret []byte,
) UserService {
	return &userService{
		users:      users,
		companies:  companies,
		sites:      sites,
		warehouses: warehouses,
		txManager:  txManager,
		activity:   activity,
		mailer:     mail,
		logger:     logger,
		jwtSecret:  jwtSecret,
	}
}

// RegisterCompany creates the tenant and its owner account atomically.
func (s *userService) RegisterCompany(ctx context.Context, dto RegisterCompanyDTO) (*model.Company, *model.User, error) {
	if _, err := s.companies.FindByName(ctx, dto.CompanyName); err == nil {
		return nil, nil, apperror.Conflict("Company name already registered")
	}
	if _, err := s.companies.FindByEmail(ctx, dto.Email); err == nil {
		return nil, nil, apperror.Conflict("Company email already registered")
	}
	if _, err := s.companies.FindByPhone(ctx, dto.Phone); err == nil {
		return nil, nil, apperror.Conflict("Company phone already registered")
	}
	if _, err := s.users.FindByUsername(ctx, dto.OwnerUsername); err == nil {
		return nil, nil, apperror.Conflict("Username already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.OwnerPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, apperror.Internal(err)
	}

	company := &model.Company{
		Name:               dto.CompanyName,
		Email:              dto.Email,
		Phone:              dto.Phone,
		GSTIN:              dto.GSTIN,
		Address:            dto.Address,
		SubscriptionStatus: model.SubscriptionActive,
	}
	var owner *model.User
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.companies.Create(txCtx, company); createErr != nil {
			return apperror.Internal(createErr)
		}
		email := dto.Email
		phone := dto.Phone
		owner = &model.User{
			Username:  dto.OwnerUsername,
			Password:  string(hash),
			Role:      model.RoleCompanyOwner,
			FullName:  dto.OwnerFullName,
			Email:     &email,
			Phone:     &phone,
			CompanyID: &company.ID,
		}
		if createErr := s.users.Create(txCtx, owner); createErr != nil {
			return apperror.Internal(createErr)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if owner.Email != nil {
		s.mailer.SendWelcome(ctx, *owner.Email, owner.Username)
	}
	return company, owner, nil
}

func (s *userService) Login(ctx context.Context, dto LoginDTO) (*LoginResult, error) {
	user, err := s.users.FindByUsername(ctx, dto.Username)
	if err != nil {
		return nil, apperror.Unauthorized("Invalid username or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(dto.Password)); err != nil {
		return nil, apperror.Unauthorized("Invalid username or password")
	}

	if user.CompanyID != nil {
		company, err := s.companies.FindByID(ctx, *user.CompanyID)
		if err == nil && company.SubscriptionStatus == model.SubscriptionSuspended {
			return nil, apperror.Forbidden("Company subscription is suspended")
		}
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &LoginResult{Token: token, User: user}, nil
}

func (s *userService) issueToken(user *model.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": user.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(tokenTTL).Unix(),
	}
	if user.CompanyID != nil {
		claims["company_id"] = user.CompanyID.String()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

// Create adds a user to the actor's company. Required fields depend on the
// role: admins carry email and phone, staff a full name, warehouse managers
// the warehouse they run.
func (s *userService) Create(ctx context.Context, actorID uuid.UUID, dto CreateUserDTO) (*model.User, error) {
	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor.CompanyID == nil {
		return nil, apperror.Forbidden("User does not belong to a company")
	}

	if !model.ValidRole(dto.Role) {
		return nil, apperror.Validation("Unknown role %q", dto.Role)
	}
	if dto.Role == model.RoleCompanyOwner {
		return nil, apperror.Forbidden("Company owners are created through registration")
	}
	if err := validateRoleFields(dto); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByUsername(ctx, dto.Username); err == nil {
		return nil, apperror.Conflict("Username already taken")
	}

	var warehouseID *uuid.UUID
	if dto.Role == model.RoleWarehouseManager {
		id, parseErr := uuid.Parse(dto.WarehouseID)
		if parseErr != nil {
			return nil, apperror.Validation("Invalid warehouse id")
		}
		warehouse, findErr := s.warehouses.FindByID(ctx, id)
		if findErr != nil {
			return nil, apperror.NotFound("Warehouse not found")
		}
		if warehouse.CompanyID != nil && *warehouse.CompanyID != *actor.CompanyID {
			return nil, apperror.Forbidden("Warehouse belongs to a different company")
		}
		warehouseID = &id
	}

	assignedSites, err := s.resolveSites(ctx, *actor.CompanyID, dto.SiteIDs)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	user := &model.User{
		Username:    dto.Username,
		Password:    string(hash),
		Role:        dto.Role,
		FullName:    dto.FullName,
		CompanyID:   actor.CompanyID,
		WarehouseID: warehouseID,
		CreatedBy:   &actorID,
	}
	if dto.Email != "" {
		user.Email = &dto.Email
	}
	if dto.Phone != "" {
		user.Phone = &dto.Phone
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.users.Create(txCtx, user); createErr != nil {
			return apperror.Internal(createErr)
		}
		if len(assignedSites) > 0 {
			if assignErr := s.users.ReplaceAssignedSites(txCtx, user, assignedSites); assignErr != nil {
				return apperror.Internal(assignErr)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activity.Log(ctx, Target{Model: model.EntityUser, ID: user.ID}, model.ActionCreateUser,
		PerformerUser(actor),
		map[string]interface{}{"username": user.Username, "role": user.Role},
		"Created user "+user.Username)

	if user.Email != nil {
		s.mailer.SendWelcome(ctx, *user.Email, user.Username)
	}
	user.AssignedSites = assignedSites
	return user, nil
}

func (s *userService) Update(ctx context.Context, actorID, userID uuid.UUID, dto UpdateUserDTO) (*model.User, error) {
	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	user, err := s.loadTarget(ctx, actor, userID)
	if err != nil {
		return nil, err
	}

	if dto.Password != nil {
		if len(*dto.Password) < 6 {
			return nil, apperror.Validation("Password must be at least 6 characters")
		}
		hash, hashErr := bcrypt.GenerateFromPassword([]byte(*dto.Password), bcrypt.DefaultCost)
		if hashErr != nil {
			return nil, apperror.Internal(hashErr)
		}
		user.Password = string(hash)
	}
	if dto.FullName != nil {
		user.FullName = *dto.FullName
	}
	if dto.Email != nil {
		if *dto.Email == "" {
			user.Email = nil
		} else {
			user.Email = dto.Email
		}
	}
	if dto.Phone != nil {
		if *dto.Phone == "" {
			user.Phone = nil
		} else {
			user.Phone = dto.Phone
		}
	}
	if dto.WarehouseID != nil && user.Role == model.RoleWarehouseManager {
		id, parseErr := uuid.Parse(*dto.WarehouseID)
		if parseErr != nil {
			return nil, apperror.Validation("Invalid warehouse id")
		}
		if _, findErr := s.warehouses.FindByID(ctx, id); findErr != nil {
			return nil, apperror.NotFound("Warehouse not found")
		}
		user.WarehouseID = &id
	}

	var assignedSites []model.Site
	if dto.SiteIDs != nil && user.Role == model.RoleSupervisor {
		companyID := user.CompanyID
		if companyID == nil {
			return nil, apperror.Validation("User has no company to assign sites in")
		}
		assignedSites, err = s.resolveSites(ctx, *companyID, dto.SiteIDs)
		if err != nil {
			return nil, err
		}
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if updErr := s.users.Update(txCtx, user); updErr != nil {
			return apperror.Internal(updErr)
		}
		if dto.SiteIDs != nil && user.Role == model.RoleSupervisor {
			if assignErr := s.users.ReplaceAssignedSites(txCtx, user, assignedSites); assignErr != nil {
				return apperror.Internal(assignErr)
			}
			user.AssignedSites = assignedSites
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes a user, detaching any site assignments first so the join
// rows do not outlive the account.
func (s *userService) Delete(ctx context.Context, actorID, userID uuid.UUID) error {
	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return err
	}
	if actorID == userID {
		return apperror.Validation("You cannot delete your own account")
	}
	user, err := s.loadTarget(ctx, actor, userID)
	if err != nil {
		return err
	}
	if user.Role == model.RoleCompanyOwner {
		return apperror.Forbidden("Company owner accounts cannot be deleted")
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if len(user.AssignedSites) > 0 {
			if detachErr := s.users.ReplaceAssignedSites(txCtx, user, nil); detachErr != nil {
				return apperror.Internal(detachErr)
			}
		}
		if delErr := s.users.Delete(txCtx, userID); delErr != nil {
			return apperror.Internal(delErr)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.activity.Log(ctx, Target{Model: model.EntityUser, ID: userID}, model.ActionDeleteUser,
		PerformerUser(actor),
		map[string]interface{}{"username": user.Username, "role": user.Role},
		"Deleted user "+user.Username)

	return nil
}

func (s *userService) Get(ctx context.Context, actorID, userID uuid.UUID) (*model.User, error) {
	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return s.loadTarget(ctx, actor, userID)
}

func (s *userService) List(ctx context.Context, actorID uuid.UUID, role string, page, limit int) ([]model.User, int64, error) {
	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return nil, 0, err
	}
	if actor.CompanyID == nil {
		return nil, 0, apperror.Forbidden("User does not belong to a company")
	}
	if role != "" && !model.ValidRole(role) {
		return nil, 0, apperror.Validation("Unknown role %q", role)
	}
	users, total, err := s.users.List(ctx, actor.CompanyID, role, page, limit)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return users, total, nil
}

// --- Helpers ---

func validateRoleFields(dto CreateUserDTO) error {
	switch dto.Role {
	case model.RoleAdmin:
		if dto.Email == "" || dto.Phone == "" {
			return apperror.Validation("Admin accounts require email and phone")
		}
	case model.RoleStaff:
		if dto.FullName == "" {
			return apperror.Validation("Staff accounts require a full name")
		}
	case model.RoleWarehouseManager:
		if dto.WarehouseID == "" {
			return apperror.Validation("Warehouse manager accounts require a warehouse")
		}
	}
	return nil
}

func (s *userService) loadActor(ctx context.Context, actorID uuid.UUID) (*model.User, error) {
	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		if notFound(err) {
			return nil, apperror.Unauthorized("User not found")
		}
		return nil, apperror.Internal(err)
	}
	return actor, nil
}

// loadTarget fetches userID and checks it is in the actor's company.
func (s *userService) loadTarget(ctx context.Context, actor *model.User, userID uuid.UUID) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if notFound(err) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, apperror.Internal(err)
	}
	if actor.ID != user.ID {
		if actor.CompanyID == nil || user.CompanyID == nil || *actor.CompanyID != *user.CompanyID {
			return nil, apperror.Forbidden("User belongs to a different company")
		}
	}
	return user, nil
}

func (s *userService) resolveSites(ctx context.Context, companyID uuid.UUID, ids []string) ([]model.Site, error) {
	sites := make([]model.Site, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, apperror.Validation("Invalid site id %q", raw)
		}
		site, err := s.sites.FindByID(ctx, id)
		if err != nil {
			if notFound(err) {
				return nil, apperror.NotFound("Site %s not found", raw)
			}
			return nil, apperror.Internal(err)
		}
		if site.CompanyID != companyID {
			return nil, apperror.Validation("Site %s belongs to a different company", raw)
		}
		sites = append(sites, *site)
	}
	return sites, nil
}
