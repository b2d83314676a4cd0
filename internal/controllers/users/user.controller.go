package userController

import (
	"context"
	"errors"
	"strings"
	. "topup/internal/models"
	"topup/internal/policy"
	"topup/internal/repositories"
	"topup/internal/services"
	"topup/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MSG_CREATE_FIELDS = "Email, password, name, and role are required"
	MSG_CREATE_ROLE   = "Role must be operator, owner, or viewer"
	MSG_EMAIL_TAKEN   = "A user with this email already exists"
	MSG_DELETE_ADMIN  = "Cannot delete admin users"
)

type CreateUserRequest struct {
	Email    string  `json:"email"    validate:"required"`
	Password string  `json:"password" validate:"required"`
	Name     string  `json:"name"     validate:"required"`
	Role     Role    `json:"role"     validate:"required"`
	Phone    *string `json:"phone,omitempty"`
}

type UserController struct {
	db         services.Transactor
	users      repositories.UserRepository
	apartments repositories.ApartmentRepository
	shifts     repositories.ShiftRepository
	schedules  repositories.ScheduleRepository
	auth       *services.AuthService
	log        logger.Logger
}

type UserControllerInterface interface {
	List(ctx context.Context, user *User, role *Role) ([]*User, error)
	Create(ctx context.Context, user *User, request CreateUserRequest) (*User, error)
	Delete(ctx context.Context, user *User, userID uuid.UUID) error
}

func New(repos repositories.Repository, services services.Service) UserControllerInterface {
	return &UserController{
		db:         services.Transaction,
		users:      repos.User,
		apartments: repos.Apartment,
		shifts:     repos.Shift,
		schedules:  repos.Schedule,
		auth:       services.Auth,
		log:        logger.New("userController"),
	}
}

// List returns users ordered by name. Owners may only list operators.
func (uc *UserController) List(ctx context.Context, user *User, role *Role) ([]*User, error) {
	if err := policy.Authenticated(user); err != nil {
		return nil, err
	}

	switch user.Role {
	case RoleAdmin:
	case RoleOwner:
		if role == nil || *role != RoleOperator {
			return nil, types.Forbidden("")
		}
	default:
		return nil, types.Forbidden("")
	}

	return uc.users.List(ctx, uc.db.Read(ctx), role)
}

// Create adds an account on behalf of an admin. No security key is needed
// and admin accounts cannot be created this way.
func (uc *UserController) Create(
	ctx context.Context,
	user *User,
	request CreateUserRequest,
) (*User, error) {
	log := uc.log.TraceFromContext(ctx).Function("Create")

	if err := policy.RequireRole(user, "", RoleAdmin); err != nil {
		return nil, err
	}

	request.Email = NormalizeEmail(request.Email)
	request.Name = strings.TrimSpace(request.Name)
	if err := services.Validate(request, MSG_CREATE_FIELDS); err != nil {
		return nil, err
	}
	switch request.Role {
	case RoleOperator, RoleOwner, RoleViewer:
	default:
		return nil, types.Validation(MSG_CREATE_ROLE)
	}
	if request.Phone != nil {
		phone := strings.TrimSpace(*request.Phone)
		request.Phone = &phone
	}

	hash, err := uc.auth.HashPassword(request.Password)
	if err != nil {
		return nil, types.Internal("Failed to create user", err)
	}

	created := &User{
		Email:        request.Email,
		PasswordHash: hash,
		Name:         request.Name,
		Role:         request.Role,
		Phone:        request.Phone,
	}

	err = uc.db.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		_, err := uc.users.GetByEmail(ctx, tx, created.Email)
		switch {
		case err == nil:
			return types.Validation(MSG_EMAIL_TAKEN)
		case types.KindOf(err) != types.KindNotFound:
			return err
		}

		if err := uc.users.Create(ctx, tx, created); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return types.Validation(MSG_EMAIL_TAKEN)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("user created by admin", "userID", created.ID, "role", created.Role, "adminID", user.ID)
	return created, nil
}

// Delete removes a non-admin account together with everything hanging off
// it: an operator's shifts, or an owner's apartments with their shifts and
// schedules.
func (uc *UserController) Delete(ctx context.Context, user *User, userID uuid.UUID) error {
	log := uc.log.TraceFromContext(ctx).Function("Delete")

	if err := policy.RequireRole(user, "", RoleAdmin); err != nil {
		return err
	}

	var target *User
	err := uc.db.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		var err error
		target, err = uc.users.GetByID(ctx, tx, userID)
		if err != nil {
			return err
		}
		if target.IsAdmin() {
			return types.Forbidden(MSG_DELETE_ADMIN)
		}

		switch target.Role {
		case RoleOperator:
			if err := uc.shifts.DeleteByCleaner(ctx, tx, target.ID); err != nil {
				return err
			}
		case RoleOwner:
			apartmentIDs, err := uc.apartments.IDsByOwner(ctx, tx, target.ID)
			if err != nil {
				return err
			}
			if err := uc.shifts.DeleteByApartments(ctx, tx, apartmentIDs); err != nil {
				return err
			}
			if err := uc.schedules.DeleteByApartments(ctx, tx, apartmentIDs); err != nil {
				return err
			}
			if err := uc.apartments.DeleteByOwner(ctx, tx, target.ID); err != nil {
				return err
			}
		}

		return uc.users.Delete(ctx, tx, target)
	})
	if err != nil {
		return err
	}

	log.Info("user deleted", "userID", target.ID, "role", target.Role, "adminID", user.ID)
	return nil
}
