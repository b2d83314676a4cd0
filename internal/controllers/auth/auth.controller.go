package authController

import (
	"context"
	"errors"
	"strings"
	. "topup/internal/models"
	"topup/internal/repositories"
	"topup/internal/services"
	"topup/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

const (
	MSG_REGISTER_FIELDS = "All fields are required"
	MSG_INVALID_ROLE    = "Invalid role"
	MSG_USER_EXISTS     = "User already exists"
	MSG_LOGIN_FIELDS    = "Email and password are required"
)

type RegisterRequest struct {
	Email       string  `json:"email"    validate:"required"`
	Password    string  `json:"password" validate:"required"`
	Name        string  `json:"name"     validate:"required"`
	Role        Role    `json:"role"     validate:"required"`
	Phone       *string `json:"phone,omitempty"`
	SecurityKey string  `json:"securityKey,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Session is a signed-in principal together with its token.
type Session struct {
	User   *User
	Token  string
	Claims *services.SessionClaims
}

type AuthController struct {
	db    services.Transactor
	users repositories.UserRepository
	auth  *services.AuthService
	log   logger.Logger
}

type AuthControllerInterface interface {
	Register(ctx context.Context, request RegisterRequest) (*Session, error)
	Login(ctx context.Context, request LoginRequest) (*Session, error)
	Logout(ctx context.Context, claims *services.SessionClaims) error
	Authenticate(ctx context.Context, token string) (*User, *services.SessionClaims, error)
}

func New(repos repositories.Repository, services services.Service) AuthControllerInterface {
	return &AuthController{
		db:    services.Transaction,
		users: repos.User,
		auth:  services.Auth,
		log:   logger.New("authController"),
	}
}

func (ac *AuthController) Register(ctx context.Context, request RegisterRequest) (*Session, error) {
	log := ac.log.TraceFromContext(ctx).Function("Register")

	request.Email = NormalizeEmail(request.Email)
	request.Name = strings.TrimSpace(request.Name)
	if err := services.Validate(request, MSG_REGISTER_FIELDS); err != nil {
		return nil, err
	}
	if !request.Role.Valid() {
		return nil, types.Validation(MSG_INVALID_ROLE)
	}
	if err := ac.auth.CheckSecurityKey(request.Role, request.SecurityKey); err != nil {
		log.Warn("registration with invalid security key", "role", request.Role)
		return nil, err
	}

	hash, err := ac.auth.HashPassword(request.Password)
	if err != nil {
		return nil, types.Internal("Registration failed", err)
	}

	user := &User{
		Email:        request.Email,
		PasswordHash: hash,
		Name:         request.Name,
		Role:         request.Role,
		Phone:        request.Phone,
	}

	err = ac.db.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		_, err := ac.users.GetByEmail(ctx, tx, user.Email)
		switch {
		case err == nil:
			return types.Validation(MSG_USER_EXISTS)
		case types.KindOf(err) != types.KindNotFound:
			return err
		}

		if err := ac.users.Create(ctx, tx, user); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return types.Validation(MSG_USER_EXISTS)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("user registered", "userID", user.ID, "role", user.Role)
	return ac.session(user)
}

func (ac *AuthController) Login(ctx context.Context, request LoginRequest) (*Session, error) {
	if err := services.Validate(request, MSG_LOGIN_FIELDS); err != nil {
		return nil, err
	}

	user, err := ac.users.GetByEmail(ctx, ac.db.Read(ctx), request.Email)
	if err != nil {
		if types.KindOf(err) == types.KindNotFound {
			return nil, types.Unauthorized(services.MSG_INVALID_CREDS)
		}
		return nil, err
	}
	if err := ac.auth.CheckPassword(user, request.Password); err != nil {
		return nil, err
	}

	return ac.session(user)
}

func (ac *AuthController) Logout(ctx context.Context, claims *services.SessionClaims) error {
	if err := ac.auth.Revoke(ctx, claims); err != nil {
		ac.log.TraceFromContext(ctx).Function("Logout").
			Warn("logout without revocation", "error", err)
	}
	return nil
}

// Authenticate resolves a bearer or cookie token to its user. A token whose
// user no longer exists is treated as invalid.
func (ac *AuthController) Authenticate(
	ctx context.Context,
	token string,
) (*User, *services.SessionClaims, error) {
	claims, err := ac.auth.Validate(ctx, token)
	if err != nil {
		return nil, nil, err
	}

	user, err := ac.users.GetByID(ctx, ac.db.Read(ctx), claims.UserID)
	if err != nil {
		if types.KindOf(err) == types.KindNotFound {
			return nil, nil, types.Unauthorized(services.MSG_INVALID_TOKEN)
		}
		return nil, nil, err
	}

	return user, claims, nil
}

func (ac *AuthController) session(user *User) (*Session, error) {
	token, claims, err := ac.auth.Issue(user)
	if err != nil {
		return nil, types.Internal("Failed to issue session", err)
	}
	return &Session{User: user, Token: token, Claims: claims}, nil
}
